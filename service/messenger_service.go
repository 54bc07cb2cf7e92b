package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"echo-vintage-ecard/logger"
	"echo-vintage-ecard/models"
)

// MessageSender delivers a text message to a Messenger user (page-scoped ID)
type MessageSender interface {
	Send(ctx context.Context, psid, text string) models.SendResult
}

// MessengerService calls the Facebook Graph API send endpoint with retries.
// Without a page token it logs the message and reports a mocked success.
type MessengerService struct {
	httpClient *http.Client
	baseURL    string
	pageToken  string
	retry      RetryPolicy
	log        zerolog.Logger
}

var _ MessageSender = (*MessengerService)(nil)

// NewMessengerService creates a MessengerService. baseURL is the versioned
// Graph API root, e.g. https://graph.facebook.com/v19.0
func NewMessengerService(baseURL, pageToken string) *MessengerService {
	s := &MessengerService{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		pageToken:  pageToken,
		retry:      DefaultRetryPolicy,
		log:        logger.New("facebook"),
	}
	if pageToken == "" {
		s.log.Warn().Msg("FACEBOOK_PAGE_ACCESS_TOKEN not set, messages will only be logged")
	}
	return s
}

type graphSendRequest struct {
	Recipient     graphRecipient `json:"recipient"`
	Message       graphMessage   `json:"message"`
	MessagingType string         `json:"messaging_type"`
	Tag           string         `json:"tag,omitempty"`
}

type graphRecipient struct {
	ID string `json:"id"`
}

type graphMessage struct {
	Text string `json:"text"`
}

type graphSendResponse struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
	Error       *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Send posts text to psid, retrying 5xx, 429 and network failures
func (s *MessengerService) Send(ctx context.Context, psid, text string) models.SendResult {
	if psid == "" {
		return models.SendResult{Success: false, Error: "missing recipient id"}
	}
	if s.pageToken == "" {
		s.log.Info().Str("psid", psid).Str("text", text).Msg("message not sent (no page token), mocking success")
		return models.SendResult{Success: true, MessageID: "mock-message", Mocked: true}
	}

	payload, err := json.Marshal(graphSendRequest{
		Recipient:     graphRecipient{ID: psid},
		Message:       graphMessage{Text: text},
		MessagingType: "MESSAGE_TAG",
		Tag:           "ACCOUNT_UPDATE",
	})
	if err != nil {
		return models.SendResult{Success: false, Error: err.Error()}
	}
	endpoint := s.baseURL + "/me/messages?access_token=" + url.QueryEscape(s.pageToken)

	var messageID string
	attempts, err := s.retry.Do(ctx, s.log, func(ctx context.Context, attempt int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("graph request failed: %w", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var parsed graphSendResponse
		_ = json.Unmarshal(body, &parsed)

		if resp.StatusCode >= 200 && resp.StatusCode < 300 && parsed.Error == nil {
			messageID = parsed.MessageID
			return nil
		}

		apiErr := fmt.Errorf("graph API returned status %d", resp.StatusCode)
		if parsed.Error != nil {
			apiErr = fmt.Errorf("graph API error %d (%s): %s", parsed.Error.Code, parsed.Error.Type, parsed.Error.Message)
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return Permanent(apiErr)
		}
		return apiErr
	})
	if err != nil {
		return models.SendResult{Success: false, Error: err.Error(), Attempts: attempts}
	}

	s.log.Info().Str("psid", psid).Str("id", messageID).Int("attempts", attempts).Msg("message sent")
	return models.SendResult{Success: true, MessageID: messageID, Attempts: attempts}
}

// cardMessage builds the Messenger text for a card
func cardMessage(card *models.Card, senderName, shareURL string) string {
	if senderName == "" {
		senderName = "Someone"
	}
	return fmt.Sprintf("💌 %s, %s sent you an Echo Vintage card! Open it here: %s", card.RecipientName, senderName, shareURL)
}
