package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"echo-vintage-ecard/logger"
	"echo-vintage-ecard/models"
)

// EmailSender sends transactional email
type EmailSender interface {
	Send(ctx context.Context, msg models.EmailMessage) models.SendResult
}

// resendAPI is the slice of the Resend SDK the service uses
type resendAPI interface {
	Send(ctx context.Context, req *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type resendClient struct {
	client *resend.Client
}

func (r resendClient) Send(ctx context.Context, req *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	return r.client.Emails.SendWithContext(ctx, req)
}

// EmailService delivers email through Resend with retries.
// Without an API key it logs the message and reports a mocked success.
type EmailService struct {
	api   resendAPI
	from  string
	retry RetryPolicy
	log   zerolog.Logger
}

var _ EmailSender = (*EmailService)(nil)

// NewEmailService creates an EmailService. apiKey may be empty in development.
func NewEmailService(apiKey, from string) *EmailService {
	s := &EmailService{
		from:  from,
		retry: DefaultRetryPolicy,
		log:   logger.New("email"),
	}
	if apiKey != "" {
		s.api = resendClient{client: resend.NewClient(apiKey)}
	} else {
		s.log.Warn().Msg("RESEND_API_KEY not set, emails will only be logged")
	}
	return s
}

// Send delivers msg, retrying transient failures
func (s *EmailService) Send(ctx context.Context, msg models.EmailMessage) models.SendResult {
	if len(msg.To) == 0 {
		return models.SendResult{Success: false, Error: "no recipients"}
	}

	if s.api == nil {
		s.log.Info().
			Strs("to", msg.To).
			Str("subject", msg.Subject).
			Msg("email not sent (no API key), mocking success")
		return models.SendResult{Success: true, MessageID: "mock-email", Attempts: 0, Mocked: true}
	}

	req := &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	}

	var messageID string
	attempts, err := s.retry.Do(ctx, s.log, func(ctx context.Context, attempt int) error {
		resp, err := s.api.Send(ctx, req)
		if err != nil {
			if isPermanentEmailError(err) {
				return Permanent(err)
			}
			return err
		}
		messageID = resp.Id
		return nil
	})
	if err != nil {
		return models.SendResult{Success: false, Error: err.Error(), Attempts: attempts}
	}

	s.log.Info().Str("id", messageID).Strs("to", msg.To).Int("attempts", attempts).Msg("email sent")
	return models.SendResult{Success: true, MessageID: messageID, Attempts: attempts}
}

// isPermanentEmailError recognises validation failures reported by Resend,
// which will not succeed on retry.
func isPermanentEmailError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "validation_error") || strings.Contains(msg, "invalid_")
}

// cardEmail builds the notification email for a card
func cardEmail(card *models.Card, senderName, shareURL string) models.EmailMessage {
	if senderName == "" {
		senderName = "Someone"
	}
	subject := fmt.Sprintf("%s sent you a card 💌", senderName)
	body := fmt.Sprintf(`<div style="font-family:Georgia,serif;max-width:520px;margin:auto;padding:24px;background:#fbf6ec">
<h2 style="color:#6b4f3a">Dear %s,</h2>
<p>%s has sent you an Echo Vintage card.</p>
<p><a href="%s" style="display:inline-block;padding:12px 20px;background:#6b4f3a;color:#fff;text-decoration:none;border-radius:6px">Open your card</a></p>
<p style="color:#999;font-size:12px">If the button does not work, copy this link: %s</p>
</div>`, html.EscapeString(card.RecipientName), html.EscapeString(senderName), shareURL, shareURL)
	text := fmt.Sprintf("Dear %s,\n\n%s has sent you an Echo Vintage card: %s\n", card.RecipientName, senderName, shareURL)
	return models.EmailMessage{To: []string{card.RecipientEmail}, Subject: subject, HTML: body, Text: text}
}
