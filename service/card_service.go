package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/repository"
)

var (
	// ErrCardExpired is returned when a card is opened after its expiry
	ErrCardExpired = errors.New("this card has expired")
	// ErrCardLocked is returned when a protected card is opened without the right password
	ErrCardLocked = errors.New("this card is password protected")
	// ErrNotResendable is returned when resending a card that did not fail
	ErrNotResendable = errors.New("only failed cards can be resent")
)

// ValidationError reports bad input from the wizard
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// Quoter prices a card selection for a user
type Quoter interface {
	Quote(ctx context.Context, sel models.CardSelection, user *models.User) (*models.PriceQuote, error)
}

const (
	minPasswordLength = 4
	// bcrypt ignores everything past 72 bytes and newer versions reject it
	maxPasswordBytes = 72

	statusWriteTimeout = 10 * time.Second
)

// CardService turns the wizard state into a card, charges Tym and delivers it
type CardService struct {
	cards     repository.CardRepositoryInterface
	users     repository.UserRepositoryInterface
	pricing   Quoter
	email     EmailSender
	messenger MessageSender
	baseURL   string
	now       func() time.Time
}

// NewCardService creates a new CardService. baseURL is the public site root used for share links.
func NewCardService(
	cards repository.CardRepositoryInterface,
	users repository.UserRepositoryInterface,
	pricing Quoter,
	email EmailSender,
	messenger MessageSender,
	baseURL string,
) *CardService {
	return &CardService{
		cards:     cards,
		users:     users,
		pricing:   pricing,
		email:     email,
		messenger: messenger,
		baseURL:   strings.TrimRight(baseURL, "/"),
		now:       time.Now,
	}
}

// ShareURL returns the public link of a card
func (s *CardService) ShareURL(slug string) string {
	return s.baseURL + "/card/" + slug
}

func (s *CardService) validate(req *models.CreateCardRequest, now time.Time) error {
	req.RecipientName = strings.TrimSpace(req.RecipientName)
	req.RecipientEmail = strings.TrimSpace(req.RecipientEmail)
	req.RecipientPSID = strings.TrimSpace(req.RecipientPSID)
	req.DeliveryMethod = strings.ToLower(strings.TrimSpace(req.DeliveryMethod))
	req.Password = strings.TrimSpace(req.Password)
	if req.DeliveryMethod == "" {
		req.DeliveryMethod = models.DeliveryLink
	}

	if req.SenderID <= 0 {
		return invalid("senderId", "must be greater than 0")
	}
	if req.RecipientName == "" {
		return invalid("recipientName", "is required")
	}

	switch req.DeliveryMethod {
	case models.DeliveryEmail:
		if _, err := mail.ParseAddress(req.RecipientEmail); err != nil {
			return invalid("recipientEmail", "must be a valid email address")
		}
	case models.DeliveryMessenger:
		if req.RecipientPSID == "" {
			return invalid("recipientPsid", "is required for messenger delivery")
		}
	case models.DeliveryLink:
	default:
		return invalid("deliveryMethod", "must be email, messenger or link")
	}

	if req.ScheduledAt != nil && !req.ScheduledAt.After(now) {
		return invalid("scheduledAt", "must be in the future")
	}
	if req.ExpiresAt != nil {
		start := now
		if req.ScheduledAt != nil {
			start = *req.ScheduledAt
		}
		if !req.ExpiresAt.After(start) {
			return invalid("expiresAt", "must be after the send time")
		}
	}
	if req.Password != "" {
		if utf8.RuneCountInString(req.Password) < minPasswordLength {
			return invalid("password", "must have at least 4 characters")
		}
		if len(req.Password) > maxPasswordBytes {
			return invalid("password", "must be at most 72 bytes")
		}
	}
	return nil
}

// CreateCard validates the wizard state, charges the sender and stores the
// card. Unscheduled email/Messenger cards are delivered right away; a failed
// delivery leaves the card in status failed instead of undoing it.
func (s *CardService) CreateCard(ctx context.Context, req models.CreateCardRequest) (*models.CreateCardResponse, error) {
	now := s.now()
	if err := s.validate(&req, now); err != nil {
		return nil, err
	}

	sender, err := s.users.GetByID(ctx, req.SenderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sender: %w", err)
	}

	quote, err := s.pricing.Quote(ctx, req.Selection, sender)
	if err != nil {
		return nil, err
	}

	card := &models.Card{
		Slug:            uuid.NewString(),
		SenderID:        req.SenderID,
		RecipientName:   req.RecipientName,
		RecipientEmail:  req.RecipientEmail,
		RecipientPSID:   req.RecipientPSID,
		Content:         req.Content,
		EnvelopeID:      req.Selection.EnvelopeID,
		StampID:         req.Selection.StampID,
		MusicID:         req.Selection.MusicID,
		PhotoFrameID:    req.Selection.PhotoFrameID,
		StickerIDs:      req.Selection.StickerIDs,
		PhotoURLs:       req.PhotoURLs,
		SignatureURL:    req.SignatureURL,
		BackgroundColor: req.BackgroundColor,
		QREnabled:       req.QREnabled,
		ExpiresAt:       req.ExpiresAt,
		ScheduledAt:     req.ScheduledAt,
		DeliveryMethod:  req.DeliveryMethod,
		Status:          models.CardPending,
	}
	if req.ScheduledAt != nil {
		card.Status = models.CardScheduled
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		card.PasswordHash = string(hash)
	}

	if err := s.cards.CreateWithCharge(ctx, card, quote.Total); err != nil {
		return nil, err
	}

	resp := &models.CreateCardResponse{Card: card, ShareURL: s.ShareURL(card.Slug), Quote: quote}
	if card.Status == models.CardPending {
		result := s.Deliver(ctx, card, sender.DisplayName)
		resp.Delivery = &result
	}
	return resp, nil
}

// Deliver sends the card over its delivery method and records the outcome.
// Link cards are marked sent without contacting anyone.
func (s *CardService) Deliver(ctx context.Context, card *models.Card, senderName string) models.SendResult {
	shareURL := s.ShareURL(card.Slug)

	var result models.SendResult
	switch card.DeliveryMethod {
	case models.DeliveryEmail:
		result = s.email.Send(ctx, cardEmail(card, senderName, shareURL))
	case models.DeliveryMessenger:
		result = s.messenger.Send(ctx, card.RecipientPSID, cardMessage(card, senderName, shareURL))
	default:
		result = models.SendResult{Success: true}
	}

	status, lastError := models.CardSent, ""
	var sentAt *time.Time
	if result.Success {
		t := s.now()
		sentAt = &t
	} else {
		status, lastError = models.CardFailed, result.Error
	}

	// The outcome is recorded even when ctx ended during the send
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
	defer cancel()
	if err := s.cards.UpdateStatus(writeCtx, card.ID, status, lastError, sentAt); err != nil {
		log.Printf("❌ Deliver: failed to record status of card %d: %v", card.ID, err)
	}
	card.Status, card.LastError = status, lastError
	if sentAt != nil {
		card.SentAt = sentAt
	}

	log.Printf("📬 Deliver: card=%d method=%s status=%s", card.ID, card.DeliveryMethod, status)
	return result
}

// OpenCard returns a card for viewing and counts the view
func (s *CardService) OpenCard(ctx context.Context, slug, password string) (*models.Card, error) {
	card, err := s.cards.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(card, password); err != nil {
		return nil, err
	}

	views, err := s.cards.IncrementViews(ctx, card.ID)
	if err != nil {
		return nil, err
	}
	card.ViewCount = views
	return card, nil
}

// GetForRender loads a card with the same access rules as OpenCard, without counting a view
func (s *CardService) GetForRender(ctx context.Context, slug, password string) (*models.Card, error) {
	card, err := s.cards.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(card, password); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *CardService) checkAccess(card *models.Card, password string) error {
	if card.Status == models.CardScheduled {
		return repository.ErrNotFound
	}
	if card.ExpiresAt != nil && !s.now().Before(*card.ExpiresAt) {
		return ErrCardExpired
	}
	if card.PasswordHash != "" {
		if password == "" || bcrypt.CompareHashAndPassword([]byte(card.PasswordHash), []byte(password)) != nil {
			return ErrCardLocked
		}
	}
	return nil
}

// ListSent returns the most recent cards of a sender
func (s *CardService) ListSent(ctx context.Context, senderID int64) ([]models.Card, error) {
	return s.cards.ListBySender(ctx, senderID, 100)
}

// Resend retries delivery of a failed card
func (s *CardService) Resend(ctx context.Context, slug string) (*models.Card, models.SendResult, error) {
	card, err := s.cards.GetBySlug(ctx, slug)
	if err != nil {
		return nil, models.SendResult{}, err
	}
	if card.Status != models.CardFailed {
		return nil, models.SendResult{}, ErrNotResendable
	}
	result := s.Deliver(ctx, card, s.senderName(ctx, card.SenderID))
	return card, result, nil
}

// DeliverDue delivers scheduled cards whose time has come and returns how many were processed
func (s *CardService) DeliverDue(ctx context.Context, batchSize int) (int, error) {
	due, err := s.cards.ClaimDue(ctx, s.now(), batchSize)
	if err != nil {
		return 0, err
	}
	for i := range due {
		if ctx.Err() != nil {
			s.release(ctx, due[i:])
			return i, ctx.Err()
		}
		s.Deliver(ctx, &due[i], s.senderName(ctx, due[i].SenderID))
	}
	return len(due), nil
}

// release puts claimed cards that were never attempted back to scheduled so
// the next run picks them up. A card that cannot be released is claimed
// again once its lease expires.
func (s *CardService) release(ctx context.Context, cards []models.Card) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
	defer cancel()
	for _, c := range cards {
		if err := s.cards.UpdateStatus(writeCtx, c.ID, models.CardScheduled, "", nil); err != nil {
			log.Printf("⚠️  DeliverDue: card %d stays claimed until its lease expires: %v", c.ID, err)
		}
	}
	log.Printf("⏸️  DeliverDue: released %d unsent cards", len(cards))
}

func (s *CardService) senderName(ctx context.Context, senderID int64) string {
	u, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		log.Printf("⚠️  Could not load sender %d: %v", senderID, err)
		return ""
	}
	return u.DisplayName
}

// Quote prices a selection for the given user without charging anything
func (s *CardService) Quote(ctx context.Context, userID int64, sel models.CardSelection) (*models.PriceQuote, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.pricing.Quote(ctx, sel, user)
}
