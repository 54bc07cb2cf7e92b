package repository

import (
	"context"
	"encoding/json"
	"time"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/slots"
)

// EnvelopeRepositoryInterface defines the contract for envelope persistence
type EnvelopeRepositoryInterface interface {
	List(ctx context.Context, activeOnly bool) ([]models.Envelope, error)
	GetByID(ctx context.Context, id int64) (*models.Envelope, error)
	Create(ctx context.Context, e *models.Envelope) error
	Update(ctx context.Context, e *models.Envelope) error
	Delete(ctx context.Context, id int64) error
}

// StickerRepositoryInterface defines the contract for sticker persistence
type StickerRepositoryInterface interface {
	List(ctx context.Context, category string, activeOnly bool) ([]models.Sticker, error)
	GetByID(ctx context.Context, id int64) (*models.Sticker, error)
	Create(ctx context.Context, s *models.Sticker) error
	Update(ctx context.Context, s *models.Sticker) error
	Delete(ctx context.Context, id int64) error
}

// PhotoFrameRepositoryInterface defines the contract for photo frame persistence
type PhotoFrameRepositoryInterface interface {
	List(ctx context.Context, activeOnly bool) ([]models.PhotoFrame, error)
	GetByID(ctx context.Context, id int64) (*models.PhotoFrame, error)
	Create(ctx context.Context, f *models.PhotoFrame) error
	Update(ctx context.Context, f *models.PhotoFrame) error
	UpdateSlots(ctx context.Context, id int64, list []slots.Slot) error
	Delete(ctx context.Context, id int64) error
}

// StampRepositoryInterface defines the contract for stamp persistence
type StampRepositoryInterface interface {
	List(ctx context.Context, activeOnly bool) ([]models.Stamp, error)
	GetByID(ctx context.Context, id int64) (*models.Stamp, error)
	Create(ctx context.Context, s *models.Stamp) error
	Update(ctx context.Context, s *models.Stamp) error
	Delete(ctx context.Context, id int64) error
}

// MusicRepositoryInterface defines the contract for music track persistence
type MusicRepositoryInterface interface {
	List(ctx context.Context, activeOnly bool) ([]models.MusicTrack, error)
	GetByID(ctx context.Context, id int64) (*models.MusicTrack, error)
	Create(ctx context.Context, m *models.MusicTrack) error
	Update(ctx context.Context, m *models.MusicTrack) error
	Delete(ctx context.Context, id int64) error
}

// UserRepositoryInterface defines the contract for user administration
type UserRepositoryInterface interface {
	List(ctx context.Context, search string, limit, offset int) ([]models.User, int, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateSubscription(ctx context.Context, id int64, tier string, expiresAt *time.Time) (*models.User, error)
	UpdateRole(ctx context.Context, id int64, role string) error
	AdjustPoints(ctx context.Context, id int64, delta int) (int, error)
	Delete(ctx context.Context, id int64) error
}

// CardRepositoryInterface defines the contract for card persistence
type CardRepositoryInterface interface {
	CreateWithCharge(ctx context.Context, card *models.Card, cost int) error
	GetBySlug(ctx context.Context, slug string) (*models.Card, error)
	IncrementViews(ctx context.Context, id int64) (int, error)
	ListBySender(ctx context.Context, senderID int64, limit int) ([]models.Card, error)
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]models.Card, error)
	UpdateStatus(ctx context.Context, id int64, status string, lastError string, sentAt *time.Time) error
}

// DraftRepositoryInterface defines the contract for wizard draft autosave
type DraftRepositoryInterface interface {
	Upsert(ctx context.Context, userID int64, step int, data json.RawMessage) (*models.CardDraft, error)
	GetByUserID(ctx context.Context, userID int64) (*models.CardDraft, error)
	DeleteByUserID(ctx context.Context, userID int64) error
}

// PromoCodeRepositoryInterface defines the contract for promo codes
type PromoCodeRepositoryInterface interface {
	List(ctx context.Context) ([]models.PromoCode, error)
	Create(ctx context.Context, p *models.PromoCode) error
	Redeem(ctx context.Context, code string, userID int64, now time.Time) (*models.RedeemPromoResponse, error)
}

// LegalRequestRepositoryInterface defines the contract for legal requests
type LegalRequestRepositoryInterface interface {
	Create(ctx context.Context, r *models.LegalRequest) error
	List(ctx context.Context, status string) ([]models.LegalRequest, error)
}
