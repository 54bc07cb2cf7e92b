package models

import (
	"encoding/json"
	"time"
)

// Delivery methods
const (
	DeliveryEmail     = "email"
	DeliveryMessenger = "messenger"
	DeliveryLink      = "link"
)

// Card statuses
const (
	CardScheduled = "scheduled"
	CardPending   = "pending"
	CardSent      = "sent"
	CardFailed    = "failed"
)

// Card represents a sent (or scheduled) greeting card
type Card struct {
	ID              int64      `json:"id"`
	Slug            string     `json:"slug"`
	SenderID        int64      `json:"senderId"`
	RecipientName   string     `json:"recipientName"`
	RecipientEmail  string     `json:"recipientEmail,omitempty"`
	RecipientPSID   string     `json:"recipientPsid,omitempty"`
	Content         string     `json:"content"`
	EnvelopeID      *int64     `json:"envelopeId,omitempty"`
	StampID         *int64     `json:"stampId,omitempty"`
	MusicID         *int64     `json:"musicId,omitempty"`
	PhotoFrameID    *int64     `json:"photoFrameId,omitempty"`
	StickerIDs      []int64    `json:"stickerIds"`
	PhotoURLs       []string   `json:"photoUrls"`
	SignatureURL    string     `json:"signatureUrl,omitempty"`
	BackgroundColor string     `json:"backgroundColor,omitempty"`
	QREnabled       bool       `json:"qrEnabled"`
	PasswordHash    string     `json:"-"`
	HasPassword     bool       `json:"hasPassword"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	ScheduledAt     *time.Time `json:"scheduledAt,omitempty"`
	DeliveryMethod  string     `json:"deliveryMethod"`
	Status          string     `json:"status"`
	ViewCount       int        `json:"viewCount"`
	TymSpent        int        `json:"tymSpent"`
	LastError       string     `json:"lastError,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	SentAt          *time.Time `json:"sentAt,omitempty"`
}

// CardSelection lists the paid items picked in the wizard
type CardSelection struct {
	EnvelopeID   *int64  `json:"envelopeId,omitempty"`
	StampID      *int64  `json:"stampId,omitempty"`
	MusicID      *int64  `json:"musicId,omitempty"`
	PhotoFrameID *int64  `json:"photoFrameId,omitempty"`
	StickerIDs   []int64 `json:"stickerIds,omitempty"`
}

// CreateCardRequest is the accumulated wizard state submitted once at the end
type CreateCardRequest struct {
	SenderID        int64         `json:"senderId"`
	RecipientName   string        `json:"recipientName"`
	RecipientEmail  string        `json:"recipientEmail"`
	RecipientPSID   string        `json:"recipientPsid"`
	Content         string        `json:"content"`
	Selection       CardSelection `json:"selection"`
	PhotoURLs       []string      `json:"photoUrls"`
	SignatureURL    string        `json:"signatureUrl"`
	BackgroundColor string        `json:"backgroundColor"`
	QREnabled       bool          `json:"qrEnabled"`
	Password        string        `json:"password"`
	ExpiresAt       *time.Time    `json:"expiresAt"`
	ScheduledAt     *time.Time    `json:"scheduledAt"`
	DeliveryMethod  string        `json:"deliveryMethod"`
}

// CreateCardResponse is returned after a card is created
type CreateCardResponse struct {
	Card     *Card       `json:"card"`
	ShareURL string      `json:"shareUrl"`
	Quote    *PriceQuote `json:"quote"`
	Delivery *SendResult `json:"delivery,omitempty"`
}

// PriceQuote is the Tym cost breakdown of a selection
type PriceQuote struct {
	Lines           []PriceLine `json:"lines"`
	Subtotal        int         `json:"subtotal"`
	Tier            string      `json:"tier"`
	DiscountPercent int         `json:"discountPercent"`
	Discount        int         `json:"discount"`
	Total           int         `json:"total"`
}

// PriceLine is one priced item of a quote
type PriceLine struct {
	Kind   string `json:"kind"`
	ItemID int64  `json:"itemId"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// CardDraft is the autosaved, in-progress wizard state of a user
type CardDraft struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	Step      int             `json:"step"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// SaveDraftRequest is the body for PUT /api/drafts/{userId}
type SaveDraftRequest struct {
	Step int             `json:"step"`
	Data json.RawMessage `json:"data"`
}

// QuoteRequest is the body for POST /api/cards/quote
type QuoteRequest struct {
	UserID    int64         `json:"userId"`
	Selection CardSelection `json:"selection"`
}
