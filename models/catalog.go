package models

import (
	"time"

	"echo-vintage-ecard/slots"
)

// Envelope represents an envelope design users can pick for a card
type Envelope struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Pattern     string    `json:"pattern"`
	SealDesign  string    `json:"sealDesign"`
	PricePoints int       `json:"pricePoints"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Sticker represents a decorative sticker image
type Sticker struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	ImageURL    string    `json:"imageUrl"`
	Category    string    `json:"category"`
	PricePoints int       `json:"pricePoints"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PhotoFrame is a frame image with photo slots placed over it
type PhotoFrame struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	FrameImageURL string       `json:"frameImageUrl"`
	Slots         []slots.Slot `json:"slots"`
	PricePoints   int          `json:"pricePoints"`
	IsActive      bool         `json:"isActive"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// Stamp represents a postage stamp design
type Stamp struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	ImageURL    string    `json:"imageUrl"`
	PricePoints int       `json:"pricePoints"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MusicTrack represents background music played when a card is opened
type MusicTrack struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Artist          string    `json:"artist"`
	AudioURL        string    `json:"audioUrl"`
	DurationSeconds int       `json:"durationSeconds"`
	PricePoints     int       `json:"pricePoints"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
}

// SlotMoveRequest is the body for POST .../slots/{slotId}/move
type SlotMoveRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// SlotResizeRequest is the body for POST .../slots/{slotId}/resize
type SlotResizeRequest struct {
	Handle string  `json:"handle"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
}

// SlotRotateRequest is the body for POST .../slots/{slotId}/rotate.
// PointerX/PointerY are in frame percent.
type SlotRotateRequest struct {
	PointerX float64 `json:"pointerX"`
	PointerY float64 `json:"pointerY"`
}
