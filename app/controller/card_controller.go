package controller

import (
	"context"
	"log"
	"net/http"
	"strings"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/service"
)

// CardPasswordHeader carries the password of a protected card
const CardPasswordHeader = "X-Card-Password"

// CardManager is the part of service.CardService the controller uses
type CardManager interface {
	CreateCard(ctx context.Context, req models.CreateCardRequest) (*models.CreateCardResponse, error)
	Quote(ctx context.Context, userID int64, sel models.CardSelection) (*models.PriceQuote, error)
	OpenCard(ctx context.Context, slug, password string) (*models.Card, error)
	GetForRender(ctx context.Context, slug, password string) (*models.Card, error)
	ListSent(ctx context.Context, senderID int64) ([]models.Card, error)
	Resend(ctx context.Context, slug string) (*models.Card, models.SendResult, error)
	ShareURL(slug string) string
}

// CardRenderer renders a card for display, screenshots and printing
type CardRenderer interface {
	RenderHTML(ctx context.Context, card *models.Card) (string, error)
	RenderPNG(ctx context.Context, card *models.Card) ([]byte, error)
	RenderPDF(ctx context.Context, card *models.Card) ([]byte, error)
}

// CardController handles HTTP requests for sending and opening cards
type CardController struct {
	cards    CardManager
	renderer CardRenderer
}

// NewCardController creates a new CardController
func NewCardController(cards CardManager, renderer CardRenderer) *CardController {
	return &CardController{cards: cards, renderer: renderer}
}

// Create handles POST /api/cards
// Example request:
// {
//   "senderId": 7,
//   "recipientName": "Bruno",
//   "recipientEmail": "bruno@example.com",
//   "content": "<p>Happy birthday!</p>",
//   "selection": {"envelopeId": 1, "stampId": 3, "stickerIds": [4, 9]},
//   "qrEnabled": true,
//   "password": "cake",
//   "scheduledAt": "2026-03-01T08:00:00Z",
//   "deliveryMethod": "email"
// }
// Example response (201):
// {"card": {...}, "shareUrl": "https://.../card/5f0c...", "quote": {...}}
func (c *CardController) Create(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 CreateCard: Received %s request to %s", r.Method, r.URL.Path)

	var req models.CreateCardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := c.cards.CreateCard(r.Context(), req)
	if err != nil {
		writeDomainError(w, "CreateCard", err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Quote handles POST /api/cards/quote
// Example request: {"userId": 7, "selection": {"envelopeId": 1, "stickerIds": [4, 9]}}
func (c *CardController) Quote(w http.ResponseWriter, r *http.Request) {
	var req models.QuoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID <= 0 {
		writeDomainError(w, "QuoteCard", &service.ValidationError{Field: "userId", Msg: "must be greater than 0"})
		return
	}
	quote, err := c.cards.Quote(r.Context(), req.UserID, req.Selection)
	if err != nil {
		writeDomainError(w, "QuoteCard", err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func password(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(CardPasswordHeader))
}

// Open handles GET /api/cards/{slug}
// 410 when expired, 401 when the X-Card-Password header is missing or wrong.
func (c *CardController) Open(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	card, err := c.cards.OpenCard(r.Context(), slug, password(r))
	if err != nil {
		writeDomainError(w, "OpenCard", err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// QRCode handles GET /api/cards/{slug}/qr
func (c *CardController) QRCode(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	card, err := c.cards.GetForRender(r.Context(), slug, password(r))
	if err != nil {
		writeDomainError(w, "CardQRCode", err)
		return
	}
	if !card.QREnabled {
		writeError(w, http.StatusNotFound, "QR code is not enabled for this card")
		return
	}
	png, err := service.QRCodePNG(c.cards.ShareURL(card.Slug))
	if err != nil {
		writeDomainError(w, "CardQRCode", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// ListSent handles GET /api/users/{userId}/cards
func (c *CardController) ListSent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	cards, err := c.cards.ListSent(r.Context(), userID)
	if err != nil {
		writeDomainError(w, "ListSentCards", err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

// Resend handles POST /api/cards/{slug}/resend
func (c *CardController) Resend(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	card, result, err := c.cards.Resend(r.Context(), slug)
	if err != nil {
		writeDomainError(w, "ResendCard", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"card": card, "delivery": result})
}

// Render handles GET /api/cards/{slug}/render
func (c *CardController) Render(w http.ResponseWriter, r *http.Request) {
	card, err := c.cards.GetForRender(r.Context(), r.PathValue("slug"), password(r))
	if err != nil {
		writeDomainError(w, "RenderCard", err)
		return
	}
	page, err := c.renderer.RenderHTML(r.Context(), card)
	if err != nil {
		writeDomainError(w, "RenderCard", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(page))
}

// PreviewPNG handles GET /api/cards/{slug}/preview.png
func (c *CardController) PreviewPNG(w http.ResponseWriter, r *http.Request) {
	c.preview(w, r, "image/png", "png", c.renderer.RenderPNG)
}

// PreviewPDF handles GET /api/cards/{slug}/preview.pdf
func (c *CardController) PreviewPDF(w http.ResponseWriter, r *http.Request) {
	c.preview(w, r, "application/pdf", "pdf", c.renderer.RenderPDF)
}

func (c *CardController) preview(w http.ResponseWriter, r *http.Request, contentType, ext string, render func(context.Context, *models.Card) ([]byte, error)) {
	card, err := c.cards.GetForRender(r.Context(), r.PathValue("slug"), password(r))
	if err != nil {
		writeDomainError(w, "PreviewCard", err)
		return
	}
	data, err := render(r.Context(), card)
	if err != nil {
		writeDomainError(w, "PreviewCard", err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `inline; filename="card-`+card.Slug+`.`+ext+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
