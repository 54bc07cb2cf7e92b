package controller

import (
	"net/http"
	"strings"
	"time"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/repository"
	"echo-vintage-ecard/service"
)

// PromoController handles promo code requests
type PromoController struct {
	repository repository.PromoCodeRepositoryInterface
	now        func() time.Time
}

// NewPromoController creates a new PromoController
func NewPromoController(repo repository.PromoCodeRepositoryInterface) *PromoController {
	return &PromoController{repository: repo, now: time.Now}
}

// Redeem handles POST /api/promo-codes/redeem
// Example request: {"code": "WELCOME50", "userId": 7}
// Example response: {"code": "WELCOME50", "pointsAwarded": 50, "balance": 120}
func (c *PromoController) Redeem(w http.ResponseWriter, r *http.Request) {
	var req models.RedeemPromoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := required("code", req.Code); err != nil {
		writeDomainError(w, "RedeemPromo", err)
		return
	}
	if req.UserID <= 0 {
		writeDomainError(w, "RedeemPromo", &service.ValidationError{Field: "userId", Msg: "must be greater than 0"})
		return
	}

	resp, err := c.repository.Redeem(r.Context(), req.Code, req.UserID, c.now())
	if err != nil {
		writeDomainError(w, "RedeemPromo", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// List handles GET /admin/promo-codes
func (c *PromoController) List(w http.ResponseWriter, r *http.Request) {
	codes, err := c.repository.List(r.Context())
	if err != nil {
		writeDomainError(w, "ListPromoCodes", err)
		return
	}
	writeJSON(w, http.StatusOK, codes)
}

// Create handles POST /admin/promo-codes
// Example request: {"code": "welcome50", "points": 50, "maxRedemptions": 500, "expiresAt": "2026-12-31T00:00:00Z"}
func (c *PromoController) Create(w http.ResponseWriter, r *http.Request) {
	p := models.PromoCode{IsActive: true}
	if !decodeJSON(w, r, &p) {
		return
	}
	p.Code = strings.TrimSpace(p.Code)
	var verr error
	switch {
	case p.Code == "":
		verr = &service.ValidationError{Field: "code", Msg: "is required"}
	case strings.ContainsAny(p.Code, " \t\n"):
		verr = &service.ValidationError{Field: "code", Msg: "must not contain spaces"}
	case p.Points <= 0:
		verr = &service.ValidationError{Field: "points", Msg: "must be greater than 0"}
	case p.MaxRedemptions < 0:
		verr = &service.ValidationError{Field: "maxRedemptions", Msg: "must not be negative"}
	case p.ExpiresAt != nil && !p.ExpiresAt.After(c.now()):
		verr = &service.ValidationError{Field: "expiresAt", Msg: "must be in the future"}
	}
	if verr != nil {
		writeDomainError(w, "CreatePromoCode", verr)
		return
	}

	if err := c.repository.Create(r.Context(), &p); err != nil {
		writeDomainError(w, "CreatePromoCode", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}
