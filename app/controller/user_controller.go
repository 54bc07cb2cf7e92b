package controller

import (
	"log"
	"net/http"
	"strings"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/repository"
	"echo-vintage-ecard/service"
)

const (
	defaultUserPageSize = 50
	maxUserPageSize     = 200
)

var validTiers = map[string]bool{models.TierFree: true, models.TierPlus: true, models.TierPremium: true}
var validRoles = map[string]bool{models.RoleUser: true, models.RoleAdmin: true}

// UserController handles admin HTTP requests for users
type UserController struct {
	repository repository.UserRepositoryInterface
}

// NewUserController creates a new UserController
func NewUserController(repo repository.UserRepositoryInterface) *UserController {
	return &UserController{repository: repo}
}

// List handles GET /admin/users?search=&limit=&offset=
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultUserPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit <= 0 || limit > maxUserPageSize {
		limit = defaultUserPageSize
	}
	if offset < 0 {
		offset = 0
	}
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	users, total, err := c.repository.List(r.Context(), search, limit, offset)
	if err != nil {
		writeDomainError(w, "ListUsers", err)
		return
	}
	writeJSON(w, http.StatusOK, models.UserListResponse{Users: users, Total: total, Limit: limit, Offset: offset})
}

// Get handles GET /admin/users/{id}
func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u, err := c.repository.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, "GetUser", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UpdateSubscription handles PUT /admin/users/{id}/subscription
// Example request: {"tier": "premium", "expiresAt": "2026-12-31T23:59:59Z"}
// The free tier never expires, so its expiresAt is dropped.
func (c *UserController) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.UpdateSubscriptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Tier = strings.ToLower(strings.TrimSpace(req.Tier))
	if !validTiers[req.Tier] {
		writeDomainError(w, "UpdateSubscription", &service.ValidationError{Field: "tier", Msg: "must be free, plus or premium"})
		return
	}
	if req.Tier == models.TierFree {
		req.ExpiresAt = nil
	}

	u, err := c.repository.UpdateSubscription(r.Context(), id, req.Tier, req.ExpiresAt)
	if err != nil {
		writeDomainError(w, "UpdateSubscription", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UpdateRole handles PUT /admin/users/{id}/role
func (c *UserController) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.UpdateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if !validRoles[req.Role] {
		writeDomainError(w, "UpdateRole", &service.ValidationError{Field: "role", Msg: "must be user or admin"})
		return
	}
	if err := c.repository.UpdateRole(r.Context(), id, req.Role); err != nil {
		writeDomainError(w, "UpdateRole", err)
		return
	}
	u, err := c.repository.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, "UpdateRole", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// AdjustPoints handles POST /admin/users/{id}/points
// Example request: {"delta": -20, "reason": "refund reversal"}
func (c *UserController) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.AdjustPointsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Delta == 0 {
		writeDomainError(w, "AdjustPoints", &service.ValidationError{Field: "delta", Msg: "must not be zero"})
		return
	}

	balance, err := c.repository.AdjustPoints(r.Context(), id, req.Delta)
	if err != nil {
		writeDomainError(w, "AdjustPoints", err)
		return
	}
	log.Printf("✅ AdjustPoints: user=%d delta=%d reason=%q balance=%d", id, req.Delta, req.Reason, balance)
	writeJSON(w, http.StatusOK, map[string]interface{}{"userId": id, "points": balance})
}

// Delete handles DELETE /admin/users/{id}
func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.repository.Delete(r.Context(), id); err != nil {
		writeDomainError(w, "DeleteUser", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
