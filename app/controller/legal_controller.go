package controller

import (
	"context"
	"net/http"
	"strings"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/repository"
)

// LegalSubmitter stores a legal request and acknowledges it
type LegalSubmitter interface {
	Submit(ctx context.Context, req *models.LegalRequest) (models.SendResult, error)
}

// LegalController handles privacy, deletion and copyright requests
type LegalController struct {
	service    LegalSubmitter
	repository repository.LegalRequestRepositoryInterface
}

// NewLegalController creates a new LegalController
func NewLegalController(svc LegalSubmitter, repo repository.LegalRequestRepositoryInterface) *LegalController {
	return &LegalController{service: svc, repository: repo}
}

// Submit handles POST /api/legal-requests
// Example request:
// {"name": "Carla", "email": "carla@example.com", "requestType": "deletion", "message": "Please remove my data"}
func (c *LegalController) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.LegalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ack, err := c.service.Submit(r.Context(), &req)
	if err != nil {
		writeDomainError(w, "SubmitLegalRequest", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"request": req, "acknowledged": ack.Success})
}

// List handles GET /admin/legal-requests?status=
func (c *LegalController) List(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	requests, err := c.repository.List(r.Context(), status)
	if err != nil {
		writeDomainError(w, "ListLegalRequests", err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}
