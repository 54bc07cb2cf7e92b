package controller

import (
	"bytes"
	"encoding/json"
	"net/http"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/repository"
	"echo-vintage-ecard/service"
)

// maxDraftStep is the last step of the card wizard
const maxDraftStep = 10

// DraftController handles wizard autosave requests
type DraftController struct {
	repository repository.DraftRepositoryInterface
}

// NewDraftController creates a new DraftController
func NewDraftController(repo repository.DraftRepositoryInterface) *DraftController {
	return &DraftController{repository: repo}
}

// Save handles PUT /api/drafts/{userId}
// Example request: {"step": 3, "data": {"recipientName": "Bruno", "envelopeId": 2}}
// The last write wins.
func (c *DraftController) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	var req models.SaveDraftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Step < 0 || req.Step > maxDraftStep {
		writeDomainError(w, "SaveDraft", &service.ValidationError{Field: "step", Msg: "is out of range"})
		return
	}
	data := bytes.TrimSpace(req.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		data = json.RawMessage(`{}`)
	}

	draft, err := c.repository.Upsert(r.Context(), userID, req.Step, data)
	if err != nil {
		writeDomainError(w, "SaveDraft", err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// Get handles GET /api/drafts/{userId}
func (c *DraftController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	draft, err := c.repository.GetByUserID(r.Context(), userID)
	if err != nil {
		writeDomainError(w, "GetDraft", err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// Delete handles DELETE /api/drafts/{userId}
func (c *DraftController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	if err := c.repository.DeleteByUserID(r.Context(), userID); err != nil {
		writeDomainError(w, "DeleteDraft", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
