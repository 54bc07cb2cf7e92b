package controller

import (
	"log"
	"net/http"
	"strings"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/repository"
)

// EnvelopeController handles HTTP requests for envelopes
type EnvelopeController struct {
	repository repository.EnvelopeRepositoryInterface
}

// NewEnvelopeController creates a new EnvelopeController
func NewEnvelopeController(repo repository.EnvelopeRepositoryInterface) *EnvelopeController {
	return &EnvelopeController{repository: repo}
}

func validateEnvelope(e *models.Envelope) error {
	e.Name = strings.TrimSpace(e.Name)
	if err := required("name", e.Name); err != nil {
		return err
	}
	return nonNegative("pricePoints", e.PricePoints)
}

// List handles GET /admin/envelopes
func (c *EnvelopeController) List(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, false)
}

// ListActive handles GET /api/envelopes
func (c *EnvelopeController) ListActive(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, true)
}

func (c *EnvelopeController) list(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	envelopes, err := c.repository.List(r.Context(), activeOnly)
	if err != nil {
		writeDomainError(w, "ListEnvelopes", err)
		return
	}
	log.Printf("✅ ListEnvelopes: %d envelopes (activeOnly=%v)", len(envelopes), activeOnly)
	writeJSON(w, http.StatusOK, envelopes)
}

// Get handles GET /admin/envelopes/{id}
func (c *EnvelopeController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	e, err := c.repository.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, "GetEnvelope", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Create handles POST /admin/envelopes
// Example request:
// {
//   "name": "Rose Garden",
//   "color": "#c0392b",
//   "pattern": "floral",
//   "sealDesign": "heart",
//   "pricePoints": 10
// }
func (c *EnvelopeController) Create(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 CreateEnvelope: Received %s request to %s", r.Method, r.URL.Path)

	e := models.Envelope{IsActive: true}
	if !decodeJSON(w, r, &e) {
		return
	}
	if err := validateEnvelope(&e); err != nil {
		writeDomainError(w, "CreateEnvelope", err)
		return
	}
	if err := c.repository.Create(r.Context(), &e); err != nil {
		writeDomainError(w, "CreateEnvelope", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// Update handles PUT /admin/envelopes/{id}
func (c *EnvelopeController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var e models.Envelope
	if !decodeJSON(w, r, &e) {
		return
	}
	e.ID = id
	if err := validateEnvelope(&e); err != nil {
		writeDomainError(w, "UpdateEnvelope", err)
		return
	}
	if err := c.repository.Update(r.Context(), &e); err != nil {
		writeDomainError(w, "UpdateEnvelope", err)
		return
	}
	updated, err := c.repository.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, "UpdateEnvelope", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /admin/envelopes/{id}
func (c *EnvelopeController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.repository.Delete(r.Context(), id); err != nil {
		writeDomainError(w, "DeleteEnvelope", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
