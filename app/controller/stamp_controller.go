package controller

import (
	"net/http"
	"strings"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/repository"
)

// StampController handles HTTP requests for stamps
type StampController struct {
	repository repository.StampRepositoryInterface
}

// NewStampController creates a new StampController
func NewStampController(repo repository.StampRepositoryInterface) *StampController {
	return &StampController{repository: repo}
}

func validateStamp(s *models.Stamp) error {
	s.Name = strings.TrimSpace(s.Name)
	if err := required("name", s.Name); err != nil {
		return err
	}
	if err := required("imageUrl", s.ImageURL); err != nil {
		return err
	}
	return nonNegative("pricePoints", s.PricePoints)
}

// List handles GET /admin/stamps
func (c *StampController) List(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, false)
}

// ListActive handles GET /api/stamps
func (c *StampController) ListActive(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, true)
}

func (c *StampController) list(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	stamps, err := c.repository.List(r.Context(), activeOnly)
	if err != nil {
		writeDomainError(w, "ListStamps", err)
		return
	}
	writeJSON(w, http.StatusOK, stamps)
}

// Get handles GET /admin/stamps/{id}
func (c *StampController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s, err := c.repository.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, "GetStamp", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Create handles POST /admin/stamps
func (c *StampController) Create(w http.ResponseWriter, r *http.Request) {
	s := models.Stamp{IsActive: true}
	if !decodeJSON(w, r, &s) {
		return
	}
	if err := validateStamp(&s); err != nil {
		writeDomainError(w, "CreateStamp", err)
		return
	}
	if err := c.repository.Create(r.Context(), &s); err != nil {
		writeDomainError(w, "CreateStamp", err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// Update handles PUT /admin/stamps/{id}
func (c *StampController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var s models.Stamp
	if !decodeJSON(w, r, &s) {
		return
	}
	s.ID = id
	if err := validateStamp(&s); err != nil {
		writeDomainError(w, "UpdateStamp", err)
		return
	}
	if err := c.repository.Update(r.Context(), &s); err != nil {
		writeDomainError(w, "UpdateStamp", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Delete handles DELETE /admin/stamps/{id}
func (c *StampController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.repository.Delete(r.Context(), id); err != nil {
		writeDomainError(w, "DeleteStamp", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
