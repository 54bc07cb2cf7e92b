package controller

import (
	"net/http"
	"strings"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/repository"
	"echo-vintage-ecard/service"
)

// MusicController handles HTTP requests for background music tracks
type MusicController struct {
	repository repository.MusicRepositoryInterface
}

// NewMusicController creates a new MusicController
func NewMusicController(repo repository.MusicRepositoryInterface) *MusicController {
	return &MusicController{repository: repo}
}

func validateMusic(m *models.MusicTrack) error {
	m.Title = strings.TrimSpace(m.Title)
	if err := required("title", m.Title); err != nil {
		return err
	}
	if err := required("audioUrl", m.AudioURL); err != nil {
		return err
	}
	if m.DurationSeconds < 0 {
		return &service.ValidationError{Field: "durationSeconds", Msg: "must not be negative"}
	}
	return nonNegative("pricePoints", m.PricePoints)
}

// List handles GET /admin/music
func (c *MusicController) List(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, false)
}

// ListActive handles GET /api/music
func (c *MusicController) ListActive(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, true)
}

func (c *MusicController) list(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	tracks, err := c.repository.List(r.Context(), activeOnly)
	if err != nil {
		writeDomainError(w, "ListMusic", err)
		return
	}
	writeJSON(w, http.StatusOK, tracks)
}

// Get handles GET /admin/music/{id}
func (c *MusicController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	m, err := c.repository.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, "GetMusic", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Create handles POST /admin/music
func (c *MusicController) Create(w http.ResponseWriter, r *http.Request) {
	m := models.MusicTrack{IsActive: true}
	if !decodeJSON(w, r, &m) {
		return
	}
	if err := validateMusic(&m); err != nil {
		writeDomainError(w, "CreateMusic", err)
		return
	}
	if err := c.repository.Create(r.Context(), &m); err != nil {
		writeDomainError(w, "CreateMusic", err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// Update handles PUT /admin/music/{id}
func (c *MusicController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var m models.MusicTrack
	if !decodeJSON(w, r, &m) {
		return
	}
	m.ID = id
	if err := validateMusic(&m); err != nil {
		writeDomainError(w, "UpdateMusic", err)
		return
	}
	if err := c.repository.Update(r.Context(), &m); err != nil {
		writeDomainError(w, "UpdateMusic", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Delete handles DELETE /admin/music/{id}
func (c *MusicController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.repository.Delete(r.Context(), id); err != nil {
		writeDomainError(w, "DeleteMusic", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
