package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/repository"
	"echo-vintage-ecard/service"
)

// maxMultipartMemory is kept in memory while parsing uploads; the rest spills to disk
const maxMultipartMemory = 32 << 20

// maxBatchFiles caps the number of files in one batch upload
const maxBatchFiles = 20

// maxBatchBytes caps a whole batch request body, form fields included
const maxBatchBytes = maxBatchFiles*service.MaxUploadBytes + 1<<20

// ImageUploader is the part of service.UploadService the controllers use
type ImageUploader interface {
	UploadImage(ctx context.Context, fileName string, data []byte, profile service.ImageProfile) (string, error)
	BatchCreateStickers(ctx context.Context, files []service.UploadFile, category string, pricePoints int) models.BatchUploadResponse
}

// StickerController handles HTTP requests for stickers
type StickerController struct {
	repository    repository.StickerRepositoryInterface
	uploads       ImageUploader
	maxBatchBytes int64
}

// NewStickerController creates a new StickerController
func NewStickerController(repo repository.StickerRepositoryInterface, uploads ImageUploader) *StickerController {
	return &StickerController{repository: repo, uploads: uploads, maxBatchBytes: maxBatchBytes}
}

func validateSticker(s *models.Sticker) error {
	s.Name = strings.TrimSpace(s.Name)
	s.Category = strings.TrimSpace(s.Category)
	if err := required("name", s.Name); err != nil {
		return err
	}
	if err := required("imageUrl", s.ImageURL); err != nil {
		return err
	}
	return nonNegative("pricePoints", s.PricePoints)
}

// List handles GET /admin/stickers?category=
func (c *StickerController) List(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, false)
}

// ListActive handles GET /api/stickers?category=
func (c *StickerController) ListActive(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, true)
}

func (c *StickerController) list(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	stickers, err := c.repository.List(r.Context(), category, activeOnly)
	if err != nil {
		writeDomainError(w, "ListStickers", err)
		return
	}
	writeJSON(w, http.StatusOK, stickers)
}

// Get handles GET /admin/stickers/{id}
func (c *StickerController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s, err := c.repository.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, "GetSticker", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Create handles POST /admin/stickers
func (c *StickerController) Create(w http.ResponseWriter, r *http.Request) {
	s := models.Sticker{IsActive: true}
	if !decodeJSON(w, r, &s) {
		return
	}
	if err := validateSticker(&s); err != nil {
		writeDomainError(w, "CreateSticker", err)
		return
	}
	if err := c.repository.Create(r.Context(), &s); err != nil {
		writeDomainError(w, "CreateSticker", err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// Update handles PUT /admin/stickers/{id}
func (c *StickerController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var s models.Sticker
	if !decodeJSON(w, r, &s) {
		return
	}
	s.ID = id
	if err := validateSticker(&s); err != nil {
		writeDomainError(w, "UpdateSticker", err)
		return
	}
	if err := c.repository.Update(r.Context(), &s); err != nil {
		writeDomainError(w, "UpdateSticker", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Delete handles DELETE /admin/stickers/{id}
func (c *StickerController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.repository.Delete(r.Context(), id); err != nil {
		writeDomainError(w, "DeleteSticker", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BatchUpload handles POST /admin/stickers/batch
// Multipart form fields: files[] (one or more images), category, pricePoints.
// Files are processed one at a time; the response lists created stickers,
// per-file errors and, if the client went away, the files never processed.
func (c *StickerController) BatchUpload(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 BatchUpload: Received %s request to %s", r.Method, r.URL.Path)

	tooLarge := fmt.Sprintf("batch exceeds %d MB", c.maxBatchBytes>>20)
	if r.ContentLength > c.maxBatchBytes {
		writeError(w, http.StatusRequestEntityTooLarge, tooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, c.maxBatchBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, tooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files[]"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["files"]
	}
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "at least one file is required in files[]")
		return
	}
	if len(headers) > maxBatchFiles {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d files can be uploaded at once", maxBatchFiles))
		return
	}

	category := strings.TrimSpace(r.FormValue("category"))
	if category == "" {
		category = "general"
	}
	pricePoints := 0
	if raw := strings.TrimSpace(r.FormValue("pricePoints")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "pricePoints must be a non-negative integer")
			return
		}
		pricePoints = v
	}

	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		files = append(files, service.UploadFile{
			Name: fh.Filename,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		})
	}

	resp := c.uploads.BatchCreateStickers(r.Context(), files, category, pricePoints)
	status := http.StatusCreated
	if len(resp.Created) == 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

// Upload handles POST /admin/uploads?profile=photo|sticker|thumb
// Multipart form field: file. Returns the hosted URL of the optimised image.
func (c *StickerController) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadBytes+maxMultipartMemory)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if len(data) > service.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file is too large")
		return
	}

	profile := service.ParseImageProfile(r.URL.Query().Get("profile"))
	url, err := c.uploads.UploadImage(r.Context(), header.Filename, data, profile)
	if err != nil {
		log.Printf("❌ Upload: %v", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, models.UploadResponse{URL: url, FileName: header.Filename, Bytes: len(data)})
}
