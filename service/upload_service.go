package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/repository"
)

// MaxUploadBytes caps a single uploaded file
const MaxUploadBytes = 10 << 20

// UploadFile is one file of a batch; Open is called only when the file is processed
type UploadFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// UploadService optimises images, hosts them and records stickers
type UploadService struct {
	host     ImageHost
	stickers repository.StickerRepositoryInterface
}

// NewUploadService creates a new UploadService
func NewUploadService(host ImageHost, stickers repository.StickerRepositoryInterface) *UploadService {
	return &UploadService{host: host, stickers: stickers}
}

// UploadImage optimises data for the profile and returns the hosted URL
func (s *UploadService) UploadImage(ctx context.Context, fileName string, data []byte, profile ImageProfile) (string, error) {
	optimized, err := OptimizeImage(data, profile)
	if err != nil {
		return "", err
	}
	name := uuid.NewString() + profile.Extension()
	url, err := s.host.Upload(ctx, name, profile.ContentType(), optimized)
	if err != nil {
		return "", fmt.Errorf("failed to host %s: %w", fileName, err)
	}
	return url, nil
}

// BatchCreateStickers uploads files one after another and creates one sticker
// per hosted file. A failing file is reported and the loop moves on. When ctx
// is cancelled the loop stops and the untouched files are listed as canceled.
func (s *UploadService) BatchCreateStickers(ctx context.Context, files []UploadFile, category string, pricePoints int) models.BatchUploadResponse {
	resp := models.BatchUploadResponse{
		Created: []models.Sticker{},
		Errors:  []models.UploadError{},
		Total:   len(files),
	}
	log.Printf("📦 Batch sticker upload: %d files, category=%s", len(files), category)

	for i, f := range files {
		if ctx.Err() != nil {
			for _, rest := range files[i:] {
				resp.Canceled = append(resp.Canceled, rest.Name)
			}
			log.Printf("⏹️  Batch upload canceled after %d of %d files", i, len(files))
			break
		}

		sticker, err := s.createSticker(ctx, f, category, pricePoints)
		if err != nil {
			log.Printf("❌ Sticker upload failed for %s: %v", f.Name, err)
			resp.Errors = append(resp.Errors, models.UploadError{FileName: f.Name, Error: err.Error()})
			continue
		}
		resp.Created = append(resp.Created, *sticker)
	}

	log.Printf("🎉 Batch upload finished: %d created, %d failed, %d canceled", len(resp.Created), len(resp.Errors), len(resp.Canceled))
	return resp
}

func (s *UploadService) createSticker(ctx context.Context, f UploadFile, category string, pricePoints int) (*models.Sticker, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("file exceeds %d MB", MaxUploadBytes>>20)
	}

	url, err := s.UploadImage(ctx, f.Name, data, ProfileSticker)
	if err != nil {
		return nil, err
	}

	sticker := &models.Sticker{
		Name:        stickerName(f.Name),
		ImageURL:    url,
		Category:    category,
		PricePoints: pricePoints,
		IsActive:    true,
	}
	if err := s.stickers.Create(ctx, sticker); err != nil {
		return nil, err
	}
	return sticker, nil
}

// stickerName turns "happy_birthday-cake.png" into "happy birthday cake"
func stickerName(fileName string) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}
