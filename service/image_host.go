package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ImageHost stores an image and returns its public URL
type ImageHost interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// LocalImageHost writes images to a directory served under /uploads/
type LocalImageHost struct {
	dir     string
	baseURL string
}

var _ ImageHost = (*LocalImageHost)(nil)

// NewLocalImageHost creates the directory if needed
func NewLocalImageHost(dir, baseURL string) (*LocalImageHost, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalImageHost{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory images are written to
func (h *LocalImageHost) Dir() string { return h.dir }

func (h *LocalImageHost) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name = filepath.Base(name)
	path := filepath.Join(h.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	log.Printf("✓ Image stored locally: %s", path)
	return h.baseURL + "/uploads/" + name, nil
}
