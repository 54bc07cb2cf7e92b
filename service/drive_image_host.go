package service

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveImageHost uploads images into a Google Drive folder and shares them publicly
type DriveImageHost struct {
	client   *drive.Service
	folderID string
}

var _ ImageHost = (*DriveImageHost)(nil)

// NewDriveImageHost creates a host from a Service Account JSON credentials file
func NewDriveImageHost(ctx context.Context, credentialsPath, folderID string) (*DriveImageHost, error) {
	client, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveImageHost{client: client, folderID: folderID}, nil
}

// Upload creates the file in the folder, grants anyone-with-link read access
// and returns the direct download URL.
func (h *DriveImageHost) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	file := &drive.File{
		Name:     name,
		MimeType: contentType,
	}
	if h.folderID != "" {
		file.Parents = []string{h.folderID}
	}

	created, err := h.client.Files.Create(file).
		Media(bytes.NewReader(data)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to drive: %w", name, err)
	}

	_, err = h.client.Permissions.Create(created.Id, &drive.Permission{Type: "anyone", Role: "reader"}).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to share drive file %s: %w", created.Id, err)
	}

	log.Printf("✓ Image uploaded to Drive: %s (id=%s)", name, created.Id)
	return fmt.Sprintf("https://drive.google.com/uc?id=%s", created.Id), nil
}
