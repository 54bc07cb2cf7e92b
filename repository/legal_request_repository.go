package repository

import (
	"context"
	"log"

	"echo-vintage-ecard/db"
	"echo-vintage-ecard/models"
)

// LegalRequestRepository stores privacy, deletion and copyright requests
type LegalRequestRepository struct{}

// NewLegalRequestRepository creates a new LegalRequestRepository
func NewLegalRequestRepository() *LegalRequestRepository {
	return &LegalRequestRepository{}
}

var _ LegalRequestRepositoryInterface = (*LegalRequestRepository)(nil)

func (r *LegalRequestRepository) Create(ctx context.Context, req *models.LegalRequest) error {
	if req.Status == "" {
		req.Status = "open"
	}
	query := `
		INSERT INTO legal_requests (name, email, request_type, message, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := db.DB.QueryRowContext(ctx, query, req.Name, req.Email, req.RequestType, req.Message, req.Status).
		Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		log.Printf("❌ Error storing legal request from %s: %v", req.Email, err)
		return wrap("create legal request", err)
	}
	log.Printf("📨 Legal request stored: id=%d, type=%s", req.ID, req.RequestType)
	return nil
}

// List returns legal requests, newest first. An empty status returns all.
func (r *LegalRequestRepository) List(ctx context.Context, status string) ([]models.LegalRequest, error) {
	rows, err := db.DB.QueryContext(ctx, `
		SELECT id, name, email, request_type, message, status, created_at
		FROM legal_requests
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC`, status)
	if err != nil {
		return nil, wrap("list legal requests", err)
	}
	defer rows.Close()

	requests := []models.LegalRequest{}
	for rows.Next() {
		var lr models.LegalRequest
		if err := rows.Scan(&lr.ID, &lr.Name, &lr.Email, &lr.RequestType, &lr.Message, &lr.Status, &lr.CreatedAt); err != nil {
			return nil, wrap("scan legal request", err)
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate legal requests", err)
	}
	return requests, nil
}
