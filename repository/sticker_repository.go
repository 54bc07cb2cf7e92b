package repository

import (
	"context"
	"log"

	"echo-vintage-ecard/db"
	"echo-vintage-ecard/models"
)

// StickerRepository handles database operations for stickers
type StickerRepository struct{}

// NewStickerRepository creates a new StickerRepository
func NewStickerRepository() *StickerRepository {
	return &StickerRepository{}
}

var _ StickerRepositoryInterface = (*StickerRepository)(nil)

const stickerColumns = `id, name, image_url, category, price_points, is_active, created_at`

func scanSticker(row rowScanner) (*models.Sticker, error) {
	var s models.Sticker
	if err := row.Scan(&s.ID, &s.Name, &s.ImageURL, &s.Category, &s.PricePoints, &s.IsActive, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns stickers, optionally restricted to one category
func (r *StickerRepository) List(ctx context.Context, category string, activeOnly bool) ([]models.Sticker, error) {
	query := `
		SELECT ` + stickerColumns + `
		FROM stickers
		WHERE ($1 = '' OR category = $1) AND ($2 = FALSE OR is_active)
		ORDER BY category, created_at DESC
	`
	rows, err := db.DB.QueryContext(ctx, query, category, activeOnly)
	if err != nil {
		log.Printf("❌ Error listing stickers (category=%q): %v", category, err)
		return nil, wrap("list stickers", err)
	}
	defer rows.Close()

	stickers := []models.Sticker{}
	for rows.Next() {
		s, err := scanSticker(rows)
		if err != nil {
			return nil, wrap("scan sticker", err)
		}
		stickers = append(stickers, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate stickers", err)
	}
	return stickers, nil
}

func (r *StickerRepository) GetByID(ctx context.Context, id int64) (*models.Sticker, error) {
	s, err := scanSticker(db.DB.QueryRowContext(ctx, `SELECT `+stickerColumns+` FROM stickers WHERE id = $1`, id))
	if err != nil {
		return nil, wrap("get sticker", err)
	}
	return s, nil
}

// Create inserts one sticker row. Batch uploads call it once per hosted file.
func (r *StickerRepository) Create(ctx context.Context, s *models.Sticker) error {
	query := `
		INSERT INTO stickers (name, image_url, category, price_points, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := db.DB.QueryRowContext(ctx, query, s.Name, s.ImageURL, s.Category, s.PricePoints, s.IsActive).Scan(&s.ID, &s.CreatedAt); err != nil {
		log.Printf("❌ Error creating sticker %s: %v", s.Name, err)
		return wrap("create sticker", err)
	}
	log.Printf("✅ Sticker created: id=%d, category=%s", s.ID, s.Category)
	return nil
}

func (r *StickerRepository) Update(ctx context.Context, s *models.Sticker) error {
	return execOne(ctx, "update sticker",
		`UPDATE stickers SET name = $1, image_url = $2, category = $3, price_points = $4, is_active = $5 WHERE id = $6`,
		s.Name, s.ImageURL, s.Category, s.PricePoints, s.IsActive, s.ID)
}

func (r *StickerRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, "delete sticker", `DELETE FROM stickers WHERE id = $1`, id)
}
