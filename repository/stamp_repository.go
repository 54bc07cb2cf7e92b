package repository

import (
	"context"
	"log"

	"echo-vintage-ecard/db"
	"echo-vintage-ecard/models"
)

// StampRepository handles database operations for stamps
type StampRepository struct{}

// NewStampRepository creates a new StampRepository
func NewStampRepository() *StampRepository {
	return &StampRepository{}
}

var _ StampRepositoryInterface = (*StampRepository)(nil)

const stampColumns = `id, name, image_url, price_points, is_active, created_at`

func scanStamp(row rowScanner) (*models.Stamp, error) {
	var s models.Stamp
	if err := row.Scan(&s.ID, &s.Name, &s.ImageURL, &s.PricePoints, &s.IsActive, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StampRepository) List(ctx context.Context, activeOnly bool) ([]models.Stamp, error) {
	rows, err := db.DB.QueryContext(ctx,
		`SELECT `+stampColumns+` FROM stamps WHERE ($1 = FALSE OR is_active) ORDER BY name`, activeOnly)
	if err != nil {
		return nil, wrap("list stamps", err)
	}
	defer rows.Close()

	stamps := []models.Stamp{}
	for rows.Next() {
		s, err := scanStamp(rows)
		if err != nil {
			return nil, wrap("scan stamp", err)
		}
		stamps = append(stamps, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate stamps", err)
	}
	return stamps, nil
}

func (r *StampRepository) GetByID(ctx context.Context, id int64) (*models.Stamp, error) {
	s, err := scanStamp(db.DB.QueryRowContext(ctx, `SELECT `+stampColumns+` FROM stamps WHERE id = $1`, id))
	if err != nil {
		return nil, wrap("get stamp", err)
	}
	return s, nil
}

func (r *StampRepository) Create(ctx context.Context, s *models.Stamp) error {
	query := `
		INSERT INTO stamps (name, image_url, price_points, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := db.DB.QueryRowContext(ctx, query, s.Name, s.ImageURL, s.PricePoints, s.IsActive).Scan(&s.ID, &s.CreatedAt); err != nil {
		log.Printf("❌ Error creating stamp %s: %v", s.Name, err)
		return wrap("create stamp", err)
	}
	log.Printf("✅ Stamp created: id=%d", s.ID)
	return nil
}

func (r *StampRepository) Update(ctx context.Context, s *models.Stamp) error {
	return execOne(ctx, "update stamp",
		`UPDATE stamps SET name = $1, image_url = $2, price_points = $3, is_active = $4 WHERE id = $5`,
		s.Name, s.ImageURL, s.PricePoints, s.IsActive, s.ID)
}

func (r *StampRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, "delete stamp", `DELETE FROM stamps WHERE id = $1`, id)
}
