package repository

import (
	"context"
	"log"

	"echo-vintage-ecard/db"
	"echo-vintage-ecard/models"
)

// EnvelopeRepository handles database operations for envelopes
type EnvelopeRepository struct{}

// NewEnvelopeRepository creates a new EnvelopeRepository
func NewEnvelopeRepository() *EnvelopeRepository {
	return &EnvelopeRepository{}
}

var _ EnvelopeRepositoryInterface = (*EnvelopeRepository)(nil)

const envelopeColumns = `id, name, color, pattern, seal_design, price_points, is_active, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEnvelope(row rowScanner) (*models.Envelope, error) {
	var e models.Envelope
	err := row.Scan(&e.ID, &e.Name, &e.Color, &e.Pattern, &e.SealDesign, &e.PricePoints, &e.IsActive, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns envelopes ordered by name. activeOnly hides retired designs.
func (r *EnvelopeRepository) List(ctx context.Context, activeOnly bool) ([]models.Envelope, error) {
	query := `SELECT ` + envelopeColumns + ` FROM envelopes WHERE ($1 = FALSE OR is_active) ORDER BY name`

	rows, err := db.DB.QueryContext(ctx, query, activeOnly)
	if err != nil {
		log.Printf("❌ Error listing envelopes: %v", err)
		return nil, wrap("list envelopes", err)
	}
	defer rows.Close()

	envelopes := []models.Envelope{}
	for rows.Next() {
		e, err := scanEnvelope(rows)
		if err != nil {
			return nil, wrap("scan envelope", err)
		}
		envelopes = append(envelopes, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate envelopes", err)
	}
	return envelopes, nil
}

// GetByID retrieves an envelope by its ID
func (r *EnvelopeRepository) GetByID(ctx context.Context, id int64) (*models.Envelope, error) {
	query := `SELECT ` + envelopeColumns + ` FROM envelopes WHERE id = $1`
	e, err := scanEnvelope(db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrap("get envelope", err)
	}
	return e, nil
}

// Create inserts an envelope and fills in its ID and creation time
func (r *EnvelopeRepository) Create(ctx context.Context, e *models.Envelope) error {
	log.Printf("💾 Creating envelope: name=%s", e.Name)

	query := `
		INSERT INTO envelopes (name, color, pattern, seal_design, price_points, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := db.DB.QueryRowContext(ctx, query, e.Name, e.Color, e.Pattern, e.SealDesign, e.PricePoints, e.IsActive).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		log.Printf("❌ Error creating envelope %s: %v", e.Name, err)
		return wrap("create envelope", err)
	}

	log.Printf("✅ Envelope created: id=%d", e.ID)
	return nil
}

// Update overwrites every editable field of an envelope
func (r *EnvelopeRepository) Update(ctx context.Context, e *models.Envelope) error {
	query := `
		UPDATE envelopes
		SET name = $1, color = $2, pattern = $3, seal_design = $4, price_points = $5, is_active = $6
		WHERE id = $7
	`
	return execOne(ctx, "update envelope", query, e.Name, e.Color, e.Pattern, e.SealDesign, e.PricePoints, e.IsActive, e.ID)
}

// Delete removes an envelope. Envelopes used by cards are protected by the foreign key.
func (r *EnvelopeRepository) Delete(ctx context.Context, id int64) error {
	log.Printf("🗑️  Deleting envelope id=%d", id)
	return execOne(ctx, "delete envelope", `DELETE FROM envelopes WHERE id = $1`, id)
}
