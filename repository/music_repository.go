package repository

import (
	"context"
	"log"

	"echo-vintage-ecard/db"
	"echo-vintage-ecard/models"
)

// MusicRepository handles database operations for music tracks
type MusicRepository struct{}

// NewMusicRepository creates a new MusicRepository
func NewMusicRepository() *MusicRepository {
	return &MusicRepository{}
}

var _ MusicRepositoryInterface = (*MusicRepository)(nil)

const musicColumns = `id, title, artist, audio_url, duration_seconds, price_points, is_active, created_at`

func scanMusic(row rowScanner) (*models.MusicTrack, error) {
	var m models.MusicTrack
	err := row.Scan(&m.ID, &m.Title, &m.Artist, &m.AudioURL, &m.DurationSeconds, &m.PricePoints, &m.IsActive, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MusicRepository) List(ctx context.Context, activeOnly bool) ([]models.MusicTrack, error) {
	rows, err := db.DB.QueryContext(ctx,
		`SELECT `+musicColumns+` FROM music WHERE ($1 = FALSE OR is_active) ORDER BY title`, activeOnly)
	if err != nil {
		return nil, wrap("list music", err)
	}
	defer rows.Close()

	tracks := []models.MusicTrack{}
	for rows.Next() {
		m, err := scanMusic(rows)
		if err != nil {
			return nil, wrap("scan music", err)
		}
		tracks = append(tracks, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate music", err)
	}
	return tracks, nil
}

func (r *MusicRepository) GetByID(ctx context.Context, id int64) (*models.MusicTrack, error) {
	m, err := scanMusic(db.DB.QueryRowContext(ctx, `SELECT `+musicColumns+` FROM music WHERE id = $1`, id))
	if err != nil {
		return nil, wrap("get music", err)
	}
	return m, nil
}

func (r *MusicRepository) Create(ctx context.Context, m *models.MusicTrack) error {
	query := `
		INSERT INTO music (title, artist, audio_url, duration_seconds, price_points, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := db.DB.QueryRowContext(ctx, query, m.Title, m.Artist, m.AudioURL, m.DurationSeconds, m.PricePoints, m.IsActive).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		log.Printf("❌ Error creating music track %s: %v", m.Title, err)
		return wrap("create music", err)
	}
	log.Printf("✅ Music track created: id=%d", m.ID)
	return nil
}

func (r *MusicRepository) Update(ctx context.Context, m *models.MusicTrack) error {
	return execOne(ctx, "update music",
		`UPDATE music SET title = $1, artist = $2, audio_url = $3, duration_seconds = $4, price_points = $5, is_active = $6 WHERE id = $7`,
		m.Title, m.Artist, m.AudioURL, m.DurationSeconds, m.PricePoints, m.IsActive, m.ID)
}

func (r *MusicRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, "delete music", `DELETE FROM music WHERE id = $1`, id)
}
