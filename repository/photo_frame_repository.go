package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"echo-vintage-ecard/db"
	"echo-vintage-ecard/models"
	"echo-vintage-ecard/slots"
)

// PhotoFrameRepository handles database operations for photo frames
type PhotoFrameRepository struct{}

// NewPhotoFrameRepository creates a new PhotoFrameRepository
func NewPhotoFrameRepository() *PhotoFrameRepository {
	return &PhotoFrameRepository{}
}

var _ PhotoFrameRepositoryInterface = (*PhotoFrameRepository)(nil)

const photoFrameColumns = `id, name, frame_image_url, slots, price_points, is_active, created_at`

func scanPhotoFrame(row rowScanner) (*models.PhotoFrame, error) {
	var f models.PhotoFrame
	var rawSlots []byte
	if err := row.Scan(&f.ID, &f.Name, &f.FrameImageURL, &rawSlots, &f.PricePoints, &f.IsActive, &f.CreatedAt); err != nil {
		return nil, err
	}
	f.Slots = []slots.Slot{}
	if len(rawSlots) > 0 {
		if err := json.Unmarshal(rawSlots, &f.Slots); err != nil {
			return nil, fmt.Errorf("failed to decode slots of frame %d: %w", f.ID, err)
		}
	}
	return &f, nil
}

func encodeSlots(list []slots.Slot) ([]byte, error) {
	if list == nil {
		list = []slots.Slot{}
	}
	return json.Marshal(list)
}

func (r *PhotoFrameRepository) List(ctx context.Context, activeOnly bool) ([]models.PhotoFrame, error) {
	rows, err := db.DB.QueryContext(ctx,
		`SELECT `+photoFrameColumns+` FROM photo_frames WHERE ($1 = FALSE OR is_active) ORDER BY name`, activeOnly)
	if err != nil {
		log.Printf("❌ Error listing photo frames: %v", err)
		return nil, wrap("list photo frames", err)
	}
	defer rows.Close()

	frames := []models.PhotoFrame{}
	for rows.Next() {
		f, err := scanPhotoFrame(rows)
		if err != nil {
			return nil, wrap("scan photo frame", err)
		}
		frames = append(frames, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate photo frames", err)
	}
	return frames, nil
}

func (r *PhotoFrameRepository) GetByID(ctx context.Context, id int64) (*models.PhotoFrame, error) {
	f, err := scanPhotoFrame(db.DB.QueryRowContext(ctx, `SELECT `+photoFrameColumns+` FROM photo_frames WHERE id = $1`, id))
	if err != nil {
		return nil, wrap("get photo frame", err)
	}
	return f, nil
}

// Create inserts a frame. Slots are expected to be normalised by the caller.
func (r *PhotoFrameRepository) Create(ctx context.Context, f *models.PhotoFrame) error {
	raw, err := encodeSlots(f.Slots)
	if err != nil {
		return fmt.Errorf("failed to encode slots: %w", err)
	}

	query := `
		INSERT INTO photo_frames (name, frame_image_url, slots, price_points, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := db.DB.QueryRowContext(ctx, query, f.Name, f.FrameImageURL, raw, f.PricePoints, f.IsActive).Scan(&f.ID, &f.CreatedAt); err != nil {
		log.Printf("❌ Error creating photo frame %s: %v", f.Name, err)
		return wrap("create photo frame", err)
	}
	log.Printf("✅ Photo frame created: id=%d, slots=%d", f.ID, len(f.Slots))
	return nil
}

func (r *PhotoFrameRepository) Update(ctx context.Context, f *models.PhotoFrame) error {
	raw, err := encodeSlots(f.Slots)
	if err != nil {
		return fmt.Errorf("failed to encode slots: %w", err)
	}
	return execOne(ctx, "update photo frame",
		`UPDATE photo_frames SET name = $1, frame_image_url = $2, slots = $3, price_points = $4, is_active = $5 WHERE id = $6`,
		f.Name, f.FrameImageURL, raw, f.PricePoints, f.IsActive, f.ID)
}

// UpdateSlots replaces the slot list of a frame
func (r *PhotoFrameRepository) UpdateSlots(ctx context.Context, id int64, list []slots.Slot) error {
	raw, err := encodeSlots(list)
	if err != nil {
		return fmt.Errorf("failed to encode slots: %w", err)
	}
	return execOne(ctx, "update photo frame slots", `UPDATE photo_frames SET slots = $1 WHERE id = $2`, raw, id)
}

// Delete removes a frame unless a card still uses it. The reference check and
// the delete run in one transaction so a card created in between cannot slip through.
func (r *PhotoFrameRepository) Delete(ctx context.Context, id int64) error {
	log.Printf("🗑️  Deleting photo frame id=%d", id)

	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var lockedID int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM photo_frames WHERE id = $1 FOR UPDATE`, id).Scan(&lockedID); err != nil {
		return wrap("lock photo frame", err)
	}

	var inUse bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM cards WHERE photo_frame_id = $1)`, id).Scan(&inUse); err != nil {
		return wrap("check photo frame usage", err)
	}
	if inUse {
		log.Printf("⚠️  Photo frame id=%d is used by existing cards, refusing to delete", id)
		return ErrInUse
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM photo_frames WHERE id = $1`, id); err != nil {
		return wrap("delete photo frame", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("✅ Photo frame deleted: id=%d", id)
	return nil
}
