package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"echo-vintage-ecard/db"
	"echo-vintage-ecard/models"
)

// CardRepository handles database operations for cards
type CardRepository struct{}

// NewCardRepository creates a new CardRepository
func NewCardRepository() *CardRepository {
	return &CardRepository{}
}

var _ CardRepositoryInterface = (*CardRepository)(nil)

const cardColumns = `id, slug, sender_id, recipient_name, recipient_email, recipient_psid, content,
	envelope_id, stamp_id, music_id, photo_frame_id, sticker_ids, photo_urls, signature_url,
	background_color, qr_enabled, password_hash, expires_at, scheduled_at, delivery_method,
	status, view_count, tym_spent, last_error, created_at, sent_at`

func scanCard(row rowScanner) (*models.Card, error) {
	var c models.Card
	var envelopeID, stampID, musicID, frameID sql.NullInt64
	var stickerIDs, photoURLs []byte
	var expiresAt, scheduledAt, sentAt sql.NullTime

	err := row.Scan(
		&c.ID, &c.Slug, &c.SenderID, &c.RecipientName, &c.RecipientEmail, &c.RecipientPSID, &c.Content,
		&envelopeID, &stampID, &musicID, &frameID, &stickerIDs, &photoURLs, &c.SignatureURL,
		&c.BackgroundColor, &c.QREnabled, &c.PasswordHash, &expiresAt, &scheduledAt, &c.DeliveryMethod,
		&c.Status, &c.ViewCount, &c.TymSpent, &c.LastError, &c.CreatedAt, &sentAt,
	)
	if err != nil {
		return nil, err
	}

	c.EnvelopeID = nullInt(envelopeID)
	c.StampID = nullInt(stampID)
	c.MusicID = nullInt(musicID)
	c.PhotoFrameID = nullInt(frameID)
	c.ExpiresAt = nullTime(expiresAt)
	c.ScheduledAt = nullTime(scheduledAt)
	c.SentAt = nullTime(sentAt)
	c.HasPassword = c.PasswordHash != ""

	c.StickerIDs = []int64{}
	if len(stickerIDs) > 0 {
		if err := json.Unmarshal(stickerIDs, &c.StickerIDs); err != nil {
			return nil, fmt.Errorf("failed to decode sticker ids of card %d: %w", c.ID, err)
		}
	}
	c.PhotoURLs = []string{}
	if len(photoURLs) > 0 {
		if err := json.Unmarshal(photoURLs, &c.PhotoURLs); err != nil {
			return nil, fmt.Errorf("failed to decode photo urls of card %d: %w", c.ID, err)
		}
	}
	return &c, nil
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

// CreateWithCharge deducts cost Tym from the sender and inserts the card in a
// single transaction. The sender's draft is removed once the card exists.
func (r *CardRepository) CreateWithCharge(ctx context.Context, card *models.Card, cost int) error {
	log.Printf("💌 CreateWithCharge: sender=%d, cost=%d, slug=%s", card.SenderID, cost, card.Slug)

	stickerIDs := card.StickerIDs
	if stickerIDs == nil {
		stickerIDs = []int64{}
	}
	photoURLs := card.PhotoURLs
	if photoURLs == nil {
		photoURLs = []string{}
	}
	rawStickers, err := json.Marshal(stickerIDs)
	if err != nil {
		return fmt.Errorf("failed to encode sticker ids: %w", err)
	}
	rawPhotos, err := json.Marshal(photoURLs)
	if err != nil {
		return fmt.Errorf("failed to encode photo urls: %w", err)
	}

	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("❌ CreateWithCharge: Error starting transaction: %v", err)
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var points int
	err = tx.QueryRowContext(ctx, `SELECT points FROM users WHERE id = $1 FOR UPDATE`, card.SenderID).Scan(&points)
	if err != nil {
		log.Printf("❌ CreateWithCharge: Error locking sender %d: %v", card.SenderID, err)
		return wrap("lock sender", err)
	}
	if points < cost {
		log.Printf("❌ CreateWithCharge: sender %d has %d Tym, needs %d", card.SenderID, points, cost)
		return ErrInsufficientPoints
	}

	if cost > 0 {
		if _, err := tx.ExecContext(ctx, `UPDATE users SET points = points - $1 WHERE id = $2`, cost, card.SenderID); err != nil {
			return wrap("charge sender", err)
		}
	}

	query := `
		INSERT INTO cards (
			slug, sender_id, recipient_name, recipient_email, recipient_psid, content,
			envelope_id, stamp_id, music_id, photo_frame_id, sticker_ids, photo_urls,
			signature_url, background_color, qr_enabled, password_hash, expires_at,
			scheduled_at, delivery_method, status, tym_spent
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, query,
		card.Slug, card.SenderID, card.RecipientName, card.RecipientEmail, card.RecipientPSID, card.Content,
		card.EnvelopeID, card.StampID, card.MusicID, card.PhotoFrameID, rawStickers, rawPhotos,
		card.SignatureURL, card.BackgroundColor, card.QREnabled, card.PasswordHash, card.ExpiresAt,
		card.ScheduledAt, card.DeliveryMethod, card.Status, cost,
	).Scan(&card.ID, &card.CreatedAt)
	if err != nil {
		log.Printf("❌ CreateWithCharge: Error inserting card: %v", err)
		return wrap("insert card", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM card_drafts WHERE user_id = $1`, card.SenderID); err != nil {
		return wrap("clear draft", err)
	}

	if err := tx.Commit(); err != nil {
		log.Printf("❌ CreateWithCharge: Error committing: %v", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	card.TymSpent = cost
	card.HasPassword = card.PasswordHash != ""
	log.Printf("✅ Card created: id=%d, slug=%s, charged=%d", card.ID, card.Slug, cost)
	return nil
}

func (r *CardRepository) GetBySlug(ctx context.Context, slug string) (*models.Card, error) {
	c, err := scanCard(db.DB.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE slug = $1`, slug))
	if err != nil {
		return nil, wrap("get card", err)
	}
	return c, nil
}

// IncrementViews bumps the view counter and returns the new value
func (r *CardRepository) IncrementViews(ctx context.Context, id int64) (int, error) {
	var views int
	err := db.DB.QueryRowContext(ctx,
		`UPDATE cards SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count`, id).Scan(&views)
	if err != nil {
		return 0, wrap("increment views", err)
	}
	return views, nil
}

func (r *CardRepository) ListBySender(ctx context.Context, senderID int64, limit int) ([]models.Card, error) {
	rows, err := db.DB.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE sender_id = $1 ORDER BY created_at DESC LIMIT $2`, senderID, limit)
	if err != nil {
		return nil, wrap("list cards", err)
	}
	defer rows.Close()
	return collectCards(rows)
}

// ClaimLease is how long a claimed scheduled card may stay pending before
// another run claims it again.
const ClaimLease = 15 * time.Minute

// ClaimDue moves up to limit scheduled cards whose time has come to pending
// and returns them. Cards left pending by a run that died more than
// ClaimLease ago are claimed again. SKIP LOCKED lets several instances run
// the job safely.
func (r *CardRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]models.Card, error) {
	query := `
		UPDATE cards SET status = 'pending', claimed_at = $1
		WHERE id IN (
			SELECT id FROM cards
			WHERE scheduled_at <= $1
			  AND (status = 'scheduled' OR (status = 'pending' AND claimed_at <= $3))
			ORDER BY scheduled_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + cardColumns
	rows, err := db.DB.QueryContext(ctx, query, now, limit, now.Add(-ClaimLease))
	if err != nil {
		log.Printf("❌ ClaimDue: %v", err)
		return nil, wrap("claim due cards", err)
	}
	defer rows.Close()
	return collectCards(rows)
}

func (r *CardRepository) UpdateStatus(ctx context.Context, id int64, status string, lastError string, sentAt *time.Time) error {
	return execOne(ctx, "update card status",
		`UPDATE cards SET status = $1, last_error = $2, sent_at = COALESCE($3, sent_at) WHERE id = $4`,
		status, lastError, sentAt, id)
}

func collectCards(rows *sql.Rows) ([]models.Card, error) {
	cards := []models.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, wrap("scan card", err)
		}
		cards = append(cards, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate cards", err)
	}
	return cards, nil
}
