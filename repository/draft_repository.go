package repository

import (
	"context"
	"encoding/json"
	"log"

	"echo-vintage-ecard/db"
	"echo-vintage-ecard/models"
)

// DraftRepository stores the autosaved wizard state, one draft per user
type DraftRepository struct{}

// NewDraftRepository creates a new DraftRepository
func NewDraftRepository() *DraftRepository {
	return &DraftRepository{}
}

var _ DraftRepositoryInterface = (*DraftRepository)(nil)

// Upsert saves the draft of a user. The latest save wins.
func (r *DraftRepository) Upsert(ctx context.Context, userID int64, step int, data json.RawMessage) (*models.CardDraft, error) {
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO card_drafts (user_id, step, data, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET step = EXCLUDED.step, data = EXCLUDED.data, updated_at = NOW()
		RETURNING id, user_id, step, data, updated_at
	`
	var d models.CardDraft
	var raw []byte
	err := db.DB.QueryRowContext(ctx, query, userID, step, []byte(data)).Scan(&d.ID, &d.UserID, &d.Step, &raw, &d.UpdatedAt)
	if err != nil {
		log.Printf("❌ Error saving draft for user %d: %v", userID, err)
		return nil, wrap("save draft", err)
	}
	d.Data = json.RawMessage(raw)
	return &d, nil
}

func (r *DraftRepository) GetByUserID(ctx context.Context, userID int64) (*models.CardDraft, error) {
	var d models.CardDraft
	var raw []byte
	err := db.DB.QueryRowContext(ctx,
		`SELECT id, user_id, step, data, updated_at FROM card_drafts WHERE user_id = $1`, userID).
		Scan(&d.ID, &d.UserID, &d.Step, &raw, &d.UpdatedAt)
	if err != nil {
		return nil, wrap("get draft", err)
	}
	d.Data = json.RawMessage(raw)
	return &d, nil
}

func (r *DraftRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	return execOne(ctx, "delete draft", `DELETE FROM card_drafts WHERE user_id = $1`, userID)
}
