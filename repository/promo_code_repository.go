package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"echo-vintage-ecard/db"
	"echo-vintage-ecard/models"
)

// PromoCodeRepository handles promo codes and their redemptions
type PromoCodeRepository struct{}

// NewPromoCodeRepository creates a new PromoCodeRepository
func NewPromoCodeRepository() *PromoCodeRepository {
	return &PromoCodeRepository{}
}

var _ PromoCodeRepositoryInterface = (*PromoCodeRepository)(nil)

func (r *PromoCodeRepository) List(ctx context.Context) ([]models.PromoCode, error) {
	rows, err := db.DB.QueryContext(ctx, `
		SELECT id, code, points, max_redemptions, redeemed_count, expires_at, is_active, created_at
		FROM promo_codes ORDER BY created_at DESC`)
	if err != nil {
		return nil, wrap("list promo codes", err)
	}
	defer rows.Close()

	codes := []models.PromoCode{}
	for rows.Next() {
		var p models.PromoCode
		var expires sql.NullTime
		if err := rows.Scan(&p.ID, &p.Code, &p.Points, &p.MaxRedemptions, &p.RedeemedCount, &expires, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, wrap("scan promo code", err)
		}
		p.ExpiresAt = nullTime(expires)
		codes = append(codes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate promo codes", err)
	}
	return codes, nil
}

// Create inserts a promo code. Codes are stored upper-case.
func (r *PromoCodeRepository) Create(ctx context.Context, p *models.PromoCode) error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	query := `
		INSERT INTO promo_codes (code, points, max_redemptions, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := db.DB.QueryRowContext(ctx, query, p.Code, p.Points, p.MaxRedemptions, p.ExpiresAt, p.IsActive).Scan(&p.ID, &p.CreatedAt); err != nil {
		log.Printf("❌ Error creating promo code %s: %v", p.Code, err)
		return wrap("create promo code", err)
	}
	log.Printf("✅ Promo code created: %s (%d Tym)", p.Code, p.Points)
	return nil
}

// Redeem credits the code's points to the user. Validation, the redemption
// record and the balance update happen in one transaction.
func (r *PromoCodeRepository) Redeem(ctx context.Context, code string, userID int64, now time.Time) (*models.RedeemPromoResponse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	log.Printf("🎟️  Redeem: code=%s, user=%d", code, userID)

	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var p models.PromoCode
	var expires sql.NullTime
	err = tx.QueryRowContext(ctx, `
		SELECT id, points, max_redemptions, redeemed_count, expires_at, is_active
		FROM promo_codes WHERE code = $1 FOR UPDATE`, code).
		Scan(&p.ID, &p.Points, &p.MaxRedemptions, &p.RedeemedCount, &expires, &p.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPromoInvalid
	}
	if err != nil {
		return nil, wrap("lock promo code", err)
	}
	if !p.IsActive || (expires.Valid && !expires.Time.After(now)) {
		return nil, ErrPromoInvalid
	}
	if p.MaxRedemptions > 0 && p.RedeemedCount >= p.MaxRedemptions {
		return nil, ErrPromoExhausted
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO promo_redemptions (promo_code_id, user_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, p.ID, userID)
	if err != nil {
		err = wrap("record redemption", err)
		if errors.Is(err, ErrInUse) {
			// foreign key on user_id
			return nil, ErrNotFound
		}
		return nil, err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrPromoAlreadyRedeemed
	}

	if _, err := tx.ExecContext(ctx, `UPDATE promo_codes SET redeemed_count = redeemed_count + 1 WHERE id = $1`, p.ID); err != nil {
		return nil, wrap("count redemption", err)
	}

	var balance int
	err = tx.QueryRowContext(ctx, `UPDATE users SET points = points + $1 WHERE id = $2 RETURNING points`, p.Points, userID).Scan(&balance)
	if err != nil {
		return nil, wrap("credit points", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("✅ Redeem: code=%s credited %d Tym to user %d (balance=%d)", code, p.Points, userID, balance)
	return &models.RedeemPromoResponse{Code: code, PointsAwarded: p.Points, Balance: balance}, nil
}
