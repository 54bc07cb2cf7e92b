package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"echo-vintage-ecard/db"
	"echo-vintage-ecard/models"
)

// UserRepository handles admin operations on users
type UserRepository struct{}

// NewUserRepository creates a new UserRepository
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

var _ UserRepositoryInterface = (*UserRepository)(nil)

const userColumns = `id, email, display_name, role, points, subscription_tier, subscription_expires_at, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var expires sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.Points, &u.SubscriptionTier, &expires, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if expires.Valid {
		t := expires.Time
		u.SubscriptionExpiresAt = &t
	}
	return &u, nil
}

// List returns one page of users matching search (email or display name) and the total match count
func (r *UserRepository) List(ctx context.Context, search string, limit, offset int) ([]models.User, int, error) {
	log.Printf("🔍 Listing users: search=%q, limit=%d, offset=%d", search, limit, offset)

	pattern := "%" + search + "%"

	var total int
	countQuery := `SELECT COUNT(*) FROM users WHERE ($1 = '%%' OR email ILIKE $1 OR display_name ILIKE $1)`
	if err := db.DB.QueryRowContext(ctx, countQuery, pattern).Scan(&total); err != nil {
		log.Printf("❌ Error counting users: %v", err)
		return nil, 0, wrap("count users", err)
	}

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE ($1 = '%%' OR email ILIKE $1 OR display_name ILIKE $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := db.DB.QueryContext(ctx, query, pattern, limit, offset)
	if err != nil {
		log.Printf("❌ Error listing users: %v", err)
		return nil, 0, wrap("list users", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, wrap("scan user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrap("iterate users", err)
	}
	return users, total, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(db.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, wrap("get user", err)
	}
	return u, nil
}

// UpdateSubscription sets the tier and its expiry and returns the updated user
func (r *UserRepository) UpdateSubscription(ctx context.Context, id int64, tier string, expiresAt *time.Time) (*models.User, error) {
	log.Printf("🔄 Updating subscription: user=%d, tier=%s", id, tier)

	query := `
		UPDATE users
		SET subscription_tier = $1, subscription_expires_at = $2
		WHERE id = $3
		RETURNING ` + userColumns
	u, err := scanUser(db.DB.QueryRowContext(ctx, query, tier, expiresAt, id))
	if err != nil {
		log.Printf("❌ Error updating subscription for user %d: %v", id, err)
		return nil, wrap("update subscription", err)
	}

	log.Printf("✅ Subscription updated: user=%d, tier=%s", id, tier)
	return u, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	log.Printf("🔄 Updating role: user=%d, role=%s", id, role)
	return execOne(ctx, "update role", `UPDATE users SET role = $1 WHERE id = $2`, role, id)
}

// AdjustPoints adds delta (which may be negative) to the Tym balance and
// returns the new balance. The balance never drops below zero.
func (r *UserRepository) AdjustPoints(ctx context.Context, id int64, delta int) (int, error) {
	log.Printf("💰 Adjusting points: user=%d, delta=%d", id, delta)

	var balance int
	err := db.DB.QueryRowContext(ctx,
		`UPDATE users SET points = points + $1 WHERE id = $2 AND points + $1 >= 0 RETURNING points`,
		delta, id).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, wrap("adjust points", err)
	}

	// No row updated: either the user is missing or the balance would go negative
	var exists bool
	if err := db.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return 0, wrap("check user", err)
	}
	if !exists {
		return 0, ErrNotFound
	}
	return 0, ErrInsufficientPoints
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	log.Printf("🗑️  Deleting user id=%d", id)
	return execOne(ctx, "delete user", `DELETE FROM users WHERE id = $1`, id)
}
