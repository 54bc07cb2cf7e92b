package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgconn"

	"echo-vintage-ecard/db"
)

var (
	// ErrNotFound is returned when the requested row does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint is violated
	ErrConflict = errors.New("already exists")
	// ErrInUse is returned when a row cannot be removed because other rows reference it
	ErrInUse = errors.New("still referenced by existing cards")
	// ErrInsufficientPoints is returned when a user cannot afford a charge
	ErrInsufficientPoints = errors.New("not enough Tym")
	// ErrPromoInvalid covers unknown, inactive and expired promo codes
	ErrPromoInvalid = errors.New("promo code is invalid or expired")
	// ErrPromoExhausted is returned when a promo code reached its redemption limit
	ErrPromoExhausted = errors.New("promo code has no redemptions left")
	// ErrPromoAlreadyRedeemed is returned when the user already used the code
	ErrPromoAlreadyRedeemed = errors.New("promo code already redeemed by this user")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// classify maps driver errors onto the sentinel errors above
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrInUse, pgErr.ConstraintName)
		}
	}
	return err
}

// wrap classifies err and otherwise prefixes it with the failed operation
func wrap(op string, err error) error {
	if c := classify(err); c != err {
		return c
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// execOne runs a statement that must touch exactly one row
func execOne(ctx context.Context, op string, query string, args ...interface{}) error {
	result, err := db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Printf("❌ %s: %v", op, err)
		return wrap(op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("⚠️  Warning: Could not get rows affected: %v", err)
		return nil
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
