package repository

import (
	"context"
	"fmt"

	"echo-vintage-ecard/db"
)

// PriceRepository looks up the Tym price of purchasable catalogue items
type PriceRepository struct{}

// NewPriceRepository creates a new PriceRepository
func NewPriceRepository() *PriceRepository {
	return &PriceRepository{}
}

// priceQueries maps an item kind to the query returning its display name and price
var priceQueries = map[string]string{
	"envelope":    `SELECT name, price_points FROM envelopes WHERE id = $1 AND is_active`,
	"stamp":       `SELECT name, price_points FROM stamps WHERE id = $1 AND is_active`,
	"music":       `SELECT title, price_points FROM music WHERE id = $1 AND is_active`,
	"photo_frame": `SELECT name, price_points FROM photo_frames WHERE id = $1 AND is_active`,
	"sticker":     `SELECT name, price_points FROM stickers WHERE id = $1 AND is_active`,
}

// ItemPrice returns the name and price of an active item. Inactive or
// missing items yield ErrNotFound.
func (r *PriceRepository) ItemPrice(ctx context.Context, kind string, id int64) (string, int, error) {
	query, ok := priceQueries[kind]
	if !ok {
		return "", 0, fmt.Errorf("unknown item kind %q", kind)
	}
	var name string
	var points int
	if err := db.DB.QueryRowContext(ctx, query, id).Scan(&name, &points); err != nil {
		return "", 0, wrap("get "+kind+" price", err)
	}
	return name, points, nil
}
