package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/repository"
)

// ErrItemUnavailable is returned when a selected item is missing or retired
var ErrItemUnavailable = errors.New("selected item is not available")

// Config is the Tym pricing configuration, optionally loaded from JSON.
// Example:
//
//	{"baseCardPoints": 5, "tierDiscounts": {"free": 0, "plus": 50, "premium": 100}}
type Config struct {
	BaseCardPoints int            `json:"baseCardPoints"`
	TierDiscounts  map[string]int `json:"tierDiscounts"`
}

// DefaultConfig is used when no pricing file is configured
func DefaultConfig() Config {
	return Config{
		BaseCardPoints: 0,
		TierDiscounts: map[string]int{
			models.TierFree:    0,
			models.TierPlus:    50,
			models.TierPremium: 100,
		},
	}
}

// PriceLookup resolves the name and Tym price of an item of the given kind
type PriceLookup interface {
	ItemPrice(ctx context.Context, kind string, id int64) (string, int, error)
}

// Engine computes Tym quotes for card selections
type Engine struct {
	config Config
	prices PriceLookup
	now    func() time.Time
}

// NewEngine creates an engine. An empty configPath uses DefaultConfig.
func NewEngine(configPath string, prices PriceLookup) (*Engine, error) {
	cfg := DefaultConfig()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read pricing config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse pricing config: %w", err)
		}
		log.Printf("✅ PricingEngine: loaded pricing config from %s", configPath)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid pricing config: %w", err)
	}
	return &Engine{config: cfg, prices: prices, now: time.Now}, nil
}

func validateConfig(cfg Config) error {
	if cfg.BaseCardPoints < 0 {
		return fmt.Errorf("baseCardPoints must not be negative")
	}
	for tier, pct := range cfg.TierDiscounts {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("discount for tier %q must be between 0 and 100", tier)
		}
	}
	return nil
}

// Quote prices a selection for a user. Duplicate sticker IDs are charged once.
func (e *Engine) Quote(ctx context.Context, sel models.CardSelection, user *models.User) (*models.PriceQuote, error) {
	quote := &models.PriceQuote{Lines: []models.PriceLine{}}

	if e.config.BaseCardPoints > 0 {
		quote.Lines = append(quote.Lines, models.PriceLine{Kind: "card", Name: "Card", Points: e.config.BaseCardPoints})
	}

	add := func(kind string, id *int64) error {
		if id == nil {
			return nil
		}
		name, points, err := e.prices.ItemPrice(ctx, kind, *id)
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s %d", ErrItemUnavailable, kind, *id)
		}
		if err != nil {
			return fmt.Errorf("failed to price %s %d: %w", kind, *id, err)
		}
		quote.Lines = append(quote.Lines, models.PriceLine{Kind: kind, ItemID: *id, Name: name, Points: points})
		return nil
	}

	for _, item := range []struct {
		kind string
		id   *int64
	}{
		{"envelope", sel.EnvelopeID},
		{"stamp", sel.StampID},
		{"music", sel.MusicID},
		{"photo_frame", sel.PhotoFrameID},
	} {
		if err := add(item.kind, item.id); err != nil {
			return nil, err
		}
	}

	seen := make(map[int64]bool, len(sel.StickerIDs))
	for _, id := range sel.StickerIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		id := id
		if err := add("sticker", &id); err != nil {
			return nil, err
		}
	}

	for _, line := range quote.Lines {
		quote.Subtotal += line.Points
	}

	quote.Tier = models.TierFree
	if user != nil {
		quote.Tier = user.ActiveTier(e.now())
	}
	quote.DiscountPercent = e.config.TierDiscounts[quote.Tier]
	quote.Discount = quote.Subtotal * quote.DiscountPercent / 100
	quote.Total = quote.Subtotal - quote.Discount
	return quote, nil
}
