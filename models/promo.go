package models

import "time"

// PromoCode grants Tym when redeemed
type PromoCode struct {
	ID             int64      `json:"id"`
	Code           string     `json:"code"`
	Points         int        `json:"points"`
	MaxRedemptions int        `json:"maxRedemptions"` // 0 means unlimited
	RedeemedCount  int        `json:"redeemedCount"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	IsActive       bool       `json:"isActive"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// RedeemPromoRequest is the body for POST /api/promo-codes/redeem
type RedeemPromoRequest struct {
	Code   string `json:"code"`
	UserID int64  `json:"userId"`
}

// RedeemPromoResponse reports the credited points and the new balance
type RedeemPromoResponse struct {
	Code          string `json:"code"`
	PointsAwarded int    `json:"pointsAwarded"`
	Balance       int    `json:"balance"`
}
