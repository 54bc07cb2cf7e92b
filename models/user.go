package models

import "time"

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Subscription tiers
const (
	TierFree    = "free"
	TierPlus    = "plus"
	TierPremium = "premium"
)

// User represents an account and its Tym balance
type User struct {
	ID                    int64      `json:"id"`
	Email                 string     `json:"email"`
	DisplayName           string     `json:"displayName"`
	Role                  string     `json:"role"`
	Points                int        `json:"points"`
	SubscriptionTier      string     `json:"subscriptionTier"`
	SubscriptionExpiresAt *time.Time `json:"subscriptionExpiresAt,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
}

// ActiveTier returns the subscription tier in effect at now.
// An expired paid tier falls back to free.
func (u *User) ActiveTier(now time.Time) string {
	if u.SubscriptionTier == "" || u.SubscriptionTier == TierFree {
		return TierFree
	}
	if u.SubscriptionExpiresAt != nil && !u.SubscriptionExpiresAt.After(now) {
		return TierFree
	}
	return u.SubscriptionTier
}

// UserListResponse is returned by GET /admin/users
type UserListResponse struct {
	Users  []User `json:"users"`
	Total  int    `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// UpdateSubscriptionRequest is the body for PUT /admin/users/{id}/subscription
// Example: {"tier": "premium", "expiresAt": "2026-12-31T23:59:59Z"}
type UpdateSubscriptionRequest struct {
	Tier      string     `json:"tier"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// UpdateRoleRequest is the body for PUT /admin/users/{id}/role
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// AdjustPointsRequest is the body for POST /admin/users/{id}/points
type AdjustPointsRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason,omitempty"`
}
