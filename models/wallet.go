package models

import "time"

// Wallet is 1:1 with a user, created lazily with a zero balance on first access.
// The balance must never go negative; every change to it is paired with exactly
// one transaction record carrying the resulting balance snapshot.
type Wallet struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
