package models

import "time"

// PasswordResetToken is a persisted single-use reset token with an explicit TTL.
// Expiry is enforced at lookup time; there is no background sweep.
type PasswordResetToken struct {
	Token     string    `json:"token"`
	UserID    int       `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
