package models

import "time"

// UserRole represents the user roles matching the ENUM in the DB.
type UserRole string

const (
	RolePlayer    UserRole = "player"
	RoleOrganizer UserRole = "organizer"
)

// PlayerStats is tracked for players only. tournaments_played is mutated by the
// background stats updater, the rest by organizer-driven manual edits.
type PlayerStats struct {
	TournamentsPlayed int     `json:"tournaments_played"`
	TournamentsWon    int     `json:"tournaments_won"`
	TotalEarnings     float64 `json:"total_earnings"`
	TotalFinishes     int     `json:"total_finishes"`
	Rank              string  `json:"rank"`
}

type User struct {
	ID           int         `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         UserRole    `json:"role"`
	Active       bool        `json:"active"`
	AvatarKey    *string     `json:"-"`
	AvatarURL    *string     `json:"avatar_url,omitempty"`
	Stats        PlayerStats `json:"stats"`
	CreatedAt    time.Time   `json:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
