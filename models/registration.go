package models

import "time"

// RegistrationStatus represents the registration statuses matching the ENUM in the DB.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationRejected  RegistrationStatus = "rejected"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

// Registration binds a player to a tournament. At most one row exists per
// (tournament_id, player_id) pair; cancellation is a status transition, not a
// delete, so the pair stays unique across re-registration attempts.
type Registration struct {
	ID           int                `json:"id"`
	TournamentID int                `json:"tournament_id"`
	PlayerID     int                `json:"player_id"`
	PlayerName   string             `json:"player_name"`
	TeamName     string             `json:"team_name"`
	Email        string             `json:"email"`
	Phone        string             `json:"phone"`
	InGameID     string             `json:"in_game_id"`
	Status       RegistrationStatus `json:"status"`
	RegisteredAt time.Time          `json:"registered_at"`

	// Optional related entity, populated for roster views.
	Tournament *Tournament `json:"tournament,omitempty"`
}
