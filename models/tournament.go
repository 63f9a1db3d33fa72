package models

import "time"

// TournamentStatus represents the tournament statuses matching the ENUM in the DB.
type TournamentStatus string

const (
	StatusUpcoming  TournamentStatus = "upcoming"
	StatusOngoing   TournamentStatus = "ongoing"
	StatusCompleted TournamentStatus = "completed"
	StatusCancelled TournamentStatus = "cancelled"
)

// TournamentMode represents the team size mode of a tournament.
type TournamentMode string

const (
	ModeSolo  TournamentMode = "Solo"
	ModeDuo   TournamentMode = "Duo"
	ModeSquad TournamentMode = "Squad"
)

// RoomCredentials are the in-game room id/password an organizer publishes
// shortly before the tournament starts.
type RoomCredentials struct {
	RoomID    string `json:"room_id"`
	Password  string `json:"password"`
	Available bool   `json:"available"`
}

type Tournament struct {
	ID              int              `json:"id"`
	Name            string           `json:"name"`
	Game            string           `json:"game"`
	Mode            TournamentMode   `json:"mode"`
	Description     *string          `json:"description,omitempty"`
	PrizePool       float64          `json:"prize_pool"`
	EntryFee        float64          `json:"entry_fee"`
	MaxTeams        int              `json:"max_teams"`
	RegisteredTeams int              `json:"registered_teams"`
	StartDate       time.Time        `json:"start_date"`
	StartTime       string           `json:"start_time"` // "HH:MM", 24-hour
	EndDate         *time.Time       `json:"end_date,omitempty"`
	Status          TournamentStatus `json:"status"`
	Room            RoomCredentials  `json:"room"`
	OrganizerID     int              `json:"organizer_id"`
	OrganizerName   string           `json:"organizer_name"`
	Region          *string          `json:"region,omitempty"`
	Platform        *string          `json:"platform,omitempty"`
	Rules           []string         `json:"rules"`
	BannerKey       *string          `json:"-"`
	BannerURL       *string          `json:"banner_url,omitempty"`
	ArchivedAt      *time.Time       `json:"archived_at,omitempty"`
	StatsUpdated    bool             `json:"stats_updated"`
	CreatedAt       time.Time        `json:"created_at"`
}
