package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/lib/pq"
)

var (
	ErrRegistrationNotFound          = errors.New("registration not found")
	ErrRegistrationConflict          = errors.New("registration conflict: player already registered for this tournament")
	ErrRegistrationPlayerInvalid     = errors.New("registration player conflict or invalid")
	ErrRegistrationTournamentInvalid = errors.New("registration tournament conflict or invalid")
)

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error
	FindByID(ctx context.Context, id int) (*models.Registration, error)
	FindByPlayerAndTournament(ctx context.Context, exec SQLExecutor, playerID, tournamentID int) (*models.Registration, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, statusFilter *models.RegistrationStatus) ([]models.Registration, error)
	ListByPlayer(ctx context.Context, playerID int) ([]models.Registration, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RegistrationStatus) error
	Revive(ctx context.Context, exec SQLExecutor, reg *models.Registration) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const registrationColumns = `id, tournament_id, player_id, player_name, team_name,
	email, phone, in_game_id, status, registered_at`

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO registrations (
			tournament_id, player_id, player_name, team_name, email, phone, in_game_id, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, registered_at`

	err := executor.QueryRowContext(ctx, query,
		reg.TournamentID, reg.PlayerID, reg.PlayerName, reg.TeamName,
		reg.Email, reg.Phone, reg.InGameID, reg.Status,
	).Scan(&reg.ID, &reg.RegisteredAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "registrations_tournament_id_player_id_key" {
					return ErrRegistrationConflict
				}
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "registrations_player_id_fkey":
					return ErrRegistrationPlayerInvalid
				case "registrations_tournament_id_fkey":
					return ErrRegistrationTournamentInvalid
				}
			}
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *postgresRegistrationRepository) FindByID(ctx context.Context, id int) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	return r.scanRegistration(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresRegistrationRepository) FindByPlayerAndTournament(ctx context.Context, exec SQLExecutor, playerID, tournamentID int) (*models.Registration, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE player_id = $1 AND tournament_id = $2`
	return r.scanRegistration(executor.QueryRowContext(ctx, query, playerID, tournamentID))
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, statusFilter *models.RegistrationStatus) ([]models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if statusFilter != nil {
		query += ` AND status = $2`
		args = append(args, *statusFilter)
	}
	query += ` ORDER BY registered_at ASC`
	return r.listRegistrations(ctx, r.getExecutor(exec), query, args...)
}

func (r *postgresRegistrationRepository) ListByPlayer(ctx context.Context, playerID int) ([]models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE player_id = $1 ORDER BY registered_at DESC`
	return r.listRegistrations(ctx, r.db, query, playerID)
}

func (r *postgresRegistrationRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RegistrationStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE registrations SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update registration status: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

// Revive flips a cancelled registration back to its stored status while
// replacing the player-supplied details and refreshing the timestamp, so a
// re-registration carries the newly submitted team and contact data.
func (r *postgresRegistrationRepository) Revive(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE registrations
		SET status = $1, team_name = $2, email = $3, phone = $4, in_game_id = $5, registered_at = NOW()
		WHERE id = $6
		RETURNING registered_at`

	err := executor.QueryRowContext(ctx, query,
		reg.Status, reg.TeamName, reg.Email, reg.Phone, reg.InGameID, reg.ID,
	).Scan(&reg.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRegistrationNotFound
		}
		return fmt.Errorf("failed to revive registration: %w", err)
	}
	return nil
}

func (r *postgresRegistrationRepository) scanRegistration(row rowScanner) (*models.Registration, error) {
	reg := &models.Registration{}
	err := row.Scan(
		&reg.ID, &reg.TournamentID, &reg.PlayerID, &reg.PlayerName, &reg.TeamName,
		&reg.Email, &reg.Phone, &reg.InGameID, &reg.Status, &reg.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) listRegistrations(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]models.Registration, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]models.Registration, 0)
	for rows.Next() {
		reg, scanErr := r.scanRegistration(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		registrations = append(registrations, *reg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return registrations, nil
}
