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
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrTournamentInvalidOrg = errors.New("invalid organizer reference")
)

type ListTournamentsFilter struct {
	Status           *models.TournamentStatus
	Game             *string
	Mode             *models.TournamentMode
	OrganizerID      *int
	ExcludeCompleted bool
	Limit            int
	Offset           int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	// GetByIDForUpdate locks the tournament row so capacity checks and the
	// registered_teams counter cannot race between concurrent registrations.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	ListByPlayer(ctx context.Context, playerID int) ([]models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	Delete(ctx context.Context, id int) error
	UpdateRoomCredentials(ctx context.Context, id int, room models.RoomCredentials) error
	UpdateBannerKey(ctx context.Context, id int, bannerKey *string) error
	AdjustRegisteredTeams(ctx context.Context, exec SQLExecutor, id int, delta int) error
	// Archive flips an upcoming tournament to completed and stamps archived_at.
	// The status guard in the query keeps repeated scans idempotent.
	Archive(ctx context.Context, exec SQLExecutor, id int, archivedAt sql.NullTime) error
	SetStatsUpdated(ctx context.Context, exec SQLExecutor, id int) error
	ListByStatus(ctx context.Context, statuses ...models.TournamentStatus) ([]models.Tournament, error)
	ListPendingStatsUpdate(ctx context.Context) ([]models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, game, mode, description, prize_pool, entry_fee,
	max_teams, registered_teams, start_date, start_time, end_date, status,
	room_id, room_password, room_available,
	organizer_id, organizer_name, region, platform, rules, banner_key,
	archived_at, stats_updated, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			name, game, mode, description, prize_pool, entry_fee, max_teams,
			start_date, start_time, end_date, status,
			organizer_id, organizer_name, region, platform, rules
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, registered_teams, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.Game, t.Mode, t.Description, t.PrizePool, t.EntryFee, t.MaxTeams,
		t.StartDate, t.StartTime, t.EndDate, t.Status,
		t.OrganizerID, t.OrganizerName, t.Region, t.Platform, pq.Array(t.Rules),
	).Scan(&t.ID, &t.RegisteredTeams, &t.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "tournaments_organizer_id_fkey" {
				return ErrTournamentInvalidOrg
			}
		}
		return err
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.scanTournament(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	return r.scanTournament(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	} else if filter.ExcludeCompleted {
		query += fmt.Sprintf(" AND status <> $%d", argID)
		args = append(args, models.StatusCompleted)
		argID++
	}
	if filter.Game != nil {
		query += fmt.Sprintf(" AND game = $%d", argID)
		args = append(args, *filter.Game)
		argID++
	}
	if filter.Mode != nil {
		query += fmt.Sprintf(" AND mode = $%d", argID)
		args = append(args, *filter.Mode)
		argID++
	}
	if filter.OrganizerID != nil {
		query += fmt.Sprintf(" AND organizer_id = $%d", argID)
		args = append(args, *filter.OrganizerID)
		argID++
	}

	query += " ORDER BY start_date ASC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	return r.listTournaments(ctx, query, args...)
}

// ListByPlayer returns tournaments the player holds a non-cancelled
// registration for, newest start first.
func (r *postgresTournamentRepository) ListByPlayer(ctx context.Context, playerID int) ([]models.Tournament, error) {
	query := `
		SELECT
			t.id, t.name, t.game, t.mode, t.description, t.prize_pool, t.entry_fee,
			t.max_teams, t.registered_teams, t.start_date, t.start_time, t.end_date, t.status,
			t.room_id, t.room_password, t.room_available,
			t.organizer_id, t.organizer_name, t.region, t.platform, t.rules, t.banner_key,
			t.archived_at, t.stats_updated, t.created_at
		FROM tournaments t
		JOIN registrations reg ON reg.tournament_id = t.id
		WHERE reg.player_id = $1 AND reg.status <> $2
		ORDER BY t.start_date DESC`
	return r.listTournaments(ctx, query, playerID, models.RegistrationCancelled)
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			name = $1, game = $2, mode = $3, description = $4,
			prize_pool = $5, entry_fee = $6, max_teams = $7,
			start_date = $8, start_time = $9, end_date = $10, status = $11,
			region = $12, platform = $13, rules = $14
		WHERE id = $15`

	result, err := r.db.ExecContext(ctx, query,
		t.Name, t.Game, t.Mode, t.Description,
		t.PrizePool, t.EntryFee, t.MaxTeams,
		t.StartDate, t.StartTime, t.EndDate, t.Status,
		t.Region, t.Platform, pq.Array(t.Rules),
		t.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateRoomCredentials(ctx context.Context, id int, room models.RoomCredentials) error {
	query := `UPDATE tournaments SET room_id = $1, room_password = $2, room_available = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, room.RoomID, room.Password, room.Available, id)
	if err != nil {
		return fmt.Errorf("failed to update room credentials: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateBannerKey(ctx context.Context, id int, bannerKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET banner_key = $1 WHERE id = $2`, bannerKey, id)
	if err != nil {
		return fmt.Errorf("failed to update banner key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// AdjustRegisteredTeams changes the derived counter by delta, clamped at zero
// so out-of-order cancellations cannot drive it negative.
func (r *postgresTournamentRepository) AdjustRegisteredTeams(ctx context.Context, exec SQLExecutor, id int, delta int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET registered_teams = GREATEST(registered_teams + $1, 0) WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, delta, id)
	if err != nil {
		return fmt.Errorf("failed to adjust registered teams: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Archive(ctx context.Context, exec SQLExecutor, id int, archivedAt sql.NullTime) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments SET status = $1, archived_at = $2
		WHERE id = $3 AND status = $4`
	result, err := executor.ExecContext(ctx, query, models.StatusCompleted, archivedAt, id, models.StatusUpcoming)
	if err != nil {
		return fmt.Errorf("failed to archive tournament: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetStatsUpdated(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE tournaments SET stats_updated = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to set stats updated flag: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) ListByStatus(ctx context.Context, statuses ...models.TournamentStatus) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE status = ANY($1) ORDER BY start_date ASC`
	list := make([]string, len(statuses))
	for i, s := range statuses {
		list[i] = string(s)
	}
	return r.listTournaments(ctx, query, pq.Array(list))
}

func (r *postgresTournamentRepository) ListPendingStatsUpdate(ctx context.Context) ([]models.Tournament, error) {
	query := `
		SELECT` + tournamentColumns + `
		FROM tournaments
		WHERE stats_updated = FALSE AND status = ANY($1)
		ORDER BY start_date ASC`
	statuses := []string{
		string(models.StatusUpcoming),
		string(models.StatusOngoing),
		string(models.StatusCompleted),
	}
	return r.listTournaments(ctx, query, pq.Array(statuses))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresTournamentRepository) scanTournament(row rowScanner) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(
		&t.ID, &t.Name, &t.Game, &t.Mode, &t.Description, &t.PrizePool, &t.EntryFee,
		&t.MaxTeams, &t.RegisteredTeams, &t.StartDate, &t.StartTime, &t.EndDate, &t.Status,
		&t.Room.RoomID, &t.Room.Password, &t.Room.Available,
		&t.OrganizerID, &t.OrganizerName, &t.Region, &t.Platform, pq.Array(&t.Rules), &t.BannerKey,
		&t.ArchivedAt, &t.StatsUpdated, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) listTournaments(ctx context.Context, query string, args ...interface{}) ([]models.Tournament, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, scanErr := r.scanTournament(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}
