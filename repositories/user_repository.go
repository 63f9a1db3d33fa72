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
	ErrUserNotFound         = errors.New("user not found")
	ErrUserEmailConflict    = errors.New("user email conflict")
	ErrUserUsernameConflict = errors.New("username conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateAvatarKey(ctx context.Context, userID int, avatarKey *string) error
	UpdateStats(ctx context.Context, userID int, stats models.PlayerStats) error
	IncrementTournamentsPlayed(ctx context.Context, exec SQLExecutor, userID int) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, role, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Active,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "users_email_key":
				return ErrUserEmailConflict
			case "users_username_key":
				return ErrUserUsernameConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, active, avatar_key,
			tournaments_played, tournaments_won, total_earnings, total_finishes, rank,
			created_at
		FROM users
		WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, active, avatar_key,
			tournaments_played, tournaments_won, total_earnings, total_finishes, rank,
			created_at
		FROM users
		WHERE email = $1`
	return r.scanUser(ctx, query, email)
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			username = $1,
			email = $2,
			password_hash = $3,
			role = $4,
			active = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Active,
		user.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "users_email_key":
				return ErrUserEmailConflict
			case "users_username_key":
				return ErrUserUsernameConflict
			}
		}
		return err
	}

	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdateAvatarKey(ctx context.Context, userID int, avatarKey *string) error {
	query := `UPDATE users SET avatar_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, avatarKey, userID)
	if err != nil {
		return fmt.Errorf("failed to update avatar key: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdateStats(ctx context.Context, userID int, stats models.PlayerStats) error {
	query := `
		UPDATE users SET
			tournaments_won = $1,
			total_earnings = $2,
			total_finishes = $3,
			rank = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		stats.TournamentsWon,
		stats.TotalEarnings,
		stats.TotalFinishes,
		stats.Rank,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user stats: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

// IncrementTournamentsPlayed is invoked by the stats updater inside the same
// transaction that flips the tournament's stats_updated flag.
func (r *postgresUserRepository) IncrementTournamentsPlayed(ctx context.Context, exec SQLExecutor, userID int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE users SET tournaments_played = tournaments_played + 1 WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to increment tournaments played: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) scanUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Active,
		&user.AvatarKey,
		&user.Stats.TournamentsPlayed,
		&user.Stats.TournamentsWon,
		&user.Stats.TotalEarnings,
		&user.Stats.TotalFinishes,
		&user.Stats.Rank,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
