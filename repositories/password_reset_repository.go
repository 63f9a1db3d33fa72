package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/esports-arena/tournament-hub/models"
)

var ErrResetTokenNotFound = errors.New("password reset token not found or expired")

type PasswordResetRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	// GetValid returns the token only while it has not expired.
	GetValid(ctx context.Context, token string, now time.Time) (*models.PasswordResetToken, error)
	Delete(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID int) error
}

type postgresPasswordResetRepository struct {
	db *sql.DB
}

func NewPostgresPasswordResetRepository(db *sql.DB) PasswordResetRepository {
	return &postgresPasswordResetRepository{db: db}
}

func (r *postgresPasswordResetRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, token.Token, token.UserID, token.ExpiresAt).
		Scan(&token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create password reset token: %w", err)
	}
	return nil
}

func (r *postgresPasswordResetRepository) GetValid(ctx context.Context, token string, now time.Time) (*models.PasswordResetToken, error) {
	query := `
		SELECT token, user_id, expires_at, created_at
		FROM password_reset_tokens
		WHERE token = $1 AND expires_at > $2`

	t := &models.PasswordResetToken{}
	err := r.db.QueryRowContext(ctx, query, token, now).
		Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResetTokenNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresPasswordResetRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE token = $1`, token)
	return err
}

func (r *postgresPasswordResetRepository) DeleteByUserID(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, userID)
	return err
}
