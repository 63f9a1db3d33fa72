package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/esports-arena/tournament-hub/models"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id int) (*models.Message, error)
	List(ctx context.Context, statusFilter *models.MessageStatus) ([]models.Message, error)
	UpdateStatus(ctx context.Context, id int, status models.MessageStatus) error
	Delete(ctx context.Context, id int) error
}

type postgresMessageRepository struct {
	db *sql.DB
}

func NewPostgresMessageRepository(db *sql.DB) MessageRepository {
	return &postgresMessageRepository{db: db}
}

const messageColumns = `id, username, email, subject, body, status, user_id, created_at`

func (r *postgresMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (username, email, subject, body, status, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		msg.Username, msg.Email, msg.Subject, msg.Body, msg.Status, msg.UserID,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *postgresMessageRepository) GetByID(ctx context.Context, id int) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`
	msg := &models.Message{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID, &msg.Username, &msg.Email, &msg.Subject, &msg.Body,
		&msg.Status, &msg.UserID, &msg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return msg, nil
}

func (r *postgresMessageRepository) List(ctx context.Context, statusFilter *models.MessageStatus) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages`
	args := []interface{}{}
	if statusFilter != nil {
		query += ` WHERE status = $1`
		args = append(args, *statusFilter)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		if scanErr := rows.Scan(
			&msg.ID, &msg.Username, &msg.Email, &msg.Subject, &msg.Body,
			&msg.Status, &msg.UserID, &msg.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		messages = append(messages, msg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *postgresMessageRepository) UpdateStatus(ctx context.Context, id int, status models.MessageStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE messages SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update message status: %w", err)
	}
	return checkAffectedRows(result, ErrMessageNotFound)
}

func (r *postgresMessageRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMessageNotFound)
}
