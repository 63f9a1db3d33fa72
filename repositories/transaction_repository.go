package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/lib/pq"
)

var (
	ErrTransactionUserInvalid = fmt.Errorf("transaction user reference invalid")
)

type TransactionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tx *models.Transaction) error
	ListByUserID(ctx context.Context, userID int, limit, offset int) ([]models.Transaction, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Transaction, error)
}

type postgresTransactionRepository struct {
	db *sql.DB
}

func NewPostgresTransactionRepository(db *sql.DB) TransactionRepository {
	return &postgresTransactionRepository{db: db}
}

func (r *postgresTransactionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const transactionColumns = `id, user_id, type, amount, balance, description,
	related_user_id, related_user_name, tournament_id, tournament_name,
	bank_details, created_at`

func (r *postgresTransactionRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Transaction) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO transactions (
			user_id, type, amount, balance, description,
			related_user_id, related_user_name, tournament_id, tournament_name, bank_details
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		t.UserID, t.Type, t.Amount, t.Balance, t.Description,
		t.RelatedUserID, t.RelatedUserName, t.TournamentID, t.TournamentName, t.BankDetails,
	).Scan(&t.ID, &t.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "transactions_user_id_fkey" {
				return ErrTransactionUserInvalid
			}
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *postgresTransactionRepository) ListByUserID(ctx context.Context, userID int, limit, offset int) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	args := []interface{}{userID}
	query, args = appendLimitOffset(query, args, limit, offset)
	return r.listTransactions(ctx, query, args...)
}

func (r *postgresTransactionRepository) ListAll(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY created_at DESC, id DESC`
	args := []interface{}{}
	query, args = appendLimitOffset(query, args, limit, offset)
	return r.listTransactions(ctx, query, args...)
}

func appendLimitOffset(query string, args []interface{}, limit, offset int) (string, []interface{}) {
	argID := len(args) + 1
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, limit)
		argID++
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, offset)
	}
	return query, args
}

func (r *postgresTransactionRepository) listTransactions(ctx context.Context, query string, args ...interface{}) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0)
	for rows.Next() {
		var t models.Transaction
		if scanErr := rows.Scan(
			&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Balance, &t.Description,
			&t.RelatedUserID, &t.RelatedUserName, &t.TournamentID, &t.TournamentName,
			&t.BankDetails, &t.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return transactions, nil
}
