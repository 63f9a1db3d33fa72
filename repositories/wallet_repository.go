package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/esports-arena/tournament-hub/models"
)

var ErrWalletNotFound = errors.New("wallet not found")

type WalletRepository interface {
	GetByUserID(ctx context.Context, exec SQLExecutor, userID int) (*models.Wallet, error)
	// GetByUserIDForUpdate locks the wallet row for the duration of the
	// surrounding transaction, serializing concurrent balance mutations.
	GetByUserIDForUpdate(ctx context.Context, exec SQLExecutor, userID int) (*models.Wallet, error)
	Create(ctx context.Context, exec SQLExecutor, wallet *models.Wallet) error
	UpdateBalance(ctx context.Context, exec SQLExecutor, walletID int, balance float64) error
	ListAll(ctx context.Context) ([]models.Wallet, error)
}

type postgresWalletRepository struct {
	db *sql.DB
}

func NewPostgresWalletRepository(db *sql.DB) WalletRepository {
	return &postgresWalletRepository{db: db}
}

func (r *postgresWalletRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const walletColumns = `id, user_id, balance, created_at, updated_at`

func (r *postgresWalletRepository) GetByUserID(ctx context.Context, exec SQLExecutor, userID int) (*models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`
	return r.scanWallet(ctx, r.getExecutor(exec), query, userID)
}

func (r *postgresWalletRepository) GetByUserIDForUpdate(ctx context.Context, exec SQLExecutor, userID int) (*models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 FOR UPDATE`
	return r.scanWallet(ctx, r.getExecutor(exec), query, userID)
}

func (r *postgresWalletRepository) Create(ctx context.Context, exec SQLExecutor, wallet *models.Wallet) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query, wallet.UserID, wallet.Balance).
		Scan(&wallet.ID, &wallet.CreatedAt, &wallet.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

func (r *postgresWalletRepository) UpdateBalance(ctx context.Context, exec SQLExecutor, walletID int, balance float64) error {
	executor := r.getExecutor(exec)
	query := `UPDATE wallets SET balance = $1, updated_at = now() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, balance, walletID)
	if err != nil {
		return fmt.Errorf("failed to update wallet balance: %w", err)
	}
	return checkAffectedRows(result, ErrWalletNotFound)
}

func (r *postgresWalletRepository) ListAll(ctx context.Context) ([]models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets ORDER BY user_id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	wallets := make([]models.Wallet, 0)
	for rows.Next() {
		var w models.Wallet
		if scanErr := rows.Scan(&w.ID, &w.UserID, &w.Balance, &w.CreatedAt, &w.UpdatedAt); scanErr != nil {
			return nil, scanErr
		}
		wallets = append(wallets, w)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return wallets, nil
}

func (r *postgresWalletRepository) scanWallet(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) (*models.Wallet, error) {
	wallet := &models.Wallet{}
	err := executor.QueryRowContext(ctx, query, args...).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return wallet, nil
}
