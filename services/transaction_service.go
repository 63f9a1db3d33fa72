package services

import (
	"context"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/repositories"
)

const defaultTransactionPageSize = 100

type TransactionService interface {
	ListByUser(ctx context.Context, userID, limit, offset int) ([]models.Transaction, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Transaction, error)
}

type transactionService struct {
	transactionRepo repositories.TransactionRepository
}

func NewTransactionService(transactionRepo repositories.TransactionRepository) TransactionService {
	return &transactionService{transactionRepo: transactionRepo}
}

func (s *transactionService) ListByUser(ctx context.Context, userID, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = defaultTransactionPageSize
	}
	return s.transactionRepo.ListByUserID(ctx, userID, limit, offset)
}

func (s *transactionService) ListAll(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = defaultTransactionPageSize
	}
	return s.transactionRepo.ListAll(ctx, limit, offset)
}
