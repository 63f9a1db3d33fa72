package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/repositories"
)

// AdjustDirection selects which way an admin adjustment moves funds.
type AdjustDirection string

const (
	AdjustAdd    AdjustDirection = "add"    // organizer wallet -> target wallet
	AdjustDeduct AdjustDirection = "deduct" // target wallet -> organizer wallet
)

type WalletService interface {
	GetOrCreateWallet(ctx context.Context, userID int) (*models.Wallet, error)
	ListWallets(ctx context.Context) ([]models.Wallet, error)
	Deposit(ctx context.Context, userID int, amount float64, bankDetails string) (*models.Wallet, error)
	Withdraw(ctx context.Context, userID int, amount float64, bankDetails string) (*models.Wallet, error)
	Transfer(ctx context.Context, fromUserID, toUserID int, amount float64) error
	AdminAdjust(ctx context.Context, organizerID, targetUserID int, amount float64, reason string, direction AdjustDirection) error
	// ChargeTournamentEntry moves the entry fee from player to organizer inside
	// the caller's transaction, so a failed registration cannot leave the fee
	// charged.
	ChargeTournamentEntry(ctx context.Context, tx repositories.SQLExecutor, playerID, organizerID, tournamentID int, tournamentName string, fee float64) error
}

type walletService struct {
	txm             repositories.TxManager
	walletRepo      repositories.WalletRepository
	transactionRepo repositories.TransactionRepository
	userRepo        repositories.UserRepository
}

func NewWalletService(
	txm repositories.TxManager,
	walletRepo repositories.WalletRepository,
	transactionRepo repositories.TransactionRepository,
	userRepo repositories.UserRepository,
) WalletService {
	return &walletService{
		txm:             txm,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		userRepo:        userRepo,
	}
}

func (s *walletService) GetOrCreateWallet(ctx context.Context, userID int) (*models.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, nil, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, repositories.ErrWalletNotFound) {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}

	wallet = &models.Wallet{UserID: userID, Balance: 0}
	if err := s.walletRepo.Create(ctx, nil, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *walletService) ListWallets(ctx context.Context) ([]models.Wallet, error) {
	return s.walletRepo.ListAll(ctx)
}

func (s *walletService) Deposit(ctx context.Context, userID int, amount float64, bankDetails string) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var updated *models.Wallet
	err := s.txm.WithTx(ctx, func(tx repositories.SQLExecutor) error {
		wallet, err := s.lockOrCreateWallet(ctx, tx, userID)
		if err != nil {
			return err
		}

		wallet.Balance += amount
		if err := s.walletRepo.UpdateBalance(ctx, tx, wallet.ID, wallet.Balance); err != nil {
			return err
		}

		record := &models.Transaction{
			UserID:      userID,
			Type:        models.TransactionDeposit,
			Amount:      amount,
			Balance:     wallet.Balance,
			Description: depositDescription(bankDetails),
		}
		if bankDetails != "" {
			record.BankDetails = &bankDetails
		}
		if err := s.transactionRepo.Create(ctx, tx, record); err != nil {
			return err
		}

		updated = wallet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *walletService) Withdraw(ctx context.Context, userID int, amount float64, bankDetails string) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var updated *models.Wallet
	err := s.txm.WithTx(ctx, func(tx repositories.SQLExecutor) error {
		wallet, err := s.lockOrCreateWallet(ctx, tx, userID)
		if err != nil {
			return err
		}
		if wallet.Balance < amount {
			return fmt.Errorf("%w: balance %.2f, required %.2f", ErrInsufficientFunds, wallet.Balance, amount)
		}

		wallet.Balance -= amount
		if err := s.walletRepo.UpdateBalance(ctx, tx, wallet.ID, wallet.Balance); err != nil {
			return err
		}

		record := &models.Transaction{
			UserID:      userID,
			Type:        models.TransactionWithdraw,
			Amount:      amount,
			Balance:     wallet.Balance,
			Description: withdrawDescription(bankDetails),
		}
		if bankDetails != "" {
			record.BankDetails = &bankDetails
		}
		if err := s.transactionRepo.Create(ctx, tx, record); err != nil {
			return err
		}

		updated = wallet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *walletService) Transfer(ctx context.Context, fromUserID, toUserID int, amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if fromUserID == toUserID {
		return ErrSelfTransfer
	}

	sender, err := s.getUser(ctx, fromUserID)
	if err != nil {
		return err
	}
	recipient, err := s.getUser(ctx, toUserID)
	if err != nil {
		return err
	}

	return s.txm.WithTx(ctx, func(tx repositories.SQLExecutor) error {
		return s.moveFunds(ctx, tx, movement{
			from:     sender,
			to:       recipient,
			amount:   amount,
			fromType: models.TransactionTransferSent,
			toType:   models.TransactionTransferReceived,
			fromDesc: fmt.Sprintf("Transfer to %s", recipient.Username),
			toDesc:   fmt.Sprintf("Transfer from %s", sender.Username),
		})
	})
}

func (s *walletService) AdminAdjust(ctx context.Context, organizerID, targetUserID int, amount float64, reason string, direction AdjustDirection) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if organizerID == targetUserID {
		return ErrSelfTransfer
	}

	organizer, err := s.getUser(ctx, organizerID)
	if err != nil {
		return err
	}
	target, err := s.getUser(ctx, targetUserID)
	if err != nil {
		return err
	}

	if reason == "" {
		reason = "Balance adjustment"
	}

	// Labeling convention: the organizer's side of an adjustment is recorded
	// as a plain transfer, the target's side as admin_addition/admin_deduction.
	switch direction {
	case AdjustAdd:
		return s.txm.WithTx(ctx, func(tx repositories.SQLExecutor) error {
			return s.moveFunds(ctx, tx, movement{
				from:     organizer,
				to:       target,
				amount:   amount,
				fromType: models.TransactionTransferSent,
				toType:   models.TransactionAdminAddition,
				fromDesc: fmt.Sprintf("Admin addition to %s: %s", target.Username, reason),
				toDesc:   reason,
			})
		})
	case AdjustDeduct:
		return s.txm.WithTx(ctx, func(tx repositories.SQLExecutor) error {
			return s.moveFunds(ctx, tx, movement{
				from:     target,
				to:       organizer,
				amount:   amount,
				fromType: models.TransactionAdminDeduction,
				toType:   models.TransactionTransferReceived,
				fromDesc: reason,
				toDesc:   fmt.Sprintf("Admin deduction from %s: %s", target.Username, reason),
			})
		})
	default:
		return fmt.Errorf("%w: unknown adjustment direction %q", ErrValidationFailed, direction)
	}
}

func (s *walletService) ChargeTournamentEntry(ctx context.Context, tx repositories.SQLExecutor, playerID, organizerID, tournamentID int, tournamentName string, fee float64) error {
	if fee == 0 {
		return nil
	}
	if fee < 0 {
		return ErrInvalidAmount
	}

	player, err := s.getUser(ctx, playerID)
	if err != nil {
		return err
	}
	organizer, err := s.getUser(ctx, organizerID)
	if err != nil {
		return err
	}

	return s.moveFunds(ctx, tx, movement{
		from:           player,
		to:             organizer,
		amount:         fee,
		fromType:       models.TransactionTournamentFee,
		toType:         models.TransactionTournamentFee,
		fromDesc:       fmt.Sprintf("Entry fee for %s", tournamentName),
		toDesc:         fmt.Sprintf("Entry fee from %s for %s", player.Username, tournamentName),
		tournamentID:   &tournamentID,
		tournamentName: &tournamentName,
	})
}

// movement describes one paired debit/credit between two wallets.
type movement struct {
	from, to         *models.User
	amount           float64
	fromType, toType models.TransactionType
	fromDesc, toDesc string
	tournamentID     *int
	tournamentName   *string
}

// moveFunds debits from, credits to, and writes both transaction records.
// Wallet rows are locked in userID order so two opposing transfers cannot
// deadlock each other.
func (s *walletService) moveFunds(ctx context.Context, tx repositories.SQLExecutor, m movement) error {
	var fromWallet, toWallet *models.Wallet
	var err error

	if m.from.ID < m.to.ID {
		fromWallet, err = s.lockOrCreateWallet(ctx, tx, m.from.ID)
		if err != nil {
			return err
		}
		toWallet, err = s.lockOrCreateWallet(ctx, tx, m.to.ID)
	} else {
		toWallet, err = s.lockOrCreateWallet(ctx, tx, m.to.ID)
		if err != nil {
			return err
		}
		fromWallet, err = s.lockOrCreateWallet(ctx, tx, m.from.ID)
	}
	if err != nil {
		return err
	}

	if fromWallet.Balance < m.amount {
		return fmt.Errorf("%w: balance %.2f, required %.2f", ErrInsufficientFunds, fromWallet.Balance, m.amount)
	}

	fromWallet.Balance -= m.amount
	if err := s.walletRepo.UpdateBalance(ctx, tx, fromWallet.ID, fromWallet.Balance); err != nil {
		return err
	}
	toWallet.Balance += m.amount
	if err := s.walletRepo.UpdateBalance(ctx, tx, toWallet.ID, toWallet.Balance); err != nil {
		return err
	}

	debit := &models.Transaction{
		UserID:          m.from.ID,
		Type:            m.fromType,
		Amount:          m.amount,
		Balance:         fromWallet.Balance,
		Description:     m.fromDesc,
		RelatedUserID:   &m.to.ID,
		RelatedUserName: &m.to.Username,
		TournamentID:    m.tournamentID,
		TournamentName:  m.tournamentName,
	}
	if err := s.transactionRepo.Create(ctx, tx, debit); err != nil {
		return err
	}

	credit := &models.Transaction{
		UserID:          m.to.ID,
		Type:            m.toType,
		Amount:          m.amount,
		Balance:         toWallet.Balance,
		Description:     m.toDesc,
		RelatedUserID:   &m.from.ID,
		RelatedUserName: &m.from.Username,
		TournamentID:    m.tournamentID,
		TournamentName:  m.tournamentName,
	}
	return s.transactionRepo.Create(ctx, tx, credit)
}

// lockOrCreateWallet returns the user's wallet locked for the duration of the
// surrounding transaction, creating it with a zero balance on first access.
func (s *walletService) lockOrCreateWallet(ctx context.Context, tx repositories.SQLExecutor, userID int) (*models.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, tx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, repositories.ErrWalletNotFound) {
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}

	wallet = &models.Wallet{UserID: userID, Balance: 0}
	if err := s.walletRepo.Create(ctx, tx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *walletService) getUser(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	return user, nil
}

func depositDescription(bankDetails string) string {
	if bankDetails == "" {
		return "Wallet deposit"
	}
	return fmt.Sprintf("Wallet deposit via %s", bankDetails)
}

func withdrawDescription(bankDetails string) string {
	if bankDetails == "" {
		return "Wallet withdrawal"
	}
	return fmt.Sprintf("Wallet withdrawal to %s", bankDetails)
}
