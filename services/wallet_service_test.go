package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esports-arena/tournament-hub/models"
)

type walletFixture struct {
	users        *fakeUserRepo
	wallets      *fakeWalletRepo
	transactions *fakeTransactionRepo
	service      WalletService
}

func newWalletFixture() *walletFixture {
	users := newFakeUserRepo()
	wallets := newFakeWalletRepo()
	transactions := &fakeTransactionRepo{}
	return &walletFixture{
		users:        users,
		wallets:      wallets,
		transactions: transactions,
		service:      NewWalletService(&fakeTxManager{}, wallets, transactions, users),
	}
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	fx := newWalletFixture()
	fx.users.add(models.User{ID: 1, Username: "alice"})

	_, err := fx.service.Deposit(context.Background(), 1, 0, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = fx.service.Deposit(context.Background(), 1, -10, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestDepositCreatesWalletLazily(t *testing.T) {
	fx := newWalletFixture()
	fx.users.add(models.User{ID: 1, Username: "alice"})

	wallet, err := fx.service.Deposit(context.Background(), 1, 250, "Visa ****1234")
	require.NoError(t, err)
	assert.Equal(t, 250.0, wallet.Balance)

	record := fx.transactions.newestFor(1)
	require.NotNil(t, record)
	assert.Equal(t, models.TransactionDeposit, record.Type)
	assert.Equal(t, 250.0, record.Amount)
	assert.Equal(t, wallet.Balance, record.Balance)
	require.NotNil(t, record.BankDetails)
	assert.Equal(t, "Visa ****1234", *record.BankDetails)
}

func TestWithdrawInsufficientFundsLeavesBalanceUnchanged(t *testing.T) {
	fx := newWalletFixture()
	fx.users.add(models.User{ID: 1, Username: "alice"})
	fx.wallets.seed(1, 40)

	_, err := fx.service.Withdraw(context.Background(), 1, 100, "")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Contains(t, err.Error(), "balance 40.00")
	assert.Contains(t, err.Error(), "required 100.00")

	balance, ok := fx.wallets.balanceOf(1)
	require.True(t, ok)
	assert.Equal(t, 40.0, balance)
	assert.Empty(t, fx.transactions.records)
}

func TestWithdrawRecordsBalanceSnapshot(t *testing.T) {
	fx := newWalletFixture()
	fx.users.add(models.User{ID: 1, Username: "alice"})
	fx.wallets.seed(1, 500)

	wallet, err := fx.service.Withdraw(context.Background(), 1, 120, "IBAN DE00")
	require.NoError(t, err)
	assert.Equal(t, 380.0, wallet.Balance)

	record := fx.transactions.newestFor(1)
	require.NotNil(t, record)
	assert.Equal(t, models.TransactionWithdraw, record.Type)
	assert.Equal(t, wallet.Balance, record.Balance)
}

// Scenario: transfer 200 from a funded wallet to a user with no wallet yet.
// The recipient wallet is created lazily and both sides reference each other.
func TestTransferCreatesRecipientWalletAndPairedRecords(t *testing.T) {
	fx := newWalletFixture()
	fx.users.add(models.User{ID: 1, Username: "alice"})
	fx.users.add(models.User{ID: 2, Username: "bob"})
	fx.wallets.seed(1, 500)

	err := fx.service.Transfer(context.Background(), 1, 2, 200)
	require.NoError(t, err)

	senderBalance, _ := fx.wallets.balanceOf(1)
	recipientBalance, ok := fx.wallets.balanceOf(2)
	require.True(t, ok, "recipient wallet should have been created")
	assert.Equal(t, 300.0, senderBalance)
	assert.Equal(t, 200.0, recipientBalance)

	sent := fx.transactions.newestFor(1)
	require.NotNil(t, sent)
	assert.Equal(t, models.TransactionTransferSent, sent.Type)
	assert.Equal(t, 300.0, sent.Balance)
	require.NotNil(t, sent.RelatedUserID)
	assert.Equal(t, 2, *sent.RelatedUserID)
	require.NotNil(t, sent.RelatedUserName)
	assert.Equal(t, "bob", *sent.RelatedUserName)

	received := fx.transactions.newestFor(2)
	require.NotNil(t, received)
	assert.Equal(t, models.TransactionTransferReceived, received.Type)
	assert.Equal(t, 200.0, received.Balance)
	require.NotNil(t, received.RelatedUserID)
	assert.Equal(t, 1, *received.RelatedUserID)
	require.NotNil(t, received.RelatedUserName)
	assert.Equal(t, "alice", *received.RelatedUserName)
}

func TestTransferRejectsSelfAndUnknownRecipient(t *testing.T) {
	fx := newWalletFixture()
	fx.users.add(models.User{ID: 1, Username: "alice"})
	fx.wallets.seed(1, 500)

	err := fx.service.Transfer(context.Background(), 1, 1, 50)
	assert.ErrorIs(t, err, ErrSelfTransfer)

	err = fx.service.Transfer(context.Background(), 1, 99, 50)
	assert.ErrorIs(t, err, ErrUserNotFound)

	balance, _ := fx.wallets.balanceOf(1)
	assert.Equal(t, 500.0, balance)
}

func TestTransferInsufficientFundsLeavesBothSidesUnchanged(t *testing.T) {
	fx := newWalletFixture()
	fx.users.add(models.User{ID: 1, Username: "alice"})
	fx.users.add(models.User{ID: 2, Username: "bob"})
	fx.wallets.seed(1, 100)
	fx.wallets.seed(2, 10)

	err := fx.service.Transfer(context.Background(), 1, 2, 150)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	senderBalance, _ := fx.wallets.balanceOf(1)
	recipientBalance, _ := fx.wallets.balanceOf(2)
	assert.Equal(t, 100.0, senderBalance)
	assert.Equal(t, 10.0, recipientBalance)
	assert.Empty(t, fx.transactions.records)
}

// The organizer's side of an adjustment is labelled as a plain transfer,
// the target's side as admin_addition/admin_deduction.
func TestAdminAdjustLabeling(t *testing.T) {
	fx := newWalletFixture()
	fx.users.add(models.User{ID: 1, Username: "org", Role: models.RoleOrganizer})
	fx.users.add(models.User{ID: 2, Username: "player"})
	fx.wallets.seed(1, 1000)
	fx.wallets.seed(2, 100)

	err := fx.service.AdminAdjust(context.Background(), 1, 2, 300, "event bonus", AdjustAdd)
	require.NoError(t, err)

	orgRecord := fx.transactions.newestFor(1)
	require.NotNil(t, orgRecord)
	assert.Equal(t, models.TransactionTransferSent, orgRecord.Type)
	assert.Equal(t, 700.0, orgRecord.Balance)

	targetRecord := fx.transactions.newestFor(2)
	require.NotNil(t, targetRecord)
	assert.Equal(t, models.TransactionAdminAddition, targetRecord.Type)
	assert.Equal(t, 400.0, targetRecord.Balance)
	assert.Equal(t, "event bonus", targetRecord.Description)

	err = fx.service.AdminAdjust(context.Background(), 1, 2, 150, "penalty", AdjustDeduct)
	require.NoError(t, err)

	orgRecord = fx.transactions.newestFor(1)
	assert.Equal(t, models.TransactionTransferReceived, orgRecord.Type)
	assert.Equal(t, 850.0, orgRecord.Balance)

	targetRecord = fx.transactions.newestFor(2)
	assert.Equal(t, models.TransactionAdminDeduction, targetRecord.Type)
	assert.Equal(t, 250.0, targetRecord.Balance)
}

func TestAdminAdjustDeductRequiresTargetBalance(t *testing.T) {
	fx := newWalletFixture()
	fx.users.add(models.User{ID: 1, Username: "org", Role: models.RoleOrganizer})
	fx.users.add(models.User{ID: 2, Username: "player"})
	fx.wallets.seed(1, 1000)
	fx.wallets.seed(2, 20)

	err := fx.service.AdminAdjust(context.Background(), 1, 2, 50, "penalty", AdjustDeduct)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	targetBalance, _ := fx.wallets.balanceOf(2)
	assert.Equal(t, 20.0, targetBalance)
}

func TestChargeTournamentEntrySkipsZeroFee(t *testing.T) {
	fx := newWalletFixture()
	fx.users.add(models.User{ID: 1, Username: "player"})
	fx.users.add(models.User{ID: 2, Username: "org"})

	err := fx.service.ChargeTournamentEntry(context.Background(), nil, 1, 2, 7, "Free Cup", 0)
	require.NoError(t, err)
	assert.Empty(t, fx.transactions.records)
}

func TestChargeTournamentEntryTagsBothSides(t *testing.T) {
	fx := newWalletFixture()
	fx.users.add(models.User{ID: 1, Username: "player"})
	fx.users.add(models.User{ID: 2, Username: "org"})
	fx.wallets.seed(1, 300)

	err := fx.service.ChargeTournamentEntry(context.Background(), nil, 1, 2, 7, "Summer Cup", 100)
	require.NoError(t, err)

	playerRecord := fx.transactions.newestFor(1)
	orgRecord := fx.transactions.newestFor(2)
	require.NotNil(t, playerRecord)
	require.NotNil(t, orgRecord)

	for _, record := range []*models.Transaction{playerRecord, orgRecord} {
		assert.Equal(t, models.TransactionTournamentFee, record.Type)
		require.NotNil(t, record.TournamentID)
		assert.Equal(t, 7, *record.TournamentID)
		require.NotNil(t, record.TournamentName)
		assert.Equal(t, "Summer Cup", *record.TournamentName)
	}
	assert.Equal(t, 200.0, playerRecord.Balance)
	assert.Equal(t, 100.0, orgRecord.Balance)
}

// After any successful mutating operation the newest record for the wallet
// carries a balance equal to the wallet's current balance.
func TestTransactionBalanceConsistency(t *testing.T) {
	fx := newWalletFixture()
	fx.users.add(models.User{ID: 1, Username: "alice"})
	fx.users.add(models.User{ID: 2, Username: "bob"})

	ctx := context.Background()
	_, err := fx.service.Deposit(ctx, 1, 500, "")
	require.NoError(t, err)
	_, err = fx.service.Withdraw(ctx, 1, 120, "")
	require.NoError(t, err)
	require.NoError(t, fx.service.Transfer(ctx, 1, 2, 80))

	for _, userID := range []int{1, 2} {
		balance, ok := fx.wallets.balanceOf(userID)
		require.True(t, ok)
		record := fx.transactions.newestFor(userID)
		require.NotNil(t, record)
		assert.Equal(t, balance, record.Balance, "user %d", userID)
	}
}
