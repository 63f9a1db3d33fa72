package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esports-arena/tournament-hub/models"
)

type registrationFixture struct {
	users        *fakeUserRepo
	wallets      *fakeWalletRepo
	transactions *fakeTransactionRepo
	tournaments  *fakeTournamentRepo
	regs         *fakeRegistrationRepo
	notifier     *recordingNotifier
	service      RegistrationService
}

func newRegistrationFixture() *registrationFixture {
	users := newFakeUserRepo()
	wallets := newFakeWalletRepo()
	transactions := &fakeTransactionRepo{}
	tournaments := newFakeTournamentRepo()
	regs := newFakeRegistrationRepo()
	notifier := &recordingNotifier{}

	txm := &fakeTxManager{}
	walletService := NewWalletService(txm, wallets, transactions, users)
	return &registrationFixture{
		users:        users,
		wallets:      wallets,
		transactions: transactions,
		tournaments:  tournaments,
		regs:         regs,
		notifier:     notifier,
		service:      NewRegistrationService(txm, regs, tournaments, users, walletService, notifier),
	}
}

func (fx *registrationFixture) seedTournament(t models.Tournament) *models.Tournament {
	if t.Status == "" {
		t.Status = models.StatusUpcoming
	}
	if t.StartDate.IsZero() {
		t.StartDate = time.Now().Add(24 * time.Hour)
	}
	return fx.tournaments.add(t)
}

func TestRegisterConfirmsAndIncrementsCounter(t *testing.T) {
	fx := newRegistrationFixture()
	fx.users.add(models.User{ID: 1, Username: "alice"})
	fx.users.add(models.User{ID: 2, Username: "org", Role: models.RoleOrganizer})
	tournament := fx.seedTournament(models.Tournament{ID: 10, Name: "Free Cup", MaxTeams: 4, OrganizerID: 2})

	reg, err := fx.service.Register(context.Background(), 1, RegisterInput{
		TournamentID: tournament.ID,
		TeamName:     "Solo Alice",
		Email:        "alice@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationConfirmed, reg.Status)
	assert.Equal(t, "alice", reg.PlayerName)

	stored, err := fx.tournaments.GetByID(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.RegisteredTeams)

	require.Len(t, fx.notifier.countEvents, 1)
	assert.Equal(t, countEvent{tournament.ID, 1}, fx.notifier.countEvents[0])
}

// Scenario: entryFee=100, maxTeams=1. A player with balance 50 is rejected
// with insufficient funds and nothing changes; with balance 150 the
// registration succeeds, the fee moves to the organizer, and both sides get
// a tournament_fee record.
func TestRegisterEntryFeeFlow(t *testing.T) {
	fx := newRegistrationFixture()
	fx.users.add(models.User{ID: 1, Username: "alice"})
	fx.users.add(models.User{ID: 2, Username: "org", Role: models.RoleOrganizer})
	tournament := fx.seedTournament(models.Tournament{ID: 10, Name: "Paid Cup", EntryFee: 100, MaxTeams: 1, OrganizerID: 2})

	fx.wallets.seed(1, 50)
	_, err := fx.service.Register(context.Background(), 1, RegisterInput{TournamentID: tournament.ID})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	stored, _ := fx.tournaments.GetByID(context.Background(), tournament.ID)
	assert.Equal(t, 0, stored.RegisteredTeams)
	assert.Empty(t, fx.transactions.records)
	assert.Empty(t, fx.notifier.countEvents)

	wallet := fx.wallets.byUserID(1)
	wallet.Balance = 150

	reg, err := fx.service.Register(context.Background(), 1, RegisterInput{TournamentID: tournament.ID})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationConfirmed, reg.Status)

	playerBalance, _ := fx.wallets.balanceOf(1)
	orgBalance, _ := fx.wallets.balanceOf(2)
	assert.Equal(t, 50.0, playerBalance)
	assert.Equal(t, 100.0, orgBalance)

	stored, _ = fx.tournaments.GetByID(context.Background(), tournament.ID)
	assert.Equal(t, 1, stored.RegisteredTeams)

	playerRecord := fx.transactions.newestFor(1)
	orgRecord := fx.transactions.newestFor(2)
	require.NotNil(t, playerRecord)
	require.NotNil(t, orgRecord)
	assert.Equal(t, models.TransactionTournamentFee, playerRecord.Type)
	assert.Equal(t, models.TransactionTournamentFee, orgRecord.Type)
}

func TestRegisterRejectsWhenFull(t *testing.T) {
	fx := newRegistrationFixture()
	fx.users.add(models.User{ID: 1, Username: "alice"})
	fx.users.add(models.User{ID: 2, Username: "org"})
	tournament := fx.seedTournament(models.Tournament{ID: 10, Name: "Tiny Cup", MaxTeams: 1, RegisteredTeams: 1, OrganizerID: 2})

	_, err := fx.service.Register(context.Background(), 1, RegisterInput{TournamentID: tournament.ID})
	assert.ErrorIs(t, err, ErrTournamentFull)

	stored, _ := fx.tournaments.GetByID(context.Background(), tournament.ID)
	assert.Equal(t, 1, stored.RegisteredTeams)
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	fx := newRegistrationFixture()
	fx.users.add(models.User{ID: 1, Username: "alice"})
	fx.users.add(models.User{ID: 2, Username: "org"})
	tournament := fx.seedTournament(models.Tournament{ID: 10, Name: "Cup", MaxTeams: 4, OrganizerID: 2})

	_, err := fx.service.Register(context.Background(), 1, RegisterInput{TournamentID: tournament.ID})
	require.NoError(t, err)

	_, err = fx.service.Register(context.Background(), 1, RegisterInput{TournamentID: tournament.ID})
	assert.ErrorIs(t, err, ErrRegistrationConflict)

	stored, _ := fx.tournaments.GetByID(context.Background(), tournament.ID)
	assert.Equal(t, 1, stored.RegisteredTeams)
}

func TestRegisterUnknownTournament(t *testing.T) {
	fx := newRegistrationFixture()
	fx.users.add(models.User{ID: 1, Username: "alice"})

	_, err := fx.service.Register(context.Background(), 1, RegisterInput{TournamentID: 99})
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestCancelSoftCancelsAndDecrements(t *testing.T) {
	fx := newRegistrationFixture()
	fx.users.add(models.User{ID: 1, Username: "alice"})
	fx.users.add(models.User{ID: 2, Username: "org"})
	tournament := fx.seedTournament(models.Tournament{ID: 10, Name: "Cup", MaxTeams: 4, OrganizerID: 2})

	reg, err := fx.service.Register(context.Background(), 1, RegisterInput{TournamentID: tournament.ID})
	require.NoError(t, err)

	require.NoError(t, fx.service.Cancel(context.Background(), reg.ID, 1))

	stored, err := fx.regs.FindByID(context.Background(), reg.ID)
	require.NoError(t, err, "cancellation must not delete the row")
	assert.Equal(t, models.RegistrationCancelled, stored.Status)

	tstored, _ := fx.tournaments.GetByID(context.Background(), tournament.ID)
	assert.Equal(t, 0, tstored.RegisteredTeams)
}

func TestCancelRequiresOwnership(t *testing.T) {
	fx := newRegistrationFixture()
	fx.users.add(models.User{ID: 1, Username: "alice"})
	fx.users.add(models.User{ID: 2, Username: "org"})
	tournament := fx.seedTournament(models.Tournament{ID: 10, Name: "Cup", MaxTeams: 4, OrganizerID: 2})

	reg, err := fx.service.Register(context.Background(), 1, RegisterInput{TournamentID: tournament.ID})
	require.NoError(t, err)

	err = fx.service.Cancel(context.Background(), reg.ID, 2)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

// The counter never goes below zero even if cancellations race ahead of it.
func TestCancelClampsCounterAtZero(t *testing.T) {
	fx := newRegistrationFixture()
	fx.users.add(models.User{ID: 1, Username: "alice"})
	fx.users.add(models.User{ID: 2, Username: "org"})
	tournament := fx.seedTournament(models.Tournament{ID: 10, Name: "Cup", MaxTeams: 4, RegisteredTeams: 0, OrganizerID: 2})

	reg := &models.Registration{TournamentID: tournament.ID, PlayerID: 1, Status: models.RegistrationConfirmed}
	require.NoError(t, fx.regs.Create(context.Background(), nil, reg))

	require.NoError(t, fx.service.Cancel(context.Background(), reg.ID, 1))

	stored, _ := fx.tournaments.GetByID(context.Background(), tournament.ID)
	assert.Equal(t, 0, stored.RegisteredTeams)
	require.Len(t, fx.notifier.countEvents, 1)
	assert.Equal(t, 0, fx.notifier.countEvents[0].registeredTeams)
}

// The roster only lists confirmed registrations; cancelled rows stay in the
// table but never show up.
func TestRosterExcludesCancelledRegistrations(t *testing.T) {
	fx := newRegistrationFixture()
	fx.users.add(models.User{ID: 1, Username: "alice"})
	fx.users.add(models.User{ID: 2, Username: "bob"})
	fx.users.add(models.User{ID: 3, Username: "org"})
	tournament := fx.seedTournament(models.Tournament{ID: 10, Name: "Cup", MaxTeams: 4, OrganizerID: 3})

	_, err := fx.service.Register(context.Background(), 1, RegisterInput{TournamentID: tournament.ID})
	require.NoError(t, err)
	bobReg, err := fx.service.Register(context.Background(), 2, RegisterInput{TournamentID: tournament.ID})
	require.NoError(t, err)
	require.NoError(t, fx.service.Cancel(context.Background(), bobReg.ID, 2))

	roster, err := fx.service.ListByTournament(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, 1, roster[0].PlayerID)
}

// Re-registering after a cancellation revives the existing row instead of
// inserting a second one, keeping the (tournament, player) pair unique.
func TestReRegisterAfterCancelRevivesRow(t *testing.T) {
	fx := newRegistrationFixture()
	fx.users.add(models.User{ID: 1, Username: "alice"})
	fx.users.add(models.User{ID: 2, Username: "org"})
	tournament := fx.seedTournament(models.Tournament{ID: 10, Name: "Paid Cup", EntryFee: 50, MaxTeams: 4, OrganizerID: 2})
	fx.wallets.seed(1, 200)

	first, err := fx.service.Register(context.Background(), 1, RegisterInput{
		TournamentID: tournament.ID,
		TeamName:     "Old Team",
		Email:        "old@example.com",
		InGameID:     "OLD123",
	})
	require.NoError(t, err)
	require.NoError(t, fx.service.Cancel(context.Background(), first.ID, 1))

	second, err := fx.service.Register(context.Background(), 1, RegisterInput{
		TournamentID: tournament.ID,
		TeamName:     "New Team",
		Email:        "new@example.com",
		InGameID:     "NEW456",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.RegistrationConfirmed, second.Status)

	// the revived row carries the newly submitted details
	stored, err := fx.regs.FindByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Team", stored.TeamName)
	assert.Equal(t, "new@example.com", stored.Email)
	assert.Equal(t, "NEW456", stored.InGameID)

	// fee charged on both registrations
	playerBalance, _ := fx.wallets.balanceOf(1)
	assert.Equal(t, 100.0, playerBalance)

	confirmed := models.RegistrationConfirmed
	rows, err := fx.regs.ListByTournament(context.Background(), nil, tournament.ID, &confirmed)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
