package services

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/repositories"
)

// In-memory fakes for the repository layer. They ignore the SQLExecutor
// argument and the transaction manager runs the callback directly, so
// writes are not rolled back on error; the tests only assert state the
// services never touch on their failing paths.

type fakeTxManager struct {
	beginErr error
	onBegin  func() // runs when the transaction opens, before the callback
}

func (f *fakeTxManager) WithTx(ctx context.Context, fn func(tx repositories.SQLExecutor) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	if f.onBegin != nil {
		f.onBegin()
	}
	return fn(nil)
}

// ------------------------
// Users
// ------------------------

type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (f *fakeUserRepo) add(user models.User) *models.User {
	if user.ID == 0 {
		user.ID = f.nextID
	}
	if user.ID >= f.nextID {
		f.nextID = user.ID + 1
	}
	stored := user
	f.users[stored.ID] = &stored
	return &stored
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
		if existing.Username == user.Username {
			return repositories.ErrUserUsernameConflict
		}
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) UpdateAvatarKey(ctx context.Context, userID int, avatarKey *string) error {
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.AvatarKey = avatarKey
	return nil
}

func (f *fakeUserRepo) UpdateStats(ctx context.Context, userID int, stats models.PlayerStats) error {
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	played := user.Stats.TournamentsPlayed
	user.Stats = stats
	user.Stats.TournamentsPlayed = played
	return nil
}

func (f *fakeUserRepo) IncrementTournamentsPlayed(ctx context.Context, exec repositories.SQLExecutor, userID int) error {
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.Stats.TournamentsPlayed++
	return nil
}

// ------------------------
// Wallets
// ------------------------

type fakeWalletRepo struct {
	wallets map[int]*models.Wallet // keyed by wallet ID
	nextID  int

	lockErr error
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: make(map[int]*models.Wallet), nextID: 1}
}

func (f *fakeWalletRepo) seed(userID int, balance float64) {
	f.wallets[f.nextID] = &models.Wallet{ID: f.nextID, UserID: userID, Balance: balance}
	f.nextID++
}

func (f *fakeWalletRepo) balanceOf(userID int) (float64, bool) {
	for _, w := range f.wallets {
		if w.UserID == userID {
			return w.Balance, true
		}
	}
	return 0, false
}

func (f *fakeWalletRepo) byUserID(userID int) *models.Wallet {
	for _, w := range f.wallets {
		if w.UserID == userID {
			return w
		}
	}
	return nil
}

func (f *fakeWalletRepo) GetByUserID(ctx context.Context, exec repositories.SQLExecutor, userID int) (*models.Wallet, error) {
	if w := f.byUserID(userID); w != nil {
		copied := *w
		return &copied, nil
	}
	return nil, repositories.ErrWalletNotFound
}

func (f *fakeWalletRepo) GetByUserIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, userID int) (*models.Wallet, error) {
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	return f.GetByUserID(ctx, exec, userID)
}

func (f *fakeWalletRepo) Create(ctx context.Context, exec repositories.SQLExecutor, wallet *models.Wallet) error {
	wallet.ID = f.nextID
	f.nextID++
	stored := *wallet
	f.wallets[wallet.ID] = &stored
	return nil
}

func (f *fakeWalletRepo) UpdateBalance(ctx context.Context, exec repositories.SQLExecutor, walletID int, balance float64) error {
	wallet, ok := f.wallets[walletID]
	if !ok {
		return repositories.ErrWalletNotFound
	}
	wallet.Balance = balance
	return nil
}

func (f *fakeWalletRepo) ListAll(ctx context.Context) ([]models.Wallet, error) {
	out := make([]models.Wallet, 0, len(f.wallets))
	for _, w := range f.wallets {
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ------------------------
// Transactions
// ------------------------

type fakeTransactionRepo struct {
	records []models.Transaction
}

func (f *fakeTransactionRepo) Create(ctx context.Context, exec repositories.SQLExecutor, tx *models.Transaction) error {
	tx.ID = len(f.records) + 1
	tx.CreatedAt = time.Now()
	f.records = append(f.records, *tx)
	return nil
}

// newestFor returns the most recent record for a user, mirroring the
// created_at descending read order.
func (f *fakeTransactionRepo) newestFor(userID int) *models.Transaction {
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].UserID == userID {
			copied := f.records[i]
			return &copied
		}
	}
	return nil
}

func (f *fakeTransactionRepo) forUser(userID int) []models.Transaction {
	var out []models.Transaction
	for _, r := range f.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeTransactionRepo) ListByUserID(ctx context.Context, userID int, limit, offset int) ([]models.Transaction, error) {
	records := f.forUser(userID)
	// newest first
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (f *fakeTransactionRepo) ListAll(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	out := make([]models.Transaction, len(f.records))
	copy(out, f.records)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// ------------------------
// Tournaments
// ------------------------

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	nextID      int

	archiveErrFor map[int]error
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament), nextID: 1}
}

func (f *fakeTournamentRepo) add(t models.Tournament) *models.Tournament {
	if t.ID == 0 {
		t.ID = f.nextID
	}
	if t.ID >= f.nextID {
		f.nextID = t.ID + 1
	}
	stored := t
	f.tournaments[stored.ID] = &stored
	return &stored
}

func (f *fakeTournamentRepo) Create(ctx context.Context, tournament *models.Tournament) error {
	tournament.ID = f.nextID
	f.nextID++
	tournament.CreatedAt = time.Now()
	stored := *tournament
	f.tournaments[tournament.ID] = &stored
	return nil
}

func (f *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTournamentRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	var out []models.Tournament
	for _, t := range f.tournaments {
		if filter.ExcludeCompleted && t.Status == models.StatusCompleted {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTournamentRepo) ListByPlayer(ctx context.Context, playerID int) ([]models.Tournament, error) {
	return nil, nil
}

func (f *fakeTournamentRepo) Update(ctx context.Context, tournament *models.Tournament) error {
	if _, ok := f.tournaments[tournament.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	stored := *tournament
	f.tournaments[tournament.ID] = &stored
	return nil
}

func (f *fakeTournamentRepo) Delete(ctx context.Context, id int) error {
	if _, ok := f.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(f.tournaments, id)
	return nil
}

func (f *fakeTournamentRepo) UpdateRoomCredentials(ctx context.Context, id int, room models.RoomCredentials) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Room = room
	return nil
}

func (f *fakeTournamentRepo) UpdateBannerKey(ctx context.Context, id int, bannerKey *string) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.BannerKey = bannerKey
	return nil
}

func (f *fakeTournamentRepo) AdjustRegisteredTeams(ctx context.Context, exec repositories.SQLExecutor, id int, delta int) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.RegisteredTeams += delta
	if t.RegisteredTeams < 0 {
		t.RegisteredTeams = 0
	}
	return nil
}

func (f *fakeTournamentRepo) Archive(ctx context.Context, exec repositories.SQLExecutor, id int, archivedAt sql.NullTime) error {
	if err, ok := f.archiveErrFor[id]; ok {
		return err
	}
	t, ok := f.tournaments[id]
	if !ok || t.Status != models.StatusUpcoming {
		return repositories.ErrTournamentNotFound
	}
	t.Status = models.StatusCompleted
	if archivedAt.Valid {
		at := archivedAt.Time
		t.ArchivedAt = &at
	}
	return nil
}

func (f *fakeTournamentRepo) SetStatsUpdated(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.StatsUpdated = true
	return nil
}

func (f *fakeTournamentRepo) ListByStatus(ctx context.Context, statuses ...models.TournamentStatus) ([]models.Tournament, error) {
	var out []models.Tournament
	for _, t := range f.tournaments {
		for _, status := range statuses {
			if t.Status == status {
				out = append(out, *t)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTournamentRepo) ListPendingStatsUpdate(ctx context.Context) ([]models.Tournament, error) {
	var out []models.Tournament
	for _, t := range f.tournaments {
		if t.StatsUpdated {
			continue
		}
		switch t.Status {
		case models.StatusUpcoming, models.StatusOngoing, models.StatusCompleted:
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ------------------------
// Registrations
// ------------------------

type fakeRegistrationRepo struct {
	regs   map[int]*models.Registration
	nextID int
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{regs: make(map[int]*models.Registration), nextID: 1}
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, exec repositories.SQLExecutor, reg *models.Registration) error {
	for _, existing := range f.regs {
		if existing.TournamentID == reg.TournamentID && existing.PlayerID == reg.PlayerID {
			return repositories.ErrRegistrationConflict
		}
	}
	reg.ID = f.nextID
	f.nextID++
	reg.RegisteredAt = time.Now()
	stored := *reg
	f.regs[reg.ID] = &stored
	return nil
}

func (f *fakeRegistrationRepo) FindByID(ctx context.Context, id int) (*models.Registration, error) {
	reg, ok := f.regs[id]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	copied := *reg
	return &copied, nil
}

func (f *fakeRegistrationRepo) FindByPlayerAndTournament(ctx context.Context, exec repositories.SQLExecutor, playerID, tournamentID int) (*models.Registration, error) {
	for _, reg := range f.regs {
		if reg.PlayerID == playerID && reg.TournamentID == tournamentID {
			copied := *reg
			return &copied, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (f *fakeRegistrationRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, statusFilter *models.RegistrationStatus) ([]models.Registration, error) {
	var out []models.Registration
	for _, reg := range f.regs {
		if reg.TournamentID != tournamentID {
			continue
		}
		if statusFilter != nil && reg.Status != *statusFilter {
			continue
		}
		out = append(out, *reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRegistrationRepo) ListByPlayer(ctx context.Context, playerID int) ([]models.Registration, error) {
	var out []models.Registration
	for _, reg := range f.regs {
		if reg.PlayerID == playerID {
			out = append(out, *reg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRegistrationRepo) Revive(ctx context.Context, exec repositories.SQLExecutor, reg *models.Registration) error {
	stored, ok := f.regs[reg.ID]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	stored.Status = reg.Status
	stored.TeamName = reg.TeamName
	stored.Email = reg.Email
	stored.Phone = reg.Phone
	stored.InGameID = reg.InGameID
	stored.RegisteredAt = time.Now()
	reg.RegisteredAt = stored.RegisteredAt
	return nil
}

func (f *fakeRegistrationRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.RegistrationStatus) error {
	reg, ok := f.regs[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	reg.Status = status
	return nil
}

// ------------------------
// Notifier recorder
// ------------------------

type countEvent struct {
	tournamentID    int
	registeredTeams int
}

type recordingNotifier struct {
	countEvents    []countEvent
	archivedEvents []int
	roomEvents     []int
}

func (r *recordingNotifier) RegistrationCountChanged(tournamentID, registeredTeams int) {
	r.countEvents = append(r.countEvents, countEvent{tournamentID, registeredTeams})
}

func (r *recordingNotifier) TournamentArchived(tournamentID int, archivedAt time.Time) {
	r.archivedEvents = append(r.archivedEvents, tournamentID)
}

func (r *recordingNotifier) RoomCredentialsUpdated(tournamentID int, room models.RoomCredentials) {
	r.roomEvents = append(r.roomEvents, tournamentID)
}
