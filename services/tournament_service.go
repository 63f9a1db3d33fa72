package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/repositories"
	"github.com/esports-arena/tournament-hub/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// TournamentNotifier receives tournament lifecycle events for realtime fan-out.
type TournamentNotifier interface {
	TournamentArchived(tournamentID int, archivedAt time.Time)
	RoomCredentialsUpdated(tournamentID int, room models.RoomCredentials)
}

type CreateTournamentInput struct {
	Name        string                `json:"name"`
	Game        string                `json:"game"`
	Mode        models.TournamentMode `json:"mode"`
	Description *string               `json:"description"`
	PrizePool   float64               `json:"prize_pool"`
	EntryFee    float64               `json:"entry_fee"`
	MaxTeams    int                   `json:"max_teams"`
	StartDate   time.Time             `json:"start_date"`
	StartTime   string                `json:"start_time"`
	EndDate     *time.Time            `json:"end_date"`
	Region      *string               `json:"region"`
	Platform    *string               `json:"platform"`
	Rules       []string              `json:"rules"`
}

type ListTournamentsInput struct {
	Status *models.TournamentStatus
	Game   *string
	Mode   *models.TournamentMode
	Limit  int
	Offset int
}

type TournamentService interface {
	Create(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, input ListTournamentsInput) ([]models.Tournament, error)
	ListByPlayer(ctx context.Context, playerID int) ([]models.Tournament, error)
	Update(ctx context.Context, id, organizerID int, input CreateTournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, id, organizerID int) error
	SetRoomCredentials(ctx context.Context, id, organizerID int, room models.RoomCredentials) error
	UploadBanner(ctx context.Context, id, organizerID int, contentType string, body io.Reader) (*models.Tournament, error)
	// ArchiveElapsed promotes upcoming tournaments whose combined start
	// instant has passed to completed. Safe to run repeatedly.
	ArchiveElapsed(ctx context.Context, now time.Time) (int, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	userRepo       repositories.UserRepository
	uploader       storage.FileUploader
	notifier       TournamentNotifier
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
	notifier TournamentNotifier,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		userRepo:       userRepo,
		uploader:       uploader,
		notifier:       notifier,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error) {
	if err := validateTournamentInput(input); err != nil {
		return nil, err
	}

	organizer, err := s.userRepo.GetByID(ctx, organizerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	tournament := &models.Tournament{
		Name:          input.Name,
		Game:          input.Game,
		Mode:          input.Mode,
		Description:   input.Description,
		PrizePool:     input.PrizePool,
		EntryFee:      input.EntryFee,
		MaxTeams:      input.MaxTeams,
		StartDate:     input.StartDate,
		StartTime:     input.StartTime,
		EndDate:       input.EndDate,
		Status:        models.StatusUpcoming,
		OrganizerID:   organizer.ID,
		OrganizerName: organizer.Username,
		Region:        input.Region,
		Platform:      input.Platform,
		Rules:         input.Rules,
	}
	if tournament.Rules == nil {
		tournament.Rules = []string{}
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	s.populateBannerURL(tournament)
	return tournament, nil
}

// List returns tournaments matching the filter. Completed tournaments are
// excluded unless a status is requested explicitly.
func (s *tournamentService) List(ctx context.Context, input ListTournamentsInput) ([]models.Tournament, error) {
	if input.Status != nil && !isValidTournamentStatus(*input.Status) {
		return nil, ErrTournamentInvalidStatus
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{
		Status:           input.Status,
		Game:             input.Game,
		Mode:             input.Mode,
		ExcludeCompleted: input.Status == nil,
		Limit:            limit,
		Offset:           input.Offset,
	})
	if err != nil {
		return nil, err
	}
	for i := range tournaments {
		s.populateBannerURL(&tournaments[i])
	}
	return tournaments, nil
}

func (s *tournamentService) ListByPlayer(ctx context.Context, playerID int) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	for i := range tournaments {
		s.populateBannerURL(&tournaments[i])
	}
	return tournaments, nil
}

func (s *tournamentService) Update(ctx context.Context, id, organizerID int, input CreateTournamentInput) (*models.Tournament, error) {
	if err := validateTournamentInput(input); err != nil {
		return nil, err
	}

	tournament, err := s.getOwned(ctx, id, organizerID)
	if err != nil {
		return nil, err
	}

	tournament.Name = input.Name
	tournament.Game = input.Game
	tournament.Mode = input.Mode
	tournament.Description = input.Description
	tournament.PrizePool = input.PrizePool
	tournament.EntryFee = input.EntryFee
	tournament.MaxTeams = input.MaxTeams
	tournament.StartDate = input.StartDate
	tournament.StartTime = input.StartTime
	tournament.EndDate = input.EndDate
	tournament.Region = input.Region
	tournament.Platform = input.Platform
	if input.Rules != nil {
		tournament.Rules = input.Rules
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		return nil, err
	}
	s.populateBannerURL(tournament)
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, id, organizerID int) error {
	tournament, err := s.getOwned(ctx, id, organizerID)
	if err != nil {
		return err
	}

	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return err
	}

	if tournament.BannerKey != nil && s.uploader != nil {
		if delErr := s.uploader.Delete(ctx, *tournament.BannerKey); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete tournament banner",
				slog.Int("tournament_id", id), slog.Any("error", delErr))
		}
	}
	return nil
}

func (s *tournamentService) SetRoomCredentials(ctx context.Context, id, organizerID int, room models.RoomCredentials) error {
	if _, err := s.getOwned(ctx, id, organizerID); err != nil {
		return err
	}
	if err := s.tournamentRepo.UpdateRoomCredentials(ctx, id, room); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.RoomCredentialsUpdated(id, room)
	}
	return nil
}

func (s *tournamentService) UploadBanner(ctx context.Context, id, organizerID int, contentType string, body io.Reader) (*models.Tournament, error) {
	tournament, err := s.getOwned(ctx, id, organizerID)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, fmt.Errorf("banner uploads are not configured")
	}

	ext, err := storage.ExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	oldKey := tournament.BannerKey
	key := fmt.Sprintf("tournaments/%d/banner_%s%s", id, uuid.NewString(), ext)

	if _, err := s.uploader.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to upload banner: %w", err)
	}
	if err := s.tournamentRepo.UpdateBannerKey(ctx, id, &key); err != nil {
		return nil, err
	}

	if oldKey != nil {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete previous banner",
				slog.Int("tournament_id", id), slog.Any("error", delErr))
		}
	}

	tournament.BannerKey = &key
	s.populateBannerURL(tournament)
	return tournament, nil
}

func (s *tournamentService) ArchiveElapsed(ctx context.Context, now time.Time) (int, error) {
	upcoming, err := s.tournamentRepo.ListByStatus(ctx, models.StatusUpcoming)
	if err != nil {
		return 0, fmt.Errorf("failed to list upcoming tournaments: %w", err)
	}

	elapsed := make([]models.Tournament, 0, len(upcoming))
	for _, t := range upcoming {
		if CombineStart(t.StartDate, t.StartTime).Before(now) {
			elapsed = append(elapsed, t)
		}
	}
	if len(elapsed) == 0 {
		return 0, nil
	}

	archived := 0
	g, gCtx := errgroup.WithContext(ctx)
	results := make([]bool, len(elapsed))

	for i, t := range elapsed {
		i, t := i, t
		g.Go(func() error {
			// Per-item failures are logged and skipped; the tournament stays
			// upcoming and is retried on the next scan.
			err := s.tournamentRepo.Archive(gCtx, nil, t.ID, sql.NullTime{Time: now, Valid: true})
			if err != nil {
				if !errors.Is(err, repositories.ErrTournamentNotFound) {
					s.logger.ErrorContext(gCtx, "failed to archive tournament",
						slog.Int("tournament_id", t.ID), slog.Any("error", err))
				}
				return nil
			}
			results[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return archived, err
	}

	for i, ok := range results {
		if !ok {
			continue
		}
		archived++
		if s.notifier != nil {
			s.notifier.TournamentArchived(elapsed[i].ID, now)
		}
	}
	return archived, nil
}

func (s *tournamentService) getOwned(ctx context.Context, id, organizerID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if tournament.OrganizerID != organizerID {
		return nil, ErrForbiddenOperation
	}
	return tournament, nil
}

func (s *tournamentService) populateBannerURL(t *models.Tournament) {
	if t == nil || t.BannerKey == nil || *t.BannerKey == "" || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*t.BannerKey); url != "" {
		t.BannerURL = &url
	}
}

func validateTournamentInput(input CreateTournamentInput) error {
	if input.Name == "" {
		return ErrTournamentNameRequired
	}
	switch input.Mode {
	case models.ModeSolo, models.ModeDuo, models.ModeSquad:
	default:
		return ErrTournamentInvalidMode
	}
	if input.MaxTeams < 1 {
		return ErrTournamentInvalidCapacity
	}
	if input.EntryFee < 0 {
		return ErrTournamentInvalidFee
	}
	if input.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrValidationFailed)
	}
	if input.StartTime != "" {
		if _, _, ok := parseClock(input.StartTime); !ok {
			return ErrStartTimeInvalid
		}
	}
	return nil
}

func isValidTournamentStatus(status models.TournamentStatus) bool {
	switch status {
	case models.StatusUpcoming, models.StatusOngoing, models.StatusCompleted, models.StatusCancelled:
		return true
	}
	return false
}
