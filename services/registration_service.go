package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/repositories"
)

type RegisterInput struct {
	TournamentID int    `json:"tournament_id"`
	TeamName     string `json:"team_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	InGameID     string `json:"in_game_id"`
}

type RegistrationService interface {
	Register(ctx context.Context, playerID int, input RegisterInput) (*models.Registration, error)
	Cancel(ctx context.Context, registrationID, requestingUserID int) error
	GetByID(ctx context.Context, id int) (*models.Registration, error)
	ListByPlayer(ctx context.Context, playerID int) ([]models.Registration, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Registration, error)
}

type registrationService struct {
	txm              repositories.TxManager
	registrationRepo repositories.RegistrationRepository
	tournamentRepo   repositories.TournamentRepository
	userRepo         repositories.UserRepository
	walletService    WalletService
	notifier         RegistrationNotifier
}

// RegistrationNotifier receives registration counter changes for realtime
// fan-out. It must not block.
type RegistrationNotifier interface {
	RegistrationCountChanged(tournamentID, registeredTeams int)
}

func NewRegistrationService(
	txm repositories.TxManager,
	registrationRepo repositories.RegistrationRepository,
	tournamentRepo repositories.TournamentRepository,
	userRepo repositories.UserRepository,
	walletService WalletService,
	notifier RegistrationNotifier,
) RegistrationService {
	return &registrationService{
		txm:              txm,
		registrationRepo: registrationRepo,
		tournamentRepo:   tournamentRepo,
		userRepo:         userRepo,
		walletService:    walletService,
		notifier:         notifier,
	}
}

// Register creates a confirmed registration, charging the entry fee when one
// is set. The capacity check, duplicate check, fee charge, registration row
// and counter increment all commit in one transaction with the tournament row
// locked, so two registrations racing for the last slot cannot both pass the
// capacity check, and a failed step cannot leave the fee charged.
func (s *registrationService) Register(ctx context.Context, playerID int, input RegisterInput) (*models.Registration, error) {
	player, err := s.userRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load player: %w", err)
	}

	var created *models.Registration
	var registeredTeams int

	err = s.txm.WithTx(ctx, func(tx repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, tx, input.TournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}

		if tournament.RegisteredTeams >= tournament.MaxTeams {
			return ErrTournamentFull
		}

		existing, err := s.registrationRepo.FindByPlayerAndTournament(ctx, tx, playerID, input.TournamentID)
		if err != nil && !errors.Is(err, repositories.ErrRegistrationNotFound) {
			return err
		}
		if existing != nil && existing.Status != models.RegistrationCancelled {
			return ErrRegistrationConflict
		}

		if tournament.EntryFee > 0 {
			if err := s.walletService.ChargeTournamentEntry(ctx, tx,
				playerID, tournament.OrganizerID, tournament.ID, tournament.Name, tournament.EntryFee,
			); err != nil {
				return err
			}
		}

		if existing != nil {
			// A cancelled registration is revived rather than duplicated so
			// the (tournament_id, player_id) pair stays unique in the DB. The
			// row takes the freshly submitted details, not the stale ones.
			existing.Status = models.RegistrationConfirmed
			existing.TeamName = input.TeamName
			existing.Email = input.Email
			existing.Phone = input.Phone
			existing.InGameID = input.InGameID
			if err := s.registrationRepo.Revive(ctx, tx, existing); err != nil {
				return err
			}
			created = existing
		} else {
			reg := &models.Registration{
				TournamentID: input.TournamentID,
				PlayerID:     playerID,
				PlayerName:   player.Username,
				TeamName:     input.TeamName,
				Email:        input.Email,
				Phone:        input.Phone,
				InGameID:     input.InGameID,
				Status:       models.RegistrationConfirmed,
			}
			if err := s.registrationRepo.Create(ctx, tx, reg); err != nil {
				if errors.Is(err, repositories.ErrRegistrationConflict) {
					return ErrRegistrationConflict
				}
				return err
			}
			created = reg
		}

		if err := s.tournamentRepo.AdjustRegisteredTeams(ctx, tx, tournament.ID, 1); err != nil {
			return err
		}
		registeredTeams = tournament.RegisteredTeams + 1
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.RegistrationCountChanged(input.TournamentID, registeredTeams)
	}
	return created, nil
}

// Cancel soft-cancels a registration (status transition, no delete) and
// decrements the tournament counter, clamped at zero.
func (s *registrationService) Cancel(ctx context.Context, registrationID, requestingUserID int) error {
	reg, err := s.registrationRepo.FindByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrRegistrationNotFound
		}
		return err
	}
	if reg.PlayerID != requestingUserID {
		return ErrForbiddenOperation
	}
	if reg.Status == models.RegistrationCancelled {
		return ErrRegistrationNotFound
	}

	var registeredTeams int
	err = s.txm.WithTx(ctx, func(tx repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, tx, reg.TournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}

		if err := s.registrationRepo.UpdateStatus(ctx, tx, reg.ID, models.RegistrationCancelled); err != nil {
			return err
		}
		if err := s.tournamentRepo.AdjustRegisteredTeams(ctx, tx, reg.TournamentID, -1); err != nil {
			return err
		}

		registeredTeams = tournament.RegisteredTeams - 1
		if registeredTeams < 0 {
			registeredTeams = 0
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.RegistrationCountChanged(reg.TournamentID, registeredTeams)
	}
	return nil
}

func (s *registrationService) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	reg, err := s.registrationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (s *registrationService) ListByPlayer(ctx context.Context, playerID int) ([]models.Registration, error) {
	return s.registrationRepo.ListByPlayer(ctx, playerID)
}

// ListByTournament returns the tournament's roster: confirmed registrations
// only, cancelled rows excluded.
func (s *registrationService) ListByTournament(ctx context.Context, tournamentID int) ([]models.Registration, error) {
	confirmed := models.RegistrationConfirmed
	return s.registrationRepo.ListByTournament(ctx, nil, tournamentID, &confirmed)
}
