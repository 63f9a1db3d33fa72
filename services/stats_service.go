package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/repositories"
)

// statsDelay is how long after a tournament's scheduled start the played
// counters of its confirmed registrants are incremented.
const statsDelay = 40 * time.Minute

type StatsService interface {
	// UpdateElapsed processes every tournament whose stats window has elapsed
	// and whose stats_updated flag is unset, incrementing each confirmed
	// registrant's played counter exactly once. Returns the number of
	// tournaments processed.
	UpdateElapsed(ctx context.Context, now time.Time) (int, error)
}

type statsService struct {
	txm              repositories.TxManager
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	userRepo         repositories.UserRepository
	logger           *slog.Logger
}

func NewStatsService(
	txm repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	userRepo repositories.UserRepository,
	logger *slog.Logger,
) StatsService {
	return &statsService{
		txm:              txm,
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

func (s *statsService) UpdateElapsed(ctx context.Context, now time.Time) (int, error) {
	candidates, err := s.tournamentRepo.ListPendingStatsUpdate(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list tournaments pending stats update: %w", err)
	}

	processed := 0
	for _, t := range candidates {
		updateTime := CombineStart(t.StartDate, t.StartTime).Add(statsDelay)
		if now.Before(updateTime) {
			continue
		}

		// One tournament per transaction: the stats_updated flag and every
		// counter increment commit together, so a crash mid-tournament can
		// neither double-count players nor mark the tournament done early.
		if err := s.processTournament(ctx, t); err != nil {
			s.logger.ErrorContext(ctx, "failed to update player stats for tournament",
				slog.Int("tournament_id", t.ID), slog.Any("error", err))
			continue
		}
		processed++
	}
	return processed, nil
}

func (s *statsService) processTournament(ctx context.Context, t models.Tournament) error {
	return s.txm.WithTx(ctx, func(tx repositories.SQLExecutor) error {
		// Read the roster inside the transaction so a registration confirmed
		// while the scan runs is either counted now or left for the next scan,
		// never lost.
		confirmed := models.RegistrationConfirmed
		registrations, err := s.registrationRepo.ListByTournament(ctx, tx, t.ID, &confirmed)
		if err != nil {
			return fmt.Errorf("failed to list confirmed registrations: %w", err)
		}

		if err := s.tournamentRepo.SetStatsUpdated(ctx, tx, t.ID); err != nil {
			return err
		}
		for _, reg := range registrations {
			if err := s.userRepo.IncrementTournamentsPlayed(ctx, tx, reg.PlayerID); err != nil {
				return err
			}
		}
		return nil
	})
}
