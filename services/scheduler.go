package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// scanInterval is the cadence of both background scans.
const scanInterval = 5 * time.Minute

// Scheduler drives the tournament archiver and the player stats updater on a
// fixed interval. Both scans are idempotent, so overlapping or repeated runs
// are harmless.
type Scheduler struct {
	tournaments TournamentService
	stats       StatsService
	logger      *slog.Logger
	sched       gocron.Scheduler
}

func NewScheduler(tournaments TournamentService, stats StatsService, logger *slog.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		tournaments: tournaments,
		stats:       stats,
		logger:      logger,
		sched:       sched,
	}, nil
}

// Start registers both jobs and runs each once immediately, then every
// scanInterval. Failures are logged; the next run retries naturally.
func (s *Scheduler) Start() error {
	_, err := s.sched.NewJob(
		gocron.DurationJob(scanInterval),
		gocron.NewTask(s.runArchiveScan),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	_, err = s.sched.NewJob(
		gocron.DurationJob(scanInterval),
		gocron.NewTask(s.runStatsScan),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	s.sched.Start()
	s.logger.Info("background schedulers started", slog.Duration("interval", scanInterval))
	return nil
}

func (s *Scheduler) Stop() error {
	return s.sched.Shutdown()
}

func (s *Scheduler) runArchiveScan() {
	ctx := context.Background()
	archived, err := s.tournaments.ArchiveElapsed(ctx, time.Now())
	if err != nil {
		s.logger.ErrorContext(ctx, "tournament archive scan failed", slog.Any("error", err))
		return
	}
	if archived > 0 {
		s.logger.InfoContext(ctx, "archived elapsed tournaments", slog.Int("count", archived))
	}
}

func (s *Scheduler) runStatsScan() {
	ctx := context.Background()
	processed, err := s.stats.UpdateElapsed(ctx, time.Now())
	if err != nil {
		s.logger.ErrorContext(ctx, "player stats scan failed", slog.Any("error", err))
		return
	}
	if processed > 0 {
		s.logger.InfoContext(ctx, "updated player stats for tournaments", slog.Int("count", processed))
	}
}
