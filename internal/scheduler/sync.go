package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/mrlokans/weread2notion/internal/syncer"
)

// Runner performs one synchronization pass.
type Runner interface {
	Run(ctx context.Context) (syncer.Result, error)
}

// SyncScheduler runs a Runner on a cron schedule. A tick that fires while
// the previous run is still in progress is skipped.
type SyncScheduler struct {
	runner   Runner
	schedule string
	logger   zerolog.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSyncing  bool
	baseCtx    context.Context
	cancelFunc context.CancelFunc
}

// NewSyncScheduler creates a new scheduler instance. schedule is a standard
// five-field cron expression.
func NewSyncScheduler(runner Runner, schedule string, logger zerolog.Logger) *SyncScheduler {
	return &SyncScheduler{
		runner:   runner,
		schedule: schedule,
		logger:   logger.With().Str("component", "scheduler").Logger(),
		cron:     cron.New(cron.WithParser(parser)),
		baseCtx:  context.Background(),
	}
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks that schedule is a valid five-field cron expression.
func ValidateSchedule(schedule string) error {
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	return nil
}

// Start begins the scheduler. Runs stop being scheduled once ctx is done.
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return err
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSync()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)
	s.baseCtx = cancelCtx

	s.cron.Start()
	s.isRunning = true

	s.logger.Info().
		Str("schedule", s.schedule).
		Time("next_run", s.cron.Entry(entryID).Next).
		Msg("scheduler started")

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops scheduling new runs, cancels a run in progress and waits for
// it to return.
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancelFunc
	s.cancelFunc = nil
	entryID := s.entryID
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-s.cron.Stop().Done()
	s.cron.Remove(entryID)

	s.logger.Info().Msg("scheduler stopped")
}

// RunNow triggers an immediate sync in the background.
func (s *SyncScheduler) RunNow() {
	go s.runSync()
}

// IsRunning returns whether the scheduler is active
func (s *SyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsSyncing returns whether a sync is currently in progress
func (s *SyncScheduler) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}

// NextRunTime returns when the next sync will occur, or nil when stopped.
func (s *SyncScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	t := s.cron.Entry(s.entryID).Next
	return &t
}

func (s *SyncScheduler) runSync() {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		s.logger.Info().Msg("sync skipped, previous run still in progress")
		return
	}
	s.isSyncing = true
	ctx := s.baseCtx
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	startTime := time.Now()
	result, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("run_id", result.RunID).Msg("scheduled sync failed")
		return
	}

	s.logger.Info().
		Str("run_id", result.RunID).
		Int("synced", result.Synced).
		Dur("duration", time.Since(startTime).Round(time.Millisecond)).
		Msg("scheduled sync finished")
}
