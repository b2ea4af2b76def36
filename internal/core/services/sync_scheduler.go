package services

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
)

// SyncScheduler triggers periodic full exports.
type SyncScheduler struct {
	BaseService
	sync         portssvc.SyncSvc
	interval     time.Duration
	runOnStartup bool
}

// NewSyncScheduler creates a scheduler running svc every interval.
func NewSyncScheduler(svc portssvc.SyncSvc, interval time.Duration, runOnStartup bool) *SyncScheduler {
	return &SyncScheduler{sync: svc, interval: interval, runOnStartup: runOnStartup}
}

// Run blocks until ctx is cancelled.
func (s *SyncScheduler) Run(ctx context.Context) {
	s.LogInfo(ctx, "Sync scheduler started",
		slog.Duration("interval", s.interval),
		slog.Bool("run_on_startup", s.runOnStartup))
	if s.runOnStartup {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.LogInfo(ctx, "Sync scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *SyncScheduler) runOnce(ctx context.Context) {
	run, err := s.sync.SyncAll(ctx, false)
	if err != nil {
		s.LogError(ctx, err, "Scheduled synchronization failed")
		return
	}
	if run.Failed() {
		_, _, failed := run.Counts()
		s.LogWarn(ctx, "Scheduled synchronization finished with failures", slog.Int("failed_clients", failed))
	}
}
