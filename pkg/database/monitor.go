package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrSetup marks a Check that reached the store but whose first-up setup failed.
var ErrSetup = errors.New("store setup failed")

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor tracks whether the relational store is reachable. It pings on a
// fixed interval with no backoff and flips an availability flag that request
// paths read on every call.
type Monitor struct {
	db       Pinger
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	up       atomic.Bool

	setupMu   sync.Mutex
	setup     func(ctx context.Context) error
	setupDone bool
}

// NewMonitor creates a monitor. It reports unavailable until the first successful check.
func NewMonitor(db Pinger, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{db: db, interval: interval, timeout: interval, logger: logger}
}

// Available reports the result of the most recent check.
func (m *Monitor) Available() bool {
	return m.up.Load()
}

// OnFirstAvailable registers fn to run once the store is first reachable,
// before the flag reports it available. Until fn succeeds the store stays
// unavailable and fn is retried on the next successful ping.
func (m *Monitor) OnFirstAvailable(fn func(ctx context.Context) error) {
	m.setupMu.Lock()
	defer m.setupMu.Unlock()
	m.setup = fn
	m.setupDone = false
}

func (m *Monitor) runSetup(ctx context.Context) error {
	m.setupMu.Lock()
	defer m.setupMu.Unlock()
	if m.setupDone || m.setup == nil {
		return nil
	}
	if err := m.setup(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrSetup, err)
	}
	m.setupDone = true
	return nil
}

// Check pings once, runs the pending first-up setup, updates the flag and
// returns the ping or setup error.
func (m *Monitor) Check(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.db.Ping(pingCtx)
	if err == nil {
		if err = m.runSetup(ctx); err != nil {
			m.logger.Error("PostgreSQL reachable but setup failed", slog.String("error", err.Error()))
		}
	}
	now := err == nil
	if was := m.up.Swap(now); was != now {
		if now {
			m.logger.Info("PostgreSQL connection available")
		} else {
			m.logger.Warn("PostgreSQL connection lost", slog.String("error", err.Error()))
		}
	}
	return err
}

// Run checks immediately and then on every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	_ = m.Check(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = m.Check(ctx)
		}
	}
}
