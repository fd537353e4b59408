package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Maintainer runs periodic FTS index optimization on a cron schedule
// (e.g. "0 3 * * *" for daily at 3 AM). The store itself is append-only,
// so optimization is the only maintenance the index needs.
type Maintainer struct {
	store    *Store
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewMaintainer creates a maintainer for the given store. An empty
// schedule disables maintenance.
func NewMaintainer(store *Store, schedule string) *Maintainer {
	return &Maintainer{
		store:    store,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "store.maintainer"),
	}
}

// Start registers the optimization job and starts the scheduler.
func (m *Maintainer) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.schedule == "" {
		m.logger.Info("optimize schedule not configured, skipping maintainer")
		return nil
	}
	if m.running {
		return fmt.Errorf("maintainer already running")
	}

	_, err := m.cron.AddFunc(m.schedule, m.runOptimize)
	if err != nil {
		return fmt.Errorf("invalid optimize schedule %q: %w", m.schedule, err)
	}

	m.cron.Start()
	m.running = true

	m.logger.Info("store maintainer started", "schedule", m.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (m *Maintainer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	ctx := m.cron.Stop()
	<-ctx.Done()
	m.running = false

	m.logger.Info("store maintainer stopped")
}

// NextRun returns the time of the next scheduled optimization, or nil when
// the maintainer is not running.
func (m *Maintainer) NextRun() *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}
	entries := m.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}

func (m *Maintainer) runOptimize() {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := m.store.Optimize(ctx); err != nil {
		m.logger.Error("index optimization failed", "error", err)
		return
	}

	m.logger.Info("index optimized", "duration_ms", time.Since(start).Milliseconds())
}
