// Package scheduler drives the polling refresh contract. Every
// consumer view registers a callback that fully rebuilds its state from
// the store; the scheduler invokes it at a fixed cadence. There are no
// push notifications anywhere in the system.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/HA2077/SmartChef/pkg/logger"
)

// RefreshFunc rebuilds one view from the store.
type RefreshFunc func()

type refresher struct {
	name string
	fn   RefreshFunc
}

// Scheduler runs each registered refresher on its own ticker loop.
// Each role's loop is independent and single-threaded; suspension
// happens only at ticks.
type Scheduler struct {
	interval   time.Duration
	logger     *logger.Logger
	refreshers []refresher

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New creates a scheduler with the given poll interval.
func New(interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		interval: interval,
		logger:   log.WithComponent("scheduler"),
	}
}

// Register adds a named refresher. Must be called before Start.
func (s *Scheduler) Register(name string, fn RefreshFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshers = append(s.refreshers, refresher{name: name, fn: fn})
}

// Start launches one loop per refresher. Each runs its callback once
// immediately, then on every tick, until the context is cancelled or
// Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	for _, r := range s.refreshers {
		s.wg.Add(1)
		go s.run(ctx, r)
	}
	s.logger.Info("Scheduler started", "refreshers", len(s.refreshers), "interval", s.interval)
}

func (s *Scheduler) run(ctx context.Context, r refresher) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	r.fn()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Refresher stopped", "name", r.name)
			return
		case <-ticker.C:
			start := time.Now()
			r.fn()
			s.logger.Debug("View refreshed", "name", r.name, "duration_ms", time.Since(start).Milliseconds())
		}
	}
}

// Stop cancels all loops and waits for them to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
	s.logger.Info("Scheduler stopped")
}
