package caserun

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

// Scheduler triggers test runs. A zero interval means a single run; a
// positive interval runs once immediately and then again on every tick
// until Stop is called or the context ends.
type Scheduler struct {
	interval time.Duration
	run      func() error
	logger   log.Logger

	active atomic.Bool
	quit   chan struct{}
	wg     sync.WaitGroup
}

// NewScheduler builds a scheduler around the given run function.
func NewScheduler(interval time.Duration, run func() error, logger log.Logger) *Scheduler {
	return &Scheduler{
		interval: interval,
		run:      run,
		logger:   logger,
		quit:     make(chan struct{}),
	}
}

// Start performs the first run synchronously and reports its error. With a
// positive interval it then keeps running in the background; use Stop and
// Drain to end and await that loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.run == nil {
		return errors.New("scheduler has no run function")
	}

	s.quit = make(chan struct{})
	s.active.Store(true)

	if err := s.run(); err != nil {
		return err
	}
	if s.interval <= 0 {
		s.logger.Debug("No interval configured, not scheduling further runs")
		return nil
	}

	s.logger.Info("Scheduling runs", "interval", s.interval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if !s.active.Load() {
					return
				}
				if err := s.run(); err != nil {
					s.logger.Error("Scheduled run failed", "error", err)
				}
			case <-s.quit:
				s.logger.Debug("Scheduler stopped")
				return
			case <-ctx.Done():
				s.logger.Debug("Scheduler context ended")
				s.active.Store(false)
				return
			}
		}
	}()

	return nil
}

// Stop ends the tick loop. Safe to call more than once.
func (s *Scheduler) Stop() {
	if !s.active.CompareAndSwap(true, false) {
		return
	}
	close(s.quit)
}

// Stopped reports whether the scheduler is not running.
func (s *Scheduler) Stopped() bool {
	return !s.active.Load()
}

// Drain blocks until the tick loop has exited or ctx expires.
func (s *Scheduler) Drain(ctx context.Context) error {
	idle := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(idle)
	}()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		s.logger.Warn("Gave up waiting for scheduler to drain", "error", ctx.Err())
		return ctx.Err()
	}
}
