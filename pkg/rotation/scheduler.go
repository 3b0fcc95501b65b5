// Package rotation repoints every registered file sink to a new date-named
// file when the UTC day changes.
package rotation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"wslogger/pkg/sink"
)

// DefaultInterval is how often the scheduler compares date stamps.
const DefaultInterval = 10 * time.Second

// Rotator is a sink that can be repointed to the file for a given instant.
type Rotator interface {
	Rotate(at time.Time) error
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.interval = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// Scheduler runs the single rotation loop shared by all sinks.
type Scheduler struct {
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu       sync.Mutex
	rotators []Rotator
	stamp    string
}

// NewScheduler creates a Scheduler. The current date stamp is taken as
// already rotated to, since sinks open today's file on creation.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		interval: DefaultInterval,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	s.stamp = sink.DateStamp(s.now())
	return s
}

// Register adds r to the set rotated on each date change.
func (s *Scheduler) Register(r Rotator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotators = append(s.rotators, r)
}

// Stamp returns the last observed date stamp.
func (s *Scheduler) Stamp() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stamp
}

// Check rotates every registered sink if the UTC date changed since the last
// check. It reports whether a rotation happened. On error the stamp is left
// unchanged.
func (s *Scheduler) Check() (bool, error) {
	now := s.now()
	stamp := sink.DateStamp(now)

	s.mu.Lock()
	defer s.mu.Unlock()
	if stamp == s.stamp {
		return false, nil
	}
	for _, r := range s.rotators {
		if err := r.Rotate(now); err != nil {
			return false, fmt.Errorf("rotate to %s: %w", stamp, err)
		}
	}
	s.logger.Info("rotated log files", "from", s.stamp, "to", stamp, "sinks", len(s.rotators))
	s.stamp = stamp
	return true, nil
}

// Run checks every interval until ctx is done or a rotation fails.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Check(); err != nil {
				return err
			}
		}
	}
}
