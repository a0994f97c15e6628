package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler runs a Process on a fixed interval.
type Scheduler struct {
	name     string
	ticker   *time.Ticker
	process  Process
	log      *zerolog.Logger
	interval time.Duration
	mu       sync.Mutex
}

// NewSchedulerWithInterval creates a new scheduler from an "@every ..."
// interval expression.
func NewSchedulerWithInterval(intervalExpr string, process Process, log *zerolog.Logger) (*Scheduler, error) {
	duration, err := ParseEveryExpr(intervalExpr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse interval: %w", err)
	}

	return &Scheduler{
		name:     process.Name(),
		ticker:   time.NewTicker(duration),
		process:  process,
		log:      log,
		interval: duration,
	}, nil
}

// Run starts the scheduler and blocks until the context is cancelled.
// The process runs once immediately, then on every tick.
func (s *Scheduler) Run(ctx context.Context) {
	defer s.ticker.Stop()

	s.log.Debug().
		Str("Process", s.name).
		Dur("interval", s.interval).
		Msg("Starting scheduler")

	s.launchProcess(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Debug().
				Str("Process", s.name).
				Msg("Scheduler received cancellation signal. Exiting...")
			return

		case <-s.ticker.C:
			if s.process.IsComplete() {
				s.log.Debug().
					Str("Process", s.name).
					Msg("Process marked as complete. Stopping scheduling.")
				return
			}
			s.launchProcess(ctx)
		}
	}
}

// ResetInterval changes the ticker interval dynamically.
func (s *Scheduler) ResetInterval(newInterval time.Duration) {
	s.ticker.Reset(newInterval)
	s.mu.Lock()
	s.interval = newInterval
	s.mu.Unlock()
}

// ResetIntervalFromExpr changes the ticker interval using an expression string.
func (s *Scheduler) ResetIntervalFromExpr(intervalExpr string) error {
	duration, err := ParseEveryExpr(intervalExpr)
	if err != nil {
		return fmt.Errorf("failed to parse interval: %w", err)
	}
	s.ResetInterval(duration)
	return nil
}

// GetInterval returns the current interval.
func (s *Scheduler) GetInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *Scheduler) launchProcess(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.process.IsRunning() {
		s.log.Debug().Str("Process", s.name).Msg("Process already executing")
		return
	}

	go func() {
		if err := s.process.Execute(ctx); err != nil {
			s.log.Warn().
				Str("Process", s.name).
				Err(err).
				Msg("Error occurred while executing process.")
		}
	}()
}

// ParseEveryExpr parses an "@every <duration>" interval expression.
func ParseEveryExpr(expr string) (time.Duration, error) {
	const prefix = "@every "
	if expr == "" {
		return 0, fmt.Errorf("empty expression provided")
	}
	if !strings.HasPrefix(expr, prefix) {
		return 0, fmt.Errorf("unsupported format: must start with %q", prefix)
	}
	return time.ParseDuration(strings.TrimPrefix(expr, prefix))
}
