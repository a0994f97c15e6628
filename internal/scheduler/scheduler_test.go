package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/octoeverywhere/companion/internal/logger"
	"github.com/stretchr/testify/require"
)

type countingProcess struct {
	runs     atomic.Int32
	complete atomic.Bool
}

func (p *countingProcess) Name() string { return "counting" }

func (p *countingProcess) Execute(ctx context.Context) error {
	p.runs.Add(1)
	return nil
}

func (p *countingProcess) IsRunning() bool  { return false }
func (p *countingProcess) IsComplete() bool { return p.complete.Load() }

func TestParseEveryExpr(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		want    time.Duration
		wantErr bool
	}{
		{name: "minutes", expr: "@every 5m", want: 5 * time.Minute},
		{name: "compound", expr: "@every 1h30m", want: 90 * time.Minute},
		{name: "empty", expr: "", wantErr: true},
		{name: "missing prefix", expr: "5m", wantErr: true},
		{name: "bad duration", expr: "@every soon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEveryExpr(tt.expr)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNewSchedulerWithInterval_RejectsBadExpr(t *testing.T) {
	log := logger.NewLogger("error", "")
	_, err := NewSchedulerWithInterval("whenever", &countingProcess{}, log)
	require.Error(t, err)
}

func TestSchedulerRun_ExecutesImmediatelyThenOnTicks(t *testing.T) {
	log := logger.NewLogger("error", "")
	process := &countingProcess{}

	s, err := NewSchedulerWithInterval("@every 20ms", process, log)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return process.runs.Load() >= 3
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancellation")
	}
}

func TestSchedulerRun_StopsWhenProcessCompletes(t *testing.T) {
	log := logger.NewLogger("error", "")
	process := &countingProcess{}
	process.complete.Store(true)

	s, err := NewSchedulerWithInterval("@every 10ms", process, log)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop for a complete process")
	}
	// Only the immediate run happened; no further ticks were scheduled.
	require.Eventually(t, func() bool {
		return process.runs.Load() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestResetIntervalFromExpr(t *testing.T) {
	log := logger.NewLogger("error", "")
	s, err := NewSchedulerWithInterval("@every 1h", &countingProcess{}, log)
	require.NoError(t, err)

	require.NoError(t, s.ResetIntervalFromExpr("@every 30s"))
	require.Equal(t, 30*time.Second, s.GetInterval())

	require.Error(t, s.ResetIntervalFromExpr("nope"))
	require.Equal(t, 30*time.Second, s.GetInterval())
}
