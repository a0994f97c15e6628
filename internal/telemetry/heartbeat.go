package telemetry

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// HeartbeatProcess periodically logs a liveness line with host resource
// usage. It exists so an operator tailing the log can tell an idle-but-alive
// companion apart from a hung one.
type HeartbeatProcess struct {
	log       *zerolog.Logger
	printerID string
	running   atomic.Bool
}

// NewHeartbeatProcess creates the heartbeat process for this printer.
func NewHeartbeatProcess(log *zerolog.Logger, printerID string) *HeartbeatProcess {
	return &HeartbeatProcess{log: log, printerID: printerID}
}

func (p *HeartbeatProcess) Name() string {
	return "heartbeat"
}

func (p *HeartbeatProcess) Execute(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return nil
	}
	defer p.running.Store(false)

	snapshot := CollectSnapshot(ctx)
	Heartbeats.Inc()

	p.log.Info().
		Str("printer_id", p.printerID).
		Float64("cpu_percent", snapshot.CPUPercent).
		Uint64("memory_used_bytes", snapshot.MemoryUsedBytes).
		Uint64("storage_used_bytes", snapshot.StorageUsedBytes).
		Msg("Companion heartbeat")
	return nil
}

func (p *HeartbeatProcess) IsRunning() bool {
	return p.running.Load()
}

func (p *HeartbeatProcess) IsComplete() bool {
	return false
}
