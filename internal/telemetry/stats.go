package telemetry

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

// Snapshot is a point-in-time view of host resource usage, attached to
// startup diagnostics and heartbeat log lines.
type Snapshot struct {
	CPUPercent       float64
	MemoryUsedBytes  uint64
	StorageUsedBytes uint64
}

// CollectSnapshot samples host stats. Every probe is best-effort; a
// field that cannot be read stays zero.
func CollectSnapshot(ctx context.Context) Snapshot {
	var s Snapshot

	if percents, err := cpu.PercentWithContext(ctx, 500*time.Millisecond, false); err == nil && len(percents) > 0 {
		s.CPUPercent = percents[0]
	}
	if v, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		s.MemoryUsedBytes = v.Used
	}
	if usage, err := disk.UsageWithContext(ctx, "/"); err == nil {
		s.StorageUsedBytes = usage.Used
	}

	return s
}
