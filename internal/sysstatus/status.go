// Package sysstatus reports the admin sidecar's system-health snapshot:
// host CPU/memory, database reachability, and the scheduler's last tick,
// per SPEC_FULL's ambient operations surface.
package sysstatus

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

type Snapshot struct {
	CPUPercent    float64       `json:"cpu_percent"`
	MemoryPercent float64       `json:"memory_percent"`
	UptimeSeconds uint64        `json:"uptime_seconds"`
	DatabaseUp    bool          `json:"database_up"`
	DatabaseLatencyMS int64     `json:"database_latency_ms"`
	LastSchedulerTick time.Time `json:"last_scheduler_tick,omitempty"`
}

// Reporter tracks the most recent scheduler tick timestamp passed to
// RecordSchedulerTick and collects a full snapshot on demand.
// internal/scheduler does not call RecordSchedulerTick, so the timestamp
// stays the zero time unless another caller sets it.
type Reporter struct {
	db           *sqlx.DB
	lastTick     time.Time
}

func NewReporter(db *sqlx.DB) *Reporter { return &Reporter{db: db} }

func (r *Reporter) RecordSchedulerTick(at time.Time) { r.lastTick = at }

func (r *Reporter) Collect(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{LastSchedulerTick: r.lastTick}

	percents, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false)
	if err == nil && len(percents) > 0 {
		snap.CPUPercent = percents[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		snap.MemoryPercent = vm.UsedPercent
	}

	if info, err := host.InfoWithContext(ctx); err == nil {
		snap.UptimeSeconds = info.Uptime
	}

	start := time.Now()
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.db.PingContext(pingCtx); err == nil {
		snap.DatabaseUp = true
		snap.DatabaseLatencyMS = time.Since(start).Milliseconds()
	}

	return snap, nil
}
