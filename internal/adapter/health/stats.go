package health

import (
	"sync"
	"time"

	"github.com/thushan/redis-watcher/internal/core/domain"
)

// WatchdogStats is a point in time snapshot for the status endpoint
type WatchdogStats struct {
	LastProbeAt   time.Time              `json:"last_probe_at"`
	OutageSince   time.Time              `json:"outage_since,omitempty"`
	LastRestart   *domain.RestartReport  `json:"-"`
	LastStatus    string                 `json:"last_status"`
	LastDetail    string                 `json:"last_detail,omitempty"`
	State         string                 `json:"state"`
	LastLatency   time.Duration          `json:"last_latency"`
	Probes        uint64                 `json:"probes"`
	Failures      uint64                 `json:"failures"`
	Episodes      uint64                 `json:"episodes"`
	Notifications []domain.NotifyOutcome `json:"-"`
}

// statsCollector is written by the tick goroutine and read by the status
// server, it has its own lock so readers never wait on a slow tick
type statsCollector struct {
	stats WatchdogStats
	mu    sync.RWMutex
}

func newStatsCollector() *statsCollector {
	return &statsCollector{
		stats: WatchdogStats{State: domain.StateHealthy.String()},
	}
}

func (sc *statsCollector) recordProbe(result domain.HealthCheckResult) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.stats.Probes++
	if result.Status.IsFailure() {
		sc.stats.Failures++
	}
	sc.stats.LastProbeAt = result.CheckedAt
	sc.stats.LastStatus = result.Status.String()
	sc.stats.LastDetail = result.Detail
	sc.stats.LastLatency = result.Latency
}

func (sc *statsCollector) recordState(tracker *OutageTracker) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.stats.State = tracker.State().String()
	sc.stats.OutageSince = tracker.Since()
	sc.stats.Episodes = tracker.Episodes()
}

func (sc *statsCollector) recordNotifications(outcomes []domain.NotifyOutcome) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.stats.Notifications = outcomes
}

func (sc *statsCollector) recordRestart(report domain.RestartReport) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.stats.LastRestart = &report
}

func (sc *statsCollector) snapshot() WatchdogStats {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	out := sc.stats
	if sc.stats.Notifications != nil {
		out.Notifications = append([]domain.NotifyOutcome(nil), sc.stats.Notifications...)
	}
	return out
}
