package handlers

import (
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/thushan/redis-watcher/internal/adapter/health"
	"github.com/thushan/redis-watcher/internal/adapter/status"
	"github.com/thushan/redis-watcher/internal/core/domain"
	"github.com/thushan/redis-watcher/pkg/format"
)

type OutageSummary struct {
	State      string    `json:"state"`
	Since      time.Time `json:"since,omitempty"`
	Duration   string    `json:"duration,omitempty"`
	LastProbe  string    `json:"last_probe"`
	LastStatus string    `json:"last_status"`
	LastDetail string    `json:"last_detail,omitempty"`
	Latency    string    `json:"latency"`
	Probes     uint64    `json:"probes"`
	Failures   uint64    `json:"failures"`
	Episodes   uint64    `json:"episodes"`
}

type RestartSummary struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Episode    uint64    `json:"episode"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
}

type StatusResponse struct {
	Timestamp   time.Time               `json:"timestamp"`
	LastRestart *RestartSummary         `json:"last_restart,omitempty"`
	Target      string                  `json:"target"`
	Uptime      string                  `json:"uptime"`
	Outage      OutageSummary           `json:"outage"`
	Workloads   []status.WorkloadStatus `json:"workloads"`
	Notifiers   []status.NotifierStatus `json:"notifiers"`
	Transitions int64                   `json:"transitions"`
}

func (a *Application) statusHandler(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	stats := a.watchdog.Stats()

	response := StatusResponse{
		Timestamp:   now,
		Target:      a.watchdog.Target(),
		Uptime:      format.Duration(now.Sub(a.StartTime)),
		Outage:      buildOutageSummary(stats, now),
		LastRestart: buildRestartSummary(stats.LastRestart),
		Workloads:   a.store.Workloads(),
		Notifiers:   a.store.Notifiers(),
		Transitions: a.store.Transitions(),
	}

	w.Header().Set(ContentTypeHeader, ContentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_ = jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(response)
}

func buildOutageSummary(stats health.WatchdogStats, now time.Time) OutageSummary {
	summary := OutageSummary{
		State:      stats.State,
		LastProbe:  format.TimeAgo(stats.LastProbeAt),
		LastStatus: stats.LastStatus,
		LastDetail: stats.LastDetail,
		Latency:    format.Latency(stats.LastLatency),
		Probes:     stats.Probes,
		Failures:   stats.Failures,
		Episodes:   stats.Episodes,
	}
	if stats.State == domain.StateInOutage.String() && !stats.OutageSince.IsZero() {
		summary.Since = stats.OutageSince
		summary.Duration = format.Duration(now.Sub(stats.OutageSince))
	}
	return summary
}

func buildRestartSummary(report *domain.RestartReport) *RestartSummary {
	if report == nil {
		return nil
	}
	return &RestartSummary{
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Episode:    report.Episode,
		Succeeded:  report.Succeeded(),
		Failed:     report.Failed(),
	}
}
