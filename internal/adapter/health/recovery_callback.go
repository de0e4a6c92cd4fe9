package health

import (
	"context"
	"time"

	"github.com/thushan/redis-watcher/internal/core/domain"
	"github.com/thushan/redis-watcher/internal/core/ports"
)

// RecoveryCallback runs exactly once when an outage episode ends
type RecoveryCallback interface {
	OnRecovered(ctx context.Context, event domain.OutageEvent) domain.RestartReport
}

// RecoveryCallbackFunc is a function adapter for RecoveryCallback
type RecoveryCallbackFunc func(ctx context.Context, event domain.OutageEvent) domain.RestartReport

func (f RecoveryCallbackFunc) OnRecovered(ctx context.Context, event domain.OutageEvent) domain.RestartReport {
	return f(ctx, event)
}

// NoOpRecoveryCallback is used when no dependent workloads are configured
type NoOpRecoveryCallback struct{}

func (NoOpRecoveryCallback) OnRecovered(_ context.Context, event domain.OutageEvent) domain.RestartReport {
	now := time.Now()
	return domain.RestartReport{Episode: event.Episode, StartedAt: now, FinishedAt: now}
}

// RestartOnRecovery forces a restart of every dependent workload so they
// re-establish their connections to the recovered store
type RestartOnRecovery struct {
	restarter ports.Restarter
	workloads []domain.WorkloadDescriptor
}

func NewRestartOnRecovery(restarter ports.Restarter, workloads []domain.WorkloadDescriptor) *RestartOnRecovery {
	return &RestartOnRecovery{
		restarter: restarter,
		workloads: workloads,
	}
}

func (r *RestartOnRecovery) OnRecovered(ctx context.Context, event domain.OutageEvent) domain.RestartReport {
	report := domain.RestartReport{
		Episode:   event.Episode,
		StartedAt: time.Now(),
	}
	report.Outcomes = r.restarter.RestartAll(ctx, r.workloads)
	report.FinishedAt = time.Now()
	return report
}
