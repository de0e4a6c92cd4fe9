package ports

import (
	"context"

	"github.com/thushan/redis-watcher/internal/core/domain"
)

// HealthProbe performs one connectivity check against the monitored store.
// Probe never returns an error, failures are encoded in the result.
type HealthProbe interface {
	Probe(ctx context.Context) domain.HealthCheckResult
	Target() string
}

// Notifier is a single operator notification channel (mail, sms...)
type Notifier interface {
	Name() string
	Notify(ctx context.Context, reason string) error
}

// NotificationGateway invokes every configured notifier independently and
// reports one outcome per notifier
type NotificationGateway interface {
	Notify(ctx context.Context, reason string) []domain.NotifyOutcome
}

// WorkloadClient is the orchestrator's fetch/update protocol. Update must be
// given the index returned by the immediately preceding Fetch of the same
// attempt.
type WorkloadClient interface {
	Fetch(ctx context.Context, id string) (domain.WorkloadVersion, error)
	Update(ctx context.Context, id string, index uint64, spec domain.WorkloadSpec) error
}

// Restarter forces a restart of every workload and returns outcomes in order
type Restarter interface {
	RestartAll(ctx context.Context, workloads []domain.WorkloadDescriptor) []domain.RestartOutcome
}
