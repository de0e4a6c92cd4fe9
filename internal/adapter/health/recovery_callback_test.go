package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thushan/redis-watcher/internal/core/domain"
	"github.com/thushan/redis-watcher/internal/core/ports"
)

func TestRestartOnRecovery_RestartsConfiguredWorkloads(t *testing.T) {
	restarter := &ports.MockRestarter{}
	workloads := domain.NewWorkloadDescriptors([]string{"svc-api", "svc-worker"})

	cb := NewRestartOnRecovery(restarter, workloads)
	report := cb.OnRecovered(context.Background(), domain.OutageEvent{Type: domain.OutageEnded, Episode: 4})

	require.Equal(t, 1, restarter.Count())
	assert.Equal(t, workloads, restarter.Invocations[0])
	assert.Equal(t, uint64(4), report.Episode)
	assert.Len(t, report.Outcomes, 2)
	assert.Equal(t, 2, report.Succeeded())
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
}

func TestRecoveryCallbackFunc(t *testing.T) {
	called := 0
	cb := RecoveryCallbackFunc(func(ctx context.Context, event domain.OutageEvent) domain.RestartReport {
		called++
		return domain.RestartReport{Episode: event.Episode}
	})

	report := cb.OnRecovered(context.Background(), domain.OutageEvent{Episode: 2})
	assert.Equal(t, 1, called)
	assert.Equal(t, uint64(2), report.Episode)
}

func TestNoOpRecoveryCallback(t *testing.T) {
	report := NoOpRecoveryCallback{}.OnRecovered(context.Background(), domain.OutageEvent{Episode: 1})
	assert.Empty(t, report.Outcomes)
	assert.Equal(t, uint64(1), report.Episode)
}
