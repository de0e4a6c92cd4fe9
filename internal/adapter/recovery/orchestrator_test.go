package recovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thushan/redis-watcher/internal/adapter/orchestrator"
	"github.com/thushan/redis-watcher/internal/core/domain"
	"github.com/thushan/redis-watcher/internal/core/ports"
	"github.com/thushan/redis-watcher/internal/logger"
)

func createTestLogger() logger.StyledLogger {
	_, styled, _, _ := logger.New(&logger.Config{Level: "error"})
	return styled
}

func specWithCounter(counter int) domain.WorkloadSpec {
	return domain.WorkloadSpec{
		"Name": "svc",
		"TaskTemplate": map[string]interface{}{
			"ContainerSpec": map[string]interface{}{"Image": "app:1"},
			"ForceUpdate":   float64(counter),
		},
	}
}

func outcomeKinds(outcomes []domain.RestartOutcome) []domain.RestartOutcomeKind {
	kinds := make([]domain.RestartOutcomeKind, len(outcomes))
	for i, o := range outcomes {
		kinds[i] = o.Kind
	}
	return kinds
}

func TestOrchestrator_FetchFailureDoesNotStopOthers(t *testing.T) {
	client := ports.NewMockWorkloadClient()
	client.Versions["svc-1"] = domain.WorkloadVersion{Index: 10, Spec: specWithCounter(0)}
	client.FetchErr["svc-2"] = errors.New("connection reset by peer")
	client.Versions["svc-3"] = domain.WorkloadVersion{Index: 30, Spec: specWithCounter(5)}

	o := NewOrchestrator(client, createTestLogger(), false)
	outcomes := o.RestartAll(context.Background(), domain.NewWorkloadDescriptors([]string{"svc-1", "svc-2", "svc-3"}))

	assert.Equal(t, []domain.RestartOutcomeKind{domain.RestartOK, domain.RestartFetchFailed, domain.RestartOK}, outcomeKinds(outcomes))
	assert.Equal(t, []string{"svc-1", "svc-2", "svc-3"}, client.Fetches)
	assert.ErrorIs(t, outcomes[1].Err, domain.ErrFetchFailed)
	assert.Len(t, client.UpdatesSnapshot(), 2)
}

func TestOrchestrator_UpdateUsesIndexFromSameFetch(t *testing.T) {
	client := ports.NewMockWorkloadClient()
	client.Versions["svc-a"] = domain.WorkloadVersion{Index: 101, Spec: specWithCounter(1)}
	client.Versions["svc-b"] = domain.WorkloadVersion{Index: 202, Spec: specWithCounter(9)}
	client.Versions["svc-c"] = domain.WorkloadVersion{Index: 303, Spec: specWithCounter(0)}

	o := NewOrchestrator(client, createTestLogger(), false)
	outcomes := o.RestartAll(context.Background(), domain.NewWorkloadDescriptors([]string{"svc-a", "svc-b", "svc-c"}))

	updates := client.UpdatesSnapshot()
	require.Len(t, updates, 3)

	want := map[string]struct {
		index   uint64
		counter uint64
	}{
		"svc-a": {101, 2},
		"svc-b": {202, 10},
		"svc-c": {303, 1},
	}
	for i, u := range updates {
		w := want[u.ID]
		assert.Equal(t, w.index, u.Index, "index for %s", u.ID)
		assert.Equal(t, w.index, outcomes[i].VersionIndex)

		counter, ok := orchestrator.ForceUpdateCounter(u.Spec)
		require.True(t, ok)
		assert.Equal(t, w.counter, counter, "counter for %s", u.ID)
	}
}

func TestOrchestrator_SpecInvalid(t *testing.T) {
	client := ports.NewMockWorkloadClient()
	client.Versions["svc-bad"] = domain.WorkloadVersion{Index: 1, Spec: domain.WorkloadSpec{"Name": "svc-bad"}}
	client.Versions["svc-good"] = domain.WorkloadVersion{Index: 2, Spec: specWithCounter(0)}

	o := NewOrchestrator(client, createTestLogger(), false)
	outcomes := o.RestartAll(context.Background(), domain.NewWorkloadDescriptors([]string{"svc-bad", "svc-good"}))

	assert.Equal(t, []domain.RestartOutcomeKind{domain.RestartSpecInvalid, domain.RestartOK}, outcomeKinds(outcomes))
	assert.ErrorIs(t, outcomes[0].Err, domain.ErrSpecInvalid)
	assert.ErrorIs(t, outcomes[0].Err, orchestrator.ErrMissingTaskTemplate)
	assert.Equal(t, uint64(1), outcomes[0].VersionIndex)

	updates := client.UpdatesSnapshot()
	require.Len(t, updates, 1)
	assert.Equal(t, "svc-good", updates[0].ID)
}

func TestOrchestrator_MissingCounter(t *testing.T) {
	spec := domain.WorkloadSpec{"TaskTemplate": map[string]interface{}{}}

	t.Run("strict", func(t *testing.T) {
		client := ports.NewMockWorkloadClient()
		client.Versions["svc"] = domain.WorkloadVersion{Index: 4, Spec: spec}

		outcomes := NewOrchestrator(client, createTestLogger(), false).
			RestartAll(context.Background(), domain.NewWorkloadDescriptors([]string{"svc"}))
		assert.Equal(t, domain.RestartSpecInvalid, outcomes[0].Kind)
	})

	t.Run("create missing", func(t *testing.T) {
		client := ports.NewMockWorkloadClient()
		client.Versions["svc"] = domain.WorkloadVersion{Index: 4, Spec: spec}

		outcomes := NewOrchestrator(client, createTestLogger(), true).
			RestartAll(context.Background(), domain.NewWorkloadDescriptors([]string{"svc"}))
		assert.Equal(t, domain.RestartOK, outcomes[0].Kind)
	})
}

func TestOrchestrator_UpdateRejected(t *testing.T) {
	client := ports.NewMockWorkloadClient()
	client.Versions["svc-1"] = domain.WorkloadVersion{Index: 1, Spec: specWithCounter(0)}
	client.Versions["svc-2"] = domain.WorkloadVersion{Index: 2, Spec: specWithCounter(0)}
	client.UpdateErr["svc-1"] = errors.New("update out of sequence")

	o := NewOrchestrator(client, createTestLogger(), false)
	outcomes := o.RestartAll(context.Background(), domain.NewWorkloadDescriptors([]string{"svc-1", "svc-2"}))

	assert.Equal(t, []domain.RestartOutcomeKind{domain.RestartUpdateRejected, domain.RestartOK}, outcomeKinds(outcomes))
	assert.ErrorIs(t, outcomes[0].Err, domain.ErrUpdateRejected)

	// one attempt each, no retry on conflict
	assert.Equal(t, []string{"svc-1", "svc-2"}, client.Fetches)
	assert.Len(t, client.UpdatesSnapshot(), 2)
}

func TestOrchestrator_FetchedSpecIsNotMutated(t *testing.T) {
	client := ports.NewMockWorkloadClient()
	fixture := specWithCounter(3)
	client.Versions["svc"] = domain.WorkloadVersion{Index: 1, Spec: fixture}

	NewOrchestrator(client, createTestLogger(), false).
		RestartAll(context.Background(), domain.NewWorkloadDescriptors([]string{"svc"}))

	counter, ok := orchestrator.ForceUpdateCounter(fixture)
	require.True(t, ok)
	assert.Equal(t, uint64(3), counter)
}

func TestOrchestrator_NoWorkloads(t *testing.T) {
	client := ports.NewMockWorkloadClient()
	outcomes := NewOrchestrator(client, createTestLogger(), false).RestartAll(context.Background(), nil)
	assert.Empty(t, outcomes)
	assert.Empty(t, client.Fetches)
}
