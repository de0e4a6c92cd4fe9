package ports

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/thushan/redis-watcher/internal/core/domain"
)

// MockHealthProbe replays a scripted sequence of probe statuses, it's handy
// for driving the watchdog through whole outage episodes in tests. Once the
// script is exhausted the last status repeats.
type MockHealthProbe struct {
	script []domain.ProbeStatus
	calls  int
	mu     sync.Mutex
}

func NewMockHealthProbe(script ...domain.ProbeStatus) *MockHealthProbe {
	return &MockHealthProbe{script: script}
}

func (m *MockHealthProbe) Probe(ctx context.Context) domain.HealthCheckResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := domain.ProbeHealthy
	if len(m.script) > 0 {
		idx := m.calls
		if idx >= len(m.script) {
			idx = len(m.script) - 1
		}
		status = m.script[idx]
	}
	m.calls++

	switch status {
	case domain.ProbeUnreachable:
		return domain.NewUnreachableResult(errors.New("connection refused"), time.Millisecond)
	case domain.ProbeProtocolError:
		return domain.NewProtocolErrorResult(errors.New("WRONGPASS invalid username-password pair"), time.Millisecond)
	default:
		return domain.NewHealthyResult(time.Millisecond)
	}
}

func (m *MockHealthProbe) Target() string {
	return "mock:6379"
}

func (m *MockHealthProbe) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockNotifier records every reason it was asked to deliver
type MockNotifier struct {
	Err     error
	name    string
	reasons []string
	mu      sync.Mutex
}

func NewMockNotifier(name string, err error) *MockNotifier {
	return &MockNotifier{name: name, Err: err}
}

func (m *MockNotifier) Name() string {
	return m.name
}

func (m *MockNotifier) Notify(ctx context.Context, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reasons = append(m.reasons, reason)
	return m.Err
}

func (m *MockNotifier) Reasons() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.reasons))
	copy(out, m.reasons)
	return out
}

// MockWorkloadClient serves canned versions per workload and records updates.
// Specs are deep copied on the way out so callers can't mutate the fixtures.
type MockWorkloadClient struct {
	Versions  map[string]domain.WorkloadVersion
	FetchErr  map[string]error
	UpdateErr map[string]error
	Updates   []MockUpdate
	Fetches   []string
	mu        sync.Mutex
}

type MockUpdate struct {
	Spec  domain.WorkloadSpec
	ID    string
	Index uint64
}

func NewMockWorkloadClient() *MockWorkloadClient {
	return &MockWorkloadClient{
		Versions:  make(map[string]domain.WorkloadVersion),
		FetchErr:  make(map[string]error),
		UpdateErr: make(map[string]error),
	}
}

func (m *MockWorkloadClient) Fetch(ctx context.Context, id string) (domain.WorkloadVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Fetches = append(m.Fetches, id)
	if err, ok := m.FetchErr[id]; ok {
		return domain.WorkloadVersion{}, domain.NewFetchError(id, 0, err)
	}
	version, ok := m.Versions[id]
	if !ok {
		return domain.WorkloadVersion{}, domain.NewFetchError(id, 404, errors.New("no such service"))
	}
	return domain.WorkloadVersion{Index: version.Index, Spec: version.Spec.DeepCopy()}, nil
}

func (m *MockWorkloadClient) Update(ctx context.Context, id string, index uint64, spec domain.WorkloadSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Updates = append(m.Updates, MockUpdate{ID: id, Index: index, Spec: spec})
	if err, ok := m.UpdateErr[id]; ok {
		return domain.NewUpdateError(id, 0, err)
	}
	return nil
}

func (m *MockWorkloadClient) UpdatesSnapshot() []MockUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockUpdate, len(m.Updates))
	copy(out, m.Updates)
	return out
}

// MockRestarter counts RestartAll invocations
type MockRestarter struct {
	Invocations [][]domain.WorkloadDescriptor
	mu          sync.Mutex
}

func (m *MockRestarter) RestartAll(ctx context.Context, workloads []domain.WorkloadDescriptor) []domain.RestartOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invocations = append(m.Invocations, workloads)

	outcomes := make([]domain.RestartOutcome, 0, len(workloads))
	for _, w := range workloads {
		outcomes = append(outcomes, domain.RestartOutcome{Workload: w.ID, Kind: domain.RestartOK})
	}
	return outcomes
}

func (m *MockRestarter) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Invocations)
}

// MockNotificationGateway fans out to its notifiers sequentially and counts
// how many times it was invoked
type MockNotificationGateway struct {
	Notifiers []Notifier
	calls     int
	mu        sync.Mutex
}

func NewMockNotificationGateway(notifiers ...Notifier) *MockNotificationGateway {
	return &MockNotificationGateway{Notifiers: notifiers}
}

func (m *MockNotificationGateway) Notify(ctx context.Context, reason string) []domain.NotifyOutcome {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	outcomes := make([]domain.NotifyOutcome, 0, len(m.Notifiers))
	for _, n := range m.Notifiers {
		outcomes = append(outcomes, domain.NotifyOutcome{Notifier: n.Name(), Err: n.Notify(ctx, reason)})
	}
	return outcomes
}

func (m *MockNotificationGateway) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
