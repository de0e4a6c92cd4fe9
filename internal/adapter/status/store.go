package status

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/thushan/redis-watcher/internal/core/domain"
)

// WorkloadStatus is what the status endpoint reports for one workload
type WorkloadStatus struct {
	LastAttempt  time.Time `json:"last_attempt"`
	Workload     string    `json:"workload"`
	LastOutcome  string    `json:"last_outcome"`
	LastError    string    `json:"last_error,omitempty"`
	Duration     string    `json:"duration"`
	VersionIndex uint64    `json:"version_index"`
	Attempts     int64     `json:"attempts"`
	Failures     int64     `json:"failures"`
}

// NotifierStatus tracks delivery attempts per notifier across episodes
type NotifierStatus struct {
	LastAttempt time.Time `json:"last_attempt"`
	Notifier    string    `json:"notifier"`
	LastError   string    `json:"last_error,omitempty"`
	Sent        int64     `json:"sent"`
	Failed      int64     `json:"failed"`
}

type workloadData struct {
	last     atomic.Pointer[lastRestart]
	attempts *xsync.Counter
	failures *xsync.Counter
}

type lastRestart struct {
	at      time.Time
	outcome domain.RestartOutcome
}

type notifierData struct {
	last   atomic.Pointer[lastDelivery]
	sent   *xsync.Counter
	failed *xsync.Counter
}

type lastDelivery struct {
	at  time.Time
	err error
}

// Store keeps the latest restart outcome for every workload and delivery
// counts for every notifier, fed from the watch event stream
type Store struct {
	workloads   *xsync.Map[string, *workloadData]
	notifiers   *xsync.Map[string, *notifierData]
	transitions *xsync.Counter
}

func NewStore() *Store {
	return &Store{
		workloads:   xsync.NewMap[string, *workloadData](),
		notifiers:   xsync.NewMap[string, *notifierData](),
		transitions: xsync.NewCounter(),
	}
}

func (s *Store) Record(event domain.WatchEvent) {
	if event.IsTransition() {
		s.transitions.Inc()
	}

	for _, n := range event.Notifications {
		data := s.notifier(n.Notifier)
		if n.OK() {
			data.sent.Inc()
		} else {
			data.failed.Inc()
		}
		data.last.Store(&lastDelivery{at: event.At, err: n.Err})
	}

	if event.Restart == nil {
		return
	}
	at := event.Restart.FinishedAt
	if at.IsZero() {
		at = event.At
	}
	for _, o := range event.Restart.Outcomes {
		data := s.workload(o.Workload)
		data.attempts.Inc()
		if !o.OK() {
			data.failures.Inc()
		}
		data.last.Store(&lastRestart{at: at, outcome: o})
	}
}

// Consume records events until the channel closes or ctx is done
func (s *Store) Consume(ctx context.Context, events <-chan domain.WatchEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.Record(event)
		}
	}
}

// Workloads returns every workload that has had a restart attempt, sorted by name
func (s *Store) Workloads() []WorkloadStatus {
	result := make([]WorkloadStatus, 0, s.workloads.Size())

	s.workloads.Range(func(name string, data *workloadData) bool {
		ws := WorkloadStatus{
			Workload: name,
			Attempts: data.attempts.Value(),
			Failures: data.failures.Value(),
		}
		if last := data.last.Load(); last != nil {
			ws.LastAttempt = last.at
			ws.LastOutcome = last.outcome.Kind.String()
			ws.VersionIndex = last.outcome.VersionIndex
			ws.Duration = last.outcome.Duration.String()
			if last.outcome.Err != nil {
				ws.LastError = last.outcome.Err.Error()
			}
		}
		result = append(result, ws)
		return true
	})

	sort.Slice(result, func(i, j int) bool {
		return result[i].Workload < result[j].Workload
	})
	return result
}

func (s *Store) Notifiers() []NotifierStatus {
	result := make([]NotifierStatus, 0, s.notifiers.Size())

	s.notifiers.Range(func(name string, data *notifierData) bool {
		ns := NotifierStatus{
			Notifier: name,
			Sent:     data.sent.Value(),
			Failed:   data.failed.Value(),
		}
		if last := data.last.Load(); last != nil {
			ns.LastAttempt = last.at
			if last.err != nil {
				ns.LastError = last.err.Error()
			}
		}
		result = append(result, ns)
		return true
	})

	sort.Slice(result, func(i, j int) bool {
		return result[i].Notifier < result[j].Notifier
	})
	return result
}

func (s *Store) Transitions() int64 {
	return s.transitions.Value()
}

func (s *Store) workload(name string) *workloadData {
	data, _ := s.workloads.LoadOrCompute(name, func() (*workloadData, bool) {
		return &workloadData{
			attempts: xsync.NewCounter(),
			failures: xsync.NewCounter(),
		}, false
	})
	return data
}

func (s *Store) notifier(name string) *notifierData {
	data, _ := s.notifiers.LoadOrCompute(name, func() (*notifierData, bool) {
		return &notifierData{
			sent:   xsync.NewCounter(),
			failed: xsync.NewCounter(),
		}, false
	})
	return data
}
