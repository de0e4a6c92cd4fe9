package health

import (
	"time"

	"github.com/thushan/redis-watcher/internal/core/domain"
)

/*
Outage state machine:

	Healthy  + failure -> InOutage, emits OutageStarted
	Healthy  + healthy -> Healthy,  no event
	InOutage + failure -> InOutage, no event (debounced)
	InOutage + healthy -> Healthy,  emits OutageEnded

Unreachable and ProtocolError are both failures. The tracker holds no timers
and does no I/O, timestamps come from the results themselves.
*/

// OutageTracker folds probe results into outage episodes. It is not safe for
// concurrent use, the Watchdog serialises access to it.
type OutageTracker struct {
	startedAt time.Time
	reason    string
	episode   uint64
	state     domain.OutageState
}

func NewOutageTracker() *OutageTracker {
	return &OutageTracker{state: domain.StateHealthy}
}

// Transition applies a probe result and returns the event for the edge it
// crossed, if any
func (t *OutageTracker) Transition(result domain.HealthCheckResult) (domain.OutageEvent, bool) {
	failed := result.Status.IsFailure()

	switch t.state {
	case domain.StateHealthy:
		if !failed {
			return domain.OutageEvent{}, false
		}
		t.episode++
		t.state = domain.StateInOutage
		t.startedAt = result.CheckedAt
		t.reason = failureReason(result)
		return domain.OutageEvent{
			Type:      domain.OutageStarted,
			Episode:   t.episode,
			Reason:    t.reason,
			At:        result.CheckedAt,
			StartedAt: t.startedAt,
		}, true

	case domain.StateInOutage:
		if failed {
			return domain.OutageEvent{}, false
		}
		event := domain.OutageEvent{
			Type:      domain.OutageEnded,
			Episode:   t.episode,
			Reason:    t.reason,
			At:        result.CheckedAt,
			StartedAt: t.startedAt,
		}
		t.state = domain.StateHealthy
		t.startedAt = time.Time{}
		t.reason = ""
		return event, true
	}

	return domain.OutageEvent{}, false
}

func (t *OutageTracker) State() domain.OutageState {
	return t.state
}

// Episodes returns how many outages have started since the process began
func (t *OutageTracker) Episodes() uint64 {
	return t.episode
}

// Since returns when the current outage began, zero when healthy
func (t *OutageTracker) Since() time.Time {
	return t.startedAt
}

func failureReason(result domain.HealthCheckResult) string {
	if result.Detail != "" {
		return result.Status.String() + ": " + result.Detail
	}
	return result.Status.String()
}
