package domain

import "time"

// OutageState is the watchdog's view of the monitored store. There is exactly
// one per process and it starts Healthy so the first failure always notifies.
type OutageState int

const (
	StateHealthy OutageState = iota
	StateInOutage
)

func (s OutageState) String() string {
	if s == StateInOutage {
		return "in_outage"
	}
	return "healthy"
}

type OutageEventType int

const (
	OutageStarted OutageEventType = iota + 1
	OutageEnded
)

func (t OutageEventType) String() string {
	switch t {
	case OutageStarted:
		return "outage_started"
	case OutageEnded:
		return "outage_ended"
	default:
		return "unknown"
	}
}

// OutageEvent is emitted on the two edges of an outage episode.
// Reason carries the failure detail that opened the episode.
type OutageEvent struct {
	At        time.Time
	StartedAt time.Time
	Reason    string
	Episode   uint64
	Type      OutageEventType
}

// Duration is how long the episode lasted, zero for OutageStarted
func (e OutageEvent) Duration() time.Duration {
	if e.Type != OutageEnded || e.StartedAt.IsZero() {
		return 0
	}
	return e.At.Sub(e.StartedAt)
}
