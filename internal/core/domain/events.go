package domain

import "time"

// WatchEvent is published after every completed tick. Outage is set on the
// two episode edges, Notifications only when an outage started and Restart
// only when one ended.
type WatchEvent struct {
	At            time.Time
	Outage        *OutageEvent
	Restart       *RestartReport
	Target        string
	Notifications []NotifyOutcome
	Result        HealthCheckResult
	State         OutageState
}

func (e WatchEvent) IsTransition() bool {
	return e.Outage != nil
}
