package domain

import "time"

// NotifyOutcome records one notifier's delivery attempt for an outage
type NotifyOutcome struct {
	Err      error
	Notifier string
	Latency  time.Duration
}

func (o NotifyOutcome) OK() bool {
	return o.Err == nil
}
