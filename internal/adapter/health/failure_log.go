package health

import (
	"time"
)

const (
	DefaultFailureLogEvery   = 10
	DefaultFailureLogTimeout = 2 * time.Minute
)

// failureLogThrottle keeps a long outage from flooding the log. The first
// failure of an episode is always logged, after that every 10th failure or
// one every couple of minutes, whichever comes first.
type failureLogThrottle struct {
	lastLogged time.Time
	every      int64
	timeout    time.Duration
	count      int64
}

func newFailureLogThrottle() *failureLogThrottle {
	return &failureLogThrottle{
		every:   DefaultFailureLogEvery,
		timeout: DefaultFailureLogTimeout,
	}
}

// ShouldLog records a failure at now and reports whether it should be
// logged along with how many failures the episode has seen
func (f *failureLogThrottle) ShouldLog(now time.Time) (bool, int64) {
	f.count++
	if f.count == 1 || f.count%f.every == 0 || now.Sub(f.lastLogged) > f.timeout {
		f.lastLogged = now
		return true, f.count
	}
	return false, f.count
}

func (f *failureLogThrottle) Reset() {
	f.count = 0
	f.lastLogged = time.Time{}
}
