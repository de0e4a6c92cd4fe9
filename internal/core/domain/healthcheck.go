package domain

import (
	"time"
)

// ProbeStatus classifies a single probe of the monitored store
type ProbeStatus int

const (
	ProbeHealthy ProbeStatus = iota
	ProbeUnreachable
	ProbeProtocolError
)

func (s ProbeStatus) String() string {
	switch s {
	case ProbeHealthy:
		return "healthy"
	case ProbeUnreachable:
		return "unreachable"
	case ProbeProtocolError:
		return "protocol_error"
	default:
		return "unknown"
	}
}

// IsFailure reports whether the status counts towards an outage
func (s ProbeStatus) IsFailure() bool {
	return s == ProbeUnreachable || s == ProbeProtocolError
}

// HealthCheckResult is produced once per tick and consumed immediately.
// Detail and Err are only set for failures.
type HealthCheckResult struct {
	CheckedAt time.Time
	Err       error
	Detail    string
	Latency   time.Duration
	Status    ProbeStatus
}

func (r HealthCheckResult) IsHealthy() bool {
	return r.Status == ProbeHealthy
}

func NewHealthyResult(latency time.Duration) HealthCheckResult {
	return HealthCheckResult{
		Status:    ProbeHealthy,
		Latency:   latency,
		CheckedAt: time.Now(),
	}
}

func NewUnreachableResult(err error, latency time.Duration) HealthCheckResult {
	return newFailedResult(ProbeUnreachable, err, latency)
}

func NewProtocolErrorResult(err error, latency time.Duration) HealthCheckResult {
	return newFailedResult(ProbeProtocolError, err, latency)
}

func newFailedResult(status ProbeStatus, err error, latency time.Duration) HealthCheckResult {
	result := HealthCheckResult{
		Status:    status,
		Err:       err,
		Latency:   latency,
		CheckedAt: time.Now(),
	}
	if err != nil {
		result.Detail = err.Error()
	}
	return result
}
