package domain

import (
	"fmt"
	"regexp"
	"time"
)

// swarm service ids are hex and names follow the engine's object name rules,
// neither allows separators that could steer the request to another endpoint
var workloadIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// ValidateWorkloadID rejects ids that are not a plain service id or name
func ValidateWorkloadID(id string) error {
	if !workloadIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidWorkloadID, id)
	}
	return nil
}

// WorkloadDescriptor identifies a dependent workload, e.g. a swarm service id or name
type WorkloadDescriptor struct {
	ID string
}

func (w WorkloadDescriptor) String() string {
	return w.ID
}

func NewWorkloadDescriptors(ids []string) []WorkloadDescriptor {
	workloads := make([]WorkloadDescriptor, 0, len(ids))
	for _, id := range ids {
		workloads = append(workloads, WorkloadDescriptor{ID: id})
	}
	return workloads
}

// WorkloadSpec is the orchestrator's spec document for a workload, kept as a
// generic JSON tree so fields we do not know about survive the round trip.
type WorkloadSpec map[string]interface{}

// DeepCopy returns a copy sharing no maps or slices with the receiver
func (s WorkloadSpec) DeepCopy() WorkloadSpec {
	if s == nil {
		return nil
	}
	return deepCopyValue(map[string]interface{}(s)).(map[string]interface{})
}

func deepCopyValue(v interface{}) interface{} {
	switch typed := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(typed))
		for k, child := range typed {
			out[k] = deepCopyValue(child)
		}
		return out
	case WorkloadSpec:
		return deepCopyValue(map[string]interface{}(typed))
	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, child := range typed {
			out[i] = deepCopyValue(child)
		}
		return out
	default:
		return typed
	}
}

// WorkloadVersion is fetched fresh for every restart attempt and never shared.
// Index is the optimistic concurrency token presented back on update.
type WorkloadVersion struct {
	Spec  WorkloadSpec
	Index uint64
}

type RestartOutcomeKind int

const (
	RestartOK RestartOutcomeKind = iota
	RestartFetchFailed
	RestartSpecInvalid
	RestartUpdateRejected
)

func (k RestartOutcomeKind) String() string {
	switch k {
	case RestartOK:
		return "ok"
	case RestartFetchFailed:
		return "fetch_failed"
	case RestartSpecInvalid:
		return "spec_invalid"
	case RestartUpdateRejected:
		return "update_rejected"
	default:
		return "unknown"
	}
}

// RestartOutcome is the result of one workload's restart attempt.
// VersionIndex is the index read by this attempt's fetch, zero if the fetch failed.
type RestartOutcome struct {
	Err          error
	Workload     string
	Duration     time.Duration
	VersionIndex uint64
	Kind         RestartOutcomeKind
}

func (o RestartOutcome) OK() bool {
	return o.Kind == RestartOK
}

// RestartReport collects the outcomes of one episode's restart fan-out, in
// configured workload order
type RestartReport struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []RestartOutcome
	Episode    uint64
}

func (r RestartReport) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

func (r RestartReport) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}
