package domain

import (
	"errors"
	"fmt"
)

var (
	ErrFetchFailed     = errors.New("workload fetch failed")
	ErrSpecInvalid     = errors.New("workload spec invalid")
	ErrUpdateRejected  = errors.New("workload update rejected")
	ErrUnexpectedReply = errors.New("unexpected reply")

	ErrInvalidWorkloadID = errors.New("invalid workload id")
)

// ProbeError wraps a failed connectivity check against the monitored store
type ProbeError struct {
	Err     error
	Target  string
	Command string
}

func (e *ProbeError) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("probe %s failed for %s: %v", e.Command, e.Target, e.Err)
	}
	return fmt.Sprintf("probe failed for %s: %v", e.Target, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// WorkloadError is a per-workload failure in the restart protocol. Kind is
// one of ErrFetchFailed, ErrSpecInvalid or ErrUpdateRejected so callers can
// use errors.Is to classify it.
type WorkloadError struct {
	Err        error
	Kind       error
	Workload   string
	Operation  string
	StatusCode int
}

func (e *WorkloadError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s failed for workload %s: HTTP %d: %v", e.Operation, e.Workload, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s failed for workload %s: %v", e.Operation, e.Workload, e.Err)
}

func (e *WorkloadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NewFetchError(workload string, statusCode int, err error) *WorkloadError {
	return &WorkloadError{Operation: "fetch", Kind: ErrFetchFailed, Workload: workload, StatusCode: statusCode, Err: err}
}

func NewSpecError(workload string, err error) *WorkloadError {
	return &WorkloadError{Operation: "derive spec", Kind: ErrSpecInvalid, Workload: workload, Err: err}
}

func NewUpdateError(workload string, statusCode int, err error) *WorkloadError {
	return &WorkloadError{Operation: "update", Kind: ErrUpdateRejected, Workload: workload, StatusCode: statusCode, Err: err}
}

// NotifyError wraps a delivery failure from a single notifier
type NotifyError struct {
	Err      error
	Notifier string
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("notifier %s failed: %v", e.Notifier, e.Err)
}

func (e *NotifyError) Unwrap() error {
	return e.Err
}

type ConfigValidationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s=%v: %s", e.Field, e.Value, e.Reason)
}

func NewConfigValidationError(field string, value interface{}, reason string) *ConfigValidationError {
	return &ConfigValidationError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}
