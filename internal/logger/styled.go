package logger

import (
	"log/slog"

	"github.com/thushan/redis-watcher/internal/core/domain"
)

// StyledLogger is what components log through. The pretty implementation
// highlights targets, workloads and outage states for humans at a terminal,
// the plain one is for pipes, containers and tests.
type StyledLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	InfoWithStatus(msg string, status string, args ...any)
	InfoWithCount(msg string, count int, args ...any)
	InfoWithTarget(msg string, target string, args ...any)
	InfoWithWorkload(msg string, workload string, args ...any)
	WarnWithWorkload(msg string, workload string, args ...any)
	ErrorWithWorkload(msg string, workload string, args ...any)
	InfoOutageState(msg string, target string, state domain.OutageState, args ...any)

	InfoWithContext(msg string, subject string, ctx LogContext)
	WarnWithContext(msg string, subject string, ctx LogContext)
	ErrorWithContext(msg string, subject string, ctx LogContext)

	GetUnderlying() *slog.Logger
	With(args ...any) StyledLogger
}

/**
 * LogContext separates what an operator watching the terminal needs from
 * what we want captured in the log file when something goes wrong, e.g.
 * the full error chain from the orchestrator or the raw probe detail.
 */
type LogContext struct {
	UserArgs     []interface{}
	DetailedArgs []interface{}
}

func outageStateText(state domain.OutageState) string {
	if state == domain.StateInOutage {
		return "DOWN"
	}
	return "UP"
}
