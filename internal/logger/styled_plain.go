package logger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thushan/redis-watcher/internal/core/domain"
)

// PlainStyledLogger implements StyledLogger without any styling
type PlainStyledLogger struct {
	logger *slog.Logger
}

func NewPlainStyledLogger(logger *slog.Logger) *PlainStyledLogger {
	return &PlainStyledLogger{logger: logger}
}

func (sl *PlainStyledLogger) Debug(msg string, args ...any) {
	sl.logger.Debug(msg, args...)
}

func (sl *PlainStyledLogger) Info(msg string, args ...any) {
	sl.logger.Info(msg, args...)
}

func (sl *PlainStyledLogger) Warn(msg string, args ...any) {
	sl.logger.Warn(msg, args...)
}

func (sl *PlainStyledLogger) Error(msg string, args ...any) {
	sl.logger.Error(msg, args...)
}

func (sl *PlainStyledLogger) InfoWithStatus(msg string, status string, args ...any) {
	sl.logger.Info(fmt.Sprintf("[ %s ] %s", status, msg), args...)
}

func (sl *PlainStyledLogger) InfoWithCount(msg string, count int, args ...any) {
	sl.logger.Info(fmt.Sprintf("%s (%d)", msg, count), args...)
}

func (sl *PlainStyledLogger) InfoWithTarget(msg string, target string, args ...any) {
	sl.logger.Info(msg+" "+target, args...)
}

func (sl *PlainStyledLogger) InfoWithWorkload(msg string, workload string, args ...any) {
	sl.logger.Info(msg+" "+workload, args...)
}

func (sl *PlainStyledLogger) WarnWithWorkload(msg string, workload string, args ...any) {
	sl.logger.Warn(msg+" "+workload, args...)
}

func (sl *PlainStyledLogger) ErrorWithWorkload(msg string, workload string, args ...any) {
	sl.logger.Error(msg+" "+workload, args...)
}

func (sl *PlainStyledLogger) InfoOutageState(msg string, target string, state domain.OutageState, args ...any) {
	plainMsg := fmt.Sprintf("%s %s is %s", msg, target, outageStateText(state))
	if state == domain.StateInOutage {
		sl.logger.Warn(plainMsg, args...)
		return
	}
	sl.logger.Info(plainMsg, args...)
}

func (sl *PlainStyledLogger) InfoWithContext(msg string, subject string, ctx LogContext) {
	sl.withContext(slog.LevelInfo, msg, subject, ctx)
}

func (sl *PlainStyledLogger) WarnWithContext(msg string, subject string, ctx LogContext) {
	sl.withContext(slog.LevelWarn, msg, subject, ctx)
}

func (sl *PlainStyledLogger) ErrorWithContext(msg string, subject string, ctx LogContext) {
	sl.withContext(slog.LevelError, msg, subject, ctx)
}

func (sl *PlainStyledLogger) withContext(level slog.Level, msg string, subject string, lc LogContext) {
	sl.logger.Log(context.Background(), level, msg+" "+subject, lc.UserArgs...)

	if len(lc.DetailedArgs) > 0 {
		detailedCtx := context.WithValue(context.Background(), DefaultDetailedCookie, true)
		allArgs := append(append([]any{}, lc.UserArgs...), lc.DetailedArgs...)
		sl.logger.Log(detailedCtx, level, msg+" "+subject, allArgs...)
	}
}

func (sl *PlainStyledLogger) GetUnderlying() *slog.Logger {
	return sl.logger
}

func (sl *PlainStyledLogger) With(args ...any) StyledLogger {
	return &PlainStyledLogger{logger: sl.logger.With(args...)}
}
