package logger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thushan/redis-watcher/internal/core/domain"
	"github.com/thushan/redis-watcher/theme"
)

// PrettyStyledLogger implements StyledLogger with pterm styling
type PrettyStyledLogger struct {
	logger *slog.Logger
	Theme  *theme.Theme
}

func NewPrettyStyledLogger(logger *slog.Logger, theme *theme.Theme) *PrettyStyledLogger {
	return &PrettyStyledLogger{
		logger: logger,
		Theme:  theme,
	}
}

func (sl *PrettyStyledLogger) Debug(msg string, args ...any) {
	sl.logger.Debug(msg, args...)
}

func (sl *PrettyStyledLogger) Info(msg string, args ...any) {
	sl.logger.Info(msg, args...)
}

func (sl *PrettyStyledLogger) Warn(msg string, args ...any) {
	sl.logger.Warn(msg, args...)
}

func (sl *PrettyStyledLogger) Error(msg string, args ...any) {
	sl.logger.Error(msg, args...)
}

func (sl *PrettyStyledLogger) InfoWithStatus(msg string, status string, args ...any) {
	styledMsg := fmt.Sprintf("[ %s ] %s", sl.Theme.Success.Sprint(status), msg)
	sl.logger.Info(styledMsg, args...)
}

func (sl *PrettyStyledLogger) InfoWithCount(msg string, count int, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, sl.Theme.Counts.Sprint("(", count, ")"))
	sl.logger.Info(styledMsg, args...)
}

func (sl *PrettyStyledLogger) InfoWithTarget(msg string, target string, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, sl.Theme.Target.Sprint(target))
	sl.logger.Info(styledMsg, args...)
}

func (sl *PrettyStyledLogger) InfoWithWorkload(msg string, workload string, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, sl.Theme.Workload.Sprint(workload))
	sl.logger.Info(styledMsg, args...)
}

func (sl *PrettyStyledLogger) WarnWithWorkload(msg string, workload string, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, sl.Theme.Workload.Sprint(workload))
	sl.logger.Warn(styledMsg, args...)
}

func (sl *PrettyStyledLogger) ErrorWithWorkload(msg string, workload string, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, sl.Theme.Workload.Sprint(workload))
	sl.logger.Error(styledMsg, args...)
}

func (sl *PrettyStyledLogger) InfoOutageState(msg string, target string, state domain.OutageState, args ...any) {
	style := sl.Theme.StateHealthy
	if state == domain.StateInOutage {
		style = sl.Theme.StateInOutage
	}

	styledMsg := fmt.Sprintf("%s %s is %s", msg, sl.Theme.Target.Sprint(target), style.Sprint(outageStateText(state)))
	if state == domain.StateInOutage {
		sl.logger.Warn(styledMsg, args...)
		return
	}
	sl.logger.Info(styledMsg, args...)
}

func (sl *PrettyStyledLogger) InfoWithContext(msg string, subject string, ctx LogContext) {
	sl.withContext(slog.LevelInfo, msg, subject, ctx)
}

func (sl *PrettyStyledLogger) WarnWithContext(msg string, subject string, ctx LogContext) {
	sl.withContext(slog.LevelWarn, msg, subject, ctx)
}

func (sl *PrettyStyledLogger) ErrorWithContext(msg string, subject string, ctx LogContext) {
	sl.withContext(slog.LevelError, msg, subject, ctx)
}

func (sl *PrettyStyledLogger) withContext(level slog.Level, msg string, subject string, lc LogContext) {
	styledMsg := fmt.Sprintf("%s %s", msg, sl.Theme.Workload.Sprint(subject))
	sl.logger.Log(context.Background(), level, styledMsg, lc.UserArgs...)

	if len(lc.DetailedArgs) > 0 {
		detailedCtx := context.WithValue(context.Background(), DefaultDetailedCookie, true)
		allArgs := append(append([]any{}, lc.UserArgs...), lc.DetailedArgs...)
		sl.logger.Log(detailedCtx, level, msg+" "+subject, allArgs...)
	}
}

func (sl *PrettyStyledLogger) GetUnderlying() *slog.Logger {
	return sl.logger
}

func (sl *PrettyStyledLogger) With(args ...any) StyledLogger {
	return &PrettyStyledLogger{
		logger: sl.logger.With(args...),
		Theme:  sl.Theme,
	}
}
