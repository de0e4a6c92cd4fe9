package health

import (
	"context"
	"time"

	"github.com/docker/go-units"

	"github.com/thushan/redis-watcher/internal/core/domain"
	"github.com/thushan/redis-watcher/internal/core/ports"
	"github.com/thushan/redis-watcher/internal/logger"
	"github.com/thushan/redis-watcher/pkg/eventbus"
)

const DefaultInterval = 10 * time.Second

type WatchdogConfig struct {
	Probe    ports.HealthProbe
	Notifier ports.NotificationGateway
	Recovery RecoveryCallback
	Events   *eventbus.EventBus[domain.WatchEvent]
	Logger   logger.StyledLogger
	Interval time.Duration
}

// Watchdog probes the store on a fixed schedule, folds the results into
// outage episodes and drives the two side effects: operators are notified
// once when an episode starts, dependent workloads are restarted once when
// it ends. Ticks are strictly sequential.
type Watchdog struct {
	probe      ports.HealthProbe
	notifier   ports.NotificationGateway
	recovery   RecoveryCallback
	events     *eventbus.EventBus[domain.WatchEvent]
	logger     logger.StyledLogger
	tracker    *OutageTracker
	failureLog *failureLogThrottle
	stats      *statsCollector
	scheduler  *TickScheduler
	interval   time.Duration
	tickMu     chan struct{}
}

func NewWatchdog(cfg WatchdogConfig) *Watchdog {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	recovery := cfg.Recovery
	if recovery == nil {
		recovery = NoOpRecoveryCallback{}
	}

	w := &Watchdog{
		probe:      cfg.Probe,
		notifier:   cfg.Notifier,
		recovery:   recovery,
		events:     cfg.Events,
		logger:     cfg.Logger,
		interval:   interval,
		tracker:    NewOutageTracker(),
		failureLog: newFailureLogThrottle(),
		stats:      newStatsCollector(),
		tickMu:     make(chan struct{}, 1),
	}
	w.scheduler = NewTickScheduler(interval, func(ctx context.Context) {
		w.Tick(ctx)
	})
	return w
}

func (w *Watchdog) Start(ctx context.Context) error {
	w.logger.InfoWithTarget("Watching Redis at", w.probe.Target(), "interval", units.HumanDuration(w.interval))
	return w.scheduler.Start(ctx)
}

func (w *Watchdog) Stop(ctx context.Context) error {
	return w.scheduler.Stop(ctx)
}

// Tick runs one probe and applies its result. It returns false when the
// tick was abandoned because ctx was cancelled mid probe, in which case the
// state machine is left untouched.
func (w *Watchdog) Tick(ctx context.Context) (domain.WatchEvent, bool) {
	// a channel rather than a mutex so a tick waiting its turn can give up
	select {
	case w.tickMu <- struct{}{}:
	case <-ctx.Done():
		return domain.WatchEvent{}, false
	}
	defer func() { <-w.tickMu }()

	result := w.probe.Probe(ctx)
	if ctx.Err() != nil {
		// shutting down, a cancelled probe says nothing about the store
		w.logger.Debug("Abandoning tick, context cancelled", "status", result.Status.String())
		return domain.WatchEvent{}, false
	}

	w.stats.recordProbe(result)
	w.logProbe(result)

	event := domain.WatchEvent{
		At:     result.CheckedAt,
		Target: w.probe.Target(),
		Result: result,
	}

	if outage, changed := w.tracker.Transition(result); changed {
		event.Outage = &outage
		switch outage.Type {
		case domain.OutageStarted:
			event.Notifications = w.handleOutageStarted(ctx, outage)
		case domain.OutageEnded:
			report := w.handleOutageEnded(ctx, outage)
			event.Restart = &report
		}
	}

	event.State = w.tracker.State()
	w.stats.recordState(w.tracker)

	if w.events != nil {
		w.events.Publish(event)
	}
	return event, true
}

func (w *Watchdog) handleOutageStarted(ctx context.Context, outage domain.OutageEvent) []domain.NotifyOutcome {
	w.logger.InfoOutageState("Redis", w.probe.Target(), domain.StateInOutage,
		"episode", outage.Episode,
		"reason", outage.Reason)

	outcomes := w.notifier.Notify(ctx, outage.Reason)
	for _, o := range outcomes {
		if o.OK() {
			w.logger.Info("Outage notification sent", "notifier", o.Notifier, "latency", o.Latency)
			continue
		}
		// delivery failures never affect the outage state
		w.logger.WarnWithContext("Outage notification failed via", o.Notifier, logger.LogContext{
			UserArgs:     []any{"episode", outage.Episode},
			DetailedArgs: []any{"error", o.Err},
		})
	}
	w.stats.recordNotifications(outcomes)
	return outcomes
}

func (w *Watchdog) handleOutageEnded(ctx context.Context, outage domain.OutageEvent) domain.RestartReport {
	w.failureLog.Reset()
	w.logger.InfoOutageState("Redis", w.probe.Target(), domain.StateHealthy,
		"episode", outage.Episode,
		"downtime", units.HumanDuration(outage.Duration()))

	report := w.recovery.OnRecovered(ctx, outage)
	for _, o := range report.Outcomes {
		if o.OK() {
			w.logger.InfoWithWorkload("Restarted workload", o.Workload, "version", o.VersionIndex)
			continue
		}
		w.logger.ErrorWithContext("Restart failed for", o.Workload, logger.LogContext{
			UserArgs:     []any{"outcome", o.Kind.String()},
			DetailedArgs: []any{"error", o.Err, "version", o.VersionIndex},
		})
	}
	if len(report.Outcomes) > 0 {
		w.logger.InfoWithCount("Workload restarts completed", report.Succeeded(),
			"failed", report.Failed(),
			"took", units.HumanDuration(report.FinishedAt.Sub(report.StartedAt)))
	}
	w.stats.recordRestart(report)
	return report
}

func (w *Watchdog) logProbe(result domain.HealthCheckResult) {
	if !result.Status.IsFailure() {
		w.logger.Debug("Redis probe ok", "latency", result.Latency)
		return
	}
	if ok, count := w.failureLog.ShouldLog(result.CheckedAt); ok {
		w.logger.Warn("Redis probe failed",
			"status", result.Status.String(),
			"detail", result.Detail,
			"consecutive", count)
	}
}

// State is safe to call while a tick is running
func (w *Watchdog) State() domain.OutageState {
	if w.stats.snapshot().State == domain.StateInOutage.String() {
		return domain.StateInOutage
	}
	return domain.StateHealthy
}

func (w *Watchdog) Stats() WatchdogStats {
	return w.stats.snapshot()
}

func (w *Watchdog) Target() string {
	return w.probe.Target()
}
