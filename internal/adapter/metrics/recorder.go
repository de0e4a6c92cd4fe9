package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thushan/redis-watcher/internal/core/domain"
)

const Namespace = "redis_watcher"

const (
	LabelResult   = "result"
	LabelNotifier = "notifier"
	LabelOutcome  = "outcome"
)

var ProbeBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0,
}

// Recorder turns watch events into Prometheus series on a private registry,
// so tests and multiple watchers never collide on the default one.
type Recorder struct {
	registry      *prometheus.Registry
	probes        *prometheus.CounterVec
	probeDuration prometheus.Histogram
	outage        prometheus.Gauge
	outages       prometheus.Counter
	notifications *prometheus.CounterVec
	restarts      *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "probes_total",
			Help:      "Probes of the monitored store by classification.",
		}, []string{LabelResult}),
		probeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "probe_duration_seconds",
			Help:      "Time taken by a single probe.",
			Buckets:   ProbeBuckets,
		}),
		outage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "outage",
			Help:      "1 while the monitored store is in an outage episode.",
		}),
		outages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "outages_total",
			Help:      "Outage episodes observed.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "notifications_total",
			Help:      "Notification attempts by notifier and result.",
		}, []string{LabelNotifier, LabelResult}),
		restarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "restarts_total",
			Help:      "Workload restart attempts by outcome.",
		}, []string{LabelOutcome}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.probes,
		r.probeDuration,
		r.outage,
		r.outages,
		r.notifications,
		r.restarts,
	)
	return r
}

func (r *Recorder) Record(event domain.WatchEvent) {
	r.probes.WithLabelValues(event.Result.Status.String()).Inc()
	r.probeDuration.Observe(event.Result.Latency.Seconds())

	if event.State == domain.StateInOutage {
		r.outage.Set(1)
	} else {
		r.outage.Set(0)
	}

	if event.Outage != nil && event.Outage.Type == domain.OutageStarted {
		r.outages.Inc()
	}

	for _, n := range event.Notifications {
		result := "ok"
		if !n.OK() {
			result = "error"
		}
		r.notifications.WithLabelValues(n.Notifier, result).Inc()
	}

	if event.Restart != nil {
		for _, o := range event.Restart.Outcomes {
			r.restarts.WithLabelValues(o.Kind.String()).Inc()
		}
	}
}

// Consume records events until the channel closes or ctx is done
func (r *Recorder) Consume(ctx context.Context, events <-chan domain.WatchEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			r.Record(event)
		}
	}
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
