package telemetry

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tracker receives named events with key/value properties, named
// numeric metrics, and exception records tagged with the workflow
// stage that failed.
type Tracker interface {
	TrackEvent(name string, props map[string]string)
	TrackMetric(name string, value float64)
	TrackException(stage string, err error)
	FeedRetrieved(count int)
	OrderRouted(status string, amount float64)
	CycleObserved(outcome string, elapsed time.Duration)
}

// Telemetry implements Tracker on top of a dedicated Prometheus
// registry plus structured log records carrying the event payloads.
type Telemetry struct {
	logger   *slog.Logger
	registry *prometheus.Registry

	feedNotifications prometheus.Counter
	ordersRouted      *prometheus.CounterVec
	orderAmount       prometheus.Histogram
	stageFailures     *prometheus.CounterVec
	cycleDuration     prometheus.Histogram
	cycles            *prometheus.CounterVec
	events            *prometheus.CounterVec
	metrics           *prometheus.GaugeVec
}

// New builds a Telemetry with its own registry so instances can be
// created freely in tests.
func New(logger *slog.Logger) *Telemetry {
	t := &Telemetry{
		logger:   logger,
		registry: prometheus.NewRegistry(),
		feedNotifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feed_notifications_total",
			Help: "Total number of feed notifications retrieved",
		}),
		ordersRouted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_routed_total",
			Help: "Total number of orders routed, by status",
		}, []string{"status"}),
		orderAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "order_amount",
			Help:    "Normalized order amounts in major currency units",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		stageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stage_failures_total",
			Help: "Total number of failures, by workflow stage",
		}, []string{"stage"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cycle_duration_seconds",
			Help:    "Duration of full poll-process-acknowledge cycles",
			Buckets: prometheus.DefBuckets,
		}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feed_cycles_total",
			Help: "Total number of completed feed cycles, by outcome",
		}, []string{"outcome"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telemetry_events_total",
			Help: "Total number of named telemetry events",
		}, []string{"event"}),
		metrics: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "telemetry_metric_value",
			Help: "Last observed value of named telemetry metrics",
		}, []string{"metric"}),
	}

	t.registry.MustRegister(
		t.feedNotifications,
		t.ordersRouted,
		t.orderAmount,
		t.stageFailures,
		t.cycleDuration,
		t.cycles,
		t.events,
		t.metrics,
	)
	return t
}

// Handler serves the registry for scraping.
func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

func (t *Telemetry) TrackEvent(name string, props map[string]string) {
	t.events.WithLabelValues(name).Inc()
	attrs := make([]any, 0, len(props)+2)
	attrs = append(attrs, slog.String("event", name), slog.Time("timestamp", time.Now().UTC()))
	for k, v := range props {
		attrs = append(attrs, slog.String(k, v))
	}
	t.logger.Info("telemetry event", attrs...)
}

func (t *Telemetry) TrackMetric(name string, value float64) {
	t.metrics.WithLabelValues(name).Set(value)
	t.logger.Info("telemetry metric", slog.String("metric", name), slog.Float64("value", value))
}

func (t *Telemetry) TrackException(stage string, err error) {
	t.stageFailures.WithLabelValues(stage).Inc()
	t.logger.Error("workflow failure", slog.String("stage", stage), slog.String("error", err.Error()))
}

func (t *Telemetry) FeedRetrieved(count int) {
	t.feedNotifications.Add(float64(count))
	t.TrackMetric("FeedRetrievedItems", float64(count))
}

func (t *Telemetry) OrderRouted(status string, amount float64) {
	t.ordersRouted.WithLabelValues(status).Inc()
	t.orderAmount.Observe(amount)
}

func (t *Telemetry) CycleObserved(outcome string, elapsed time.Duration) {
	t.cycles.WithLabelValues(outcome).Inc()
	t.cycleDuration.Observe(elapsed.Seconds())
}
