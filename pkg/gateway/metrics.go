package gateway

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the gateway's Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "hallocord").
	Namespace string

	// Subsystem is the metrics subsystem (default: "gateway").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for heartbeat latency, in seconds.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the gateway metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the latency histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "hallocord",
		Subsystem: "gateway",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the gateway's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	heartbeatsSent   prometheus.Counter
	heartbeatsMissed prometheus.Counter
	heartbeatLatency prometheus.Histogram
	framesReceived   *prometheus.CounterVec
	decodeErrors     prometheus.Counter
	dispatches       *prometheus.CounterVec
	sendErrors       prometheus.Counter
	closes           *prometheus.CounterVec
	status           prometheus.Gauge
}

// NewMetrics registers the gateway collectors.
//
// Metrics collected:
//   - hallocord_gateway_heartbeats_sent_total
//   - hallocord_gateway_heartbeats_missed_total
//   - hallocord_gateway_heartbeat_latency_seconds
//   - hallocord_gateway_frames_received_total{type}
//   - hallocord_gateway_decode_errors_total
//   - hallocord_gateway_dispatches_total{event}
//   - hallocord_gateway_send_errors_total
//   - hallocord_gateway_closes_total{code}
//   - hallocord_gateway_status
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}
	counterVec := func(name, help, label string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, []string{label})
	}

	return &Metrics{
		heartbeatsSent:   counter("heartbeats_sent_total", "Total number of heartbeats sent"),
		heartbeatsMissed: counter("heartbeats_missed_total", "Heartbeats sent while the previous one was unacknowledged"),
		heartbeatLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "heartbeat_latency_seconds",
			Help:        "Heartbeat round-trip latency in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
		framesReceived: counterVec("frames_received_total", "Total inbound frames by websocket message type", "type"),
		decodeErrors:   counter("decode_errors_total", "Inbound frames dropped because they could not be decoded"),
		dispatches:     counterVec("dispatches_total", "Dispatch events received by event name", "event"),
		sendErrors:     counter("send_errors_total", "Outbound payloads the transport failed to write"),
		closes:         counterVec("closes_total", "Connection closes by close code", "code"),
		status: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "status",
			Help:        "Connection status (0 idle, 1 connecting, 2 open, 3 disconnected)",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) HeartbeatSent() {
	if m == nil {
		return
	}
	m.heartbeatsSent.Inc()
}

func (m *Metrics) HeartbeatMissed() {
	if m == nil {
		return
	}
	m.heartbeatsMissed.Inc()
}

func (m *Metrics) HeartbeatAcked(latency time.Duration) {
	if m == nil {
		return
	}
	m.heartbeatLatency.Observe(latency.Seconds())
}

func (m *Metrics) FrameReceived(t FrameType) {
	if m == nil {
		return
	}
	m.framesReceived.WithLabelValues(t.String()).Inc()
}

func (m *Metrics) DecodeError() {
	if m == nil {
		return
	}
	m.decodeErrors.Inc()
}

func (m *Metrics) Dispatched(event string) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(event).Inc()
}

func (m *Metrics) SendError() {
	if m == nil {
		return
	}
	m.sendErrors.Inc()
}

func (m *Metrics) Closed(code int) {
	if m == nil {
		return
	}
	m.closes.WithLabelValues(strconv.Itoa(code)).Inc()
}

func (m *Metrics) SetStatus(s Status) {
	if m == nil {
		return
	}
	m.status.Set(float64(s))
}
