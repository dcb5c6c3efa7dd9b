package hallocord

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/vango-dev/hallocord/pkg/gateway"
	"github.com/vango-dev/hallocord/pkg/intents"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	intents     intents.Intent
	properties  gateway.Properties
	compression gateway.Compression
	gatewayURL  string
	version     int

	logger  *slog.Logger
	metrics *gateway.Metrics
	tracer  trace.Tracer
	now     func() time.Time
	dialer  func(*gateway.Loop) gateway.Dialer
	ticker  func(*gateway.Loop) gateway.TickerFunc
}

func defaultOptions() options {
	return options{
		intents: intents.Guilds | intents.GuildMessages,
		properties: gateway.Properties{
			OS:      runtime.GOOS,
			Browser: "hallocord",
			Device:  "hallocord",
		},
		gatewayURL: gateway.DefaultGatewayURL,
		version:    gateway.DefaultVersion,
		logger:     slog.Default(),
		now:        time.Now,
		dialer: func(loop *gateway.Loop) gateway.Dialer {
			return gateway.NewWebSocketDialer(loop)
		},
		ticker: gateway.LoopTicker,
	}
}

// WithIntents sets the intents bitmask sent in Identify.
func WithIntents(i intents.Intent) Option {
	return func(o *options) {
		o.intents = i
	}
}

// WithProperties sets the Identify connection properties. Empty fields keep
// their defaults.
func WithProperties(p gateway.Properties) Option {
	return func(o *options) {
		if p.OS != "" {
			o.properties.OS = p.OS
		}
		if p.Browser != "" {
			o.properties.Browser = p.Browser
		}
		if p.Device != "" {
			o.properties.Device = p.Device
		}
	}
}

// WithCompression selects the payload compression mode.
func WithCompression(c gateway.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithGateway sets the base URL and API version used by Login.
func WithGateway(url string, version int) Option {
	return func(o *options) {
		if url != "" {
			o.gatewayURL = url
		}
		if version != 0 {
			o.version = version
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *gateway.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithTracer sets the OpenTelemetry tracer. The global provider is used by
// default.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithClock sets the time source used for latency measurement.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithDialer replaces the websocket transport. The factory receives the
// client's loop; dialers must deliver every callback through it.
func WithDialer(factory func(*gateway.Loop) gateway.Dialer) Option {
	return func(o *options) {
		if factory != nil {
			o.dialer = factory
		}
	}
}

// WithTicker replaces the timer implementation. Ticks must be delivered
// through the loop.
func WithTicker(factory func(*gateway.Loop) gateway.TickerFunc) Option {
	return func(o *options) {
		if factory != nil {
			o.ticker = factory
		}
	}
}
