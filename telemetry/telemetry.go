// Copyright 2026 The Viaduct Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Default histogram buckets for the built-in HTTP metrics. They follow
// OpenTelemetry conventions and suit most HTTP services.
var (
	// DefaultDurationBuckets are histogram boundaries for request duration
	// in seconds, covering sub-millisecond to 10 second responses.
	DefaultDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

	// DefaultSizeBuckets are histogram boundaries for request and response
	// sizes in bytes, covering 100B to 10MB.
	DefaultSizeBuckets = []float64{100, 1000, 10000, 100000, 1000000, 10000000}
)

// EventType represents the severity of an internal operational event.
type EventType int

const (
	// EventError indicates an error event, such as a failed export.
	EventError EventType = iota
	// EventWarning indicates a warning event, such as a port fallback.
	EventWarning
	// EventInfo indicates an informational event, such as server startup.
	EventInfo
	// EventDebug indicates a debug event.
	EventDebug
)

// Event is an internal operational event from the telemetry system itself:
// exporter failures, server lifecycle, sampling decisions. Events are
// out-of-band from request logging.
type Event struct {
	Type    EventType
	Message string
	Args    []any // slog-style key-value pairs
}

// EventHandler processes internal operational events. Implementations can
// log them, forward them to alerting, or drop them.
type EventHandler func(Event)

// DefaultEventHandler returns an EventHandler that logs events to the given
// logger at the matching level. A nil logger yields a handler that discards
// everything.
func DefaultEventHandler(logger *slog.Logger) EventHandler {
	if logger == nil {
		return func(Event) {}
	}

	return func(e Event) {
		switch e.Type {
		case EventError:
			logger.Error(e.Message, e.Args...)
		case EventWarning:
			logger.Warn(e.Message, e.Args...)
		case EventInfo:
			logger.Info(e.Message, e.Args...)
		case EventDebug:
			logger.Debug(e.Message, e.Args...)
		}
	}
}

// Provider identifies an exporter backend. Metrics accept Prometheus, OTLP,
// and Stdout; traces accept Noop, OTLP, and Stdout.
type Provider string

const (
	// PrometheusProvider exposes metrics on a Prometheus scrape endpoint
	// (metrics default).
	PrometheusProvider Provider = "prometheus"
	// OTLPProvider exports over OTLP HTTP to a collector.
	OTLPProvider Provider = "otlp"
	// StdoutProvider exports to stdout, for development and testing.
	StdoutProvider Provider = "stdout"
	// NoopProvider records spans without exporting them (traces default).
	NoopProvider Provider = "noop"
)

// sensitiveHeaders are never recorded as span attributes, regardless of
// WithRecordHeaders configuration.
var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,
	"www-authenticate":    true,
}

// Recorder unifies metrics, tracing, and access logging behind the
// viaduct.ObservabilityRecorder lifecycle. All methods are safe for
// concurrent use; configuration is immutable after New.
//
// By default nothing is registered as an OpenTelemetry global, so multiple
// Recorders can coexist in one process. Use WithGlobalProviders to opt in.
type Recorder struct {
	serviceName    string
	serviceVersion string
	eventHandler   EventHandler
	logger         *slog.Logger
	filter         *pathFilter

	// Metrics pillar.
	meter              metric.Meter
	meterProvider      metric.MeterProvider
	sdkMeterProvider   *sdkmetric.MeterProvider
	prometheusRegistry *promclient.Registry
	prometheusHandler  http.Handler
	metricsServer      *http.Server
	serverMu           sync.Mutex

	requestDuration      metric.Float64Histogram
	requestCount         metric.Int64Counter
	activeRequests       metric.Int64UpDownCounter
	requestSize          metric.Int64Histogram
	responseSize         metric.Int64Histogram
	errorCount           metric.Int64Counter
	customMetricFailures metric.Int64Counter

	// Custom metrics storage, protected by customMu.
	customMu          sync.RWMutex
	customCounters    map[string]metric.Int64Counter
	customHistograms  map[string]metric.Float64Histogram
	customGauges      map[string]metric.Float64Gauge
	customMetricCount int
	failedCustom      atomic.Int64

	durationBuckets []float64
	sizeBuckets     []float64
	exportInterval  time.Duration

	metricsProvider     Provider
	metricsProviderSets int
	metricsEndpoint     string
	metricsPort         string
	metricsPath         string
	maxCustomMetrics    int

	// Pre-computed attributes attached to every request metric.
	serviceNameAttr    attribute.KeyValue
	serviceVersionAttr attribute.KeyValue

	// Tracing pillar.
	tracer            trace.Tracer
	tracerProvider    trace.TracerProvider
	sdkTracerProvider *sdktrace.TracerProvider
	propagator        propagation.TextMapPropagator

	traceProvider     Provider
	traceProviderSets int
	traceEndpoint     string

	sampleRate        float64
	samplingThreshold uint64
	samplingCounter   atomic.Uint64

	recordHeaders []string

	// Access log pillar.
	logRequests   bool
	logErrorsOnly bool
	slowThreshold time.Duration

	// Lifecycle. The ready flags flip once the corresponding provider has
	// fully initialized; hot paths check them instead of nil instruments
	// because OTLP providers initialize in Start, not New.
	metricsReady   atomic.Bool
	tracingReady   atomic.Bool
	started        atomic.Bool
	shuttingDown   atomic.Bool
	shutdownOnce   sync.Once
	shutdownErr    error
	warnNotStarted sync.Once

	validationErrors []error

	metricsEnabled       bool
	tracingEnabled       bool
	autoStartServer      bool
	strictPort           bool
	customMeterProvider  bool
	customTracerProvider bool
	registerGlobal       bool
}

// New creates a Recorder with the given options. Prometheus, stdout, and
// noop providers initialize immediately; OTLP providers defer network setup
// to Start. With the default Prometheus provider the scrape server is
// already running when New returns.
func New(opts ...Option) (*Recorder, error) {
	r := newDefaultRecorder()

	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry configuration: %w", err)
	}

	if r.metricsEnabled {
		if err := r.initMetricsProvider(); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}
	if r.tracingEnabled {
		if err := r.initTraceProvider(); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	return r, nil
}

// MustNew is like New but panics on error. Intended for initialization at
// program startup:
//
//	rec := telemetry.MustNew(telemetry.WithServiceName("api"))
func MustNew(opts ...Option) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("telemetry: %v", err))
	}
	return r
}

func newDefaultRecorder() *Recorder {
	r := &Recorder{
		serviceName:    "viaduct-service",
		serviceVersion: "1.0.0",
		filter:         newPathFilterWithDefaults(),

		metricsEnabled:   true,
		metricsProvider:  PrometheusProvider,
		metricsPort:      ":9090",
		metricsPath:      "/metrics",
		exportInterval:   30 * time.Second,
		maxCustomMetrics: 1000,
		autoStartServer:  true,
		durationBuckets:  DefaultDurationBuckets,
		sizeBuckets:      DefaultSizeBuckets,
		customCounters:   make(map[string]metric.Int64Counter),
		customHistograms: make(map[string]metric.Float64Histogram),
		customGauges:     make(map[string]metric.Float64Gauge),

		tracingEnabled: true,
		traceProvider:  NoopProvider,
		sampleRate:     1.0,
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),

		logRequests: true,
	}

	r.initCommonAttributes()

	return r
}

func (r *Recorder) initCommonAttributes() {
	r.serviceNameAttr = attribute.String("service.name", r.serviceName)
	r.serviceVersionAttr = attribute.String("service.version", r.serviceVersion)
}

// validate checks the configuration and precomputes derived values.
func (r *Recorder) validate() error {
	if len(r.validationErrors) > 0 {
		return errors.Join(r.validationErrors...)
	}

	if r.serviceName == "" {
		return errors.New("service name cannot be empty")
	}
	if r.serviceVersion == "" {
		return errors.New("service version cannot be empty")
	}

	if r.metricsProviderSets > 1 {
		return errors.New("conflicting metrics providers: use only one of WithPrometheus, WithOTLPMetrics, or WithStdoutMetrics")
	}
	if r.traceProviderSets > 1 {
		return errors.New("conflicting trace providers: use only one of WithOTLPTraces or WithStdoutTraces")
	}

	if r.maxCustomMetrics < 1 {
		return fmt.Errorf("maxCustomMetrics must be at least 1, got %d", r.maxCustomMetrics)
	}
	if r.exportInterval < time.Second {
		return fmt.Errorf("export interval must be at least 1s, got %s", r.exportInterval)
	}

	if r.sampleRate < 0.0 || r.sampleRate > 1.0 {
		return fmt.Errorf("sample rate must be between 0.0 and 1.0, got %f", r.sampleRate)
	}
	// Precompute the integer sampling threshold so the per-request decision
	// is a multiply and compare.
	switch {
	case r.sampleRate == 1.0:
		r.samplingThreshold = ^uint64(0)
	case r.sampleRate > 0.0:
		r.samplingThreshold = uint64(r.sampleRate * float64(^uint64(0)))
	default:
		r.samplingThreshold = 0
	}

	// Options were applied after the defaults computed these.
	r.initCommonAttributes()

	return nil
}

// Start initializes the deferred OTLP exporters. The context is used for
// connection establishment. Providers that need no network setup are
// already running after New, so Start is only required when WithOTLPMetrics
// or WithOTLPTraces is configured, but calling it unconditionally is safe
// and recommended.
func (r *Recorder) Start(ctx context.Context) error {
	if r.started.Swap(true) {
		return nil
	}

	if r.metricsEnabled && !r.metricsReady.Load() {
		if err := r.initOTLPMetrics(ctx); err != nil {
			return fmt.Errorf("failed to initialize OTLP metrics: %w", err)
		}
	}
	if r.tracingEnabled && !r.tracingReady.Load() {
		if err := r.initOTLPTraces(ctx); err != nil {
			return fmt.Errorf("failed to initialize OTLP traces: %w", err)
		}
	}

	r.emitInfo("Telemetry started",
		"service", r.serviceName,
		"metrics_provider", r.metricsProviderName(),
		"trace_provider", r.traceProviderName(),
	)

	return nil
}

// Shutdown flushes pending telemetry and stops the metrics server. It is
// idempotent; concurrent calls wait for the first to finish and share its
// result. Call it before process exit so the final export completes.
func (r *Recorder) Shutdown(ctx context.Context) error {
	r.shutdownOnce.Do(func() {
		r.shuttingDown.Store(true)

		var errs []error
		if err := r.stopMetricsServer(ctx); err != nil {
			errs = append(errs, err)
		}
		// User-provided providers are managed by the user.
		if r.sdkMeterProvider != nil && !r.customMeterProvider {
			r.emitDebug("Shutting down meter provider")
			if err := r.sdkMeterProvider.Shutdown(ctx); err != nil {
				r.emitError("Error shutting down meter provider", "error", err)
				errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
			}
		}
		if r.sdkTracerProvider != nil && !r.customTracerProvider {
			r.emitDebug("Shutting down tracer provider")
			if err := r.sdkTracerProvider.Shutdown(ctx); err != nil {
				r.emitError("Error shutting down tracer provider", "error", err)
				errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
			}
		}
		r.shutdownErr = errors.Join(errs...)
	})

	return r.shutdownErr
}

// ServiceName returns the configured service name.
func (r *Recorder) ServiceName() string {
	return r.serviceName
}

// ServiceVersion returns the configured service version.
func (r *Recorder) ServiceVersion() string {
	return r.serviceVersion
}

// Tracer returns the OpenTelemetry tracer, or nil before a deferred OTLP
// provider has been started.
func (r *Recorder) Tracer() trace.Tracer {
	return r.tracer
}

// Propagator returns the trace context propagator.
func (r *Recorder) Propagator() propagation.TextMapPropagator {
	return r.propagator
}

func (r *Recorder) metricsProviderName() string {
	if !r.metricsEnabled {
		return "disabled"
	}
	if r.customMeterProvider {
		return "custom"
	}
	return string(r.metricsProvider)
}

func (r *Recorder) traceProviderName() string {
	if !r.tracingEnabled {
		return "disabled"
	}
	if r.customTracerProvider {
		return "custom"
	}
	return string(r.traceProvider)
}

func (r *Recorder) emitError(msg string, args ...any) {
	if r.eventHandler != nil {
		r.eventHandler(Event{Type: EventError, Message: msg, Args: args})
	}
}

func (r *Recorder) emitWarning(msg string, args ...any) {
	if r.eventHandler != nil {
		r.eventHandler(Event{Type: EventWarning, Message: msg, Args: args})
	}
}

func (r *Recorder) emitInfo(msg string, args ...any) {
	if r.eventHandler != nil {
		r.eventHandler(Event{Type: EventInfo, Message: msg, Args: args})
	}
}

func (r *Recorder) emitDebug(msg string, args ...any) {
	if r.eventHandler != nil {
		r.eventHandler(Event{Type: EventDebug, Message: msg, Args: args})
	}
}
