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
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// instrumentationScope names the meter and tracer this package creates.
const instrumentationScope = "github.com/viaduct-http/viaduct/telemetry"

// initMetricsProvider initializes the configured metrics backend. OTLP
// needs a network connection and so defers to Start.
func (r *Recorder) initMetricsProvider() error {
	if r.customMeterProvider {
		if r.meterProvider == nil {
			return fmt.Errorf("custom meter provider is nil")
		}
		r.emitDebug("Using custom user-provided meter provider")
		return r.finishMetricsInit()
	}

	switch r.metricsProvider {
	case PrometheusProvider:
		return r.initPrometheusMetrics()
	case StdoutProvider:
		return r.initStdoutMetrics()
	case OTLPProvider:
		return nil // initialized in Start
	default:
		return fmt.Errorf("unsupported metrics provider: %s", r.metricsProvider)
	}
}

// initTraceProvider initializes the configured trace backend. OTLP needs a
// network connection and so defers to Start.
func (r *Recorder) initTraceProvider() error {
	if r.customTracerProvider {
		if r.tracerProvider == nil {
			return fmt.Errorf("custom tracer provider is nil")
		}
		r.emitDebug("Using custom user-provided tracer provider")
		return r.finishTraceInit("custom")
	}

	switch r.traceProvider {
	case NoopProvider:
		return r.initNoopTraces()
	case StdoutProvider:
		return r.initStdoutTraces()
	case OTLPProvider:
		return nil // initialized in Start
	default:
		return fmt.Errorf("unsupported trace provider: %s", r.traceProvider)
	}
}

// initPrometheusMetrics wires a dedicated Prometheus registry through the
// OpenTelemetry bridge and builds the scrape handler. A dedicated registry
// avoids colliding with anything registered on the client library's global
// one.
func (r *Recorder) initPrometheusMetrics() error {
	r.prometheusRegistry = promclient.NewRegistry()

	exporter, err := otelprom.New(
		otelprom.WithRegisterer(r.prometheusRegistry),
	)
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	r.sdkMeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(r.createResource()),
	)
	r.meterProvider = r.sdkMeterProvider

	r.prometheusHandler = promhttp.HandlerFor(
		r.prometheusRegistry,
		promhttp.HandlerOpts{},
	)

	if err := r.finishMetricsInit(); err != nil {
		return err
	}

	if r.autoStartServer {
		r.startMetricsServer()
	}

	return nil
}

// initStdoutMetrics exports metrics to stdout on the export interval.
func (r *Recorder) initStdoutMetrics() error {
	exporter, err := stdoutmetric.New()
	if err != nil {
		return fmt.Errorf("failed to create stdout metric exporter: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(r.exportInterval),
	)
	r.sdkMeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(r.createResource()),
	)
	r.meterProvider = r.sdkMeterProvider

	return r.finishMetricsInit()
}

// initOTLPMetrics creates the OTLP HTTP metric exporter. Called from Start
// with the caller's context; a no-op unless the OTLP provider is
// configured.
func (r *Recorder) initOTLPMetrics(ctx context.Context) error {
	if r.customMeterProvider || r.metricsProvider != OTLPProvider {
		return nil
	}

	opts := []otlpmetrichttp.Option{}
	if endpoint, insecure, ok := parseOTLPEndpoint(r.metricsEndpoint); ok {
		opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		if insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(r.exportInterval),
	)
	r.sdkMeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(r.createResource()),
	)
	r.meterProvider = r.sdkMeterProvider

	r.emitInfo("Metrics initialized", "provider", "otlp", "endpoint", r.metricsEndpoint)

	return r.finishMetricsInit()
}

// finishMetricsInit creates the meter and instruments, registers the
// global provider when requested, and marks the pillar ready.
func (r *Recorder) finishMetricsInit() error {
	if r.registerGlobal {
		r.emitDebug("Setting global OpenTelemetry meter provider")
		otel.SetMeterProvider(r.meterProvider)
	}

	r.meter = r.meterProvider.Meter(instrumentationScope)
	if err := r.initInstruments(); err != nil {
		return err
	}

	r.metricsReady.Store(true)

	return nil
}

// initNoopTraces creates a tracer provider with no exporter. Spans record,
// so trace IDs stay available for log correlation, but nothing leaves the
// process.
func (r *Recorder) initNoopTraces() error {
	r.sdkTracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(r.createResource()),
	)
	r.tracerProvider = r.sdkTracerProvider

	return r.finishTraceInit("noop")
}

// initStdoutTraces exports pretty-printed spans to stdout.
func (r *Recorder) initStdoutTraces() error {
	exporter, err := stdouttrace.New(
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return fmt.Errorf("failed to create stdout trace exporter: %w", err)
	}

	r.sdkTracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(r.createResource()),
	)
	r.tracerProvider = r.sdkTracerProvider

	return r.finishTraceInit("stdout")
}

// initOTLPTraces creates the OTLP HTTP trace exporter. Called from Start
// with the caller's context; a no-op unless the OTLP provider is
// configured.
func (r *Recorder) initOTLPTraces(ctx context.Context) error {
	if r.customTracerProvider || r.traceProvider != OTLPProvider {
		return nil
	}

	opts := []otlptracehttp.Option{}
	if endpoint, insecure, ok := parseOTLPEndpoint(r.traceEndpoint); ok {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
		if insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	r.sdkTracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(r.createResource()),
	)
	r.tracerProvider = r.sdkTracerProvider

	return r.finishTraceInit("otlp")
}

// finishTraceInit creates the tracer, registers the global provider when
// requested, and marks the pillar ready.
func (r *Recorder) finishTraceInit(provider string) error {
	if r.registerGlobal {
		r.emitDebug("Setting global OpenTelemetry tracer provider", "provider", provider)
		otel.SetTracerProvider(r.tracerProvider)
	}

	r.tracer = r.tracerProvider.Tracer(instrumentationScope)
	r.tracingReady.Store(true)

	if provider != "noop" {
		r.emitInfo("Tracing initialized", "provider", provider, "service", r.serviceName)
	}

	return nil
}

// createResource describes the service for exported telemetry.
func (r *Recorder) createResource() *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(r.serviceName),
		semconv.ServiceVersion(r.serviceVersion),
	)
}

// parseOTLPEndpoint splits a collector endpoint into host:port and a TLS
// decision. An http:// scheme means insecure; any path suffix is dropped.
// ok is false for an empty endpoint, letting the exporter fall back to its
// own defaults (localhost:4318 or the OTEL_EXPORTER_OTLP_ENDPOINT
// environment variable).
func parseOTLPEndpoint(endpoint string) (host string, insecure, ok bool) {
	if endpoint == "" {
		return "", false, false
	}

	if trimmed, found := strings.CutPrefix(endpoint, "http://"); found {
		endpoint = trimmed
		insecure = true
	} else if trimmed, found := strings.CutPrefix(endpoint, "https://"); found {
		endpoint = trimmed
	}

	if idx := strings.Index(endpoint, "/"); idx != -1 {
		endpoint = endpoint[:idx]
	}

	return endpoint, insecure, true
}

// Handler returns the Prometheus scrape handler, for serving metrics on
// your own mux with WithServerDisabled. Nil unless the Prometheus provider
// is active.
func (r *Recorder) Handler() http.Handler {
	return r.prometheusHandler
}

// MetricsAddr returns the address the metrics server is listening on,
// which can differ from the configured port when it was taken and strict
// mode is off. Empty when no server is running.
func (r *Recorder) MetricsAddr() string {
	r.serverMu.Lock()
	defer r.serverMu.Unlock()
	if r.metricsServer == nil {
		return ""
	}
	return r.metricsServer.Addr
}

// startMetricsServer serves the Prometheus handler on a dedicated server.
// Without strict mode it scans forward from the configured port for a free
// one, so a second Recorder in the same process (common in tests) does not
// fail.
func (r *Recorder) startMetricsServer() {
	if r.prometheusHandler == nil {
		return
	}
	if r.shuttingDown.Load() {
		r.emitDebug("Not starting metrics server: shutdown in progress")
		return
	}

	requestedPort := r.metricsPort
	var actualPort string
	if r.strictPort {
		listener, err := net.Listen("tcp", r.metricsPort)
		if err != nil {
			r.emitError("Failed to bind metrics server port (strict mode)",
				"error", err, "port", r.metricsPort)
			return
		}
		listener.Close() // reopened by ListenAndServe
		actualPort = r.metricsPort
	} else {
		port, err := findAvailablePort(r.metricsPort)
		if err != nil {
			r.emitError("Failed to find available port for metrics server",
				"error", err, "preferred_port", r.metricsPort)
			return
		}
		actualPort = port
	}

	mux := http.NewServeMux()
	mux.Handle(r.metricsPath, r.prometheusHandler)

	server := &http.Server{
		Addr:         actualPort,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	r.serverMu.Lock()
	r.metricsServer = server
	r.serverMu.Unlock()

	metricsPath := r.metricsPath
	go func() {
		if actualPort != requestedPort {
			r.emitWarning("Metrics server using different port than requested",
				"address", actualPort+metricsPath,
				"requested_port", requestedPort,
				"recommendation", "use WithStrictPort() to fail instead of scanning")
		} else {
			r.emitInfo("Metrics server starting", "address", actualPort+metricsPath)
		}

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.serverMu.Lock()
			r.metricsServer = nil
			r.serverMu.Unlock()
			r.emitError("Metrics server error", "error", err)
		}
	}()
}

// stopMetricsServer shuts the dedicated metrics server down gracefully.
func (r *Recorder) stopMetricsServer(ctx context.Context) error {
	r.serverMu.Lock()
	server := r.metricsServer
	r.metricsServer = nil
	r.serverMu.Unlock()

	if server == nil {
		return nil
	}

	r.emitDebug("Shutting down metrics server")
	if err := server.Shutdown(ctx); err != nil {
		r.emitError("Error shutting down metrics server", "error", err)
		return fmt.Errorf("metrics server shutdown: %w", err)
	}

	return nil
}

// findAvailablePort scans up to 100 ports forward from the preferred one
// and returns the first that binds.
func findAvailablePort(preferred string) (string, error) {
	port := preferred
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	portNum, err := strconv.Atoi(strings.TrimPrefix(port, ":"))
	if err != nil {
		return "", fmt.Errorf("invalid port format: %s", preferred)
	}

	for i := range 100 {
		addr := fmt.Sprintf(":%d", portNum+i)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return addr, nil
		}
	}

	return "", fmt.Errorf("no available port found starting from %s", preferred)
}
