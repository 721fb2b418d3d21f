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
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Recorder. Options are applied during New.
type Option func(*Recorder)

// WithServiceName sets the service name attached to all telemetry.
func WithServiceName(name string) Option {
	return func(r *Recorder) {
		r.serviceName = name
	}
}

// WithServiceVersion sets the service version attached to all telemetry.
func WithServiceVersion(version string) Option {
	return func(r *Recorder) {
		r.serviceVersion = version
	}
}

// WithLogger sets the logger used for access logs and request-scoped
// loggers, and routes internal operational events to it as well. Without a
// logger the Recorder still collects metrics and traces but logs nothing.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
		if r.eventHandler == nil {
			r.eventHandler = DefaultEventHandler(logger)
		}
	}
}

// WithEventHandler sets a custom handler for internal operational events,
// overriding the default slog-based handler. Use this to forward exporter
// failures to alerting:
//
//	telemetry.WithEventHandler(func(e telemetry.Event) {
//	    if e.Type == telemetry.EventError {
//	        alerting.Notify(e.Message)
//	    }
//	})
func WithEventHandler(handler EventHandler) Option {
	return func(r *Recorder) {
		r.eventHandler = handler
	}
}

// WithPrometheus selects the Prometheus metrics provider and sets the
// scrape server's port and path. This is the default provider on :9090
// at /metrics.
//
//	telemetry.WithPrometheus(":9090", "/metrics")
func WithPrometheus(port, path string) Option {
	return func(r *Recorder) {
		r.metricsProvider = PrometheusProvider
		r.metricsProviderSets++
		if port != "" && !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		r.metricsPort = port
		if path != "" && !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		r.metricsPath = path
	}
}

// WithOTLPMetrics selects the OTLP HTTP metrics provider. The exporter
// connects during Start. An http:// scheme on the endpoint disables TLS:
//
//	telemetry.WithOTLPMetrics("http://collector:4318")
func WithOTLPMetrics(endpoint string) Option {
	return func(r *Recorder) {
		r.metricsProvider = OTLPProvider
		r.metricsProviderSets++
		r.metricsEndpoint = endpoint
	}
}

// WithStdoutMetrics selects the stdout metrics provider, for development
// and debugging. Pair with a short WithExportInterval to see output
// quickly.
func WithStdoutMetrics() Option {
	return func(r *Recorder) {
		r.metricsProvider = StdoutProvider
		r.metricsProviderSets++
	}
}

// WithoutMetrics disables the metrics pillar entirely.
func WithoutMetrics() Option {
	return func(r *Recorder) {
		r.metricsEnabled = false
	}
}

// WithOTLPTraces selects the OTLP HTTP trace provider. The exporter
// connects during Start. An http:// scheme on the endpoint disables TLS.
func WithOTLPTraces(endpoint string) Option {
	return func(r *Recorder) {
		r.traceProvider = OTLPProvider
		r.traceProviderSets++
		r.traceEndpoint = endpoint
	}
}

// WithStdoutTraces selects the stdout trace provider with pretty printing,
// for development and debugging.
func WithStdoutTraces() Option {
	return func(r *Recorder) {
		r.traceProvider = StdoutProvider
		r.traceProviderSets++
	}
}

// WithoutTracing disables the tracing pillar entirely. Trace IDs disappear
// from logs and TraceID returns "".
func WithoutTracing() Option {
	return func(r *Recorder) {
		r.tracingEnabled = false
	}
}

// WithSampleRate sets the fraction of requests to trace, from 0.0 (none)
// to 1.0 (all, the default). Sampling is deterministic and uniform, not
// random, so a rate of 0.1 traces every tenth request on average without
// clustering.
func WithSampleRate(rate float64) Option {
	return func(r *Recorder) {
		r.sampleRate = rate
	}
}

// WithRecordHeaders records the named request headers as span attributes
// under http.request.header.<name>. Credential-bearing headers such as
// Authorization and Cookie are silently dropped.
func WithRecordHeaders(headers ...string) Option {
	return func(r *Recorder) {
		for _, h := range headers {
			if sensitiveHeaders[strings.ToLower(h)] {
				continue
			}
			r.recordHeaders = append(r.recordHeaders, h)
		}
	}
}

// WithMeterProvider supplies a custom OpenTelemetry meter provider. The
// Recorder will not create or shut down its own; lifecycle belongs to the
// caller. Provider options such as WithPrometheus are ignored.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(r *Recorder) {
		r.meterProvider = provider
		r.customMeterProvider = true
	}
}

// WithTracerProvider supplies a custom OpenTelemetry tracer provider. The
// Recorder will not create or shut down its own; lifecycle belongs to the
// caller. Provider options such as WithOTLPTraces are ignored.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(r *Recorder) {
		r.tracerProvider = provider
		r.customTracerProvider = true
	}
}

// WithPropagator sets the trace context propagator. The default composes
// W3C Trace Context and Baggage.
func WithPropagator(propagator propagation.TextMapPropagator) Option {
	return func(r *Recorder) {
		if propagator != nil {
			r.propagator = propagator
		}
	}
}

// WithGlobalProviders registers the meter and tracer providers as the
// OpenTelemetry process globals via otel.SetMeterProvider and
// otel.SetTracerProvider. Off by default so multiple Recorders can coexist.
func WithGlobalProviders() Option {
	return func(r *Recorder) {
		r.registerGlobal = true
	}
}

// WithDurationBuckets sets the histogram boundaries for request duration,
// in seconds. Defaults to DefaultDurationBuckets.
func WithDurationBuckets(buckets ...float64) Option {
	return func(r *Recorder) {
		r.durationBuckets = buckets
	}
}

// WithSizeBuckets sets the histogram boundaries for request and response
// sizes, in bytes. Defaults to DefaultSizeBuckets.
func WithSizeBuckets(buckets ...float64) Option {
	return func(r *Recorder) {
		r.sizeBuckets = buckets
	}
}

// WithExportInterval sets how often OTLP and stdout metrics export.
// Defaults to 30s; minimum 1s.
func WithExportInterval(interval time.Duration) Option {
	return func(r *Recorder) {
		r.exportInterval = interval
	}
}

// WithMaxCustomMetrics caps the number of distinct custom metrics handlers
// may create, preventing unbounded instrument growth from dynamic names.
// Defaults to 1000.
func WithMaxCustomMetrics(limit int) Option {
	return func(r *Recorder) {
		r.maxCustomMetrics = limit
	}
}

// WithServerDisabled stops the Recorder from starting its own Prometheus
// scrape server. Serve Handler yourself instead, for example as a route on
// the main router.
func WithServerDisabled() Option {
	return func(r *Recorder) {
		r.autoStartServer = false
	}
}

// WithStrictPort makes the metrics server require its exact configured
// port instead of scanning forward for a free one. Startup fails if the
// port is taken.
func WithStrictPort() Option {
	return func(r *Recorder) {
		r.strictPort = true
	}
}

// WithExcludePaths excludes exact request paths from all three pillars.
// Health probes, /metrics, and /debug/ are excluded by default.
func WithExcludePaths(paths ...string) Option {
	return func(r *Recorder) {
		r.filter.addPaths(paths...)
	}
}

// WithExcludePrefixes excludes entire path hierarchies from all three
// pillars:
//
//	telemetry.WithExcludePrefixes("/internal/", "/_ops/")
func WithExcludePrefixes(prefixes ...string) Option {
	return func(r *Recorder) {
		r.filter.addPrefixes(prefixes...)
	}
}

// WithExcludePatterns excludes paths matching the given regular
// expressions from all three pillars. Patterns compile once during New;
// invalid patterns make New return an error.
func WithExcludePatterns(patterns ...string) Option {
	return func(r *Recorder) {
		for _, pattern := range patterns {
			compiled, err := regexp.Compile(pattern)
			if err != nil {
				r.validationErrors = append(r.validationErrors,
					fmt.Errorf("invalid exclude pattern %q: %w", pattern, err))
				continue
			}
			r.filter.addPatterns(compiled)
		}
	}
}

// WithoutAccessLog disables per-request access log lines. Request-scoped
// loggers and event logging are unaffected.
func WithoutAccessLog() Option {
	return func(r *Recorder) {
		r.logRequests = false
	}
}

// WithErrorsOnly restricts access logging to responses with status 400 and
// above. Requests slower than the WithSlowThreshold value are still logged.
func WithErrorsOnly() Option {
	return func(r *Recorder) {
		r.logErrorsOnly = true
	}
}

// WithSlowThreshold marks requests at or above the given duration as slow:
// they log at warn level with a slow=true field and bypass WithErrorsOnly
// filtering. Zero (the default) disables slow marking.
func WithSlowThreshold(threshold time.Duration) Option {
	return func(r *Recorder) {
		r.slowThreshold = threshold
	}
}
