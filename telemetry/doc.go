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

// Package telemetry provides unified observability for viaduct routers:
// OpenTelemetry metrics, distributed tracing, and structured access logging
// behind a single Recorder.
//
// The Recorder implements viaduct.ObservabilityRecorder, so one value wires
// all three pillars into the dispatch lifecycle:
//
//	rec, err := telemetry.New(
//	    telemetry.WithServiceName("orders-api"),
//	    telemetry.WithServiceVersion("2.3.0"),
//	    telemetry.WithPrometheus(":9090", "/metrics"),
//	    telemetry.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rec.Shutdown(context.Background())
//
//	r := viaduct.MustNew(viaduct.WithObservability(rec))
//
// # Providers
//
// Metrics export through Prometheus (default, with a scrape endpoint on a
// dedicated server), OTLP HTTP, or stdout. Traces export through OTLP HTTP
// or stdout; the default is a no-op provider that records spans without
// exporting them, which keeps trace IDs available for log correlation at
// zero export cost.
//
// OTLP exporters open network connections and therefore initialize in
// Start, not New:
//
//	rec := telemetry.MustNew(
//	    telemetry.WithOTLPMetrics("http://collector:4318"),
//	    telemetry.WithOTLPTraces("http://collector:4318"),
//	)
//	if err := rec.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Cardinality
//
// Request metrics and span names use the matched route pattern
// ("/posts/:post_id"), never the raw path, so a crawler probing random URLs
// cannot explode the label space. Requests that match no route are recorded
// under the "_unmatched" sentinel.
//
// # Exclusions
//
// Health probes and debug endpoints are excluded from all three pillars by
// default (/health, /healthz, /ready, /readyz, /live, /livez, /metrics and
// the /debug/ prefix). Add more with WithExcludePaths, WithExcludePrefixes,
// or WithExcludePatterns.
//
// # Handler-level instrumentation
//
// The Recorder also implements viaduct.ContextMetricsRecorder and
// viaduct.ContextTracingRecorder, so handlers reach custom metrics and the
// active span through the request context:
//
//	r.GET("/orders/:order_id", func(c *viaduct.Context) {
//	    c.IncrementCounter("orders_fetched")
//	    c.SetSpanAttribute("order.id", c.Param("order_id"))
//	    ...
//	})
//
// By default nothing is registered globally; multiple Recorders can coexist
// in one process. Use WithGlobalProviders to install the meter and tracer
// providers as the OpenTelemetry global defaults.
package telemetry
