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
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// metricNameRegex validates custom metric names per OpenTelemetry
// conventions: a leading letter, then alphanumerics, underscores, dots,
// and hyphens.
var metricNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.-]*$`)

const maxMetricNameLength = 255

// reservedPrefixes are excluded from custom metric names: Prometheus
// internals and the built-in HTTP instruments.
var reservedPrefixes = []string{"__", "http_", "viaduct_"}

// limitError is returned when the custom metrics cap is reached.
type limitError struct {
	metricName string
	limit      int
	current    int
}

func (e *limitError) Error() string {
	return fmt.Sprintf("metrics limit reached: cannot create %q (current: %d, limit: %d)",
		e.metricName, e.current, e.limit)
}

func validateMetricName(name string) error {
	if name == "" {
		return fmt.Errorf("metric name cannot be empty")
	}
	if len(name) > maxMetricNameLength {
		return fmt.Errorf("metric name too long: %d characters (max %d)", len(name), maxMetricNameLength)
	}
	if !metricNameRegex.MatchString(name) {
		return fmt.Errorf("invalid metric name %q: must start with a letter and contain only alphanumeric, underscore, dot, or hyphen", name)
	}
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(name, prefix) {
			return fmt.Errorf("metric name %q uses reserved prefix %q", name, prefix)
		}
	}
	return nil
}

// initInstruments creates the built-in HTTP instruments on the meter.
func (r *Recorder) initInstruments() error {
	var err error

	r.requestDuration, err = r.meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(r.durationBuckets...),
	)
	if err != nil {
		return fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	r.requestCount, err = r.meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create request count counter: %w", err)
	}

	r.activeRequests, err = r.meter.Int64UpDownCounter(
		"http_requests_active",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create active requests counter: %w", err)
	}

	r.requestSize, err = r.meter.Int64Histogram(
		"http_request_size_bytes",
		metric.WithDescription("Size of HTTP request bodies in bytes"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(r.sizeBuckets...),
	)
	if err != nil {
		return fmt.Errorf("failed to create request size histogram: %w", err)
	}

	r.responseSize, err = r.meter.Int64Histogram(
		"http_response_size_bytes",
		metric.WithDescription("Size of HTTP response bodies in bytes"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(r.sizeBuckets...),
	)
	if err != nil {
		return fmt.Errorf("failed to create response size histogram: %w", err)
	}

	r.errorCount, err = r.meter.Int64Counter(
		"http_errors_total",
		metric.WithDescription("Total number of HTTP error responses"),
	)
	if err != nil {
		return fmt.Errorf("failed to create error count counter: %w", err)
	}

	r.customMetricFailures, err = r.meter.Int64Counter(
		"custom_metric_failures_total",
		metric.WithDescription("Total number of custom metric recording failures"),
	)
	if err != nil {
		return fmt.Errorf("failed to create custom metric failures counter: %w", err)
	}

	return nil
}

// beginRequestMetrics records the request-start side of the built-in
// instruments.
func (r *Recorder) beginRequestMetrics(ctx context.Context, req *http.Request) {
	base := metric.WithAttributes(r.serviceNameAttr, r.serviceVersionAttr)
	r.activeRequests.Add(ctx, 1, base)
	if req.ContentLength > 0 {
		r.requestSize.Record(ctx, req.ContentLength, base)
	}
}

// finishRequestMetrics records the request-end side. The active-request
// decrement uses the same base attributes as the increment so the gauge
// nets to zero per timeseries; the other instruments carry status and
// route.
func (r *Recorder) finishRequestMetrics(ctx context.Context, duration time.Duration, statusCode int, responseSize int64, route string) {
	full := metric.WithAttributes(
		r.serviceNameAttr,
		r.serviceVersionAttr,
		attribute.Int("http.status_code", statusCode),
		attribute.String("http.status_class", statusClass(statusCode)),
		attribute.String("http.route", route),
	)
	base := metric.WithAttributes(r.serviceNameAttr, r.serviceVersionAttr)

	r.requestDuration.Record(ctx, duration.Seconds(), full)
	r.requestCount.Add(ctx, 1, full)
	r.activeRequests.Add(ctx, -1, base)
	if statusCode >= 400 {
		r.errorCount.Add(ctx, 1, full)
	}
	if responseSize > 0 {
		r.responseSize.Record(ctx, responseSize, full)
	}
}

// statusClass buckets a status code into 2xx, 3xx, 4xx, or 5xx.
func statusClass(statusCode int) string {
	switch statusCode / 100 {
	case 2:
		return "2xx"
	case 3:
		return "3xx"
	case 4:
		return "4xx"
	case 5:
		return "5xx"
	default:
		return "unknown"
	}
}

// RecordMetric records a value on a custom histogram, creating the
// instrument on first use. Failures (invalid name, cap reached) are
// reported through the event handler and counted on
// custom_metric_failures_total rather than returned, because handlers
// rarely have a useful way to react mid-request.
func (r *Recorder) RecordMetric(ctx context.Context, name string, value float64, attributes ...attribute.KeyValue) {
	if !r.metricsEnabled || !r.metricsReady.Load() {
		return
	}
	histogram, err := r.getOrCreateHistogram(name)
	if err != nil {
		r.recordCustomFailure(ctx, "histogram", name, err)
		return
	}
	histogram.Record(ctx, value, metric.WithAttributes(attributes...))
}

// IncrementCounter increments a custom counter by 1, creating the
// instrument on first use.
func (r *Recorder) IncrementCounter(ctx context.Context, name string, attributes ...attribute.KeyValue) {
	r.AddCounter(ctx, name, 1, attributes...)
}

// AddCounter adds a value to a custom counter, creating the instrument on
// first use.
func (r *Recorder) AddCounter(ctx context.Context, name string, value int64, attributes ...attribute.KeyValue) {
	if !r.metricsEnabled || !r.metricsReady.Load() {
		return
	}
	counter, err := r.getOrCreateCounter(name)
	if err != nil {
		r.recordCustomFailure(ctx, "counter", name, err)
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attributes...))
}

// SetGauge sets a custom gauge value, creating the instrument on first use.
func (r *Recorder) SetGauge(ctx context.Context, name string, value float64, attributes ...attribute.KeyValue) {
	if !r.metricsEnabled || !r.metricsReady.Load() {
		return
	}
	gauge, err := r.getOrCreateGauge(name)
	if err != nil {
		r.recordCustomFailure(ctx, "gauge", name, err)
		return
	}
	gauge.Record(ctx, value, metric.WithAttributes(attributes...))
}

func (r *Recorder) recordCustomFailure(ctx context.Context, kind, name string, err error) {
	r.failedCustom.Add(1)
	r.customMetricFailures.Add(ctx, 1)
	r.emitWarning("Custom metric rejected", "kind", kind, "name", name, "error", err)
}

// getOrCreateCounter returns the named custom counter, creating it under
// the write lock on first use. Names validate only on the creation path.
func (r *Recorder) getOrCreateCounter(name string) (metric.Int64Counter, error) {
	r.customMu.RLock()
	if counter, exists := r.customCounters[name]; exists {
		r.customMu.RUnlock()
		return counter, nil
	}
	r.customMu.RUnlock()

	if err := validateMetricName(name); err != nil {
		return nil, err
	}

	r.customMu.Lock()
	defer r.customMu.Unlock()

	if counter, exists := r.customCounters[name]; exists {
		return counter, nil
	}
	if r.customMetricCount >= r.maxCustomMetrics {
		return nil, &limitError{metricName: name, limit: r.maxCustomMetrics, current: r.customMetricCount}
	}

	counter, err := r.meter.Int64Counter(name, metric.WithDescription("Custom counter metric"))
	if err != nil {
		return nil, err
	}

	r.customCounters[name] = counter
	r.customMetricCount++

	return counter, nil
}

func (r *Recorder) getOrCreateHistogram(name string) (metric.Float64Histogram, error) {
	r.customMu.RLock()
	if histogram, exists := r.customHistograms[name]; exists {
		r.customMu.RUnlock()
		return histogram, nil
	}
	r.customMu.RUnlock()

	if err := validateMetricName(name); err != nil {
		return nil, err
	}

	r.customMu.Lock()
	defer r.customMu.Unlock()

	if histogram, exists := r.customHistograms[name]; exists {
		return histogram, nil
	}
	if r.customMetricCount >= r.maxCustomMetrics {
		return nil, &limitError{metricName: name, limit: r.maxCustomMetrics, current: r.customMetricCount}
	}

	histogram, err := r.meter.Float64Histogram(name, metric.WithDescription("Custom histogram metric"))
	if err != nil {
		return nil, err
	}

	r.customHistograms[name] = histogram
	r.customMetricCount++

	return histogram, nil
}

func (r *Recorder) getOrCreateGauge(name string) (metric.Float64Gauge, error) {
	r.customMu.RLock()
	if gauge, exists := r.customGauges[name]; exists {
		r.customMu.RUnlock()
		return gauge, nil
	}
	r.customMu.RUnlock()

	if err := validateMetricName(name); err != nil {
		return nil, err
	}

	r.customMu.Lock()
	defer r.customMu.Unlock()

	if gauge, exists := r.customGauges[name]; exists {
		return gauge, nil
	}
	if r.customMetricCount >= r.maxCustomMetrics {
		return nil, &limitError{metricName: name, limit: r.maxCustomMetrics, current: r.customMetricCount}
	}

	gauge, err := r.meter.Float64Gauge(name, metric.WithDescription("Custom gauge metric"))
	if err != nil {
		return nil, err
	}

	r.customGauges[name] = gauge
	r.customMetricCount++

	return gauge, nil
}

// CustomMetricCount returns the number of distinct custom metrics created.
func (r *Recorder) CustomMetricCount() int {
	r.customMu.RLock()
	defer r.customMu.RUnlock()

	return r.customMetricCount
}

// customFailureCount returns the running count of rejected custom metric
// operations.
func (r *Recorder) customFailureCount() int64 {
	return r.failedCustom.Load()
}
