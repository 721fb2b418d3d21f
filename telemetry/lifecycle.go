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
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/viaduct-http/viaduct"
	"github.com/viaduct-http/viaduct/telemetry/semconv"
)

// The Recorder plugs into the router's dispatch lifecycle and into
// handler-level instrumentation.
var (
	_ viaduct.ObservabilityRecorder  = (*Recorder)(nil)
	_ viaduct.ContextMetricsRecorder = (*Recorder)(nil)
	_ viaduct.ContextTracingRecorder = (*Recorder)(nil)
)

// requestState is the opaque per-request token passed between lifecycle
// methods.
type requestState struct {
	span      trace.Span
	startTime time.Time
	req       *http.Request
}

// OnRequestStart begins observability for a request: trace context
// extraction, span start, and the active-request gauge. Returns a nil state
// for excluded paths, which skips the rest of the lifecycle.
func (r *Recorder) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	if r.filter.shouldExclude(req.URL.Path) {
		return ctx, nil
	}

	if !r.started.Load() && r.hasDeferredProvider() {
		r.warnNotStarted.Do(func() {
			r.emitWarning("Recorder serving requests before Start; OTLP exporters are not initialized",
				"recommendation", "call Start(ctx) during application startup")
		})
	}

	state := &requestState{
		startTime: time.Now(),
		req:       req,
	}

	// Span names start as method + raw path and are renamed to the route
	// pattern in OnRequestEnd, once the pattern is known.
	if r.tracingEnabled && r.tracingReady.Load() {
		ctx, state.span = r.startRequestSpan(ctx, req)
	}

	if r.metricsEnabled && r.metricsReady.Load() {
		r.beginRequestMetrics(ctx, req)
	}

	return ctx, state
}

// WrapResponseWriter wraps the writer to capture status and size. Returns
// the writer unchanged for excluded requests.
func (r *Recorder) WrapResponseWriter(w http.ResponseWriter, state any) http.ResponseWriter {
	if state == nil {
		return w
	}
	return &telemetryResponseWriter{ResponseWriter: w}
}

// OnRequestEnd completes the request lifecycle: renames and finishes the
// span, records request metrics under the route pattern, and emits the
// access log line.
func (r *Recorder) OnRequestEnd(ctx context.Context, state any, writer http.ResponseWriter, routePattern string) {
	s, ok := state.(*requestState)
	if !ok || s == nil {
		return
	}

	duration := time.Since(s.startTime)

	statusCode := http.StatusOK
	var responseSize int64
	if ri, ok := writer.(viaduct.ResponseInfo); ok {
		statusCode = ri.StatusCode()
		responseSize = ri.Size()
	}

	if s.span != nil {
		// Rename from raw path to route pattern for bounded cardinality.
		if s.span.IsRecording() && routePattern != "" {
			s.span.SetName(s.req.Method + " " + routePattern)
		}
		r.finishRequestSpan(s.span, statusCode, routePattern)
	}

	if r.metricsEnabled && r.metricsReady.Load() {
		route := routePattern
		if route == "" {
			route = "_unmatched"
		}
		r.finishRequestMetrics(ctx, duration, statusCode, responseSize, route)
	}

	if r.logRequests && r.logger != nil {
		r.logAccess(ctx, s.req, statusCode, responseSize, duration, routePattern)
	}
}

// BuildRequestLogger returns the request-scoped logger: the configured
// logger enriched with HTTP metadata and, when a span is active, trace and
// span IDs for log-trace correlation. Always non-nil.
func (r *Recorder) BuildRequestLogger(ctx context.Context, req *http.Request, routePattern string) *slog.Logger {
	if r.logger == nil {
		return viaduct.NoopLogger()
	}

	attrs := []any{
		semconv.HTTPMethod, req.Method,
		semconv.HTTPTarget, req.URL.Path,
	}
	if routePattern != "" {
		attrs = append(attrs, semconv.HTTPRoute, routePattern)
	}
	if reqID := req.Header.Get("X-Request-ID"); reqID != "" {
		attrs = append(attrs, semconv.RequestID, reqID)
	}
	// RemoteAddr is the socket peer; proxy-aware client resolution happens
	// at the Context level where trusted-proxy configuration lives.
	attrs = append(attrs, semconv.NetworkPeerIP, req.RemoteAddr)

	logger := r.logger.With(attrs...)

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		logger = logger.With(
			semconv.TraceID, sc.TraceID().String(),
			semconv.SpanID, sc.SpanID().String(),
		)
	}

	return logger
}

// logAccess emits one structured log line per request, leveled by outcome:
// error for 5xx, warn for 4xx and slow requests, info otherwise.
func (r *Recorder) logAccess(
	ctx context.Context,
	req *http.Request,
	statusCode int,
	responseSize int64,
	duration time.Duration,
	routePattern string,
) {
	isError := statusCode >= 400
	isSlow := r.slowThreshold > 0 && duration >= r.slowThreshold

	if r.logErrorsOnly && !isError && !isSlow {
		return
	}

	fields := []any{
		"method", req.Method,
		"path", req.URL.Path,
		"status", statusCode,
		"duration_ms", duration.Milliseconds(),
		"bytes_sent", responseSize,
		"user_agent", req.UserAgent(),
		"remote_addr", req.RemoteAddr,
		"host", req.Host,
		"proto", req.Proto,
	}
	if routePattern != "" {
		fields = append(fields, "route", routePattern)
	}
	if reqID := req.Header.Get("X-Request-ID"); reqID != "" {
		fields = append(fields, "request_id", reqID)
	}
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		fields = append(fields, "trace_id", span.SpanContext().TraceID().String())
	}
	if isSlow {
		fields = append(fields, "slow", true)
	}

	switch {
	case statusCode >= 500:
		r.logger.ErrorContext(ctx, "access", fields...)
	case statusCode >= 400:
		r.logger.WarnContext(ctx, "access", fields...)
	case isSlow:
		r.logger.WarnContext(ctx, "access", fields...)
	default:
		r.logger.InfoContext(ctx, "access", fields...)
	}
}

// hasDeferredProvider reports whether any configured provider waits for
// Start before exporting.
func (r *Recorder) hasDeferredProvider() bool {
	if r.metricsEnabled && !r.customMeterProvider && r.metricsProvider == OTLPProvider {
		return true
	}
	if r.tracingEnabled && !r.customTracerProvider && r.traceProvider == OTLPProvider {
		return true
	}
	return false
}

// telemetryResponseWriter captures status and size while preserving the
// optional interfaces streaming and proxy handlers rely on.
type telemetryResponseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int64
	written    bool
}

var _ viaduct.ResponseInfo = (*telemetryResponseWriter)(nil)

func (w *telemetryResponseWriter) WriteHeader(code int) {
	if !w.written {
		w.statusCode = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *telemetryResponseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.statusCode = http.StatusOK
		w.written = true
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += int64(n)
	return n, err
}

func (w *telemetryResponseWriter) StatusCode() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

func (w *telemetryResponseWriter) Size() int64 {
	return w.size
}

func (w *telemetryResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *telemetryResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("telemetry: response writer does not support hijacking")
}

func (w *telemetryResponseWriter) Push(target string, opts *http.PushOptions) error {
	if p, ok := w.ResponseWriter.(http.Pusher); ok {
		return p.Push(target, opts)
	}
	return http.ErrNotSupported
}

func (w *telemetryResponseWriter) ReadFrom(src io.Reader) (int64, error) {
	if !w.written {
		w.statusCode = http.StatusOK
		w.written = true
	}
	if rf, ok := w.ResponseWriter.(io.ReaderFrom); ok {
		n, err := rf.ReadFrom(src)
		w.size += n
		return n, err
	}
	n, err := io.Copy(w.ResponseWriter, src)
	w.size += n
	return n, err
}
