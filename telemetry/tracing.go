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
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// samplingMultiplier is Knuth's multiplicative hash constant. Multiplying
// the request counter by it spreads consecutive counts uniformly across
// the uint64 range, so comparing against the precomputed threshold yields
// deterministic, evenly spaced sampling.
const samplingMultiplier = 2654435761

const attrPrefixHeader = "http.request.header."

// startRequestSpan extracts upstream trace context, applies the sampling
// decision, and starts a server span with standard HTTP attributes. When
// the request is not sampled the extracted context is still returned so
// propagation to downstream services keeps working.
func (r *Recorder) startRequestSpan(ctx context.Context, req *http.Request) (context.Context, trace.Span) {
	ctx = r.propagator.Extract(ctx, propagation.HeaderCarrier(req.Header))

	if r.sampleRate < 1.0 {
		if r.sampleRate == 0.0 {
			return ctx, nil
		}
		counter := r.samplingCounter.Add(1)
		if counter*samplingMultiplier > r.samplingThreshold {
			return ctx, nil
		}
	}

	ctx, span := r.tracer.Start(ctx, req.Method+" "+req.URL.Path,
		trace.WithSpanKind(trace.SpanKindServer))

	attrs := make([]attribute.KeyValue, 0, 7+len(r.recordHeaders))
	attrs = append(attrs,
		attribute.String("http.method", req.Method),
		attribute.String("http.target", req.URL.RequestURI()),
		attribute.String("http.scheme", requestScheme(req)),
		attribute.String("http.host", req.Host),
		attribute.String("http.user_agent", req.UserAgent()),
		r.serviceNameAttr,
		r.serviceVersionAttr,
	)
	for _, header := range r.recordHeaders {
		if value := req.Header.Get(header); value != "" {
			attrs = append(attrs, attribute.String(
				attrPrefixHeader+strings.ToLower(header),
				value,
			))
		}
	}
	span.SetAttributes(attrs...)

	return ctx, span
}

// finishRequestSpan sets the response attributes and status, then ends the
// span. 4xx and 5xx map to an error status.
func (r *Recorder) finishRequestSpan(span trace.Span, statusCode int, routePattern string) {
	if span == nil || !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int("http.status_code", statusCode))
	if routePattern != "" {
		span.SetAttributes(attribute.String("http.route", routePattern))
	}

	if statusCode >= 400 {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", statusCode))
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}

// requestScheme reports the scheme the server terminated, without
// consulting forwarding headers; proxy-aware scheme resolution lives on
// the router's Context.
func requestScheme(req *http.Request) string {
	if req.TLS != nil {
		return "https"
	}
	return "http"
}

// TraceID returns the trace ID of the span in ctx, or "" when no valid
// span is active.
func (r *Recorder) TraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// SpanID returns the span ID of the span in ctx, or "" when no valid span
// is active.
func (r *Recorder) SpanID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.SpanID().String()
	}
	return ""
}

// SetSpanAttribute adds an attribute to the span in ctx. string, int,
// int64, float64, and bool map to their native attribute types; everything
// else is formatted with %v. No-op when no span is recording.
func (r *Recorder) SetSpanAttribute(ctx context.Context, key string, value any) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(buildAttribute(key, value))
}

// AddSpanEvent adds a timestamped event to the span in ctx. No-op when no
// span is recording.
func (r *Recorder) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// TraceContext returns ctx itself: the dispatch lifecycle already installed
// the span-carrying context on the request, so it is the propagating one.
func (r *Recorder) TraceContext(ctx context.Context) context.Context {
	return ctx
}

// InjectTraceContext writes the trace context from ctx into headers, for
// propagating to downstream services on outbound requests:
//
//	req, _ := http.NewRequestWithContext(ctx, "GET", url, nil)
//	rec.InjectTraceContext(ctx, req.Header)
func (r *Recorder) InjectTraceContext(ctx context.Context, headers http.Header) {
	if !r.tracingEnabled {
		return
	}
	r.propagator.Inject(ctx, propagation.HeaderCarrier(headers))
}

// buildAttribute converts a dynamically typed value to an OpenTelemetry
// attribute. When the type is known at compile time, call the attribute
// constructors directly instead.
func buildAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
