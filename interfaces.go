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

package viaduct

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// Request-level observability runs through ObservabilityRecorder (see
// observability.go). The interfaces here cover handler-level custom
// metrics and tracing reached through Context.

// ContextMetricsRecorder records custom metrics from request handlers.
type ContextMetricsRecorder interface {
	// RecordMetric records a custom histogram value.
	RecordMetric(ctx context.Context, name string, value float64, attributes ...attribute.KeyValue)

	// IncrementCounter increments a custom counter.
	IncrementCounter(ctx context.Context, name string, attributes ...attribute.KeyValue)

	// SetGauge sets a custom gauge value.
	SetGauge(ctx context.Context, name string, value float64, attributes ...attribute.KeyValue)
}

// ContextTracingRecorder exposes the active span to request handlers. The
// span travels in the request context, so every method takes the context it
// should inspect.
type ContextTracingRecorder interface {
	// TraceID returns the current trace ID, or "" when tracing is inactive.
	TraceID(ctx context.Context) string

	// SpanID returns the current span ID, or "" when tracing is inactive.
	SpanID(ctx context.Context) string

	// SetSpanAttribute adds an attribute to the current span.
	SetSpanAttribute(ctx context.Context, key string, value any)

	// AddSpanEvent adds an event to the current span.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)

	// TraceContext returns the trace-propagating context, or the given
	// context unchanged when tracing is inactive.
	TraceContext(ctx context.Context) context.Context
}
