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
	"log/slog"
	"net/http"
)

// ObservabilityRecorder provides unified observability lifecycle hooks for
// HTTP requests. Implementations typically combine metrics collection,
// distributed tracing, and access logging.
//
// Lifecycle:
//  1. Dispatch calls OnRequestStart(ctx, req) → (enrichedCtx, state).
//     The enriched context (trace propagation and the like) is always
//     installed on the request. The state token is opaque to the router;
//     nil state means the request is excluded from observability.
//  2. Dispatch wraps the ResponseWriter through WrapResponseWriter only
//     when state != nil.
//  3. After routing, dispatch calls BuildRequestLogger with the matched
//     pattern and installs the result as the request-scoped logger.
//  4. Handlers run.
//  5. Dispatch calls OnRequestEnd only when state != nil. Implementations
//     extract status and size from the writer via ResponseInfo and record
//     metrics, finish spans, and emit the access log line.
//
// Exclusion semantics: state=nil skips wrapping, OnRequestEnd, and the
// request logger, but context enrichment still applies, so downstream
// calls from excluded paths keep working trace propagation.
//
// Thread safety: all methods must be safe for concurrent use.
type ObservabilityRecorder interface {
	// OnRequestStart is called before routing begins. Returns an enriched
	// context and an opaque state token, nil to exclude the request.
	OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any)

	// WrapResponseWriter wraps the writer to capture response metadata.
	// The wrapped writer should implement ResponseInfo. When state is nil
	// this must return the original writer unchanged.
	WrapResponseWriter(w http.ResponseWriter, state any) http.ResponseWriter

	// BuildRequestLogger creates the request-scoped logger, enriched with
	// request metadata and the matched route pattern. routePattern is the
	// matched pattern or a sentinel such as "_not_found". Must return a
	// non-nil logger.
	BuildRequestLogger(ctx context.Context, req *http.Request, routePattern string) *slog.Logger

	// OnRequestEnd is called after handling completes, only when state is
	// non-nil. routePattern is the matched pattern or a sentinel; use it
	// rather than the raw path to keep metric cardinality bounded.
	OnRequestEnd(ctx context.Context, state any, writer http.ResponseWriter, routePattern string)
}

// ResponseInfo is implemented by response writers that track response
// metadata, so OnRequestEnd can extract status and size.
type ResponseInfo interface {
	StatusCode() int
	Size() int64
}
