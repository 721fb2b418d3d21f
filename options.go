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
	"log/slog"
	"time"
)

// WithOrigin sets the origin (scheme and authority) used when building
// absolute URLs from helpers. Must be an absolute URL or New fails.
//
//	r := viaduct.MustNew(viaduct.WithOrigin("https://example.com"))
//	url, _ := r.URLFor("post", viaduct.Params{"post_id": "7"})
//	// https://example.com/posts/7
func WithOrigin(origin string) Option {
	return func(r *Router) {
		r.origin = origin
	}
}

// WithLogger sets the router's own logger, used for build and dispatch
// diagnostics. Request-scoped logging goes through the observability
// recorder instead. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObservability sets the unified observability recorder for metrics,
// tracing, and access logging.
//
//	rec, _ := telemetry.New(telemetry.WithServiceName("api"))
//	r := viaduct.MustNew(viaduct.WithObservability(rec))
func WithObservability(recorder ObservabilityRecorder) Option {
	return func(r *Router) {
		r.observability = recorder
	}
}

// WithDiagnostics sets a diagnostic handler for the router.
//
// Diagnostic events are optional informational events that may indicate
// configuration issues or security concerns. The router functions
// correctly whether diagnostics are collected or not.
//
//	handler := viaduct.DiagnosticHandlerFunc(func(e viaduct.DiagnosticEvent) {
//	    slog.Warn(e.Message, "kind", e.Kind, "fields", e.Fields)
//	})
//	r := viaduct.MustNew(viaduct.WithDiagnostics(handler))
func WithDiagnostics(handler DiagnosticHandler) Option {
	return func(r *Router) {
		r.diagnostics = handler
	}
}

// WithH2C enables HTTP/2 Cleartext support.
//
// ⚠️ SECURITY WARNING: Only use in development or behind a trusted load
// balancer. DO NOT enable on public-facing servers without TLS.
//
//	r := viaduct.MustNew(viaduct.WithH2C(true))
//	r.Serve(":8080")
func WithH2C(enable bool) Option {
	return func(r *Router) {
		r.enableH2C = enable
	}
}

// WithServerTimeouts configures HTTP server timeouts. These are critical
// for preventing slowloris attacks and resource exhaustion.
//
// Defaults (if not set):
//
//	ReadHeaderTimeout: 5s  - Time to read request headers
//	ReadTimeout:       15s - Time to read entire request
//	WriteTimeout:      30s - Time to write response
//	IdleTimeout:       60s - Keep-alive idle time
func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(r *Router) {
		r.serverTimeouts = &serverTimeouts{
			readHeader: readHeader,
			read:       read,
			write:      write,
			idle:       idle,
		}
	}
}

// defaultServerTimeouts returns the default timeout configuration.
func defaultServerTimeouts() *serverTimeouts {
	return &serverTimeouts{
		readHeader: 5 * time.Second,
		read:       15 * time.Second,
		write:      30 * time.Second,
		idle:       60 * time.Second,
	}
}

// WithCancellationCheck enables or disables context cancellation checking
// between handlers in the chain. When enabled, dispatch stops running
// handlers once the client goes away.
//
// Default: true (enabled)
func WithCancellationCheck(enabled bool) Option {
	return func(r *Router) {
		r.checkCancellation = enabled
	}
}

// WithoutCancellationCheck disables context cancellation checking in the
// handler chain. Equivalent to WithCancellationCheck(false); the "Without"
// prefix marks disabling a feature that defaults to on.
func WithoutCancellationCheck() Option {
	return func(r *Router) {
		r.checkCancellation = false
	}
}
