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
	"errors"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Sentinel route patterns reported to observability when no route matched.
// Using sentinels instead of the raw path keeps metric cardinality bounded.
const (
	notFoundPattern         = "_not_found"
	methodNotAllowedPattern = "_method_not_allowed"
)

// ServeHTTP dispatches one request against the frozen route table.
//
// The first request compiles and freezes the table automatically; call
// Compile during startup to surface declaration errors earlier.
//
// Dispatch scans the verb's routes in declaration order and takes the
// first one whose shape and constraints both accept the request. A route
// whose constraints reject the request does not end the scan. When no
// route in the verb's bucket matches structurally but another verb's does,
// the response is 405 with an Allow header; otherwise 404.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if err := r.Compile(); err != nil {
		r.logger.Error("route table compilation failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx := req.Context()
	var obsState any
	if r.observability != nil {
		enrichedCtx, state := r.observability.OnRequestStart(ctx, req)
		obsState = state
		// Only attach the enriched context when it actually changed.
		if enrichedCtx != ctx {
			ctx = enrichedCtx
			req = req.WithContext(ctx)
		}
		if obsState != nil {
			w = r.observability.WrapResponseWriter(w, obsState)
		}
	}
	rw := &responseWriter{ResponseWriter: w}

	c := acquireContext(r, r.table.maxParams)
	cr, values, format, structural := r.table.lookup(req.Method, req.URL.Path, req, c.scratch)
	if cr == nil && req.Method == http.MethodHead {
		// No HEAD route declared: serve from the GET bucket. net/http
		// discards the body for HEAD responses.
		var headStructural bool
		cr, values, format, headStructural = r.table.lookup(http.MethodGet, req.URL.Path, req, c.scratch)
		structural = structural || headStructural
	}
	if cr == nil {
		releaseContext(c)
		// A structural match whose constraints rejected the request is a
		// 404, not a 405; the Allow check only runs when this verb had no
		// structural match at all.
		if !structural {
			if allowed := r.table.allowedMethods(req.URL.Path, req.Method); len(allowed) > 0 {
				r.handleMethodNotAllowed(rw, req, allowed, obsState)
				return
			}
		}
		r.handleNotFound(rw, req, obsState)
		return
	}

	c.Request = req
	c.Response = rw
	c.handlers = cr.chain
	c.index = -1
	c.bindParams(cr.pattern.params, values)
	c.routePattern = cr.fullPattern
	c.routeName = cr.helperName
	c.format = format
	r.attachObservability(c, ctx, req, cr.fullPattern)

	c.Next()

	if c.HasErrors() {
		c.Logger().Error("request handlers reported errors",
			"pattern", cr.fullPattern,
			"error", errors.Join(c.errors...),
		)
		if !rw.Written() {
			c.internalServerError()
		}
	}
	releaseContext(c)

	if obsState != nil {
		r.observability.OnRequestEnd(ctx, obsState, rw, cr.fullPattern)
	}
}

// attachObservability installs the request-scoped logger and the handler
// level metrics and tracing recorders on the context.
func (r *Router) attachObservability(c *Context, ctx context.Context, req *http.Request, routePattern string) {
	if r.observability == nil {
		c.logger = noopLogger
		return
	}
	c.logger = r.observability.BuildRequestLogger(ctx, req, routePattern)
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		c.span = span
	}
	if mr, ok := r.observability.(ContextMetricsRecorder); ok {
		c.metricsRecorder = mr
	}
	if tr, ok := r.observability.(ContextTracingRecorder); ok {
		c.tracingRecorder = tr
	}
}

// handleNotFound answers a request that matched no route. A custom NoRoute
// handler runs with a pooled context; the default is the stdlib 404.
func (r *Router) handleNotFound(rw *responseWriter, req *http.Request, obsState any) {
	if handler := r.noRoute(); handler != nil {
		c := acquireContext(r, 0)
		c.Request = req
		c.Response = rw
		c.handlers = []HandlerFunc{handler}
		c.index = -1
		c.routePattern = notFoundPattern
		r.attachObservability(c, req.Context(), req, notFoundPattern)
		c.Next()
		releaseContext(c)
	} else {
		if r.observability != nil {
			_ = r.observability.BuildRequestLogger(req.Context(), req, notFoundPattern)
		}
		http.NotFound(rw, req)
	}

	if obsState != nil {
		r.observability.OnRequestEnd(req.Context(), obsState, rw, notFoundPattern)
	}
}

// handleMethodNotAllowed answers 405 with the required Allow header per
// RFC 7231. allowed arrives sorted from the table scan.
func (r *Router) handleMethodNotAllowed(rw *responseWriter, req *http.Request, allowed []string, obsState any) {
	if r.observability != nil {
		_ = r.observability.BuildRequestLogger(req.Context(), req, methodNotAllowedPattern)
	}
	rw.Header().Set("Allow", strings.Join(allowed, ", "))
	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	rw.WriteHeader(http.StatusMethodNotAllowed)
	_, _ = io.WriteString(rw, "Method Not Allowed\n")

	if obsState != nil {
		r.observability.OnRequestEnd(req.Context(), obsState, rw, methodNotAllowedPattern)
	}
}

// Serve starts the HTTP server on addr. It blocks until the server exits;
// use Shutdown from another goroutine for graceful shutdown.
//
// The server is configured with production-safe timeouts to prevent
// slowloris attacks and resource exhaustion; override them through
// WithServerTimeouts.
//
// With H2C enabled (dev or behind a trusted LB only):
//
//	r := viaduct.MustNew(viaduct.WithH2C(true))
//	r.Serve(":8080")
func (r *Router) Serve(addr string) error {
	if err := r.Compile(); err != nil {
		return err
	}

	h := http.Handler(r)
	if r.enableH2C {
		h = h2c.NewHandler(h, &http2.Server{})
		r.emit(DiagH2CEnabled, "H2C enabled; use only in dev or behind a trusted LB", nil)
	}

	timeouts := r.serverTimeouts
	if timeouts == nil {
		timeouts = defaultServerTimeouts()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: timeouts.readHeader,
		ReadTimeout:       timeouts.read,
		WriteTimeout:      timeouts.write,
		IdleTimeout:       timeouts.idle,
	}

	r.serverMu.Lock()
	r.server = srv
	r.serverMu.Unlock()

	return srv.ListenAndServe()
}

// ServeTLS starts the HTTPS server. HTTP/2 is automatically enabled over
// TLS via ALPN. Blocks until the server exits.
func (r *Router) ServeTLS(addr, certFile, keyFile string) error {
	if err := r.Compile(); err != nil {
		return err
	}

	timeouts := r.serverTimeouts
	if timeouts == nil {
		timeouts = defaultServerTimeouts()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: timeouts.readHeader,
		ReadTimeout:       timeouts.read,
		WriteTimeout:      timeouts.write,
		IdleTimeout:       timeouts.idle,
	}

	r.serverMu.Lock()
	r.server = srv
	r.serverMu.Unlock()

	return srv.ListenAndServeTLS(certFile, keyFile)
}

// Shutdown gracefully shuts down the running server without interrupting
// active connections, following the http.Server.Shutdown pattern. Returns
// nil when no server is running.
//
//	go func() {
//	    if err := r.Serve(":8080"); err != nil && err != http.ErrServerClosed {
//	        log.Fatal(err)
//	    }
//	}()
//
//	<-quit
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	if err := r.Shutdown(ctx); err != nil {
//	    log.Printf("server shutdown error: %v", err)
//	}
func (r *Router) Shutdown(ctx context.Context) error {
	r.serverMu.Lock()
	srv := r.server
	r.server = nil
	r.serverMu.Unlock()

	if srv == nil {
		return nil
	}

	return srv.Shutdown(ctx)
}
