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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"
)

// Context carries one HTTP request through the handler chain. It exposes the
// captured path parameters, response helpers, the matched route's metadata,
// and per-request observability hooks.
//
// ⚠️ THREAD SAFETY: Context is NOT thread-safe. A Context is bound to a
// single request and must only be touched by the goroutine handling it.
//
// ⚠️ MEMORY SAFETY: Contexts are pooled and reused. Do not retain a Context
// beyond the handler's return; copy out any values you need before starting
// goroutines.
//
// Parameter storage is hybrid: the first eight captures live in fixed
// arrays, anything beyond that overflows into the Params map. Param()
// checks the arrays first and falls back to the map, so handlers never see
// the split.
type Context struct {
	// Core request fields - accessed on every request.
	Request  *http.Request
	Response http.ResponseWriter
	handlers []HandlerFunc
	router   *Router

	index      int32 // Current handler index in the chain
	paramCount int32 // Number of parameters in the arrays (0-8)

	paramKeys   [8]string
	paramValues [8]string

	// Params holds overflow parameters for routes capturing more than
	// eight values. Nil in the common case.
	Params map[string]string

	span            trace.Span
	metricsRecorder ContextMetricsRecorder
	tracingRecorder ContextTracingRecorder
	logger          *slog.Logger

	routePattern string // Matched pattern ("/posts/:post_id"), or a sentinel
	routeName    string // Helper name of the matched route, if any
	format       string // Extension stripped from the path ("json"), if any

	// scratch is the capture buffer handed to the dispatch table. It is
	// sized to the table's widest route and reused across requests.
	scratch []string

	aborted bool
	errors  []error
}

// HandlerFunc is the signature shared by route handlers and middleware.
// Middleware calls c.Next() to run the rest of the chain:
//
//	func timing(c *viaduct.Context) {
//	    start := time.Now()
//	    c.Next()
//	    c.Logger().Info("handled", "elapsed", time.Since(start))
//	}
type HandlerFunc func(*Context)

// NewContext creates a detached context for the given request and response.
// Dispatch obtains contexts from a pool; this constructor exists for tests
// and for running handlers outside the normal request flow.
func NewContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{
		Request:  r,
		Response: w,
		index:    -1,
	}
}

// Next executes the remaining handlers in the chain. Middleware calls it to
// continue; not calling it stops the chain after the current handler.
func (c *Context) Next() {
	c.index++
	handlersLen := int32(len(c.handlers))

	if c.router != nil && c.router.checkCancellation {
		for c.index < handlersLen {
			if c.aborted {
				return
			}
			// Skip remaining work for requests the client already gave up on.
			if err := c.Request.Context().Err(); err != nil {
				return
			}
			c.handlers[c.index](c)
			c.index++
		}
	} else {
		for c.index < handlersLen {
			if c.aborted {
				return
			}
			c.handlers[c.index](c)
			c.index++
		}
	}
}

// Abort stops the chain from running any further handlers. Handlers that
// already ran are unaffected.
func (c *Context) Abort() {
	c.aborted = true
}

// IsAborted reports whether Abort was called.
func (c *Context) IsAborted() bool {
	return c.aborted
}

// Param returns the value captured for the named path parameter, or "" if
// the matched route has no such capture.
//
//	r.GET("/users/:id", func(c *viaduct.Context) {
//	    id := c.Param("id")
//	    ...
//	})
func (c *Context) Param(key string) string {
	for i := range c.paramCount {
		if c.paramKeys[i] == key {
			return c.paramValues[i]
		}
	}
	return c.Params[key]
}

// bindParams installs the captured parameters for the matched route.
// Values beyond the fixed arrays overflow into the map.
func (c *Context) bindParams(names, values []string) {
	n := len(names)
	direct := n
	if direct > len(c.paramKeys) {
		direct = len(c.paramKeys)
	}
	for i := 0; i < direct; i++ {
		c.paramKeys[i] = names[i]
		c.paramValues[i] = values[i]
	}
	c.paramCount = int32(direct)
	for i := direct; i < n; i++ {
		if c.Params == nil {
			c.Params = make(map[string]string, n-direct)
		}
		c.Params[names[i]] = values[i]
	}
}

// RoutePattern returns the matched route's full pattern, such as
// "/posts/:post_id", or a sentinel like "_not_found" when dispatch failed.
func (c *Context) RoutePattern() string {
	return c.routePattern
}

// RouteName returns the helper name of the matched route, or "" when the
// route was not named.
func (c *Context) RouteName() string {
	return c.routeName
}

// Format returns the extension stripped from the request path during
// matching ("json" for /posts.json), or "" when no recognized extension was
// present.
func (c *Context) Format() string {
	return c.format
}

// PathFor builds the path for a named route from the current router's
// helper registry. Missing parameters yield ErrMissingRouteParameter.
func (c *Context) PathFor(name string, params Params) (string, error) {
	if c.router == nil {
		return "", ErrTableNotCompiled
	}
	helpers, err := c.router.Helpers()
	if err != nil {
		return "", err
	}
	return helpers.Path(name, params)
}

// URLFor builds the absolute URL for a named route. It uses the router's
// configured origin when present and otherwise derives one from the current
// request.
func (c *Context) URLFor(name string, params Params) (string, error) {
	if c.router == nil {
		return "", ErrTableNotCompiled
	}
	helpers, err := c.router.Helpers()
	if err != nil {
		return "", err
	}
	if helpers.origin != "" {
		return helpers.URL(name, params)
	}
	return helpers.urlWithOrigin(c.requestOrigin(), name, params)
}

// requestOrigin reconstructs scheme://host from the current request.
func (c *Context) requestOrigin() string {
	if c.Request == nil {
		return ""
	}
	return c.BaseURL()
}

// JSON sends a JSON response with the given status code. The body is
// encoded to a buffer first so an encoding failure never leaves a
// half-written response.
func (c *Context) JSON(code int, obj any) error {
	var buf strings.Builder
	buf.Grow(256)
	if err := json.NewEncoder(&buf).Encode(obj); err != nil {
		return fmt.Errorf("JSON encoding failed for type %T: %w", obj, err)
	}

	c.Response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.writeHeaderOnce(code)
	_, writeErr := io.WriteString(c.Response, buf.String())
	return writeErr
}

// YAML sends a YAML response with the given status code. Useful for
// configuration endpoints and operational tooling.
func (c *Context) YAML(code int, obj any) error {
	yamlBytes, err := yaml.Marshal(obj)
	if err != nil {
		return fmt.Errorf("YAML encoding failed for type %T: %w", obj, err)
	}

	c.Response.Header().Set("Content-Type", "application/x-yaml; charset=utf-8")
	c.writeHeaderOnce(code)
	_, writeErr := c.Response.Write(yamlBytes)
	return writeErr
}

// String sends a plain text response. The value is written as-is; use
// Stringf for formatting.
func (c *Context) String(code int, value string) error {
	if c.Response.Header().Get("Content-Type") == "" {
		c.Response.Header().Set("Content-Type", "text/plain")
	}
	c.writeHeaderOnce(code)
	if _, err := io.WriteString(c.Response, value); err != nil {
		return fmt.Errorf("writing string response: %w", err)
	}
	return nil
}

// Stringf sends a formatted plain text response.
func (c *Context) Stringf(code int, format string, values ...any) error {
	if c.Response.Header().Get("Content-Type") == "" {
		c.Response.Header().Set("Content-Type", "text/plain")
	}
	c.writeHeaderOnce(code)
	if _, err := fmt.Fprintf(c.Response, format, values...); err != nil {
		return fmt.Errorf("writing formatted string response: %w", err)
	}
	return nil
}

// HTML sends an HTML response with the given status code.
func (c *Context) HTML(code int, html string) error {
	c.Response.Header().Set("Content-Type", "text/html")
	c.writeHeaderOnce(code)
	if _, err := io.WriteString(c.Response, html); err != nil {
		return fmt.Errorf("writing HTML response: %w", err)
	}
	return nil
}

// Data sends raw bytes with a custom content type. Defaults to
// application/octet-stream when contentType is empty.
func (c *Context) Data(code int, contentType string, data []byte) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Response.Header().Set("Content-Type", contentType)
	c.writeHeaderOnce(code)
	if _, err := c.Response.Write(data); err != nil {
		return fmt.Errorf("writing data response: %w", err)
	}
	return nil
}

// Status sets the response status code. Call before writing any body.
func (c *Context) Status(code int) {
	c.writeHeaderOnce(code)
}

// writeHeaderOnce writes the status code unless headers already went out,
// avoiding "superfluous response.WriteHeader call" noise from net/http.
func (c *Context) writeHeaderOnce(code int) {
	if rw, ok := c.Response.(*responseWriter); ok {
		if !rw.Written() {
			c.Response.WriteHeader(code)
		}
		return
	}
	c.Response.WriteHeader(code)
}

// Header sets a response header. Values carrying CR or LF are sanitized to
// block header injection, and the event is reported through diagnostics.
func (c *Context) Header(key, value string) {
	if strings.ContainsAny(value, "\r\n") {
		if c.router != nil {
			c.router.emit(DiagHeaderInjection, "header injection attempt blocked and sanitized", map[string]any{
				"key":  key,
				"path": c.Request.URL.Path,
			})
		}
		value = strings.ReplaceAll(value, "\r", "")
		value = strings.ReplaceAll(value, "\n", "")
	}
	c.Response.Header().Set(key, value)
}

// NoContent sends a 204 No Content response.
func (c *Context) NoContent() {
	c.Status(http.StatusNoContent)
}

// Redirect sends a redirect with the given status code and location.
func (c *Context) Redirect(code int, location string) {
	c.Header("Location", location)
	c.Status(code)
}

// ServeFile serves a file from the filesystem, with content type, range
// request, and caching handling from net/http.
func (c *Context) ServeFile(filepath string) {
	http.ServeFile(c.Response, c.Request, filepath)
}

// Query returns the URL query parameter by key, or "" when absent.
func (c *Context) Query(key string) string {
	if c.Request == nil {
		return ""
	}
	return c.Request.URL.Query().Get(key)
}

// QueryDefault returns the query parameter value or def when absent.
func (c *Context) QueryDefault(key, def string) string {
	if value := c.Query(key); value != "" {
		return value
	}
	return def
}

// FormValue returns the named form parameter from the request body or
// query, or "" when absent.
func (c *Context) FormValue(key string) string {
	return c.Request.FormValue(key)
}

// FormValueDefault returns the form parameter value or def when absent.
func (c *Context) FormValueDefault(key, def string) string {
	if value := c.FormValue(key); value != "" {
		return value
	}
	return def
}

// SetCookie sets a cookie on the response.
func (c *Context) SetCookie(name, value string, maxAge int, path, domain string, secure, httpOnly bool) {
	http.SetCookie(c.Response, &http.Cookie{
		Name:     name,
		Value:    url.QueryEscape(value),
		MaxAge:   maxAge,
		Path:     path,
		Domain:   domain,
		Secure:   secure,
		HttpOnly: httpOnly,
	})
}

// GetCookie returns the value of the named cookie, URL-unescaped.
func (c *Context) GetCookie(name string) (string, error) {
	cookie, err := c.Request.Cookie(name)
	if err != nil {
		return "", err
	}
	return url.QueryUnescape(cookie.Value)
}

// Error collects an error without writing a response. Multiple errors can
// accumulate during a request and be inspected later in the chain with
// Errors or errors.Join.
func (c *Context) Error(err error) {
	if err == nil {
		return
	}
	if c.errors == nil {
		c.errors = make([]error, 0, 4)
	}
	c.errors = append(c.errors, err)
}

// Errors returns the errors collected so far, or nil.
func (c *Context) Errors() []error {
	return c.errors
}

// HasErrors reports whether any errors were collected.
func (c *Context) HasErrors() bool {
	return len(c.errors) > 0
}

// WriteErrorResponse writes a plain text HTTP error response, skipping the
// status line when headers already went out.
func (c *Context) WriteErrorResponse(status int, message string) {
	if rw, ok := c.Response.(*responseWriter); !ok || !rw.Written() {
		c.Response.WriteHeader(status)
	}
	if message != "" {
		c.Response.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(c.Response, message+"\n")
	}
}

// NotFound writes a 404 Not Found response.
func (c *Context) NotFound() {
	c.WriteErrorResponse(http.StatusNotFound, "Not Found")
}

// MethodNotAllowed writes a 405 Method Not Allowed response with the
// required Allow header per RFC 7231.
func (c *Context) MethodNotAllowed(allowed []string) {
	sort.Strings(allowed)
	c.Header("Allow", strings.Join(allowed, ", "))
	c.WriteErrorResponse(http.StatusMethodNotAllowed, "Method Not Allowed")
}

// internalServerError writes a 500 response unless the handler already
// produced output.
func (c *Context) internalServerError() {
	c.WriteErrorResponse(http.StatusInternalServerError, "Internal Server Error")
}

// Logger returns the request-scoped logger. It is populated by the
// observability recorder during dispatch and includes request metadata such
// as method, path, and trace ID. Always non-nil.
func (c *Context) Logger() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return noopLogger
}

// RecordMetric records a custom histogram value through the configured
// metrics recorder. No-op when metrics are not configured.
func (c *Context) RecordMetric(name string, value float64, attributes ...attribute.KeyValue) {
	if c.metricsRecorder != nil {
		c.metricsRecorder.RecordMetric(c.RequestContext(), name, value, attributes...)
	}
}

// IncrementCounter increments a custom counter through the configured
// metrics recorder. No-op when metrics are not configured.
func (c *Context) IncrementCounter(name string, attributes ...attribute.KeyValue) {
	if c.metricsRecorder != nil {
		c.metricsRecorder.IncrementCounter(c.RequestContext(), name, attributes...)
	}
}

// SetGauge sets a custom gauge through the configured metrics recorder.
// No-op when metrics are not configured.
func (c *Context) SetGauge(name string, value float64, attributes ...attribute.KeyValue) {
	if c.metricsRecorder != nil {
		c.metricsRecorder.SetGauge(c.RequestContext(), name, value, attributes...)
	}
}

// TraceID returns the current trace ID, or "" when tracing is not active.
func (c *Context) TraceID() string {
	if c.tracingRecorder != nil {
		return c.tracingRecorder.TraceID(c.RequestContext())
	}
	return ""
}

// SpanID returns the current span ID, or "" when tracing is not active.
func (c *Context) SpanID() string {
	if c.tracingRecorder != nil {
		return c.tracingRecorder.SpanID(c.RequestContext())
	}
	return ""
}

// SetSpanAttribute adds an attribute to the active span. No-op when tracing
// is not active.
func (c *Context) SetSpanAttribute(key string, value any) {
	if c.tracingRecorder != nil {
		c.tracingRecorder.SetSpanAttribute(c.RequestContext(), key, value)
	}
}

// AddSpanEvent adds an event to the active span. No-op when tracing is not
// active.
func (c *Context) AddSpanEvent(name string, attrs ...attribute.KeyValue) {
	if c.tracingRecorder != nil {
		c.tracingRecorder.AddSpanEvent(c.RequestContext(), name, attrs...)
	}
}

// Span returns the OpenTelemetry span for this request, or nil when tracing
// is not enabled.
func (c *Context) Span() trace.Span {
	return c.span
}

// RequestContext returns the request's context.Context, convenient for
// passing to database queries and downstream clients.
func (c *Context) RequestContext() context.Context {
	if c.Request != nil {
		return c.Request.Context()
	}
	return context.Background()
}

// TraceContext returns the trace-propagating context when tracing is
// active, and otherwise the request context so cancellation still works.
func (c *Context) TraceContext() context.Context {
	if c.tracingRecorder != nil {
		return c.tracingRecorder.TraceContext(c.RequestContext())
	}
	return c.RequestContext()
}

// reset returns the context to its initial state for pooling.
func (c *Context) reset() {
	c.Request = nil
	c.Response = nil
	c.handlers = nil
	c.router = nil
	c.index = -1

	c.span = nil
	c.metricsRecorder = nil
	c.tracingRecorder = nil
	c.logger = nil
	c.routePattern = ""
	c.routeName = ""
	c.format = ""

	c.aborted = false
	c.errors = nil

	if c.paramCount > 0 {
		clearCount := min(c.paramCount, 8)
		for i := range clearCount {
			c.paramKeys[i] = ""
			c.paramValues[i] = ""
		}
		c.paramCount = 0
	}
	if c.Params != nil {
		clear(c.Params)
	}
	// scratch keeps its capacity; values are overwritten on the next match.
}
