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
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

// noopLogger is a singleton no-op logger used when no logging is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoopLogger returns the singleton no-op logger. Implementations of
// ObservabilityRecorder use it when logging is disabled.
func NoopLogger() *slog.Logger {
	return noopLogger
}

// Option defines functional options for router configuration.
type Option func(*Router)

// Router builds a route table from declarations and dispatches requests
// against it.
//
// A Router has two phases. During the build phase, routes, scopes,
// resources, and concerns are declared through Draw and the scope methods;
// this phase is single-goroutine and not synchronized. Compile flattens the
// declarations into an immutable dispatch table and freezes the router:
// any later declaration panics with ErrTableFrozen. After freezing,
// dispatch is lock-free and safe for any number of concurrent goroutines.
//
// ServeHTTP compiles automatically on first request, so explicit Compile
// calls are only needed to surface declaration errors at startup:
//
//	r := viaduct.MustNew()
//	r.Draw(func(root *viaduct.Scope) {
//	    root.Resources("posts")
//	})
//	if err := r.Compile(); err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", r)
type Router struct {
	root *Scope

	// Freeze state. Declarations panic once frozen is set; the table and
	// helpers are written exactly once under compileOnce.
	frozen      atomic.Bool
	compileOnce sync.Once
	compileErr  error
	table       *routeTable
	helpers     *Helpers

	// Build-phase registries.
	buildErrs   []error
	controllers map[string]ControllerFactory
	concerns    map[string]func(*Scope)

	// Configuration.
	origin            string
	logger            *slog.Logger
	observability     ObservabilityRecorder
	diagnostics       DiagnosticHandler
	checkCancellation bool
	enableH2C         bool
	serverTimeouts    *serverTimeouts
	remoteIP          *remoteIPConfig

	// Custom 404 handler.
	noRouteHandler HandlerFunc
	noRouteMutex   sync.RWMutex

	// Running server, for Shutdown.
	server   *http.Server
	serverMu sync.Mutex
}

// serverTimeouts holds HTTP server timeout configuration.
type serverTimeouts struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

// New creates a router with optional configuration. The returned router is
// in the build phase; declare routes through Draw or the delegating verb
// methods, then Compile (or let the first request do it).
//
// Returns an error if the configuration is invalid. For a version that
// panics instead, use MustNew.
func New(opts ...Option) (*Router, error) {
	r := &Router{
		logger:            noopLogger,
		checkCancellation: true,
		controllers:       make(map[string]ControllerFactory),
		concerns:          make(map[string]func(*Scope)),
	}
	r.root = &Scope{router: r}

	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("router configuration validation failed: %w", err)
	}

	return r, nil
}

// MustNew creates a router and panics if the configuration is invalid.
// Convenient when configuration errors should fail the process at startup.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("viaduct.MustNew: %v", err))
	}
	return r
}

// validate checks the router configuration for common errors. Routes are
// validated at compile time, not here, because declarations happen after
// New returns.
func (r *Router) validate() error {
	if r.origin != "" {
		u, err := url.Parse(r.origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidOrigin, r.origin)
		}
	}
	if st := r.serverTimeouts; st != nil {
		if st.readHeader <= 0 || st.read <= 0 || st.write <= 0 || st.idle <= 0 {
			return ErrServerTimeoutInvalid
		}
	}
	return nil
}

// Draw declares routes on the root scope. It may be called multiple times
// before Compile; all declarations accumulate in order.
//
//	r.Draw(func(root *viaduct.Scope) {
//	    root.Root("pages#home")
//	    root.Resources("posts", viaduct.Nested(func(posts *viaduct.Scope) {
//	        posts.Resources("comments", viaduct.Only("index", "create"))
//	    }))
//	})
func (r *Router) Draw(body func(*Scope)) *Router {
	r.checkMutable()
	body(r.root)
	return r
}

// Compile flattens the declarations into the dispatch table and freezes the
// router. All declaration errors collected during the build phase are
// joined into the returned error. Compile is idempotent; later calls
// return the first outcome.
func (r *Router) Compile() error {
	r.compileOnce.Do(func() {
		r.frozen.Store(true)
		table, helpers, err := r.compileTable()
		if err != nil {
			r.compileErr = err
			return
		}
		r.table = table
		r.helpers = helpers
		r.logger.Debug("route table compiled",
			"routes", len(table.all),
			"helpers", len(helpers.entries),
		)
		r.emit(DiagTableCompiled, "route table compiled", map[string]any{
			"routes": len(table.all),
		})
		if table.maxParams > 8 {
			r.emit(DiagHighParamCount, "routes capture many parameters", map[string]any{
				"max_params": table.maxParams,
			})
		}
	})
	return r.compileErr
}

// MustCompile compiles the route table and panics on declaration errors.
func (r *Router) MustCompile() *Router {
	if err := r.Compile(); err != nil {
		panic(fmt.Sprintf("viaduct.MustCompile: %v", err))
	}
	return r
}

// checkMutable panics when the router is frozen. Declaring routes after
// Compile is a programming error, not a runtime condition.
func (r *Router) checkMutable() {
	if r.frozen.Load() {
		panic(ErrTableFrozen)
	}
}

// addBuildError collects a declaration error to be reported by Compile.
// The build phase is single-goroutine, so no locking is needed.
func (r *Router) addBuildError(err error) {
	r.buildErrs = append(r.buildErrs, err)
}

// RegisterController binds a controller token to a factory. The token may
// be the declaration form ("posts", "admin/posts") or the resolved type
// name ("PostsController"); both normalize to the same registration.
//
// Controllers must be registered before Compile. Dispatch resolves them
// lazily, so a route may reference a controller registered after the route
// was declared.
//
//	r.RegisterController("posts", func(c *viaduct.Context) viaduct.Controller {
//	    return &PostsController{ctx: c}
//	})
func (r *Router) RegisterController(token string, factory ControllerFactory) *Router {
	r.checkMutable()
	r.controllers[ControllerName(token)] = factory
	return r
}

// Use appends middleware to the root scope. Position matters: routes
// declared before this call do not run the new middleware.
func (r *Router) Use(units ...HandlerFunc) *Router {
	r.root.Use(units...)
	return r
}

// SetObservabilityRecorder sets the unified observability recorder for
// metrics, tracing, and access logging. Pass nil to disable.
func (r *Router) SetObservabilityRecorder(recorder ObservabilityRecorder) {
	r.observability = recorder
}

// emit sends a diagnostic event if a handler is configured.
func (r *Router) emit(kind DiagnosticKind, message string, fields map[string]any) {
	if r.diagnostics != nil {
		r.diagnostics.OnDiagnostic(DiagnosticEvent{
			Kind:    kind,
			Message: message,
			Fields:  fields,
		})
	}
}

// NoRoute sets a custom handler for requests that match no route. Setting
// nil restores the default plain 404.
//
//	r.NoRoute(func(c *viaduct.Context) {
//	    c.JSON(http.StatusNotFound, map[string]string{"error": "no such page"})
//	})
func (r *Router) NoRoute(handler HandlerFunc) {
	r.noRouteMutex.Lock()
	defer r.noRouteMutex.Unlock()
	r.noRouteHandler = handler
}

func (r *Router) noRoute() HandlerFunc {
	r.noRouteMutex.RLock()
	defer r.noRouteMutex.RUnlock()
	return r.noRouteHandler
}

// Helpers returns the frozen helper registry. It errors with
// ErrTableNotCompiled before Compile, and with the compile error when
// compilation failed.
func (r *Router) Helpers() (*Helpers, error) {
	if !r.frozen.Load() {
		return nil, ErrTableNotCompiled
	}
	if r.compileErr != nil {
		return nil, r.compileErr
	}
	return r.helpers, nil
}

// PathFor builds the path for a named route. See Helpers.Path.
func (r *Router) PathFor(name string, params Params) (string, error) {
	helpers, err := r.Helpers()
	if err != nil {
		return "", err
	}
	return helpers.Path(name, params)
}

// URLFor builds the absolute URL for a named route using the configured
// origin. See Helpers.URL.
func (r *Router) URLFor(name string, params Params) (string, error) {
	helpers, err := r.Helpers()
	if err != nil {
		return "", err
	}
	return helpers.URL(name, params)
}

// The verb and grouping methods below delegate to the root scope, so short
// route tables read without a Draw block:
//
//	r := viaduct.MustNew()
//	r.GET("/health", func(c *viaduct.Context) { c.NoContent() })

// GET declares a GET route on the root scope.
func (r *Router) GET(pattern string, target any) *Route { return r.root.GET(pattern, target) }

// POST declares a POST route on the root scope.
func (r *Router) POST(pattern string, target any) *Route { return r.root.POST(pattern, target) }

// PUT declares a PUT route on the root scope.
func (r *Router) PUT(pattern string, target any) *Route { return r.root.PUT(pattern, target) }

// PATCH declares a PATCH route on the root scope.
func (r *Router) PATCH(pattern string, target any) *Route { return r.root.PATCH(pattern, target) }

// DELETE declares a DELETE route on the root scope.
func (r *Router) DELETE(pattern string, target any) *Route { return r.root.DELETE(pattern, target) }

// HEAD declares a HEAD route on the root scope.
func (r *Router) HEAD(pattern string, target any) *Route { return r.root.HEAD(pattern, target) }

// OPTIONS declares an OPTIONS route on the root scope.
func (r *Router) OPTIONS(pattern string, target any) *Route { return r.root.OPTIONS(pattern, target) }

// Match declares a route for the given verbs on the root scope.
func (r *Router) Match(pattern string, target any, verbs ...string) *Route {
	return r.root.Match(pattern, target, verbs...)
}

// Root declares the "/" route on the root scope with the "root" helper.
func (r *Router) Root(target any) *Route { return r.root.Root(target) }

// Resources declares a plural resource on the root scope.
func (r *Router) Resources(name string, opts ...ResourceOption) { r.root.Resources(name, opts...) }

// Resource declares a singular resource on the root scope.
func (r *Router) Resource(name string, opts ...ResourceOption) { r.root.Resource(name, opts...) }

// Scope opens a path-only child scope on the root scope.
func (r *Router) Scope(prefix string, body func(*Scope)) { r.root.Scope(prefix, body) }

// Namespace opens a namespace child scope on the root scope.
func (r *Router) Namespace(name string, body func(*Scope)) { r.root.Namespace(name, body) }

// Named opens a child scope contributing to helper names on the root scope.
func (r *Router) Named(prefix string, body func(*Scope)) { r.root.Named(prefix, body) }

// Constrained opens a constraint-only child scope on the root scope.
func (r *Router) Constrained(body func(*Scope), constraints ...Constraint) {
	r.root.Constrained(body, constraints...)
}

// Concern declares a named concern from the root scope.
func (r *Router) Concern(name string, body func(*Scope)) { r.root.Concern(name, body) }

// Implements implements the named concerns on the root scope.
func (r *Router) Implements(names ...string) { r.root.Implements(names...) }

// Mount forwards a path subtree to a standard http.Handler from the root
// scope.
func (r *Router) Mount(prefix string, h http.Handler) *Route { return r.root.Mount(prefix, h) }

// Static serves files from dir under prefix on the root scope.
func (r *Router) Static(prefix, dir string) *Route { return r.root.Static(prefix, dir) }
