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
	"net/http"
	"strings"
)

// standardVerbs is the verb set a catch-all Match declaration expands to.
var standardVerbs = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// scopeEntry preserves the interleaved declaration order of routes and
// child scopes, which the compiler walks pre-order.
type scopeEntry struct {
	route *Route
	child *Scope
}

// Scope is a node of the route tree: a path prefix, position-scoped
// middleware, inherited constraints, a helper-name prefix, and an ordered
// list of routes and child scopes. Scopes are mutated only during the build
// phase, inside Draw; once the router compiles its table they are frozen.
type Scope struct {
	router      *Router
	parent      *Scope
	prefix      string
	helperName  string
	module      string
	constraints []Constraint
	middleware  []HandlerFunc
	entries     []scopeEntry
	// parentMark snapshots how many middleware units the parent had
	// declared when this scope was opened. Units the parent declares later
	// never apply here.
	parentMark int
}

// GET declares a route for GET requests.
func (s *Scope) GET(pattern string, target any) *Route {
	return s.handle([]string{http.MethodGet}, pattern, target)
}

// POST declares a route for POST requests.
func (s *Scope) POST(pattern string, target any) *Route {
	return s.handle([]string{http.MethodPost}, pattern, target)
}

// PUT declares a route for PUT requests.
func (s *Scope) PUT(pattern string, target any) *Route {
	return s.handle([]string{http.MethodPut}, pattern, target)
}

// PATCH declares a route for PATCH requests.
func (s *Scope) PATCH(pattern string, target any) *Route {
	return s.handle([]string{http.MethodPatch}, pattern, target)
}

// DELETE declares a route for DELETE requests.
func (s *Scope) DELETE(pattern string, target any) *Route {
	return s.handle([]string{http.MethodDelete}, pattern, target)
}

// HEAD declares a route for HEAD requests. Requests for verbs without an
// explicit HEAD route fall back to the GET table; declare one to override.
func (s *Scope) HEAD(pattern string, target any) *Route {
	return s.handle([]string{http.MethodHead}, pattern, target)
}

// OPTIONS declares a route for OPTIONS requests.
func (s *Scope) OPTIONS(pattern string, target any) *Route {
	return s.handle([]string{http.MethodOptions}, pattern, target)
}

// Match declares one route for the given verbs, or for every standard verb
// when none are given (a catch-all).
func (s *Scope) Match(pattern string, target any, verbs ...string) *Route {
	if len(verbs) == 0 {
		verbs = standardVerbs
	}
	normalized := make([]string, len(verbs))
	for i, v := range verbs {
		normalized[i] = strings.ToUpper(strings.TrimSpace(v))
	}
	return s.handle(normalized, pattern, target)
}

// Root declares the scope's root route: GET on the scope prefix itself,
// with helper "root" (composing with scope helper prefixes, so a namespace
// "admin" registers "admin_root").
func (s *Scope) Root(target any) *Route {
	return s.GET("/", target).Helper("root")
}

// Use appends middleware to this scope. A unit applies only to routes
// declared at or after this call — in this scope's body or in scopes opened
// later — never to siblings declared above it.
func (s *Scope) Use(units ...HandlerFunc) {
	s.router.checkMutable()
	s.middleware = append(s.middleware, units...)
}

// Scope opens a child scope under a path prefix and runs body against it.
// The child inherits this scope's constraints and the middleware declared
// so far.
func (s *Scope) Scope(prefix string, body func(*Scope)) {
	child := s.newChild(prefix, "", "")
	if body != nil {
		body(child)
	}
}

// Namespace opens a child scope under "/name" that also prefixes helper
// names and controller tokens: inside Namespace("admin"), a route to
// "posts#index" resolves AdminPostsController and a helper "posts" becomes
// "admin_posts".
func (s *Scope) Namespace(name string, body func(*Scope)) {
	child := s.newChild("/"+name, name, name)
	if body != nil {
		body(child)
	}
}

// Named opens a child scope that only prefixes helper names, without
// touching paths.
func (s *Scope) Named(prefix string, body func(*Scope)) {
	child := s.newChild("", prefix, "")
	if body != nil {
		body(child)
	}
}

// Constrained opens a child scope that adds constraints without a path
// prefix. It is the host/subdomain/custom wrapper block:
//
//	s.Constrained(func(s *viaduct.Scope) {
//	    s.GET("/dashboard", "dashboards#show")
//	}, viaduct.Subdomain("admin"))
func (s *Scope) Constrained(body func(*Scope), constraints ...Constraint) {
	child := s.newChild("", "", "")
	child.constraints = append(child.constraints, constraints...)
	if body != nil {
		body(child)
	}
}

// Mount delegates every request under prefix to a foreign http.Handler,
// stripping the mount point from the request path the way a standalone
// server would present it.
func (s *Scope) Mount(prefix string, h http.Handler) *Route {
	stripped := http.StripPrefix(joinPatterns(s.fullPrefix(), prefix), h)
	target := httpTarget{h: stripped, desc: "mount"}
	return s.handle(standardVerbs, joinPatterns(prefix, "/*path"), target)
}

// Static serves files from dir under prefix. Directory listings follow
// http.FileServer behavior.
func (s *Scope) Static(prefix, dir string) *Route {
	stripped := http.StripPrefix(joinPatterns(s.fullPrefix(), prefix), http.FileServer(http.Dir(dir)))
	target := httpTarget{h: stripped, desc: "static(" + dir + ")"}
	return s.handle([]string{http.MethodGet, http.MethodHead}, joinPatterns(prefix, "/*filepath"), target)
}

// handle creates a route at the current declaration position. Target
// normalization errors are collected and surface from Compile; the
// returned route is still chainable so declarations stay terse.
func (s *Scope) handle(verbs []string, pattern string, target any) *Route {
	s.router.checkMutable()
	tgt, err := normalizeTarget(target)
	if err != nil {
		s.router.addBuildError(err)
	}
	route := &Route{
		scope:   s,
		verbs:   verbs,
		pattern: pattern,
		target:  tgt,
		mwMark:  len(s.middleware),
	}
	s.entries = append(s.entries, scopeEntry{route: route})
	return route
}

// newChild appends a child scope at the current declaration position.
func (s *Scope) newChild(prefix, helperName, module string) *Scope {
	s.router.checkMutable()
	child := &Scope{
		router:     s.router,
		parent:     s,
		prefix:     prefix,
		helperName: helperName,
		module:     module,
		parentMark: len(s.middleware),
	}
	s.entries = append(s.entries, scopeEntry{child: child})
	return child
}

// fullPrefix composes the path prefixes from the root down to this scope.
func (s *Scope) fullPrefix() string {
	if s.parent == nil {
		return s.prefix
	}
	return joinPatterns(s.parent.fullPrefix(), s.prefix)
}

// helperChain returns the helper-prefix pieces from the root down to this
// scope, skipping empty ones.
func (s *Scope) helperChain() []string {
	var chain []string
	if s.parent != nil {
		chain = s.parent.helperChain()
	}
	if s.helperName != "" {
		chain = append(chain, s.helperName)
	}
	return chain
}

// modulePath returns the controller namespace from the root down to this
// scope, slash-joined ("admin/billing").
func (s *Scope) modulePath() string {
	var parent string
	if s.parent != nil {
		parent = s.parent.modulePath()
	}
	if s.module == "" {
		return parent
	}
	if parent == "" {
		return s.module
	}
	return parent + "/" + s.module
}

// effectiveConstraints composes inherited and own constraints, outermost
// first.
func (s *Scope) effectiveConstraints() []Constraint {
	var constraints []Constraint
	if s.parent != nil {
		constraints = s.parent.effectiveConstraints()
	}
	return append(constraints, s.constraints...)
}

// effectiveMiddleware composes the chain visible at a position mark inside
// this scope: the parent's chain up to this scope's creation point, then
// this scope's own units up to the mark.
func (s *Scope) effectiveMiddleware(mark int) []HandlerFunc {
	var chain []HandlerFunc
	if s.parent != nil {
		chain = s.parent.effectiveMiddleware(s.parentMark)
	}
	if mark > len(s.middleware) {
		mark = len(s.middleware)
	}
	return append(chain, s.middleware[:mark]...)
}

