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

// helperSpec is the declared naming intent for a route's helper. The full
// name is composed at compile time from the scope's helper-prefix chain:
//
//	Helper("show") inside Named("users")       → users_show
//	HelperPrefix("show") inside Named("users") → show_user
//
// The prefix form singularizes the innermost chain element, which is what
// gives member-style routes their natural "verb_resource" names.
type helperSpec struct {
	name   string
	prefix string
	suffix string
	// set distinguishes "no helper requested" from empty composition.
	set bool
}

// Route is one verb-pattern-target tuple declared in a Scope. Builder
// methods refine it until the table is compiled; afterwards any mutation
// panics. Routes are created through Scope declaration methods, never
// directly.
type Route struct {
	scope       *Scope
	verbs       []string
	pattern     string
	target      Target
	constraints []Constraint
	helper      helperSpec
	// mwMark snapshots how many middleware units the owning scope had
	// declared when this route was added. Units declared later in the same
	// scope body do not apply to this route.
	mwMark int
}

// Helper names the route's helper. The final registered name is the scope
// helper-prefix chain joined with name: a route named "show" inside a scope
// named "users" registers "users_show".
func (r *Route) Helper(name string) *Route {
	r.checkMutable()
	r.helper.name = name
	r.helper.set = true
	return r
}

// HelperPrefix names the route's helper with the prefix placed before the
// scope chain, singularizing the innermost chain element: a prefix "show"
// inside a scope named "users" registers "show_user".
func (r *Route) HelperPrefix(prefix string) *Route {
	r.checkMutable()
	r.helper.prefix = prefix
	r.helper.set = true
	return r
}

// HelperSuffix appends a trailing component to the composed helper name.
func (r *Route) HelperSuffix(suffix string) *Route {
	r.checkMutable()
	r.helper.suffix = suffix
	r.helper.set = true
	return r
}

// Constrain adds constraints to the route. They combine with every
// constraint inherited from enclosing scopes; all must hold for the route
// to be selected.
func (r *Route) Constrain(constraints ...Constraint) *Route {
	r.checkMutable()
	r.constraints = append(r.constraints, constraints...)
	return r
}

// Where constrains the captured parameter name to fully match the regular
// expression. Panics on an invalid expression.
func (r *Route) Where(name, expr string) *Route {
	return r.Constrain(Where(name, expr))
}

// Format requires the request path to carry the given format extension.
func (r *Route) Format(ext string) *Route {
	return r.Constrain(Format(ext))
}

// Accept requires the request's Accept header to admit the MIME type.
func (r *Route) Accept(mime string) *Route {
	return r.Constrain(Accept(mime))
}

// ContentType requires body-carrying requests to declare the MIME type.
func (r *Route) ContentType(mime string) *Route {
	return r.Constrain(ContentType(mime))
}

// Verbs returns a copy of the route's HTTP methods.
func (r *Route) Verbs() []string {
	verbs := make([]string, len(r.verbs))
	copy(verbs, r.verbs)
	return verbs
}

// Pattern returns the route's own pattern, without scope prefixes.
func (r *Route) Pattern() string { return r.pattern }

func (r *Route) checkMutable() {
	if r.scope != nil {
		r.scope.router.checkMutable()
	}
}
