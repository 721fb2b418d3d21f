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

import "fmt"

// Concern stores body as a named, reusable fragment of declarations. The
// registry is router-wide: a concern declared in any scope is implementable
// from any other. Redeclaring a name is a build error.
//
// The body does not run here. Each Implements call re-executes it against
// the implementing scope, so two implement sites get fully independent
// routes and middleware.
func (s *Scope) Concern(name string, body func(*Scope)) {
	s.router.registerConcern(name, body)
}

// Implements splices the named concerns into this scope, exactly as if
// their declarations were written inline at the call site. Referencing an
// undeclared concern is a build error.
func (s *Scope) Implements(names ...string) {
	s.router.checkMutable()
	for _, name := range names {
		body, ok := s.router.concerns[name]
		if !ok {
			s.router.addBuildError(fmt.Errorf("%w: %q", ErrUnknownConcern, name))
			continue
		}
		body(s)
	}
}

// registerConcern records a concern thunk, rejecting duplicates.
func (r *Router) registerConcern(name string, body func(*Scope)) {
	r.checkMutable()
	if _, exists := r.concerns[name]; exists {
		r.addBuildError(fmt.Errorf("%w: %q", ErrDuplicateConcern, name))
		return
	}
	r.concerns[name] = body
}
