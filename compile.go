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
	"errors"
	"fmt"
	"strings"
)

// compileTable flattens the scope tree into the frozen dispatch table and
// helper registry. Walk order is pre-order over the interleaved declaration
// entries, which fixes the scan order for dispatch: first declared, first
// tried.
func (r *Router) compileTable() (*routeTable, *Helpers, error) {
	helpers := newHelpers(r.origin)
	table := &routeTable{
		byVerb:  make(map[string][]*compiledRoute),
		formats: make(map[string]map[string]bool),
	}
	errs := append([]error(nil), r.buildErrs...)

	var visit func(s *Scope)
	visit = func(s *Scope) {
		for _, entry := range s.entries {
			if entry.child != nil {
				visit(entry.child)
				continue
			}
			if err := r.compileRoute(table, helpers, s, entry.route); err != nil {
				errs = append(errs, err)
			}
		}
	}
	visit(r.root)

	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}
	return table, helpers, nil
}

// compileRoute turns one declared route into a frozen dispatch entry and
// registers its helper.
func (r *Router) compileRoute(table *routeTable, helpers *Helpers, s *Scope, route *Route) error {
	if route.target == nil {
		// Normalization failed at declaration; the error is already
		// collected.
		return nil
	}

	full := joinPatterns(s.fullPrefix(), route.pattern)
	pat, err := parsePattern(full)
	if err != nil {
		return fmt.Errorf("route %s %s: %w", strings.Join(route.verbs, "|"), full, err)
	}

	target := resolveModule(route.target, s.modulePath())

	constraints := s.effectiveConstraints()
	constraints = append(constraints, route.constraints...)

	chain := s.effectiveMiddleware(route.mwMark)
	chain = append(chain, target.terminal(r))

	helperName := composeHelperName(s.helperChain(), route.helper)
	if helperName != "" {
		if err := helpers.register(helperName, pat, route.verbs); err != nil {
			return err
		}
	}

	cr := &compiledRoute{
		verbs:       route.verbs,
		pattern:     pat,
		fullPattern: pat.raw,
		constraints: constraints,
		chain:       chain,
		target:      target,
		helperName:  helperName,
	}
	table.add(cr)
	return nil
}

// resolveModule prefixes controller tokens with the scope's controller
// namespace. A leading slash escapes the namespace ("/sessions#create"
// resolves SessionsController even inside an admin namespace).
func resolveModule(target Target, module string) Target {
	ct, ok := target.(controllerTarget)
	if !ok {
		return target
	}
	if trimmed, absolute := strings.CutPrefix(ct.controller, "/"); absolute {
		return controllerTarget{controller: trimmed, action: ct.action}
	}
	if module == "" {
		return target
	}
	return controllerTarget{controller: module + "/" + ct.controller, action: ct.action}
}

// composeHelperName builds the registered helper name from the scope
// helper-prefix chain and the route's naming spec.
//
// The plain-name form appends: chain [users] + name "show" → users_show.
// The prefix form leads and singularizes the innermost chain element:
// prefix "show" + chain [users] → show_user, which is what member-style
// routes read like. A suffix always trails.
func composeHelperName(chain []string, spec helperSpec) string {
	if !spec.set {
		return ""
	}
	parts := make([]string, 0, len(chain)+3)
	if spec.prefix != "" {
		parts = append(parts, spec.prefix)
		if spec.name == "" && len(chain) > 0 {
			chain = append(chain[:len(chain)-1:len(chain)-1], pluralizer.Singular(chain[len(chain)-1]))
		}
	}
	parts = append(parts, chain...)
	if spec.name != "" {
		parts = append(parts, spec.name)
	}
	if spec.suffix != "" {
		parts = append(parts, spec.suffix)
	}
	return strings.Join(parts, "_")
}
