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
	"sort"
	"strings"
)

// compiledRoute is one frozen dispatch entry. A route declared for several
// verbs compiles to a single entry shared by every verb bucket.
type compiledRoute struct {
	verbs       []string
	pattern     pattern
	fullPattern string
	constraints []Constraint
	chain       []HandlerFunc
	target      Target
	helperName  string
}

// routeTable is the immutable dispatch structure produced by Compile. Verb
// buckets preserve declaration order; dispatch scans a bucket front to back
// and takes the first entry whose shape and constraints both accept the
// request. The table is never mutated after Compile returns, so concurrent
// dispatch needs no locking.
type routeTable struct {
	byVerb    map[string][]*compiledRoute
	all       []*compiledRoute
	formats   map[string]map[string]bool
	maxParams int
}

func (t *routeTable) add(cr *compiledRoute) {
	t.all = append(t.all, cr)
	for _, verb := range cr.verbs {
		t.byVerb[verb] = append(t.byVerb[verb], cr)
		for _, c := range cr.constraints {
			fc, ok := c.(*formatConstraint)
			if !ok {
				continue
			}
			exts := t.formats[verb]
			if exts == nil {
				exts = make(map[string]bool)
				t.formats[verb] = exts
			}
			exts[fc.ext] = true
		}
	}
	if n := len(cr.pattern.params); n > t.maxParams {
		t.maxParams = n
	}
}

// stripFormat splits a trailing ".ext" off the final path segment when some
// route in the verb's bucket declares that extension through Format. An
// unrecognized extension stays part of the path, so /reports/q3.pdf is a
// literal segment unless something answers to pdf.
func (t *routeTable) stripFormat(verb, path string) (string, string) {
	exts := t.formats[verb]
	if len(exts) == 0 {
		return path, ""
	}
	dot := strings.LastIndexByte(path, '.')
	if dot <= strings.LastIndexByte(path, '/') {
		return path, ""
	}
	ext := strings.ToLower(path[dot+1:])
	if !exts[ext] {
		return path, ""
	}
	return path[:dot], ext
}

// lookup scans the verb bucket in declaration order. It reports the first
// entry that matches both structurally and on constraints, the captured
// parameter values (aliasing scratch), the stripped format extension, and
// whether any entry matched structurally at all. A structural match whose
// constraints reject the request does not stop the scan; later entries
// still get their chance.
func (t *routeTable) lookup(verb, path string, req *http.Request, scratch []string) (*compiledRoute, []string, string, bool) {
	stripped, format := t.stripFormat(verb, path)
	structural := false
	capture := func(i int, v string) { scratch[i] = v }
	for _, cr := range t.byVerb[verb] {
		if !cr.pattern.match(stripped, capture) {
			continue
		}
		structural = true
		values := scratch[:len(cr.pattern.params)]
		st := matchState{req: req, format: format, names: cr.pattern.params, values: values}
		accepted := true
		for _, c := range cr.constraints {
			if !c.matches(&st) {
				accepted = false
				break
			}
		}
		if accepted {
			return cr, values, format, true
		}
	}
	return nil, nil, format, structural
}

// allowedMethods reports the verbs whose buckets hold a structural match for
// path, for the Allow header on 405 responses. Constraints are not
// evaluated here. GET implies HEAD because dispatch serves HEAD from the
// GET bucket when no HEAD route is declared.
func (t *routeTable) allowedMethods(path, skip string) []string {
	var allowed []string
	discard := func(int, string) {}
	for verb, bucket := range t.byVerb {
		if verb == skip {
			continue
		}
		stripped, _ := t.stripFormat(verb, path)
		for _, cr := range bucket {
			if cr.pattern.match(stripped, discard) {
				allowed = append(allowed, verb)
				break
			}
		}
	}
	if containsString(allowed, http.MethodGet) && !containsString(allowed, http.MethodHead) && skip != http.MethodHead {
		allowed = append(allowed, http.MethodHead)
	}
	sort.Strings(allowed)
	return allowed
}
