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
	"strings"
	"text/tabwriter"
)

// RouteInfo describes one compiled route for introspection.
type RouteInfo struct {
	Verbs       []string
	Pattern     string
	Helper      string
	Target      string
	Constraints []string
}

// Routes returns every compiled route in declaration order. It errors with
// ErrTableNotCompiled before Compile.
func (r *Router) Routes() ([]RouteInfo, error) {
	if !r.frozen.Load() {
		return nil, ErrTableNotCompiled
	}
	if r.compileErr != nil {
		return nil, r.compileErr
	}

	infos := make([]RouteInfo, 0, len(r.table.all))
	for _, cr := range r.table.all {
		info := RouteInfo{
			Verbs:   append([]string(nil), cr.verbs...),
			Pattern: cr.fullPattern,
			Helper:  cr.helperName,
			Target:  cr.target.Describe(),
		}
		for _, c := range cr.constraints {
			info.Constraints = append(info.Constraints, c.describe())
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// RouteExists reports whether some route structurally matches the verb and
// path. Constraints are not evaluated.
func (r *Router) RouteExists(verb, path string) bool {
	if err := r.Compile(); err != nil {
		return false
	}
	discard := func(int, string) {}
	stripped, _ := r.table.stripFormat(verb, path)
	for _, cr := range r.table.byVerb[verb] {
		if cr.pattern.match(stripped, discard) {
			return true
		}
	}
	return false
}

// FprintRoutes writes a human-readable route table, one line per route in
// declaration order, in the shape operators expect from route dumps:
//
//	posts      GET    /posts            posts#index
//	post       GET    /posts/:post_id   posts#show    post_id=\d+
func (r *Router) FprintRoutes(w io.Writer) error {
	infos, err := r.Routes()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			info.Helper,
			strings.Join(info.Verbs, "|"),
			info.Pattern,
			info.Target,
			strings.Join(info.Constraints, " "),
		)
	}
	return tw.Flush()
}
