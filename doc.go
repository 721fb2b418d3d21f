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

// Package viaduct builds declarative HTTP route tables and dispatches
// requests against them.
//
// Routes are declared in a tree of scopes, compiled once into an immutable
// dispatch table, and then served lock-free. Declaration order is dispatch
// order: the first declared route that accepts a request wins, and a route
// whose constraints reject a request does not stop later routes from
// matching.
//
// # Key Features
//
//   - Scope tree with position-scoped middleware: middleware applies only
//     to routes declared at or below the point of declaration
//   - Resource expansion: Resources("posts") declares the canonical
//     index/new/create/show/edit/update/delete table in one call
//   - Concerns: declare a route bundle once, implement it in many scopes
//   - Constraints on parameters, format, Accept, Content-Type, host, and
//     subdomain, plus arbitrary predicates
//   - Named route helpers that build paths and URLs back from parameters
//   - Controller targets ("posts#show") resolved at dispatch time
//   - Build/freeze lifecycle: declaration after Compile panics, dispatch
//     after Compile needs no locks
//   - OpenTelemetry tracing and metrics integration
//
// # Constructor Pattern
//
//   - New() returns (*Router, error): configuration is validated at
//     construction, declaration errors are collected and reported by
//     Compile.
//   - All configuration options use the "With" prefix (WithOrigin,
//     WithH2C, WithServerTimeouts).
//
// # Quick Start
//
//	package main
//
//	import (
//	    "net/http"
//
//	    "github.com/viaduct-http/viaduct"
//	)
//
//	func main() {
//	    r := viaduct.MustNew(viaduct.WithOrigin("https://example.com"))
//
//	    r.Draw(func(root *viaduct.Scope) {
//	        root.Root(func(c *viaduct.Context) {
//	            c.String(http.StatusOK, "home")
//	        })
//	        root.Resources("posts", viaduct.Nested(func(posts *viaduct.Scope) {
//	            posts.Resources("comments", viaduct.Only("index", "create"))
//	        }))
//	    })
//
//	    if err := r.Compile(); err != nil {
//	        panic(err)
//	    }
//	    http.ListenAndServe(":8080", r)
//	}
//
// # Declaration Order Is Dispatch Order
//
// The compiled table preserves the pre-order walk of the scope tree.
// Dispatch scans the request verb's routes front to back and takes the
// first structural match whose constraints all accept the request. Declare
// specific routes before catch-alls.
//
// # Middleware Position
//
// Use attaches middleware at a position in the declaration sequence.
// Routes declared before the Use call never run that middleware:
//
//	r.Draw(func(root *viaduct.Scope) {
//	    root.GET("/before", handler)  // no auth
//	    root.Use(auth)
//	    root.GET("/after", handler)   // auth applies
//	})
//
// # Route Helpers
//
// Named routes register helpers that rebuild paths from parameters:
//
//	path, err := r.PathFor("post", viaduct.Params{"post_id": "7"})
//	// "/posts/7"
//
// Unused parameters become the query string; missing required parameters
// are an error.
package viaduct
