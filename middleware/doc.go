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

/*
Package middleware holds the context keys and test helpers shared by the
viaduct middleware packages. Each middleware lives in its own sub-package
for cleaner imports.

# Available Middlewares

  - methodoverride: rewrites the request method from a header or form
    parameter before route matching
  - requestid: request ID generation and propagation
  - recovery: panic recovery with span status and stack capture
  - accesslog: structured access logging with sampling and filtering

# Usage

methodoverride wraps the router itself, because the method must change
before the route table is consulted. The others run in the handler chain:

	import (
	    "log/slog"
	    "net/http"
	    "os"

	    "github.com/viaduct-http/viaduct"
	    "github.com/viaduct-http/viaduct/middleware/accesslog"
	    "github.com/viaduct-http/viaduct/middleware/methodoverride"
	    "github.com/viaduct-http/viaduct/middleware/recovery"
	    "github.com/viaduct-http/viaduct/middleware/requestid"
	)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	r := viaduct.MustNew()
	r.Use(recovery.New())
	r.Use(requestid.New())
	r.Use(accesslog.New(accesslog.WithLogger(logger)))
	// routes ...
	http.ListenAndServe(":8080", methodoverride.New()(r))

# Recommended Order

 1. recovery — catch panics from everything below
 2. requestid — generate the ID early so logs can carry it
 3. accesslog — log every request, including failed ones
 4. application handlers

# Context Values

Middlewares publish values through the request context. Use the getter in
each package rather than the raw key:

	id := requestid.Get(c)
	method := methodoverride.GetOriginalMethod(c.Request)

The keys themselves are exported here (RequestIDKey, OriginalMethodKey)
for advanced integrations.
*/
package middleware
