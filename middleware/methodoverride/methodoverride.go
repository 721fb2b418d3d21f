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

// Package methodoverride rewrites the HTTP method of incoming requests
// from an override header or form parameter, letting HTML forms and
// limited clients express PUT, PATCH, and DELETE through POST.
//
// Unlike chain middleware, the override must take effect before the route
// table is consulted: a form POST to /posts/1 with _method=DELETE has to
// dispatch against the DELETE routes, not the POST routes. New therefore
// returns a wrapper for the router rather than a handler for its chain:
//
//	r := viaduct.MustNew()
//	r.DELETE("/posts/:id", destroyPost)
//	http.ListenAndServe(":8080", methodoverride.New()(r))
package methodoverride

import (
	"context"
	"mime"
	"net/http"
	"strings"

	"github.com/viaduct-http/viaduct/middleware"
)

// New returns a wrapper that applies method override before the wrapped
// handler runs. The override is taken from the configured header when
// present, otherwise from the configured parameter in the query string or
// an urlencoded request body.
//
// Only methods on the onlyOn list (default POST) are eligible, and only
// methods on the allow list (default PUT, PATCH, DELETE) may be the
// result. Anything else passes through unchanged. The original method is
// stored in the request context and retrievable with GetOriginalMethod.
//
// SECURITY WARNING: enable this only when you control the clients, such
// as server-rendered HTML forms. On a public API an attacker can smuggle
// state-changing methods through endpoints that proxies and access logs
// believe are plain POSTs.
//
// Basic usage:
//
//	handler := methodoverride.New()(r)
//
// Custom header and allow list:
//
//	handler := methodoverride.New(
//	    methodoverride.WithHeader("X-Method"),
//	    methodoverride.WithAllow("PUT", "DELETE"),
//	)(r)
func New(opts ...Option) func(http.Handler) http.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	allow := make(map[string]bool, len(cfg.allow))
	for _, m := range cfg.allow {
		allow[strings.ToUpper(m)] = true
	}
	onlyOn := make(map[string]bool, len(cfg.onlyOn))
	for _, m := range cfg.onlyOn {
		onlyOn[strings.ToUpper(m)] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !onlyOn[r.Method] {
				next.ServeHTTP(w, r)
				return
			}

			override := overrideFor(r, cfg)
			if override == "" || override == r.Method || !allow[override] {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), middleware.OriginalMethodKey, r.Method)
			rewritten := r.WithContext(ctx)
			rewritten.Method = override
			next.ServeHTTP(w, rewritten)
		})
	}
}

// overrideFor extracts the requested override method, normalized to upper
// case. Header first, then query string, then urlencoded body.
func overrideFor(r *http.Request, cfg *config) string {
	if v := r.Header.Get(cfg.header); v != "" {
		return normalizeMethod(v)
	}
	if cfg.param == "" {
		return ""
	}
	if v := r.URL.Query().Get(cfg.param); v != "" {
		return normalizeMethod(v)
	}
	if hasFormBody(r) {
		// ParseForm reads the body; handlers keep access to the fields
		// through r.Form, which is how form requests are consumed anyway.
		if err := r.ParseForm(); err == nil {
			return normalizeMethod(r.PostForm.Get(cfg.param))
		}
	}
	return ""
}

// hasFormBody reports whether the request declares an urlencoded form
// body, the only body type the override parameter is read from.
func hasFormBody(r *http.Request) bool {
	if r.Body == nil {
		return false
	}
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == "application/x-www-form-urlencoded"
}

// normalizeMethod uppercases and trims a method token.
func normalizeMethod(m string) string {
	return strings.ToUpper(strings.TrimSpace(m))
}

// GetOriginalMethod returns the method the request arrived with before an
// override was applied, or "" when no override happened.
//
//	r.DELETE("/posts/:id", func(c *viaduct.Context) {
//	    if methodoverride.GetOriginalMethod(c.Request) == http.MethodPost {
//	        // arrived as a form POST
//	    }
//	})
func GetOriginalMethod(r *http.Request) string {
	if original, ok := r.Context().Value(middleware.OriginalMethodKey).(string); ok {
		return original
	}
	return ""
}
