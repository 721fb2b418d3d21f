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

// Package requestid assigns each request a unique ID for log correlation
// and distributed tracing.
package requestid

import (
	"context"

	"github.com/google/uuid"
	"github.com/viaduct-http/viaduct"
	"github.com/viaduct-http/viaduct/middleware"
)

// Option defines functional options for requestid middleware configuration.
type Option func(*config)

// config holds the configuration for the requestid middleware.
type config struct {
	// headerName is the header carrying the request ID
	headerName string

	// generator produces new request IDs
	generator func() string

	// allowClientID accepts IDs supplied by clients
	allowClientID bool
}

// defaultConfig returns the default configuration for requestid middleware.
func defaultConfig() *config {
	return &config{
		headerName:    "X-Request-ID",
		generator:     uuid.NewString,
		allowClientID: true,
	}
}

// WithHeader sets the header name for the request ID.
// Default: "X-Request-ID"
func WithHeader(name string) Option {
	return func(cfg *config) {
		cfg.headerName = name
	}
}

// WithGenerator sets a custom ID generator. The default generates random
// UUIDs.
//
//	requestid.New(requestid.WithGenerator(func() string {
//	    return ulid.Make().String()
//	}))
func WithGenerator(generator func() string) Option {
	return func(cfg *config) {
		if generator != nil {
			cfg.generator = generator
		}
	}
}

// WithAllowClientID controls whether IDs already present on the request
// are kept. Default true; disable when inbound IDs cannot be trusted.
func WithAllowClientID(allow bool) Option {
	return func(cfg *config) {
		cfg.allowClientID = allow
	}
}

// New returns a middleware that assigns each request a unique ID.
//
// An ID already present in the configured header is reused when client IDs
// are allowed; otherwise a fresh one is generated. The ID is set on the
// response header and stored in the request context for downstream
// middleware such as accesslog.
//
// Basic usage:
//
//	r := viaduct.MustNew()
//	r.Use(requestid.New())
//
// Custom header:
//
//	r.Use(requestid.New(requestid.WithHeader("X-Correlation-ID")))
func New(opts ...Option) viaduct.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *viaduct.Context) {
		var id string
		if cfg.allowClientID {
			id = c.Request.Header.Get(cfg.headerName)
		}
		if id == "" {
			id = cfg.generator()
		}

		c.Response.Header().Set(cfg.headerName, id)

		ctx := context.WithValue(c.Request.Context(), middleware.RequestIDKey, id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// Get retrieves the request ID from the context, or "" when none was set.
//
//	func handler(c *viaduct.Context) {
//	    c.Logger().Info("processing", "request_id", requestid.Get(c))
//	}
func Get(c *viaduct.Context) string {
	if id, ok := c.Request.Context().Value(middleware.RequestIDKey).(string); ok {
		return id
	}
	return ""
}
