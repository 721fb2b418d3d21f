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

// Package recovery provides middleware for recovering from panics in
// request handlers, preventing server crashes and returning proper error
// responses.
package recovery

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"github.com/viaduct-http/viaduct"
)

// defaultHandler sends a 500 Internal Server Error response.
func defaultHandler(c *viaduct.Context, _ any) {
	c.JSON(http.StatusInternalServerError, map[string]any{
		"error": "Internal server error",
		"code":  "INTERNAL_ERROR",
	})
}

// New returns a middleware that recovers from panics in request handlers.
// The panic is logged with a stack trace, marked on the active span, and
// answered with a 500 response.
//
// Register it first in the chain so it covers everything below:
//
//	r := viaduct.MustNew()
//	r.Use(recovery.New())
//
// Custom response:
//
//	r.Use(recovery.New(
//	    recovery.WithHandler(func(c *viaduct.Context, err any) {
//	        c.String(http.StatusInternalServerError, "something broke")
//	    }),
//	))
func New(opts ...Option) viaduct.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *viaduct.Context) {
		defer func() {
			if err := recover(); err != nil {
				// exception.escaped marks panics specifically; handler
				// errors recorded elsewhere never set it.
				if span := c.Span(); span != nil {
					span.SetStatus(codes.Error, "panic recovered")
					span.SetAttributes(
						attribute.Bool("exception.escaped", true),
						attribute.String("exception.type", fmt.Sprintf("%T", err)),
						attribute.String("exception.message", fmt.Sprintf("%v", err)),
					)
					if actual, ok := err.(error); ok {
						span.RecordError(actual)
					}
				}

				var stack []byte
				if cfg.stackTrace {
					stack = debug.Stack()
					if len(stack) > cfg.stackSize {
						stack = stack[:cfg.stackSize]
					}
				}

				if cfg.logger != nil {
					cfg.logger.Error("panic recovered",
						"error", fmt.Sprintf("%v", err),
						"method", c.Request.Method,
						"path", c.Request.URL.Path,
						"stack", string(stack),
					)
				}

				if cfg.handler != nil {
					cfg.handler(c, err)
				}
			}
		}()

		c.Next()
	}
}
