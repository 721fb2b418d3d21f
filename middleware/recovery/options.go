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

package recovery

import (
	"log/slog"

	"github.com/viaduct-http/viaduct"
)

// Option defines functional options for recovery middleware configuration.
type Option func(*config)

// config holds the configuration for the recovery middleware.
type config struct {
	// stackTrace enables stack trace capture on panic
	stackTrace bool

	// stackSize caps the captured stack trace in bytes
	stackSize int

	// logger receives panic reports; nil disables logging
	logger *slog.Logger

	// handler writes the error response
	handler func(c *viaduct.Context, err any)
}

// defaultConfig returns the default configuration, logging through the
// process-wide slog default.
func defaultConfig() *config {
	return &config{
		stackTrace: true,
		stackSize:  4 << 10, // 4KB
		logger:     slog.Default(),
		handler:    defaultHandler,
	}
}

// WithoutLogging disables panic logging. Useful in tests to keep output
// clean.
func WithoutLogging() Option {
	return func(cfg *config) {
		cfg.logger = nil
	}
}

// WithLogger sets a custom slog.Logger for panic reports.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithHandler sets a custom recovery handler for the error response.
//
//	recovery.New(recovery.WithHandler(func(c *viaduct.Context, err any) {
//	    c.JSON(http.StatusInternalServerError, map[string]any{
//	        "error": "something went wrong",
//	    })
//	}))
func WithHandler(handler func(c *viaduct.Context, err any)) Option {
	return func(cfg *config) {
		cfg.handler = handler
	}
}

// WithStackTrace enables or disables stack trace capture.
// Default: true
func WithStackTrace(enabled bool) Option {
	return func(cfg *config) {
		cfg.stackTrace = enabled
	}
}

// WithStackSize caps the captured stack trace in bytes.
// Default: 4KB
func WithStackSize(size int) Option {
	return func(cfg *config) {
		cfg.stackSize = size
	}
}
