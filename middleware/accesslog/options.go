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

package accesslog

import (
	"log/slog"
	"time"
)

// Option defines functional options for access log middleware.
type Option func(*config)

// config holds access log configuration.
type config struct {
	// logger is the structured logger for access lines
	logger *slog.Logger

	// excludePaths are exact paths to skip
	excludePaths map[string]bool

	// excludePrefixes are path prefixes to skip
	excludePrefixes []string

	// sampleRate samples normal traffic (1.0 = all, 0.1 = 10%)
	sampleRate float64

	// logErrorsOnly restricts logging to status >= 400
	logErrorsOnly bool

	// slowThreshold forces logging of requests at or above this duration
	slowThreshold time.Duration
}

func defaultConfig() *config {
	return &config{
		excludePaths: make(map[string]bool),
		sampleRate:   1.0,
	}
}

// WithLogger sets the slog.Logger for access lines. Without it the
// middleware logs nothing.
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	accesslog.New(accesslog.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithExcludePaths skips logging for exact path matches.
//
//	accesslog.New(accesslog.WithExcludePaths("/health", "/metrics"))
func WithExcludePaths(paths ...string) Option {
	return func(c *config) {
		for _, path := range paths {
			c.excludePaths[path] = true
		}
	}
}

// WithExcludePrefixes skips logging for paths with the given prefixes.
//
//	accesslog.New(accesslog.WithExcludePrefixes("/debug"))
func WithExcludePrefixes(prefixes ...string) Option {
	return func(c *config) {
		c.excludePrefixes = append(c.excludePrefixes, prefixes...)
	}
}

// WithSampleRate sets the sampling rate from 0.0 to 1.0 for normal
// traffic. Errors and slow requests always log. Sampling is deterministic
// by request ID hash, so a request logs on every replica or on none.
//
//	accesslog.New(accesslog.WithSampleRate(0.1)) // 10% of normal traffic
func WithSampleRate(rate float64) Option {
	return func(c *config) {
		c.sampleRate = max(0.0, min(rate, 1.0))
	}
}

// WithErrorsOnly restricts logging to requests with status >= 400, plus
// slow requests when a threshold is set.
func WithErrorsOnly() Option {
	return func(c *config) {
		c.logErrorsOnly = true
	}
}

// WithSlowThreshold forces logging of requests at or above the threshold,
// regardless of sampling, and tags them with slow=true.
//
//	accesslog.New(accesslog.WithSlowThreshold(500 * time.Millisecond))
func WithSlowThreshold(threshold time.Duration) Option {
	return func(c *config) {
		c.slowThreshold = threshold
	}
}
