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

// Package accesslog provides structured HTTP access logging with
// outcome-aware sampling: errors and slow requests always log, normal
// traffic can be sampled down.
package accesslog

import (
	"crypto/sha256"
	"encoding/binary"
	"net/http"
	"strings"
	"time"

	"github.com/viaduct-http/viaduct"
	"github.com/viaduct-http/viaduct/middleware"
)

// statusSizer is a capability interface for response writers that track
// status and size. The router's own wrapper satisfies it; a plain writer
// gets wrapped locally.
type statusSizer interface {
	StatusCode() int
	Size() int64
}

// New creates an access log middleware with structured logging.
//
// The logger must be provided via WithLogger; without one the middleware
// passes requests through untouched.
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	r := viaduct.MustNew()
//	r.Use(accesslog.New(
//	    accesslog.WithLogger(logger),
//	    accesslog.WithExcludePaths("/health", "/metrics"),
//	    accesslog.WithSlowThreshold(500*time.Millisecond),
//	))
func New(opts ...Option) viaduct.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *viaduct.Context) {
		path := c.Request.URL.Path

		if cfg.excludePaths[path] {
			c.Next()
			return
		}
		for _, prefix := range cfg.excludePrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		start := time.Now()

		// Status and size come from the response writer. The router wraps
		// every response already; wrap again only when a bare writer was
		// injected from outside.
		ss, ok := c.Response.(statusSizer)
		if !ok {
			wrapped := &statusRecorder{ResponseWriter: c.Response}
			c.Response = wrapped
			ss = wrapped
		}

		c.Next()

		// The log decision happens after the handler, when the outcome is
		// known: errors and slow requests bypass sampling.
		duration := time.Since(start)
		status := ss.StatusCode()

		isError := status >= 400
		isSlow := cfg.slowThreshold > 0 && duration >= cfg.slowThreshold

		shouldLog := true
		if !isError && !isSlow {
			if cfg.logErrorsOnly {
				shouldLog = false
			} else if cfg.sampleRate < 1.0 {
				requestID, _ := c.Request.Context().Value(middleware.RequestIDKey).(string)
				shouldLog = sampleByHash(requestID, cfg.sampleRate)
			}
		}
		if !shouldLog || cfg.logger == nil {
			return
		}

		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
			"bytes_sent", ss.Size(),
			"user_agent", c.Request.UserAgent(),
			"client_ip", c.ClientIP(),
			"host", c.Request.Host,
			"proto", c.Request.Proto,
		}
		if pattern := c.RoutePattern(); pattern != "" {
			fields = append(fields, "route", pattern)
		}
		if isSlow {
			fields = append(fields, "slow", true)
		}

		switch {
		case status >= 500:
			cfg.logger.Error("access", fields...)
		case status >= 400 || isSlow:
			cfg.logger.Warn("access", fields...)
		default:
			cfg.logger.Info("access", fields...)
		}
	}
}

// sampleByHash makes a deterministic sampling decision from a hash of the
// request ID, so the same request logs (or not) on every replica.
func sampleByHash(id string, rate float64) bool {
	if id == "" {
		return true
	}
	h := sha256.Sum256([]byte(id))
	hashValue := binary.BigEndian.Uint64(h[:8])
	threshold := uint64(rate * float64(^uint64(0)))
	return hashValue <= threshold
}

// statusRecorder is the minimal fallback wrapper for externally injected
// writers.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	size       int64
	written    bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += int64(n)
	return n, err
}

func (rw *statusRecorder) StatusCode() int {
	if rw.statusCode == 0 {
		return http.StatusOK
	}
	return rw.statusCode
}

func (rw *statusRecorder) Size() int64 {
	return rw.size
}

// Flush implements http.Flusher.
func (rw *statusRecorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
