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

package middleware

import (
	"io"
	"log/slog"
	"os"
)

// NewTestLogger creates a silent logger for tests.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// NewCaptureLogger creates a logger writing JSON lines to w, for tests
// that assert on log output.
//
//	var buf bytes.Buffer
//	logger := middleware.NewCaptureLogger(&buf)
//	r.Use(accesslog.New(accesslog.WithLogger(logger)))
//	// ...
//	assert.Contains(t, buf.String(), `"status":200`)
func NewCaptureLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, nil))
}

// NewDebugLogger creates a human-readable text logger on stdout with debug
// level enabled.
func NewDebugLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}
