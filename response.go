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
	"bufio"
	"fmt"
	"mime"
	"net"
	"net/http"
	"strings"
)

// responseWriter wraps http.ResponseWriter to capture status code and size.
// It also prevents "superfluous response.WriteHeader call" errors.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int64
	written    bool
}

// WriteHeader captures the status code and prevents duplicate calls.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.ResponseWriter.WriteHeader(code)
		rw.written = true
	}
}

// Write captures the response size and marks as written.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.written = true
	}
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += int64(n)
	return n, err
}

// StatusCode returns the HTTP status code.
func (rw *responseWriter) StatusCode() int {
	if rw.statusCode == 0 {
		return http.StatusOK
	}
	return rw.statusCode
}

// Size returns the response size in bytes.
func (rw *responseWriter) Size() int64 {
	return rw.size
}

// Written returns true if headers have been written.
func (rw *responseWriter) Written() bool {
	return rw.written
}

// Compile-time check that responseWriter implements ResponseInfo.
var _ ResponseInfo = (*responseWriter)(nil)

// Hijack implements http.Hijacker.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, ErrResponseWriterNotHijacker
}

// Flush implements http.Flusher.
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Unwrap exposes the underlying writer for http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// AppendHeader appends a value to an existing response header, creating it
// when absent. Useful for headers that carry multiple values like Link.
func (c *Context) AppendHeader(key, value string) {
	existing := c.Response.Header().Get(key)
	if existing == "" {
		c.Header(key, value)
	} else {
		c.Response.Header().Set(key, existing+", "+value)
	}
}

// ContentType sets the Content-Type header. Accepts both file extensions
// (".json", "json") and full MIME types ("application/xml").
func (c *Context) ContentType(value string) {
	if strings.Contains(value, "/") {
		c.Header("Content-Type", value)
		return
	}

	if !strings.HasPrefix(value, ".") {
		value = "." + value
	}

	mimeType := mime.TypeByExtension(value)
	if mimeType == "" {
		if known := mimeTypeForFormat(strings.TrimPrefix(value, ".")); known != "" {
			mimeType = known
		} else {
			mimeType = "application/octet-stream"
		}
	}

	c.Header("Content-Type", mimeType)
}

// Location sets the Location header, typically before a 3xx Status call.
func (c *Context) Location(url string) {
	c.Header("Location", url)
}

// Vary adds fields to the Vary response header, skipping duplicates.
func (c *Context) Vary(fields ...string) {
	existing := c.Response.Header().Get("Vary")

	for _, field := range fields {
		if existing != "" && strings.Contains(existing, field) {
			continue
		}
		if existing == "" {
			existing = field
		} else {
			existing += ", " + field
		}
	}

	c.Response.Header().Set("Vary", existing)
}

// Link adds an RFC 8288 Link header for resource relationships.
//
//	c.Link("/api/posts?page=2", "next")
func (c *Context) Link(url, rel string) {
	c.AppendHeader("Link", fmt.Sprintf("<%s>; rel=%q", url, rel))
}

// Download transfers a file as an attachment. The optional filename
// overrides the name shown to the user.
func (c *Context) Download(filepath string, filename ...string) error {
	var downloadName string
	if len(filename) > 0 && filename[0] != "" {
		downloadName = filename[0]
	} else {
		downloadName = filepath[strings.LastIndex(filepath, "/")+1:]
		if downloadName == "" {
			downloadName = "download"
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, downloadName))
	http.ServeFile(c.Response, c.Request, filepath)
	return nil
}
