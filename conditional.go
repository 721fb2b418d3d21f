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

// HTTP caching for handlers: Cache-Control composition and conditional GET
// (ETag / Last-Modified validation per RFC 7232).

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// CacheControlOption defines functional options for Cache-Control header
// composition.
type CacheControlOption func(*cacheControlConfig)

// cacheControlConfig holds the directives selected for one response.
type cacheControlConfig struct {
	public               bool
	private              bool
	noStore              bool
	noCache              bool
	mustRevalidate       bool
	maxAge               time.Duration
	staleWhileRevalidate time.Duration
}

// CachePublic allows shared caches to store the response.
func CachePublic() CacheControlOption {
	return func(cfg *cacheControlConfig) { cfg.public = true }
}

// CachePrivate restricts caching to the end client.
func CachePrivate() CacheControlOption {
	return func(cfg *cacheControlConfig) { cfg.private = true }
}

// CacheNoStore forbids storing the response anywhere.
func CacheNoStore() CacheControlOption {
	return func(cfg *cacheControlConfig) { cfg.noStore = true }
}

// CacheNoCache requires revalidation before a stored response is reused.
func CacheNoCache() CacheControlOption {
	return func(cfg *cacheControlConfig) { cfg.noCache = true }
}

// CacheMustRevalidate forbids serving the response stale once expired.
func CacheMustRevalidate() CacheControlOption {
	return func(cfg *cacheControlConfig) { cfg.mustRevalidate = true }
}

// CacheMaxAge sets the max-age directive.
func CacheMaxAge(d time.Duration) CacheControlOption {
	return func(cfg *cacheControlConfig) {
		if d > 0 {
			cfg.maxAge = d
		}
	}
}

// CacheStaleWhileRevalidate sets the stale-while-revalidate directive
// (RFC 5861), allowing stale content to be served during a background
// refresh.
func CacheStaleWhileRevalidate(d time.Duration) CacheControlOption {
	return func(cfg *cacheControlConfig) {
		if d > 0 {
			cfg.staleWhileRevalidate = d
		}
	}
}

// CacheControl composes and sets the Cache-Control header from the given
// directives.
//
// Example:
//
//	c.CacheControl(
//	    viaduct.CachePublic(),
//	    viaduct.CacheMaxAge(time.Minute),
//	    viaduct.CacheStaleWhileRevalidate(2*time.Minute),
//	)
//	// Cache-Control: public, max-age=60, stale-while-revalidate=120
func (c *Context) CacheControl(opts ...CacheControlOption) {
	cfg := &cacheControlConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	parts := make([]string, 0, 7)
	if cfg.public {
		parts = append(parts, "public")
	}
	if cfg.private {
		parts = append(parts, "private")
	}
	if cfg.noStore {
		parts = append(parts, "no-store")
	}
	if cfg.noCache {
		parts = append(parts, "no-cache")
	}
	if cfg.mustRevalidate {
		parts = append(parts, "must-revalidate")
	}
	if cfg.maxAge > 0 {
		parts = append(parts, fmt.Sprintf("max-age=%d", int(cfg.maxAge.Seconds())))
	}
	if cfg.staleWhileRevalidate > 0 {
		parts = append(parts, fmt.Sprintf("stale-while-revalidate=%d", int(cfg.staleWhileRevalidate.Seconds())))
	}

	if len(parts) > 0 {
		c.Header("Cache-Control", strings.Join(parts, ", "))
	}
}

// SetETag sets a strong ETag on the response, quoting the value when the
// caller has not.
func (c *Context) SetETag(value string) {
	if value == "" {
		return
	}
	if !strings.HasPrefix(value, `"`) && !strings.HasPrefix(value, `W/"`) {
		value = `"` + value + `"`
	}
	c.Header("ETag", value)
}

// SetLastModified sets the Last-Modified header in HTTP date format.
func (c *Context) SetLastModified(t time.Time) {
	if t.IsZero() {
		return
	}
	c.Header("Last-Modified", t.UTC().Format(http.TimeFormat))
}

// FreshWhen records the response's cache validators without deciding
// anything. Pass a zero time or empty etag to skip either validator.
// Combine with IsFresh, or use Stale for the common check-and-304 flow.
func (c *Context) FreshWhen(etag string, lastModified time.Time) {
	c.SetETag(etag)
	c.SetLastModified(lastModified)
}

// Stale records the given validators, then checks whether the client's
// cached copy is still current. When it is, a 304 Not Modified is written
// and Stale returns false: the handler should stop without rendering.
//
//	func show(c *viaduct.Context) {
//	    post := loadPost(c.Param("id"))
//	    if !c.Stale(post.ETag(), post.UpdatedAt) {
//	        return // 304 already sent
//	    }
//	    c.JSON(http.StatusOK, post)
//	}
func (c *Context) Stale(etag string, lastModified time.Time) bool {
	c.FreshWhen(etag, lastModified)
	if c.IsFresh() {
		c.writeHeaderOnce(http.StatusNotModified)
		return false
	}
	return true
}

// IsFresh reports whether the client's cached copy is still current,
// comparing If-None-Match against the response ETag and If-Modified-Since
// against Last-Modified per RFC 7232. A client Cache-Control: no-cache
// forces a full response.
//
// Validators must be recorded on the response first (FreshWhen, SetETag,
// SetLastModified).
func (c *Context) IsFresh() bool {
	if strings.Contains(c.Request.Header.Get("Cache-Control"), "no-cache") {
		return false
	}

	// If-None-Match takes precedence over If-Modified-Since.
	ifNoneMatch := c.Request.Header.Get("If-None-Match")
	etag := c.Response.Header().Get("ETag")
	if ifNoneMatch != "" && etag != "" {
		if ifNoneMatch == "*" {
			return true
		}
		// Weak comparison: W/"v1" matches "v1" and W/"v1".
		server := strings.TrimPrefix(etag, "W/")
		for _, candidate := range strings.Split(ifNoneMatch, ",") {
			if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == server {
				return true
			}
		}
		return false
	}

	ifModifiedSince := c.Request.Header.Get("If-Modified-Since")
	lastModified := c.Response.Header().Get("Last-Modified")
	if ifModifiedSince != "" && lastModified != "" {
		ims, err := http.ParseTime(ifModifiedSince)
		if err != nil {
			return false
		}
		lm, err := http.ParseTime(lastModified)
		if err != nil {
			return false
		}
		// HTTP dates have one-second granularity.
		return !lm.After(ims)
	}

	return false
}

// IsStale is the inverse of IsFresh.
func (c *Context) IsStale() bool {
	return !c.IsFresh()
}
