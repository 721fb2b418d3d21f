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

// Request metadata accessors for the Context type: host, scheme, origin,
// subdomains, and content negotiation shortcuts.

import (
	"maps"
	"strings"
)

// AllParams returns all captured path parameters as a map. Useful for
// logging or when a handler wants every parameter at once.
//
// Returns a new map so callers cannot mutate dispatch state.
//
// Example:
//
//	// Route: /posts/:post_id/comments/:id
//	// Request: /posts/7/comments/42
//	params := c.AllParams()
//	// map[string]string{"post_id": "7", "id": "42"}
func (c *Context) AllParams() map[string]string {
	result := make(map[string]string, c.paramCount)

	n := min(int(c.paramCount), len(c.paramKeys))
	for i := range n {
		result[c.paramKeys[i]] = c.paramValues[i]
	}
	maps.Copy(result, c.Params)

	return result
}

// AllQueries returns all query parameters as a map. For repeated keys the
// last value wins; use c.Request.URL.Query() directly when every value
// matters.
func (c *Context) AllQueries() map[string]string {
	values := c.Request.URL.Query()
	result := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			result[key] = vals[len(vals)-1]
		}
	}
	return result
}

// Hostname returns the request host with any port stripped.
// For "shop.example.com:8080" it returns "shop.example.com".
func (c *Context) Hostname() string {
	return stripHostPort(c.rawHost())
}

// Port returns the port from the Host header, or "" when none is present.
func (c *Context) Port() string {
	host := c.rawHost()
	if colon := strings.LastIndex(host, ":"); colon != -1 {
		if !strings.Contains(host, "]") || colon > strings.Index(host, "]") {
			return host[colon+1:]
		}
	}
	return ""
}

// Scheme returns the request scheme, "http" or "https". X-Forwarded-Proto
// and X-Forwarded-Ssl are honored for deployments behind TLS-terminating
// proxies.
func (c *Context) Scheme() string {
	if c.Request.TLS != nil {
		return "https"
	}
	if proto := c.Request.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if c.Request.Header.Get("X-Forwarded-Ssl") == "on" {
		return "https"
	}
	return "http"
}

// IsSecure reports whether the request was served over HTTPS, directly or
// via a TLS-terminating proxy.
func (c *Context) IsSecure() bool {
	return c.Scheme() == "https"
}

// BaseURL returns scheme://host for the current request, the origin used
// by URLFor when the router has none configured.
//
// Example:
//
//	// Request: https://example.com:8080/posts/7
//	c.BaseURL() // "https://example.com:8080"
func (c *Context) BaseURL() string {
	return c.Scheme() + "://" + c.rawHost()
}

// FullURL returns the complete request URL including scheme, host, path,
// and query string.
func (c *Context) FullURL() string {
	full := c.BaseURL() + c.Request.URL.Path
	if c.Request.URL.RawQuery != "" {
		full += "?" + c.Request.URL.RawQuery
	}
	return full
}

// Subdomains returns the subdomain labels of the request host, leftmost
// first. The offset is the number of trailing labels that form the
// registered domain; it defaults to 2, which fits "example.com". Pass 3
// for hosts under a two-label TLD such as "example.co.uk".
//
//	// Host: api.v2.example.com
//	c.Subdomains() // []string{"api", "v2"}
//
// The Host header is client-controlled. Route on it with the Subdomain
// constraint, but never treat it as an authentication signal.
func (c *Context) Subdomains(offset ...int) []string {
	host := c.Hostname()

	off := 2
	if len(offset) > 0 && offset[0] > 0 {
		off = offset[0]
	}

	parts := strings.Split(host, ".")
	if len(parts) <= off {
		return []string{}
	}
	return parts[:len(parts)-off]
}

// IsJSON reports whether the request body is declared as JSON.
func (c *Context) IsJSON() bool {
	return strings.Contains(c.Request.Header.Get("Content-Type"), "application/json")
}

// AcceptsJSON reports whether the client accepts a JSON response.
func (c *Context) AcceptsJSON() bool {
	accept := c.Request.Header.Get("Accept")
	return strings.Contains(accept, "application/json") || strings.Contains(accept, "*/*")
}

// AcceptsHTML reports whether the client accepts an HTML response.
func (c *Context) AcceptsHTML() bool {
	accept := c.Request.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "*/*")
}

// IsXHR reports whether the request carries the XMLHttpRequest marker
// header set by most browser AJAX libraries.
func (c *Context) IsXHR() bool {
	return c.Request.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// rawHost returns the request host, falling back to the URL host for
// requests built without a Host header.
func (c *Context) rawHost() string {
	if c.Request.Host != "" {
		return c.Request.Host
	}
	return c.Request.URL.Host
}

// stripHostPort removes a trailing :port, leaving bracketed IPv6 literals
// intact.
func stripHostPort(host string) string {
	if colon := strings.LastIndex(host, ":"); colon != -1 {
		if !strings.Contains(host, "]") || colon > strings.Index(host, "]") {
			return host[:colon]
		}
	}
	return host
}
