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
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// requestContext builds a detached context around a request for the given
// host and optional header pairs.
func requestContext(host string, headerPairs ...string) *Context {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = host
	for i := 0; i+1 < len(headerPairs); i += 2 {
		req.Header.Set(headerPairs[i], headerPairs[i+1])
	}
	return NewContext(httptest.NewRecorder(), req)
}

func TestAllParams(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Draw(func(root *Scope) {
		root.GET("/posts/:post_id/comments/:id", func(c *Context) {
			params := c.AllParams()
			assert.Equal(t, map[string]string{"post_id": "7", "id": "42"}, params)

			// Mutating the copy must not disturb dispatch state.
			params["post_id"] = "tampered"
			assert.Equal(t, "7", c.Param("post_id"))
			c.NoContent()
		})
	})

	w := get(r, "/posts/7/comments/42")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAllQueries(t *testing.T) {
	t.Parallel()

	c := NewContext(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/?a=1&b=2&a=3", nil))

	assert.Equal(t, map[string]string{"a": "3", "b": "2"}, c.AllQueries(),
		"the last value wins for repeated keys")
}

func TestHostnameAndPort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host     string
		hostname string
		port     string
	}{
		{"shop.example.com:8080", "shop.example.com", "8080"},
		{"example.com", "example.com", ""},
		{"[::1]:3000", "[::1]", "3000"},
		{"[2001:db8::1]", "[2001:db8::1]", ""},
	}
	for _, tt := range tests {
		c := requestContext(tt.host)
		assert.Equal(t, tt.hostname, c.Hostname(), "host %q", tt.host)
		assert.Equal(t, tt.port, c.Port(), "host %q", tt.host)
	}
}

func TestScheme(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "http", requestContext("example.com").Scheme())
	assert.Equal(t, "https",
		requestContext("example.com", "X-Forwarded-Proto", "https").Scheme())
	assert.Equal(t, "https",
		requestContext("example.com", "X-Forwarded-Ssl", "on").Scheme())

	c := requestContext("example.com")
	c.Request.TLS = &tls.ConnectionState{}
	assert.Equal(t, "https", c.Scheme())
	assert.True(t, c.IsSecure())
}

func TestBaseAndFullURL(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/posts/7?ref=mail", nil)
	req.Host = "example.com:8080"
	c := NewContext(httptest.NewRecorder(), req)

	assert.Equal(t, "http://example.com:8080", c.BaseURL())
	assert.Equal(t, "http://example.com:8080/posts/7?ref=mail", c.FullURL())
}

func TestSubdomains(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"api", "v2"}, requestContext("api.v2.example.com").Subdomains())
	assert.Equal(t, []string{"api"}, requestContext("api.example.com:8080").Subdomains())
	assert.Empty(t, requestContext("example.com").Subdomains())
	assert.Equal(t, []string{"api"}, requestContext("api.example.co.uk").Subdomains(3),
		"two-label TLDs need an explicit offset")
}

func TestContentNegotiationShortcuts(t *testing.T) {
	t.Parallel()

	c := requestContext("example.com",
		"Content-Type", "application/json; charset=utf-8",
		"Accept", "application/json",
		"X-Requested-With", "XMLHttpRequest",
	)
	assert.True(t, c.IsJSON())
	assert.True(t, c.AcceptsJSON())
	assert.False(t, c.AcceptsHTML())
	assert.True(t, c.IsXHR())

	browser := requestContext("example.com",
		"Accept", "text/html,application/xhtml+xml,*/*;q=0.8",
	)
	assert.True(t, browser.AcceptsHTML())
	assert.True(t, browser.AcceptsJSON(), "a */* clause accepts anything")
	assert.False(t, browser.IsXHR())
}
