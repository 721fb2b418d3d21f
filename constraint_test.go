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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stateFor builds a matchState for constraint unit tests.
func stateFor(req *http.Request, format string, params map[string]string) *matchState {
	st := &matchState{req: req, format: format}
	for name, value := range params {
		st.names = append(st.names, name)
		st.values = append(st.values, value)
	}
	return st
}

func TestWhereConstraint(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/posts/7", nil)

	tests := []struct {
		name  string
		expr  string
		value string
		ok    bool
	}{
		{"digits match", `\d+`, "7", true},
		{"digits reject letters", `\d+`, "seven", false},
		{"anchored both ends", `\d+`, "7abc", false},
		{"anchored at start", `\d+`, "abc7", false},
		{"alternation", `draft|published`, "draft", true},
		{"alternation anchored", `draft|published`, "redrafted", false},
		{"missing param is empty", `\d*`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := Where("id", tt.expr)
			st := stateFor(req, "", map[string]string{"id": tt.value})
			assert.Equal(t, tt.ok, c.matches(st))
		})
	}

	t.Run("unknown param compares empty", func(t *testing.T) {
		t.Parallel()

		c := Where("slug", `[a-z]+`)
		st := stateFor(req, "", map[string]string{"id": "7"})
		assert.False(t, c.matches(st))
	})

	t.Run("invalid expression panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() { Where("id", `[unclosed`) })
	})
}

func TestFormatConstraint(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/posts/7.json", nil)

	c := Format("json")
	assert.True(t, c.matches(stateFor(req, "json", nil)))
	assert.False(t, c.matches(stateFor(req, "", nil)), "no extension must not satisfy a format constraint")
	assert.False(t, c.matches(stateFor(req, "xml", nil)))

	dotted := Format(".json")
	assert.True(t, dotted.matches(stateFor(req, "json", nil)), "leading dot is normalized away")
}

func TestAcceptConstraint(t *testing.T) {
	t.Parallel()

	c := Accept("application/json")

	t.Run("absent header passes", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.True(t, c.matches(stateFor(req, "", nil)))
	})

	t.Run("compatible header passes", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept", "application/json; q=0.9")
		assert.True(t, c.matches(stateFor(req, "", nil)))
	})

	t.Run("incompatible header fails", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept", "text/html")
		assert.False(t, c.matches(stateFor(req, "", nil)))
	})
}

func TestContentTypeConstraint(t *testing.T) {
	t.Parallel()

	c := ContentType("application/json")

	t.Run("bodyless request passes", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.True(t, c.matches(stateFor(req, "", nil)))
	})

	t.Run("matching body passes", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		assert.True(t, c.matches(stateFor(req, "", nil)))
	})

	t.Run("charset parameter ignored", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		assert.True(t, c.matches(stateFor(req, "", nil)))
	})

	t.Run("wrong type fails", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=b"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		assert.False(t, c.matches(stateFor(req, "", nil)))
	})

	t.Run("missing header on body fails", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
		req.Header.Del("Content-Type")
		assert.False(t, c.matches(stateFor(req, "", nil)))
	})
}

func TestHostConstraint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		host    string
		ok      bool
	}{
		{"exact", "example.com", "example.com", true},
		{"exact rejects other", "example.com", "evil.com", false},
		{"port stripped", "example.com", "example.com:8080", true},
		{"case folded", "Example.COM", "EXAMPLE.com", true},
		{"wildcard label", "*.example.com", "api.example.com", true},
		{"wildcard is single label", "*.example.com", "a.b.example.com", false},
		{"wildcard needs a label", "*.example.com", "example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := Host(tt.pattern)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			assert.Equal(t, tt.ok, c.matches(stateFor(req, "", nil)))
		})
	}

	t.Run("invalid pattern panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() { Host("[") })
	})
}

func TestSubdomainConstraint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		host    string
		ok      bool
	}{
		{"leading label", "api", "api.example.com", true},
		{"wrong label", "api", "www.example.com", false},
		{"two-label host has no subdomain", "api", "example.com", false},
		{"localhost has no subdomain", "api", "localhost:3000", false},
		{"glob", "api-*", "api-v2.example.com", true},
		{"deep host still leading label", "api", "api.staging.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := Subdomain(tt.pattern)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			assert.Equal(t, tt.ok, c.matches(stateFor(req, "", nil)))
		})
	}
}

func TestCustomConstraint(t *testing.T) {
	t.Parallel()

	c := Custom(func(req *http.Request) bool {
		return req.Header.Get("X-Beta") == "on"
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, c.matches(stateFor(req, "", nil)))

	req.Header.Set("X-Beta", "on")
	assert.True(t, c.matches(stateFor(req, "", nil)))
}
