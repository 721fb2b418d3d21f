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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheControlComposition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []CacheControlOption
		want string
	}{
		{
			name: "public with max age",
			opts: []CacheControlOption{CachePublic(), CacheMaxAge(time.Minute)},
			want: "public, max-age=60",
		},
		{
			name: "stale while revalidate",
			opts: []CacheControlOption{
				CachePublic(),
				CacheMaxAge(time.Minute),
				CacheStaleWhileRevalidate(2 * time.Minute),
			},
			want: "public, max-age=60, stale-while-revalidate=120",
		},
		{
			name: "private must revalidate",
			opts: []CacheControlOption{CachePrivate(), CacheMustRevalidate()},
			want: "private, must-revalidate",
		},
		{
			name: "no store",
			opts: []CacheControlOption{CacheNoStore(), CacheNoCache()},
			want: "no-store, no-cache",
		},
		{
			name: "no directives sets nothing",
			opts: nil,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			c := NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil))
			c.CacheControl(tt.opts...)
			assert.Equal(t, tt.want, w.Header().Get("Cache-Control"))
		})
	}
}

func TestSetETag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"bare value gets quoted", "v1", `"v1"`},
		{"quoted value unchanged", `"v1"`, `"v1"`},
		{"weak validator unchanged", `W/"v1"`, `W/"v1"`},
		{"empty value sets nothing", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			c := NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil))
			c.SetETag(tt.value)
			assert.Equal(t, tt.want, w.Header().Get("ETag"))
		})
	}
}

func TestSetLastModified(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	c := NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil))

	c.SetLastModified(time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC))
	assert.Equal(t, "Tue, 25 Aug 2026 10:30:00 GMT", w.Header().Get("Last-Modified"))

	w2 := httptest.NewRecorder()
	c2 := NewContext(w2, httptest.NewRequest(http.MethodGet, "/", nil))
	c2.SetLastModified(time.Time{})
	assert.Empty(t, w2.Header().Get("Last-Modified"), "a zero time sets nothing")
}

func TestIsFreshByETag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		ifNoneMatch string
		etag        string
		fresh       bool
	}{
		{"exact match", `"v1"`, "v1", true},
		{"mismatch", `"v2"`, "v1", false},
		{"wildcard", "*", "v1", true},
		{"weak client matches strong server", `W/"v1"`, "v1", true},
		{"match in list", `"a", "v1"`, "v1", true},
		{"no client header", "", "v1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.ifNoneMatch != "" {
				req.Header.Set("If-None-Match", tt.ifNoneMatch)
			}
			c := NewContext(httptest.NewRecorder(), req)
			c.SetETag(tt.etag)
			assert.Equal(t, tt.fresh, c.IsFresh())
		})
	}
}

func TestIsFreshByModifiedDate(t *testing.T) {
	t.Parallel()

	modified := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		ifModifiedSince time.Time
		fresh           bool
	}{
		{"cached copy is newer", modified.Add(time.Hour), true},
		{"cached copy matches exactly", modified, true},
		{"cached copy is older", modified.Add(-time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("If-Modified-Since", tt.ifModifiedSince.Format(http.TimeFormat))
			c := NewContext(httptest.NewRecorder(), req)
			c.SetLastModified(modified)
			assert.Equal(t, tt.fresh, c.IsFresh())
		})
	}
}

func TestClientNoCacheForcesFullResponse(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", `"v1"`)
	req.Header.Set("Cache-Control", "no-cache")
	c := NewContext(httptest.NewRecorder(), req)
	c.SetETag("v1")

	assert.False(t, c.IsFresh())
	assert.True(t, c.IsStale())
}

func TestStaleWrites304ForFreshClients(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Draw(func(root *Scope) {
		root.GET("/posts/:id", func(c *Context) {
			if !c.Stale("v1", time.Time{}) {
				return
			}
			c.String(http.StatusOK, "full body")
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/posts/7", nil)
	req.Header.Set("If-None-Match", `"v1"`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())

	w = get(r, "/posts/7")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "full body", w.Body.String())
}
