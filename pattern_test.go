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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinPatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		path   string
		want   string
	}{
		{"both empty", "", "", "/"},
		{"empty prefix", "", "/posts", "/posts"},
		{"root path", "/admin", "/", "/admin"},
		{"simple join", "/admin", "/posts", "/admin/posts"},
		{"prefix trailing slash", "/admin/", "/posts", "/admin/posts"},
		{"path missing slash", "/admin", "posts", "/admin/posts"},
		{"empty path keeps prefix", "/admin", "", "/admin"},
		{"root prefix", "/", "/posts", "/posts"},
		{"nested prefixes", "/api/v1", "/posts/:post_id", "/api/v1/posts/:post_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, joinPatterns(tt.prefix, tt.path))
		})
	}
}

func TestParsePattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		raw        string
		wantParams []string
		wantSplat  bool
	}{
		{"root", "/", nil, false},
		{"empty is root", "", nil, false},
		{"static", "/posts/new", nil, false},
		{"one param", "/posts/:post_id", []string{"post_id"}, false},
		{"two params", "/posts/:post_id/comments/:id", []string{"post_id", "id"}, false},
		{"splat", "/static/*filepath", []string{"filepath"}, true},
		{"param then splat", "/files/:bucket/*key", []string{"bucket", "key"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := parsePattern(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantParams, p.params)
			assert.Equal(t, tt.wantSplat, p.hasSplat)
		})
	}
}

func TestParsePatternErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"missing leading slash", "posts", ErrInvalidPattern},
		{"empty segment", "/posts//comments", ErrInvalidPattern},
		{"unnamed param", "/posts/:", ErrInvalidPattern},
		{"unnamed splat", "/static/*", ErrInvalidPattern},
		{"splat not last", "/files/*key/meta", ErrInvalidPattern},
		{"duplicate param", "/posts/:id/comments/:id", ErrDuplicateParameter},
		{"param repeated by splat", "/posts/:id/*id", ErrDuplicateParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := parsePattern(tt.raw)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPatternMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		pattern      string
		path         string
		wantMatch    bool
		wantCaptures []string
	}{
		{"root matches root", "/", "/", true, nil},
		{"root rejects path", "/", "/posts", false, nil},
		{"static exact", "/posts/new", "/posts/new", true, nil},
		{"static mismatch", "/posts/new", "/posts/old", false, nil},
		{"static too short", "/posts/new", "/posts", false, nil},
		{"static too long", "/posts", "/posts/new", false, nil},
		{"param captures", "/posts/:post_id", "/posts/7", true, []string{"7"}},
		{"param rejects empty", "/posts/:post_id", "/posts/", false, nil},
		{"param single segment only", "/posts/:post_id", "/posts/7/edit", false, nil},
		{"two params", "/posts/:post_id/comments/:id", "/posts/7/comments/42", true, []string{"7", "42"}},
		{"trailing slash tolerated", "/posts/:post_id", "/posts/7/", true, []string{"7"}},
		{"double slash rejected", "/posts/:post_id", "/posts//7", false, nil},
		{"splat takes rest", "/static/*filepath", "/static/css/app.css", true, []string{"css/app.css"}},
		{"splat takes empty rest", "/static/*filepath", "/static", true, []string{""}},
		{"splat after param", "/files/:bucket/*key", "/files/media/2026/08/a.png", true, []string{"media", "2026/08/a.png"}},
		{"percent left undecoded", "/posts/:post_id", "/posts/a%2Fb", true, []string{"a%2Fb"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := parsePattern(tt.pattern)
			require.NoError(t, err)

			var captured []string
			got := p.match(tt.path, func(i int, v string) {
				for len(captured) <= i {
					captured = append(captured, "")
				}
				captured[i] = v
			})

			assert.Equal(t, tt.wantMatch, got)
			if tt.wantMatch {
				assert.Equal(t, tt.wantCaptures, captured)
			}
		})
	}
}
