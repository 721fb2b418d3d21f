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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutesBeforeCompile(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Draw(func(root *Scope) {
		root.GET("/posts", func(c *Context) {})
	})

	_, err := r.Routes()
	assert.ErrorIs(t, err, ErrTableNotCompiled)
}

func TestRoutesIntrospection(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Draw(func(root *Scope) {
		root.GET("/posts/:id", "posts#show").Helper("post").Where("id", `\d+`)
		root.Match("/legacy", func(c *Context) {}, "GET", "POST")
	})
	require.NoError(t, r.Compile())

	infos, err := r.Routes()
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, []string{"GET"}, infos[0].Verbs)
	assert.Equal(t, "/posts/:id", infos[0].Pattern)
	assert.Equal(t, "post", infos[0].Helper)
	assert.Equal(t, "posts#show", infos[0].Target)
	require.Len(t, infos[0].Constraints, 1)
	assert.Contains(t, infos[0].Constraints[0], "id")

	assert.Equal(t, []string{"GET", "POST"}, infos[1].Verbs)
	assert.Equal(t, "handler", infos[1].Target)
}

func TestRouteExists(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Draw(func(root *Scope) {
		root.GET("/posts/:id", func(c *Context) {}).Where("id", `\d+`)
	})

	assert.True(t, r.RouteExists(http.MethodGet, "/posts/7"))
	assert.True(t, r.RouteExists(http.MethodGet, "/posts/abc"),
		"RouteExists is structural; constraints are not evaluated")
	assert.False(t, r.RouteExists(http.MethodPost, "/posts/7"))
	assert.False(t, r.RouteExists(http.MethodGet, "/missing"))
}

func TestFprintRoutes(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Draw(func(root *Scope) {
		root.GET("/posts", "posts#index").Helper("posts")
		root.GET("/posts/:post_id", "posts#show").Helper("post")
	})
	require.NoError(t, r.Compile())

	var sb strings.Builder
	require.NoError(t, r.FprintRoutes(&sb))

	out := sb.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "posts#index")
	assert.Contains(t, lines[0], "/posts")
	assert.Contains(t, lines[1], "posts#show")
	assert.Contains(t, lines[1], "/posts/:post_id")
	t.Logf("route table:\n%s", out)
}

func TestFprintRoutesBeforeCompile(t *testing.T) {
	t.Parallel()

	r := MustNew()
	var sb strings.Builder
	assert.ErrorIs(t, r.FprintRoutes(&sb), ErrTableNotCompiled)
}
