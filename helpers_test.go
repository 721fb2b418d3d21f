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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoRouteName answers 200 with the helper name of the matched route.
func echoRouteName(c *Context) {
	c.String(http.StatusOK, c.RouteName())
}

func TestHelperRoundTrip(t *testing.T) {
	t.Parallel()

	// Building a path from a helper and dispatching it must land on the
	// route that registered the helper, for every registered helper.
	r := MustNew()
	r.Draw(func(root *Scope) {
		root.Root(echoRouteName)
		root.GET("/about", echoRouteName).Helper("about")
		root.GET("/files/*path", echoRouteName).Helper("file")
		root.Named("users", func(users *Scope) {
			users.GET("/users/:id", echoRouteName).Helper("show")
		})
		root.Namespace("admin", func(admin *Scope) {
			admin.GET("/stats", echoRouteName).Helper("stats")
		})
	})
	require.NoError(t, r.Compile())

	helpers, err := r.Helpers()
	require.NoError(t, err)

	for _, name := range helpers.Names() {
		required, err := helpers.RequiredParams(name)
		require.NoError(t, err)

		params := Params{}
		for _, p := range required {
			params[p] = "7"
		}
		path, err := helpers.Path(name, params)
		require.NoError(t, err, "helper %q", name)

		w := get(r, path)
		assert.Equal(t, http.StatusOK, w.Code, "helper %q built %q", name, path)
		assert.Equal(t, name, w.Body.String(), "helper %q built %q", name, path)
	}
}

func TestHelperRoundTripIgnoresExtraQuery(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Draw(func(root *Scope) {
		root.Named("users", func(users *Scope) {
			users.GET("/users/:id", echoRouteName).Helper("show")
		})
	})
	require.NoError(t, r.Compile())

	path, err := r.PathFor("users_show", Params{"id": "7", "ref": "mail"})
	require.NoError(t, err)
	assert.Equal(t, "/users/7?ref=mail", path)

	w := get(r, path)
	assert.Equal(t, "users_show", w.Body.String(), "query extras must not affect matching")
}

func TestHelperNameComposition(t *testing.T) {
	t.Parallel()

	noop := func(c *Context) { c.Status(http.StatusOK) }

	r := MustNew()
	r.Draw(func(root *Scope) {
		root.Named("users", func(users *Scope) {
			users.GET("/users", noop).Helper("index")
			users.GET("/users/:id", noop).Helper("show")
			users.GET("/users/:id/edit", noop).HelperPrefix("edit")
			users.GET("/users/:id", noop).HelperPrefix("show")
		})
		root.GET("/posts/feed", noop).Helper("posts").HelperSuffix("feed")
	})
	require.NoError(t, r.Compile())

	helpers, err := r.Helpers()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"edit_user",
		"posts_feed",
		"show_user",
		"users_index",
		"users_show",
	}, helpers.Names())
}

func TestRootHelperBuildsSlash(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Draw(func(root *Scope) {
		root.Root(func(c *Context) { c.Status(http.StatusOK) })
	})
	require.NoError(t, r.Compile())

	path, err := r.PathFor("root", nil)
	require.NoError(t, err)
	assert.Equal(t, "/", path)
}

func TestPathEscapesParamValues(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Draw(func(root *Scope) {
		root.GET("/tags/:name", echoRouteName).Helper("tag")
	})
	require.NoError(t, r.Compile())

	path, err := r.PathFor("tag", Params{"name": "go tips/tricks"})
	require.NoError(t, err)
	assert.Equal(t, "/tags/go%20tips%2Ftricks", path)
}

func TestPathEscapesSplatPerSegment(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Draw(func(root *Scope) {
		root.GET("/files/*path", echoRouteName).Helper("file")
	})
	require.NoError(t, r.Compile())

	path, err := r.PathFor("file", Params{"path": "docs/read me.txt"})
	require.NoError(t, err)
	assert.Equal(t, "/files/docs/read%20me.txt", path,
		"wildcard values keep their slashes but escape each segment")
}

func TestPathFailsOnMissingParam(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Draw(func(root *Scope) {
		root.GET("/users/:id", echoRouteName).Helper("user")
	})
	require.NoError(t, r.Compile())

	_, err := r.PathFor("user", Params{"ref": "mail"})
	require.ErrorIs(t, err, ErrMissingRouteParameter)
	assert.Contains(t, err.Error(), `"id"`)
}

func TestPathFailsOnUnknownHelper(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Draw(func(root *Scope) {
		root.GET("/", echoRouteName).Helper("root")
	})
	require.NoError(t, r.Compile())

	_, err := r.PathFor("missing", nil)
	assert.ErrorIs(t, err, ErrHelperNotFound)
}

func TestExtraParamsBecomeSortedQuery(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Draw(func(root *Scope) {
		root.GET("/posts/:post_id", echoRouteName).Helper("post")
	})
	require.NoError(t, r.Compile())

	path, err := r.PathFor("post", Params{"post_id": "7", "page": "2", "dir": "asc"})
	require.NoError(t, err)
	assert.Equal(t, "/posts/7?dir=asc&page=2", path)
}

func TestURLRequiresOrigin(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Draw(func(root *Scope) {
		root.GET("/posts", echoRouteName).Helper("posts")
	})
	require.NoError(t, r.Compile())

	_, err := r.URLFor("posts", nil)
	assert.ErrorIs(t, err, ErrMissingOrigin)
}

func TestURLUsesConfiguredOrigin(t *testing.T) {
	t.Parallel()

	r := MustNew(WithOrigin("https://example.com/"))
	r.Draw(func(root *Scope) {
		root.GET("/posts/:post_id", echoRouteName).Helper("post")
	})
	require.NoError(t, r.Compile())

	u, err := r.URLFor("post", Params{"post_id": "7"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/posts/7", u)
}

func TestRequiredParams(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Draw(func(root *Scope) {
		root.GET("/posts/:post_id/comments/:comment_id", echoRouteName).Helper("post_comment")
	})
	require.NoError(t, r.Compile())

	helpers, err := r.Helpers()
	require.NoError(t, err)

	params, err := helpers.RequiredParams("post_comment")
	require.NoError(t, err)
	assert.Equal(t, []string{"post_id", "comment_id"}, params)
}

func TestDuplicateHelperIsBuildError(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Draw(func(root *Scope) {
		root.GET("/a", echoRouteName).Helper("page")
		root.GET("/b", echoRouteName).Helper("page")
	})

	err := r.Compile()
	require.ErrorIs(t, err, ErrDuplicateHelper)
	assert.Contains(t, err.Error(), `"page"`)
}

func TestHelpersBeforeCompileError(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Draw(func(root *Scope) {
		root.GET("/", echoRouteName).Helper("root")
	})

	_, err := r.Helpers()
	assert.ErrorIs(t, err, ErrTableNotCompiled)

	_, err = r.PathFor("root", nil)
	assert.ErrorIs(t, err, ErrTableNotCompiled)
}
