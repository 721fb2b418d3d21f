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

//go:build !integration

package viaduct

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

// fuzzRequest builds a request without httptest.NewRequest, which panics
// on URLs that url.Parse rejects. Inputs that are not even parseable are
// not interesting here; dispatch never sees them.
func fuzzRequest(method, rawPath string) (*http.Request, bool) {
	u, err := url.ParseRequestURI(rawPath)
	if err != nil {
		return nil, false
	}
	return &http.Request{
		Method:     method,
		URL:        u,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     make(http.Header),
		Host:       "fuzz.test",
		RemoteAddr: "192.0.2.1:1234",
	}, true
}

// FuzzDispatch throws arbitrary methods and paths at a frozen route table.
// Dispatch must never panic and must always answer with a real HTTP status.
func FuzzDispatch(f *testing.F) {
	r := MustNew()
	r.Draw(func(root *Scope) {
		root.Root(func(c *Context) { c.String(http.StatusOK, "home") })
		root.GET("/posts", func(c *Context) { c.String(http.StatusOK, "index") })
		root.POST("/posts", func(c *Context) { c.Status(http.StatusCreated) })
		root.GET("/posts/:id", func(c *Context) {
			c.String(http.StatusOK, c.Param("id"))
		}).Where("id", `\d+`)
		root.GET("/posts/:slug", func(c *Context) {
			c.String(http.StatusOK, c.Param("slug"))
		})
		root.DELETE("/posts/:id", func(c *Context) { c.Status(http.StatusNoContent) })
		root.GET("/search", func(c *Context) {
			c.String(http.StatusOK, c.Param("format"))
		}).Format("json")
		root.GET("/files/*path", func(c *Context) {
			c.String(http.StatusOK, c.Param("path"))
		})
	})
	r.MustCompile()

	seeds := []struct {
		method, path string
	}{
		{"GET", "/"},
		{"GET", "/posts"},
		{"POST", "/posts"},
		{"GET", "/posts/123"},
		{"GET", "/posts/hello-world"},
		{"DELETE", "/posts/9"},
		{"PUT", "/posts/9"},
		{"HEAD", "/posts/123"},
		{"GET", "/search.json"},
		{"GET", "/search.JSON"},
		{"GET", "/search"},
		{"GET", "/search.xml"},
		{"GET", "/files/a/b/c.txt"},
		{"GET", "/files/"},
		{"GET", "/posts/123?page=2"},
		{"GET", "/posts/%41%42"},
		{"GET", "/posts/../secrets"},
		{"GET", "//posts//1"},
		{"OPTIONS", "/posts"},
		{"TRACE", "/"},
		{"get", "/posts/1"},
		{"", "/"},
		{"GET", "/nope/nope/nope"},
	}
	for _, s := range seeds {
		f.Add(s.method, s.path)
	}

	f.Fuzz(func(t *testing.T, method, path string) {
		req, ok := fuzzRequest(method, path)
		if !ok {
			return
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code < 100 || w.Code >= 600 {
			t.Errorf("status %d for %q %q", w.Code, method, path)
		}
	})
}

// FuzzRouteDeclaration registers arbitrary patterns. Malformed patterns
// must surface as Compile errors, never as panics, and a router that does
// compile must dispatch.
func FuzzRouteDeclaration(f *testing.F) {
	for _, pattern := range []string{
		"/",
		"",
		"/users",
		"/users/:id",
		"/users/:id/posts/:post_id",
		"/files/*path",
		"no-leading-slash",
		"/:",
		"/*",
		"/a//b",
		"/a/:x/:x",
		"/*s/more",
		"/a/:b/*c",
		"/v1/:v/:w/:x/:y/:z/:a/:b/:c/:d",
		"/with.dots/:id",
		"/UPPER/:Case",
		"/trailing/",
		"//",
		"/:id/:id",
	} {
		f.Add(pattern)
	}

	f.Fuzz(func(t *testing.T, pattern string) {
		r := MustNew()
		r.GET(pattern, func(c *Context) { c.Status(http.StatusOK) })

		if err := r.Compile(); err != nil {
			return
		}

		req, ok := fuzzRequest(http.MethodGet, "/")
		if !ok {
			t.Fatal("static request must parse")
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code < 100 || w.Code >= 600 {
			t.Errorf("status %d after declaring %q", w.Code, pattern)
		}
	})
}

// FuzzHelperPath feeds arbitrary helper names and parameter values into
// path generation. Unknown names and missing params must come back as
// errors; successful builds must produce rooted paths.
func FuzzHelperPath(f *testing.F) {
	r := MustNew()
	r.Draw(func(root *Scope) {
		root.GET("/users/:id", func(c *Context) { c.Status(http.StatusOK) }).Helper("users_show")
		root.GET("/files/*path", func(c *Context) { c.Status(http.StatusOK) }).Helper("files")
	})
	r.MustCompile()
	helpers, err := r.Helpers()
	if err != nil {
		f.Fatal(err)
	}

	seeds := []struct {
		name, value string
	}{
		{"users_show", "42"},
		{"users_show", ""},
		{"users_show", "a/b"},
		{"users_show", "hello world"},
		{"users_show", "%2F"},
		{"users_show", "著者"},
		{"files", "docs/read me.txt"},
		{"files", "////"},
		{"no_such_helper", "42"},
		{"", ""},
	}
	for _, s := range seeds {
		f.Add(s.name, s.value)
	}

	f.Fuzz(func(t *testing.T, name, value string) {
		// Unknown names must come back as errors, never panics.
		_, _ = helpers.Path(name, nil)

		path, err := helpers.Path("users_show", Params{"id": value})
		if err == nil && (path == "" || path[0] != '/') {
			t.Errorf("unrooted path %q for id %q", path, value)
		}

		path, err = helpers.Path("files", Params{"path": value})
		if err == nil && (path == "" || path[0] != '/') {
			t.Errorf("unrooted splat path %q for %q", path, value)
		}
	})
}
