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

// Package benchmarks compares viaduct's dispatcher against other routers on
// the same three-route table. Run with:
//
//	go test -bench=. -benchmem ./benchmarks
//
// Viaduct scans declaration-ordered route lists instead of walking a tree,
// so these numbers are most interesting at small-to-medium table sizes;
// BenchmarkViaductWideTable shows the scan cost growing with table width.
package benchmarks

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/labstack/echo/v4"

	viaduct "github.com/viaduct-http/viaduct"
)

func BenchmarkViaduct(b *testing.B) {
	r := viaduct.MustNew()
	r.GET("/", func(c *viaduct.Context) {
		c.String(http.StatusOK, "Hello")
	})
	r.GET("/users/:id", func(c *viaduct.Context) {
		c.Stringf(http.StatusOK, "User: %s", c.Param("id"))
	})
	r.GET("/users/:id/posts/:post_id", func(c *viaduct.Context) {
		c.Stringf(http.StatusOK, "User: %s, Post: %s", c.Param("id"), c.Param("post_id"))
	})
	r.MustCompile()

	req := httptest.NewRequest(http.MethodGet, "/users/123", nil)
	w := httptest.NewRecorder()

	b.ResetTimer()
	for b.Loop() {
		w.Body.Reset()
		w.Code = 0
		w.Flushed = false
		r.ServeHTTP(w, req)
	}
}

// BenchmarkViaductStatic measures a match with no captures, the cheapest
// path through the dispatcher.
func BenchmarkViaductStatic(b *testing.B) {
	r := viaduct.MustNew()
	staticResponse := []byte("Hello, World!")
	r.GET("/hello", func(c *viaduct.Context) {
		c.Response.WriteHeader(http.StatusOK)
		c.Response.Write(staticResponse)
	})
	r.MustCompile()

	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	w := httptest.NewRecorder()

	b.ResetTimer()
	for b.Loop() {
		w.Body.Reset()
		w.Code = 0
		w.Flushed = false
		r.ServeHTTP(w, req)
	}
}

// BenchmarkViaductWideTable dispatches against a 200-route table where the
// match sits at the end of its verb list, the dispatcher's worst case.
func BenchmarkViaductWideTable(b *testing.B) {
	r := viaduct.MustNew()
	for i := range 200 {
		path := fmt.Sprintf("/api/resource%d/:id", i)
		r.GET(path, func(c *viaduct.Context) {
			c.String(http.StatusOK, c.Param("id"))
		})
	}
	r.MustCompile()

	req := httptest.NewRequest(http.MethodGet, "/api/resource199/42", nil)
	w := httptest.NewRecorder()

	b.ResetTimer()
	for b.Loop() {
		w.Body.Reset()
		w.Code = 0
		w.Flushed = false
		r.ServeHTTP(w, req)
	}
}

func BenchmarkStandardMux(b *testing.B) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Hello"))
	})
	mux.HandleFunc("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User: " + r.PathValue("id")))
	})
	mux.HandleFunc("/users/{id}/posts/{post_id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User: " + r.PathValue("id") + ", Post: " + r.PathValue("post_id")))
	})

	req := httptest.NewRequest(http.MethodGet, "/users/123", nil)
	w := httptest.NewRecorder()

	b.ResetTimer()
	for b.Loop() {
		w.Body.Reset()
		w.Code = 0
		w.Flushed = false
		mux.ServeHTTP(w, req)
	}
}

func BenchmarkGin(b *testing.B) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello")
	})
	r.GET("/users/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "User: %s", c.Param("id"))
	})
	r.GET("/users/:id/posts/:post_id", func(c *gin.Context) {
		c.String(http.StatusOK, "User: %s, Post: %s", c.Param("id"), c.Param("post_id"))
	})

	req := httptest.NewRequest(http.MethodGet, "/users/123", nil)
	w := httptest.NewRecorder()

	b.ResetTimer()
	for b.Loop() {
		w.Body.Reset()
		w.Code = 0
		w.Flushed = false
		r.ServeHTTP(w, req)
	}
}

func BenchmarkEcho(b *testing.B) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Hello")
	})
	e.GET("/users/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "User: "+c.Param("id"))
	})
	e.GET("/users/:id/posts/:post_id", func(c echo.Context) error {
		return c.String(http.StatusOK, "User: "+c.Param("id")+", Post: "+c.Param("post_id"))
	})

	req := httptest.NewRequest(http.MethodGet, "/users/123", nil)
	w := httptest.NewRecorder()

	b.ResetTimer()
	for b.Loop() {
		w.Body.Reset()
		w.Code = 0
		w.Flushed = false
		e.ServeHTTP(w, req)
	}
}
