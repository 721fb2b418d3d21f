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

package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viaduct-http/viaduct"
)

func run(handler viaduct.HandlerFunc, req *http.Request) (*viaduct.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c := viaduct.NewContext(w, req)
	handler(c)
	return c, w
}

func TestGeneratesUUIDByDefault(t *testing.T) {
	t.Parallel()

	c, w := run(New(), httptest.NewRequest(http.MethodGet, "/", nil))

	id := w.Header().Get("X-Request-ID")
	require.NotEmpty(t, id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err, "default generator produces UUIDs")
	assert.Equal(t, id, Get(c), "context and response header carry the same ID")
}

func TestReusesClientSuppliedID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied-42")

	c, w := run(New(), req)

	assert.Equal(t, "client-supplied-42", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "client-supplied-42", Get(c))
}

func TestRejectsClientIDWhenDisallowed(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "untrusted")

	_, w := run(New(WithAllowClientID(false)), req)

	id := w.Header().Get("X-Request-ID")
	require.NotEmpty(t, id)
	assert.NotEqual(t, "untrusted", id)
}

func TestCustomHeader(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "corr-7")

	c, w := run(New(WithHeader("X-Correlation-ID")), req)

	assert.Equal(t, "corr-7", w.Header().Get("X-Correlation-ID"))
	assert.Empty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "corr-7", Get(c))
}

func TestCustomGenerator(t *testing.T) {
	t.Parallel()

	sequence := 0
	handler := New(WithGenerator(func() string {
		sequence++
		return "seq-1"
	}))

	_, w := run(handler, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "seq-1", w.Header().Get("X-Request-ID"))
	assert.Equal(t, 1, sequence)
}

func TestNilGeneratorKeepsDefault(t *testing.T) {
	t.Parallel()

	_, w := run(New(WithGenerator(nil)), httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestGetWithoutMiddleware(t *testing.T) {
	t.Parallel()

	c := viaduct.NewContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, Get(c))
}

func TestIDFlowsThroughRouterChain(t *testing.T) {
	t.Parallel()

	r := viaduct.MustNew()
	r.Use(New())
	r.Draw(func(root *viaduct.Scope) {
		root.GET("/whoami", func(c *viaduct.Context) {
			c.String(http.StatusOK, Get(c))
		})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	require.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String(),
		"downstream handlers see the same ID the response advertises")
}
