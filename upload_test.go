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
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// multipartRequest builds a POST carrying the given files, each a
// field/filename/content triple.
func multipartRequest(t *testing.T, files ...[3]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, f[0], f[1]))
		h.Set("Content-Type", "text/plain")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = io.WriteString(part, f[2])
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestFileUpload(t *testing.T) {
	t.Parallel()

	c := NewContext(httptest.NewRecorder(),
		multipartRequest(t, [3]string{"avatar", "photo.png", "fake png bytes"}))

	f, err := c.File("avatar")
	require.NoError(t, err)

	assert.Equal(t, "photo.png", f.Name)
	assert.Equal(t, int64(len("fake png bytes")), f.Size)
	assert.Equal(t, "text/plain", f.ContentType)
	assert.Equal(t, ".png", f.Ext())

	data, err := f.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "fake png bytes", string(data))
}

func TestFileMissingField(t *testing.T) {
	t.Parallel()

	c := NewContext(httptest.NewRecorder(),
		multipartRequest(t, [3]string{"avatar", "photo.png", "x"}))

	_, err := c.File("banner")
	assert.ErrorIs(t, err, http.ErrMissingFile)
}

func TestFilenameSanitized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sent string
		want string
	}{
		{"../../etc/passwd", "passwd"},
		{`..\..\boot.ini`, ".._.._boot.ini"},
		{"plain.txt", "plain.txt"},
	}
	for _, tt := range tests {
		c := NewContext(httptest.NewRecorder(),
			multipartRequest(t, [3]string{"doc", tt.sent, "content"}))

		f, err := c.File("doc")
		require.NoError(t, err)
		assert.Equal(t, tt.want, f.Name, "sent %q", tt.sent)
		assert.NotContains(t, f.Name, "/")
		assert.NotContains(t, f.Name, `\`)
	}
}

func TestFilesMultiple(t *testing.T) {
	t.Parallel()

	c := NewContext(httptest.NewRecorder(), multipartRequest(t,
		[3]string{"docs", "a.txt", "first"},
		[3]string{"docs", "b.txt", "second"},
	))

	files, err := c.Files("docs")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.txt", files[0].Name)
	assert.Equal(t, "b.txt", files[1].Name)

	_, err = c.Files("missing")
	assert.ErrorIs(t, err, http.ErrMissingFile)
}

func TestFileOpen(t *testing.T) {
	t.Parallel()

	c := NewContext(httptest.NewRecorder(),
		multipartRequest(t, [3]string{"doc", "a.txt", "streamed"}))

	f, err := c.File("doc")
	require.NoError(t, err)

	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "streamed", string(data))
}

func TestFileSave(t *testing.T) {
	t.Parallel()

	c := NewContext(httptest.NewRecorder(),
		multipartRequest(t, [3]string{"doc", "report.txt", "saved content"}))

	f, err := c.File("doc")
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "nested", "dir", f.Name)
	require.NoError(t, f.Save(dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "saved content", string(data))
}

func TestUploadThroughRoute(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Draw(func(root *Scope) {
		root.POST("/upload", func(c *Context) {
			f, err := c.File("doc")
			if err != nil {
				c.WriteErrorResponse(http.StatusBadRequest, "doc required")
				return
			}
			c.Stringf(http.StatusCreated, "%s (%d bytes)", f.Name, f.Size)
		}).ContentType("multipart/form-data")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, [3]string{"doc", "notes.md", "hello"}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "notes.md (5 bytes)", w.Body.String())
}
