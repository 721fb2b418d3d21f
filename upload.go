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
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// defaultMultipartMemory caps how much of a multipart body is held in memory
// before spilling to temp files. Matches net/http's own default.
const defaultMultipartMemory = 32 << 20

// File is an uploaded multipart file. The filename is reduced to its base
// name so a hostile Content-Disposition cannot steer writes outside the
// upload directory.
type File struct {
	// Name is the client-supplied filename with directory components removed.
	Name string

	// Size is the upload size in bytes.
	Size int64

	// ContentType is the part's declared MIME type, defaulting to
	// application/octet-stream.
	ContentType string

	header *multipart.FileHeader
}

func newFile(fh *multipart.FileHeader) *File {
	name := filepath.Base(fh.Filename)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &File{
		Name:        name,
		Size:        fh.Size,
		ContentType: contentType,
		header:      fh,
	}
}

// File returns the first uploaded file for the named form field, parsing the
// multipart body on first use.
//
//	avatar, err := c.File("avatar")
//	if err != nil {
//	    c.WriteErrorResponse(http.StatusBadRequest, "avatar required")
//	    return
//	}
//	if err := avatar.Save(filepath.Join(dir, avatar.Name)); err != nil {
//	    ...
//	}
func (c *Context) File(name string) (*File, error) {
	_, fh, err := c.Request.FormFile(name)
	if err != nil {
		return nil, fmt.Errorf("form file %q: %w", name, err)
	}
	return newFile(fh), nil
}

// Files returns every uploaded file for the named form field. Use this for
// <input type="file" multiple> style uploads.
func (c *Context) Files(name string) ([]*File, error) {
	if c.Request.MultipartForm == nil {
		if err := c.Request.ParseMultipartForm(defaultMultipartMemory); err != nil {
			return nil, fmt.Errorf("parsing multipart form: %w", err)
		}
	}

	headers := c.Request.MultipartForm.File[name]
	if len(headers) == 0 {
		return nil, fmt.Errorf("form file %q: %w", name, http.ErrMissingFile)
	}

	files := make([]*File, 0, len(headers))
	for _, fh := range headers {
		files = append(files, newFile(fh))
	}
	return files, nil
}

// Bytes reads the whole upload into memory. Prefer Open for large files.
func (f *File) Bytes() ([]byte, error) {
	src, err := f.header.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	return io.ReadAll(src)
}

// Open returns a reader over the upload's contents. The caller closes it.
func (f *File) Open() (io.ReadCloser, error) {
	src, err := f.header.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	return src, nil
}

// Save streams the upload to dst, creating parent directories as needed.
// The path is cleaned, but callers should still confine dst to their upload
// root before trusting it.
func (f *File) Save(dst string) (err error) {
	dst = filepath.Clean(dst)

	src, err := f.header.Open()
	if err != nil {
		return fmt.Errorf("opening upload: %w", err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing upload: %w", cerr)
		}
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating upload directory: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer func() {
		// Close flushes buffered data; a failure here means the file on disk
		// may be truncated even though Copy reported success.
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", dst, cerr)
		}
	}()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}

	return nil
}

// Ext returns the filename extension including the dot, or "".
func (f *File) Ext() string {
	return filepath.Ext(f.Name)
}
