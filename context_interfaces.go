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

// ParamReader is the read-only view of a Context: path parameters, query
// strings, form fields, and cookies. Handlers that only inspect the request
// can accept a ParamReader instead of a *Context, which keeps them trivial
// to unit-test with a fake.
//
//	func lookupUser(r viaduct.ParamReader) (string, error) {
//	    id := r.Param("id")
//	    ...
//	}
type ParamReader interface {
	// Param returns the captured value of a path parameter, or "" when the
	// pattern has no such capture.
	Param(key string) string

	// Query returns the first value of a URL query parameter, or "".
	Query(key string) string

	// QueryDefault returns the first value of a URL query parameter, or def
	// when the parameter is absent.
	QueryDefault(key, def string) string

	// FormValue returns a form field from the request body, parsing
	// urlencoded or multipart bodies on first use.
	FormValue(key string) string

	// FormValueDefault returns a form field, or def when the field is absent.
	FormValueDefault(key, def string) string

	// AllParams returns a copy of every captured path parameter.
	AllParams() map[string]string

	// AllQueries returns every query parameter, last value winning.
	AllQueries() map[string]string

	// GetCookie returns the named cookie's value.
	GetCookie(name string) (string, error)
}

// ResponseWriter is the write-only view of a Context. Every body-producing
// method returns an error; callers decide whether a failed write is worth
// logging or aborting over.
type ResponseWriter interface {
	JSON(code int, obj any) error
	YAML(code int, obj any) error
	String(code int, value string) error
	Stringf(code int, format string, values ...any) error
	HTML(code int, html string) error
	Data(code int, contentType string, data []byte) error

	Status(code int)
	Header(key, value string)
	Redirect(code int, location string)
	NoContent()
	SetCookie(name, value string, maxAge int, path, domain string, secure, httpOnly bool)
}

// ContextReader extends ParamReader with the route metadata the dispatcher
// fills in after a match: which pattern matched, what the route is named,
// and the format suffix negotiated from the path.
type ContextReader interface {
	ParamReader

	// RoutePattern returns the matched declaration pattern, for example
	// "/posts/:id", or a sentinel such as "_not_found".
	RoutePattern() string

	// RouteName returns the matched route's helper name, or "".
	RouteName() string

	// Format returns the format suffix captured from the path ("json" for
	// /posts/1.json), or "".
	Format() string
}

// ContextWriter extends ResponseWriter with header conveniences that do not
// produce a body.
type ContextWriter interface {
	ResponseWriter

	// ContentType sets the Content-Type header.
	ContentType(value string)

	// AppendHeader adds a value to a header instead of replacing it.
	AppendHeader(key, value string)

	// Location sets the Location header.
	Location(url string)

	// Vary appends field names to the Vary header.
	Vary(fields ...string)
}

// Context satisfies all four views.
var (
	_ ParamReader    = (*Context)(nil)
	_ ResponseWriter = (*Context)(nil)
	_ ContextReader  = (*Context)(nil)
	_ ContextWriter  = (*Context)(nil)
)
