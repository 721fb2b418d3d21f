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
	"mime"
	"net/http"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// Constraint is a predicate that must hold for a structurally matched route
// to be selected. Constraints attach to routes directly or to scopes, in
// which case every route declared below inherits them. A failing constraint
// does not stop dispatch; the scan continues with later routes.
//
// Constraints are built with the package constructors: [Where], [Format],
// [Accept], [ContentType], [Host], [Subdomain], and [Custom].
type Constraint interface {
	// matches reports whether the constraint holds for the candidate match.
	matches(st *matchState) bool
	// describe returns a short diagnostic form used in route dumps.
	describe() string
}

// matchState carries everything a constraint may inspect for one candidate:
// the live request, the format extension stripped from the path, and the
// parameter captures of the structural match under evaluation.
type matchState struct {
	req    *http.Request
	format string
	names  []string
	values []string
}

// param returns the captured value for name, or "" when absent.
func (st *matchState) param(name string) string {
	for i, n := range st.names {
		if n == name {
			return st.values[i]
		}
	}
	return ""
}

// paramConstraint anchors a regexp over a single captured parameter.
type paramConstraint struct {
	name    string
	pattern *regexp.Regexp
}

// Where returns a constraint requiring the captured parameter name to fully
// match the given regular expression. The expression is anchored on both
// ends, so `\d+` means "digits and nothing else". Panics on an invalid
// expression: constraints are declared at startup and a bad pattern is a
// programmer error.
func Where(name, expr string) Constraint {
	re, err := regexp.Compile("^" + expr + "$")
	if err != nil {
		panic(fmt.Sprintf("viaduct: invalid constraint pattern %q for %q: %v", expr, name, err))
	}
	return &paramConstraint{name: name, pattern: re}
}

func (c *paramConstraint) matches(st *matchState) bool {
	return c.pattern.MatchString(st.param(c.name))
}

func (c *paramConstraint) describe() string {
	return fmt.Sprintf("%s=~%s", c.name, c.pattern.String())
}

// formatConstraint requires the request path to end in ".ext". The dispatcher
// strips recognized extensions before segment matching and records the value,
// so the constraint only compares against that record.
type formatConstraint struct {
	ext string
}

// Format returns a constraint requiring the request path to carry the given
// format extension ("json" matches "/posts/1.json"). A route carrying a
// Format constraint never matches a path without the extension.
func Format(ext string) Constraint {
	return &formatConstraint{ext: strings.ToLower(strings.TrimPrefix(ext, "."))}
}

func (c *formatConstraint) matches(st *matchState) bool {
	return st.format == c.ext
}

func (c *formatConstraint) describe() string { return "format=" + c.ext }

// acceptConstraint checks the Accept header for compatibility with one MIME
// type. An absent header passes.
type acceptConstraint struct {
	mime string
}

// Accept returns a constraint requiring the request's Accept header to be
// compatible with the given MIME type: an exact match, a wildcard subtype
// ("text/*"), or "*/*". Requests without an Accept header pass.
func Accept(mimeType string) Constraint {
	return &acceptConstraint{mime: strings.ToLower(mimeType)}
}

func (c *acceptConstraint) matches(st *matchState) bool {
	header := st.req.Header.Get("Accept")
	if header == "" {
		return true
	}
	return acceptCompatible(header, c.mime)
}

func (c *acceptConstraint) describe() string { return "accept=" + c.mime }

// contentTypeConstraint checks the Content-Type of requests carrying a body.
type contentTypeConstraint struct {
	mime string
}

// ContentType returns a constraint requiring requests that carry a body to
// declare the given media type. Parameters such as charset are ignored.
// Requests without a body pass.
func ContentType(mimeType string) Constraint {
	return &contentTypeConstraint{mime: strings.ToLower(mimeType)}
}

func (c *contentTypeConstraint) matches(st *matchState) bool {
	if !requestHasBody(st.req) {
		return true
	}
	mt, _, err := mime.ParseMediaType(st.req.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == c.mime
}

func (c *contentTypeConstraint) describe() string { return "content-type=" + c.mime }

// requestHasBody reports whether the request declares a body, via a positive
// Content-Length or a chunked transfer encoding.
func requestHasBody(req *http.Request) bool {
	return req.ContentLength > 0 || len(req.TransferEncoding) > 0
}

// hostConstraint matches the Host header against a glob pattern.
type hostConstraint struct {
	raw     string
	pattern glob.Glob
}

// Host returns a constraint matching the request's Host header (port
// stripped) against a glob pattern with "." as separator, so
// "*.example.com" matches "api.example.com" but not "a.b.example.com".
// Plain strings match exactly. Panics on an invalid pattern.
func Host(pattern string) Constraint {
	g, err := glob.Compile(strings.ToLower(pattern), '.')
	if err != nil {
		panic(fmt.Sprintf("viaduct: invalid host pattern %q: %v", pattern, err))
	}
	return &hostConstraint{raw: pattern, pattern: g}
}

func (c *hostConstraint) matches(st *matchState) bool {
	return c.pattern.Match(requestHost(st.req))
}

func (c *hostConstraint) describe() string { return "host=" + c.raw }

// subdomainConstraint matches the leading host label against a glob pattern.
type subdomainConstraint struct {
	raw     string
	pattern glob.Glob
}

// Subdomain returns a constraint matching the leading label of the request
// host ("api" for "api.example.com") against a glob pattern. Hosts with
// fewer than three labels have an empty subdomain and only match an empty
// or fully wildcarded pattern. Panics on an invalid pattern.
func Subdomain(pattern string) Constraint {
	g, err := glob.Compile(strings.ToLower(pattern), '.')
	if err != nil {
		panic(fmt.Sprintf("viaduct: invalid subdomain pattern %q: %v", pattern, err))
	}
	return &subdomainConstraint{raw: pattern, pattern: g}
}

func (c *subdomainConstraint) matches(st *matchState) bool {
	return c.pattern.Match(requestSubdomain(st.req))
}

func (c *subdomainConstraint) describe() string { return "subdomain=" + c.raw }

// requestHost returns the lowercased request host with any port removed.
func requestHost(req *http.Request) string {
	return strings.ToLower(stripHostPort(req.Host))
}

// requestSubdomain returns the leading label of hosts with at least three
// labels, "" otherwise. "api.example.com" yields "api"; "example.com" and
// "localhost" yield "".
func requestSubdomain(req *http.Request) string {
	host := requestHost(req)
	if strings.Count(host, ".") < 2 {
		return ""
	}
	return host[:strings.IndexByte(host, '.')]
}

// customConstraint wraps an arbitrary request predicate.
type customConstraint struct {
	fn func(*http.Request) bool
}

// Custom returns a constraint evaluating an arbitrary predicate over the
// request. It is the extension point for conditions the built-in variants
// do not cover, such as feature flags or authentication state.
func Custom(fn func(*http.Request) bool) Constraint {
	return &customConstraint{fn: fn}
}

func (c *customConstraint) matches(st *matchState) bool { return c.fn(st.req) }

func (c *customConstraint) describe() string { return "custom" }
