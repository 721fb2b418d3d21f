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
	"net/url"
	"sort"
	"strings"
)

// Params supplies values for helper path building. Keys matching the
// route's captured parameters fill the pattern; every other key is
// appended as a query string parameter.
type Params map[string]string

// helperEntry is one registered helper: a composed name bound to a route's
// full pattern.
type helperEntry struct {
	name    string
	pattern pattern
	verbs   []string
}

// Helpers maps composed helper names to URL-building functions. It is
// populated during Compile and immutable afterwards, safe for concurrent
// use without locking.
type Helpers struct {
	entries map[string]*helperEntry
	origin  string
}

func newHelpers(origin string) *Helpers {
	return &Helpers{
		entries: make(map[string]*helperEntry),
		origin:  strings.TrimSuffix(origin, "/"),
	}
}

// register binds a composed helper name, rejecting duplicates.
func (h *Helpers) register(name string, pat pattern, verbs []string) error {
	if _, exists := h.entries[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateHelper, name)
	}
	h.entries[name] = &helperEntry{name: name, pattern: pat, verbs: verbs}
	return nil
}

// Path builds the path for the named helper. Every captured parameter of
// the route must be present in params or the build fails; extra params are
// silently appended as a sorted query string. Values are path-escaped.
//
//	h.Path("post", viaduct.Params{"post_id": "7", "ref": "mail"})
//	→ "/posts/7?ref=mail"
func (h *Helpers) Path(name string, params Params) (string, error) {
	entry, ok := h.entries[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrHelperNotFound, name)
	}

	var b strings.Builder
	used := make(map[string]bool, len(entry.pattern.params))
	for _, seg := range entry.pattern.segments {
		switch seg.kind {
		case segLiteral:
			b.WriteByte('/')
			b.WriteString(seg.value)
		case segParam:
			value, ok := params[seg.value]
			if !ok {
				return "", fmt.Errorf("%w: %q for helper %q", ErrMissingRouteParameter, seg.value, name)
			}
			used[seg.value] = true
			b.WriteByte('/')
			b.WriteString(url.PathEscape(value))
		case segSplat:
			value, ok := params[seg.value]
			if !ok {
				return "", fmt.Errorf("%w: %q for helper %q", ErrMissingRouteParameter, seg.value, name)
			}
			used[seg.value] = true
			b.WriteByte('/')
			b.WriteString(escapeSplat(value))
		}
	}
	if b.Len() == 0 {
		b.WriteByte('/')
	}

	if query := encodeExtras(params, used); query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}
	return b.String(), nil
}

// URL builds an absolute URL for the named helper using the configured
// origin. Without an origin (WithOrigin) it fails; inside a request,
// Context.URLFor derives the origin from the request instead.
func (h *Helpers) URL(name string, params Params) (string, error) {
	if h.origin == "" {
		return "", fmt.Errorf("%w (helper %q)", ErrMissingOrigin, name)
	}
	path, err := h.Path(name, params)
	if err != nil {
		return "", err
	}
	return h.origin + path, nil
}

// urlWithOrigin is URL with an explicit origin, for request-derived bases.
func (h *Helpers) urlWithOrigin(origin, name string, params Params) (string, error) {
	path, err := h.Path(name, params)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(origin, "/") + path, nil
}

// Names returns the registered helper names, sorted.
func (h *Helpers) Names() []string {
	names := make([]string, 0, len(h.entries))
	for name := range h.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RequiredParams returns the parameter names the helper's pattern captures.
func (h *Helpers) RequiredParams(name string) ([]string, error) {
	entry, ok := h.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrHelperNotFound, name)
	}
	params := make([]string, len(entry.pattern.params))
	copy(params, entry.pattern.params)
	return params, nil
}

// encodeExtras renders the params not consumed by the pattern as a query
// string, sorted by key (url.Values.Encode ordering).
func encodeExtras(params Params, used map[string]bool) string {
	if len(params) == len(used) {
		return ""
	}
	values := url.Values{}
	for key, value := range params {
		if !used[key] {
			values.Set(key, value)
		}
	}
	return values.Encode()
}

// escapeSplat escapes a wildcard capture segment by segment, preserving the
// slashes that make it a multi-segment value.
func escapeSplat(value string) string {
	parts := strings.Split(value, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
