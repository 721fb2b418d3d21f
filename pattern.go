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
	"strings"
)

// segmentKind identifies how one pattern segment participates in matching.
type segmentKind uint8

const (
	// segLiteral matches the path segment byte-for-byte.
	segLiteral segmentKind = iota
	// segParam captures exactly one non-empty, non-slash path segment.
	segParam
	// segSplat captures the remainder of the path, slashes included.
	// Must be the final segment of a pattern.
	segSplat
)

// segment is one element of a parsed path pattern.
type segment struct {
	value string // literal text, or capture name for segParam/segSplat
	kind  segmentKind
}

// pattern is a parsed path pattern. The zero value matches only "/".
type pattern struct {
	raw      string
	segments []segment
	params   []string // capture names in positional order
	hasSplat bool
}

// joinPatterns concatenates a scope prefix and a route pattern into one
// normalized pattern string. Both sides may be empty or "/".
func joinPatterns(prefix, path string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if path == "" || path == "/" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return prefix + path
}

// parsePattern parses a full pattern string into segments. Parameter
// segments are introduced by ":" and wildcard segments by "*"; a wildcard
// must be the last segment. Duplicate capture names are rejected so that
// one request cannot bind the same parameter twice.
func parsePattern(raw string) (pattern, error) {
	p := pattern{raw: raw}
	if raw == "" || raw == "/" {
		p.raw = "/"
		return p, nil
	}
	if !strings.HasPrefix(raw, "/") {
		return p, fmt.Errorf("%w: %q must begin with a slash", ErrInvalidPattern, raw)
	}

	parts := strings.Split(strings.Trim(raw, "/"), "/")
	p.segments = make([]segment, 0, len(parts))
	for i, part := range parts {
		switch {
		case part == "":
			return p, fmt.Errorf("%w: %q contains an empty segment", ErrInvalidPattern, raw)
		case strings.HasPrefix(part, ":"):
			name := part[1:]
			if name == "" {
				return p, fmt.Errorf("%w: %q has an unnamed parameter", ErrInvalidPattern, raw)
			}
			if containsString(p.params, name) {
				return p, fmt.Errorf("%w: %q in %q", ErrDuplicateParameter, name, raw)
			}
			p.segments = append(p.segments, segment{kind: segParam, value: name})
			p.params = append(p.params, name)
		case strings.HasPrefix(part, "*"):
			name := part[1:]
			if name == "" {
				return p, fmt.Errorf("%w: %q has an unnamed wildcard", ErrInvalidPattern, raw)
			}
			if i != len(parts)-1 {
				return p, fmt.Errorf("%w: wildcard %q must be the final segment of %q", ErrInvalidPattern, part, raw)
			}
			if containsString(p.params, name) {
				return p, fmt.Errorf("%w: %q in %q", ErrDuplicateParameter, name, raw)
			}
			p.segments = append(p.segments, segment{kind: segSplat, value: name})
			p.params = append(p.params, name)
			p.hasSplat = true
		default:
			p.segments = append(p.segments, segment{kind: segLiteral, value: part})
		}
	}
	return p, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// match walks path against the pattern without allocating. Captured values
// are reported positionally through the capture callback, in the same order
// as pattern.params. Returns false as soon as a segment disagrees.
//
// The path must be rooted ("/..."). A trailing slash on the path is
// ignored, matching the common server convention.
func (p *pattern) match(path string, capture func(index int, value string)) bool {
	// Fast path for the root pattern.
	if len(p.segments) == 0 {
		return path == "/" || path == ""
	}

	pos := 0
	if len(path) > 0 && path[0] == '/' {
		pos = 1
	}
	captureIdx := 0

	for i, seg := range p.segments {
		if seg.kind == segSplat {
			rest := ""
			if pos <= len(path) {
				rest = path[pos:]
			}
			capture(captureIdx, rest)
			return true
		}

		if pos >= len(path) {
			return false
		}
		end := strings.IndexByte(path[pos:], '/')
		if end == -1 {
			end = len(path) - pos
		}
		part := path[pos : pos+end]
		if part == "" {
			return false
		}

		switch seg.kind {
		case segLiteral:
			if part != seg.value {
				return false
			}
		case segParam:
			capture(captureIdx, part)
			captureIdx++
		}

		pos += end
		if pos < len(path) && path[pos] == '/' {
			pos++
		}
		// All segments consumed: the remaining path must be empty
		// (a trailing slash was skipped above).
		if i == len(p.segments)-1 {
			return pos >= len(path)
		}
	}
	return false
}

// String returns the original pattern text.
func (p *pattern) String() string { return p.raw }
