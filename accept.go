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
	"strconv"
	"strings"
)

// acceptClause is one parsed media range of an Accept header.
type acceptClause struct {
	mediaRange string
	quality    float64
}

// parseAccept parses an Accept header into its clauses. Malformed quality
// values fall back to 1.0; malformed clauses are skipped. The slice is in
// header order; callers that need precedence must inspect quality.
func parseAccept(header string) []acceptClause {
	parts := strings.Split(header, ",")
	clauses := make([]acceptClause, 0, len(parts))
	for _, part := range parts {
		fields := strings.Split(part, ";")
		mediaRange := strings.ToLower(strings.TrimSpace(fields[0]))
		if mediaRange == "" {
			continue
		}
		q := 1.0
		for _, field := range fields[1:] {
			field = strings.TrimSpace(field)
			if v, ok := strings.CutPrefix(field, "q="); ok {
				if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
					q = parsed
				}
			}
		}
		clauses = append(clauses, acceptClause{mediaRange: mediaRange, quality: q})
	}
	return clauses
}

// acceptCompatible reports whether any clause of the Accept header admits
// the wanted MIME type with a non-zero quality. A clause with q=0 is an
// explicit rejection and does not admit the type.
func acceptCompatible(header, want string) bool {
	for _, clause := range parseAccept(header) {
		if clause.quality > 0 && mediaRangeMatches(clause.mediaRange, want) {
			return true
		}
	}
	return false
}

// mediaRangeMatches reports whether a media range ("*/*", "text/*",
// "application/json") covers the concrete type want.
func mediaRangeMatches(mediaRange, want string) bool {
	if mediaRange == "*/*" {
		return true
	}
	if mediaRange == want {
		return true
	}
	if wantType, _, ok := strings.Cut(want, "/"); ok {
		if rangeType, rangeSub, ok := strings.Cut(mediaRange, "/"); ok {
			return rangeSub == "*" && rangeType == wantType
		}
	}
	return false
}

// formatMIMETypes maps common format extensions to their MIME type, used to
// answer Content-Type defaults for format-constrained routes.
var formatMIMETypes = map[string]string{
	"json": "application/json",
	"xml":  "application/xml",
	"html": "text/html",
	"txt":  "text/plain",
	"csv":  "text/csv",
	"js":   "text/javascript",
}

// mimeTypeForFormat returns the MIME type for a format extension, or "" when
// the extension is not recognized.
func mimeTypeForFormat(ext string) string {
	return formatMIMETypes[strings.ToLower(ext)]
}
