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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccept(t *testing.T) {
	t.Parallel()

	t.Run("single clause", func(t *testing.T) {
		t.Parallel()

		clauses := parseAccept("application/json")
		require.Len(t, clauses, 1)
		assert.Equal(t, "application/json", clauses[0].mediaRange)
		assert.Equal(t, 1.0, clauses[0].quality)
	})

	t.Run("quality values", func(t *testing.T) {
		t.Parallel()

		clauses := parseAccept("text/html, application/json;q=0.8, */*;q=0.1")
		require.Len(t, clauses, 3)
		assert.Equal(t, 1.0, clauses[0].quality)
		assert.Equal(t, 0.8, clauses[1].quality)
		assert.Equal(t, 0.1, clauses[2].quality)
	})

	t.Run("malformed quality falls back to 1", func(t *testing.T) {
		t.Parallel()

		clauses := parseAccept("text/html;q=banana")
		require.Len(t, clauses, 1)
		assert.Equal(t, 1.0, clauses[0].quality)
	})

	t.Run("out of range quality ignored", func(t *testing.T) {
		t.Parallel()

		clauses := parseAccept("text/html;q=2.0")
		require.Len(t, clauses, 1)
		assert.Equal(t, 1.0, clauses[0].quality)
	})

	t.Run("empty clauses skipped", func(t *testing.T) {
		t.Parallel()

		clauses := parseAccept("text/html,, application/json")
		assert.Len(t, clauses, 2)
	})

	t.Run("lowercases media range", func(t *testing.T) {
		t.Parallel()

		clauses := parseAccept("Application/JSON")
		require.Len(t, clauses, 1)
		assert.Equal(t, "application/json", clauses[0].mediaRange)
	})
}

func TestAcceptCompatible(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"exact", "application/json", "application/json", true},
		{"exact among several", "text/html, application/json", "application/json", true},
		{"subtype wildcard", "text/*", "text/html", true},
		{"subtype wildcard wrong type", "text/*", "application/json", false},
		{"full wildcard", "*/*", "application/json", true},
		{"browser default", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8", "application/json", true},
		{"no match", "text/html", "application/json", false},
		{"explicit rejection", "application/json;q=0", "application/json", false},
		{"rejected but wildcard admits", "application/json;q=0, */*;q=0.5", "application/json", true},
		{"case insensitive", "Application/JSON", "application/json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.ok, acceptCompatible(tt.header, tt.want))
		})
	}
}

func TestMimeTypeForFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "application/json", mimeTypeForFormat("json"))
	assert.Equal(t, "application/json", mimeTypeForFormat("JSON"))
	assert.Equal(t, "text/csv", mimeTypeForFormat("csv"))
	assert.Equal(t, "", mimeTypeForFormat("heif"))
}
