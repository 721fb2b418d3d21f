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

package telemetry

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultFilterExcludesOperationalPaths(t *testing.T) {
	t.Parallel()

	pf := newPathFilterWithDefaults()

	for _, path := range []string{
		"/health", "/healthz", "/ready", "/readyz", "/live", "/livez",
		"/metrics", "/debug/pprof", "/debug/vars",
	} {
		assert.True(t, pf.shouldExclude(path), "path %q", path)
	}

	for _, path := range []string{"/", "/orders", "/healthcheck", "/metricsx"} {
		assert.False(t, pf.shouldExclude(path), "path %q", path)
	}
}

func TestFilterExactPaths(t *testing.T) {
	t.Parallel()

	pf := newPathFilter()
	pf.addPaths("/internal/status")

	assert.True(t, pf.shouldExclude("/internal/status"))
	assert.False(t, pf.shouldExclude("/internal/status/deep"), "exact match only")
}

func TestFilterPrefixes(t *testing.T) {
	t.Parallel()

	pf := newPathFilter()
	pf.addPrefixes("/_ops/")

	assert.True(t, pf.shouldExclude("/_ops/flush"))
	assert.True(t, pf.shouldExclude("/_ops/cache/keys"))
	assert.False(t, pf.shouldExclude("/_opsx"))
}

func TestFilterPatterns(t *testing.T) {
	t.Parallel()

	pf := newPathFilter()
	pf.addPatterns(regexp.MustCompile(`^/assets/.*\.(css|js)$`))

	assert.True(t, pf.shouldExclude("/assets/app.css"))
	assert.True(t, pf.shouldExclude("/assets/vendor/app.js"))
	assert.False(t, pf.shouldExclude("/assets/logo.png"))
}

func TestNilFilterExcludesNothing(t *testing.T) {
	t.Parallel()

	var pf *pathFilter
	assert.False(t, pf.shouldExclude("/health"))
}

func TestFilterOptionsReachTheRecorder(t *testing.T) {
	t.Parallel()

	r := newTestRecorder(t,
		WithExcludePaths("/custom"),
		WithExcludePrefixes("/hidden/"),
		WithExcludePatterns(`\.ico$`),
	)

	assert.True(t, r.filter.shouldExclude("/custom"))
	assert.True(t, r.filter.shouldExclude("/hidden/treasure"))
	assert.True(t, r.filter.shouldExclude("/favicon.ico"))
	assert.True(t, r.filter.shouldExclude("/health"), "defaults are kept")
	assert.False(t, r.filter.shouldExclude("/orders"))
}
