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

package methodoverride

// Option defines functional options for method override configuration.
type Option func(*config)

// config holds the configuration for the method override wrapper.
type config struct {
	header string
	param  string
	allow  []string
	onlyOn []string
}

// defaultConfig returns the default method override configuration.
func defaultConfig() *config {
	return &config{
		header: "X-HTTP-Method-Override",
		param:  "_method",
		allow:  []string{"PUT", "PATCH", "DELETE"},
		onlyOn: []string{"POST"},
	}
}

// WithHeader sets the override header name.
// Default: "X-HTTP-Method-Override"
func WithHeader(header string) Option {
	return func(cfg *config) {
		cfg.header = header
	}
}

// WithParam sets the override parameter name, looked up in the query
// string and in urlencoded form bodies.
// Default: "_method". Empty disables the parameter form entirely.
func WithParam(param string) Option {
	return func(cfg *config) {
		cfg.param = param
	}
}

// WithAllow sets the allowlist of methods an override may produce.
// Default: PUT, PATCH, DELETE.
func WithAllow(methods ...string) Option {
	return func(cfg *config) {
		cfg.allow = methods
	}
}

// WithOnlyOn sets which arriving methods are eligible for override.
// Default: POST only. Widening this list is rarely safe; overriding GET
// turns every link into a potential state change.
func WithOnlyOn(methods ...string) Option {
	return func(cfg *config) {
		cfg.onlyOn = methods
	}
}
