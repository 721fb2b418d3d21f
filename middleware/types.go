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

package middleware

// ContextKey is the type for request context keys set by the middleware
// packages. A named type keeps them from colliding with string keys used
// elsewhere.
type ContextKey string

// Context keys shared across the middleware packages. Defined here so each
// key has exactly one owner.
const (
	// RequestIDKey holds the request ID. Set by requestid, read by
	// accesslog for deterministic sampling.
	RequestIDKey ContextKey = "middleware.request_id"

	// OriginalMethodKey holds the HTTP method a request arrived with
	// before methodoverride rewrote it.
	OriginalMethodKey ContextKey = "middleware.original_method"
)
