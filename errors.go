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

import "errors"

var (
	// ErrTableFrozen indicates that the route table has been compiled and can
	// no longer be modified.
	ErrTableFrozen = errors.New("route table is frozen")

	// ErrTableNotCompiled indicates an operation that requires a compiled
	// route table, such as helper lookup, before Compile has run.
	ErrTableNotCompiled = errors.New("route table not compiled yet")

	// ErrHelperNotFound indicates that no helper is registered under the
	// requested name.
	ErrHelperNotFound = errors.New("helper not found")

	// ErrDuplicateHelper indicates that two routes composed the same helper
	// name after prefix composition.
	ErrDuplicateHelper = errors.New("duplicate helper name")

	// ErrMissingRouteParameter indicates that a required parameter for the
	// route is missing when building a path.
	ErrMissingRouteParameter = errors.New("missing required parameter")

	// ErrMissingOrigin indicates that URL building was requested without a
	// configured origin and without an ambient request to derive one from.
	ErrMissingOrigin = errors.New("no origin configured for URL building")

	// ErrDuplicateConcern indicates that a concern name was declared twice.
	ErrDuplicateConcern = errors.New("duplicate concern")

	// ErrUnknownConcern indicates that Implements referenced a concern that
	// was never declared.
	ErrUnknownConcern = errors.New("unknown concern")

	// ErrDuplicateParameter indicates that a route's full pattern captures
	// the same parameter name twice.
	ErrDuplicateParameter = errors.New("duplicate parameter in pattern")

	// ErrInvalidPattern indicates a malformed path pattern, such as a
	// wildcard segment that is not last.
	ErrInvalidPattern = errors.New("invalid path pattern")

	// ErrInvalidTarget indicates a malformed target declaration, such as a
	// controller string without a "#" separator.
	ErrInvalidTarget = errors.New("invalid route target")

	// ErrInvalidResourceOptions indicates a resource declared with an
	// impossible option combination, such as both Only and Except.
	ErrInvalidResourceOptions = errors.New("invalid resource options")

	// ErrUnknownController indicates that dispatch resolved a controller
	// token with no registered factory.
	ErrUnknownController = errors.New("unknown controller")

	// ErrUnknownAction indicates that a controller does not expose the
	// requested action.
	ErrUnknownAction = errors.New("unknown controller action")

	// ErrServerTimeoutInvalid indicates that a server timeout value must be
	// positive.
	ErrServerTimeoutInvalid = errors.New("server timeout must be positive")

	// ErrInvalidOrigin indicates that the configured origin is not an
	// absolute URL.
	ErrInvalidOrigin = errors.New("origin must be an absolute URL")

	// ErrResponseWriterNotHijacker indicates the underlying ResponseWriter
	// does not support hijacking.
	ErrResponseWriterNotHijacker = errors.New("response writer does not support hijacking")
)
