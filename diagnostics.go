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

// DiagnosticEvent represents a router diagnostic or anomaly. These are
// informational events that may indicate configuration issues or security
// concerns.
//
// Diagnostic events are optional - the router functions correctly whether
// they are collected or not.
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any // Structured context
}

// DiagnosticKind categorizes diagnostic events.
type DiagnosticKind string

const (
	// Security-related diagnostics
	DiagHeaderInjection    DiagnosticKind = "header_injection_blocked"
	DiagForwardedChainLong DiagnosticKind = "forwarded_chain_long"

	// Configuration diagnostics
	DiagHighParamCount DiagnosticKind = "route_param_count_high"
	DiagH2CEnabled     DiagnosticKind = "h2c_enabled"
	DiagTableCompiled  DiagnosticKind = "route_table_compiled"
)

// DiagnosticHandler receives diagnostic events from the router.
// Implementations may log, emit metrics, trace events, or ignore them.
//
// The interface is optional - without a handler, diagnostics are silently
// dropped and router behavior is unchanged.
//
// Example with logging:
//
//	handler := viaduct.DiagnosticHandlerFunc(func(e viaduct.DiagnosticEvent) {
//	    slog.Warn(e.Message, "kind", e.Kind, "fields", e.Fields)
//	})
//	r := viaduct.MustNew(viaduct.WithDiagnostics(handler))
type DiagnosticHandler interface {
	OnDiagnostic(DiagnosticEvent)
}

// DiagnosticHandlerFunc is a function adapter for DiagnosticHandler.
type DiagnosticHandlerFunc func(DiagnosticEvent)

func (f DiagnosticHandlerFunc) OnDiagnostic(e DiagnosticEvent) {
	f(e)
}
