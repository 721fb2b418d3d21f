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

// Package semconv defines the log attribute names shared across viaduct's
// observability surface, following OpenTelemetry semantic conventions.
// Using these constants instead of string literals keeps field names
// consistent between access logs, request-scoped loggers, and any
// application logging layered on top.
package semconv

// Service metadata attributes, typically set once at logger construction.
const (
	// ServiceName identifies the logical service emitting telemetry.
	ServiceName = "service.name"

	// ServiceVersion is the version string of the service instance.
	ServiceVersion = "service.version"

	// DeploymentEnviron names the deployment environment, such as
	// "production" or "staging".
	DeploymentEnviron = "deployment.environment"
)

// HTTP request and response attributes.
const (
	// HTTPMethod is the request method ("GET", "POST", ...).
	HTTPMethod = "http.method"

	// HTTPRoute is the matched route pattern ("/orders/:order_id"), not
	// the concrete path. Aggregate on this to keep cardinality bounded.
	HTTPRoute = "http.route"

	// HTTPTarget is the concrete path requested ("/orders/42").
	HTTPTarget = "http.target"

	// HTTPStatusCode is the numeric response status.
	HTTPStatusCode = "http.status_code"

	// HTTPScheme is "http" or "https".
	HTTPScheme = "http.scheme"
)

// Network attributes distinguishing the socket peer from the real client
// behind proxies.
const (
	// NetworkPeerIP is the socket-level peer address, which may be a
	// proxy or load balancer.
	NetworkPeerIP = "network.peer.ip"

	// NetworkClientIP is the resolved client address after trusted-proxy
	// evaluation of forwarding headers.
	NetworkClientIP = "network.client.ip"
)

// Trace correlation attributes linking log lines to distributed traces.
const (
	// TraceID identifies the trace across all services.
	TraceID = "trace_id"

	// SpanID identifies one span within the trace.
	SpanID = "span_id"
)

// Request correlation attributes.
const (
	// RequestID carries the per-request identifier, usually from the
	// X-Request-ID header.
	RequestID = "req.id"
)
