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
	"net/http"
	"strings"

	"github.com/ettle/strcase"
)

// Target is what a matched route ultimately invokes. Route declarations
// accept several target forms and normalize them once at build time:
//
//   - a string "controller#action", resolved through the controller registry
//   - a HandlerFunc (or bare func(*Context))
//   - an http.Handler, for interoperating with foreign handlers
//   - an explicit Target built with [To] or [Redirect]
type Target interface {
	// terminal returns the handler executed at the end of the middleware
	// chain for this target.
	terminal(r *Router) HandlerFunc
	// Describe returns a short display form for route listings, such as
	// "posts#show" or "redirect(/login)".
	Describe() string
}

// normalizeTarget converts the accepted declaration forms into a Target.
func normalizeTarget(v any) (Target, error) {
	switch t := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil target", ErrInvalidTarget)
	case Target:
		return t, nil
	case string:
		return To(t)
	case HandlerFunc:
		return handlerTarget{fn: t}, nil
	case func(*Context):
		return handlerTarget{fn: t}, nil
	case http.Handler:
		return httpTarget{h: t}, nil
	case func(http.ResponseWriter, *http.Request):
		return httpTarget{h: http.HandlerFunc(t)}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported target type %T", ErrInvalidTarget, v)
	}
}

// To parses a "controller#action" string into a controller-action target.
// The controller token may be namespaced with slashes ("admin/posts").
func To(spec string) (Target, error) {
	controller, action, ok := strings.Cut(spec, "#")
	if !ok || controller == "" || action == "" {
		return nil, fmt.Errorf("%w: %q is not of the form \"controller#action\"", ErrInvalidTarget, spec)
	}
	return controllerTarget{controller: controller, action: action}, nil
}

// MustTo is To, panicking on a malformed spec.
func MustTo(spec string) Target {
	t, err := To(spec)
	if err != nil {
		panic(err)
	}
	return t
}

// controllerTarget names a controller and a zero-argument action on it.
type controllerTarget struct {
	controller string
	action     string
}

func (t controllerTarget) Describe() string { return t.controller + "#" + t.action }

func (t controllerTarget) terminal(r *Router) HandlerFunc {
	name := ControllerName(t.controller)
	action := t.action
	return func(c *Context) {
		factory, ok := r.controllers[name]
		if !ok {
			c.Error(fmt.Errorf("%w: %s (wanted by %s)", ErrUnknownController, name, t.Describe()))
			c.internalServerError()
			return
		}
		act, ok := factory(c).Action(action)
		if !ok {
			c.Error(fmt.Errorf("%w: %s has no action %q", ErrUnknownAction, name, action))
			c.internalServerError()
			return
		}
		if err := act(); err != nil {
			c.Error(err)
		}
	}
}

// handlerTarget wraps an in-process handler function.
type handlerTarget struct {
	fn HandlerFunc
}

func (t handlerTarget) Describe() string             { return "handler" }
func (t handlerTarget) terminal(*Router) HandlerFunc { return t.fn }

// httpTarget delegates to a standard library handler.
type httpTarget struct {
	h    http.Handler
	desc string
}

func (t httpTarget) Describe() string {
	if t.desc != "" {
		return t.desc
	}
	return "http.Handler"
}

func (t httpTarget) terminal(*Router) HandlerFunc {
	return func(c *Context) {
		t.h.ServeHTTP(c.Response, c.Request)
	}
}

// redirectTarget answers a redirect, interpolating captured parameters into
// the location with %{name} placeholders.
type redirectTarget struct {
	location string
	code     int
}

// Redirect returns a target that redirects to location with the given
// status code (301 when omitted). Captured parameters interpolate via
// %{name}: Redirect("/articles/%{id}") sends /posts/7 to /articles/7.
func Redirect(location string, code ...int) Target {
	status := http.StatusMovedPermanently
	if len(code) > 0 {
		status = code[0]
	}
	return redirectTarget{location: location, code: status}
}

func (t redirectTarget) Describe() string {
	return fmt.Sprintf("redirect(%d, %s)", t.code, t.location)
}

func (t redirectTarget) terminal(*Router) HandlerFunc {
	return func(c *Context) {
		location := t.location
		if strings.Contains(location, "%{") {
			location = interpolateParams(location, c)
		}
		c.Redirect(t.code, location)
	}
}

// interpolateParams replaces %{name} placeholders with captured parameters.
// Unknown names are replaced with the empty string.
func interpolateParams(location string, c *Context) string {
	var b strings.Builder
	for {
		start := strings.Index(location, "%{")
		if start == -1 {
			b.WriteString(location)
			return b.String()
		}
		end := strings.IndexByte(location[start:], '}')
		if end == -1 {
			b.WriteString(location)
			return b.String()
		}
		b.WriteString(location[:start])
		b.WriteString(c.Param(location[start+2 : start+end]))
		location = location[start+end+1:]
	}
}

// Controller is the capability contract for controller-action targets: an
// instance is constructed per request by its registered factory, then the
// named zero-argument action runs. Returning an error collects it on the
// context and surfaces a 500 when nothing was written.
type Controller interface {
	// Action returns the named action, or false when the controller does
	// not expose it.
	Action(name string) (func() error, bool)
}

// ControllerFactory constructs a controller bound to one request.
type ControllerFactory func(*Context) Controller

// ControllerName derives the registry key for a controller token by
// camel-casing each slash-separated part and appending the "Controller"
// suffix: "posts" → "PostsController", "admin/user_profiles" →
// "AdminUserProfilesController".
func ControllerName(token string) string {
	if strings.HasSuffix(token, controllerSuffix) {
		return token
	}
	parts := strings.Split(token, "/")
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(strcase.ToPascal(part))
	}
	b.WriteString(controllerSuffix)
	return b.String()
}

const controllerSuffix = "Controller"
