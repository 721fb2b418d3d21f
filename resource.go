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

	"github.com/gertd/go-pluralize"
)

var pluralizer = pluralize.NewClient()

// resourceActions is the canonical action set in declaration order. The
// order is load-bearing: "new" precedes "show" so GET /posts/new wins over
// GET /posts/:post_id.
var resourceActions = []string{"index", "new", "create", "show", "edit", "update", "delete"}

// ResourceOption configures a Resources or Resource declaration.
type ResourceOption func(*resourceConfig)

type resourceConfig struct {
	only         []string
	except       []string
	idParam      string
	idConstraint string
	concerns     []string
	body         func(*Scope)
}

// Only restricts the generated routes to the listed actions.
func Only(actions ...string) ResourceOption {
	return func(c *resourceConfig) { c.only = append(c.only, actions...) }
}

// Except generates every canonical action but the listed ones.
func Except(actions ...string) ResourceOption {
	return func(c *resourceConfig) { c.except = append(c.except, actions...) }
}

// IDParam renames the captured id parameter. The default is the
// singularized resource name with an "_id" suffix (":post_id").
func IDParam(name string) ResourceOption {
	return func(c *resourceConfig) { c.idParam = name }
}

// IDConstraint adds an anchored regular-expression constraint on the id
// parameter of every id-bearing action.
func IDConstraint(expr string) ResourceOption {
	return func(c *resourceConfig) { c.idConstraint = expr }
}

// Concerns implements the named concerns inside the resource's nested
// scope, exactly as if their declarations were written in a Nested block.
func Concerns(names ...string) ResourceOption {
	return func(c *resourceConfig) { c.concerns = append(c.concerns, names...) }
}

// Nested runs body against the resource's nested scope: for a plural
// resource, "/name/:id_param" with the id constraint inherited; for a
// singular one, "/name". Nested declarations run before the canonical
// actions, so they win structural ties.
func Nested(body func(*Scope)) ResourceOption {
	return func(c *resourceConfig) { c.body = body }
}

// Resources declares the canonical seven-action route set for a collection
// resource:
//
//	GET       /posts                posts#index   helper posts
//	GET       /posts/new            posts#new     helper new_post
//	POST      /posts                posts#create
//	GET       /posts/:post_id       posts#show    helper post
//	GET       /posts/:post_id/edit  posts#edit    helper edit_post
//	PUT|PATCH /posts/:post_id       posts#update
//	DELETE    /posts/:post_id       posts#delete
func (s *Scope) Resources(name string, opts ...ResourceOption) {
	s.expandResource(name, true, opts)
}

// Resource declares the six-action route set for a singular resource: no
// index, no id parameter, show at "GET /name". The controller token stays
// plural ("profiles" for Resource("profile")).
func (s *Scope) Resource(name string, opts ...ResourceOption) {
	s.expandResource(name, false, opts)
}

func (s *Scope) expandResource(name string, plural bool, opts []ResourceOption) {
	s.router.checkMutable()

	cfg := resourceConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	singular := pluralizer.Singular(name)
	controller := name
	if !plural {
		controller = pluralizer.Plural(name)
	}
	if cfg.idParam == "" {
		cfg.idParam = singular + "_id"
	}

	actions, err := cfg.selectActions(plural)
	if err != nil {
		s.router.addBuildError(fmt.Errorf("resource %q: %w", name, err))
		return
	}

	base := "/" + name
	idSegment := base + "/:" + cfg.idParam

	// The nested scope is declared first so its routes precede the
	// canonical ones in the table.
	if cfg.body != nil || len(cfg.concerns) > 0 {
		var nested *Scope
		if plural {
			nested = s.newChild(idSegment, singular, "")
			if cfg.idConstraint != "" {
				nested.constraints = append(nested.constraints, Where(cfg.idParam, cfg.idConstraint))
			}
		} else {
			nested = s.newChild(base, singular, "")
		}
		if len(cfg.concerns) > 0 {
			nested.Implements(cfg.concerns...)
		}
		if cfg.body != nil {
			cfg.body(nested)
		}
	}

	memberPath := idSegment
	if !plural {
		memberPath = base
	}

	for _, action := range actions {
		var route *Route
		hasID := plural
		switch action {
		case "index":
			route = s.handle([]string{http.MethodGet}, base, controller+"#index").Helper(name)
			hasID = false
		case "new":
			route = s.handle([]string{http.MethodGet}, base+"/new", controller+"#new").Helper("new_" + singular)
			hasID = false
		case "create":
			route = s.handle([]string{http.MethodPost}, base, controller+"#create")
			hasID = false
		case "show":
			route = s.handle([]string{http.MethodGet}, memberPath, controller+"#show").Helper(singular)
		case "edit":
			route = s.handle([]string{http.MethodGet}, joinPatterns(memberPath, "/edit"), controller+"#edit").Helper("edit_" + singular)
		case "update":
			route = s.handle([]string{http.MethodPut, http.MethodPatch}, memberPath, controller+"#update")
		case "delete":
			route = s.handle([]string{http.MethodDelete}, memberPath, controller+"#delete")
		}
		if hasID && cfg.idConstraint != "" {
			route.Constrain(Where(cfg.idParam, cfg.idConstraint))
		}
	}
}

// selectActions filters the canonical action list by Only/Except. Giving
// both, or naming an unknown action, is a build error.
func (c *resourceConfig) selectActions(plural bool) ([]string, error) {
	if len(c.only) > 0 && len(c.except) > 0 {
		return nil, fmt.Errorf("%w: Only and Except are mutually exclusive", ErrInvalidResourceOptions)
	}
	for _, lists := range [][]string{c.only, c.except} {
		for _, action := range lists {
			if !containsString(resourceActions, action) {
				return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidResourceOptions, action)
			}
		}
	}

	selected := make([]string, 0, len(resourceActions))
	for _, action := range resourceActions {
		if action == "index" && !plural {
			continue
		}
		if len(c.only) > 0 && !containsString(c.only, action) {
			continue
		}
		if len(c.except) > 0 && containsString(c.except, action) {
			continue
		}
		selected = append(selected, action)
	}
	return selected, nil
}
