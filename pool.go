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

import "sync"

// contextPool recycles Context objects across requests. All contexts share
// one shape (fixed parameter arrays plus a lazily grown overflow map), so a
// single pool covers every route.
var contextPool = sync.Pool{
	New: func() any {
		c := &Context{index: -1}
		return c
	},
}

// acquireContext retrieves a Context from the pool and sizes its capture
// buffer for the table's widest route.
func acquireContext(r *Router, maxParams int) *Context {
	c, ok := contextPool.Get().(*Context)
	if !ok {
		// Only possible if external code Put() a foreign type into the pool.
		panic("viaduct: pool corruption - contextPool returned non-Context type")
	}
	c.router = r
	if cap(c.scratch) < maxParams {
		c.scratch = make([]string, maxParams)
	} else {
		c.scratch = c.scratch[:maxParams]
	}
	return c
}

// releaseContext resets a Context and returns it to the pool.
//
//	c := acquireContext(r, n)
//	defer releaseContext(c)
func releaseContext(c *Context) {
	c.reset()
	contextPool.Put(c)
}
