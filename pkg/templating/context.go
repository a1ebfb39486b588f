// Copyright 2025 Philipp Hossner
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

// Package templating implements the template context/helper engine used to
// generate embedded C artifacts from cluster-library metadata.
//
// The engine evaluates a small Handlebars-style dialect: inline tags like
// {{helper arg}} and block tags like {{#helper}}...{{/helper}}. Helpers are
// dispatched through a fixed name table built at engine construction.
//
// Rendering is synchronous and strictly document-ordered. The only concurrency
// is the set of asynchronous metadata lookups issued by option helpers; those
// register themselves into the render pass's pending-operation registry and
// are re-ordered into the output through the {{#after}} barrier helper.
package templating

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Global is the shared-by-reference state for one render pass.
//
// A Global is created when a pass starts and discarded when it completes.
// Every Context in the pass points at the same Global instance; it carries
// the accumulator table, the pending-operation registry, the option result
// cache, and the metadata source handle.
//
// Accumulator and registry mutation happens synchronously inside helper
// invocations. The mutex only guards state that background lookup goroutines
// write into (option results and operation settlement).
type Global struct {
	// PassID uniquely identifies this render pass for logging and event
	// correlation.
	PassID string

	// Source is the metadata lookup interface consumed by option helpers.
	// May be nil for templates that use no async helpers.
	Source OptionSource

	// runCtx is the context the surrounding render call was started with.
	// Background lookups and barrier polling observe its cancellation.
	runCtx context.Context

	mu            sync.Mutex
	accumulators  map[string]*Accumulator
	pending       []*Operation
	optionResults map[string][]OptionValue

	// Owning-package resolution is memoized for the pass. Concurrent first
	// calls share a single in-flight lookup through the singleflight group
	// rather than issuing duplicates.
	pkgFlight   singleflight.Group
	pkgResolved bool
	pkgID       int64
}

// NewGlobal creates the shared state for a fresh render pass with empty
// accumulator and pending-operation state.
func NewGlobal(ctx context.Context, source OptionSource) *Global {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Global{
		PassID:        uuid.NewString(),
		Source:        source,
		runCtx:        ctx,
		accumulators:  make(map[string]*Accumulator),
		optionResults: make(map[string][]OptionValue),
	}
}

// Context is the rendering environment visible to a helper invocation.
//
// Contexts form a chain: every Context except the pass root has exactly one
// Parent, and all of them share the root's Global by reference. Position and
// accumulator-entry fields are only meaningful when the corresponding Has
// flag is set; helpers that need a field absent from the current node walk
// the Parent chain to the nearest enclosing scope that carries it.
type Context struct {
	Global *Global
	Parent *Context

	// Index and Count describe the position within an enclosing iteration.
	// Only valid when HasPosition is true.
	Index, Count int
	HasPosition  bool

	// Value and Sum are set on contexts produced by accumulator replay.
	// Value is nil when the recorded value was null. Only valid when
	// HasEntry is true.
	Value    *float64
	Sum      float64
	HasEntry bool
}

// NewPassContext creates the root Context of a render pass.
func NewPassContext(global *Global) *Context {
	return &Context{Global: global}
}

// ChildOverrides selects which fields a child Context carries beyond the
// inherited Global and Parent link.
type ChildOverrides struct {
	Position *Position
	Entry    *Entry
}

// Position is an (index, count) pair within an enclosing iteration.
type Position struct {
	Index int
	Count int
}

// Entry is one replayed accumulator entry: the recorded value (nil for null)
// and the running sum at that point.
type Entry struct {
	Value *float64
	Sum   float64
}

// NewChild returns a new Context chained under parent. The child shares the
// parent's Global by reference, points back at the parent, and takes its
// remaining fields from the overrides.
//
// A parent without a Global is a programming error, not a user-facing
// failure; child construction does not validate beyond that.
func NewChild(parent *Context, over ChildOverrides) *Context {
	child := &Context{
		Global: parent.Global,
		Parent: parent,
	}
	if over.Position != nil {
		child.Index = over.Position.Index
		child.Count = over.Position.Count
		child.HasPosition = true
	}
	if over.Entry != nil {
		child.Value = over.Entry.Value
		child.Sum = over.Entry.Sum
		child.HasEntry = true
	}
	return child
}

// position returns the nearest (index, count) pair on the context chain,
// starting at c and walking parent links.
func (c *Context) position() (Position, bool) {
	for node := c; node != nil; node = node.Parent {
		if node.HasPosition {
			return Position{Index: node.Index, Count: node.Count}, true
		}
	}
	return Position{}, false
}

// entry returns the nearest accumulator entry on the context chain.
func (c *Context) entry() (Entry, bool) {
	for node := c; node != nil; node = node.Parent {
		if node.HasEntry {
			return Entry{Value: node.Value, Sum: node.Sum}, true
		}
	}
	return Entry{}, false
}
