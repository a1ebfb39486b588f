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

package templating

import (
	"context"
	"fmt"
	"sync"
)

// OptionValue is one package option row fetched from the metadata store.
type OptionValue struct {
	// Code is the numeric option code
	Code int64

	// Label is the human-readable option label emitted into generated sources
	Label string
}

// OptionSource is the asynchronous lookup interface consumed by the option
// helpers. Implementations are expected to be idempotent-safe to memoize per
// render pass and to reject with an error describing a missing package or
// category rather than returning empty results for failures.
type OptionSource interface {
	// ResolveOwningPackage returns the package identifier owning the
	// current generation session.
	ResolveOwningPackage(ctx context.Context) (int64, error)

	// FetchOptionValues returns all option values under a category.
	FetchOptionValues(ctx context.Context, packageID int64, category string) ([]OptionValue, error)

	// FetchSpecificOptionValue returns the option value for a single key,
	// or nil when the key is not present in the category.
	FetchSpecificOptionValue(ctx context.Context, packageID int64, category, key string) (*OptionValue, error)
}

// Operation is a single in-flight asynchronous lookup handle.
//
// An Operation settles exactly once, with success or failure, on its own
// schedule. Settlement is observable without blocking so the barrier helper
// can poll a snapshot of operations while the renderer stays synchronous.
type Operation struct {
	done chan struct{}

	mu  sync.Mutex
	err error
}

func newOperation() *Operation {
	return &Operation{done: make(chan struct{})}
}

// settle marks the operation complete. Calling settle twice is a programming
// error and panics via the double close.
func (o *Operation) settle(err error) {
	o.mu.Lock()
	o.err = err
	o.mu.Unlock()
	close(o.done)
}

// Settled reports whether the operation has completed, successfully or not.
func (o *Operation) Settled() bool {
	select {
	case <-o.done:
		return true
	default:
		return false
	}
}

// Err returns the operation's failure, or nil. Only meaningful once the
// operation has settled.
func (o *Operation) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Done returns a channel closed when the operation settles.
func (o *Operation) Done() <-chan struct{} {
	return o.done
}

// registerOperation appends an operation to the pass's pending registry.
// Entries are never removed; a barrier drains the registry as a snapshot
// taken at its own invocation time.
func (g *Global) registerOperation(op *Operation) {
	g.mu.Lock()
	g.pending = append(g.pending, op)
	g.mu.Unlock()
}

// snapshotPending returns a copy of the registry as of now. Operations
// registered after the snapshot wait for the next barrier, not this one.
func (g *Global) snapshotPending() []*Operation {
	g.mu.Lock()
	defer g.mu.Unlock()
	snapshot := make([]*Operation, len(g.pending))
	copy(snapshot, g.pending)
	return snapshot
}

// PendingCount returns the number of operations registered so far in the pass.
func (g *Global) PendingCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

// owningPackage resolves the pass's owning package identifier via the
// metadata source, memoized for the remainder of the pass. Concurrent first
// calls from sibling lookup goroutines share one in-flight resolution.
func (g *Global) owningPackage(ctx context.Context) (int64, error) {
	g.mu.Lock()
	if g.pkgResolved {
		id := g.pkgID
		g.mu.Unlock()
		return id, nil
	}
	g.mu.Unlock()

	v, err, _ := g.pkgFlight.Do("owning-package", func() (interface{}, error) {
		id, err := g.Source.ResolveOwningPackage(ctx)
		if err != nil {
			return int64(0), err
		}
		g.mu.Lock()
		g.pkgID = id
		g.pkgResolved = true
		g.mu.Unlock()
		return id, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// optionCacheKey builds the option-result cache key for a category and an
// optional specific option key.
func optionCacheKey(category, key string) string {
	return category + "\x00" + key
}

// cachedOptions returns settled option results for a category/key, if a
// previous lookup stored them.
func (g *Global) cachedOptions(category, key string) ([]OptionValue, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	values, ok := g.optionResults[optionCacheKey(category, key)]
	return values, ok
}

// storeOptions records fetched option values so that lookups repeated after a
// barrier can render synchronously from the settled result.
func (g *Global) storeOptions(category, key string, values []OptionValue) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.optionResults[optionCacheKey(category, key)] = values
}

// startOptionLookup issues the asynchronous fetch for a category (optionally
// narrowed to one key) and registers the resulting operation into the pending
// registry before returning. Registration happens as the operation is
// created, independent of whether any barrier later drains it.
func (g *Global) startOptionLookup(category, key string) *Operation {
	op := newOperation()
	g.registerOperation(op)

	go func() {
		op.settle(g.fetchOptions(category, key))
	}()

	return op
}

// fetchOptions performs the blocking lookup on the operation's goroutine:
// resolve the owning package, fetch the option values, store the result.
func (g *Global) fetchOptions(category, key string) error {
	ctx := g.runCtx

	pkgID, err := g.owningPackage(ctx)
	if err != nil {
		return fmt.Errorf("resolving owning package: %w", err)
	}

	if key == "" {
		values, err := g.Source.FetchOptionValues(ctx, pkgID, category)
		if err != nil {
			return fmt.Errorf("fetching options for category '%s': %w", category, err)
		}
		g.storeOptions(category, "", values)
		return nil
	}

	value, err := g.Source.FetchSpecificOptionValue(ctx, pkgID, category, key)
	if err != nil {
		return fmt.Errorf("fetching option '%s' in category '%s': %w", key, category, err)
	}
	if value == nil {
		g.storeOptions(category, key, nil)
		return nil
	}
	g.storeOptions(category, key, []OptionValue{*value})
	return nil
}
