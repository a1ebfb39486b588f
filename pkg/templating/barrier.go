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
	"time"
)

// afterHelper implements the {{#after}} ordering barrier.
//
// The barrier snapshots the pending-operation registry at the moment it is
// invoked and waits for every snapshotted operation to settle before
// rendering its body in a fresh child context. Operations registered after
// the snapshot wait for the next barrier, not this one, which is also why
// barriers do not nest in effect: each inner barrier only drains its own
// unseen-so-far slice of the registry.
//
// The surrounding renderer cannot suspend its own call stack, so waiting is a
// fixed-interval polling loop over the snapshot rather than a direct
// suspension. An empty snapshot resolves immediately with no polling. If any
// snapshotted operation failed, the barrier fails as a whole with the first
// failure; the body is not rendered.
func (e *Engine) afterHelper(c *Context, call *Call) (string, error) {
	snapshot := c.Global.snapshotPending()

	if err := waitSettled(c.Global.runCtx, snapshot, e.pollInterval); err != nil {
		return "", err
	}

	for _, op := range snapshot {
		if err := op.Err(); err != nil {
			return "", NewBarrierError(len(snapshot), err)
		}
	}

	return call.RenderBody(NewChild(c, ChildOverrides{}))
}

// waitSettled polls until every operation in the snapshot has settled,
// successfully or not. It returns early only when the render context is
// cancelled; operation failures are left for the caller to inspect so that
// the first failure in snapshot order wins.
func waitSettled(ctx context.Context, snapshot []*Operation, interval time.Duration) error {
	if allSettled(snapshot) {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if allSettled(snapshot) {
				return nil
			}
		}
	}
}

func allSettled(snapshot []*Operation) bool {
	for _, op := range snapshot {
		if !op.Settled() {
			return false
		}
	}
	return true
}
