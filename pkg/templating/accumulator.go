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

// Accumulator is a named running-sum ledger populated during rendering and
// replayed later in the same pass.
//
// Invariant: runningSums[i] equals the sum of values[0..i] with nil entries
// treated as a zero delta, i.e. a nil value carries the previous sum forward
// unchanged. Registers are created lazily on first write and live for the
// remainder of the render pass. Replay never mutates a register.
type Accumulator struct {
	values      []*float64
	runningSums []float64
	currentSum  float64
}

// Len returns the number of recorded entries.
func (a *Accumulator) Len() int {
	return len(a.values)
}

// CurrentSum returns the running sum after the most recent record.
func (a *Accumulator) CurrentSum() float64 {
	return a.currentSum
}

// entryAt returns the recorded value and running sum at index i.
func (a *Accumulator) entryAt(i int) Entry {
	return Entry{Value: a.values[i], Sum: a.runningSums[i]}
}

// record appends a value (nil for null) and the updated running sum.
// Ordering of entries is insertion order.
func (a *Accumulator) record(value *float64) {
	if value != nil {
		a.currentSum += *value
	}
	a.values = append(a.values, value)
	a.runningSums = append(a.runningSums, a.currentSum)
}

// Accumulator returns the named register, or nil when nothing has been
// recorded under that name. Replaying an absent register is not an error;
// accumulators are optional instrumentation that some templates never
// populate.
func (g *Global) Accumulator(name string) *Accumulator {
	return g.accumulators[name]
}

// recordValue appends to the named register, creating it lazily.
// Accumulator mutation is always performed synchronously inside helper
// invocations, never from a background lookup goroutine, so the table needs
// no locking.
func (g *Global) recordValue(name string, value *float64) {
	acc := g.accumulators[name]
	if acc == nil {
		acc = &Accumulator{}
		g.accumulators[name] = acc
	}
	acc.record(value)
}
