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
	"math"
	"strconv"
	"strings"
)

// HelperFunc is the signature every template helper implements. A helper
// receives the invoking Context and the resolved call (arguments, hash, and
// block body if any) and returns the text it contributes to the output.
type HelperFunc func(c *Context, call *Call) (string, error)

// ValueKind discriminates resolved argument values.
type ValueKind int

const (
	// ValueNull is the null literal or a replayed null accumulator value.
	ValueNull ValueKind = iota

	// ValueString is a quoted string literal.
	ValueString

	// ValueNumber is a numeric literal or numeric context variable.
	ValueNumber
)

// Value is one resolved helper argument.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
}

// Text returns the value's textual form as emitted into rendered output.
func (v Value) Text() string {
	switch v.Kind {
	case ValueNumber:
		return formatNumber(v.Num)
	case ValueString:
		return v.Str
	default:
		return ""
	}
}

// Truthy reports whether the value selects the positive branch of a
// conditional helper. Null is false, numbers are true when non-zero, and
// strings are true unless empty or the literal "false".
func (v Value) Truthy() bool {
	switch v.Kind {
	case ValueNumber:
		return v.Num != 0
	case ValueString:
		return v.Str != "" && v.Str != "false"
	default:
		return false
	}
}

// Call carries the resolved invocation of a helper: positional arguments,
// key=value hash arguments, and the block body for block helpers.
type Call struct {
	// Helper is the invoked helper name (useful in error construction)
	Helper string

	// Args are the resolved positional arguments
	Args []Value

	// Hash are the resolved key=value arguments
	Hash map[string]Value

	body   []node
	engine *Engine
}

// IsBlock reports whether the helper was invoked with a body.
func (call *Call) IsBlock() bool {
	return call.body != nil
}

// RenderBody renders the block body in the given context and returns the
// produced text. Rendering the body of an inline invocation yields the empty
// string.
func (call *Call) RenderBody(c *Context) (string, error) {
	if call.body == nil {
		return "", nil
	}
	var sb strings.Builder
	for _, n := range call.body {
		if err := n.render(call.engine, c, &sb); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// arg returns the i-th positional argument.
func (call *Call) arg(i int) (Value, bool) {
	if i < 0 || i >= len(call.Args) {
		return Value{}, false
	}
	return call.Args[i], true
}

// newHelperTable builds the fixed helper dispatch table. The names form a
// frozen public contract: templates authored against earlier releases must
// keep resolving, so renames only ever add aliases.
func newHelperTable(e *Engine) map[string]HelperFunc {
	table := map[string]HelperFunc{
		// positional block helpers
		"first":    positionalHelper(func(p Position) bool { return p.Index == 0 }),
		"last":     positionalHelper(func(p Position) bool { return p.Index == p.Count-1 }),
		"not_last": positionalHelper(func(p Position) bool { return p.Index != p.Count-1 }),
		"middle":   positionalHelper(func(p Position) bool { return p.Index != 0 && p.Index != p.Count-1 }),

		// iteration
		"iterate": iterateHelper,

		// accumulators
		"record": recordHelper,
		"replay": replayHelper,

		// string/predicate helpers
		"eq":        eqHelper,
		"trim":      trimHelper,
		"last_word": lastWordHelper,
		"select":    selectHelper,

		// async option lookup and its ordering barrier
		"lookupOption": lookupOptionHelper,
		"after":        e.afterHelper,
	}

	// historical aliases, kept for template compatibility
	table["addToAccumulator"] = table["record"]
	table["iterateAccumulator"] = table["replay"]

	return table
}

// positionalHelper builds a block helper that emits its body iff the nearest
// enclosing iteration position satisfies fires. Outside any iteration the
// helper renders nothing; there is no failure mode.
//
// Boundary rule: with a single-element iteration (count == 1) both first and
// last fire while middle and not_last do not.
func positionalHelper(fires func(Position) bool) HelperFunc {
	return func(c *Context, call *Call) (string, error) {
		pos, ok := c.position()
		if !ok || !fires(pos) {
			return "", nil
		}
		return call.RenderBody(c)
	}
}

// iterateHelper drives a bounded loop: for i in [0, count) it renders the
// body once in a child context carrying (i, count) and concatenates the
// results in index order. A zero or negative count produces the empty string.
func iterateHelper(c *Context, call *Call) (string, error) {
	countVal, ok := call.Hash["count"]
	if !ok {
		countVal, ok = call.arg(0)
	}
	if !ok {
		return "", NewConfigurationError(call.Helper, "missing count argument")
	}
	if countVal.Kind != ValueNumber || countVal.Num != math.Trunc(countVal.Num) || math.IsNaN(countVal.Num) {
		return "", NewConfigurationError(call.Helper, "count must be an integer")
	}

	count := int(countVal.Num)
	var sb strings.Builder
	for i := 0; i < count; i++ {
		child := NewChild(c, ChildOverrides{Position: &Position{Index: i, Count: count}})
		out, err := call.RenderBody(child)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

// recordHelper appends a value to a named accumulator register. The value may
// be a number or null; null carries the running sum forward unchanged.
func recordHelper(c *Context, call *Call) (string, error) {
	nameVal, ok := call.arg(0)
	if !ok || nameVal.Kind != ValueString || nameVal.Str == "" {
		return "", NewConfigurationError(call.Helper, "missing accumulator name")
	}
	valueVal, ok := call.arg(1)
	if !ok {
		return "", NewConfigurationError(call.Helper, "missing value argument")
	}

	switch valueVal.Kind {
	case ValueNull:
		c.Global.recordValue(nameVal.Str, nil)
	case ValueNumber:
		v := valueVal.Num
		c.Global.recordValue(nameVal.Str, &v)
	default:
		return "", NewConfigurationError(call.Helper, "value must be a number or null")
	}
	return "", nil
}

// replayHelper renders its body once per recorded entry of a named register,
// exposing index, count, value, and sum on each child context. Replaying a
// register that was never written renders the empty string; replay never
// mutates the register, so repeated replays of the same state are identical.
func replayHelper(c *Context, call *Call) (string, error) {
	nameVal, ok := call.arg(0)
	if !ok || nameVal.Kind != ValueString || nameVal.Str == "" {
		return "", NewConfigurationError(call.Helper, "missing accumulator name")
	}

	acc := c.Global.Accumulator(nameVal.Str)
	if acc == nil {
		return "", nil
	}

	count := acc.Len()
	var sb strings.Builder
	for i := 0; i < count; i++ {
		entry := acc.entryAt(i)
		child := NewChild(c, ChildOverrides{
			Position: &Position{Index: i, Count: count},
			Entry:    &entry,
		})
		out, err := call.RenderBody(child)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

// eqHelper renders "true" when its two arguments are equal, "false"
// otherwise. Numbers compare numerically, nulls equal only nulls, everything
// else compares textually.
func eqHelper(_ *Context, call *Call) (string, error) {
	a, okA := call.arg(0)
	b, okB := call.arg(1)
	if !okA || !okB {
		return "", NewConfigurationError(call.Helper, "requires two arguments")
	}

	var equal bool
	switch {
	case a.Kind == ValueNull || b.Kind == ValueNull:
		equal = a.Kind == b.Kind
	case a.Kind == ValueNumber && b.Kind == ValueNumber:
		equal = a.Num == b.Num
	default:
		equal = a.Text() == b.Text()
	}
	if equal {
		return "true", nil
	}
	return "false", nil
}

// trimHelper strips leading and trailing whitespace from its argument.
func trimHelper(_ *Context, call *Call) (string, error) {
	v, ok := call.arg(0)
	if !ok {
		return "", NewConfigurationError(call.Helper, "requires one argument")
	}
	return strings.TrimSpace(v.Text()), nil
}

// lastWordHelper extracts the final whitespace-separated word of its
// argument, or renders nothing when the argument has no words.
func lastWordHelper(_ *Context, call *Call) (string, error) {
	v, ok := call.arg(0)
	if !ok {
		return "", NewConfigurationError(call.Helper, "requires one argument")
	}
	words := strings.Fields(v.Text())
	if len(words) == 0 {
		return "", nil
	}
	return words[len(words)-1], nil
}

// selectHelper renders its second argument when the first is truthy, its
// third otherwise.
func selectHelper(_ *Context, call *Call) (string, error) {
	test, okT := call.arg(0)
	a, okA := call.arg(1)
	b, okB := call.arg(2)
	if !okT || !okA || !okB {
		return "", NewConfigurationError(call.Helper, "requires three arguments")
	}
	if test.Truthy() {
		return a.Text(), nil
	}
	return b.Text(), nil
}

// lookupOptionHelper consults the metadata store for option values under a
// category, optionally narrowed to a single key.
//
// The first invocation for a (category, key) pair starts the asynchronous
// lookup, registers it into the pass's pending-operation registry, and
// contributes nothing to the output. Once the lookup has settled (normally
// established by an intervening {{#after}} barrier), the same invocation
// renders synchronously from the cached result: the single option's label for
// a keyed lookup, or the category's labels joined by ", " otherwise.
func lookupOptionHelper(c *Context, call *Call) (string, error) {
	categoryVal, ok := call.arg(0)
	if !ok || categoryVal.Kind != ValueString || categoryVal.Str == "" {
		return "", NewConfigurationError(call.Helper, "missing option category")
	}
	category := categoryVal.Str

	var key string
	if keyVal, ok := call.arg(1); ok {
		if keyVal.Kind != ValueString {
			return "", NewConfigurationError(call.Helper, "option key must be a string")
		}
		key = keyVal.Str
	}

	if c.Global.Source == nil {
		return "", NewConfigurationError(call.Helper, "render pass has no metadata source")
	}

	if values, ok := c.Global.cachedOptions(category, key); ok {
		labels := make([]string, len(values))
		for i, v := range values {
			labels[i] = v.Label
		}
		return strings.Join(labels, ", "), nil
	}

	c.Global.startOptionLookup(category, key)
	return "", nil
}

// formatNumber renders a float the way generated sources expect: integral
// values without a fractional part, everything else in plain decimal form.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
