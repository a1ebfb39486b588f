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
	"strconv"
	"strings"
	"time"
)

// DefaultPollInterval is the barrier's settlement polling interval when no
// interval is configured.
const DefaultPollInterval = 10 * time.Millisecond

// Engine provides template compilation and rendering capabilities.
// It pre-compiles all templates at initialization for early detection of
// syntax errors, and builds its helper dispatch table once at construction.
type Engine struct {
	// rawTemplates stores the original template strings by name
	rawTemplates map[string]string

	// compiled stores pre-compiled node trees by name
	compiled map[string][]node

	// helpers is the fixed helper name table
	helpers map[string]HelperFunc

	// pollInterval is the barrier settlement polling interval
	pollInterval time.Duration
}

// Options configures engine construction.
type Options struct {
	// PollInterval overrides the barrier polling interval.
	// Zero means DefaultPollInterval.
	PollInterval time.Duration
}

// New creates an Engine with the given templates compiled up front.
// Returns a CompilationError if any template fails to parse.
//
// Example:
//
//	templates := map[string]string{
//	    "cluster-ids": "{{#iterate count=3}}{{index}}{{#not_last}},{{/not_last}}{{/iterate}}",
//	}
//	engine, err := templating.New(templates, templating.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
func New(templates map[string]string, opts Options) (*Engine, error) {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	e := &Engine{
		rawTemplates: make(map[string]string, len(templates)),
		compiled:     make(map[string][]node, len(templates)),
		pollInterval: interval,
	}
	e.helpers = newHelperTable(e)

	for name, content := range templates {
		nodes, err := parseTemplate(content)
		if err != nil {
			return nil, NewCompilationError(name, content, err)
		}
		e.rawTemplates[name] = content
		e.compiled[name] = nodes
	}

	return e, nil
}

// Render runs one full render pass of the named template against a fresh
// Context whose Global carries empty accumulator and pending-operation state.
//
// The returned text reflects strict document order: output guarded by an
// {{#after}} barrier appears only once every previously issued asynchronous
// lookup has settled. Before returning, the pass drains any operations that
// no barrier waited on; a failure among them fails the pass, so callers never
// observe text that silently ignored a failed lookup. Callers must discard
// partial output on error rather than persisting it.
func (e *Engine) Render(ctx context.Context, templateName string, source OptionSource) (string, error) {
	nodes, exists := e.compiled[templateName]
	if !exists {
		availableNames := make([]string, 0, len(e.compiled))
		for name := range e.compiled {
			availableNames = append(availableNames, name)
		}
		return "", NewTemplateNotFoundError(templateName, availableNames)
	}

	global := NewGlobal(ctx, source)
	root := NewPassContext(global)

	var sb strings.Builder
	for _, n := range nodes {
		if err := n.render(e, root, &sb); err != nil {
			return "", NewRenderError(templateName, err)
		}
	}

	// Latent failures: operations never drained by a barrier still fail the
	// pass once completion is checked.
	remaining := global.snapshotPending()
	if err := waitSettled(global.runCtx, remaining, e.pollInterval); err != nil {
		return "", NewRenderError(templateName, err)
	}
	for _, op := range remaining {
		if err := op.Err(); err != nil {
			return "", NewRenderError(templateName, err)
		}
	}

	return sb.String(), nil
}

// invoke dispatches a tag to its helper, falling back to context-variable
// resolution for bare names like {{index}}. Dispatch is a fixed name table;
// nothing is resolved reflectively.
func (e *Engine) invoke(c *Context, name string, args []argument, hash map[string]argument, body []node, sb *strings.Builder) error {
	helper, ok := e.helpers[name]
	if !ok {
		if body == nil && len(args) == 0 && len(hash) == 0 {
			if out, ok := renderVariable(c, name); ok {
				sb.WriteString(out)
				return nil
			}
		}
		return NewHelperNotFoundError(name)
	}

	call := &Call{
		Helper: name,
		body:   body,
		engine: e,
	}
	if len(args) > 0 {
		call.Args = make([]Value, len(args))
		for i, arg := range args {
			v, err := resolveArgument(c, arg)
			if err != nil {
				return err
			}
			call.Args[i] = v
		}
	}
	if len(hash) > 0 {
		call.Hash = make(map[string]Value, len(hash))
		for key, arg := range hash {
			v, err := resolveArgument(c, arg)
			if err != nil {
				return err
			}
			call.Hash[key] = v
		}
	}

	out, err := helper(c, call)
	if err != nil {
		return err
	}
	sb.WriteString(out)
	return nil
}

// resolveArgument evaluates one parsed argument against the invoking context.
func resolveArgument(c *Context, arg argument) (Value, error) {
	switch arg.kind {
	case argString:
		return Value{Kind: ValueString, Str: arg.str}, nil
	case argNumber:
		return Value{Kind: ValueNumber, Num: arg.num}, nil
	case argNull:
		return Value{Kind: ValueNull}, nil
	default:
		return resolveVariable(c, arg.str)
	}
}

// resolveVariable looks a bare name up on the context chain.
func resolveVariable(c *Context, name string) (Value, error) {
	switch name {
	case "index":
		if pos, ok := c.position(); ok {
			return Value{Kind: ValueNumber, Num: float64(pos.Index)}, nil
		}
	case "count":
		if pos, ok := c.position(); ok {
			return Value{Kind: ValueNumber, Num: float64(pos.Count)}, nil
		}
	case "value":
		if entry, ok := c.entry(); ok {
			if entry.Value == nil {
				return Value{Kind: ValueNull}, nil
			}
			return Value{Kind: ValueNumber, Num: *entry.Value}, nil
		}
	case "sum":
		if entry, ok := c.entry(); ok {
			return Value{Kind: ValueNumber, Num: entry.Sum}, nil
		}
	default:
		return Value{}, fmt.Errorf("unknown context variable '%s'", name)
	}
	return Value{}, fmt.Errorf("context variable '%s' is not set in this scope", name)
}

// renderVariable renders a bare {{name}} tag from context state.
func renderVariable(c *Context, name string) (string, bool) {
	switch name {
	case "index", "count", "value", "sum":
		v, err := resolveVariable(c, name)
		if err != nil {
			// variable names render as empty outside their scope
			return "", true
		}
		return v.Text(), true
	default:
		return "", false
	}
}

// HelperNames returns the registered helper names, aliases included.
func (e *Engine) HelperNames() []string {
	names := make([]string, 0, len(e.helpers))
	for name := range e.helpers {
		names = append(names, name)
	}
	return names
}

// TemplateNames returns a list of all available template names.
func (e *Engine) TemplateNames() []string {
	names := make([]string, 0, len(e.rawTemplates))
	for name := range e.rawTemplates {
		names = append(names, name)
	}
	return names
}

// HasTemplate returns true if a template with the given name exists.
func (e *Engine) HasTemplate(templateName string) bool {
	_, exists := e.compiled[templateName]
	return exists
}

// GetRawTemplate returns the original (uncompiled) template string for the given name.
// Returns an error if the template does not exist.
func (e *Engine) GetRawTemplate(templateName string) (string, error) {
	template, exists := e.rawTemplates[templateName]
	if !exists {
		availableNames := make([]string, 0, len(e.rawTemplates))
		for name := range e.rawTemplates {
			availableNames = append(availableNames, name)
		}
		return "", NewTemplateNotFoundError(templateName, availableNames)
	}
	return template, nil
}

// TemplateCount returns the number of templates in this engine.
func (e *Engine) TemplateCount() int {
	return len(e.compiled)
}

// String returns a string representation of the engine for debugging.
func (e *Engine) String() string {
	return "Engine{templates=" + strconv.Itoa(e.TemplateCount()) + "}"
}
