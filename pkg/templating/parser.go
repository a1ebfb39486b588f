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
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const (
	leftDelim  = "{{"
	rightDelim = "}}"
)

// node is one element of a compiled template.
type node interface {
	render(e *Engine, c *Context, sb *strings.Builder) error
}

// textNode is a literal run of template text between tags.
type textNode struct {
	text string
}

func (n textNode) render(_ *Engine, _ *Context, sb *strings.Builder) error {
	sb.WriteString(n.text)
	return nil
}

// tagNode is an inline tag: {{name arg1 arg2 key=value}}.
type tagNode struct {
	name string
	args []argument
	hash map[string]argument
}

func (n tagNode) render(e *Engine, c *Context, sb *strings.Builder) error {
	return e.invoke(c, n.name, n.args, n.hash, nil, sb)
}

// blockNode is a block tag: {{#name args}}body{{/name}}.
type blockNode struct {
	name string
	args []argument
	hash map[string]argument
	body []node
}

func (n blockNode) render(e *Engine, c *Context, sb *strings.Builder) error {
	return e.invoke(c, n.name, n.args, n.hash, n.body, sb)
}

// argKind discriminates the parsed form of a tag argument.
type argKind int

const (
	argString argKind = iota // quoted literal
	argNumber                // numeric literal
	argNull                  // the keyword null
	argVar                   // bare word, resolved against the context
)

// argument is one unevaluated tag argument. Variables are resolved against
// the invoking Context at render time.
type argument struct {
	kind argKind
	str  string
	num  float64
}

// parser scans a single template into a node sequence.
// The design follows a delimiter-scanning parser: find the next tag, emit the
// preceding text verbatim, then dispatch on the tag's first character.
type parser struct {
	src string
	i   int
}

func parseTemplate(src string) ([]node, error) {
	p := &parser{src: src}
	nodes, terminator, err := p.parseNodes("")
	if err != nil {
		return nil, err
	}
	if terminator != "" {
		return nil, fmt.Errorf("unexpected closing tag {{/%s}}", terminator)
	}
	return nodes, nil
}

func (p *parser) eof() bool { return p.i >= len(p.src) }

// parseNodes consumes nodes until end of input or a closing tag. It returns
// the closing tag's name ("" at end of input) so callers can verify block
// balance. openBlock names the enclosing block, used for error messages.
func (p *parser) parseNodes(openBlock string) ([]node, string, error) {
	nodes := make([]node, 0, 8)
	for !p.eof() {
		start := strings.Index(p.src[p.i:], leftDelim)
		if start == -1 {
			nodes = append(nodes, textNode{text: p.src[p.i:]})
			p.i = len(p.src)
			break
		}
		if start > 0 {
			nodes = append(nodes, textNode{text: p.src[p.i : p.i+start]})
		}
		p.i += start + len(leftDelim)

		end := strings.Index(p.src[p.i:], rightDelim)
		if end == -1 {
			return nil, "", errors.New("unterminated tag")
		}
		tag := strings.TrimSpace(p.src[p.i : p.i+end])
		p.i += end + len(rightDelim)

		switch {
		case tag == "":
			return nil, "", errors.New("empty tag")

		case tag[0] == '/':
			// closing tag ends this node sequence
			name := strings.TrimSpace(tag[1:])
			if name == "" {
				return nil, "", errors.New("closing tag with no name")
			}
			return nodes, name, nil

		case tag[0] == '#':
			block, err := p.parseBlock(strings.TrimSpace(tag[1:]))
			if err != nil {
				return nil, "", err
			}
			nodes = append(nodes, block)

		default:
			name, args, hash, err := parseTagContents(tag)
			if err != nil {
				return nil, "", err
			}
			nodes = append(nodes, tagNode{name: name, args: args, hash: hash})
		}
	}
	if openBlock != "" {
		return nil, "", fmt.Errorf("unterminated block {{#%s}} (missing {{/%s}})", openBlock, openBlock)
	}
	return nodes, "", nil
}

// parseBlock parses the body of {{#head}} up to its matching closing tag.
func (p *parser) parseBlock(head string) (node, error) {
	name, args, hash, err := parseTagContents(head)
	if err != nil {
		return nil, err
	}
	body, terminator, err := p.parseNodes(name)
	if err != nil {
		return nil, err
	}
	if terminator != name {
		return nil, fmt.Errorf("block {{#%s}} closed by {{/%s}}", name, terminator)
	}
	return blockNode{name: name, args: args, hash: hash, body: body}, nil
}

// parseTagContents splits a tag's interior into its helper name, positional
// arguments, and key=value hash arguments.
func parseTagContents(tag string) (string, []argument, map[string]argument, error) {
	fields, err := splitTagFields(tag)
	if err != nil {
		return "", nil, nil, err
	}
	if len(fields) == 0 {
		return "", nil, nil, errors.New("empty tag")
	}

	name := fields[0]
	if !validTagName(name) {
		return "", nil, nil, fmt.Errorf("invalid tag name %q", name)
	}

	var args []argument
	var hash map[string]argument
	for _, field := range fields[1:] {
		if key, rest, ok := splitHashField(field); ok {
			arg, err := parseArgument(rest)
			if err != nil {
				return "", nil, nil, fmt.Errorf("argument %s: %w", field, err)
			}
			if hash == nil {
				hash = make(map[string]argument)
			}
			hash[key] = arg
			continue
		}
		arg, err := parseArgument(field)
		if err != nil {
			return "", nil, nil, fmt.Errorf("argument %s: %w", field, err)
		}
		args = append(args, arg)
	}
	return name, args, hash, nil
}

// splitTagFields splits on whitespace while keeping quoted strings intact.
func splitTagFields(tag string) ([]string, error) {
	var fields []string
	i := 0
	for i < len(tag) {
		r := rune(tag[i])
		if unicode.IsSpace(r) {
			i++
			continue
		}
		if r == '"' {
			end := strings.IndexByte(tag[i+1:], '"')
			if end == -1 {
				return nil, errors.New("unterminated string literal")
			}
			fields = append(fields, tag[i:i+end+2])
			i += end + 2
			continue
		}
		start := i
		for i < len(tag) && !unicode.IsSpace(rune(tag[i])) {
			if tag[i] == '=' && i+1 < len(tag) && tag[i+1] == '"' {
				// key="quoted value"
				end := strings.IndexByte(tag[i+2:], '"')
				if end == -1 {
					return nil, errors.New("unterminated string literal")
				}
				i += end + 3
				break
			}
			i++
		}
		fields = append(fields, tag[start:i])
	}
	return fields, nil
}

// splitHashField splits key=value fields. A bare word containing '=' before
// any quote is treated as a hash entry.
func splitHashField(field string) (key, value string, ok bool) {
	eq := strings.IndexByte(field, '=')
	if eq <= 0 {
		return "", "", false
	}
	key = field[:eq]
	if !validTagName(key) {
		return "", "", false
	}
	return key, field[eq+1:], true
}

func parseArgument(field string) (argument, error) {
	switch {
	case field == "":
		return argument{}, errors.New("empty argument")
	case field == "null":
		return argument{kind: argNull}, nil
	case field[0] == '"':
		if len(field) < 2 || field[len(field)-1] != '"' {
			return argument{}, errors.New("unterminated string literal")
		}
		return argument{kind: argString, str: field[1 : len(field)-1]}, nil
	}
	if num, err := strconv.ParseFloat(field, 64); err == nil {
		return argument{kind: argNumber, num: num}, nil
	}
	if !validTagName(field) {
		return argument{}, fmt.Errorf("malformed argument %q", field)
	}
	return argument{kind: argVar, str: field}, nil
}

func validTagName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
