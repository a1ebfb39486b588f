package templating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate_PlainText(t *testing.T) {
	nodes, err := parseTemplate("no tags here")

	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, textNode{text: "no tags here"}, nodes[0])
}

func TestParseTemplate_Empty(t *testing.T) {
	nodes, err := parseTemplate("")

	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestParseTemplate_InlineTag(t *testing.T) {
	nodes, err := parseTemplate(`a {{trim "  x  "}} b`)

	require.NoError(t, err)
	require.Len(t, nodes, 3)

	tag, ok := nodes[1].(tagNode)
	require.True(t, ok)
	assert.Equal(t, "trim", tag.name)
	require.Len(t, tag.args, 1)
	assert.Equal(t, argString, tag.args[0].kind)
	assert.Equal(t, "  x  ", tag.args[0].str)
}

func TestParseTemplate_BlockTag(t *testing.T) {
	nodes, err := parseTemplate("{{#iterate count=3}}x{{/iterate}}")

	require.NoError(t, err)
	require.Len(t, nodes, 1)

	block, ok := nodes[0].(blockNode)
	require.True(t, ok)
	assert.Equal(t, "iterate", block.name)
	require.Contains(t, block.hash, "count")
	assert.Equal(t, argNumber, block.hash["count"].kind)
	assert.Equal(t, 3.0, block.hash["count"].num)
	require.Len(t, block.body, 1)
	assert.Equal(t, textNode{text: "x"}, block.body[0])
}

func TestParseTemplate_NestedBlocks(t *testing.T) {
	nodes, err := parseTemplate("{{#iterate count=2}}{{#first}}[{{/first}}{{index}}{{/iterate}}")

	require.NoError(t, err)
	require.Len(t, nodes, 1)

	outer := nodes[0].(blockNode)
	require.Len(t, outer.body, 2)

	inner, ok := outer.body[0].(blockNode)
	require.True(t, ok)
	assert.Equal(t, "first", inner.name)

	variable, ok := outer.body[1].(tagNode)
	require.True(t, ok)
	assert.Equal(t, "index", variable.name)
}

func TestParseTemplate_ArgumentKinds(t *testing.T) {
	nodes, err := parseTemplate(`{{record "offset" null}}{{record "offset" 4.5}}{{eq index 0}}`)

	require.NoError(t, err)
	require.Len(t, nodes, 3)

	first := nodes[0].(tagNode)
	assert.Equal(t, argNull, first.args[1].kind)

	second := nodes[1].(tagNode)
	assert.Equal(t, argNumber, second.args[1].kind)
	assert.Equal(t, 4.5, second.args[1].num)

	third := nodes[2].(tagNode)
	assert.Equal(t, argVar, third.args[0].kind)
	assert.Equal(t, "index", third.args[0].str)
	assert.Equal(t, argNumber, third.args[1].kind)
}

func TestParseTemplate_QuotedHashValue(t *testing.T) {
	nodes, err := parseTemplate(`{{#replay name="the offset"}}{{/replay}}`)

	require.NoError(t, err)
	block := nodes[0].(blockNode)
	require.Contains(t, block.hash, "name")
	assert.Equal(t, "the offset", block.hash["name"].str)
}

func TestParseTemplate_UnterminatedTag(t *testing.T) {
	_, err := parseTemplate("before {{trim")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated tag")
}

func TestParseTemplate_UnterminatedBlock(t *testing.T) {
	_, err := parseTemplate("{{#iterate count=1}}body")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated block")
}

func TestParseTemplate_MismatchedClosingTag(t *testing.T) {
	_, err := parseTemplate("{{#first}}x{{/last}}")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed by")
}

func TestParseTemplate_StrayClosingTag(t *testing.T) {
	_, err := parseTemplate("x{{/iterate}}")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected closing tag")
}

func TestParseTemplate_EmptyTag(t *testing.T) {
	_, err := parseTemplate("{{   }}")

	require.Error(t, err)
}

func TestParseTemplate_UnterminatedStringLiteral(t *testing.T) {
	_, err := parseTemplate(`{{record "offset}}`)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated string literal")
}

func TestParseTemplate_InvalidTagName(t *testing.T) {
	_, err := parseTemplate("{{bad-name}}")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tag name")
}
