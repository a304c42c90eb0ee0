package poet

import (
	"errors"
	"testing"

	"github.com/Propfend/poet/internal"
	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestParseFrontMatter(t *testing.T) {
	t.Run("toml", func(t *testing.T) {
		raw := `title = "Ride"
description = "Ask about riding"
date = "2024-05-01"
layout = "chat"
render = false

[props]
tags = ["a", "b"]

[arguments.animal]
title = "Animal"
description = "What to ride"
required = true
date = 2024-06-01
`
		fm, err := ParseFrontMatter(internal.FrontMatterTOML, raw)
		require.NoError(t, err)
		assert.Equal(t, "Ride", fm.Title)
		assert.Equal(t, "Ask about riding", fm.Description)
		assert.Equal(t, DateText("2024-05-01"), fm.Date)
		assert.Equal(t, "chat", fm.Layout)
		assert.False(t, fm.ShouldRender())
		assert.Equal(t, []any{"a", "b"}, fm.Props["tags"])

		require.Contains(t, fm.Arguments, "animal")
		arg := fm.Arguments["animal"]
		assert.True(t, arg.Required)
		assert.Equal(t, "Animal", arg.Title)
		assert.Equal(t, DateText("2024-06-01"), arg.Date)
	})

	t.Run("yaml", func(t *testing.T) {
		raw := `title: Ride
description: Ask about riding
arguments:
  animal:
    required: true
props:
  level: 2
`
		fm, err := ParseFrontMatter(internal.FrontMatterYAML, raw)
		require.NoError(t, err)
		assert.Equal(t, "Ride", fm.Title)
		assert.True(t, fm.ShouldRender())
		assert.True(t, fm.Arguments["animal"].Required)
		assert.Equal(t, 2, fm.Props["level"])
	})

	t.Run("unknown toml field", func(t *testing.T) {
		_, err := ParseFrontMatter(internal.FrontMatterTOML, "title = \"x\"\nauthor = \"me\"\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgFrontMatterUnknownField)

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))
		field, ok := customErr.GetMetadata(MetaKeyField)
		require.True(t, ok)
		assert.Equal(t, "author", field)
	})

	t.Run("unknown nested toml field", func(t *testing.T) {
		_, err := ParseFrontMatter(internal.FrontMatterTOML, "title = \"x\"\n[arguments.a]\noptional = true\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "arguments.a.optional")
	})

	t.Run("unknown yaml field", func(t *testing.T) {
		_, err := ParseFrontMatter(internal.FrontMatterYAML, "title: x\nauthor: me\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgFrontMatterInvalid)
	})

	t.Run("missing title", func(t *testing.T) {
		for _, format := range []internal.FrontMatterFormat{internal.FrontMatterTOML, internal.FrontMatterYAML} {
			_, err := ParseFrontMatter(format, "")
			require.Error(t, err, format.String())
			assert.Contains(t, err.Error(), ErrMsgFrontMatterMissingTitle, format.String())
		}
	})

	t.Run("malformed toml", func(t *testing.T) {
		_, err := ParseFrontMatter(internal.FrontMatterTOML, "title = ")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgFrontMatterInvalid)
	})
}

func TestFrontMatter_Value(t *testing.T) {
	fm := FrontMatter{Title: "T", Description: "D", Props: map[string]any{"k": "v"}}
	v, err := fm.Value()
	require.NoError(t, err)

	title, ok := v.Lookup(ContextKeyTitle)
	require.True(t, ok)
	assert.Equal(t, "T", title.String())

	prop, ok := v.Lookup("props.k")
	require.True(t, ok)
	assert.Equal(t, "v", prop.String())
}

func TestParseDocument(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("blocks", func(t *testing.T) {
		source := "+++\ntitle = \"T\"\n+++\n# Heading\n\nText {upper(\"x\")} <b>bold</b>\n\n```\n{not evaluated}\n```\n"
		doc, err := ParseDocument(source, nil, logger)
		require.NoError(t, err)
		require.Len(t, doc.Blocks, 3)

		assert.Equal(t, BlockHeading, doc.Blocks[0].Kind)
		assert.Equal(t, 4, doc.Blocks[0].Line)

		para := doc.Blocks[1]
		assert.Equal(t, BlockParagraph, para.Kind)
		require.Len(t, para.Content.Children, 4)
		assert.IsType(t, &TextNode{}, para.Content.Children[0])
		assert.IsType(t, &BodyExpressionNode{}, para.Content.Children[1])
		el, ok := para.Content.Children[3].(*TagElement)
		require.True(t, ok)
		assert.Equal(t, "b", el.Opening.Name)
		assert.False(t, el.Opening.IsComponent)
		assert.True(t, el.IsClosed)

		code := doc.Blocks[2]
		assert.Equal(t, BlockCode, code.Kind)
		require.Len(t, code.Content.Children, 1)
		text, ok := code.Content.Children[0].(*TextNode)
		require.True(t, ok)
		assert.Equal(t, "```\n{not evaluated}\n```", text.Text)
	})

	t.Run("component attributes compile", func(t *testing.T) {
		source := "+++\ntitle = \"T\"\n+++\n<Note level={1} kind=\"x\" loud/>\n"
		doc, err := ParseDocument(source, nil, logger)
		require.NoError(t, err)

		el, ok := doc.Blocks[0].Content.Children[0].(*TagElement)
		require.True(t, ok)
		assert.True(t, el.Opening.IsComponent)
		assert.True(t, el.Opening.SelfClosing)
		require.Len(t, el.Opening.Attributes, 3)
		assert.NotNil(t, el.Opening.Attributes[0].Value.Expression)
		assert.Equal(t, "x", el.Opening.Attributes[1].Value.Text)
		assert.Nil(t, el.Opening.Attributes[2].Value)
	})

	t.Run("missing front matter", func(t *testing.T) {
		_, err := ParseDocument("just text\n", nil, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgFrontMatterInvalid)
	})

	t.Run("markup error carries position", func(t *testing.T) {
		_, err := ParseDocument("+++\ntitle = \"T\"\n+++\ntext </b>\n", nil, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgMarkupInvalid)

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))
		line, ok := customErr.GetMetadata(MetaKeyLine)
		require.True(t, ok)
		assert.Equal(t, "4", line)
		column, ok := customErr.GetMetadata(MetaKeyColumn)
		require.True(t, ok)
		assert.Equal(t, "6", column)
	})

	t.Run("expression compile error carries position", func(t *testing.T) {
		_, err := ParseDocument("+++\ntitle = \"T\"\n+++\n**user**: {a &&}\n", nil, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgExpressionCompile)

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))
		line, _ := customErr.GetMetadata(MetaKeyLine)
		column, _ := customErr.GetMetadata(MetaKeyColumn)
		expr, _ := customErr.GetMetadata(MetaKeyExpression)
		assert.Equal(t, "4", line)
		assert.Equal(t, "11", column)
		assert.Equal(t, "a &&", expr)
	})
}
