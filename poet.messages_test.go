package poet

import (
	"context"
	"errors"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func assembleBody(t *testing.T, body string, opts ...Option) ([]PromptMessage, error) {
	t.Helper()
	doc, err := ParseDocument("+++\ntitle = \"T\"\n+++\n"+body, nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	interp := newTestInterpreter(t, nil)
	assembler := NewMessageAssembler(interp, opts...)
	return assembler.Assemble(context.Background(), doc.Blocks, contextScope(MapValue(nil)))
}

func TestMessageAssembler_Assemble(t *testing.T) {
	t.Run("three messages", func(t *testing.T) {
		messages, err := assembleBody(t, "**user**: Hi\n\n**assistant**: Hello\n\n**user**: Bye\n")
		require.NoError(t, err)
		assert.Equal(t, []PromptMessage{
			{Role: RoleUser, Content: "Hi"},
			{Role: RoleAssistant, Content: "Hello"},
			{Role: RoleUser, Content: "Bye"},
		}, messages)
	})

	t.Run("blocks of one message join with a blank line", func(t *testing.T) {
		messages, err := assembleBody(t, "**user**: First\n\nSecond  \n\n# Third\n")
		require.NoError(t, err)
		require.Len(t, messages, 1)
		assert.Equal(t, "First\n\nSecond\n\n# Third", messages[0].Content)
	})

	t.Run("marker alone starts the next block's message", func(t *testing.T) {
		messages, err := assembleBody(t, "**user**:\n\nQuestion\n")
		require.NoError(t, err)
		assert.Equal(t, []PromptMessage{{Role: RoleUser, Content: "Question"}}, messages)
	})

	t.Run("empty chunks are dropped", func(t *testing.T) {
		messages, err := assembleBody(t, "**user**:\n\n**assistant**: Answer\n")
		require.NoError(t, err)
		assert.Equal(t, []PromptMessage{{Role: RoleAssistant, Content: "Answer"}}, messages)
	})

	t.Run("markers are case-insensitive", func(t *testing.T) {
		messages, err := assembleBody(t, "**User**: a\n\n**ASSISTANT** : b\n")
		require.NoError(t, err)
		assert.Equal(t, []PromptMessage{
			{Role: RoleUser, Content: "a"},
			{Role: RoleAssistant, Content: "b"},
		}, messages)
	})

	t.Run("unknown bold token is content", func(t *testing.T) {
		messages, err := assembleBody(t, "**user**: a\n\n**note**: b\n")
		require.NoError(t, err)
		require.Len(t, messages, 1)
		assert.Equal(t, "a\n\n**note**: b", messages[0].Content)
	})

	t.Run("code block is verbatim", func(t *testing.T) {
		messages, err := assembleBody(t, "**user**: Run\n\n```go\nfmt.Println(\"{x}\")\n```\n")
		require.NoError(t, err)
		require.Len(t, messages, 1)
		assert.Equal(t, "Run\n\n```go\nfmt.Println(\"{x}\")\n```", messages[0].Content)
	})

	t.Run("marker only in leading text", func(t *testing.T) {
		messages, err := assembleBody(t, "**user**: say **assistant**: no\n")
		require.NoError(t, err)
		assert.Equal(t, []PromptMessage{{Role: RoleUser, Content: "say **assistant**: no"}}, messages)
	})

	t.Run("untagged content is an error by default", func(t *testing.T) {
		_, err := assembleBody(t, "Preamble\n\n**user**: Hi\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgNoCurrentRole)

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))
		line, ok := customErr.GetMetadata(MetaKeyLine)
		require.True(t, ok)
		assert.Equal(t, "4", line)
	})

	t.Run("untagged content falls back to a role", func(t *testing.T) {
		messages, err := assembleBody(t, "Preamble\n\n**assistant**: Hi\n", WithUntaggedRole("system"))
		require.NoError(t, err)
		assert.Equal(t, []PromptMessage{
			{Role: "system", Content: "Preamble"},
			{Role: RoleAssistant, Content: "Hi"},
		}, messages)
	})

	t.Run("custom markers", func(t *testing.T) {
		messages, err := assembleBody(t, "**system**: Rules\n\n**user**: Hi\n", WithRoleMarkers("system", RoleUser))
		require.NoError(t, err)
		assert.Equal(t, []PromptMessage{
			{Role: "system", Content: "Rules"},
			{Role: RoleUser, Content: "Hi"},
		}, messages)
	})

	t.Run("empty document has no messages", func(t *testing.T) {
		messages, err := assembleBody(t, "")
		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("tree is not modified", func(t *testing.T) {
		doc, err := ParseDocument("+++\ntitle = \"T\"\n+++\n**user**: Hi\n", nil, nil)
		require.NoError(t, err)
		assembler := NewMessageAssembler(newTestInterpreter(t, nil))

		for i := 0; i < 2; i++ {
			messages, err := assembler.Assemble(context.Background(), doc.Blocks, contextScope(MapValue(nil)))
			require.NoError(t, err)
			assert.Equal(t, []PromptMessage{{Role: RoleUser, Content: "Hi"}}, messages)
		}
		text, ok := doc.Blocks[0].Content.Children[0].(*TextNode)
		require.True(t, ok)
		assert.Equal(t, "**user**: Hi", text.Text)
	})
}
