package poet

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func getPromptRequest(name string, args map[string]string) mcp.GetPromptRequest {
	var req mcp.GetPromptRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func TestMCPServer(t *testing.T) {
	ctx := context.Background()
	builder := MustNewBuilder()

	collection, err := builder.Build(ctx, NewMemorySource().
		Add("prompts/ride.md", rideDocument).
		Add("prompts/walk.md", "+++\ntitle = \"Walk\"\n+++\n**user**: walk\n"))
	require.NoError(t, err)

	s := NewMCPServer("poet", "test", collection, zaptest.NewLogger(t))
	require.NotNil(t, s.Server())
	assert.Equal(t, []string{"ride", "walk"}, s.Prompts())

	t.Run("get prompt", func(t *testing.T) {
		result, err := s.handleGetPrompt(ctx, getPromptRequest("ride", map[string]string{"animal": "horse"}))
		require.NoError(t, err)
		assert.Equal(t, "Ask how to ride an animal", result.Description)
		require.Len(t, result.Messages, 2)

		assert.Equal(t, mcp.RoleUser, result.Messages[0].Role)
		text, ok := result.Messages[0].Content.(mcp.TextContent)
		require.True(t, ok)
		assert.Equal(t, "How do I ride a horse?", text.Text)
		assert.Equal(t, mcp.RoleAssistant, result.Messages[1].Role)
	})

	t.Run("request errors", func(t *testing.T) {
		_, err := s.handleGetPrompt(ctx, getPromptRequest("ride", nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgMissingArgument)

		_, err = s.handleGetPrompt(ctx, getPromptRequest("fly", nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgPromptNotFound)
	})

	t.Run("update swaps prompts", func(t *testing.T) {
		next, err := builder.Build(ctx, NewMemorySource().
			Add("prompts/walk.md", "+++\ntitle = \"Walk\"\n+++\n**user**: walk faster\n").
			Add("prompts/swim.md", "+++\ntitle = \"Swim\"\n+++\n**user**: swim\n"))
		require.NoError(t, err)

		s.Update(next)
		assert.Equal(t, []string{"swim", "walk"}, s.Prompts())
		assert.Same(t, next, s.Collection())

		result, err := s.handleGetPrompt(ctx, getPromptRequest("walk", nil))
		require.NoError(t, err)
		text, ok := result.Messages[0].Content.(mcp.TextContent)
		require.True(t, ok)
		assert.Equal(t, "walk faster", text.Text)

		_, err = s.handleGetPrompt(ctx, getPromptRequest("ride", nil))
		assert.Error(t, err)
	})

	t.Run("roles outside MCP fail the request", func(t *testing.T) {
		collection, err := MustNewBuilder(WithRoleMarkers(RoleUser, "system")).
			Build(ctx, NewMemorySource().Add("prompts/sys.md", "+++\ntitle = \"Sys\"\n+++\n**system**: be brief\n\n**user**: hi\n"))
		require.NoError(t, err)

		custom := NewMCPServer("poet", "test", collection, zaptest.NewLogger(t))
		result, err := custom.handleGetPrompt(ctx, getPromptRequest("sys", nil))
		require.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), ErrMsgUnsupportedRole)
	})

	t.Run("nil collection", func(t *testing.T) {
		s.Update(nil)
		assert.Empty(t, s.Prompts())
		assert.Equal(t, 0, s.Collection().Len())
	})
}

func TestPromptDefinition(t *testing.T) {
	t.Run("titles and dates travel in meta", func(t *testing.T) {
		prompt := promptDefinition(PromptDescriptor{
			Name:        "ride",
			Title:       "Ride",
			Description: "Ask how to ride",
			Arguments: []ArgumentDescriptor{
				{Name: "animal", Title: "Animal", Description: "The animal", Required: true, Date: "2024-05-01"},
				{Name: "mood"},
			},
		})

		assert.Equal(t, "ride", prompt.Name)
		assert.Equal(t, "Ask how to ride", prompt.Description)
		require.Len(t, prompt.Arguments, 2)
		assert.Equal(t, "animal", prompt.Arguments[0].Name)
		assert.Equal(t, "The animal", prompt.Arguments[0].Description)
		assert.True(t, prompt.Arguments[0].Required)
		assert.False(t, prompt.Arguments[1].Required)

		require.NotNil(t, prompt.Meta)
		assert.Equal(t, "Ride", prompt.Meta.AdditionalFields[MCPMetaTitle])
		assert.Equal(t, map[string]any{
			"animal": map[string]any{MCPMetaTitle: "Animal", MCPMetaDate: "2024-05-01"},
		}, prompt.Meta.AdditionalFields[MCPMetaArguments])
	})

	t.Run("description falls back to title", func(t *testing.T) {
		prompt := promptDefinition(PromptDescriptor{Name: "walk", Title: "Walk"})
		assert.Equal(t, "Walk", prompt.Description)
		require.NotNil(t, prompt.Meta)
		assert.Equal(t, map[string]any{MCPMetaTitle: "Walk"}, prompt.Meta.AdditionalFields)
	})

	t.Run("built collection", func(t *testing.T) {
		collection, err := MustNewBuilder().Build(context.Background(), NewMemorySource().Add("prompts/ride.md", rideDocument))
		require.NoError(t, err)
		descriptors := collection.Describe()
		require.Len(t, descriptors, 1)

		prompt := promptDefinition(descriptors[0])
		require.NotNil(t, prompt.Meta)
		assert.Equal(t, "Ride", prompt.Meta.AdditionalFields[MCPMetaTitle])
		arguments, ok := prompt.Meta.AdditionalFields[MCPMetaArguments].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, map[string]any{MCPMetaTitle: "Animal"}, arguments["animal"])
	})
}
