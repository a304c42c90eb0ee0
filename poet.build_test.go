package poet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const rideDocument = `+++
title = "Ride"
description = "Ask how to ride an animal"

[arguments.animal]
title = "Animal"
description = "The animal to ride"
required = true
+++

**user**: How do I ride a <Argument name="animal" />?

**assistant**: Carefully.
`

func TestBuilder_RideScenario(t *testing.T) {
	ctx := context.Background()
	builder := MustNewBuilder(WithLogger(zaptest.NewLogger(t)))

	collection, err := builder.Build(ctx, NewMemorySource().Add("prompts/ride.md", rideDocument))
	require.NoError(t, err)
	assert.Equal(t, []string{"ride"}, collection.Names())

	resp, err := collection.Respond(ctx, "ride", map[string]string{"animal": "horse"})
	require.NoError(t, err)
	assert.Equal(t, "Ask how to ride an animal", resp.Description)
	assert.Equal(t, []PromptMessage{
		{Role: RoleUser, Content: "How do I ride a horse?"},
		{Role: RoleAssistant, Content: "Carefully."},
	}, resp.Messages)

	t.Run("missing argument", func(t *testing.T) {
		resp, err := collection.Respond(ctx, "ride", nil)
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.Contains(t, err.Error(), "animal")

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))
		doc, ok := customErr.GetMetadata(MetaKeyDocument)
		require.True(t, ok)
		assert.Equal(t, "ride", doc)
	})

	t.Run("repeated requests are identical", func(t *testing.T) {
		args := map[string]string{"animal": "camel"}
		first, err := collection.Respond(ctx, "ride", args)
		require.NoError(t, err)
		second, err := collection.Respond(ctx, "ride", args)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("concurrent requests", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				animal := fmt.Sprintf("animal-%d", i)
				resp, err := collection.Respond(ctx, "ride", map[string]string{"animal": animal})
				if assert.NoError(t, err) {
					assert.Equal(t, "How do I ride a "+animal+"?", resp.Messages[0].Content)
				}
			}(i)
		}
		wg.Wait()
	})

	t.Run("describe", func(t *testing.T) {
		descriptors := collection.Describe()
		require.Len(t, descriptors, 1)
		assert.Equal(t, PromptDescriptor{
			Name:        "ride",
			Title:       "Ride",
			Description: "Ask how to ride an animal",
			Arguments: []ArgumentDescriptor{
				{Name: "animal", Title: "Animal", Description: "The animal to ride", Required: true},
			},
		}, descriptors[0])
	})

	t.Run("unknown prompt", func(t *testing.T) {
		_, err := collection.Respond(ctx, "walk", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgPromptNotFound)
	})
}

func TestBuilder_Isolation(t *testing.T) {
	ctx := context.Background()
	source := NewMemorySource().
		Add("prompts/good.md", "+++\ntitle = \"Good\"\n+++\n**user**: fine\n").
		Add("prompts/bad.md", "+++\ntitle = \"Bad\"\nbogus = 1\n+++\n**user**: broken\n").
		Add("prompts/worse.md", "no front matter\n")

	_, err := MustNewBuilder(WithWorkers(2)).Build(ctx, source)
	require.Error(t, err)

	var buildErr *AggregateBuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, []string{"bad", "worse"}, buildErr.Documents())
	assert.Equal(t, 2, buildErr.Len())
	assert.Contains(t, buildErr.DocumentError("bad").Error(), ErrMsgFrontMatterUnknownField)
	assert.Nil(t, buildErr.DocumentError("good"))

	text := err.Error()
	assert.Contains(t, text, ErrMsgBuildFailed)
	assert.Less(t, strings.Index(text, "bad"), strings.Index(text, "worse"))
	assert.Len(t, buildErr.Unwrap(), 2)

	t.Run("one bad document among many", func(t *testing.T) {
		source := NewMemorySource()
		for i := 0; i < 50; i++ {
			source.Add(fmt.Sprintf("prompts/doc%02d.md", i), fmt.Sprintf("+++\ntitle = \"Doc %d\"\n+++\n**user**: %d\n", i, i))
		}
		source.Add("prompts/bad.md", "+++\ntitle = \"Bad\"\nbogus = 1\n+++\n**user**: broken\n")

		for run := 0; run < 5; run++ {
			_, err := MustNewBuilder(WithWorkers(8)).Build(ctx, source)
			require.Error(t, err)

			var buildErr *AggregateBuildError
			require.True(t, errors.As(err, &buildErr))
			assert.Equal(t, []string{"bad"}, buildErr.Documents(), "run %d", run)
			assert.Equal(t, 1, buildErr.Len())
		}
	})
}

func TestBuilder_Build(t *testing.T) {
	ctx := context.Background()

	t.Run("render disabled documents are skipped", func(t *testing.T) {
		source := NewMemorySource().
			Add("prompts/shown.md", "+++\ntitle = \"Shown\"\n+++\n**user**: x\n").
			Add("prompts/hidden.md", "+++\ntitle = \"Hidden\"\nrender = false\n+++\n**user**: x\n")
		collection, err := MustNewBuilder().Build(ctx, source)
		require.NoError(t, err)
		assert.Equal(t, []string{"shown"}, collection.Names())
	})

	t.Run("non markdown files are ignored", func(t *testing.T) {
		source := NewMemorySource().
			Add("prompts/a.md", "+++\ntitle = \"A\"\n+++\n**user**: x\n").
			Add("prompts/notes.txt", "not a prompt")
		collection, err := MustNewBuilder().Build(ctx, source)
		require.NoError(t, err)
		assert.Equal(t, 1, collection.Len())
	})

	t.Run("nested names", func(t *testing.T) {
		source := NewMemorySource().Add("prompts/guides/riding.md", "+++\ntitle = \"R\"\n+++\n**user**: x\n")
		collection, err := MustNewBuilder().Build(ctx, source)
		require.NoError(t, err)
		_, ok := collection.Get("guides/riding")
		assert.True(t, ok)
	})

	t.Run("documents outside the root fail", func(t *testing.T) {
		source := NewMemorySource().Add("drafts/a.md", "+++\ntitle = \"A\"\n+++\n**user**: x\n")
		_, err := MustNewBuilder().Build(ctx, source)
		require.Error(t, err)

		var buildErr *AggregateBuildError
		require.True(t, errors.As(err, &buildErr))
		assert.Equal(t, []string{"drafts/a.md"}, buildErr.Documents())
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := MustNewBuilder().Build(cancelled, NewMemorySource())
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("empty source builds an empty collection", func(t *testing.T) {
		collection, err := MustNewBuilder().Build(ctx, NewMemorySource())
		require.NoError(t, err)
		assert.Equal(t, 0, collection.Len())
		assert.Empty(t, collection.Describe())
	})

	t.Run("links between documents", func(t *testing.T) {
		source := NewMemorySource().
			Add("prompts/a.md", "+++\ntitle = \"A\"\n+++\n**user**: see <Link to=\"b\">B</Link>\n").
			Add("prompts/b.md", "+++\ntitle = \"B\"\n+++\n**user**: b\n")
		collection, err := MustNewBuilder(WithLinkBaseURL("https://docs.test/")).Build(ctx, source)
		require.NoError(t, err)

		resp, err := collection.Respond(ctx, "a", nil)
		require.NoError(t, err)
		assert.Equal(t, "see [B](https://docs.test/b)", resp.Messages[0].Content)
	})

	t.Run("custom component and expressions", func(t *testing.T) {
		shout := ComponentFunc(func(_ context.Context, call ComponentCall) (Value, error) {
			return StringValue(strings.ToUpper(call.Children)), nil
		})
		doc := "+++\ntitle = \"T\"\n[props]\nlist = [\"x\", \"y\"]\n+++\n" +
			"**user**: <Shout>hi {context.name}</Shout> {context.front_matter.props.list}\n"
		collection, err := MustNewBuilder(WithComponent("Shout", shout)).
			Build(ctx, NewMemorySource().Add("prompts/t.md", doc))
		require.NoError(t, err)

		resp, err := collection.Respond(ctx, "t", nil)
		require.NoError(t, err)
		assert.Equal(t, "HI T xy", resp.Messages[0].Content)
	})

	t.Run("strict arguments", func(t *testing.T) {
		collection, err := MustNewBuilder(WithStrictArguments(true)).
			Build(ctx, NewMemorySource().Add("prompts/ride.md", rideDocument))
		require.NoError(t, err)

		_, err = collection.Respond(ctx, "ride", map[string]string{"animal": "horse", "saddle": "yes"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgUnknownArgument)
	})

	t.Run("lenient arguments", func(t *testing.T) {
		collection, err := MustNewBuilder().Build(ctx, NewMemorySource().Add("prompts/ride.md", rideDocument))
		require.NoError(t, err)

		_, err = collection.Respond(ctx, "ride", map[string]string{"animal": "horse", "saddle": "yes"})
		require.NoError(t, err)
	})

	t.Run("misspelled binding fails the request", func(t *testing.T) {
		doc := "+++\ntitle = \"T\"\n+++\n**user**: hi {contxt.arguments.x.input}!\n"
		collection, err := MustNewBuilder().Build(ctx, NewMemorySource().Add("prompts/t.md", doc))
		require.NoError(t, err)

		resp, err := collection.Respond(ctx, "t", map[string]string{"x": "y"})
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.Contains(t, err.Error(), ErrMsgContextMissing)

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))
		assert.Equal(t, ErrCodeScope, customErr.Code)
	})

	t.Run("omitted optional argument renders empty", func(t *testing.T) {
		doc := "+++\ntitle = \"T\"\n[arguments.color]\ndescription = \"C\"\n+++\n**user**: a{context.arguments.color.input}b\n"
		collection, err := MustNewBuilder().Build(ctx, NewMemorySource().Add("prompts/t.md", doc))
		require.NoError(t, err)

		resp, err := collection.Respond(ctx, "t", nil)
		require.NoError(t, err)
		assert.Equal(t, "ab", resp.Messages[0].Content)
	})

	t.Run("unregistered component fails the request only", func(t *testing.T) {
		doc := "+++\ntitle = \"T\"\n+++\n**user**: <Unknown/>\n"
		collection, err := MustNewBuilder().Build(ctx, NewMemorySource().Add("prompts/t.md", doc))
		require.NoError(t, err)

		resp, err := collection.Respond(ctx, "t", nil)
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.Contains(t, err.Error(), "Unknown")
	})
}

func TestNewBuilder(t *testing.T) {
	t.Run("builtins registered", func(t *testing.T) {
		b := MustNewBuilder()
		assert.Equal(t, []string{ComponentNameArgument, ComponentNameAsset, ComponentNameLink}, b.Registry().List())
	})

	t.Run("invalid component name", func(t *testing.T) {
		_, err := NewBuilder(WithComponent("lower", constComponent("x")))
		require.Error(t, err)
		assert.Panics(t, func() { MustNewBuilder(WithComponent("lower", constComponent("x"))) })
	})

	t.Run("empty role marker", func(t *testing.T) {
		_, err := NewBuilder(WithRoleMarkers(""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgInvalidRole)
	})

	t.Run("components map overrides builtins", func(t *testing.T) {
		b := MustNewBuilder(WithComponents(map[string]Component{ComponentNameArgument: constComponent("fixed")}))
		c, err := b.Compile("ride", rideDocument)
		require.NoError(t, err)

		resp, err := c.Respond(context.Background(), map[string]string{"animal": "horse"})
		require.NoError(t, err)
		assert.Equal(t, "How do I ride a fixed?", resp.Messages[0].Content)
	})
}

func TestDocumentName(t *testing.T) {
	tests := []struct {
		root, path, expected string
	}{
		{"prompts", "prompts/a/b.md", "a/b"},
		{"prompts", "./prompts/a.md", "a"},
		{"prompts/", "prompts/a.md", "a"},
		{"", "a/b.md", "a/b"},
		{".", "x.md", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			name, err := DocumentName(tt.root, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, name)
		})
	}

	for _, bad := range []string{"other/a.md", "prompts", "promptsx/a.md", "prompts/../a.md"} {
		_, err := DocumentName("prompts", bad)
		assert.Error(t, err, bad)
	}
}

func TestDocumentErrorCollection(t *testing.T) {
	c := NewDocumentErrorCollection()
	assert.True(t, c.IsEmpty())

	first := errors.New("first")
	assert.True(t, c.Register("a", first))
	assert.False(t, c.Register("a", errors.New("second")))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Register(fmt.Sprintf("doc-%d", i), errors.New("x"))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 11, c.Len())
	snapshot := c.Snapshot()
	assert.Equal(t, first, snapshot["a"])

	snapshot["b"] = errors.New("mutated")
	assert.Equal(t, 11, c.Len())
}
