// Package poet compiles prompt documents into role-segmented message
// sequences and serves them to MCP clients as prompts.
//
// A prompt document is markdown with front matter, role markers, {expr}
// body expressions and component tags:
//
//	+++
//	title = "Ride"
//	description = "Ask about an animal"
//
//	[arguments.animal]
//	required = true
//	+++
//
//	**user**: How do I ride a <Argument name="animal" />?
//
//	**assistant**: Carefully.
//
// # Basic Usage
//
// Build every document under prompts/ and answer a request:
//
//	builder := poet.MustNewBuilder()
//	collection, err := builder.Build(ctx, poet.NewFilesystemSource(".", "prompts"))
//	if err != nil {
//	    // *poet.AggregateBuildError lists every failing document
//	}
//	resp, err := collection.Respond(ctx, "ride", map[string]string{"animal": "horse"})
//	// resp.Messages: [{user "How do I ride a horse?"} {assistant "Carefully."}]
//
// # Documents
//
// Front matter is TOML between +++ lines or YAML between --- lines. title
// is required; unknown fields are errors. Documents with render = false are
// skipped. A document's name is its path below the documents root without
// the .md extension.
//
// Blocks are separated by blank lines. A paragraph starting with
// **user**: or **assistant**: starts a new message. Fenced code blocks are
// copied verbatim.
//
// # Expressions
//
// Body text and attribute values may hold expressions in braces:
//
//	Hello {upper(context.arguments.name.input)}
//	<Note level={len(context.front_matter.props.tags)}>
//
// The scope binds context to {arguments, front_matter, name}. Missing
// paths are nil and render as nothing. Sequences render as the
// concatenation of their items.
//
// # Components
//
// Tags starting with an upper-case letter are components. Argument, Asset
// and Link are builtin; register more with WithComponent:
//
//	shout := poet.ComponentFunc(func(ctx context.Context, call poet.ComponentCall) (poet.Value, error) {
//	    return poet.StringValue(strings.ToUpper(call.Children)), nil
//	})
//	builder := poet.MustNewBuilder(poet.WithComponent("Shout", shout))
//
// Lower-case tags are literal markup and are emitted as written.
//
// # Serving
//
// NewMCPServer exposes a collection over MCP; Watcher rebuilds it when
// documents change.
package poet
