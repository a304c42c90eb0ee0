package poet

import (
	"context"
	"fmt"
)

const (
	argumentsPathPrefix = ContextKeyArguments + "."
	argumentInputSuffix = "." + ArgumentInputKey
	markdownLinkFormat  = "[%s](%s)"
)

// registerBuiltinComponents installs Argument, Asset and Link
func registerBuiltinComponents(r *ComponentRegistry) {
	r.MustRegister(ComponentNameArgument, ComponentFunc(renderArgument))
	r.MustRegister(ComponentNameAsset, ComponentFunc(renderAsset))
	r.MustRegister(ComponentNameLink, ComponentFunc(renderLink))
}

// renderArgument renders <Argument name="x" default="..."/> as the request
// input of argument x, falling back to default when it was not given.
func renderArgument(_ context.Context, call ComponentCall) (Value, error) {
	name, err := call.RequireProp(PropName)
	if err != nil {
		return NilValue(), err
	}

	input, ok := call.Context.Lookup(argumentsPathPrefix + name.String() + argumentInputSuffix)
	if ok && !input.IsNil() {
		return input, nil
	}
	if fallback, ok := call.Prop(PropDefault); ok {
		return fallback, nil
	}
	return NilValue(), nil
}

// renderAsset renders <Asset src="..."/> as the resolved asset URL
func renderAsset(_ context.Context, call ComponentCall) (Value, error) {
	src, err := call.RequireProp(PropSrc)
	if err != nil {
		return NilValue(), err
	}
	if call.Assets == nil {
		return NilValue(), NewConfigError(ErrMsgNoAssetResolver)
	}

	url, err := call.Assets.ResolveAsset(src.String())
	if err != nil {
		return NilValue(), err
	}
	return StringValue(url), nil
}

// renderLink renders <Link to="name"/> as the link to another prompt, or
// as a markdown link when it has children.
func renderLink(_ context.Context, call ComponentCall) (Value, error) {
	to, err := call.RequireProp(PropTo)
	if err != nil {
		return NilValue(), err
	}
	if call.Linker == nil {
		return NilValue(), NewConfigError(ErrMsgNoDocumentLinker)
	}

	url, err := call.Linker.LinkTo(to.String())
	if err != nil {
		return NilValue(), err
	}
	if call.Children == "" {
		return StringValue(url), nil
	}
	return StringValue(fmt.Sprintf(markdownLinkFormat, call.Children, url)), nil
}
