package poet

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	tagOpen       = "<"
	tagClose      = ">"
	tagSelfClose  = "/>"
	tagCloseOpen  = "</"
	attrSeparator = " "
	attrAssign    = "="
	attrQuote     = `"`
	attrQuoteEsc  = "&quot;"
)

// Interpreter renders compiled tag trees to text. It holds no per-request
// state and is safe for concurrent use.
type Interpreter struct {
	registry  *ComponentRegistry
	evaluator Evaluator
	logger    *zap.Logger
}

// NewInterpreter creates an interpreter over a component registry and an
// expression evaluator
func NewInterpreter(registry *ComponentRegistry, evaluator Evaluator, logger *zap.Logger) *Interpreter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if evaluator == nil {
		evaluator = NewExpressionEvaluator()
	}
	if registry == nil {
		registry = NewComponentRegistry(logger)
	}
	return &Interpreter{registry: registry, evaluator: evaluator, logger: logger}
}

// Render renders a node. The first failing child aborts the render.
func (i *Interpreter) Render(ctx context.Context, node TagNode, scope *Scope) (string, error) {
	switch n := node.(type) {
	case *TextNode:
		return n.Text, nil
	case *BodyExpressionNode:
		v, err := i.evaluate(ctx, n.Expression, scope)
		if err != nil {
			return "", err
		}
		return v.Flatten(), nil
	case *TagElement:
		return i.renderElement(ctx, n, scope)
	default:
		return "", nil
	}
}

func (i *Interpreter) renderElement(ctx context.Context, el *TagElement, scope *Scope) (string, error) {
	if el.Opening == nil {
		return i.renderChildren(ctx, el.Children, scope)
	}
	if el.Opening.IsComponent {
		return i.renderComponent(ctx, el, scope)
	}
	return i.renderLiteral(ctx, el, scope)
}

func (i *Interpreter) renderChildren(ctx context.Context, children []TagNode, scope *Scope) (string, error) {
	var b strings.Builder
	for _, child := range children {
		text, err := i.Render(ctx, child, scope)
		if err != nil {
			return "", err
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// renderLiteral re-emits a markup tag around its rendered children. The
// closing tag appears only when the source closed it.
func (i *Interpreter) renderLiteral(ctx context.Context, el *TagElement, scope *Scope) (string, error) {
	header := el.Opening

	var b strings.Builder
	b.WriteString(tagOpen)
	b.WriteString(header.Name)
	for _, attr := range header.Attributes {
		b.WriteString(attrSeparator)
		text, err := i.renderAttribute(ctx, attr, scope)
		if err != nil {
			return "", err
		}
		b.WriteString(text)
	}
	if header.SelfClosing {
		b.WriteString(tagSelfClose)
	} else {
		b.WriteString(tagClose)
	}

	children, err := i.renderChildren(ctx, el.Children, scope)
	if err != nil {
		return "", err
	}
	b.WriteString(children)

	if el.IsClosed {
		b.WriteString(tagCloseOpen)
		b.WriteString(header.Name)
		b.WriteString(tagClose)
	}
	return b.String(), nil
}

func (i *Interpreter) renderAttribute(ctx context.Context, attr Attribute, scope *Scope) (string, error) {
	if attr.Value == nil {
		return attr.Name, nil
	}
	text := attr.Value.Text
	if attr.Value.Expression != nil {
		v, err := i.evaluate(ctx, attr.Value.Expression, scope)
		if err != nil {
			return "", err
		}
		text = v.String()
	}
	escaped := strings.ReplaceAll(text, attrQuote, attrQuoteEsc)
	return attr.Name + attrAssign + attrQuote + escaped + attrQuote, nil
}

// renderComponent renders children, builds props, then dispatches. Any
// failure discards the whole render.
func (i *Interpreter) renderComponent(ctx context.Context, el *TagElement, scope *Scope) (string, error) {
	name := el.Opening.Name

	children, err := i.renderChildren(ctx, el.Children, scope)
	if err != nil {
		return "", err
	}

	props, err := i.buildProps(ctx, el.Opening.Attributes, scope)
	if err != nil {
		return "", err
	}

	component, err := i.registry.Resolve(name)
	if err != nil {
		return "", err
	}

	if scope == nil {
		return "", NewScopeError(ContextBinding)
	}
	contextValue, err := scope.Context()
	if err != nil {
		return "", err
	}

	result, err := component.Render(ctx, ComponentCall{
		Name:     name,
		Context:  contextValue,
		Props:    props,
		Children: children,
		Assets:   scope.Assets(),
		Linker:   scope.Linker(),
	})
	if err != nil {
		return "", NewDispatchError(name, err)
	}
	return result.String(), nil
}

func (i *Interpreter) buildProps(ctx context.Context, attrs []Attribute, scope *Scope) (*Map, error) {
	props := NewMap()
	for _, attr := range attrs {
		switch {
		case attr.Value == nil:
			props.Set(attr.Name, BoolValue(true))
		case attr.Value.Expression != nil:
			v, err := i.evaluate(ctx, attr.Value.Expression, scope)
			if err != nil {
				return nil, err
			}
			props.Set(attr.Name, v)
		default:
			props.Set(attr.Name, StringValue(attr.Value.Text))
		}
	}
	return props, nil
}

func (i *Interpreter) evaluate(ctx context.Context, expr Expression, scope *Scope) (Value, error) {
	v, err := i.evaluator.Evaluate(ctx, expr, scope)
	if err != nil {
		if scopeErr, ok := asScopeError(err); ok {
			return NilValue(), scopeErr.WithMetadata(MetaKeyExpression, expr.Source())
		}
		return NilValue(), NewExpressionError(expr.Source(), err)
	}
	return v, nil
}
