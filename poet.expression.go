package poet

import (
	"context"

	"github.com/Propfend/poet/internal"
)

// Expression is a compiled expression handle. Handles are produced once at
// document compile time and evaluated per request.
type Expression interface {
	Source() string
}

// Evaluator compiles and evaluates expressions. Implementations must be
// safe for concurrent use.
type Evaluator interface {
	Compile(source string) (Expression, error)
	Evaluate(ctx context.Context, expr Expression, scope *Scope) (Value, error)
}

// ValueFunc is a function callable from expressions
type ValueFunc func(args []Value) (Value, error)

// ExpressionEvaluator is the default Evaluator. It supports literals, dotted
// identifiers, logical and comparison operators, sequence literals and the
// builtin function set.
type ExpressionEvaluator struct {
	funcs *internal.FuncRegistry
}

// NewExpressionEvaluator creates an evaluator with the builtin functions
func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{funcs: internal.NewBuiltinFuncRegistry()}
}

type compiledExpression struct {
	source string
	node   internal.ExprNode
}

func (e *compiledExpression) Source() string { return e.source }

// Compile parses an expression
func (e *ExpressionEvaluator) Compile(source string) (Expression, error) {
	node, err := internal.ParseExpression(source)
	if err != nil {
		return nil, err
	}
	return &compiledExpression{source: source, node: node}, nil
}

// Evaluate runs a compiled expression against a scope. Handles from other
// evaluators are recompiled from their source.
func (e *ExpressionEvaluator) Evaluate(_ context.Context, expr Expression, scope *Scope) (Value, error) {
	compiled, ok := expr.(*compiledExpression)
	if !ok {
		recompiled, err := e.Compile(expr.Source())
		if err != nil {
			return NilValue(), err
		}
		compiled = recompiled.(*compiledExpression)
	}

	if scope == nil {
		scope = NewScope()
	}
	result, err := internal.NewExprEvaluator(e.funcs, scope).Evaluate(compiled.node)
	if err != nil {
		return NilValue(), err
	}
	return FromAny(result)
}

// RegisterFunc adds a function callable from expressions. maxArgs of -1
// accepts any number of arguments.
func (e *ExpressionEvaluator) RegisterFunc(name string, minArgs, maxArgs int, fn ValueFunc) error {
	var wrapped func([]any) (any, error)
	if fn != nil {
		wrapped = func(args []any) (any, error) {
			values := make([]Value, len(args))
			for i, arg := range args {
				v, err := FromAny(arg)
				if err != nil {
					return nil, err
				}
				values[i] = v
			}
			result, err := fn(values)
			if err != nil {
				return nil, err
			}
			return result.ToAny(), nil
		}
	}

	err := e.funcs.Register(&internal.Func{
		Name:    name,
		MinArgs: minArgs,
		MaxArgs: maxArgs,
		Fn:      wrapped,
	})
	if err != nil {
		return NewFuncRegistrationError(name, err)
	}
	return nil
}

// Functions returns the callable function names in sorted order
func (e *ExpressionEvaluator) Functions() []string {
	return e.funcs.List()
}
