package internal

import (
	"fmt"
)

// ContextAccessor resolves dotted identifier paths during evaluation. A
// path that is absent reports found=false; an error aborts the evaluation.
type ContextAccessor interface {
	Get(path string) (any, bool, error)
}

// ExprEvaluator evaluates expression AST nodes
type ExprEvaluator struct {
	funcs *FuncRegistry
	ctx   ContextAccessor
}

// NewExprEvaluator creates a new expression evaluator
func NewExprEvaluator(funcs *FuncRegistry, ctx ContextAccessor) *ExprEvaluator {
	return &ExprEvaluator{funcs: funcs, ctx: ctx}
}

// Evaluate evaluates an expression and returns the result
func (e *ExprEvaluator) Evaluate(node ExprNode) (any, error) {
	if node == nil {
		return nil, NewExprEvalError(ErrMsgExprNilNode, "")
	}

	switch n := node.(type) {
	case *LiteralNode:
		return n.Value, nil
	case *IdentifierNode:
		return e.evaluateIdentifier(n)
	case *UnaryNode:
		return e.evaluateUnary(n)
	case *BinaryNode:
		return e.evaluateBinary(n)
	case *CallNode:
		return e.evaluateCall(n)
	case *ListNode:
		return e.evaluateList(n)
	default:
		return nil, NewExprEvalError(ErrMsgExprUnknownNodeType, fmt.Sprintf("%T", node))
	}
}

// evaluateIdentifier looks up a path. The accessor decides which lookups
// fail; a lookup that merely finds nothing evaluates to nil.
func (e *ExprEvaluator) evaluateIdentifier(node *IdentifierNode) (any, error) {
	if e.ctx == nil {
		return nil, NewExprEvalError(ErrMsgExprNoContext, node.Name)
	}

	val, found, err := e.ctx.Get(node.Name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return val, nil
}

func (e *ExprEvaluator) evaluateUnary(node *UnaryNode) (any, error) {
	right, err := e.Evaluate(node.Right)
	if err != nil {
		return nil, err
	}

	if node.Op != ExprTokenTypeNot {
		return nil, NewExprEvalError(ErrMsgExprUnknownOperator, string(node.Op))
	}
	return !isTruthy(right), nil
}

func (e *ExprEvaluator) evaluateBinary(node *BinaryNode) (any, error) {
	left, err := e.Evaluate(node.Left)
	if err != nil {
		return nil, err
	}

	// && and || short-circuit
	switch node.Op {
	case ExprTokenTypeAnd:
		if !isTruthy(left) {
			return false, nil
		}
		return e.evaluateTruthy(node.Right)
	case ExprTokenTypeOr:
		if isTruthy(left) {
			return true, nil
		}
		return e.evaluateTruthy(node.Right)
	}

	right, err := e.Evaluate(node.Right)
	if err != nil {
		return nil, err
	}

	switch node.Op {
	case ExprTokenTypeEq:
		return compareEqual(left, right), nil
	case ExprTokenTypeNeq:
		return !compareEqual(left, right), nil
	case ExprTokenTypeLt:
		return compareOrdered(left, right, func(c int) bool { return c < 0 })
	case ExprTokenTypeGt:
		return compareOrdered(left, right, func(c int) bool { return c > 0 })
	case ExprTokenTypeLte:
		return compareOrdered(left, right, func(c int) bool { return c <= 0 })
	case ExprTokenTypeGte:
		return compareOrdered(left, right, func(c int) bool { return c >= 0 })
	default:
		return nil, NewExprEvalError(ErrMsgExprUnknownOperator, string(node.Op))
	}
}

func (e *ExprEvaluator) evaluateTruthy(node ExprNode) (any, error) {
	val, err := e.Evaluate(node)
	if err != nil {
		return nil, err
	}
	return isTruthy(val), nil
}

func (e *ExprEvaluator) evaluateCall(node *CallNode) (any, error) {
	if e.funcs == nil {
		return nil, NewExprEvalError(ErrMsgExprNoFuncRegistry, node.Name)
	}

	args, err := e.evaluateAll(node.Args)
	if err != nil {
		return nil, err
	}
	return e.funcs.Call(node.Name, args)
}

func (e *ExprEvaluator) evaluateList(node *ListNode) (any, error) {
	items, err := e.evaluateAll(node.Elements)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []any{}
	}
	return items, nil
}

func (e *ExprEvaluator) evaluateAll(nodes []ExprNode) ([]any, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	values := make([]any, len(nodes))
	for i, n := range nodes {
		val, err := e.Evaluate(n)
		if err != nil {
			return nil, err
		}
		values[i] = val
	}
	return values, nil
}

func compareEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if aNum, ok := toNumber(a); ok {
		bNum, ok := toNumber(b)
		return ok && aNum == bNum
	}
	if aStr, ok := a.(string); ok {
		bStr, ok := b.(string)
		return ok && aStr == bStr
	}
	if aBool, ok := a.(bool); ok {
		bBool, ok := b.(bool)
		return ok && aBool == bBool
	}

	return false
}

// compareOrdered compares numbers numerically and strings lexically
func compareOrdered(a, b any, accept func(int) bool) (bool, error) {
	aNum, aIsNum := toNumber(a)
	bNum, bIsNum := toNumber(b)
	if aIsNum && bIsNum {
		switch {
		case aNum < bNum:
			return accept(-1), nil
		case aNum > bNum:
			return accept(1), nil
		default:
			return accept(0), nil
		}
	}

	aStr, aIsStr := a.(string)
	bStr, bIsStr := b.(string)
	if aIsStr && bIsStr {
		switch {
		case aStr < bStr:
			return accept(-1), nil
		case aStr > bStr:
			return accept(1), nil
		default:
			return accept(0), nil
		}
	}

	return false, NewExprEvalError(ErrMsgExprTypeMismatch, fmt.Sprintf(ErrFmtTypeComparison, a, b))
}

func toNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float64:
		return val, true
	case float32:
		return float64(val), true
	default:
		return 0, false
	}
}

// ExprEvalError represents an expression evaluation error
type ExprEvalError struct {
	Message string
	Detail  string
}

// NewExprEvalError creates a new expression evaluation error
func NewExprEvalError(message, detail string) *ExprEvalError {
	return &ExprEvalError{Message: message, Detail: detail}
}

// Error implements the error interface
func (e *ExprEvalError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf(ErrFmtWithDetail, e.Message, e.Detail)
	}
	return e.Message
}

// EvaluateExpression parses and evaluates an expression string
func EvaluateExpression(expr string, funcs *FuncRegistry, ctx ContextAccessor) (any, error) {
	node, err := ParseExpression(expr)
	if err != nil {
		return nil, err
	}
	return NewExprEvaluator(funcs, ctx).Evaluate(node)
}
