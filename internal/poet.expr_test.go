package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapAccessor resolves identifiers by exact key, no path walking
type mapAccessor map[string]any

func (m mapAccessor) Get(path string) (any, bool, error) {
	v, ok := m[path]
	return v, ok, nil
}

// strictAccessor fails every lookup
type strictAccessor struct{ err error }

func (a strictAccessor) Get(string) (any, bool, error) {
	return nil, false, a.err
}

func TestExprTokenizer_Tokenize(t *testing.T) {
	t.Run("operators and brackets", func(t *testing.T) {
		tokens, err := NewExprTokenizer(`!a && b.c >= 2 || [x, "y"]`).Tokenize()
		require.NoError(t, err)

		types := make([]ExprTokenType, len(tokens))
		for i, tok := range tokens {
			types[i] = tok.Type
		}
		assert.Equal(t, []ExprTokenType{
			ExprTokenTypeNot, ExprTokenTypeIdentifier, ExprTokenTypeAnd,
			ExprTokenTypeIdentifier, ExprTokenTypeGte, ExprTokenTypeNumber,
			ExprTokenTypeOr, ExprTokenTypeLBracket, ExprTokenTypeIdentifier,
			ExprTokenTypeComma, ExprTokenTypeString, ExprTokenTypeRBracket,
			ExprTokenTypeEOF,
		}, types)
	})

	t.Run("string escapes", func(t *testing.T) {
		tokens, err := NewExprTokenizer(`'it\'s\n'`).Tokenize()
		require.NoError(t, err)
		assert.Equal(t, "it's\n", tokens[0].Literal)
	})

	t.Run("dotted path with numeric segment", func(t *testing.T) {
		tokens, err := NewExprTokenizer(`items.0.name`).Tokenize()
		require.NoError(t, err)
		assert.Equal(t, ExprTokenTypeIdentifier, tokens[0].Type)
		assert.Equal(t, "items.0.name", tokens[0].Value)
	})

	t.Run("unterminated string", func(t *testing.T) {
		_, err := NewExprTokenizer(`"open`).Tokenize()
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgExprUnterminatedStr)
	})

	t.Run("unexpected character", func(t *testing.T) {
		_, err := NewExprTokenizer(`a $ b`).Tokenize()
		require.Error(t, err)

		var tokErr *ExprTokenError
		require.ErrorAs(t, err, &tokErr)
		assert.Equal(t, 2, tokErr.Pos)
	})
}

func TestExprParser_Parse(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`a`, `a`},
		{`!a`, `(!a)`},
		{`a && b || c`, `((a AND b) OR c)`},
		{`a == 1 && b`, `((a EQ 1) AND b)`},
		{`upper(name)`, `upper(name)`},
		{`[1, "two", x]`, `[1, "two", x]`},
		{`[]`, `[]`},
		{`(a || b) && c`, `((a OR b) AND c)`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := ParseExpression(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, node.String())
		})
	}

	t.Run("errors", func(t *testing.T) {
		cases := map[string]string{
			``:        ErrMsgExprEmptyExpression,
			`a b`:     ErrMsgExprUnexpectedToken,
			`f(a`:     ErrMsgExprExpectedRParen,
			`[a, b`:   ErrMsgExprExpectedBracket,
			`a &&`:    ErrMsgExprUnexpectedEOF,
			`(a || b`: ErrMsgExprExpectedRParen,
		}
		for input, msg := range cases {
			_, err := ParseExpression(input)
			require.Error(t, err, input)
			assert.Contains(t, err.Error(), msg, input)
		}
	})
}

func TestExprEvaluator_Evaluate(t *testing.T) {
	funcs := NewBuiltinFuncRegistry()
	ctx := mapAccessor{
		"name":  "Alice",
		"count": 3.0,
		"tags":  []any{"a", "b"},
		"empty": "",
		"meta":  map[string]any{"z": 1.0, "a": 2.0},
	}

	tests := []struct {
		name     string
		input    string
		expected any
	}{
		{"string literal", `"hello"`, "hello"},
		{"number literal", `42`, 42.0},
		{"nil literal", `nil`, nil},
		{"identifier", `name`, "Alice"},
		{"missing identifier is nil", `nobody.home`, nil},
		{"not", `!empty`, true},
		{"and short circuit", `empty && missing()`, false},
		{"or short circuit", `name || missing()`, true},
		{"equality", `name == "Alice"`, true},
		{"mixed equality", `count == "3"`, false},
		{"comparison", `count >= 3`, true},
		{"string comparison", `"a" < "b"`, true},
		{"list literal", `[name, count]`, []any{"Alice", 3.0}},
		{"empty list literal", `[]`, []any{}},
		{"upper", `upper(name)`, "ALICE"},
		{"lower", `lower("ABC")`, "abc"},
		{"trim", `trim("  x ")`, "x"},
		{"replace", `replace("a-b-c", "-", "+")`, "a+b+c"},
		{"split", `split("a,b", ",")`, []any{"a", "b"}},
		{"join", `join(tags, "|")`, "a|b"},
		{"hasPrefix", `hasPrefix(name, "Al")`, true},
		{"hasSuffix", `hasSuffix(name, "x")`, false},
		{"contains string", `contains(name, "lic")`, true},
		{"contains sequence", `contains(tags, "b")`, true},
		{"len string", `len(name)`, 5.0},
		{"len sequence", `len(tags)`, 2.0},
		{"len nil", `len(nothing)`, 0.0},
		{"first", `first(tags)`, "a"},
		{"last", `last(tags)`, "b"},
		{"first of empty", `first([])`, nil},
		{"keys sorted", `keys(meta)`, []any{"a", "z"}},
		{"toString number", `toString(count)`, "3"},
		{"toString bool", `toString(true)`, "true"},
		{"isEmpty", `isEmpty(empty)`, true},
		{"default on empty", `default(empty, "fallback")`, "fallback"},
		{"default keeps value", `default(name, "fallback")`, "Alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EvaluateExpression(tt.input, funcs, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}

	t.Run("unknown function", func(t *testing.T) {
		_, err := EvaluateExpression(`nope(1)`, funcs, ctx)
		require.Error(t, err)

		var funcErr *FuncError
		require.ErrorAs(t, err, &funcErr)
		assert.Equal(t, "nope", funcErr.FuncName)
	})

	t.Run("wrong arity", func(t *testing.T) {
		_, err := EvaluateExpression(`upper()`, funcs, ctx)
		require.Error(t, err)

		var argErr *FuncArgError
		require.ErrorAs(t, err, &argErr)
		assert.Equal(t, 1, argErr.Expected)
		assert.Equal(t, 0, argErr.Actual)
	})

	t.Run("type error is wrapped", func(t *testing.T) {
		_, err := EvaluateExpression(`upper(tags)`, funcs, ctx)
		require.Error(t, err)

		var typeErr *FuncTypeError
		require.ErrorAs(t, err, &typeErr)
		assert.Equal(t, FuncNameUpper, typeErr.FuncName)
	})

	t.Run("incomparable types", func(t *testing.T) {
		_, err := EvaluateExpression(`tags < 1`, funcs, ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgExprTypeMismatch)
	})

	t.Run("no context", func(t *testing.T) {
		_, err := EvaluateExpression(`name`, funcs, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgExprNoContext)
	})

	t.Run("accessor error aborts", func(t *testing.T) {
		unbound := errors.New("unbound")
		for _, input := range []string{`name`, `upper(name)`, `[1, name]`, `default(name, "x")`, `true && name`} {
			_, err := EvaluateExpression(input, funcs, strictAccessor{err: unbound})
			assert.ErrorIs(t, err, unbound, input)
		}
	})

	t.Run("accessor error skipped by short circuit", func(t *testing.T) {
		result, err := EvaluateExpression(`false && name`, funcs, strictAccessor{err: errors.New("unbound")})
		require.NoError(t, err)
		assert.Equal(t, false, result)
	})
}

func TestFuncRegistry(t *testing.T) {
	t.Run("register and call", func(t *testing.T) {
		r := NewFuncRegistry()
		require.NoError(t, r.Register(&Func{
			Name:    "twice",
			MinArgs: 1,
			MaxArgs: 1,
			Fn: func(args []any) (any, error) {
				return anyToString(args[0]) + anyToString(args[0]), nil
			},
		}))

		assert.True(t, r.Has("twice"))
		result, err := r.Call("twice", []any{"ab"})
		require.NoError(t, err)
		assert.Equal(t, "abab", result)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		r := NewBuiltinFuncRegistry()
		err := r.Register(&Func{Name: FuncNameUpper, Fn: func([]any) (any, error) { return nil, nil }})
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgFuncAlreadyExists)
	})

	t.Run("invalid registrations", func(t *testing.T) {
		r := NewFuncRegistry()
		assert.Error(t, r.Register(nil))
		assert.Error(t, r.Register(&Func{Name: "x"}))
		assert.Error(t, r.Register(&Func{Fn: func([]any) (any, error) { return nil, nil }}))
	})

	t.Run("list is sorted", func(t *testing.T) {
		names := NewBuiltinFuncRegistry().List()
		assert.IsIncreasing(t, names)
		assert.Contains(t, names, FuncNameDefault)
		assert.Len(t, names, 16)
	})
}
