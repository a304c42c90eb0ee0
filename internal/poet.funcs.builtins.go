package internal

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// stringFunc registers a function whose arguments must all be strings
func stringFunc(r *FuncRegistry, name string, arity int, fn func(args []string) any) {
	r.MustRegister(&Func{
		Name:    name,
		MinArgs: arity,
		MaxArgs: arity,
		Fn: func(args []any) (any, error) {
			strs := make([]string, len(args))
			for i, arg := range args {
				s, ok := toString(arg)
				if !ok {
					return nil, NewFuncTypeError(ErrMsgFuncExpectedString, name, i)
				}
				strs[i] = s
			}
			return fn(strs), nil
		},
	})
}

func registerStringFuncs(r *FuncRegistry) {
	stringFunc(r, FuncNameUpper, 1, func(a []string) any { return strings.ToUpper(a[ArgIndexFirst]) })
	stringFunc(r, FuncNameLower, 1, func(a []string) any { return strings.ToLower(a[ArgIndexFirst]) })
	stringFunc(r, FuncNameTrim, 1, func(a []string) any { return strings.TrimSpace(a[ArgIndexFirst]) })
	stringFunc(r, FuncNameHasPrefix, 2, func(a []string) any {
		return strings.HasPrefix(a[ArgIndexFirst], a[ArgIndexSecond])
	})
	stringFunc(r, FuncNameHasSuffix, 2, func(a []string) any {
		return strings.HasSuffix(a[ArgIndexFirst], a[ArgIndexSecond])
	})
	stringFunc(r, FuncNameReplace, 3, func(a []string) any {
		return strings.ReplaceAll(a[ArgIndexFirst], a[ArgIndexSecond], a[ArgIndexThird])
	})
	stringFunc(r, FuncNameSplit, 2, func(a []string) any {
		parts := strings.Split(a[ArgIndexFirst], a[ArgIndexSecond])
		items := make([]any, len(parts))
		for i, p := range parts {
			items[i] = p
		}
		return items
	})

	// join(items sequence, sep string) string
	r.MustRegister(&Func{
		Name:    FuncNameJoin,
		MinArgs: 2,
		MaxArgs: 2,
		Fn: func(args []any) (any, error) {
			items, ok := args[ArgIndexFirst].([]any)
			if !ok && args[ArgIndexFirst] != nil {
				return nil, NewFuncTypeError(ErrMsgFuncExpectedSlice, FuncNameJoin, ArgIndexFirst)
			}
			sep, ok := toString(args[ArgIndexSecond])
			if !ok {
				return nil, NewFuncTypeError(ErrMsgFuncExpectedString, FuncNameJoin, ArgIndexSecond)
			}
			parts := make([]string, len(items))
			for i, item := range items {
				parts[i] = anyToString(item)
			}
			return strings.Join(parts, sep), nil
		},
	})

	// contains(haystack string|sequence, needle any) bool
	r.MustRegister(&Func{
		Name:    FuncNameContains,
		MinArgs: 2,
		MaxArgs: 2,
		Fn: func(args []any) (any, error) {
			switch haystack := args[ArgIndexFirst].(type) {
			case string:
				needle, ok := toString(args[ArgIndexSecond])
				if !ok {
					return nil, NewFuncTypeError(ErrMsgFuncExpectedString, FuncNameContains, ArgIndexSecond)
				}
				return strings.Contains(haystack, needle), nil
			case []any:
				for _, item := range haystack {
					if compareEqual(item, args[ArgIndexSecond]) {
						return true, nil
					}
				}
				return false, nil
			case nil:
				return false, nil
			default:
				return nil, NewFuncTypeError(ErrMsgFuncExpectedSlice, FuncNameContains, ArgIndexFirst)
			}
		},
	})
}

func registerCollectionFuncs(r *FuncRegistry) {
	// len(x string|sequence|map) number
	r.MustRegister(&Func{
		Name:    FuncNameLen,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []any) (any, error) {
			switch val := args[ArgIndexFirst].(type) {
			case nil:
				return float64(0), nil
			case string:
				return float64(len([]rune(val))), nil
			case []any:
				return float64(len(val)), nil
			case map[string]any:
				return float64(len(val)), nil
			default:
				return nil, NewFuncTypeError(ErrMsgFuncExpectedSlice, FuncNameLen, ArgIndexFirst)
			}
		},
	})

	r.MustRegister(&Func{
		Name:    FuncNameFirst,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []any) (any, error) {
			items, err := toSlice(args[ArgIndexFirst], FuncNameFirst)
			if err != nil || len(items) == 0 {
				return nil, err
			}
			return items[0], nil
		},
	})

	r.MustRegister(&Func{
		Name:    FuncNameLast,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []any) (any, error) {
			items, err := toSlice(args[ArgIndexFirst], FuncNameLast)
			if err != nil || len(items) == 0 {
				return nil, err
			}
			return items[len(items)-1], nil
		},
	})

	// keys(m map) sequence, sorted
	r.MustRegister(&Func{
		Name:    FuncNameKeys,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []any) (any, error) {
			m, ok := args[ArgIndexFirst].(map[string]any)
			if !ok {
				return nil, NewFuncTypeError(ErrMsgFuncExpectedMap, FuncNameKeys, ArgIndexFirst)
			}
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			items := make([]any, len(keys))
			for i, k := range keys {
				items[i] = k
			}
			return items, nil
		},
	})
}

func registerTypeFuncs(r *FuncRegistry) {
	r.MustRegister(&Func{
		Name:    FuncNameToString,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []any) (any, error) {
			return anyToString(args[ArgIndexFirst]), nil
		},
	})

	r.MustRegister(&Func{
		Name:    FuncNameIsEmpty,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []any) (any, error) {
			return isEmpty(args[ArgIndexFirst]), nil
		},
	})

	// default(x, fallback) returns fallback when x is nil or empty
	r.MustRegister(&Func{
		Name:    FuncNameDefault,
		MinArgs: 2,
		MaxArgs: 2,
		Fn: func(args []any) (any, error) {
			if isEmpty(args[ArgIndexFirst]) {
				return args[ArgIndexSecond], nil
			}
			return args[ArgIndexFirst], nil
		},
	})
}

// toString accepts strings and nil only
func toString(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return StringValueEmpty, true
	case string:
		return val, true
	case fmt.Stringer:
		return val.String(), true
	default:
		return StringValueEmpty, false
	}
}

// anyToString renders any evaluator value in its scalar string form
func anyToString(v any) string {
	switch val := v.(type) {
	case nil:
		return StringValueEmpty
	case string:
		return val
	case bool:
		if val {
			return StringValueTrue
		}
		return StringValueFalse
	case float64:
		return strconv.FormatFloat(val, FloatFormatFlag, FloatPrecisionAll, FloatBitSize64)
	case int:
		return strconv.Itoa(val)
	case []any:
		var sb strings.Builder
		for _, item := range val {
			sb.WriteString(anyToString(item))
		}
		return sb.String()
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func toSlice(v any, funcName string) ([]any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return val, nil
	default:
		return nil, NewFuncTypeError(ErrMsgFuncExpectedSlice, funcName, ArgIndexFirst)
	}
}

// isTruthy: nil, false, "", 0 and empty collections are false
func isTruthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	case int:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}
