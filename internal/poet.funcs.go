package internal

import (
	"fmt"
	"sort"
	"sync"
)

// Func represents a callable function in expressions
type Func struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 for variadic
	Fn      func(args []any) (any, error)
}

// FuncRegistry manages registered functions
type FuncRegistry struct {
	funcs map[string]*Func
	mu    sync.RWMutex
}

// NewFuncRegistry creates an empty function registry
func NewFuncRegistry() *FuncRegistry {
	return &FuncRegistry{funcs: make(map[string]*Func)}
}

// NewBuiltinFuncRegistry creates a registry holding every builtin function
func NewBuiltinFuncRegistry() *FuncRegistry {
	r := NewFuncRegistry()
	registerStringFuncs(r)
	registerCollectionFuncs(r)
	registerTypeFuncs(r)
	return r
}

// Register adds a function to the registry
func (r *FuncRegistry) Register(f *Func) error {
	if f == nil || f.Fn == nil {
		return NewFuncError(ErrMsgFuncNilFunc, "")
	}
	if f.Name == "" {
		return NewFuncError(ErrMsgFuncEmptyName, "")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.funcs[f.Name]; exists {
		return NewFuncError(ErrMsgFuncAlreadyExists, f.Name)
	}

	r.funcs[f.Name] = f
	return nil
}

// MustRegister adds a function and panics on error
func (r *FuncRegistry) MustRegister(f *Func) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

// Has checks if a function is registered
func (r *FuncRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.funcs[name]
	return ok
}

// Call invokes a function by name after checking its arity
func (r *FuncRegistry) Call(name string, args []any) (any, error) {
	r.mu.RLock()
	f, ok := r.funcs[name]
	r.mu.RUnlock()

	if !ok {
		return nil, NewFuncError(ErrMsgFuncNotFound, name)
	}

	argCount := len(args)
	if argCount < f.MinArgs {
		return nil, NewFuncArgError(ErrMsgFuncTooFewArgs, name, f.MinArgs, argCount)
	}
	if f.MaxArgs >= 0 && argCount > f.MaxArgs {
		return nil, NewFuncArgError(ErrMsgFuncTooManyArgs, name, f.MaxArgs, argCount)
	}

	result, err := f.Fn(args)
	if err != nil {
		return nil, NewFuncExecError(name, err)
	}
	return result, nil
}

// List returns all registered function names in sorted order
func (r *FuncRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FuncError represents a lookup or registration error for a function
type FuncError struct {
	Message  string
	FuncName string
}

// NewFuncError creates a new function error
func NewFuncError(message, funcName string) *FuncError {
	return &FuncError{Message: message, FuncName: funcName}
}

// Error implements the error interface
func (e *FuncError) Error() string {
	if e.FuncName == "" {
		return e.Message
	}
	return fmt.Sprintf(ErrFmtWithDetail, e.Message, e.FuncName)
}

// FuncArgError represents a function arity error
type FuncArgError struct {
	Message  string
	FuncName string
	Expected int
	Actual   int
}

// NewFuncArgError creates a new function argument error
func NewFuncArgError(message, funcName string, expected, actual int) *FuncArgError {
	return &FuncArgError{Message: message, FuncName: funcName, Expected: expected, Actual: actual}
}

// Error implements the error interface
func (e *FuncArgError) Error() string {
	return fmt.Sprintf(ErrFmtFuncArgCount, e.Message, e.FuncName, e.Expected, e.Actual)
}

// FuncExecError wraps an error returned by a function body
type FuncExecError struct {
	FuncName string
	Cause    error
}

// NewFuncExecError creates a new function execution error
func NewFuncExecError(funcName string, cause error) *FuncExecError {
	return &FuncExecError{FuncName: funcName, Cause: cause}
}

// Error implements the error interface
func (e *FuncExecError) Error() string {
	return fmt.Sprintf(ErrFmtFuncFailed, e.FuncName, e.Cause)
}

// Unwrap returns the underlying error
func (e *FuncExecError) Unwrap() error {
	return e.Cause
}

// FuncTypeError represents a type error in function arguments
type FuncTypeError struct {
	Message  string
	FuncName string
	ArgIndex int
}

// NewFuncTypeError creates a new function type error
func NewFuncTypeError(message, funcName string, argIndex int) *FuncTypeError {
	return &FuncTypeError{Message: message, FuncName: funcName, ArgIndex: argIndex}
}

// Error implements the error interface
func (e *FuncTypeError) Error() string {
	return fmt.Sprintf(ErrFmtFuncArgType, e.Message, e.FuncName, e.ArgIndex)
}

// Function error messages
const (
	ErrMsgFuncNilFunc        = "function cannot be nil"
	ErrMsgFuncEmptyName      = "function name cannot be empty"
	ErrMsgFuncAlreadyExists  = "function already registered"
	ErrMsgFuncNotFound       = "function not found"
	ErrMsgFuncTooFewArgs     = "too few arguments"
	ErrMsgFuncTooManyArgs    = "too many arguments"
	ErrMsgFuncExpectedString = "expected string argument"
	ErrMsgFuncExpectedSlice  = "expected sequence argument"
	ErrMsgFuncExpectedMap    = "expected map argument"
)

// Built-in function names
const (
	FuncNameLen       = "len"
	FuncNameContains  = "contains"
	FuncNameUpper     = "upper"
	FuncNameLower     = "lower"
	FuncNameTrim      = "trim"
	FuncNameHasPrefix = "hasPrefix"
	FuncNameHasSuffix = "hasSuffix"
	FuncNameReplace   = "replace"
	FuncNameSplit     = "split"
	FuncNameJoin      = "join"
	FuncNameFirst     = "first"
	FuncNameLast      = "last"
	FuncNameKeys      = "keys"
	FuncNameToString  = "toString"
	FuncNameIsEmpty   = "isEmpty"
	FuncNameDefault   = "default"
)

// Argument index constants for error reporting
const (
	ArgIndexFirst  = 0
	ArgIndexSecond = 1
	ArgIndexThird  = 2
)
