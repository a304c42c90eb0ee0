package poet

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/itsatony/go-cuserr"
)

// Error message constants
const (
	// Document compile errors
	ErrMsgFrontMatterInvalid      = "invalid front matter"
	ErrMsgFrontMatterUnknownField = "unknown front matter field"
	ErrMsgFrontMatterMissingTitle = "front matter title is required"
	ErrMsgMarkupInvalid           = "invalid document markup"
	ErrMsgExpressionCompile       = "expression failed to compile"

	// Request errors
	ErrMsgExpressionEval    = "expression evaluation failed"
	ErrMsgMissingArgument   = "required argument missing"
	ErrMsgUnknownArgument   = "argument is not declared by the prompt"
	ErrMsgContextMissing    = "variable not found in scope"
	ErrMsgComponentNotFound = "component not found"
	ErrMsgComponentDispatch = "failed to call component function"
	ErrMsgMissingProp       = "component prop missing"
	ErrMsgNoCurrentRole     = "content appears before any role marker"
	ErrMsgPromptNotFound    = "prompt not found"
	ErrMsgLinkTargetUnknown = "link target is not a known prompt"
	ErrMsgNoAssetResolver   = "no asset resolver configured"
	ErrMsgNoDocumentLinker  = "no document linker configured"
	ErrMsgUnsupportedValue  = "unsupported value type"

	// Registry errors
	ErrMsgComponentNil         = "component cannot be nil"
	ErrMsgComponentNameEmpty   = "component name cannot be empty"
	ErrMsgComponentNameInvalid = "component name must start with an upper-case letter"
	ErrMsgFuncRegistration     = "function registration failed"

	// Build errors
	ErrMsgBuildFailed        = "prompt build failed"
	ErrMsgDocumentOutsideDir = "document is outside the documents root"
	ErrMsgDuplicateDocument  = "duplicate document name"
	ErrMsgSourceRead         = "failed to read documents"
	ErrMsgInvalidRole        = "role cannot be empty"

	// Postgres source errors
	ErrMsgPostgresEmptyConnString = "postgres connection string cannot be empty"
	ErrMsgPostgresConnect         = "failed to connect to postgres"
	ErrMsgPostgresQuery           = "postgres query failed"
	ErrMsgPostgresMigrate         = "postgres migration failed"
	ErrMsgPostgresClosed          = "postgres source is closed"

	// Serving errors
	ErrMsgWatchFailed     = "failed to watch documents"
	ErrMsgUnsupportedRole = "role cannot be sent over MCP"
)

// Error format strings
const (
	ErrFmtSubject       = "%s: %s"
	ErrFmtBuildHeader   = "%s for %d document(s)"
	ErrFmtBuildEntry    = "\n  %s: %v"
	ErrFmtQuotedSubject = "%s: %q"
)

// Error code constants for categorization
const (
	ErrCodeMetadata   = "POET_METADATA"
	ErrCodeParse      = "POET_PARSE"
	ErrCodeArgument   = "POET_ARGUMENT"
	ErrCodeScope      = "POET_SCOPE"
	ErrCodeComponent  = "POET_COMPONENT"
	ErrCodeDispatch   = "POET_DISPATCH"
	ErrCodeExpression = "POET_EXPRESSION"
	ErrCodeRequest    = "POET_REQUEST"
	ErrCodeRegistry   = "POET_REGISTRY"
	ErrCodeSource     = "POET_SOURCE"
	ErrCodeValue      = "POET_VALUE"
	ErrCodeConfig     = "POET_CONFIG"
)

// Metadata keys attached to errors
const (
	MetaKeyDocument   = "document"
	MetaKeyArgument   = "argument"
	MetaKeyArguments  = "arguments"
	MetaKeyBinding    = "binding"
	MetaKeyComponent  = "component"
	MetaKeyExpression = "expression"
	MetaKeyField      = "field"
	MetaKeyFormat     = "format"
	MetaKeyLine       = "line"
	MetaKeyColumn     = "column"
	MetaKeyProp       = "prop"
	MetaKeyPath       = "path"
	MetaKeyRoot       = "root"
	MetaKeyPrompt     = "prompt"
	MetaKeyRole       = "role"
	MetaKeyTarget     = "target"
	MetaKeyValueType  = "value_type"
)

// metaListSeparator joins multi-valued metadata
const metaListSeparator = ","

func subject(msg, name string) string {
	return fmt.Sprintf(ErrFmtSubject, msg, name)
}

// NewParseMetadataError reports front matter that could not be decoded
func NewParseMetadataError(msg string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeMetadata, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeMetadata, msg)
	}
	return err
}

// NewUnknownFieldError reports front matter keys that no field accepts
func NewUnknownFieldError(fields []string) error {
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)
	return cuserr.NewValidationError(ErrCodeMetadata,
		subject(ErrMsgFrontMatterUnknownField, strings.Join(sorted, metaListSeparator))).
		WithMetadata(MetaKeyField, strings.Join(sorted, metaListSeparator))
}

// NewParseError reports malformed markup at a position
func NewParseError(cause error, line, column int) error {
	return cuserr.WrapStdError(cause, ErrCodeParse, ErrMsgMarkupInvalid).
		WithMetadata(MetaKeyLine, strconv.Itoa(line)).
		WithMetadata(MetaKeyColumn, strconv.Itoa(column))
}

// NewExpressionCompileError reports a body or attribute expression that
// does not compile
func NewExpressionCompileError(source string, line, column int, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeParse, ErrMsgExpressionCompile).
		WithMetadata(MetaKeyExpression, source).
		WithMetadata(MetaKeyLine, strconv.Itoa(line)).
		WithMetadata(MetaKeyColumn, strconv.Itoa(column))
}

// NewExpressionError wraps an evaluation failure
func NewExpressionError(source string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeExpression, ErrMsgExpressionEval).
		WithMetadata(MetaKeyExpression, source)
}

// NewArgumentMissingError names the first missing required argument in the
// message and lists all of them in metadata
func NewArgumentMissingError(missing []string) error {
	return cuserr.NewValidationError(ErrCodeArgument, subject(ErrMsgMissingArgument, missing[0])).
		WithMetadata(MetaKeyArgument, missing[0]).
		WithMetadata(MetaKeyArguments, strings.Join(missing, metaListSeparator))
}

// NewUnknownArgumentError reports arguments rejected in strict mode
func NewUnknownArgumentError(unknown []string) error {
	return cuserr.NewValidationError(ErrCodeArgument, subject(ErrMsgUnknownArgument, unknown[0])).
		WithMetadata(MetaKeyArgument, unknown[0]).
		WithMetadata(MetaKeyArguments, strings.Join(unknown, metaListSeparator))
}

// NewScopeError reports a binding the interpreter requires but the scope lacks
func NewScopeError(binding string) error {
	return cuserr.NewValidationError(ErrCodeScope, fmt.Sprintf(ErrFmtQuotedSubject, ErrMsgContextMissing, binding)).
		WithMetadata(MetaKeyBinding, binding)
}

// asScopeError returns err as a scope error when it is one
func asScopeError(err error) (*cuserr.CustomError, bool) {
	var customErr *cuserr.CustomError
	if errors.As(err, &customErr) && customErr.Code == ErrCodeScope {
		return customErr, true
	}
	return nil, false
}

// NewComponentResolutionError reports a tag naming an unregistered component
func NewComponentResolutionError(name string) error {
	return cuserr.NewValidationError(ErrCodeComponent, subject(ErrMsgComponentNotFound, name)).
		WithMetadata(MetaKeyComponent, name)
}

// NewDispatchError wraps a component failure
func NewDispatchError(name string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeDispatch, subject(ErrMsgComponentDispatch, name)).
		WithMetadata(MetaKeyComponent, name)
}

// NewComponentPropError reports a missing or mistyped component prop
func NewComponentPropError(component, prop string) error {
	return cuserr.NewValidationError(ErrCodeComponent, subject(ErrMsgMissingProp, prop)).
		WithMetadata(MetaKeyComponent, component).
		WithMetadata(MetaKeyProp, prop)
}

// NewComponentRegistrationError reports an invalid Register call
func NewComponentRegistrationError(msg, name string) error {
	return cuserr.NewValidationError(ErrCodeRegistry, msg).
		WithMetadata(MetaKeyComponent, name)
}

// NewFuncRegistrationError wraps a rejected expression function
func NewFuncRegistrationError(name string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeRegistry, subject(ErrMsgFuncRegistration, name))
}

// NewNoCurrentRoleError reports content that precedes every role marker
func NewNoCurrentRoleError(line int) error {
	return cuserr.NewValidationError(ErrCodeRequest, ErrMsgNoCurrentRole).
		WithMetadata(MetaKeyLine, strconv.Itoa(line))
}

// NewPromptNotFoundError reports a request for an unknown prompt
func NewPromptNotFoundError(name string) error {
	return cuserr.NewValidationError(ErrCodeRequest, subject(ErrMsgPromptNotFound, name)).
		WithMetadata(MetaKeyPrompt, name)
}

// NewUnsupportedRoleError reports a message role MCP has no equivalent for
func NewUnsupportedRoleError(role Role) error {
	return cuserr.NewValidationError(ErrCodeRequest, subject(ErrMsgUnsupportedRole, string(role))).
		WithMetadata(MetaKeyRole, string(role))
}

// NewLinkTargetError reports a link to a document outside the collection
func NewLinkTargetError(name string) error {
	return cuserr.NewValidationError(ErrCodeRequest, subject(ErrMsgLinkTargetUnknown, name)).
		WithMetadata(MetaKeyTarget, name)
}

// NewUnsupportedValueError reports a Go value with no Value representation
func NewUnsupportedValueError(v any) error {
	typeName := fmt.Sprintf("%T", v)
	return cuserr.NewValidationError(ErrCodeValue, subject(ErrMsgUnsupportedValue, typeName)).
		WithMetadata(MetaKeyValueType, typeName)
}

// NewSourceError wraps a document discovery failure
func NewSourceError(msg, path string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeSource, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeSource, msg)
	}
	if path != "" {
		err = err.WithMetadata(MetaKeyPath, path)
	}
	return err
}

// NewDocumentNameError reports a document path outside the documents root
func NewDocumentNameError(root, path string) error {
	return cuserr.NewValidationError(ErrCodeSource, subject(ErrMsgDocumentOutsideDir, path)).
		WithMetadata(MetaKeyRoot, root).
		WithMetadata(MetaKeyPath, path)
}

// NewConfigError reports an invalid option value
func NewConfigError(msg string) error {
	return cuserr.NewValidationError(ErrCodeConfig, msg)
}

// AggregateBuildError carries every per-document failure of one build
type AggregateBuildError struct {
	errors map[string]error
	names  []string
}

// NewAggregateBuildError snapshots the given document errors
func NewAggregateBuildError(errs map[string]error) *AggregateBuildError {
	e := &AggregateBuildError{
		errors: make(map[string]error, len(errs)),
		names:  make([]string, 0, len(errs)),
	}
	for name, err := range errs {
		e.errors[name] = err
		e.names = append(e.names, name)
	}
	sort.Strings(e.names)
	return e
}

// Error lists every document and its error, sorted by document name
func (e *AggregateBuildError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, ErrFmtBuildHeader, ErrMsgBuildFailed, len(e.names))
	for _, name := range e.names {
		fmt.Fprintf(&b, ErrFmtBuildEntry, name, e.errors[name])
	}
	return b.String()
}

// Unwrap exposes the document errors to errors.Is and errors.As
func (e *AggregateBuildError) Unwrap() []error {
	out := make([]error, len(e.names))
	for i, name := range e.names {
		out[i] = e.errors[name]
	}
	return out
}

// Documents returns the failing document names in sorted order
func (e *AggregateBuildError) Documents() []string {
	return append([]string(nil), e.names...)
}

// DocumentError returns the error recorded for a document, or nil
func (e *AggregateBuildError) DocumentError(name string) error {
	return e.errors[name]
}

// Len returns the number of failing documents
func (e *AggregateBuildError) Len() int {
	return len(e.names)
}
