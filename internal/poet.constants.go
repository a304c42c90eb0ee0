package internal

// Character constants
const (
	CharDoubleQuote = '"'
	CharSingleQuote = '\''
	CharBackslash   = '\\'
	CharSlash       = '/'
	CharNewline     = '\n'
	CharCarriageRet = '\r'
	CharSpace       = ' '
	CharTab         = '\t'
	CharOpenBrace   = '{'
	CharCloseBrace  = '}'
	CharOpenAngle   = '<'
	CharCloseAngle  = '>'
	CharEquals      = '='
	CharBacktick    = '`'
	CharHash        = '#'
)

// Markup delimiters
const (
	StrSelfClose       = "/>"
	StrCloseTagOpen    = "</"
	StrFenceBacktick   = "```"
	StrFenceTilde      = "~~~"
	StrByteOrderMark   = "\uFEFF"
	StrFrontMatterTOML = "+++"
	StrFrontMatterYAML = "---"
)

// Default limits
const (
	DefaultMaxFrontMatterSize = 64 * 1024
	MaxHeadingLevel           = 6
	FenceMaxIndent            = 3
)

// Numeric formatting constants
const (
	FloatFormatFlag   = 'f'
	FloatPrecisionAll = -1
	FloatBitSize64    = 64
)

// String value constants for type conversions
const (
	StringValueTrue  = "true"
	StringValueFalse = "false"
	StringValueEmpty = ""
)

// Markup error messages
const (
	ErrMsgMarkupUnterminatedExpr  = "unterminated body expression"
	ErrMsgMarkupEmptyExpr         = "empty body expression"
	ErrMsgMarkupUnterminatedTag   = "unterminated tag"
	ErrMsgMarkupUnterminatedStr   = "unterminated attribute string"
	ErrMsgMarkupInvalidAttrName   = "invalid attribute name"
	ErrMsgMarkupMismatchedClose   = "closing tag has no matching opening tag"
	ErrMsgMarkupUnclosedComponent = "component tag is never closed"
)

// Front matter error messages
const (
	ErrMsgFrontMatterMissing      = "document does not start with a front matter delimiter"
	ErrMsgFrontMatterUnterminated = "front matter is not terminated"
	ErrMsgFrontMatterTooLarge     = "front matter exceeds maximum size"
)

// Expression error messages
const (
	ErrMsgExprUnexpectedChar  = "unexpected character"
	ErrMsgExprUnterminatedStr = "unterminated string literal"
	ErrMsgExprInvalidNumber   = "invalid number format"
	ErrMsgExprEmptyExpression = "empty expression"
	ErrMsgExprUnexpectedToken = "unexpected token"
	ErrMsgExprExpectedRParen  = "expected closing parenthesis"
	ErrMsgExprExpectedBracket = "expected closing bracket"
	ErrMsgExprUnexpectedEOF   = "unexpected end of expression"
	ErrMsgExprNilNode         = "nil expression node"
	ErrMsgExprUnknownNodeType = "unknown expression node type"
	ErrMsgExprNoContext       = "no context available for variable lookup"
	ErrMsgExprUnknownOperator = "unknown operator"
	ErrMsgExprNoFuncRegistry  = "no function registry available"
	ErrMsgExprTypeMismatch    = "type mismatch in comparison"
)

// Error format strings
const (
	ErrFmtWithPosition       = "%s at %s"
	ErrFmtWithDetailPosition = "%s (%s) at %s"
	ErrFmtExprPosition       = "%s at position %d"
	ErrFmtExprPositionDetail = "%s at position %d: %s"
	ErrFmtWithDetail         = "%s: %s"
	ErrFmtTypeComparison     = "cannot compare %T and %T"
	ErrFmtFuncArgCount       = "%s: %s (expected %d, got %d)"
	ErrFmtFuncArgType        = "%s: %s (argument %d)"
	ErrFmtFuncFailed         = "function %s failed: %v"
	ErrFmtPosition           = "line %d, column %d"
	ErrFmtAtLine             = "%s at line %d"
)

// Log message constants
const (
	LogMsgMarkupParseStart = "starting markup parse"
	LogMsgMarkupParseEnd   = "markup parse complete"
)

// Log field names
const (
	LogFieldSource = "source_length"
	LogFieldBlocks = "block_count"
)
