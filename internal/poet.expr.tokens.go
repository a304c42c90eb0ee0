package internal

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ExprTokenType represents the type of an expression token
type ExprTokenType string

// Expression token type constants
const (
	ExprTokenTypeIdentifier ExprTokenType = "IDENT"
	ExprTokenTypeString     ExprTokenType = "STRING"
	ExprTokenTypeNumber     ExprTokenType = "NUMBER"
	ExprTokenTypeBool       ExprTokenType = "BOOL"
	ExprTokenTypeNil        ExprTokenType = "NIL"
	ExprTokenTypeLParen     ExprTokenType = "LPAREN"
	ExprTokenTypeRParen     ExprTokenType = "RPAREN"
	ExprTokenTypeLBracket   ExprTokenType = "LBRACKET"
	ExprTokenTypeRBracket   ExprTokenType = "RBRACKET"
	ExprTokenTypeComma      ExprTokenType = "COMMA"

	ExprTokenTypeAnd ExprTokenType = "AND"
	ExprTokenTypeOr  ExprTokenType = "OR"
	ExprTokenTypeNot ExprTokenType = "NOT"
	ExprTokenTypeEq  ExprTokenType = "EQ"
	ExprTokenTypeNeq ExprTokenType = "NEQ"
	ExprTokenTypeLt  ExprTokenType = "LT"
	ExprTokenTypeGt  ExprTokenType = "GT"
	ExprTokenTypeLte ExprTokenType = "LTE"
	ExprTokenTypeGte ExprTokenType = "GTE"

	ExprTokenTypeEOF ExprTokenType = "EOF"
)

// Expression operator strings
const (
	ExprOpAnd = "&&"
	ExprOpOr  = "||"
	ExprOpNot = "!"
	ExprOpEq  = "=="
	ExprOpNeq = "!="
	ExprOpLt  = "<"
	ExprOpGt  = ">"
	ExprOpLte = "<="
	ExprOpGte = ">="
)

// Expression keyword constants
const (
	ExprKeywordTrue  = "true"
	ExprKeywordFalse = "false"
	ExprKeywordNil   = "nil"
)

var exprTwoCharOps = map[string]ExprTokenType{
	ExprOpAnd: ExprTokenTypeAnd,
	ExprOpOr:  ExprTokenTypeOr,
	ExprOpEq:  ExprTokenTypeEq,
	ExprOpNeq: ExprTokenTypeNeq,
	ExprOpLte: ExprTokenTypeLte,
	ExprOpGte: ExprTokenTypeGte,
}

var exprSingleCharTokens = map[byte]ExprTokenType{
	'(': ExprTokenTypeLParen,
	')': ExprTokenTypeRParen,
	'[': ExprTokenTypeLBracket,
	']': ExprTokenTypeRBracket,
	',': ExprTokenTypeComma,
	'!': ExprTokenTypeNot,
	'<': ExprTokenTypeLt,
	'>': ExprTokenTypeGt,
}

// ExprToken represents a token in an expression
type ExprToken struct {
	Type    ExprTokenType
	Value   string
	Pos     int
	Literal any // string, float64, bool or nil for literal tokens
}

// String returns the string representation of the token
func (t ExprToken) String() string {
	if t.Value != "" {
		return fmt.Sprintf("%s(%s)", t.Type, t.Value)
	}
	return string(t.Type)
}

// ExprTokenizer splits expression source into tokens
type ExprTokenizer struct {
	input string
	pos   int
}

// NewExprTokenizer creates a new expression tokenizer
func NewExprTokenizer(input string) *ExprTokenizer {
	return &ExprTokenizer{input: input}
}

// Tokenize converts the input string into a slice of tokens terminated by EOF
func (t *ExprTokenizer) Tokenize() ([]ExprToken, error) {
	var tokens []ExprToken

	for {
		t.skipWhitespace()

		if t.pos >= len(t.input) {
			tokens = append(tokens, ExprToken{Type: ExprTokenTypeEOF, Pos: t.pos})
			return tokens, nil
		}

		token, err := t.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
}

func (t *ExprTokenizer) nextToken() (ExprToken, error) {
	startPos := t.pos
	ch := t.peek()

	switch {
	case ch == CharDoubleQuote || ch == CharSingleQuote:
		return t.readString()
	case isDigit(ch) || (ch == '.' && isDigit(t.peekAt(1))):
		return t.readNumber()
	case isLetter(ch) || ch == '_':
		return t.readIdentifier(), nil
	}

	if t.pos+1 < len(t.input) {
		op := t.input[t.pos : t.pos+2]
		if tokenType, ok := exprTwoCharOps[op]; ok {
			t.pos += 2
			return ExprToken{Type: tokenType, Value: op, Pos: startPos}, nil
		}
	}

	if tokenType, ok := exprSingleCharTokens[ch]; ok {
		t.pos++
		return ExprToken{Type: tokenType, Value: string(ch), Pos: startPos}, nil
	}

	return ExprToken{}, NewExprTokenError(ErrMsgExprUnexpectedChar, startPos, string(ch))
}

func (t *ExprTokenizer) readString() (ExprToken, error) {
	startPos := t.pos
	quote := t.input[t.pos]
	t.pos++

	var sb strings.Builder
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if ch == quote {
			t.pos++
			value := sb.String()
			return ExprToken{Type: ExprTokenTypeString, Value: value, Pos: startPos, Literal: value}, nil
		}
		if ch == CharBackslash && t.pos+1 < len(t.input) {
			t.pos++
			sb.WriteByte(unescapeByte(t.input[t.pos]))
			t.pos++
			continue
		}
		sb.WriteByte(ch)
		t.pos++
	}

	return ExprToken{}, NewExprTokenError(ErrMsgExprUnterminatedStr, startPos, "")
}

func unescapeByte(ch byte) byte {
	switch ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return ch
	}
}

func (t *ExprTokenizer) readNumber() (ExprToken, error) {
	startPos := t.pos
	hasDecimal := false

	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if ch == '.' && !hasDecimal && isDigit(t.peekAt(1)) {
			hasDecimal = true
			t.pos++
			continue
		}
		if !isDigit(ch) {
			break
		}
		t.pos++
	}

	value := t.input[startPos:t.pos]
	literal, err := strconv.ParseFloat(value, FloatBitSize64)
	if err != nil {
		return ExprToken{}, NewExprTokenError(ErrMsgExprInvalidNumber, startPos, value)
	}

	return ExprToken{Type: ExprTokenTypeNumber, Value: value, Pos: startPos, Literal: literal}, nil
}

// readIdentifier reads a dotted path or keyword. Path segments may be
// numeric so sequence elements can be addressed as items.0.
func (t *ExprTokenizer) readIdentifier() ExprToken {
	startPos := t.pos

	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if !isLetter(ch) && !isDigit(ch) && ch != '_' && ch != '.' && ch != '-' {
			break
		}
		t.pos++
	}

	value := t.input[startPos:t.pos]

	switch value {
	case ExprKeywordTrue:
		return ExprToken{Type: ExprTokenTypeBool, Value: value, Pos: startPos, Literal: true}
	case ExprKeywordFalse:
		return ExprToken{Type: ExprTokenTypeBool, Value: value, Pos: startPos, Literal: false}
	case ExprKeywordNil:
		return ExprToken{Type: ExprTokenTypeNil, Value: value, Pos: startPos}
	}

	return ExprToken{Type: ExprTokenTypeIdentifier, Value: value, Pos: startPos}
}

func (t *ExprTokenizer) peek() byte {
	return t.peekAt(0)
}

func (t *ExprTokenizer) peekAt(offset int) byte {
	if t.pos+offset >= len(t.input) {
		return 0
	}
	return t.input[t.pos+offset]
}

func (t *ExprTokenizer) skipWhitespace() {
	for t.pos < len(t.input) && unicode.IsSpace(rune(t.input[t.pos])) {
		t.pos++
	}
}

// ExprTokenError represents an error during expression tokenization
type ExprTokenError struct {
	Message string
	Pos     int
	Detail  string
}

// NewExprTokenError creates a new expression token error
func NewExprTokenError(message string, pos int, detail string) *ExprTokenError {
	return &ExprTokenError{Message: message, Pos: pos, Detail: detail}
}

// Error implements the error interface
func (e *ExprTokenError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf(ErrFmtExprPositionDetail, e.Message, e.Pos, e.Detail)
	}
	return fmt.Sprintf(ErrFmtExprPosition, e.Message, e.Pos)
}
