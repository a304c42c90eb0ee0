package internal

import "fmt"

// ExprParser parses expression tokens into an AST
//
// Grammar, lowest precedence first:
//
//	or         = and ( "||" and )*
//	and        = equality ( "&&" equality )*
//	equality   = comparison ( ( "==" | "!=" ) comparison )*
//	comparison = unary ( ( "<" | ">" | "<=" | ">=" ) unary )*
//	unary      = "!" unary | call
//	call       = primary ( "(" args? ")" )?
//	primary    = literal | identifier | "(" or ")" | "[" args? "]"
type ExprParser struct {
	tokens []ExprToken
	pos    int
}

// NewExprParser creates a new expression parser
func NewExprParser(tokens []ExprToken) *ExprParser {
	return &ExprParser{tokens: tokens}
}

// Parse parses the expression and returns the root AST node
func (p *ExprParser) Parse() (ExprNode, error) {
	if p.isAtEnd() {
		return nil, NewExprParseError(ErrMsgExprEmptyExpression, 0, "")
	}

	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if !p.isAtEnd() {
		return nil, NewExprParseError(ErrMsgExprUnexpectedToken, p.peek().Pos, p.peek().Value)
	}

	return node, nil
}

// parseBinaryLevel parses one left-associative precedence level
func (p *ExprParser) parseBinaryLevel(next func() (ExprNode, error), ops ...ExprTokenType) (ExprNode, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for p.matchAny(ops...) {
		op := p.previous().Type
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Left: left, Op: op, Right: right}
	}

	return left, nil
}

func (p *ExprParser) parseOr() (ExprNode, error) {
	return p.parseBinaryLevel(p.parseAnd, ExprTokenTypeOr)
}

func (p *ExprParser) parseAnd() (ExprNode, error) {
	return p.parseBinaryLevel(p.parseEquality, ExprTokenTypeAnd)
}

func (p *ExprParser) parseEquality() (ExprNode, error) {
	return p.parseBinaryLevel(p.parseComparison, ExprTokenTypeEq, ExprTokenTypeNeq)
}

func (p *ExprParser) parseComparison() (ExprNode, error) {
	return p.parseBinaryLevel(p.parseUnary,
		ExprTokenTypeLt, ExprTokenTypeGt, ExprTokenTypeLte, ExprTokenTypeGte)
}

func (p *ExprParser) parseUnary() (ExprNode, error) {
	if p.match(ExprTokenTypeNot) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryNode{Op: ExprTokenTypeNot, Right: right}, nil
	}

	return p.parseCall()
}

func (p *ExprParser) parseCall() (ExprNode, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	if ident, ok := node.(*IdentifierNode); ok && p.match(ExprTokenTypeLParen) {
		args, err := p.parseList(ExprTokenTypeRParen, ErrMsgExprExpectedRParen)
		if err != nil {
			return nil, err
		}
		return &CallNode{Name: ident.Name, Args: args}, nil
	}

	return node, nil
}

// parseList parses comma separated expressions up to the closing token.
// The opening token has already been consumed.
func (p *ExprParser) parseList(closing ExprTokenType, missingMsg string) ([]ExprNode, error) {
	var items []ExprNode

	if !p.check(closing) {
		for {
			item, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			items = append(items, item)

			if !p.match(ExprTokenTypeComma) {
				break
			}
		}
	}

	if !p.match(closing) {
		return nil, NewExprParseError(missingMsg, p.currentPos(), "")
	}

	return items, nil
}

func (p *ExprParser) parsePrimary() (ExprNode, error) {
	switch {
	case p.matchAny(ExprTokenTypeString, ExprTokenTypeNumber, ExprTokenTypeBool, ExprTokenTypeNil):
		return &LiteralNode{Value: p.previous().Literal}, nil

	case p.match(ExprTokenTypeIdentifier):
		return &IdentifierNode{Name: p.previous().Value}, nil

	case p.match(ExprTokenTypeLParen):
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.match(ExprTokenTypeRParen) {
			return nil, NewExprParseError(ErrMsgExprExpectedRParen, p.currentPos(), "")
		}
		return expr, nil

	case p.match(ExprTokenTypeLBracket):
		elements, err := p.parseList(ExprTokenTypeRBracket, ErrMsgExprExpectedBracket)
		if err != nil {
			return nil, err
		}
		return &ListNode{Elements: elements}, nil
	}

	if p.isAtEnd() {
		return nil, NewExprParseError(ErrMsgExprUnexpectedEOF, p.currentPos(), "")
	}

	return nil, NewExprParseError(ErrMsgExprUnexpectedToken, p.peek().Pos, p.peek().Value)
}

func (p *ExprParser) match(tokenType ExprTokenType) bool {
	if p.check(tokenType) {
		p.pos++
		return true
	}
	return false
}

func (p *ExprParser) matchAny(types ...ExprTokenType) bool {
	for _, t := range types {
		if p.match(t) {
			return true
		}
	}
	return false
}

func (p *ExprParser) check(tokenType ExprTokenType) bool {
	return !p.isAtEnd() && p.peek().Type == tokenType
}

func (p *ExprParser) peek() ExprToken {
	if p.pos >= len(p.tokens) {
		return ExprToken{Type: ExprTokenTypeEOF, Pos: p.currentPos()}
	}
	return p.tokens[p.pos]
}

func (p *ExprParser) previous() ExprToken {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *ExprParser) isAtEnd() bool {
	return p.pos >= len(p.tokens) || p.tokens[p.pos].Type == ExprTokenTypeEOF
}

func (p *ExprParser) currentPos() int {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos].Pos
	}
	if len(p.tokens) > 0 {
		return p.tokens[len(p.tokens)-1].Pos
	}
	return 0
}

// ExprParseError represents an error during expression parsing
type ExprParseError struct {
	Message string
	Pos     int
	Detail  string
}

// NewExprParseError creates a new expression parse error
func NewExprParseError(message string, pos int, detail string) *ExprParseError {
	return &ExprParseError{Message: message, Pos: pos, Detail: detail}
}

// Error implements the error interface
func (e *ExprParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf(ErrFmtExprPositionDetail, e.Message, e.Pos, e.Detail)
	}
	return fmt.Sprintf(ErrFmtExprPosition, e.Message, e.Pos)
}

// ParseExpression tokenizes and parses an expression string
func ParseExpression(expr string) (ExprNode, error) {
	tokens, err := NewExprTokenizer(expr).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewExprParser(tokens).Parse()
}
