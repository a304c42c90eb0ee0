package internal

import (
	"strings"

	"go.uber.org/zap"
)

// MarkupParser splits a document body into blocks and parses the inline
// markup of each block: text, {expr} body expressions and <Tag> elements.
type MarkupParser struct {
	source string
	pos    int
	line   int
	column int
	logger *zap.Logger
}

// NewMarkupParser creates a parser for a body whose first line is firstLine
// in the enclosing document.
func NewMarkupParser(source string, firstLine int, logger *zap.Logger) *MarkupParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if firstLine < 1 {
		firstLine = 1
	}
	return &MarkupParser{
		source: source,
		line:   firstLine,
		column: 1,
		logger: logger,
	}
}

// ParseMarkup parses a body with a no-op logger
func ParseMarkup(source string, firstLine int) ([]RawBlock, error) {
	return NewMarkupParser(source, firstLine, nil).Parse()
}

// Parse returns the blocks of the body in source order
func (p *MarkupParser) Parse() ([]RawBlock, error) {
	p.logger.Debug(LogMsgMarkupParseStart, zap.Int(LogFieldSource, len(p.source)))

	var blocks []RawBlock
	for {
		p.skipBlankLines()
		if p.isAtEnd() {
			break
		}

		line := p.currentLine()
		var block RawBlock
		var err error
		switch {
		case fenceMarker(line) != "":
			block = p.scanFence(fenceMarker(line))
		case isHeadingLine(line):
			block, err = p.parseFlow(BlockKindHeading)
		default:
			block, err = p.parseFlow(BlockKindParagraph)
		}
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	p.logger.Debug(LogMsgMarkupParseEnd, zap.Int(LogFieldBlocks, len(blocks)))
	return blocks, nil
}

// textBuffer accumulates text and remembers where it started
type textBuffer struct {
	sb  strings.Builder
	pos Position
}

func (b *textBuffer) take(p *MarkupParser) {
	if b.sb.Len() == 0 {
		b.pos = p.currentPosition()
	}
	b.sb.WriteByte(p.advance())
}

func (b *textBuffer) write(s string, at Position) {
	if b.sb.Len() == 0 {
		b.pos = at
	}
	b.sb.WriteString(s)
}

// parseFlow parses a paragraph or heading. Open tags are tracked on a stack:
// a closing tag closes the nearest matching opening and leaves the literal
// tags above it unclosed. A blank line ends the block unless a component is
// still open.
func (p *MarkupParser) parseFlow(kind BlockKind) (RawBlock, error) {
	start := p.currentPosition()
	root := &MarkupElement{}
	stack := []*MarkupElement{root}
	var buf textBuffer

	appendNode := func(n MarkupNode) {
		top := stack[len(stack)-1]
		top.Children = append(top.Children, n)
	}
	flush := func() {
		if buf.sb.Len() > 0 {
			appendNode(&MarkupText{Text: buf.sb.String(), Position: buf.pos})
			buf.sb.Reset()
		}
	}

loop:
	for !p.isAtEnd() {
		ch := p.peek()
		switch {
		case ch == CharNewline:
			if openComponent(stack) == nil && p.endsBlockAfterNewline(kind) {
				p.advance()
				break loop
			}
			buf.take(p)

		case ch == CharBackslash && isEscapable(p.peekAt(1)):
			at := p.currentPosition()
			p.advance()
			buf.write(string(p.advance()), at)

		case ch == CharBacktick:
			p.scanCodeSpan(&buf)

		case ch == CharOpenBrace:
			flush()
			expr, err := p.scanBodyExpression()
			if err != nil {
				return RawBlock{}, err
			}
			appendNode(expr)

		case ch == CharOpenAngle && p.peekAt(1) == CharSlash && isLetter(p.peekAt(2)):
			flush()
			pos := p.currentPosition()
			name, err := p.scanClosingTag()
			if err != nil {
				return RawBlock{}, err
			}
			idx := matchingOpen(stack, name)
			if idx < 0 {
				return RawBlock{}, NewMarkupError(ErrMsgMarkupMismatchedClose, name, pos)
			}
			if el := openComponent(stack[idx+1:]); el != nil {
				return RawBlock{}, NewMarkupError(ErrMsgMarkupUnclosedComponent, el.Name, el.Position)
			}
			stack[idx].Closed = true
			stack = stack[:idx]

		case ch == CharOpenAngle && isLetter(p.peekAt(1)):
			flush()
			el, err := p.scanOpeningTag()
			if err != nil {
				return RawBlock{}, err
			}
			appendNode(el)
			if !el.SelfClosing {
				stack = append(stack, el)
			}

		default:
			buf.take(p)
		}
	}
	flush()

	if el := openComponent(stack); el != nil {
		return RawBlock{}, NewMarkupError(ErrMsgMarkupUnclosedComponent, el.Name, el.Position)
	}

	return RawBlock{Kind: kind, Line: start.Line, Nodes: root.Children}, nil
}

// matchingOpen returns the stack index of the innermost open element
// named name, or -1. Index 0 is the block root and never matches.
func matchingOpen(stack []*MarkupElement, name string) int {
	for i := len(stack) - 1; i > 0; i-- {
		if stack[i].Name == name {
			return i
		}
	}
	return -1
}

func openComponent(stack []*MarkupElement) *MarkupElement {
	for _, el := range stack {
		if el.IsComponent() {
			return el
		}
	}
	return nil
}

func (p *MarkupParser) endsBlockAfterNewline(kind BlockKind) bool {
	if kind == BlockKindHeading || p.pos+1 >= len(p.source) {
		return true
	}
	next := p.source[p.pos+1:]
	if end := strings.IndexByte(next, CharNewline); end >= 0 {
		next = next[:end]
	}
	return strings.TrimSpace(next) == "" || fenceMarker(next) != "" || isHeadingLine(next)
}

// scanFence consumes a fenced code block up to and including its closing
// fence. An unclosed fence runs to the end of the body.
func (p *MarkupParser) scanFence(marker string) RawBlock {
	start := p.currentPosition()
	begin := p.pos

	p.consumeLine()
	for !p.isAtEnd() {
		line := p.currentLine()
		p.consumeLine()
		if isFenceClose(line, marker) {
			break
		}
	}

	text := strings.TrimRight(p.source[begin:p.pos], "\r\n")
	return RawBlock{
		Kind:  BlockKindCode,
		Line:  start.Line,
		Nodes: []MarkupNode{&MarkupText{Text: text, Position: start}},
	}
}

// scanCodeSpan copies an inline `code` span verbatim. A backtick run with no
// matching run before the next blank line is plain text.
func (p *MarkupParser) scanCodeSpan(buf *textBuffer) {
	at := p.currentPosition()
	n := 0
	for p.peekAt(n) == CharBacktick {
		n++
	}
	run := p.source[p.pos : p.pos+n]

	rest := p.source[p.pos+n:]
	end := strings.Index(rest, run)
	if blank := strings.Index(rest, "\n\n"); end < 0 || (blank >= 0 && blank < end) {
		p.advanceN(n)
		buf.write(run, at)
		return
	}

	span := p.source[p.pos : p.pos+n+end+n]
	p.advanceN(len(span))
	buf.write(span, at)
}

// scanBodyExpression scans {expr}. Braces nest and quoted strings may
// contain braces.
func (p *MarkupParser) scanBodyExpression() (*MarkupExpression, error) {
	pos := p.currentPosition()
	p.advance()
	begin := p.pos
	depth := 0

	for !p.isAtEnd() {
		switch ch := p.peek(); ch {
		case CharDoubleQuote, CharSingleQuote:
			if !p.skipQuoted(ch) {
				return nil, NewMarkupError(ErrMsgMarkupUnterminatedExpr, "", pos)
			}
			continue
		case CharOpenBrace:
			depth++
		case CharCloseBrace:
			if depth == 0 {
				src := strings.TrimSpace(p.source[begin:p.pos])
				p.advance()
				if src == "" {
					return nil, NewMarkupError(ErrMsgMarkupEmptyExpr, "", pos)
				}
				return &MarkupExpression{Source: src, Position: pos}, nil
			}
			depth--
		}
		p.advance()
	}

	return nil, NewMarkupError(ErrMsgMarkupUnterminatedExpr, "", pos)
}

// skipQuoted consumes a quoted string including its quotes
func (p *MarkupParser) skipQuoted(quote byte) bool {
	p.advance()
	for !p.isAtEnd() {
		ch := p.advance()
		if ch == CharBackslash {
			p.advance()
			continue
		}
		if ch == quote {
			return true
		}
	}
	return false
}

func (p *MarkupParser) scanOpeningTag() (*MarkupElement, error) {
	pos := p.currentPosition()
	p.advance()
	el := &MarkupElement{Name: p.scanName(), Position: pos}

	for {
		p.skipWhitespace()
		switch {
		case p.isAtEnd():
			return nil, NewMarkupError(ErrMsgMarkupUnterminatedTag, el.Name, pos)
		case p.matchStr(StrSelfClose):
			p.advanceN(len(StrSelfClose))
			el.SelfClosing = true
			return el, nil
		case p.peek() == CharCloseAngle:
			p.advance()
			return el, nil
		}

		attr, err := p.scanAttribute()
		if err != nil {
			return nil, err
		}
		el.Attributes = append(el.Attributes, attr)
	}
}

func (p *MarkupParser) scanAttribute() (MarkupAttribute, error) {
	pos := p.currentPosition()
	if !isLetter(p.peek()) && p.peek() != '_' {
		return MarkupAttribute{}, NewMarkupError(ErrMsgMarkupInvalidAttrName, string(p.peek()), pos)
	}
	attr := MarkupAttribute{Name: p.scanName(), Kind: AttrKindFlag, Position: pos}

	p.skipWhitespace()
	if p.peek() != CharEquals {
		return attr, nil
	}
	p.advance()
	p.skipWhitespace()

	switch ch := p.peek(); ch {
	case CharDoubleQuote, CharSingleQuote:
		value, err := p.scanQuotedValue(ch)
		if err != nil {
			return MarkupAttribute{}, err
		}
		attr.Kind, attr.Value = AttrKindText, value
	case CharOpenBrace:
		expr, err := p.scanBodyExpression()
		if err != nil {
			return MarkupAttribute{}, err
		}
		attr.Kind, attr.Value = AttrKindExpression, expr.Source
	default:
		begin := p.pos
		for !p.isAtEnd() && !isSpace(p.peek()) && p.peek() != CharCloseAngle && !p.matchStr(StrSelfClose) {
			p.advance()
		}
		attr.Kind, attr.Value = AttrKindText, p.source[begin:p.pos]
	}

	return attr, nil
}

func (p *MarkupParser) scanQuotedValue(quote byte) (string, error) {
	pos := p.currentPosition()
	p.advance()

	var sb strings.Builder
	for !p.isAtEnd() {
		ch := p.advance()
		switch {
		case ch == quote:
			return sb.String(), nil
		case ch == CharBackslash && !p.isAtEnd() && (p.peek() == quote || p.peek() == CharBackslash):
			sb.WriteByte(p.advance())
		default:
			sb.WriteByte(ch)
		}
	}

	return "", NewMarkupError(ErrMsgMarkupUnterminatedStr, "", pos)
}

func (p *MarkupParser) scanClosingTag() (string, error) {
	pos := p.currentPosition()
	p.advanceN(len(StrCloseTagOpen))
	name := p.scanName()

	p.skipWhitespace()
	if p.peek() != CharCloseAngle {
		return "", NewMarkupError(ErrMsgMarkupUnterminatedTag, name, pos)
	}
	p.advance()
	return name, nil
}

func (p *MarkupParser) scanName() string {
	begin := p.pos
	for !p.isAtEnd() && isNameChar(p.peek()) {
		p.advance()
	}
	return p.source[begin:p.pos]
}

// Position helpers

func (p *MarkupParser) currentPosition() Position {
	return Position{Offset: p.pos, Line: p.line, Column: p.column}
}

func (p *MarkupParser) isAtEnd() bool {
	return p.pos >= len(p.source)
}

func (p *MarkupParser) peek() byte {
	return p.peekAt(0)
}

func (p *MarkupParser) peekAt(offset int) byte {
	if p.pos+offset >= len(p.source) {
		return 0
	}
	return p.source[p.pos+offset]
}

func (p *MarkupParser) advance() byte {
	if p.isAtEnd() {
		return 0
	}
	ch := p.source[p.pos]
	p.pos++
	if ch == CharNewline {
		p.line++
		p.column = 1
	} else {
		p.column++
	}
	return ch
}

func (p *MarkupParser) advanceN(n int) {
	for i := 0; i < n && !p.isAtEnd(); i++ {
		p.advance()
	}
}

func (p *MarkupParser) matchStr(s string) bool {
	return strings.HasPrefix(p.source[p.pos:], s)
}

func (p *MarkupParser) skipWhitespace() {
	for !p.isAtEnd() && isSpace(p.peek()) {
		p.advance()
	}
}

// currentLine returns the rest of the current line without its line ending
func (p *MarkupParser) currentLine() string {
	line := p.source[p.pos:]
	if end := strings.IndexByte(line, CharNewline); end >= 0 {
		line = line[:end]
	}
	return strings.TrimSuffix(line, "\r")
}

// consumeLine advances past the current line and its newline
func (p *MarkupParser) consumeLine() {
	for !p.isAtEnd() {
		if p.advance() == CharNewline {
			return
		}
	}
}

func (p *MarkupParser) skipBlankLines() {
	for !p.isAtEnd() && strings.TrimSpace(p.currentLine()) == "" {
		p.consumeLine()
	}
}

// Line classification

func fenceMarker(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > FenceMaxIndent {
		return ""
	}
	for _, marker := range []string{StrFenceBacktick, StrFenceTilde} {
		if strings.HasPrefix(trimmed, marker) {
			return marker
		}
	}
	return ""
}

func isFenceClose(line, marker string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, marker) && strings.Trim(trimmed, marker[:1]) == ""
}

func isHeadingLine(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > FenceMaxIndent {
		return false
	}
	level := 0
	for level < len(trimmed) && trimmed[level] == CharHash {
		level++
	}
	if level == 0 || level > MaxHeadingLevel {
		return false
	}
	return level == len(trimmed) || trimmed[level] == CharSpace || trimmed[level] == CharTab
}

// Character classification helpers

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isSpace(ch byte) bool {
	return ch == CharSpace || ch == CharTab || ch == CharNewline || ch == CharCarriageRet
}

func isNameChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_' || ch == '-' || ch == '.' || ch == ':'
}

func isEscapable(ch byte) bool {
	return ch == CharOpenBrace || ch == CharCloseBrace || ch == CharOpenAngle
}
