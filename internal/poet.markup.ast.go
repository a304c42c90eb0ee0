package internal

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Position represents a location in a document body
type Position struct {
	Offset int // Byte offset from start of the body
	Line   int // 1-indexed line number in the whole document
	Column int // 1-indexed column number
}

// String returns a human-readable position string
func (p Position) String() string {
	return fmt.Sprintf(ErrFmtPosition, p.Line, p.Column)
}

// BlockKind classifies a top-level block of a document body
type BlockKind int

// Block kinds
const (
	BlockKindParagraph BlockKind = iota
	BlockKindHeading
	BlockKindCode
)

// RawBlock is one blank-line separated block with its parsed inline nodes.
// Code blocks hold a single MarkupText with the fenced source.
type RawBlock struct {
	Kind  BlockKind
	Line  int
	Nodes []MarkupNode
}

// MarkupNode is implemented by every inline markup node
type MarkupNode interface {
	Pos() Position
	markupNode()
}

// MarkupText is verbatim text
type MarkupText struct {
	Text     string
	Position Position
}

func (n *MarkupText) Pos() Position { return n.Position }
func (n *MarkupText) markupNode()   {}

// MarkupExpression is a {expr} body expression
type MarkupExpression struct {
	Source   string
	Position Position
}

func (n *MarkupExpression) Pos() Position { return n.Position }
func (n *MarkupExpression) markupNode()   {}

// AttrKind distinguishes the three attribute forms
type AttrKind int

// Attribute kinds
const (
	AttrKindFlag       AttrKind = iota // <Tag flag>
	AttrKindText                       // <Tag a="text">
	AttrKindExpression                 // <Tag a={expr}>
)

// MarkupAttribute is one attribute of an opening tag
type MarkupAttribute struct {
	Name     string
	Kind     AttrKind
	Value    string
	Position Position
}

// MarkupElement is a tag with its children. Closed is false for
// self-closing tags and for literal tags that were never closed.
type MarkupElement struct {
	Name        string
	Attributes  []MarkupAttribute
	Children    []MarkupNode
	SelfClosing bool
	Closed      bool
	Position    Position
}

func (n *MarkupElement) Pos() Position { return n.Position }
func (n *MarkupElement) markupNode()   {}

// IsComponent reports whether the element names a component
func (n *MarkupElement) IsComponent() bool {
	return IsComponentName(n.Name)
}

// IsComponentName reports whether a tag name starts with an upper-case letter
func IsComponentName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

// MarkupError represents a markup syntax error with position
type MarkupError struct {
	Message  string
	Detail   string
	Position Position
}

// NewMarkupError creates a new markup error
func NewMarkupError(message, detail string, pos Position) *MarkupError {
	return &MarkupError{Message: message, Detail: detail, Position: pos}
}

// Error implements the error interface
func (e *MarkupError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf(ErrFmtWithDetailPosition, e.Message, e.Detail, e.Position)
	}
	return fmt.Sprintf(ErrFmtWithPosition, e.Message, e.Position)
}
