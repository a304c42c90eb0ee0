package poet

import "github.com/Propfend/poet/internal"

// TagNode is a node of a compiled document tree. The set of implementations
// is closed: *TextNode, *BodyExpressionNode and *TagElement.
type TagNode interface {
	tagNode()
}

// TextNode is verbatim text
type TextNode struct {
	Text string
}

// BodyExpressionNode is a {expr} in body text
type BodyExpressionNode struct {
	Expression Expression
}

// TagElement is a tag with its children. An element without an Opening is
// a synthetic group whose children render in order with no wrapping.
type TagElement struct {
	Opening  *TagHeader
	Children []TagNode
	IsClosed bool
}

func (*TextNode) tagNode()           {}
func (*BodyExpressionNode) tagNode() {}
func (*TagElement) tagNode()         {}

// TagHeader is the opening of a tag
type TagHeader struct {
	Name        string
	IsComponent bool
	SelfClosing bool
	Attributes  []Attribute
}

// Attribute is one name with an optional value. A nil Value marks a
// valueless attribute, which components receive as true.
type Attribute struct {
	Name  string
	Value *AttributeValue
}

// AttributeValue holds either literal text or a compiled expression
type AttributeValue struct {
	Text       string
	Expression Expression
}

// NewGroup creates a synthetic group element
func NewGroup(children ...TagNode) *TagElement {
	return &TagElement{Children: children}
}

// NewTagHeader creates an opening tag. Names starting with an upper-case
// letter are components.
func NewTagHeader(name string, attrs ...Attribute) *TagHeader {
	return &TagHeader{
		Name:        name,
		IsComponent: internal.IsComponentName(name),
		Attributes:  attrs,
	}
}

// TextAttribute creates a name="text" attribute
func TextAttribute(name, text string) Attribute {
	return Attribute{Name: name, Value: &AttributeValue{Text: text}}
}

// ExpressionAttribute creates a name={expr} attribute
func ExpressionAttribute(name string, expr Expression) Attribute {
	return Attribute{Name: name, Value: &AttributeValue{Expression: expr}}
}

// FlagAttribute creates a valueless attribute
func FlagAttribute(name string) Attribute {
	return Attribute{Name: name}
}
