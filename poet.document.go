package poet

import (
	"errors"

	"github.com/Propfend/poet/internal"
	"go.uber.org/zap"
)

// BlockKind classifies a top-level block of a document body
type BlockKind int

// Block kinds
const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockCode
)

// Block is one top-level block of a compiled document. Code blocks hold a
// single TextNode and are never evaluated.
type Block struct {
	Kind    BlockKind
	Line    int
	Content *TagElement
}

// ParsedDocument is a compiled prompt document. It is immutable and shared
// by every request to the document.
type ParsedDocument struct {
	FrontMatter FrontMatter
	Blocks      []Block
}

// ParseDocument splits the front matter from the body, decodes it and
// compiles every block, including each expression, with the evaluator.
func ParseDocument(source string, evaluator Evaluator, logger *zap.Logger) (*ParsedDocument, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if evaluator == nil {
		evaluator = NewExpressionEvaluator()
	}

	split, err := internal.SplitFrontMatter(source)
	if err != nil {
		return nil, NewParseMetadataError(ErrMsgFrontMatterInvalid, err)
	}

	fm, err := ParseFrontMatter(split.Format, split.Raw)
	if err != nil {
		return nil, err
	}

	raw, err := internal.NewMarkupParser(split.Body, split.BodyLine, logger).Parse()
	if err != nil {
		var markupErr *internal.MarkupError
		if errors.As(err, &markupErr) {
			return nil, NewParseError(err, markupErr.Position.Line, markupErr.Position.Column)
		}
		return nil, NewParseError(err, split.BodyLine, 1)
	}

	c := &documentCompiler{evaluator: evaluator}
	blocks := make([]Block, 0, len(raw))
	for _, rb := range raw {
		block, err := c.compileBlock(rb)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	return &ParsedDocument{FrontMatter: fm, Blocks: blocks}, nil
}

// documentCompiler converts parsed markup into tag trees
type documentCompiler struct {
	evaluator Evaluator
}

var blockKinds = map[internal.BlockKind]BlockKind{
	internal.BlockKindParagraph: BlockParagraph,
	internal.BlockKindHeading:   BlockHeading,
	internal.BlockKindCode:      BlockCode,
}

func (c *documentCompiler) compileBlock(rb internal.RawBlock) (Block, error) {
	kind := blockKinds[rb.Kind]

	if kind == BlockCode {
		var text string
		for _, node := range rb.Nodes {
			if t, ok := node.(*internal.MarkupText); ok {
				text += t.Text
			}
		}
		return Block{Kind: kind, Line: rb.Line, Content: NewGroup(&TextNode{Text: text})}, nil
	}

	children, err := c.convertNodes(rb.Nodes)
	if err != nil {
		return Block{}, err
	}
	return Block{Kind: kind, Line: rb.Line, Content: NewGroup(children...)}, nil
}

func (c *documentCompiler) convertNodes(nodes []internal.MarkupNode) ([]TagNode, error) {
	out := make([]TagNode, 0, len(nodes))
	for _, node := range nodes {
		converted, err := c.convertNode(node)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func (c *documentCompiler) convertNode(node internal.MarkupNode) (TagNode, error) {
	switch n := node.(type) {
	case *internal.MarkupText:
		return &TextNode{Text: n.Text}, nil
	case *internal.MarkupExpression:
		expr, err := c.compile(n.Source, n.Position)
		if err != nil {
			return nil, err
		}
		return &BodyExpressionNode{Expression: expr}, nil
	case *internal.MarkupElement:
		return c.convertElement(n)
	default:
		pos := node.Pos()
		return nil, NewParseError(errors.New(ErrMsgMarkupInvalid), pos.Line, pos.Column)
	}
}

func (c *documentCompiler) convertElement(el *internal.MarkupElement) (TagNode, error) {
	attrs := make([]Attribute, 0, len(el.Attributes))
	for _, a := range el.Attributes {
		switch a.Kind {
		case internal.AttrKindFlag:
			attrs = append(attrs, FlagAttribute(a.Name))
		case internal.AttrKindExpression:
			expr, err := c.compile(a.Value, a.Position)
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, ExpressionAttribute(a.Name, expr))
		default:
			attrs = append(attrs, TextAttribute(a.Name, a.Value))
		}
	}

	children, err := c.convertNodes(el.Children)
	if err != nil {
		return nil, err
	}

	header := NewTagHeader(el.Name, attrs...)
	header.SelfClosing = el.SelfClosing
	return &TagElement{Opening: header, Children: children, IsClosed: el.Closed}, nil
}

func (c *documentCompiler) compile(source string, pos internal.Position) (Expression, error) {
	expr, err := c.evaluator.Compile(source)
	if err != nil {
		return nil, NewExpressionCompileError(source, pos.Line, pos.Column, err)
	}
	return expr, nil
}
