package internal

import (
	"fmt"
	"strings"
)

// ExprNodeType identifies the type of expression AST node
type ExprNodeType int

// Expression node type constants
const (
	ExprNodeTypeLiteral ExprNodeType = iota
	ExprNodeTypeIdentifier
	ExprNodeTypeUnary
	ExprNodeTypeBinary
	ExprNodeTypeCall
	ExprNodeTypeList
)

var exprNodeTypeNames = map[ExprNodeType]string{
	ExprNodeTypeLiteral:    "LITERAL",
	ExprNodeTypeIdentifier: "IDENTIFIER",
	ExprNodeTypeUnary:      "UNARY",
	ExprNodeTypeBinary:     "BINARY",
	ExprNodeTypeCall:       "CALL",
	ExprNodeTypeList:       "LIST",
}

// String returns the string representation of the node type
func (t ExprNodeType) String() string {
	if name, ok := exprNodeTypeNames[t]; ok {
		return name
	}
	return exprNodeTypeNames[ExprNodeTypeLiteral]
}

// ExprNode is the interface for all expression AST nodes
type ExprNode interface {
	Type() ExprNodeType
	String() string
	exprNode()
}

// LiteralNode represents a string, number, bool or nil literal
type LiteralNode struct {
	Value any
}

func (n *LiteralNode) Type() ExprNodeType { return ExprNodeTypeLiteral }
func (n *LiteralNode) exprNode()          {}

func (n *LiteralNode) String() string {
	switch v := n.Value.(type) {
	case nil:
		return ExprKeywordNil
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// IdentifierNode is a dotted path into the evaluation context
type IdentifierNode struct {
	Name string
}

func (n *IdentifierNode) Type() ExprNodeType { return ExprNodeTypeIdentifier }
func (n *IdentifierNode) exprNode()          {}
func (n *IdentifierNode) String() string     { return n.Name }

// UnaryNode represents a unary operation (e.g., !x)
type UnaryNode struct {
	Op    ExprTokenType
	Right ExprNode
}

func (n *UnaryNode) Type() ExprNodeType { return ExprNodeTypeUnary }
func (n *UnaryNode) exprNode()          {}

func (n *UnaryNode) String() string {
	return fmt.Sprintf("(%s%s)", ExprOpNot, n.Right.String())
}

// BinaryNode represents a binary operation (e.g., a && b)
type BinaryNode struct {
	Left  ExprNode
	Op    ExprTokenType
	Right ExprNode
}

func (n *BinaryNode) Type() ExprNodeType { return ExprNodeTypeBinary }
func (n *BinaryNode) exprNode()          {}

func (n *BinaryNode) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left.String(), n.Op, n.Right.String())
}

// CallNode represents a function call (e.g., upper(name))
type CallNode struct {
	Name string
	Args []ExprNode
}

func (n *CallNode) Type() ExprNodeType { return ExprNodeTypeCall }
func (n *CallNode) exprNode()          {}

func (n *CallNode) String() string {
	return fmt.Sprintf("%s(%s)", n.Name, joinNodes(n.Args))
}

// ListNode is a sequence literal such as [a, "b", 3]
type ListNode struct {
	Elements []ExprNode
}

func (n *ListNode) Type() ExprNodeType { return ExprNodeTypeList }
func (n *ListNode) exprNode()          {}

func (n *ListNode) String() string {
	return fmt.Sprintf("[%s]", joinNodes(n.Elements))
}

func joinNodes(nodes []ExprNode) string {
	parts := make([]string, len(nodes))
	for i, node := range nodes {
		parts[i] = node.String()
	}
	return strings.Join(parts, ", ")
}
