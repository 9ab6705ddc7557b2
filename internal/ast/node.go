package ast

import "slices"

// ID identifies a node within one Tree. IDs are never reused by a Tree.
type ID uint32

// NoID is the zero ID; it names no node (the parent of the root).
const NoID ID = 0

// Kind is the closed set of node variants.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindDict
	KindList
	KindLiteral
	KindTransformation
)

func (k Kind) String() string {
	switch k {
	case KindDict:
		return "dict"
	case KindList:
		return "list"
	case KindLiteral:
		return "literal"
	case KindTransformation:
		return "transformation"
	default:
		return "invalid"
	}
}

// Reserved mapping keys of the serialized document format.
const (
	KeyNodeType     = "node_type"
	KeyChildren     = "children"
	KeyID           = "id"
	KeyTransform    = "transform"
	KeyHeadingLevel = "heading_level"
)

// Default node type tags.
const (
	TypeDict           = "Dict"
	TypeList           = "List"
	TypeTransformation = "Transformation"
	TypeText           = "Text"
	TypeInt            = "Int"
	TypeFloat          = "Float"
	TypeBool           = "Bool"
	TypeNull           = "Null"
)

// Annotation keys written by loaders and transforms. Annotations are never
// serialized except for the heading level.
const (
	AnnotationHeadingLevel = "heading_level"
	AnnotationSource       = "source"
	AnnotationIncludeDepth = "include_depth"
)

// Field is one named payload entry of a dict or transformation node. The value
// is itself a node of the same tree.
type Field struct {
	Name  string
	Value ID
}

// Node is a single arena slot. Its structure is only mutated through Tree.
type Node struct {
	id          ID
	kind        Kind
	nodeType    string
	transform   string
	recordID    string
	value       any
	fields      []Field
	children    []ID
	parent      ID
	annotations map[string]any
}

func (n *Node) ID() ID            { return n.id }
func (n *Node) Kind() Kind        { return n.kind }
func (n *Node) Type() string      { return n.nodeType }
func (n *Node) Transform() string { return n.transform }
func (n *Node) RecordID() string  { return n.recordID }
func (n *Node) Value() any        { return n.value }
func (n *Node) Parent() ID        { return n.parent }

// Children returns a snapshot of the ordered child IDs.
func (n *Node) Children() []ID { return slices.Clone(n.children) }

// Fields returns a snapshot of the ordered payload fields.
func (n *Node) Fields() []Field { return slices.Clone(n.fields) }

// IsContainer reports whether the node may hold children.
func (n *Node) IsContainer() bool {
	return n.kind == KindDict || n.kind == KindList || n.kind == KindTransformation
}

func (n *Node) indexOf(child ID) int {
	return slices.Index(n.children, child)
}

func (n *Node) fieldIndex(name string) int {
	return slices.IndexFunc(n.fields, func(f Field) bool { return f.Name == name })
}
