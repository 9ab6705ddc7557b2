package ast

import (
	"fmt"
	"slices"
)

// Tree is an arena of nodes. The zero value is not usable; use NewTree.
type Tree struct {
	nodes map[ID]*Node
	next  ID
	root  ID
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{nodes: make(map[ID]*Node)}
}

// Root returns the root node ID, or NoID for an empty tree.
func (t *Tree) Root() ID { return t.root }

// SetRoot makes a detached node the root of the tree.
func (t *Tree) SetRoot(id ID) error {
	n, err := t.get(id)
	if err != nil {
		return err
	}
	if n.parent != NoID {
		return ErrInvalidEdit.WithContext("reason", "root must not have a parent").WithContext("node", id)
	}
	t.root = id
	return nil
}

// Len returns the number of live nodes, including field values.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node for id; ok is false if it was never created or was freed.
func (t *Tree) Node(id ID) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Contains reports whether id names a live node.
func (t *Tree) Contains(id ID) bool {
	_, ok := t.nodes[id]
	return ok
}

func (t *Tree) get(id ID) (*Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, ErrNodeNotFound.WithContext("node", id)
	}
	return n, nil
}

func (t *Tree) alloc(kind Kind, nodeType string) *Node {
	t.next++
	n := &Node{id: t.next, kind: kind, nodeType: nodeType}
	t.nodes[n.id] = n
	return n
}

// NewDict creates a detached dict node. An empty type defaults to TypeDict.
func (t *Tree) NewDict(nodeType string) ID {
	if nodeType == "" {
		nodeType = TypeDict
	}
	return t.alloc(KindDict, nodeType).id
}

// NewList creates a detached, empty list node.
func (t *Tree) NewList() ID {
	return t.alloc(KindList, TypeList).id
}

// NewTransformation creates a detached transformation marker naming a transform.
func (t *Tree) NewTransformation(name string) ID {
	n := t.alloc(KindTransformation, TypeTransformation)
	n.transform = name
	return n.id
}

// NewLiteral creates a detached literal. The type tag follows the Go type of
// value: string Text, int64 Int, float64 Float, bool Bool, nil Null.
func (t *Tree) NewLiteral(value any) ID {
	var nodeType string
	switch v := value.(type) {
	case string:
		nodeType = TypeText
	case int:
		value = int64(v)
		nodeType = TypeInt
	case int64:
		nodeType = TypeInt
	case float64:
		nodeType = TypeFloat
	case bool:
		nodeType = TypeBool
	case nil:
		nodeType = TypeNull
	default:
		nodeType = fmt.Sprintf("%T", value)
	}
	n := t.alloc(KindLiteral, nodeType)
	n.value = value
	return n.id
}

// NewText creates a detached Text literal.
func (t *Tree) NewText(s string) ID { return t.NewLiteral(s) }

// Kind returns the kind of id, or KindInvalid if it does not exist.
func (t *Tree) Kind(id ID) Kind {
	if n, ok := t.nodes[id]; ok {
		return n.kind
	}
	return KindInvalid
}

// Type returns the node_type tag of id.
func (t *Tree) Type(id ID) string {
	if n, ok := t.nodes[id]; ok {
		return n.nodeType
	}
	return ""
}

// SetType replaces the node_type tag of id.
func (t *Tree) SetType(id ID, nodeType string) error {
	n, err := t.get(id)
	if err != nil {
		return err
	}
	n.nodeType = nodeType
	return nil
}

// TransformName returns the transform named by a transformation node.
func (t *Tree) TransformName(id ID) string {
	if n, ok := t.nodes[id]; ok {
		return n.transform
	}
	return ""
}

// RecordID returns the external record key of id, if any.
func (t *Tree) RecordID(id ID) string {
	if n, ok := t.nodes[id]; ok {
		return n.recordID
	}
	return ""
}

// SetRecordID sets the external record key of id.
func (t *Tree) SetRecordID(id ID, recordID string) error {
	n, err := t.get(id)
	if err != nil {
		return err
	}
	n.recordID = recordID
	return nil
}

// Value returns the value of a literal node.
func (t *Tree) Value(id ID) any {
	if n, ok := t.nodes[id]; ok {
		return n.value
	}
	return nil
}

// Parent returns the parent of id, or NoID for the root and detached nodes.
func (t *Tree) Parent(id ID) ID {
	if n, ok := t.nodes[id]; ok {
		return n.parent
	}
	return NoID
}

// Children returns a snapshot of the ordered children of id.
func (t *Tree) Children(id ID) []ID {
	if n, ok := t.nodes[id]; ok {
		return slices.Clone(n.children)
	}
	return nil
}

// HasChildren reports whether id has at least one child.
func (t *Tree) HasChildren(id ID) bool {
	n, ok := t.nodes[id]
	return ok && len(n.children) > 0
}

// IndexOf returns the position of child in parent's children, or -1.
func (t *Tree) IndexOf(parent, child ID) int {
	n, ok := t.nodes[parent]
	if !ok {
		return -1
	}
	return n.indexOf(child)
}

// Ancestors returns the chain of ancestors of id, nearest first.
func (t *Tree) Ancestors(id ID) []ID {
	var out []ID
	for p := t.Parent(id); p != NoID; p = t.Parent(p) {
		out = append(out, p)
	}
	return out
}

func (t *Tree) container(id ID) (*Node, error) {
	n, err := t.get(id)
	if err != nil {
		return nil, err
	}
	if !n.IsContainer() {
		return nil, ErrInvalidEdit.WithContext("reason", "node cannot have children").WithContext("node", id).WithContext("kind", n.kind.String())
	}
	return n, nil
}

func (t *Tree) detached(id ID) (*Node, error) {
	n, err := t.get(id)
	if err != nil {
		return nil, err
	}
	if n.parent != NoID || id == t.root {
		return nil, ErrInvalidEdit.WithContext("reason", "node is already attached").WithContext("node", id)
	}
	return n, nil
}

// AppendChild attaches a detached node as the last child of parent.
func (t *Tree) AppendChild(parent, child ID) error {
	p, err := t.container(parent)
	if err != nil {
		return err
	}
	return t.insertAt(p, len(p.children), child)
}

// InsertChild attaches a detached node at position index of parent's children.
func (t *Tree) InsertChild(parent ID, index int, child ID) error {
	p, err := t.container(parent)
	if err != nil {
		return err
	}
	if index < 0 || index > len(p.children) {
		return ErrInvalidEdit.WithContext("reason", "child index out of range").WithContext("index", index)
	}
	return t.insertAt(p, index, child)
}

func (t *Tree) insertAt(p *Node, index int, child ID) error {
	if child == p.id {
		return ErrInvalidEdit.WithContext("reason", "node cannot be its own child").WithContext("node", child)
	}
	c, err := t.detached(child)
	if err != nil {
		return err
	}
	p.children = slices.Insert(p.children, index, child)
	c.parent = p.id
	return nil
}

// ReplaceChild puts a detached node in place of old within parent's children,
// preserving position. The old node and its subtree are freed. It fails with
// ErrChildNotFound if old is not a direct child of parent by identity.
func (t *Tree) ReplaceChild(parent, old, replacement ID) error {
	p, err := t.container(parent)
	if err != nil {
		return err
	}
	idx := p.indexOf(old)
	if idx < 0 {
		return ErrChildNotFound.WithContext("parent", parent).WithContext("child", old)
	}
	r, err := t.detached(replacement)
	if err != nil {
		return err
	}
	p.children[idx] = replacement
	r.parent = parent
	t.free(old)
	return nil
}

// Replace puts a detached node in place of old, wherever old is: in its
// parent's children or as the tree root.
func (t *Tree) Replace(old, replacement ID) error {
	o, err := t.get(old)
	if err != nil {
		return err
	}
	if o.parent != NoID {
		return t.ReplaceChild(o.parent, old, replacement)
	}
	if old != t.root {
		return ErrInvalidEdit.WithContext("reason", "cannot replace a detached node").WithContext("node", old)
	}
	if _, err := t.detached(replacement); err != nil {
		return err
	}
	t.root = replacement
	t.free(old)
	return nil
}

// RemoveChild detaches child from parent and frees its subtree.
func (t *Tree) RemoveChild(parent, child ID) error {
	p, err := t.container(parent)
	if err != nil {
		return err
	}
	idx := p.indexOf(child)
	if idx < 0 {
		return ErrChildNotFound.WithContext("parent", parent).WithContext("child", child)
	}
	p.children = slices.Delete(p.children, idx, idx+1)
	t.free(child)
	return nil
}

// Remove detaches id from its parent and frees its subtree. Removing the root
// empties the tree.
func (t *Tree) Remove(id ID) error {
	n, err := t.get(id)
	if err != nil {
		return err
	}
	if n.parent != NoID {
		return t.RemoveChild(n.parent, id)
	}
	if id == t.root {
		t.root = NoID
	}
	t.free(id)
	return nil
}

// Dissolve removes the node id but keeps its children, splicing them into the
// parent at the node's position. At the root, a single child is promoted to
// root; several children are kept under the node, which becomes a plain list.
// It returns the IDs now occupying the node's place.
func (t *Tree) Dissolve(id ID) ([]ID, error) {
	n, err := t.get(id)
	if err != nil {
		return nil, err
	}
	children := slices.Clone(n.children)

	if n.parent == NoID {
		if id != t.root {
			return nil, ErrInvalidEdit.WithContext("reason", "cannot dissolve a detached node").WithContext("node", id)
		}
		if len(children) == 1 {
			child := t.nodes[children[0]]
			child.parent = NoID
			n.children = nil
			t.root = child.id
			t.free(id)
			return children, nil
		}
		n.kind = KindList
		n.nodeType = TypeList
		n.transform = ""
		n.freeFields(t)
		return []ID{id}, nil
	}

	p := t.nodes[n.parent]
	idx := p.indexOf(id)
	if idx < 0 {
		return nil, ErrChildNotFound.WithContext("parent", n.parent).WithContext("child", id)
	}
	for _, c := range children {
		t.nodes[c].parent = p.id
	}
	p.children = slices.Replace(p.children, idx, idx+1, children...)
	n.children = nil
	t.free(id)
	return children, nil
}

func (n *Node) freeFields(t *Tree) {
	for _, f := range n.fields {
		t.free(f.Value)
	}
	n.fields = nil
}

// free releases id and everything it owns. The caller has already unlinked id
// from its parent.
func (t *Tree) free(id ID) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	delete(t.nodes, id)
	for _, c := range n.children {
		t.free(c)
	}
	for _, f := range n.fields {
		t.free(f.Value)
	}
}

// RelinkParents recomputes every parent link reachable from the root. Loaders
// run it once after building a tree; edits keep the links current afterwards.
func (t *Tree) RelinkParents() {
	if n, ok := t.nodes[t.root]; ok {
		n.parent = NoID
		t.relink(n)
	}
}

func (t *Tree) relink(n *Node) {
	for _, c := range n.children {
		if cn, ok := t.nodes[c]; ok {
			cn.parent = n.id
			t.relink(cn)
		}
	}
	for _, f := range n.fields {
		if fn, ok := t.nodes[f.Value]; ok {
			fn.parent = n.id
			t.relink(fn)
		}
	}
}
