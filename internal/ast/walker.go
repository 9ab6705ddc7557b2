package ast

import "slices"

// DefaultMaxDepth bounds walker recursion when Walker.MaxDepth is unset.
const DefaultMaxDepth = 512

// Visitor receives pre-order and post-order calls for every non-list node of
// a walk. parents runs from the walk's outermost frame to the immediate parent;
// every call receives its own copy.
type Visitor interface {
	PreVisit(t *Tree, id ID, parents []ID, ctx Context) error
	PostVisit(t *Tree, id ID, parents []ID, ctx Context) error
}

// VisitorFuncs adapts plain functions to Visitor. Nil hooks are skipped.
type VisitorFuncs struct {
	Pre  func(t *Tree, id ID, parents []ID, ctx Context) error
	Post func(t *Tree, id ID, parents []ID, ctx Context) error
}

func (f VisitorFuncs) PreVisit(t *Tree, id ID, parents []ID, ctx Context) error {
	if f.Pre == nil {
		return nil
	}
	return f.Pre(t, id, parents, ctx)
}

func (f VisitorFuncs) PostVisit(t *Tree, id ID, parents []ID, ctx Context) error {
	if f.Post == nil {
		return nil
	}
	return f.Post(t, id, parents, ctx)
}

// Context is the state bag shared by reference across one walk.
type Context map[string]any

// Int returns the integer stored under key, or 0.
func (c Context) Int(key string) int {
	v, _ := c[key].(int)
	return v
}

// Add adds delta to the integer under key and returns the new value.
func (c Context) Add(key string, delta int) int {
	v := c.Int(key) + delta
	c[key] = v
	return v
}

// Flag returns the boolean stored under key.
func (c Context) Flag(key string) bool {
	v, _ := c[key].(bool)
	return v
}

// Set stores value under key.
func (c Context) Set(key string, value any) { c[key] = value }

// Walker performs depth-first traversals.
//
// List nodes are transparent: they receive no visitor calls, never appear in
// parents, and their elements are walked as if they were children of the
// list's owner.
type Walker struct {
	MaxDepth int
}

// Walk runs v over the subtree at id with the default Walker.
func Walk(v Visitor, t *Tree, id ID, parents []ID, ctx Context) error {
	return Walker{}.Walk(v, t, id, parents, ctx)
}

// Walk runs v over the subtree at id. A nil ctx is replaced by a fresh one.
func (w Walker) Walk(v Visitor, t *Tree, id ID, parents []ID, ctx Context) error {
	if ctx == nil {
		ctx = Context{}
	}
	maxDepth := w.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return w.walk(v, t, id, slices.Clip(parents), ctx, 0, maxDepth)
}

func (w Walker) walk(v Visitor, t *Tree, id ID, parents []ID, ctx Context, depth, maxDepth int) error {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	if n.kind == KindList {
		return w.walkChildren(v, t, n.Children(), parents, ctx, depth, maxDepth)
	}
	if depth >= maxDepth {
		return ErrRecursionLimit.WithContext("max_depth", maxDepth).WithContext("node", id)
	}

	if err := v.PreVisit(t, id, slices.Clone(parents), ctx); err != nil {
		return err
	}
	// The pre-visit may have freed the node.
	if n, ok = t.nodes[id]; ok && len(n.children) > 0 {
		inner := append(parents, id)
		if err := w.walkChildren(v, t, n.Children(), slices.Clip(inner), ctx, depth+1, maxDepth); err != nil {
			return err
		}
	}
	return v.PostVisit(t, id, slices.Clone(parents), ctx)
}

func (w Walker) walkChildren(v Visitor, t *Tree, children, parents []ID, ctx Context, depth, maxDepth int) error {
	for _, c := range children {
		if !t.Contains(c) {
			continue
		}
		if err := w.walk(v, t, c, parents, ctx, depth, maxDepth); err != nil {
			return err
		}
	}
	return nil
}
