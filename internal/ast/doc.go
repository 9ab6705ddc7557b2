// Package ast holds the generic document tree that transforms rewrite.
//
// A Tree is an arena of nodes addressed by stable IDs. Every node is one of four
// kinds (dict, list, literal, transformation); structural edits replace or remove
// nodes by identity and keep the non-owning parent links consistent. Nodes removed
// from the tree are freed from the arena immediately.
//
// Walk performs depth-first traversal with pre/post visitor hooks and a shared,
// per-walk Context bag. List nodes are transparent to visitors: they receive no
// hook calls and are not recorded in the parents chain; their elements are
// visited as if they belonged to the List's owner.
package ast
