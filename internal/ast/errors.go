package ast

import (
	"git.home.luguber.info/inful/astdoc/internal/foundation/errors"
)

var (
	// ErrChildNotFound reports a replace/remove of a node that is not a direct
	// child of the given parent. It always indicates an engine bug.
	ErrChildNotFound = errors.InternalError("node is not a direct child of parent").Build()

	// ErrNodeNotFound reports an ID that does not (or no longer) exist in the tree.
	ErrNodeNotFound = errors.InternalError("node does not exist in tree").Build()

	// ErrInvalidEdit reports a structurally impossible edit, such as attaching a
	// node that already has a parent or adding children to a literal.
	ErrInvalidEdit = errors.InternalError("invalid tree edit").Build()

	// ErrRecursionLimit reports traversal deeper than the configured bound.
	ErrRecursionLimit = errors.TransformError("recursion limit exceeded").Build()

	// ErrInvalidDocument reports structured data that cannot be turned into a tree.
	ErrInvalidDocument = errors.LoadError("invalid document structure").Build()
)
