package transform

import (
	"log/slog"

	"git.home.luguber.info/inful/astdoc/internal/ast"
)

// Built-in transform names as they appear in documents.
const (
	NameEnvVar               = "env_var"
	NameIncludeAST           = "include_ast"
	NameComputeHeadingLevels = "compute_heading_levels"
	NamePruneHeadingLevels   = "prune_heading_levels"
)

// Result is what every hook returns: the node dispatch continues with and
// whether that node must be processed again from the top. A zero Node means
// the hook consumed its node entirely (dissolved or removed it).
type Result struct {
	Rescan bool
	Node   ast.ID
}

// Continue keeps processing node.
func Continue(node ast.ID) Result { return Result{Node: node} }

// Rescan asks for node to be processed again.
func Rescan(node ast.ID) Result { return Result{Rescan: true, Node: node} }

// Transform is a set of hooks run by the Engine on one node. parent is NoID
// for the node a dispatch started on.
type Transform interface {
	PreExecute(c *Context, node, parent ast.ID) (Result, error)
	Execute(c *Context, node, parent ast.ID) (Result, error)
	PostExecute(c *Context, node, parent ast.ID) (Result, error)
}

// BaseTransform leaves the node untouched in every hook. Embed it to
// implement only the hooks a transform needs.
type BaseTransform struct{}

func (BaseTransform) PreExecute(_ *Context, node, _ ast.ID) (Result, error)  { return Continue(node), nil }
func (BaseTransform) Execute(_ *Context, node, _ ast.ID) (Result, error)     { return Continue(node), nil }
func (BaseTransform) PostExecute(_ *Context, node, _ ast.ID) (Result, error) { return Continue(node), nil }

// Context is the per-run state handed to hooks.
type Context struct {
	Tree *ast.Tree

	engine *Engine
	depth  int
}

// Engine returns the engine running the dispatch, for sub-dispatches.
func (c *Context) Engine() *Engine { return c.engine }

// Logger returns the engine logger.
func (c *Context) Logger() *slog.Logger { return c.engine.logger }

// LookupEnv reads a variable through the engine's environment.
func (c *Context) LookupEnv(name string) (string, bool) { return c.engine.lookupEnv(name) }

// Loader returns the inclusion loader, or nil when none is configured.
func (c *Context) Loader() Loader { return c.engine.loader }

// Walker returns a walker bounded by the engine depth limit.
func (c *Context) Walker() ast.Walker { return ast.Walker{MaxDepth: c.engine.limits.MaxDepth} }

// Limits returns the engine limits.
func (c *Context) Limits() Limits { return c.engine.limits }

// dissolve splices node's children into its parent. At the top of the tree
// the promoted node is returned so dispatch continues with it.
func dissolve(c *Context, node ast.ID) (Result, error) {
	atRoot := c.Tree.Root() == node
	if _, err := c.Tree.Dissolve(node); err != nil {
		return Result{}, err
	}
	if atRoot {
		return Continue(c.Tree.Root()), nil
	}
	return Result{}, nil
}
