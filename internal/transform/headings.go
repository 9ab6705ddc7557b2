package transform

import (
	"slices"

	"git.home.luguber.info/inful/astdoc/internal/ast"
)

const ctxHeadingDepth = "heading_depth"

// HeadingLevelAdjuster stamps every heading with its nesting depth among
// headings, ignoring any other node types between them.
type HeadingLevelAdjuster struct {
	HeadingTypes []string
}

func (a HeadingLevelAdjuster) isHeading(t *ast.Tree, id ast.ID) bool {
	return slices.Contains(a.HeadingTypes, t.Type(id))
}

func (a HeadingLevelAdjuster) PreVisit(t *ast.Tree, id ast.ID, _ []ast.ID, ctx ast.Context) error {
	if !a.isHeading(t, id) {
		return nil
	}
	return t.SetHeadingLevel(id, ctx.Add(ctxHeadingDepth, 1))
}

func (a HeadingLevelAdjuster) PostVisit(t *ast.Tree, id ast.ID, _ []ast.ID, ctx ast.Context) error {
	if a.isHeading(t, id) {
		ctx.Add(ctxHeadingDepth, -1)
	}
	return nil
}

// AmbientLevel is the heading level in effect at id: the level of its nearest
// ancestor heading, or 0.
func AmbientLevel(t *ast.Tree, id ast.ID) int {
	for _, p := range t.Ancestors(id) {
		if lv, ok := t.HeadingLevel(p); ok {
			return lv
		}
	}
	return 0
}

// ComputeHeadingLevels annotates the headings below its marker. The marker
// stays in place until its subtree is stable, so levels are recomputed after
// every inclusion, and is then dissolved.
type ComputeHeadingLevels struct {
	BaseTransform
	HeadingTypes []string
}

func (h ComputeHeadingLevels) Execute(c *Context, node, _ ast.ID) (Result, error) {
	types := h.HeadingTypes
	if len(types) == 0 {
		types = []string{DefaultHeadingType}
	}
	ctx := ast.Context{ctxHeadingDepth: AmbientLevel(c.Tree, node)}
	if err := c.Walker().Walk(HeadingLevelAdjuster{HeadingTypes: types}, c.Tree, node, nil, ctx); err != nil {
		return Result{}, err
	}
	return Continue(node), nil
}

func (ComputeHeadingLevels) PostExecute(c *Context, node, _ ast.ID) (Result, error) {
	return dissolve(c, node)
}
