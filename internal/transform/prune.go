package transform

import (
	"git.home.luguber.info/inful/astdoc/internal/ast"
)

// FieldMaxLevel names the deepest heading level kept by prune_heading_levels,
// relative to the heading level the marker sits at.
const FieldMaxLevel = "max_level"

const (
	ctxCurrentLevel = "current_level"
	ctxPruning      = "pruning"
)

type pruneScope struct {
	marker   ast.ID
	baseline int
	maxLevel int
}

// HeadingLevelPruner removes every heading whose level exceeds the threshold
// of its pruning scope, together with its whole subtree. A scope starts at
// each prune_heading_levels marker; its threshold is the marker's max_level
// plus the heading level in effect at the marker.
//
// A pruner holds per-walk state; use a fresh one for every walk.
type HeadingLevelPruner struct {
	// MaxLevel applies when the walk does not start at a marker.
	MaxLevel int

	scopes    []pruneScope
	ambient   []int
	pruneRoot ast.ID
}

func (p *HeadingLevelPruner) threshold() int {
	if len(p.scopes) == 0 {
		return p.MaxLevel
	}
	s := p.scopes[len(p.scopes)-1]
	return s.maxLevel + s.baseline
}

func (p *HeadingLevelPruner) PreVisit(t *ast.Tree, id ast.ID, parents []ast.ID, ctx ast.Context) error {
	current := ctx.Int(ctxCurrentLevel)
	p.ambient = append(p.ambient, current)

	if lv, ok := t.HeadingLevel(id); ok {
		current = lv
		ctx.Set(ctxCurrentLevel, current)
	}
	if isPruneMarker(t, id) {
		maxLevel, err := markerMaxLevel(t, id)
		if err != nil {
			return err
		}
		p.scopes = append(p.scopes, pruneScope{marker: id, baseline: current, maxLevel: maxLevel})
	}

	if !ctx.Flag(ctxPruning) && current > p.threshold() {
		if len(parents) == 0 {
			return ErrPruneRoot.
				WithContext("level", current).
				WithContext("threshold", p.threshold())
		}
		ctx.Set(ctxPruning, true)
		p.pruneRoot = id
	}
	return nil
}

func (p *HeadingLevelPruner) PostVisit(t *ast.Tree, id ast.ID, _ []ast.ID, ctx ast.Context) error {
	ambient := p.ambient[len(p.ambient)-1]
	p.ambient = p.ambient[:len(p.ambient)-1]
	ctx.Set(ctxCurrentLevel, ambient)

	if n := len(p.scopes); n > 0 && p.scopes[n-1].marker == id {
		p.scopes = p.scopes[:n-1]
	}

	if ctx.Flag(ctxPruning) && id == p.pruneRoot {
		// Descendants go with their subtree root.
		ctx.Set(ctxPruning, false)
		p.pruneRoot = ast.NoID
		return t.Remove(id)
	}
	return nil
}

func isPruneMarker(t *ast.Tree, id ast.ID) bool {
	return t.Kind(id) == ast.KindTransformation && t.TransformName(id) == NamePruneHeadingLevels
}

func markerMaxLevel(t *ast.Tree, id ast.ID) (int, error) {
	v, ok := t.IntField(id, FieldMaxLevel)
	if !ok {
		return 0, ErrInvalidTransform.
			WithContext("transform", NamePruneHeadingLevels).
			WithContext("reason", "max_level must be an integer")
	}
	return int(v), nil
}

// PruneHeadingLevels prunes the headings below its marker that are deeper
// than max_level, then dissolves the marker.
type PruneHeadingLevels struct{ BaseTransform }

func (PruneHeadingLevels) Execute(c *Context, node, _ ast.ID) (Result, error) {
	ctx := ast.Context{ctxCurrentLevel: AmbientLevel(c.Tree, node)}
	if err := c.Walker().Walk(&HeadingLevelPruner{}, c.Tree, node, nil, ctx); err != nil {
		return Result{}, err
	}
	return Continue(node), nil
}

func (PruneHeadingLevels) PostExecute(c *Context, node, _ ast.ID) (Result, error) {
	return dissolve(c, node)
}
