package transform

import (
	"path/filepath"

	"git.home.luguber.info/inful/astdoc/internal/ast"
	"git.home.luguber.info/inful/astdoc/internal/logfields"
)

// FieldPath names the document loaded by include_ast.
const FieldPath = "path"

// IncludeAST replaces its marker with the tree of another document and asks
// for a rescan so the included markers are processed too.
type IncludeAST struct{ BaseTransform }

func (IncludeAST) Execute(c *Context, node, _ ast.ID) (Result, error) {
	path, ok := c.Tree.StringField(node, FieldPath)
	if !ok || path == "" {
		return Result{}, ErrInvalidTransform.
			WithContext("transform", NameIncludeAST).
			WithContext("reason", "missing path field")
	}
	loader := c.Loader()
	if loader == nil {
		return Result{}, ErrInclusionLoad.WithContext("path", path).WithContext("reason", "no loader configured")
	}

	resolved := ResolveIncludePath(c.Tree, node, path, loader.BaseDir())
	depth := 1
	if v, _, ok := c.Tree.NearestAnnotation(node, ast.AnnotationIncludeDepth); ok {
		if d, isInt := v.(int); isInt {
			depth = d + 1
		}
	}
	if limit := c.Limits().MaxIncludeDepth; depth > limit {
		return Result{}, ErrRecursionLimit.
			WithContext("max_include_depth", limit).
			WithContext("path", resolved)
	}

	sub, err := loader.LoadSubtree(c.Tree, resolved)
	if err != nil {
		return Result{}, ErrInclusionLoad.WithCause(err).WithContext("path", resolved)
	}
	if err := c.Tree.SetAnnotation(sub, ast.AnnotationSource, resolved); err != nil {
		return Result{}, err
	}
	if err := c.Tree.SetAnnotation(sub, ast.AnnotationIncludeDepth, depth); err != nil {
		return Result{}, err
	}
	if err := c.Tree.Replace(node, sub); err != nil {
		return Result{}, err
	}

	c.Logger().Debug("Included document", logfields.Path(resolved), "include_depth", depth, logfields.NodeID(uint32(sub)))
	return Rescan(sub), nil
}

// ResolveIncludePath makes path absolute relative to the directory of the
// closest enclosing document, falling back to baseDir.
func ResolveIncludePath(t *ast.Tree, node ast.ID, path, baseDir string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	dir := baseDir
	if src, _, ok := t.NearestAnnotation(node, ast.AnnotationSource); ok {
		if s, isStr := src.(string); isStr && s != "" {
			dir = filepath.Dir(s)
		}
	}
	return filepath.Join(dir, path)
}
