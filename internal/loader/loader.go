// Package loader turns YAML document files into trees.
package loader

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/astdoc/internal/ast"
	"git.home.luguber.info/inful/astdoc/internal/foundation/errors"
	"git.home.luguber.info/inful/astdoc/internal/logfields"
	"git.home.luguber.info/inful/astdoc/internal/transform"
)

// ErrLoad reports a document that could not be read or converted.
var ErrLoad = errors.LoadError("failed to load document").Build()

// Loader reads documents from disk. It also serves as the inclusion boundary
// of the transform engine and remembers every file it read.
type Loader struct {
	baseDir string
	logger  *slog.Logger

	mu    sync.Mutex
	files []string
}

var _ transform.Loader = (*Loader)(nil)

// New creates a loader resolving relative paths against baseDir.
func New(baseDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	return &Loader{baseDir: baseDir, logger: logger}
}

// BaseDir returns the directory relative paths are resolved against.
func (l *Loader) BaseDir() string { return l.baseDir }

// Load reads the top-level document at path into a new tree whose root is a
// compute_heading_levels marker wrapping the document.
func (l *Loader) Load(path string) (*ast.Tree, error) {
	t := ast.NewTree()
	doc, err := l.LoadSubtree(t, l.resolve(path))
	if err != nil {
		return nil, err
	}
	if err := t.SetRoot(Wrap(t, doc)); err != nil {
		return nil, err
	}
	return t, nil
}

// Wrap puts doc under a fresh compute_heading_levels marker and returns it.
func Wrap(t *ast.Tree, doc ast.ID) ast.ID {
	root := t.NewTransformation(transform.NameComputeHeadingLevels)
	// A fresh marker always accepts a detached child.
	_ = t.AppendChild(root, doc)
	return root
}

// LoadSubtree parses the document at path into a detached subtree of t. The
// subtree root is annotated with the absolute source path.
func (l *Loader) LoadSubtree(t *ast.Tree, path string) (ast.ID, error) {
	path = l.resolve(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return ast.NoID, ErrLoad.WithCause(err).WithContext("path", path)
	}
	id, err := Parse(t, data)
	if err != nil {
		return ast.NoID, ErrLoad.WithCause(err).WithContext("path", path)
	}
	if err := t.SetAnnotation(id, ast.AnnotationSource, path); err != nil {
		return ast.NoID, err
	}

	l.mu.Lock()
	if !slices.Contains(l.files, path) {
		l.files = append(l.files, path)
	}
	l.mu.Unlock()

	l.logger.Debug("Loaded document", logfields.Path(path), logfields.NodeType(t.Type(id)))
	return id, nil
}

// Parse decodes one YAML document into a detached subtree of t.
func Parse(t *ast.Tree, data []byte) (ast.ID, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return ast.NoID, ast.ErrInvalidDocument.WithContext("reason", "empty document")
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ast.NoID, ast.ErrInvalidDocument.WithCause(err)
	}
	return t.FromYAML(&doc)
}

// Files returns every file read so far, in load order.
func (l *Loader) Files() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.files)
}

func (l *Loader) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(l.baseDir, path)
}
