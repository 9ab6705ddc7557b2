package transform

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/astdoc/internal/ast"
	"git.home.luguber.info/inful/astdoc/internal/metrics"
)

func parseInto(tr *ast.Tree, src string) (ast.ID, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return ast.NoID, err
	}
	return tr.FromYAML(&doc)
}

func parseTree(t *testing.T, src string) *ast.Tree {
	t.Helper()
	tr := ast.NewTree()
	root, err := parseInto(tr, src)
	require.NoError(t, err)
	require.NoError(t, tr.SetRoot(root))
	return tr
}

func dump(t *testing.T, tr *ast.Tree) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, ast.Dump(&buf, tr, tr.Root()))
	return buf.String()
}

// memLoader serves documents from memory, keyed by absolute path.
type memLoader struct {
	base  string
	docs  map[string]string
	loads []string
}

func newMemLoader(docs map[string]string) *memLoader {
	l := &memLoader{base: "/docs", docs: map[string]string{}}
	for p, src := range docs {
		l.docs[filepath.Join(l.base, p)] = src
	}
	return l
}

func (l *memLoader) BaseDir() string { return l.base }

func (l *memLoader) LoadSubtree(t *ast.Tree, path string) (ast.ID, error) {
	l.loads = append(l.loads, path)
	src, ok := l.docs[path]
	if !ok {
		return ast.NoID, fmt.Errorf("open %s: no such file", path)
	}
	return parseInto(t, src)
}

func envMap(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

// nodesOfType lists the nodes of a type in document order.
func nodesOfType(t *testing.T, tr *ast.Tree, nodeType string) []ast.ID {
	t.Helper()
	var out []ast.ID
	v := ast.VisitorFuncs{Pre: func(tr *ast.Tree, id ast.ID, _ []ast.ID, _ ast.Context) error {
		if tr.Type(id) == nodeType {
			out = append(out, id)
		}
		return nil
	}}
	require.NoError(t, ast.Walk(v, tr, tr.Root(), nil, nil))
	return out
}

// texts lists every string literal in document order.
func texts(t *testing.T, tr *ast.Tree) []string {
	t.Helper()
	var out []string
	v := ast.VisitorFuncs{Pre: func(tr *ast.Tree, id ast.ID, _ []ast.ID, _ ast.Context) error {
		if s, ok := tr.Value(id).(string); ok && tr.Kind(id) == ast.KindLiteral {
			out = append(out, s)
		}
		return nil
	}}
	require.NoError(t, ast.Walk(v, tr, tr.Root(), nil, nil))
	return out
}

func headingLevels(t *testing.T, tr *ast.Tree) []int {
	t.Helper()
	var out []int
	for _, id := range nodesOfType(t, tr, DefaultHeadingType) {
		lv, ok := tr.HeadingLevel(id)
		require.True(t, ok, "heading %d has no level", id)
		out = append(out, lv)
	}
	return out
}

type testRecorder struct {
	mu      sync.Mutex
	hooks   map[string]int
	results map[string]map[metrics.ResultLabel]int
	rescans map[string]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		hooks:   map[string]int{},
		results: map[string]map[metrics.ResultLabel]int{},
		rescans: map[string]int{},
	}
}

func (r *testRecorder) ObserveHookDuration(transform, hook string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[transform+"/"+hook]++
}

func (r *testRecorder) IncTransformResult(transform string, result metrics.ResultLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.results[transform]
	if !ok {
		m = map[metrics.ResultLabel]int{}
		r.results[transform] = m
	}
	m[result]++
}

func (r *testRecorder) IncRescan(scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rescans[scope]++
}

func (r *testRecorder) ObserveStageDuration(string, time.Duration) {}
func (r *testRecorder) ObserveRunDuration(time.Duration)         {}
func (r *testRecorder) IncRunOutcome(string)                     {}
