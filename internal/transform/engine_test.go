package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/astdoc/internal/ast"
	"git.home.luguber.info/inful/astdoc/internal/metrics"
)

const plainDoc = `
node_type: Document
title: Plain
children:
  - node_type: Head
    children:
      - Title
      - node_type: Para
        children: [one, two]
  - [a, b]
  - 42
`

func TestDispatchWithoutMarkersIsIdentity(t *testing.T) {
	tr := parseTree(t, plainDoc)
	before := dump(t, tr)
	root := tr.Root()

	eng := NewEngine(NewDefaultRegistry())
	res, err := eng.Dispatch(eng.NewContext(tr), root, ast.NoID)
	require.NoError(t, err)
	assert.False(t, res.Rescan)
	assert.Equal(t, root, res.Node)
	assert.Equal(t, before, dump(t, tr))
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		rescan bool
		parent ast.ID
		want   dispatchState
	}{
		{false, ast.NoID, stateContinue},
		{false, 7, stateContinue},
		{true, ast.NoID, stateRescanLocal},
		{true, 7, stateRescanBubble},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, transition(tt.rescan, tt.parent), "rescan=%v parent=%d", tt.rescan, tt.parent)
	}
}

func TestUnknownTransformFails(t *testing.T) {
	tr := parseTree(t, `
node_type: Document
children:
  - transform: shout
    body: x
`)
	err := NewEngine(NewDefaultRegistry()).Run(tr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTransform))
	assert.Contains(t, err.Error(), "transform=shout")
}

// countingTransform records hook calls and rescans a fixed number of times
// from Execute before consuming its marker.
type countingTransform struct {
	rescans int
	calls   []string
}

func (c *countingTransform) PreExecute(_ *Context, node, _ ast.ID) (Result, error) {
	c.calls = append(c.calls, "pre")
	return Continue(node), nil
}

func (c *countingTransform) Execute(_ *Context, node, _ ast.ID) (Result, error) {
	c.calls = append(c.calls, "exec")
	if c.rescans > 0 {
		c.rescans--
		return Rescan(node), nil
	}
	return Continue(node), nil
}

func (c *countingTransform) PostExecute(ctx *Context, node, _ ast.ID) (Result, error) {
	c.calls = append(c.calls, "post")
	return dissolve(ctx, node)
}

func TestRescanAtRootRestartsLocally(t *testing.T) {
	reg := NewRegistry()
	ct := &countingTransform{rescans: 2}
	require.NoError(t, reg.Register("count", ct))
	tr := parseTree(t, `
transform: count
children:
  - node_type: Document
`)
	rec := newTestRecorder()
	require.NoError(t, NewEngine(reg, WithRecorder(rec)).Run(tr))

	assert.Equal(t, []string{"pre", "exec", "pre", "exec", "pre", "exec", "post"}, ct.calls)
	assert.Equal(t, "Document", tr.Type(tr.Root()))
	assert.Equal(t, 2, rec.rescans[metrics.ScopeLocal])
	assert.Equal(t, 2, rec.results["count"][metrics.ResultRescan])
}

func TestRescanBelowRootBubblesToRoot(t *testing.T) {
	reg := NewRegistry()
	ct := &countingTransform{rescans: 1}
	require.NoError(t, reg.Register("count", ct))
	outer := &countingTransform{}
	require.NoError(t, reg.Register("outer", outer))
	tr := parseTree(t, `
transform: outer
children:
  - node_type: Document
    children:
      - transform: count
        children: [x]
`)
	rec := newTestRecorder()
	require.NoError(t, NewEngine(reg, WithRecorder(rec)).Run(tr))

	// The root reruns from its pre hook once the nested rescan reaches it.
	assert.Equal(t, []string{"pre", "exec", "pre", "exec", "post"}, outer.calls)
	assert.Equal(t, []string{"pre", "exec", "pre", "exec", "post"}, ct.calls)
	assert.Equal(t, 2, rec.rescans[metrics.ScopeBubble], "count -> Document -> root")
	assert.Equal(t, 1, rec.rescans[metrics.ScopeLocal])
	assert.Equal(t, []string{"x"}, texts(t, tr))
}

func TestMaxRescansBoundsLocalRestarts(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("count", &countingTransform{rescans: 100}))
	tr := parseTree(t, "transform: count\n")

	err := NewEngine(reg, WithLimits(Limits{MaxRescans: 5})).Run(tr)
	assert.True(t, errors.Is(err, ErrRecursionLimit))
}

func TestMaxRescansBoundsStalledChildRestarts(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("count", &countingTransform{rescans: 100}))
	tr := parseTree(t, `
node_type: Document
children:
  - transform: count
`)

	err := NewEngine(reg, WithLimits(Limits{MaxRescans: 5})).Run(tr)
	assert.True(t, errors.Is(err, ErrRecursionLimit))
}

func TestMaxDepthBoundsDispatch(t *testing.T) {
	tr := parseTree(t, `
node_type: A
children:
  - node_type: B
    children:
      - node_type: C
        children:
          - node_type: D
`)
	err := NewEngine(NewDefaultRegistry(), WithLimits(Limits{MaxDepth: 3})).Run(tr)
	assert.True(t, errors.Is(err, ErrRecursionLimit))
	assert.NoError(t, NewEngine(NewDefaultRegistry(), WithLimits(Limits{MaxDepth: 4})).Run(tr))
}

// leaveMarker never consumes its node.
type leaveMarker struct{ BaseTransform }

func TestRunRejectsUnconsumedMarkers(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("stay", leaveMarker{}))
	tr := parseTree(t, `
node_type: Document
children:
  - transform: stay
`)
	err := NewEngine(reg).Run(tr)
	assert.True(t, errors.Is(err, ErrUnconsumedMarker))
	assert.Len(t, Outstanding(tr), 1)
}

func TestRunRejectsMarkersInFields(t *testing.T) {
	tr := parseTree(t, `
node_type: Document
title:
  transform: env_var
  body: TITLE
children: [text]
`)
	err := NewEngine(NewDefaultRegistry(), WithLookupEnv(envMap(map[string]string{"TITLE": "x"}))).Run(tr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnconsumedMarker))
	assert.Contains(t, err.Error(), "transform=env_var")

	left := Outstanding(tr)
	require.Len(t, left, 1)
	title, ok := tr.Field(tr.Root(), "title")
	require.True(t, ok)
	assert.Equal(t, title, left[0])
}

func TestHookMetrics(t *testing.T) {
	tr := parseTree(t, `
node_type: Document
children:
  - transform: env_var
    body: GREETING
`)
	rec := newTestRecorder()
	eng := NewEngine(NewDefaultRegistry(), WithRecorder(rec), WithLookupEnv(envMap(map[string]string{"GREETING": "hi"})))
	require.NoError(t, eng.Run(tr))

	assert.Equal(t, 1, rec.hooks["env_var/pre_execute"])
	assert.Equal(t, 1, rec.hooks["env_var/execute"])
	// The post hook still runs, on the replacement.
	assert.Equal(t, 1, rec.hooks["env_var/post_execute"])
	assert.Equal(t, 3, rec.results[NameEnvVar][metrics.ResultApplied])
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("a", BaseTransform{}))
	err := r.Register("a", BaseTransform{})
	assert.True(t, errors.Is(err, ErrInvalidRegistration))
	assert.Contains(t, err.Error(), "already registered")
	assert.True(t, errors.Is(r.Register("", BaseTransform{}), ErrInvalidRegistration))
	assert.True(t, errors.Is(r.Register("b", nil), ErrInvalidRegistration))
	assert.Equal(t, []string{"a"}, r.Names())

	_, err = r.Lookup("missing")
	assert.True(t, errors.Is(err, ErrUnknownTransform))

	assert.Equal(t, []string{
		NameComputeHeadingLevels, NameEnvVar, NameIncludeAST, NamePruneHeadingLevels,
	}, NewDefaultRegistry().Names())
}
