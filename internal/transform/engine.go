package transform

import (
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/astdoc/internal/ast"
	"git.home.luguber.info/inful/astdoc/internal/logfields"
	"git.home.luguber.info/inful/astdoc/internal/metrics"
)

// Limits bound the resources one run may use.
type Limits struct {
	// MaxDepth bounds dispatch and walker recursion.
	MaxDepth int
	// MaxRescans bounds the local restarts of a single dispatch call.
	MaxRescans int
	// MaxIncludeDepth bounds nested inclusions.
	MaxIncludeDepth int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{MaxDepth: ast.DefaultMaxDepth, MaxRescans: 1000, MaxIncludeDepth: 32}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxDepth <= 0 {
		l.MaxDepth = d.MaxDepth
	}
	if l.MaxRescans <= 0 {
		l.MaxRescans = d.MaxRescans
	}
	if l.MaxIncludeDepth <= 0 {
		l.MaxIncludeDepth = d.MaxIncludeDepth
	}
	return l
}

// Loader parses an external document into a detached subtree of t.
type Loader interface {
	LoadSubtree(t *ast.Tree, path string) (ast.ID, error)
	// BaseDir resolves relative paths of nodes with no known source file.
	BaseDir() string
}

// Engine runs the dispatch loop.
type Engine struct {
	registry  *Registry
	loader    Loader
	lookupEnv func(string) (string, bool)
	logger    *slog.Logger
	recorder  metrics.Recorder
	limits    Limits
}

// Option configures an Engine.
type Option func(*Engine)

// WithLoader sets the loader used by include_ast.
func WithLoader(l Loader) Option { return func(e *Engine) { e.loader = l } }

// WithLookupEnv replaces os.LookupEnv for env_var.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(e *Engine) {
		if fn != nil {
			e.lookupEnv = fn
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithLimits overrides the resource limits; zero fields keep their defaults.
func WithLimits(l Limits) Option { return func(e *Engine) { e.limits = l.withDefaults() } }

// NewEngine creates an engine dispatching through reg.
func NewEngine(reg *Registry, opts ...Option) *Engine {
	e := &Engine{
		registry:  reg,
		lookupEnv: os.LookupEnv,
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
		limits:    DefaultLimits(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run dispatches the whole tree. On success no transformation marker is left
// in the tree. A failed run leaves the tree partially transformed.
func (e *Engine) Run(t *ast.Tree) error {
	if t.Root() == ast.NoID {
		return nil
	}
	c := e.NewContext(t)
	if _, err := e.Dispatch(c, t.Root(), ast.NoID); err != nil {
		return err
	}
	if left := Outstanding(t); len(left) > 0 {
		return ErrUnconsumedMarker.
			WithContext("transform", t.TransformName(left[0])).
			WithContext("count", len(left))
	}
	return nil
}

// NewContext creates the hook context for dispatching over t.
func (e *Engine) NewContext(t *ast.Tree) *Context {
	return &Context{Tree: t, engine: e}
}

// Outstanding lists the transformation markers still reachable from the root,
// in document order. Field values are searched too: a marker parked in a field
// is never dispatched, so it can only be reported.
func Outstanding(t *ast.Tree) []ast.ID {
	if t.Root() == ast.NoID {
		return nil
	}
	return markersUnder(t, t.Root())
}

func markersUnder(t *ast.Tree, id ast.ID) []ast.ID {
	var out []ast.ID
	stack := []ast.ID{id}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.Kind(id) == ast.KindTransformation {
			out = append(out, id)
		}
		children := t.Children(id)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
		fields := t.Fields(id)
		for i := len(fields) - 1; i >= 0; i-- {
			stack = append(stack, fields[i].Value)
		}
	}
	return out
}

type dispatchState int

const (
	stateContinue dispatchState = iota
	stateRescanLocal
	stateRescanBubble
)

func (s dispatchState) String() string {
	switch s {
	case stateRescanLocal:
		return metrics.ScopeLocal
	case stateRescanBubble:
		return metrics.ScopeBubble
	default:
		return "continue"
	}
}

// transition decides what a rescan signal means at this level: a dispatch
// without a parent restarts itself, any other hands the signal to its caller.
func transition(rescan bool, parent ast.ID) dispatchState {
	switch {
	case !rescan:
		return stateContinue
	case parent == ast.NoID:
		return stateRescanLocal
	default:
		return stateRescanBubble
	}
}

type hookFunc func(c *Context, node, parent ast.ID) (Result, error)

const (
	hookPre  = "pre_execute"
	hookExec = "execute"
	hookPost = "post_execute"
)

// Dispatch applies the transform of node and recurses into its children.
// Call it with parent NoID to run a standalone dispatch that absorbs its own
// rescans; the returned Result then never asks for a rescan.
func (e *Engine) Dispatch(c *Context, node, parent ast.ID) (Result, error) {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > e.limits.MaxDepth {
		return Result{}, ErrRecursionLimit.WithContext("max_depth", e.limits.MaxDepth).WithContext("node", node)
	}

	// restarts counts reruns requested by this node's own hooks. Reruns caused
	// by a child are only counted while they make no progress, so a flat list
	// of includes is bounded by its size rather than by MaxRescans.
	restarts, stalled, pending := 0, 0, -1
restart:
	for {
		if restarts > e.limits.MaxRescans || stalled > e.limits.MaxRescans {
			return Result{}, ErrRecursionLimit.WithContext("max_rescans", e.limits.MaxRescans).WithContext("node", node)
		}

		name, tr, err := e.resolve(c.Tree, node)
		if err != nil {
			return Result{}, err
		}

		for _, h := range []struct {
			name string
			fn   hookFunc
		}{{hookPre, tr.PreExecute}, {hookExec, tr.Execute}} {
			res, err := e.invoke(c, name, h.name, h.fn, node, parent)
			if err != nil {
				return Result{}, err
			}
			node = res.Node
			switch e.settle(res.Rescan, parent) {
			case stateRescanLocal:
				if node == ast.NoID {
					return Result{}, nil
				}
				restarts++
				continue restart
			case stateRescanBubble:
				return Rescan(node), nil
			}
			if node == ast.NoID {
				return Result{}, nil
			}
		}

		for _, child := range c.Tree.Children(node) {
			if c.Tree.Parent(child) != node {
				// Consumed or moved by an earlier sibling.
				continue
			}
			res, err := e.Dispatch(c, child, node)
			if err != nil {
				return Result{}, err
			}
			switch e.settle(res.Rescan, parent) {
			case stateRescanLocal:
				if left := len(markersUnder(c.Tree, node)); pending < 0 || left < pending {
					pending, stalled = left, 0
				} else {
					stalled++
				}
				continue restart
			case stateRescanBubble:
				return Rescan(node), nil
			}
		}

		res, err := e.invoke(c, name, hookPost, tr.PostExecute, node, parent)
		if err != nil {
			return Result{}, err
		}
		node = res.Node
		switch e.settle(res.Rescan, parent) {
		case stateRescanLocal:
			if node == ast.NoID {
				return Result{}, nil
			}
			restarts++
			continue restart
		case stateRescanBubble:
			return Rescan(node), nil
		}
		if restarts > 0 || pending >= 0 {
			e.logger.Debug("Dispatch settled", logfields.NodeID(uint32(node)), logfields.Rescans(restarts))
		}
		return Continue(node), nil
	}
}

func (e *Engine) settle(rescan bool, parent ast.ID) dispatchState {
	s := transition(rescan, parent)
	if s != stateContinue {
		e.recorder.IncRescan(s.String())
	}
	return s
}

// resolve picks the transform for node; plain nodes get BaseTransform.
func (e *Engine) resolve(t *ast.Tree, node ast.ID) (string, Transform, error) {
	if t.Kind(node) != ast.KindTransformation {
		return "", BaseTransform{}, nil
	}
	name := t.TransformName(node)
	tr, err := e.registry.Lookup(name)
	if err != nil {
		return name, nil, err
	}
	return name, tr, nil
}

func (e *Engine) invoke(c *Context, name, hook string, fn hookFunc, node, parent ast.ID) (Result, error) {
	if name == "" {
		return fn(c, node, parent)
	}

	start := time.Now()
	res, err := fn(c, node, parent)
	d := time.Since(start)
	e.recorder.ObserveHookDuration(name, hook, d)

	switch {
	case err != nil:
		e.recorder.IncTransformResult(name, metrics.ResultFailed)
		e.logger.Debug("Transform hook failed",
			logfields.Transform(name), logfields.Hook(hook), logfields.NodeID(uint32(node)), logfields.Error(err))
		return Result{}, err
	case res.Rescan:
		e.recorder.IncTransformResult(name, metrics.ResultRescan)
	default:
		e.recorder.IncTransformResult(name, metrics.ResultApplied)
	}
	e.logger.Debug("Transform hook",
		logfields.Transform(name), logfields.Hook(hook), logfields.NodeID(uint32(node)),
		slog.Bool("rescan", res.Rescan), logfields.Duration(d))
	return res, nil
}
