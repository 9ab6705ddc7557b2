package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/astdoc/internal/ast"
	"git.home.luguber.info/inful/astdoc/internal/foundation/errors"
	"git.home.luguber.info/inful/astdoc/internal/loader"
	"git.home.luguber.info/inful/astdoc/internal/logfields"
	"git.home.luguber.info/inful/astdoc/internal/render"
	"git.home.luguber.info/inful/astdoc/internal/store"
	"git.home.luguber.info/inful/astdoc/internal/transform"
)

// StageName identifies one step of a run.
type StageName string

const (
	StageEnv       StageName = "env"
	StageGather    StageName = "gather"
	StageLoad      StageName = "load"
	StageTransform StageName = "transform"
	StageDump      StageName = "dump"
	StageRender    StageName = "render"
)

// DumpToStdout as the dump path writes the tree to standard output.
const DumpToStdout = "-"

// Stages lists every stage in execution order.
var Stages = []StageName{StageEnv, StageGather, StageLoad, StageTransform, StageDump, StageRender}

// runState carries what one run produces between stages.
type runState struct {
	input    string
	logger   *slog.Logger
	store    *store.SQLiteStore
	loader   *loader.Loader
	tree     *ast.Tree
	output   bytes.Buffer
	rendered bool
}

type stageFunc func(ctx context.Context, p *Pipeline, s *runState) error

func (*Pipeline) stage(name StageName) stageFunc {
	switch name {
	case StageEnv:
		return envStage
	case StageGather:
		return gatherStage
	case StageLoad:
		return loadStage
	case StageTransform:
		return transformStage
	case StageDump:
		return dumpStage
	case StageRender:
		return renderStage
	default:
		return nil
	}
}

func envStage(_ context.Context, p *Pipeline, s *runState) error {
	return p.cfg.LoadEnvFiles(s.logger)
}

func gatherStage(ctx context.Context, p *Pipeline, s *runState) error {
	n, err := store.Gather(ctx, s.store, p.cfg.DataDir, s.logger)
	if err != nil {
		return err
	}
	s.logger.Debug("Records gathered", logfields.Path(p.cfg.DataDir), "records", n)
	return nil
}

func loadStage(_ context.Context, p *Pipeline, s *runState) error {
	s.loader = loader.New(filepath.Dir(s.input), s.logger)
	t, err := s.loader.Load(s.input)
	if err != nil {
		return err
	}
	s.tree = t
	return nil
}

func transformStage(_ context.Context, p *Pipeline, s *runState) error {
	eng := transform.NewEngine(p.registry,
		transform.WithLoader(s.loader),
		transform.WithLogger(s.logger),
		transform.WithRecorder(p.recorder),
		transform.WithLimits(p.cfg.TransformLimits()),
	)
	return eng.Run(s.tree)
}

func dumpStage(_ context.Context, p *Pipeline, s *runState) error {
	if p.cfg.DumpAST == "" {
		return nil
	}
	var buf bytes.Buffer
	if err := ast.Dump(&buf, s.tree, s.tree.Root()); err != nil {
		return err
	}
	if p.cfg.DumpAST == DumpToStdout {
		if _, err := p.stdout.Write(buf.Bytes()); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to write tree dump").Build()
		}
		return nil
	}
	if err := os.WriteFile(p.cfg.DumpAST, buf.Bytes(), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write tree dump").
			WithContext("path", p.cfg.DumpAST).
			Build()
	}
	s.logger.Info("Wrote tree dump", logfields.Path(p.cfg.DumpAST))
	return nil
}

func renderStage(ctx context.Context, p *Pipeline, s *runState) error {
	r, err := render.New(p.cfg.Renderer, s.logger)
	if err != nil {
		return err
	}
	if err := r.Render(ctx, &s.output, s.tree, s.store); err != nil {
		return err
	}
	s.rendered = true
	s.logger.Debug("Rendered document", logfields.Renderer(r.Name()), slog.Int("bytes", s.output.Len()))
	return nil
}
