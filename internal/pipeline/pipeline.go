// Package pipeline runs one document through gather, load, transform, dump
// and render.
package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/astdoc/internal/config"
	"git.home.luguber.info/inful/astdoc/internal/foundation/errors"
	"git.home.luguber.info/inful/astdoc/internal/logfields"
	"git.home.luguber.info/inful/astdoc/internal/metrics"
	"git.home.luguber.info/inful/astdoc/internal/store"
	"git.home.luguber.info/inful/astdoc/internal/transform"
)

// Pipeline executes runs for one configuration. Run may be called
// repeatedly; each run starts from a fresh store and tree.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder metrics.Recorder
	registry *transform.Registry
	stdout   io.Writer
	stages   []StageName
	metrics  *prom.Registry
}

// Option configures pipeline behavior.
type Option func(*Pipeline)

// WithLogger sets the logger passed to every stage.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecorder overrides the metrics recorder. Without it a Prometheus
// recorder is used when a metrics file is configured.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithStdout sets where output goes when no output file is configured.
func WithStdout(w io.Writer) Option {
	return func(p *Pipeline) { p.stdout = w }
}

// WithRegistry replaces the default transform registry.
func WithRegistry(r *transform.Registry) Option {
	return func(p *Pipeline) { p.registry = r }
}

// WithStages restricts a run to the given stages, in the given order.
func WithStages(stages ...StageName) Option {
	return func(p *Pipeline) { p.stages = stages }
}

// New creates a pipeline for cfg.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		logger: slog.Default(),
		stdout: os.Stdout,
		stages: Stages,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry == nil {
		p.registry = transform.NewDefaultRegistry(cfg.HeadingTypes...)
	}
	if p.recorder == nil {
		if cfg.MetricsFile != "" {
			p.metrics = prom.NewRegistry()
			p.recorder = metrics.NewPrometheusRecorder(p.metrics)
		} else {
			p.recorder = metrics.NoopRecorder{}
		}
	}
	return p
}

// StageExecution records the outcome of one stage.
type StageExecution struct {
	Stage    StageName
	Duration time.Duration
	Err      error
}

// Result describes a finished run.
type Result struct {
	RunID  string
	Stages []StageExecution
	// Files lists every document read, the input first. It is filled even when
	// a later stage fails so watchers can follow inclusions.
	Files []string
}

// IsSuccess reports whether every executed stage completed.
func (r *Result) IsSuccess() bool {
	for _, s := range r.Stages {
		if s.Err != nil {
			return false
		}
	}
	return true
}

// Run processes the document at input. Output is written only after every
// stage succeeded; a failed run produces none.
func (p *Pipeline) Run(ctx context.Context, input string) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	logger := p.logger.With(logfields.RunID(res.RunID))
	start := time.Now()

	err := p.run(ctx, logger, input, res)

	d := time.Since(start)
	p.recorder.ObserveRunDuration(d)
	if err != nil {
		p.recorder.IncRunOutcome(metrics.OutcomeFailed)
		logger.Error("Run failed", logfields.Path(input), logfields.Duration(d), logfields.Error(err))
	} else {
		p.recorder.IncRunOutcome(metrics.OutcomeSuccess)
		logger.Info("Run completed", logfields.Path(input), logfields.Duration(d))
	}

	if p.metrics != nil {
		if merr := metrics.WriteTextfile(p.cfg.MetricsFile, p.metrics); merr != nil {
			logger.Warn("Failed to write metrics file", logfields.Path(p.cfg.MetricsFile), logfields.Error(merr))
		}
	}
	return res, err
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, input string, res *Result) error {
	abs, err := filepath.Abs(input)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve input path").
			WithContext("path", input).
			Build()
	}

	db, err := store.Open(":memory:")
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Warn("Failed to close store", logfields.Error(cerr))
		}
	}()

	state := &runState{input: abs, store: db, logger: logger}

	for _, name := range p.stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		stageStart := time.Now()
		run := p.stage(name)
		if run == nil {
			return errors.InternalError("unknown pipeline stage").WithContext("stage", name).Build()
		}
		err := run(ctx, p, state)
		d := time.Since(stageStart)
		res.Stages = append(res.Stages, StageExecution{Stage: name, Duration: d, Err: err})
		p.recorder.ObserveStageDuration(string(name), d)
		if state.loader != nil {
			res.Files = state.loader.Files()
		}
		if err != nil {
			logger.Debug("Stage failed", logfields.Stage(string(name)), logfields.Error(err))
			return err
		}
		logger.Debug("Stage completed", logfields.Stage(string(name)), logfields.Duration(d))
	}

	return p.write(state)
}

func (p *Pipeline) write(s *runState) error {
	if !s.rendered {
		return nil
	}
	if p.cfg.Output == "" {
		if _, err := p.stdout.Write(s.output.Bytes()); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output").Build()
		}
		return nil
	}
	if err := os.WriteFile(p.cfg.Output, s.output.Bytes(), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output").
			WithContext("path", p.cfg.Output).
			Build()
	}
	return nil
}
