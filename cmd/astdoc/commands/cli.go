// Package commands implements the astdoc subcommands.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/astdoc/internal/config"
)

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
}

func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"astdoc.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Render RenderCmd `cmd:"" help:"Transform a document and render it"`
	Dump   DumpCmd   `cmd:"" help:"Transform a document and print the resulting tree as YAML"`
	Watch  WatchCmd  `cmd:"" help:"Render a document again whenever it or its inputs change"`
	Init   InitCmd   `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// RunFlags override configuration values for a single invocation.
type RunFlags struct {
	Input       string `arg:"" help:"Document to process" type:"existingfile"`
	Renderer    string `short:"r" help:"Renderer (html, text)"`
	Output      string `short:"o" help:"Output file (default stdout)"`
	DataDir     string `short:"d" name:"data-dir" help:"Directory holding books.yaml and authors.yaml"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this textfile after each run"`
}

func (f RunFlags) apply(cfg *config.Config) {
	if f.Renderer != "" {
		cfg.Renderer = f.Renderer
	}
	if f.Output != "" {
		cfg.Output = f.Output
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.MetricsFile != "" {
		cfg.MetricsFile = f.MetricsFile
	}
}

// loadConfig reads the configuration file, applies flag overrides and
// validates the result.
func loadConfig(root *CLI, flags RunFlags) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	flags.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
