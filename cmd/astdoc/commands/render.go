package commands

import (
	"git.home.luguber.info/inful/astdoc/internal/pipeline"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	RunFlags `embed:""`
	DumpAST string `name:"dump-ast" help:"Also write the transformed tree as YAML to this file"`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, r.RunFlags)
	if err != nil {
		return err
	}
	if r.DumpAST != "" {
		cfg.DumpAST = r.DumpAST
	}

	ctx, cancel := signalContext()
	defer cancel()
	_, err = pipeline.New(cfg, pipeline.WithLogger(g.logger()), pipeline.WithStdout(g.stdout())).Run(ctx, r.Input)
	return err
}
