package commands

import (
	"git.home.luguber.info/inful/astdoc/internal/pipeline"
)

// DumpCmd implements the 'dump' command. No data is gathered and nothing is
// rendered.
type DumpCmd struct {
	Input  string `arg:"" help:"Document to process" type:"existingfile"`
	Output string `short:"o" help:"Output file (default stdout)"`
}

func (d *DumpCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, RunFlags{})
	if err != nil {
		return err
	}
	cfg.DumpAST = pipeline.DumpToStdout
	if d.Output != "" {
		cfg.DumpAST = d.Output
	}

	ctx, cancel := signalContext()
	defer cancel()
	p := pipeline.New(cfg,
		pipeline.WithLogger(g.logger()),
		pipeline.WithStdout(g.stdout()),
		pipeline.WithStages(pipeline.StageEnv, pipeline.StageLoad, pipeline.StageTransform, pipeline.StageDump),
	)
	_, err = p.Run(ctx, d.Input)
	return err
}
