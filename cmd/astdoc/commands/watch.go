package commands

import (
	"context"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/astdoc/internal/pipeline"
	"git.home.luguber.info/inful/astdoc/internal/store"
	"git.home.luguber.info/inful/astdoc/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	RunFlags `embed:""`
	Debounce time.Duration `help:"Quiet period before a rerun" default:"300ms"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, w.RunFlags)
	if err != nil {
		return err
	}
	p := pipeline.New(cfg, pipeline.WithLogger(g.logger()), pipeline.WithStdout(g.stdout()))

	run := func(ctx context.Context) ([]string, error) {
		res, err := p.Run(ctx, w.Input)
		files := []string{w.Input}
		if res != nil {
			files = append(files, res.Files...)
		}
		return files, err
	}

	static := []string{
		filepath.Join(cfg.DataDir, store.BooksFile),
		filepath.Join(cfg.DataDir, store.AuthorsFile),
	}
	static = append(static, cfg.EnvFiles...)

	watcher, err := watch.New(run,
		watch.WithDebounce(w.Debounce),
		watch.WithLogger(g.logger()),
		watch.WithFiles(static...),
	)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	g.logger().Info("Watching for changes", "input", w.Input)
	return watcher.Run(ctx)
}
