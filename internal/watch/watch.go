// Package watch reruns a pipeline when one of its input files changes.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/astdoc/internal/foundation/errors"
	"git.home.luguber.info/inful/astdoc/internal/logfields"
)

// DefaultDebounce collapses bursts of file events into one rerun.
const DefaultDebounce = 300 * time.Millisecond

// RunFunc performs one run and returns the files it read.
type RunFunc func(ctx context.Context) ([]string, error)

// Watcher monitors the files of the last run and triggers reruns.
type Watcher struct {
	run      RunFunc
	logger   *slog.Logger
	debounce time.Duration
	static   []string

	fsw   *fsnotify.Watcher
	files map[string]struct{}
	dirs  map[string]struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a rerun.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithFiles adds files that are watched regardless of what a run reads,
// such as the configuration and data files.
func WithFiles(paths ...string) Option {
	return func(w *Watcher) { w.static = append(w.static, paths...) }
}

// New creates a watcher around run.
func New(run RunFunc, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}
	w := &Watcher{
		run:      run,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
		fsw:      fsw,
		files:    map[string]struct{}{},
		dirs:     map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run performs an initial run, then reruns after changes until ctx is done.
// Failed runs are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	w.rerun(ctx)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Change detected", logfields.Path(event.Name), "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", logfields.Error(err))
		case <-fire:
			fire = nil
			w.rerun(ctx)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if _, ok := w.files[filepath.Clean(event.Name)]; !ok {
		return false
	}
	if event.Has(fsnotify.Remove) {
		w.logger.Warn("Watched file removed", logfields.Path(event.Name))
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) rerun(ctx context.Context) {
	files, err := w.run(ctx)
	if err != nil {
		w.logger.Warn("Run failed, waiting for changes", logfields.Error(err))
	}
	for _, f := range append(files, w.static...) {
		w.track(f)
	}
}

// track watches the directory of path, which survives editors that replace
// files by rename.
func (w *Watcher) track(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	w.files[abs] = struct{}{}
	dir := filepath.Dir(abs)
	if _, ok := w.dirs[dir]; ok {
		return
	}
	if err := w.fsw.Add(dir); err != nil {
		w.logger.Warn("Cannot watch directory", logfields.Path(dir), logfields.Error(err))
		return
	}
	w.dirs[dir] = struct{}{}
	w.logger.Debug("Watching directory", logfields.Path(dir))
}
