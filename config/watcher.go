package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.hmdkit.dev/xrcore/logging"
)

// DefaultSettle is how long a config file has to stay untouched before a Watcher rereads it.
const DefaultSettle = 100 * time.Millisecond

// A Watcher rereads a config file whenever it changes on disk.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	settle  func(f func())
	pending chan struct{}
	logger  logging.Logger
}

// NewWatcher starts watching filePath. The directory is watched rather than the file so that editors which
// replace the file on save are still noticed. Writes closer together than settle are read once.
func NewWatcher(filePath string, settle time.Duration, logger logging.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return nil, multierr.Combine(errors.Wrapf(err, "cannot watch %q", filePath), watcher.Close())
	}
	return &Watcher{
		path:    abs,
		watcher: watcher,
		settle:  debounce.New(settle),
		pending: make(chan struct{}, 1),
		logger:  logger,
	}, nil
}

// Run calls onChange with the reread config, or the error reading it, each time the file settles after a
// change. onChange runs on the calling goroutine. Run returns once ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func(*Config, error)) error {
	defer w.settle(func() {})
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debugw("config changed", "path", w.path, "op", event.Op.String())
			w.settle(w.notify)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("config watcher error", "path", w.path, "error", err)
		case <-w.pending:
			cfg, err := Read(w.path, w.logger)
			onChange(cfg, err)
		}
	}
}

func (w *Watcher) notify() {
	select {
	case w.pending <- struct{}{}:
	default:
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
