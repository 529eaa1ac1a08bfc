package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/localplanner/logging"
)

// settleTime is how long the file must stay unchanged before it is reread. Editors often write a
// file in several steps.
const settleTime = 100 * time.Millisecond

// A Watcher rereads a configuration file whenever it changes and hands every valid result to a
// callback. The first configuration it loads is kept as the defaults that restore_defaults
// brings back.
type Watcher struct {
	path     string
	logger   logging.Logger
	onChange func(*Config)

	mu       sync.Mutex
	closed   bool
	defaults *Config
	current  *Config

	fsWatcher *fsnotify.Watcher
	debounced func(func())
	workers   *goutils.StoppableWorkers
}

// NewWatcher loads the file at path and starts watching it. onChange is called from the
// watcher's goroutine with each new configuration, never with the initial one.
func NewWatcher(path string, onChange func(*Config), logger logging.Logger) (*Watcher, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// watch the directory so files replaced by rename are still seen
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		return nil, multierr.Combine(err, fsWatcher.Close())
	}

	w := &Watcher{
		path:      filepath.Clean(path),
		logger:    logger,
		onChange:  onChange,
		defaults:  cfg,
		current:   cfg,
		fsWatcher: fsWatcher,
		debounced: debounce.New(settleTime),
	}
	w.workers = goutils.NewBackgroundStoppableWorkers(w.watch)
	return w, nil
}

// Current returns the configuration most recently loaded.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

func (w *Watcher) watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounced(w.reload)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorw("error watching config", "path", w.path, "error", err)
		}
	}
}

// reload rereads the file and reports the result. An invalid file keeps the current
// configuration.
func (w *Watcher) reload() {
	cfg, err := Read(w.path)
	if err != nil {
		w.logger.Errorw("ignoring invalid config", "path", w.path, "error", err)
		return
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	if cfg.RestoreDefaults {
		w.logger.Info("restoring default configuration")
		cfg = w.defaults
	}
	w.current = cfg
	w.mu.Unlock()

	w.onChange(cfg)
}

// Close stops watching the file.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	err := w.fsWatcher.Close()
	w.workers.Stop()
	return errors.Wrap(err, "failed to close config watcher")
}
