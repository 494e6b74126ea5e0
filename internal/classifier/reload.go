package classifier

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/anprowh/LanguageCorrector/internal/layout"
	"github.com/anprowh/LanguageCorrector/internal/normalize"
)

type scorerBox struct {
	Scorer
}

// Reloadable delegates to a Scorer that can be replaced at runtime. Readers
// never block; a swap affects only calls that start after it.
type Reloadable struct {
	current atomic.Pointer[scorerBox]
}

// NewReloadable wraps s.
func NewReloadable(s Scorer) *Reloadable {
	r := &Reloadable{}
	r.Swap(s)
	return r
}

// Swap installs s for subsequent calls.
func (r *Reloadable) Swap(s Scorer) {
	r.current.Store(&scorerBox{Scorer: s})
}

// Current returns the active scorer.
func (r *Reloadable) Current() Scorer {
	return r.current.Load().Scorer
}

// Classify implements Classifier. One call sees one scorer for the batch.
func (r *Reloadable) Classify(words []normalize.Word) []layout.ID {
	return r.Current().Classify(words)
}

// Labels implements Scorer.
func (r *Reloadable) Labels() []layout.ID { return r.Current().Labels() }

// Scores implements Scorer.
func (r *Reloadable) Scores(w normalize.Word) []float64 { return r.Current().Scores(w) }

// LoadFunc builds a scorer from a model path.
type LoadFunc func(path string) (Scorer, error)

const reloadDebounce = 200 * time.Millisecond

// Watcher reloads a model artifact into a Reloadable when the file changes.
// A failed reload keeps the previous scorer.
type Watcher struct {
	path    string
	load    LoadFunc
	target  *Reloadable
	logger  *zap.Logger
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchModel starts watching path until ctx is done or Close is called.
func WatchModel(ctx context.Context, path string, target *Reloadable, load LoadFunc, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Editors and Model.Save replace the file, so watch the directory.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		if cerr := fw.Close(); cerr != nil {
			_ = cerr
		}
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}
	w := &Watcher{
		path:    filepath.Clean(path),
		load:    load,
		target:  target,
		logger:  logger,
		watcher: fw,
		done:    make(chan struct{}),
	}
	go w.loop(ctx)
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				_ = w.reload()
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("model watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() error {
	s, err := w.load(w.path)
	if err != nil {
		w.logger.Warn("model reload failed, keeping previous model", zap.String("path", w.path), zap.Error(err))
		return err
	}
	w.target.Swap(s)
	w.logger.Info("model reloaded", zap.String("path", w.path))
	return nil
}
