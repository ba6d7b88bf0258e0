package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hazyhaar/mesa/pkg/guest"
)

// DefaultDebounce collapses bursts of writes from editors into one reload.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads a seed file into a Book whenever the file changes. A reload
// that fails or yields no guests keeps the current list.
type Watcher struct {
	path     string
	opts     Options
	book     *guest.Book
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// NewWatcher creates a Watcher for the seed at path.
func NewWatcher(path string, opts Options, book *guest.Book, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		opts:     opts,
		book:     book,
		logger:   logger,
		debounce: DefaultDebounce,
	}
}

// Reload loads the seed and replaces the book's list.
func (w *Watcher) Reload() error {
	list, err := Load(w.path, w.opts)
	if err != nil {
		return err
	}
	w.book.Replace(list)
	return nil
}

// Start watches the seed's directory until ctx is cancelled. The directory is
// watched rather than the file so editors that save by renaming still trigger
// a reload.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("watch %s: %w", w.path, err)
	}

	w.mu.Lock()
	w.watcher = fw
	w.mu.Unlock()

	w.logger.Info("watching guest list", "path", w.path)
	go w.loop(ctx, fw)
	return nil
}

// Stop closes the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher != nil {
		_ = w.watcher.Close()
		w.watcher = nil
	}
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("guest list changed", "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				if err := w.Reload(); err != nil {
					w.logger.Warn("guest list reload failed, keeping current list", "error", err)
				}
			})

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("guest list watcher error", "error", err)
		}
	}
}
