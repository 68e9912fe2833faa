package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"arrimeta/internal/header"
	"arrimeta/internal/logging"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

// Handler receives a supported file once writes to it have settled.
type Handler func(ctx context.Context, path string)

// Options tunes a Watcher.
type Options struct {
	// Extensions lists the supported file extensions.
	Extensions []string
	// Debounce is how long a file must go without writes before it is handed
	// to the handler.
	Debounce time.Duration
	// OnRemove, if set, is called for supported files that are removed or
	// renamed away.
	OnRemove Handler
	Logger   *slog.Logger
}

// Watcher hands newly written clip files to a handler. Directories created
// under a root are watched as they appear. Handlers run one at a time on the
// goroutine that called Run.
type Watcher struct {
	roots   []string
	handler Handler
	opts    Options
	logger  *slog.Logger
	ready   chan struct{}
}

// New validates roots and returns a watcher that is not yet running.
func New(roots []string, handler Handler, opts Options) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watch handler is nil")
	}
	if len(roots) == 0 {
		return nil, errors.New("no directories to watch")
	}
	abs := make([]string, 0, len(roots))
	for _, root := range roots {
		p, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", root, err)
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("watch %s: not a directory", root)
		}
		abs = append(abs, p)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Watcher{
		roots:   abs,
		handler: handler,
		opts:    opts,
		logger:  logging.NewComponentLogger(opts.Logger, "watch"),
		ready:   make(chan struct{}),
	}, nil
}

// Ready is closed once every root is being watched.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run watches until ctx is cancelled and returns nil on cancellation. Run
// may be called once.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	for _, root := range w.roots {
		if err := w.addTree(fsw, root); err != nil {
			return err
		}
	}
	close(w.ready)
	w.logger.Info("watching for clips",
		logging.String(logging.FieldEventType, "watch_started"),
		logging.Any("roots", w.roots),
		logging.Duration("debounce", w.opts.Debounce),
	)

	settled := make(chan string, 64)
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	schedule := func(path string) {
		if t, ok := timers[path]; ok {
			t.Stop()
		}
		timers[path] = time.AfterFunc(w.opts.Debounce, func() {
			select {
			case settled <- path:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-settled:
			delete(timers, path)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			w.handler(ctx, path)
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, fsw, event, schedule)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(w.logger, "watch error", "watch_error",
				logging.String(logging.FieldErrorHint, "events may have been dropped; rerun extract on the directory"),
				logging.Error(err),
			)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, fsw *fsnotify.Watcher, event fsnotify.Event, schedule func(string)) {
	if hidden(event.Name) {
		return
	}
	switch {
	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			if event.Has(fsnotify.Create) {
				if err := w.addTree(fsw, event.Name); err != nil {
					w.logger.Warn("watch new directory failed", logging.Error(err))
				}
				w.scheduleExisting(event.Name, schedule)
			}
			return
		}
		if header.SupportedExtension(event.Name, w.opts.Extensions) {
			schedule(event.Name)
		}
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		if w.opts.OnRemove != nil && header.SupportedExtension(event.Name, w.opts.Extensions) {
			w.opts.OnRemove(ctx, event.Name)
		}
	}
}

// scheduleExisting covers files written into a new directory before its
// watch was registered.
func (w *Watcher) scheduleExisting(dir string, schedule func(string)) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || hidden(path) {
			return nil
		}
		if header.SupportedExtension(path, w.opts.Extensions) {
			schedule(path)
		}
		return nil
	})
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && hidden(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
