package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config contains configuration for the file watcher.
type Config struct {
	// Paths are the files to watch. Each file's directory is watched so
	// editors that save by rename are still seen.
	Paths []string

	// DebounceInterval is the quiet period after the last event before
	// onChange runs (default: 300ms).
	DebounceInterval time.Duration
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 300 * time.Millisecond,
	}
}

// FileWatcher calls back when any of a set of files changes.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   *Config
	debounce *Debouncer

	// files holds the cleaned absolute paths being watched.
	files map[string]struct{}

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewFileWatcher creates a watcher for cfg.Paths. At least one path is
// required.
func NewFileWatcher(cfg *Config, logger *slog.Logger) (*FileWatcher, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if len(cfg.Paths) == 0 {
		return nil, errors.New("no paths to watch")
	}
	if logger == nil {
		logger = slog.Default()
	}

	files := make(map[string]struct{}, len(cfg.Paths))
	for _, p := range cfg.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %q: %w", p, err)
		}
		files[filepath.Clean(abs)] = struct{}{}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  w,
		logger:   logger.With("component", "watch"),
		config:   cfg,
		debounce: NewDebouncer(cfg.DebounceInterval),
		files:    files,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until ctx is cancelled or Stop is called, calling onChange
// once per burst of changes to the watched files. onChange errors are
// logged; watching continues.
func (fw *FileWatcher) Watch(ctx context.Context, onChange func(ctx context.Context) error) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return errors.New("watcher already running")
	}
	fw.running = true
	fw.mu.Unlock()
	defer close(fw.doneCh)
	defer fw.debounce.Stop()

	dirs := make(map[string]struct{})
	for file := range fw.files {
		dirs[filepath.Dir(file)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %q: %w", dir, err)
		}
	}

	fw.logger.Info("file watcher started",
		"files", len(fw.files),
		"debounce_ms", fw.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("file watcher stopped", "reason", ctx.Err())
			return nil

		case <-fw.stopCh:
			fw.logger.Info("file watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !fw.relevant(event) {
				continue
			}

			fw.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
			name := event.Name
			fw.debounce.Trigger(func() {
				fw.logger.Info("change detected, revalidating", "path", name)
				if err := onChange(ctx); err != nil {
					fw.logger.Error("revalidation failed", "error", err)
				}
			})

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			fw.logger.Error("file watcher error", "error", err)
		}
	}
}

// Stop stops a running watcher and releases its resources. It is safe to
// call more than once and before Watch.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	running := fw.running
	select {
	case <-fw.stopCh:
		fw.mu.Unlock()
		return nil
	default:
		close(fw.stopCh)
	}
	fw.mu.Unlock()

	if running {
		<-fw.doneCh
	}
	fw.debounce.Stop()

	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// relevant reports whether event touches a watched file. Chmod alone does
// not change content.
func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := fw.files[filepath.Clean(abs)]
	return ok
}
