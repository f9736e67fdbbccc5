package board

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/fsnotify/fsnotify"
)

// DebounceInterval is how long the watcher waits for the file system to
// settle before reporting a change.
const DebounceInterval = 250 * time.Millisecond

// watchPatterns match board-relative, slash separated paths that trigger a
// reload.
var watchPatterns = []string{
	ConfigFilename,
	"*/*.md",
}

// Watcher reports changes to a board directory.
type Watcher struct {
	root     string
	onChange func()
	fsw      *fsnotify.Watcher
	cancel   context.CancelFunc
	done     chan struct{}
	once     sync.Once
}

// NewWatcher starts watching root and calls onChange, at most once per
// DebounceInterval, after relevant files change. The watcher stops when ctx
// is done or Close is called.
func NewWatcher(ctx context.Context, root string, onChange func()) (*Watcher, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve board path: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		root:     root,
		onChange: onChange,
		fsw:      fsw,
		done:     make(chan struct{}),
	}
	if err := w.addDirs(); err != nil {
		fsw.Close()
		return nil, err
	}

	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx)
	return w, nil
}

// addDirs watches root and its list directories.
func (w *Watcher) addDirs() error {
	var mu sync.Mutex
	dirs := []string{w.root}
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path == w.root {
			return nil
		}
		if !isListDir(d.Name()) || filepath.Dir(path) != w.root {
			return filepath.SkipDir
		}
		mu.Lock()
		dirs = append(dirs, path)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk board directory: %w", err)
	}
	for _, dir := range dirs {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	slog.Debug("Watching board", "path", w.root, "dirs", len(dirs))
	return nil
}

// relevant reports whether an event should trigger a reload. New list
// directories are added to the watch set.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	if ok, _ := doublestar.Match("*", rel); ok && isListDir(rel) {
		// a list directory appeared or went away
		if ev.Has(fsnotify.Create) {
			info, err := os.Stat(ev.Name)
			if err != nil || !info.IsDir() {
				return false
			}
			if err := w.fsw.Add(ev.Name); err != nil {
				slog.Warn("Failed to watch new list", "path", ev.Name, "error", err)
			}
			return true
		}
		if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
			return true
		}
	}
	for _, pattern := range watchPatterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(DebounceInterval)
			} else {
				timer.Reset(DebounceInterval)
			}
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("Board watcher error", "error", err)
		case <-fire:
			fire = nil
			slog.Debug("Board changed on disk", "path", w.root)
			w.onChange()
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		w.cancel()
		<-w.done
		err = w.fsw.Close()
	})
	return err
}
