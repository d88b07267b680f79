// Package watch re-runs a callback when a single file changes.
//
// The game rewrites its log on every start and appends to it while loading
// mods, so a Watcher observes the file's parent directory and filters events
// down to the one path. Bursts of writes within the debounce window are
// coalesced into a single callback.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the quiet period after the last write before the
// callback fires. The game writes its log in many small appends.
const defaultDebounce = 500 * time.Millisecond

// Config holds the parameters for a Watcher.
type Config struct {
	// File is the path to watch. It need not exist yet, but its directory
	// must.
	File string

	// Debounce is the quiet period after the last event before the callback
	// fires. Zero or negative values fall back to defaultDebounce.
	Debounce time.Duration

	// OnChange is called after the debounce window closes. A nil callback
	// is a no-op. Errors are passed to OnError and do not stop the watcher.
	OnChange func(ctx context.Context) error

	// OnError receives callback errors and non-fatal watcher errors. nil
	// discards them.
	OnError func(err error)
}

// Watcher monitors one file and fires a debounced callback when it is
// written, created or replaced. Run must be called exactly once.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	file     string
	debounce time.Duration
	started  atomic.Bool
}

// New creates a Watcher for cfg.File and registers its directory with
// fsnotify.
func New(cfg Config) (*Watcher, error) {
	if cfg.File == "" {
		return nil, fmt.Errorf("watch: no file given")
	}
	file, err := filepath.Abs(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", cfg.File, err)
	}
	dir := filepath.Dir(file)
	if fi, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	} else if !fi.IsDir() {
		return nil, fmt.Errorf("watch: %s is not a directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch: add directory %q: %w", dir, err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if cfg.OnError == nil {
		cfg.OnError = func(error) {}
	}

	return &Watcher{cfg: cfg, fsw: fsw, file: file, debounce: debounce}, nil
}

// File returns the absolute path being watched.
func (w *Watcher) File() string { return w.file }

// Run blocks until ctx is canceled, dispatching debounced callbacks. It
// returns nil on cancellation and an error if fsnotify fails fatally.
// Callbacks never overlap: a change that arrives while one is running
// re-arms the timer instead.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending bool
		timer   *time.Timer
		running atomic.Bool
	)

	// fire may run after ctx is canceled because it is scheduled with
	// time.AfterFunc.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if !pending {
			mu.Unlock()
			return
		}
		pending = false
		mu.Unlock()

		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx); err != nil {
				w.cfg.OnError(err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.cfg.OnError(fmt.Errorf("watch: close fsnotify: %w", err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watch: fsnotify event channel closed unexpectedly")
			}
			if !w.relevant(evt) {
				continue
			}
			mu.Lock()
			pending = true
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.cfg.OnError(fmt.Errorf("watch: %w", err))
		}
	}
}

// relevant reports whether evt touches the watched file with content. A
// removal alone is not a change: the game recreates the log right after.
func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if filepath.Clean(evt.Name) != w.file {
		return false
	}
	return evt.Has(fsnotify.Write) || evt.Has(fsnotify.Create) || evt.Has(fsnotify.Rename)
}
