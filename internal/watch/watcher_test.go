package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func startWatcher(t *testing.T, cfg Config) (cancel func() error) {
	t.Helper()
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// Give the event loop time to start.
	time.Sleep(50 * time.Millisecond)

	return func() error {
		stop()
		select {
		case err := <-errCh:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("Run() did not return after cancel")
			return nil
		}
	}
}

func appendLine(t *testing.T, path, line string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherDebounce(t *testing.T) {
	t.Parallel()

	log := filepath.Join(t.TempDir(), "factorio-current.log")
	var calls atomic.Int32
	done := make(chan struct{}, 10)

	stop := startWatcher(t, Config{
		File:     log,
		Debounce: 100 * time.Millisecond,
		OnChange: func(context.Context) error {
			calls.Add(1)
			done <- struct{}{}
			return nil
		},
	})

	for _, line := range []string{
		"   1.000 Loading mod core 0.0.0 (data.lua)",
		"   1.100 Loading mod base 2.0.28 (data.lua)",
		"   1.200 Loading mod flib 0.15.0 (data.lua)",
	} {
		appendLine(t, log, line)
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	time.Sleep(200 * time.Millisecond)

	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 debounced callback, got %d", n)
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	log := filepath.Join(dir, "factorio-current.log")
	fired := make(chan struct{}, 10)

	stop := startWatcher(t, Config{
		File:     log,
		Debounce: 50 * time.Millisecond,
		OnChange: func(context.Context) error {
			fired <- struct{}{}
			return nil
		},
	})
	defer stop()

	appendLine(t, filepath.Join(dir, "factorio-previous.log"), "old run")

	select {
	case <-fired:
		t.Fatal("callback fired for an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}

	appendLine(t, log, "new run")
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback on the watched file")
	}
}

func TestWatcherCallbackErrors(t *testing.T) {
	t.Parallel()

	log := filepath.Join(t.TempDir(), "factorio-current.log")
	errs := make(chan error, 10)

	stop := startWatcher(t, Config{
		File:     log,
		Debounce: 50 * time.Millisecond,
		OnChange: func(context.Context) error { return os.ErrInvalid },
		OnError:  func(err error) { errs <- err },
	})

	appendLine(t, log, "x")
	select {
	case err := <-errs:
		if err != os.ErrInvalid {
			t.Errorf("OnError() got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for OnError")
	}

	if err := stop(); err != nil {
		t.Errorf("callback errors should not stop the watcher, Run() = %v", err)
	}
}

func TestWatcherRunTwice(t *testing.T) {
	t.Parallel()

	w, err := New(Config{File: filepath.Join(t.TempDir(), "x.log")})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("first Run() error: %v", err)
	}
	if err := w.Run(ctx); err == nil {
		t.Error("second Run() should fail")
	}
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	notDir := filepath.Join(dir, "file")
	os.WriteFile(notDir, nil, 0o644)

	tests := []struct {
		name string
		file string
	}{
		{"empty", ""},
		{"missing directory", filepath.Join(dir, "nope", "x.log")},
		{"parent is a file", filepath.Join(notDir, "x.log")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(Config{File: tt.file}); err == nil {
				t.Errorf("New(%q) should fail", tt.file)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	w, err := New(Config{File: filepath.Join(t.TempDir(), "x.log")})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.fsw.Close()

	if w.debounce != defaultDebounce {
		t.Errorf("debounce = %v, want %v", w.debounce, defaultDebounce)
	}
	if !filepath.IsAbs(w.File()) {
		t.Errorf("File() = %q, want an absolute path", w.File())
	}
}
