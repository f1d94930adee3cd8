package scene

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsWrites(t *testing.T) {
	path := writeScene(t)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	w, err := Watch(path, s)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Unwatched files in the same directory are ignored.
	writeFile(t, filepath.Dir(path), "notes.txt", "ignored")
	shader := filepath.Join(filepath.Dir(path), "shader.wgsl")
	if err := os.WriteFile(shader, []byte(testShader+"\n"), 0o600); err != nil {
		t.Fatalf("write shader: %v", err)
	}

	select {
	case got := <-w.Changes():
		if got != shader {
			t.Errorf("change = %q, want %q", got, shader)
		}
	case err := <-w.Errors():
		t.Fatalf("watch error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcherClose(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := w.Add(t.TempDir()); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Add after Close: error = %v, want ErrWatcherClosed", err)
	}
}

func TestWatcherRunStopsOnCancel(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
