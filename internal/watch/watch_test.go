package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"arrimeta/internal/testsupport"
	"arrimeta/internal/watch"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
	seen  chan string
}

func newRecorder() *recorder {
	return &recorder{seen: make(chan string, 16)}
}

func (r *recorder) handle(_ context.Context, path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	r.seen <- path
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

func start(t *testing.T, dir string, rec *recorder, opts watch.Options) {
	t.Helper()
	w, err := watch.New([]string{dir}, rec.handle, opts)
	if err != nil {
		t.Fatalf("watch.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	})
	select {
	case <-w.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never became ready")
	}
}

func waitFor(t *testing.T, rec *recorder) string {
	t.Helper()
	select {
	case path := <-rec.seen:
		return path
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
		return ""
	}
}

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	start(t, dir, rec, watch.Options{Extensions: []string{"ari"}, Debounce: 50 * time.Millisecond})

	path := filepath.Join(dir, "A001C001.ari")
	clip := testsupport.SampleClip(t)
	for i := 0; i < 3; i++ {
		clip.WriteFile(path, 64)
		time.Sleep(10 * time.Millisecond)
	}
	testsupport.WriteFile(t, filepath.Join(dir, "notes.txt"), 16)
	testsupport.WriteFile(t, filepath.Join(dir, "._A001C001.ari"), 16)

	if got := waitFor(t, rec); got != path {
		t.Fatalf("handler got %s, want %s", got, path)
	}
	time.Sleep(200 * time.Millisecond)
	if n := rec.count(); n != 1 {
		t.Fatalf("handler called %d times, want 1", n)
	}
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	start(t, dir, rec, watch.Options{Extensions: []string{"ari"}, Debounce: 20 * time.Millisecond})

	clipDir := filepath.Join(dir, "A001C002")
	if err := os.Mkdir(clipDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := testsupport.SampleClip(t).WriteFile(filepath.Join(clipDir, "A001C002.0000001.ari"), 0)

	if got := waitFor(t, rec); got != path {
		t.Fatalf("handler got %s, want %s", got, path)
	}
}

func TestWatcherReportsRemovals(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.SampleClip(t).WriteFile(filepath.Join(dir, "gone.ari"), 0)
	rec := newRecorder()
	removed := newRecorder()
	start(t, dir, rec, watch.Options{Extensions: []string{"ari"}, Debounce: 20 * time.Millisecond, OnRemove: removed.handle})

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := waitFor(t, removed); got != path {
		t.Fatalf("OnRemove got %s, want %s", got, path)
	}
}

func TestNewValidatesRoots(t *testing.T) {
	noop := func(context.Context, string) {}
	if _, err := watch.New(nil, noop, watch.Options{}); err == nil {
		t.Fatal("expected error without roots")
	}
	file := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "f.ari"), 1)
	if _, err := watch.New([]string{file}, noop, watch.Options{}); err == nil {
		t.Fatal("expected error for a file root")
	}
	if _, err := watch.New([]string{t.TempDir()}, nil, watch.Options{}); err == nil {
		t.Fatal("expected error for nil handler")
	}
}
