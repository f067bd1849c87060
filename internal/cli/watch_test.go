package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lifetree/lifetree/pkg/errors"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timeline.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls, failures atomic.Int32
	fn := func() error {
		if calls.Add(1) == 2 {
			return errors.New(errors.ErrCodeInvalidSnapshot, "bad edit")
		}
		return nil
	}
	onError := func(err error) {
		if errors.Is(err, errors.ErrCodeInvalidSnapshot) {
			failures.Add(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watchFile(ctx, path, log.New(io.Discard), fn, onError) }()

	waitFor(t, "initial run", func() bool { return calls.Load() == 1 })

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(3 * watchDebounce)
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls after unrelated write = %d, want 1", got)
	}

	if err := os.WriteFile(path, []byte(`{"nodes": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "rerun after change", func() bool { return calls.Load() >= 2 })
	waitFor(t, "error report", func() bool { return failures.Load() == 1 })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watchFile() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watchFile did not return after cancel")
	}
}

func TestWatchFileMissingDir(t *testing.T) {
	err := watchFile(context.Background(), filepath.Join(t.TempDir(), "nope", "tl.json"),
		log.New(io.Discard), func() error { return nil }, func(error) {})
	if err == nil {
		t.Error("watchFile() on a missing directory should fail")
	}
}
