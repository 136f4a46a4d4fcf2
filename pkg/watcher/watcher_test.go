package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func writePositions(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func startWatcher(t *testing.T, path string, opts ...Option) *Watcher {
	t.Helper()
	w, err := New(path, opts...)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Stop)
	return w
}

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(40 * time.Millisecond)
	var calls atomic.Int32
	for i := 0; i < 8; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("got %d calls, want 1", n)
	}
}

func TestDebouncerRunsLatest(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var got atomic.Int32
	d.Trigger(func() { got.Store(1) })
	d.Trigger(func() { got.Store(2) })
	time.Sleep(100 * time.Millisecond)
	if got.Load() != 2 {
		t.Errorf("ran %d, want the last triggered function", got.Load())
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var called atomic.Bool
	d.Trigger(func() { called.Store(true) })
	d.Cancel()
	time.Sleep(80 * time.Millisecond)
	if called.Load() {
		t.Error("cancelled function ran")
	}
}

func TestDebouncerDefault(t *testing.T) {
	if d := NewDebouncer(0); d.Duration() != DefaultDebounceDuration {
		t.Errorf("Duration = %v, want %v", d.Duration(), DefaultDebounceDuration)
	}
}

func TestWatcherNotifyDetectsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.json")
	writePositions(t, path, `{}`)

	var mu sync.Mutex
	changed := false
	startWatcher(t, path,
		WithDebounceDuration(30*time.Millisecond),
		WithOnChange(func() {
			mu.Lock()
			changed = true
			mu.Unlock()
		}),
	)
	time.Sleep(50 * time.Millisecond)
	writePositions(t, path, `{"a":{"x":10,"y":20}}`)
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if !changed {
		t.Error("write not detected")
	}
}

func TestWatcherPollingDetectsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.json")
	writePositions(t, path, `{}`)

	w := startWatcher(t, path,
		WithForcePoll(true),
		WithPollInterval(30*time.Millisecond),
		WithDebounceDuration(20*time.Millisecond),
	)
	if !w.IsPolling() {
		t.Fatal("expected polling mode")
	}

	go func() {
		time.Sleep(40 * time.Millisecond)
		_ = os.WriteFile(path, []byte(`{"node":{"x":100,"y":0}}`), 0o644)
	}()
	select {
	case <-w.Changed():
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for change")
	}
}

func TestWatcherPollingReportsRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.json")
	writePositions(t, path, `{}`)

	errs := make(chan error, 4)
	startWatcher(t, path,
		WithForcePoll(true),
		WithPollInterval(25*time.Millisecond),
		WithOnError(func(err error) { errs <- err }),
	)
	time.Sleep(40 * time.Millisecond)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-errs:
		if !errors.Is(err, ErrFileRemoved) {
			t.Errorf("got %v, want ErrFileRemoved", err)
		}
	case <-time.After(time.Second):
		t.Fatal("removal not reported")
	}
}

func TestWatcherMissingFileIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-yet.json")
	w := startWatcher(t, path,
		WithForcePoll(true),
		WithPollInterval(25*time.Millisecond),
		WithDebounceDuration(10*time.Millisecond),
	)
	writePositions(t, path, `{}`)
	select {
	case <-w.Changed():
	case <-time.After(time.Second):
		t.Fatal("creation not reported as a change")
	}
}

func TestWatcherEnvForcesPolling(t *testing.T) {
	t.Setenv(ForcePollEnv, "yes")
	path := filepath.Join(t.TempDir(), "positions.json")
	writePositions(t, path, `{}`)

	if w := startWatcher(t, path); !w.IsPolling() {
		t.Errorf("expected polling with %s set", ForcePollEnv)
	}
}

func TestWatcherRemoteFilesystemPolls(t *testing.T) {
	orig := detectFS
	detectFS = func(string) FilesystemType { return FSTypeSMB }
	t.Cleanup(func() { detectFS = orig })

	path := filepath.Join(t.TempDir(), "positions.json")
	writePositions(t, path, `{}`)
	w := startWatcher(t, path)
	if !w.IsPolling() {
		t.Error("expected polling on a remote filesystem")
	}
	if w.FilesystemType() != FSTypeSMB {
		t.Errorf("FilesystemType = %v", w.FilesystemType())
	}
}

func TestWatcherLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.json")
	writePositions(t, path, `{}`)

	w, err := New(path, WithPollInterval(-1))
	if err != nil {
		t.Fatal(err)
	}
	if w.PollInterval() != DefaultPollInterval {
		t.Errorf("PollInterval = %v, want default", w.PollInterval())
	}
	abs, _ := filepath.Abs(path)
	if w.Path() != abs {
		t.Errorf("Path = %q, want %q", w.Path(), abs)
	}
	if w.IsStarted() {
		t.Fatal("started before Start")
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}
	w.Stop()
	if w.IsStarted() {
		t.Error("still started after Stop")
	}
	w.Stop()
}

func TestWatcherStopsWithContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.json")
	writePositions(t, path, `{}`)

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	w, err := New(path,
		WithForcePoll(true),
		WithPollInterval(20*time.Millisecond),
		WithDebounceDuration(10*time.Millisecond),
		WithOnChange(func() { calls.Add(1) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	cancel()
	time.Sleep(40 * time.Millisecond)
	writePositions(t, path, `{"late":{"x":0,"y":0}}`)
	time.Sleep(120 * time.Millisecond)
	if calls.Load() != 0 {
		t.Error("change reported after context cancellation")
	}
}

func TestFilesystemTypeString(t *testing.T) {
	for typ, want := range map[FilesystemType]string{
		FSTypeUnknown:      "unknown",
		FSTypeLocal:        "local",
		FSTypeNFS:          "nfs",
		FSTypeSMB:          "smb",
		FSTypeFUSE:         "fuse",
		FSTypeNetwork:      "network",
		FilesystemType(42): "unknown",
	} {
		if got := typ.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", typ, got, want)
		}
	}
}

func TestIsRemoteFilesystem(t *testing.T) {
	if isRemoteFilesystem(FSTypeLocal) || isRemoteFilesystem(FSTypeUnknown) {
		t.Error("local or unknown treated as remote")
	}
	if !isRemoteFilesystem(FSTypeNFS) || !isRemoteFilesystem(FSTypeFUSE) {
		t.Error("remote filesystem not detected")
	}
}

func TestDetectFilesystemTypeMissingPath(t *testing.T) {
	// Falls back to the parent directory; must not panic.
	_ = DetectFilesystemType(filepath.Join(t.TempDir(), "missing", "positions.json"))
}

func TestEnvBool(t *testing.T) {
	for value, want := range map[string]bool{
		"1": true, "true": true, "TRUE": true, " on ": true, "y": true,
		"0": false, "off": false, "": false, "maybe": false,
	} {
		t.Setenv("PITGRAPH_TEST_BOOL", value)
		if got := envBool("PITGRAPH_TEST_BOOL"); got != want {
			t.Errorf("envBool(%q) = %v, want %v", value, got, want)
		}
	}
}
