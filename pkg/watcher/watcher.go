// Package watcher reports changes to a single file, such as the saved
// node-positions file, so a running explorer can pick up edits made by
// another process. It prefers fsnotify and falls back to stat polling on
// remote filesystems or when PITGRAPH_FORCE_POLL is set.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/pitgraph/pkg/debug"
)

// DefaultPollInterval is used when polling.
const DefaultPollInterval = 2 * time.Second

// ForcePollEnv forces polling when set to a truthy value.
const ForcePollEnv = "PITGRAPH_FORCE_POLL"

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// detectFS is replaced in tests.
var detectFS = DetectFilesystemType

// Option configures a Watcher.
type Option func(*Watcher)

func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithOnChange sets the callback run after a debounced change.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets the callback for removal and stat errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// fileState is what polling compares between ticks.
type fileState struct {
	mtime time.Time
	size  int64
}

func (s fileState) exists() bool { return !s.mtime.IsZero() }

// Watcher watches one file.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	forcePoll    bool
	onChange     func()
	onError      func(error)

	mu        sync.RWMutex
	debouncer *Debouncer
	fsw       *fsnotify.Watcher
	polling   bool
	fsType    FilesystemType
	last      fileState
	cancel    context.CancelFunc
	running   bool
	changes   chan struct{}
}

// New returns a Watcher for path. Nothing happens until Start.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		onChange:     func() {},
		onError:      func(error) {},
		changes:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.pollInterval <= 0 {
		w.pollInterval = DefaultPollInterval
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start begins watching. The watcher stops when ctx is done or Stop is called.
// A file that does not exist yet is fine; its creation counts as a change.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return ErrAlreadyStarted
	}

	st, err := stat(w.path)
	if err != nil && !os.IsNotExist(err) {
		if os.IsPermission(err) {
			return ErrPermission
		}
		return err
	}
	w.last = st

	w.fsType = detectFS(w.path)
	w.polling = w.forcePoll || envBool(ForcePollEnv) || isRemoteFilesystem(w.fsType)

	ctx, w.cancel = context.WithCancel(ctx)

	if !w.polling {
		if fsw, err := w.openNotify(); err != nil {
			debug.Log("watcher: fsnotify unavailable for %s: %v", w.path, err)
			w.polling = true
		} else {
			w.fsw = fsw
			go w.runNotify(ctx, fsw)
		}
	}
	if w.polling {
		go w.runPoll(ctx)
	}

	debug.Log("watcher: watching %s (fs=%s polling=%v)", w.path, w.fsType, w.polling)
	w.running = true
	return nil
}

// openNotify watches the parent directory so atomic rename-over saves are seen.
func (w *Watcher) openNotify() (*fsnotify.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return nil, err
	}
	return fsw, nil
}

// Stop halts the watcher and drops any pending notification. The Changed
// channel stays open.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.cancel()
	if w.fsw != nil {
		w.fsw.Close()
		w.fsw = nil
	}
	w.debouncer.Cancel()
	w.running = false
}

func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Changed receives once per debounced change. Sends never block; a change
// that arrives while one is pending is folded into it.
func (w *Watcher) Changed() <-chan struct{} { return w.changes }

func (w *Watcher) Path() string { return w.path }

func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

func (w *Watcher) PollInterval() time.Duration { return w.pollInterval }

func (w *Watcher) runNotify(ctx context.Context, fsw *fsnotify.Watcher) {
	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			switch {
			case ev.Has(fsnotify.Remove):
				w.onError(ErrFileRemoved)
			case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create), ev.Has(fsnotify.Rename):
				w.debouncer.Trigger(w.fire)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) runPoll(ctx context.Context) {
	tick := time.NewTicker(w.pollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}

		st, err := stat(w.path)
		w.mu.Lock()
		prev := w.last
		if err == nil || os.IsNotExist(err) {
			w.last = st
		}
		w.mu.Unlock()

		switch {
		case os.IsNotExist(err):
			if prev.exists() {
				w.onError(ErrFileRemoved)
			}
		case os.IsPermission(err):
			w.onError(ErrPermission)
		case err != nil:
			w.onError(err)
		case st.mtime.After(prev.mtime) || st.size != prev.size:
			w.debouncer.Trigger(w.fire)
		}
	}
}

func (w *Watcher) fire() {
	if !w.IsStarted() {
		return
	}
	w.onChange()
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

func stat(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}, err
	}
	return fileState{mtime: info.ModTime(), size: info.Size()}, nil
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
