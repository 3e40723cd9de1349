// Package watcher reports changes to a data file so gc can reload the grid.
// It prefers fsnotify and falls back to polling on network filesystems or
// when GC_FORCE_POLL is set.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/gridchart/pkg/debug"
)

// DefaultPollInterval is used in polling mode when no interval is given.
const DefaultPollInterval = 2 * time.Second

var (
	ErrFileRemoved    = errors.New("data file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Mode is how a running watcher learns about changes.
type Mode int

const (
	ModeStopped Mode = iota
	ModeNotify
	ModePoll
)

func (m Mode) String() string {
	switch m {
	case ModeNotify:
		return "fsnotify"
	case ModePoll:
		return "poll"
	default:
		return "stopped"
	}
}

// Change describes one debounced modification of the data file.
type Change struct {
	Path    string
	Size    int64
	ModTime time.Time
	Mode    Mode
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the quiet period before a change is reported.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the stat interval used in polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithOnChange registers a callback run for every reported change, before
// the change is offered on Changed.
func WithOnChange(fn func(Change)) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError registers a callback for watch failures, including removal of
// the data file.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll skips fsnotify.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// snapshot is what a change is detected against.
type snapshot struct {
	size    int64
	modTime time.Time
}

func (s snapshot) exists() bool { return !s.modTime.IsZero() }

func (s snapshot) same(o snapshot) bool {
	return s.size == o.size && s.modTime.Equal(o.modTime)
}

// Watcher watches one data file. The containing directory is watched rather
// than the file so editors that save by rename are still seen.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	forcePoll    bool
	onChange     func(Change)
	onError      func(error)

	debouncer *Debouncer
	changeCh  chan Change
	changes   atomic.Int64

	mu      sync.Mutex
	mode    Mode
	fsType  FilesystemType
	last    snapshot
	cancel  context.CancelFunc
	notify  *fsnotify.Watcher
	running sync.WaitGroup
}

// NewWatcher creates a watcher for a data source location. A "#table"
// suffix, as used for SQLite and workbook sources, is ignored.
func NewWatcher(location string, opts ...Option) (*Watcher, error) {
	path := location
	if i := strings.LastIndex(path, "#"); i > 0 {
		path = path[:i]
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		onChange:     func(Change) {},
		onError:      func(error) {},
		changeCh:     make(chan Change, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start begins watching. A file that does not exist yet is reported once it
// appears.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.mode != ModeStopped {
		return ErrAlreadyStarted
	}

	snap, err := stat(w.path)
	if err != nil && os.IsPermission(err) {
		return fmt.Errorf("%w: %s", ErrPermission, w.path)
	}
	w.last = snap

	w.fsType = detectFilesystemTypeFunc(w.path)
	mode := ModeNotify
	if w.forcePoll || envBool("GC_FORCE_POLL") || isRemoteFilesystem(w.fsType) {
		mode = ModePoll
	}

	var events <-chan fsnotify.Event
	var errs <-chan error
	if mode == ModeNotify {
		events, errs, err = w.openNotify()
		if err != nil {
			debug.Log("fsnotify unavailable, polling", "path", w.path, "err", err)
			mode = ModePoll
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.mode = mode

	w.running.Add(1)
	go w.loop(ctx, events, errs, mode == ModePoll)

	debug.Log("watcher started", "path", w.path, "fs", w.fsType, "mode", mode)
	return nil
}

func (w *Watcher) openNotify() (<-chan fsnotify.Event, <-chan error, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return nil, nil, err
	}
	w.notify = fsw
	return fsw.Events, fsw.Errors, nil
}

// Stop stops watching and waits for the watch goroutine to exit. Changed
// stays open so a pending receive never sees a spurious close.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.mode == ModeStopped {
		w.mu.Unlock()
		return
	}
	cancel, fsw := w.cancel, w.notify
	w.mode, w.cancel, w.notify = ModeStopped, nil, nil
	w.mu.Unlock()

	cancel()
	if fsw != nil {
		fsw.Close()
	}
	w.debouncer.Cancel()
	w.running.Wait()
}

func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, poll bool) {
	defer w.running.Done()
	name := filepath.Base(w.path)

	var tick <-chan time.Time
	if poll {
		ticker := time.NewTicker(w.pollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name || ev.Op == fsnotify.Chmod {
				continue
			}
			w.check()

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)

		case <-tick:
			w.check()
		}
	}
}

// check compares the file against the last snapshot and schedules a report
// when it moved on.
func (w *Watcher) check() {
	snap, err := stat(w.path)
	if err != nil && !os.IsNotExist(err) {
		if os.IsPermission(err) {
			err = fmt.Errorf("%w: %s", ErrPermission, w.path)
		}
		w.onError(err)
		return
	}

	w.mu.Lock()
	prev := w.last
	w.last = snap
	w.mu.Unlock()

	switch {
	case !snap.exists():
		if prev.exists() {
			w.debouncer.Cancel()
			w.onError(fmt.Errorf("%w: %s", ErrFileRemoved, filepath.Base(w.path)))
		}
	case !snap.same(prev):
		w.debouncer.Trigger(w.report)
	}
}

// report runs once the file has been quiet for the debounce period.
func (w *Watcher) report() {
	w.mu.Lock()
	mode, snap := w.mode, w.last
	w.mu.Unlock()

	// A change racing Stop is dropped.
	if mode == ModeStopped {
		return
	}

	c := Change{Path: w.path, Size: snap.size, ModTime: snap.modTime, Mode: mode}
	w.changes.Add(1)
	debug.Log("data file changed", "path", w.path, "size", c.Size)
	w.onChange(c)

	// Keep only the newest change for a slow reader.
	select {
	case <-w.changeCh:
	default:
	}
	select {
	case w.changeCh <- c:
	default:
	}
}

func stat(path string) (snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{size: info.Size(), modTime: info.ModTime()}, nil
}

// Changed delivers the newest unread change.
func (w *Watcher) Changed() <-chan Change {
	return w.changeCh
}

// ChangeCount returns how many changes have been reported.
func (w *Watcher) ChangeCount() int64 {
	return w.changes.Load()
}

// Mode returns how the watcher is running, or ModeStopped.
func (w *Watcher) Mode() Mode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string { return w.path }

// PollInterval returns the stat interval used in polling mode.
func (w *Watcher) PollInterval() time.Duration { return w.pollInterval }

// FilesystemType returns the classification made by Start.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fsType
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
