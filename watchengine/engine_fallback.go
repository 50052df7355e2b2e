//go:build !linux

package watchengine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/fsnotify/fsnotify"

	"github.com/jakewan/go-dirwatcher/logger"
)

// On platforms without inotify the engine keeps the same surface on top
// of fsnotify. Watch handles are synthesized by the engine, and Poll
// drains whatever fsnotify has queued without blocking. The raw-record
// guarantees of the Linux engine (buffer order across directories,
// zero-read detection) do not apply here.
type Engine struct {
	deps     Dependencies
	sub      Subscriber
	sched    PollScheduler
	watcher  *fsnotify.Watcher
	watches  map[int]string
	handles  map[string]int
	nextWd   int
	declared map[string]struct{}

	disarmPerStop bool
}

// New opens the platform notification facility and returns an engine
// declaring the given directories for watching.
func New(
	deps Dependencies,
	sub Subscriber,
	sched PollScheduler,
	directories []string,
	opts ...Option,
) (*Engine, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("opening notification facility: %w", err)
	}
	e := &Engine{
		deps:          deps,
		sub:           sub,
		sched:         sched,
		watcher:       watcher,
		watches:       map[int]string{},
		handles:       map[string]int{},
		nextWd:        1,
		declared:      map[string]struct{}{},
		disarmPerStop: true,
	}
	for _, d := range directories {
		e.declared[d] = struct{}{}
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// NewForDirectory declares a single directory, creating it when absent.
//
// TODO: stop auto-creating the directory once the watched set is
// refreshed at runtime.
func NewForDirectory(
	deps Dependencies,
	sub Subscriber,
	sched PollScheduler,
	directory string,
	opts ...Option,
) (*Engine, error) {
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		if err := os.Mkdir(directory, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", directory, err)
		}
	}
	return New(deps, sub, sched, []string{directory}, opts...)
}

// Directories returns the declared set, sorted.
func (e *Engine) Directories() []string {
	result := make([]string, 0, len(e.declared))
	for d := range e.declared {
		result = append(result, d)
	}
	slices.Sort(result)
	return result
}

// StartWatchingDirectory registers one directory. A missing directory is
// logged and skipped with a success result; a registration failure is
// logged and reported as false.
func (e *Engine) StartWatchingDirectory(directory string) bool {
	l := e.deps.Logger()
	abs, err := filepath.Abs(directory)
	if err != nil {
		l.Errorf(logger.ERROR, "Failed to resolve %s: %s", directory, err)
		return false
	}
	if fi, err := os.Stat(abs); err != nil || !fi.IsDir() {
		l.Errorf(logger.WARNING, "Directory %s does not exist, skipping", abs)
		return true
	}
	if err := e.watcher.Add(abs); err != nil {
		l.Errorf(logger.ERROR, "Failed to start watching %s: %s", abs, err)
		return false
	}
	wd := e.nextWd
	e.nextWd++
	e.watches[wd] = abs
	e.handles[abs] = wd
	e.sched.Arm()
	return true
}

// StartWatching registers every declared directory, stopping at the first
// registration failure.
func (e *Engine) StartWatching() bool {
	for _, directory := range e.Directories() {
		if !e.StartWatchingDirectory(directory) {
			return false
		}
	}
	return true
}

// StopWatchingHandle deregisters a single watch. On failure the mapping
// entry is kept. On success the poll trigger is disarmed, by default even
// when other directories remain registered (see KeepPollingWhileWatched).
func (e *Engine) StopWatchingHandle(wd int) bool {
	l := e.deps.Logger()
	directory, ok := e.watches[wd]
	if !ok {
		l.Errorf(logger.ERROR, "Failed to stop watching: unknown handle %d", wd)
		return false
	}
	if err := e.watcher.Remove(directory); err != nil {
		l.Errorf(logger.ERROR, "Failed to stop watching: %s", err)
		return false
	}
	delete(e.watches, wd)
	delete(e.handles, directory)
	if e.disarmPerStop || len(e.watches) == 0 {
		e.sched.Disarm()
	}
	return true
}

// StopWatching deregisters every active watch, returning false at the
// first individual failure.
func (e *Engine) StopWatching() bool {
	for len(e.watches) > 0 {
		var wd int
		for k := range e.watches {
			wd = k
			break
		}
		if !e.StopWatchingHandle(wd) {
			return false
		}
	}
	e.sched.Disarm()
	return true
}

// Poll drains the pending notifications without blocking, emitting the
// matching semantic events in arrival order. A watcher error is fatal for
// the engine and is returned to the caller.
func (e *Engine) Poll() error {
	l := e.deps.Logger()
	for {
		select {
		case ev, ok := <-e.watcher.Events:
			if !ok {
				return errors.New("notification channel closed")
			}
			if _, watched := e.handles[filepath.Dir(ev.Name)]; !watched {
				l.Errorf(logger.DEBUG, "Dropping record for unwatched path %s", ev.Name)
				continue
			}
			switch {
			case ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				e.sub.OnFileChanged(ev.Name)
			case ev.Op&fsnotify.Remove != 0:
				e.sub.OnFileRemoved(ev.Name)
			}
		case err, ok := <-e.watcher.Errors:
			if !ok {
				return errors.New("notification channel closed")
			}
			return fmt.Errorf("reading from notification facility: %w", err)
		default:
			return nil
		}
	}
}

// Close releases the notification facility.
func (e *Engine) Close() error {
	return e.watcher.Close()
}
