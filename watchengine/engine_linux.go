//go:build linux

package watchengine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/sys/unix"

	"github.com/jakewan/go-dirwatcher/logger"
)

const (
	// changeEvents covers file creations and modifications: an entry
	// closed after being opened for writing, or an entry moved in either
	// direction.
	changeEvents = unix.IN_CLOSE_WRITE | unix.IN_MOVE
	// removalEvents covers entries leaving the directory, by deletion or
	// by a move to another location.
	removalEvents = unix.IN_DELETE | unix.IN_MOVED_FROM

	watchMask = changeEvents | removalEvents
)

// notifier is the syscall surface the engine needs from the inotify
// facility. Tests substitute it to drive Poll with synthetic buffers.
type notifier interface {
	AddWatch(path string, mask uint32) (int, error)
	RmWatch(wd int) error
	Read(p []byte) (int, error)
	Close() error
}

type inotify struct {
	fd int
}

func openInotify() (notifier, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK)
	if err != nil {
		return nil, os.NewSyscallError("inotify_init1", err)
	}
	return &inotify{fd: fd}, nil
}

// AddWatch implements notifier.
func (n *inotify) AddWatch(path string, mask uint32) (int, error) {
	wd, err := unix.InotifyAddWatch(n.fd, path, mask)
	if err != nil {
		return -1, os.NewSyscallError("inotify_add_watch", err)
	}
	return wd, nil
}

// RmWatch implements notifier.
func (n *inotify) RmWatch(wd int) error {
	if _, err := unix.InotifyRmWatch(n.fd, uint32(wd)); err != nil {
		return os.NewSyscallError("inotify_rm_watch", err)
	}
	return nil
}

// Read implements notifier.
func (n *inotify) Read(p []byte) (int, error) {
	return unix.Read(n.fd, p)
}

// Close implements notifier.
func (n *inotify) Close() error {
	return unix.Close(n.fd)
}

// Engine owns one non-blocking inotify connection for its entire lifetime
// and the mapping from watch descriptor to watched directory. The mapping
// is mutated only by the registration and deregistration operations.
type Engine struct {
	deps     Dependencies
	sub      Subscriber
	sched    PollScheduler
	fd       notifier
	watches  map[int]string
	declared map[string]struct{}

	// disarmPerStop reproduces the reference behavior of stopping the
	// poll trigger on every single-handle stop, even while other
	// directories remain registered. KeepPollingWhileWatched clears it.
	disarmPerStop bool
}

// New opens the notification facility and returns an engine declaring the
// given directories for watching. Nothing is registered until
// StartWatching is called. An open failure is unrecoverable for the
// process, since the engine can do nothing without the facility.
func New(
	deps Dependencies,
	sub Subscriber,
	sched PollScheduler,
	directories []string,
	opts ...Option,
) (*Engine, error) {
	fd, err := openInotify()
	if err != nil {
		return nil, fmt.Errorf("opening notification facility: %w", err)
	}
	return newEngine(deps, sub, sched, fd, directories, opts...), nil
}

func newEngine(
	deps Dependencies,
	sub Subscriber,
	sched PollScheduler,
	fd notifier,
	directories []string,
	opts ...Option,
) *Engine {
	e := &Engine{
		deps:          deps,
		sub:           sub,
		sched:         sched,
		fd:            fd,
		watches:       map[int]string{},
		declared:      map[string]struct{}{},
		disarmPerStop: true,
	}
	for _, d := range directories {
		e.declared[d] = struct{}{}
	}
	for _, o := range opts {
		o(e)
	}
	return e
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

// Directories returns the declared set, sorted. Declared directories are
// not necessarily all successfully registered.
func (e *Engine) Directories() []string {
	result := make([]string, 0, len(e.declared))
	for d := range e.declared {
		result = append(result, d)
	}
	slices.Sort(result)
	return result
}

// StartWatchingDirectory registers one directory with the notification
// facility. A missing directory is not an error: it is logged and skipped,
// and the call reports success. A registration failure at the OS level is
// logged and reported as false, leaving the mapping untouched.
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
	wd, err := e.fd.AddWatch(abs, watchMask)
	if err != nil {
		l.Errorf(logger.ERROR, "Failed to start watching %s: %s", abs, err)
		return false
	}
	e.watches[wd] = abs
	e.sched.Arm()
	return true
}

// StartWatching registers every declared directory, stopping at the first
// registration failure. Directories skipped because they do not exist do
// not stop the batch.
func (e *Engine) StartWatching() bool {
	for _, directory := range e.Directories() {
		if !e.StartWatchingDirectory(directory) {
			return false
		}
	}
	return true
}

// StopWatchingHandle deregisters a single watch. On failure the mapping
// entry is kept, since the registration is still live at the OS level. On
// success the poll trigger is disarmed, by default even when other
// directories remain registered (see KeepPollingWhileWatched).
func (e *Engine) StopWatchingHandle(wd int) bool {
	if err := e.fd.RmWatch(wd); err != nil {
		e.deps.Logger().Errorf(logger.ERROR, "Failed to stop watching: %s", err)
		return false
	}
	delete(e.watches, wd)
	if e.disarmPerStop || len(e.watches) == 0 {
		e.sched.Disarm()
	}
	return true
}

// StopWatching deregisters every active watch. On an individual failure it
// returns false immediately, leaving the remaining entries registered so
// the caller can retry.
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

// Poll performs one non-blocking read of the facility's pending records,
// classifies each and emits the matching semantic events to the
// subscriber in record order. No pending data is a normal empty poll. Any
// other read failure, a zero-byte read, or a malformed buffer is fatal
// for the engine and is returned without emitting anything.
func (e *Engine) Poll() error {
	buf := make([]byte, readBufferSize)
	n, err := e.fd.Read(buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return nil
		}
		return fmt.Errorf("reading from notification facility: %w", err)
	}
	if n == 0 {
		return ErrEmptyRead
	}
	events, err := parseRawEvents(buf[:n])
	if err != nil {
		return err
	}
	l := e.deps.Logger()
	for _, ev := range events {
		directory, ok := e.watches[int(ev.wd)]
		if !ok {
			l.Errorf(logger.DEBUG, "Dropping record for unknown watch descriptor %d", ev.wd)
			continue
		}
		path := filepath.Join(directory, ev.name)
		switch {
		case ev.mask&changeEvents != 0:
			e.sub.OnFileChanged(path)
		case ev.mask&removalEvents != 0:
			e.sub.OnFileRemoved(path)
		}
	}
	return nil
}

// Close releases the notification facility. The engine is unusable
// afterwards.
func (e *Engine) Close() error {
	return e.fd.Close()
}
