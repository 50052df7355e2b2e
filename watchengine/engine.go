// Package watchengine registers directories with the operating system's
// change-notification facility and turns the raw notification records it
// delivers into discrete file-changed and file-removed events.
//
// The engine is single-threaded by contract: registration, deregistration
// and Poll must all be invoked from the same goroutine (or otherwise
// serialized by the caller). Nothing blocks; an empty Poll is a normal,
// immediately-returning outcome.
package watchengine

import (
	"errors"

	"github.com/jakewan/go-dirwatcher/logger"
)

type (
	// Dependencies provides the engine's ambient collaborators.
	Dependencies interface {
		Logger() logger.Logger
	}

	// Subscriber receives semantic events as they are classified. Paths
	// are absolute. The engine never buffers events; emission happens
	// inside Poll, in record order.
	Subscriber interface {
		OnFileChanged(path string)
		OnFileRemoved(path string)
	}

	// PollScheduler is the external trigger that drives Poll at a bounded
	// interval while armed. The engine only requests arming and
	// disarming; it never polls itself.
	PollScheduler interface {
		Arm()
		Disarm()
	}

	// Option adjusts engine behavior at construction time.
	Option func(*Engine)
)

// ErrEmptyRead reports a zero-byte read from the notification facility.
// The facility is documented never to deliver an empty read, so this is a
// protocol violation rather than an empty poll, and it is fatal for the
// engine's lifetime.
var ErrEmptyRead = errors.New("read on notification facility returned 0 bytes")

// KeepPollingWhileWatched defers disarming the poll scheduler until the
// last registration is removed. Without it the engine reproduces the
// reference behavior of disarming on every single-handle stop, even while
// other directories remain registered.
func KeepPollingWhileWatched() Option {
	return func(e *Engine) {
		e.disarmPerStop = false
	}
}

// readBufferSize is the size of the buffer handed to each read of the
// notification facility. Records that do not fit are delivered by a
// subsequent poll.
const readBufferSize = 4096
