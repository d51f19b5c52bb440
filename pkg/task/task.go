package task

import (
	"errors"
	"sync"
	"time"
)

// Task errors.
var (
	// ErrJoinTimeout indicates the task did not complete within the allotted
	// time. The handle is flagged abandoned, not released.
	ErrJoinTimeout = errors.New("join timed out")

	// ErrJoined indicates a Join on a handle that was already joined.
	ErrJoined = errors.New("handle already joined")

	// ErrAbandoned indicates a Join on a handle abandoned by an earlier
	// join timeout.
	ErrAbandoned = errors.New("handle abandoned after join timeout")
)

// Handle represents one in-flight unit of work. Exactly one task signals
// completion through a handle; the signal fires at most once, by the task
// itself just before it terminates.
type Handle struct {
	done chan struct{}

	mu        sync.Mutex
	joined    bool
	abandoned bool

	startedAt time.Time
	tracker   *Tracker
}

// Start runs fn on its own goroutine and returns the handle to join on.
// Scheduling a goroutine cannot fail short of resource exhaustion, which
// the runtime treats as fatal; there is no error path here.
func Start(fn func()) *Handle {
	if fn == nil {
		panic("task: Start with nil function")
	}

	h := &Handle{
		done:      make(chan struct{}),
		startedAt: time.Now(),
	}

	go func() {
		defer h.complete()
		fn()
	}()

	return h
}

// complete fires the completion signal and notifies the tracker. The close
// runs exactly once per handle even if fn panics.
func (h *Handle) complete() {
	close(h.done)
	if h.tracker != nil {
		h.tracker.completed(h)
	}
}

// Join blocks until the task completes or timeout elapses. A non-positive
// timeout waits without bound.
//
// On completion Join releases the joiner's reference and returns nil; a
// handle must not be joined twice, and a second Join returns ErrJoined.
// On timeout the handle is flagged abandoned and kept alive (the task may
// still be running); Join returns ErrJoinTimeout, and every later Join on
// the handle returns ErrAbandoned.
func (h *Handle) Join(timeout time.Duration) error {
	h.mu.Lock()
	switch {
	case h.abandoned:
		h.mu.Unlock()
		return ErrAbandoned
	case h.joined:
		h.mu.Unlock()
		return ErrJoined
	}
	h.mu.Unlock()

	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		select {
		case <-h.done:
		case <-timer.C:
			h.mu.Lock()
			h.abandoned = true
			h.mu.Unlock()
			if h.tracker != nil {
				h.tracker.abandoned(h)
			}
			return ErrJoinTimeout
		}
	} else {
		<-h.done
	}

	h.mu.Lock()
	h.joined = true
	h.mu.Unlock()
	if h.tracker != nil {
		h.tracker.joined(h)
	}
	return nil
}

// Done returns the completion channel, closed when the task terminates.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Completed reports whether the task has signaled completion.
func (h *Handle) Completed() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Abandoned reports whether a join timeout has flagged this handle.
func (h *Handle) Abandoned() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.abandoned
}

// Age returns how long ago the task was started.
func (h *Handle) Age() time.Duration {
	return time.Since(h.startedAt)
}
