package task

import (
	"sync"
	"time"

	"github.com/echoqual/echoqual-go/pkg/log"
)

// Stats is a point-in-time snapshot of a tracker's accounting.
type Stats struct {
	// Started is the total number of tasks started through the tracker.
	Started int

	// Joined is the number of handles released by a successful Join.
	Joined int

	// Abandoned is the number of handles flagged by a join timeout.
	Abandoned int

	// Outstanding is the number of handles neither joined nor completed-
	// and-collected; abandoned handles stay outstanding until their task
	// actually finishes.
	Outstanding int

	// OldestOutstanding is the age of the oldest outstanding handle.
	OldestOutstanding time.Duration
}

// Clean reports whether no handle is outstanding: every started task has
// either been joined or has finished after being abandoned. Abandoned is a
// historical counter and does not affect cleanliness; a qualification run
// reports it separately.
func (s Stats) Clean() bool {
	return s.Outstanding == 0
}

// Tracker keeps accounting over a set of task handles so a harness can
// assert that no task leaked. The zero value is unusable; use NewTracker.
type Tracker struct {
	mu           sync.Mutex
	started      int
	numJoined    int
	numAbandoned int
	live         map[*Handle]struct{}

	logger log.Logger
	runID  string
}

// NewTracker creates an empty tracker. The logger is optional; when set,
// task lifecycle transitions are emitted as protocol events.
func NewTracker(logger log.Logger, runID string) *Tracker {
	return &Tracker{
		live:   make(map[*Handle]struct{}),
		logger: logger,
		runID:  runID,
	}
}

// Go starts fn as a tracked task.
func (t *Tracker) Go(fn func()) *Handle {
	h := Start(fn)
	h.tracker = t

	t.mu.Lock()
	t.started++
	t.live[h] = struct{}{}
	t.mu.Unlock()

	t.logState("", "RUNNING", "")
	return h
}

// joined records a successful join.
func (t *Tracker) joined(h *Handle) {
	t.mu.Lock()
	t.joinedLocked(h)
	t.mu.Unlock()
	t.logState("RUNNING", "JOINED", "")
}

func (t *Tracker) joinedLocked(h *Handle) {
	if _, ok := t.live[h]; ok {
		delete(t.live, h)
		t.numJoined++
	}
}

// abandoned records a join timeout. The handle stays live until the task
// itself completes.
func (t *Tracker) abandoned(h *Handle) {
	t.mu.Lock()
	t.numAbandoned++
	t.mu.Unlock()
	t.logState("RUNNING", "ABANDONED", "join timeout")
}

// completed records task termination. An abandoned handle leaves the live
// set here, when the task is genuinely done and its state is collectable.
func (t *Tracker) completed(h *Handle) {
	t.mu.Lock()
	if h.Abandoned() {
		delete(t.live, h)
	}
	t.mu.Unlock()
}

// Stats returns a snapshot of the tracker's accounting.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Stats{
		Started:     t.started,
		Joined:      t.numJoined,
		Abandoned:   t.numAbandoned,
		Outstanding: len(t.live),
	}
	for h := range t.live {
		if age := h.Age(); age > s.OldestOutstanding {
			s.OldestOutstanding = age
		}
	}
	return s
}

func (t *Tracker) logState(oldState, newState, reason string) {
	if t.logger == nil {
		return
	}
	t.logger.Log(log.Event{
		Timestamp: time.Now(),
		RunID:     t.runID,
		Layer:     log.LayerTask,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityTask,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}
