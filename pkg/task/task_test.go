package task

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestJoinCompletedTask(t *testing.T) {
	var ran atomic.Bool
	h := Start(func() {
		time.Sleep(50 * time.Millisecond)
		ran.Store(true)
	})

	if err := h.Join(5 * time.Second); err != nil {
		t.Fatalf("Join = %v, want nil", err)
	}
	if !ran.Load() {
		t.Error("task body did not run before Join returned")
	}
	if !h.Completed() {
		t.Error("Completed() = false after successful Join")
	}
}

func TestJoinTimeout(t *testing.T) {
	release := make(chan struct{})
	h := Start(func() {
		<-release
	})
	defer close(release)

	err := h.Join(10 * time.Millisecond)
	if !errors.Is(err, ErrJoinTimeout) {
		t.Fatalf("Join = %v, want ErrJoinTimeout", err)
	}

	// The handle is flagged, not freed: a second join is rejected rather
	// than touching reclaimed state.
	if !h.Abandoned() {
		t.Error("Abandoned() = false after join timeout")
	}
	if err := h.Join(10 * time.Millisecond); !errors.Is(err, ErrAbandoned) {
		t.Errorf("Join after abandonment = %v, want ErrAbandoned", err)
	}
}

func TestDoubleJoinRejected(t *testing.T) {
	h := Start(func() {})

	if err := h.Join(time.Second); err != nil {
		t.Fatalf("first Join = %v, want nil", err)
	}
	if err := h.Join(time.Second); !errors.Is(err, ErrJoined) {
		t.Errorf("second Join = %v, want ErrJoined", err)
	}
}

func TestJoinWithoutTimeout(t *testing.T) {
	h := Start(func() {
		time.Sleep(20 * time.Millisecond)
	})

	// Non-positive timeout blocks until completion.
	if err := h.Join(0); err != nil {
		t.Fatalf("Join(0) = %v, want nil", err)
	}
}

func TestStartNilFuncPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Start(nil) did not panic")
		}
	}()
	Start(nil)
}

func TestDoneChannel(t *testing.T) {
	release := make(chan struct{})
	h := Start(func() { <-release })

	select {
	case <-h.Done():
		t.Fatal("Done() closed before task finished")
	default:
	}

	close(release)
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() not closed after task finished")
	}
}

func TestTaskCompletesAfterAbandonment(t *testing.T) {
	// The signal fires exactly once even when the joiner gave up long
	// before the task terminated.
	release := make(chan struct{})
	h := Start(func() { <-release })

	if err := h.Join(5 * time.Millisecond); !errors.Is(err, ErrJoinTimeout) {
		t.Fatalf("Join = %v, want ErrJoinTimeout", err)
	}

	close(release)
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("abandoned task never completed")
	}
	if !h.Abandoned() {
		t.Error("handle lost its abandoned flag on completion")
	}
}
