package log

import (
	"time"
)

// Event represents a qualification log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates data flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// LocalRole indicates whether this endpoint drives the test or reflects it.
	LocalRole Role `cbor:"6,keyasint,omitempty"`

	// RemoteAddr is the peer address (IP:port).
	RemoteAddr string `cbor:"7,keyasint,omitempty"`

	// RunID identifies the qualification run this event belongs to.
	RunID string `cbor:"8,keyasint,omitempty"`

	// Scheme is the transport backend scheme (udp, tcp, tls, ws, mem).
	Scheme string `cbor:"9,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Transport layer
	Round       *RoundEvent       `cbor:"11,keyasint,omitempty"` // Echo layer
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Connection/run/task state
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionIn indicates incoming data.
	DirectionIn Direction = 0
	// DirectionOut indicates outgoing data.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the byte-moving layer (payloads on the wire).
	LayerTransport Layer = 0
	// LayerEcho is the escalation-loop layer (rounds and verdicts).
	LayerEcho Layer = 1
	// LayerTask is the joinable-task layer.
	LayerTask Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerEcho:
		return "ECHO"
	case LayerTask:
		return "TASK"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates payload data crossing the transport.
	CategoryMessage Category = 0
	// CategoryRound indicates an echo-round verdict.
	CategoryRound Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryRound:
		return "ROUND"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Role indicates which side of the exercise the local endpoint plays.
type Role uint8

const (
	// RoleClient indicates the endpoint driving the qualification run.
	RoleClient Role = 0
	// RoleReflector indicates the echo server side.
	RoleReflector Role = 1
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleClient:
		return "CLIENT"
	case RoleReflector:
		return "REFLECTOR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures payload data at the transport layer.
type FrameEvent struct {
	// Size is the payload size in bytes as reported by the backend.
	Size int `cbor:"1,keyasint"`

	// Data is the payload bytes (may be truncated for large payloads).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// RoundEvent captures the outcome of one echo round at the current size.
type RoundEvent struct {
	// Size is the payload size exercised this round.
	Size int `cbor:"1,keyasint"`

	// Attempt is 1 for the first try at this size, incremented per retry.
	Attempt int `cbor:"2,keyasint"`

	// Consecutive is the consecutive-failure counter after this round.
	Consecutive int `cbor:"3,keyasint"`

	// Verdict is the round outcome.
	Verdict RoundVerdict `cbor:"4,keyasint"`

	// Received is the number of bytes accumulated this round.
	Received int `cbor:"5,keyasint,omitempty"`
}

// RoundVerdict is the per-round outcome of the escalation loop.
type RoundVerdict uint8

const (
	// VerdictPass indicates the round echoed back byte-exact.
	VerdictPass RoundVerdict = 0
	// VerdictLoss indicates the round did not accumulate a full payload.
	VerdictLoss RoundVerdict = 1
	// VerdictCorrupt indicates the payload came back with different bytes.
	VerdictCorrupt RoundVerdict = 2
	// VerdictShortWrite indicates the send did not accept the full payload.
	VerdictShortWrite RoundVerdict = 3
)

// String returns the verdict name.
func (v RoundVerdict) String() string {
	switch v {
	case VerdictPass:
		return "PASS"
	case VerdictLoss:
		return "LOSS"
	case VerdictCorrupt:
		return "CORRUPT"
	case VerdictShortWrite:
		return "SHORT_WRITE"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures connection, run, and task lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a connection state change.
	StateEntityConnection StateEntity = 0
	// StateEntityRun indicates a qualification run state change.
	StateEntityRun StateEntity = 1
	// StateEntityTask indicates a joinable-task state change.
	StateEntityTask StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityRun:
		return "RUN"
	case StateEntityTask:
		return "TASK"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the error code (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
