package transport

import (
	"time"

	"github.com/echoqual/echoqual-go/pkg/log"
)

// connLogger emits transport-layer protocol events for one connection.
// The zero value (nil logger) discards everything.
type connLogger struct {
	logger log.Logger
	connID string
	scheme string
	remote string
}

func (l *connLogger) enabled() bool {
	return l.logger != nil
}

// logFrame records payload bytes crossing the transport, truncating large
// payloads at MaxLogFrameDataSize.
func (l *connLogger) logFrame(dir log.Direction, data []byte) {
	if !l.enabled() {
		return
	}

	size := len(data)
	truncated := false
	if size > MaxLogFrameDataSize {
		data = data[:MaxLogFrameDataSize]
		truncated = true
	}
	logged := make([]byte, len(data))
	copy(logged, data)

	l.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: l.connID,
		Direction:    dir,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		RemoteAddr:   l.remote,
		Scheme:       l.scheme,
		Frame: &log.FrameEvent{
			Size:      size,
			Data:      logged,
			Truncated: truncated,
		},
	})
}

// logState records a connection state change.
func (l *connLogger) logState(oldState, newState, reason string) {
	if !l.enabled() {
		return
	}
	l.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: l.connID,
		Layer:        log.LayerTransport,
		Category:     log.CategoryState,
		RemoteAddr:   l.remote,
		Scheme:       l.scheme,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

// logError records a transport-layer error.
func (l *connLogger) logError(err error, context string) {
	if !l.enabled() || err == nil {
		return
	}
	l.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: l.connID,
		Layer:        log.LayerTransport,
		Category:     log.CategoryError,
		RemoteAddr:   l.remote,
		Scheme:       l.scheme,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: err.Error(),
			Context: context,
		},
	})
}
