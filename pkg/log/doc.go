// Package log provides structured protocol logging for echoqual.
//
// This package defines the Logger interface and Event types for capturing
// qualification events at multiple layers (transport, echo, task).
// It is separate from operational logging (slog) - protocol capture provides
// a complete machine-readable event trace of what crossed the link and how
// the run progressed, for debugging and offline analysis.
//
// # Basic Usage
//
// Runs configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For CI artifacts: write to binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("run.eqlog")
//
//	// Both: use MultiLogger
//	cfg.ProtocolLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    log.NewFileLogger("run.eqlog"),
//	)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Transport: payload bytes sent/received (FrameEvent)
//   - Echo: per-round verdicts of the escalation loop (RoundEvent)
//   - Task: lifecycle of joinable tasks (StateChangeEvent)
//
// Connection state changes and errors have dedicated event types.
//
// # File Format
//
// Log files use CBOR encoding with .eqlog extension. The echoqual-log CLI
// tool provides viewing, filtering, and export capabilities.
package log
