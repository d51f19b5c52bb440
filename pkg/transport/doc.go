// Package transport provides the pluggable blocking transport layer for echoqual.
//
// The transport layer defines a uniform contract (Conn) that every concrete
// network backend satisfies:
//   - Connect/Disconnect lifecycle bound to exactly one live connection
//   - Blocking Send/Receive bounded by per-operation timeouts
//   - Explicit error taxonomy (invalid parameter, not connected, timeout, closed)
//
// # Backends
//
//	┌────────────────────────────────┐
//	│     Echo Test Orchestrator     │
//	├────────────────────────────────┤
//	│         Conn contract          │
//	├──────┬──────┬─────┬─────┬──────┤
//	│ udp  │ tcp  │ tls │ ws  │ mem  │
//	└──────┴──────┴─────┴─────┴──────┘
//
// UDP is the primary qualification target class (one datagram per Send, one
// datagram per Receive, loss is expected). TCP and TLS exercise stream
// semantics where short reads are legitimate. WS carries one binary message
// per Send. Mem is an in-process loopback with a built-in echo peer, used by
// tests and the fault injector.
//
// # Semantics
//
// Send and Receive are blocking calls bounded by the timeouts carried in the
// Endpoint passed to Connect. A timeout surfaces as ErrTimeout, an orderly
// peer shutdown as ErrClosed; both are distinct from a short-but-positive
// result, which is valid data the caller must accumulate. There is no
// framing, no reliability layer, and no multiplexing here.
package transport
