// Package echoserver implements the echo reflectors the qualification kit
// runs against.
//
// A reflector sends every payload back to its source unchanged: one datagram
// per datagram for UDP, a verbatim byte stream for TCP and TLS, one binary
// message per message for WebSocket. All reflectors share the lifecycle
// shape Start(ctx)/Stop() with per-connection callbacks and protocol
// logging.
//
// Fault knobs (drop every Nth payload, corrupt every Nth payload) let a lab
// reproduce loss and corruption against real sockets instead of relying on
// an actually lossy network.
package echoserver
