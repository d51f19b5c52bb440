// Package echo implements the progressive-size echo qualification run.
//
// A Runner drives one blocking send/receive/compare loop against a remote
// echo reflector through the transport contract. The payload size escalates
// by one byte per successful round, from MinPayloadSize up to the configured
// maximum, which surfaces size-dependent bugs such as fragmentation
// boundaries and buffer truncation.
//
// The loop distinguishes three failure classes and treats them differently:
//
//   - Loss: the round did not accumulate a full payload. Expected on lossy
//     links, retried at the same size up to the consecutive-failure budget.
//   - Corruption: the payload came back with different bytes. A correctness
//     bug; failing immediately keeps retries from masking it.
//   - Short write: the backend accepted fewer bytes than requested. Assumed
//     link severance or backend misbehavior, fatal to the run.
//
// Execution is strictly single-threaded and blocking; the transport conn is
// owned by the runner between Connect and the unconditional final Disconnect.
package echo
