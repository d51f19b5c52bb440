// Package task provides the joinable task primitive used to run test phases
// concurrently without leaking goroutines.
//
// Start schedules a function on its own goroutine and returns a Handle. The
// goroutine signals completion exactly once, just before it terminates; Join
// blocks the caller until that signal arrives or a timeout elapses.
//
// A Join timeout does not release the handle: the task may still be running,
// and its completion state must stay alive until the task itself finishes.
// The handle is instead flagged abandoned, every later Join is rejected, and
// a Tracker can report it as outstanding. Both sides therefore release their
// reference independently and the runtime reclaims the shared state only
// after the last one is gone.
package task
