// Package duration provides deadline accounting for bounded blocking
// operations.
//
// A Deadline tracks one time budget from its creation: the receive-accumulate
// loop uses it to bound a whole round across several short reads, and task
// joins use it to bound the wait for completion. Deadlines read monotonic
// time, so wall-clock adjustments do not distort them.
package duration
