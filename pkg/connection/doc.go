// Package connection provides dial resilience for qualification runs.
//
// The echo orchestrator treats a connect failure as fatal to its run; this
// package is the caller-side retry loop around whole runs. A Redialer wraps
// a dial function with a bounded number of attempts and exponential backoff
// between them, so a cold modem or a reflector still starting up does not
// fail a qualification on attempt one.
//
// # Backoff
//
//  1. Initial delay: 1 second
//  2. Exponential increase: 2s, 4s, 8s, 16s, 32s
//  3. Maximum delay: 60 seconds
//  4. Reset to 1s on success
//
// Jitter of up to 25% of the base delay spreads simultaneous redials apart:
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
package connection
