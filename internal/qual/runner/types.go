// Package runner executes qualification plans against live transports.
package runner

import (
	"time"

	"github.com/echoqual/echoqual-go/internal/qual/loader"
	"github.com/echoqual/echoqual-go/pkg/echo"
)

// CheckResult is the outcome of one contract check.
type CheckResult struct {
	// Name describes the check (e.g., "send before connect").
	Name string

	// Passed indicates whether the observed behavior matched.
	Passed bool

	// Message explains a failure; empty on pass.
	Message string
}

// PhaseResult is the outcome of one phase of a case.
type PhaseResult struct {
	// Phase names the stage.
	Phase loader.Phase

	// Passed indicates whether the phase succeeded.
	Passed bool

	// Message explains a failure; empty on pass.
	Message string

	// Duration is how long the phase ran.
	Duration time.Duration

	// Checks holds per-check detail for the contract phase.
	Checks []CheckResult

	// Echo holds the escalation result for the echo phase.
	Echo *echo.Result
}

// CaseResult is the outcome of one qualification case.
type CaseResult struct {
	// ID is the case identifier.
	ID string

	// Name is the case name.
	Name string

	// Target is the resolved reflector target.
	Target string

	// Passed indicates whether every phase succeeded.
	Passed bool

	// Error holds a setup failure that prevented the case from running.
	Error error

	// Duration is how long the case ran.
	Duration time.Duration

	// Phases holds per-phase detail in execution order.
	Phases []PhaseResult
}

// SuiteResult aggregates the outcome of a full plan.
type SuiteResult struct {
	// SuiteName is the plan name.
	SuiteName string

	// Results holds per-case detail in execution order.
	Results []*CaseResult

	// PassCount is the number of passed cases.
	PassCount int

	// FailCount is the number of failed cases.
	FailCount int

	// Duration is how long the suite ran.
	Duration time.Duration
}

// Passed reports whether every case in the suite passed.
func (s *SuiteResult) Passed() bool {
	return s.FailCount == 0 && len(s.Results) > 0
}
