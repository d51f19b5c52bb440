package echo

import (
	"time"

	"github.com/echoqual/echoqual-go/pkg/log"
)

// FailureCategory classifies how a run ended.
type FailureCategory uint8

const (
	// FailNone indicates the run passed.
	FailNone FailureCategory = 0

	// FailConnect indicates the connection could not be established.
	FailConnect FailureCategory = 1

	// FailSendShortWrite indicates a Send accepted fewer bytes than
	// requested. Never retried.
	FailSendShortWrite FailureCategory = 2

	// FailRetryBudget indicates consecutive receive losses exceeded the
	// configured budget.
	FailRetryBudget FailureCategory = 3

	// FailCorruption indicates received bytes differed from sent bytes.
	// Never retried.
	FailCorruption FailureCategory = 4

	// FailCanceled indicates the run context was canceled between rounds.
	FailCanceled FailureCategory = 5
)

// String returns the failure category name.
func (f FailureCategory) String() string {
	switch f {
	case FailNone:
		return "NONE"
	case FailConnect:
		return "CONNECT_FAILURE"
	case FailSendShortWrite:
		return "SEND_SHORT_WRITE"
	case FailRetryBudget:
		return "RETRY_BUDGET_EXCEEDED"
	case FailCorruption:
		return "DATA_CORRUPTION"
	case FailCanceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

// RoundRecord is the outcome of one round of the escalation loop.
type RoundRecord struct {
	// Size is the payload size exercised.
	Size int

	// Attempt is 1 for the first try at this size, incremented per retry.
	Attempt int

	// Verdict is the round outcome.
	Verdict log.RoundVerdict

	// Received is the number of bytes accumulated.
	Received int
}

// Result is the verdict of one qualification run.
type Result struct {
	// RunID uniquely identifies the run across logs and reports.
	RunID string

	// Pass is true only if the escalation walked past the configured
	// maximum size without a fatal failure.
	Pass bool

	// Failure classifies how a failed run ended; FailNone on pass.
	Failure FailureCategory

	// FailureDetail carries the context of the failure: size in progress,
	// retry count so far, offset of a corrupted byte.
	FailureDetail string

	// Size is the payload size in progress when the run ended. On pass
	// this is the configured maximum.
	Size int

	// Retries is the consecutive-failure counter when the run ended.
	Retries int

	// RoundsPassed counts successful rounds.
	RoundsPassed int

	// Losses counts rounds lost to missing or short terminal receives.
	Losses int

	// Duration is the wall time of the whole run including connect and
	// disconnect.
	Duration time.Duration

	// Rounds holds the per-round records in execution order.
	Rounds []RoundRecord
}
