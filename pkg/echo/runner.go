package echo

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/echoqual/echoqual-go/pkg/duration"
	"github.com/echoqual/echoqual-go/pkg/log"
	"github.com/echoqual/echoqual-go/pkg/transport"
)

// Escalation bounds and defaults.
const (
	// MinPayloadSize is where the escalation starts.
	MinPayloadSize = 10

	// DefaultMaxPayloadSize is the default escalation upper bound, one
	// unfragmented Ethernet UDP payload.
	DefaultMaxPayloadSize = 1460

	// DefaultMaxRetry is the default consecutive-loss budget.
	DefaultMaxRetry = 10

	// DefaultRoundTimeout bounds the accumulate loop of one round across
	// however many short reads it takes.
	DefaultRoundTimeout = 30 * time.Second
)

// Config parameterizes a qualification run.
type Config struct {
	// MaxPayloadSize is the escalation upper bound (default: 1460).
	MaxPayloadSize int

	// MaxRetry bounds how many consecutive lost rounds are tolerated
	// before the run is declared failed. Nil means the default budget of
	// 10; an explicit zero tolerates no loss at all.
	MaxRetry *int

	// RecvTimeout bounds each blocking Receive (default: 5s). Applied to
	// the endpoint unless the endpoint carries its own.
	RecvTimeout time.Duration

	// SendTimeout bounds each blocking Send (default: 5s).
	SendTimeout time.Duration

	// RoundTimeout bounds one round's whole accumulate loop (default: 30s).
	RoundTimeout time.Duration

	// Pattern selects the payload generator (default: sequential).
	Pattern Pattern

	// Seed feeds PatternSeeded.
	Seed [32]byte
}

// RetryBudget returns n for use as a Config.MaxRetry value.
func RetryBudget(n int) *int {
	return &n
}

func (c Config) withDefaults() Config {
	if c.MaxPayloadSize == 0 {
		c.MaxPayloadSize = DefaultMaxPayloadSize
	}
	if c.MaxRetry == nil {
		c.MaxRetry = RetryBudget(DefaultMaxRetry)
	}
	if c.RecvTimeout == 0 {
		c.RecvTimeout = transport.DefaultRecvTimeout
	}
	if c.SendTimeout == 0 {
		c.SendTimeout = transport.DefaultSendTimeout
	}
	if c.RoundTimeout == 0 {
		c.RoundTimeout = DefaultRoundTimeout
	}
	return c
}

// Runner owns one qualification run: the transport conn, the scratch
// buffers and the retry accounting. Buffers are private to the runner and
// reused across rounds; a runner performs one run at a time.
type Runner struct {
	conn   transport.Conn
	ep     transport.Endpoint
	cfg    Config
	logger log.Logger
	runID  string

	sendBuf []byte
	recvBuf []byte
}

// NewRunner prepares a run against the given conn and endpoint. The conn
// must be disconnected; the runner connects and disconnects it itself.
// The logger is optional.
func NewRunner(conn transport.Conn, ep transport.Endpoint, cfg Config, logger log.Logger) (*Runner, error) {
	if conn == nil {
		return nil, fmt.Errorf("%w: nil conn", transport.ErrInvalidParameter)
	}
	cfg = cfg.withDefaults()
	if cfg.MaxPayloadSize < MinPayloadSize {
		return nil, fmt.Errorf("%w: max payload size %d below minimum %d",
			transport.ErrInvalidParameter, cfg.MaxPayloadSize, MinPayloadSize)
	}
	if *cfg.MaxRetry < 0 {
		return nil, fmt.Errorf("%w: negative retry budget", transport.ErrInvalidParameter)
	}

	if ep.RecvTimeout == 0 {
		ep.RecvTimeout = cfg.RecvTimeout
	}
	if ep.SendTimeout == 0 {
		ep.SendTimeout = cfg.SendTimeout
	}
	if err := ep.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		conn:    conn,
		ep:      ep,
		cfg:     cfg,
		logger:  logger,
		runID:   uuid.New().String(),
		sendBuf: make([]byte, cfg.MaxPayloadSize),
		recvBuf: make([]byte, cfg.MaxPayloadSize),
	}
	if err := cfg.Pattern.Fill(r.sendBuf, cfg.Seed); err != nil {
		return nil, err
	}
	return r, nil
}

// RunID returns the unique identifier of this run.
func (r *Runner) RunID() string {
	return r.runID
}

// Run executes the escalation loop. Cancellation is honored between rounds;
// a blocking call in flight finishes under its own timeout first.
func (r *Runner) Run(ctx context.Context) *Result {
	result := &Result{
		RunID: r.runID,
		Size:  MinPayloadSize,
	}
	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
		r.logVerdict(result)
	}()

	r.logRunState("", "CONNECTING", "")
	if err := r.conn.Connect(ctx, r.ep); err != nil {
		result.Failure = FailConnect
		result.FailureDetail = err.Error()
		r.logRunState("CONNECTING", "FAILED", err.Error())
		return result
	}
	r.logRunState("CONNECTING", "RUNNING", "")

	// Mandatory cleanup: exactly one disconnect, whatever ends the loop.
	defer r.conn.Disconnect()

	consecutive := 0
	size := MinPayloadSize
	for size <= r.cfg.MaxPayloadSize {
		if err := ctx.Err(); err != nil {
			result.Failure = FailCanceled
			result.FailureDetail = err.Error()
			result.Size = size
			result.Retries = consecutive
			return result
		}

		attempt := consecutive + 1
		record := RoundRecord{Size: size, Attempt: attempt}

		n, err := r.conn.Send(r.sendBuf[:size])
		if err != nil || n != size {
			// A partial send is assumed backend misbehavior or link
			// severance; the run fails outright.
			record.Verdict = log.VerdictShortWrite
			result.Rounds = append(result.Rounds, record)
			result.Failure = FailSendShortWrite
			result.FailureDetail = fmt.Sprintf("size %d: sent %d bytes (%v)", size, n, err)
			result.Size = size
			result.Retries = consecutive
			r.logRound(record, consecutive)
			return result
		}

		received := r.receiveRound(size)
		record.Received = received

		if received != size {
			consecutive++
			result.Losses++
			record.Verdict = log.VerdictLoss
			result.Rounds = append(result.Rounds, record)
			r.logRound(record, consecutive)
			r.clearScratch(size)

			if consecutive > *r.cfg.MaxRetry {
				result.Failure = FailRetryBudget
				result.FailureDetail = fmt.Sprintf("size %d: %d consecutive losses exceed budget %d",
					size, consecutive, *r.cfg.MaxRetry)
				result.Size = size
				result.Retries = consecutive
				return result
			}
			// Retry the same size; sporadic datagram loss is tolerated.
			continue
		}

		if off, ok := firstMismatch(r.sendBuf[:size], r.recvBuf[:size]); ok {
			// Corruption is a correctness bug: retrying cannot fix it
			// and would only mask it.
			record.Verdict = log.VerdictCorrupt
			result.Rounds = append(result.Rounds, record)
			result.Failure = FailCorruption
			result.FailureDetail = fmt.Sprintf("size %d: byte %d is 0x%02x, want 0x%02x",
				size, off, r.recvBuf[off], r.sendBuf[off])
			result.Size = size
			result.Retries = consecutive
			r.logRound(record, consecutive)
			return result
		}

		record.Verdict = log.VerdictPass
		result.Rounds = append(result.Rounds, record)
		r.logRound(record, 0)
		r.clearScratch(size)

		consecutive = 0
		result.RoundsPassed++
		result.Size = size
		size++
	}

	result.Pass = true
	result.Size = r.cfg.MaxPayloadSize
	return result
}

// receiveRound accumulates up to size bytes for the current round. Short
// positive reads keep the loop going; a timeout, close, error or zero read
// ends the round with whatever arrived. The round deadline guards against a
// backend trickling bytes forever.
func (r *Runner) receiveRound(size int) int {
	deadline, err := duration.NewDeadline(r.cfg.RoundTimeout)
	if err != nil {
		return 0
	}

	got := 0
	for got < size && !deadline.Expired() {
		n, err := r.conn.Receive(r.recvBuf[got:size])
		if err != nil || n <= 0 {
			break
		}
		got += n
	}
	return got
}

// clearScratch zeroes the receive buffer so stale bytes from an earlier
// round cannot mask a receive failure.
func (r *Runner) clearScratch(size int) {
	for i := 0; i < size; i++ {
		r.recvBuf[i] = 0
	}
}

// firstMismatch returns the offset of the first differing byte.
func firstMismatch(want, got []byte) (int, bool) {
	if bytes.Equal(want, got) {
		return 0, false
	}
	for i := range want {
		if want[i] != got[i] {
			return i, true
		}
	}
	return 0, false
}

func (r *Runner) logRound(record RoundRecord, consecutive int) {
	if r.logger == nil {
		return
	}
	r.logger.Log(log.Event{
		Timestamp: time.Now(),
		RunID:     r.runID,
		Layer:     log.LayerEcho,
		Category:  log.CategoryRound,
		Round: &log.RoundEvent{
			Size:        record.Size,
			Attempt:     record.Attempt,
			Consecutive: consecutive,
			Verdict:     record.Verdict,
			Received:    record.Received,
		},
	})
}

func (r *Runner) logRunState(oldState, newState, reason string) {
	if r.logger == nil {
		return
	}
	r.logger.Log(log.Event{
		Timestamp: time.Now(),
		RunID:     r.runID,
		Layer:     log.LayerEcho,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityRun,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

func (r *Runner) logVerdict(result *Result) {
	if r.logger == nil {
		return
	}
	if result.Pass {
		r.logRunState("RUNNING", "PASSED", "")
		return
	}
	r.logger.Log(log.Event{
		Timestamp: time.Now(),
		RunID:     r.runID,
		Layer:     log.LayerEcho,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerEcho,
			Message: result.Failure.String(),
			Context: result.FailureDetail,
		},
	})
}
