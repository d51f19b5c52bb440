package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/echoqual/echoqual-go/internal/qual/loader"
	"github.com/echoqual/echoqual-go/pkg/connection"
	"github.com/echoqual/echoqual-go/pkg/echo"
	"github.com/echoqual/echoqual-go/pkg/log"
	"github.com/echoqual/echoqual-go/pkg/task"
	"github.com/echoqual/echoqual-go/pkg/transport"
)

// joinSlack pads the derived join timeout beyond the worst-case run budget,
// so a healthy run never trips it.
const joinSlack = 10 * time.Second

// Runner executes qualification plans. Echo runs are tracked as joinable
// tasks; an abandoned run is reported and never retried.
type Runner struct {
	logger  log.Logger
	tracker *task.Tracker

	// Backoff configures the delay between connect attempts. Zero values
	// select the connection package defaults.
	Backoff connection.BackoffConfig
}

// New creates a plan runner. The logger is optional.
func New(logger log.Logger) *Runner {
	return &Runner{
		logger:  logger,
		tracker: task.NewTracker(logger, ""),
	}
}

// Tracker exposes the task tracker, mainly for diagnostics.
func (r *Runner) Tracker() *task.Tracker {
	return r.tracker
}

// RunPlan executes every case of the plan in order.
func (r *Runner) RunPlan(ctx context.Context, plan *loader.Plan) *SuiteResult {
	suite := &SuiteResult{SuiteName: plan.Name}
	start := time.Now()

	for _, c := range plan.Cases {
		cr := r.runCase(ctx, plan, c)
		suite.Results = append(suite.Results, cr)
		if cr.Passed {
			suite.PassCount++
		} else {
			suite.FailCount++
		}
	}

	suite.Duration = time.Since(start)
	return suite
}

// runCase resolves and executes one case. Phases run in order; a failed
// phase does not stop the later ones, so a report shows the full picture.
func (r *Runner) runCase(ctx context.Context, plan *loader.Plan, c *loader.Case) *CaseResult {
	cr := &CaseResult{ID: c.ID, Name: c.Name}
	start := time.Now()
	defer func() { cr.Duration = time.Since(start) }()

	res, err := plan.Resolve(c)
	if err != nil {
		cr.Error = err
		return cr
	}
	cr.Target = res.Target

	cr.Passed = true
	for _, phase := range res.Phases {
		var pr PhaseResult
		switch phase {
		case loader.PhaseContract:
			pr = r.runContract(ctx, res)
		case loader.PhaseEcho:
			pr = r.runEcho(ctx, res)
		case loader.PhaseLeakCheck:
			pr = r.runLeakCheck()
		}
		cr.Phases = append(cr.Phases, pr)
		if !pr.Passed {
			cr.Passed = false
		}
	}

	return cr
}

// contractEndpoint builds the endpoint for a resolved case.
func contractEndpoint(res *loader.Resolved) (transport.Conn, transport.Endpoint, error) {
	return transport.ParseTarget(res.Target, transport.Endpoint{
		RecvTimeout: res.Echo.RecvTimeout,
		SendTimeout: res.Echo.SendTimeout,
	})
}

// runContract exercises the transport contract on a fresh conn: parameter
// validation, state errors, and the connect/disconnect lifecycle.
func (r *Runner) runContract(ctx context.Context, res *loader.Resolved) PhaseResult {
	pr := PhaseResult{Phase: loader.PhaseContract}
	start := time.Now()
	defer func() { pr.Duration = time.Since(start) }()

	conn, ep, err := contractEndpoint(res)
	if err != nil {
		pr.Message = err.Error()
		return pr
	}

	buf := make([]byte, 16)
	check := func(name string, got error, want error) {
		c := CheckResult{Name: name, Passed: errors.Is(got, want)}
		if !c.Passed {
			c.Message = fmt.Sprintf("got %v, want %v", got, want)
		}
		pr.Checks = append(pr.Checks, c)
	}

	// Disconnected-state behavior.
	check("connect rejects empty host",
		conn.Connect(ctx, transport.Endpoint{Port: ep.Port}), transport.ErrInvalidParameter)
	errSend := retErr(conn.Send(buf))
	check("send before connect", errSend, transport.ErrNotConnected)
	errRecv := retErr(conn.Receive(buf))
	check("receive before connect", errRecv, transport.ErrNotConnected)
	check("disconnect before connect", conn.Disconnect(), transport.ErrNotConnected)

	// Connected-state behavior. Without a reachable reflector the rest of
	// the contract cannot be observed.
	if err := conn.Connect(ctx, ep); err != nil {
		pr.Checks = append(pr.Checks, CheckResult{
			Name:    "connect succeeds",
			Message: err.Error(),
		})
		pr.Message = fmt.Sprintf("connect %s: %v", res.Target, err)
		return pr
	}
	pr.Checks = append(pr.Checks, CheckResult{Name: "connect succeeds", Passed: true})

	check("double connect rejected", conn.Connect(ctx, ep), transport.ErrAlreadyConnected)
	check("send rejects nil buffer", retErr(conn.Send(nil)), transport.ErrInvalidParameter)
	check("receive rejects empty buffer", retErr(conn.Receive([]byte{})), transport.ErrInvalidParameter)

	if err := conn.Disconnect(); err != nil {
		pr.Checks = append(pr.Checks, CheckResult{
			Name:    "disconnect succeeds",
			Message: err.Error(),
		})
	} else {
		pr.Checks = append(pr.Checks, CheckResult{Name: "disconnect succeeds", Passed: true})
	}

	check("double disconnect rejected", conn.Disconnect(), transport.ErrNotConnected)
	check("send after disconnect", retErr(conn.Send(buf)), transport.ErrNotConnected)
	check("receive after disconnect", retErr(conn.Receive(buf)), transport.ErrNotConnected)

	pr.Passed = true
	for _, c := range pr.Checks {
		if !c.Passed {
			pr.Passed = false
			pr.Message = fmt.Sprintf("%s: %s", c.Name, c.Message)
			break
		}
	}
	return pr
}

func retErr(_ int, err error) error {
	return err
}

// runEcho executes the escalation run inside a joinable task. Connect
// failures are retried per the plan's connect budget; an abandoned task
// (join timeout) is fatal and never retried, because the runner may still
// own the conn.
func (r *Runner) runEcho(ctx context.Context, res *loader.Resolved) PhaseResult {
	pr := PhaseResult{Phase: loader.PhaseEcho}
	start := time.Now()
	defer func() { pr.Duration = time.Since(start) }()

	joinTimeout := res.JoinTimeout
	if joinTimeout == 0 {
		joinTimeout = deriveJoinTimeout(res.Echo)
	}

	redialer := connection.NewRedialer(connection.RedialerConfig{
		MaxAttempts: res.ConnectRetries + 1,
		Backoff:     r.Backoff,
	})

	var (
		result  *echo.Result
		joinErr error
	)
	attempt := func(ctx context.Context) error {
		conn, ep, err := contractEndpoint(res)
		if err != nil {
			return err
		}
		er, err := echo.NewRunner(conn, ep, res.Echo, r.logger)
		if err != nil {
			return err
		}

		handle := r.tracker.Go(func() {
			result = er.Run(ctx)
		})
		if err := handle.Join(joinTimeout); err != nil {
			// The task still owns the conn; touching result would race.
			joinErr = err
			return nil
		}

		if result.Failure == echo.FailConnect {
			return fmt.Errorf("%s: %s", result.Failure, result.FailureDetail)
		}
		return nil
	}

	if err := redialer.Dial(ctx, attempt); err != nil {
		pr.Message = err.Error()
		pr.Echo = result
		return pr
	}
	if joinErr != nil {
		pr.Message = fmt.Sprintf("qualification task not done after %s: %v", joinTimeout, joinErr)
		return pr
	}

	pr.Echo = result
	if !result.Pass {
		pr.Message = fmt.Sprintf("%s: %s", result.Failure, result.FailureDetail)
		return pr
	}

	pr.Passed = true
	return pr
}

// deriveJoinTimeout bounds the echo task by its own worst case: every size
// may burn the full retry budget, each round bounded by the round timeout.
func deriveJoinTimeout(cfg echo.Config) time.Duration {
	maxSize := cfg.MaxPayloadSize
	if maxSize == 0 {
		maxSize = echo.DefaultMaxPayloadSize
	}
	maxRetry := echo.DefaultMaxRetry
	if cfg.MaxRetry != nil {
		maxRetry = *cfg.MaxRetry
	}
	roundTimeout := cfg.RoundTimeout
	if roundTimeout == 0 {
		roundTimeout = echo.DefaultRoundTimeout
	}

	sizes := maxSize - echo.MinPayloadSize + 1
	rounds := sizes + maxRetry
	return time.Duration(rounds)*roundTimeout + joinSlack
}

// runLeakCheck verifies that no qualification task is still outstanding.
func (r *Runner) runLeakCheck() PhaseResult {
	pr := PhaseResult{Phase: loader.PhaseLeakCheck}
	start := time.Now()
	defer func() { pr.Duration = time.Since(start) }()

	stats := r.tracker.Stats()
	if !stats.Clean() {
		pr.Message = fmt.Sprintf("%d task(s) outstanding (%d abandoned), oldest %s",
			stats.Outstanding, stats.Abandoned, stats.OldestOutstanding.Round(time.Millisecond))
		return pr
	}

	pr.Passed = true
	if stats.Abandoned > 0 {
		pr.Message = fmt.Sprintf("%d task(s) abandoned before finishing", stats.Abandoned)
	}
	return pr
}
