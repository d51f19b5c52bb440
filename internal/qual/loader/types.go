// Package loader provides YAML qualification plan loading.
package loader

import (
	"fmt"
	"time"

	"github.com/echoqual/echoqual-go/pkg/echo"
	"github.com/echoqual/echoqual-go/pkg/transport"
)

// Phase names a stage of a qualification case.
type Phase string

const (
	// PhaseContract checks the transport contract: parameter validation,
	// state errors, double connect and disconnect.
	PhaseContract Phase = "contract"

	// PhaseEcho runs the progressive-size echo qualification.
	PhaseEcho Phase = "echo"

	// PhaseLeakCheck verifies no qualification task is still outstanding.
	PhaseLeakCheck Phase = "leakcheck"
)

// AllPhases is the default phase sequence when a case names none.
var AllPhases = []Phase{PhaseContract, PhaseEcho, PhaseLeakCheck}

// Plan represents a qualification plan loaded from YAML.
type Plan struct {
	// Name of the plan.
	Name string `yaml:"name"`

	// Description of what this plan qualifies.
	Description string `yaml:"description"`

	// Target is the default reflector target (e.g., "udp://bench-01:9000").
	// Cases may override it.
	Target string `yaml:"target"`

	// Defaults are settings applied to every case unless overridden.
	Defaults Settings `yaml:"defaults"`

	// Cases are the qualification cases in this plan.
	Cases []*Case `yaml:"cases"`
}

// Case represents a single qualification case.
type Case struct {
	// ID is the unique case identifier (e.g., "QC-UDP-001").
	ID string `yaml:"id"`

	// Name is a human-readable name for the case.
	Name string `yaml:"name"`

	// Description explains what the case validates.
	Description string `yaml:"description,omitempty"`

	// Target overrides the plan target for this case.
	Target string `yaml:"target,omitempty"`

	// Phases selects which stages to run. Empty means all phases.
	Phases []Phase `yaml:"phases,omitempty"`

	// Settings override the plan defaults for this case.
	Settings Settings `yaml:"settings,omitempty"`

	// Tags for categorizing cases.
	Tags []string `yaml:"tags,omitempty"`
}

// Settings holds the tunable parameters of a case. Zero values mean
// "use the next level down": case settings fall back to plan defaults,
// which fall back to the library defaults.
type Settings struct {
	// MaxPayloadSize is the largest payload to qualify.
	MaxPayloadSize int `yaml:"max_payload_size,omitempty"`

	// MaxRetry is the consecutive-loss budget. Nil means the library
	// default.
	MaxRetry *int `yaml:"max_retry,omitempty"`

	// RecvTimeout bounds a single receive (e.g., "5s").
	RecvTimeout string `yaml:"recv_timeout,omitempty"`

	// SendTimeout bounds a single send.
	SendTimeout string `yaml:"send_timeout,omitempty"`

	// RoundTimeout bounds a full receive-accumulate round.
	RoundTimeout string `yaml:"round_timeout,omitempty"`

	// Pattern selects the payload fill: "sequential" or "seeded".
	Pattern string `yaml:"pattern,omitempty"`

	// Seed for the seeded pattern.
	Seed uint64 `yaml:"seed,omitempty"`

	// ConnectRetries is how many extra connect attempts the runner makes
	// before giving up on a cold reflector.
	ConnectRetries int `yaml:"connect_retries,omitempty"`

	// JoinTimeout bounds the wait for the echo task (e.g., "2m").
	// Empty derives it from the round budget.
	JoinTimeout string `yaml:"join_timeout,omitempty"`
}

// Resolved is a fully merged, parsed case ready for execution.
type Resolved struct {
	ID             string
	Name           string
	Target         string
	Phases         []Phase
	Echo           echo.Config
	ConnectRetries int
	JoinTimeout    time.Duration
}

// LoadError provides details about a plan loading error.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	if e.File != "" {
		return e.File + ": " + e.Message
	}
	return e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// merge returns s with zero fields filled from d.
func (s Settings) merge(d Settings) Settings {
	if s.MaxPayloadSize == 0 {
		s.MaxPayloadSize = d.MaxPayloadSize
	}
	if s.MaxRetry == nil {
		s.MaxRetry = d.MaxRetry
	}
	if s.RecvTimeout == "" {
		s.RecvTimeout = d.RecvTimeout
	}
	if s.SendTimeout == "" {
		s.SendTimeout = d.SendTimeout
	}
	if s.RoundTimeout == "" {
		s.RoundTimeout = d.RoundTimeout
	}
	if s.Pattern == "" {
		s.Pattern = d.Pattern
	}
	if s.Seed == 0 {
		s.Seed = d.Seed
	}
	if s.ConnectRetries == 0 {
		s.ConnectRetries = d.ConnectRetries
	}
	if s.JoinTimeout == "" {
		s.JoinTimeout = d.JoinTimeout
	}
	return s
}

// Resolve merges a case with the plan defaults and parses durations.
func (p *Plan) Resolve(c *Case) (*Resolved, error) {
	s := c.Settings.merge(p.Defaults)

	target := c.Target
	if target == "" {
		target = p.Target
	}
	if target == "" {
		return nil, &LoadError{Message: fmt.Sprintf("case %s: no target", c.ID)}
	}
	if _, _, err := transport.ValidateTarget(target, transport.Endpoint{}); err != nil {
		return nil, &LoadError{
			Message: fmt.Sprintf("case %s: invalid target %q", c.ID, target),
			Cause:   err,
		}
	}

	phases := c.Phases
	if len(phases) == 0 {
		phases = AllPhases
	}
	for _, ph := range phases {
		switch ph {
		case PhaseContract, PhaseEcho, PhaseLeakCheck:
		default:
			return nil, &LoadError{Message: fmt.Sprintf("case %s: unknown phase %q", c.ID, ph)}
		}
	}

	cfg := echo.Config{
		MaxPayloadSize: s.MaxPayloadSize,
		Seed:           echo.SeedFromUint64(s.Seed),
	}
	if s.MaxRetry != nil {
		if *s.MaxRetry < 0 {
			return nil, &LoadError{Message: fmt.Sprintf("case %s: negative max_retry", c.ID)}
		}
		cfg.MaxRetry = echo.RetryBudget(*s.MaxRetry)
	}

	if s.Pattern != "" {
		pat, err := echo.ParsePattern(s.Pattern)
		if err != nil {
			return nil, &LoadError{
				Message: fmt.Sprintf("case %s: invalid pattern %q", c.ID, s.Pattern),
				Cause:   err,
			}
		}
		cfg.Pattern = pat
	}

	var err error
	if cfg.RecvTimeout, err = parseDuration(c.ID, "recv_timeout", s.RecvTimeout); err != nil {
		return nil, err
	}
	if cfg.SendTimeout, err = parseDuration(c.ID, "send_timeout", s.SendTimeout); err != nil {
		return nil, err
	}
	if cfg.RoundTimeout, err = parseDuration(c.ID, "round_timeout", s.RoundTimeout); err != nil {
		return nil, err
	}

	joinTimeout, err := parseDuration(c.ID, "join_timeout", s.JoinTimeout)
	if err != nil {
		return nil, err
	}

	return &Resolved{
		ID:             c.ID,
		Name:           c.Name,
		Target:         target,
		Phases:         phases,
		Echo:           cfg,
		ConnectRetries: s.ConnectRetries,
		JoinTimeout:    joinTimeout,
	}, nil
}

func parseDuration(caseID, field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, &LoadError{
			Message: fmt.Sprintf("case %s: invalid %s %q", caseID, field, value),
			Cause:   err,
		}
	}
	return d, nil
}
