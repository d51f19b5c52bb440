package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/echoqual/echoqual-go/pkg/log"
)

// FilterOptions selects which events survive into the output file. All set
// fields combine with AND; zero values match everything.
type FilterOptions struct {
	Output string

	// Identity and taxonomy filters, applied by the reader.
	ConnID    string
	RunID     string
	Scheme    string
	TimeStart string
	TimeEnd   string
	Layer     string
	Direction string
	Category  string

	// Round filters. When any of these is set, only echo-round events
	// whose verdict and size match are kept; events that carry no round
	// record are dropped. This is how a failing run is boiled down to
	// the rounds that went wrong.
	Verdict string
	MinSize int
	MaxSize int
}

// RunFilter streams the events matching opts into a new .eqlog file.
func RunFilter(path string, opts FilterOptions) error {
	filter, err := buildEventFilter(opts)
	if err != nil {
		return err
	}
	rounds, err := buildRoundMatcher(opts)
	if err != nil {
		return err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	out, err := log.NewFileLogger(opts.Output)
	if err != nil {
		return fmt.Errorf("failed to create output logger: %w", err)
	}
	defer out.Close()

	kept, seen := 0, 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		seen++
		if !rounds.match(event) {
			continue
		}
		out.Log(event)
		kept++
	}

	fmt.Printf("Kept %d of %d events in %s\n", kept, seen, opts.Output)
	return nil
}

// buildEventFilter converts the string-typed options into the reader's
// event filter.
func buildEventFilter(opts FilterOptions) (log.Filter, error) {
	filter := log.Filter{
		ConnectionID: opts.ConnID,
		RunID:        opts.RunID,
		Scheme:       opts.Scheme,
	}

	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}
	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}

	if opts.Layer != "" {
		l, err := parseLayer(opts.Layer)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Layer = &l
	}
	if opts.Direction != "" {
		d, err := parseDirection(opts.Direction)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Direction = &d
	}
	if opts.Category != "" {
		c, err := parseCategory(opts.Category)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &c
	}

	return filter, nil
}

// roundMatcher narrows the stream to echo rounds of interest.
type roundMatcher struct {
	verdict *log.RoundVerdict
	minSize int
	maxSize int
}

func buildRoundMatcher(opts FilterOptions) (roundMatcher, error) {
	m := roundMatcher{minSize: opts.MinSize, maxSize: opts.MaxSize}
	if opts.Verdict != "" {
		v, err := parseVerdict(opts.Verdict)
		if err != nil {
			return roundMatcher{}, err
		}
		m.verdict = &v
	}
	if m.minSize < 0 || m.maxSize < 0 {
		return roundMatcher{}, fmt.Errorf("invalid size bound: min %d, max %d", m.minSize, m.maxSize)
	}
	if m.minSize > 0 && m.maxSize > 0 && m.minSize > m.maxSize {
		return roundMatcher{}, fmt.Errorf("invalid size bounds: min %d exceeds max %d", m.minSize, m.maxSize)
	}
	return m, nil
}

func (m roundMatcher) active() bool {
	return m.verdict != nil || m.minSize > 0 || m.maxSize > 0
}

func (m roundMatcher) match(event log.Event) bool {
	if !m.active() {
		return true
	}
	if event.Round == nil {
		return false
	}
	if m.verdict != nil && event.Round.Verdict != *m.verdict {
		return false
	}
	if m.minSize > 0 && event.Round.Size < m.minSize {
		return false
	}
	if m.maxSize > 0 && event.Round.Size > m.maxSize {
		return false
	}
	return true
}

// parseVerdict parses a round verdict string (case-insensitive).
func parseVerdict(s string) (log.RoundVerdict, error) {
	switch strings.ToLower(s) {
	case "pass":
		return log.VerdictPass, nil
	case "loss":
		return log.VerdictLoss, nil
	case "corrupt":
		return log.VerdictCorrupt, nil
	case "short-write", "short_write":
		return log.VerdictShortWrite, nil
	default:
		return 0, fmt.Errorf("invalid verdict: %s (must be pass, loss, corrupt, or short-write)", s)
	}
}
