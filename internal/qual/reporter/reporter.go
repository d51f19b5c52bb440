// Package reporter provides qualification result formatting and output.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/echoqual/echoqual-go/internal/qual/runner"
)

// Reporter formats and outputs qualification results.
type Reporter interface {
	// ReportSuite reports results for a whole plan run.
	ReportSuite(result *runner.SuiteResult)

	// ReportCase reports results for a single case.
	ReportCase(result *runner.CaseResult)
}

// TextReporter outputs human-readable text reports.
type TextReporter struct {
	writer  io.Writer
	verbose bool
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(w io.Writer, verbose bool) *TextReporter {
	return &TextReporter{
		writer:  w,
		verbose: verbose,
	}
}

// ReportSuite reports suite results in text format.
func (r *TextReporter) ReportSuite(result *runner.SuiteResult) {
	fmt.Fprintf(r.writer, "\n=== Plan: %s ===\n", result.SuiteName)
	fmt.Fprintf(r.writer, "Duration: %s\n", result.Duration.Round(time.Millisecond))
	fmt.Fprintf(r.writer, "\n")

	for _, cr := range result.Results {
		r.ReportCase(cr)
	}

	// Summary
	fmt.Fprintf(r.writer, "\n--- Summary ---\n")
	fmt.Fprintf(r.writer, "Total:  %d\n", len(result.Results))
	fmt.Fprintf(r.writer, "Passed: %d\n", result.PassCount)
	fmt.Fprintf(r.writer, "Failed: %d\n", result.FailCount)

	total := result.PassCount + result.FailCount
	if total > 0 {
		rate := float64(result.PassCount) / float64(total) * 100
		fmt.Fprintf(r.writer, "Pass Rate: %.1f%%\n", rate)
	}

	verdict := "FAIL"
	if result.Passed() {
		verdict = "PASS"
	}
	fmt.Fprintf(r.writer, "Verdict: %s\n", verdict)
}

// ReportCase reports a single case result in text format.
func (r *TextReporter) ReportCase(result *runner.CaseResult) {
	status := "FAIL"
	if result.Passed {
		status = "PASS"
	}

	fmt.Fprintf(r.writer, "[%s] %s - %s @ %s (%s)\n",
		status, result.ID, result.Name, result.Target,
		result.Duration.Round(time.Millisecond))

	if result.Error != nil {
		fmt.Fprintf(r.writer, "       Error: %v\n", result.Error)
	}

	for _, pr := range result.Phases {
		phaseStatus := "PASS"
		if !pr.Passed {
			phaseStatus = "FAIL"
		}
		fmt.Fprintf(r.writer, "    [%s] %s (%s)\n",
			phaseStatus, pr.Phase, pr.Duration.Round(time.Millisecond))

		if !pr.Passed && pr.Message != "" {
			fmt.Fprintf(r.writer, "           %s\n", pr.Message)
		}

		if !r.verbose {
			continue
		}
		for _, c := range pr.Checks {
			checkStatus := "OK"
			if !c.Passed {
				checkStatus = "FAILED"
			}
			fmt.Fprintf(r.writer, "           [%s] %s\n", checkStatus, c.Name)
		}
		if pr.Echo != nil {
			fmt.Fprintf(r.writer, "           rounds=%d losses=%d final_size=%d\n",
				pr.Echo.RoundsPassed, pr.Echo.Losses, pr.Echo.Size)
		}
	}
}

// JSONReporter outputs JSON-formatted reports.
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(w io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: w,
		pretty: pretty,
	}
}

// JSONSuiteResult is the JSON representation of a plan run.
type JSONSuiteResult struct {
	PlanName string           `json:"plan_name"`
	Duration string           `json:"duration"`
	Total    int              `json:"total"`
	Passed   int              `json:"passed"`
	Failed   int              `json:"failed"`
	PassRate float64          `json:"pass_rate"`
	Verdict  string           `json:"verdict"`
	Cases    []JSONCaseResult `json:"cases"`
}

// JSONCaseResult is the JSON representation of a case result.
type JSONCaseResult struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Target   string            `json:"target"`
	Status   string            `json:"status"`
	Duration string            `json:"duration"`
	Error    string            `json:"error,omitempty"`
	Phases   []JSONPhaseResult `json:"phases,omitempty"`
}

// JSONPhaseResult is the JSON representation of a phase result.
type JSONPhaseResult struct {
	Phase    string      `json:"phase"`
	Status   string      `json:"status"`
	Duration string      `json:"duration"`
	Message  string      `json:"message,omitempty"`
	Checks   []JSONCheck `json:"checks,omitempty"`
	Echo     *JSONEcho   `json:"echo,omitempty"`
}

// JSONCheck is the JSON representation of a contract check.
type JSONCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

// JSONEcho is the JSON representation of an escalation run.
type JSONEcho struct {
	RunID        string `json:"run_id"`
	Pass         bool   `json:"pass"`
	Failure      string `json:"failure,omitempty"`
	Detail       string `json:"detail,omitempty"`
	Size         int    `json:"size"`
	RoundsPassed int    `json:"rounds_passed"`
	Losses       int    `json:"losses"`
	Duration     string `json:"duration"`
}

// ReportSuite reports suite results in JSON format.
func (r *JSONReporter) ReportSuite(result *runner.SuiteResult) {
	total := result.PassCount + result.FailCount
	var passRate float64
	if total > 0 {
		passRate = float64(result.PassCount) / float64(total) * 100
	}

	verdict := "fail"
	if result.Passed() {
		verdict = "pass"
	}

	jr := JSONSuiteResult{
		PlanName: result.SuiteName,
		Duration: result.Duration.Round(time.Millisecond).String(),
		Total:    len(result.Results),
		Passed:   result.PassCount,
		Failed:   result.FailCount,
		PassRate: passRate,
		Verdict:  verdict,
		Cases:    make([]JSONCaseResult, 0, len(result.Results)),
	}

	for _, cr := range result.Results {
		jr.Cases = append(jr.Cases, r.caseToJSON(cr))
	}

	r.writeJSON(jr)
}

// ReportCase reports a single case result in JSON format.
func (r *JSONReporter) ReportCase(result *runner.CaseResult) {
	r.writeJSON(r.caseToJSON(result))
}

func (r *JSONReporter) caseToJSON(result *runner.CaseResult) JSONCaseResult {
	status := "failed"
	if result.Passed {
		status = "passed"
	}

	jr := JSONCaseResult{
		ID:       result.ID,
		Name:     result.Name,
		Target:   result.Target,
		Status:   status,
		Duration: result.Duration.Round(time.Millisecond).String(),
	}
	if result.Error != nil {
		jr.Error = result.Error.Error()
	}

	for _, pr := range result.Phases {
		phaseStatus := "passed"
		if !pr.Passed {
			phaseStatus = "failed"
		}

		jpr := JSONPhaseResult{
			Phase:    string(pr.Phase),
			Status:   phaseStatus,
			Duration: pr.Duration.Round(time.Millisecond).String(),
			Message:  pr.Message,
		}
		for _, c := range pr.Checks {
			jpr.Checks = append(jpr.Checks, JSONCheck{
				Name:    c.Name,
				Passed:  c.Passed,
				Message: c.Message,
			})
		}
		if pr.Echo != nil {
			je := &JSONEcho{
				RunID:        pr.Echo.RunID,
				Pass:         pr.Echo.Pass,
				Detail:       pr.Echo.FailureDetail,
				Size:         pr.Echo.Size,
				RoundsPassed: pr.Echo.RoundsPassed,
				Losses:       pr.Echo.Losses,
				Duration:     pr.Echo.Duration.Round(time.Millisecond).String(),
			}
			if !pr.Echo.Pass {
				je.Failure = pr.Echo.Failure.String()
			}
			jpr.Echo = je
		}

		jr.Phases = append(jr.Phases, jpr)
	}

	return jr
}

func (r *JSONReporter) writeJSON(v any) {
	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		fmt.Fprintf(r.writer, `{"error": "failed to marshal: %s"}`, err)
		return
	}

	fmt.Fprintln(r.writer, string(data))
}

// JUnitReporter outputs JUnit XML format for CI integration.
type JUnitReporter struct {
	writer io.Writer
}

// NewJUnitReporter creates a new JUnit reporter.
func NewJUnitReporter(w io.Writer) *JUnitReporter {
	return &JUnitReporter{writer: w}
}

// ReportSuite reports suite results in JUnit XML format.
func (r *JUnitReporter) ReportSuite(result *runner.SuiteResult) {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString("\n")

	fmt.Fprintf(&b, `<testsuite name="%s" tests="%d" failures="%d" time="%.3f">`,
		escapeXML(result.SuiteName),
		len(result.Results),
		result.FailCount,
		result.Duration.Seconds())
	b.WriteString("\n")

	for _, cr := range result.Results {
		fmt.Fprintf(&b, `  <testcase name="%s" classname="%s" time="%.3f">`,
			escapeXML(cr.Name),
			escapeXML(cr.ID),
			cr.Duration.Seconds())
		b.WriteString("\n")

		if !cr.Passed {
			fmt.Fprintf(&b, `    <failure message="%s">`, escapeXML(failureMessage(cr)))
			b.WriteString("\n")

			// Phase details in CDATA
			b.WriteString("      <![CDATA[")
			for _, pr := range cr.Phases {
				if !pr.Passed {
					fmt.Fprintf(&b, "Phase %s: %s\n", pr.Phase, pr.Message)
				}
			}
			b.WriteString("]]>\n")
			b.WriteString("    </failure>\n")
		}

		b.WriteString("  </testcase>\n")
	}

	b.WriteString("</testsuite>\n")

	fmt.Fprint(r.writer, b.String())
}

// ReportCase reports a single case in JUnit format (wraps in minimal testsuite).
func (r *JUnitReporter) ReportCase(result *runner.CaseResult) {
	suite := &runner.SuiteResult{
		SuiteName: "Single Case",
		Results:   []*runner.CaseResult{result},
		Duration:  result.Duration,
	}
	if result.Passed {
		suite.PassCount = 1
	} else {
		suite.FailCount = 1
	}
	r.ReportSuite(suite)
}

func failureMessage(cr *runner.CaseResult) string {
	if cr.Error != nil {
		return cr.Error.Error()
	}
	for _, pr := range cr.Phases {
		if !pr.Passed {
			return fmt.Sprintf("%s: %s", pr.Phase, pr.Message)
		}
	}
	return "failed"
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
