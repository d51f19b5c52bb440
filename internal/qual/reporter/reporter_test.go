package reporter_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/echoqual/echoqual-go/internal/qual/loader"
	"github.com/echoqual/echoqual-go/internal/qual/reporter"
	"github.com/echoqual/echoqual-go/internal/qual/runner"
	"github.com/echoqual/echoqual-go/pkg/echo"
)

func createCaseResult(id, name string, passed bool, err error) *runner.CaseResult {
	cr := &runner.CaseResult{
		ID:       id,
		Name:     name,
		Target:   "udp://bench-01:9000",
		Passed:   passed,
		Error:    err,
		Duration: 100 * time.Millisecond,
	}
	if err != nil {
		return cr
	}

	echoResult := &echo.Result{
		RunID:        "run-1",
		Pass:         passed,
		Size:         1460,
		RoundsPassed: 146,
		Duration:     90 * time.Millisecond,
	}
	message := ""
	if !passed {
		echoResult.Failure = echo.FailRetryBudget
		echoResult.FailureDetail = "size 512, 10 consecutive losses"
		echoResult.Losses = 11
		message = "RETRY_BUDGET_EXCEEDED: size 512, 10 consecutive losses"
	}

	cr.Phases = []runner.PhaseResult{
		{
			Phase:    loader.PhaseContract,
			Passed:   true,
			Duration: 10 * time.Millisecond,
			Checks: []runner.CheckResult{
				{Name: "connect with empty host", Passed: true},
				{Name: "send before connect", Passed: true},
			},
		},
		{
			Phase:    loader.PhaseEcho,
			Passed:   passed,
			Message:  message,
			Duration: 90 * time.Millisecond,
			Echo:     echoResult,
		},
	}
	return cr
}

func createSuiteResult() *runner.SuiteResult {
	return &runner.SuiteResult{
		SuiteName: "bench qualification",
		Results: []*runner.CaseResult{
			createCaseResult("QC-001", "Case 1", true, nil),
			createCaseResult("QC-002", "Case 2", false, nil),
		},
		PassCount: 1,
		FailCount: 1,
		Duration:  500 * time.Millisecond,
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func TestTextReporter(t *testing.T) {
	var buf bytes.Buffer
	r := reporter.NewTextReporter(&buf, false)

	r.ReportSuite(createSuiteResult())
	output := buf.String()

	if !strings.Contains(output, "=== Plan: bench qualification ===") {
		t.Error("Missing plan header")
	}
	if !strings.Contains(output, "[PASS] QC-001") {
		t.Error("Missing passed case")
	}
	if !strings.Contains(output, "[FAIL] QC-002") {
		t.Error("Missing failed case")
	}
	if !strings.Contains(output, "RETRY_BUDGET_EXCEEDED: size 512") {
		t.Error("Missing failed phase message")
	}
	if !strings.Contains(output, "Total:  2") {
		t.Error("Missing total count")
	}
	if !strings.Contains(output, "Pass Rate: 50.0%") {
		t.Error("Missing pass rate")
	}
	if !strings.Contains(output, "Verdict: FAIL") {
		t.Error("Missing verdict")
	}
}

func TestTextReporterVerbose(t *testing.T) {
	var buf bytes.Buffer
	r := reporter.NewTextReporter(&buf, true)

	r.ReportCase(createCaseResult("QC-001", "Case 1", true, nil))
	output := buf.String()

	if !strings.Contains(output, "[OK] connect with empty host") {
		t.Error("Missing contract check in verbose mode")
	}
	if !strings.Contains(output, "rounds=146") {
		t.Error("Missing echo round counts in verbose mode")
	}
}

func TestTextReporterCaseError(t *testing.T) {
	var buf bytes.Buffer
	r := reporter.NewTextReporter(&buf, false)

	r.ReportCase(createCaseResult("QC-003", "Case 3", false, &testError{msg: "bad target"}))
	output := buf.String()

	if !strings.Contains(output, "Error: bad target") {
		t.Error("Missing case error")
	}
}

func TestJSONReporter(t *testing.T) {
	var buf bytes.Buffer
	r := reporter.NewJSONReporter(&buf, true)

	r.ReportSuite(createSuiteResult())

	var result reporter.JSONSuiteResult
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if result.PlanName != "bench qualification" {
		t.Errorf("Expected plan name 'bench qualification', got %s", result.PlanName)
	}
	if result.Total != 2 || result.Passed != 1 || result.Failed != 1 {
		t.Errorf("Counts = %d/%d/%d, want 2/1/1", result.Total, result.Passed, result.Failed)
	}
	if result.PassRate != 50.0 {
		t.Errorf("Expected 50%% pass rate, got %.1f%%", result.PassRate)
	}
	if result.Verdict != "fail" {
		t.Errorf("Expected verdict fail, got %s", result.Verdict)
	}

	if len(result.Cases) != 2 {
		t.Fatalf("Expected 2 cases, got %d", len(result.Cases))
	}
	if result.Cases[0].Status != "passed" {
		t.Errorf("Case 1 should be passed, got %s", result.Cases[0].Status)
	}
	if result.Cases[1].Status != "failed" {
		t.Errorf("Case 2 should be failed, got %s", result.Cases[1].Status)
	}

	echoPhase := result.Cases[1].Phases[1]
	if echoPhase.Echo == nil {
		t.Fatal("Missing echo block on echo phase")
	}
	if echoPhase.Echo.Failure != "RETRY_BUDGET_EXCEEDED" {
		t.Errorf("Echo failure = %q, want RETRY_BUDGET_EXCEEDED", echoPhase.Echo.Failure)
	}
}

func TestJSONReporterSingleCase(t *testing.T) {
	var buf bytes.Buffer
	r := reporter.NewJSONReporter(&buf, false)

	r.ReportCase(createCaseResult("QC-001", "Case 1", true, nil))

	var jr reporter.JSONCaseResult
	if err := json.Unmarshal(buf.Bytes(), &jr); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if jr.ID != "QC-001" {
		t.Errorf("Expected ID QC-001, got %s", jr.ID)
	}
	if jr.Status != "passed" {
		t.Errorf("Expected status passed, got %s", jr.Status)
	}
	if jr.Phases[0].Echo != nil {
		t.Error("Contract phase should not carry an echo block")
	}
}

func TestJUnitReporter(t *testing.T) {
	var buf bytes.Buffer
	r := reporter.NewJUnitReporter(&buf)

	r.ReportSuite(createSuiteResult())
	output := buf.String()

	if !strings.HasPrefix(output, `<?xml version="1.0"`) {
		t.Error("Missing XML header")
	}
	if !strings.Contains(output, `<testsuite name="bench qualification"`) {
		t.Error("Missing testsuite element")
	}
	if !strings.Contains(output, `tests="2"`) {
		t.Error("Missing tests count")
	}
	if !strings.Contains(output, `failures="1"`) {
		t.Error("Missing failures count")
	}
	if !strings.Contains(output, `<testcase name="Case 1"`) {
		t.Error("Missing test case 1")
	}
	if !strings.Contains(output, `<failure message="echo: RETRY_BUDGET_EXCEEDED`) {
		t.Error("Missing failure element")
	}
	if !strings.Contains(output, `</testsuite>`) {
		t.Error("Missing closing testsuite tag")
	}
}

func TestJUnitReporterSingleCase(t *testing.T) {
	var buf bytes.Buffer
	r := reporter.NewJUnitReporter(&buf)

	r.ReportCase(createCaseResult("QC-001", "Case 1", true, nil))
	output := buf.String()

	if !strings.Contains(output, `<testsuite name="Single Case"`) {
		t.Error("Single case should be wrapped in suite")
	}
	if !strings.Contains(output, `tests="1"`) {
		t.Error("Should have 1 test")
	}
}

func TestXMLEscaping(t *testing.T) {
	var buf bytes.Buffer
	r := reporter.NewJUnitReporter(&buf)

	cr := &runner.CaseResult{
		ID:       "QC-<>&'\"",
		Name:     "Case with <special> & 'chars'",
		Passed:   true,
		Duration: 100 * time.Millisecond,
	}
	r.ReportCase(cr)
	output := buf.String()

	if strings.Contains(output, `<special>`) {
		t.Error("Special characters not escaped")
	}
	if !strings.Contains(output, "&lt;special&gt;") {
		t.Error("< and > should be escaped")
	}
	if !strings.Contains(output, "&amp;") {
		t.Error("& should be escaped")
	}
}
