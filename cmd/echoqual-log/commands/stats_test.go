package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/echoqual/echoqual-go/pkg/log"
)

func TestStatsCountsByLayer(t *testing.T) {
	ts := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Layer: log.LayerTransport, Category: log.CategoryMessage},
		{Timestamp: ts, Layer: log.LayerTransport, Category: log.CategoryMessage},
		{Timestamp: ts, Layer: log.LayerEcho, Category: log.CategoryRound},
		{Timestamp: ts, Layer: log.LayerTask, Category: log.CategoryState},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	err := RunStats(path, &buf)
	if err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()

	// Check layer counts
	if !strings.Contains(output, "TRANSPORT:") {
		t.Error("expected TRANSPORT layer in output")
	}
	if !strings.Contains(output, "ECHO:") {
		t.Error("expected ECHO layer in output")
	}
	if !strings.Contains(output, "TASK:") {
		t.Error("expected TASK layer in output")
	}
}

func TestStatsCountsByVerdict(t *testing.T) {
	ts := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Category: log.CategoryRound, Round: &log.RoundEvent{Size: 10, Verdict: log.VerdictPass}},
		{Timestamp: ts, Category: log.CategoryRound, Round: &log.RoundEvent{Size: 20, Verdict: log.VerdictPass}},
		{Timestamp: ts, Category: log.CategoryRound, Round: &log.RoundEvent{Size: 30, Verdict: log.VerdictLoss}},
		{Timestamp: ts, Category: log.CategoryRound, Round: &log.RoundEvent{Size: 30, Verdict: log.VerdictCorrupt}},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	err := RunStats(path, &buf)
	if err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "Rounds: 4") {
		t.Errorf("expected 4 rounds in output, got:\n%s", output)
	}
	if !strings.Contains(output, "PASS:") {
		t.Error("expected PASS verdict in output")
	}
	if !strings.Contains(output, "LOSS:") {
		t.Error("expected LOSS verdict in output")
	}
	if !strings.Contains(output, "CORRUPT:") {
		t.Error("expected CORRUPT verdict in output")
	}
}

func TestStatsCountsConnections(t *testing.T) {
	ts := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, ConnectionID: "conn-aaaa-bbbb", Category: log.CategoryMessage, Scheme: "udp"},
		{Timestamp: ts.Add(time.Second), ConnectionID: "conn-aaaa-bbbb", Category: log.CategoryMessage},
		{Timestamp: ts, ConnectionID: "conn-cccc-dddd", Category: log.CategoryMessage},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	err := RunStats(path, &buf)
	if err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()

	// Check connection count
	if !strings.Contains(output, "Connections: 2") {
		t.Errorf("expected 2 connections in output, got:\n%s", output)
	}

	// Check connection details
	if !strings.Contains(output, "[conn-aaa") {
		t.Error("expected conn-aaaa connection details")
	}
	if !strings.Contains(output, "Scheme: udp") {
		t.Error("expected scheme in connection details")
	}
}

func TestStatsTotalEvents(t *testing.T) {
	ts := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Category: log.CategoryMessage},
		{Timestamp: ts, Category: log.CategoryMessage},
		{Timestamp: ts, Category: log.CategoryMessage},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	err := RunStats(path, &buf)
	if err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "Total Events: 3") {
		t.Errorf("expected 3 total events in output, got:\n%s", output)
	}
}

func TestStatsTimeRange(t *testing.T) {
	start := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 28, 11, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: start, Category: log.CategoryMessage},
		{Timestamp: end, Category: log.CategoryMessage},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	err := RunStats(path, &buf)
	if err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "Duration:") {
		t.Error("expected Duration in output")
	}
	if !strings.Contains(output, "1h0m0s") {
		t.Errorf("expected 1h0m0s duration in output, got:\n%s", output)
	}
}

func TestStatsErrorCount(t *testing.T) {
	ts := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Category: log.CategoryMessage},
		{Timestamp: ts, Category: log.CategoryError, Error: &log.ErrorEventData{Message: "error 1"}},
		{Timestamp: ts, Category: log.CategoryError, Error: &log.ErrorEventData{Message: "error 2"}},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	err := RunStats(path, &buf)
	if err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "Errors: 2") {
		t.Errorf("expected 2 errors in output, got:\n%s", output)
	}
}
