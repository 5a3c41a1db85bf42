package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/persistorai/kinship/client"
)

// captureStdout replaces os.Stdout with a pipe, calls f, then returns the
// captured output and restores os.Stdout. Not safe for parallel tests.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w

	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		io.Copy(&buf, r) //nolint:errcheck // test helper
		close(done)
	}()

	f()

	w.Close()
	<-done
	os.Stdout = orig
	r.Close()
	return buf.String()
}

func TestFormatJSON(t *testing.T) {
	v := map[string]string{"id": "ada", "label": "paternal grandmother"}

	got := captureStdout(t, func() { formatJSON(v) })

	var decoded map[string]string
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("invalid JSON %q: %v", got, err)
	}
	if decoded["label"] != "paternal grandmother" {
		t.Errorf("label: got %q", decoded["label"])
	}
	if !strings.Contains(got, "\n  ") {
		t.Errorf("expected indented output, got %q", got)
	}
}

func TestFormatTable(t *testing.T) {
	got := captureStdout(t, func() {
		formatTable([]string{"ID", "LABEL"}, [][]string{
			{"ada", "mother"},
			{"bartholomew", "second cousin"},
		})
	})

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	want := []string{
		"ID           LABEL",
		"-----------  -------------",
		"ada          mother",
		"bartholomew  second cousin",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), got)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestOutput(t *testing.T) {
	resetFlags(t)

	flagFmt = "quiet"
	got := captureStdout(t, func() { output(map[string]string{"id": "ada"}, "ada") })
	if got != "ada\n" {
		t.Errorf("quiet: got %q", got)
	}

	flagFmt = "table"
	got = captureStdout(t, func() { output(map[string]string{"id": "ada"}, "ada") })
	if !strings.Contains(got, `"id": "ada"`) {
		t.Errorf("table fallback: got %q", got)
	}
}

func TestPrintAuditTable(t *testing.T) {
	resetFlags(t)
	flagFmt = "table"

	page := &client.AuditPage{Entries: []client.AuditEntry{
		{Action: "person.create", EntityType: "person", EntityID: "ada", CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)},
	}}

	got := captureStdout(t, func() { printAudit(page) })

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), got)
	}
	if want := "2026-03-01 12:00:00  person.create  person  ada"; lines[2] != want {
		t.Errorf("row = %q, want %q", lines[2], want)
	}
}
