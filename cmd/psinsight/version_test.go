package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestGetVersion tests version string resolution.
func TestGetVersion(t *testing.T) {
	if got := getVersion(); got == "" {
		t.Error("expected non-empty version")
	}
}

// TestGetCommit tests commit hash resolution.
func TestGetCommit(t *testing.T) {
	if got := getCommit(); got == "" {
		t.Error("expected non-empty commit")
	}
}

// TestGetDate tests build date resolution.
func TestGetDate(t *testing.T) {
	if got := getDate(); got == "" {
		t.Error("expected non-empty date")
	}
}

// TestNewVersionCmd tests the version command output.
func TestNewVersionCmd(t *testing.T) {
	cmd := NewVersionCmd()

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "psinsight version") {
		t.Errorf("expected version line, got %q", output)
	}
	if !strings.Contains(output, "commit:") {
		t.Errorf("expected commit line, got %q", output)
	}
	if !strings.Contains(output, "built:") {
		t.Errorf("expected built line, got %q", output)
	}
}
