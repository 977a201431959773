package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestVersionCmd tests the version output shape.
func TestVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{"sourcedrift version", "commit:", "built:"} {
		if !strings.Contains(got, want) {
			t.Errorf("version output missing %q: %s", want, got)
		}
	}
}

// TestGetVersion tests the ldflags override.
func TestGetVersion(t *testing.T) {
	orig := version
	t.Cleanup(func() { version = orig })

	version = "v1.2.3"
	if got := getVersion(); got != "v1.2.3" {
		t.Errorf("getVersion() = %q, want v1.2.3", got)
	}

	version = ""
	if got := getVersion(); got == "" {
		t.Error("getVersion() returned empty fallback")
	}
}
