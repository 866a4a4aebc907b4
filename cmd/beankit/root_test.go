package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestWalkthrough(t *testing.T) {
	cfg := writeConfig(t, "name: beankit-test\nlogging:\n  level: disabled\n")
	out, err := execute(t, "--config", cfg, "--env-file", filepath.Join(t.TempDir(), "none.env"))
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	for _, want := range []string{
		`hello = "Hello" (len 5)`,
		`hello = "World!" (len 6) after replacement`,
		"bean type is main.Text but requested int",
		"incompatible types for bean hello, old: main.Text, new: int",
		`{http://example.com/beans}hello = "Namespaced hello"`,
		"thread 1: session",
		"same on second get: true",
		"level 0: hello, {http://example.com/beans}hello, clock",
		"level 1: session",
		"thread bean session resolved outside a thread context",
		"INDEX",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestWalkthroughInvalidConfig(t *testing.T) {
	cfg := writeConfig(t, "container:\n  invalidation: sideways\n")
	_, err := execute(t, "--config", cfg, "--env-file", filepath.Join(t.TempDir(), "none.env"))
	if err == nil || !strings.Contains(err.Error(), "container.invalidation") {
		t.Errorf("expected invalidation config error, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !strings.HasPrefix(out, "beankit ") {
		t.Errorf("unexpected version output %q", out)
	}
}
