package main

import (
	"strings"
	"testing"
)

func TestInitCmd(t *testing.T) {
	configPath := writeTestConfig(t)

	out := mustRun(t, configPath, "init", "--app", "demo", "--path", "bucket/apps/demo")

	if !strings.HasPrefix(out, "[") {
		t.Errorf("output missing short hash: %q", out)
	}
	if !strings.Contains(out, "initialized demo") {
		t.Errorf("output = %q", out)
	}
}

func TestInitCmdRequiresTarget(t *testing.T) {
	configPath := writeTestConfig(t)

	if _, err := runCmd(t, configPath, "init", "--path", "bucket/apps/demo"); err == nil {
		t.Error("expected error without --app")
	}
	if _, err := runCmd(t, configPath, "init", "--app", "demo"); err == nil {
		t.Error("expected error without --path")
	}
}

func TestInitCmdInvalidStoragePath(t *testing.T) {
	configPath := writeTestConfig(t)

	_, err := runCmd(t, configPath, "init", "--app", "demo", "--path", "no-prefix")
	if err == nil {
		t.Error("expected error for storage path without prefix")
	}
}
