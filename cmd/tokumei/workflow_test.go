package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/tokumei/internal/api/apitest"
)

// TestEndToEndWorkflow builds the binary and drives a full day against the
// fake service: init, write, read, save, list.
func TestEndToEndWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}

	tempDir := t.TempDir()
	bin := filepath.Join(tempDir, "tokumei")
	build := exec.Command("go", "build", "-o", bin, ".")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}

	srv := apitest.New(t)
	seeded := srv.Seed("someone-else", "the river was loud today")

	var env []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "HOME=") && !strings.HasPrefix(e, "TOKUMEI_") {
			env = append(env, e)
		}
	}
	env = append(env,
		fmt.Sprintf("HOME=%s", tempDir),
		fmt.Sprintf("TOKUMEI_CONFIG_FILE=%s", filepath.Join(tempDir, "none.yaml")),
	)

	dbPath := filepath.Join(tempDir, "tokumei", "tokumei.db")
	run := func(args ...string) string {
		t.Helper()
		full := append([]string{"--config", dbPath, "--api-url", srv.URL}, args...)
		return runCmd(t, bin, env, full...)
	}

	t.Log("Initializing...")
	out := run("init", "--bootstrap")
	if !strings.Contains(out, "Identity: user-1") {
		t.Fatalf("expected identity after init, got:\n%s", out)
	}

	run("settings", "--timezone", "UTC")

	t.Log("Writing...")
	out = run("write", "a", "quiet", "morning")
	if !strings.Contains(out, "Diary posted!") {
		t.Fatalf("write failed:\n%s", out)
	}

	t.Log("Reading...")
	out = run("read")
	if !strings.Contains(out, seeded.ID) || !strings.Contains(out, "4 receive(s) left today.") {
		t.Fatalf("unexpected read output:\n%s", out)
	}

	t.Log("Saving...")
	out = run("save", seeded.ID)
	if !strings.Contains(out, "Saved to your collection.") {
		t.Fatalf("save failed:\n%s", out)
	}
	if srv.SaveCount(seeded.ID) != 1 {
		t.Errorf("expected the service to record one save")
	}

	out = run("collection")
	if !strings.Contains(out, "the river was loud today") {
		t.Errorf("collection missing saved entry:\n%s", out)
	}
	out = run("mine")
	if !strings.Contains(out, "a quiet morning") {
		t.Errorf("authored list missing entry:\n%s", out)
	}

	// A second save the same day never reaches the service.
	before := srv.Calls(apitest.RouteSave)
	failCmd(t, bin, env, "--config", dbPath, "--api-url", srv.URL, "save", seeded.ID)
	if srv.Calls(apitest.RouteSave) != before {
		t.Errorf("second save reached the service")
	}

	out = run("whoami")
	if strings.TrimSpace(out) != "user-1" {
		t.Errorf("identity changed across runs: %q", out)
	}
	if srv.Calls(apitest.RouteInitUser) != 1 {
		t.Errorf("expected a single identity issuance, got %d", srv.Calls(apitest.RouteInitUser))
	}
}

func runCmd(t *testing.T, path string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return string(out)
}

func failCmd(t *testing.T, path string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("Command %s %v succeeded, expected failure\nOutput: %s", path, args, out)
	}
	return string(out)
}
