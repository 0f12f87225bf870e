// ABOUTME: Integration tests for the full tracking workflow
// ABOUTME: Builds the binary and drives run, list, export, backup and import

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"
)

const integrationTrack = `name: walk
waypoints:
  - {latitude: 41.8781, longitude: -87.6298}
  - {latitude: 41.8790, longitude: -87.6300}
  - {latitude: 41.8790, longitude: -87.6300, repeat: 50}
`

func TestFullWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}

	tmpDir := t.TempDir()
	binary := filepath.Join(tmpDir, "fixtrack")
	buildCmd := exec.Command("go", "build", "-o", binary, ".")
	buildOutput, err := buildCmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Failed to build: %v\nOutput: %s", err, buildOutput)
	}

	trackPath := filepath.Join(tmpDir, "walk.yaml")
	if err := os.WriteFile(trackPath, []byte(integrationTrack), 0600); err != nil {
		t.Fatal(err)
	}
	configDir := filepath.Join(tmpDir, "config", "fixtrack")
	if err := os.MkdirAll(configDir, 0750); err != nil {
		t.Fatal(err)
	}
	configJSON := `{"data_dir": "` + filepath.Join(tmpDir, "data") + `",
		"location": {"source": "replay", "track_file": "` + trackPath + `"},
		"notify": {"console": true}}`
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte(configJSON), 0600); err != nil {
		t.Fatal(err)
	}

	env := append(os.Environ(), "XDG_CONFIG_HOME="+filepath.Join(tmpDir, "config"))
	run := func(args ...string) (string, error) {
		cmd := exec.Command(binary, args...)
		cmd.Env = env
		output, err := cmd.CombinedOutput()
		return string(output), err
	}

	// Track for a few ticks
	daemon := exec.Command(binary, "run", "--interval", "1")
	daemon.Env = env
	if err := daemon.Start(); err != nil {
		t.Fatalf("Failed to start run: %v", err)
	}

	deadline := time.Now().Add(15 * time.Second)
	for {
		output, err := run("count")
		if err == nil {
			if n, _ := strconv.Atoi(strings.TrimSpace(output)); n >= 3 {
				break
			}
		}
		if time.Now().After(deadline) {
			_ = daemon.Process.Kill()
			t.Fatalf("run did not record 3 fixes in time")
		}
		time.Sleep(200 * time.Millisecond)
	}

	if err := daemon.Process.Signal(syscall.SIGINT); err != nil {
		t.Fatalf("Failed to interrupt run: %v", err)
	}
	if err := daemon.Wait(); err != nil {
		t.Fatalf("run exited with error: %v", err)
	}

	// The first two fixes move, the rest are stationary
	output, err := run("list")
	if err != nil {
		t.Fatalf("Failed to list: %v\n%s", err, output)
	}
	if !strings.Contains(output, "stationary") || !strings.Contains(output, "moving") {
		t.Errorf("Expected moving and stationary fixes in list:\n%s", output)
	}

	output, err = run("show", "1")
	if err != nil {
		t.Fatalf("Failed to show: %v\n%s", err, output)
	}
	if !strings.Contains(output, "41.878100") {
		t.Errorf("Expected first waypoint in show output:\n%s", output)
	}

	output, err = run("export", "--geometry", "line")
	if err != nil {
		t.Fatalf("Failed to export: %v\n%s", err, output)
	}
	if !strings.Contains(output, "LineString") {
		t.Error("Expected LineString in export")
	}

	backupPath := filepath.Join(tmpDir, "backup.yaml")
	if output, err := run("backup", "-o", backupPath); err != nil {
		t.Fatalf("Failed to back up: %v\n%s", err, output)
	}
	countBefore, _ := run("count")

	if output, err := run("clear", "--confirm"); err != nil {
		t.Fatalf("Failed to clear: %v\n%s", err, output)
	}
	output, _ = run("count")
	if strings.TrimSpace(output) != "0" {
		t.Errorf("Expected empty store after clear, got %q", output)
	}

	if output, err := run("import", backupPath, "--confirm"); err != nil {
		t.Fatalf("Failed to import: %v\n%s", err, output)
	}
	output, _ = run("count")
	if strings.TrimSpace(output) != strings.TrimSpace(countBefore) {
		t.Errorf("Expected %s fixes after import, got %s", countBefore, output)
	}

	// Settings persist between invocations
	if output, err := run("settings", "notify", "on"); err != nil {
		t.Fatalf("Failed to change settings: %v\n%s", err, output)
	}
	output, err = run("settings")
	if err != nil {
		t.Fatalf("Failed to read settings: %v\n%s", err, output)
	}
	if !strings.Contains(output, "1s") || !strings.Contains(output, "on") {
		t.Errorf("Expected interval 1s and notify on:\n%s", output)
	}
}
