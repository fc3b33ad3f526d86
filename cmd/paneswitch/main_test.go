package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/paneswitch/internal/ipc"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigValidate(t *testing.T) {
	var out bytes.Buffer
	path := writeConfig(t, "sidebar_edge: right\n")
	if rc := runConfigCommand(&out, "validate", []string{"--path", path}); rc != 0 {
		t.Fatalf("validate rc=%d, want 0", rc)
	}
	if !strings.HasPrefix(out.String(), "config: ok") {
		t.Fatalf("unexpected output %q", out.String())
	}

	bad := writeConfig(t, "sidebar_edge: top\n")
	if rc := runConfigCommand(&out, "validate", []string{"--path", bad}); rc != 1 {
		t.Fatalf("validate of invalid config rc=%d, want 1", rc)
	}
}

func TestConfigPrintTOML(t *testing.T) {
	var out bytes.Buffer
	path := writeConfig(t, "quick_switch_delay_ms: 70\n")
	if rc := runConfigCommand(&out, "print", []string{"--path", path, "--format", "toml"}); rc != 0 {
		t.Fatalf("print rc=%d, want 0", rc)
	}
	if !strings.Contains(out.String(), "quick_switch_delay_ms = 70") {
		t.Fatalf("expected TOML output with delay, got:\n%s", out.String())
	}

	if rc := runConfigCommand(&out, "print", []string{"--format", "ini"}); rc != 2 {
		t.Fatalf("unknown format rc=%d, want 2", rc)
	}
}

func TestConfigExplain(t *testing.T) {
	var out bytes.Buffer
	path := writeConfig(t, "log_level: info\nsidebar_edge: right\n")
	if rc := runConfigCommand(&out, "explain", []string{"--path", path, "sidebar_edge"}); rc != 0 {
		t.Fatalf("explain rc=%d, want 0", rc)
	}
	got := out.String()
	if !strings.Contains(got, ":2:") || !strings.Contains(got, "value: right") {
		t.Fatalf("unexpected explain output:\n%s", got)
	}
}

func TestPrintWindows(t *testing.T) {
	var out bytes.Buffer
	printWindows(&out, []ipc.WindowInfo{
		{ID: 42, Owner: "Firefox", Title: "Docs", Shortcut: "f", Desktop: 0},
		{ID: 4294967303, Owner: "Mail", AppOnly: true, Shortcut: "m", Desktop: -1},
	}, false)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", out.String())
	}
	if !strings.HasPrefix(lines[1], "42") || !strings.Contains(lines[1], "Firefox") || !strings.Contains(lines[1], " 1 ") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
	if !strings.Contains(lines[2], "all") || !strings.Contains(lines[2], "(no windows)") {
		t.Fatalf("unexpected app-only row %q", lines[2])
	}

	out.Reset()
	printWindows(&out, nil, true)
	if out.String() != "no windows\n" {
		t.Fatalf("unexpected empty output %q", out.String())
	}
}

func TestPrintStatus(t *testing.T) {
	var out bytes.Buffer
	printStatus(&out, &ipc.StatusData{DaemonRunning: true, Trusted: false, Mode: "cycle", QuickSwitch: "idle", Windows: 3})
	got := out.String()
	for _, want := range []string{"trusted:        false", "windows:        3", "quick_switch:   idle"} {
		if !strings.Contains(got, want) {
			t.Fatalf("status output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "dropped_events") {
		t.Fatalf("dropped events shown when zero:\n%s", got)
	}
}
