//go:build linux

package platform

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/1broseidon/paneswitch/internal/x11"
)

func writeProc(t *testing.T, root string, pid, comm string) {
	t.Helper()
	dir := filepath.Join(root, pid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "comm"), []byte(comm+"\n"), 0o644); err != nil {
		t.Fatalf("write comm: %v", err)
	}
}

func TestScanProcessesIn(t *testing.T) {
	root := t.TempDir()
	writeProc(t, root, "120", "Slack")
	writeProc(t, root, "98", "slack")
	writeProc(t, root, "300", "bash")
	writeProc(t, root, "301", "spotify")
	writeProc(t, root, "self", "ignored")

	got := scanProcessesIn(root, unix.Getuid(), []string{"slack", " Spotify "})
	if len(got) != 2 {
		t.Fatalf("got %d processes, want 2: %+v", len(got), got)
	}
	if got[0].PID != 98 || got[0].Name != "slack" {
		t.Fatalf("first = %+v, want lowest slack pid", got[0])
	}
	if got[1].PID != 301 {
		t.Fatalf("second = %+v, want spotify", got[1])
	}
}

func TestScanProcessesInOtherUser(t *testing.T) {
	root := t.TempDir()
	writeProc(t, root, "10", "slack")

	if got := scanProcessesIn(root, unix.Getuid()+1, []string{"slack"}); len(got) != 0 {
		t.Fatalf("processes of another uid listed: %+v", got)
	}
}

func TestProcessAliveSelf(t *testing.T) {
	if !processAlive(os.Getpid()) {
		t.Fatal("own process reported dead")
	}
}

func TestLayerFor(t *testing.T) {
	tests := []struct {
		name  string
		kind  x11.WindowKind
		state x11.WindowState
		want  int
	}{
		{"desktop", x11.KindDesktop, x11.WindowState{}, LayerDesktop},
		{"dock", x11.KindPanel, x11.WindowState{}, LayerPanel},
		{"splash", x11.KindTransient, x11.WindowState{}, LayerPanel},
		{"skip taskbar", x11.KindNormal, x11.WindowState{SkipTaskbar: true}, LayerPanel},
		{"normal", x11.KindNormal, x11.WindowState{Hidden: true}, LayerNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := layerFor(tt.kind, tt.state); got != tt.want {
				t.Errorf("layerFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLookupFold(t *testing.T) {
	m := map[string]string{"Slack": "slack --show"}
	if got := lookupFold(m, "slack"); got != "slack --show" {
		t.Fatalf("lookupFold = %q", got)
	}
	if got := lookupFold(m, "zoom"); got != "" {
		t.Fatalf("lookupFold = %q", got)
	}
}
