package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testLayout(t *testing.T, env map[string]string) Layout {
	t.Helper()
	return Layout{
		Getenv:  func(k string) string { return env[k] },
		UID:     os.Getuid(),
		RunRoot: filepath.Join(t.TempDir(), "run"),
		TmpRoot: t.TempDir(),
	}
}

func TestDirPrefersXDGRuntimeDir(t *testing.T) {
	td := t.TempDir()
	l := testLayout(t, map[string]string{"XDG_RUNTIME_DIR": td})

	got, err := l.Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDirUsesRunUser(t *testing.T) {
	l := testLayout(t, nil)
	runDir := filepath.Join(l.RunRoot, fmt.Sprint(l.UID))
	if err := os.MkdirAll(runDir, 0o700); err != nil {
		t.Fatal(err)
	}

	got, err := l.Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != runDir {
		t.Fatalf("Dir() = %q, want %q", got, runDir)
	}
}

func TestDirCreatesPrivateTmpFallback(t *testing.T) {
	l := testLayout(t, nil)

	got, err := l.Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	want := filepath.Join(l.TmpRoot, fmt.Sprintf("paneswitch-%d", l.UID))
	if got != want {
		t.Fatalf("Dir() = %q, want %q", got, want)
	}
	info, err := os.Stat(got)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o700 {
		t.Fatalf("mode = %o, want 700", info.Mode().Perm())
	}

	// Second call reuses it.
	if again, err := l.Dir(); err != nil || again != got {
		t.Fatalf("Dir() again = %q, %v", again, err)
	}
}

func TestDirRejectsOpenTmpFallback(t *testing.T) {
	l := testLayout(t, nil)
	dir := filepath.Join(l.TmpRoot, fmt.Sprintf("paneswitch-%d", l.UID))
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := l.Dir(); err == nil || !strings.Contains(err.Error(), "want 0700") {
		t.Fatalf("Dir() error = %v, want mode error", err)
	}
}

func TestSocketPath(t *testing.T) {
	td := t.TempDir()
	env := map[string]string{"XDG_RUNTIME_DIR": td}
	l := testLayout(t, env)

	socket, err := l.SocketPath()
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if socket != filepath.Join(td, "paneswitch.sock") {
		t.Fatalf("SocketPath() = %q", socket)
	}

	override := filepath.Join(td, "custom.sock")
	env["PANESWITCH_SOCKET"] = override
	socket, err = l.SocketPath()
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if socket != override {
		t.Fatalf("SocketPath() = %q, want %q", socket, override)
	}
}
