package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const socketName = "paneswitch.sock"

// Layout describes where runtime files live. The zero value is not useful;
// use Default.
type Layout struct {
	Getenv  func(string) string
	UID     int
	RunRoot string // usually /run/user
	TmpRoot string // usually os.TempDir()
}

// Default returns the layout of the current process.
func Default() Layout {
	return Layout{
		Getenv:  os.Getenv,
		UID:     os.Getuid(),
		RunRoot: "/run/user",
		TmpRoot: os.TempDir(),
	}
}

// Dir resolves the runtime directory: XDG_RUNTIME_DIR, then
// <RunRoot>/<uid>, then a private <TmpRoot>/paneswitch-<uid> which is created
// if missing and rejected if another user owns it or it is group/world
// accessible.
func (l Layout) Dir() (string, error) {
	if dir := l.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}

	runDir := filepath.Join(l.RunRoot, fmt.Sprint(l.UID))
	if info, err := os.Stat(runDir); err == nil && info.IsDir() {
		return runDir, nil
	}

	tmpDir := filepath.Join(l.TmpRoot, fmt.Sprintf("paneswitch-%d", l.UID))
	if err := os.Mkdir(tmpDir, 0o700); err != nil && !os.IsExist(err) {
		return "", fmt.Errorf("create runtime dir: %w", err)
	}
	var st unix.Stat_t
	if err := unix.Lstat(tmpDir, &st); err != nil {
		return "", fmt.Errorf("stat runtime dir: %w", err)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFDIR {
		return "", fmt.Errorf("runtime dir %s is not a directory", tmpDir)
	}
	if int(st.Uid) != l.UID {
		return "", fmt.Errorf("runtime dir %s owned by uid %d", tmpDir, st.Uid)
	}
	if st.Mode&0o077 != 0 {
		return "", fmt.Errorf("runtime dir %s has mode %o, want 0700", tmpDir, st.Mode&0o777)
	}
	return tmpDir, nil
}

// SocketPath returns the IPC socket path. PANESWITCH_SOCKET wins over the
// runtime dir.
func (l Layout) SocketPath() (string, error) {
	if override := l.Getenv("PANESWITCH_SOCKET"); override != "" {
		return override, nil
	}
	dir, err := l.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, socketName), nil
}

// SocketPath is Default().SocketPath().
func SocketPath() (string, error) {
	return Default().SocketPath()
}
