//go:build linux

package platform

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

const procRoot = "/proc"

// Process is a running process found by name.
type Process struct {
	PID  int
	Name string
}

// scanProcesses returns the current user's processes whose command name
// matches one of names (case-insensitive), lowest pid first and one per name.
func scanProcesses(names []string) []Process {
	return scanProcessesIn(procRoot, unix.Getuid(), names)
}

func scanProcessesIn(root string, uid int, names []string) []Process {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[strings.ToLower(strings.TrimSpace(n))] = true
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var found []Process
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		dir := filepath.Join(root, entry.Name())

		var st unix.Stat_t
		if err := unix.Stat(dir, &st); err != nil || int(st.Uid) != uid {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, "comm"))
		if err != nil {
			continue
		}
		name := strings.TrimSpace(string(data))
		if !wanted[strings.ToLower(name)] {
			continue
		}
		found = append(found, Process{PID: pid, Name: name})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].PID < found[j].PID })
	seen := make(map[string]bool)
	out := found[:0]
	for _, p := range found {
		key := strings.ToLower(p.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// processName returns /proc/<pid>/comm, or "" when unknown.
func processName(pid int) string {
	if pid <= 0 {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(procRoot, strconv.Itoa(pid), "comm"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// processAlive reports whether pid exists. EPERM means it exists but
// belongs to someone else.
func processAlive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}
