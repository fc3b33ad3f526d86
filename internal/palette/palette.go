// Package palette shows the window list in an external dmenu-style launcher
// (rofi, fuzzel, wofi or dmenu) and returns the chosen entry.
package palette

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the launcher closes without a selection.
var ErrCancelled = errors.New("palette cancelled")

// Item is one row of the menu.
type Item struct {
	Label    string
	Icon     string // icon name, shown by launchers that support icons
	Meta     string // extra search keywords, not displayed
	IsHeader bool   // section header, never returned as a selection
	IsActive bool   // initially highlighted
}

// Backend shows items and returns the index of the chosen one.
type Backend interface {
	Show(prompt string, items []Item) (int, error)
	Name() string
}

// backendOrder is the auto-detection priority.
var backendOrder = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// lookPath is exec.LookPath, replaced in tests.
var lookPath = exec.LookPath

// NewBackend returns the named launcher backend. "auto" or "" picks the
// first launcher found in PATH.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		for _, candidate := range backendOrder {
			if _, err := lookPath(candidate); err == nil {
				return newLauncher(candidate), nil
			}
		}
		return nil, fmt.Errorf("no launcher found in PATH (looked for: %s)", strings.Join(backendOrder, ", "))
	}
	for _, candidate := range backendOrder {
		if candidate != name {
			continue
		}
		if _, err := lookPath(name); err != nil {
			return nil, fmt.Errorf("launcher %q not found in PATH", name)
		}
		return newLauncher(name), nil
	}
	return nil, fmt.Errorf("unknown launcher %q (expected: auto, %s)", name, strings.Join(backendOrder, ", "))
}
