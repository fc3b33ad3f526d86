// Package tui implements the terminal window picker and settings editor.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/paneswitch/internal/ipc"
)

func requireTerminal() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	return nil
}

// RunSettings opens the settings editor. An empty configPath uses the
// default config location.
func RunSettings(configPath string) error {
	if err := requireTerminal(); err != nil {
		return err
	}
	p := tea.NewProgram(newModel(configPath, ipc.NewClient(), TabSettings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RunPicker opens a standalone window picker and returns the window it
// activated, if any.
func RunPicker(client *ipc.Client) (ipc.WindowInfo, bool, error) {
	if err := requireTerminal(); err != nil {
		return ipc.WindowInfo{}, false, err
	}
	if err := client.Ping(); err != nil {
		return ipc.WindowInfo{}, false, err
	}
	final, err := tea.NewProgram(NewPicker(client, true), tea.WithAltScreen()).Run()
	if err != nil {
		return ipc.WindowInfo{}, false, err
	}
	w, ok := final.(Picker).Activated()
	return w, ok, nil
}
