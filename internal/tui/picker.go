package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/paneswitch/internal/ipc"
)

// daemonClient is the part of the IPC client the TUI uses. *ipc.Client
// satisfies it.
type daemonClient interface {
	Ping() error
	Status() (*ipc.StatusData, error)
	Search(query string) ([]ipc.WindowInfo, error)
	Activate(id int64) error
	Reload() error
}

var _ daemonClient = (*ipc.Client)(nil)

// searchResultMsg carries the windows matching query.
type searchResultMsg struct {
	query   string
	windows []ipc.WindowInfo
	err     error
}

// activatedMsg reports the outcome of an activation request.
type activatedMsg struct {
	window ipc.WindowInfo
	err    error
}

var (
	pickerSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Bold(true)
	pickerRowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	pickerShortcutStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	pickerDimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	pickerErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Picker is a terminal window picker backed by the daemon's search.
type Picker struct {
	client daemonClient
	input  textinput.Model

	windows  []ipc.WindowInfo
	selected int
	err      error

	// standalone pickers quit after activating.
	standalone bool
	activated  *ipc.WindowInfo

	width  int
	height int
}

// NewPicker creates a picker. A standalone picker exits after an
// activation or on esc.
func NewPicker(client daemonClient, standalone bool) Picker {
	ti := textinput.New()
	ti.Placeholder = "type to search windows"
	ti.Prompt = "› "
	ti.CharLimit = 128
	ti.Focus()
	return Picker{client: client, input: ti, standalone: standalone}
}

// Activated returns the window activated by a standalone picker.
func (p Picker) Activated() (ipc.WindowInfo, bool) {
	if p.activated == nil {
		return ipc.WindowInfo{}, false
	}
	return *p.activated, true
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, p.search(""))
}

func (p Picker) search(query string) tea.Cmd {
	client := p.client
	return func() tea.Msg {
		windows, err := client.Search(query)
		return searchResultMsg{query: query, windows: windows, err: err}
	}
}

func (p Picker) activate(w ipc.WindowInfo) tea.Cmd {
	client := p.client
	return func() tea.Msg {
		return activatedMsg{window: w, err: client.Activate(w.ID)}
	}
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		p.input.Width = msg.Width - 4
		return p, nil

	case searchResultMsg:
		if msg.query != p.input.Value() {
			return p, nil
		}
		p.windows, p.err = msg.windows, msg.err
		p.selected = 0
		return p, nil

	case activatedMsg:
		if msg.err != nil {
			p.err = msg.err
			return p, nil
		}
		w := msg.window
		p.activated = &w
		if p.standalone {
			return p, tea.Quit
		}
		p.input.SetValue("")
		return p, p.search("")

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return p, tea.Quit
		case "esc":
			if p.standalone {
				return p, tea.Quit
			}
			p.input.SetValue("")
			return p, p.search("")
		case "up", "ctrl+p", "shift+tab":
			p.move(-1)
			return p, nil
		case "down", "ctrl+n", "tab":
			p.move(1)
			return p, nil
		case "enter":
			if p.selected < len(p.windows) {
				return p, p.activate(p.windows[p.selected])
			}
			return p, nil
		}
	}

	prev := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if q := p.input.Value(); q != prev {
		return p, tea.Batch(cmd, p.search(q))
	}
	return p, cmd
}

func (p *Picker) move(delta int) {
	n := len(p.windows)
	if n == 0 {
		return
	}
	p.selected = ((p.selected+delta)%n + n) % n
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	if p.err != nil {
		b.WriteString(pickerErrorStyle.Render("Error: " + p.err.Error()))
		b.WriteString("\n")
	}

	rows := p.height - 5
	if rows < 1 {
		rows = 10
	}
	start := 0
	if p.selected >= rows {
		start = p.selected - rows + 1
	}
	end := start + rows
	if end > len(p.windows) {
		end = len(p.windows)
	}

	if len(p.windows) == 0 && p.err == nil {
		b.WriteString(pickerDimStyle.Render("  no matching windows"))
		b.WriteString("\n")
	}
	for i := start; i < end; i++ {
		b.WriteString(p.renderRow(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(pickerDimStyle.Render(fmt.Sprintf("  %d windows  ↑/↓: select  enter: activate  esc: %s", len(p.windows), p.escHelp())))
	return b.String()
}

func (p Picker) escHelp() string {
	if p.standalone {
		return "quit"
	}
	return "clear"
}

func (p Picker) renderRow(i int) string {
	w := p.windows[i]
	text := w.Owner
	switch {
	case w.AppOnly:
		text += "  (no windows)"
	case w.Title != "":
		text += " - " + w.Title
	}
	if p.width > 8 && lipgloss.Width(text) > p.width-8 {
		text = truncate(text, p.width-8)
	}

	shortcut := " "
	if w.Shortcut != "" {
		shortcut = w.Shortcut
	}
	if i == p.selected {
		return pickerSelectedStyle.Render(fmt.Sprintf(" %s  %s ", shortcut, text))
	}
	return " " + pickerShortcutStyle.Render(shortcut) + "  " + pickerRowStyle.Render(text)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width || width < 2 {
		return s
	}
	return string(r[:width-1]) + "…"
}
