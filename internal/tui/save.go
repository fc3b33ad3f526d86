package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/paneswitch/internal/config"
)

type savePhase int

const (
	saveHidden  savePhase = iota
	savePreview           // diff shown, awaiting confirm
	saveResult
)

type diffKind int

const (
	diffContext diffKind = iota
	diffRemoved
	diffAdded
)

type diffLine struct {
	kind diffKind
	text string
}

// SaveOverlay previews pending config changes and writes them on confirm.
type SaveOverlay struct {
	phase     savePhase
	diffLines []diffLine
	err       error
	reloaded  bool
	offset    int
}

// Active reports whether the overlay is visible.
func (s SaveOverlay) Active() bool {
	return s.phase != saveHidden
}

// Show opens the preview for the changes between original and current.
func (s *SaveOverlay) Show(original, current *config.Config) {
	s.err = nil
	s.reloaded = false
	s.offset = 0
	s.diffLines = configDiff(original, current)
	if len(s.diffLines) == 0 {
		s.phase = saveResult
		s.err = fmt.Errorf("no changes to save")
		return
	}
	s.phase = savePreview
}

// SaveSucceeded reports whether the last save completed without error.
func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil
}

// Update handles keys while the overlay is active. Confirming writes cfg
// to path and asks a running daemon to reload.
func (s SaveOverlay) Update(msg tea.Msg, cfg *config.Config, path string, client daemonClient, connected bool) SaveOverlay {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s
	}
	if s.phase == saveResult {
		s.phase = saveHidden
		return s
	}
	switch km.String() {
	case "esc":
		s.phase = saveHidden
	case "enter", "y":
		s.err = cfg.SaveTo(path)
		if s.err == nil && connected && client != nil {
			s.reloaded = client.Reload() == nil
		}
		s.phase = saveResult
	case "up", "k":
		if s.offset > 0 {
			s.offset--
		}
	case "down", "j":
		if s.offset < len(s.diffLines)-1 {
			s.offset++
		}
	}
	return s
}

// View renders the overlay centered in the content area.
func (s SaveOverlay) View(width, height int) string {
	var content string
	boxW := clamp(width-8, 30, 80)
	switch s.phase {
	case savePreview:
		content = s.previewContent(boxW-6, height-10)
	case saveResult:
		content = s.resultContent()
	default:
		return ""
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(boxW).
		Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (s SaveOverlay) previewContent(innerW, rows int) string {
	addStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	rmStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	ctxStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	rows = min(max(rows, 3), len(s.diffLines))
	off := clamp(s.offset, 0, len(s.diffLines)-rows)

	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Render("Save Config: Pending Changes"), ""}
	for _, dl := range s.diffLines[off : off+rows] {
		t := truncate(dl.text, innerW-2)
		switch dl.kind {
		case diffAdded:
			lines = append(lines, addStyle.Render("+ "+t))
		case diffRemoved:
			lines = append(lines, rmStyle.Render("- "+t))
		default:
			lines = append(lines, ctxStyle.Render("  "+t))
		}
	}
	lines = append(lines, "", pickerDimStyle.Render("enter: save  esc: cancel  j/k: scroll"))
	return strings.Join(lines, "\n")
}

func (s SaveOverlay) resultContent() string {
	var msg string
	if s.err != nil {
		msg = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Render("Error: " + s.err.Error())
	} else {
		ok := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
		msg = ok.Render("Config saved")
		if s.reloaded {
			msg += "\n" + ok.Render("Daemon reloaded")
		}
	}
	return msg + "\n\n" + pickerDimStyle.Render("press any key to dismiss")
}

// configDiff returns a line diff of the YAML renderings with two lines of
// context around each change.
func configDiff(original, current *config.Config) []diffLine {
	if original == nil || current == nil {
		return nil
	}
	a, err := original.Marshal(config.FormatYAML)
	if err != nil {
		return nil
	}
	b, err := current.Marshal(config.FormatYAML)
	if err != nil {
		return nil
	}
	if string(a) == string(b) {
		return nil
	}
	return withContext(lineDiff(splitLines(a), splitLines(b)), 2)
}

func splitLines(b []byte) []string {
	return strings.Split(strings.TrimRight(string(b), "\n"), "\n")
}

// lineDiff aligns a and b on their longest common subsequence.
func lineDiff(a, b []string) []diffLine {
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	var out []diffLine
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case i < len(a) && j < len(b) && a[i] == b[j]:
			out = append(out, diffLine{diffContext, a[i]})
			i++
			j++
		case j == len(b) || (i < len(a) && lcs[i+1][j] >= lcs[i][j+1]):
			out = append(out, diffLine{diffRemoved, a[i]})
			i++
		default:
			out = append(out, diffLine{diffAdded, b[j]})
			j++
		}
	}
	return out
}

// withContext drops unchanged lines further than n lines from a change,
// marking each gap with "...".
func withContext(lines []diffLine, n int) []diffLine {
	keep := make([]bool, len(lines))
	changed := false
	for i, l := range lines {
		if l.kind == diffContext {
			continue
		}
		changed = true
		for k := max(0, i-n); k <= min(len(lines)-1, i+n); k++ {
			keep[k] = true
		}
	}
	if !changed {
		return nil
	}

	var out []diffLine
	gap := false
	for i, l := range lines {
		if !keep[i] {
			gap = true
			continue
		}
		if gap && len(out) > 0 {
			out = append(out, diffLine{diffContext, "..."})
		}
		gap = false
		out = append(out, l)
	}
	return out
}

// cloneConfig deep-copies cfg through YAML.
func cloneConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil
	}
	var clone config.Config
	if err := yaml.Unmarshal(data, &clone); err != nil {
		return nil
	}
	return &clone
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}
