package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

// launcher drives a dmenu-compatible program over stdin/stdout. rofi and
// fuzzel report the chosen row index; wofi and dmenu echo the label, so
// their labels are made unique.
type launcher struct {
	command  string
	byIndex  bool
	markup   bool
	rowAttrs bool

	// run executes cmd and returns its stdout.
	run func(cmd *exec.Cmd) ([]byte, error)
}

func newLauncher(command string) *launcher {
	l := &launcher{command: command, run: (*exec.Cmd).Output}
	switch command {
	case "rofi":
		l.byIndex, l.markup, l.rowAttrs = true, true, true
	case "fuzzel":
		l.byIndex = true
	}
	return l
}

func (l *launcher) Name() string { return l.command }

func (l *launcher) Show(prompt string, items []Item) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("palette: no items to show")
	}
	labels := l.labels(items)
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = l.formatRow(item, labels[i])
	}

	cmd := exec.Command(l.command, l.args(prompt, items)...)
	cmd.Stdin = strings.NewReader(strings.Join(lines, "\n"))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := l.run(cmd)
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if selection == "" && cancelled(err) {
			return -1, ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return -1, fmt.Errorf("%s failed: %s", l.command, msg)
		}
		return -1, fmt.Errorf("%s failed: %w", l.command, err)
	}
	if selection == "" {
		return -1, ErrCancelled
	}

	idx, err := l.parse(selection, labels)
	if err != nil {
		return -1, err
	}
	if items[idx].IsHeader {
		return -1, ErrCancelled
	}
	return idx, nil
}

func (l *launcher) args(prompt string, items []Item) []string {
	var args []string
	switch l.command {
	case "rofi":
		args = []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-markup-rows", "-show-icons"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		for i, item := range items {
			if item.IsActive && !item.IsHeader {
				args = append(args, "-a", strconv.Itoa(i), "-selected-row", strconv.Itoa(i))
				break
			}
		}
	case "fuzzel":
		args = []string{"--dmenu", "--index"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
	case "wofi":
		args = []string{"--dmenu", "--allow-images"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
	default:
		args = []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	}
	return args
}

// labels returns the display text per row. Text-matching launchers get a
// " (n)" suffix on repeated labels so every row can be told apart.
func (l *launcher) labels(items []Item) []string {
	out := make([]string, len(items))
	seen := make(map[string]int)
	for i, item := range items {
		label := oneLine(item.Label)
		if !l.byIndex && !item.IsHeader {
			if n := seen[label]; n > 0 {
				seen[label]++
				label = fmt.Sprintf("%s (%d)", label, n+1)
			} else {
				seen[label] = 1
			}
		}
		out[i] = label
	}
	return out
}

// formatRow renders one stdin line. rofi row properties follow the label
// after a single NUL, as key\x1fvalue pairs.
func (l *launcher) formatRow(item Item, label string) string {
	if l.markup {
		label = html.EscapeString(label)
		if item.IsHeader {
			label = "<b>" + label + "</b>"
		}
	}
	if !l.rowAttrs {
		return label
	}
	var attrs []string
	if item.IsHeader {
		attrs = append(attrs, "nonselectable", "true")
	}
	if item.Icon != "" {
		attrs = append(attrs, "icon", rowField(item.Icon))
	}
	if item.Meta != "" {
		attrs = append(attrs, "meta", rowField(item.Meta))
	}
	if len(attrs) == 0 {
		return label
	}
	return label + "\x00" + strings.Join(attrs, "\x1f")
}

func (l *launcher) parse(selection string, labels []string) (int, error) {
	if l.byIndex {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(labels) {
				return -1, fmt.Errorf("palette: index %d out of range", idx)
			}
			return idx, nil
		}
	}
	for i, label := range labels {
		if label == selection {
			return i, nil
		}
	}
	return -1, fmt.Errorf("palette: unknown selection %q", selection)
}

func oneLine(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(s))
}

func rowField(s string) string {
	return oneLine(strings.NewReplacer("\x00", " ", "\x1f", " ").Replace(s))
}

// cancelled reports the exit codes launchers use for escape (1) and
// Ctrl+C (130).
func cancelled(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	code := exitErr.ExitCode()
	return code == 1 || code == 130
}
