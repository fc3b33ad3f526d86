package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/paneswitch/internal/config"
)

// SettingsTab shows the effective configuration and edits it with a form.
type SettingsTab struct {
	cfg *config.Config

	width  int
	height int

	editing bool
	form    *huh.Form
	err     error

	// Form-bound values; huh inputs are strings, converted on submit.
	fCommandTab    bool
	fControlSpace  bool
	fGestures      bool
	fCycleModifier string
	fSidebarEdge   string
	fShowMinimized bool
	fQuickDelay    string
	fEdgeThreshold string
	fTriggerDist   string
	fAcronymBonus  string
	fExcludeApps   string
	fLogLevel      string
}

// NewSettingsTab creates a SettingsTab for cfg.
func NewSettingsTab(cfg *config.Config) SettingsTab {
	return SettingsTab{cfg: cfg}
}

// Update implements tea.Model.
func (s SettingsTab) Update(msg tea.Msg) (SettingsTab, tea.Cmd) {
	if s.editing {
		return s.updateEditing(msg)
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" {
			s.startEditing()
			return s, s.form.Init()
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}
	return s, nil
}

func (s SettingsTab) updateEditing(msg tea.Msg) (SettingsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			s.editing = false
			s.form = nil
			return s, nil
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}
	if s.form.State == huh.StateCompleted {
		s.err = s.applyForm()
		s.editing = false
		s.form = nil
		return s, nil
	}
	return s, cmd
}

func (s *SettingsTab) startEditing() {
	cfg := s.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s.err = nil
	s.fCommandTab = cfg.EnableCommandTabOverride
	s.fControlSpace = cfg.EnableControlSpace
	s.fGestures = cfg.EnableGestures
	s.fCycleModifier = cfg.CycleModifier
	s.fSidebarEdge = cfg.SidebarEdge
	s.fShowMinimized = cfg.ShowMinimizedWindows
	s.fQuickDelay = strconv.Itoa(cfg.QuickSwitchDelayMs)
	s.fEdgeThreshold = formatFloat(cfg.GestureEdgeThreshold)
	s.fTriggerDist = formatFloat(cfg.GestureTriggerThreshold)
	s.fAcronymBonus = formatFloat(cfg.AcronymBonus)
	s.fExcludeApps = strings.Join(cfg.ExcludeApps, ", ")
	s.fLogLevel = cfg.LogLevel

	w := s.width - 4
	if w < 40 {
		w = 40
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("enable_command_tab_override").
				Title("Quick switch shortcut").
				Description("Take over the cycle modifier + Tab").
				Value(&s.fCommandTab),
			huh.NewSelect[string]().
				Key("cycle_modifier").
				Title("Cycle Modifier").
				Options(huh.NewOption("Super", "super"), huh.NewOption("Alt", "alt")).
				Value(&s.fCycleModifier),
			huh.NewInput().
				Key("quick_switch_delay_ms").
				Title("Quick Switch Delay (ms)").
				Description("How long the modifier is held before the switcher appears").
				Validate(intInRange(10, 1000)).
				Value(&s.fQuickDelay),
			huh.NewConfirm().
				Key("enable_control_space").
				Title("Search shortcut").
				Description("Control+Space opens the search switcher").
				Value(&s.fControlSpace),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Key("enable_gestures").
				Title("Edge scroll gestures").
				Value(&s.fGestures),
			huh.NewSelect[string]().
				Key("sidebar_edge").
				Title("Sidebar Edge").
				Options(huh.NewOption("Left", "left"), huh.NewOption("Right", "right")).
				Value(&s.fSidebarEdge),
			huh.NewInput().
				Key("gesture_edge_threshold").
				Title("Edge Distance (px)").
				Validate(positiveFloat).
				Value(&s.fEdgeThreshold),
			huh.NewInput().
				Key("gesture_trigger_threshold").
				Title("Trigger Distance (px)").
				Validate(positiveFloat).
				Value(&s.fTriggerDist),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Key("show_minimized_windows").
				Title("Show minimized windows").
				Value(&s.fShowMinimized),
			huh.NewInput().
				Key("acronym_bonus").
				Title("Acronym Bonus").
				Description("Extra score when a query matches word initials").
				Validate(positiveFloat).
				Value(&s.fAcronymBonus),
			huh.NewInput().
				Key("exclude_apps").
				Title("Excluded Apps").
				Description("Comma-separated application names").
				Value(&s.fExcludeApps),
			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(
					huh.NewOption("debug", "debug"),
					huh.NewOption("info", "info"),
					huh.NewOption("warn", "warn"),
					huh.NewOption("error", "error"),
				).
				Value(&s.fLogLevel),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	s.editing = true
}

// applyForm copies the form values into the config. Invalid combinations
// are left to config validation on save.
func (s *SettingsTab) applyForm() error {
	if s.cfg == nil {
		return fmt.Errorf("no config loaded")
	}
	s.cfg.EnableCommandTabOverride = s.fCommandTab
	s.cfg.EnableControlSpace = s.fControlSpace
	s.cfg.EnableGestures = s.fGestures
	s.cfg.CycleModifier = s.fCycleModifier
	s.cfg.SidebarEdge = s.fSidebarEdge
	s.cfg.ShowMinimizedWindows = s.fShowMinimized
	s.cfg.LogLevel = s.fLogLevel
	if v, err := strconv.Atoi(strings.TrimSpace(s.fQuickDelay)); err == nil {
		s.cfg.QuickSwitchDelayMs = v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(s.fEdgeThreshold), 64); err == nil {
		s.cfg.GestureEdgeThreshold = v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(s.fTriggerDist), 64); err == nil {
		s.cfg.GestureTriggerThreshold = v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(s.fAcronymBonus), 64); err == nil {
		s.cfg.AcronymBonus = v
	}
	s.cfg.ExcludeApps = splitList(s.fExcludeApps)
	return s.cfg.Validate()
}

// View implements tea.Model.
func (s SettingsTab) View() string {
	if s.editing && s.form != nil {
		header := lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true).Render("Editing Settings") +
			lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("  (esc to cancel)")
		return lipgloss.NewStyle().
			Width(s.width).
			Height(s.height).
			Padding(1, 2).
			Render(header + "\n\n" + s.form.View())
	}

	cfg := s.cfg
	if cfg == nil {
		return lipgloss.NewStyle().
			Width(s.width).
			Height(s.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No config loaded")
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(24).
		Align(lipgloss.Right).
		PaddingRight(2)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	lines := []string{
		"",
		row("Quick Switch", onOff(cfg.EnableCommandTabOverride)+" ("+cfg.CycleModifier+"+Tab)"),
		row("Quick Switch Delay", fmt.Sprintf("%d ms", cfg.QuickSwitchDelayMs)),
		row("Search Shortcut", onOff(cfg.EnableControlSpace)),
		"",
		row("Edge Gestures", onOff(cfg.EnableGestures)),
		row("Sidebar Edge", cfg.SidebarEdge),
		row("Gesture Distances", fmt.Sprintf("edge %s px, trigger %s px", formatFloat(cfg.GestureEdgeThreshold), formatFloat(cfg.GestureTriggerThreshold))),
		"",
		row("Minimized Windows", onOff(cfg.ShowMinimizedWindows)),
		row("Acronym Bonus", formatFloat(cfg.AcronymBonus)),
		row("Excluded Apps", displayOrDefault(strings.Join(cfg.ExcludeApps, ", "), "(none)")),
		row("Log Level", cfg.LogLevel),
		"",
	}
	if s.err != nil {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("  "+s.err.Error()), "")
	}
	lines = append(lines, dimStyle.Render("  Press 'e' to edit settings, ctrl-s to save"))

	return lipgloss.NewStyle().
		Width(s.width).
		Height(s.height).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

func intInRange(lo, hi int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("must be a whole number")
		}
		if n < lo || n > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

func positiveFloat(v string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 {
		return fmt.Errorf("must be a non-negative number")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func displayOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
