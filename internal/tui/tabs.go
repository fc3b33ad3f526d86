package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Tab identifies a TUI tab.
type Tab int

const (
	TabWindows Tab = iota
	TabSettings
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabWindows:
		return "Windows"
	case TabSettings:
		return "Settings"
	default:
		return "?"
	}
}

var (
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("236")).Padding(0, 2)
	tabBarStyle      = lipgloss.NewStyle().MarginBottom(1)
	tabGap           = lipgloss.NewStyle().Background(lipgloss.Color("235")).SetString(" ")
)

func renderTabBar(active Tab, width int) string {
	var tabs []string
	for i := Tab(0); i < tabCount; i++ {
		if i > 0 {
			tabs = append(tabs, tabGap.Render())
		}
		label := string(rune('1'+i)) + ":" + i.String()
		if i == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}
	return tabBarStyle.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

// renderStatusBar shows whether the daemon answers and its switcher state.
func renderStatusBar(status *statusLine, width int) string {
	text := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●") + " daemon not running"
	if status != nil {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		text = dot + " daemon connected  " + status.String()
	}
	return lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1).
		Render(text)
}

func renderHelpBar(active Tab, width int) string {
	help := "↑/↓: select  enter: activate  shift-tab: settings  ctrl-c: quit"
	if active == TabSettings {
		help = "tab: windows  e: edit  ctrl-s: save  q/ctrl-c: quit"
	}
	return lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1).
		Render(help)
}
