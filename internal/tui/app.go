package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/paneswitch/internal/config"
)

// statusLine is the daemon state shown in the status bar.
type statusLine struct {
	trusted bool
	windows int
	mode    string
}

func (s statusLine) String() string {
	trust := "capture ok"
	if !s.trusted {
		trust = "capture denied"
	}
	return fmt.Sprintf("%s  windows:%d  mode:%s", trust, s.windows, s.mode)
}

// model is the root bubbletea model for the settings TUI.
type model struct {
	configPath string
	result     *config.LoadResult
	loadErr    error
	client     daemonClient
	status     *statusLine

	activeTab Tab
	picker    Picker
	settings  SettingsTab

	originalConfig *config.Config
	saveOverlay    SaveOverlay

	width  int
	height int
}

func newModel(configPath string, client daemonClient, tab Tab) model {
	m := model{
		configPath: configPath,
		client:     client,
		activeTab:  tab,
	}
	m.loadConfig()
	if m.result != nil {
		m.originalConfig = cloneConfig(m.result.Config)
	}
	m.refreshStatus()

	var cfg *config.Config
	if m.result != nil {
		cfg = m.result.Config
	}
	m.picker = NewPicker(client, false)
	m.settings = NewSettingsTab(cfg)
	return m
}

func (m *model) loadConfig() {
	var res *config.LoadResult
	var err error
	if m.configPath == "" {
		res, err = config.LoadWithSources()
	} else {
		res, err = config.LoadFromPath(m.configPath)
	}
	if err != nil {
		m.loadErr = err
		return
	}
	m.result = res
	if m.configPath == "" {
		m.configPath = res.Path
	}
}

func (m *model) refreshStatus() {
	m.status = nil
	if m.client == nil {
		return
	}
	data, err := m.client.Status()
	if err != nil {
		return
	}
	m.status = &statusLine{trusted: data.Trusted, windows: data.Windows, mode: data.Mode}
}

func (m model) connected() bool { return m.status != nil }

func (m model) contentHeight() int {
	return max(m.height-4, 1)
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	if m.connected() {
		return m.picker.Init()
	}
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.saveOverlay.Active() {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			wasPreview := m.saveOverlay.phase == savePreview
			m.saveOverlay = m.saveOverlay.Update(msg, m.result.Config, m.configPath, m.client, m.connected())
			if wasPreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = cloneConfig(m.result.Config)
			}
		case tea.WindowSizeMsg:
			m.width, m.height = msg.Width, msg.Height
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+s":
			if m.result != nil && !m.settings.editing {
				m.saveOverlay.Show(m.originalConfig, m.result.Config)
			}
			return m, nil
		case "tab":
			if m.activeTab == TabSettings && !m.settings.editing {
				m.activeTab = TabWindows
				return m, nil
			}
		case "shift+tab":
			if m.activeTab == TabWindows {
				m.activeTab = TabSettings
				return m, nil
			}
		case "q":
			if m.activeTab == TabSettings && !m.settings.editing {
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		sub := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
		updated, _ := m.picker.Update(sub)
		m.picker = updated.(Picker)
		m.settings, _ = m.settings.Update(sub)
		return m, nil

	case searchResultMsg, activatedMsg:
		updated, cmd := m.picker.Update(msg)
		m.picker = updated.(Picker)
		if _, ok := msg.(activatedMsg); ok {
			m.refreshStatus()
		}
		return m, cmd
	}

	switch m.activeTab {
	case TabWindows:
		updated, cmd := m.picker.Update(msg)
		m.picker = updated.(Picker)
		return m, cmd
	case TabSettings:
		var cmd tea.Cmd
		m.settings, cmd = m.settings.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	statusBar := renderStatusBar(m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.activeTab, m.width)
	contentHeight := max(m.height-lipgloss.Height(statusBar)-lipgloss.Height(tabBar)-lipgloss.Height(helpBar), 1)

	var content string
	switch {
	case m.saveOverlay.Active():
		content = m.saveOverlay.View(m.width, contentHeight)
	case m.loadErr != nil && m.activeTab == TabSettings:
		content = lipgloss.NewStyle().
			Width(m.width).
			Height(contentHeight).
			Padding(1, 2).
			Foreground(lipgloss.Color("196")).
			Render("Config error: " + m.loadErr.Error())
	case m.activeTab == TabWindows && !m.connected():
		content = lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center,
			pickerDimStyle.Render("Start the daemon with 'paneswitch daemon' to list windows"))
	case m.activeTab == TabWindows:
		content = lipgloss.NewStyle().Height(contentHeight).Padding(0, 1).Render(m.picker.View())
	default:
		content = m.settings.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, statusBar, tabBar, content, helpBar)
}
