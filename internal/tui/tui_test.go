package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/paneswitch/internal/config"
	"github.com/1broseidon/paneswitch/internal/ipc"
)

type fakeClient struct {
	windows   []ipc.WindowInfo
	activated []int64
	reloads   int
	failNext  error
}

func (f *fakeClient) Ping() error { return nil }

func (f *fakeClient) Status() (*ipc.StatusData, error) {
	return &ipc.StatusData{DaemonRunning: true, Trusted: true, Windows: len(f.windows), Mode: "cycle"}, nil
}

func (f *fakeClient) Search(query string) ([]ipc.WindowInfo, error) {
	var out []ipc.WindowInfo
	for _, w := range f.windows {
		if strings.Contains(strings.ToLower(w.Owner), strings.ToLower(query)) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeClient) Activate(id int64) error {
	if err := f.failNext; err != nil {
		f.failNext = nil
		return err
	}
	f.activated = append(f.activated, id)
	return nil
}

func (f *fakeClient) Reload() error {
	f.reloads++
	return nil
}

func newFakeClient() *fakeClient {
	return &fakeClient{windows: []ipc.WindowInfo{
		{ID: 1, Owner: "Firefox", Title: "Docs", Shortcut: "f"},
		{ID: 2, Owner: "Terminal", Title: "zsh", Shortcut: "t"},
		{ID: 3, Owner: "Mail", AppOnly: true, Shortcut: "m"},
	}}
}

func update(t *testing.T, p Picker, msg tea.Msg) (Picker, tea.Cmd) {
	t.Helper()
	m, cmd := p.Update(msg)
	return m.(Picker), cmd
}

func TestPicker_ActivateSelection(t *testing.T) {
	client := newFakeClient()
	p := NewPicker(client, true)

	p, _ = update(t, p, p.search("")())
	if len(p.windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(p.windows))
	}

	p, _ = update(t, p, tea.KeyMsg{Type: tea.KeyDown})
	if p.selected != 1 {
		t.Fatalf("expected selection 1, got %d", p.selected)
	}
	p, _ = update(t, p, tea.KeyMsg{Type: tea.KeyUp})
	p, _ = update(t, p, tea.KeyMsg{Type: tea.KeyUp})
	if p.selected != 2 {
		t.Fatalf("expected selection to wrap to 2, got %d", p.selected)
	}

	p, cmd := update(t, p, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected an activation command")
	}
	p, cmd = update(t, p, cmd())
	if len(client.activated) != 1 || client.activated[0] != 3 {
		t.Fatalf("expected window 3 activated, got %v", client.activated)
	}
	if cmd == nil {
		t.Fatalf("expected standalone picker to quit")
	}
	if w, ok := p.Activated(); !ok || w.Owner != "Mail" {
		t.Fatalf("unexpected activated window %+v, %v", w, ok)
	}
}

func TestPicker_ActivationErrorIsShown(t *testing.T) {
	client := newFakeClient()
	client.failNext = errors.New("window not in catalog")
	p := NewPicker(client, true)
	p, _ = update(t, p, p.search("")())

	p, cmd := update(t, p, tea.KeyMsg{Type: tea.KeyEnter})
	p, _ = update(t, p, cmd())
	if p.err == nil {
		t.Fatalf("expected activation error to be kept")
	}
	if _, ok := p.Activated(); ok {
		t.Fatalf("expected no activated window")
	}
	if !strings.Contains(p.View(), "window not in catalog") {
		t.Fatalf("expected error in view")
	}
}

func TestPicker_TypingSearchesAndDropsStaleResults(t *testing.T) {
	client := newFakeClient()
	p := NewPicker(client, false)

	p, cmd := update(t, p, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	if p.input.Value() != "t" || cmd == nil {
		t.Fatalf("expected query %q with a search command, got %q", "t", p.input.Value())
	}

	p, _ = update(t, p, searchResultMsg{query: "", windows: client.windows})
	if len(p.windows) != 0 {
		t.Fatalf("stale results must be ignored, got %d windows", len(p.windows))
	}

	p, _ = update(t, p, p.search("t")())
	if len(p.windows) != 1 || p.windows[0].Owner != "Terminal" {
		t.Fatalf("unexpected results %+v", p.windows)
	}
}

func TestConfigDiff(t *testing.T) {
	original := config.DefaultConfig()
	if lines := configDiff(original, cloneConfig(original)); lines != nil {
		t.Fatalf("expected no diff for identical configs, got %+v", lines)
	}

	current := cloneConfig(original)
	current.SidebarEdge = "right"
	lines := configDiff(original, current)

	var removed, added bool
	for _, l := range lines {
		switch {
		case l.kind == diffRemoved && strings.Contains(l.text, "sidebar_edge: left"):
			removed = true
		case l.kind == diffAdded && strings.Contains(l.text, "sidebar_edge: right"):
			added = true
		}
	}
	if !removed || !added {
		t.Fatalf("expected sidebar_edge change in diff, got %+v", lines)
	}
	if len(lines) > 6 {
		t.Fatalf("expected context trimmed to two lines, got %d lines", len(lines))
	}
}

func TestSaveOverlay_SavesAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	original := config.DefaultConfig()
	current := cloneConfig(original)
	current.QuickSwitchDelayMs = 80
	client := newFakeClient()

	var s SaveOverlay
	s.Show(original, current)
	if !s.Active() || s.phase != savePreview {
		t.Fatalf("expected preview phase")
	}
	s = s.Update(tea.KeyMsg{Type: tea.KeyEnter}, current, path, client, true)
	if !s.SaveSucceeded() {
		t.Fatalf("save failed: %v", s.err)
	}
	if client.reloads != 1 {
		t.Fatalf("expected daemon reload, got %d", client.reloads)
	}

	res, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload saved config: %v", err)
	}
	if res.Config.QuickSwitchDelayMs != 80 {
		t.Fatalf("expected saved delay 80, got %d", res.Config.QuickSwitchDelayMs)
	}

	s = s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, current, path, client, true)
	if s.Active() {
		t.Fatalf("expected any key to dismiss the result")
	}
}

func TestSaveOverlay_NoChanges(t *testing.T) {
	cfg := config.DefaultConfig()
	var s SaveOverlay
	s.Show(cfg, cloneConfig(cfg))
	if s.phase != saveResult || s.err == nil {
		t.Fatalf("expected a no-changes result, got phase %v err %v", s.phase, s.err)
	}
}

func TestSaveOverlay_InvalidConfigNotWritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	original := config.DefaultConfig()
	current := cloneConfig(original)
	current.SidebarEdge = "top"

	var s SaveOverlay
	s.Show(original, current)
	s = s.Update(tea.KeyMsg{Type: tea.KeyEnter}, current, path, nil, false)
	if s.err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file written, stat err %v", err)
	}
}

func TestSettingsApplyForm(t *testing.T) {
	cfg := config.DefaultConfig()
	s := NewSettingsTab(cfg)
	s.startEditing()

	s.fSidebarEdge = "right"
	s.fQuickDelay = "75"
	s.fExcludeApps = " Slack, ,Zoom "
	s.fGestures = false
	if err := s.applyForm(); err != nil {
		t.Fatalf("applyForm: %v", err)
	}
	if cfg.SidebarEdge != "right" || cfg.QuickSwitchDelayMs != 75 || cfg.EnableGestures {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.ExcludeApps) != 2 || cfg.ExcludeApps[0] != "Slack" || cfg.ExcludeApps[1] != "Zoom" {
		t.Fatalf("unexpected exclude list %v", cfg.ExcludeApps)
	}

	s.fQuickDelay = "5000"
	if err := s.applyForm(); err == nil {
		t.Fatalf("expected out-of-range delay to fail validation")
	}
}

func TestIntInRange(t *testing.T) {
	check := intInRange(10, 1000)
	for _, v := range []string{"10", " 40 ", "1000"} {
		if err := check(v); err != nil {
			t.Fatalf("%q: %v", v, err)
		}
	}
	for _, v := range []string{"9", "abc", "1001"} {
		if err := check(v); err == nil {
			t.Fatalf("%q: expected error", v)
		}
	}
}
