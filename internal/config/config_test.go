package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.QuickSwitchDelay() != 40*time.Millisecond {
		t.Fatalf("expected 40ms quick switch delay, got %v", cfg.QuickSwitchDelay())
	}
	if !cfg.EnableCommandTabOverride || !cfg.EnableControlSpace || !cfg.EnableGestures {
		t.Fatalf("expected all triggers enabled by default")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files loaded, got %v", res.Files)
	}
	if res.Config.SidebarEdge != "left" {
		t.Fatalf("expected default sidebar edge, got %q", res.Config.SidebarEdge)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.AcronymBonus != DefaultAcronymBonus {
		t.Fatalf("expected default acronym bonus, got %v", res.Config.AcronymBonus)
	}
}

func TestLoadFromPath_YAMLOverridesAndExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"quick_switch_delay_ms: 120",
		"sidebar_edge: right",
		"enable_gestures: false",
		"launch_commands:",
		"  Firefox: firefox --new-window",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.QuickSwitchDelayMs != 120 {
		t.Fatalf("expected 120, got %d", res.Config.QuickSwitchDelayMs)
	}
	if res.Config.SidebarEdge != "right" || res.Config.EnableGestures {
		t.Fatalf("unexpected config: %+v", res.Config)
	}

	val, src, err := Explain(res, "sidebar_edge")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "right" {
		t.Fatalf("expected right, got %v", val)
	}
	if src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("expected file source on line 2, got %+v", src)
	}

	val, _, err = Explain(res, "launch_commands.Firefox")
	if err != nil {
		t.Fatalf("explain launch command: %v", err)
	}
	if val != "firefox --new-window" {
		t.Fatalf("unexpected launch command %v", val)
	}

	_, src, err = Explain(res, "acronym_bonus")
	if err != nil {
		t.Fatalf("explain acronym_bonus: %v", err)
	}
	if src.Kind != SourceDefault {
		t.Fatalf("expected default source, got %+v", src)
	}

	if _, _, err := Explain(res, "no_such_key"); err == nil {
		t.Fatalf("expected error for unknown path")
	}
}

func TestLoadFromPath_UnknownYAMLFieldRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "quick_switch_delay: 40\n")

	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
}

func TestLoadFromPath_ValidationErrorCarriesSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "log_level: info\nsidebar_edge: top\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if verr.Path != "sidebar_edge" {
		t.Fatalf("expected path sidebar_edge, got %q", verr.Path)
	}
	if verr.Source.Line != 2 {
		t.Fatalf("expected line 2, got %+v", verr.Source)
	}
	if !strings.Contains(err.Error(), "config.yaml:2:") {
		t.Fatalf("expected file:line in error, got %q", err.Error())
	}
}

func TestValidate_QuickSwitchDelayRange(t *testing.T) {
	for _, ms := range []int{9, 1001} {
		cfg := DefaultConfig()
		cfg.QuickSwitchDelayMs = ms
		if err := cfg.Validate(); err == nil {
			t.Fatalf("expected %dms to be rejected", ms)
		}
	}
	cfg := DefaultConfig()
	cfg.QuickSwitchDelayMs = 10
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected 10ms to be accepted, got %v", err)
	}
}

func TestLoadFromPath_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, strings.Join([]string{
		"quick_switch_delay_ms = 80",
		"acronym_bonus = 3.5",
		`cycle_modifier = "alt"`,
		`exclude_apps = ["Slack"]`,
		"",
		"[launch_commands]",
		`Terminal = "xterm"`,
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.QuickSwitchDelayMs != 80 || cfg.AcronymBonus != 3.5 || cfg.CycleModifier != "alt" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.ExcludeApps) != 1 || cfg.ExcludeApps[0] != "Slack" {
		t.Fatalf("unexpected exclude_apps %v", cfg.ExcludeApps)
	}
	if cfg.LaunchCommands["Terminal"] != "xterm" {
		t.Fatalf("unexpected launch_commands %v", cfg.LaunchCommands)
	}
	_, src, err := Explain(res, "cycle_modifier")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceFile || src.File == "" {
		t.Fatalf("expected file source, got %+v", src)
	}
}

func TestLoadFromPath_UnknownTOMLFieldRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "bogus = 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("expected error to name the key, got %q", err.Error())
	}
}

func TestLoadFromPath_IncludesMergeInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "conf.d", "10-apps.yaml"), "exclude_apps: [Steam]\nquick_switch_delay_ms: 200\n")
	writeFile(t, filepath.Join(dir, "conf.d", "20-apps.toml"), "exclude_apps = [\"Zoom\"]\n")
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include: conf.d\nexclude_apps: [Slack]\nquick_switch_delay_ms: 60\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := strings.Join(res.Config.ExcludeApps, ",")
	if got != "Steam,Zoom,Slack" {
		t.Fatalf("expected includes first then the including file, got %s", got)
	}
	if res.Config.QuickSwitchDelayMs != 60 {
		t.Fatalf("expected including file to win, got %d", res.Config.QuickSwitchDelayMs)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 files, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "include: b.yaml\n")
	writeFile(t, filepath.Join(dir, "b.yaml"), "include: a.yaml\n")

	_, err := LoadFromPath(filepath.Join(dir, "a.yaml"))
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestSaveTo_TOMLLoadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.SidebarEdge = "right"
	cfg.TrackApps = []string{"Mail"}
	cfg.LaunchCommands["Mail"] = "thunderbird"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.SidebarEdge != "right" || res.Config.LaunchCommands["Mail"] != "thunderbird" {
		t.Fatalf("unexpected reloaded config: %+v", res.Config)
	}
}

func TestSaveTo_RejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CycleModifier = "hyper"
	if err := cfg.SaveTo(filepath.Join(t.TempDir(), "config.yaml")); err == nil {
		t.Fatalf("expected invalid config not to be saved")
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	if cfg.SlogLevel().String() != "DEBUG" {
		t.Fatalf("expected DEBUG, got %s", cfg.SlogLevel())
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "quick_switch_delay_ms: 50\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	reloaded := make(chan *LoadResult, 4)
	w, err := NewWatcher(WatcherConfig{
		Path:     path,
		Debounce: 10 * time.Millisecond,
		OnReload: func(r *LoadResult) { reloaded <- r },
	}, res.Files)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	// Invalid edits are ignored.
	writeFile(t, path, "quick_switch_delay_ms: 5\n")
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "quick_switch_delay_ms: 90\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-reloaded:
			if r.Config.QuickSwitchDelayMs == 90 {
				cancel()
				<-done
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for reload")
		}
	}
}
