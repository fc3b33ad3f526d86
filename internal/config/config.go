package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Defaults for the tunable options.
const (
	DefaultGestureEdgeThreshold    = 50.0
	DefaultGestureTriggerThreshold = 15.0
	DefaultQuickSwitchDelayMs      = 40
	DefaultPermissionCacheMs       = 100
	DefaultRefreshIntervalMs       = 500
	DefaultAcronymBonus            = 2.0
)

// Config is the effective paneswitch configuration.
type Config struct {
	EnableCommandTabOverride bool    `yaml:"enable_command_tab_override" toml:"enable_command_tab_override"`
	EnableControlSpace       bool    `yaml:"enable_control_space" toml:"enable_control_space"`
	EnableGestures           bool    `yaml:"enable_gestures" toml:"enable_gestures"`
	GestureEdgeThreshold     float64 `yaml:"gesture_edge_threshold" toml:"gesture_edge_threshold"`
	GestureTriggerThreshold  float64 `yaml:"gesture_trigger_threshold" toml:"gesture_trigger_threshold"`

	// QuickSwitchDelayMs is how long the cycle modifier must stay held after
	// the first Tab before the switcher is shown.
	QuickSwitchDelayMs int `yaml:"quick_switch_delay_ms" toml:"quick_switch_delay_ms"`
	PermissionCacheMs  int `yaml:"permission_cache_ms" toml:"permission_cache_ms"`
	RefreshIntervalMs  int `yaml:"refresh_interval_ms" toml:"refresh_interval_ms"`

	SidebarEdge          string  `yaml:"sidebar_edge" toml:"sidebar_edge"`
	ShowMinimizedWindows bool    `yaml:"show_minimized_windows" toml:"show_minimized_windows"`
	AcronymBonus         float64 `yaml:"acronym_bonus" toml:"acronym_bonus"`
	CycleModifier        string  `yaml:"cycle_modifier" toml:"cycle_modifier"`

	ExcludeApps    []string          `yaml:"exclude_apps,omitempty" toml:"exclude_apps,omitempty"`
	TrackApps      []string          `yaml:"track_apps,omitempty" toml:"track_apps,omitempty"`
	LaunchCommands map[string]string `yaml:"launch_commands,omitempty" toml:"launch_commands,omitempty"`

	LogLevel   string `yaml:"log_level" toml:"log_level"`
	Display    string `yaml:"display,omitempty" toml:"display,omitempty"`
	XAuthority string `yaml:"xauthority,omitempty" toml:"xauthority,omitempty"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		EnableCommandTabOverride: true,
		EnableControlSpace:       true,
		EnableGestures:           true,
		GestureEdgeThreshold:     DefaultGestureEdgeThreshold,
		GestureTriggerThreshold:  DefaultGestureTriggerThreshold,
		QuickSwitchDelayMs:       DefaultQuickSwitchDelayMs,
		PermissionCacheMs:        DefaultPermissionCacheMs,
		RefreshIntervalMs:        DefaultRefreshIntervalMs,
		SidebarEdge:              "left",
		ShowMinimizedWindows:     true,
		AcronymBonus:             DefaultAcronymBonus,
		CycleModifier:            "super",
		LaunchCommands:           map[string]string{},
		LogLevel:                 "info",
	}
}

// QuickSwitchDelay returns the quick-switch threshold.
func (c *Config) QuickSwitchDelay() time.Duration {
	return time.Duration(c.QuickSwitchDelayMs) * time.Millisecond
}

// PermissionCacheTTL returns how long a capability check is reused.
func (c *Config) PermissionCacheTTL() time.Duration {
	return time.Duration(c.PermissionCacheMs) * time.Millisecond
}

// RefreshInterval returns the catalog refresh period.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMs) * time.Millisecond
}

// SlogLevel maps log_level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks option ranges.
func (c *Config) Validate() error {
	if c.GestureEdgeThreshold <= 0 {
		return &ValidationError{Path: "gesture_edge_threshold", Err: fmt.Errorf("gesture_edge_threshold must be > 0")}
	}
	if c.GestureTriggerThreshold <= 0 {
		return &ValidationError{Path: "gesture_trigger_threshold", Err: fmt.Errorf("gesture_trigger_threshold must be > 0")}
	}
	if c.QuickSwitchDelayMs < 10 || c.QuickSwitchDelayMs > 1000 {
		return &ValidationError{Path: "quick_switch_delay_ms", Err: fmt.Errorf("quick_switch_delay_ms must be between 10 and 1000")}
	}
	if c.PermissionCacheMs < 10 || c.PermissionCacheMs > 5000 {
		return &ValidationError{Path: "permission_cache_ms", Err: fmt.Errorf("permission_cache_ms must be between 10 and 5000")}
	}
	if c.RefreshIntervalMs < 100 || c.RefreshIntervalMs > 60000 {
		return &ValidationError{Path: "refresh_interval_ms", Err: fmt.Errorf("refresh_interval_ms must be between 100 and 60000")}
	}
	switch c.SidebarEdge {
	case "left", "right":
	default:
		return &ValidationError{Path: "sidebar_edge", Err: fmt.Errorf("sidebar_edge must be one of: left, right")}
	}
	if c.AcronymBonus < 0 {
		return &ValidationError{Path: "acronym_bonus", Err: fmt.Errorf("acronym_bonus must be >= 0")}
	}
	switch c.CycleModifier {
	case "super", "alt":
	default:
		return &ValidationError{Path: "cycle_modifier", Err: fmt.Errorf("cycle_modifier must be one of: super, alt")}
	}
	for i, name := range c.ExcludeApps {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: fmt.Sprintf("exclude_apps[%d]", i), Err: fmt.Errorf("app name must not be empty")}
		}
	}
	for i, name := range c.TrackApps {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: fmt.Sprintf("track_apps[%d]", i), Err: fmt.Errorf("app name must not be empty")}
		}
	}
	for app, cmd := range c.LaunchCommands {
		if strings.TrimSpace(app) == "" {
			return &ValidationError{Path: "launch_commands", Err: fmt.Errorf("launch_commands contains an empty app name")}
		}
		if strings.TrimSpace(cmd) == "" {
			return &ValidationError{Path: "launch_commands." + app, Err: fmt.Errorf("launch command must not be empty")}
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	return nil
}

// Save writes the configuration to the standard location.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path, as TOML when the path ends in
// .toml and YAML otherwise. Comments and includes are not preserved.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal(formatFor(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Format is a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Marshal encodes the configuration.
func (c *Config) Marshal(format Format) ([]byte, error) {
	if format == FormatTOML {
		var sb strings.Builder
		if err := toml.NewEncoder(&sb).Encode(c); err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		return []byte(sb.String()), nil
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

func formatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}
