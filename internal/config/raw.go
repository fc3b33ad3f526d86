package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// UnmarshalTOML accepts the same two shapes in TOML files.
func (l *IncludeList) UnmarshalTOML(value any) error {
	switch v := value.(type) {
	case string:
		*l = []string{v}
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, s)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawConfig is one configuration file as written. Nil fields were not set
// and leave the lower layer untouched.
type RawConfig struct {
	Include IncludeList `yaml:"include" toml:"include"`

	EnableCommandTabOverride *bool    `yaml:"enable_command_tab_override" toml:"enable_command_tab_override"`
	EnableControlSpace       *bool    `yaml:"enable_control_space" toml:"enable_control_space"`
	EnableGestures           *bool    `yaml:"enable_gestures" toml:"enable_gestures"`
	GestureEdgeThreshold     *float64 `yaml:"gesture_edge_threshold" toml:"gesture_edge_threshold"`
	GestureTriggerThreshold  *float64 `yaml:"gesture_trigger_threshold" toml:"gesture_trigger_threshold"`
	QuickSwitchDelayMs       *int     `yaml:"quick_switch_delay_ms" toml:"quick_switch_delay_ms"`
	PermissionCacheMs        *int     `yaml:"permission_cache_ms" toml:"permission_cache_ms"`
	RefreshIntervalMs        *int     `yaml:"refresh_interval_ms" toml:"refresh_interval_ms"`
	SidebarEdge              *string  `yaml:"sidebar_edge" toml:"sidebar_edge"`
	ShowMinimizedWindows     *bool    `yaml:"show_minimized_windows" toml:"show_minimized_windows"`
	AcronymBonus             *float64 `yaml:"acronym_bonus" toml:"acronym_bonus"`
	CycleModifier            *string  `yaml:"cycle_modifier" toml:"cycle_modifier"`

	ExcludeApps    []string          `yaml:"exclude_apps" toml:"exclude_apps"`
	TrackApps      []string          `yaml:"track_apps" toml:"track_apps"`
	LaunchCommands map[string]string `yaml:"launch_commands" toml:"launch_commands"`

	LogLevel   *string `yaml:"log_level" toml:"log_level"`
	Display    *string `yaml:"display" toml:"display"`
	XAuthority *string `yaml:"xauthority" toml:"xauthority"`
}

// merge layers o on top of r. Lists are appended, launch commands are
// merged per app and scalars are replaced.
func (r RawConfig) merge(o RawConfig) RawConfig {
	out := r
	setPtr(&out.EnableCommandTabOverride, o.EnableCommandTabOverride)
	setPtr(&out.EnableControlSpace, o.EnableControlSpace)
	setPtr(&out.EnableGestures, o.EnableGestures)
	setPtr(&out.GestureEdgeThreshold, o.GestureEdgeThreshold)
	setPtr(&out.GestureTriggerThreshold, o.GestureTriggerThreshold)
	setPtr(&out.QuickSwitchDelayMs, o.QuickSwitchDelayMs)
	setPtr(&out.PermissionCacheMs, o.PermissionCacheMs)
	setPtr(&out.RefreshIntervalMs, o.RefreshIntervalMs)
	setPtr(&out.SidebarEdge, o.SidebarEdge)
	setPtr(&out.ShowMinimizedWindows, o.ShowMinimizedWindows)
	setPtr(&out.AcronymBonus, o.AcronymBonus)
	setPtr(&out.CycleModifier, o.CycleModifier)
	setPtr(&out.LogLevel, o.LogLevel)
	setPtr(&out.Display, o.Display)
	setPtr(&out.XAuthority, o.XAuthority)

	out.ExcludeApps = append(append([]string(nil), r.ExcludeApps...), o.ExcludeApps...)
	out.TrackApps = append(append([]string(nil), r.TrackApps...), o.TrackApps...)
	if len(o.LaunchCommands) > 0 {
		merged := make(map[string]string, len(r.LaunchCommands)+len(o.LaunchCommands))
		for k, v := range r.LaunchCommands {
			merged[k] = v
		}
		for k, v := range o.LaunchCommands {
			merged[k] = v
		}
		out.LaunchCommands = merged
	}
	out.Include = nil
	return out
}

func setPtr[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}
