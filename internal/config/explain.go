package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given key path and where it
// was set.
//
// Supported paths are the top-level keys plus:
//
//	launch_commands.<app>
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

// Keys lists the top-level keys Explain accepts, in file order.
func Keys() []string {
	return append([]string(nil), keyOrder...)
}

var keyOrder = []string{
	"enable_command_tab_override",
	"enable_control_space",
	"enable_gestures",
	"gesture_edge_threshold",
	"gesture_trigger_threshold",
	"quick_switch_delay_ms",
	"permission_cache_ms",
	"refresh_interval_ms",
	"sidebar_edge",
	"show_minimized_windows",
	"acronym_bonus",
	"cycle_modifier",
	"exclude_apps",
	"track_apps",
	"launch_commands",
	"log_level",
	"display",
	"xauthority",
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.SplitN(path, ".", 2)
	if parts[0] == "launch_commands" && len(parts) == 2 {
		cmd, ok := cfg.LaunchCommands[parts[1]]
		if !ok {
			return nil, fmt.Errorf("unknown launch_commands entry %q", parts[1])
		}
		return cmd, nil
	}
	if len(parts) != 1 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}

	switch path {
	case "enable_command_tab_override":
		return cfg.EnableCommandTabOverride, nil
	case "enable_control_space":
		return cfg.EnableControlSpace, nil
	case "enable_gestures":
		return cfg.EnableGestures, nil
	case "gesture_edge_threshold":
		return cfg.GestureEdgeThreshold, nil
	case "gesture_trigger_threshold":
		return cfg.GestureTriggerThreshold, nil
	case "quick_switch_delay_ms":
		return cfg.QuickSwitchDelayMs, nil
	case "permission_cache_ms":
		return cfg.PermissionCacheMs, nil
	case "refresh_interval_ms":
		return cfg.RefreshIntervalMs, nil
	case "sidebar_edge":
		return cfg.SidebarEdge, nil
	case "show_minimized_windows":
		return cfg.ShowMinimizedWindows, nil
	case "acronym_bonus":
		return cfg.AcronymBonus, nil
	case "cycle_modifier":
		return cfg.CycleModifier, nil
	case "exclude_apps":
		return cfg.ExcludeApps, nil
	case "track_apps":
		return cfg.TrackApps, nil
	case "launch_commands":
		return cfg.LaunchCommands, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "display":
		return cfg.Display, nil
	case "xauthority":
		return cfg.XAuthority, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
