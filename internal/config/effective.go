package config

import "fmt"

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" {
		return fmt.Sprintf("%s: %s: %v", e.Source.File, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw on top of the defaults and validates
// the result.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()
	applyPtr(&cfg.EnableCommandTabOverride, raw.EnableCommandTabOverride)
	applyPtr(&cfg.EnableControlSpace, raw.EnableControlSpace)
	applyPtr(&cfg.EnableGestures, raw.EnableGestures)
	applyPtr(&cfg.GestureEdgeThreshold, raw.GestureEdgeThreshold)
	applyPtr(&cfg.GestureTriggerThreshold, raw.GestureTriggerThreshold)
	applyPtr(&cfg.QuickSwitchDelayMs, raw.QuickSwitchDelayMs)
	applyPtr(&cfg.PermissionCacheMs, raw.PermissionCacheMs)
	applyPtr(&cfg.RefreshIntervalMs, raw.RefreshIntervalMs)
	applyPtr(&cfg.SidebarEdge, raw.SidebarEdge)
	applyPtr(&cfg.ShowMinimizedWindows, raw.ShowMinimizedWindows)
	applyPtr(&cfg.AcronymBonus, raw.AcronymBonus)
	applyPtr(&cfg.CycleModifier, raw.CycleModifier)
	applyPtr(&cfg.LogLevel, raw.LogLevel)
	applyPtr(&cfg.Display, raw.Display)
	applyPtr(&cfg.XAuthority, raw.XAuthority)

	cfg.ExcludeApps = append(cfg.ExcludeApps, raw.ExcludeApps...)
	cfg.TrackApps = append(cfg.TrackApps, raw.TrackApps...)
	for app, cmd := range raw.LaunchCommands {
		cfg.LaunchCommands[app] = cmd
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyPtr[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
