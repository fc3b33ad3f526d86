package catalog

import (
	"strings"

	"github.com/1broseidon/paneswitch/internal/platform"
)

// MinWindowSize is the smallest width and height of a switchable window.
const MinWindowSize = 50

// deniedApps are shell, system and background components that own windows
// but are never switch targets.
var deniedApps = newNameSet(
	// macOS process names, kept so shared configs behave the same
	"Window Server",
	"Dock",
	"SystemUIServer",
	"Control Center",
	"Notification Center",
	"Spotlight",
	"WindowManager",
	"CursorUIViewService",
	"Open and Save Panel Service",
	"AutoFill",
	"universalAccessAuthWarn",
	"AXVisualSupportAgent",
	"CoreServicesUIAgent",
	"TextInputMenuAgent",
	"TextInputSwitcher",
	"WiFiAgent",
	"loginwindow",
	"talagent",
	"ScreenCaptureAgent",
	"imklaunchagent",
	"UAService",
	"Siri",
	"AssistiveControl",
	"Accessibility Inspector",
	"storeuid",
	"com.apple.preference.security.remoteservice",
	"UserNotificationCenter",
	"universalaccessd",
	"coreservicesd",

	// X11 shells and panels
	"Xfce4-panel",
	"Xfdesktop",
	"Plank",
	"Polybar",
	"Tint2",
	"Conky",
	"Desktop_window",
	"Nemo-desktop",
	"Gnome-shell",
	"Plasmashell",
	"Lxpanel",
	"Xscreensaver",
	"Dunst",
	"Paneswitch",
)

func newNameSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

var deniedSuffixes = []string{"agent", "service", "helper", "daemon"}

// Filter decides which apps and windows reach the catalog.
type Filter struct {
	extra map[string]struct{}
}

// NewFilter creates a filter that also denies the given app names
// (case-insensitive).
func NewFilter(excludeApps []string) Filter {
	f := Filter{extra: make(map[string]struct{}, len(excludeApps))}
	for _, name := range excludeApps {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			f.extra[name] = struct{}{}
		}
	}
	return f
}

// Excluded reports whether an application name is a known system or
// background component.
func (f Filter) Excluded(name string) bool {
	if _, ok := deniedApps[name]; ok {
		return true
	}
	lower := strings.ToLower(name)
	if _, ok := f.extra[lower]; ok {
		return true
	}
	for _, suffix := range deniedSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return strings.Contains(lower, "uiviewservice")
}

// Valid reports whether a window is user-facing: normal layer and larger
// than MinWindowSize in both dimensions.
func Valid(w platform.Window) bool {
	if w.Layer != platform.LayerNormal {
		return false
	}
	return w.Bounds.Width > MinWindowSize && w.Bounds.Height > MinWindowSize
}
