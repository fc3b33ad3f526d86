// Package catalog builds the list of switchable windows.
package catalog

import (
	"github.com/1broseidon/paneswitch/internal/platform"
)

// Record is one switchable entry: a concrete window, or an app-only
// placeholder for a running application with no window.
//
// Records are produced fresh by every refresh and never mutated afterwards.
// Field fallbacks: Title may be empty; Bounds is zero for placeholders;
// Desktop is platform.StickyDesktop when unknown.
type Record struct {
	ID         int64         `json:"id"`
	PID        int           `json:"pid"`
	Owner      string        `json:"owner"`
	Title      string        `json:"title"`
	Bounds     platform.Rect `json:"bounds"`
	Layer      int           `json:"layer"`
	OnScreen   bool          `json:"on_screen"`
	Fullscreen bool          `json:"fullscreen"`
	AppOnly    bool          `json:"app_only"`
	Desktop    int           `json:"desktop"`
	Icon       string        `json:"icon,omitempty"`
	// WindowID is the OS window id; zero for placeholders and windows the
	// platform did not identify.
	WindowID platform.WindowID `json:"window_id,omitempty"`
}

// DisplayName is the title, or the owner name when the title is empty.
func (r Record) DisplayName() string {
	if r.Title == "" {
		return r.Owner
	}
	return r.Title
}

// FullDisplayName is "owner - title", or the owner alone.
func (r Record) FullDisplayName() string {
	if r.Title == "" {
		return r.Owner
	}
	return r.Owner + " - " + r.Title
}

// SyntheticBase offsets synthetic ids above the 32-bit range used by
// platform window ids so the two never collide.
const SyntheticBase int64 = 1 << 32

// Each pid owns a block of 1<<syntheticSlotBits ids above SyntheticBase.
// Slot 0 is the app-only placeholder, slots 1.. are windows without an id.
const syntheticSlotBits = 24

// MaxSyntheticWindows is how many id-less windows of one pid get an id.
const MaxSyntheticWindows = 1<<syntheticSlotBits - 1

// SyntheticID derives the id of the index-th window of pid. It is only
// stable within one refresh. index must be below MaxSyntheticWindows.
func SyntheticID(pid, index int) int64 {
	return SyntheticBase + int64(pid)<<syntheticSlotBits + int64(index) + 1
}

// AppOnlyID is the id of the placeholder record for pid.
func AppOnlyID(pid int) int64 {
	return SyntheticBase + int64(pid)<<syntheticSlotBits
}

// IsSynthetic reports whether id was derived rather than assigned by the OS.
func IsSynthetic(id int64) bool {
	return id >= SyntheticBase
}
