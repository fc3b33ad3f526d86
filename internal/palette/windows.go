package palette

import (
	"strings"

	"github.com/1broseidon/paneswitch/internal/ipc"
)

// WindowItems converts the daemon's window list into menu rows. The first
// window is the most recently used one and starts highlighted.
func WindowItems(windows []ipc.WindowInfo) []Item {
	items := make([]Item, 0, len(windows))
	for i, w := range windows {
		label := w.Owner
		switch {
		case w.AppOnly:
			label += "  (no windows)"
		case w.Title != "":
			label += " - " + w.Title
		}
		if w.Shortcut != "" {
			label = "[" + w.Shortcut + "] " + label
		}
		items = append(items, Item{
			Label:    label,
			Icon:     strings.ToLower(strings.ReplaceAll(w.Owner, " ", "-")),
			Meta:     w.Title,
			IsActive: i == 0,
		})
	}
	return items
}

// PickWindow shows windows in backend and returns the chosen one.
func PickWindow(backend Backend, windows []ipc.WindowInfo) (ipc.WindowInfo, error) {
	if len(windows) == 0 {
		return ipc.WindowInfo{}, ErrCancelled
	}
	idx, err := backend.Show("window", WindowItems(windows))
	if err != nil {
		return ipc.WindowInfo{}, err
	}
	return windows[idx], nil
}
