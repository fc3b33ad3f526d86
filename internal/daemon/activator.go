package daemon

import (
	"log/slog"

	"github.com/1broseidon/paneswitch/internal/catalog"
	"github.com/1broseidon/paneswitch/internal/mru"
	"github.com/1broseidon/paneswitch/internal/platform"
)

// activationBackend is the part of platform.Backend used for activation.
type activationBackend interface {
	Activate(platform.WindowID) error
	Launch(platform.App) error
}

// windowActivator raises catalog records. Windows are activated through the
// window manager; app-only entries run their configured launch command.
// Successful activations are recorded in the MRU tracker immediately,
// ahead of the window manager's _NET_ACTIVE_WINDOW update.
type windowActivator struct {
	backend activationBackend
	tracker *mru.Tracker
	logger  *slog.Logger
}

func (a *windowActivator) Activate(rec catalog.Record) bool {
	switch {
	case rec.AppOnly:
		if err := a.backend.Launch(platform.App{PID: rec.PID, Name: rec.Owner}); err != nil {
			a.logger.Warn("activate app failed", "owner", rec.Owner, "pid", rec.PID, "error", err)
			return false
		}
		a.tracker.Activated(rec.PID)
	case rec.WindowID == 0:
		a.logger.Warn("activate window failed: no window id", "owner", rec.Owner, "title", rec.Title)
		return false
	default:
		if err := a.backend.Activate(rec.WindowID); err != nil {
			a.logger.Warn("activate window failed", "window", rec.WindowID, "owner", rec.Owner, "error", err)
			return false
		}
		a.tracker.WindowActivated(rec.PID, rec.ID)
	}
	a.logger.Debug("activated", "id", rec.ID, "owner", rec.Owner, "title", rec.Title)
	return true
}
