package daemon

import (
	"context"
	"time"

	"github.com/1broseidon/paneswitch/internal/ipc"
	"github.com/1broseidon/paneswitch/internal/mainflow"
	"github.com/1broseidon/paneswitch/internal/search"
	"github.com/1broseidon/paneswitch/internal/switcher"
)

// ipcHandler serves IPC requests by running each one on the main flow.
type ipcHandler struct {
	d *Daemon
}

var _ ipc.Handler = (*ipcHandler)(nil)

// call runs fn on the main flow and returns its error.
func (h *ipcHandler) call(ctx context.Context, fn func() error) error {
	_, err := mainflow.CallResult(ctx, h.d.queue, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

func (h *ipcHandler) Status(ctx context.Context) (ipc.StatusData, error) {
	return mainflow.CallResult(ctx, h.d.queue, func() (ipc.StatusData, error) {
		d := h.d
		status := ipc.StatusData{
			DaemonRunning: true,
			RunID:         d.runID,
			UptimeSeconds: int64(time.Since(d.started).Seconds()),
			Trusted:       d.guard.IsTrusted(),
			Visible:       d.controller.IsVisible(),
			Mode:          d.controller.Mode().String(),
			Query:         d.controller.Query(),
			QuickSwitch:   d.machine.State().String(),
			Windows:       len(d.controller.Records()),
			Dropped:       d.queue.Dropped(),
			ConfigPath:    d.cfgPath,
		}
		if d.tap != nil {
			status.TapEnabled = d.tap.Enabled()
		}
		return status, nil
	})
}

func (h *ipcHandler) Show(ctx context.Context, mode string) error {
	m, err := switcher.ParseMode(mode)
	if err != nil {
		return err
	}
	return h.call(ctx, func() error {
		h.d.controller.Show(m)
		h.d.syncCapture()
		return nil
	})
}

func (h *ipcHandler) Hide(ctx context.Context) error {
	return h.call(ctx, func() error {
		h.d.machine.EscapePressed()
		h.d.syncCapture()
		return nil
	})
}

func (h *ipcHandler) Toggle(ctx context.Context, mode string) error {
	m, err := switcher.ParseMode(mode)
	if err != nil {
		return err
	}
	return h.call(ctx, func() error {
		h.d.controller.Toggle(m)
		h.d.syncCapture()
		return nil
	})
}

// List returns the switcher list as it would be drawn, without headers.
func (h *ipcHandler) List(ctx context.Context) ([]ipc.WindowInfo, error) {
	return mainflow.CallResult(ctx, h.d.queue, func() ([]ipc.WindowInfo, error) {
		d := h.d
		results := d.engine.Search("", d.controller.Records())
		list := switcher.BuildList(results, switcher.GroupOptions{CurrentDesktop: d.currentDesktop()})
		out := make([]ipc.WindowInfo, 0, list.Entries())
		for _, it := range list.Items {
			if it.IsHeader() {
				continue
			}
			info := windowInfo(search.Result{Window: it.Window})
			info.Shortcut = it.ShortcutString()
			out = append(out, info)
		}
		return out, nil
	})
}

// Search ranks the current snapshot, best match first.
func (h *ipcHandler) Search(ctx context.Context, query string) ([]ipc.WindowInfo, error) {
	return mainflow.CallResult(ctx, h.d.queue, func() ([]ipc.WindowInfo, error) {
		results := h.d.controller.Search(query)
		out := make([]ipc.WindowInfo, 0, len(results))
		for _, r := range results {
			out = append(out, windowInfo(r))
		}
		return out, nil
	})
}

func (h *ipcHandler) Activate(ctx context.Context, id int64) error {
	return h.call(ctx, func() error {
		h.d.machine.EscapePressed()
		err := h.d.controller.ActivateID(id)
		h.d.syncCapture()
		return err
	})
}

func (h *ipcHandler) Reload(ctx context.Context) error {
	return h.call(ctx, h.d.reload)
}

func (h *ipcHandler) Recheck(ctx context.Context) (bool, error) {
	return mainflow.CallResult(ctx, h.d.queue, func() (bool, error) {
		return h.d.guard.ForceRecheck(), nil
	})
}

func windowInfo(r search.Result) ipc.WindowInfo {
	w := r.Window
	return ipc.WindowInfo{
		ID:      w.ID,
		PID:     w.PID,
		Owner:   w.Owner,
		Title:   w.Title,
		Desktop: w.Desktop,
		AppOnly: w.AppOnly,
		Score:   r.Score,
	}
}
