package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// StickyDesktop is returned for windows shown on every desktop.
const StickyDesktop = -1

// sourcePager marks EWMH requests as coming from a pager, which window
// managers honour without focus-stealing prevention.
const sourcePager = 2

// CurrentDesktop returns the current virtual desktop number (0-indexed)
// from _NET_CURRENT_DESKTOP.
func (c *Connection) CurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("get current desktop: %w", err)
	}
	return int(desktop), nil
}

// WindowDesktop returns the desktop a window is on from _NET_WM_DESKTOP,
// or StickyDesktop for windows on all desktops.
func (c *Connection) WindowDesktop(win xproto.Window) (int, error) {
	desktop, err := ewmh.WmDesktopGet(c.XUtil, win)
	if err != nil {
		return 0, fmt.Errorf("get window desktop: %w", err)
	}
	if desktop == 0xFFFFFFFF {
		return StickyDesktop, nil
	}
	return int(desktop), nil
}

// DesktopCount returns the number of virtual desktops.
func (c *Connection) DesktopCount() (int, error) {
	count, err := ewmh.NumberOfDesktopsGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("get desktop count: %w", err)
	}
	return int(count), nil
}

// ActivateWindow asks the window manager to switch to the window's desktop,
// raise it and focus it via _NET_ACTIVE_WINDOW.
func (c *Connection) ActivateWindow(win xproto.Window) error {
	if err := c.sendRootMessage(win, "_NET_ACTIVE_WINDOW", sourcePager, uint32(xproto.TimeCurrentTime), 0); err != nil {
		return fmt.Errorf("activate window 0x%x: %w", uint32(win), err)
	}
	return nil
}

// ActiveWindow returns the window named by _NET_ACTIVE_WINDOW.
func (c *Connection) ActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// ClientList returns the managed top-level windows in mapping order.
func (c *Connection) ClientList() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("get client list: %w", err)
	}
	return clients, nil
}

// WatchRootProperties calls fn, on the event loop, whenever one of the named
// root window properties changes.
func (c *Connection) WatchRootProperties(fn func(name string), names ...string) error {
	watched := make(map[xproto.Atom]string, len(names))
	for _, name := range names {
		atom, err := c.Atom(name)
		if err != nil {
			return fmt.Errorf("intern %s: %w", name, err)
		}
		watched[atom] = name
	}

	if err := xwindow.New(c.XUtil, c.Root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("listen for root property changes: %w", err)
	}
	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if name, ok := watched[ev.Atom]; ok {
			fn(name)
		}
	}).Connect(c.XUtil, c.Root)
	return nil
}
