package x11

import (
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// WindowKind is the role a top-level window plays, from _NET_WM_WINDOW_TYPE.
type WindowKind int

const (
	KindNormal WindowKind = iota
	// KindPanel covers docks, toolbars and notifications.
	KindPanel
	KindDesktop
	// KindTransient covers splash screens, menus and tooltips.
	KindTransient
)

// WindowState is the subset of _NET_WM_STATE the switcher cares about.
type WindowState struct {
	Hidden      bool
	Fullscreen  bool
	SkipTaskbar bool
	Sticky      bool
}

// Kind classifies a window. Windows without a type are normal.
func (c *Connection) Kind(win xproto.Window) WindowKind {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return KindNormal
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
			return KindNormal
		case "_NET_WM_WINDOW_TYPE_DESKTOP":
			return KindDesktop
		case "_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_TOOLBAR",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return KindPanel
		case "_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_MENU",
			"_NET_WM_WINDOW_TYPE_UTILITY",
			"_NET_WM_WINDOW_TYPE_TOOLTIP":
			return KindTransient
		}
	}
	return KindNormal
}

// State reads _NET_WM_STATE.
func (c *Connection) State(win xproto.Window) WindowState {
	var st WindowState
	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return st
	}
	for _, s := range states {
		switch s {
		case "_NET_WM_STATE_HIDDEN":
			st.Hidden = true
		case "_NET_WM_STATE_FULLSCREEN":
			st.Fullscreen = true
		case "_NET_WM_STATE_SKIP_TASKBAR":
			st.SkipTaskbar = true
		case "_NET_WM_STATE_STICKY":
			st.Sticky = true
		}
	}
	return st
}

// Geometry returns the window's position in root coordinates and its size.
func (c *Connection) Geometry(win xproto.Window) (x, y, width, height int, ok bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return 0, 0, 0, 0, false
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, false
	}
	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), true
}

// Title returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) Title(win xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, win); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, win); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// Class returns the WM_CLASS instance and class names.
func (c *Connection) Class(win xproto.Window) (instance, class string) {
	wmClass, err := icccm.WmClassGet(c.XUtil, win)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(wmClass.Instance), strings.TrimSpace(wmClass.Class)
}

// PID returns _NET_WM_PID, or 0 when the client does not set it.
func (c *Connection) PID(win xproto.Window) int {
	pid, err := ewmh.WmPidGet(c.XUtil, win)
	if err != nil {
		return 0
	}
	return int(pid)
}
