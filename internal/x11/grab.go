package x11

import (
	"fmt"
	"log"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// KeyboardGrab holds an active keyboard grab and routes every key event to
// a dedicated InputOnly window while held.
type KeyboardGrab struct {
	conn   *Connection
	window xproto.Window
	held   bool

	onPress   func(ev xevent.KeyPressEvent)
	onRelease func(ev xevent.KeyReleaseEvent)
	attached  bool
}

// NewKeyboardGrab prepares a grab. Nothing is grabbed until Acquire.
func NewKeyboardGrab(conn *Connection, onPress func(xevent.KeyPressEvent), onRelease func(xevent.KeyReleaseEvent)) *KeyboardGrab {
	return &KeyboardGrab{conn: conn, onPress: onPress, onRelease: onRelease}
}

// Held reports whether the grab is active.
func (g *KeyboardGrab) Held() bool { return g.held }

// Acquire grabs the keyboard. It must run on the event loop goroutine.
func (g *KeyboardGrab) Acquire() error {
	if g.held {
		return nil
	}
	if err := g.ensureWindow(); err != nil {
		return err
	}
	xu := g.conn.XUtil

	grab := func() (*xproto.GrabKeyboardReply, error) {
		return xproto.GrabKeyboard(
			xu.Conn(),
			false,
			g.conn.Root,
			xproto.TimeCurrentTime,
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
		).Reply()
	}

	reply, err := grab()
	if err != nil {
		return fmt.Errorf("grab keyboard: %w", err)
	}
	// A passive hotkey grab of ours may still be active.
	if reply.Status == xproto.GrabStatusAlreadyGrabbed {
		xproto.UngrabKeyboard(xu.Conn(), xproto.TimeCurrentTime)
		if reply, err = grab(); err != nil {
			return fmt.Errorf("grab keyboard: %w", err)
		}
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("keyboard grab failed with status %d", reply.Status)
	}

	xevent.RedirectKeyEvents(xu, g.window)
	if !g.attached {
		if g.onPress != nil {
			xevent.KeyPressFun(func(_ *xgbutil.XUtil, ev xevent.KeyPressEvent) {
				g.onPress(ev)
			}).Connect(xu, g.window)
		}
		if g.onRelease != nil {
			xevent.KeyReleaseFun(func(_ *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
				g.onRelease(ev)
			}).Connect(xu, g.window)
		}
		g.attached = true
	}
	g.held = true
	log.Println("paneswitch: keyboard grabbed")
	return nil
}

// Release drops the grab. Safe to call when not held.
func (g *KeyboardGrab) Release() {
	if !g.held {
		return
	}
	xu := g.conn.XUtil
	xproto.UngrabKeyboard(xu.Conn(), xproto.TimeCurrentTime)
	xevent.RedirectKeyEvents(xu, 0)
	if g.attached {
		xevent.Detach(xu, g.window)
		g.attached = false
	}
	g.held = false
	log.Println("paneswitch: keyboard released")
}

// Destroy releases the grab and destroys the event window.
func (g *KeyboardGrab) Destroy() {
	g.Release()
	if g.window != 0 {
		xproto.DestroyWindow(g.conn.XUtil.Conn(), g.window)
		g.window = 0
	}
}

func (g *KeyboardGrab) ensureWindow() error {
	if g.window != 0 {
		return nil
	}
	wid, err := createInputOnly(g.conn, Rect{Width: 1, Height: 1}, xproto.EventMaskKeyPress|xproto.EventMaskKeyRelease)
	if err != nil {
		return err
	}
	xproto.MapWindow(g.conn.XUtil.Conn(), wid)
	g.window = wid
	return nil
}

// createInputOnly creates an unmapped InputOnly window that never draws.
func createInputOnly(c *Connection, r Rect, mask uint32) (xproto.Window, error) {
	conn := c.XUtil.Conn()
	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateWindowChecked(
		conn,
		0, // depth must be 0 for InputOnly
		wid,
		c.Root,
		int16(r.X), int16(r.Y),
		uint16(max(1, r.Width)), uint16(max(1, r.Height)),
		0,
		xproto.WindowClassInputOnly,
		xproto.Visualid(0),
		xproto.CwOverrideRedirect|xproto.CwEventMask,
		// Values follow mask bit order: override_redirect before event_mask.
		[]uint32{1, mask},
	).Check()
	if err != nil {
		return 0, fmt.Errorf("create input window: %w", err)
	}
	return wid, nil
}
