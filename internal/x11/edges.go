package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// EdgeStripWidth is the thickness of the scroll-sensitive strips.
const EdgeStripWidth = 2

// Wheel buttons as delivered by the core protocol.
const (
	ButtonWheelUp    xproto.Button = 4
	ButtonWheelDown  xproto.Button = 5
	ButtonWheelLeft  xproto.Button = 6
	ButtonWheelRight xproto.Button = 7
)

// EdgeStrips are thin InputOnly windows along the outer edges of the root
// window. Wheel events over them are reported to a callback; other buttons
// are not grabbed.
type EdgeStrips struct {
	conn    *Connection
	onWheel func(x, y int, button xproto.Button)
	windows []xproto.Window
}

// NewEdgeStrips prepares the strips. Nothing is created until Map.
func NewEdgeStrips(conn *Connection, onWheel func(x, y int, button xproto.Button)) *EdgeStrips {
	return &EdgeStrips{conn: conn, onWheel: onWheel}
}

// Mapped reports whether the strips are on screen.
func (s *EdgeStrips) Mapped() bool { return len(s.windows) > 0 }

// Map creates the strips and grabs the wheel buttons on them. It must run
// on the event loop goroutine.
func (s *EdgeStrips) Map() error {
	if s.Mapped() {
		return nil
	}
	root, err := s.conn.rootBounds()
	if err != nil {
		return err
	}
	w := EdgeStripWidth
	rects := []Rect{
		{X: 0, Y: 0, Width: w, Height: root.Height},
		{X: root.Width - w, Y: 0, Width: w, Height: root.Height},
		{X: 0, Y: 0, Width: root.Width, Height: w},
		{X: 0, Y: root.Height - w, Width: root.Width, Height: w},
	}

	xu := s.conn.XUtil
	for _, r := range rects {
		wid, err := createInputOnly(s.conn, r, 0)
		if err != nil {
			s.Unmap()
			return err
		}
		s.windows = append(s.windows, wid)
		for _, b := range []xproto.Button{ButtonWheelUp, ButtonWheelDown, ButtonWheelLeft, ButtonWheelRight} {
			button := b
			err := mousebind.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
				s.onWheel(int(ev.RootX), int(ev.RootY), button)
			}).Connect(xu, wid, fmt.Sprintf("%d", button), false, true)
			if err != nil {
				s.Unmap()
				return fmt.Errorf("grab wheel button %d: %w", button, err)
			}
		}
		xproto.ConfigureWindow(xu.Conn(), wid, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
		xproto.MapWindow(xu.Conn(), wid)
	}
	return nil
}

// Unmap destroys the strips and their grabs.
func (s *EdgeStrips) Unmap() {
	xu := s.conn.XUtil
	for _, wid := range s.windows {
		mousebind.Detach(xu, wid)
		xproto.DestroyWindow(xu.Conn(), wid)
	}
	s.windows = nil
}
