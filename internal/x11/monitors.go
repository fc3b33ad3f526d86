package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Rect is a rectangle in root window coordinates.
type Rect struct {
	X, Y, Width, Height int
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Intersect returns the overlap of r and o; the zero Rect when they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x1, y1 := max(r.X, o.X), max(r.Y, o.Y)
	x2, y2 := min(r.X+r.Width, o.X+o.Width), min(r.Y+r.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	Bounds Rect
}

// Monitors lists active monitors using XRandR. Without RandR, the whole root
// window is reported as a single monitor.
func (c *Connection) Monitors() ([]Monitor, error) {
	monitors, err := c.randrMonitors()
	if err == nil && len(monitors) > 0 {
		return monitors, nil
	}

	root, gerr := c.rootBounds()
	if gerr != nil {
		if err != nil {
			return nil, err
		}
		return nil, gerr
	}
	return []Monitor{{ID: 0, Name: "screen", Bounds: root}}, nil
}

func (c *Connection) randrMonitors() ([]Monitor, error) {
	conn := c.XUtil.Conn()
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("randr init: %w", err)
	}
	resources, err := randr.GetScreenResources(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil || info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}
		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(conn, info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}
		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			Bounds: Rect{X: int(info.X), Y: int(info.Y), Width: int(info.Width), Height: int(info.Height)},
		})
	}
	return monitors, nil
}

func (c *Connection) rootBounds() (Rect, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return Rect{}, fmt.Errorf("get root geometry: %w", err)
	}
	return Rect{Width: int(geom.Width), Height: int(geom.Height)}, nil
}

// Pointer returns the pointer position in root coordinates.
func (c *Connection) Pointer() (x, y int, err error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("query pointer: %w", err)
	}
	return int(reply.RootX), int(reply.RootY), nil
}

// PointerMonitor returns the monitor under the pointer, or the first
// monitor when the pointer cannot be located.
func (c *Connection) PointerMonitor() (Monitor, error) {
	monitors, err := c.Monitors()
	if err != nil {
		return Monitor{}, err
	}
	if len(monitors) == 0 {
		return Monitor{}, fmt.Errorf("no monitors found")
	}
	if x, y, err := c.Pointer(); err == nil {
		for _, m := range monitors {
			if m.Bounds.Contains(x, y) {
				return m, nil
			}
		}
	}
	return monitors[0], nil
}

// WorkArea shrinks the monitor bounds by the struts of docks that overlap
// it. When no dock reserves space it falls back to _NET_WORKAREA.
func (c *Connection) WorkArea(m Monitor) Rect {
	root, err := c.rootBounds()
	if err != nil {
		return m.Bounds
	}
	if area, ok := c.strutArea(m.Bounds, root); ok {
		return area
	}

	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return m.Bounds
	}
	idx := 0
	if d, err := c.CurrentDesktop(); err == nil && d >= 0 && d < len(workArea) {
		idx = d
	}
	wa := workArea[idx]
	area := m.Bounds.Intersect(Rect{X: wa.X, Y: wa.Y, Width: int(wa.Width), Height: int(wa.Height)})
	if area.Empty() {
		return m.Bounds
	}
	return area
}

type struts struct {
	left, right, top, bottom int
}

func (c *Connection) strutArea(mon, root Rect) (Rect, bool) {
	clients, err := c.ClientList()
	if err != nil {
		return mon, false
	}

	var acc struts
	for _, win := range clients {
		if c.Kind(win) != KindPanel {
			continue
		}
		sp, err := ewmh.WmStrutPartialGet(c.XUtil, win)
		if err != nil {
			// Some docks only set _NET_WM_STRUT, which spans the whole edge.
			s, serr := ewmh.WmStrutGet(c.XUtil, win)
			if serr != nil {
				continue
			}
			sp = &ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftEndY: uint(root.Height - 1), RightEndY: uint(root.Height - 1),
				TopEndX: uint(root.Width - 1), BottomEndX: uint(root.Width - 1),
			}
		}
		acc.add(mon, root, sp)
	}

	if acc == (struts{}) {
		return mon, false
	}
	area := Rect{
		X:      mon.X + acc.left,
		Y:      mon.Y + acc.top,
		Width:  max(1, mon.Width-acc.left-acc.right),
		Height: max(1, mon.Height-acc.top-acc.bottom),
	}
	return area, true
}

// add accumulates the part of each reserved edge band that overlaps mon.
func (s *struts) add(mon, root Rect, sp *ewmh.WmStrutPartial) {
	if sp.Top > 0 {
		band := Rect{X: int(sp.TopStartX), Y: 0, Width: int(sp.TopEndX-sp.TopStartX) + 1, Height: int(sp.Top)}
		s.top = max(s.top, mon.Intersect(band).Height)
	}
	if sp.Bottom > 0 {
		band := Rect{X: int(sp.BottomStartX), Y: root.Height - int(sp.Bottom), Width: int(sp.BottomEndX-sp.BottomStartX) + 1, Height: int(sp.Bottom)}
		s.bottom = max(s.bottom, mon.Intersect(band).Height)
	}
	if sp.Left > 0 {
		band := Rect{X: 0, Y: int(sp.LeftStartY), Width: int(sp.Left), Height: int(sp.LeftEndY-sp.LeftStartY) + 1}
		s.left = max(s.left, mon.Intersect(band).Width)
	}
	if sp.Right > 0 {
		band := Rect{X: root.Width - int(sp.Right), Y: int(sp.RightStartY), Width: int(sp.Right), Height: int(sp.RightEndY-sp.RightStartY) + 1}
		s.right = max(s.right, mon.Intersect(band).Width)
	}
}
