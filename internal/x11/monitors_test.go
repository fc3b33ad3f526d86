package x11

import (
	"testing"

	"github.com/BurntSushi/xgbutil/ewmh"
)

func TestRectIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"overlap", Rect{0, 0, 100, 100}, Rect{50, 50, 100, 100}, Rect{50, 50, 50, 50}},
		{"contained", Rect{0, 0, 100, 100}, Rect{10, 10, 20, 20}, Rect{10, 10, 20, 20}},
		{"touching", Rect{0, 0, 100, 100}, Rect{100, 0, 100, 100}, Rect{}},
		{"disjoint", Rect{0, 0, 10, 10}, Rect{50, 50, 10, 10}, Rect{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersect(tt.b); got != tt.want {
				t.Errorf("Intersect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}
	if !r.Contains(1920, 0) {
		t.Error("top-left corner should be inside")
	}
	if r.Contains(3840, 10) {
		t.Error("right edge is exclusive")
	}
}

func TestStrutsAdd(t *testing.T) {
	root := Rect{Width: 3840, Height: 1080}
	left := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	right := Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}

	// A 32px top panel spanning only the left monitor.
	panel := &ewmh.WmStrutPartial{Top: 32, TopStartX: 0, TopEndX: 1919}

	var s struts
	s.add(left, root, panel)
	if s.top != 32 {
		t.Errorf("left monitor top strut = %d, want 32", s.top)
	}

	var r struts
	r.add(right, root, panel)
	if r != (struts{}) {
		t.Errorf("right monitor struts = %+v, want none", r)
	}

	dock := &ewmh.WmStrutPartial{Right: 48, RightStartY: 0, RightEndY: 1079}
	r.add(right, root, dock)
	if r.right != 48 {
		t.Errorf("right monitor right strut = %d, want 48", r.right)
	}
}
