// Package gesture detects scroll gestures made with the pointer resting
// against a screen edge.
package gesture

import (
	"math"

	"github.com/1broseidon/paneswitch/internal/platform"
)

// Defaults for Config.
const (
	DefaultEdgeThreshold    = 50.0
	DefaultTriggerThreshold = 15.0
)

// Edge is a screen edge.
type Edge int

const (
	EdgeLeft Edge = iota
	EdgeRight
	EdgeTop
	EdgeBottom
)

func (e Edge) String() string {
	switch e {
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// Direction is the dominant scroll direction of a detected gesture.
type Direction int

const (
	DirectionUp Direction = iota
	DirectionDown
	DirectionLeft
	DirectionRight
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	default:
		return "unknown"
	}
}

// Phase is the scroll phase of a sample. PhaseNone marks discrete wheel
// clicks, which are never treated as gestures.
type Phase int

const (
	PhaseNone      Phase = 0
	PhaseBegan     Phase = 1
	PhaseChanged   Phase = 2
	PhaseEnded     Phase = 4
	PhaseCancelled Phase = 8
	PhaseMayBegin  Phase = 128
)

// Sample is one scroll event. X and Y are the pointer position in root
// coordinates (origin top-left). Positive DY scrolls up, positive DX
// scrolls left.
type Sample struct {
	X, Y   float64
	DX, DY float64
	Phase  Phase
}

// Event is a detected edge gesture.
type Event struct {
	Edge      Edge
	Direction Direction
}

// Config holds detector thresholds.
type Config struct {
	// EdgeThreshold is how close, in pixels, the pointer must be to an edge.
	EdgeThreshold float64
	// TriggerThreshold is the accumulated scroll distance that fires a gesture.
	TriggerThreshold float64
}

// Detector accumulates scroll deltas near screen edges. It belongs to the
// input stream that feeds it and is not safe for concurrent use.
type Detector struct {
	cfg     Config
	screens []platform.Rect

	active      bool
	accumulated float64
}

// NewDetector creates a detector. Zero thresholds take the defaults.
func NewDetector(cfg Config) *Detector {
	d := &Detector{}
	d.Configure(cfg)
	return d
}

// Configure replaces the thresholds and resets the gesture state.
func (d *Detector) Configure(cfg Config) {
	if cfg.EdgeThreshold <= 0 {
		cfg.EdgeThreshold = DefaultEdgeThreshold
	}
	if cfg.TriggerThreshold <= 0 {
		cfg.TriggerThreshold = DefaultTriggerThreshold
	}
	d.cfg = cfg
	d.Reset()
}

// SetScreens replaces the screen geometry used for edge detection.
func (d *Detector) SetScreens(screens []platform.Rect) {
	d.screens = append(d.screens[:0], screens...)
}

// Reset clears the gesture state.
func (d *Detector) Reset() {
	d.active = false
	d.accumulated = 0
}

// Active reports whether a gesture is in progress and its accumulated delta.
func (d *Detector) Active() (bool, float64) {
	return d.active, d.accumulated
}

// Process feeds one sample. It returns an event, and true, when the sample
// completes a gesture; the caller should then swallow the sample.
func (d *Detector) Process(s Sample) (Event, bool) {
	if s.Phase == PhaseNone {
		return Event{}, false
	}

	screen, ok := d.screenAt(s.X, s.Y)
	if !ok {
		return Event{}, false
	}
	edge, ok := d.edgeAt(s.X, s.Y, screen)
	if !ok {
		d.Reset()
		return Event{}, false
	}

	if s.Phase == PhaseBegan {
		d.active = true
		d.accumulated = 0
	}

	if d.active {
		switch edge {
		case EdgeLeft, EdgeRight:
			d.accumulated += math.Abs(s.DY)
		default:
			d.accumulated += math.Abs(s.DX)
		}
		if d.accumulated >= d.cfg.TriggerThreshold {
			d.accumulated = 0
			return Event{Edge: edge, Direction: direction(s.DX, s.DY)}, true
		}
	}

	if s.Phase == PhaseEnded || s.Phase == PhaseCancelled {
		d.Reset()
	}
	return Event{}, false
}

func (d *Detector) screenAt(x, y float64) (platform.Rect, bool) {
	for _, r := range d.screens {
		if x >= float64(r.X) && x < float64(r.X+r.Width) && y >= float64(r.Y) && y < float64(r.Y+r.Height) {
			return r, true
		}
	}
	return platform.Rect{}, false
}

func (d *Detector) edgeAt(x, y float64, r platform.Rect) (Edge, bool) {
	t := d.cfg.EdgeThreshold
	switch {
	case x-float64(r.X) < t:
		return EdgeLeft, true
	case float64(r.X+r.Width)-x < t:
		return EdgeRight, true
	case y-float64(r.Y) < t:
		return EdgeTop, true
	case float64(r.Y+r.Height)-y < t:
		return EdgeBottom, true
	}
	return 0, false
}

func direction(dx, dy float64) Direction {
	if math.Abs(dy) > math.Abs(dx) {
		if dy > 0 {
			return DirectionUp
		}
		return DirectionDown
	}
	if dx > 0 {
		return DirectionLeft
	}
	return DirectionRight
}
