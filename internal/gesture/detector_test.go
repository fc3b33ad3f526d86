package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/paneswitch/internal/platform"
)

func newTestDetector() *Detector {
	d := NewDetector(Config{EdgeThreshold: 20, TriggerThreshold: 15})
	d.SetScreens([]platform.Rect{{X: 0, Y: 0, Width: 1920, Height: 1080}})
	return d
}

func TestDetector_LeftEdgeVerticalScroll(t *testing.T) {
	d := newTestDetector()

	_, fired := d.Process(Sample{X: 5, Y: 500, DY: 6, Phase: PhaseBegan})
	assert.False(t, fired)
	_, fired = d.Process(Sample{X: 5, Y: 500, DY: 6, Phase: PhaseChanged})
	assert.False(t, fired)

	ev, fired := d.Process(Sample{X: 5, Y: 500, DY: 6, Phase: PhaseChanged})
	require.True(t, fired)
	assert.Equal(t, Event{Edge: EdgeLeft, Direction: DirectionUp}, ev)

	active, acc := d.Active()
	assert.True(t, active)
	assert.Zero(t, acc, "accumulator resets after firing")
}

func TestDetector_EdgesAndDirections(t *testing.T) {
	tests := []struct {
		name   string
		sample Sample
		want   Event
	}{
		{"right edge down", Sample{X: 1915, Y: 500, DY: -20}, Event{EdgeRight, DirectionDown}},
		{"top edge left", Sample{X: 900, Y: 3, DX: 20}, Event{EdgeTop, DirectionLeft}},
		{"bottom edge right", Sample{X: 900, Y: 1075, DX: -20}, Event{EdgeBottom, DirectionRight}},
		{"corner prefers left", Sample{X: 1, Y: 1, DY: 20}, Event{EdgeLeft, DirectionUp}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDetector()
			tt.sample.Phase = PhaseBegan
			ev, fired := d.Process(tt.sample)
			require.True(t, fired)
			assert.Equal(t, tt.want, ev)
		})
	}
}

func TestDetector_IgnoresWheelAndCrossAxis(t *testing.T) {
	d := newTestDetector()

	_, fired := d.Process(Sample{X: 5, Y: 500, DY: 100, Phase: PhaseNone})
	assert.False(t, fired, "discrete wheel clicks are not gestures")

	// On a side edge only vertical movement accumulates.
	_, fired = d.Process(Sample{X: 5, Y: 500, DX: 100, Phase: PhaseBegan})
	assert.False(t, fired)
}

func TestDetector_RequiresBegan(t *testing.T) {
	d := newTestDetector()
	_, fired := d.Process(Sample{X: 5, Y: 500, DY: 100, Phase: PhaseChanged})
	assert.False(t, fired)
}

func TestDetector_LeavingEdgeResets(t *testing.T) {
	d := newTestDetector()
	d.Process(Sample{X: 5, Y: 500, DY: 10, Phase: PhaseBegan})
	d.Process(Sample{X: 500, Y: 500, DY: 10, Phase: PhaseChanged})

	active, acc := d.Active()
	assert.False(t, active)
	assert.Zero(t, acc)

	_, fired := d.Process(Sample{X: 5, Y: 500, DY: 10, Phase: PhaseChanged})
	assert.False(t, fired)
}

func TestDetector_EndResets(t *testing.T) {
	d := newTestDetector()
	d.Process(Sample{X: 5, Y: 500, DY: 10, Phase: PhaseBegan})
	d.Process(Sample{X: 5, Y: 500, DY: 1, Phase: PhaseEnded})

	active, _ := d.Active()
	assert.False(t, active)
}

func TestDetector_OffScreenIsIgnored(t *testing.T) {
	d := newTestDetector()
	d.Process(Sample{X: 5, Y: 500, DY: 10, Phase: PhaseBegan})
	_, fired := d.Process(Sample{X: -50, Y: 500, DY: 10, Phase: PhaseChanged})
	assert.False(t, fired)
	active, acc := d.Active()
	assert.True(t, active, "samples outside every screen leave state untouched")
	assert.Equal(t, 10.0, acc)
}

func TestConfigure_Defaults(t *testing.T) {
	d := NewDetector(Config{})
	assert.Equal(t, DefaultEdgeThreshold, d.cfg.EdgeThreshold)
	assert.Equal(t, DefaultTriggerThreshold, d.cfg.TriggerThreshold)
}
