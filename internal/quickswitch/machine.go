// Package quickswitch decides between an instant switch and the visible
// switcher while the cycle shortcut is held.
//
// A press-and-release of Super+Tab faster than the reveal delay activates
// the previously used window without drawing anything. Holding longer, or
// pressing Tab again, reveals the switcher; releasing the modifier then
// activates the selection.
package quickswitch

import (
	"log/slog"
	"time"

	"github.com/1broseidon/paneswitch/internal/mainflow"
	"github.com/1broseidon/paneswitch/internal/switcher"
)

// DefaultDelay is how long the modifier must stay held after the first Tab
// before the switcher is revealed.
const DefaultDelay = 40 * time.Millisecond

// State is the quick-switch phase.
type State int

const (
	Idle State = iota
	ArmedPendingUI
	Cycling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ArmedPendingUI:
		return "armed"
	case Cycling:
		return "cycling"
	default:
		return "unknown"
	}
}

// Switcher is the part of the switcher controller the machine drives.
type Switcher interface {
	PrepareForQuickSwitch()
	SelectNext()
	SelectPrevious()
	Show(mode switcher.Mode)
	Reveal()
	Hide()
	IsVisible() bool
	InSearchMode() bool
	ActivateSelected() bool
	ActivateSelectedQuick() bool
}

// Machine is the quick-switch state machine. All methods must be called on
// the main flow.
type Machine struct {
	sw     Switcher
	timer  *mainflow.Timer
	delay  time.Duration
	logger *slog.Logger

	state   State
	presses int
}

// New creates an idle machine. The reveal timer fires through flow.
func New(sw Switcher, clock mainflow.Clock, flow mainflow.Dispatcher, delay time.Duration, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Machine{
		sw:     sw,
		timer:  mainflow.NewTimer(clock, flow),
		logger: logger,
	}
	m.SetDelay(delay)
	return m
}

// SetDelay changes the reveal delay for subsequent presses.
func (m *Machine) SetDelay(d time.Duration) {
	if d <= 0 {
		d = DefaultDelay
	}
	m.delay = d
}

// State returns the current phase.
func (m *Machine) State() State { return m.state }

// Presses returns the number of Tab presses since the modifier went down.
func (m *Machine) Presses() int { return m.presses }

// TabPressed handles Super+Tab; shift cycles backwards.
func (m *Machine) TabPressed(shift bool) {
	m.presses++
	m.logger.Debug("quick switch: tab", "state", m.state, "presses", m.presses, "shift", shift)

	switch m.state {
	case Idle:
		if m.sw.IsVisible() {
			// Already open (search field, sidebar or an explicit show):
			// Tab only moves the selection.
			if !m.sw.InSearchMode() {
				m.state = Cycling
			}
			m.move(shift)
			return
		}
		m.sw.PrepareForQuickSwitch()
		m.move(shift)
		m.state = ArmedPendingUI
		m.timer.Schedule(m.delay, m.reveal)

	case ArmedPendingUI:
		m.timer.Cancel()
		m.state = Cycling
		m.sw.Reveal()
		m.move(shift)

	case Cycling:
		if !m.sw.IsVisible() {
			m.sw.Reveal()
		}
		m.move(shift)
	}
}

func (m *Machine) reveal() {
	if m.state != ArmedPendingUI {
		return
	}
	m.state = Cycling
	m.sw.Reveal()
}

// CommandReleased handles the cycle modifier going up.
func (m *Machine) CommandReleased() {
	m.timer.Cancel()
	prev := m.state
	m.reset()

	switch prev {
	case ArmedPendingUI:
		m.logger.Debug("quick switch: instant activation")
		m.sw.ActivateSelectedQuick()
	case Cycling:
		if m.sw.IsVisible() && !m.sw.InSearchMode() {
			m.sw.ActivateSelected()
		}
	}
}

// EscapePressed abandons the switch without activating anything.
func (m *Machine) EscapePressed() {
	m.timer.Cancel()
	m.reset()
	if m.sw.IsVisible() {
		m.sw.Hide()
	}
}

// ToggleSearch opens the search switcher, or closes whatever is visible.
func (m *Machine) ToggleSearch() {
	m.timer.Cancel()
	m.reset()
	if m.sw.IsVisible() {
		m.sw.Hide()
		return
	}
	m.sw.Show(switcher.ModeSearch)
}

func (m *Machine) move(shift bool) {
	if shift {
		m.sw.SelectPrevious()
		return
	}
	m.sw.SelectNext()
}

func (m *Machine) reset() {
	m.state = Idle
	m.presses = 0
}
