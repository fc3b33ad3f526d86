package permission

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/paneswitch/internal/mainflow"
)

// Poll intervals while the capability is held and while waiting for it.
const (
	DefaultMonitorInterval = 200 * time.Millisecond
	DefaultWaitInterval    = time.Second
)

// MonitorConfig holds configuration for the monitor.
type MonitorConfig struct {
	Interval     time.Duration
	WaitInterval time.Duration
	Logger       *slog.Logger
}

// Monitor re-checks the capability periodically on the main flow so a
// revocation is noticed even when no input arrives.
type Monitor struct {
	guard        *Guard
	flow         mainflow.Dispatcher
	interval     time.Duration
	waitInterval time.Duration
	logger       *slog.Logger
}

// NewMonitor creates a monitor for guard.
func NewMonitor(cfg MonitorConfig, guard *Guard, flow mainflow.Dispatcher) *Monitor {
	m := &Monitor{
		guard:        guard,
		flow:         flow,
		interval:     cfg.Interval,
		waitInterval: cfg.WaitInterval,
		logger:       cfg.Logger,
	}
	if m.interval <= 0 {
		m.interval = DefaultMonitorInterval
	}
	if m.waitInterval <= 0 {
		m.waitInterval = DefaultWaitInterval
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// Run polls until ctx is cancelled. It waits for the previous recheck to
// finish before scheduling the next one.
func (m *Monitor) Run(ctx context.Context) {
	m.logger.Info("permission monitor started", "interval", m.interval, "wait_interval", m.waitInterval)
	timer := time.NewTimer(m.nextInterval())
	defer timer.Stop()

	done := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("permission monitor stopped")
			return
		case <-timer.C:
			posted := m.flow.Post(func() {
				m.guard.ForceRecheck()
				done <- struct{}{}
			})
			if posted {
				select {
				case <-done:
				case <-ctx.Done():
					m.logger.Info("permission monitor stopped")
					return
				}
			}
			timer.Reset(m.nextInterval())
		}
	}
}

func (m *Monitor) nextInterval() time.Duration {
	if m.guard.Revoked() {
		return m.waitInterval
	}
	return m.interval
}
