package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/paneswitch/internal/mainflow"
)

// DefaultRefreshInterval keeps the catalog fresh between explicit refreshes.
const DefaultRefreshInterval = 500 * time.Millisecond

// RefresherConfig holds configuration for the refresher.
type RefresherConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Refresher periodically rebuilds the catalog on the main flow and hands
// each snapshot to a consumer.
type Refresher struct {
	interval time.Duration
	builder  *Builder
	flow     mainflow.Dispatcher
	publish  func([]Record)
	logger   *slog.Logger
}

// NewRefresher creates a refresher. publish runs on the main flow.
func NewRefresher(cfg RefresherConfig, builder *Builder, flow mainflow.Dispatcher, publish func([]Record)) *Refresher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		interval: interval,
		builder:  builder,
		flow:     flow,
		publish:  publish,
		logger:   logger,
	}
}

// Run starts the refresh loop. Blocks until context is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("catalog refresher started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("catalog refresher stopped")
			return
		case <-ticker.C:
			r.flow.Post(r.RefreshNow)
		}
	}
}

// RefreshNow rebuilds and publishes a snapshot. Call it on the main flow.
func (r *Refresher) RefreshNow() {
	records := r.builder.Refresh()
	if r.publish != nil {
		r.publish(records)
	}
}
