package catalog

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkg/errors"

	"github.com/1broseidon/paneswitch/internal/platform"
)

// Source enumerates running applications and their windows.
// platform.Backend satisfies it.
type Source interface {
	Apps() ([]platform.App, error)
	WindowsForApp(app platform.App) ([]platform.Window, error)
}

// Options tunes a Builder.
type Options struct {
	// ExcludeApps are extra application names to drop.
	ExcludeApps []string
	// HideMinimized drops windows the window manager reports as hidden.
	HideMinimized bool
	// SelfPID is never listed.
	SelfPID int
	Logger  *slog.Logger
}

// EnumerationFault records that one application's window query failed.
// The application is skipped; the rest of the refresh continues.
type EnumerationFault struct {
	PID int
	App string
	Err error
}

func (f *EnumerationFault) Error() string {
	return fmt.Sprintf("enumerate %s (pid %d): %v", f.App, f.PID, f.Err)
}

func (f *EnumerationFault) Unwrap() error { return f.Err }

// Cause returns the root error, for github.com/pkg/errors.Cause.
func (f *EnumerationFault) Cause() error { return errors.Cause(f.Err) }

// Builder produces catalog snapshots from a Source.
type Builder struct {
	src Source

	mu     sync.Mutex
	opts   Options
	filter Filter
	faults []*EnumerationFault
}

// NewBuilder creates a Builder.
func NewBuilder(src Source, opts Options) *Builder {
	b := &Builder{src: src}
	b.Configure(opts)
	return b
}

// Configure replaces the builder options.
func (b *Builder) Configure(opts Options) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opts = opts
	b.filter = NewFilter(opts.ExcludeApps)
}

// Faults returns the per-application faults of the last refresh.
func (b *Builder) Faults() []*EnumerationFault {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*EnumerationFault, len(b.faults))
	copy(out, b.faults)
	return out
}

// Refresh enumerates every regular application and returns a new snapshot.
// It never fails as a whole: a failing application is logged and skipped,
// and a failing application list yields an empty snapshot.
func (b *Builder) Refresh() []Record {
	b.mu.Lock()
	opts, filter := b.opts, b.filter
	b.mu.Unlock()

	apps, err := b.src.Apps()
	if err != nil {
		opts.Logger.Warn("catalog: list applications failed", "error", err)
		b.setFaults(nil)
		return []Record{}
	}

	var (
		records []Record
		faults  []*EnumerationFault
		seen    = make(map[int64]struct{})
	)
	add := func(r Record) bool {
		if _, dup := seen[r.ID]; dup {
			return false
		}
		seen[r.ID] = struct{}{}
		records = append(records, r)
		return true
	}

	for _, app := range apps {
		if !app.Regular || app.PID == opts.SelfPID || filter.Excluded(app.Name) {
			continue
		}

		windows, err := b.query(app)
		if err != nil {
			fault := &EnumerationFault{PID: app.PID, App: app.Name, Err: err}
			faults = append(faults, fault)
			opts.Logger.Debug("catalog: skipping application", "app", app.Name, "pid", app.PID, "error", err)
			continue
		}

		valid := 0
		for i, w := range windows {
			if !Valid(w) || (opts.HideMinimized && w.Hidden) {
				continue
			}
			if w.ID == 0 && i >= MaxSyntheticWindows {
				opts.Logger.Debug("catalog: too many windows without an id", "app", app.Name, "pid", app.PID)
				continue
			}
			if add(recordFromWindow(app, w, i)) {
				valid++
			}
		}
		if valid == 0 {
			add(appOnly(app))
		}
	}

	b.setFaults(faults)
	if records == nil {
		records = []Record{}
	}
	return records
}

func (b *Builder) query(app platform.App) (windows []platform.Window, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()
	windows, err = b.src.WindowsForApp(app)
	if err != nil {
		return nil, errors.Wrapf(err, "windows of %s", app.Name)
	}
	return windows, nil
}

func (b *Builder) setFaults(faults []*EnumerationFault) {
	b.mu.Lock()
	b.faults = faults
	b.mu.Unlock()
}

func recordFromWindow(app platform.App, w platform.Window, index int) Record {
	id := int64(w.ID)
	if w.ID == 0 {
		id = SyntheticID(app.PID, index)
	}
	return Record{
		ID:         id,
		PID:        app.PID,
		Owner:      app.Name,
		Title:      w.Title,
		Bounds:     w.Bounds,
		Layer:      w.Layer,
		OnScreen:   !w.Hidden,
		Fullscreen: w.Fullscreen,
		Desktop:    w.Desktop,
		Icon:       app.Icon,
		WindowID:   w.ID,
	}
}

func appOnly(app platform.App) Record {
	return Record{
		ID:       AppOnlyID(app.PID),
		PID:      app.PID,
		Owner:    app.Name,
		OnScreen: true,
		AppOnly:  true,
		Desktop:  platform.StickyDesktop,
		Icon:     app.Icon,
	}
}
