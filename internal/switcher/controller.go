package switcher

import (
	"errors"
	"log/slog"

	"github.com/1broseidon/paneswitch/internal/catalog"
	"github.com/1broseidon/paneswitch/internal/mru"
	"github.com/1broseidon/paneswitch/internal/search"
)

// Mode selects how the switcher is presented and how typed keys are read.
type Mode int

const (
	// ModeCycle is the Super+Tab switcher: letters activate by shortcut.
	ModeCycle Mode = iota
	// ModeSearch is the Control+Space switcher: letters edit the query.
	ModeSearch
	// ModeSidebar is the edge-docked list opened by a scroll gesture.
	ModeSidebar
)

func (m Mode) String() string {
	switch m {
	case ModeCycle:
		return "cycle"
	case ModeSearch:
		return "search"
	case ModeSidebar:
		return "sidebar"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode name as used on the command line and over IPC.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "cycle", "switcher":
		return ModeCycle, nil
	case "search":
		return ModeSearch, nil
	case "sidebar":
		return ModeSidebar, nil
	}
	return ModeCycle, errors.New("unknown switcher mode: " + s)
}

var (
	// ErrNoSelection is returned when there is nothing to activate.
	ErrNoSelection = errors.New("no window selected")
	// ErrUnknownWindow is returned for ids absent from the current snapshot.
	ErrUnknownWindow = errors.New("window not in catalog")
)

// Catalog produces fresh window snapshots.
type Catalog interface {
	Refresh() []catalog.Record
}

// Activator raises a window. A false return is logged and never retried.
type Activator interface {
	Activate(rec catalog.Record) bool
}

// View is everything a presenter needs to draw the switcher.
type View struct {
	Items    []Item
	Selected int
	Query    string
	Mode     Mode
	// Edge is the sidebar edge ("left" or "right") in ModeSidebar.
	Edge string
}

// Presenter draws the switcher. Present is called after every change while
// visible; Dismiss when hidden.
type Presenter interface {
	Present(v View)
	Dismiss()
}

// Options configures a Controller.
type Options struct {
	SidebarEdge string
	// CurrentDesktop returns the active desktop, or -1 when unknown.
	CurrentDesktop func() int
	Logger         *slog.Logger
}

// Controller owns the switcher list, selection and visibility. It lives on
// the main flow and is not safe for concurrent use.
type Controller struct {
	catalog   Catalog
	tracker   *mru.Tracker
	engine    *search.Engine
	activator Activator
	presenter Presenter
	opts      Options
	logger    *slog.Logger

	records  []catalog.Record
	list     List
	selected int
	visible  bool
	mode     Mode
	query    string
	edge     string
}

// NewController creates a hidden controller.
func NewController(cat Catalog, tracker *mru.Tracker, engine *search.Engine, activator Activator, presenter Presenter, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.CurrentDesktop == nil {
		opts.CurrentDesktop = func() int { return -1 }
	}
	if opts.SidebarEdge == "" {
		opts.SidebarEdge = "left"
	}
	return &Controller{
		catalog:   cat,
		tracker:   tracker,
		engine:    engine,
		activator: activator,
		presenter: presenter,
		opts:      opts,
		logger:    logger,
	}
}

// SetSidebarEdge changes the default edge used by ModeSidebar.
func (c *Controller) SetSidebarEdge(edge string) {
	if edge != "" {
		c.opts.SidebarEdge = edge
	}
}

// SetAcronymBonus updates the search engine's acronym bonus.
func (c *Controller) SetAcronymBonus(bonus float64) {
	c.engine.AcronymBonus = bonus
}

// Show refreshes the catalog, clears the query and selection and makes
// the switcher visible in mode.
func (c *Controller) Show(mode Mode) {
	c.ShowAt(mode, "")
}

// ShowAt is Show with an explicit sidebar edge.
func (c *Controller) ShowAt(mode Mode, edge string) {
	c.refresh()
	c.mode = mode
	c.edge = edge
	if c.edge == "" {
		c.edge = c.opts.SidebarEdge
	}
	c.query = ""
	c.rebuild()
	c.selected = c.list.First()
	c.visible = true
	c.present()
}

// Reveal makes the switcher visible in ModeCycle without refreshing or
// touching the selection.
func (c *Controller) Reveal() {
	c.mode = ModeCycle
	c.visible = true
	c.present()
}

// Hide dismisses the switcher and clears the query.
func (c *Controller) Hide() {
	wasVisible := c.visible
	c.visible = false
	c.query = ""
	c.mode = ModeCycle
	if wasVisible && c.presenter != nil {
		c.presenter.Dismiss()
	}
}

// Toggle hides a visible switcher or shows it in mode.
func (c *Controller) Toggle(mode Mode) {
	if c.visible {
		c.Hide()
		return
	}
	c.Show(mode)
}

// IsVisible reports whether the switcher is shown.
func (c *Controller) IsVisible() bool { return c.visible }

// InSearchMode reports whether typed keys edit the query.
func (c *Controller) InSearchMode() bool { return c.visible && c.mode == ModeSearch }

// Mode returns the current mode.
func (c *Controller) Mode() Mode { return c.mode }

// Query returns the current search query.
func (c *Controller) Query() string { return c.query }

// SetQuery re-ranks the list for query and selects the best match.
func (c *Controller) SetQuery(query string) {
	c.query = query
	c.rebuild()
	c.selected = c.list.First()
	c.present()
}

// Search ranks the current snapshot for query without touching the
// visible list.
func (c *Controller) Search(query string) []search.Result {
	return c.engine.Search(query, c.records)
}

// UpdateSnapshot installs a new catalog snapshot. A visible list is
// rebuilt and keeps its selection when it still addresses a window.
func (c *Controller) UpdateSnapshot(records []catalog.Record) {
	c.records = c.tracker.SortByMRU(records)
	if !c.visible {
		return
	}
	var selectedID int64
	hadSelection := c.list.Selectable(c.selected)
	if hadSelection {
		selectedID = c.list.Items[c.selected].Window.ID
	}
	c.rebuild()
	c.selected = c.list.First()
	if hadSelection {
		for i, it := range c.list.Items {
			if !it.IsHeader() && it.Window.ID == selectedID {
				c.selected = i
				break
			}
		}
	}
	c.present()
}

// Records returns the current MRU-ordered snapshot.
func (c *Controller) Records() []catalog.Record { return c.records }

// View returns the current presentation state.
func (c *Controller) View() View {
	return View{
		Items:    c.list.Items,
		Selected: c.selected,
		Query:    c.query,
		Mode:     c.mode,
		Edge:     c.edge,
	}
}

// SelectNext moves the selection to the next window entry.
func (c *Controller) SelectNext() {
	if c.list.Len() == 0 {
		return
	}
	c.selected = c.list.Next(c.selected)
	c.present()
}

// SelectPrevious moves the selection to the previous window entry.
func (c *Controller) SelectPrevious() {
	if c.list.Len() == 0 {
		return
	}
	c.selected = c.list.Previous(c.selected)
	c.present()
}

// Select moves the selection to index when it addresses a window entry.
func (c *Controller) Select(index int) bool {
	if !c.list.Selectable(index) {
		return false
	}
	c.selected = index
	c.present()
	return true
}

// Selected returns the selected window.
func (c *Controller) Selected() (catalog.Record, bool) {
	if !c.list.Selectable(c.selected) {
		return catalog.Record{}, false
	}
	return c.list.Items[c.selected].Window, true
}

// PrepareForQuickSwitch refreshes the catalog and rebuilds the list with
// the first window selected, without showing anything.
func (c *Controller) PrepareForQuickSwitch() {
	c.refresh()
	c.query = ""
	c.rebuild()
	c.selected = c.list.First()
}

// ActivateSelectedQuick activates the selection without touching the UI.
func (c *Controller) ActivateSelectedQuick() bool {
	rec, ok := c.Selected()
	if !ok {
		return false
	}
	return c.activate(rec)
}

// ActivateSelected hides the switcher and activates the selection.
func (c *Controller) ActivateSelected() bool {
	rec, ok := c.Selected()
	if !ok {
		return false
	}
	c.Hide()
	return c.activate(rec)
}

// ActivateByShortcut selects and activates the entry bound to r.
func (c *Controller) ActivateByShortcut(r rune) bool {
	i, ok := c.list.IndexForShortcut(r)
	if !ok || !c.Select(i) {
		return false
	}
	c.ActivateSelected()
	return true
}

// ActivateID activates a window of the current snapshot by id.
func (c *Controller) ActivateID(id int64) error {
	for _, rec := range c.records {
		if rec.ID == id {
			c.Hide()
			if !c.activate(rec) {
				return errors.New("activation refused")
			}
			return nil
		}
	}
	return ErrUnknownWindow
}

func (c *Controller) activate(rec catalog.Record) bool {
	if c.activator == nil {
		return false
	}
	if !c.activator.Activate(rec) {
		c.logger.Warn("window activation failed", "id", rec.ID, "owner", rec.Owner, "title", rec.Title)
		return false
	}
	return true
}

func (c *Controller) refresh() {
	if c.catalog == nil {
		return
	}
	c.records = c.tracker.SortByMRU(c.catalog.Refresh())
}

func (c *Controller) rebuild() {
	results := c.engine.Search(c.query, c.records)
	c.list = BuildList(results, GroupOptions{CurrentDesktop: c.opts.CurrentDesktop()})
}

func (c *Controller) present() {
	if !c.visible || c.presenter == nil {
		return
	}
	c.presenter.Present(c.View())
}
