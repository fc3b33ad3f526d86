package daemon

import (
	"log/slog"

	"github.com/1broseidon/paneswitch/internal/search"
	"github.com/1broseidon/paneswitch/internal/switcher"
	"github.com/1broseidon/paneswitch/internal/x11"
)

const (
	titleSeparator = " - "
	appOnlySuffix  = "  (no windows)"
	searchPrompt   = "Search: "
)

// surface draws panel rows. *x11.Panel satisfies it.
type surface interface {
	Show(prompt string, rows []x11.PanelRow, area x11.Rect, place x11.Placement) error
	Hide()
}

// panelPresenter draws the switcher on the monitor under the pointer.
type panelPresenter struct {
	surface  surface
	workArea func() (x11.Rect, error)
	logger   *slog.Logger
}

func newPanelPresenter(s surface, workArea func() (x11.Rect, error), logger *slog.Logger) *panelPresenter {
	return &panelPresenter{surface: s, workArea: workArea, logger: logger}
}

// pointerWorkArea returns the usable area of the monitor under the pointer.
func pointerWorkArea(conn *x11.Connection) func() (x11.Rect, error) {
	return func() (x11.Rect, error) {
		mon, err := conn.PointerMonitor()
		if err != nil {
			return x11.Rect{}, err
		}
		return conn.WorkArea(mon), nil
	}
}

func (p *panelPresenter) Present(v switcher.View) {
	area, err := p.workArea()
	if err != nil {
		p.logger.Warn("switcher: no monitor geometry", "error", err)
		return
	}
	prompt, rows, place := panelContent(v)
	if err := p.surface.Show(prompt, rows, area, place); err != nil {
		p.logger.Warn("switcher: failed to draw panel", "error", err)
	}
}

func (p *panelPresenter) Dismiss() {
	p.surface.Hide()
}

// panelContent converts a switcher view into panel rows.
func panelContent(v switcher.View) (prompt string, rows []x11.PanelRow, place x11.Placement) {
	place = x11.PlaceCenter
	switch v.Mode {
	case switcher.ModeSearch:
		prompt = searchPrompt + v.Query
	case switcher.ModeSidebar:
		place = x11.PlaceLeft
		if v.Edge == "right" {
			place = x11.PlaceRight
		}
	}

	rows = make([]x11.PanelRow, 0, len(v.Items))
	for i, it := range v.Items {
		if it.IsHeader() {
			rows = append(rows, x11.PanelRow{Text: it.Header, Header: true})
			continue
		}
		text, titleOffset := rowText(it)
		row := x11.PanelRow{
			Text:     text,
			Shortcut: it.ShortcutString(),
			Selected: i == v.Selected,
		}
		for _, r := range it.Ranges {
			start := r.Start
			switch it.Field {
			case search.FieldTitle:
				if titleOffset < 0 {
					continue
				}
				start += titleOffset
			case search.FieldOwner:
			default:
				continue
			}
			row.Highlights = append(row.Highlights, x11.Span{Start: start, Length: r.Length})
		}
		rows = append(rows, row)
	}
	return prompt, rows, place
}

// rowText renders "owner - title". titleOffset is the rune offset of the
// title, or -1 when the title is not shown.
func rowText(it switcher.Item) (string, int) {
	w := it.Window
	if w.AppOnly {
		return w.Owner + appOnlySuffix, -1
	}
	if w.Title == "" {
		return w.Owner, -1
	}
	return w.Owner + titleSeparator + w.Title, len([]rune(w.Owner + titleSeparator))
}
