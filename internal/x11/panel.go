package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// Panel colors
const (
	ColorPanelBg     = 0x1f2933 // Dark panel background
	ColorText        = 0xf5f7fa // Entry text
	ColorHeaderText  = 0x95a5a6 // Group headers
	ColorShortcut    = 0x7f8c8d // Shortcut column
	ColorSelectionBg = 0x3498db // Selected entry
	ColorMatch       = 0xf1c40f // Characters matched by the query
)

const (
	panelMargin   = 24
	panelPaddingX = 12
	panelPaddingY = 10
	panelRowPad   = 6
	panelMinChars = 40
	panelMaxChars = 96
	shortcutChars = 4
)

// Span is a run of matched characters, in runes.
type Span struct {
	Start, Length int
}

// PanelRow is one line of the panel.
type PanelRow struct {
	Text       string
	Shortcut   string
	Header     bool
	Selected   bool
	Highlights []Span
}

// Placement selects where the panel appears within its area.
type Placement int

const (
	PlaceCenter Placement = iota
	PlaceLeft
	PlaceRight
)

// fontMetrics is the cell size of the panel's fixed-width font.
type fontMetrics struct {
	charWidth int
	ascent    int
	height    int
}

// Panel is an override-redirect window listing switcher entries.
type Panel struct {
	conn *Connection

	window   xproto.Window
	gc       xproto.Gcontext
	font     xproto.Font
	metrics  fontMetrics
	created  bool
	mapped   bool
	disabled bool
}

// NewPanel creates a panel. Its window is created on first Show.
func NewPanel(conn *Connection) *Panel {
	return &Panel{conn: conn}
}

// Visible reports whether the panel is mapped.
func (p *Panel) Visible() bool { return p.mapped }

// Show draws prompt and rows inside area and maps the panel.
func (p *Panel) Show(prompt string, rows []PanelRow, area Rect, place Placement) error {
	if err := p.ensureResources(); err != nil {
		return err
	}
	conn := p.conn.XUtil.Conn()
	m := p.metrics

	rowHeight := m.height + panelRowPad
	chars := panelChars(prompt, rows)
	frame := panelFrame(area, place, chars*m.charWidth+shortcutChars*m.charWidth+2*panelPaddingX, len(rows)+1, rowHeight)
	capacity := max(0, (frame.Height-2*panelPaddingY)/rowHeight-1)
	first := firstVisibleRow(rows, capacity)
	textChars := (frame.Width-2*panelPaddingX)/m.charWidth - shortcutChars

	xproto.ConfigureWindow(
		conn,
		p.window,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{uint32(frame.X), uint32(frame.Y), uint32(frame.Width), uint32(frame.Height), xproto.StackModeAbove},
	)
	xproto.MapWindow(conn, p.window)
	p.mapped = true
	xproto.ClearArea(conn, false, p.window, 0, 0, 0, 0)

	y := panelPaddingY
	p.drawText(panelPaddingX, y, clipRunes(prompt, textChars+shortcutChars), ColorText, ColorPanelBg)
	y += rowHeight

	for _, row := range rows[first:min(len(rows), first+capacity)] {
		bg := uint32(ColorPanelBg)
		if row.Selected {
			bg = ColorSelectionBg
			p.fill(Rect{X: panelPaddingX / 2, Y: y - panelRowPad/2, Width: frame.Width - panelPaddingX, Height: rowHeight}, bg)
		}
		switch {
		case row.Header:
			p.drawText(panelPaddingX, y, clipRunes(row.Text, textChars+shortcutChars), ColorHeaderText, bg)
		default:
			p.drawText(panelPaddingX, y, row.Shortcut, ColorShortcut, bg)
			x := panelPaddingX + shortcutChars*m.charWidth
			text := clipRunes(row.Text, textChars)
			p.drawText(x, y, text, ColorText, bg)
			for _, span := range row.Highlights {
				if part := sliceRunes(text, span.Start, span.Length); part != "" {
					p.drawText(x+span.Start*m.charWidth, y, part, ColorMatch, bg)
				}
			}
		}
		y += rowHeight
	}
	return nil
}

// Hide unmaps the panel without destroying it.
func (p *Panel) Hide() {
	if !p.mapped {
		return
	}
	xproto.UnmapWindow(p.conn.XUtil.Conn(), p.window)
	p.mapped = false
}

// Destroy frees the panel's server resources.
func (p *Panel) Destroy() {
	conn := p.conn.XUtil.Conn()
	if p.gc != 0 {
		xproto.FreeGC(conn, p.gc)
	}
	if p.font != 0 {
		xproto.CloseFont(conn, p.font)
	}
	if p.window != 0 {
		xproto.DestroyWindow(conn, p.window)
	}
	p.window, p.gc, p.font = 0, 0, 0
	p.created = false
	p.mapped = false
}

func (p *Panel) drawText(x, y int, s string, fg, bg uint32) {
	if s == "" {
		return
	}
	conn := p.conn.XUtil.Conn()
	xproto.ChangeGC(conn, p.gc, xproto.GcForeground|xproto.GcBackground, []uint32{fg, bg})
	chars := toChar2b(s)
	if len(chars) > 255 {
		chars = chars[:255]
	}
	xproto.ImageText16(conn, byte(len(chars)), xproto.Drawable(p.window), p.gc, int16(x), int16(y+p.metrics.ascent), chars)
}

func (p *Panel) fill(r Rect, color uint32) {
	conn := p.conn.XUtil.Conn()
	xproto.ChangeGC(conn, p.gc, xproto.GcForeground, []uint32{color})
	xproto.PolyFillRectangle(conn, xproto.Drawable(p.window), p.gc, []xproto.Rectangle{{
		X: int16(r.X), Y: int16(r.Y), Width: uint16(max(1, r.Width)), Height: uint16(max(1, r.Height)),
	}})
}

func (p *Panel) ensureResources() error {
	if p.disabled {
		return fmt.Errorf("panel unavailable")
	}
	if p.created {
		return nil
	}
	if err := p.create(); err != nil {
		p.Destroy()
		p.disabled = true
		return fmt.Errorf("create panel: %w", err)
	}
	p.created = true
	return nil
}

// Unicode fonts first so window titles outside Latin-1 render.
var panelFonts = []string{
	"-misc-fixed-medium-r-normal--13-120-75-75-c-70-iso10646-1",
	"-misc-fixed-medium-r-semicondensed--13-120-75-75-c-60-iso10646-1",
	"fixed",
	"9x15",
	"8x13",
	"6x13",
}

func (p *Panel) create() error {
	conn := p.conn.XUtil.Conn()
	screen := p.conn.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return err
	}
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		p.conn.Root,
		0, 0, 1, 1,
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect,
		[]uint32{ColorPanelBg, 1},
	).Check()
	if err != nil {
		return err
	}
	p.window = wid

	font, err := xproto.NewFontId(conn)
	if err != nil {
		return err
	}
	opened := false
	for _, name := range panelFonts {
		if xproto.OpenFontChecked(conn, font, uint16(len(name)), name).Check() == nil {
			opened = true
			break
		}
	}
	if !opened {
		return fmt.Errorf("no usable core font")
	}
	p.font = font

	info, err := xproto.QueryFont(conn, xproto.Fontable(font)).Reply()
	if err != nil {
		return err
	}
	p.metrics = fontMetrics{
		charWidth: max(1, int(info.MaxBounds.CharacterWidth)),
		ascent:    int(info.FontAscent),
		height:    int(info.FontAscent) + int(info.FontDescent),
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		return err
	}
	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(wid),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{ColorText, ColorPanelBg, uint32(font), 0},
	).Check()
	if err != nil {
		return err
	}
	p.gc = gc
	return nil
}

// panelChars is the width, in characters, the rows want.
func panelChars(prompt string, rows []PanelRow) int {
	n := len([]rune(prompt))
	for _, r := range rows {
		n = max(n, len([]rune(r.Text)))
	}
	return min(max(n, panelMinChars), panelMaxChars)
}

// panelFrame positions a panel of the wanted size inside area. Sidebars
// take the full height of their edge.
func panelFrame(area Rect, place Placement, width, rows, rowHeight int) Rect {
	width = min(width, max(1, area.Width-2*panelMargin))
	switch place {
	case PlaceLeft, PlaceRight:
		f := Rect{X: area.X, Y: area.Y, Width: width, Height: area.Height}
		if place == PlaceRight {
			f.X = area.X + area.Width - width
		}
		return f
	}
	height := min(rows*rowHeight+2*panelPaddingY, max(1, area.Height-2*panelMargin))
	return Rect{
		X:      area.X + (area.Width-width)/2,
		Y:      area.Y + (area.Height-height)/3,
		Width:  width,
		Height: height,
	}
}

// firstVisibleRow scrolls so the selected row is inside the capacity.
func firstVisibleRow(rows []PanelRow, capacity int) int {
	if capacity <= 0 || len(rows) <= capacity {
		return 0
	}
	selected := 0
	for i, r := range rows {
		if r.Selected {
			selected = i
			break
		}
	}
	if selected < capacity {
		return 0
	}
	return min(selected-capacity+1, len(rows)-capacity)
}

func clipRunes(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func sliceRunes(s string, start, length int) string {
	r := []rune(s)
	if start < 0 || start >= len(r) || length <= 0 {
		return ""
	}
	return string(r[start:min(len(r), start+length)])
}

// toChar2b encodes s for ImageText16. Runes outside the BMP are replaced.
func toChar2b(s string) []xproto.Char2b {
	out := make([]xproto.Char2b, 0, len(s))
	for _, r := range s {
		if r > 0xFFFF {
			r = '?'
		}
		out = append(out, xproto.Char2b{Byte1: byte(r >> 8), Byte2: byte(r)})
	}
	return out
}
