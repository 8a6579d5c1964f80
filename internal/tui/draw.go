package tui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/baaaaaaaka/eledminer/internal/layout"
)

type rect struct {
	y int
	x int
	h int
	w int
}

func rectFrom(b layout.Rect) rect {
	return rect{y: b.Y, x: b.X, h: b.Height, w: b.Width}
}

type row struct {
	label    string
	dim      bool
	bold     bool
	selected bool
	focused  bool
}

type listState struct {
	selected int
	scroll   int
}

func drawBox(screen tcell.Screen, r rect, title string, focused bool) {
	if r.w <= 0 || r.h <= 0 {
		return
	}
	borderStyle := tcell.StyleDefault
	if focused {
		borderStyle = borderStyle.Bold(true)
	} else {
		borderStyle = borderStyle.Dim(true)
	}
	for x := r.x + 1; x < r.x+r.w-1; x++ {
		screen.SetContent(x, r.y, tcell.RuneHLine, nil, borderStyle)
		screen.SetContent(x, r.y+r.h-1, tcell.RuneHLine, nil, borderStyle)
	}
	for y := r.y + 1; y < r.y+r.h-1; y++ {
		screen.SetContent(r.x, y, tcell.RuneVLine, nil, borderStyle)
		screen.SetContent(r.x+r.w-1, y, tcell.RuneVLine, nil, borderStyle)
	}
	screen.SetContent(r.x, r.y, tcell.RuneULCorner, nil, borderStyle)
	screen.SetContent(r.x+r.w-1, r.y, tcell.RuneURCorner, nil, borderStyle)
	screen.SetContent(r.x, r.y+r.h-1, tcell.RuneLLCorner, nil, borderStyle)
	screen.SetContent(r.x+r.w-1, r.y+r.h-1, tcell.RuneLRCorner, nil, borderStyle)

	titleStyle := tcell.StyleDefault.Reverse(true)
	if focused {
		titleStyle = titleStyle.Bold(true)
		title = "> " + title + " <"
	} else {
		title = " " + title + " "
	}
	maxTitleWidth := max(0, r.w-2)
	title = truncate(title, maxTitleWidth)
	titleX := r.x + 1 + max(0, (maxTitleWidth-displayWidth(title))/2)
	writeText(screen, titleX, r.y, title, titleStyle)
}

func drawList(screen tcell.Screen, r rect, rows []row) {
	if r.h < 3 || r.w < 4 {
		return
	}
	innerH := r.h - 2
	innerW := r.w - 2
	for i := 0; i < innerH; i++ {
		y := r.y + 1 + i
		if i >= len(rows) {
			writeText(screen, r.x+1, y, padRight("", innerW), tcell.StyleDefault)
			continue
		}
		row := rows[i]
		style := tcell.StyleDefault
		if row.bold {
			style = style.Bold(true)
		}
		if row.selected {
			style = style.Reverse(true)
			if row.focused {
				style = style.Bold(true)
			} else {
				style = style.Dim(true)
			}
		} else if row.dim {
			style = style.Dim(true)
		}
		writeText(screen, r.x+1, y, padRight(truncate(row.label, innerW), innerW), style)
	}
}

// drawLines writes plain text inside a box, clipped to its interior.
func drawLines(screen tcell.Screen, r rect, lines []string) {
	rows := make([]row, 0, len(lines))
	for _, ln := range lines {
		rows = append(rows, row{label: ln})
	}
	drawList(screen, r, rows)
}

func drawStatus(screen tcell.Screen, left, right string, style tcell.Style) {
	w, h := screen.Size()
	if h <= 0 || w <= 0 {
		return
	}
	y := h - 1
	writeText(screen, 0, y, padRight("", w), style)
	right = truncate(right, w)
	space := max(0, w-displayWidth(right))
	if right != "" {
		space = max(0, space-1)
	}
	writeText(screen, 0, y, truncate(left, space), style)
	writeText(screen, w-displayWidth(right), y, right, style.Bold(true))
}

func visibleRows(labels []string, focused bool, state listState, viewH int) []row {
	rows := make([]row, 0, min(len(labels), max(0, viewH)))
	start := clamp(state.scroll, 0, max(0, len(labels)))
	end := min(len(labels), start+max(0, viewH))
	for i := start; i < end; i++ {
		rows = append(rows, row{label: labels[i]})
	}
	return applySelection(rows, focused, listState{selected: state.selected - start})
}

func applySelection(rows []row, focused bool, state listState) []row {
	if len(rows) == 0 {
		return rows
	}
	state.clamp(len(rows))
	rows[state.selected].selected = true
	rows[state.selected].focused = focused
	rows[state.selected].dim = false
	return rows
}

func (s *listState) clamp(nItems int) {
	if nItems <= 0 {
		s.selected = 0
		s.scroll = 0
		return
	}
	s.selected = clamp(s.selected, 0, nItems-1)
	s.scroll = clamp(s.scroll, 0, max(0, nItems-1))
}

func (s *listState) ensureVisible(viewH int, nItems int) {
	if nItems <= 0 || viewH <= 0 {
		s.scroll = 0
		return
	}
	maxScroll := max(0, nItems-viewH)
	if s.selected < s.scroll {
		s.scroll = s.selected
	} else if s.selected >= s.scroll+viewH {
		s.scroll = s.selected - viewH + 1
	}
	s.scroll = clamp(s.scroll, 0, maxScroll)
}

// move applies list navigation keys. It reports whether ev was one of them.
func (s *listState) move(nItems int, viewH int, ev *tcell.EventKey) bool {
	if nItems <= 0 {
		s.selected = 0
		s.scroll = 0
		return false
	}
	switch ev.Key() {
	case tcell.KeyUp:
		s.selected = clamp(s.selected-1, 0, nItems-1)
	case tcell.KeyDown:
		s.selected = clamp(s.selected+1, 0, nItems-1)
	case tcell.KeyPgUp:
		s.selected = clamp(s.selected-max(1, viewH), 0, nItems-1)
	case tcell.KeyPgDn:
		s.selected = clamp(s.selected+max(1, viewH), 0, nItems-1)
	case tcell.KeyHome:
		s.selected = 0
	case tcell.KeyEnd:
		s.selected = nItems - 1
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'k':
			s.selected = clamp(s.selected-1, 0, nItems-1)
		case 'j':
			s.selected = clamp(s.selected+1, 0, nItems-1)
		case 'g':
			s.selected = 0
		case 'G':
			s.selected = nItems - 1
		default:
			return false
		}
	default:
		return false
	}
	s.ensureVisible(viewH, nItems)
	return true
}

func writeText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	offset := 0
	for _, ch := range text {
		width := runewidth.RuneWidth(ch)
		if width == 0 {
			continue
		}
		screen.SetContent(x+offset, y, ch, nil, style)
		offset += width
	}
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if displayWidth(s) <= width {
		return s
	}
	var buf strings.Builder
	curWidth := 0
	for _, ch := range s {
		chWidth := runewidth.RuneWidth(ch)
		if chWidth == 0 {
			buf.WriteRune(ch)
			continue
		}
		if curWidth+chWidth > width {
			break
		}
		buf.WriteRune(ch)
		curWidth += chWidth
	}
	return buf.String()
}

func padRight(s string, width int) string {
	if displayWidth(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-displayWidth(s))
}

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

func versionLabel(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		v = "dev"
	}
	if strings.EqualFold(v, "dev") {
		return v
	}
	if strings.HasPrefix(strings.ToLower(v), "v") {
		return v
	}
	return "v" + v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
