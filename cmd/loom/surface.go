package main

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/loomdoc/loom/internal/engine/surface"
)

// screenSurface renders the reconciled buffer into a tcell screen. Edits
// and directives are stored in an embedded TextBuffer; draw paints the
// buffer content, the composition underline and the terminal cursor.
type screenSurface struct {
	*surface.TextBuffer
	screen tcell.Screen
}

func newScreenSurface(screen tcell.Screen) *screenSurface {
	return &screenSurface{TextBuffer: surface.NewTextBuffer(), screen: screen}
}

// draw repaints the whole screen from the buffer. Line y holds the y-th
// newline-separated segment; columns advance by grapheme cluster width.
func (s *screenSurface) draw() {
	s.screen.Clear()
	defStyle := tcell.StyleDefault
	compStyle := defStyle.Underline(true)
	cursor, _ := s.Cursor()
	cursorX, cursorY := -1, -1

	pos := 0
	y := 0
	for _, line := range strings.Split(s.Text(), "\n") {
		x := 0
		g := uniseg.NewGraphemes(line)
		for g.Next() {
			style := defStyle
			if s.IsComposing() {
				cr := s.CompositionRange()
				if pos >= cr.Start && pos < cr.End {
					style = compStyle
				}
			}
			runes := g.Runes()
			s.screen.SetContent(x, y, runes[0], runes[1:], style)
			if pos == cursor.Start {
				cursorX, cursorY = x, y
			}
			x += g.Width()
			pos += len(g.Str())
		}
		if pos == cursor.Start {
			cursorX, cursorY = x, y
		}
		pos++ // the newline separator
		y++
	}

	if cursorX >= 0 {
		s.screen.ShowCursor(cursorX, cursorY)
	} else {
		s.screen.HideCursor()
	}
	s.screen.Show()
}
