// Package screen implements figterm's shadow VT screen model: two Cell
// grids (primary and alternate), a scrollback ring, and the custom
// in_prompt/in_suggestion/fg/bg attribute layer the VT parser itself knows
// nothing about. A Terminal is driven by github.com/danielgatis/go-ansicode,
// which parses the byte stream and calls back into Terminal through the
// ansicode.Handler interface (handler.go).
package screen

import (
	"sync"

	"github.com/danielgatis/go-ansicode"
)

// Hooks lets the PTY proxy layer observe screen events it cannot derive by
// polling the grid: cursor movement (for the cwd-resync check), full-screen
// scroll (to keep PromptCursor's row in sync), and altscreen swaps (the
// extractor refuses to run on the altscreen).
type Hooks struct {
	OnCursorMove   func(newRow, newCol, oldRow, oldCol int)
	OnScroll       func(deltaRows int)
	OnAltScreen    func(active bool)
	OnForeground   func(c Colour)
	OnWorkingDir   func(path string)
}

// Terminal is figterm's shadow screen: it implements ansicode.Handler so a
// *ansicode.Decoder can drive it directly from raw PTY bytes.
type Terminal struct {
	mu sync.Mutex

	rows, cols int

	primary   *Grid
	alternate *Grid
	active    *Grid
	onPrimary bool

	scrollback *Scrollback

	cursor      Cursor
	saved       savedCursor
	template    Attrs
	scrollTop   int
	scrollBottom int // exclusive
	modes       Modes

	decoder *ansicode.Decoder

	hooks Hooks
}

// New builds a Terminal of the given size with a scrollback ring bounded at
// scrollbackLines (see DefaultScrollbackLines for the default bound).
func New(rows, cols, scrollbackLines int, hooks Hooks) *Terminal {
	t := &Terminal{
		rows:         rows,
		cols:         cols,
		primary:      NewGrid(rows, cols),
		alternate:    NewGrid(rows, cols),
		scrollback:   NewScrollback(scrollbackLines),
		cursor:       Cursor{Visible: true},
		scrollTop:    0,
		scrollBottom: rows,
		modes:        ModeLineWrap,
		hooks:        hooks,
		onPrimary:    true,
	}
	t.active = t.primary
	t.decoder = ansicode.NewDecoder(t)
	return t
}

// Write feeds raw PTY bytes through the VT parser. Callers that also need
// the OSC 697 side channel (internal/oscproto) must run that scanner over
// the same bytes themselves — go-ansicode has no hook for non-standard OSC
// codes (SPEC_FULL.md §4.2).
func (t *Terminal) Write(data []byte) (int, error) {
	return t.decoder.Write(data)
}

func (t *Terminal) Rows() int { t.mu.Lock(); defer t.mu.Unlock(); return t.rows }
func (t *Terminal) Cols() int { t.mu.Lock(); defer t.mu.Unlock(); return t.cols }

// IsAlternateScreen reports whether the altscreen is currently active.
func (t *Terminal) IsAlternateScreen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.onPrimary
}

// CursorPosition returns the current cursor row/col (0-based).
func (t *Terminal) CursorPosition() Position {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Position{Row: t.cursor.Row, Col: t.cursor.Col}
}

// Cell returns a copy of the cell at (row, col) in the active buffer, or the
// zero Cell if out of bounds.
func (t *Terminal) Cell(row, col int) Cell {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := t.active.Cell(row, col)
	if c == nil {
		return Cell{}
	}
	return *c
}

// Row returns the active buffer's row, for read-only scanning (e.g. the
// edit-buffer extractor). The returned slice must not be mutated.
func (t *Terminal) Row(row int) Line {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active.RowLine(row)
}

// RowWrapped reports whether the given active-buffer row ended via a
// soft-wrap rather than an explicit linefeed.
func (t *Terminal) RowWrapped(row int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active.IsWrapped(row)
}

// SetAttr mutates the template stamped onto subsequently written cells:
// in_prompt, in_suggestion, foreground, background.
func (t *Terminal) SetAttr(kind string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch kind {
	case "in_prompt":
		t.template.InPrompt, _ = value.(bool)
	case "in_suggestion":
		t.template.InSuggestion, _ = value.(bool)
	case "foreground":
		if c, ok := value.(Colour); ok {
			t.template.Fg = c
		}
	case "background":
		if c, ok := value.(Colour); ok {
			t.template.Bg = c
		}
	}
}

// CurrentForeground returns the template foreground colour currently in
// effect. The pen-attribute hook does not call it; it receives the new
// foreground colour as its argument.
func (t *Terminal) CurrentForeground() Colour {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.template.Fg
}

func (t *Terminal) setCursor(row, col int) {
	old := t.cursor
	t.cursor.Row, t.cursor.Col = row, col
	if t.hooks.OnCursorMove != nil && (old.Row != row || old.Col != col) {
		t.hooks.OnCursorMove(row, col, old.Row, old.Col)
	}
}

// scrollFullScreen shifts the active buffer's full width/height up by n rows
// (down if n is negative), pushing rows into scrollback when operating on
// the primary buffer.
func (t *Terminal) scrollFullScreen(n int) {
	if n == 0 {
		return
	}
	if n > 0 {
		pushed := t.active.scrollUp(0, t.rows, n, t.template)
		if t.onPrimary {
			for _, line := range pushed {
				t.scrollback.Push(line)
			}
		}
	} else {
		t.active.scrollDown(0, t.rows, -n, t.template)
	}
	if t.hooks.OnScroll != nil {
		t.hooks.OnScroll(-n)
	}
}

// swapAltScreen switches the active buffer between primary and alternate.
func (t *Terminal) swapAltScreen(toAlt bool) {
	if toAlt == !t.onPrimary {
		return
	}
	t.onPrimary = !toAlt
	if toAlt {
		t.active = t.alternate
		t.modes |= ModeAltScreen
	} else {
		t.active = t.primary
		t.modes &^= ModeAltScreen
	}
	if t.hooks.OnAltScreen != nil {
		t.hooks.OnAltScreen(toAlt)
	}
}

// Resize applies a bottom-anchored resize: the old last row maps to the new
// last row, new rows opened at the top are
// back-filled from scrollback (primary buffer only), and old rows that no
// longer fit are pushed to scrollback in top-to-bottom order. Both buffers
// are resized independently; only the primary buffer touches scrollback.
func (t *Terminal) Resize(rows, cols int) {
	if rows <= 0 || cols <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	oldRows := t.rows
	delta := rows - oldRows

	newPrimary := resizeGrid(t.primary, rows, cols, t.scrollback, true)
	newAlternate := resizeGrid(t.alternate, rows, cols, nil, false)

	t.primary = newPrimary
	t.alternate = newAlternate
	if t.onPrimary {
		t.active = t.primary
	} else {
		t.active = t.alternate
	}

	t.rows, t.cols = rows, cols
	t.scrollTop, t.scrollBottom = 0, rows

	t.cursor.Row += delta
	if t.cursor.Row < 0 {
		t.cursor.Row = 0
	}
	if t.cursor.Row >= rows {
		t.cursor.Row = rows - 1
	}
	if t.cursor.Col >= cols {
		t.cursor.Col = cols - 1
	}
	if t.cursor.Col < 0 {
		t.cursor.Col = 0
	}

	// "If the cursor is above the new last row and the top-most new row is
	// blank, roll cells downward by one so the active line stays at the
	// bottom" — this only matters when growth left the grid under-filled
	// (an empty scrollback couldn't back-fill every new row) while the
	// cursor did not end up on the bottom row.
	if delta > 0 && t.cursor.Row < rows-1 {
		top := t.active.RowLine(0)
		blank := true
		for _, c := range top {
			if !c.IsBlank() {
				blank = false
				break
			}
		}
		if blank {
			t.active.MoveRect(1, 0, 0, rows-1, 0, cols)
			t.active.ClearRect(0, 1, 0, cols, t.template)
			t.cursor.Row++
		}
	}
}

// resizeGrid performs the bottom-anchored copy for one grid. When sb is
// non-nil and useScrollback is true, rows opened by growth are back-filled
// from scrollback (popping the most recently pushed line first) and rows
// that no longer fit on shrink are pushed back (top-to-bottom, i.e. the
// oldest-relative-to-cursor rows first).
func resizeGrid(old *Grid, newRows, newCols int, sb *Scrollback, useScrollback bool) *Grid {
	oldRows := old.Rows()
	next := NewGrid(newRows, newCols)

	copyCount := oldRows
	if newRows < copyCount {
		copyCount = newRows
	}
	for i := 0; i < copyCount; i++ {
		oldRow := oldRows - 1 - i
		newRow := newRows - 1 - i
		srcLine := old.RowLine(oldRow)
		dstLine := next.RowLine(newRow)
		n := len(srcLine)
		if len(dstLine) < n {
			n = len(dstLine)
		}
		copy(dstLine, srcLine[:n])
		next.SetWrapped(newRow, old.IsWrapped(oldRow))
	}

	if newRows > oldRows {
		opened := newRows - oldRows
		for i := 0; i < opened; i++ {
			target := opened - 1 - i
			if useScrollback && sb != nil {
				if line, ok := sb.Pop(); ok {
					dst := next.RowLine(target)
					n := len(line)
					if len(dst) < n {
						n = len(dst)
					}
					copy(dst, line[:n])
					continue
				}
			}
		}
	} else if oldRows > newRows {
		excess := oldRows - newRows
		for i := 0; i < excess; i++ {
			if useScrollback && sb != nil {
				sb.Push(old.RowLine(i))
			}
		}
	}

	return next
}

// ScrollbackLen reports the number of lines currently retained.
func (t *Terminal) ScrollbackLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scrollback.Len()
}
