package screen

import (
	"image/color"

	"github.com/danielgatis/go-ansicode"
)

// Ensure Terminal implements ansicode.Handler.
var _ ansicode.Handler = (*Terminal)(nil)

// --- cursor motion -----------------------------------------------------

func (t *Terminal) Goto(row, col int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if row < 0 {
		row = 0
	}
	if row >= t.rows {
		row = t.rows - 1
	}
	if col < 0 {
		col = 0
	}
	if col >= t.cols {
		col = t.cols - 1
	}
	t.setCursor(row, col)
}

func (t *Terminal) GotoCol(col int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if col < 0 {
		col = 0
	}
	if col >= t.cols {
		col = t.cols - 1
	}
	t.setCursor(t.cursor.Row, col)
}

func (t *Terminal) GotoLine(row int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if row < 0 {
		row = 0
	}
	if row >= t.rows {
		row = t.rows - 1
	}
	t.setCursor(row, t.cursor.Col)
}

func (t *Terminal) MoveUp(n int)     { t.moveRel(-n, 0, false) }
func (t *Terminal) MoveDown(n int)   { t.moveRel(n, 0, false) }
func (t *Terminal) MoveUpCr(n int)   { t.moveRel(-n, 0, true) }
func (t *Terminal) MoveDownCr(n int) { t.moveRel(n, 0, true) }
func (t *Terminal) MoveForward(n int) { t.moveRel(0, n, false) }
func (t *Terminal) MoveBackward(n int) { t.moveRel(0, -n, false) }

func (t *Terminal) moveRel(dRow, dCol int, cr bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row := t.cursor.Row + dRow
	col := t.cursor.Col + dCol
	if cr {
		col = 0
	}
	if row < 0 {
		row = 0
	}
	if row >= t.rows {
		row = t.rows - 1
	}
	if col < 0 {
		col = 0
	}
	if col >= t.cols {
		col = t.cols - 1
	}
	t.setCursor(row, col)
}

func (t *Terminal) MoveForwardTabs(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	col := ((t.cursor.Col / 8) + n) * 8
	if col >= t.cols {
		col = t.cols - 1
	}
	t.setCursor(t.cursor.Row, col)
}

func (t *Terminal) MoveBackwardTabs(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	col := t.cursor.Col - (t.cursor.Col%8 + 1) - (n-1)*8
	if col < 0 {
		col = 0
	}
	t.setCursor(t.cursor.Row, col)
}

func (t *Terminal) HorizontalTabSet() {}
func (t *Terminal) Tab(n int)         { t.MoveForwardTabs(n) }
func (t *Terminal) ClearTabs(mode ansicode.TabulationClearMode) {}

// --- line/screen editing -------------------------------------------------

func (t *Terminal) LineFeed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cursor.Row+1 >= t.scrollBottom {
		t.scrollFullScreen(1)
	} else {
		t.setCursor(t.cursor.Row+1, t.cursor.Col)
	}
}

func (t *Terminal) CarriageReturn() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setCursor(t.cursor.Row, 0)
}

func (t *Terminal) Backspace() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cursor.Col > 0 {
		t.setCursor(t.cursor.Row, t.cursor.Col-1)
	}
}

func (t *Terminal) ReverseIndex() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cursor.Row-1 < t.scrollTop {
		t.scrollFullScreen(-1)
	} else {
		t.setCursor(t.cursor.Row-1, t.cursor.Col)
	}
}

func (t *Terminal) ScrollUp(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scrollFullScreen(n)
}

func (t *Terminal) ScrollDown(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scrollFullScreen(-n)
}

func (t *Terminal) SetScrollingRegion(top, bottom int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if top < 0 {
		top = 0
	}
	if bottom > t.rows || bottom <= 0 {
		bottom = t.rows
	}
	if top >= bottom {
		return
	}
	t.scrollTop, t.scrollBottom = top, bottom
}

func (t *Terminal) ClearLine(mode ansicode.LineClearMode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row := t.cursor.Row
	switch mode {
	case ansicode.LineClearModeRight:
		t.active.ClearRect(row, row+1, t.cursor.Col, t.cols, t.template)
	case ansicode.LineClearModeLeft:
		t.active.ClearRect(row, row+1, 0, t.cursor.Col+1, t.template)
	default:
		t.active.ClearRect(row, row+1, 0, t.cols, t.template)
	}
}

func (t *Terminal) ClearScreen(mode ansicode.ClearMode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch mode {
	case ansicode.ClearModeAbove:
		t.active.ClearRect(0, t.cursor.Row+1, 0, t.cols, t.template)
	case ansicode.ClearModeBelow:
		t.active.ClearRect(t.cursor.Row, t.rows, 0, t.cols, t.template)
	case ansicode.ClearModeSaved:
		if t.onPrimary {
			t.scrollback.Clear()
		}
	default:
		t.active.ClearRect(0, t.rows, 0, t.cols, t.template)
	}
}

func (t *Terminal) EraseChars(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	right := t.cursor.Col + n
	if right > t.cols {
		right = t.cols
	}
	t.active.ClearRect(t.cursor.Row, t.cursor.Row+1, t.cursor.Col, right, t.template)
}

func (t *Terminal) DeleteChars(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row := t.cursor.Row
	line := t.active.RowLine(row)
	if line == nil {
		return
	}
	if n > t.cols-t.cursor.Col {
		n = t.cols - t.cursor.Col
	}
	copy(line[t.cursor.Col:t.cols-n], line[t.cursor.Col+n:t.cols])
	for c := t.cols - n; c < t.cols; c++ {
		line[c] = Blank(t.template)
	}
}

func (t *Terminal) InsertBlank(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row := t.cursor.Row
	line := t.active.RowLine(row)
	if line == nil {
		return
	}
	if n > t.cols-t.cursor.Col {
		n = t.cols - t.cursor.Col
	}
	copy(line[t.cursor.Col+n:t.cols], line[t.cursor.Col:t.cols-n])
	for c := t.cursor.Col; c < t.cursor.Col+n; c++ {
		line[c] = Blank(t.template)
	}
}

func (t *Terminal) InsertBlankLines(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cursor.Row < t.scrollTop || t.cursor.Row >= t.scrollBottom {
		return
	}
	t.active.MoveRect(t.cursor.Row+n, 0, t.cursor.Row, t.scrollBottom-n, 0, t.cols)
	t.active.ClearRect(t.cursor.Row, t.cursor.Row+n, 0, t.cols, t.template)
}

func (t *Terminal) DeleteLines(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cursor.Row < t.scrollTop || t.cursor.Row >= t.scrollBottom {
		return
	}
	t.active.MoveRect(t.cursor.Row, 0, t.cursor.Row+n, t.scrollBottom, 0, t.cols)
	t.active.ClearRect(t.scrollBottom-n, t.scrollBottom, 0, t.cols, t.template)
}

func (t *Terminal) Decaln() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for r := 0; r < t.rows; r++ {
		line := t.active.RowLine(r)
		for c := range line {
			line[c].SetRune('E')
		}
	}
}

func (t *Terminal) Substitute() {}

// --- text input ----------------------------------------------------------

func (t *Terminal) Input(r rune) {
	t.mu.Lock()
	defer t.mu.Unlock()

	width := runeWidth(r)
	if width == 0 {
		t.combineIntoPrevious(r)
		return
	}

	if t.cursor.Col+width > t.cols {
		if t.modes&ModeLineWrap != 0 {
			t.active.SetWrapped(t.cursor.Row, true)
			if t.cursor.Row+1 >= t.scrollBottom {
				t.scrollFullScreen(1)
			} else {
				t.cursor.Row++
			}
			t.cursor.Col = 0
		} else {
			t.cursor.Col = t.cols - width
			if t.cursor.Col < 0 {
				return
			}
		}
	}

	cell := t.active.Cell(t.cursor.Row, t.cursor.Col)
	if cell != nil {
		cell.SetRune(r)
		cell.Attrs = t.template
		cell.Wide = width == 2
	}
	t.cursor.Col++
	if width == 2 && t.cursor.Col < t.cols {
		gap := t.active.Cell(t.cursor.Row, t.cursor.Col)
		if gap != nil {
			*gap = Blank(t.template)
			gap.SetRune(WideGap)
		}
		t.cursor.Col++
	}
}

func (t *Terminal) combineIntoPrevious(r rune) {
	col := t.cursor.Col - 1
	if col < 0 {
		return
	}
	if cell := t.active.Cell(t.cursor.Row, col); cell != nil {
		cell.AddCombining(r)
	}
}

// --- colour / attribute ----------------------------------------------------

func (t *Terminal) SetTerminalCharAttribute(attr ansicode.TerminalCharAttribute) {
	t.mu.Lock()
	fg, bg, isFg, isBg, reset := resolveCharAttribute(attr)
	if reset {
		t.template.Fg = DefaultColour
		t.template.Bg = DefaultColour
	}
	if isFg {
		t.template.Fg = fg
	}
	if isBg {
		t.template.Bg = bg
	}
	hook := t.hooks.OnForeground
	newFg := t.template.Fg
	t.mu.Unlock()
	if isFg && hook != nil {
		hook(newFg)
	}
}

// resolveCharAttribute is a narrow, defensive translation of the SGR
// attribute carrier go-ansicode hands back: it extracts only foreground and
// background colour changes, which is all the screen model's attribute
// template and the pen-attribute hook need. Bold/italic/etc. are
// accepted by the interface but not tracked — figterm never renders.
func resolveCharAttribute(attr ansicode.TerminalCharAttribute) (fg, bg Colour, isFg, isBg, isReset bool) {
	switch v := any(attr).(type) {
	case interface{ Reset() bool }:
		if v.Reset() {
			isReset = true
		}
	}
	if fgv, ok := any(attr).(interface{ Foreground() (color.Color, bool) }); ok {
		if c, set := fgv.Foreground(); set {
			fg = colourFromImageColor(c)
			isFg = true
		}
	}
	if bgv, ok := any(attr).(interface{ Background() (color.Color, bool) }); ok {
		if c, set := bgv.Background(); set {
			bg = colourFromImageColor(c)
			isBg = true
		}
	}
	return
}

func colourFromImageColor(c color.Color) Colour {
	r, g, b, _ := c.RGBA()
	return RGBColour(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

func (t *Terminal) SetColor(index int, c color.Color) {}
func (t *Terminal) ResetColor(i int)                  {}
func (t *Terminal) SetDynamicColor(prefix string, index int, terminator string) {}

// --- modes -----------------------------------------------------------------

func (t *Terminal) SetMode(mode ansicode.TerminalMode) { t.applyMode(mode, true) }
func (t *Terminal) UnsetMode(mode ansicode.TerminalMode) { t.applyMode(mode, false) }

func (t *Terminal) applyMode(mode ansicode.TerminalMode, set bool) {
	t.mu.Lock()
	if mode == ansicode.ModeSwapScreenAndSetRestoreCursor {
		t.mu.Unlock()
		t.mu.Lock()
		t.swapAltScreen(set)
		t.mu.Unlock()
		return
	}
	switch mode {
	case ansicode.ModeLineWrap:
		if set {
			t.modes |= ModeLineWrap
		} else {
			t.modes &^= ModeLineWrap
		}
	case ansicode.ModeInsert:
		if set {
			t.modes |= ModeInsert
		} else {
			t.modes &^= ModeInsert
		}
	case ansicode.ModeOrigin:
		if set {
			t.modes |= ModeOrigin
		} else {
			t.modes &^= ModeOrigin
		}
	case ansicode.ModeShowCursor:
		t.cursor.Visible = set
	}
	t.mu.Unlock()
}

func (t *Terminal) SetKeypadApplicationMode()   {}
func (t *Terminal) UnsetKeypadApplicationMode() {}
func (t *Terminal) SetCursorStyle(style ansicode.CursorStyle) {}
func (t *Terminal) SetKeyboardMode(mode ansicode.KeyboardMode, behavior ansicode.KeyboardModeBehavior) {}
func (t *Terminal) PushKeyboardMode(mode ansicode.KeyboardMode) {}
func (t *Terminal) PopKeyboardMode(n int)                       {}
func (t *Terminal) ReportKeyboardMode()                         {}
func (t *Terminal) SetModifyOtherKeys(modify ansicode.ModifyOtherKeys) {}
func (t *Terminal) ReportModifyOtherKeys()                             {}

// --- charset -----------------------------------------------------------

func (t *Terminal) SetActiveCharset(n int)                                           {}
func (t *Terminal) ConfigureCharset(index ansicode.CharsetIndex, charset ansicode.Charset) {}

// --- cursor save/restore ---------------------------------------------------

func (t *Terminal) SaveCursorPosition() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.saved = savedCursor{Row: t.cursor.Row, Col: t.cursor.Col, Template: t.template, Origin: t.modes&ModeOrigin != 0}
}

func (t *Terminal) RestoreCursorPosition() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setCursor(t.saved.Row, t.saved.Col)
	t.template = t.saved.Template
}

func (t *Terminal) ResetState() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active.ClearRect(0, t.rows, 0, t.cols, Attrs{})
	t.template = Attrs{}
	t.cursor = Cursor{Visible: true}
	t.modes = ModeLineWrap
	t.scrollTop, t.scrollBottom = 0, t.rows
}

// --- title / clipboard / hyperlink / misc --------------------------------

func (t *Terminal) SetTitle(title string) {}
func (t *Terminal) PushTitle()            {}
func (t *Terminal) PopTitle()             {}

func (t *Terminal) ClipboardLoad(clipboard byte, terminator string)  {}
func (t *Terminal) ClipboardStore(clipboard byte, data []byte)       {}

func (t *Terminal) SetHyperlink(hyperlink *ansicode.Hyperlink) {}

func (t *Terminal) Bell()                        {}
func (t *Terminal) DeviceStatus(n int)           {}
func (t *Terminal) IdentifyTerminal(b byte)      {}
func (t *Terminal) TextAreaSizeChars()           {}
func (t *Terminal) TextAreaSizePixels()          {}
func (t *Terminal) CellSizePixels()              {}

func (t *Terminal) ApplicationCommandReceived(data []byte) {}
func (t *Terminal) PrivacyMessageReceived(data []byte)     {}
func (t *Terminal) StartOfStringReceived(data []byte)      {}
func (t *Terminal) SixelReceived(params [][]uint16, data []byte) {}

// --- shell integration (OSC 133) ------------------------------------------
//
// figterm's own protocol is the non-standard OSC 697 (internal/oscproto),
// scanned separately and ahead of this decoder (SPEC_FULL.md §4.2). OSC 133
// shell-integration marks are part of ansicode.Handler's interface surface
// but play no role in figterm's shell-state machine, so this is a no-op.
func (t *Terminal) ShellIntegrationMark(mark ansicode.ShellIntegrationMark, exitCode int) {}

// --- working directory (OSC 7) ---------------------------------------------

func (t *Terminal) SetWorkingDirectory(uri string) {
	t.mu.Lock()
	hook := t.hooks.OnWorkingDir
	t.mu.Unlock()
	if hook != nil {
		hook(uri)
	}
}
