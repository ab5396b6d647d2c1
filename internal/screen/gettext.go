package screen

import "unicode/utf8"

// Rect is a half-open row range [Top, Bottom) over the full column width of
// the active buffer, used by GetText. figterm only ever needs full-width
// multi-row rectangles, so this is deliberately simpler than a general
// (top,left,bottom,right) rect.
type Rect struct {
	Top, Bottom int
}

// MaskKind selects how prompt/suggestion cells are masked during extraction.
type MaskKind int

const (
	// MaskNone emits cell characters unmodified regardless of Attrs.
	MaskNone MaskKind = iota
	// MaskSpace treats prompt/suggestion cells as blanks, eliding them via
	// trailing-space padding exactly like real blank cells.
	MaskSpace
)

// GetText scans the rectangle row by row, column by column, the first row
// starting at startColOffset. Blank and
// masked cells accumulate as pending padding and are only flushed when a
// non-blank, non-masked cell follows on the same logical line. Row
// boundaries emit a linefeed unless the previous row was a soft-wrap
// continuation (wrapLines==true and the row didn't end in padding).
//
// cursor, if non-nil, receives the byte offset into the returned text at
// which position cursorPos falls; it is left at -1 if the scan never
// crosses it.
func (t *Terminal) GetText(rect Rect, startColOffset int, mask MaskKind, wrapLines bool, cursorPos Position, cursorOut *int) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cursorOut != nil {
		*cursorOut = -1
	}

	var out []byte
	pendingPad := 0
	prevRowWasPadding := true // treat "before row Top" as if padding, so no leading linefeed

	for row := rect.Top; row < rect.Bottom; row++ {
		line := t.active.RowLine(row)
		if line == nil {
			continue
		}
		startCol := 0
		if row == rect.Top {
			startCol = startColOffset
		}

		if row > rect.Top {
			if !wrapLines || prevRowWasPadding || !t.active.IsWrapped(row-1) {
				out = append(out, '\n')
			}
			pendingPad = 0
		}

		rowHadContent := false
		for col := startCol; col < len(line); col++ {
			cell := line[col]
			if cell.IsWideGap() {
				continue
			}

			if cursorOut != nil && row == cursorPos.Row && col == cursorPos.Col {
				*cursorOut = len(out) + pendingPad
			}

			masked := mask == MaskSpace && (cell.Attrs.InPrompt || cell.Attrs.InSuggestion)
			blank := cell.IsBlank() || masked

			if blank {
				pendingPad++
				continue
			}

			for ; pendingPad > 0; pendingPad-- {
				out = append(out, ' ')
			}
			for _, r := range cell.Runes() {
				out = appendRune(out, r)
			}
			rowHadContent = true
		}

		prevRowWasPadding = !rowHadContent || pendingPad > 0
	}

	return string(out)
}

func appendRune(b []byte, r rune) []byte {
	return utf8.AppendRune(b, r)
}
