// Package editbuffer derives the command text currently being edited and
// the cursor's byte offset within it from the screen model and shell state,
// or reports that no extraction is safe/meaningful right now.
package editbuffer

import (
	"os"
	"strings"

	"figterm/internal/screen"
	"figterm/internal/shellstate"
)

// Extractor ties together the screen model, shell state, and the
// insertion-lock file path.
type Extractor struct {
	Term              *screen.Terminal
	State             *shellstate.State
	InsertionLockPath string
}

// Result is a successful extraction: the command text and the cursor's
// byte offset within it.
type Result struct {
	Text   string
	Cursor int
}

// Extract returns the current edit buffer, or ok=false when the shell is
// executing a command, the shell isn't one figterm's integration covers,
// insertion is externally locked, no prompt has been seen, or the screen is
// on the altscreen.
func (e *Extractor) Extract() (Result, bool) {
	if e.State.Preexec {
		return Result{}, false
	}
	if !e.State.ShellSupported() {
		return Result{}, false
	}
	if e.insertionLocked() {
		return Result{}, false
	}
	if !e.State.HasPrompt() {
		return Result{}, false
	}
	if e.Term.IsAlternateScreen() {
		return Result{}, false
	}

	rows := e.Term.Rows()
	rect := screen.Rect{Top: e.State.PromptCursor.Row, Bottom: rows}
	cursorPos := e.Term.CursorPosition()

	var cursorOut int
	text := e.Term.GetText(rect, e.State.PromptCursor.Col, screen.MaskSpace, true, cursorPos, &cursorOut)
	if cursorOut < 0 {
		return Result{}, false
	}

	trimmed, idx := rightTrim(text, cursorOut)
	return Result{Text: trimmed, Cursor: idx}, true
}

func (e *Extractor) insertionLocked() bool {
	if e.InsertionLockPath == "" {
		return false
	}
	_, err := os.Stat(e.InsertionLockPath)
	return err == nil
}

// rightTrim strips trailing whitespace from text, clamping cursor to the
// trimmed length so it never points past the end.
func rightTrim(text string, cursor int) (string, int) {
	trimmed := strings.TrimRight(text, " \t\r\n")
	if cursor > len(trimmed) {
		cursor = len(trimmed)
	}
	return trimmed, cursor
}
