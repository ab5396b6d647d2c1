package editbuffer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielgatis/go-ansicode"

	"figterm/internal/screen"
	"figterm/internal/shellstate"
)

func newPromptedState(t *testing.T, cursor screen.Position) *shellstate.State {
	t.Helper()
	s := shellstate.New(shellstate.Hooks{
		CursorPosition: func() screen.Position { return cursor },
	})
	s.SetShell("bash")
	s.NewCmd()
	return s
}

// TestExtractEmptyBufferReportsCursorZero covers scenario S1: a prompt was
// just drawn, no text typed yet, extraction must succeed with an empty
// string and cursor 0.
func TestExtractEmptyBufferReportsCursorZero(t *testing.T) {
	term := screen.New(24, 80, screen.DefaultScrollbackLines, screen.Hooks{})
	term.SetAttr("in_prompt", true)
	for _, r := range "$ " {
		term.Input(r)
	}
	term.SetAttr("in_prompt", false)

	state := newPromptedState(t, screen.Position{Row: 0, Col: 2})
	ex := &Extractor{Term: term, State: state}

	result, ok := ex.Extract()
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if result.Text != "" {
		t.Errorf("expected empty text, got %q", result.Text)
	}
	if result.Cursor != 0 {
		t.Errorf("expected cursor 0, got %d", result.Cursor)
	}
}

// TestExtractMasksPromptCells covers scenario S2: typed text after a
// two-cell "$ " prompt must extract to just the typed text.
func TestExtractMasksPromptCells(t *testing.T) {
	term := screen.New(24, 80, screen.DefaultScrollbackLines, screen.Hooks{})
	term.SetAttr("in_prompt", true)
	for _, r := range "$ " {
		term.Input(r)
	}
	term.SetAttr("in_prompt", false)
	for _, r := range "hello" {
		term.Input(r)
	}

	state := newPromptedState(t, screen.Position{Row: 0, Col: 2})
	ex := &Extractor{Term: term, State: state}

	result, ok := ex.Extract()
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if result.Text != "hello" {
		t.Errorf("expected %q, got %q", "hello", result.Text)
	}
	if result.Cursor != len("hello") {
		t.Errorf("expected cursor %d, got %d", len("hello"), result.Cursor)
	}
}

func TestExtractFailsDuringPreexec(t *testing.T) {
	term := screen.New(24, 80, screen.DefaultScrollbackLines, screen.Hooks{})
	state := newPromptedState(t, screen.Position{Row: 0, Col: 0})
	state.PreExec()
	ex := &Extractor{Term: term, State: state}

	if _, ok := ex.Extract(); ok {
		t.Error("expected extraction to fail while a command is executing")
	}
}

func TestExtractFailsForUnsupportedShell(t *testing.T) {
	term := screen.New(24, 80, screen.DefaultScrollbackLines, screen.Hooks{})
	state := shellstate.New(shellstate.Hooks{
		CursorPosition: func() screen.Position { return screen.Position{} },
	})
	state.SetShell("tcsh")
	state.NewCmd()
	ex := &Extractor{Term: term, State: state}

	if _, ok := ex.Extract(); ok {
		t.Error("expected extraction to fail for a shell without integration support")
	}
}

func TestExtractFailsBeforeAnyPrompt(t *testing.T) {
	term := screen.New(24, 80, screen.DefaultScrollbackLines, screen.Hooks{})
	state := shellstate.New(shellstate.Hooks{})
	state.SetShell("bash")
	ex := &Extractor{Term: term, State: state}

	if _, ok := ex.Extract(); ok {
		t.Error("expected extraction to fail before any NewCmd has set PromptCursor")
	}
}

func TestExtractFailsOnAltScreen(t *testing.T) {
	term := screen.New(24, 80, screen.DefaultScrollbackLines, screen.Hooks{})
	term.SetMode(ansicode.ModeSwapScreenAndSetRestoreCursor)
	state := newPromptedState(t, screen.Position{Row: 0, Col: 0})
	ex := &Extractor{Term: term, State: state}

	if !term.IsAlternateScreen() {
		t.Fatal("expected altscreen to be active after SetMode")
	}
	if _, ok := ex.Extract(); ok {
		t.Error("expected extraction to refuse to run on the altscreen")
	}
}

func TestExtractFailsWhenInsertionLocked(t *testing.T) {
	dir := t.TempDir()
	lock := filepath.Join(dir, "insertion-lock")
	if err := os.WriteFile(lock, nil, 0o644); err != nil {
		t.Fatalf("failed to create lock fixture: %v", err)
	}

	term := screen.New(24, 80, screen.DefaultScrollbackLines, screen.Hooks{})
	state := newPromptedState(t, screen.Position{Row: 0, Col: 0})
	ex := &Extractor{Term: term, State: state, InsertionLockPath: lock}

	if _, ok := ex.Extract(); ok {
		t.Error("expected extraction to fail while the insertion lock file exists")
	}
}

func TestExtractTrimsTrailingWhitespace(t *testing.T) {
	term := screen.New(24, 80, screen.DefaultScrollbackLines, screen.Hooks{})
	for _, r := range "ls    " {
		term.Input(r)
	}

	state := newPromptedState(t, screen.Position{Row: 0, Col: 0})
	ex := &Extractor{Term: term, State: state}

	result, ok := ex.Extract()
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if result.Text != "ls" {
		t.Errorf("expected trailing spaces trimmed, got %q", result.Text)
	}
	if result.Cursor != len("ls") {
		t.Errorf("expected cursor clamped to trimmed length, got %d", result.Cursor)
	}
}
