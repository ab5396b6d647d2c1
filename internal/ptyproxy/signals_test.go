package ptyproxy

import "testing"

// TestHandleResizeIsANoOpWithoutAReadableWindowSize exercises the common
// test-harness case where stdin isn't a tty: term.GetSize fails, and
// handleResize must return before touching the (here nil) PTY or child
// process rather than panicking.
func TestHandleResizeIsANoOpWithoutAReadableWindowSize(t *testing.T) {
	p := newTestProxy(t)

	p.handleResize()

	if p.Term.Rows() != 24 || p.Term.Cols() != 80 {
		t.Errorf("expected the screen model to be untouched, got %dx%d", p.Term.Rows(), p.Term.Cols())
	}
}
