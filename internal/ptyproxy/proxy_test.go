package ptyproxy

import (
	"io"
	"os"
	"os/exec"
	"testing"
	"time"

	"figterm/internal/historywriter"
	"figterm/internal/ipc"
	"figterm/internal/proclookup"
	"figterm/internal/screen"
)

func newTestProxy(t *testing.T) *Proxy {
	t.Helper()
	dir := t.TempDir()
	p := New(Config{
		SessionID:           "sess-1",
		Hostname:            "host",
		IntegrationVersion:  3,
		InsertionSocketPath: dir + "/insertion.socket",
		HookSocketPath:      dir + "/hook.socket",
		LegacySocketPath:    dir + "/legacy.socket",
	})
	p.Term = screen.New(24, 80, screen.DefaultScrollbackLines, p.screenHooks())
	p.extract.Term = p.Term
	return p
}

func TestWritePTYWritesThroughToTheOtherEnd(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	p := newTestProxy(t)
	p.Ptm = w

	n, err := p.writePTY([]byte("hello"))
	if err != nil {
		t.Fatalf("writePTY: %v", err)
	}
	if n != 5 {
		t.Errorf("expected 5 bytes written, got %d", n)
	}

	buf := make([]byte, 5)
	if _, err := io.ReadFull(r, buf); err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(buf) != "hello" {
		t.Errorf("expected %q, got %q", "hello", buf)
	}
}

// TestWritePTYTimesOutOnAFullUnreadPipe covers the liveness guarantee: a
// write that the other end never drains must not hang the caller past
// ptyWriteTimeout.
func TestWritePTYTimesOutOnAFullUnreadPipe(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out the real write timeout")
	}

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	p := newTestProxy(t)
	p.Ptm = w

	big := make([]byte, 1<<20) // far larger than any pipe buffer, never read
	start := time.Now()
	_, err = p.writePTY(big)
	elapsed := time.Since(start)

	if err != ErrPTYWriteTimeout {
		t.Fatalf("expected ErrPTYWriteTimeout, got %v", err)
	}
	if elapsed < ptyWriteTimeout {
		t.Errorf("expected writePTY to block at least %v, returned after %v", ptyWriteTimeout, elapsed)
	}
}

func TestAfterDirectiveSendsStartTextExactlyOnce(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	p := newTestProxy(t)
	p.Ptm = w
	p.cfg.StartText = "ls -la"
	p.State.FirstPromptSeen = true

	p.afterDirective()
	p.afterDirective() // must not resend

	w.Close()
	data, _ := io.ReadAll(r)
	if string(data) != "ls -la\n" {
		t.Errorf("expected the start text to be sent exactly once, got %q", data)
	}
}

func TestAfterDirectiveWaitsForFirstPrompt(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	p := newTestProxy(t)
	p.Ptm = w
	p.cfg.StartText = "ls -la"

	p.afterDirective() // FirstPromptSeen is still false

	w.Close()
	data, _ := io.ReadAll(r)
	if len(data) != 0 {
		t.Errorf("expected nothing written before the first prompt, got %q", data)
	}
}

func TestBuildContext(t *testing.T) {
	p := newTestProxy(t)
	p.cfg.TTYPath = "/dev/pts/4"
	p.State.PID = 555

	ctx := p.buildContext()
	want := ipc.Context{
		SessionID:          "sess-1",
		PID:                555,
		Hostname:           "host",
		TTYs:               "/dev/pts/4",
		IntegrationVersion: 3,
	}
	if ctx != want {
		t.Errorf("expected %+v, got %+v", want, ctx)
	}
}

func TestChdirUpdatesStateOnSuccess(t *testing.T) {
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	defer os.Chdir(orig)

	p := newTestProxy(t)
	dir := t.TempDir()

	p.chdir(dir)

	got, _ := os.Getwd()
	// Resolve both paths through EvalSymlinks-free comparison isn't needed
	// here: t.TempDir() already returns a clean, non-symlinked path on Linux.
	if p.State.Cwd != dir {
		t.Errorf("expected State.Cwd to be updated to %q, got %q", dir, p.State.Cwd)
	}
	if got != dir {
		t.Errorf("expected process cwd to change to %q, got %q", dir, got)
	}
}

func TestChdirIgnoresEmptyPath(t *testing.T) {
	p := newTestProxy(t)
	p.State.Cwd = "/somewhere"

	p.chdir("")

	if p.State.Cwd != "/somewhere" {
		t.Errorf("expected chdir(\"\") to be a no-op, got %q", p.State.Cwd)
	}
}

func TestResyncCwdPicksUpOutOfBandChdir(t *testing.T) {
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	defer os.Chdir(orig)

	self, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("FindProcess: %v", err)
	}

	p := newTestProxy(t)
	p.Cmd = &exec.Cmd{Process: self}
	p.State.Cwd = "/does/not/match"

	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}

	p.resyncCwd()

	realCwd, err := proclookup.Cwd(os.Getpid())
	if err != nil {
		t.Fatalf("proclookup.Cwd: %v", err)
	}
	if p.State.Cwd != realCwd {
		t.Errorf("expected State.Cwd to resync to %q, got %q", realCwd, p.State.Cwd)
	}
}

func TestFlushHistoryIsANoOpWithoutAWriter(t *testing.T) {
	p := newTestProxy(t)
	// cfg.History is nil; this must not panic.
	p.flushHistory(historywriter.Entry{Command: "ls"})
}
