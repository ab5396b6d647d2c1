package ptyproxy

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// watchSignals installs SIGWINCH, SIGABRT, and SIGSEGV handlers. SIGWINCH
// triggers a resize; SIGABRT and SIGSEGV are logged and trigger the crash
// fallback path. Go's runtime only delivers SIGSEGV to a registered handler
// when it did not itself already treat the fault as a fatal runtime error,
// so this handles externally-sent SIGSEGV/SIGABRT (e.g. a supervisor
// signalling the process) rather than an in-process memory fault.
func (p *Proxy) watchSignals() {
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	go func() {
		for range winch {
			p.handleResize()
		}
	}()

	crash := make(chan os.Signal, 1)
	signal.Notify(crash, syscall.SIGABRT, syscall.SIGSEGV)
	go func() {
		sig := <-crash
		if p.cfg.Log != nil {
			p.cfg.Log.Fatal("received %v", sig)
		}
		p.fatal(true)
	}()
}

// handleResize reads the real terminal's current size, forwards it to the
// PTY via TIOCSWINSZ, forwards SIGWINCH to the shell child, and resizes the
// screen model to match.
func (p *Proxy) handleResize() {
	cols, rows, err := term.GetSize(int(os.Stdin.Fd()))
	if err != nil || rows <= 0 || cols <= 0 {
		return
	}

	pty.Setsize(p.Ptm, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})

	if p.Cmd != nil && p.Cmd.Process != nil {
		syscall.Kill(p.Cmd.Process.Pid, syscall.SIGWINCH)
	}

	p.Term.Resize(rows, cols)
}
