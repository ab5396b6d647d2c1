package ptyproxy

import (
	"io"
	"net"
	"os"

	"figterm/internal/ipc"
)

// Run drives the proxy's fan-in/fan-out until the shell exits or a
// runtime-fatal error occurs. Rather than a literal select/poll over a
// shared fd set, each readiness source gets its own goroutine — the
// idiomatic Go rendering of "block in a readiness primitive over {stdin,
// PTY, listener, client}" — and the screen/shell-state mutation each of
// them triggers is already serialized by Terminal's own mutex, so no
// additional lock is needed here. PTY bytes are always parsed into the
// screen model before they reach stdout, since both steps happen in the
// same ptyLoop iteration before the next read.
func (p *Proxy) Run() {
	p.watchSignals()
	go p.stdinLoop()
	go p.insertionLoop()
	p.ptyLoop()
}

// stdinLoop forwards real stdin to the PTY parent verbatim, with no
// parsing. EOF ends the proxy loop.
func (p *Proxy) stdinLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			if _, werr := p.writePTY(buf[:n]); werr != nil {
				p.fatal(false)
				return
			}
		}
		if err != nil {
			select {
			case <-p.exitCh:
			default:
				close(p.exitCh)
			}
			return
		}
	}
}

// ptyLoop reads shell output, feeds it into the screen model and OSC
// scanner, publishes any edit-buffer change the feed exposed, and only then
// writes the bytes to real stdout.
func (p *Proxy) ptyLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := p.Ptm.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			p.Term.Write(chunk)
			p.scanner.Write(chunk)
			if text, cursor, ok := p.checkEditBuffer(); ok {
				p.publishEditBuffer(text, cursor)
			}
			if _, werr := os.Stdout.Write(chunk); werr != nil {
				p.fatal(false)
				return
			}
		}
		if err != nil {
			// EOF on the PTY parent means the shell exited; this is a clean
			// exit path, not a crash.
			select {
			case <-p.exitCh:
			default:
				close(p.exitCh)
			}
			return
		}
	}
}

// checkEditBuffer runs the extractor after a PTY read; a successful
// extraction is published as an editBuffer hook.
func (p *Proxy) checkEditBuffer() (string, int, bool) {
	res, ok := p.extract.Extract()
	if !ok {
		return "", 0, false
	}
	return res.Text, res.Cursor, true
}

// insertionLoop accepts at most one client at a time at the insertion
// socket and injects whatever it sends into the PTY exactly as if it had
// been typed at the real terminal.
func (p *Proxy) insertionLoop() {
	for {
		conn, err := p.insertion.Accept()
		if err != nil {
			return
		}
		p.handleInsertionClient(conn)
	}
}

func (p *Proxy) handleInsertionClient(conn net.Conn) {
	data, err := ipc.ReadInsertion(conn)
	if err != nil && err != io.EOF {
		return
	}
	if len(data) > 0 {
		p.writePTY(data)
	}
}

// Wait blocks until the proxy loop has ended (clean exit or runtime-fatal
// recovery).
func (p *Proxy) Wait() {
	<-p.exitCh
}

// fatal handles a runtime-fatal condition: log, restore the tty, and exec
// the fallback shell. It does not return on success.
func (p *Proxy) fatal(crashed bool) {
	if p.cfg.Log != nil {
		p.cfg.Log.Error("runtime-fatal: falling back to direct shell exec")
	}
	p.Close()
	select {
	case <-p.exitCh:
	default:
		close(p.exitCh)
	}
	if p.FallbackExec != nil {
		p.FallbackExec(crashed)
	}
}
