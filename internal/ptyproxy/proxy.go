// Package ptyproxy owns the PTY parent/child pair and the event loop that
// fans bytes between the real terminal and the shell child: real stdin
// forwards to the PTY verbatim; PTY output is parsed into the screen model
// and the OSC scanner before being written to real stdout; an
// insertion-request listener injects externally-supplied text as if it had
// been typed. Uses a goroutine-plus-mutex concurrency shape to drive
// figterm's screen/oscproto/shellstate stack.
package ptyproxy

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
	"golang.org/x/term"

	"figterm/internal/editbuffer"
	"figterm/internal/historywriter"
	"figterm/internal/ipc"
	"figterm/internal/oscproto"
	"figterm/internal/proclookup"
	"figterm/internal/screen"
	"figterm/internal/sessionlog"
	"figterm/internal/shellstate"
)

// ptyWriteTimeout bounds how long a write to the child PTY may block before
// the proxy gives up rather than hang forever if the shell has stopped
// reading its stdin.
const ptyWriteTimeout = 2 * time.Second

// ErrPTYWriteTimeout is returned by writePTY when the child PTY did not
// accept the write within ptyWriteTimeout.
var ErrPTYWriteTimeout = errors.New("ptyproxy: pty write timed out")

// Config carries everything the proxy needs to start the shell child and
// wire the rest of the core to it. The lifecycle controller builds this
// after its preconditions pass.
type Config struct {
	ShellPath string
	ShellArgs []string
	Env       []string

	SessionID          string
	Hostname           string
	TTYPath            string
	IntegrationVersion int

	StartText string // FIG_START_TEXT, sent once the first prompt is seen

	InsertionSocketPath string // /tmp/figterm-<SESSION_ID>.socket
	HookSocketPath      string // $TMPDIR/fig.socket
	LegacySocketPath    string // /tmp/fig.socket
	InsertionLockPath   string // ~/.fig/insertion-lock
	InitBundle          string // derived from TERM_PROGRAM / TERM_BUNDLE_IDENTIFIER

	History *historywriter.Writer
	Log     *sessionlog.Logger
}

// Proxy is the running PTY proxy: the child shell, the shadow screen model,
// the OSC scanner/handler, shell state, and the IPC sockets it publishes to.
type Proxy struct {
	cfg Config

	Cmd *exec.Cmd
	Ptm *os.File

	Term    *screen.Terminal
	scanner *oscproto.Scanner
	osc     *oscproto.Handler
	State   *shellstate.State
	extract *editbuffer.Extractor

	hook      *ipc.HookSocket
	legacy    *ipc.LegacySocket
	insertion *ipc.InsertionListener

	// FallbackExec is invoked from the runtime-fatal recovery path: a
	// read/write error on the PTY/stdin or a SIGABRT/SIGSEGV crash. It must
	// never return on success (it execs); set by the lifecycle controller so
	// ptyproxy need not know how environment cleanup or argv construction
	// work.
	FallbackExec func(crashed bool)

	mu           sync.Mutex
	termState    *term.State
	handshakeSent bool

	exitCh chan struct{}
}

// New wires a Proxy's screen model, OSC pipeline, and shell state together,
// but does not yet open the PTY or start the child (see Start).
func New(cfg Config) *Proxy {
	p := &Proxy{cfg: cfg, exitCh: make(chan struct{})}

	p.hook = ipc.NewHookSocket(cfg.HookSocketPath)
	p.legacy = ipc.NewLegacySocket(cfg.LegacySocketPath)

	p.State = shellstate.New(shellstate.Hooks{
		CursorPosition: func() screen.Position { return p.Term.CursorPosition() },
		Chdir:          p.chdir,
		PreExec:        p.publishPreExec,
		HistoryFlush:   p.flushHistory,
		LogLevel: func(level string) {
			if p.cfg.Log != nil {
				p.cfg.Log.SetLevel(sessionlog.ParseLevel(level))
			}
		},
	})

	p.osc = oscproto.NewHandler(func(directive string) {
		name := oscproto.Parse(directive).Name
		if name == "PreExec" && p.Term != nil {
			// Capture the command line before Preexec mutes the extractor.
			if res, ok := p.extract.Extract(); ok {
				p.State.SetPendingCommand(res.Text)
			}
		}
		oscproto.Route(directive, p.State)
		if name == "StartPrompt" {
			p.publishPrompt()
		}
		p.afterDirective()
	})
	p.scanner = oscproto.NewScanner(p.osc.Feed)

	p.extract = &editbuffer.Extractor{State: p.State, InsertionLockPath: cfg.InsertionLockPath}

	return p
}

// Start opens the PTY, starts the shell child sized to the real terminal's
// current window, puts real stdin into raw mode, and opens the insertion
// listener.
func (p *Proxy) Start() error {
	cols, rows, err := term.GetSize(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("ptyproxy: read window size: %w", err)
	}
	if rows <= 0 {
		rows = 24
	}
	if cols <= 0 {
		cols = 80
	}

	p.Term = screen.New(rows, cols, screen.DefaultScrollbackLines, p.screenHooks())
	p.extract.Term = p.Term

	p.Cmd = exec.Command(p.cfg.ShellPath, p.cfg.ShellArgs...)
	p.Cmd.Env = p.cfg.Env

	ptm, err := pty.StartWithSize(p.Cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return fmt.Errorf("ptyproxy: start shell: %w", err)
	}
	p.Ptm = ptm
	p.cfg.TTYPath = p.TTYName()

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		p.Ptm.Close()
		return fmt.Errorf("ptyproxy: set raw mode: %w", err)
	}
	p.termState = oldState

	insertion, err := ipc.Listen(p.cfg.InsertionSocketPath)
	if err != nil {
		p.restoreTTY()
		p.Ptm.Close()
		return fmt.Errorf("ptyproxy: insertion listener: %w", err)
	}
	p.insertion = insertion

	p.publishInit()
	return nil
}

// screenHooks builds the screen.Hooks that close the loop back from the
// shadow grid into shell state and the cwd-resync logic.
func (p *Proxy) screenHooks() screen.Hooks {
	return screen.Hooks{
		OnCursorMove: func(newRow, newCol, oldRow, oldCol int) {
			if newCol == 0 || oldCol == 0 {
				p.resyncCwd()
			}
		},
		OnScroll: func(deltaRows int) {
			p.State.AdjustPromptRow(deltaRows)
		},
		OnAltScreen: func(active bool) {},
		OnForeground: func(c screen.Colour) {
			suggestion := p.State.HasFishSuggestionColour && c.Equal(p.State.FishSuggestionColour)
			p.Term.SetAttr("in_suggestion", suggestion)
		},
		OnWorkingDir: func(path string) {
			if !p.State.InSSH {
				p.chdir(path)
			}
		},
	}
}

// chdir changes the proxy process's own working directory so that any
// further children figterm spawns inherit the shell's cwd.
func (p *Proxy) chdir(path string) {
	if path == "" {
		return
	}
	if err := os.Chdir(path); err != nil {
		if p.cfg.Log != nil {
			p.cfg.Log.Warn("chdir %q: %v", path, err)
		}
		return
	}
	p.State.Cwd = path
}

// resyncCwd re-derives cwd from the shell child's /proc entry, catching
// `cd` invoked from scripts that never emit a Dir= directive.
func (p *Proxy) resyncCwd() {
	if p.Cmd == nil || p.Cmd.Process == nil {
		return
	}
	cwd, err := proclookup.Cwd(p.Cmd.Process.Pid)
	if err != nil {
		return
	}
	if cwd != p.State.Cwd {
		p.chdir(cwd)
	}
}

// afterDirective runs after every routed OSC directive: it handles the
// first-prompt handshake. The prompt hook is published by the directive
// callback in New, not here.
func (p *Proxy) afterDirective() {
	if p.State.FirstPromptSeen && !p.handshakeSent {
		p.handshakeSent = true
		if p.cfg.StartText != "" && p.Ptm != nil {
			p.writePTY([]byte(p.cfg.StartText + "\n"))
		}
	}
}

func (p *Proxy) buildContext() ipc.Context {
	return ipc.Context{
		SessionID:          p.cfg.SessionID,
		PID:                p.State.PID,
		Hostname:           p.cfg.Hostname,
		TTYs:               p.cfg.TTYPath,
		IntegrationVersion: p.cfg.IntegrationVersion,
	}
}

func (p *Proxy) publishInit() {
	if err := p.hook.SendHook(ipc.InitHook(p.buildContext(), p.cfg.InitBundle)); err != nil && p.cfg.Log != nil {
		p.cfg.Log.Warn("init hook: %v", err)
	}
}

func (p *Proxy) publishPreExec() {
	if err := p.hook.SendHook(ipc.PreExecHook(p.buildContext())); err != nil && p.cfg.Log != nil {
		p.cfg.Log.Warn("preExec hook: %v", err)
	}
}

func (p *Proxy) publishPrompt() {
	if err := p.hook.SendHook(ipc.PromptHook(p.buildContext())); err != nil && p.cfg.Log != nil {
		p.cfg.Log.Warn("prompt hook: %v", err)
	}
}

func (p *Proxy) publishEditBuffer(text string, cursor int) {
	if err := p.hook.SendHook(ipc.EditBufferHook(p.buildContext(), text, cursor)); err != nil && p.cfg.Log != nil {
		p.cfg.Log.Warn("editBuffer hook: %v", err)
	}
}

func (p *Proxy) flushHistory(e historywriter.Entry) {
	if p.cfg.History == nil {
		return
	}
	if err := p.cfg.History.Append(e); err != nil && p.cfg.Log != nil {
		p.cfg.Log.Warn("history append: %v", err)
	}
}

// restoreTTY puts real stdin back into cooked mode. Safe to call more than
// once; a nil termState is a no-op.
func (p *Proxy) restoreTTY() {
	if p.termState == nil {
		return
	}
	term.Restore(int(os.Stdin.Fd()), p.termState)
	p.termState = nil
}

// writePTY writes to the child PTY with a timeout, grounded on the same
// goroutine-plus-timer shape used to avoid blocking on a PTY buffer that
// the child shell has stopped draining.
func (p *Proxy) writePTY(data []byte) (int, error) {
	type result struct {
		n   int
		err error
	}
	ch := make(chan result, 1)
	go func() {
		n, err := p.Ptm.Write(data)
		ch <- result{n, err}
	}()
	timer := time.NewTimer(ptyWriteTimeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		return r.n, r.err
	case <-timer.C:
		return 0, ErrPTYWriteTimeout
	}
}

// Close tears the proxy down: restores the tty, closes the PTY and sockets,
// and unlinks the insertion socket.
func (p *Proxy) Close() {
	p.restoreTTY()
	if p.Ptm != nil {
		p.Ptm.Close()
	}
	if p.insertion != nil {
		p.insertion.Close()
	}
	p.hook.Close()
	p.legacy.Close()
	if p.cfg.Log != nil {
		p.cfg.Log.Close()
	}
}
