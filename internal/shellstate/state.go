// Package shellstate holds the recognized-shell record (ShellState) plus
// the PromptCursor, and implements the oscproto.Dispatcher interface so the
// OSC 697 handler can drive it directly.
package shellstate

import (
	"time"

	"github.com/google/uuid"

	"figterm/internal/colorspec"
	"figterm/internal/historywriter"
	"figterm/internal/screen"
)

// sentinelRow/sentinelCol mark PromptCursor as "no prompt seen yet".
const sentinelRow, sentinelCol = -1, -1

// Hooks lets the owning layer (the PTY proxy) react to state transitions
// that have side effects outside the shell-state record itself.
type Hooks struct {
	// CursorPosition supplies the screen model's current cursor so NewCmd
	// can capture it as the new PromptCursor.
	CursorPosition func() screen.Position
	// Chdir is called for Dir= directives when not over ssh.
	Chdir func(path string)
	// PreExec fires when a PreExec directive arrives, for hook publication.
	PreExec func()
	// HistoryFlush fires when a completed command (with its exit code) is
	// ready to be written to ~/.fig/history.
	HistoryFlush func(historywriter.Entry)
	// LogLevel fires on a Log= directive.
	LogLevel func(level string)
}

// State is the recognized-shell record plus PromptCursor, updated by the
// OSC handler and the screen model's cursor-movement and scroll callbacks.
type State struct {
	TTY       string
	PID       int
	SessionID string
	Hostname  string
	ShellName string
	Cwd       string
	InSSH     bool
	InDocker  bool
	InPrompt  bool
	Preexec   bool

	FishSuggestionColour      screen.Colour
	HasFishSuggestionColour   bool

	PromptCursor    screen.Position
	FirstPromptSeen bool

	pending *pendingCommand
	hooks   Hooks
}

type pendingCommand struct {
	text      string
	startedAt time.Time
}

// supportedShells gates hook sending to the shells shell-integration scripts
// actually ship for.
var supportedShells = map[string]bool{"bash": true, "fish": true, "zsh": true}

// New builds a State with PromptCursor at the sentinel.
func New(hooks Hooks) *State {
	return &State{
		PromptCursor: screen.Position{Row: sentinelRow, Col: sentinelCol},
		hooks:        hooks,
	}
}

// HasPrompt reports whether PromptCursor has been set at least once.
func (s *State) HasPrompt() bool {
	return s.PromptCursor.Row != sentinelRow || s.PromptCursor.Col != sentinelCol
}

// ShellSupported reports whether the recorded shell name is one figterm's
// shell-integration scripts cover.
func (s *State) ShellSupported() bool {
	return supportedShells[s.ShellName]
}

// AdjustPromptRow shifts PromptCursor's row by delta when the screen
// scrolls, clamping at the sentinel if the prompt has scrolled out of the
// buffer entirely.
func (s *State) AdjustPromptRow(delta int) {
	if !s.HasPrompt() {
		return
	}
	s.PromptCursor.Row += delta
	if s.PromptCursor.Row < 0 {
		s.PromptCursor = screen.Position{Row: sentinelRow, Col: sentinelCol}
	}
}

// --- oscproto.Dispatcher -----------------------------------------------

func (s *State) NewCmd() {
	s.flushPending(nil)
	if s.hooks.CursorPosition != nil {
		s.PromptCursor = s.hooks.CursorPosition()
	}
	s.Preexec = false
}

func (s *State) StartPrompt() {
	s.InPrompt = true
	s.FirstPromptSeen = true
}

func (s *State) EndPrompt() {
	s.InPrompt = false
}

func (s *State) PreExec() {
	s.Preexec = true
	if s.hooks.PreExec != nil {
		s.hooks.PreExec()
	}
}

func (s *State) Dir(path string) {
	s.Cwd = path
	if !s.InSSH && s.hooks.Chdir != nil {
		s.hooks.Chdir(path)
	}
}

func (s *State) ExitCode(n int) {
	s.flushPending(&n)
}

func (s *State) SetShell(name string) {
	s.ShellName = name
}

func (s *State) FishSuggestionColor(spec string) {
	c, ok := colorspec.Parse(spec)
	s.HasFishSuggestionColour = ok
	if ok {
		s.FishSuggestionColour = c
	}
}

func (s *State) SetTTY(dev string)      { s.TTY = dev }
func (s *State) SetPID(n int)           { s.PID = n }
func (s *State) SetSessionID(id string) { s.SessionID = id }
func (s *State) SetHostname(h string)   { s.Hostname = h }
func (s *State) SetDocker(on bool)      { s.InDocker = on }
func (s *State) SetSSH(on bool)         { s.InSSH = on }

func (s *State) Log(level string) {
	if s.hooks.LogLevel != nil {
		s.hooks.LogLevel(level)
	}
}

func (s *State) Unknown(payload string) {}

// --- command text buffering ---------------------------------------------

// SetPendingCommand records the text the extractor observed at PreExec
// time, buffered as the command being run, pending exit code.
func (s *State) SetPendingCommand(text string) {
	s.pending = &pendingCommand{text: text, startedAt: time.Now()}
}

// flushPending completes the in-flight pending command, if any, with the
// given exit code (nil when no ExitCode directive arrived — e.g. a new
// command started before the previous one reported one), and discards
// exit code 130 (Ctrl-C).
func (s *State) flushPending(exitCode *int) {
	if s.pending == nil {
		return
	}
	p := s.pending
	s.pending = nil

	if exitCode != nil && *exitCode == 130 {
		return
	}
	if s.hooks.HistoryFlush == nil {
		return
	}
	entry := historywriter.Entry{
		ID:        uuid.NewString(),
		Command:   p.text,
		Shell:     s.ShellName,
		PID:       s.PID,
		SessionID: s.SessionID,
		Cwd:       s.Cwd,
		When:      p.startedAt,
		InSSH:     s.InSSH,
		InDocker:  s.InDocker,
		Hostname:  s.Hostname,
	}
	if exitCode != nil {
		entry.ExitCode = *exitCode
		entry.HasExitCode = true
	}
	s.hooks.HistoryFlush(entry)
}
