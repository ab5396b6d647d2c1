// Package lifecycle handles argument and environment parsing, the startup
// preconditions that gate interception, and the guarantee that a shell
// always starts — either intercepted through the PTY proxy, or via a
// direct exec when interception cannot safely proceed. Uses
// github.com/mattn/go-isatty for the tty check and github.com/google/shlex
// for FIG_SHELL_EXTRA_ARGS tokenization.
package lifecycle

import (
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"figterm/internal/historywriter"
	"figterm/internal/sessionlog"
)

// Config is the environment figterm was invoked with, parsed once at
// startup.
type Config struct {
	ShellPath      string
	LoginShell     bool
	ExtraArgs      []string
	StartText      string
	LogLevel       sessionlog.Level
	SessionID      string
	IntegrationVer int
	Tmux           bool
	TmpDir         string
	TermProgram    string
	TermProgramVer string
	TermBundleID   string
	Hostname       string
	HomeDir        string

	History *historywriter.Writer
	Log     *sessionlog.Logger
}

// loadConfig reads the process environment into a Config. It never fails on
// missing optional variables; required-variable absence is surfaced later by
// checkPreconditions so the caller can fall back rather than abort.
func loadConfig() Config {
	var cfg Config

	cfg.ShellPath = os.Getenv("FIG_SHELL")
	if cfg.ShellPath == "" {
		cfg.ShellPath = os.Getenv("SHELL")
	}
	cfg.LoginShell = os.Getenv("FIG_IS_LOGIN_SHELL") == "1"
	if extra := os.Getenv("FIG_SHELL_EXTRA_ARGS"); extra != "" {
		if args, err := shlex.Split(extra); err == nil {
			cfg.ExtraArgs = args
		}
	}
	cfg.StartText = os.Getenv("FIG_START_TEXT")
	cfg.LogLevel = sessionlog.ParseLevel(os.Getenv("FIG_LOG_LEVEL"))
	cfg.SessionID = os.Getenv("TERM_SESSION_ID")
	cfg.IntegrationVer, _ = strconv.Atoi(os.Getenv("FIG_INTEGRATION_VERSION"))
	cfg.Tmux = os.Getenv("TMUX") != ""
	cfg.TmpDir = os.Getenv("TMPDIR")
	if cfg.TmpDir == "" {
		cfg.TmpDir = "/tmp"
	}
	cfg.TermProgram = os.Getenv("TERM_PROGRAM")
	cfg.TermProgramVer = os.Getenv("TERM_PROGRAM_VERSION")
	cfg.TermBundleID = os.Getenv("TERM_BUNDLE_IDENTIFIER")
	cfg.Hostname, _ = os.Hostname()
	cfg.HomeDir, _ = os.UserHomeDir()

	return cfg
}

// shellArgv builds the argv figterm execs the shell with: the shell path,
// "--login" when FIG_IS_LOGIN_SHELL=1, then FIG_SHELL_EXTRA_ARGS, skipping
// every literal "--login" among the extra args (login mode comes only from
// FIG_IS_LOGIN_SHELL).
func (c Config) shellArgv() []string {
	argv := []string{c.ShellPath}
	if c.LoginShell {
		argv = append(argv, "--login")
	}
	for _, a := range c.ExtraArgs {
		if a == "--login" {
			continue
		}
		argv = append(argv, a)
	}
	return argv
}

// bundleIdentifier derives the init hook's "bundle" field from the host
// terminal's environment.
func (c Config) bundleIdentifier() string {
	if c.TermBundleID != "" {
		return c.TermBundleID
	}
	if c.TermProgram != "" {
		if c.TermProgramVer != "" {
			return c.TermProgram + "/" + c.TermProgramVer
		}
		return c.TermProgram
	}
	return ""
}

// stripFigVars removes every FIG_* key from a copy of the current
// environment.
func stripFigVars() []string {
	env := os.Environ()
	out := make([]string, 0, len(env))
	for _, e := range env {
		key := e
		if idx := strings.IndexByte(e, '='); idx >= 0 {
			key = e[:idx]
		}
		if strings.HasPrefix(key, "FIG_") {
			continue
		}
		out = append(out, e)
	}
	return out
}
