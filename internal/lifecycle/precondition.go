package lifecycle

import (
	"fmt"
	"os"

	"github.com/creack/pty"
	isatty "github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// checkPreconditions gates interception: stdin must be a tty,
// TERM_SESSION_ID and the integration version must both be set, the PTY
// must be openable, and termios/winsize must be readable. It returns a
// non-empty reason on the first failing check, or "" when every check
// passes.
func checkPreconditions(cfg Config) string {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return "stdin is not a tty"
	}
	if cfg.SessionID == "" {
		return "TERM_SESSION_ID is not set"
	}
	if os.Getenv("FIG_INTEGRATION_VERSION") == "" {
		return "FIG_INTEGRATION_VERSION is not set"
	}
	if _, _, err := term.GetSize(int(os.Stdin.Fd())); err != nil {
		return fmt.Sprintf("winsize not readable: %v", err)
	}

	probeM, probeS, probeErr := pty.Open()
	if probeErr != nil {
		return fmt.Sprintf("pty not openable: %v", probeErr)
	}
	probeM.Close()
	probeS.Close()

	if cfg.ShellPath == "" {
		return "no shell configured (FIG_SHELL / SHELL both unset)"
	}

	return ""
}
