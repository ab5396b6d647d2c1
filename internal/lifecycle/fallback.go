package lifecycle

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"figterm/internal/version"
)

// fallbackExec replaces the current process image with the user's shell.
// Both the startup-fatal and runtime-fatal recovery paths call this; the
// only difference between them is whether FIG_TERM_CRASHED=1 is added. It
// does not return on success.
func fallbackExec(cfg Config, crashed bool, reason string) {
	if cfg.Log != nil {
		cfg.Log.Warn("falling back to direct shell exec: %s", reason)
	}

	argv := cfg.shellArgv()
	if argv[0] == "" {
		fmt.Fprintln(os.Stderr, "figterm: no shell to fall back to (FIG_SHELL / SHELL unset)")
		os.Exit(1)
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		path = argv[0]
	}

	env := stripFigVars()
	env = append(env, "FIG_TERM=1", fmt.Sprintf("FIG_TERM_VERSION=%d", version.Integration))
	if cfg.Tmux {
		env = append(env, "FIG_TERM_TMUX=1")
	}
	if crashed {
		env = append(env, "FIG_TERM_CRASHED=1")
	}

	if err := syscall.Exec(path, argv, env); err != nil {
		fmt.Fprintln(os.Stderr, "figterm: fallback exec failed:", err)
		os.Exit(1)
	}
}
