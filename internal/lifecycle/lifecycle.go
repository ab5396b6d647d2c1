package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"

	"figterm/internal/historywriter"
	"figterm/internal/ptyproxy"
	"figterm/internal/sessionlog"
	"figterm/internal/version"
)

// Run is the binary's entire lifecycle: handle -v/--version, parse the
// environment, gate on preconditions, and either drive the PTY proxy to
// completion or fall back to a direct shell exec. A successful fallback
// never returns; this function's return value is only meaningful for the
// paths that do return to main.
func Run(argv []string) int {
	for _, a := range argv[1:] {
		if a == "-v" || a == "--version" {
			fmt.Println(version.Integration)
			return 0
		}
	}

	cfg := loadConfig()

	if reason := checkPreconditions(cfg); reason != "" {
		fallbackExec(cfg, false, reason)
		return 1
	}

	if cfg.HomeDir != "" {
		logPath := filepath.Join(cfg.HomeDir, ".fig", "logs",
			"figterm_"+sessionlog.SanitizeTTYPath(probeTTYPlaceholder(cfg))+".log")
		if l, err := sessionlog.Open(logPath, cfg.LogLevel); err == nil {
			cfg.Log = l
		}
		if hw, err := historywriter.New(historywriter.DefaultPath(cfg.HomeDir)); err == nil {
			cfg.History = hw
		}
	}

	proxy := ptyproxy.New(ptyproxy.Config{
		ShellPath:           cfg.shellArgv()[0],
		ShellArgs:           cfg.shellArgv()[1:],
		Env:                 childEnv(cfg),
		SessionID:           cfg.SessionID,
		Hostname:            cfg.Hostname,
		IntegrationVersion:  cfg.IntegrationVer,
		StartText:           cfg.StartText,
		InsertionSocketPath: fmt.Sprintf("/tmp/figterm-%s.socket", cfg.SessionID),
		HookSocketPath:      filepath.Join(cfg.TmpDir, "fig.socket"),
		LegacySocketPath:    "/tmp/fig.socket",
		InsertionLockPath:   filepath.Join(cfg.HomeDir, ".fig", "insertion-lock"),
		InitBundle:          cfg.bundleIdentifier(),
		History:             cfg.History,
		Log:                 cfg.Log,
	})

	proxy.FallbackExec = func(crashed bool) {
		fallbackExec(cfg, crashed, "runtime-fatal")
	}

	if err := proxy.Start(); err != nil {
		fallbackExec(cfg, false, err.Error())
		return 1
	}

	proxy.Run()
	proxy.Wait()
	proxy.Close()
	return 0
}

// childEnv builds the environment the shell child runs under when
// interception is active: FIG_TERM=1, FIG_TERM_VERSION, the conditional
// FIG_TERM_TMUX, and all FIG_* configuration vars unset.
func childEnv(cfg Config) []string {
	env := stripFigVars()
	env = append(env, "FIG_TERM=1", fmt.Sprintf("FIG_TERM_VERSION=%d", version.Integration))
	if cfg.Tmux {
		env = append(env, "FIG_TERM_TMUX=1")
	}
	return env
}

// probeTTYPlaceholder names the session log before the PTY (and therefore
// the real tty path) exists yet; the session id is the next-best stable,
// filesystem-safe handle, matching the one other identifier guaranteed
// present at this point in startup.
func probeTTYPlaceholder(cfg Config) string {
	if cfg.SessionID != "" {
		return cfg.SessionID
	}
	return fmt.Sprintf("pid-%d", os.Getpid())
}
