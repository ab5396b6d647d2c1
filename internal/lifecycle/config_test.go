package lifecycle

import "testing"

func TestShellArgvPlain(t *testing.T) {
	cfg := Config{ShellPath: "/bin/bash"}
	got := cfg.shellArgv()
	want := []string{"/bin/bash"}
	if !stringsEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestShellArgvLoginShell(t *testing.T) {
	cfg := Config{ShellPath: "/bin/zsh", LoginShell: true}
	got := cfg.shellArgv()
	want := []string{"/bin/zsh", "--login"}
	if !stringsEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestShellArgvDedupesRedundantLoginFlag(t *testing.T) {
	cfg := Config{ShellPath: "/bin/zsh", LoginShell: true, ExtraArgs: []string{"--login", "-x"}}
	got := cfg.shellArgv()
	want := []string{"/bin/zsh", "--login", "-x"}
	if !stringsEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBundleIdentifierPrefersExplicitID(t *testing.T) {
	cfg := Config{TermBundleID: "com.example.term", TermProgram: "SomeTerm"}
	if got := cfg.bundleIdentifier(); got != "com.example.term" {
		t.Errorf("expected explicit bundle id to win, got %q", got)
	}
}

func TestBundleIdentifierFallsBackToProgramAndVersion(t *testing.T) {
	cfg := Config{TermProgram: "iTerm.app", TermProgramVer: "3.5"}
	if got := cfg.bundleIdentifier(); got != "iTerm.app/3.5" {
		t.Errorf("expected %q, got %q", "iTerm.app/3.5", got)
	}
}

func TestBundleIdentifierProgramOnly(t *testing.T) {
	cfg := Config{TermProgram: "iTerm.app"}
	if got := cfg.bundleIdentifier(); got != "iTerm.app" {
		t.Errorf("expected %q, got %q", "iTerm.app", got)
	}
}

func TestBundleIdentifierEmptyWhenNothingSet(t *testing.T) {
	cfg := Config{}
	if got := cfg.bundleIdentifier(); got != "" {
		t.Errorf("expected empty bundle id, got %q", got)
	}
}

func TestStripFigVarsRemovesFigPrefixedKeys(t *testing.T) {
	t.Setenv("FIG_TEST_VAR", "1")
	t.Setenv("NORMAL_VAR", "2")

	env := stripFigVars()
	for _, e := range env {
		if len(e) >= 4 && e[:4] == "FIG_" {
			t.Errorf("expected FIG_-prefixed vars to be stripped, found %q", e)
		}
	}

	found := false
	for _, e := range env {
		if e == "NORMAL_VAR=2" {
			found = true
		}
	}
	if !found {
		t.Error("expected non-FIG_ vars to survive stripFigVars")
	}
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("FIG_SHELL", "/bin/fish")
	t.Setenv("SHELL", "/bin/bash")
	t.Setenv("FIG_IS_LOGIN_SHELL", "1")
	t.Setenv("FIG_SHELL_EXTRA_ARGS", "-x -y")
	t.Setenv("FIG_START_TEXT", "ls")
	t.Setenv("TERM_SESSION_ID", "sess-42")
	t.Setenv("FIG_INTEGRATION_VERSION", "3")
	t.Setenv("TMUX", "")

	cfg := loadConfig()

	if cfg.ShellPath != "/bin/fish" {
		t.Errorf("expected FIG_SHELL to take precedence over SHELL, got %q", cfg.ShellPath)
	}
	if !cfg.LoginShell {
		t.Error("expected LoginShell to be true")
	}
	if len(cfg.ExtraArgs) != 2 || cfg.ExtraArgs[0] != "-x" || cfg.ExtraArgs[1] != "-y" {
		t.Errorf("expected parsed extra args [-x -y], got %v", cfg.ExtraArgs)
	}
	if cfg.SessionID != "sess-42" {
		t.Errorf("expected session id sess-42, got %q", cfg.SessionID)
	}
	if cfg.IntegrationVer != 3 {
		t.Errorf("expected integration version 3, got %d", cfg.IntegrationVer)
	}
	if cfg.Tmux {
		t.Error("expected Tmux false when TMUX is empty")
	}
}

func TestLoadConfigFallsBackToPlainShell(t *testing.T) {
	t.Setenv("FIG_SHELL", "")
	t.Setenv("SHELL", "/bin/bash")

	cfg := loadConfig()
	if cfg.ShellPath != "/bin/bash" {
		t.Errorf("expected fallback to SHELL, got %q", cfg.ShellPath)
	}
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
