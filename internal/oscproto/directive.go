package oscproto

import "strings"

// Directive is a parsed OSC 697 payload: either a bare verb (NewCmd,
// StartPrompt, ...) or a KEY=VALUE pair (Dir=PATH, ExitCode=N, ...).
type Directive struct {
	Name  string
	Value string
	HasValue bool
}

// Parse splits a directive payload on the first '='. An empty payload
// parses to a zero Directive with an empty Name, which Route treats as a
// no-op.
func Parse(payload string) Directive {
	if idx := strings.IndexByte(payload, '='); idx >= 0 {
		return Directive{Name: payload[:idx], Value: payload[idx+1:], HasValue: true}
	}
	return Directive{Name: payload}
}

// Dispatcher receives a decoded directive's effect. Implementations update
// shell state, emit hooks, or flush history; see internal/shellstate for
// the concrete adapter figterm wires in.
type Dispatcher interface {
	NewCmd()
	StartPrompt()
	EndPrompt()
	PreExec()
	Dir(path string)
	ExitCode(n int)
	SetShell(name string)
	FishSuggestionColor(spec string)
	SetTTY(dev string)
	SetPID(n int)
	SetSessionID(id string)
	SetHostname(h string)
	SetDocker(on bool)
	SetSSH(on bool)
	Log(level string)
	Unknown(payload string)
}

// Route parses a directive and calls the matching Dispatcher method (spec
// §4.2's table). Malformed integers are treated as 0 rather than rejected,
// matching the taxonomy's "Soft" recovery (log, drop, continue) for
// malformed payloads rather than aborting the session.
func Route(payload string, d Dispatcher) {
	if payload == "" {
		return
	}
	dir := Parse(payload)
	switch dir.Name {
	case "NewCmd":
		d.NewCmd()
	case "StartPrompt":
		d.StartPrompt()
	case "EndPrompt":
		d.EndPrompt()
	case "PreExec":
		d.PreExec()
	case "Dir":
		d.Dir(dir.Value)
	case "ExitCode":
		d.ExitCode(atoiSafe(dir.Value))
	case "Shell":
		d.SetShell(dir.Value)
	case "FishSuggestionColor":
		d.FishSuggestionColor(dir.Value)
	case "TTY":
		d.SetTTY(dir.Value)
	case "PID":
		d.SetPID(atoiSafe(dir.Value))
	case "SessionId":
		d.SetSessionID(dir.Value)
	case "Hostname":
		d.SetHostname(dir.Value)
	case "Docker":
		d.SetDocker(dir.Value == "1")
	case "SSH":
		d.SetSSH(dir.Value == "1")
	case "Log":
		d.Log(dir.Value)
	default:
		d.Unknown(payload)
	}
}

func atoiSafe(s string) int {
	n := 0
	neg := false
	for i, r := range s {
		if i == 0 && r == '-' {
			neg = true
			continue
		}
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	if neg {
		return -n
	}
	return n
}
