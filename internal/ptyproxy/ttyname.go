package ptyproxy

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// TTYName resolves the child PTY's slave device path via TIOCGPTN. It feeds
// the IPC context's "ttys" field; the per-session log filename is chosen
// before the PTY exists and does not use it.
func (p *Proxy) TTYName() string {
	if p.Ptm == nil {
		return ""
	}
	n, err := unix.IoctlGetInt(int(p.Ptm.Fd()), unix.TIOCGPTN)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("/dev/pts/%d", n)
}
