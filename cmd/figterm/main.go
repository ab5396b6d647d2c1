// Command figterm is a transparent PTY proxy: it interposes itself between
// the real terminal and the user's login shell, maintains a shadow screen
// model, and publishes edit-buffer and lifecycle hooks over local sockets.
// See internal/lifecycle for the startup/precondition/fallback sequence and
// internal/ptyproxy for the event loop itself.
package main

import (
	"os"

	"figterm/internal/lifecycle"
)

func main() {
	os.Exit(lifecycle.Run(os.Args))
}
