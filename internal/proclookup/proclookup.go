// Package proclookup resolves a process's current working directory via
// /proc on Linux, letting the cursor-move hook re-synchronise the proxy's
// cwd from the child shell's actual cwd. A macOS equivalent is out of
// scope.
package proclookup

import (
	"fmt"
	"os"
)

// Cwd resolves the working directory of the process with the given pid.
func Cwd(pid int) (string, error) {
	path, err := os.Readlink(fmt.Sprintf("/proc/%d/cwd", pid))
	if err != nil {
		return "", fmt.Errorf("proclookup: readlink: %w", err)
	}
	return path, nil
}
