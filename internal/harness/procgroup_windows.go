//go:build windows

package harness

import "os/exec"

// configureProcessGroup is a no-op on Windows; there is no process-group
// kill mechanism equivalent to POSIX Setpgid here.
func configureProcessGroup(cmd *exec.Cmd) {}

// killProcessGroup kills just the direct child process. Grandchildren of a
// hung engine may survive on this platform.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
