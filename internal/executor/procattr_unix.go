//go:build !windows

package executor

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup starts the shell in a new process group so that
// cancelling the step kills everything the shell started. Interactive steps
// stay in the terminal's foreground group so prompts (sudo, passphrases) can
// read the terminal; cancelling those kills the shell only and the children
// get the terminal's SIGINT directly.
func configureProcessGroup(cmd *exec.Cmd, interactive bool) {
	if interactive {
		return
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
