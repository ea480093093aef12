//go:build windows

package executor

import "os/exec"

// configureProcessGroup keeps the default cancellation, which kills the shell only.
func configureProcessGroup(cmd *exec.Cmd, interactive bool) {}
