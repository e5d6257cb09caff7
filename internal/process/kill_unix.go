//go:build !windows

// Package process controls the process groups of spawned converter binaries.
package process

import (
	"os/exec"
	"syscall"
)

// Isolate starts cmd in its own process group so that helpers forked by the
// converter (LibreOffice spawns soffice.bin) can be killed together.
func Isolate(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// KillProcessGroup sends SIGKILL to the process group led by pid.
func KillProcessGroup(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	return syscall.Kill(-pid, syscall.SIGKILL)
}
