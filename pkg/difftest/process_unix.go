//go:build !windows

package difftest

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// isolate runs cmd in its own process group and makes cancellation kill the
// whole group, so wrappers that fork do not leave children behind.
func isolate(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
}
