//go:build !windows

package backend

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// audioNice is the niceness requested for the audio engine. Unprivileged users may be refused.
const audioNice = -5

func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}

func raisePriority(pid int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, pid, audioNice)
}

func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	// Kill the entire process group
	_ = unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	return cmd.Process.Kill()
}
