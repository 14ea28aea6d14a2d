//go:build !windows

package pinger

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// StatusFromWait decodes a raw wait(2) status word.
func StatusFromWait(ws unix.WaitStatus) ExitStatus {
	if ws.Signaled() {
		return ExitStatus{Signaled: true, Signal: int(ws.Signal())}
	}
	return ExitStatus{Code: ws.ExitStatus()}
}

func exitStatus(ps *os.ProcessState) ExitStatus {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok {
		return StatusFromWait(unix.WaitStatus(ws))
	}
	return ExitStatus{Code: ps.ExitCode()}
}

// probeSysProcAttr puts each ping in its own process group so terminal
// job-control signals aimed at multiping do not reach it directly.
func probeSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// sigFor picks SIGTERM for the soft timeout and SIGKILL for the hard one.
func sigFor(hard bool) os.Signal {
	if hard {
		return unix.SIGKILL
	}
	return unix.SIGTERM
}

// processGone reports whether a signalling error only means the process
// already exited and was reaped.
func processGone(err error) bool {
	return errors.Is(err, os.ErrProcessDone) || errors.Is(err, unix.ESRCH)
}
