package pinger

import (
	"errors"
	"os"
	"syscall"
)

func exitStatus(ps *os.ProcessState) ExitStatus {
	return ExitStatus{Code: ps.ExitCode()}
}

func probeSysProcAttr() *syscall.SysProcAttr { return nil }

// Windows has no graceful termination signal for console children, so both
// levels kill.
func sigFor(_ bool) os.Signal {
	return os.Kill
}

func processGone(err error) bool {
	return errors.Is(err, os.ErrProcessDone)
}
