package pinger

import (
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	pkgerrors "multiping/pkg/errors"
)

// CommandFunc builds the external program for a single attempt against host.
type CommandFunc func(host string) *exec.Cmd

// PingCommand returns a CommandFunc that runs binary for exactly one echo
// request, giving up after timeout.
func PingCommand(binary string, timeout time.Duration) CommandFunc {
	secs := int(timeout / time.Second)
	if secs < 1 {
		secs = 1
	}
	return func(host string) *exec.Cmd {
		return exec.Command(binary, pingArgs(runtime.GOOS, secs, host)...)
	}
}

func pingArgs(goos string, secs int, host string) []string {
	wait := strconv.Itoa(secs)
	switch goos {
	case "darwin", "freebsd", "dragonfly":
		// -W is in milliseconds here; -t bounds the whole run in seconds.
		return []string{"-c", "1", "-n", "-q", "-t", wait, host}
	case "windows":
		return []string{"-n", "1", "-w", strconv.Itoa(secs * 1000), host}
	default:
		return []string{"-c", "1", "-n", "-q", "-W", wait, host}
	}
}

// pingLocations are tried when "ping" is not on PATH, as under a minimal
// sudo environment.
var pingLocations = []string{
	"/bin/ping",
	"/sbin/ping",
	"/usr/bin/ping",
	"/usr/sbin/ping",
}

// FindPingBinary resolves name, falling back to the usual system locations.
func FindPingBinary(name string) (string, error) {
	locations := []string{name}
	if name == "ping" {
		locations = append(locations, pingLocations...)
	}

	for _, loc := range locations {
		path, err := exec.LookPath(loc)
		if err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: %s", pkgerrors.ErrProbeCommandNotFound, name)
}
