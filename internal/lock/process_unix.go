//go:build !windows

package lock

import (
	"errors"
	"os"
	"syscall"
)

// processExists reports whether a process with the given PID is alive.
func processExists(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// FindProcess always succeeds on Unix; signal 0 is the actual
	// liveness probe.
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	// EPERM: the process exists but belongs to another user.
	if errors.Is(err, syscall.EPERM) {
		return true
	}
	return false
}
