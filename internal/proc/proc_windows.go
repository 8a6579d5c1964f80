//go:build windows

package proc

import (
	"errors"

	"golang.org/x/sys/windows"
)

func IsAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(h)

	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return false
	}

	// STILL_ACTIVE
	const stillActive = 259
	return code == stillActive
}

// Terminate ends pid immediately; Windows has no polite equivalent of SIGTERM
// for console-less children.
func Terminate(pid int) error {
	if pid <= 0 {
		return errors.New("invalid pid")
	}
	h, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h)
	return windows.TerminateProcess(h, 1)
}
