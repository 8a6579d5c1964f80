package cli

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"sync/atomic"
	"syscall"
)

var (
	executablePath = os.Executable
	execSelf       = syscall.Exec
	exitFunc       = os.Exit
	startSelf      = startRestartProcess
)

// restartSelf replaces the running shell with a fresh copy using the same
// arguments. On windows a new process is started and this one exits.
func restartSelf() error {
	exe, err := executablePath()
	if err != nil {
		return err
	}
	args := append([]string{exe}, os.Args[1:]...)
	if runtime.GOOS == "windows" {
		if err := startSelf(exe, args[1:]); err != nil {
			return err
		}
		exitFunc(0)
		return nil
	}
	return execSelf(exe, args, os.Environ())
}

func startRestartProcess(exe string, args []string) error {
	c := exec.Command(exe, args...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Start()
}

// relauncher defers a restart until the caller has torn down the UI and the
// PHP server. Request only cancels the running shell.
type relauncher struct {
	requested atomic.Bool
	cancel    context.CancelFunc
}

func (r *relauncher) Request() error {
	r.requested.Store(true)
	if r.cancel != nil {
		r.cancel()
	}
	return nil
}

func (r *relauncher) Requested() bool { return r.requested.Load() }
