package phpserver

import (
	"context"
	"fmt"
	"net"
	"time"
)

// checkBindable fails when addr is already taken by another listener.
func checkBindable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return ln.Close()
}

// waitForListen polls addr until it accepts connections, proc exits, ctx ends
// or timeout passes.
func waitForListen(ctx context.Context, addr string, timeout time.Duration, proc *Process) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		if proc != nil {
			select {
			case <-proc.Done():
				return fmt.Errorf("php server exited before ready: %v", proc.Wait())
			default:
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		c, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
		if err == nil {
			_ = c.Close()
			return nil
		}
		lastErr = err
		time.Sleep(100 * time.Millisecond)
	}
	if lastErr != nil {
		return fmt.Errorf("timeout waiting for %s: %w", addr, lastErr)
	}
	return fmt.Errorf("timeout waiting for %s", addr)
}
