package phpserver

import (
	"net"
	"strconv"
	"time"

	"github.com/baaaaaaaka/eledminer/internal/config"
	"github.com/baaaaaaaka/eledminer/internal/proc"
)

func RecordServer(store *config.Store, rec config.ServerRecord) error {
	return store.Update(func(cfg *config.Config) error {
		cfg.Server = &rec
		return nil
	})
}

// ClearServer drops the record if it still belongs to pid.
func ClearServer(store *config.Store, pid int) error {
	return store.Update(func(cfg *config.Config) error {
		if cfg.Server != nil && cfg.Server.PID == pid {
			cfg.Server = nil
		}
		return nil
	})
}

var (
	isAlive   = proc.IsAlive
	terminate = proc.Terminate
)

// ReapStale terminates a server left behind by a previous run. The recorded
// pid is only signalled while it is alive and its port still accepts
// connections, so a recycled pid is left alone. It returns the terminated pid
// or 0.
func ReapStale(store *config.Store) (int, error) {
	var stale *config.ServerRecord
	err := store.Update(func(cfg *config.Config) error {
		stale = cfg.Server
		cfg.Server = nil
		return nil
	})
	if err != nil || stale == nil {
		return 0, err
	}
	if !isAlive(stale.PID) || !portOpen(stale.Port) {
		return 0, nil
	}
	if err := terminate(stale.PID); err != nil {
		return 0, err
	}
	deadline := time.Now().Add(2 * time.Second)
	for isAlive(stale.PID) && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	return stale.PID, nil
}

func portOpen(port int) bool {
	if port <= 0 {
		return false
	}
	c, err := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), 200*time.Millisecond)
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}
