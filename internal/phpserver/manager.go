package phpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/baaaaaaaka/eledminer/internal/config"
	"github.com/baaaaaaaka/eledminer/internal/env"
	"github.com/baaaaaaaka/eledminer/internal/logging"
)

const subsystem = "phpserver"

var (
	ErrStartFailure = errors.New("php server failed to start")
	ErrNotRunning   = errors.New("php server is not running")
)

type State string

const (
	StateStopped  State = "Stopped"
	StateStarting State = "Starting"
	StateRunning  State = "Running"
	StateFailed   State = "Failed"
)

type Options struct {
	PHP      string
	Host     string
	Port     int
	DocRoot  string
	BasePath string
	Theme    string

	// ExtraArgs are additional php arguments, typically "-d key=value" pairs.
	ExtraArgs []string

	ReadyTimeout time.Duration
	StopGrace    time.Duration

	Stdout io.Writer
	Stderr io.Writer
}

type stateFunc func(State, error)

// Manager owns the single PHP server of the shell.
type Manager struct {
	opts  Options
	store *config.Store

	mu       sync.Mutex
	state    State
	proc     *Process
	gen      int
	lastErr  error
	onChange []stateFunc
}

// NewManager fills option defaults. store may be nil, in which case no server
// record is kept and stale servers are not reaped.
func NewManager(opts Options, store *config.Store) *Manager {
	if opts.Host == "" {
		opts.Host = "127.0.0.1"
	}
	if opts.Port == 0 {
		opts.Port = config.DefaultPort
	}
	if opts.PHP == "" {
		opts.PHP = config.DefaultPHPExecutable
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = 10 * time.Second
	}
	if opts.StopGrace <= 0 {
		opts.StopGrace = 2 * time.Second
	}
	if opts.DocRoot != "" {
		if abs, err := filepath.Abs(opts.DocRoot); err == nil {
			opts.DocRoot = abs
		}
	}
	return &Manager{opts: opts, store: store, state: StateStopped}
}

// OnStateChange registers fn to be called after every transition. fn runs on
// the goroutine that caused the transition.
func (m *Manager) OnStateChange(fn func(State, error)) {
	m.mu.Lock()
	m.onChange = append(m.onChange, fn)
	m.mu.Unlock()
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) CanStart() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canStartLocked()
}

func (m *Manager) canStartLocked() bool {
	return m.state != StateStarting && m.state != StateRunning
}

// Require returns ErrNotRunning unless the server is Running.
func (m *Manager) Require() error {
	if m.State() != StateRunning {
		return ErrNotRunning
	}
	return nil
}

func (m *Manager) Host() string { return m.opts.Host }
func (m *Manager) Port() int    { return m.opts.Port }

func (m *Manager) BaseURL() string {
	base := "http://" + m.opts.Host + ":" + strconv.Itoa(m.opts.Port)
	path := strings.TrimRight(m.opts.BasePath, "/")
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

func (m *Manager) PID() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.proc == nil {
		return 0
	}
	return m.proc.PID()
}

// Start launches the server and blocks until it accepts connections. Calling
// Start while Starting or Running is a no-op.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if !m.canStartLocked() {
		m.mu.Unlock()
		return nil
	}
	m.gen++
	gen := m.gen
	m.state = StateStarting
	m.lastErr = nil
	callbacks := append([]stateFunc(nil), m.onChange...)
	m.mu.Unlock()
	for _, fn := range callbacks {
		fn(StateStarting, nil)
	}

	if m.store != nil {
		if pid, err := ReapStale(m.store); err != nil {
			logging.Warn(subsystem, "reap stale server: %v", err)
		} else if pid != 0 {
			logging.Info(subsystem, "terminated stale php server pid %d", pid)
		}
	}

	pcfg := ProcessConfig{
		PHP:       m.opts.PHP,
		Host:      m.opts.Host,
		Port:      m.opts.Port,
		DocRoot:   m.opts.DocRoot,
		ExtraArgs: m.opts.ExtraArgs,
		Env:       env.WithTheme(os.Environ(), m.opts.Theme),
		Stdout:    m.opts.Stdout,
		Stderr:    m.opts.Stderr,
	}

	if err := checkBindable(pcfg.Addr()); err != nil {
		return m.fail(gen, fmt.Errorf("bind %s: %w", pcfg.Addr(), err))
	}
	if m.opts.DocRoot != "" {
		if info, err := os.Stat(m.opts.DocRoot); err != nil || !info.IsDir() {
			return m.fail(gen, fmt.Errorf("document root %s is not a directory", m.opts.DocRoot))
		}
	}

	p, err := NewProcess(pcfg)
	if err != nil {
		return m.fail(gen, err)
	}
	if err := p.Start(); err != nil {
		return m.fail(gen, fmt.Errorf("spawn %s: %w", m.opts.PHP, err))
	}
	logging.Info(subsystem, "spawned %s pid %d on %s", m.opts.PHP, p.PID(), pcfg.Addr())

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		_ = p.Stop(m.opts.StopGrace)
		return fmt.Errorf("%w: stopped during startup", ErrStartFailure)
	}
	m.proc = p
	m.mu.Unlock()

	if err := waitForListen(ctx, pcfg.Addr(), m.opts.ReadyTimeout, p); err != nil {
		_ = p.Stop(m.opts.StopGrace)
		m.mu.Lock()
		if m.proc == p {
			m.proc = nil
		}
		m.mu.Unlock()
		return m.fail(gen, err)
	}

	if !m.transition(gen, StateRunning, nil) {
		return fmt.Errorf("%w: stopped during startup", ErrStartFailure)
	}

	if m.store != nil {
		rec := config.ServerRecord{PID: p.PID(), Port: m.opts.Port, StartedAt: time.Now()}
		if err := RecordServer(m.store, rec); err != nil {
			logging.Warn(subsystem, "record server: %v", err)
		}
	}

	go m.watch(gen, p)
	return nil
}

// Stop terminates the server from any state and leaves it Stopped.
func (m *Manager) Stop() error {
	m.mu.Lock()
	p := m.proc
	m.proc = nil
	m.gen++
	wasStopped := m.state == StateStopped
	m.state = StateStopped
	m.lastErr = nil
	callbacks := append([]stateFunc(nil), m.onChange...)
	m.mu.Unlock()

	if wasStopped && p == nil {
		return nil
	}

	if p != nil {
		pid := p.PID()
		if err := p.Stop(m.opts.StopGrace); err != nil {
			logging.Debug(subsystem, "php server pid %d exited: %v", pid, err)
		}
		if m.store != nil {
			if err := ClearServer(m.store, pid); err != nil {
				logging.Warn(subsystem, "clear server record: %v", err)
			}
		}
		logging.Info(subsystem, "stopped php server pid %d", pid)
	}

	for _, fn := range callbacks {
		fn(StateStopped, nil)
	}
	return nil
}

func (m *Manager) watch(gen int, p *Process) {
	err := p.Wait()
	m.mu.Lock()
	current := m.proc == p
	if current {
		m.proc = nil
	}
	m.mu.Unlock()
	if !current {
		return
	}
	if m.store != nil {
		_ = ClearServer(m.store, p.PID())
	}
	exitErr := fmt.Errorf("php server exited unexpectedly: %v", err)
	logging.Error(subsystem, exitErr, "php server pid %d is gone", p.PID())
	m.transition(gen, StateFailed, exitErr)
}

func (m *Manager) fail(gen int, err error) error {
	wrapped := fmt.Errorf("%w: %w", ErrStartFailure, err)
	logging.Error(subsystem, err, "php server start failed")
	m.transition(gen, StateFailed, wrapped)
	return wrapped
}

// transition applies state if gen is still current and reports whether it did.
func (m *Manager) transition(gen int, state State, err error) bool {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return false
	}
	m.state = state
	m.lastErr = err
	callbacks := append([]stateFunc(nil), m.onChange...)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(state, err)
	}
	return true
}
