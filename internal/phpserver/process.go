package phpserver

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"
)

// FixedDirectives are always passed to the built-in server.
var FixedDirectives = []string{"display_errors=1", "expose_php=1"}

type ProcessConfig struct {
	PHP     string
	Host    string
	Port    int
	DocRoot string

	// ExtraArgs are appended after the fixed directives.
	ExtraArgs []string
	Env       []string

	Stdout io.Writer
	Stderr io.Writer
}

func (c ProcessConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func BuildArgs(c ProcessConfig) ([]string, error) {
	if c.Host == "" {
		return nil, errors.New("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return nil, fmt.Errorf("invalid server port %d", c.Port)
	}
	if c.DocRoot == "" {
		return nil, errors.New("document root is required")
	}

	args := []string{"-S", c.Addr(), "-t", c.DocRoot}
	for _, d := range FixedDirectives {
		args = append(args, "-d", d)
	}
	args = append(args, c.ExtraArgs...)
	return args, nil
}

// Process is one php -S child.
type Process struct {
	cfg ProcessConfig

	mu      sync.Mutex
	cmd     *exec.Cmd
	waitErr error
	done    chan struct{}
}

func NewProcess(cfg ProcessConfig) (*Process, error) {
	args, err := BuildArgs(cfg)
	if err != nil {
		return nil, err
	}
	php := cfg.PHP
	if php == "" {
		php = "php"
	}

	p := &Process{
		cfg:  cfg,
		cmd:  exec.Command(php, args...),
		done: make(chan struct{}),
	}
	p.cmd.Env = cfg.Env
	p.cmd.Stdout = cfg.Stdout
	p.cmd.Stderr = cfg.Stderr
	return p, nil
}

func (p *Process) PID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *Process) Start() error {
	p.mu.Lock()
	cmd := p.cmd
	p.mu.Unlock()

	if cmd == nil {
		return errors.New("process not initialized")
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		p.waitErr = err
		p.mu.Unlock()
		close(p.done)
	}()

	return nil
}

func (p *Process) Done() <-chan struct{} { return p.done }

func (p *Process) Wait() error {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waitErr
}

// Stop interrupts the process and kills it if it is still running after grace.
func (p *Process) Stop(grace time.Duration) error {
	p.mu.Lock()
	cmd := p.cmd
	p.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil
	}

	select {
	case <-p.done:
		return p.Wait()
	default:
	}

	_ = cmd.Process.Signal(os.Interrupt)

	select {
	case <-p.done:
		return p.Wait()
	case <-time.After(grace):
		_ = cmd.Process.Kill()
		<-p.done
		return p.Wait()
	}
}
