package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

const shellFileName = "shell.yaml"

// Shell is static configuration of the shell itself. Unlike Config it is never
// written by the application.
type Shell struct {
	Server     ServerConfig     `yaml:"server"`
	Layout     LayoutConfig     `yaml:"layout"`
	Window     WindowConfig     `yaml:"window"`
	Bridge     BridgeConfig     `yaml:"bridge"`
	FileDialog FileDialogConfig `yaml:"fileDialog"`
}

type ServerConfig struct {
	Host         string            `yaml:"host"`
	DocRoot      string            `yaml:"docRoot"`
	BasePath     string            `yaml:"basePath"`
	Directives   map[string]string `yaml:"directives"`
	ReadyTimeout time.Duration     `yaml:"readyTimeout"`
	StopGrace    time.Duration     `yaml:"stopGrace"`
}

type LayoutConfig struct {
	MenuWidth int `yaml:"menuWidth"`
}

type WindowConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	MinWidth  int `yaml:"minWidth"`
	MinHeight int `yaml:"minHeight"`
}

type BridgeConfig struct {
	Addr string `yaml:"addr"`
}

// FileDialogConfig names an external picker; its stdout is taken as the path.
type FileDialogConfig struct {
	Command []string `yaml:"command"`
}

var (
	osExecutable         = os.Executable
	getUserShellPath     = defaultUserShellPath
	errShellDirectiveKey = errors.New("empty directive name")
)

func DefaultShell() Shell {
	return Shell{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			DocRoot:      defaultDocRoot(),
			ReadyTimeout: 10 * time.Second,
			StopGrace:    2 * time.Second,
		},
		Layout: LayoutConfig{MenuWidth: 50},
		Window: WindowConfig{Width: 1200, Height: 800, MinWidth: 600, MinHeight: 400},
		Bridge: BridgeConfig{Addr: "127.0.0.1:8765"},
	}
}

// LoadShell layers defaults, the per-user shell.yaml and, when non-empty,
// explicitPath. A missing user file is fine; a missing explicit file is not.
func LoadShell(explicitPath string) (Shell, error) {
	shell := DefaultShell()

	if userPath, err := getUserShellPath(); err == nil {
		if _, statErr := os.Stat(userPath); statErr == nil {
			if err := overlayShellFile(&shell, userPath); err != nil {
				return Shell{}, fmt.Errorf("load user shell config %s: %w", userPath, err)
			}
		}
	}

	if explicitPath != "" {
		if err := overlayShellFile(&shell, explicitPath); err != nil {
			return Shell{}, fmt.Errorf("load shell config %s: %w", explicitPath, err)
		}
	}

	if err := shell.Validate(); err != nil {
		return Shell{}, err
	}
	return shell, nil
}

func (s Shell) Validate() error {
	if s.Server.Host == "" {
		return fmt.Errorf("server.host must not be empty")
	}
	if s.Layout.MenuWidth < 0 {
		return fmt.Errorf("layout.menuWidth must not be negative")
	}
	if s.Server.ReadyTimeout <= 0 {
		return fmt.Errorf("server.readyTimeout must be positive")
	}
	for k := range s.Server.Directives {
		if k == "" {
			return errShellDirectiveKey
		}
	}
	return nil
}

// DirectiveArgs renders extra -d flags in a stable order.
func (s ServerConfig) DirectiveArgs() []string {
	keys := make([]string, 0, len(s.Directives))
	for k := range s.Directives {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		out = append(out, "-d", k+"="+s.Directives[k])
	}
	return out
}

// overlayShellFile decodes path on top of shell; keys absent from the file keep
// their current values.
func overlayShellFile(shell *Shell, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, shell); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

func defaultUserShellPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, shellFileName), nil
}

func defaultDocRoot() string {
	exe, err := osExecutable()
	if err != nil {
		return "adminer"
	}
	return filepath.Join(filepath.Dir(exe), "adminer")
}
