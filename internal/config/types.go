package config

import "time"

const CurrentVersion = 1

const (
	DefaultPort          = 8000
	DefaultTheme         = "default"
	DefaultPHPExecutable = "php"
)

type Config struct {
	Version     int           `json:"version"`
	Settings    Settings      `json:"settings"`
	Connections []Connection  `json:"connections"`
	Server      *ServerRecord `json:"server,omitempty"`
}

type Settings struct {
	Port          int    `json:"port"`
	Theme         string `json:"theme"`
	PHPExecutable string `json:"phpExecutable,omitempty"`
}

// WithDefaults fills zero fields.
func (s Settings) WithDefaults() Settings {
	if s.Port == 0 {
		s.Port = DefaultPort
	}
	if s.Theme == "" {
		s.Theme = DefaultTheme
	}
	if s.PHPExecutable == "" {
		s.PHPExecutable = DefaultPHPExecutable
	}
	return s
}

type Connection struct {
	ID       string `json:"id"`
	Driver   Driver `json:"driver"`
	Name     string `json:"name"`
	Hostname string `json:"hostname,omitempty"`
	Port     int    `json:"port,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Filepath string `json:"filepath,omitempty"`
}

// ServerRecord is written while a PHP server owned by this shell is running.
type ServerRecord struct {
	PID       int       `json:"pid"`
	Port      int       `json:"port"`
	StartedAt time.Time `json:"startedAt"`
}
