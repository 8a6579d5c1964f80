package connections

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/baaaaaaaka/eledminer/internal/config"
	"github.com/baaaaaaaka/eledminer/internal/ids"
)

var (
	ErrNotFound = errors.New("connection not found")
	ErrInvalid  = errors.New("invalid connection")
)

// Store is the connection catalogue and user settings, persisted through a
// config.Store. Every method is a single locked read-modify-write.
type Store struct {
	cfg   *config.Store
	newID func() (string, error)
}

func New(cfg *config.Store) *Store {
	return &Store{cfg: cfg, newID: ids.New}
}

func (s *Store) List() ([]config.Connection, error) {
	cfg, err := s.cfg.Load()
	if err != nil {
		return nil, err
	}
	return cfg.Connections, nil
}

func (s *Store) Get(id string) (config.Connection, error) {
	cfg, err := s.cfg.Load()
	if err != nil {
		return config.Connection{}, err
	}
	for _, conn := range cfg.Connections {
		if conn.ID == id {
			return conn, nil
		}
	}
	return config.Connection{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// Find resolves ref by id, then case-insensitively by name.
func (s *Store) Find(ref string) (config.Connection, error) {
	cfg, err := s.cfg.Load()
	if err != nil {
		return config.Connection{}, err
	}
	conn, ok := cfg.FindConnection(ref)
	if !ok {
		return config.Connection{}, fmt.Errorf("%w: %q", ErrNotFound, ref)
	}
	return conn, nil
}

// Save assigns a fresh id to conn, ignoring any id it carries, and puts it at
// the head of the catalogue.
func (s *Store) Save(conn config.Connection) (config.Connection, error) {
	conn = conn.Normalized()
	if err := validate(conn); err != nil {
		return config.Connection{}, err
	}
	id, err := s.newID()
	if err != nil {
		return config.Connection{}, err
	}
	conn.ID = id

	err = s.cfg.Update(func(cfg *config.Config) error {
		if slices.ContainsFunc(cfg.Connections, func(c config.Connection) bool { return c.ID == id }) {
			return fmt.Errorf("duplicate connection id %q", id)
		}
		cfg.PrependConnection(conn)
		return nil
	})
	if err != nil {
		return config.Connection{}, err
	}
	return conn, nil
}

// Update replaces the entry with conn.ID in place.
func (s *Store) Update(conn config.Connection) (config.Connection, error) {
	conn = conn.Normalized()
	if strings.TrimSpace(conn.ID) == "" {
		return config.Connection{}, fmt.Errorf("%w: missing id", ErrNotFound)
	}
	if err := validate(conn); err != nil {
		return config.Connection{}, err
	}
	err := s.cfg.Update(func(cfg *config.Config) error {
		if !cfg.ReplaceConnection(conn) {
			return fmt.Errorf("%w: %q", ErrNotFound, conn.ID)
		}
		return nil
	})
	if err != nil {
		return config.Connection{}, err
	}
	return conn, nil
}

// Remove deletes the entry with id. Unknown ids are not an error.
func (s *Store) Remove(id string) error {
	return s.cfg.Update(func(cfg *config.Config) error {
		cfg.RemoveConnection(id)
		return nil
	})
}

func (s *Store) LoadSettings() (config.Settings, error) {
	cfg, err := s.cfg.Load()
	if err != nil {
		return config.Settings{}, err
	}
	return cfg.Settings.WithDefaults(), nil
}

func (s *Store) SaveSettings(settings config.Settings) (config.Settings, error) {
	settings.Theme = strings.TrimSpace(settings.Theme)
	settings.PHPExecutable = strings.TrimSpace(settings.PHPExecutable)
	settings = settings.WithDefaults()
	if settings.Port < 1 || settings.Port > 65535 {
		return config.Settings{}, fmt.Errorf("invalid port %d", settings.Port)
	}
	err := s.cfg.Update(func(cfg *config.Config) error {
		cfg.Settings = settings
		return nil
	})
	if err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}

func validate(conn config.Connection) error {
	if conn.Driver == "" {
		return fmt.Errorf("%w: missing driver", ErrInvalid)
	}
	if conn.Port < 0 || conn.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalid, conn.Port)
	}
	return nil
}
