package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestStore_LoadMissingReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	cfg, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Version != CurrentVersion {
		t.Fatalf("Version=%d want %d", cfg.Version, CurrentVersion)
	}
	if cfg.Connections == nil || len(cfg.Connections) != 0 {
		t.Fatalf("expected empty, non-nil connections, got %#v", cfg.Connections)
	}
}

func TestStore_SaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	started := time.Now().UTC().Truncate(time.Second)
	in := Config{
		Version:  CurrentVersion,
		Settings: Settings{Port: 8100, Theme: "pepa linha"},
		Connections: []Connection{
			{ID: "c1", Driver: DriverMySQL, Name: "local", Hostname: "127.0.0.1", Port: 3306, Username: "root"},
		},
		Server: &ServerRecord{PID: 42, Port: 8100, StartedAt: started},
	}

	if err := store.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Settings != in.Settings {
		t.Fatalf("Settings=%#v want %#v", out.Settings, in.Settings)
	}
	if len(out.Connections) != 1 || out.Connections[0] != in.Connections[0] {
		t.Fatalf("Connections=%#v", out.Connections)
	}
	if out.Server == nil || out.Server.PID != 42 || !out.Server.StartedAt.Equal(started) {
		t.Fatalf("Server=%#v", out.Server)
	}

	raw, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	for _, key := range []string{`"connections"`, `"hostname"`, `"driver": "server"`} {
		if !strings.Contains(string(raw), key) {
			t.Fatalf("expected %s in persisted file:\n%s", key, raw)
		}
	}
}

func TestStore_UpdateIsSerialized(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	const n = 25
	var wg sync.WaitGroup
	errCh := make(chan error, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			errCh <- store.Update(func(cfg *Config) error {
				cfg.PrependConnection(Connection{
					ID:       fmt.Sprintf("c%02d", i),
					Driver:   DriverSQLite,
					Name:     "n",
					Filepath: "/tmp/db.sqlite",
				})
				return nil
			})
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	cfg, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Connections) != n {
		t.Fatalf("Connections len=%d want %d", len(cfg.Connections), n)
	}
}

func TestStore_SeparateStoresShareFileLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	a, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	b, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	const n = 10
	var wg sync.WaitGroup
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		for _, s := range []*Store{a, b} {
			s := s
			go func() {
				defer wg.Done()
				_ = s.Update(func(cfg *Config) error {
					cfg.Settings.Port++
					return nil
				})
			}()
		}
	}
	wg.Wait()

	cfg, err := a.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Settings.Port != 2*n {
		t.Fatalf("lost updates: port=%d want %d", cfg.Settings.Port, 2*n)
	}
}

func TestStore_ErrorPaths(t *testing.T) {
	t.Run("Load rejects invalid JSON", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.json")
		if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
		store, err := NewStore(path)
		if err != nil {
			t.Fatalf("NewStore: %v", err)
		}
		if _, err := store.Load(); err == nil {
			t.Fatalf("expected parse error")
		}
	})

	t.Run("Load rejects unsupported version", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.json")
		if err := os.WriteFile(path, []byte(`{"version":999}`), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
		store, err := NewStore(path)
		if err != nil {
			t.Fatalf("NewStore: %v", err)
		}
		if _, err := store.Load(); err == nil {
			t.Fatalf("expected version error")
		}
	})

	t.Run("Save rejects unsupported version", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewStore(filepath.Join(dir, "config.json"))
		if err != nil {
			t.Fatalf("NewStore: %v", err)
		}
		if err := store.Save(Config{Version: CurrentVersion + 1}); err == nil {
			t.Fatalf("expected save version error")
		}
	})

	t.Run("Update callback error leaves file untouched", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewStore(filepath.Join(dir, "config.json"))
		if err != nil {
			t.Fatalf("NewStore: %v", err)
		}
		if err := store.Update(func(cfg *Config) error {
			cfg.Settings.Theme = "changed"
			return fmt.Errorf("boom")
		}); err == nil {
			t.Fatalf("expected callback error")
		}
		if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
			t.Fatalf("expected no file after failed update, stat err=%v", err)
		}
	})
}

func TestNewStoreDefaultPath(t *testing.T) {
	dir := t.TempDir()
	switch runtime.GOOS {
	case "windows":
		t.Setenv("APPDATA", dir)
	case "darwin":
		t.Setenv("HOME", dir)
	default:
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	base, err := os.UserConfigDir()
	if err != nil {
		t.Fatalf("UserConfigDir error: %v", err)
	}
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	want := filepath.Join(base, "eledminer", "config.json")
	if store.Path() != want {
		t.Fatalf("expected path %q, got %q", want, store.Path())
	}
}
