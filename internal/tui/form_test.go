package tui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/baaaaaaaka/eledminer/internal/config"
)

func TestConnectionFormVisibleFieldsFollowDriver(t *testing.T) {
	f := newConnectionForm(config.Connection{}, false)
	if n := len(f.visible()); n != 6 {
		t.Fatalf("server-based fields=%d", n)
	}
	f.set(fieldDriver, string(config.DriverSQLite))
	vis := f.visible()
	if len(vis) != 3 || vis[2].key != fieldFilepath {
		t.Fatalf("file-based fields=%v", vis)
	}
}

func TestFormPasswordIsMasked(t *testing.T) {
	f := newConnectionForm(config.Connection{Driver: config.DriverPostgreSQL, Password: "hunter2"}, true)
	joined := strings.Join(f.lines(80), "\n")
	if strings.Contains(joined, "hunter2") || !strings.Contains(joined, "*******") {
		t.Fatalf("lines=%q", joined)
	}
	if !strings.Contains(joined, "< pgsql >") {
		t.Fatalf("lines=%q", joined)
	}
}

func TestFormCursorWraps(t *testing.T) {
	f := newSettingsForm(config.Settings{})
	f.edit(tcell.NewEventKey(tcell.KeyUp, 0, 0))
	if f.current().key != fieldPHP {
		t.Fatalf("cursor=%d", f.cursor)
	}
	f.edit(tcell.NewEventKey(tcell.KeyDown, 0, 0))
	if f.current().key != fieldPort {
		t.Fatalf("cursor=%d", f.cursor)
	}
}

func TestSettingsFromForm(t *testing.T) {
	f := newSettingsForm(config.Settings{})
	if f.get(fieldPort) != "8000" || f.get(fieldTheme) != config.DefaultTheme || f.get(fieldPHP) != config.DefaultPHPExecutable {
		t.Fatalf("defaults not applied: %+v", f.fields)
	}
	f.edit(tcell.NewEventKey(tcell.KeyCtrlU, 0, 0))
	if _, err := f.settings(); err == nil {
		t.Fatalf("expected error for empty port")
	}
	for _, ch := range "9000" {
		f.edit(tcell.NewEventKey(tcell.KeyRune, ch, 0))
	}
	s, err := f.settings()
	if err != nil || s.Port != 9000 {
		t.Fatalf("settings=%+v err=%v", s, err)
	}
}

func TestConnectionFromFormRejectsUnknownDriver(t *testing.T) {
	f := newConnectionForm(config.Connection{}, false)
	f.set(fieldDriver, "db2")
	if _, err := f.connection(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestTruncateAndPad(t *testing.T) {
	if got := truncate("数据库连接", 5); got != "数据" {
		t.Fatalf("truncate=%q", got)
	}
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("pad=%q", got)
	}
	if versionLabel("") != "dev" || versionLabel("1.2") != "v1.2" || versionLabel("v3") != "v3" {
		t.Fatalf("version labels")
	}
}
