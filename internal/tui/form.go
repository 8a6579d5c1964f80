package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/baaaaaaaka/eledminer/internal/config"
)

type formKind string

const (
	formNewConnection  formKind = "new-connection"
	formEditConnection formKind = "edit-connection"
	formSettings       formKind = "settings"
)

const (
	fieldDriver   = "driver"
	fieldName     = "name"
	fieldHostname = "hostname"
	fieldPort     = "port"
	fieldUsername = "username"
	fieldPassword = "password"
	fieldFilepath = "filepath"
	fieldTheme    = "theme"
	fieldPHP      = "php"
)

type field struct {
	key     string
	label   string
	value   string
	choices []string
	secret  bool
}

// form is an inline editor. Only the fields returned by visible are shown
// and cursor indexes into that list.
type form struct {
	kind   formKind
	id     string
	fields []field
	cursor int
}

func newConnectionForm(c config.Connection, edit bool) *form {
	kind := formNewConnection
	if edit {
		kind = formEditConnection
	}
	driver := c.Driver
	if driver == "" {
		driver = config.DriverMySQL
	}
	choices := make([]string, 0, len(config.KnownDrivers()))
	for _, d := range config.KnownDrivers() {
		choices = append(choices, string(d))
	}
	port := ""
	if c.Port > 0 {
		port = strconv.Itoa(c.Port)
	}
	return &form{
		kind: kind,
		id:   c.ID,
		fields: []field{
			{key: fieldDriver, label: "Driver", value: string(driver), choices: choices},
			{key: fieldName, label: "Name", value: c.Name},
			{key: fieldHostname, label: "Host", value: c.Hostname},
			{key: fieldPort, label: "Port", value: port},
			{key: fieldUsername, label: "Username", value: c.Username},
			{key: fieldPassword, label: "Password", value: c.Password, secret: true},
			{key: fieldFilepath, label: "File", value: c.Filepath},
		},
	}
}

func newSettingsForm(s config.Settings) *form {
	s = s.WithDefaults()
	return &form{
		kind: formSettings,
		fields: []field{
			{key: fieldPort, label: "Port", value: strconv.Itoa(s.Port)},
			{key: fieldTheme, label: "Theme", value: s.Theme},
			{key: fieldPHP, label: "PHP", value: s.PHPExecutable},
		},
	}
}

func (f *form) title() string {
	switch f.kind {
	case formNewConnection:
		return "New connection"
	case formEditConnection:
		return "Edit connection"
	default:
		return "Settings"
	}
}

func (f *form) visible() []*field {
	out := make([]*field, 0, len(f.fields))
	kind := config.ServerBased
	if d, ok := config.ParseDriver(f.get(fieldDriver)); ok {
		kind = d.Kind()
	}
	for i := range f.fields {
		fd := &f.fields[i]
		if f.kind != formSettings {
			switch fd.key {
			case fieldHostname, fieldPort, fieldUsername, fieldPassword:
				if kind != config.ServerBased {
					continue
				}
			case fieldFilepath:
				if kind != config.FileBased {
					continue
				}
			}
		}
		out = append(out, fd)
	}
	return out
}

func (f *form) get(key string) string {
	for _, fd := range f.fields {
		if fd.key == key {
			return fd.value
		}
	}
	return ""
}

func (f *form) set(key, value string) {
	for i := range f.fields {
		if f.fields[i].key == key {
			f.fields[i].value = value
			return
		}
	}
}

func (f *form) current() *field {
	vis := f.visible()
	if len(vis) == 0 {
		return nil
	}
	f.cursor = clamp(f.cursor, 0, len(vis)-1)
	return vis[f.cursor]
}

// edit applies an editing key. It reports whether the key was consumed.
func (f *form) edit(ev *tcell.EventKey) bool {
	vis := f.visible()
	if len(vis) == 0 {
		return false
	}
	switch ev.Key() {
	case tcell.KeyUp, tcell.KeyBacktab:
		f.cursor = (f.cursor - 1 + len(vis)) % len(vis)
		return true
	case tcell.KeyDown, tcell.KeyTab:
		f.cursor = (f.cursor + 1) % len(vis)
		return true
	}

	fd := f.current()
	if len(fd.choices) > 0 {
		step := 0
		switch ev.Key() {
		case tcell.KeyLeft:
			step = -1
		case tcell.KeyRight:
			step = 1
		case tcell.KeyRune:
			if ev.Rune() == ' ' {
				step = 1
			}
		}
		if step == 0 {
			return false
		}
		idx := 0
		for i, c := range fd.choices {
			if c == fd.value {
				idx = i
			}
		}
		fd.value = fd.choices[(idx+step+len(fd.choices))%len(fd.choices)]
		return true
	}

	switch ev.Key() {
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(fd.value); len(r) > 0 {
			fd.value = string(r[:len(r)-1])
		}
		return true
	case tcell.KeyCtrlU:
		fd.value = ""
		return true
	case tcell.KeyRune:
		if ch := ev.Rune(); ch >= 32 {
			fd.value += string(ch)
		}
		return true
	}
	return false
}

func (f *form) lines(width int) []string {
	labelW := 0
	for _, fd := range f.fields {
		labelW = max(labelW, displayWidth(fd.label))
	}
	vis := f.visible()
	out := make([]string, 0, len(vis))
	for i, fd := range vis {
		value := fd.value
		if fd.secret {
			value = strings.Repeat("*", len([]rune(value)))
		}
		if len(fd.choices) > 0 {
			value = "< " + value + " >"
		}
		marker := "  "
		if i == f.cursor {
			marker = "> "
		}
		out = append(out, truncate(marker+padRight(fd.label, labelW)+"  "+value, width))
	}
	return out
}

func (f *form) connection() (config.Connection, error) {
	driver, ok := config.ParseDriver(f.get(fieldDriver))
	if !ok {
		return config.Connection{}, fmt.Errorf("unknown driver %q", f.get(fieldDriver))
	}
	port := 0
	if v := strings.TrimSpace(f.get(fieldPort)); v != "" {
		var err error
		port, err = strconv.Atoi(v)
		if err != nil {
			return config.Connection{}, fmt.Errorf("port %q is not a number", v)
		}
	}
	c := config.Connection{
		ID:       f.id,
		Driver:   driver,
		Name:     f.get(fieldName),
		Hostname: strings.TrimSpace(f.get(fieldHostname)),
		Port:     port,
		Username: f.get(fieldUsername),
		Password: f.get(fieldPassword),
		Filepath: strings.TrimSpace(f.get(fieldFilepath)),
	}
	return c.Normalized(), nil
}

func (f *form) settings() (config.Settings, error) {
	v := strings.TrimSpace(f.get(fieldPort))
	port, err := strconv.Atoi(v)
	if err != nil {
		return config.Settings{}, fmt.Errorf("port %q is not a number", v)
	}
	return config.Settings{
		Port:          port,
		Theme:         strings.TrimSpace(f.get(fieldTheme)),
		PHPExecutable: strings.TrimSpace(f.get(fieldPHP)),
	}, nil
}
