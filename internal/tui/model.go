package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/baaaaaaaka/eledminer/internal/config"
	"github.com/baaaaaaaka/eledminer/internal/layout"
	"github.com/baaaaaaaka/eledminer/internal/router"
)

const (
	focusMenu = "menu"
	focusPage = "page"
)

type menuItem struct {
	label string
	page  layout.Page
	quit  bool
}

var menuItems = []menuItem{
	{label: "Home", page: layout.PageHome},
	{label: "Settings", page: layout.PageSettings},
	{label: "Quit", quit: true},
}

type model struct {
	submit   func(router.Command)
	copyText func(string) error

	frame       layout.Frame
	focus       string
	menu        listState
	connections []config.Connection
	list        listState
	settings    config.Settings
	form        *form
	content     router.ContentNavigation
	server      router.ServerStatus
	message     string
	opening     bool
	prompt      *promptRequest
	quit        bool
}

func newModel(submit func(router.Command), copyText func(string) error) *model {
	return &model{submit: submit, copyText: copyText, focus: focusPage}
}

func (m *model) notify(format string, args ...any) {
	m.message = fmt.Sprintf(format, args...)
}

func (m *model) showPage(p layout.Page) {
	switch p {
	case layout.PageHome:
		m.submit(router.Command{Type: router.CmdNavigateHome})
		m.submit(router.Command{Type: router.CmdHomeLoaded})
	case layout.PageSettings:
		m.submit(router.Command{Type: router.CmdNavigateSettings})
		m.submit(router.Command{Type: router.CmdSettingsLoaded})
	}
}

func (m *model) selectedConnection() (config.Connection, bool) {
	if len(m.connections) == 0 {
		return config.Connection{}, false
	}
	m.list.clamp(len(m.connections))
	return m.connections[m.list.selected], true
}

func (m *model) pageHeight() int {
	return max(0, m.frame.Active().Bounds.Height-2)
}

// applyReply folds a router reply or event into the model.
func (m *model) applyReply(r router.Reply) {
	switch r.Type {
	case router.EventRegionsChanged:
		if f, ok := r.Payload.(layout.Frame); ok {
			prev := m.frame.Page
			m.frame = f
			if f.Page == layout.PageSettings && prev != layout.PageSettings {
				m.form = newSettingsForm(m.settings)
			}
			if f.Page != layout.PageSettings && m.form != nil && m.form.kind == formSettings {
				m.form = nil
			}
			if f.Page != layout.PageHome && m.form != nil && m.form.kind != formSettings {
				m.form = nil
			}
		}
	case router.EventContentNavigate:
		if nav, ok := r.Payload.(router.ContentNavigation); ok {
			m.content = nav
			m.focus = focusPage
		}
	case router.EventServerState, router.ReplyServerStatus:
		if st, ok := r.Payload.(router.ServerStatus); ok {
			m.server = st
		}
	case router.ReplyHomeLoaded:
		if list, ok := r.Payload.([]config.Connection); ok {
			m.connections = list
			m.list.clamp(len(list))
		}
	case router.ReplySettingsLoaded:
		if s, ok := r.Payload.(config.Settings); ok {
			m.settings = s
			if m.form != nil && m.form.kind == formSettings {
				m.form = newSettingsForm(s)
			}
		}
	case router.ReplySettingsSaveSuccess:
		if s, ok := r.Payload.(config.Settings); ok {
			m.settings = s
		}
		m.notify("Settings saved. Restart to apply them to the PHP server.")
	case router.ReplySaveNewConnectionSuccess, router.ReplySaveEditSuccess:
		m.form = nil
		if c, ok := r.Payload.(config.Connection); ok {
			m.notify("Saved %s.", c.Name)
		}
		m.submit(router.Command{Type: router.CmdHomeLoaded})
	case router.ReplyRemoveSuccess:
		m.notify("Connection removed.")
		m.submit(router.Command{Type: router.CmdHomeLoaded})
	case router.ReplyOpenConnectionFailure:
		m.notify("Login failed. Check the connection details.")
	case router.ReplyOpenConnectionComplete:
		m.opening = false
	case router.ReplyServerNotRunning:
		m.opening = false
		m.notify("The PHP server is not running.")
	case router.ReplyFileDialogSuccess:
		if p, ok := r.Payload.(router.FileDialogPayload); ok && m.form != nil {
			switch {
			case p.Kind == router.DialogSQLite && m.form.kind != formSettings:
				m.form.set(fieldFilepath, p.Path)
			case p.Kind == router.DialogPHPExecutable && m.form.kind == formSettings:
				m.form.set(fieldPHP, p.Path)
			}
		}
	case router.ReplyVerifySuccess:
		if ok, _ := r.Payload.(bool); ok {
			m.notify("PHP executable looks usable.")
		} else {
			m.notify("That is not a usable PHP 7 or 8 executable.")
		}
	case router.ReplySettingsLoadedFailure, router.ReplySettingsSaveFailure,
		router.ReplyHomeLoadedFailure, router.ReplySaveNewConnectionFailure,
		router.ReplySaveEditFailure, router.ReplyRemoveFailure, router.ReplyFileDialogFailure:
		m.notify("%s", failureText(r.Type))
	}
}

func failureText(t router.ReplyType) string {
	switch t {
	case router.ReplySettingsLoadedFailure:
		return "Could not load settings."
	case router.ReplySettingsSaveFailure:
		return "Could not save settings."
	case router.ReplyHomeLoadedFailure:
		return "Could not load connections."
	case router.ReplySaveNewConnectionFailure, router.ReplySaveEditFailure:
		return "Could not save the connection."
	case router.ReplyRemoveFailure:
		return "Could not remove the connection."
	default:
		return "File dialog failed."
	}
}

// handleKey reacts to one key press.
func (m *model) handleKey(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyCtrlC {
		m.quit = true
		return
	}
	m.message = ""
	if m.prompt != nil {
		m.promptKey(ev)
		return
	}
	if m.form != nil && m.focus == focusPage {
		m.formKey(ev)
		return
	}

	switch ev.Key() {
	case tcell.KeyTab, tcell.KeyBacktab:
		if m.focus == focusMenu {
			m.focus = focusPage
		} else {
			m.focus = focusMenu
		}
		return
	case tcell.KeyRune:
		if ev.Rune() == 'q' {
			m.quit = true
			return
		}
	}

	if m.focus == focusMenu {
		m.menuKey(ev)
		return
	}
	switch m.frame.Page {
	case layout.PageHome:
		m.homeKey(ev)
	case layout.PageContent:
		m.contentKey(ev)
	case layout.PageSettings:
		if ev.Key() == tcell.KeyEnter {
			m.form = newSettingsForm(m.settings)
		}
	}
}

func (m *model) menuKey(ev *tcell.EventKey) {
	if m.menu.move(len(menuItems), len(menuItems), ev) {
		return
	}
	if ev.Key() != tcell.KeyEnter && ev.Key() != tcell.KeyRight {
		return
	}
	item := menuItems[clamp(m.menu.selected, 0, len(menuItems)-1)]
	if item.quit {
		m.quit = true
		return
	}
	m.showPage(item.page)
	m.focus = focusPage
}

func (m *model) homeKey(ev *tcell.EventKey) {
	if m.list.move(len(m.connections), m.pageHeight(), ev) {
		return
	}
	open := ev.Key() == tcell.KeyEnter
	remove := ev.Key() == tcell.KeyDelete
	if ev.Key() == tcell.KeyRune {
		switch ev.Rune() {
		case 'o':
			open = true
		case 'd':
			remove = true
		case 'n':
			m.form = newConnectionForm(config.Connection{}, false)
			return
		case 'e':
			if c, ok := m.selectedConnection(); ok {
				m.form = newConnectionForm(c, true)
			}
			return
		case 'a':
			m.submit(router.Command{Type: router.CmdOpenAdminerHome})
			return
		case 'r':
			m.submit(router.Command{Type: router.CmdHomeLoaded})
			return
		case 's':
			m.showPage(layout.PageSettings)
			return
		}
	}
	c, ok := m.selectedConnection()
	if !ok {
		return
	}
	switch {
	case open:
		if m.opening {
			return
		}
		m.opening = true
		m.notify("Opening %s...", c.Name)
		m.submit(router.Command{Type: router.CmdOpenConnection, Connection: c})
	case remove:
		m.submit(router.Command{Type: router.CmdRemoveConnection, ID: c.ID})
	}
}

func (m *model) contentKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEsc:
		m.showPage(layout.PageHome)
		return
	case tcell.KeyRune:
	default:
		return
	}
	switch ev.Rune() {
	case 'h':
		m.showPage(layout.PageHome)
	case 'y':
		url := m.content.Page.URL
		if url == "" {
			return
		}
		if m.copyText == nil {
			m.notify("Clipboard is not available.")
			return
		}
		if err := m.copyText(url); err != nil {
			m.notify("Copy failed: %v", err)
			return
		}
		m.notify("Copied %s", url)
	}
}

func (m *model) formKey(ev *tcell.EventKey) {
	f := m.form
	switch ev.Key() {
	case tcell.KeyEsc:
		if f.kind == formSettings {
			m.form = nil
			m.submit(router.Command{Type: router.CmdSettingsCancel})
			m.submit(router.Command{Type: router.CmdHomeLoaded})
			return
		}
		m.form = nil
		return
	case tcell.KeyCtrlS, tcell.KeyEnter:
		m.submitForm(false)
		return
	case tcell.KeyCtrlR:
		if f.kind == formSettings {
			m.submitForm(true)
		}
		return
	case tcell.KeyCtrlO:
		kind := router.DialogSQLite
		if f.kind == formSettings {
			kind = router.DialogPHPExecutable
		}
		m.submit(router.Command{Type: router.CmdOpenFileDialog, Dialog: kind})
		return
	case tcell.KeyCtrlV:
		if f.kind == formSettings {
			m.submit(router.Command{Type: router.CmdVerifyExecutablePath, Path: f.get(fieldPHP)})
		}
		return
	}
	f.edit(ev)
}

func (m *model) submitForm(restart bool) {
	f := m.form
	if f.kind == formSettings {
		s, err := f.settings()
		if err != nil {
			m.notify("%v", err)
			return
		}
		m.submit(router.Command{Type: router.CmdSettingsSave, Settings: s, Restart: restart})
		return
	}
	c, err := f.connection()
	if err != nil {
		m.notify("%v", err)
		return
	}
	typ := router.CmdSaveNewConnection
	if f.kind == formEditConnection {
		typ = router.CmdSaveEditConnection
	}
	m.submit(router.Command{Type: typ, Connection: c})
}

func (m *model) promptKey(ev *tcell.EventKey) {
	p := m.prompt
	switch ev.Key() {
	case tcell.KeyEsc:
		p.answer("", false)
		m.prompt = nil
	case tcell.KeyEnter:
		path := strings.TrimSpace(p.buffer)
		p.answer(path, path != "")
		m.prompt = nil
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(p.buffer); len(r) > 0 {
			p.buffer = string(r[:len(r)-1])
		}
	case tcell.KeyRune:
		if ch := ev.Rune(); ch >= 32 {
			p.buffer += string(ch)
		}
	}
}

// openPrompt shows a path prompt. A prompt already on screen is cancelled.
func (m *model) openPrompt(req *promptRequest) {
	if m.prompt != nil {
		m.prompt.answer("", false)
	}
	m.prompt = req
}

func (m *model) closePrompt() {
	if m.prompt != nil {
		m.prompt.answer("", false)
		m.prompt = nil
	}
}

func connectionLabel(c config.Connection) string {
	target := c.Filepath
	if c.Driver.Kind() == config.ServerBased {
		target = c.Hostname
		if c.Port > 0 {
			target = fmt.Sprintf("%s:%d", c.Hostname, c.Port)
		}
		if c.Username != "" {
			target = c.Username + "@" + target
		}
	}
	name := c.Name
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf("%s  [%s]  %s", name, c.Driver, target)
}
