package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"

	"github.com/baaaaaaaka/eledminer/internal/layout"
	"github.com/baaaaaaaka/eledminer/internal/logging"
	"github.com/baaaaaaaka/eledminer/internal/router"
)

const subsystem = "tui"

var newScreen = tcell.NewScreen

var copyToClipboard = clipboard.WriteAll

type Submitter interface {
	Submit(router.Command, router.Sink) bool
}

type Events interface {
	Add(router.Sink) (remove func())
}

type Options struct {
	Router Submitter
	Events Events
	// Prompt answers file dialogs from inside the UI. Optional.
	Prompt  *Prompt
	Version string
}

type replyEvent struct {
	when  time.Time
	reply router.Reply
}

func (e *replyEvent) When() time.Time { return e.when }

type promptEvent struct {
	when time.Time
	req  *promptRequest
}

func (e *promptEvent) When() time.Time { return e.when }

type quitEvent struct {
	when time.Time
}

func (e *quitEvent) When() time.Time { return e.when }

// Run drives the terminal front-end until the user quits, ctx ends or the
// router stops accepting commands.
func Run(ctx context.Context, opts Options) error {
	if opts.Router == nil {
		return errors.New("router is required")
	}

	screen, err := newScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	done := make(chan struct{})
	defer close(done)

	sink := router.SinkFunc(func(r router.Reply) {
		_ = screen.PostEvent(&replyEvent{when: time.Now(), reply: r})
	})
	if opts.Events != nil {
		remove := opts.Events.Add(sink)
		defer remove()
	}

	stopped := false
	m := newModel(func(cmd router.Command) {
		if !opts.Router.Submit(cmd, sink) && !stopped {
			stopped = true
			_ = screen.PostEvent(&quitEvent{when: time.Now()})
		}
	}, copyToClipboard)
	defer m.closePrompt()

	if opts.Prompt != nil {
		go func() {
			for {
				select {
				case req := <-opts.Prompt.reqs:
					_ = screen.PostEvent(&promptEvent{when: time.Now(), req: req})
				case <-done:
					return
				}
			}
		}()
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = screen.PostEvent(&quitEvent{when: time.Now()})
		case <-done:
		}
	}()

	resize(screen, m)
	m.submit(router.Command{Type: router.CmdServerStatus})
	m.submit(router.Command{Type: router.CmdSettingsLoaded})
	m.submit(router.Command{Type: router.CmdHomeLoaded})

	for {
		render(screen, m, opts)
		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *quitEvent:
			if err := ctx.Err(); err != nil {
				return err
			}
			return nil
		case *replyEvent:
			m.applyReply(ev.reply)
		case *promptEvent:
			m.openPrompt(ev.req)
		case *tcell.EventResize:
			screen.Sync()
			resize(screen, m)
		case *tcell.EventKey:
			m.handleKey(ev)
		}
		if m.quit {
			logging.Debug(subsystem, "quit requested")
			return nil
		}
	}
}

// resize reports the screen size minus the status row to the router.
func resize(screen tcell.Screen, m *model) {
	w, h := screen.Size()
	m.submit(router.Command{Type: router.CmdResize, Width: w, Height: max(0, h-1)})
}

func render(screen tcell.Screen, m *model, opts Options) {
	screen.Clear()
	f := m.frame

	menu := f.Region(layout.Menu)
	if menu.Visible && !menu.Bounds.Empty() {
		r := rectFrom(menu.Bounds)
		drawBox(screen, r, "Menu", m.focus == focusMenu)
		labels := make([]string, len(menuItems))
		for i, it := range menuItems {
			labels[i] = it.label
			if !it.quit && it.page == f.Page {
				labels[i] = "* " + it.label
			}
		}
		drawList(screen, r, visibleRows(labels, m.focus == focusMenu, m.menu, r.h-2))
	}

	page := f.Active()
	if page.Visible && !page.Bounds.Empty() {
		r := rectFrom(page.Bounds)
		focused := m.focus == focusPage
		switch {
		case m.form != nil:
			drawBox(screen, r, m.form.title(), focused)
			drawLines(screen, r, m.form.lines(max(0, r.w-2)))
		case f.Page == layout.PageHome:
			drawBox(screen, r, "Connections", focused)
			if len(m.connections) == 0 {
				drawLines(screen, r, []string{"No saved connections.", "Press n to add one."})
				break
			}
			labels := make([]string, len(m.connections))
			for i, c := range m.connections {
				labels[i] = connectionLabel(c)
			}
			m.list.ensureVisible(r.h-2, len(labels))
			drawList(screen, r, visibleRows(labels, focused, m.list, r.h-2))
		case f.Page == layout.PageContent:
			drawBox(screen, r, "Adminer", focused)
			drawLines(screen, r, contentLines(m))
		default:
			drawBox(screen, r, "Settings", focused)
			drawLines(screen, r, []string{"Press Enter to edit settings."})
		}
	}

	style := tcell.StyleDefault.Reverse(true)
	if m.prompt != nil {
		drawStatus(screen, m.prompt.label()+m.prompt.buffer, "Enter: ok  Esc: cancel", style)
	} else {
		drawStatus(screen, statusText(m), serverLabel(m.server)+"  "+versionLabel(opts.Version), style)
	}
	screen.Show()
}

func contentLines(m *model) []string {
	nav := m.content
	if nav.Page.URL == "" {
		return []string{"Nothing loaded."}
	}
	status := "not loaded"
	if nav.Page.Status != 0 {
		status = fmt.Sprintf("%d", nav.Page.Status)
	}
	lines := []string{
		"URL:    " + nav.Page.URL,
		"Title:  " + nav.Page.Title,
		"Status: " + status,
	}
	if nav.Session != nil {
		lines = append(lines, "Cookie: "+nav.Session.CookieName+"="+nav.Session.CookieValue)
	}
	return lines
}

func statusText(m *model) string {
	if m.message != "" {
		return m.message
	}
	if m.focus == focusMenu {
		return "Up/Down: move  Enter: open  Tab: page  q: quit"
	}
	if m.form != nil {
		hints := []string{"Up/Down: field", "Enter: save", "Esc: cancel", "Ctrl+O: browse"}
		if m.form.kind == formSettings {
			hints = append(hints, "Ctrl+R: save and restart", "Ctrl+V: verify PHP")
		}
		return strings.Join(hints, "  ")
	}
	switch m.frame.Page {
	case layout.PageHome:
		return "Enter: open  n: new  e: edit  d: remove  a: Adminer  Tab: menu  q: quit"
	case layout.PageContent:
		return "y: copy URL  Esc: home  Tab: menu  q: quit"
	default:
		return "Enter: edit  Tab: menu  q: quit"
	}
}

func serverLabel(st router.ServerStatus) string {
	if st.State == "" {
		return "php: unknown"
	}
	return "php: " + st.State
}
