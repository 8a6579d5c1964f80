package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/baaaaaaaka/eledminer/internal/adminer"
	"github.com/baaaaaaaka/eledminer/internal/config"
	"github.com/baaaaaaaka/eledminer/internal/content"
	"github.com/baaaaaaaka/eledminer/internal/layout"
	"github.com/baaaaaaaka/eledminer/internal/logging"
	"github.com/baaaaaaaka/eledminer/internal/phpserver"
)

// ContentNavigation is the payload of EventContentNavigate.
type ContentNavigation struct {
	Page    content.Page     `json:"page"`
	Session *adminer.Session `json:"session,omitempty"`
}

func (r *Router) publishFrame(f layout.Frame) {
	r.publish.Send(Reply{Type: EventRegionsChanged, Payload: f})
}

func (r *Router) navigateHome(Command, Sink) error {
	r.publishFrame(r.deps.Compositor.NavigateHome())
	if err := r.deps.Content.Reset(); err != nil {
		logging.Warn(subsystem, "reset content region: %v", err)
	}
	return nil
}

func (r *Router) navigateSettings(Command, Sink) error {
	r.publishFrame(r.deps.Compositor.NavigateSettings())
	return nil
}

func (r *Router) settingsCancel(Command, Sink) error {
	r.publishFrame(r.deps.Compositor.NavigateHome())
	return nil
}

func (r *Router) resize(cmd Command, _ Sink) error {
	r.publishFrame(r.deps.Compositor.OnResize(cmd.Width, cmd.Height))
	return nil
}

func (r *Router) settingsLoaded(_ Command, sink Sink) error {
	s, err := r.deps.Connections.LoadSettings()
	if err != nil {
		return err
	}
	sink.Send(Reply{Type: ReplySettingsLoaded, Payload: s})
	return nil
}

// settingsSave persists settings. With Restart the shell relaunches instead of
// replying.
func (r *Router) settingsSave(cmd Command, sink Sink) error {
	saved, err := r.deps.Connections.SaveSettings(cmd.Settings)
	if err != nil {
		return err
	}
	if cmd.Restart {
		if r.deps.Relaunch == nil {
			return errors.New("relaunch is not available")
		}
		logging.Info(subsystem, "settings saved, relaunching")
		return r.deps.Relaunch()
	}
	sink.Send(Reply{Type: ReplySettingsSaveSuccess, Payload: saved})
	return nil
}

func (r *Router) homeLoaded(_ Command, sink Sink) error {
	list, err := r.deps.Connections.List()
	if err != nil {
		return err
	}
	if list == nil {
		list = []config.Connection{}
	}
	sink.Send(Reply{Type: ReplyHomeLoaded, Payload: list})
	return nil
}

func (r *Router) saveNewConnection(cmd Command, sink Sink) error {
	conn, err := r.deps.Connections.Save(cmd.Connection)
	if err != nil {
		return err
	}
	sink.Send(Reply{Type: ReplySaveNewConnectionSuccess, Payload: conn})
	return nil
}

func (r *Router) saveEditConnection(cmd Command, sink Sink) error {
	conn, err := r.deps.Connections.Update(cmd.Connection)
	if err != nil {
		return err
	}
	sink.Send(Reply{Type: ReplySaveEditSuccess, Payload: conn})
	return nil
}

func (r *Router) removeConnection(cmd Command, sink Sink) error {
	if err := r.deps.Connections.Remove(cmd.ID); err != nil {
		return err
	}
	sink.Send(Reply{Type: ReplyRemoveSuccess, Payload: cmd.ID})
	return nil
}

func (r *Router) serverRunning(sink Sink) bool {
	if r.deps.Server.State() == phpserver.StateRunning {
		return true
	}
	sink.Send(Reply{Type: ReplyServerNotRunning})
	return false
}

// openConnection runs login, validate, cookie attach and content navigation in
// order. Any failure stops the pipeline and yields one failure reply; a
// completion reply always follows.
func (r *Router) openConnection(cmd Command, sink Sink) error {
	if !r.serverRunning(sink) {
		return nil
	}
	baseURL := r.deps.Server.BaseURL()
	creds := adminer.CredentialsFor(cmd.Connection)

	r.async(func(ctx context.Context) func() {
		session, page, err := r.loginPipeline(ctx, baseURL, creds)
		return func() {
			if err != nil {
				logging.Error(subsystem, err, "open connection %q (%s)", cmd.Connection.Name, cmd.Connection.Driver)
				sink.Send(Reply{Type: ReplyOpenConnectionFailure})
			} else {
				r.showContent(page, &session)
			}
			sink.Send(Reply{Type: ReplyOpenConnectionComplete})
		}
	})
	return nil
}

func (r *Router) loginPipeline(ctx context.Context, baseURL string, creds adminer.Credentials) (adminer.Session, content.Page, error) {
	session, err := r.deps.Login.Login(ctx, baseURL, creds)
	if err != nil {
		return adminer.Session{}, content.Page{}, fmt.Errorf("login: %w", err)
	}
	session, err = r.deps.Login.Validate(ctx, session)
	if err != nil {
		return adminer.Session{}, content.Page{}, fmt.Errorf("validate: %w", err)
	}
	if err := r.deps.Content.Attach(session); err != nil {
		return adminer.Session{}, content.Page{}, fmt.Errorf("attach cookie: %w", err)
	}
	page, err := r.deps.Content.Navigate(ctx, session.RedirectURL)
	if err != nil {
		return adminer.Session{}, content.Page{}, fmt.Errorf("navigate: %w", err)
	}
	return session, page, nil
}

func (r *Router) showContent(page content.Page, session *adminer.Session) {
	r.publishFrame(r.deps.Compositor.NavigateContent(page.URL))
	r.publish.Send(Reply{Type: EventContentNavigate, Payload: ContentNavigation{Page: page, Session: session}})
}

func (r *Router) openAdminerHome(_ Command, sink Sink) error {
	if !r.serverRunning(sink) {
		return nil
	}
	target := r.deps.Server.BaseURL() + "/"
	r.async(func(ctx context.Context) func() {
		page, err := r.deps.Content.Navigate(ctx, target)
		if err != nil {
			// The view switches even when the fetch fails.
			logging.Error(subsystem, err, "open adminer home")
			page = content.Page{URL: target}
		}
		return func() { r.showContent(page, nil) }
	})
	return nil
}

func (r *Router) openFileDialog(cmd Command, sink Sink) error {
	if r.deps.Dialog == nil {
		return errors.New("no file dialog configured")
	}
	kind := cmd.Dialog
	r.async(func(ctx context.Context) func() {
		path, ok, err := r.deps.Dialog.Open(ctx, kind)
		return func() {
			switch {
			case err != nil:
				logging.Error(subsystem, err, "file dialog %s", kind)
				sink.Send(Reply{Type: ReplyFileDialogFailure})
			case ok:
				sink.Send(Reply{Type: ReplyFileDialogSuccess, Payload: FileDialogPayload{Kind: kind, Path: path}})
			}
		}
	})
	return nil
}

func (r *Router) verifyExecutablePath(cmd Command, sink Sink) error {
	verify := r.deps.Verify
	if verify == nil {
		verify = phpserver.VerifyExecutable
	}
	path := cmd.Path
	r.async(func(ctx context.Context) func() {
		ok := verify(ctx, path)
		return func() {
			sink.Send(Reply{Type: ReplyVerifySuccess, Payload: ok})
		}
	})
	return nil
}

func (r *Router) serverStatus(_ Command, sink Sink) error {
	status := ServerStatus{State: string(r.deps.Server.State()), BaseURL: r.deps.Server.BaseURL()}
	if err := r.deps.Server.LastError(); err != nil {
		status.Error = err.Error()
	}
	sink.Send(Reply{Type: ReplyServerStatus, Payload: status})
	return nil
}
