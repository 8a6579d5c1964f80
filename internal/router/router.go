package router

import (
	"context"
	"fmt"
	"sync"

	"github.com/baaaaaaaka/eledminer/internal/adminer"
	"github.com/baaaaaaaka/eledminer/internal/config"
	"github.com/baaaaaaaka/eledminer/internal/content"
	"github.com/baaaaaaaka/eledminer/internal/layout"
	"github.com/baaaaaaaka/eledminer/internal/logging"
	"github.com/baaaaaaaka/eledminer/internal/phpserver"
)

const subsystem = "router"

type Connections interface {
	List() ([]config.Connection, error)
	Save(config.Connection) (config.Connection, error)
	Update(config.Connection) (config.Connection, error)
	Remove(id string) error
	LoadSettings() (config.Settings, error)
	SaveSettings(config.Settings) (config.Settings, error)
}

type Server interface {
	State() phpserver.State
	LastError() error
	BaseURL() string
}

type Login interface {
	Login(ctx context.Context, baseURL string, creds adminer.Credentials) (adminer.Session, error)
	Validate(ctx context.Context, s adminer.Session) (adminer.Session, error)
}

type Content interface {
	Attach(adminer.Session) error
	Navigate(ctx context.Context, target string) (content.Page, error)
	Reset() error
}

// FileDialog asks the user for a path. ok is false when the user cancelled.
type FileDialog interface {
	Open(ctx context.Context, kind DialogKind) (path string, ok bool, err error)
}

type Deps struct {
	Connections Connections
	Server      Server
	Login       Login
	Content     Content
	Dialog      FileDialog
	Compositor  *layout.Compositor

	// Verify reports whether path is a usable PHP executable.
	Verify func(ctx context.Context, path string) bool
	// Relaunch restarts the whole shell so new settings take effect.
	Relaunch func() error
}

// Router owns all shell state mutations. Commands are handled one at a time on
// the goroutine running Run; slow work runs elsewhere and posts its result
// back onto the queue.
type Router struct {
	deps     Deps
	publish  Sink
	handlers map[CommandType]handler
	queue    chan envelope

	ctx      context.Context
	done     chan struct{}
	stopOnce sync.Once
}

type handler func(cmd Command, sink Sink) error

type envelope struct {
	cmd  Command
	sink Sink
	fn   func()
}

// New returns a Router. publish receives events meant for every front-end and
// may be nil.
func New(deps Deps, publish Sink) *Router {
	if publish == nil {
		publish = Discard
	}
	r := &Router{
		deps:    deps,
		publish: publish,
		queue:   make(chan envelope, 64),
		ctx:     context.Background(),
		done:    make(chan struct{}),
	}
	r.handlers = map[CommandType]handler{
		CmdNavigateHome:         r.navigateHome,
		CmdNavigateSettings:     r.navigateSettings,
		CmdSettingsCancel:       r.settingsCancel,
		CmdSettingsLoaded:       r.settingsLoaded,
		CmdSettingsSave:         r.settingsSave,
		CmdHomeLoaded:           r.homeLoaded,
		CmdOpenConnection:       r.openConnection,
		CmdSaveNewConnection:    r.saveNewConnection,
		CmdSaveEditConnection:   r.saveEditConnection,
		CmdRemoveConnection:     r.removeConnection,
		CmdOpenAdminerHome:      r.openAdminerHome,
		CmdOpenFileDialog:       r.openFileDialog,
		CmdVerifyExecutablePath: r.verifyExecutablePath,
		CmdResize:               r.resize,
		CmdServerStatus:         r.serverStatus,
	}
	return r
}

// failureReplies maps commands to the reply sent when their handler fails.
var failureReplies = map[CommandType]ReplyType{
	CmdSettingsLoaded:     ReplySettingsLoadedFailure,
	CmdSettingsSave:       ReplySettingsSaveFailure,
	CmdHomeLoaded:         ReplyHomeLoadedFailure,
	CmdSaveNewConnection:  ReplySaveNewConnectionFailure,
	CmdSaveEditConnection: ReplySaveEditFailure,
	CmdRemoveConnection:   ReplyRemoveFailure,
	CmdOpenFileDialog:     ReplyFileDialogFailure,
}

// Submit queues cmd; replies go to sink. It returns false once the router has
// stopped.
func (r *Router) Submit(cmd Command, sink Sink) bool {
	if sink == nil {
		sink = Discard
	}
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.queue <- envelope{cmd: cmd, sink: sink}:
		return true
	case <-r.done:
		return false
	}
}

// post schedules fn on the router goroutine. Results posted after the router
// stopped are dropped.
func (r *Router) post(fn func()) {
	select {
	case r.queue <- envelope{fn: fn}:
	case <-r.done:
	}
}

// Done is closed when Run returns.
func (r *Router) Done() <-chan struct{} { return r.done }

// Run processes commands until ctx ends.
func (r *Router) Run(ctx context.Context) error {
	r.ctx = ctx
	defer r.stopOnce.Do(func() { close(r.done) })

	r.publish.Send(Reply{Type: EventRegionsChanged, Payload: r.deps.Compositor.Frame()})
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-r.queue:
			if env.fn != nil {
				env.fn()
				continue
			}
			r.dispatch(env.cmd, env.sink)
		}
	}
}

// ServerStateChanged publishes a server transition. Safe from any goroutine.
func (r *Router) ServerStateChanged(state phpserver.State, err error) {
	status := ServerStatus{State: string(state), BaseURL: r.deps.Server.BaseURL()}
	if err != nil {
		status.Error = err.Error()
	}
	go r.post(func() {
		r.publish.Send(Reply{Type: EventServerState, Payload: status})
	})
}

func (r *Router) dispatch(cmd Command, sink Sink) {
	h, ok := r.handlers[cmd.Type]
	if !ok {
		logging.Warn(subsystem, "ignoring unknown command %q", cmd.Type)
		return
	}

	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
			}
		}()
		return h(cmd, sink)
	}()
	if err == nil {
		return
	}

	logging.Error(subsystem, err, "%s failed", cmd.Type)
	if failure, ok := failureReplies[cmd.Type]; ok {
		sink.Send(Reply{Type: failure})
	}
}

// async runs work off the router goroutine and applies its result on it.
func (r *Router) async(work func(ctx context.Context) func()) {
	ctx := r.ctx
	go func() {
		apply := work(ctx)
		if apply != nil {
			r.post(apply)
		}
	}()
}
