package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/baaaaaaaka/eledminer/internal/adminer"
	"github.com/baaaaaaaka/eledminer/internal/config"
	"github.com/baaaaaaaka/eledminer/internal/connections"
	"github.com/baaaaaaaka/eledminer/internal/content"
	"github.com/baaaaaaaka/eledminer/internal/filedialog"
	"github.com/baaaaaaaka/eledminer/internal/layout"
	"github.com/baaaaaaaka/eledminer/internal/logging"
	"github.com/baaaaaaaka/eledminer/internal/phpserver"
	"github.com/baaaaaaaka/eledminer/internal/router"
)

const (
	subsystem      = "cli"
	loginTimeout   = 10 * time.Second
	contentTimeout = 15 * time.Second
	logFileName    = "eledminer.log"
)

// app is one running shell: store, PHP server and the router between them.
type app struct {
	store   *config.Store
	shell   config.Shell
	conns   *connections.Store
	server  *phpserver.Manager
	events  *router.Broadcast
	layout  *layout.Compositor
	router  *router.Router
	restart *relauncher

	routerDone chan struct{}
}

type appOptions struct {
	// menuWidth overrides the shell layout width when positive.
	menuWidth int
	// dialog is used when the shell config names no picker command.
	dialog router.FileDialog
	output io.Writer
}

func loadStores(root *rootOptions) (*config.Store, config.Shell, error) {
	store, err := config.NewStore(root.configPath)
	if err != nil {
		return nil, config.Shell{}, err
	}
	shell, err := config.LoadShell(root.shellConfigPath)
	if err != nil {
		return nil, config.Shell{}, err
	}
	return store, shell, nil
}

func newApp(root *rootOptions, opts appOptions) (*app, error) {
	store, shell, err := loadStores(root)
	if err != nil {
		return nil, err
	}
	conns := connections.New(store)
	settings, err := conns.LoadSettings()
	if err != nil {
		return nil, err
	}

	server := phpserver.NewManager(phpserver.Options{
		PHP:          settings.PHPExecutable,
		Host:         shell.Server.Host,
		Port:         settings.Port,
		DocRoot:      shell.Server.DocRoot,
		BasePath:     shell.Server.BasePath,
		Theme:        settings.Theme,
		ExtraArgs:    shell.Server.DirectiveArgs(),
		ReadyTimeout: shell.Server.ReadyTimeout,
		StopGrace:    shell.Server.StopGrace,
		Stdout:       opts.output,
		Stderr:       opts.output,
	}, store)

	region, err := content.NewRegion(contentTimeout)
	if err != nil {
		return nil, err
	}

	var dialog router.FileDialog = filedialog.Command{Argv: shell.FileDialog.Command}
	if len(shell.FileDialog.Command) == 0 && opts.dialog != nil {
		dialog = opts.dialog
	}

	menuWidth := shell.Layout.MenuWidth
	if opts.menuWidth > 0 {
		menuWidth = opts.menuWidth
	}
	comp := layout.NewCompositor(menuWidth, shell.Window.Width, shell.Window.Height)
	// Window minimums are in pixels; a cell-based front-end sets its own width.
	if opts.menuWidth == 0 {
		comp.SetMinSize(shell.Window.MinWidth, shell.Window.MinHeight)
	}

	a := &app{
		store:      store,
		shell:      shell,
		conns:      conns,
		server:     server,
		events:     router.NewBroadcast(),
		layout:     comp,
		restart:    &relauncher{},
		routerDone: make(chan struct{}),
	}
	a.router = router.New(router.Deps{
		Connections: conns,
		Server:      server,
		Login:       adminer.NewClient(loginTimeout),
		Content:     region,
		Dialog:      dialog,
		Compositor:  comp,
		Verify:      phpserver.VerifyExecutable,
		Relaunch:    a.restart.Request,
	}, a.events)
	server.OnStateChange(a.router.ServerStateChanged)
	return a, nil
}

// start runs the router and launches the PHP server in the background. The
// returned context ends when the shell should shut down.
func (a *app) start(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	a.restart.cancel = cancel

	go func() {
		defer close(a.routerDone)
		if err := a.router.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error(subsystem, err, "router stopped")
		}
	}()
	go func() {
		if err := a.server.Start(ctx); err != nil {
			logging.Error(subsystem, err, "start php server")
		}
	}()
	return ctx
}

// shutdown stops the router and the PHP server, then relaunches if asked to.
func (a *app) shutdown() error {
	if a.restart.cancel != nil {
		a.restart.cancel()
		<-a.routerDone
	}
	if err := a.server.Stop(); err != nil {
		logging.Error(subsystem, err, "stop php server")
	}
	if a.restart.Requested() {
		logging.Info(subsystem, "relaunching")
		return restartSelf()
	}
	return nil
}

func setupLogging(root *rootOptions, toFile bool, stderr io.Writer) (io.Writer, func(), error) {
	level := logging.LevelInfo
	if root.debug {
		level = logging.LevelDebug
	}
	if !toFile {
		logging.Init(level, stderr)
		return stderr, func() {}, nil
	}
	dir, err := config.Dir()
	if err != nil {
		return nil, nil, err
	}
	if root.configPath != "" {
		dir = filepath.Dir(root.configPath)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := logging.OpenFile(level, filepath.Join(dir, logFileName))
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
