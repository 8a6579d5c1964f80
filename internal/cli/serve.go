package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/eledminer/internal/bridge"
	"github.com/baaaaaaaka/eledminer/internal/phpserver"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the PHP server and the websocket bridge without a terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, root, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Bridge listen address (default: bridge.addr from the shell config)")
	return cmd
}

func runServe(cmd *cobra.Command, root *rootOptions, addr string) error {
	out, closeLog, err := setupLogging(root, false, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := newApp(root, appOptions{output: out})
	if err != nil {
		return err
	}
	if addr == "" {
		addr = a.shell.Bridge.Addr
	}

	sigCtx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx := a.start(sigCtx)

	b := bridge.New(a.router, a.events, a.serverHealth)
	bound, err := b.Start(addr)
	if err != nil {
		_ = a.shutdown()
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Bridge listening on ws://%s/ws\n", bound)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.Close(shutdownCtx); err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "close bridge: %v\n", err)
	}
	return a.shutdown()
}

type healthReport struct {
	State     string `json:"state"`
	BaseURL   string `json:"baseUrl"`
	Status    int    `json:"status,omitempty"`
	PoweredBy string `json:"poweredBy,omitempty"`
	Error     string `json:"error,omitempty"`
}

// serverHealth reports the manager state and, while running, probes the
// server over HTTP.
func (a *app) serverHealth(ctx context.Context) any {
	h := healthReport{State: string(a.server.State()), BaseURL: a.server.BaseURL()}
	if a.server.State() != phpserver.StateRunning {
		if err := a.server.LastError(); err != nil {
			h.Error = err.Error()
		}
		return h
	}
	probe, err := a.server.Check(ctx)
	h.Status, h.PoweredBy = probe.Status, probe.PoweredBy
	if err != nil {
		h.Error = err.Error()
	}
	return h
}
