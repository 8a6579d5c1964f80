package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/eledminer/internal/tui"
)

// menuCells is the menu width of the terminal front-end, in cells.
const menuCells = 12

var runTUI = tui.Run

func newRunCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open the terminal front-end (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, root)
		},
	}
}

func runShell(cmd *cobra.Command, root *rootOptions) error {
	out, closeLog, err := setupLogging(root, true, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	prompt := tui.NewPrompt()
	a, err := newApp(root, appOptions{menuWidth: menuCells, dialog: prompt, output: out})
	if err != nil {
		return err
	}

	ctx := a.start(cmdContext(cmd))
	runErr := runTUI(ctx, tui.Options{
		Router:  a.router,
		Events:  a.events,
		Prompt:  prompt,
		Version: version,
	})
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	if err := a.shutdown(); err != nil {
		return err
	}
	return runErr
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
