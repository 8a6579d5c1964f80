package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/eledminer/internal/phpserver"
)

var (
	verifyPHP  = phpserver.VerifyExecutable
	phpVersion = phpserver.ExecutableVersion
)

func newPHPCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "php",
		Short: "Inspect the PHP executable",
	}
	cmd.AddCommand(newPHPVerifyCmd(root))
	return cmd
}

func newPHPVerifyCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [path]",
		Short: "Check that a PHP 7 or 8 executable is usable (default: the configured one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				conns, err := openConnections(root)
				if err != nil {
					return err
				}
				s, err := conns.LoadSettings()
				if err != nil {
					return err
				}
				path = s.PHPExecutable
			}

			ctx := cmdContext(cmd)
			if !verifyPHP(ctx, path) {
				return fmt.Errorf("%s is not a usable PHP 7 or 8 executable", path)
			}
			v, err := phpVersion(ctx, path)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, v)
			return nil
		},
	}
}
