package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSettingsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the PHP server settings",
	}
	cmd.AddCommand(newSettingsShowCmd(root), newSettingsSetCmd(root))
	return cmd
}

func newSettingsShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conns, err := openConnections(root)
			if err != nil {
				return err
			}
			s, err := conns.LoadSettings()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "port: %d\n", s.Port)
			_, _ = fmt.Fprintf(out, "theme: %s\n", s.Theme)
			_, _ = fmt.Fprintf(out, "php: %s\n", s.PHPExecutable)
			return nil
		},
	}
}

func newSettingsSetCmd(root *rootOptions) *cobra.Command {
	var (
		port  int
		theme string
		php   string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change settings; they apply the next time the shell starts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if !flags.Changed("port") && !flags.Changed("theme") && !flags.Changed("php") {
				return fmt.Errorf("nothing to set (use --port, --theme or --php)")
			}
			conns, err := openConnections(root)
			if err != nil {
				return err
			}
			s, err := conns.LoadSettings()
			if err != nil {
				return err
			}
			if flags.Changed("port") {
				s.Port = port
			}
			if flags.Changed("theme") {
				s.Theme = theme
			}
			if flags.Changed("php") {
				s.PHPExecutable = php
			}
			saved, err := conns.SaveSettings(s)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved settings (port %d, theme %s, php %s)\n", saved.Port, saved.Theme, saved.PHPExecutable)
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "PHP server port")
	cmd.Flags().StringVar(&theme, "theme", "", "Adminer theme name")
	cmd.Flags().StringVar(&php, "php", "", "PHP executable path")
	return cmd
}
