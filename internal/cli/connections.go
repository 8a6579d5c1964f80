package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/eledminer/internal/config"
	"github.com/baaaaaaaka/eledminer/internal/connections"
)

func openConnections(root *rootOptions) (*connections.Store, error) {
	store, err := config.NewStore(root.configPath)
	if err != nil {
		return nil, err
	}
	return connections.New(store), nil
}

func newConnectionsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "connections",
		Aliases: []string{"conn"},
		Short:   "Manage saved database connections",
	}
	cmd.AddCommand(
		newConnectionsListCmd(root),
		newConnectionsAddCmd(root),
		newConnectionsRemoveCmd(root),
	)
	return cmd
}

func newConnectionsListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved connections, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conns, err := openConnections(root)
			if err != nil {
				return err
			}
			list, err := conns.List()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No saved connections.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tDRIVER\tTARGET")
			for _, c := range list {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Driver, connectionTarget(c))
			}
			return w.Flush()
		},
	}
}

func newConnectionsAddCmd(root *rootOptions) *cobra.Command {
	var (
		driver string
		c      config.Connection
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a new connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, ok := config.ParseDriver(driver)
			if !ok {
				return fmt.Errorf("unknown driver %q", driver)
			}
			c.Driver = d
			if d.Kind() == config.FileBased && c.Filepath == "" {
				return fmt.Errorf("driver %s needs --file", d)
			}

			conns, err := openConnections(root)
			if err != nil {
				return err
			}
			saved, err := conns.Save(c)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved connection %q (%s)\n", saved.Name, saved.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&driver, "driver", "mysql", "Adminer driver (mysql, pgsql, sqlite, sqlite2, oracle, mssql, mongo, elastic)")
	cmd.Flags().StringVar(&c.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&c.Hostname, "host", "localhost", "Database host")
	cmd.Flags().IntVar(&c.Port, "port", 0, "Database port (0: driver default)")
	cmd.Flags().StringVar(&c.Username, "username", "", "Database user")
	cmd.Flags().StringVar(&c.Password, "password", "", "Database password (stored in plain text)")
	cmd.Flags().StringVar(&c.Filepath, "file", "", "Database file for sqlite drivers")
	return cmd
}

func newConnectionsRemoveCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id|name>",
		Short: "Delete a saved connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conns, err := openConnections(root)
			if err != nil {
				return err
			}
			c, err := conns.Find(args[0])
			if err != nil {
				return err
			}
			if err := conns.Remove(c.ID); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed connection %q (%s)\n", c.Name, c.ID)
			return nil
		},
	}
}

func connectionTarget(c config.Connection) string {
	if c.Driver.Kind() == config.FileBased {
		return c.Filepath
	}
	target := c.Hostname
	if c.Port > 0 {
		target = fmt.Sprintf("%s:%d", c.Hostname, c.Port)
	}
	if c.Username != "" {
		target = c.Username + "@" + target
	}
	return target
}
