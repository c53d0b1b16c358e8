// Package main implements the edition CLI for operating on stored editions
// without going through the HTTP server.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pep299/american-standard/internal/application"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries the application across a single command invocation
type cli struct {
	app *application.Application
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "edition",
		Short: "Operate The American Standard daily edition",
		Long: `edition generates, inspects and prunes daily editions directly against
the configured store. Configuration is read from the environment, .env and
the optional EDITION_CONFIG file, the same way the server reads it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app, err := application.Load(cmd.Context())
			if err != nil {
				return err
			}
			c.app = app
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}

	root.AddCommand(
		c.generateCmd(),
		c.showCmd(),
		c.articleCmd(),
		c.deleteCmd(),
		c.archiveCmd(),
		c.reactionsCmd(),
	)
	return root
}
