package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thatjpcsguy/eventalloc/internal/console"
)

// NewShellCmd creates the shell command
func NewShellCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive allocation session",
		Long: `Starts an allocation session over the configured catalog.

When stdin is a terminal the session has line editing and a prompt;
otherwise commands are read from stdin one per line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.newEngine(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			c := console.New(engine, console.Options{
				Out:    out,
				Hooks:  a.hookRunner(out),
				Logger: a.logger,
			})

			if cmd.InOrStdin() == os.Stdin && console.IsTerminal(os.Stdin) {
				return c.Interactive(cmd.Context(), os.Stdin, out)
			}

			if err := c.Run(cmd.Context(), cmd.InOrStdin(), console.RunOptions{}); err != nil {
				return fmt.Errorf("session ended: %w", err)
			}
			return nil
		},
	}

	return cmd
}
