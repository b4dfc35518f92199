package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thatjpcsguy/eventalloc/internal/console"
)

// NewRunCmd creates the run command
func NewRunCmd(a *app) *cobra.Command {
	var keepGoing bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a script of allocation commands",
		Long: `Runs console commands from a file ("-" reads stdin), one per line.

The run stops at the first failed command unless --keep-going is set, and
exits non-zero if any command failed.

Example script:
  add "Jazz Night" 80 "Hall A"
  add Market 40 3
  status`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open script: %w", err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}

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

			opts := console.RunOptions{Echo: !quiet, StopOnError: !keepGoing}
			if err := c.Run(cmd.Context(), in, opts); err != nil {
				return fmt.Errorf("failed to run script: %w", err)
			}

			if n := c.Failures(); n > 0 {
				return fmt.Errorf("%d command(s) failed", n)
			}
			green := color.New(color.FgGreen).SprintFunc()
			fmt.Fprintf(out, "%s Script completed\n", green("✅"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&keepGoing, "keep-going", "k", false, "Continue after a failed command")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not echo commands")

	return cmd
}
