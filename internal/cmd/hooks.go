package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thatjpcsguy/eventalloc/internal/hooks"
	"github.com/thatjpcsguy/eventalloc/internal/venue"
)

// NewHooksCmd creates the hooks command
func NewHooksCmd(a *app) *cobra.Command {
	var eventName string
	var capacity int
	var venueName string

	cmd := &cobra.Command{
		Use:   "hooks <hook-name>",
		Short: "Manually run an allocation hook",
		Long: `Manually execute an allocation hook with sample event details.

Available hooks:
  post-allocate  - Runs after an event is allocated to a venue
  post-remove    - Runs after an allocation is removed

A file hook at <HOOKS_DIR>/<hook-name>.sh takes priority over the
POST_ALLOCATE_SCRIPT / POST_REMOVE_SCRIPT config values.

Examples:
  eventalloc hooks post-allocate --event "Jazz Night" --capacity 80 --venue "Hall A"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var hookType hooks.HookType
			switch args[0] {
			case string(hooks.PostAllocate):
				hookType = hooks.PostAllocate
			case string(hooks.PostRemove):
				hookType = hooks.PostRemove
			default:
				return fmt.Errorf("invalid hook name: %s. Valid options: post-allocate, post-remove", args[0])
			}

			event, err := venue.NewEvent(eventName, capacity)
			if err != nil {
				return fmt.Errorf("invalid event: %w", err)
			}
			env := hooks.Env(event, nil)
			if venueName != "" {
				env["VENUE_NAME"] = venueName
			}

			return a.hookRunner(cmd.OutOrStdout()).Execute(cmd.Context(), hookType, env)
		},
	}

	cmd.Flags().StringVar(&eventName, "event", "Sample Event", "Event name passed to the hook")
	cmd.Flags().IntVar(&capacity, "capacity", 0, "Event capacity passed to the hook")
	cmd.Flags().StringVar(&venueName, "venue", "", "Venue name passed to the hook")

	return cmd
}
