package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thatjpcsguy/eventalloc/internal/catalog"
)

// NewVenuesCmd creates the venues command
func NewVenuesCmd(a *app) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "venues",
		Short: "List the venue catalog",
		Long:  `Lists every venue in the configured catalog with its base traffic per corridor.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asYAML {
				return catalog.WriteYAML(out, cat)
			}

			bold := color.New(color.Bold).SprintFunc()
			cyan := color.New(color.FgCyan).SprintFunc()

			fmt.Fprintln(out, bold("Venues"))
			fmt.Fprintln(out, "======")
			for i, v := range cat.Venues {
				fmt.Fprintf(out, "%2d. %s\n", i+1, cyan(v.Name()))
				fmt.Fprintf(out, "    Capacity: %d\n", v.HostingCapacity())
				fmt.Fprintf(out, "    Model:    %s\n", v.Model())
				base := v.BaseTraffic()
				for c := range base.CorridorsWithLoad() {
					fmt.Fprintf(out, "    %s: %d\n", c, base.LoadOn(c))
				}
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, bold("Corridors"))
			fmt.Fprintln(out, "=========")
			for _, c := range cat.Corridors() {
				fmt.Fprintf(out, "  %s (capacity %d)\n", c, c.Capacity())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the catalog in YAML catalog format")

	return cmd
}
