package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thatjpcsguy/eventalloc/internal/registry"
)

// NewImportCmd creates the import command
func NewImportCmd(a *app) *cobra.Command {
	var registryPath string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <source>",
		Short: "Import a catalog into the registry",
		Long: `Validates a catalog and stores it in the SQLite catalog registry, replacing
the catalog stored there. The source is a local file or user@host:path.

Sessions use the stored catalog with --catalog registry:<path>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			out := cmd.OutOrStdout()

			cat, err := a.resolver().Resolve(cmd.Context(), source)
			if err != nil {
				return err
			}

			green := color.New(color.FgGreen).SprintFunc()
			if dryRun {
				fmt.Fprintf(out, "%s Catalog is valid: %d venues, %d corridors (dry run, nothing written)\n",
					green("✅"), len(cat.Venues), len(cat.Corridors()))
				return nil
			}

			path := registryPath
			if path == "" {
				path = a.cfg.RegistryPath
			}
			if path == "" {
				if path, err = registry.DefaultPath(); err != nil {
					return err
				}
			}

			reg, err := registry.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open registry: %w", err)
			}
			defer func() { _ = reg.Close() }()

			summary, err := reg.SaveCatalog(cmd.Context(), cat, source)
			if err != nil {
				return fmt.Errorf("failed to import catalog: %w", err)
			}

			fmt.Fprintf(out, "%s Imported %d venues and %d corridors into %s\n",
				green("✅"), summary.Venues, summary.Corridors, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", "", "Registry database (defaults to REGISTRY_PATH)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the catalog without writing it")

	return cmd
}

// NewRegistryCmd creates the registry command
func NewRegistryCmd(a *app) *cobra.Command {
	var registryPath string

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Show the catalog stored in the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := registryPath
			if path == "" {
				path = a.cfg.RegistryPath
			}
			if path == "" {
				var err error
				if path, err = registry.DefaultPath(); err != nil {
					return err
				}
			}

			reg, err := registry.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open registry: %w", err)
			}
			defer func() { _ = reg.Close() }()

			summary, err := reg.Summary(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read registry %s: %w", path, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Registry:  %s\n", path)
			fmt.Fprintf(out, "Source:    %s\n", summary.Source)
			fmt.Fprintf(out, "Imported:  %s\n", summary.ImportedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Venues:    %d\n", summary.Venues)
			fmt.Fprintf(out, "Corridors: %d\n", summary.Corridors)
			return nil
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", "", "Registry database (defaults to REGISTRY_PATH)")

	return cmd
}
