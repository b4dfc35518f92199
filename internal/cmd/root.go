package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thatjpcsguy/eventalloc/internal/allocator"
	"github.com/thatjpcsguy/eventalloc/internal/catalog"
	"github.com/thatjpcsguy/eventalloc/internal/config"
	"github.com/thatjpcsguy/eventalloc/internal/hooks"
	"github.com/thatjpcsguy/eventalloc/internal/logging"
	"github.com/thatjpcsguy/eventalloc/internal/registry"
	"github.com/thatjpcsguy/eventalloc/internal/remote"
)

// app carries the state shared by every subcommand once flags and config
// are resolved
type app struct {
	configDir string
	logLevel  string
	noColor   bool
	source    string
	format    string

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCmd creates the eventalloc command tree
func NewRootCmd(version string) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "eventalloc",
		Short: "Allocate events to venues without overloading traffic corridors",
		Long: `Eventalloc assigns events to venues from a fixed catalog while keeping the
traffic every allocation generates within the capacity of each corridor.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configDir, "config-dir", ".", "Directory holding .eventalloc.config and .env")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	flags.StringVarP(&a.source, "catalog", "c", "", "Catalog source: file, registry:<path> or user@host:path (overrides CATALOG_PATH)")
	flags.StringVar(&a.format, "format", "", "Catalog format: auto, text, yaml (overrides CATALOG_FORMAT)")

	rootCmd.AddCommand(NewShellCmd(a))
	rootCmd.AddCommand(NewRunCmd(a))
	rootCmd.AddCommand(NewVenuesCmd(a))
	rootCmd.AddCommand(NewImportCmd(a))
	rootCmd.AddCommand(NewRegistryCmd(a))
	rootCmd.AddCommand(NewHooksCmd(a))

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	cfg, err := config.LoadFrom(home, a.configDir, config.Environ(os.Environ()))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Flags beat config
	if a.source != "" {
		cfg.CatalogPath = a.source
	}
	if a.format != "" {
		cfg.CatalogFormat = a.format
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.noColor {
		cfg.NoColor = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.NoColor {
		color.NoColor = true
	}

	logger, err := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) resolver() *catalog.Resolver {
	return &catalog.Resolver{
		Format:  a.cfg.Format(),
		Options: catalog.Options{DefaultModel: a.cfg.Model()},
		OpenStore: func(path string) (catalog.Store, error) {
			return registry.Open(path)
		},
		Fetch: func(ctx context.Context, src remote.Source) ([]byte, error) {
			return remote.Fetch(ctx, src, a.cfg.SSHKeyPath)
		},
	}
}

// loadCatalog resolves the configured catalog source
func (a *app) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	cat, err := a.resolver().Resolve(ctx, a.cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("catalog loaded",
		zap.String("source", a.cfg.CatalogPath),
		zap.Int("venues", len(cat.Venues)),
		zap.Int("corridors", len(cat.Corridors())),
	)
	return cat, nil
}

// newEngine loads the catalog and starts an engine over it
func (a *app) newEngine(ctx context.Context) (*allocator.Engine, error) {
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	engine, err := allocator.New(cat.Venues, allocator.WithLogger(a.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}
	return engine, nil
}

func (a *app) hookRunner(out io.Writer) *hooks.Runner {
	return &hooks.Runner{
		Dir: a.cfg.HooksDir,
		Scripts: map[hooks.HookType]string{
			hooks.PostAllocate: a.cfg.PostAllocateScript,
			hooks.PostRemove:   a.cfg.PostRemoveScript,
		},
		Out: out,
	}
}
