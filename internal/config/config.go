package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/thatjpcsguy/eventalloc/internal/catalog"
	"github.com/thatjpcsguy/eventalloc/internal/venue"
)

// EnvPrefix prefixes every environment override, e.g. EVENTALLOC_CATALOG_PATH
const EnvPrefix = "EVENTALLOC_"

// Config represents the eventalloc configuration
type Config struct {
	// Catalog settings
	CatalogPath   string `env:"CATALOG_PATH"`
	CatalogFormat string `env:"CATALOG_FORMAT"`
	RegistryPath  string `env:"REGISTRY_PATH"`
	TrafficModel  string `env:"TRAFFIC_MODEL"`

	// Output settings
	LogLevel string `env:"LOG_LEVEL"`
	NoColor  bool   `env:"NO_COLOR"`

	// SSH settings
	SSHKeyPath string `env:"SSH_KEY_PATH"`

	// Hooks (fallback if hook files don't exist)
	HooksDir           string `env:"HOOKS_DIR"`
	PostAllocateScript string `env:"POST_ALLOCATE_SCRIPT"`
	PostRemoveScript   string `env:"POST_REMOVE_SCRIPT"`

	home string
}

// Load reads the configuration for the current directory and process
// environment
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return LoadFrom(home, ".", Environ(os.Environ()))
}

// LoadFrom layers, lowest priority first: defaults, <home>/.eventalloc/config,
// <dir>/.eventalloc.config, <dir>/.eventalloc.config.local, <dir>/.env and
// finally EVENTALLOC_* variables in environ. Missing files are skipped.
func LoadFrom(home, dir string, environ map[string]string) (*Config, error) {
	cfg := &Config{
		// Set defaults
		CatalogPath:   "venues.txt",
		CatalogFormat: string(catalog.FormatAuto),
		TrafficModel:  string(venue.ModelFixed),
		LogLevel:      "warn",
		HooksDir:      filepath.Join(".eventalloc", "hooks"),
		home:          home,
	}
	if home != "" {
		cfg.RegistryPath = filepath.Join(home, ".eventalloc", "catalog.db")
	}

	files := []string{
		filepath.Join(dir, ".eventalloc.config"),
		filepath.Join(dir, ".eventalloc.config.local"),
	}
	if home != "" {
		files = append([]string{filepath.Join(home, ".eventalloc", "config")}, files...)
	}
	for _, path := range files {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := loadConfigFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	environ, err := withDotEnv(filepath.Join(dir, ".env"), environ)
	if err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.expandVariables(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Environ converts os.Environ output to a map
func Environ(pairs []string) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}

// withDotEnv adds the variables of a .env file that environ doesn't already set
func withDotEnv(path string, environ map[string]string) (map[string]string, error) {
	merged := make(map[string]string, len(environ))
	for k, v := range environ {
		merged[k] = v
	}
	if _, err := os.Stat(path); err != nil {
		return merged, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	for k, v := range values {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return merged, nil
}

// loadConfigFile parses a bash-style config file
func loadConfigFile(filename string, cfg *Config) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	// Regex to match KEY="value" or KEY=value
	re := regexp.MustCompile(`^([A-Z_]+)=(.*)$`)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		matches := re.FindStringSubmatch(line)
		if matches == nil {
			continue
		}

		key := matches[1]
		value := strings.Trim(matches[2], `"'`)

		switch key {
		case "CATALOG_PATH":
			cfg.CatalogPath = value
		case "CATALOG_FORMAT":
			cfg.CatalogFormat = value
		case "REGISTRY_PATH":
			cfg.RegistryPath = value
		case "TRAFFIC_MODEL":
			cfg.TrafficModel = value
		case "LOG_LEVEL":
			cfg.LogLevel = value
		case "NO_COLOR":
			cfg.NoColor = value != "" && value != "0" && !strings.EqualFold(value, "false")
		case "SSH_KEY_PATH":
			cfg.SSHKeyPath = value
		case "HOOKS_DIR":
			cfg.HooksDir = value
		case "POST_ALLOCATE_SCRIPT":
			cfg.PostAllocateScript = value
		case "POST_REMOVE_SCRIPT":
			cfg.PostRemoveScript = value
		}
	}

	return scanner.Err()
}

// expandVariables expands tildes in local paths
func (c *Config) expandVariables() error {
	for _, p := range []*string{&c.CatalogPath, &c.RegistryPath, &c.SSHKeyPath, &c.HooksDir} {
		if !strings.HasPrefix(*p, "~") {
			continue
		}
		if c.home == "" {
			return fmt.Errorf("failed to expand ~ in %s: no home directory", *p)
		}
		*p = strings.Replace(*p, "~", c.home, 1)
	}
	return nil
}

// Validate reports every invalid setting
func (c *Config) Validate() error {
	var err error
	if c.CatalogPath == "" {
		err = multierr.Append(err, fmt.Errorf("CATALOG_PATH is required"))
	}
	if _, e := catalog.ParseFormat(c.CatalogFormat); e != nil {
		err = multierr.Append(err, e)
	}
	if _, e := venue.ParseModel(c.TrafficModel); e != nil {
		err = multierr.Append(err, e)
	}
	if _, e := zapcore.ParseLevel(c.LogLevel); e != nil {
		err = multierr.Append(err, fmt.Errorf("invalid log level: %s", c.LogLevel))
	}

	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Model returns the configured default traffic model
func (c *Config) Model() venue.Model {
	m, err := venue.ParseModel(c.TrafficModel)
	if err != nil {
		return venue.ModelFixed
	}
	return m
}

// Format returns the configured catalog format
func (c *Config) Format() catalog.Format {
	f, err := catalog.ParseFormat(c.CatalogFormat)
	if err != nil {
		return catalog.FormatAuto
	}
	return f
}
