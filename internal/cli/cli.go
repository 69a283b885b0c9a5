// Package cli implements the burrow command-line interface.
//
// # Commands
//
//   - solve: find the cheapest way to sort a board
//   - render: draw a board as text, Graphviz DOT or SVG
//   - serve: run the HTTP solver service
//   - cache: inspect and clear the local answer cache
//
// All commands accept --config to load a TOML or YAML file and --verbose
// (-v) for debug logging. Loggers travel through context.Context.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/burrow/pkg/buildinfo"
	"github.com/matzehuels/burrow/pkg/cache"
	"github.com/matzehuels/burrow/pkg/config"
	"github.com/matzehuels/burrow/pkg/solver"
)

const (
	// appName names the cache directory.
	appName = "burrow"

	// configEnv points at a config file when --config is not given.
	configEnv = "BURROW_CONFIG"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	configPath string
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "burrow",
		Short: "Burrow sorts tokens into their rooms at the lowest cost",
		Long: `Burrow solves amphipod-style sorting puzzles: tokens of several types sit
in dead-end rooms off a shared corridor and must be moved, at a per-type cost
per step, until every room holds only its own type.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (TOML or YAML, default $"+configEnv+")")

	root.AddCommand(c.solveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// loadConfig reads --config, falling back to $BURROW_CONFIG and then to the
// built-in defaults.
func (c *CLI) loadConfig() (*config.Config, error) {
	path := c.configPath
	if path == "" {
		path = os.Getenv(configEnv)
	}
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", path, "cache", cfg.Cache.Backend)
	return cfg, nil
}

// newRunner creates a solver runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*solver.Runner, error) {
	cc, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" && cfg.Cache.Backend != config.BackendRedis {
		// Redis prefixes keys itself.
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.Prefix)
	}
	r := solver.NewRunner(cc, keyer, c.Logger)
	r.TTL = cfg.Cache.TTL
	return r, nil
}

// newCache opens the configured cache. It returns nil when caching is off.
func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return nil, nil
	}
	dir, err := cacheDir()
	if err != nil && cfg.Cache.Backend == config.BackendFile && cfg.Cache.Dir == "" {
		return nil, nil
	}
	return cfg.OpenCache(ctx, dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/burrow/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// loggerKey carries the command logger through cobra's context.
type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger set by the root command, or
// log.Default() outside a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
