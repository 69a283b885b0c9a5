package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/burrow/pkg/cache"
	"github.com/matzehuels/burrow/pkg/config"
	errs "github.com/matzehuels/burrow/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local answer and drawing cache",
		Long: `Cache inspects the file cache. Answers live under solve/ and SVG drawings
under render/; each kind ages out on its own TTL (cache.ttl and
cache.render_ttl in the config file).`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cacheStatsCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var (
		kind    string
		expired bool
	)
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached answers and drawings",
		Example: `  burrow cache clear
  burrow cache clear --kind render
  burrow cache clear --expired`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var kinds []string
			if kind != "" {
				if !slices.Contains(cache.Kinds, kind) {
					return errs.New(errs.ErrCodeInvalidInput, "unknown cache kind %q (want solve or render)", kind)
				}
				kinds = []string{kind}
			}

			fc, err := c.localCache(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if fc == nil {
				printInfo(out, "Cache is empty")
				return nil
			}

			verb, remove := "Cleared", fc.Clear
			if expired {
				verb, remove = "Pruned", fc.Prune
			}
			count, err := remove(kinds...)
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess(out, "%s %d cached entries", verb, count)
			printDetail(out, "Directory: %s", fc.Dir())
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only this kind of entry: solve or render")
	cmd.Flags().BoolVar(&expired, "expired", false, "only entries past their TTL")
	return cmd
}

// cacheStatsCommand creates the "cache stats" subcommand.
func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how many entries of each kind are cached",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := c.localCache(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if fc == nil {
				printInfo(out, "Cache is empty")
				return nil
			}

			usage, err := fc.Usage()
			if err != nil {
				return fmt.Errorf("read cache: %w", err)
			}
			for _, kind := range cache.Kinds {
				u := usage[kind]
				printKeyValue(out, kind, fmt.Sprintf("%d entries, %s", u.Entries, humanize.Bytes(uint64(u.Bytes))))
				if u.Expired > 0 {
					printDetail(out, "%d expired", u.Expired)
				}
			}
			if n := usage[cache.KindSolve].Expired + usage[cache.KindRender].Expired; n > 0 {
				printNextStep(out, "Drop expired entries", "burrow cache clear --expired")
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			dir, err := fileCacheDir(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// localCache opens the configured file cache with its per-kind TTLs. It
// returns nil when the directory does not exist yet.
func (c *CLI) localCache(ctx context.Context) (*cache.FileCache, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	dir, err := fileCacheDir(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	cfg.Cache.Dir = dir
	cc, err := cfg.OpenCache(ctx, dir)
	if err != nil {
		return nil, err
	}
	return cc.(*cache.FileCache), nil
}

// fileCacheDir returns the directory of the file cache. Remote backends are
// managed with their own tools.
func fileCacheDir(cfg *config.Config) (string, error) {
	if cfg.Cache.Backend != config.BackendFile {
		return "", errs.New(errs.ErrCodeUnsupported,
			"the %s cache backend has no local directory", cfg.Cache.Backend)
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}
