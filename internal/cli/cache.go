package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/famtools/internal/config"
	"github.com/matzehuels/famtools/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the portal response cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached portal responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := c.openCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer backend.Close()

			clearer, ok := backend.(cache.Clearer)
			if !ok {
				printInfo("The %s cache backend cannot be cleared", c.cfg.Cache.Backend)
				return nil
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared the %s cache", c.cfg.Cache.Backend)
			printDetail("%s", cacheLocation(c.cfg))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where cached responses are stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(stdout, cacheLocation(c.cfg))
			return nil
		},
	}
}

// cacheLocation describes where the configured backend keeps its entries:
// a directory for the file backend, a Redis address otherwise.
func cacheLocation(cfg *config.Config) string {
	switch cfg.Cache.Backend {
	case cache.BackendRedis:
		return "redis://" + cfg.Cache.RedisAddr + "/" + cache.DefaultRedisPrefix + "*"
	case cache.BackendNone:
		return "(caching disabled)"
	}
	dir, err := config.CacheDir()
	if err != nil {
		return "(unavailable: " + err.Error() + ")"
	}
	return dir
}
