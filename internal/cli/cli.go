// Package cli implements the famtools command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/famtools/internal/config"
	"github.com/matzehuels/famtools/pkg/buildinfo"
	"github.com/matzehuels/famtools/pkg/cache"
	"github.com/matzehuels/famtools/pkg/factorio"
	"github.com/matzehuels/famtools/pkg/integrations/modportal"
	"github.com/matzehuels/famtools/pkg/moddir"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "famtools"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	verbose   bool
	configDir string // -c flag: Factorio config dir
	cfg       *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "famtools manages Factorio mods",
		Long: `famtools keeps a Factorio mods directory in step with the game.

It reads the mods a game session loaded from factorio-current.log, downloads
any archives that are missing from the mod portal, and rewrites mod-list.json
so that exactly those mods are enabled, in the game's load order.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&c.configDir, "config-dir", "c", "", "Factorio config directory (default: platform default)")

	// Register all subcommands
	root.AddCommand(c.syncCommand())
	root.AddCommand(c.dlCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.outdatedCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Paths
// =============================================================================

// factorioDir resolves the Factorio config dir: the -c flag, then
// factorio_dir from the config file, then the platform default.
func (c *CLI) factorioDir() (string, error) {
	if c.configDir != "" {
		return c.configDir, nil
	}
	if c.cfg.FactorioDir != "" {
		return c.cfg.FactorioDir, nil
	}
	return factorio.DefaultConfigDir()
}

// modsDir resolves the mods directory: override (an -o flag), then mods_dir
// from the config file, then <factorio dir>/mods.
func (c *CLI) modsDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if c.cfg.ModsDir != "" {
		return c.cfg.ModsDir, nil
	}
	dir, err := c.factorioDir()
	if err != nil {
		return "", err
	}
	return factorio.ModsDir(dir), nil
}

// =============================================================================
// Collaborator Factories
// =============================================================================

// openCache opens the configured cache backend, or a NullCache if noCache is
// set.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := config.CacheDir()
	if err != nil {
		c.Logger.Warnf("Caching disabled: %v", err)
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, c.cfg.CacheOptions(dir))
}

// newPortal creates a portal client backed by the configured cache. The
// caller must close the returned cache.
func (c *CLI) newPortal(ctx context.Context, noCache bool) (*modportal.Client, cache.Cache, error) {
	backend, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, nil, err
	}
	return modportal.NewClientWithURL(backend, c.cfg.Cache.TTL.Duration, c.cfg.PortalURL), backend, nil
}

// newModDir opens a mods directory that downloads through portal.
func (c *CLI) newModDir(path string, portal moddir.Portal, progress moddir.Progress) *moddir.Dir {
	return moddir.New(path, moddir.Config{
		Portal:      portal,
		Credentials: c.credentials,
		SkipVerify:  !c.cfg.Download.Verify,
		Progress:    progress,
	})
}

// credentials reads the portal login from player-data.json. It is only
// called when an archive has to be downloaded.
func (c *CLI) credentials() (factorio.Credentials, error) {
	dir, err := c.factorioDir()
	if err != nil {
		return factorio.Credentials{}, err
	}
	return factorio.LoadCredentials(dir)
}
