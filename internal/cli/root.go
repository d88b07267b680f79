package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/famtools/internal/config"
	"github.com/matzehuels/famtools/pkg/observability"
)

// setup runs before every command. It applies --verbose, loads the config
// file, routes library instrumentation to the logger, and attaches the
// logger to the command context.
// A config file that fails to load aborts the command.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
	}

	path, err := config.Path()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("Loaded config", "path", path, "portal", cfg.PortalURL, "cache", cfg.Cache.Backend)

	hooks := newLogHooks(c.Logger)
	observability.SetSyncHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}
