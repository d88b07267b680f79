package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/famtools/internal/watch"
	"github.com/matzehuels/famtools/pkg/errors"
	"github.com/matzehuels/famtools/pkg/factorio"
	"github.com/matzehuels/famtools/pkg/modlist"
	"github.com/matzehuels/famtools/pkg/reconcile"
)

// syncOpts holds the command-line flags for the sync command.
type syncOpts struct {
	input   string // game log to read mods from
	output  string // mods directory
	dryRun  bool   // report without downloading or writing
	watch   bool   // re-sync whenever the log changes
	noCache bool   // bypass the portal metadata cache
}

// syncCommand creates the sync command.
func (c *CLI) syncCommand() *cobra.Command {
	var opts syncOpts

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Enable exactly the mods a game session loaded",
		Long: `Read the mods a game session loaded from its log, download any missing
archives from the mod portal, and rewrite mod-list.json in the mods directory
so those mods, and only those, are enabled in load order.

Third-party mods are pinned to the version found in the log. Official mods
(base, elevated-rails, quality, space-age) are enabled without a version;
the game version they share is printed at the end.

Examples:
  famtools sync                                   # current log, default mods dir
  famtools sync -i server.log -o /srv/factorio/mods
  famtools sync --dry-run                         # show what would change
  famtools sync --watch                           # re-sync after every game start`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSync(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "game log to read (default: <config-dir>/factorio-current.log)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "mods directory (default: <config-dir>/mods)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "check archives without downloading or writing mod-list.json")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-sync whenever the log changes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the portal metadata cache")

	return cmd
}

func (c *CLI) runSync(ctx context.Context, opts *syncOpts) error {
	input, err := c.logPath(opts.input)
	if err != nil {
		return err
	}
	modsDir, err := c.modsDir(opts.output)
	if err != nil {
		return err
	}

	portal, backend, err := c.newPortal(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer backend.Close()

	if !opts.dryRun {
		if err := os.MkdirAll(modsDir, 0o755); err != nil {
			return fmt.Errorf("create mods directory: %w", err)
		}
	}
	dir := c.newModDir(modsDir, portal, newLogDownloads(c.Logger))
	driver := reconcile.New(dir, modlist.NewFileStore(modsDir))

	if !opts.watch {
		return c.syncOnce(ctx, driver, input, modsDir, opts.dryRun)
	}

	w, err := watch.New(watch.Config{
		File: input,
		OnChange: func(ctx context.Context) error {
			return c.syncOnce(ctx, driver, input, modsDir, opts.dryRun)
		},
		OnError: func(err error) { c.Logger.Error("Sync failed", "err", errors.UserMessage(err)) },
	})
	if err != nil {
		return err
	}

	if err := c.syncOnce(ctx, driver, input, modsDir, opts.dryRun); err != nil {
		c.Logger.Error("Sync failed", "err", errors.UserMessage(err))
	}
	printInfo("Watching %s (Ctrl+C to stop)", input)
	return w.Run(ctx)
}

// logPath resolves the log to read: the -i flag, then the current log in
// the Factorio config dir.
func (c *CLI) logPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	dir, err := c.factorioDir()
	if err != nil {
		return "", err
	}
	return factorio.CurrentLog(dir), nil
}

// syncOnce performs one reconciliation run and reports its result.
func (c *CLI) syncOnce(ctx context.Context, driver *reconcile.Driver, input, modsDir string, dryRun bool) error {
	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	prog := newProgress(c.Logger)
	res, err := driver.Run(ctx, f, reconcile.Options{DryRun: dryRun})
	if err != nil {
		c.Logger.Debug("Sync stopped", "state", res.State)
		return err
	}
	prog.done(fmt.Sprintf("Reconciled %d mods", res.Inventory.Len()))

	printSyncResult(res, modsDir)
	return nil
}

func printSyncResult(res *reconcile.Result, modsDir string) {
	for _, a := range res.Missing {
		if res.DryRun {
			printDetail("would download %s", a)
		} else {
			printDetail("downloaded %s", a)
		}
	}

	enabled := res.Inventory.Len()
	if res.DryRun {
		printInfo("Dry run: %d mods would be enabled, %d archives missing", enabled, len(res.Missing))
	} else {
		printSuccess("Enabled %d mods (%d already present, %d downloaded)", enabled, len(res.Present), len(res.Missing))
		printFile(modlist.NewFileStore(modsDir).Path)
	}

	if res.EngineVersion != "" {
		printNextStep("Make sure the game runs version", res.EngineVersion)
	}
}
