package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// dlOpts holds the command-line flags for the dl command.
type dlOpts struct {
	version string // release to fetch; latest if empty
	output  string // target directory
	force   bool   // download even if already installed
	noCache bool   // bypass the portal metadata cache
}

// dlCommand creates the dl command for downloading a single mod archive.
func (c *CLI) dlCommand() *cobra.Command {
	var opts dlOpts

	cmd := &cobra.Command{
		Use:   "dl <mod>",
		Short: "Download a mod archive from the mod portal",
		Long: `Download a mod archive from the mod portal into the mods directory.

The archive is saved as <mod>_<version>.zip and its SHA-1 is checked against
the portal's. Downloading requires the service-username and service-token
the game stores in player-data.json after you log in to the portal once.

Examples:
  famtools dl flib                  # latest release
  famtools dl flib -V 0.15.0        # specific release
  famtools dl Krastorio2 -o ./mods  # other directory`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDownload(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.version, "version", "V", "", "release to download (default: latest)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "target directory (default: <config-dir>/mods)")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "download even if the archive is already installed")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the portal metadata cache")

	return cmd
}

func (c *CLI) runDownload(ctx context.Context, name string, opts *dlOpts) error {
	dirPath, err := c.modsDir(opts.output)
	if err != nil {
		return err
	}

	portal, backend, err := c.newPortal(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer backend.Close()

	version := opts.version
	if version == "" {
		info, err := portal.FetchMod(ctx, name, false)
		if err != nil {
			return err
		}
		rel, err := info.ResolveVersion("")
		if err != nil {
			return err
		}
		version = rel.Version
	}

	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dirPath, err)
	}
	dir := c.newModDir(dirPath, portal, newDownloadProgress(c.Logger, os.Stderr))

	if !opts.force {
		present, err := dir.Exists(ctx, name, version)
		if err != nil {
			return err
		}
		if present {
			printInfo("%s %s is already installed", name, version)
			return nil
		}
	}

	path, err := dir.Fetch(ctx, name, version)
	if err != nil {
		return err
	}
	printSuccess("Downloaded %s %s", name, version)
	printFile(path)
	return nil
}

