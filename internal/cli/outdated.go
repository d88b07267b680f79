package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/famtools/pkg/integrations"
	"github.com/matzehuels/famtools/pkg/integrations/modportal"
	"github.com/matzehuels/famtools/pkg/moddir"
	"github.com/matzehuels/famtools/pkg/mods"
)

// portalConcurrency bounds concurrent portal lookups in outdated.
const portalConcurrency = 8

// outdatedOpts holds the command-line flags for the outdated command.
type outdatedOpts struct {
	output  string
	refresh bool
	noCache bool
}

// modStatus classifies an installed mod against the portal.
type modStatus int

const (
	statusCurrent modStatus = iota
	statusOutdated
	statusUnlisted // not on the portal, e.g. a mod under development
)

func (s modStatus) String() string {
	switch s {
	case statusOutdated:
		return "update available"
	case statusUnlisted:
		return "not on portal"
	default:
		return "up to date"
	}
}

// outdatedRow is one installed mod and its latest release.
type outdatedRow struct {
	Name      string
	Installed string
	Latest    string
	Status    modStatus
}

// modFetcher is the subset of the portal client outdated needs.
type modFetcher interface {
	FetchMod(ctx context.Context, name string, refresh bool) (*modportal.ModInfo, error)
}

// outdatedCommand creates the outdated command.
func (c *CLI) outdatedCommand() *cobra.Command {
	var opts outdatedOpts

	cmd := &cobra.Command{
		Use:   "outdated",
		Short: "Compare installed mods with their latest release",
		Long: `List the third-party mods in the mods directory and the latest release of
each on the mod portal. When several versions of a mod are installed, the
highest one is compared.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runOutdated(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "mods directory (default: <config-dir>/mods)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached portal metadata")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the portal metadata cache")

	return cmd
}

func (c *CLI) runOutdated(ctx context.Context, opts *outdatedOpts) error {
	dirPath, err := c.modsDir(opts.output)
	if err != nil {
		return err
	}
	installed, err := moddir.New(dirPath, moddir.Config{}).Installed()
	if err != nil {
		return fmt.Errorf("list mods: %w", err)
	}

	portal, backend, err := c.newPortal(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer backend.Close()

	spinner := newSpinnerWithContext(ctx, "Querying mod portal...")
	spinner.Start()
	rows, err := findOutdated(ctx, portal, installed, opts.refresh)
	spinner.Stop()
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		printInfo("No third-party mods in %s", dirPath)
		return nil
	}
	fmt.Fprintln(stdout, renderOutdated(rows))

	var outdated int
	for _, r := range rows {
		if r.Status == statusOutdated {
			outdated++
		}
	}
	if outdated == 0 {
		printSuccess("All %d mods are up to date", len(rows))
	} else {
		printWarning("%d of %d mods have updates", outdated, len(rows))
		printNextStep("Update one with", "famtools dl <mod>")
	}
	return nil
}

// findOutdated looks up the latest release of every installed third-party
// mod, querying the portal concurrently. Rows keep the order of installed.
func findOutdated(ctx context.Context, portal modFetcher, installed []moddir.Installed, refresh bool) ([]outdatedRow, error) {
	var rows []outdatedRow
	index := make(map[string]int)
	for _, m := range installed {
		if mods.IsOfficial(m.Name) {
			continue
		}
		if i, ok := index[m.Name]; ok {
			if mods.CompareVersions(m.Version, rows[i].Installed) > 0 {
				rows[i].Installed = m.Version
			}
			continue
		}
		index[m.Name] = len(rows)
		rows = append(rows, outdatedRow{Name: m.Name, Installed: m.Version})
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(portalConcurrency)
	for i := range rows {
		row := &rows[i]
		g.Go(func() error {
			info, err := portal.FetchMod(ctx, row.Name, refresh)
			if stderrors.Is(err, integrations.ErrNotFound) {
				row.Status = statusUnlisted
				return nil
			}
			if err != nil {
				return err
			}
			row.Latest = info.Latest()
			if row.Latest != "" && mods.CompareVersions(row.Latest, row.Installed) > 0 {
				row.Status = statusOutdated
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func renderOutdated(rows []outdatedRow) string {
	data := make([][]string, len(rows))
	for i, r := range rows {
		latest := r.Latest
		if latest == "" {
			latest = "—"
		}
		data[i] = []string{r.Name, r.Installed, latest, r.Status.String()}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Mod", "Installed", "Latest", "Status").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			switch rows[row].Status {
			case statusOutdated:
				if col >= 2 {
					return cell.Foreground(colorYellow)
				}
			case statusUnlisted:
				return cell.Foreground(colorDim)
			default:
				if col == 3 {
					return cell.Foreground(colorGreen)
				}
			}
			return cell
		})

	return t.Render()
}
