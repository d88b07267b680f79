package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/famtools/pkg/integrations/modportal"
)

// versionsOpts holds the command-line flags for the versions command.
type versionsOpts struct {
	refresh bool
	noCache bool
}

// versionsCommand creates the versions command.
func (c *CLI) versionsCommand() *cobra.Command {
	var opts versionsOpts

	cmd := &cobra.Command{
		Use:   "versions <mod>",
		Short: "List the released versions of a mod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVersions(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached portal metadata")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the portal metadata cache")

	return cmd
}

func (c *CLI) runVersions(ctx context.Context, name string, opts *versionsOpts) error {
	portal, backend, err := c.newPortal(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer backend.Close()

	spinner := newSpinnerWithContext(ctx, "Querying mod portal...")
	spinner.Start()
	info, err := portal.FetchMod(ctx, name, opts.refresh)
	spinner.Stop()
	if err != nil {
		return err
	}

	title := info.Name
	if info.Title != "" && info.Title != info.Name {
		title += " " + StyleDim.Render("("+info.Title+")")
	}
	printInfo("%s", StyleTitle.Render(title))
	if info.Owner != "" {
		printKeyValue("Owner", info.Owner)
	}
	if len(info.Releases) == 0 {
		printWarning("No releases")
		return nil
	}
	printKeyValue("Latest", info.Latest())
	printNewline()
	fmt.Fprintln(stdout, renderVersions(info))
	return nil
}

// renderVersions renders the releases of info as a table, newest first.
func renderVersions(info *modportal.ModInfo) string {
	versions := info.Versions()
	slices.Reverse(versions)

	rows := make([][]string, 0, len(versions))
	for _, v := range versions {
		r, _ := info.Release(v)
		released := "—"
		if !r.ReleasedAt.IsZero() {
			released = r.ReleasedAt.Format("2006-01-02")
		}
		factorio := r.FactorioVersion
		if factorio == "" {
			factorio = "—"
		}
		rows = append(rows, []string{v, factorio, released, shortSHA(r.SHA1)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Version", "Factorio", "Released", "SHA-1").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case row == 0:
				return cell.Foreground(colorGreen).Bold(true)
			case col == 3:
				return cell.Foreground(colorDim)
			}
			return cell
		})

	return t.Render()
}

func shortSHA(sha string) string {
	if len(sha) > 10 {
		return sha[:10]
	}
	return sha
}
