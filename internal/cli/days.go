package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"habitmap/internal/blocks"
	"habitmap/internal/heatmap"
	"habitmap/internal/render"
	heatmapview "habitmap/internal/tui/heatmap"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

var bold = color.New(color.Bold)

func addDays(topLevel *cobra.Command, g *globalOptions) {
	o := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "days [note.md...]",
		Short: "List the aggregated day records behind heatmap blocks",
		Example: `
habitmap days dashboards/reading.md --block 0
habitmap days -e value_field:pages -e search_path:#reading`,
		RunE: func(cmd *cobra.Command, args []string) error {
			containers, results, err := o.run(cmd.Context(), g, args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i, res := range results {
				if i > 0 {
					fmt.Fprintln(w)
				}
				writeDays(w, heatmapview.New(containers[i]).Title(), res)
			}
			return nil
		},
	}

	addRenderArgs(cmd, o)
	topLevel.AddCommand(cmd)
}

func writeDays(w io.Writer, title string, res render.Result) {
	fmt.Fprintln(w, bold.Sprint(title))
	if res.Failed() {
		fmt.Fprintf(w, "Heatmap error: %v\n", res.Err)
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("DATE"), bold.Sprint("VALUE"), bold.Sprint("ENTRIES"), bold.Sprint("NOTES"))
	for _, date := range res.Dataset.Dates() {
		rec, _ := res.Dataset.Get(date)
		names := make([]string, len(rec.Entries))
		for i, e := range rec.Entries {
			names[i] = e.Label
		}
		tbl.AddRow(date, formatValue(rec.AggregatedValue), len(rec.Entries), strings.Join(names, ", "))
	}
	tbl.RightAlign(1)
	fmt.Fprintln(w, tbl)
	fmt.Fprintln(w, heatmapview.StatsLine(res.Stats))
}

func addBlocks(topLevel *cobra.Command, g *globalOptions) {
	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "List the heatmap-habit blocks found in the vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			containers, err := blocks.Discover(cmd.Context(), g.vault())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(containers) == 0 {
				fmt.Fprintf(w, "No %s blocks found\n", blocks.Language)
				return nil
			}

			defaults := g.cfg.HeatmapDefaults()
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow(bold.Sprint("NOTE"), bold.Sprint("LINE"), bold.Sprint("VIEW"), bold.Sprint("SEARCH"))
			for _, c := range containers {
				view, search := "invalid", ""
				if cfg, err := heatmap.ParseConfig(c.Source, defaults); err == nil {
					view, search = string(cfg.ViewType), cfg.SearchPath
				}
				tbl.AddRow(relToVaults(c.Note, g.cfg.Vaults), c.Line, view, search)
			}
			tbl.RightAlign(1)
			fmt.Fprintln(w, tbl)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func relToVaults(path string, vaults []string) string {
	for _, v := range vaults {
		abs, err := filepath.Abs(v)
		if err != nil {
			continue
		}
		if rel, err := filepath.Rel(abs, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return path
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
