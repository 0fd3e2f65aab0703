package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"habitmap/internal/habit"
	"habitmap/internal/htmlout"
	"habitmap/internal/logs"
	"habitmap/internal/render"
	heatmapview "habitmap/internal/tui/heatmap"

	"github.com/spf13/cobra"
)

// renderOptions holds the flags shared by commands that run blocks
type renderOptions struct {
	selection blockSelection
	asOf      string
}

func addRenderArgs(cmd *cobra.Command, o *renderOptions) {
	addExprFlag(cmd, &o.selection.exprs)
	cmd.Flags().StringVar(&o.selection.blockFile, "block-file", "", "File holding a bare block body")
	cmd.Flags().IntVar(&o.selection.index, "block", -1, "Only the block at this position in each note (0-based)")
	cmd.Flags().StringVar(&o.asOf, "as-of", "", "Render as if today were this date (YYYY-MM-DD)")
}

// run resolves the blocks and renders each one in order.
func (o *renderOptions) run(ctx context.Context, g *globalOptions, args []string) ([]render.Container, []render.Result, error) {
	containers, err := o.selection.resolve(args)
	if err != nil {
		return nil, nil, err
	}
	if len(containers) == 0 {
		return nil, nil, fmt.Errorf("nothing to render: name a note, or pass -e or --block-file")
	}

	p := g.pipeline()
	if o.asOf != "" {
		day, err := time.Parse(habit.DateLayout, o.asOf)
		if err != nil {
			return nil, nil, fmt.Errorf("--as-of: %w", err)
		}
		p = p.WithClock(func() time.Time { return day })
	}

	reg := render.NewRegistry()
	for _, c := range containers {
		reg.Mount(c)
	}
	results := make([]render.Result, len(containers))
	for _, u := range reg.Refresh(ctx, p) {
		for i, c := range containers {
			if c.ID == u.ID {
				results[i] = u.Result
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return containers, results, nil
}

func addRender(topLevel *cobra.Command, g *globalOptions) {
	o := &renderOptions{}
	var format, out, title string
	var standalone bool

	cmd := &cobra.Command{
		Use:   "render [note.md...]",
		Short: "Render heatmap blocks to the terminal or to HTML",
		Example: `
habitmap render dashboards/reading.md
habitmap render -e type:monthly -e value_field:pages
habitmap render --block-file block.txt --format html --out heatmap.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			containers, results, err := o.run(cmd.Context(), g, args)
			if err != nil {
				return err
			}

			var write func(io.Writer) error
			switch format {
			case "ansi":
				write = func(w io.Writer) error { return writeANSI(w, containers, results) }
			case "html":
				opts := htmlout.Options{Title: title, Standalone: standalone || out != ""}
				write = func(w io.Writer) error { return htmlout.RenderAll(w, results, opts) }
			default:
				return fmt.Errorf("unknown format %q (want ansi or html)", format)
			}

			if out == "" {
				return write(cmd.OutOrStdout())
			}
			return writeFile(out, write)
		},
	}

	addRenderArgs(cmd, o)
	cmd.Flags().StringVarP(&format, "format", "f", "ansi", "Output format: ansi or html")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to a file instead of stdout")
	cmd.Flags().StringVar(&title, "title", "", "HTML page title")
	cmd.Flags().BoolVar(&standalone, "standalone", false, "Emit a full HTML document (implied by --out)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"ansi", "html"}, cobra.ShellCompDirectiveNoFileComp
	})

	topLevel.AddCommand(cmd)
}

// createOutput opens the --out destination
var createOutput = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// writeFile reports a failed close as well, since that is where buffered
// writes to the file can surface.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := createOutput(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeANSI(w io.Writer, containers []render.Container, results []render.Result) error {
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		title := heatmapview.New(containers[i]).Title()
		if _, err := fmt.Fprintln(w, bold.Sprint(title)); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, heatmapview.Render(res, "", 0)); err != nil {
			return err
		}
		if res.Failed() {
			logs.Logger.Warnw("block failed to render", "container", containers[i].ID, "error", res.Err)
		}
	}
	return nil
}
