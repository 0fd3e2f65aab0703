package cli

import (
	"context"
	"fmt"
	"os"

	"habitmap/internal/blocks"
	"habitmap/internal/config"
	"habitmap/internal/logs"
	"habitmap/internal/notes"
	"habitmap/internal/render"
	"habitmap/internal/tui"
	"habitmap/internal/watch"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// Run executes the command line and returns the process exit code.
func Run(args []string) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// globalOptions are the persistent flags plus the config they resolve to
type globalOptions struct {
	vaults     []string
	debug      bool
	configPath string

	cfg *config.Config
}

func (g *globalOptions) flags() config.CLIFlags {
	return config.CLIFlags{Vaults: g.vaults, Debug: g.debug, ConfigPath: g.configPath}
}

// load resolves the configuration and starts logging.
func (g *globalOptions) load() error {
	cfg, err := config.Load(g.flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	g.cfg = cfg

	if err := logs.Initialize(cfg.LogDir, cfg.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not initialize logger: %v\n", err)
	}
	return nil
}

func (g *globalOptions) vault() *notes.Vault {
	return notes.NewVault(g.cfg.Vaults...)
}

// NewRootCommand builds the habitmap command tree
func NewRootCommand() *cobra.Command {
	g := &globalOptions{}
	var exprs []string

	cmd := &cobra.Command{
		Use:   "habitmap [note.md...]",
		Short: "Habit heatmaps over a vault of markdown notes",
		Long: "habitmap scans a vault of markdown notes, reads a date and a value from each\n" +
			"note and draws calendar heatmaps for every ```heatmap-habit block.\n\n" +
			"Without arguments the interactive view shows every block in the vault.\n" +
			"Name notes to show only their blocks, or pass -e lines for an ad-hoc block.",
		Example: `
habitmap
habitmap -w ~/notes dashboards/reading.md
habitmap -e type:monthly -e value_field:pages`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logs.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), g, args, exprs)
		},
	}

	cmd.PersistentFlags().StringSliceVarP(&g.vaults, "vault", "w", nil, "Vault directories (comma-separated or repeated)")
	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Write debug output to debug.log")
	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Settings file (default ~/.config/habitmap/config.yaml)")
	addExprFlag(cmd, &exprs)

	addRender(cmd, g)
	addDays(cmd, g)
	addBlocks(cmd, g)
	addSettings(cmd, g)
	return cmd
}

func addExprFlag(cmd *cobra.Command, exprs *[]string) {
	cmd.Flags().StringArrayVarP(exprs, "expr", "e", nil, "Ad-hoc block line, e.g. -e type:monthly (repeatable)")
}

func runTUI(ctx context.Context, g *globalOptions, args, exprs []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	vault := g.vault()
	containers, err := resolveContainers(args, exprs, "")
	if err != nil {
		return err
	}
	discover := len(containers) == 0
	if discover {
		if containers, err = blocks.Discover(ctx, vault); err != nil {
			return fmt.Errorf("discover blocks: %w", err)
		}
	}

	if err := config.EnsureConfigFile(g.cfg.Path); err != nil {
		logs.Logger.Warnw("could not create config file", "path", g.cfg.Path, "error", err)
	}

	var watcher *watch.Watcher
	if w, err := watch.New(g.cfg.Path, g.cfg.Vaults, 0); err != nil {
		logs.Logger.Warnw("file watching disabled", "error", err)
	} else if err := w.Start(ctx); err != nil {
		logs.Logger.Warnw("file watching disabled", "error", err)
		w.Stop()
	} else {
		watcher = w
		defer w.Stop()
	}

	logs.Logger.Infow("starting TUI", "containers", len(containers), "discover", discover, "vaults", g.cfg.Vaults)
	app := tui.NewAppModel(tui.Options{
		Config:     g.cfg,
		Flags:      g.flags(),
		Vault:      vault,
		Containers: containers,
		Discover:   discover,
		Watcher:    watcher,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// pipeline builds a pipeline from the loaded settings.
func (g *globalOptions) pipeline() *render.Pipeline {
	return render.NewPipeline(g.vault(), g.cfg.RenderOptions())
}
