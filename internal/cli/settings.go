package cli

import (
	"fmt"

	"habitmap/internal/config"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

func addSettings(topLevel *cobra.Command, g *globalOptions) {
	var store *config.Store

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the persisted settings",
		// the settings file is opened directly so a broken value can be fixed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := g.configPath
			if path == "" {
				var err error
				if path, err = config.ConfigPath(); err != nil {
					return err
				}
			}
			var err error
			store, err = config.Open(path)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSettings(cmd, store)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSettings(cmd, store)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "get KEY",
		Short:     "Print one setting",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := store.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Validate and persist one setting",
		Example: `
habitmap settings set aggregation average
habitmap settings set vaults ~/notes:~/journal
habitmap settings set color_intensity_max 10`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (%s)\n", args[0], args[1], store.Path())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), store.Path())
			return nil
		},
	})

	topLevel.AddCommand(cmd)
}

func listSettings(cmd *cobra.Command, store *config.Store) error {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("KEY"), bold.Sprint("VALUE"))
	for _, k := range config.Keys() {
		v, err := store.Get(k)
		if err != nil {
			return err
		}
		tbl.AddRow(k, v)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tbl)
	return nil
}
