package main

import (
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"craftage.ai/configs"
	"craftage.ai/internal/sim/catalogs"
	"craftage.ai/internal/sim/tuning"
)

type rules struct {
	cats *catalogs.Catalogs
	tune tuning.Tuning
}

func newRootCmd() *cobra.Command {
	var configDir string
	r := &rules{}

	root := &cobra.Command{
		Use:           "craftctl",
		Short:         "Inspect craftage rule tables and dry-run rule resolution",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if configDir == "" {
				if r.cats, err = catalogs.LoadFS(configs.FS); err != nil {
					return err
				}
				r.tune, err = tuning.LoadFS(configs.FS, "tuning.yaml")
				return err
			}
			if r.cats, err = catalogs.Load(configDir); err != nil {
				return err
			}
			r.tune, err = tuning.Load(filepath.Join(configDir, "tuning.yaml"))
			return err
		},
	}
	root.PersistentFlags().StringVar(&configDir, "configs", "", "config directory (default: bundled tables)")

	root.AddCommand(
		newRecipesCmd(r),
		newConsumablesCmd(r),
		newResourcesCmd(r),
		newCraftCmd(r),
		newConsumeCmd(r),
		newDecayCmd(r),
		newSnapshotCmd(),
		newAuditCmd(),
	)
	return root
}

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	failColor    = color.New(color.FgRed, color.Bold)
)

func newTable(out io.Writer, header ...string) *tablewriter.Table {
	return tablewriter.NewTable(out, tablewriter.WithHeader(header))
}
