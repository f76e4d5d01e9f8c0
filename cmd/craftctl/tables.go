package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"craftage.ai/internal/sim/catalogs"
	"craftage.ai/internal/sim/world/feature/work/craft"
)

func newRecipesCmd(r *rules) *cobra.Command {
	var (
		category string
		invFlag  string
		age      int
	)
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "List recipes, optionally with their status for a given inventory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := catalogs.Category(category)
			if catalogs.CategoryLabel(cat) == "" {
				return fmt.Errorf("unknown category %q", category)
			}
			inv, err := parseInventory(r.cats, invFlag)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			titleColor.Fprintf(out, "%s recipes\n", catalogs.CategoryLabel(cat))

			t := newTable(out, "Recipe", "Category", "Age", "Requires", "Produces", "Status", "Missing")
			for _, opt := range craft.NewResolver(r.cats).Options(inv, age, cat) {
				rec := opt.Recipe
				_ = t.Append([]string{
					rec.ID,
					string(rec.Category),
					fmt.Sprintf("%d %s", rec.Age, r.cats.AgeName(rec.Age)),
					formatCounts(rec.Requires),
					formatCounts(rec.Produces),
					string(opt.Status),
					formatCounts(opt.Shortfall),
				})
			}
			return t.Render()
		},
	}
	cmd.Flags().StringVar(&category, "category", string(catalogs.CategoryAll), "all, tools, weapons or buildings")
	cmd.Flags().StringVar(&invFlag, "inv", "", "inventory as key=qty,key=qty")
	cmd.Flags().IntVar(&age, "age", 0, "current age index")
	return cmd
}

func newConsumablesCmd(r *rules) *cobra.Command {
	return &cobra.Command{
		Use:   "consumables",
		Short: "List consumables and their vital gains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := newTable(cmd.OutOrStdout(), "Consumable", "Uses", "Gains", "Effect")
			for _, c := range r.cats.ConsumableList() {
				_ = t.Append([]string{c.ID, c.ResourceKey, formatGains(c.Gains), c.Effect})
			}
			return t.Render()
		},
	}
}

func newResourcesCmd(r *rules) *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List gatherable nodes and tool bonuses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			t := newTable(out, "Node", "Drops", "Yield")
			for _, res := range r.cats.ResourceList() {
				_ = t.Append([]string{res.ID, res.Drops, fmt.Sprintf("%d", res.Yield)})
			}
			if err := t.Render(); err != nil {
				return err
			}
			t = newTable(out, "Tool", "Multiplier", "Affects")
			for _, tb := range r.cats.ToolList() {
				_ = t.Append([]string{tb.Tool, fmt.Sprintf("x%d", tb.Multiplier), strings.Join(tb.Resources, ", ")})
			}
			return t.Render()
		},
	}
}
