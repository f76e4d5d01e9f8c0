package main

import (
	"fmt"

	"github.com/spf13/cobra"

	persistlog "craftage.ai/internal/persistence/log"
	"craftage.ai/internal/persistence/snapshot"
)

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <path>",
		Short: "Print the players stored in a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := snapshot.ReadSnapshot(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			titleColor.Fprintf(out, "world=%s tick=%d players=%d\n", snap.Header.WorldID, snap.Header.Tick, len(snap.Players))
			t := newTable(out, "Player", "Name", "Age", "Health", "Hunger", "Stamina", "Inventory")
			for _, p := range snap.Players {
				_ = t.Append([]string{
					p.ID,
					p.Name,
					fmt.Sprintf("%d", p.Age),
					fmt.Sprintf("%.2f", p.Health),
					fmt.Sprintf("%.2f", p.Hunger),
					fmt.Sprintf("%.2f", p.Stamina),
					formatCounts(p.Inventory),
				})
			}
			return t.Render()
		},
	}
}

func newAuditCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "audit <file.jsonl.zst>",
		Short: "Print entries from an audit log file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := persistlog.ReadAudit(args[0])
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout(), "Tick", "Player", "Kind", "Ref", "Detail")
			for _, e := range entries {
				if kind != "" && e.Kind != kind {
					continue
				}
				detail := e.Code
				switch {
				case len(e.Shortfall) > 0:
					detail += " missing " + formatCounts(e.Shortfall)
				case len(e.Produced) > 0:
					detail = formatCounts(e.Consumed) + " -> " + formatCounts(e.Produced)
				case e.Delta != nil:
					detail = fmt.Sprintf("health %+.2f hunger %+.2f stamina %+.2f", e.Delta.Health, e.Delta.Hunger, e.Delta.Stamina)
				}
				_ = t.Append([]string{fmt.Sprintf("%d", e.Tick), e.PlayerID, e.Kind, e.Ref, detail})
			}
			return t.Render()
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only show entries of this kind")
	return cmd
}
