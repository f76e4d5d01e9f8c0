package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"craftage.ai/internal/sim/ruleerr"
	"craftage.ai/internal/sim/world/feature/session/eat"
	"craftage.ai/internal/sim/world/feature/survival/runtime"
	"craftage.ai/internal/sim/world/feature/work/craft"
	"craftage.ai/internal/sim/world/kernel/model"
)

func newCraftCmd(r *rules) *cobra.Command {
	var (
		invFlag string
		age     int
	)
	cmd := &cobra.Command{
		Use:   "craft <recipe>",
		Short: "Dry-run a recipe against an inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := parseInventory(r.cats, invFlag)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			res, err := craft.NewResolver(r.cats).Craft(args[0], inv, age)
			if err != nil {
				failColor.Fprintf(out, "%s: %v\n", ruleerr.Code(err), err)
				return err
			}
			successColor.Fprintf(out, "crafted %s\n", res.RecipeID)
			fmt.Fprintf(out, "consumed: %s\n", formatCounts(res.Consumed))
			fmt.Fprintf(out, "produced: %s\n", formatCounts(res.Produced))
			return printInventory(out, inv)
		},
	}
	cmd.Flags().StringVar(&invFlag, "inv", "", "inventory as key=qty,key=qty")
	cmd.Flags().IntVar(&age, "age", 0, "current age index")
	return cmd
}

type vitalsFlags struct {
	health, hunger, stamina float64
}

func (f *vitalsFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.health, "health", model.VitalMax, "starting health")
	cmd.Flags().Float64Var(&f.hunger, "hunger", model.VitalMax, "starting hunger")
	cmd.Flags().Float64Var(&f.stamina, "stamina", model.VitalMax, "starting stamina")
}

func (f *vitalsFlags) vitals() model.Vitals {
	return model.Vitals{Health: f.health, Hunger: f.hunger, Stamina: f.stamina}
}

func newConsumeCmd(r *rules) *cobra.Command {
	var (
		invFlag string
		vf      vitalsFlags
	)
	cmd := &cobra.Command{
		Use:   "consume <consumable>",
		Short: "Dry-run eating a consumable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := parseInventory(r.cats, invFlag)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			v := vf.vitals()
			res, err := eat.NewResolver(r.cats).Consume(args[0], inv, &v)
			if err != nil {
				failColor.Fprintf(out, "%s: %v\n", ruleerr.Code(err), err)
				return err
			}
			successColor.Fprintf(out, "consumed 1 %s\n", res.ResourceKey)
			fmt.Fprintf(out, "delta: health %+.2f hunger %+.2f stamina %+.2f\n", res.Delta.Health, res.Delta.Hunger, res.Delta.Stamina)
			return printVitals(out, v)
		},
	}
	cmd.Flags().StringVar(&invFlag, "inv", "", "inventory as key=qty,key=qty")
	vf.register(cmd)
	return cmd
}

func newDecayCmd(r *rules) *cobra.Command {
	var (
		dt    float64
		cost  float64
		steps int
		vf    vitalsFlags
	)
	cmd := &cobra.Command{
		Use:   "decay",
		Short: "Simulate vitals decay over time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be >= 1")
			}
			out := cmd.OutOrStdout()
			sim := runtime.NewSimulator(r.tune.DecayRates)
			v := vf.vitals().Clamp()

			t := newTable(out, "Time (s)", "Health", "Hunger", "Stamina", "State")
			elapsed := 0.0
			for i := 0; i < steps; i++ {
				v = sim.Advance(v, dt, cost)
				if dt > 0 {
					elapsed += dt
				}
				_ = t.Append([]string{
					fmt.Sprintf("%.1f", elapsed),
					fmt.Sprintf("%.2f", v.Health),
					fmt.Sprintf("%.2f", v.Hunger),
					fmt.Sprintf("%.2f", v.Stamina),
					vitalState(v),
				})
			}
			return t.Render()
		},
	}
	cmd.Flags().Float64Var(&dt, "dt", 1, "seconds per step")
	cmd.Flags().Float64Var(&cost, "stamina-cost", 0, "stamina spent each step before regen")
	cmd.Flags().IntVar(&steps, "steps", 1, "number of steps")
	vf.register(cmd)
	return cmd
}

func vitalState(v model.Vitals) string {
	switch {
	case runtime.Downed(v):
		return "DOWNED"
	case runtime.Starving(v):
		return "STARVING"
	}
	return "OK"
}
