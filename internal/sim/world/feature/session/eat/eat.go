package eat

import (
	"math"

	"craftage.ai/internal/sim/catalogs"
	"craftage.ai/internal/sim/world/feature/economy/inventory"
	"craftage.ai/internal/sim/world/kernel/model"
)

// Delta is the change actually applied to each vital, after clamping.
type Delta struct {
	Health  float64 `json:"health"`
	Hunger  float64 `json:"hunger"`
	Stamina float64 `json:"stamina"`
}

func (d *Delta) add(name string, x float64) {
	switch name {
	case model.VitalHealth:
		d.Health += x
	case model.VitalHunger:
		d.Hunger += x
	case model.VitalStamina:
		d.Stamina += x
	}
}

// ApplyGains adds each gain to v. A vital never goes above 100 and never drops
// below its current value, so negative gains have no effect.
func ApplyGains(v model.Vitals, gains map[string]float64) (model.Vitals, Delta) {
	next := v
	var d Delta
	for name, gain := range gains {
		if !model.IsVital(name) {
			continue
		}
		cur := next.Get(name)
		val := math.Min(model.VitalMax, math.Max(cur, cur+gain))
		next.Set(name, val)
		d.add(name, val-cur)
	}
	return next, d
}

type Resolver struct {
	cats   *catalogs.Catalogs
	ledger *inventory.Ledger
}

func NewResolver(cats *catalogs.Catalogs) *Resolver {
	return &Resolver{cats: cats, ledger: inventory.NewLedger(cats)}
}

type Result struct {
	ConsumableID string
	ResourceKey  string
	Delta        Delta
}

// Consume spends one unit of the consumable's resource and applies its gains
// to vitals. On error neither inv nor vitals change.
func (r *Resolver) Consume(consumableID string, inv model.Inventory, vitals *model.Vitals) (Result, error) {
	def, err := r.cats.Consumable(consumableID)
	if err != nil {
		return Result{}, err
	}
	if err := r.ledger.Debit(inv, map[string]int{def.ResourceKey: 1}); err != nil {
		return Result{}, err
	}
	next, d := ApplyGains(vitals.Clamp(), def.Gains)
	*vitals = next
	return Result{ConsumableID: def.ID, ResourceKey: def.ResourceKey, Delta: d}, nil
}
