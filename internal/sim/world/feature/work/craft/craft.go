// Package craft validates and applies recipes against a player's inventory.
package craft

import (
	"craftage.ai/internal/sim/catalogs"
	"craftage.ai/internal/sim/ruleerr"
	"craftage.ai/internal/sim/world/feature/economy/inventory"
	"craftage.ai/internal/sim/world/kernel/model"
)

type Resolver struct {
	cats   *catalogs.Catalogs
	ledger *inventory.Ledger
}

func NewResolver(cats *catalogs.Catalogs) *Resolver {
	return &Resolver{cats: cats, ledger: inventory.NewLedger(cats)}
}

type Result struct {
	RecipeID string
	Consumed map[string]int
	Produced map[string]int
}

// Craft applies recipeID to inv. Either the whole recipe is applied or inv is
// left as it was.
func (r *Resolver) Craft(recipeID string, inv model.Inventory, currentAge int) (Result, error) {
	rec, err := r.cats.Recipe(recipeID)
	if err != nil {
		return Result{}, err
	}
	if rec.Age > currentAge {
		return Result{}, &ruleerr.AgeLockedError{RecipeID: rec.ID, Required: rec.Age, Current: currentAge}
	}
	if short := inventory.Shortfall(inv, rec.Requires); short != nil {
		return Result{}, &ruleerr.InsufficientResourcesError{Shortfall: short}
	}
	if err := r.ledger.Transfer(inv, rec.Requires, rec.Produces); err != nil {
		return Result{}, err
	}
	return Result{
		RecipeID: rec.ID,
		Consumed: copyCounts(rec.Requires),
		Produced: copyCounts(rec.Produces),
	}, nil
}

type Status string

const (
	StatusReady   Status = "READY"
	StatusMissing Status = "MISSING"
	StatusLocked  Status = "LOCKED"
)

type Option struct {
	Recipe    catalogs.RecipeDef
	Status    Status
	Shortfall map[string]int
}

// Options lists the recipes of a category with what the player can do about each.
func (r *Resolver) Options(inv model.Inventory, currentAge int, cat catalogs.Category) []Option {
	recipes := r.cats.RecipesByCategory(cat)
	out := make([]Option, 0, len(recipes))
	for _, rec := range recipes {
		opt := Option{Recipe: rec, Status: StatusReady}
		if rec.Age > currentAge {
			opt.Status = StatusLocked
		} else if short := inventory.Shortfall(inv, rec.Requires); short != nil {
			opt.Status = StatusMissing
			opt.Shortfall = short
		}
		out = append(out, opt)
	}
	return out
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
