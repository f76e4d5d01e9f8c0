package catalogs

import (
	"sort"

	"github.com/agnivade/levenshtein"

	"craftage.ai/internal/sim/ruleerr"
	"craftage.ai/internal/sim/world/kernel/model"
)

type Table string

const (
	TableResources   Table = "resources"
	TableItems       Table = "items"
	TableRecipes     Table = "recipes"
	TableConsumables Table = "consumables"
	TableTools       Table = "tools"
)

// Get is the generic lookup. The returned entry is one of ResourceDef,
// ItemDef, RecipeDef, ConsumableDef or ToolBonusDef.
func (c *Catalogs) Get(table Table, key string) (any, error) {
	var (
		v  any
		ok bool
	)
	switch table {
	case TableResources:
		v, ok = c.Resources.ByID[key]
	case TableItems:
		v, ok = c.Items.Defs[key]
	case TableRecipes:
		v, ok = c.Recipes.ByID[key]
	case TableConsumables:
		v, ok = c.Consumables.ByID[key]
	case TableTools:
		v, ok = c.Tools.ByTool[key]
	default:
		return nil, &ruleerr.UnknownKeyError{Table: "tables", Key: string(table)}
	}
	if !ok {
		return nil, &ruleerr.UnknownKeyError{Table: string(table), Key: key, Hint: c.suggest(table, key)}
	}
	return v, nil
}

func (c *Catalogs) Resource(id string) (ResourceDef, error) {
	r, ok := c.Resources.ByID[id]
	if !ok {
		return ResourceDef{}, &ruleerr.UnknownKeyError{Table: string(TableResources), Key: id, Hint: c.suggest(TableResources, id)}
	}
	return r, nil
}

func (c *Catalogs) Item(id string) (ItemDef, error) {
	d, ok := c.Items.Defs[id]
	if !ok {
		return ItemDef{}, ruleerr.UnknownResource(id, c.suggest(TableItems, id))
	}
	return d, nil
}

func (c *Catalogs) HasItem(id string) bool {
	_, ok := c.Items.Defs[id]
	return ok
}

func (c *Catalogs) Recipe(id string) (RecipeDef, error) {
	r, ok := c.Recipes.ByID[id]
	if !ok {
		return RecipeDef{}, ruleerr.UnknownRecipe(id, c.suggest(TableRecipes, id))
	}
	return r, nil
}

func (c *Catalogs) Consumable(id string) (ConsumableDef, error) {
	d, ok := c.Consumables.ByID[id]
	if !ok {
		return ConsumableDef{}, ruleerr.UnknownConsumable(id, c.suggest(TableConsumables, id))
	}
	return d, nil
}

func (c *Catalogs) ToolBonus(tool string) (ToolBonusDef, bool) {
	t, ok := c.Tools.ByTool[tool]
	return t, ok
}

// SuggestItem returns the closest known inventory key, or "".
func (c *Catalogs) SuggestItem(key string) string { return c.suggest(TableItems, key) }

func (c *Catalogs) suggest(table Table, key string) string {
	var keys []string
	switch table {
	case TableResources:
		keys = sortedKeys(c.Resources.ByID)
	case TableItems:
		keys = c.Items.Palette
	case TableRecipes:
		keys = sortedKeys(c.Recipes.ByID)
	case TableConsumables:
		keys = sortedKeys(c.Consumables.ByID)
	case TableTools:
		keys = sortedKeys(c.Tools.ByTool)
	}
	best, bestDist := "", 0
	for _, k := range keys {
		d := levenshtein.ComputeDistance(key, k)
		if d > suggestLimit(len(k)) {
			continue
		}
		if best == "" || d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// Categories lists recipe filters in display order, starting with "all".
func (c *Catalogs) Categories() []Category {
	return []Category{CategoryAll, CategoryTools, CategoryWeapons, CategoryBuildings}
}

func CategoryLabel(cat Category) string { return categoryLabels[cat] }

// RecipesByCategory returns recipes ordered by (age, id). CategoryAll returns every recipe.
func (c *Catalogs) RecipesByCategory(cat Category) []RecipeDef {
	out := make([]RecipeDef, 0, len(c.Recipes.ByID))
	for _, r := range c.Recipes.ByID {
		if cat == CategoryAll || r.Category == cat {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Age != out[j].Age {
			return out[i].Age < out[j].Age
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (c *Catalogs) ConsumableList() []ConsumableDef {
	out := make([]ConsumableDef, 0, len(c.Consumables.ByID))
	for _, id := range sortedKeys(c.Consumables.ByID) {
		out = append(out, c.Consumables.ByID[id])
	}
	return out
}

func (c *Catalogs) ResourceList() []ResourceDef {
	out := make([]ResourceDef, 0, len(c.Resources.ByID))
	for _, id := range sortedKeys(c.Resources.ByID) {
		out = append(out, c.Resources.ByID[id])
	}
	return out
}

func (c *Catalogs) ToolList() []ToolBonusDef {
	out := make([]ToolBonusDef, 0, len(c.Tools.ByTool))
	for _, id := range sortedKeys(c.Tools.ByTool) {
		out = append(out, c.Tools.ByTool[id])
	}
	return out
}

func (c *Catalogs) AgeCount() int { return len(c.Ages.Names) }

func (c *Catalogs) AgeName(i int) string {
	if i < 0 || i >= len(c.Ages.Names) {
		return ""
	}
	return c.Ages.Names[i]
}

// InitialInventory returns a spawn inventory with every known key at 0.
func (c *Catalogs) InitialInventory() model.Inventory {
	inv := make(model.Inventory, len(c.Items.Palette))
	for _, id := range c.Items.Palette {
		inv[id] = 0
	}
	return inv
}

// GatherYield is the amount credited for harvesting nodeID once, with the
// best applicable tool bonus found in inv. Tool bonuses do not stack.
func (c *Catalogs) GatherYield(nodeID string, inv model.Inventory) (item string, amount int, err error) {
	r, err := c.Resource(nodeID)
	if err != nil {
		return "", 0, err
	}
	mult := 1
	for _, t := range c.Tools.ByTool {
		if inv[t.Tool] > 0 && t.Affects(r.Drops) && t.Multiplier > mult {
			mult = t.Multiplier
		}
	}
	return r.Drops, r.Yield * mult, nil
}
