package ws

import (
	"craftage.ai/internal/protocol"
	"craftage.ai/internal/sim/catalogs"
)

type recipeGroup struct {
	Category catalogs.Category    `json:"category"`
	Label    string               `json:"label"`
	Recipes  []catalogs.RecipeDef `json:"recipes"`
}

// catalogMsgs renders every table a client needs to display recipes and
// vitals. Recipes are grouped by category in display order.
func catalogMsgs(cats *catalogs.Catalogs) []protocol.CatalogMsg {
	var groups []recipeGroup
	for _, cat := range cats.Categories() {
		if cat == catalogs.CategoryAll {
			continue
		}
		groups = append(groups, recipeGroup{
			Category: cat,
			Label:    catalogs.CategoryLabel(cat),
			Recipes:  cats.RecipesByCategory(cat),
		})
	}
	items := make([]catalogs.ItemDef, 0, len(cats.Items.Palette))
	for _, id := range cats.Items.Palette {
		items = append(items, cats.Items.Defs[id])
	}

	msg := func(name, digest string, data any) protocol.CatalogMsg {
		return protocol.CatalogMsg{
			Type:            protocol.TypeCatalog,
			ProtocolVersion: protocol.Version,
			Name:            name,
			Digest:          digest,
			Data:            data,
		}
	}
	return []protocol.CatalogMsg{
		msg("ages", cats.Ages.Digest, cats.Ages.Names),
		msg("resources", cats.Resources.Digest, cats.ResourceList()),
		msg("items", cats.Items.Digest, items),
		msg("recipes", cats.Recipes.Digest, groups),
		msg("consumables", cats.Consumables.Digest, cats.ConsumableList()),
		msg("tools", cats.Tools.Digest, cats.ToolList()),
	}
}

func catalogDigests(cats *catalogs.Catalogs) protocol.CatalogDigests {
	return protocol.CatalogDigests{
		ResourcesDigest:   cats.Resources.Digest,
		ItemsDigest:       cats.Items.Digest,
		RecipesDigest:     cats.Recipes.Digest,
		ConsumablesDigest: cats.Consumables.Digest,
		ToolsDigest:       cats.Tools.Digest,
		AgesDigest:        cats.Ages.Digest,
	}
}
