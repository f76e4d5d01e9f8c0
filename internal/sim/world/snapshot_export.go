package world

import "craftage.ai/internal/persistence/snapshot"

// ExportSnapshot copies the committed state. It must be called only when the
// world is stopped or from the world loop goroutine.
func (w *World) ExportSnapshot() snapshot.SnapshotV1 {
	snap := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			WorldID: w.cfg.ID,
			Tick:    w.tick.Load(),
		},
		TickRateHz:    w.cfg.Tuning.TickRateHz,
		ItemsDigest:   w.catalogs.Items.Digest,
		RecipesDigest: w.catalogs.Recipes.Digest,
		NextPlayerSeq: w.nextPlayerNum.Load(),
		SimulatedSecs: w.simulated,
	}
	for _, id := range w.sortedPlayerIDs() {
		p := w.players[id]
		snap.Players = append(snap.Players, snapshot.PlayerV1{
			ID:        p.ID,
			Name:      p.Name,
			Age:       p.Age,
			Inventory: p.Inventory.Clone(),
			Health:    p.Vitals.Health,
			Hunger:    p.Vitals.Hunger,
			Stamina:   p.Vitals.Stamina,
			Starving:  p.Starving,
		})
	}
	return snap
}
