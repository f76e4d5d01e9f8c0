package world

import (
	"fmt"

	"craftage.ai/internal/persistence/snapshot"
	"craftage.ai/internal/sim/ruleerr"
	"craftage.ai/internal/sim/world/kernel/model"
)

// ImportSnapshot replaces every player with the snapshot contents. The world's
// tick resumes from the snapshot tick. Nothing changes if the snapshot is invalid.
//
// This must be called only when the world is stopped or from the world loop goroutine.
func (w *World) ImportSnapshot(s snapshot.SnapshotV1) error {
	if s.Header.Version != snapshot.Version {
		return fmt.Errorf("snapshot: unsupported version %d", s.Header.Version)
	}
	players := make(map[string]*model.Player, len(s.Players))
	for i, ps := range s.Players {
		p, err := w.restorePlayer(ps)
		if err != nil {
			return fmt.Errorf("snapshot: player %d (%s): %w", i, ps.ID, err)
		}
		if _, dup := players[p.ID]; dup {
			return fmt.Errorf("snapshot: duplicate player id %s", p.ID)
		}
		players[p.ID] = p
	}
	seq := s.NextPlayerSeq
	for id := range players {
		var n uint64
		if _, err := fmt.Sscanf(id, "P%d", &n); err == nil && n > seq {
			seq = n
		}
	}

	w.players = players
	w.staminaDue = map[string]float64{}
	w.nextPlayerNum.Store(seq)
	w.simulated = s.SimulatedSecs
	w.tick.Store(s.Header.Tick)
	return nil
}

// restorePlayer rebuilds a player over the current vocabulary: missing keys
// are seeded at 0, unknown keys and out-of-range values are rejected.
func (w *World) restorePlayer(ps snapshot.PlayerV1) (*model.Player, error) {
	if ps.ID == "" {
		return nil, fmt.Errorf("empty id")
	}
	if ps.Age < 0 || ps.Age >= w.catalogs.AgeCount() {
		return nil, fmt.Errorf("age %d out of range", ps.Age)
	}
	inv := w.catalogs.InitialInventory()
	for k, n := range ps.Inventory {
		if !w.catalogs.HasItem(k) {
			return nil, ruleerr.UnknownResource(k, w.catalogs.SuggestItem(k))
		}
		if n < 0 {
			return nil, fmt.Errorf("negative quantity %d for %s", n, k)
		}
		inv[k] = n
	}
	v := model.Vitals{Health: ps.Health, Hunger: ps.Hunger, Stamina: ps.Stamina}
	if !v.InRange() {
		return nil, fmt.Errorf("vitals out of range: %+v", v)
	}
	return &model.Player{
		ID:        ps.ID,
		Name:      ps.Name,
		Age:       ps.Age,
		Inventory: inv,
		Vitals:    v,
		Starving:  ps.Starving,
	}, nil
}
