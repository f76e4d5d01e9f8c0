package world

import "craftage.ai/internal/sim/tuning"

type WorldConfig struct {
	ID string

	// Tuning supplies tick rate, spawn stats, decay rates and stamina costs.
	Tuning tuning.Tuning

	// SnapshotEveryTicks pushes a snapshot to the sink every N ticks (0 disables).
	SnapshotEveryTicks int

	// ManualTicks disables the Run ticker; ticks are driven by RequestStep.
	ManualTicks bool
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.Tuning.TickRateHz <= 0 {
		def := tuning.Defaults()
		c.Tuning.TickRateHz = def.TickRateHz
	}
	if c.SnapshotEveryTicks < 0 {
		c.SnapshotEveryTicks = 0
	}
}

// SnapshotTicks converts the tuning save interval to a tick count.
func SnapshotTicks(t tuning.Tuning) int {
	if t.World.SaveIntervalMs <= 0 || t.TickRateHz <= 0 {
		return 0
	}
	n := t.World.SaveIntervalMs * t.TickRateHz / 1000
	if n < 1 {
		n = 1
	}
	return n
}
