package world

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"craftage.ai/internal/persistence/snapshot"
	"craftage.ai/internal/protocol"
	"craftage.ai/internal/sim/catalogs"
	"craftage.ai/internal/sim/tuning"
	"craftage.ai/internal/sim/world/feature/economy/inventory"
	"craftage.ai/internal/sim/world/feature/session/eat"
	survival "craftage.ai/internal/sim/world/feature/survival/runtime"
	"craftage.ai/internal/sim/world/feature/work/craft"
	"craftage.ai/internal/sim/world/kernel/model"
)

var ErrPlayerNotFound = errors.New("player not found")

// World hosts the rule engine for many players.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg      WorldConfig
	catalogs *catalogs.Catalogs

	ledger  *inventory.Ledger
	crafter *craft.Resolver
	eater   *eat.Resolver
	vitals  *survival.Simulator

	tick          atomic.Uint64
	nextPlayerNum atomic.Uint64
	simulated     float64

	players map[string]*model.Player

	// Stamina spent since the last tick, applied before regen.
	staminaDue map[string]float64

	join    chan joinReq
	craft   chan craftReq
	consume chan consumeReq
	gather  chan gatherReq
	stamina chan staminaReq
	setAge  chan setAgeReq
	query   chan playerReq
	admin   chan adminSnapshotReq
	step    chan stepReq
	stop    chan struct{}

	// Optional (may be nil). Implemented in internal/persistence/*.
	auditLogger  AuditLogger
	snapshotSink chan<- snapshot.SnapshotV1
}

func New(cfg WorldConfig, cats *catalogs.Catalogs) (*World, error) {
	if cats == nil {
		return nil, errors.New("world: nil catalogs")
	}
	cfg.applyDefaults()
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	return &World{
		cfg:        cfg,
		catalogs:   cats,
		ledger:     inventory.NewLedger(cats),
		crafter:    craft.NewResolver(cats),
		eater:      eat.NewResolver(cats),
		vitals:     survival.NewSimulator(cfg.Tuning.DecayRates),
		players:    map[string]*model.Player{},
		staminaDue: map[string]float64{},
		join:       make(chan joinReq, 64),
		craft:      make(chan craftReq, 256),
		consume:    make(chan consumeReq, 256),
		gather:     make(chan gatherReq, 256),
		stamina:    make(chan staminaReq, 256),
		setAge:     make(chan setAgeReq, 64),
		query:      make(chan playerReq, 256),
		admin:      make(chan adminSnapshotReq, 16),
		step:       make(chan stepReq, 16),
		stop:       make(chan struct{}),
	}, nil
}

func (w *World) SetAuditLogger(l AuditLogger)                  { w.auditLogger = l }
func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.cfg.Tuning.TickRateHz
}

func (w *World) Catalogs() *catalogs.Catalogs { return w.catalogs }
func (w *World) Tuning() tuning.Tuning         { return w.cfg.Tuning }

// CurrentTick is the number of completed ticks.
func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) newPlayerID() string {
	n := w.nextPlayerNum.Add(1)
	return fmt.Sprintf("P%06d", n)
}

func (w *World) spawn(name string) *model.Player {
	if name == "" {
		name = "player"
	}
	stats := w.cfg.Tuning.InitialStats
	p := &model.Player{
		ID:        w.newPlayerID(),
		Name:      name,
		Inventory: w.catalogs.InitialInventory(),
		Vitals:    model.Vitals{Health: stats.Health, Hunger: stats.Hunger, Stamina: stats.Stamina}.Clamp(),
	}
	p.Starving = survival.Starving(p.Vitals)
	w.players[p.ID] = p
	return p
}

func (w *World) sortedPlayerIDs() []string {
	ids := make([]string, 0, len(w.players))
	for id := range w.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// stepInternal advances every player by dt seconds. Players are visited in id
// order so a replay of the same requests yields the same audit stream.
func (w *World) stepInternal(dt float64) {
	nowTick := w.tick.Load()
	for _, id := range w.sortedPlayerIDs() {
		p := w.players[id]
		prev := p.Vitals
		p.Vitals = w.vitals.Advance(prev, dt, w.staminaDue[id])
		w.vitalTransitions(nowTick, p, prev)
	}
	for id := range w.staminaDue {
		delete(w.staminaDue, id)
	}
	if dt > 0 {
		w.simulated += dt
	}
	next := w.tick.Add(1)
	if n := uint64(w.cfg.SnapshotEveryTicks); n > 0 && next%n == 0 {
		w.pushSnapshot()
	}
}

func (w *World) vitalTransitions(nowTick uint64, p *model.Player, prev model.Vitals) {
	starving := survival.Starving(p.Vitals)
	if starving && !p.Starving {
		p.AddEvent(protocol.Event{"t": nowTick, "type": "STARVING"})
		w.audit(AuditEntry{Tick: nowTick, PlayerID: p.ID, Kind: AuditStarving})
	}
	p.Starving = starving
	if survival.Downed(p.Vitals) && !survival.Downed(prev) {
		p.AddEvent(protocol.Event{"t": nowTick, "type": "DOWNED"})
		w.audit(AuditEntry{Tick: nowTick, PlayerID: p.ID, Kind: AuditDowned})
	}
}

func (w *World) pushSnapshot() {
	if w.snapshotSink == nil {
		return
	}
	select {
	case w.snapshotSink <- w.ExportSnapshot():
	default:
		// Writer is behind; the next interval catches up.
	}
}

// StateOf converts a committed player view into its wire form.
func StateOf(cats *catalogs.Catalogs, v model.View) protocol.PlayerState {
	return protocol.PlayerState{
		PlayerID:  v.ID,
		Age:       v.Age,
		AgeName:   cats.AgeName(v.Age),
		Inventory: v.Inventory,
		Health:    v.Vitals.Health,
		Hunger:    v.Vitals.Hunger,
		Stamina:   v.Vitals.Stamina,
	}
}
