package world

import (
	"context"
	"errors"
	"fmt"

	"craftage.ai/internal/protocol"
	"craftage.ai/internal/sim/ruleerr"
	"craftage.ai/internal/sim/world/feature/session/eat"
	survival "craftage.ai/internal/sim/world/feature/survival/runtime"
	"craftage.ai/internal/sim/world/feature/work/craft"
	"craftage.ai/internal/sim/world/kernel/model"
)

var errWorldStopped = errors.New("world stopped")

type reply[T any] struct {
	Val T
	Err error
}

// roundTrip hands req to the world loop and waits for its reply.
// It is safe to call from other goroutines (e.g. websocket sessions).
func roundTrip[R any, T any](ctx context.Context, w *World, ch chan R, req R, resp chan reply[T]) (T, error) {
	var zero T
	if w == nil || ch == nil {
		return zero, errors.New("world not available")
	}
	select {
	case ch <- req:
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-w.stop:
		return zero, errWorldStopped
	}
	select {
	case r := <-resp:
		return r.Val, r.Err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func respond[T any](ch chan reply[T], v T, err error) {
	if ch == nil {
		return
	}
	select {
	case ch <- reply[T]{Val: v, Err: err}:
	default:
		// Caller gave up; never block the loop.
	}
}

// ---- join ----

type joinReq struct {
	Name     string
	PlayerID string
	Resp     chan reply[JoinResult]
}

type JoinResult struct {
	PlayerID string
	Resumed  bool
	State    model.View
}

// RequestJoin spawns a new player, or resumes playerID when it is set.
func (w *World) RequestJoin(ctx context.Context, name, playerID string) (JoinResult, error) {
	resp := make(chan reply[JoinResult], 1)
	return roundTrip(ctx, w, w.join, joinReq{Name: name, PlayerID: playerID, Resp: resp}, resp)
}

func (w *World) handleJoin(req joinReq) {
	if req.PlayerID != "" {
		p := w.players[req.PlayerID]
		if p == nil {
			respond(req.Resp, JoinResult{}, ErrPlayerNotFound)
			return
		}
		respond(req.Resp, JoinResult{PlayerID: p.ID, Resumed: true, State: p.View()}, nil)
		return
	}
	p := w.spawn(req.Name)
	w.audit(AuditEntry{Tick: w.tick.Load(), PlayerID: p.ID, Kind: AuditJoin, Reason: p.Name})
	respond(req.Resp, JoinResult{PlayerID: p.ID, State: p.View()}, nil)
}

// ---- craft ----

type craftReq struct {
	PlayerID string
	RecipeID string
	Resp     chan reply[CraftOutcome]
}

type CraftOutcome struct {
	Result craft.Result
	State  model.View
	Events []protocol.Event
}

func (w *World) RequestCraft(ctx context.Context, playerID, recipeID string) (CraftOutcome, error) {
	resp := make(chan reply[CraftOutcome], 1)
	return roundTrip(ctx, w, w.craft, craftReq{PlayerID: playerID, RecipeID: recipeID, Resp: resp}, resp)
}

func (w *World) handleCraft(req craftReq) {
	p := w.players[req.PlayerID]
	if p == nil {
		respond(req.Resp, CraftOutcome{}, ErrPlayerNotFound)
		return
	}
	res, err := w.crafter.Craft(req.RecipeID, p.Inventory, p.Age)
	if err != nil {
		w.reject(p.ID, req.RecipeID, err)
		respond(req.Resp, CraftOutcome{}, err)
		return
	}
	w.audit(AuditEntry{
		Tick:     w.tick.Load(),
		PlayerID: p.ID,
		Kind:     AuditCraft,
		Ref:      res.RecipeID,
		Consumed: res.Consumed,
		Produced: res.Produced,
	})
	respond(req.Resp, CraftOutcome{Result: res, State: p.View(), Events: p.TakeEvents()}, nil)
}

// ---- consume ----

type consumeReq struct {
	PlayerID     string
	ConsumableID string
	Resp         chan reply[ConsumeOutcome]
}

type ConsumeOutcome struct {
	Result eat.Result
	State  model.View
	Events []protocol.Event
}

func (w *World) RequestConsume(ctx context.Context, playerID, consumableID string) (ConsumeOutcome, error) {
	resp := make(chan reply[ConsumeOutcome], 1)
	return roundTrip(ctx, w, w.consume, consumeReq{PlayerID: playerID, ConsumableID: consumableID, Resp: resp}, resp)
}

func (w *World) handleConsume(req consumeReq) {
	p := w.players[req.PlayerID]
	if p == nil {
		respond(req.Resp, ConsumeOutcome{}, ErrPlayerNotFound)
		return
	}
	res, err := w.eater.Consume(req.ConsumableID, p.Inventory, &p.Vitals)
	if err != nil {
		w.reject(p.ID, req.ConsumableID, err)
		respond(req.Resp, ConsumeOutcome{}, err)
		return
	}
	p.Starving = survival.Starving(p.Vitals)
	delta := res.Delta
	w.audit(AuditEntry{
		Tick:     w.tick.Load(),
		PlayerID: p.ID,
		Kind:     AuditConsume,
		Ref:      res.ConsumableID,
		Consumed: map[string]int{res.ResourceKey: 1},
		Delta:    &delta,
	})
	respond(req.Resp, ConsumeOutcome{Result: res, State: p.View(), Events: p.TakeEvents()}, nil)
}

// ---- gather ----

type gatherReq struct {
	PlayerID string
	NodeID   string
	Resp     chan reply[GatherOutcome]
}

type GatherOutcome struct {
	NodeID string
	Item   string
	Amount int
	State  model.View
	Events []protocol.Event
}

// RequestGather credits one harvest of nodeID and charges the gathering
// stamina cost against the next tick.
func (w *World) RequestGather(ctx context.Context, playerID, nodeID string) (GatherOutcome, error) {
	resp := make(chan reply[GatherOutcome], 1)
	return roundTrip(ctx, w, w.gather, gatherReq{PlayerID: playerID, NodeID: nodeID, Resp: resp}, resp)
}

func (w *World) handleGather(req gatherReq) {
	p := w.players[req.PlayerID]
	if p == nil {
		respond(req.Resp, GatherOutcome{}, ErrPlayerNotFound)
		return
	}
	item, n, err := w.catalogs.GatherYield(req.NodeID, p.Inventory)
	if err == nil {
		err = w.ledger.Credit(p.Inventory, map[string]int{item: n})
	}
	if err != nil {
		w.reject(p.ID, req.NodeID, err)
		respond(req.Resp, GatherOutcome{}, err)
		return
	}
	w.staminaDue[p.ID] += w.cfg.Tuning.Gathering.StaminaCost
	w.audit(AuditEntry{
		Tick:     w.tick.Load(),
		PlayerID: p.ID,
		Kind:     AuditGather,
		Ref:      req.NodeID,
		Produced: map[string]int{item: n},
	})
	respond(req.Resp, GatherOutcome{NodeID: req.NodeID, Item: item, Amount: n, State: p.View(), Events: p.TakeEvents()}, nil)
}

// ---- stamina ----

type staminaReq struct {
	PlayerID string
	Cost     float64
	Resp     chan reply[struct{}]
}

// RequestSpendStamina records an external stamina cost (movement, actions).
// Costs accumulate and are applied at the start of the next tick, before regen.
func (w *World) RequestSpendStamina(ctx context.Context, playerID string, cost float64) error {
	resp := make(chan reply[struct{}], 1)
	_, err := roundTrip(ctx, w, w.stamina, staminaReq{PlayerID: playerID, Cost: cost, Resp: resp}, resp)
	return err
}

func (w *World) handleSpendStamina(req staminaReq) {
	if w.players[req.PlayerID] == nil {
		respond(req.Resp, struct{}{}, ErrPlayerNotFound)
		return
	}
	if !(req.Cost >= 0) {
		respond(req.Resp, struct{}{}, fmt.Errorf("stamina cost must be >= 0, got %v", req.Cost))
		return
	}
	w.staminaDue[req.PlayerID] += req.Cost
	respond(req.Resp, struct{}{}, nil)
}

// ---- age ----

type setAgeReq struct {
	PlayerID string
	Age      int
	Resp     chan reply[model.View]
}

// RequestSetAge moves a player to another age. Age progression itself is
// decided outside the rule engine.
func (w *World) RequestSetAge(ctx context.Context, playerID string, age int) (model.View, error) {
	resp := make(chan reply[model.View], 1)
	return roundTrip(ctx, w, w.setAge, setAgeReq{PlayerID: playerID, Age: age, Resp: resp}, resp)
}

func (w *World) handleSetAge(req setAgeReq) {
	p := w.players[req.PlayerID]
	if p == nil {
		respond(req.Resp, model.View{}, ErrPlayerNotFound)
		return
	}
	if req.Age < 0 || req.Age >= w.catalogs.AgeCount() {
		respond(req.Resp, model.View{}, fmt.Errorf("age %d out of range [0,%d)", req.Age, w.catalogs.AgeCount()))
		return
	}
	p.Age = req.Age
	w.audit(AuditEntry{Tick: w.tick.Load(), PlayerID: p.ID, Kind: AuditSetAge, Ref: w.catalogs.AgeName(p.Age)})
	respond(req.Resp, p.View(), nil)
}

// ---- state ----

type playerReq struct {
	PlayerID string
	Resp     chan reply[PlayerOutcome]
}

type PlayerOutcome struct {
	State  model.View
	Events []protocol.Event
}

// RequestPlayer returns the committed state of a player and drains its pending events.
func (w *World) RequestPlayer(ctx context.Context, playerID string) (PlayerOutcome, error) {
	resp := make(chan reply[PlayerOutcome], 1)
	return roundTrip(ctx, w, w.query, playerReq{PlayerID: playerID, Resp: resp}, resp)
}

func (w *World) handlePlayer(req playerReq) {
	p := w.players[req.PlayerID]
	if p == nil {
		respond(req.Resp, PlayerOutcome{}, ErrPlayerNotFound)
		return
	}
	respond(req.Resp, PlayerOutcome{State: p.View(), Events: p.TakeEvents()}, nil)
}

// ---- step ----

type stepReq struct {
	DT   float64
	Resp chan reply[uint64]
}

// RequestStep runs one step of dt seconds in the loop goroutine.
func (w *World) RequestStep(ctx context.Context, dt float64) (uint64, error) {
	resp := make(chan reply[uint64], 1)
	return roundTrip(ctx, w, w.step, stepReq{DT: dt, Resp: resp}, resp)
}

func (w *World) handleStep(req stepReq) {
	respond(req.Resp, w.StepOnce(req.DT), nil)
}

func (w *World) reject(playerID, ref string, err error) {
	entry := AuditEntry{
		Tick:     w.tick.Load(),
		PlayerID: playerID,
		Kind:     AuditReject,
		Ref:      ref,
		Code:     ruleerr.Code(err),
		Reason:   err.Error(),
	}
	var short *ruleerr.InsufficientResourcesError
	if errors.As(err, &short) {
		entry.Shortfall = short.Shortfall
	}
	w.audit(entry)
}
