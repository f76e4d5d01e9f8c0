package world

import (
	"context"
	"time"
)

func (w *World) Run(ctx context.Context) error {
	var tickC <-chan time.Time
	if !w.cfg.ManualTicks {
		interval := time.Second / time.Duration(w.cfg.Tuning.TickRateHz)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tickC = ticker.C
	}
	dt := w.cfg.Tuning.TickSeconds()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			w.handleJoin(req)
		case req := <-w.craft:
			w.handleCraft(req)
		case req := <-w.consume:
			w.handleConsume(req)
		case req := <-w.gather:
			w.handleGather(req)
		case req := <-w.stamina:
			w.handleSpendStamina(req)
		case req := <-w.setAge:
			w.handleSetAge(req)
		case req := <-w.query:
			w.handlePlayer(req)
		case req := <-w.admin:
			w.handleAdminSnapshot(req)
		case req := <-w.step:
			w.handleStep(req)
		case <-tickC:
			w.stepInternal(dt)
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// StepOnce advances the world by one step of dt seconds (a tick when dt <= 0).
// It is not safe to call concurrently with Run; tests use it to drive the world
// from a single goroutine.
func (w *World) StepOnce(dt float64) uint64 {
	if !(dt > 0) {
		dt = w.cfg.Tuning.TickSeconds()
	}
	w.stepInternal(dt)
	return w.tick.Load()
}
