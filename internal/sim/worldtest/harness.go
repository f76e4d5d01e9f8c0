package worldtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"craftage.ai/configs"
	"craftage.ai/internal/sim/catalogs"
	"craftage.ai/internal/sim/tuning"
	world "craftage.ai/internal/sim/world"
)

// Harness runs a world loop with manual ticks and talks to it only through
// the exported request API, the same way the transport does.
type Harness struct {
	T     *testing.T
	Cats  *catalogs.Catalogs
	W     *world.World
	Audit *AuditRecorder

	cancel context.CancelFunc
	done   chan error
}

func DefaultConfig() world.WorldConfig {
	return world.WorldConfig{ID: "test_world", Tuning: tuning.Defaults(), ManualTicks: true}
}

func LoadCatalogs(t *testing.T) *catalogs.Catalogs {
	t.Helper()
	cats, err := catalogs.LoadFS(configs.FS)
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return cats
}

func NewHarness(t *testing.T, cfg world.WorldConfig) *Harness {
	t.Helper()
	cats := LoadCatalogs(t)
	w, err := world.New(cfg, cats)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return NewHarnessWithWorld(t, w, cats)
}

// NewHarnessWithWorld starts the loop for an already-constructed world, e.g.
// one that had a snapshot imported.
func NewHarnessWithWorld(t *testing.T, w *world.World, cats *catalogs.Catalogs) *Harness {
	t.Helper()
	h := &Harness{T: t, Cats: cats, W: w, Audit: &AuditRecorder{}, done: make(chan error, 1)}
	w.SetAuditLogger(h.Audit)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- w.Run(ctx) }()
	t.Cleanup(h.Close)
	return h
}

func (h *Harness) Close() {
	if h.cancel == nil {
		return
	}
	h.cancel()
	h.cancel = nil
	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		h.T.Errorf("world loop did not exit")
	}
}

func (h *Harness) ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	h.T.Cleanup(cancel)
	return ctx
}

func (h *Harness) Join(name string) string {
	h.T.Helper()
	res, err := h.W.RequestJoin(h.ctx(), name, "")
	if err != nil {
		h.T.Fatalf("join %s: %v", name, err)
	}
	return res.PlayerID
}

func (h *Harness) Gather(playerID, nodeID string, times int) {
	h.T.Helper()
	for i := 0; i < times; i++ {
		if _, err := h.W.RequestGather(h.ctx(), playerID, nodeID); err != nil {
			h.T.Fatalf("gather %s: %v", nodeID, err)
		}
	}
}

func (h *Harness) Step(dt float64) uint64 {
	h.T.Helper()
	tick, err := h.W.RequestStep(h.ctx(), dt)
	if err != nil {
		h.T.Fatalf("step: %v", err)
	}
	return tick
}

func (h *Harness) Player(playerID string) world.PlayerOutcome {
	h.T.Helper()
	out, err := h.W.RequestPlayer(h.ctx(), playerID)
	if err != nil {
		h.T.Fatalf("player %s: %v", playerID, err)
	}
	return out
}

// AuditRecorder keeps every audit entry in memory.
type AuditRecorder struct {
	mu      sync.Mutex
	entries []world.AuditEntry
}

func (r *AuditRecorder) WriteAudit(e world.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *AuditRecorder) Kinds(kind string) []world.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []world.AuditEntry
	for _, e := range r.entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
