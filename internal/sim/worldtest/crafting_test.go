package worldtest

import (
	"errors"
	"sync"
	"testing"

	"craftage.ai/internal/sim/ruleerr"
	world "craftage.ai/internal/sim/world"
)

func TestJoin_SeedsVocabularyAndStats(t *testing.T) {
	h := NewHarness(t, DefaultConfig())
	id := h.Join("alice")
	if id != "P000001" {
		t.Fatalf("unexpected first player id %q", id)
	}
	st := h.Player(id).State
	if len(st.Inventory) != len(h.Cats.Items.Palette) || st.Inventory.Total() != 0 {
		t.Fatalf("expected every key seeded at 0, got %v", st.Inventory)
	}
	if st.Vitals.Health != 100 || st.Vitals.Hunger != 100 || st.Vitals.Stamina != 100 || st.Age != 0 {
		t.Fatalf("unexpected spawn state: %+v", st)
	}
	if len(h.Audit.Kinds(world.AuditJoin)) != 1 {
		t.Fatalf("expected one JOIN audit")
	}
}

func TestCraft_AxeFromGatheredResources(t *testing.T) {
	h := NewHarness(t, DefaultConfig())
	id := h.Join("alice")
	h.Gather(id, "tree", 1)
	h.Gather(id, "stone", 1)

	out, err := h.W.RequestCraft(h.ctx(), id, "axe")
	if err != nil {
		t.Fatalf("craft axe: %v", err)
	}
	inv := out.State.Inventory
	if inv["wood"] != 0 || inv["stone"] != 1 || inv["axe"] != 1 {
		t.Fatalf("unexpected inventory after axe: %v", inv)
	}
	if out.Result.Consumed["wood"] != 5 || out.Result.Produced["axe"] != 1 {
		t.Fatalf("unexpected result: %+v", out.Result)
	}
	if got := h.Audit.Kinds(world.AuditCraft); len(got) != 1 || got[0].Ref != "axe" {
		t.Fatalf("unexpected craft audit: %+v", got)
	}

	// The axe doubles wood yield.
	g, err := h.W.RequestGather(h.ctx(), id, "tree")
	if err != nil || g.Amount != 10 {
		t.Fatalf("expected 10 wood with axe, got %d err=%v", g.Amount, err)
	}
}

func TestCraft_InsufficientLeavesStateAndAudits(t *testing.T) {
	h := NewHarness(t, DefaultConfig())
	id := h.Join("alice")
	h.Gather(id, "tree", 1)
	before := h.Player(id).State.Inventory

	_, err := h.W.RequestCraft(h.ctx(), id, "axe")
	var short *ruleerr.InsufficientResourcesError
	if !errors.As(err, &short) || short.Shortfall["stone"] != 2 {
		t.Fatalf("expected stone shortfall, got %v", err)
	}
	after := h.Player(id).State.Inventory
	for k, n := range before {
		if after[k] != n {
			t.Fatalf("inventory changed on failed craft: %s %d -> %d", k, n, after[k])
		}
	}
	rej := h.Audit.Kinds(world.AuditReject)
	if len(rej) != 1 || rej[0].Code != ruleerr.CodeNoResource || rej[0].Shortfall["stone"] != 2 {
		t.Fatalf("unexpected reject audit: %+v", rej)
	}
}

func TestCraft_AgeGate(t *testing.T) {
	h := NewHarness(t, DefaultConfig())
	id := h.Join("alice")
	h.Gather(id, "tree", 2)
	h.Gather(id, "iron", 1)

	var locked *ruleerr.AgeLockedError
	if _, err := h.W.RequestCraft(h.ctx(), id, "bronze_axe"); !errors.As(err, &locked) || locked.Required != 1 {
		t.Fatalf("expected age lock, got %v", err)
	}
	st, err := h.W.RequestSetAge(h.ctx(), id, 1)
	if err != nil || st.Age != 1 {
		t.Fatalf("set age: %+v %v", st, err)
	}
	if _, err := h.W.RequestSetAge(h.ctx(), id, 9); err == nil {
		t.Fatalf("expected out of range age error")
	}
	// Unlocked now, but bronze is still missing.
	var short *ruleerr.InsufficientResourcesError
	if _, err := h.W.RequestCraft(h.ctx(), id, "bronze_axe"); !errors.As(err, &short) {
		t.Fatalf("expected shortfall after unlock, got %v", err)
	}
}

func TestCraft_UnknownPlayerAndRecipe(t *testing.T) {
	h := NewHarness(t, DefaultConfig())
	id := h.Join("alice")
	if _, err := h.W.RequestCraft(h.ctx(), "P999999", "axe"); !errors.Is(err, world.ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
	_, err := h.W.RequestCraft(h.ctx(), id, "axx")
	if ruleerr.Code(err) != ruleerr.CodeUnknownRecipe {
		t.Fatalf("expected unknown recipe, got %v", err)
	}
}

func TestCraft_ConcurrentRequestsConserveResources(t *testing.T) {
	h := NewHarness(t, DefaultConfig())
	id := h.Join("alice")
	h.Gather(id, "tree", 4)  // 20 wood
	h.Gather(id, "stone", 4) // 12 stone

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.W.RequestCraft(h.ctx(), id, "axe"); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	inv := h.Player(id).State.Inventory
	if ok != 4 || inv["axe"] != 4 || inv["wood"] != 0 || inv["stone"] != 4 {
		t.Fatalf("ok=%d inventory=%v", ok, inv)
	}
}
