package eat

import (
	"errors"
	"math"
	"testing"

	"craftage.ai/configs"
	"craftage.ai/internal/sim/catalogs"
	"craftage.ai/internal/sim/ruleerr"
	"craftage.ai/internal/sim/world/kernel/model"
)

func newResolver(t *testing.T) (*Resolver, *catalogs.Catalogs) {
	t.Helper()
	cats, err := catalogs.LoadFS(configs.FS)
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return NewResolver(cats), cats
}

func TestConsume_CookedMeatClampsAtCeiling(t *testing.T) {
	r, _ := newResolver(t)
	inv := model.Inventory{"cooked_meat": 2}
	v := model.Vitals{Hunger: 90, Health: 100, Stamina: 40}

	res, err := r.Consume("cooked_meat", inv, &v)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if v.Hunger != 100 || v.Health != 100 || v.Stamina != 40 {
		t.Fatalf("unexpected vitals: %+v", v)
	}
	if res.Delta.Hunger != 10 || res.Delta.Health != 0 || res.Delta.Stamina != 0 {
		t.Fatalf("unexpected delta: %+v", res.Delta)
	}
	if inv["cooked_meat"] != 1 {
		t.Fatalf("expected exactly one unit consumed, got %d left", inv["cooked_meat"])
	}
}

func TestConsume_FullGainBelowCeiling(t *testing.T) {
	r, _ := newResolver(t)
	inv := model.Inventory{"food": 1, "berries": 1}
	v := model.Vitals{Hunger: 10, Health: 50}

	res, err := r.Consume("food", inv, &v)
	if err != nil {
		t.Fatalf("consume food: %v", err)
	}
	if v.Hunger != 40 || res.Delta.Hunger != 30 {
		t.Fatalf("food: vitals=%+v delta=%+v", v, res.Delta)
	}
	if _, err := r.Consume("berries", inv, &v); err != nil {
		t.Fatalf("consume berries: %v", err)
	}
	if v.Hunger != 60 || v.Health != 50 {
		t.Fatalf("berries: vitals=%+v", v)
	}
}

func TestConsume_InsufficientLeavesStateUnchanged(t *testing.T) {
	r, _ := newResolver(t)
	inv := model.Inventory{"food": 0}
	v := model.Vitals{Hunger: 10, Health: 10, Stamina: 10}
	before := v

	_, err := r.Consume("food", inv, &v)
	var short *ruleerr.InsufficientResourcesError
	if !errors.As(err, &short) || short.Shortfall["food"] != 1 {
		t.Fatalf("expected food shortfall, got %v", err)
	}
	if v != before || inv["food"] != 0 {
		t.Fatalf("state changed on failure: vitals=%+v inv=%v", v, inv)
	}
}

func TestConsume_Unknown(t *testing.T) {
	r, _ := newResolver(t)
	v := model.Vitals{}
	_, err := r.Consume("cake", model.Inventory{}, &v)
	var unk *ruleerr.UnknownConsumableError
	if !errors.As(err, &unk) {
		t.Fatalf("expected UnknownConsumableError, got %v", err)
	}
}

func TestConsume_RepeatedNeverLeavesRange(t *testing.T) {
	r, cats := newResolver(t)
	for _, c := range cats.ConsumableList() {
		inv := model.Inventory{c.ResourceKey: 50}
		v := model.Vitals{Health: 3, Hunger: 0, Stamina: 99}
		for i := 0; i < 50; i++ {
			if _, err := r.Consume(c.ID, inv, &v); err != nil {
				t.Fatalf("%s #%d: %v", c.ID, i, err)
			}
			if !v.InRange() {
				t.Fatalf("%s #%d: vitals out of range: %+v", c.ID, i, v)
			}
		}
		if inv[c.ResourceKey] != 0 {
			t.Fatalf("%s: expected all units consumed", c.ID)
		}
	}
}

func TestApplyGains_NegativeGainNeverLowers(t *testing.T) {
	v := model.Vitals{Health: 50, Hunger: 50, Stamina: 50}
	next, d := ApplyGains(v, map[string]float64{"health": -20, "stamina": 70, "mana": 5})
	if next.Health != 50 || d.Health != 0 {
		t.Fatalf("negative gain lowered health: %+v %+v", next, d)
	}
	if next.Stamina != 100 || d.Stamina != 50 {
		t.Fatalf("expected stamina clamp to 100 with delta 50: %+v %+v", next, d)
	}
	if next.Hunger != 50 {
		t.Fatalf("hunger should be untouched: %+v", next)
	}
}

func TestApplyGains_OutOfRangeInputIsClampedFirst(t *testing.T) {
	r, _ := newResolver(t)
	inv := model.Inventory{"food": 1}
	v := model.Vitals{Hunger: math.Inf(1), Health: -5}
	if _, err := r.Consume("food", inv, &v); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if !v.InRange() {
		t.Fatalf("expected in-range vitals, got %+v", v)
	}
}
