package model

import (
	"math"
	"testing"
)

func TestInventoryCloneIsIndependent(t *testing.T) {
	inv := Inventory{"wood": 3}
	c := inv.Clone()
	c["wood"] = 0
	if inv["wood"] != 3 {
		t.Fatalf("clone aliased source: %#v", inv)
	}
	if Inventory(nil).Clone() != nil {
		t.Fatalf("nil clone should stay nil")
	}
}

func TestInventoryTotalAndKeys(t *testing.T) {
	inv := Inventory{"wood": 3, "axe": 1, "stone": 0}
	if inv.Total() != 4 {
		t.Fatalf("expected total 4, got %d", inv.Total())
	}
	keys := inv.Keys()
	if len(keys) != 3 || keys[0] != "axe" || keys[2] != "wood" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestVitalsClamp(t *testing.T) {
	v := Vitals{Health: 140, Hunger: -3, Stamina: math.NaN()}.Clamp()
	if v.Health != 100 || v.Hunger != 0 || v.Stamina != 0 {
		t.Fatalf("unexpected clamp: %+v", v)
	}
	if !v.InRange() {
		t.Fatalf("clamped vitals should be in range")
	}
	if (Vitals{Health: 101}).InRange() {
		t.Fatalf("101 should be out of range")
	}
}

func TestVitalsGetSet(t *testing.T) {
	var v Vitals
	for _, name := range []string{VitalHealth, VitalHunger, VitalStamina} {
		v.Set(name, 42)
		if v.Get(name) != 42 {
			t.Fatalf("%s: get/set mismatch", name)
		}
	}
	if IsVital("mana") {
		t.Fatalf("mana is not a vital")
	}
}

func TestPlayerViewCopiesInventory(t *testing.T) {
	p := &Player{ID: "P1", Inventory: Inventory{"wood": 1}}
	v := p.View()
	v.Inventory["wood"] = 9
	if p.Inventory["wood"] != 1 {
		t.Fatalf("view aliased player inventory")
	}
}
