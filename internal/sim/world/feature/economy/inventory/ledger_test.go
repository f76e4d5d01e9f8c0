package inventory

import (
	"errors"
	"reflect"
	"testing"

	"craftage.ai/internal/sim/ruleerr"
	"craftage.ai/internal/sim/world/kernel/model"
)

type vocab map[string]bool

func (v vocab) HasItem(k string) bool       { return v[k] }
func (v vocab) SuggestItem(k string) string { return "" }

var testVocab = vocab{"wood": true, "stone": true, "axe": true, "structure": true}

func TestHas(t *testing.T) {
	inv := model.Inventory{"wood": 5, "stone": 2}
	if !Has(inv, map[string]int{"wood": 5, "stone": 2}) {
		t.Fatalf("expected exact amounts to satisfy")
	}
	if Has(inv, map[string]int{"wood": 6}) {
		t.Fatalf("expected wood:6 to fail")
	}
	if Has(inv, map[string]int{"axe": 1}) {
		t.Fatalf("missing key should count as zero")
	}
	if !Has(inv, nil) {
		t.Fatalf("empty costs are always satisfied")
	}
}

func TestShortfall(t *testing.T) {
	inv := model.Inventory{"wood": 3}
	got := Shortfall(inv, map[string]int{"wood": 5, "stone": 2, "axe": 0})
	want := map[string]int{"wood": 2, "stone": 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if Shortfall(inv, map[string]int{"wood": 3}) != nil {
		t.Fatalf("expected nil shortfall when satisfied")
	}
}

func TestDebit_InsufficientLeavesInventoryUnchanged(t *testing.T) {
	l := NewLedger(testVocab)
	inv := model.Inventory{"wood": 5, "stone": 1}
	before := inv.Clone()

	err := l.Debit(inv, map[string]int{"wood": 5, "stone": 2})
	var short *ruleerr.InsufficientResourcesError
	if !errors.As(err, &short) {
		t.Fatalf("expected InsufficientResourcesError, got %v", err)
	}
	if short.Shortfall["stone"] != 1 || len(short.Shortfall) != 1 {
		t.Fatalf("unexpected shortfall: %v", short.Shortfall)
	}
	if !reflect.DeepEqual(inv, before) {
		t.Fatalf("inventory changed on failure: %v", inv)
	}
}

func TestDebit_NeverClampsToZero(t *testing.T) {
	l := NewLedger(testVocab)
	inv := model.Inventory{"wood": 1}
	if err := l.Debit(inv, map[string]int{"wood": 2}); err == nil {
		t.Fatalf("expected error")
	}
	if inv["wood"] != 1 {
		t.Fatalf("expected wood untouched, got %d", inv["wood"])
	}
}

func TestCredit(t *testing.T) {
	l := NewLedger(testVocab)
	inv := model.Inventory{"wood": 1}

	if err := l.Credit(inv, map[string]int{"wood": 2, "structure": 1}); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if inv["wood"] != 3 || inv["structure"] != 1 {
		t.Fatalf("unexpected inventory: %v", inv)
	}

	err := l.Credit(inv, map[string]int{"wood": 1, "mithril": 1})
	var unk *ruleerr.UnknownResourceError
	if !errors.As(err, &unk) || unk.Key.Key != "mithril" {
		t.Fatalf("expected UnknownResourceError for mithril, got %v", err)
	}
	if inv["wood"] != 3 {
		t.Fatalf("partial credit applied: %v", inv)
	}
}

func TestTransfer_Conservation(t *testing.T) {
	l := NewLedger(testVocab)
	inv := model.Inventory{"wood": 7, "stone": 3, "axe": 0}
	before := inv.Clone()
	costs := map[string]int{"wood": 5, "stone": 2}
	gains := map[string]int{"axe": 1}

	if err := l.Transfer(inv, costs, gains); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	for _, k := range []string{"wood", "stone", "axe"} {
		if want := before[k] - costs[k] + gains[k]; inv[k] != want {
			t.Fatalf("%s: got %d, want %d", k, inv[k], want)
		}
	}
}

func TestTransfer_RejectsNegativeQuantities(t *testing.T) {
	l := NewLedger(testVocab)
	inv := model.Inventory{"wood": 1}
	if err := l.Transfer(inv, map[string]int{"wood": -4}, nil); err == nil {
		t.Fatalf("expected negative cost rejected")
	}
	if inv["wood"] != 1 {
		t.Fatalf("inventory changed: %v", inv)
	}
}
