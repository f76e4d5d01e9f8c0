// Package inventory is the ledger every inventory mutation goes through.
package inventory

import (
	"fmt"

	"craftage.ai/internal/sim/ruleerr"
	"craftage.ai/internal/sim/world/kernel/model"
)

// Vocabulary reports which inventory keys exist.
type Vocabulary interface {
	HasItem(key string) bool
	SuggestItem(key string) string
}

type Ledger struct {
	vocab Vocabulary
}

func NewLedger(vocab Vocabulary) *Ledger {
	return &Ledger{vocab: vocab}
}

// Has reports whether inv holds at least costs[k] of every key in costs.
func Has(inv model.Inventory, costs map[string]int) bool {
	if len(costs) == 0 {
		return true
	}
	for item, c := range costs {
		if inv[item] < c {
			return false
		}
	}
	return true
}

// Shortfall returns the missing quantity per key, or nil when Has holds.
func Shortfall(inv model.Inventory, costs map[string]int) map[string]int {
	var out map[string]int
	for item, c := range costs {
		if missing := c - inv[item]; missing > 0 {
			if out == nil {
				out = map[string]int{}
			}
			out[item] = missing
		}
	}
	return out
}

// Debit removes costs from inv. Nothing is changed unless every cost is covered.
func (l *Ledger) Debit(inv model.Inventory, costs map[string]int) error {
	return l.Transfer(inv, costs, nil)
}

// Credit adds gains to inv. Keys outside the vocabulary are rejected before any change.
func (l *Ledger) Credit(inv model.Inventory, gains map[string]int) error {
	return l.Transfer(inv, nil, gains)
}

// Transfer debits costs and credits gains as one step. Every precondition is
// checked first; on error inv is left untouched.
func (l *Ledger) Transfer(inv model.Inventory, costs, gains map[string]int) error {
	if err := l.checkKeys(costs); err != nil {
		return err
	}
	if err := l.checkKeys(gains); err != nil {
		return err
	}
	if short := Shortfall(inv, costs); short != nil {
		return &ruleerr.InsufficientResourcesError{Shortfall: short}
	}
	for item, c := range costs {
		inv[item] -= c
	}
	for item, g := range gains {
		inv[item] += g
	}
	return nil
}

func (l *Ledger) checkKeys(m map[string]int) error {
	for item, n := range m {
		if !l.vocab.HasItem(item) {
			return ruleerr.UnknownResource(item, l.vocab.SuggestItem(item))
		}
		if n < 0 {
			return fmt.Errorf("inventory: negative quantity %d for %s", n, item)
		}
	}
	return nil
}
