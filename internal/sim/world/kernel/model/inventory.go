package model

import "sort"

// Inventory maps a resource/tool/structure key to a quantity >= 0.
type Inventory map[string]int

func (inv Inventory) Clone() Inventory {
	if inv == nil {
		return nil
	}
	out := make(Inventory, len(inv))
	for k, v := range inv {
		out[k] = v
	}
	return out
}

func (inv Inventory) Total() int {
	n := 0
	for _, v := range inv {
		n += v
	}
	return n
}

func (inv Inventory) Keys() []string {
	keys := make([]string, 0, len(inv))
	for k := range inv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
