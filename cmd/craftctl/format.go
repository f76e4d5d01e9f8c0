package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"craftage.ai/internal/sim/catalogs"
	"craftage.ai/internal/sim/ruleerr"
	"craftage.ai/internal/sim/world/kernel/model"
)

// parseInventory reads "wood=5,stone=2" into a spawn inventory. Keys must be
// known items.
func parseInventory(cats *catalogs.Catalogs, s string) (model.Inventory, error) {
	inv := cats.InitialInventory()
	s = strings.TrimSpace(s)
	if s == "" {
		return inv, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("bad inventory entry %q (want key=qty)", part)
		}
		k = strings.TrimSpace(k)
		if !cats.HasItem(k) {
			return nil, ruleerr.UnknownResource(k, cats.SuggestItem(k))
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad quantity for %s: %q", k, v)
		}
		inv[k] = n
	}
	return inv, nil
}

// formatCounts renders non-zero counts in key order.
func formatCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k, n := range m {
		if n != 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, m[k]))
	}
	return strings.Join(parts, " ")
}

func formatGains(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s%+g", k, m[k]))
	}
	return strings.Join(parts, " ")
}

func printInventory(out io.Writer, inv model.Inventory) error {
	t := newTable(out, "Item", "Qty")
	for _, k := range inv.Keys() {
		if inv[k] == 0 {
			continue
		}
		_ = t.Append([]string{k, strconv.Itoa(inv[k])})
	}
	return t.Render()
}

func printVitals(out io.Writer, v model.Vitals) error {
	t := newTable(out, "Health", "Hunger", "Stamina")
	_ = t.Append([]string{fmt.Sprintf("%.2f", v.Health), fmt.Sprintf("%.2f", v.Hunger), fmt.Sprintf("%.2f", v.Stamina)})
	return t.Render()
}
