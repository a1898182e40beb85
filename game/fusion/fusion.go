// Package fusion implements the 3-for-1 tier upgrade.
package fusion

import (
	"sort"

	"github.com/kasuganosora/cardpack/game/inventory"
)

// Cost is the number of identical slots consumed by one fusion.
const Cost = 3

// NextTier returns the successor of t. ok is false at the top tier and for
// unknown tiers; this is the only place that decides whether a tier can be
// fused.
func NextTier(t inventory.Tier) (next inventory.Tier, ok bool) {
	i := t.Index()
	if i < 0 || i+1 >= len(inventory.Tiers) {
		return "", false
	}
	return inventory.Tiers[i+1], true
}

// CanFuse reports whether indices select exactly Cost distinct existing
// slots sharing the same card and a non-maximal tier.
func CanFuse(inv *inventory.Inventory, indices []int) bool {
	_, ok := validate(inv, indices)
	return ok
}

func validate(inv *inventory.Inventory, indices []int) (inventory.Slot, bool) {
	if inv == nil || len(indices) != Cost {
		return inventory.Slot{}, false
	}
	seen := make(map[int]bool, Cost)
	var first inventory.Slot
	for i, idx := range indices {
		if seen[idx] {
			return inventory.Slot{}, false
		}
		seen[idx] = true
		s, ok := inv.Get(idx)
		if !ok {
			return inventory.Slot{}, false
		}
		if i == 0 {
			first = s
		} else if s != first {
			return inventory.Slot{}, false
		}
	}
	if _, ok := NextTier(first.Tier); !ok {
		return inventory.Slot{}, false
	}
	return first, true
}

// Result describes a committed fusion.
type Result struct {
	Inventory *inventory.Inventory
	Removed   []inventory.Slot
	Added     inventory.Slot
}

// Fuse validates indices against inv and, when valid, returns a new
// inventory with the three slots removed and the upgraded slot appended.
// inv itself is never modified.
func Fuse(inv *inventory.Inventory, indices []int) (Result, bool) {
	slot, ok := validate(inv, indices)
	if !ok {
		return Result{}, false
	}
	next := inv.Clone()
	removed, err := next.RemoveAt(indices...)
	if err != nil {
		return Result{}, false
	}
	tier, _ := NextTier(slot.Tier)
	next.Append(slot.CardID, tier)
	return Result{
		Inventory: next,
		Removed:   removed,
		Added:     inventory.Slot{CardID: slot.CardID, Tier: tier},
	}, true
}

// Group is a set of identical slots that can be fused at least once.
type Group struct {
	CardID   string         `json:"cardId"`
	Tier     inventory.Tier `json:"tier"`
	NextTier inventory.Tier `json:"nextTier"`
	Indices  []int          `json:"indices"`
}

// Selection returns the first Cost indices of the group, ready for Fuse.
func (g Group) Selection() []int {
	return append([]int(nil), g.Indices[:Cost]...)
}

// Groups lists every (card, tier) group with at least Cost copies and a next
// tier, rarest first. Ties keep first-seen inventory order.
func Groups(inv *inventory.Inventory, rank inventory.RankFunc) []Group {
	type key struct {
		id   string
		tier inventory.Tier
	}
	var order []key
	byKey := make(map[key][]int)
	for i, s := range inv.Slots() {
		k := key{s.CardID, s.Tier}
		if _, ok := byKey[k]; !ok {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], i)
	}

	var groups []Group
	for _, k := range order {
		idx := byKey[k]
		next, ok := NextTier(k.tier)
		if len(idx) < Cost || !ok {
			continue
		}
		groups = append(groups, Group{CardID: k.id, Tier: k.tier, NextTier: next, Indices: idx})
	}
	if rank != nil {
		sort.SliceStable(groups, func(i, j int) bool {
			return rank(groups[i].CardID) > rank(groups[j].CardID)
		})
	}
	return groups
}

// HasFusable reports whether any group qualifies.
func HasFusable(inv *inventory.Inventory) bool {
	return len(Groups(inv, nil)) > 0
}
