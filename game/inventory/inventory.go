// Package inventory is the ordered backpack of owned card copies.
//
// Slots carry no identity beyond their position. The sequence is never
// deduplicated; three identical slots are the normal input to a fusion.
package inventory

import (
	"errors"
	"fmt"
	"sort"
)

// Slot is one physical copy of a card at a tier.
type Slot struct {
	CardID string `json:"cardId"`
	Tier   Tier   `json:"tier"`
}

var ErrBadIndex = errors.New("inventory: bad slot index")

// Inventory is an ordered multiset of slots. The zero value is empty and
// ready to use. It is not safe for concurrent mutation.
type Inventory struct {
	slots []Slot
}

// New copies slots into a fresh inventory.
func New(slots []Slot) *Inventory {
	return &Inventory{slots: append([]Slot(nil), slots...)}
}

// Append adds a copy at the end.
func (inv *Inventory) Append(cardID string, tier Tier) {
	inv.slots = append(inv.slots, Slot{CardID: cardID, Tier: tier})
}

// AppendLowest adds a copy at the entry tier.
func (inv *Inventory) AppendLowest(cardID string) {
	inv.Append(cardID, LowestTier)
}

// RemoveAt removes the slots at the given indices, highest index first so
// earlier positions stay valid while removing. Duplicate or out-of-range
// indices fail the whole call and leave the inventory untouched.
func (inv *Inventory) RemoveAt(indices ...int) ([]Slot, error) {
	sorted := append([]int(nil), indices...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for i, idx := range sorted {
		if idx < 0 || idx >= len(inv.slots) {
			return nil, fmt.Errorf("%w: %d out of range [0,%d)", ErrBadIndex, idx, len(inv.slots))
		}
		if i > 0 && sorted[i-1] == idx {
			return nil, fmt.Errorf("%w: %d given twice", ErrBadIndex, idx)
		}
	}
	removed := make([]Slot, 0, len(sorted))
	for _, idx := range sorted {
		removed = append(removed, inv.slots[idx])
		inv.slots = append(inv.slots[:idx], inv.slots[idx+1:]...)
	}
	return removed, nil
}

// Get returns the slot at i.
func (inv *Inventory) Get(i int) (Slot, bool) {
	if i < 0 || i >= len(inv.slots) {
		return Slot{}, false
	}
	return inv.slots[i], true
}

func (inv *Inventory) Len() int { return len(inv.slots) }

// Slots returns a copy of the sequence.
func (inv *Inventory) Slots() []Slot {
	return append([]Slot{}, inv.slots...)
}

func (inv *Inventory) Clone() *Inventory {
	return New(inv.slots)
}

// Count returns how many slots match (cardID, tier).
func (inv *Inventory) Count(cardID string, tier Tier) int {
	n := 0
	for _, s := range inv.slots {
		if s.CardID == cardID && s.Tier == tier {
			n++
		}
	}
	return n
}
