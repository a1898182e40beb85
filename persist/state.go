// Package persist encodes player state as a versioned JSON document, upgrades
// older documents through an explicit migration chain, and stores the result
// in a key-value backend.
package persist

import (
	"time"

	"github.com/kasuganosora/cardpack/game/accrual"
	"github.com/kasuganosora/cardpack/game/inventory"
)

// State is the persisted player profile.
type State struct {
	PackCount    int              `json:"packCount"`
	LastPackTick time.Time        `json:"lastPackTick"`
	Coins        int              `json:"coins"`
	Slots        []inventory.Slot `json:"backpackSlots"`
}

// DefaultState is a fresh profile: full packs, no coins, empty backpack.
func DefaultState(now time.Time, rules accrual.Rules) State {
	return State{
		PackCount:    rules.MaxPacks,
		LastPackTick: now,
		Slots:        []inventory.Slot{},
	}
}

// Clone deep-copies the slot slice.
func (s State) Clone() State {
	s.Slots = append([]inventory.Slot{}, s.Slots...)
	return s
}
