package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Rarity is an intrinsic property of a card definition. Its position in a
// RarityOrder decides how it ranks against other rarities.
type Rarity string

// Built-in rarity names used by the default configuration and card data.
const (
	RarityCommon    Rarity = "common"
	RarityRegular   Rarity = "regular"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
	RarityPrismatic Rarity = "prismatic"
	RaritySupreme   Rarity = "supreme"
)

// DefaultRarityOrder is the total order shipped with the default catalog,
// lowest first.
var DefaultRarityOrder = RarityOrder{
	RarityCommon,
	RarityRegular,
	RarityUncommon,
	RarityRare,
	RarityEpic,
	RarityLegendary,
	RarityPrismatic,
	RaritySupreme,
}

var (
	ErrEmptyRarityOrder = errors.New("catalog: rarity order is empty")
	ErrUnknownRarity    = errors.New("catalog: rarity not in configured order")
)

// RarityOrder is a configurable total order over rarities, lowest first.
type RarityOrder []Rarity

// ParseRarityOrder builds an order from raw names, rejecting blanks and duplicates.
func ParseRarityOrder(names []string) (RarityOrder, error) {
	if len(names) == 0 {
		return nil, ErrEmptyRarityOrder
	}
	seen := make(map[Rarity]bool, len(names))
	order := make(RarityOrder, 0, len(names))
	for i, n := range names {
		r := Rarity(strings.TrimSpace(n))
		if r == "" {
			return nil, fmt.Errorf("catalog: rarity order[%d] is blank", i)
		}
		if seen[r] {
			return nil, fmt.Errorf("catalog: rarity %q listed twice", r)
		}
		seen[r] = true
		order = append(order, r)
	}
	return order, nil
}

// Rank returns the zero-based position of r, lowest rarity first.
func (o RarityOrder) Rank(r Rarity) (int, bool) {
	for i, x := range o {
		if x == r {
			return i, true
		}
	}
	return -1, false
}

// Contains reports whether r is part of the order.
func (o RarityOrder) Contains(r Rarity) bool {
	_, ok := o.Rank(r)
	return ok
}

// Lowest returns the entry-level rarity, used as the roll fallback.
func (o RarityOrder) Lowest() Rarity {
	if len(o) == 0 {
		return ""
	}
	return o[0]
}
