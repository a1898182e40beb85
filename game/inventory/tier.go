package inventory

import "strings"

// Tier is a fusion-upgrade level layered on top of a card definition.
type Tier string

const (
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
	TierDiamond  Tier = "diamond"
)

// Tiers lists every tier from lowest to highest.
var Tiers = []Tier{TierSilver, TierGold, TierPlatinum, TierDiamond}

// LowestTier is the entry tier for newly acquired cards.
const LowestTier = TierSilver

// names written by older saves.
var tierAliases = map[string]Tier{
	"prata":    TierSilver,
	"ouro":     TierGold,
	"platina":  TierPlatinum,
	"diamante": TierDiamond,
}

// ParseTier resolves a tier name, accepting legacy aliases. Matching is
// case-insensitive.
func ParseTier(s string) (Tier, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, t := range Tiers {
		if string(t) == key {
			return t, true
		}
	}
	t, ok := tierAliases[key]
	return t, ok
}

// Index returns the position of t in Tiers, or -1.
func (t Tier) Index() int {
	for i, v := range Tiers {
		if v == t {
			return i
		}
	}
	return -1
}

// Valid reports whether t is one of Tiers.
func (t Tier) Valid() bool { return t.Index() >= 0 }
