// Package loot rolls rarities and cards out of the catalog.
package loot

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/kasuganosora/cardpack/game/catalog"
)

// DefaultCardsPerPack is the number of cards in one pack.
const DefaultCardsPerPack = 5

// Weight is one entry of the rarity table. Weights are percentages of a
// [0, 100) draw and need not sum to 100.
type Weight struct {
	Rarity catalog.Rarity `mapstructure:"name" yaml:"name" json:"name"`
	Weight float64        `mapstructure:"weight" yaml:"weight" json:"weight"`
}

// DefaultWeights is the shipped drop table in declared order.
var DefaultWeights = []Weight{
	{catalog.RarityCommon, 35},
	{catalog.RarityRegular, 25},
	{catalog.RarityUncommon, 18},
	{catalog.RarityRare, 11},
	{catalog.RarityEpic, 5},
	{catalog.RarityLegendary, 3.5},
	{catalog.RarityPrismatic, 1},
	{catalog.RaritySupreme, 0.5},
}

var ErrNoWeights = errors.New("loot: empty weight table")

// ValidateWeights checks a table against the rarity order. Rarities absent
// from the order are configuration errors.
func ValidateWeights(weights []Weight, order catalog.RarityOrder) error {
	if len(weights) == 0 {
		return ErrNoWeights
	}
	seen := make(map[catalog.Rarity]bool, len(weights))
	for i, w := range weights {
		if !order.Contains(w.Rarity) {
			return fmt.Errorf("%w: weights[%d] %q", catalog.ErrUnknownRarity, i, w.Rarity)
		}
		if seen[w.Rarity] {
			return fmt.Errorf("loot: rarity %q weighted twice", w.Rarity)
		}
		seen[w.Rarity] = true
		if math.IsNaN(w.Weight) || math.IsInf(w.Weight, 0) || w.Weight < 0 {
			return fmt.Errorf("loot: weights[%d] %q must be a finite value >= 0", i, w.Rarity)
		}
	}
	return nil
}

// Roller draws cards from a catalog. Draws are i.i.d.: no pity, no dedup.
type Roller struct {
	cat      *catalog.Catalog
	weights  []Weight
	fallback catalog.Rarity
	perPack  int

	mu  sync.Mutex // guards rng; seeded sources are not concurrency-safe
	rng RandomSource
}

// NewRoller validates the weight table and binds it to a catalog.
// A nil rng selects DefaultRNG; perPack <= 0 selects DefaultCardsPerPack.
func NewRoller(cat *catalog.Catalog, weights []Weight, perPack int, rng RandomSource) (*Roller, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, catalog.ErrEmptyCatalog
	}
	order := cat.Order()
	if err := ValidateWeights(weights, order); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	if perPack <= 0 {
		perPack = DefaultCardsPerPack
	}
	return &Roller{
		cat:      cat,
		weights:  append([]Weight(nil), weights...),
		fallback: order.Lowest(),
		perPack:  perPack,
		rng:      rng,
	}, nil
}

// CardsPerPack returns the fixed pack size.
func (r *Roller) CardsPerPack() int { return r.perPack }

func (r *Roller) float() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// RollRarity walks the weights in declared order and returns the first
// rarity whose cumulative weight exceeds the draw. Draws beyond the total
// fall back to the lowest rarity.
func (r *Roller) RollRarity() catalog.Rarity {
	roll := r.float() * 100
	cumulative := 0.0
	for _, w := range r.weights {
		cumulative += w.Weight
		if roll < cumulative {
			return w.Rarity
		}
	}
	return r.fallback
}

// PickCard samples uniformly among cards of the rarity, or among the whole
// catalog when that rarity has no cards.
func (r *Roller) PickCard(rarity catalog.Rarity) catalog.CardDefinition {
	pool := r.cat.AllOfRarity(rarity)
	if len(pool) == 0 {
		r.mu.Lock()
		i := intN(r.rng, r.cat.Len())
		r.mu.Unlock()
		return r.cat.At(i)
	}
	r.mu.Lock()
	i := intN(r.rng, len(pool))
	r.mu.Unlock()
	return pool[i]
}

// OpenSingleCard is one rarity roll followed by one pick.
func (r *Roller) OpenSingleCard() catalog.CardDefinition {
	return r.PickCard(r.RollRarity())
}

// OpenPack returns CardsPerPack independent draws.
func (r *Roller) OpenPack() []catalog.CardDefinition {
	cards := make([]catalog.CardDefinition, 0, r.perPack)
	for i := 0; i < r.perPack; i++ {
		cards = append(cards, r.OpenSingleCard())
	}
	return cards
}

// OpenPacks concatenates n packs.
func (r *Roller) OpenPacks(n int) []catalog.CardDefinition {
	if n <= 0 {
		return nil
	}
	cards := make([]catalog.CardDefinition, 0, n*r.perPack)
	for i := 0; i < n; i++ {
		cards = append(cards, r.OpenPack()...)
	}
	return cards
}

// Distribution rolls trials rarities and returns the empirical share of each.
func (r *Roller) Distribution(trials int) map[catalog.Rarity]float64 {
	out := make(map[catalog.Rarity]float64)
	if trials <= 0 {
		return out
	}
	counts := make(map[catalog.Rarity]int)
	for i := 0; i < trials; i++ {
		counts[r.RollRarity()]++
	}
	for k, v := range counts {
		out[k] = float64(v) / float64(trials)
	}
	return out
}
