// Package catalog holds the immutable registry of card definitions.
package catalog

import (
	"errors"
	"fmt"
)

// CardType distinguishes what a card depicts.
type CardType string

const (
	TypeCollaborator CardType = "collaborator"
	TypeProduct      CardType = "product"
)

// CardDefinition is one collectible card as authored in the catalog data.
type CardDefinition struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Type        CardType `yaml:"type" json:"type"`
	Rarity      Rarity   `yaml:"rarity" json:"rarity"`
	Image       string   `yaml:"image,omitempty" json:"image,omitempty"`
}

// Group is one source list of definitions (collaborators, products, ...).
type Group struct {
	Name  string           `yaml:"name"`
	Cards []CardDefinition `yaml:"cards"`
}

var ErrEmptyCatalog = errors.New("catalog: no card definitions")

// Catalog is a read-only id → definition registry. It is safe for concurrent
// use because nothing mutates it after New returns.
type Catalog struct {
	order    RarityOrder
	cards    []CardDefinition
	byID     map[string]int
	byRarity map[Rarity][]int
}

// New concatenates groups in the given order and validates every entry
// against the rarity order.
func New(order RarityOrder, groups ...Group) (*Catalog, error) {
	if len(order) == 0 {
		return nil, ErrEmptyRarityOrder
	}
	c := &Catalog{
		order:    append(RarityOrder(nil), order...),
		byID:     make(map[string]int),
		byRarity: make(map[Rarity][]int),
	}
	for _, g := range groups {
		for _, card := range g.Cards {
			if err := c.add(g.Name, card); err != nil {
				return nil, err
			}
		}
	}
	if len(c.cards) == 0 {
		return nil, ErrEmptyCatalog
	}
	return c, nil
}

func (c *Catalog) add(group string, card CardDefinition) error {
	if card.ID == "" {
		return fmt.Errorf("catalog: group %q: card without id", group)
	}
	if _, dup := c.byID[card.ID]; dup {
		return fmt.Errorf("catalog: duplicate card id %q", card.ID)
	}
	switch card.Type {
	case TypeCollaborator, TypeProduct:
	default:
		return fmt.Errorf("catalog: card %q: unknown type %q", card.ID, card.Type)
	}
	if !c.order.Contains(card.Rarity) {
		return fmt.Errorf("%w: card %q has rarity %q", ErrUnknownRarity, card.ID, card.Rarity)
	}
	idx := len(c.cards)
	c.cards = append(c.cards, card)
	c.byID[card.ID] = idx
	c.byRarity[card.Rarity] = append(c.byRarity[card.Rarity], idx)
	return nil
}

// FindByID looks a definition up. Stale ids from old saves return false.
func (c *Catalog) FindByID(id string) (CardDefinition, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return CardDefinition{}, false
	}
	return c.cards[idx], true
}

// AllOfRarity returns the definitions of one rarity; the result may be empty.
func (c *Catalog) AllOfRarity(r Rarity) []CardDefinition {
	idxs := c.byRarity[r]
	out := make([]CardDefinition, len(idxs))
	for i, idx := range idxs {
		out[i] = c.cards[idx]
	}
	return out
}

// All returns every definition in catalog order.
func (c *Catalog) All() []CardDefinition {
	return append([]CardDefinition(nil), c.cards...)
}

// At returns the i-th definition in catalog order.
func (c *Catalog) At(i int) CardDefinition { return c.cards[i] }

// Len is the number of definitions.
func (c *Catalog) Len() int { return len(c.cards) }

// Order returns the rarity order the catalog was validated against.
func (c *Catalog) Order() RarityOrder { return append(RarityOrder(nil), c.order...) }

// Rank returns the rarity rank of a card id, or -1 for orphans.
func (c *Catalog) Rank(id string) int {
	card, ok := c.FindByID(id)
	if !ok {
		return -1
	}
	r, _ := c.order.Rank(card.Rarity)
	return r
}
