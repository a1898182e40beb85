package player

import (
	"github.com/kasuganosora/cardpack/game/catalog"
	"github.com/kasuganosora/cardpack/persist"
)

// State is the player's profile as held by the Controller.
type State = persist.State

// Economy holds the coin prices and rewards.
type Economy struct {
	PerPackReward int
	CardPrice     int
	PackPrice     int
	BulkPackPrice int
	BulkPackCount int
}

// DefaultEconomy returns the shipped prices.
func DefaultEconomy() Economy {
	return Economy{
		PerPackReward: 10,
		CardPrice:     15,
		PackPrice:     50,
		BulkPackPrice: 200,
		BulkPackCount: 5,
	}
}

// Roller produces the cards granted by packs and purchases.
type Roller interface {
	OpenSingleCard() catalog.CardDefinition
	OpenPack() []catalog.CardDefinition
	OpenPacks(n int) []catalog.CardDefinition
}

// AddCardsOptions selects the side effects of AddCards.
type AddCardsOptions struct {
	DecrementPack bool
	GrantCoins    bool
}

// ClaimOptions is what the cooldown-pack flow passes to AddCards.
var ClaimOptions = AddCardsOptions{DecrementPack: true, GrantCoins: true}

// Opened is the outcome of a flow that rolls cards.
type Opened struct {
	Cards []catalog.CardDefinition `json:"cards"`
	State State                    `json:"state"`
}
