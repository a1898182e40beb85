package fusion

import (
	"testing"

	"github.com/kasuganosora/cardpack/game/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(id string, t inventory.Tier) inventory.Slot {
	return inventory.Slot{CardID: id, Tier: t}
}

func TestNextTier(t *testing.T) {
	cases := []struct {
		in   inventory.Tier
		want inventory.Tier
		ok   bool
	}{
		{inventory.TierSilver, inventory.TierGold, true},
		{inventory.TierGold, inventory.TierPlatinum, true},
		{inventory.TierPlatinum, inventory.TierDiamond, true},
		{inventory.TierDiamond, "", false},
		{"bronze", "", false},
	}
	for _, tc := range cases {
		got, ok := NextTier(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestFuse_Success(t *testing.T) {
	inv := inventory.New([]inventory.Slot{
		slot("prod-cafe", inventory.TierSilver),
		slot("other", inventory.TierSilver),
		slot("prod-cafe", inventory.TierSilver),
		slot("prod-cafe", inventory.TierSilver),
	})
	require.True(t, CanFuse(inv, []int{0, 2, 3}))

	res, ok := Fuse(inv, []int{3, 0, 2})
	require.True(t, ok)
	assert.Equal(t, 2, res.Inventory.Len())
	assert.Equal(t, []inventory.Slot{
		slot("other", inventory.TierSilver),
		slot("prod-cafe", inventory.TierGold),
	}, res.Inventory.Slots())
	assert.Len(t, res.Removed, Cost)
	assert.Equal(t, slot("prod-cafe", inventory.TierGold), res.Added)

	// The input is left as it was.
	assert.Equal(t, 4, inv.Len())
}

func TestFuse_InvalidIsNoop(t *testing.T) {
	inv := inventory.New([]inventory.Slot{
		slot("a", inventory.TierSilver),
		slot("a", inventory.TierSilver),
		slot("a", inventory.TierGold),
		slot("b", inventory.TierSilver),
		slot("d", inventory.TierDiamond),
		slot("d", inventory.TierDiamond),
		slot("d", inventory.TierDiamond),
		slot("a", inventory.TierSilver),
	})
	cases := map[string][]int{
		"two indices":     {0, 1},
		"four indices":    {0, 1, 7, 3},
		"mixed tier":      {0, 1, 2},
		"mixed card":      {0, 1, 3},
		"max tier":        {4, 5, 6},
		"out of range":    {0, 1, 8},
		"negative":        {0, 1, -1},
		"duplicate index": {0, 1, 1},
		"nothing":         nil,
	}
	for name, idx := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, CanFuse(inv, idx))
			_, ok := Fuse(inv, idx)
			assert.False(t, ok)
			assert.Equal(t, 8, inv.Len())
		})
	}
	assert.True(t, CanFuse(inv, []int{0, 1, 7}))
	assert.False(t, CanFuse(nil, []int{0, 1, 2}))
}

func TestGroups(t *testing.T) {
	inv := inventory.New([]inventory.Slot{
		slot("common", inventory.TierSilver),
		slot("rare", inventory.TierGold),
		slot("common", inventory.TierSilver),
		slot("rare", inventory.TierGold),
		slot("common", inventory.TierSilver),
		slot("rare", inventory.TierGold),
		slot("common", inventory.TierSilver),
		slot("max", inventory.TierDiamond),
		slot("max", inventory.TierDiamond),
		slot("max", inventory.TierDiamond),
		slot("pair", inventory.TierSilver),
		slot("pair", inventory.TierSilver),
	})
	rank := func(id string) int {
		if id == "rare" {
			return 3
		}
		return 0
	}

	groups := Groups(inv, rank)
	require.Len(t, groups, 2)
	assert.Equal(t, "rare", groups[0].CardID)
	assert.Equal(t, inventory.TierPlatinum, groups[0].NextTier)
	assert.Equal(t, []int{1, 3, 5}, groups[0].Indices)
	assert.Equal(t, "common", groups[1].CardID)
	assert.Equal(t, []int{0, 2, 4, 6}, groups[1].Indices)
	assert.Equal(t, []int{0, 2, 4}, groups[1].Selection())

	assert.True(t, CanFuse(inv, groups[1].Selection()))
	assert.True(t, HasFusable(inv))
	assert.False(t, HasFusable(inventory.New(nil)))
}
