package inventory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	cases := map[string]Tier{
		"silver":   TierSilver,
		"Gold":     TierGold,
		" prata ":  TierSilver,
		"ouro":     TierGold,
		"platina":  TierPlatinum,
		"diamante": TierDiamond,
		"diamond":  TierDiamond,
	}
	for in, want := range cases {
		got, ok := ParseTier(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseTier("bronze")
	assert.False(t, ok)
	assert.Equal(t, TierSilver, LowestTier)
	assert.Equal(t, 3, TierDiamond.Index())
	assert.False(t, Tier("bronze").Valid())
}

func TestAppendAndGet(t *testing.T) {
	var inv Inventory
	inv.AppendLowest("a")
	inv.Append("b", TierGold)

	assert.Equal(t, 2, inv.Len())
	s, ok := inv.Get(1)
	require.True(t, ok)
	assert.Equal(t, Slot{CardID: "b", Tier: TierGold}, s)

	_, ok = inv.Get(2)
	assert.False(t, ok)
	_, ok = inv.Get(-1)
	assert.False(t, ok)
}

func TestRemoveAt_HighestIndexFirst(t *testing.T) {
	inv := New([]Slot{{"a", TierSilver}, {"b", TierSilver}, {"c", TierSilver}, {"d", TierSilver}, {"e", TierSilver}})

	removed, err := inv.RemoveAt(0, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, []Slot{{"e", TierSilver}, {"c", TierSilver}, {"a", TierSilver}}, removed)
	assert.Equal(t, []Slot{{"b", TierSilver}, {"d", TierSilver}}, inv.Slots())
}

func TestRemoveAt_RejectsBadIndices(t *testing.T) {
	orig := []Slot{{"a", TierSilver}, {"b", TierGold}}
	for _, idx := range [][]int{{0, 0}, {2}, {-1}, {1, 5}} {
		inv := New(orig)
		_, err := inv.RemoveAt(idx...)
		assert.ErrorIs(t, err, ErrBadIndex, "%v", idx)
		assert.Equal(t, orig, inv.Slots(), "%v", idx)
	}
}

func TestClone_IsIndependent(t *testing.T) {
	inv := New([]Slot{{"a", TierSilver}})
	c := inv.Clone()
	c.AppendLowest("b")
	assert.Equal(t, 1, inv.Len())
	assert.Equal(t, 2, c.Len())

	slots := inv.Slots()
	slots[0].CardID = "zzz"
	s, _ := inv.Get(0)
	assert.Equal(t, "a", s.CardID)
}

func TestCount(t *testing.T) {
	inv := New([]Slot{{"a", TierSilver}, {"a", TierGold}, {"a", TierSilver}})
	assert.Equal(t, 2, inv.Count("a", TierSilver))
	assert.Equal(t, 0, inv.Count("b", TierSilver))
}

func TestSorted(t *testing.T) {
	ranks := map[string]int{"common1": 0, "rare1": 3, "rare2": 3}
	rank := func(id string) int {
		if r, ok := ranks[id]; ok {
			return r
		}
		return -1
	}
	inv := New([]Slot{
		{"common1", TierSilver},
		{"rare2", TierSilver},
		{"orphan", TierDiamond},
		{"rare1", TierSilver},
		{"rare1", TierPlatinum},
	})

	view := inv.Sorted(rank)
	got := make([]int, len(view))
	for i, e := range view {
		got[i] = e.Index
	}
	assert.Equal(t, []int{4, 3, 1, 0, 2}, got)
	assert.Equal(t, "orphan", view[4].Slot.CardID)
}

func TestPaginate(t *testing.T) {
	view := make([]Entry, 65)
	for i := range view {
		view[i] = Entry{Index: i, Slot: Slot{CardID: fmt.Sprint(i), Tier: TierSilver}}
	}

	p := Paginate(view, 1, 0)
	assert.Equal(t, 3, p.TotalPages)
	assert.Len(t, p.Entries, DefaultPageSize)

	p = Paginate(view, 3, 30)
	assert.Len(t, p.Entries, 5)
	assert.Equal(t, 60, p.Entries[0].Index)

	p = Paginate(view, 99, 30)
	assert.Equal(t, 3, p.Page)

	p = Paginate(view, -2, 30)
	assert.Equal(t, 1, p.Page)

	p = Paginate(nil, 1, 30)
	assert.Equal(t, 1, p.TotalPages)
	assert.Empty(t, p.Entries)
}
