package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(id string, r Rarity) CardDefinition {
	return CardDefinition{ID: id, Name: id, Type: TypeProduct, Rarity: r}
}

func TestNew_ConcatenatesGroups(t *testing.T) {
	c, err := New(DefaultRarityOrder,
		Group{Name: "a", Cards: []CardDefinition{card("x", RarityCommon), card("y", RarityRare)}},
		Group{Name: "b", Cards: []CardDefinition{card("z", RarityCommon)}},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, "z", c.At(2).ID)

	got, ok := c.FindByID("y")
	require.True(t, ok)
	assert.Equal(t, RarityRare, got.Rarity)

	_, ok = c.FindByID("missing")
	assert.False(t, ok)
}

func TestAllOfRarity_EmptyBucketAllowed(t *testing.T) {
	c, err := New(DefaultRarityOrder, Group{Cards: []CardDefinition{
		card("a", RarityCommon), card("b", RarityCommon), card("c", RarityEpic),
	}})
	require.NoError(t, err)
	assert.Len(t, c.AllOfRarity(RarityCommon), 2)
	assert.Empty(t, c.AllOfRarity(RaritySupreme))
}

func TestNew_RejectsUnknownRarity(t *testing.T) {
	_, err := New(RarityOrder{RarityCommon, RarityRare}, Group{Cards: []CardDefinition{
		card("a", RarityCommon), card("b", RarityPrismatic),
	}})
	assert.ErrorIs(t, err, ErrUnknownRarity)
}

func TestNew_RejectsBadEntries(t *testing.T) {
	_, err := New(DefaultRarityOrder, Group{Cards: []CardDefinition{card("a", RarityCommon), card("a", RarityRare)}})
	assert.Error(t, err, "duplicate id")

	_, err = New(DefaultRarityOrder, Group{Cards: []CardDefinition{card("", RarityCommon)}})
	assert.Error(t, err, "blank id")

	bad := card("t", RarityCommon)
	bad.Type = "tool"
	_, err = New(DefaultRarityOrder, Group{Cards: []CardDefinition{bad}})
	assert.Error(t, err, "unknown type")

	_, err = New(DefaultRarityOrder)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = New(nil, Group{Cards: []CardDefinition{card("a", RarityCommon)}})
	assert.ErrorIs(t, err, ErrEmptyRarityOrder)
}

func TestRank(t *testing.T) {
	c, err := New(DefaultRarityOrder, Group{Cards: []CardDefinition{card("a", RarityCommon), card("b", RaritySupreme)}})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Rank("a"))
	assert.Equal(t, len(DefaultRarityOrder)-1, c.Rank("b"))
	assert.Equal(t, -1, c.Rank("gone"))
}

func TestParseRarityOrder(t *testing.T) {
	o, err := ParseRarityOrder([]string{"common", " rare ", "mythic"})
	require.NoError(t, err)
	assert.Equal(t, RarityOrder{"common", "rare", "mythic"}, o)
	assert.Equal(t, Rarity("common"), o.Lowest())

	_, err = ParseRarityOrder([]string{"common", "common"})
	assert.Error(t, err)
	_, err = ParseRarityOrder([]string{"common", ""})
	assert.Error(t, err)
	_, err = ParseRarityOrder(nil)
	assert.ErrorIs(t, err, ErrEmptyRarityOrder)
}

func TestDefault_EmbeddedData(t *testing.T) {
	c, err := Default(DefaultRarityOrder)
	require.NoError(t, err)
	assert.Equal(t, 44, c.Len())

	cafe, ok := c.FindByID("prod-cafe")
	require.True(t, ok)
	assert.Equal(t, RarityCommon, cafe.Rarity)
	assert.Equal(t, TypeProduct, cafe.Type)

	// The shipped data never uses epic or legendary.
	assert.Empty(t, c.AllOfRarity(RarityEpic))
	assert.Len(t, c.AllOfRarity(RaritySupreme), 1)
}

func TestDefault_FiveRankOrderIsAConfigError(t *testing.T) {
	_, err := Default(RarityOrder{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary})
	assert.ErrorIs(t, err, ErrUnknownRarity)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.yaml")
	data := `groups:
  - name: mini
    cards:
      - id: m1
        name: One
        type: collaborator
        rarity: common
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path, DefaultRarityOrder)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = Load(filepath.Join(t.TempDir(), "nope.yaml"), DefaultRarityOrder)
	assert.Error(t, err)
}
