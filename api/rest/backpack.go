package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/cardpack/game/catalog"
	"github.com/kasuganosora/cardpack/game/inventory"
)

// backpackEntry is a slot as drawn in the grid. Card is nil for slots whose
// id is no longer in the catalog.
type backpackEntry struct {
	Index  int                     `json:"index"`
	CardID string                  `json:"cardId"`
	Tier   inventory.Tier          `json:"tier"`
	Card   *catalog.CardDefinition `json:"card"`
	Orphan bool                    `json:"orphan"`
}

// Backpack handles GET /api/backpack?page=N.
func (h *Handler) Backpack(c *gin.Context) {
	page := 1
	if s := c.Query("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
			return
		}
		page = n
	}

	inv := inventory.New(h.ctl.State().Slots)
	p := inventory.Paginate(inv.Sorted(h.cat.Rank), page, h.pageSize)

	entries := make([]backpackEntry, 0, len(p.Entries))
	for _, e := range p.Entries {
		out := backpackEntry{Index: e.Index, CardID: e.Slot.CardID, Tier: e.Slot.Tier}
		if card, ok := h.cat.FindByID(e.Slot.CardID); ok {
			out.Card = &card
		} else {
			out.Orphan = true
		}
		entries = append(entries, out)
	}
	c.JSON(http.StatusOK, gin.H{
		"entries":     entries,
		"page":        p.Page,
		"total_pages": p.TotalPages,
		"total":       p.Total,
	})
}
