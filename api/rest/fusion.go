package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/cardpack/game/fusion"
	"github.com/kasuganosora/cardpack/game/inventory"
)

// FusionGroups handles GET /api/fusion/groups.
func (h *Handler) FusionGroups(c *gin.Context) {
	groups := fusion.Groups(inventory.New(h.ctl.State().Slots), h.cat.Rank)
	if groups == nil {
		groups = []fusion.Group{}
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// Fuse handles POST /api/fusion. An invalid selection is not an error: the
// response reports fused=false with the unchanged state.
func (h *Handler) Fuse(c *gin.Context) {
	var req struct {
		Indices []int `json:"indices" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	st, fused, err := h.ctl.FuseSlots(c.Request.Context(), req.Indices)
	if err != nil {
		h.internal(c, "fuse", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fused": fused, "state": st})
}
