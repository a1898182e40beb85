package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/cardpack/game/player"
)

type openFn func(ctx context.Context) (player.Opened, bool, error)

// ClaimPack handles POST /api/packs/claim.
func (h *Handler) ClaimPack(c *gin.Context) {
	h.open(c, "claim pack", h.ctl.ClaimPack, http.StatusConflict, "no packs available")
}

// BuyCard handles POST /api/shop/card.
func (h *Handler) BuyCard(c *gin.Context) {
	h.open(c, "buy card", h.ctl.BuySingleCard, http.StatusPaymentRequired, "insufficient coins")
}

// BuyPack handles POST /api/shop/pack.
func (h *Handler) BuyPack(c *gin.Context) {
	h.open(c, "buy pack", h.ctl.BuyAndOpenPack, http.StatusPaymentRequired, "insufficient coins")
}

// BuyBulk handles POST /api/shop/bulk.
func (h *Handler) BuyBulk(c *gin.Context) {
	h.open(c, "buy bulk", h.ctl.BuyBulkPacks, http.StatusPaymentRequired, "insufficient coins")
}

func (h *Handler) open(c *gin.Context, op string, fn openFn, refused int, reason string) {
	res, ok, err := fn(c.Request.Context())
	if err != nil {
		h.internal(c, op, err)
		return
	}
	if !ok {
		c.JSON(refused, gin.H{"ok": false, "error": reason, "state": res.State})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "cards": res.Cards, "state": res.State})
}
