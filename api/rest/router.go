package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/cardpack/audit"
	mw "github.com/kasuganosora/cardpack/middleware"
)

// TaskLister reports the background tasks that are running.
type TaskLister interface {
	ListTickers() []string
}

// Health handles GET /health.
func Health(tasks TaskLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "tasks": tasks.ListTickers()})
	}
}

// Register mounts the game routes under /api. Mutating routes are audited
// when sink is non-nil.
func Register(r gin.IRouter, h *Handler, sink mw.AuditLogger, profile string) {
	audited := func(action string) gin.HandlerFunc {
		if sink == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return mw.Audit(sink, profile, action)
	}

	api := r.Group("/api")
	{
		api.GET("/state", h.State)
		api.POST("/reset", audited(audit.ActionReset), h.Reset)

		api.POST("/packs/claim", audited(audit.ActionPackClaim), h.ClaimPack)

		shopG := api.Group("/shop")
		shopG.POST("/card", audited(audit.ActionShopCard), h.BuyCard)
		shopG.POST("/pack", audited(audit.ActionShopPack), h.BuyPack)
		shopG.POST("/bulk", audited(audit.ActionShopBulk), h.BuyBulk)

		api.GET("/backpack", h.Backpack)

		api.GET("/fusion/groups", h.FusionGroups)
		api.POST("/fusion", audited(audit.ActionFuse), h.Fuse)

		api.GET("/catalog", h.Catalog)
		api.GET("/catalog/:id", h.Card)
	}
}
