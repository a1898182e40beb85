// Package rest exposes the player controller to a local renderer over JSON.
package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/cardpack/game/catalog"
	"github.com/kasuganosora/cardpack/game/inventory"
	"github.com/kasuganosora/cardpack/game/player"
	mw "github.com/kasuganosora/cardpack/middleware"
	"go.uber.org/zap"
)

// Handler serves the game endpoints for one profile.
type Handler struct {
	ctl      *player.Controller
	cat      *catalog.Catalog
	pageSize int
	logger   *zap.Logger
}

// NewHandler creates a new Handler. A non-positive pageSize uses the
// backpack default.
func NewHandler(ctl *player.Controller, cat *catalog.Catalog, pageSize int, logger *zap.Logger) *Handler {
	if pageSize <= 0 {
		pageSize = inventory.DefaultPageSize
	}
	return &Handler{ctl: ctl, cat: cat, pageSize: pageSize, logger: logger}
}

// internal logs err and answers 500. The cause stays in the log.
func (h *Handler) internal(c *gin.Context, op string, err error) {
	h.logger.Error(op+" failed", zap.Error(err), zap.String("trace_id", mw.GetTraceID(c)))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// State handles GET /api/state.
func (h *Handler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctl.View())
}

// Reset handles POST /api/reset.
func (h *Handler) Reset(c *gin.Context) {
	st, err := h.ctl.Reset(c.Request.Context())
	if err != nil {
		h.internal(c, "reset", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "state": st})
}
