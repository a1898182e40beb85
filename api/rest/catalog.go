package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Catalog handles GET /api/catalog.
func (h *Handler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rarities": h.cat.Order(), "cards": h.cat.All()})
}

// Card handles GET /api/catalog/:id.
func (h *Handler) Card(c *gin.Context) {
	card, ok := h.cat.FindByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}
	c.JSON(http.StatusOK, card)
}
