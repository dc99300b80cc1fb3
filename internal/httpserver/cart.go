package httpserver

import (
	"net/http"

	cartsvc "callorder/internal/service/cart"
	"github.com/gin-gonic/gin"
)

type toggleRequest struct {
	ItemID string `json:"itemId" binding:"required"`
}

func toggleCartHandler(carts *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req toggleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "itemId required"})
			return
		}
		snap, err := carts.Toggle(c.Request.Context(), c.Param("consumerID"), c.Param("businessID"), req.ItemID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

func getCartHandler(carts *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, carts.Get(c.Param("consumerID"), c.Param("businessID")))
	}
}

func clearCartHandler(carts *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		carts.Clear(c.Param("consumerID"), c.Param("businessID"))
		c.Status(http.StatusNoContent)
	}
}
