package httpserver

import (
	"net/http"

	catalogrepo "callorder/internal/repository/catalog"
	"github.com/gin-gonic/gin"
)

func listCatalogHandler(repo catalogrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		businessID := c.Param("businessID")
		business, err := repo.GetBusiness(c.Request.Context(), businessID)
		if err != nil {
			respondError(c, err)
			return
		}
		items, err := repo.ListItems(c.Request.Context(), businessID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"business": business, "items": items})
	}
}
