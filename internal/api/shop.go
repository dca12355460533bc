package api

import (
	"krishna_store/internal/service"
	"krishna_store/internal/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PublicShopInfoHandler serves the storefront view; gstNumber and other internal fields are never included
func PublicShopInfoHandler(shop *service.ShopInfoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := shop.GetPublic(c.Request.Context())
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Shop information fetched successfully", info)
	}
}
