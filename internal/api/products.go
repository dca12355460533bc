package api

import (
	"context"                           // Rail loaders
	"krishna_store/internal/domain"     // Domain models and errors
	"krishna_store/internal/middleware" // Authenticated caller
	"krishna_store/internal/service"    // Catalogue operations
	"krishna_store/internal/utils"      // Envelope and pagination
	"net/http"                          // HTTP status codes
	"strconv"                           // Limit parsing

	"github.com/gin-gonic/gin" // Gin web framework
)

// ProductPage is a paginated catalogue listing
type ProductPage struct {
	Products   []domain.Product `json:"products"`    // Products on this page
	Page       int              `json:"page"`        // Current page
	PageSize   int              `json:"page_size"`   // Page size
	Total      int64            `json:"total"`       // Total matching products
	TotalPages int              `json:"total_pages"` // Total pages
}

// ListProductsHandler returns active products filtered by category, q and sort
func ListProductsHandler(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		listProducts(c, products, c.Query("category"))
	}
}

// CategoryProductsHandler lists one category
func CategoryProductsHandler(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		listProducts(c, products, c.Param("categorySlug"))
	}
}

func listProducts(c *gin.Context, products *service.ProductService, category string) {
	page := utils.ParsePage(c)
	filter := service.ProductFilter{Category: category, Query: c.Query("q"), Sort: c.Query("sort")}
	list, total, err := products.List(c.Request.Context(), filter, page)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Products fetched successfully", ProductPage{
		Products:   list,
		Page:       page.Number,
		PageSize:   page.Size,
		Total:      total,
		TotalPages: page.TotalPages(total),
	})
}

// RailHandler serves a fixed storefront rail such as featured or best sellers
func RailHandler(message string, load func(ctx context.Context, limit int) ([]domain.Product, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit")) // Bad input falls back to the default
		list, err := load(c.Request.Context(), limit)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, message, list)
	}
}

// DealOfTheDayHandler returns the deepest in-stock discount
func DealOfTheDayHandler(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := products.DealOfTheDay(c.Request.Context())
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Deal of the day fetched successfully", product)
	}
}

// GetProductHandler resolves a product by id or slug
func GetProductHandler(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := products.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Product fetched successfully", product)
	}
}

// RelatedProductsHandler lists products from the same category
func RelatedProductsHandler(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			utils.Fail(c, err)
			return
		}
		limit, _ := strconv.Atoi(c.Query("limit"))
		list, err := products.Related(c.Request.Context(), id, limit)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Related products fetched successfully", list)
	}
}

// CreateProductHandler adds a product to the catalogue
func CreateProductHandler(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, _, _ := middleware.Actor(c)
		var req domain.ProductInput
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, domain.NewError(domain.KindValidation, "Invalid request", err))
			return
		}
		product, err := products.Create(c.Request.Context(), actorID, &req)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusCreated, "Product created successfully", product)
	}
}

// UpdateProductHandler applies a partial update
func UpdateProductHandler(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, _, _ := middleware.Actor(c)
		id, err := pathID(c, "id")
		if err != nil {
			utils.Fail(c, err)
			return
		}
		var req domain.ProductInput
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, domain.NewError(domain.KindValidation, "Invalid request", err))
			return
		}
		product, err := products.Update(c.Request.Context(), actorID, id, &req)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Product updated successfully", product)
	}
}

// DeleteProductHandler hides a product from the storefront
func DeleteProductHandler(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, _, _ := middleware.Actor(c)
		id, err := pathID(c, "id")
		if err != nil {
			utils.Fail(c, err)
			return
		}
		if err := products.Delete(c.Request.Context(), actorID, id); err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Product deleted successfully", nil)
	}
}

// UpdateStockHandler sets stock or applies a delta
func UpdateStockHandler(products *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, _, _ := middleware.Actor(c)
		id, err := pathID(c, "id")
		if err != nil {
			utils.Fail(c, err)
			return
		}
		var req domain.StockChange
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, domain.NewError(domain.KindValidation, "Invalid request", err))
			return
		}
		product, err := products.UpdateStock(c.Request.Context(), actorID, id, req)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Stock updated successfully", product)
	}
}
