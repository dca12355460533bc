package api

import (
	"krishna_store/internal/birthday"   // Birthday wishes
	"krishna_store/internal/middleware" // Auth and role gates
	"krishna_store/internal/service"    // Business operations

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// Deps carries everything the handlers need
type Deps struct {
	DB          *gorm.DB
	JWTSecret   string
	Environment string
	Accounts    *service.AccountService
	Subadmins   *service.SubadminService
	ShopInfo    *service.ShopInfoService
	Orders      *service.OrderService
	Products    *service.ProductService
	Birthdays   *birthday.Service
}

// RegisterRoutes mounts the API under /api
func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", HealthHandler(d.Environment)) // Liveness check for load balancers

	api := r.Group("/api")
	api.GET("/health", HealthHandler(d.Environment))
	api.GET("/shop-info", PublicShopInfoHandler(d.ShopInfo)) // Storefront view, no auth

	// Auth routes
	auth := api.Group("/auth")
	auth.POST("/register", RegisterHandler(d.Accounts))    // Customer self-registration
	auth.POST("/send-otp", SendOTPHandler(d.Accounts))     // Login code
	auth.POST("/verify-otp", VerifyOTPHandler(d.Accounts)) // Code for token

	// Catalogue reads, no auth
	products := api.Group("/products")
	products.GET("", ListProductsHandler(d.Products))
	products.GET("/featured", RailHandler("Featured products fetched successfully", d.Products.Featured))
	products.GET("/best-sellers", RailHandler("Best sellers fetched successfully", d.Products.BestSellers))
	products.GET("/new-arrivals", RailHandler("New arrivals fetched successfully", d.Products.NewArrivals))
	products.GET("/deal-of-the-day", DealOfTheDayHandler(d.Products))
	products.GET("/category/:categorySlug", CategoryProductsHandler(d.Products))
	products.GET("/:id", GetProductHandler(d.Products)) // Numeric id or slug
	products.GET("/:id/related", RelatedProductsHandler(d.Products))

	// Everything below requires a valid token
	authed := api.Group("")
	authed.Use(middleware.JWTAuthMiddleware(d.JWTSecret, d.DB))
	authed.GET("/orders", MyOrdersHandler(d.Orders)) // Caller's own orders

	// Staff management, admin only
	staff := authed.Group("/settings/subadmins")
	staff.Use(middleware.AdminOnly())
	staff.POST("", CreateSubadminHandler(d.Subadmins))
	staff.GET("", ListSubadminsHandler(d.Subadmins))
	staff.PUT("/:id", UpdateSubadminHandler(d.Subadmins))
	staff.DELETE("/:id", DeleteSubadminHandler(d.Subadmins))

	// Shop settings, admin or subadmin
	settings := authed.Group("/settings/shop-info")
	settings.Use(middleware.AdminOrSubadmin())
	settings.GET("", GetShopInfoHandler(d.ShopInfo))
	settings.PUT("", UpdateShopInfoHandler(d.ShopInfo))

	// Order administration, admin or subadmin
	orders := authed.Group("/admin/orders")
	orders.Use(middleware.AdminOrSubadmin())
	orders.GET("", ListOrdersHandler(d.Orders))
	orders.GET("/stats", OrderStatsHandler(d.Orders))
	orders.GET("/search", SearchOrdersHandler(d.Orders)) // Before /:id so it is not taken as an id
	orders.GET("/:id", GetOrderHandler(d.Orders))
	orders.PUT("/:id/status", UpdateOrderStatusHandler(d.Orders))
	orders.PUT("/:id/payment", UpdatePaymentStatusHandler(d.Orders))

	// Catalogue management, admin or subadmin
	catalogue := authed.Group("/products")
	catalogue.Use(middleware.AdminOrSubadmin())
	catalogue.POST("", CreateProductHandler(d.Products))
	catalogue.PUT("/:id", UpdateProductHandler(d.Products))
	catalogue.DELETE("/:id", DeleteProductHandler(d.Products))
	catalogue.PUT("/:id/stock", UpdateStockHandler(d.Products))

	// Birthday wishes, admin or subadmin
	birthdays := authed.Group("/birthdays")
	birthdays.Use(middleware.AdminOrSubadmin())
	birthdays.GET("/today", TodayBirthdaysHandler(d.Birthdays))
	birthdays.POST("/:userId/wish", SendWishHandler(d.Birthdays))
	birthdays.POST("/:userId/offer", SendOfferHandler(d.Birthdays))
}
