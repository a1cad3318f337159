package routes

import (
	adminController "github.com/IV-YADOV/eternal-tick/controllers/admin"
	blogControllers "github.com/IV-YADOV/eternal-tick/controllers/blog"
	orderControllers "github.com/IV-YADOV/eternal-tick/controllers/order"
	promoControllers "github.com/IV-YADOV/eternal-tick/controllers/promo"
	"github.com/IV-YADOV/eternal-tick/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. API-key-protected.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey)
	{
		// Products
		adminGroup.GET("/products", adminController.ListProductsHandler(db))
		adminGroup.POST("/products", adminController.CreateProductHandler(db))
		adminGroup.PUT("/products/:id", adminController.UpdateProductHandler(db))
		adminGroup.DELETE("/products/:id", adminController.DeleteProductHandler(db))
		adminGroup.POST("/upload", adminController.UploadImageHandler())

		// Promo codes
		adminGroup.GET("/promos", promoControllers.ListPromosHandler(db))
		adminGroup.GET("/promos/:id", promoControllers.GetPromoHandler(db))
		adminGroup.POST("/promos", promoControllers.CreatePromoHandler(db))
		adminGroup.PUT("/promos/:id", promoControllers.UpdatePromoHandler(db))
		adminGroup.DELETE("/promos/:id", promoControllers.DeletePromoHandler(db))

		// Orders
		adminGroup.GET("/orders", orderControllers.GetAllOrdersHandler(db))
		adminGroup.GET("/orders/export", orderControllers.ExportOrdersToExcel(db))
		adminGroup.GET("/orders/ws", orderControllers.OrderWebSocketHandler)
		adminGroup.PUT("/orders/:orderID/status", orderControllers.UpdateOrderStatusHandler(db))
		adminGroup.DELETE("/orders/:orderID", orderControllers.DeleteOrderHandler(db))

		// Blog posts
		adminGroup.GET("/posts", blogControllers.ListPostsHandler(db))
		adminGroup.POST("/posts", blogControllers.CreatePostHandler(db))
		adminGroup.PUT("/posts/:id", blogControllers.UpdatePostHandler(db))
		adminGroup.DELETE("/posts/:id", blogControllers.DeletePostHandler(db))
	}
}
