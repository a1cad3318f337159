package routes

import (
	orderControllers "github.com/IV-YADOV/eternal-tick/controllers/order"
	"github.com/IV-YADOV/eternal-tick/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupOrderRoutes registers the account-facing order history endpoints.
func SetupOrderRoutes(r *gin.Engine, db *gorm.DB) {
	orders := r.Group("/orders")
	orders.Use(middleware.ValidateToken, middleware.RequireUser)
	{
		orders.GET("/", orderControllers.GetMyOrdersHandler(db))
		orders.GET("/:number", orderControllers.GetOrderByNumberHandler(db))
	}
}
