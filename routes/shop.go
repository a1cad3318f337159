package routes

import (
	cartControllers "github.com/IV-YADOV/eternal-tick/controllers/cart"
	checkoutControllers "github.com/IV-YADOV/eternal-tick/controllers/checkout"
	promoControllers "github.com/IV-YADOV/eternal-tick/controllers/promo"
	"github.com/IV-YADOV/eternal-tick/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupShopRoutes registers cart, promo and checkout endpoints. All of them
// accept either an account token or a guest token.
func SetupShopRoutes(r *gin.Engine, db *gorm.DB) {
	cartGroup := r.Group("/cart")
	cartGroup.Use(middleware.ValidateToken)
	{
		cartGroup.GET("/", cartControllers.GetCartHandler(db))
		cartGroup.GET("/count", cartControllers.GetCartCountHandler(db))
		cartGroup.POST("/items", cartControllers.AddCartItemHandler(db))
		cartGroup.DELETE("/items/:variant_id", cartControllers.DeleteCartItemHandler(db))
		cartGroup.DELETE("/", cartControllers.ClearCartHandler(db))
	}

	promoGroup := r.Group("/promo")
	promoGroup.Use(middleware.OptionalToken)
	{
		promoGroup.POST("/apply", promoControllers.ApplyPromoHandler(db))
	}

	// Subscription webhook, guarded by its own shared secret
	r.POST("/promos/issue-for-subscription", promoControllers.IssueForSubscriptionHandler(db))

	checkoutGroup := r.Group("/checkout")
	checkoutGroup.Use(middleware.ValidateToken)
	{
		checkoutGroup.POST("/", checkoutControllers.CheckoutHandler(db))
	}
}
