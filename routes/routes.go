package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes is the single entry-point that wires up all route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	// Public auth: bot login handshake + guest identities
	SetupAuthRoutes(r, db)

	// Public storefront: catalog + blog
	SetupCatalogRoutes(r, db)

	// Cart + checkout + promo apply (user or guest token)
	SetupShopRoutes(r, db)

	// Account order history (JWT-protected)
	SetupOrderRoutes(r, db)

	// Admin CRUD (API-key-protected)
	SetupAdminRoutes(r, db)
}
