package routes

import (
	blogControllers "github.com/IV-YADOV/eternal-tick/controllers/blog"
	catalogControllers "github.com/IV-YADOV/eternal-tick/controllers/catalog"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupCatalogRoutes registers the public browsing endpoints.
func SetupCatalogRoutes(r *gin.Engine, db *gorm.DB) {
	r.GET("/catalog", catalogControllers.GetProducts(db))
	r.GET("/catalog/:slug", catalogControllers.GetProductBySlug(db))

	r.GET("/blog", blogControllers.GetPosts(db))
	r.GET("/blog/:slug", blogControllers.GetPostBySlug(db))
}
