package routes

import (
	"github.com/IV-YADOV/eternal-tick/auth"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, db *gorm.DB) {
	authGroup := r.Group("/auth")
	{
		// Chat-bot login channel
		authGroup.POST("/tg/token", auth.IssueBotLoginToken(db)) // bot-only (X-Bot-Secret)
		authGroup.GET("/tg/accept", auth.AcceptBotLogin(db))     // deep link from the bot

		// Anonymous identity for guest carts
		authGroup.POST("/guest", auth.CreateGuestUser(db))
	}
}
