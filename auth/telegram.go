package auth

import (
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/IV-YADOV/eternal-tick/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BotTokenRequest struct {
	TgID  string `json:"tg_id" binding:"required"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

// POST /auth/tg/token
// Called by the chat bot after the customer shares their contact. Upserts the
// user by telegram id and returns a short-lived deep-link token.
func IssueBotLoginToken(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Bot-Secret") != os.Getenv("BOT_SHARED_SECRET") {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		var req BotTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tg_id is required"})
			return
		}

		var user models.User
		err := db.Where("tg_id = ?", req.TgID).First(&user).Error
		if err == gorm.ErrRecordNotFound {
			user = models.User{
				ID:    uuid.NewString(),
				TgID:  req.TgID,
				Phone: req.Phone,
				Name:  req.Name,
			}
			if err := db.Create(&user).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
				return
			}
		} else if err == nil {
			updates := models.User{Phone: req.Phone, Name: req.Name}
			if err := db.Model(&user).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
				return
			}
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		token, err := issueLoginToken(user.ID, req.TgID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}

		deepLink := fmt.Sprintf("%s/auth/tg/accept?token=%s",
			os.Getenv("PUBLIC_APP_URL"), url.QueryEscape(token))

		c.JSON(http.StatusOK, gin.H{
			"ok":          true,
			"token":       token,
			"deep_link":   deepLink,
			"ttl_seconds": int(loginTTL.Seconds()),
		})
	}
}

// GET /auth/tg/accept?token=...&guest_token=...
// Finishes the bot login: validates the deep-link token, establishes the
// session, then merges the guest cart and claims matching guest orders.
func AcceptBotLogin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("token")
		if raw == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
			return
		}

		claims, err := ParseToken(raw)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		var user models.User
		if err := db.Where("id = ?", sub).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
			return
		}

		session, err := IssueSessionToken(user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}

		mergeStatus := "no-guest-cart"
		if guestToken := c.Query("guest_token"); guestToken != "" {
			merged, err := MergeGuestCart(db, user.ID, guestToken)
			if err != nil {
				mergeStatus = "merge-failed"
			} else if merged {
				mergeStatus = "merged-success"
			} else {
				mergeStatus = "guest-cart-empty"
			}
		}

		if err := ClaimGuestOrders(db, user.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim orders"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":      "Login successful",
			"merge_status": mergeStatus,
			"user":         user,
			"token":        session,
		})
	}
}
