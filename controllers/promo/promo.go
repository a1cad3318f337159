package promoControllers

import (
	"crypto/rand"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/IV-YADOV/eternal-tick/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrPromoConflict means the conditional increment claimed no slot: a
// concurrent checkout exhausted the code between evaluation and redemption.
var ErrPromoConflict = errors.New("promo code was exhausted by a concurrent checkout")

// Redeem records one use of a promo code. Only ever called inside the same
// transaction that creates the order, after a successful Evaluate in that
// transaction. The increment is conditional so a limited-use code can never
// be redeemed past MaxUses, whatever the isolation level.
func Redeem(tx *gorm.DB, promoID uint, userID *string) error {
	res := tx.Model(&models.PromoCode{}).
		Where("id = ? AND (max_uses IS NULL OR used_count < max_uses)", promoID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPromoConflict
	}
	if userID != nil {
		usage := models.PromoUsage{UserID: *userID, PromoID: promoID}
		return tx.Create(&usage).Error
	}
	return nil
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GeneratePromoCode builds a random code like SALE-7KQX2MNP. The alphabet
// skips lookalike characters (0/O, 1/I).
func GeneratePromoCode(prefix string) string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return prefix + "-FALLBACK"
	}
	s := make([]byte, 8)
	for i, b := range bytes {
		s[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return prefix + "-" + string(s)
}

type ApplyPromoRequest struct {
	Code          string `json:"code" binding:"required"`
	SubtotalCents int64  `json:"subtotal_cents" binding:"required,min=1"`
}

// POST /promo/apply
// Checks a code against the submitted subtotal. The result is a hint for the
// client; checkout re-evaluates before committing anything.
func ApplyPromoHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ApplyPromoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var userID *string
		if v, ok := c.Get("user_id"); ok {
			if role, _ := c.Get("role"); role == "user" {
				id := v.(string)
				userID = &id
			}
		}

		result, err := Evaluate(db, req.Code, req.SubtotalCents, userID)
		if err != nil {
			var rej *Rejection
			if errors.As(err, &rej) {
				c.JSON(http.StatusBadRequest, gin.H{"ok": false, "reason": rej.Reason})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check promo code"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ok":             true,
			"code":           result.Code,
			"promo_id":       result.PromoID,
			"discount_cents": result.DiscountCents,
		})
	}
}

type IssueForSubscriptionRequest struct {
	TgID string `json:"tg_id" binding:"required"`
}

// POST /promos/issue-for-subscription
// Webhook called when a customer subscribes to the channel: issues a personal
// 10% code. Idempotent per owner: re-issuing returns the existing code.
func IssueForSubscriptionHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := os.Getenv("PROMO_ISSUE_SECRET")
		if secret == "" || c.GetHeader("X-Webhook-Secret") != secret {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var req IssueForSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tg_id is required"})
			return
		}

		var user models.User
		if err := db.Where("tg_id = ?", req.TgID).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User with this tg_id not found"})
			return
		}

		var existing models.PromoCode
		err := db.Where("owner_user_id = ? AND is_active = ? AND kind = ? AND amount = ?",
			user.ID, true, models.PromoKindPercent, 10).
			Order("created_at DESC").
			First(&existing).Error
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"code": existing.Code, "message": "Promo code already issued"})
			return
		}
		if err != gorm.ErrRecordNotFound {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		one := int64(1)
		now := time.Now()
		promo := models.PromoCode{
			Code:         GeneratePromoCode("TG10"),
			Kind:         models.PromoKindPercent,
			Amount:       10,
			IsActive:     true,
			StartsAt:     &now,
			MaxUses:      &one,
			PerUserLimit: &one,
			OwnerUserID:  &user.ID,
		}
		if err := db.Create(&promo).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create promo code"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"code": promo.Code, "message": "Promo code issued"})
	}
}
