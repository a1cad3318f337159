package promoControllers

import (
	"net/http"
	"time"

	"github.com/IV-YADOV/eternal-tick/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PromoInput struct {
	Code          string     `json:"code"`
	Kind          string     `json:"kind" binding:"required,oneof=PERCENT FIXED"`
	Amount        int64      `json:"amount" binding:"required,min=0"`
	IsActive      *bool      `json:"is_active"`
	StartsAt      *time.Time `json:"starts_at"`
	ExpiresAt     *time.Time `json:"expires_at"`
	MinOrderCents *int64     `json:"min_order_cents"`
	MaxUses       *int64     `json:"max_uses"`
	PerUserLimit  *int64     `json:"per_user_limit"`
	OwnerTgID     string     `json:"owner_tg_id"`
}

// resolveOwner maps an optional telegram id to a user id for personal codes.
func resolveOwner(db *gorm.DB, tgID string) *string {
	if tgID == "" {
		return nil
	}
	var user models.User
	if err := db.Where("tg_id = ?", tgID).First(&user).Error; err != nil {
		return nil
	}
	return &user.ID
}

// GET /admin/promos
func ListPromosHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var promos []models.PromoCode
		if err := db.Order("created_at DESC").Find(&promos).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch promo codes"})
			return
		}
		c.JSON(http.StatusOK, promos)
	}
}

// GET /admin/promos/:id
func GetPromoHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var promo models.PromoCode
		if err := db.First(&promo, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Promo code not found"})
			return
		}
		c.JSON(http.StatusOK, promo)
	}
}

// POST /admin/promos
func CreatePromoHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input PromoInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		code := NormalizeCode(input.Code)
		if code == "" {
			code = GeneratePromoCode("SALE")
		}
		active := true
		if input.IsActive != nil {
			active = *input.IsActive
		}

		promo := models.PromoCode{
			Code:          code,
			Kind:          models.PromoKind(input.Kind),
			Amount:        input.Amount,
			IsActive:      active,
			StartsAt:      input.StartsAt,
			ExpiresAt:     input.ExpiresAt,
			MinOrderCents: input.MinOrderCents,
			MaxUses:       input.MaxUses,
			PerUserLimit:  input.PerUserLimit,
			OwnerUserID:   resolveOwner(db, input.OwnerTgID),
		}
		if err := db.Create(&promo).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create promo code"})
			return
		}
		c.JSON(http.StatusCreated, promo)
	}
}

// PUT /admin/promos/:id
func UpdatePromoHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var promo models.PromoCode
		if err := db.First(&promo, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Promo code not found"})
			return
		}

		var input PromoInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if code := NormalizeCode(input.Code); code != "" {
			promo.Code = code
		}
		promo.Kind = models.PromoKind(input.Kind)
		promo.Amount = input.Amount
		if input.IsActive != nil {
			promo.IsActive = *input.IsActive
		}
		promo.StartsAt = input.StartsAt
		promo.ExpiresAt = input.ExpiresAt
		promo.MinOrderCents = input.MinOrderCents
		promo.MaxUses = input.MaxUses
		promo.PerUserLimit = input.PerUserLimit
		promo.OwnerUserID = resolveOwner(db, input.OwnerTgID)

		if err := db.Save(&promo).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update promo code"})
			return
		}
		c.JSON(http.StatusOK, promo)
	}
}

// DeletePromo removes a promo code together with everything that references
// it: orders are detached first and usage rows deleted, as one atomic unit,
// so no dangling foreign keys survive.
func DeletePromo(db *gorm.DB, promoID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).
			Where("promo_code_id = ?", promoID).
			Update("promo_code_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("promo_id = ?", promoID).
			Delete(&models.PromoUsage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.PromoCode{}, promoID).Error
	})
}

// DELETE /admin/promos/:id
func DeletePromoHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var promo models.PromoCode
		if err := db.First(&promo, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Promo code not found"})
			return
		}
		if err := DeletePromo(db, promo.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete promo code"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Promo code deleted"})
	}
}
