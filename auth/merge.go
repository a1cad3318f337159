package auth

import (
	"time"

	"github.com/IV-YADOV/eternal-tick/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MergeGuestCart folds the guest cart into the user's personal cart and
// deletes the guest cart. Safe to run twice: once the guest cart is gone the
// whole call is a no-op. Returns whether anything was merged.
func MergeGuestCart(db *gorm.DB, userID, guestToken string) (bool, error) {
	merged := false

	err := db.Transaction(func(tx *gorm.DB) error {
		var guestCart models.Cart
		if err := tx.Preload("Items").
			Where("guest_token = ?", guestToken).
			First(&guestCart).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil // nothing to merge
			}
			return err
		}

		var userCart models.Cart
		err := tx.Where("user_id = ?", userID).First(&userCart).Error
		if err == gorm.ErrRecordNotFound {
			userCart = models.Cart{UserID: &userID}
			if err := tx.Create(&userCart).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		for _, guestItem := range guestCart.Items {
			item := models.CartItem{
				CartID:    userCart.CartID,
				VariantID: guestItem.VariantID,
				Quantity:  guestItem.Quantity,
				AddedAt:   time.Now(),
			}
			// Quantities add up when the variant is already in the personal cart.
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "cart_id"}, {Name: "variant_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"quantity": gorm.Expr("quantity + ?", guestItem.Quantity),
					"added_at": time.Now(),
				}),
			}).Create(&item).Error; err != nil {
				return err
			}
			merged = true
		}

		if err := tx.Where("cart_id = ?", guestCart.CartID).
			Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&guestCart).Error
	})

	return merged, err
}

// ClaimGuestOrders attaches the user to historical guest orders whose contact
// details match the user's telegram id or phone. The user_id IS NULL filter
// makes re-runs a no-op for already-claimed orders.
func ClaimGuestOrders(db *gorm.DB, userID string) error {
	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	q := db.Model(&models.Order{}).Where("user_id IS NULL")
	switch {
	case user.TgID != "" && user.Phone != "":
		q = q.Where(
			"(contact_method = ? AND contact_value = ?) OR (contact_method = ? AND contact_value = ?)",
			"telegram", user.TgID, "phone", user.Phone)
	case user.TgID != "":
		q = q.Where("contact_method = ? AND contact_value = ?", "telegram", user.TgID)
	case user.Phone != "":
		q = q.Where("contact_method = ? AND contact_value = ?", "phone", user.Phone)
	default:
		return nil
	}

	return q.Update("user_id", userID).Error
}
