package cartControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/IV-YADOV/eternal-tick/auth"
	"github.com/IV-YADOV/eternal-tick/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

type CartItemInput struct {
	VariantID uint `json:"variant_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// Identity pulls the owner set by the auth middleware: (userID, guestToken).
func Identity(c *gin.Context) (*string, *string) {
	v, ok := c.Get("user_id")
	if !ok {
		return nil, nil
	}
	id, _ := v.(string)
	if id == "" {
		return nil, nil
	}
	if role, _ := c.Get("role"); role == auth.RoleUser {
		return &id, nil
	}
	return nil, &id
}

// ResolveCart finds or creates the cart for exactly one owner: an account or
// a guest token. Cart identity itself comes from the session layer; this
// never invents one.
func ResolveCart(db *gorm.DB, userID, guestToken *string) (*models.Cart, error) {
	var cart models.Cart
	q := db
	owner := models.Cart{}
	switch {
	case userID != nil:
		q = q.Where("user_id = ?", *userID)
		owner.UserID = userID
	case guestToken != nil:
		q = q.Where("guest_token = ?", *guestToken)
		owner.GuestToken = guestToken
	default:
		return nil, errors.New("no cart owner")
	}

	err := q.First(&cart).Error
	if err == gorm.ErrRecordNotFound {
		cart = owner
		if err := db.Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem upserts a line: re-adding a variant adds to its quantity instead of
// creating a duplicate row. The conflict clause keeps concurrent adds for the
// same variant from losing updates.
func AddItem(db *gorm.DB, cartID, variantID uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	item := models.CartItem{
		CartID:    cartID,
		VariantID: variantID,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "variant_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", quantity),
			"added_at": time.Now(),
		}),
	}).Create(&item).Error
}

// POST /cart/items
func AddCartItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var variant models.Variant
		if err := db.First(&variant, "id = ? AND active = ?", input.VariantID, true).Error; err != nil {
			status := http.StatusInternalServerError
			errMsg := "Failed to validate variant"
			if err == gorm.ErrRecordNotFound {
				status = http.StatusBadRequest
				errMsg = "Variant does not exist"
			}
			c.JSON(status, gin.H{"error": errMsg})
			return
		}

		userID, guestToken := Identity(c)
		cart, err := ResolveCart(db, userID, guestToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve cart"})
			return
		}

		if err := AddItem(db, cart.CartID, input.VariantID, input.Quantity); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Item added to cart"})
	}
}

// DELETE /cart/items/:variant_id
func DeleteCartItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, guestToken := Identity(c)
		cart, err := ResolveCart(db, userID, guestToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve cart"})
			return
		}

		result := db.Where("cart_id = ? AND variant_id = ?", cart.CartID, c.Param("variant_id")).
			Delete(&models.CartItem{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}

// DELETE /cart
func ClearCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, guestToken := Identity(c)
		cart, err := ResolveCart(db, userID, guestToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve cart"})
			return
		}
		if err := db.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// GET /cart
func GetCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, guestToken := Identity(c)
		cart, err := ResolveCart(db, userID, guestToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve cart"})
			return
		}

		var items []models.CartItem
		if err := db.Preload("Variant").
			Where("cart_id = ?", cart.CartID).
			Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		var subtotal int64
		for _, it := range items {
			subtotal += it.Variant.PriceCents * int64(it.Quantity)
		}

		c.JSON(http.StatusOK, gin.H{
			"cart_id":        cart.CartID,
			"items":          items,
			"subtotal_cents": subtotal,
		})
	}
}

// GET /cart/count
func GetCartCountHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, guestToken := Identity(c)
		cart, err := ResolveCart(db, userID, guestToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve cart"})
			return
		}

		var count int64
		if err := db.Model(&models.CartItem{}).
			Where("cart_id = ?", cart.CartID).
			Select("COALESCE(SUM(quantity), 0)").
			Scan(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count cart items"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}
