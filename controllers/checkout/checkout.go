package checkoutControllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	cartControllers "github.com/IV-YADOV/eternal-tick/controllers/cart"
	orderControllers "github.com/IV-YADOV/eternal-tick/controllers/order"
	promoControllers "github.com/IV-YADOV/eternal-tick/controllers/promo"
	"github.com/IV-YADOV/eternal-tick/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock for one of the items")
)

const (
	defaultCurrency = "RUB"
	// Order numbers start above the seed so early orders don't look like test data.
	orderNumberSeed = 1000
)

type CheckoutRequest struct {
	CustomerName  string  `json:"customer_name" binding:"required"`
	ContactMethod string  `json:"contact_method" binding:"required,oneof=telegram phone email"`
	ContactValue  string  `json:"contact_value" binding:"required"`
	Address       string  `json:"address" binding:"required"`
	Comment       string  `json:"comment"`
	PromoCode     *string `json:"promo_code"`
}

type CheckoutResult struct {
	OrderID       uint   `json:"order_id"`
	Number        int    `json:"number"`
	SubtotalCents int64  `json:"subtotal_cents"`
	DiscountCents int64  `json:"discount_cents"`
	TotalCents    int64  `json:"total_cents"`
	Currency      string `json:"currency"`
	AppliedPromo  string `json:"applied_promo,omitempty"`
}

// PlaceOrder turns a cart into an immutable order in one transaction:
// re-evaluate the promo against the current subtotal and user, assign the
// next order number, snapshot the lines, redeem the promo, clear the cart.
// Any failure aborts the whole thing: no partial order, no partial
// redemption. The client's earlier promo decision is only a hint; the
// evaluation here is the authoritative one.
func PlaceOrder(db *gorm.DB, cartID uint, userID *string, req CheckoutRequest) (*CheckoutResult, error) {
	var result CheckoutResult

	err := db.Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Preload("Variant").
			Where("cart_id = ?", cartID).
			Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		var subtotal int64
		for _, it := range items {
			subtotal += it.Variant.PriceCents * int64(it.Quantity)
		}

		var promoID *uint
		var discount int64
		appliedPromo := ""
		if req.PromoCode != nil && promoControllers.NormalizeCode(*req.PromoCode) != "" {
			eval, err := promoControllers.Evaluate(tx, *req.PromoCode, subtotal, userID)
			if err != nil {
				return err
			}
			promoID = &eval.PromoID
			discount = eval.DiscountCents
			appliedPromo = eval.Code
		}

		total := subtotal - discount
		if total < 0 {
			total = 0
		}

		// Claim stock with a conditional decrement, same pattern as the promo
		// counter: zero rows affected means another checkout got there first.
		for _, it := range items {
			res := tx.Model(&models.Variant{}).
				Where("id = ? AND stock >= ?", it.VariantID, it.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		}

		// Next number is computed and consumed inside this transaction so two
		// checkouts cannot hand out the same one.
		var last int
		if err := tx.Model(&models.Order{}).
			Select("COALESCE(MAX(number), ?)", orderNumberSeed).
			Scan(&last).Error; err != nil {
			return err
		}

		orderItems := make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			orderItems = append(orderItems, models.OrderItem{
				VariantID:  it.VariantID,
				Quantity:   it.Quantity,
				PriceCents: it.Variant.PriceCents,
			})
		}

		order := models.Order{
			Number:        last + 1,
			CustomerName:  req.CustomerName,
			ContactMethod: req.ContactMethod,
			ContactValue:  req.ContactValue,
			Address:       req.Address,
			Comment:       req.Comment,
			Currency:      defaultCurrency,
			SubtotalCents: subtotal,
			DiscountCents: discount,
			TotalCents:    total,
			Status:        models.OrderStatusPending,
			PromoCodeID:   promoID,
			UserID:        userID,
			Items:         orderItems,
			CreatedAt:     time.Now(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		if promoID != nil {
			if err := promoControllers.Redeem(tx, *promoID, userID); err != nil {
				return err
			}
		}

		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		result = CheckoutResult{
			OrderID:       order.ID,
			Number:        order.Number,
			SubtotalCents: subtotal,
			DiscountCents: discount,
			TotalCents:    total,
			Currency:      defaultCurrency,
			AppliedPromo:  appliedPromo,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// isWriteConflict reports whether err is a casualty of a racing checkout:
// a serialization failure or a duplicate key on the order number, which two
// transactions can both pick after reading the same MAX(number). Matches
// Postgres (SQLSTATE 23505 / 40001) and SQLite wording.
func isWriteConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 40001")
}

// placeOrderRetrying runs PlaceOrder and retries exactly once when the first
// attempt loses a race: either the promo counter hit its cap under our feet,
// or another checkout claimed the same order number. The retry re-reads
// everything, so it reports the proper rejection if the code is now exhausted.
func placeOrderRetrying(db *gorm.DB, cartID uint, userID *string, req CheckoutRequest) (*CheckoutResult, error) {
	result, err := PlaceOrder(db, cartID, userID, req)
	if err == promoControllers.ErrPromoConflict || isWriteConflict(err) {
		result, err = PlaceOrder(db, cartID, userID, req)
	}
	return result, err
}

// POST /checkout
func CheckoutHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		userID, guestToken := cartControllers.Identity(c)
		cart, err := cartControllers.ResolveCart(db, userID, guestToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve cart"})
			return
		}

		result, err := placeOrderRetrying(db, cart.CartID, userID, req)
		if err != nil {
			var rej *promoControllers.Rejection
			switch {
			case errors.As(err, &rej):
				c.JSON(http.StatusBadRequest, gin.H{"error": rej.Reason})
			case errors.Is(err, ErrEmptyCart):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			case errors.Is(err, ErrInsufficientStock):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Not enough stock for one of the items"})
			case errors.Is(err, promoControllers.ErrPromoConflict):
				c.JSON(http.StatusConflict, gin.H{"error": "Promo code was just exhausted, try again"})
			case isWriteConflict(err):
				c.JSON(http.StatusConflict, gin.H{"error": "Checkout conflicted with another order, try again"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
			}
			return
		}

		// Feed the admin live order screen.
		var order models.Order
		if err := db.Preload("Items").First(&order, result.OrderID).Error; err == nil {
			orderControllers.BroadcastNewOrder(order)
		}

		c.JSON(http.StatusOK, result)
	}
}
