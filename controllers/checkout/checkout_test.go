package checkoutControllers

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	cartControllers "github.com/IV-YADOV/eternal-tick/controllers/cart"
	promoControllers "github.com/IV-YADOV/eternal-tick/controllers/promo"
	"github.com/IV-YADOV/eternal-tick/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Product{}, &models.Variant{},
		&models.Cart{}, &models.CartItem{},
		&models.PromoCode{}, &models.PromoUsage{},
		&models.Order{}, &models.OrderItem{},
	))
	return db
}

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

var checkoutReq = CheckoutRequest{
	CustomerName:  "Ivan",
	ContactMethod: "telegram",
	ContactValue:  "12345",
	Address:       "Moscow, Tverskaya 1",
}

func withPromo(code string) CheckoutRequest {
	req := checkoutReq
	req.PromoCode = &code
	return req
}

// seedCart creates a variant priced at priceCents and a cart holding qty of it.
func seedCart(t *testing.T, db *gorm.DB, owner *string, priceCents int64, qty int) (uint, models.Variant) {
	t.Helper()
	product := models.Product{
		Slug:  "watch",
		Title: "Watch",
		Variants: []models.Variant{
			{SKU: "SKU", PriceCents: priceCents, Currency: "RUB", Stock: 100, Active: true},
		},
	}
	// Slug and SKU must be unique per seeded product.
	var n int64
	db.Model(&models.Product{}).Count(&n)
	product.Slug = product.Slug + "-" + string(rune('a'+n))
	product.Variants[0].SKU = product.Variants[0].SKU + "-" + string(rune('a'+n))
	require.NoError(t, db.Create(&product).Error)

	var guestToken *string
	if owner == nil {
		guestToken = strPtr("guest_test")
	}
	cart, err := cartControllers.ResolveCart(db, owner, guestToken)
	require.NoError(t, err)
	require.NoError(t, cartControllers.AddItem(db, cart.CartID, product.Variants[0].ID, qty))
	return cart.CartID, product.Variants[0]
}

func TestCheckoutPercentPromo(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.PromoCode{
		Code: "SALE15", Kind: models.PromoKindPercent, Amount: 15, IsActive: true,
	}).Error)

	userID := strPtr("u-1")
	cartID, _ := seedCart(t, db, userID, 5000, 2) // subtotal 10000

	result, err := PlaceOrder(db, cartID, userID, withPromo("SALE15"))
	require.NoError(t, err)
	assert.Equal(t, 1001, result.Number)
	assert.Equal(t, int64(10000), result.SubtotalCents)
	assert.Equal(t, int64(1500), result.DiscountCents)
	assert.Equal(t, int64(8500), result.TotalCents)
	assert.Equal(t, "SALE15", result.AppliedPromo)

	var order models.Order
	require.NoError(t, db.Preload("Items").First(&order, result.OrderID).Error)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(5000), order.Items[0].PriceCents)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.NotNil(t, order.UserID)
	assert.Equal(t, "u-1", *order.UserID)

	// Promo ledger moved and the cart is empty.
	var promo models.PromoCode
	require.NoError(t, db.Where("code = ?", "SALE15").First(&promo).Error)
	assert.Equal(t, int64(1), promo.UsedCount)

	var usages, items int64
	db.Model(&models.PromoUsage{}).Where("user_id = ?", "u-1").Count(&usages)
	assert.Equal(t, int64(1), usages)
	db.Model(&models.CartItem{}).Where("cart_id = ?", cartID).Count(&items)
	assert.Equal(t, int64(0), items)
}

func TestCheckoutFixedPromoClampsToZeroTotal(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.PromoCode{
		Code: "MINUS10", Kind: models.PromoKindFixed, Amount: 1000, IsActive: true,
	}).Error)

	cartID, _ := seedCart(t, db, nil, 500, 1) // subtotal 500

	result, err := PlaceOrder(db, cartID, nil, withPromo("MINUS10"))
	require.NoError(t, err)
	assert.Equal(t, int64(500), result.SubtotalCents)
	assert.Equal(t, int64(500), result.DiscountCents)
	assert.Equal(t, int64(0), result.TotalCents)
}

func TestCheckoutWithoutPromo(t *testing.T) {
	db := newTestDB(t)
	cartID, _ := seedCart(t, db, nil, 2500, 3)

	result, err := PlaceOrder(db, cartID, nil, checkoutReq)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), result.SubtotalCents)
	assert.Equal(t, int64(0), result.DiscountCents)
	assert.Equal(t, int64(7500), result.TotalCents)
	assert.Empty(t, result.AppliedPromo)

	var order models.Order
	require.NoError(t, db.First(&order, result.OrderID).Error)
	assert.Nil(t, order.PromoCodeID)
	assert.Nil(t, order.UserID) // guest order
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := newTestDB(t)
	cart, err := cartControllers.ResolveCart(db, strPtr("u-1"), nil)
	require.NoError(t, err)

	_, err = PlaceOrder(db, cart.CartID, strPtr("u-1"), checkoutReq)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestOrderNumbersMonotonic(t *testing.T) {
	db := newTestDB(t)

	first, _ := seedCart(t, db, strPtr("u-1"), 1000, 1)
	second, _ := seedCart(t, db, strPtr("u-2"), 1000, 1)

	r1, err := PlaceOrder(db, first, strPtr("u-1"), checkoutReq)
	require.NoError(t, err)
	r2, err := PlaceOrder(db, second, strPtr("u-2"), checkoutReq)
	require.NoError(t, err)

	assert.Equal(t, 1001, r1.Number)
	assert.Equal(t, 1002, r2.Number)
}

func TestPromoGlobalLimitAcrossCheckouts(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.PromoCode{
		Code: "LIM1", Kind: models.PromoKindPercent, Amount: 10, IsActive: true,
		MaxUses: int64Ptr(1),
	}).Error)

	first, _ := seedCart(t, db, strPtr("u-1"), 1000, 1)
	second, _ := seedCart(t, db, strPtr("u-2"), 1000, 1)

	_, err := PlaceOrder(db, first, strPtr("u-1"), withPromo("LIM1"))
	require.NoError(t, err)

	_, err = PlaceOrder(db, second, strPtr("u-2"), withPromo("LIM1"))
	var rej *promoControllers.Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "promo code usage limit reached", rej.Reason)

	// Exactly one order carries the promo.
	var withCode int64
	db.Model(&models.Order{}).Where("promo_code_id IS NOT NULL").Count(&withCode)
	assert.Equal(t, int64(1), withCode)
}

func TestPromoPerUserLimit(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.PromoCode{
		Code: "ONCE", Kind: models.PromoKindPercent, Amount: 10, IsActive: true,
		PerUserLimit: int64Ptr(1),
	}).Error)

	userID := strPtr("u-1")
	cartID, variant := seedCart(t, db, userID, 1000, 1)
	_, err := PlaceOrder(db, cartID, userID, withPromo("ONCE"))
	require.NoError(t, err)

	// Checkout emptied the cart; the customer fills it again and retries.
	require.NoError(t, cartControllers.AddItem(db, cartID, variant.ID, 1))

	_, err = PlaceOrder(db, cartID, userID, withPromo("ONCE"))
	var rej *promoControllers.Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "you have already used this promo code", rej.Reason)
}

func TestPromoRevalidatedAtCheckout(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.PromoCode{
		Code: "FLAKY", Kind: models.PromoKindPercent, Amount: 10, IsActive: true,
	}).Error)
	cartID, _ := seedCart(t, db, nil, 1000, 1)

	// The customer applied the code earlier; the admin disabled it since.
	require.NoError(t, db.Model(&models.PromoCode{}).
		Where("code = ?", "FLAKY").Update("is_active", false).Error)

	_, err := PlaceOrder(db, cartID, nil, withPromo("FLAKY"))
	var rej *promoControllers.Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "promo code is disabled", rej.Reason)
}

func TestOrderImmutableAfterPriceChange(t *testing.T) {
	db := newTestDB(t)
	cartID, variant := seedCart(t, db, nil, 5000, 2)

	result, err := PlaceOrder(db, cartID, nil, checkoutReq)
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Variant{}).
		Where("id = ?", variant.ID).Update("price_cents", 9999).Error)

	var order models.Order
	require.NoError(t, db.Preload("Items").First(&order, result.OrderID).Error)
	assert.Equal(t, int64(5000), order.Items[0].PriceCents)
	assert.Equal(t, int64(10000), order.SubtotalCents)
	assert.Equal(t, int64(10000), order.TotalCents)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	cartID, variant := seedCart(t, db, nil, 1000, 5)
	require.NoError(t, db.Model(&models.Variant{}).
		Where("id = ?", variant.ID).Update("stock", 3).Error)

	_, err := PlaceOrder(db, cartID, nil, checkoutReq)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Aborted transaction: no order, cart intact, stock untouched.
	var orders, items int64
	db.Model(&models.Order{}).Count(&orders)
	assert.Equal(t, int64(0), orders)
	db.Model(&models.CartItem{}).Where("cart_id = ?", cartID).Count(&items)
	assert.Equal(t, int64(1), items)

	var reloaded models.Variant
	require.NoError(t, db.First(&reloaded, variant.ID).Error)
	assert.Equal(t, 3, reloaded.Stock)
}

func TestCheckoutDecrementsStock(t *testing.T) {
	db := newTestDB(t)
	cartID, variant := seedCart(t, db, nil, 1000, 4)

	_, err := PlaceOrder(db, cartID, nil, checkoutReq)
	require.NoError(t, err)

	var reloaded models.Variant
	require.NoError(t, db.First(&reloaded, variant.ID).Error)
	assert.Equal(t, 96, reloaded.Stock)
}

func TestIsWriteConflict(t *testing.T) {
	assert.True(t, isWriteConflict(errors.New(`ERROR: duplicate key value violates unique constraint "idx_orders_number" (SQLSTATE 23505)`)))
	assert.True(t, isWriteConflict(errors.New("UNIQUE constraint failed: orders.number")))
	assert.True(t, isWriteConflict(errors.New("ERROR: could not serialize access due to concurrent update (SQLSTATE 40001)")))
	assert.True(t, isWriteConflict(gorm.ErrDuplicatedKey))
	assert.False(t, isWriteConflict(nil))
	assert.False(t, isWriteConflict(ErrEmptyCart))
}

func TestCheckoutRetriesOnNumberCollision(t *testing.T) {
	db := newTestDB(t)
	cartID, _ := seedCart(t, db, nil, 10000, 1)

	// The first order insert fails the way Postgres reports a lost race on
	// the order number; the retry must go through and place a single order.
	raced := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("race_once", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "orders" && !raced {
			raced = true
			tx.AddError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_orders_number" (SQLSTATE 23505)`))
		}
	}))

	result, err := placeOrderRetrying(db, cartID, nil, checkoutReq)
	require.NoError(t, err)
	require.True(t, raced)
	assert.Equal(t, 1001, result.Number)

	var orders int64
	db.Model(&models.Order{}).Count(&orders)
	assert.EqualValues(t, 1, orders)
}
