package cartControllers

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/IV-YADOV/eternal-tick/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Product{}, &models.Variant{},
		&models.Cart{}, &models.CartItem{},
	))
	return db
}

func strPtr(v string) *string { return &v }

func seedVariant(t *testing.T, db *gorm.DB, sku string, priceCents int64) models.Variant {
	t.Helper()
	product := models.Product{
		Slug:  "watch-" + sku,
		Title: "Watch " + sku,
		Variants: []models.Variant{
			{SKU: sku, PriceCents: priceCents, Currency: "RUB", Stock: 100, Active: true},
		},
	}
	require.NoError(t, db.Create(&product).Error)
	return product.Variants[0]
}

func TestResolveCart(t *testing.T) {
	db := newTestDB(t)

	t.Run("creates once per owner", func(t *testing.T) {
		first, err := ResolveCart(db, strPtr("u-1"), nil)
		require.NoError(t, err)
		second, err := ResolveCart(db, strPtr("u-1"), nil)
		require.NoError(t, err)
		assert.Equal(t, first.CartID, second.CartID)
	})

	t.Run("guest and user carts are distinct", func(t *testing.T) {
		userCart, err := ResolveCart(db, strPtr("u-2"), nil)
		require.NoError(t, err)
		guestCart, err := ResolveCart(db, nil, strPtr("guest_abc"))
		require.NoError(t, err)
		assert.NotEqual(t, userCart.CartID, guestCart.CartID)
		assert.Nil(t, guestCart.UserID)
		assert.Nil(t, userCart.GuestToken)
	})

	t.Run("no owner", func(t *testing.T) {
		_, err := ResolveCart(db, nil, nil)
		assert.Error(t, err)
	})
}

func TestAddItemUpserts(t *testing.T) {
	db := newTestDB(t)
	variant := seedVariant(t, db, "SKU-1", 2500)
	cart, err := ResolveCart(db, strPtr("u-1"), nil)
	require.NoError(t, err)

	require.NoError(t, AddItem(db, cart.CartID, variant.ID, 2))
	require.NoError(t, AddItem(db, cart.CartID, variant.ID, 3))

	var items []models.CartItem
	require.NoError(t, db.Where("cart_id = ?", cart.CartID).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAddItemSeparateLinesPerVariant(t *testing.T) {
	db := newTestDB(t)
	v1 := seedVariant(t, db, "SKU-1", 2500)
	v2 := seedVariant(t, db, "SKU-2", 4000)
	cart, err := ResolveCart(db, strPtr("u-1"), nil)
	require.NoError(t, err)

	require.NoError(t, AddItem(db, cart.CartID, v1.ID, 1))
	require.NoError(t, AddItem(db, cart.CartID, v2.ID, 2))

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).
		Where("cart_id = ?", cart.CartID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	db := newTestDB(t)
	variant := seedVariant(t, db, "SKU-1", 2500)
	cart, err := ResolveCart(db, strPtr("u-1"), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, AddItem(db, cart.CartID, variant.ID, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, AddItem(db, cart.CartID, variant.ID, -2), ErrInvalidQuantity)
}
