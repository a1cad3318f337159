package auth

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
		&models.User{}, &models.Product{}, &models.Variant{},
		&models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{},
	))
	return db
}

func strPtr(v string) *string { return &v }

func seedGuestCart(t *testing.T, db *gorm.DB, guestToken string, lines map[uint]int) {
	t.Helper()
	cart := models.Cart{GuestToken: &guestToken}
	require.NoError(t, db.Create(&cart).Error)
	for variantID, qty := range lines {
		require.NoError(t, db.Create(&models.CartItem{
			CartID: cart.CartID, VariantID: variantID, Quantity: qty,
		}).Error)
	}
}

func cartLines(t *testing.T, db *gorm.DB, userID string) map[uint]int {
	t.Helper()
	var cart models.Cart
	require.NoError(t, db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error)
	lines := make(map[uint]int, len(cart.Items))
	for _, it := range cart.Items {
		lines[it.VariantID] = it.Quantity
	}
	return lines
}

func TestMergeGuestCart(t *testing.T) {
	t.Run("quantities add up for shared variants", func(t *testing.T) {
		db := newTestDB(t)
		user := models.User{ID: "u-1", TgID: "111"}
		require.NoError(t, db.Create(&user).Error)

		personal := models.Cart{UserID: strPtr("u-1")}
		require.NoError(t, db.Create(&personal).Error)
		require.NoError(t, db.Create(&models.CartItem{CartID: personal.CartID, VariantID: 1, Quantity: 1}).Error)

		seedGuestCart(t, db, "guest_x", map[uint]int{1: 2, 2: 4})

		merged, err := MergeGuestCart(db, "u-1", "guest_x")
		require.NoError(t, err)
		assert.True(t, merged)

		assert.Equal(t, map[uint]int{1: 3, 2: 4}, cartLines(t, db, "u-1"))

		// Guest cart is gone.
		err = db.Where("guest_token = ?", "guest_x").First(&models.Cart{}).Error
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("creates the personal cart when missing", func(t *testing.T) {
		db := newTestDB(t)
		require.NoError(t, db.Create(&models.User{ID: "u-1", TgID: "111"}).Error)
		seedGuestCart(t, db, "guest_x", map[uint]int{7: 2})

		merged, err := MergeGuestCart(db, "u-1", "guest_x")
		require.NoError(t, err)
		assert.True(t, merged)
		assert.Equal(t, map[uint]int{7: 2}, cartLines(t, db, "u-1"))
	})

	t.Run("idempotent", func(t *testing.T) {
		db := newTestDB(t)
		require.NoError(t, db.Create(&models.User{ID: "u-1", TgID: "111"}).Error)
		seedGuestCart(t, db, "guest_x", map[uint]int{1: 2})

		_, err := MergeGuestCart(db, "u-1", "guest_x")
		require.NoError(t, err)
		want := cartLines(t, db, "u-1")

		// Double login: the second run finds no guest cart and changes nothing.
		merged, err := MergeGuestCart(db, "u-1", "guest_x")
		require.NoError(t, err)
		assert.False(t, merged)
		assert.Equal(t, want, cartLines(t, db, "u-1"))
	})
}

func TestClaimGuestOrders(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.User{ID: "u-1", TgID: "111", Phone: "+79990001122"}).Error)

	guestByTg := models.Order{
		Number: 1001, CustomerName: "A", ContactMethod: "telegram", ContactValue: "111",
		Currency: "RUB", Status: models.OrderStatusPending,
	}
	guestByPhone := models.Order{
		Number: 1002, CustomerName: "A", ContactMethod: "phone", ContactValue: "+79990001122",
		Currency: "RUB", Status: models.OrderStatusPending,
	}
	stranger := models.Order{
		Number: 1003, CustomerName: "B", ContactMethod: "telegram", ContactValue: "222",
		Currency: "RUB", Status: models.OrderStatusPending,
	}
	claimed := models.Order{
		Number: 1004, CustomerName: "C", ContactMethod: "telegram", ContactValue: "111",
		Currency: "RUB", Status: models.OrderStatusPending, UserID: strPtr("u-other"),
	}
	require.NoError(t, db.Create(&guestByTg).Error)
	require.NoError(t, db.Create(&guestByPhone).Error)
	require.NoError(t, db.Create(&stranger).Error)
	require.NoError(t, db.Create(&claimed).Error)

	require.NoError(t, ClaimGuestOrders(db, "u-1"))

	var mine int64
	db.Model(&models.Order{}).Where("user_id = ?", "u-1").Count(&mine)
	assert.Equal(t, int64(2), mine)

	// Orders already owned by someone stay put.
	var other models.Order
	require.NoError(t, db.First(&other, claimed.ID).Error)
	assert.Equal(t, "u-other", *other.UserID)

	var unclaimed models.Order
	require.NoError(t, db.First(&unclaimed, stranger.ID).Error)
	assert.Nil(t, unclaimed.UserID)

	// Re-running is a no-op.
	require.NoError(t, ClaimGuestOrders(db, "u-1"))
	db.Model(&models.Order{}).Where("user_id = ?", "u-1").Count(&mine)
	assert.Equal(t, int64(2), mine)
}
