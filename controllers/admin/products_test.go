package adminController

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/IV-YADOV/eternal-tick/models"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Variant{}))
	return db
}

func TestUpdateProductDeactivatesOmittedVariants(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)

	product := models.Product{
		Slug:      "watch",
		Title:     "Watch",
		Published: true,
		Variants: []models.Variant{
			{SKU: "A", PriceCents: 1000, Currency: "RUB", Stock: 5, Active: true},
			{SKU: "B", PriceCents: 2000, Currency: "RUB", Stock: 5, Active: true},
		},
	}
	require.NoError(t, db.Create(&product).Error)

	// The payload lists only the first variant; the second must survive as a
	// deactivated row because orders may reference it.
	body := fmt.Sprintf(
		`{"slug":"watch","title":"Watch","variants":[{"id":%d,"sku":"A","price_cents":1500,"stock":5}]}`,
		product.Variants[0].ID,
	)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/admin/products/x", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(product.ID)}}

	UpdateProductHandler(db)(c)
	require.Equal(t, http.StatusOK, w.Code)

	var kept, dropped models.Variant
	require.NoError(t, db.First(&kept, product.Variants[0].ID).Error)
	require.NoError(t, db.First(&dropped, product.Variants[1].ID).Error)
	assert.True(t, kept.Active)
	assert.EqualValues(t, 1500, kept.PriceCents)
	assert.False(t, dropped.Active)
}
