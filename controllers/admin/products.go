package adminController

import (
	"net/http"

	"github.com/IV-YADOV/eternal-tick/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type VariantInput struct {
	ID         uint   `json:"id"`
	SKU        string `json:"sku" binding:"required"`
	Label      string `json:"label"`
	PriceCents int64  `json:"price_cents" binding:"required,min=1"`
	Currency   string `json:"currency"`
	Stock      int    `json:"stock"`
	Active     *bool  `json:"active"`
}

type ProductInput struct {
	Slug        string             `json:"slug" binding:"required"`
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description"`
	Images      []string           `json:"images"`
	Specs       []models.SpecEntry `json:"specs"`
	Published   *bool              `json:"published"`
	Variants    []VariantInput     `json:"variants" binding:"required,min=1,dive"`
}

func buildVariants(inputs []VariantInput) []models.Variant {
	variants := make([]models.Variant, 0, len(inputs))
	for _, v := range inputs {
		currency := v.Currency
		if currency == "" {
			currency = "RUB"
		}
		active := true
		if v.Active != nil {
			active = *v.Active
		}
		variants = append(variants, models.Variant{
			ID:         v.ID,
			SKU:        v.SKU,
			Label:      v.Label,
			PriceCents: v.PriceCents,
			Currency:   currency,
			Stock:      v.Stock,
			Active:     active,
		})
	}
	return variants
}

// GET /admin/products
func ListProductsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.Preload("Variants").Order("created_at DESC").Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// POST /admin/products
func CreateProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		published := true
		if input.Published != nil {
			published = *input.Published
		}
		product := models.Product{
			Slug:        input.Slug,
			Title:       input.Title,
			Description: input.Description,
			Images:      input.Images,
			Specs:       input.Specs,
			Published:   published,
			Variants:    buildVariants(input.Variants),
		}
		if err := db.Create(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

// PUT /admin/products/:id
func UpdateProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		if err := db.Preload("Variants").First(&product, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}

		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			product.Slug = input.Slug
			product.Title = input.Title
			product.Description = input.Description
			product.Images = input.Images
			product.Specs = input.Specs
			if input.Published != nil {
				product.Published = *input.Published
			}
			if err := tx.Omit("Variants").Save(&product).Error; err != nil {
				return err
			}

			// Replace the variant set: upsert what the payload lists, deactivate
			// the rest. Omitted variants stay as rows because order items
			// reference them; order items keep their own price snapshots so
			// history is unaffected by any of this.
			keep := make([]uint, 0, len(input.Variants))
			for i := range input.Variants {
				v := buildVariants(input.Variants[i : i+1])[0]
				v.ProductID = product.ID
				if v.ID != 0 {
					if err := tx.Save(&v).Error; err != nil {
						return err
					}
				} else {
					if err := tx.Create(&v).Error; err != nil {
						return err
					}
				}
				keep = append(keep, v.ID)
			}
			if err := tx.Model(&models.Variant{}).
				Where("product_id = ? AND id NOT IN ?", product.ID, keep).
				Update("active", false).Error; err != nil {
				return err
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}

		db.Preload("Variants").First(&product, product.ID)
		c.JSON(http.StatusOK, product)
	}
}

// DELETE /admin/products/:id
func DeleteProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := db.Delete(&models.Product{}, "id = ?", c.Param("id"))
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}
