package orderControllers

import (
	"net/http"
	"strconv"

	"github.com/IV-YADOV/eternal-tick/models"
	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// GET /admin/orders/export
func ExportOrdersToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.Preload("Items").Order("number ASC").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Orders")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		headers := []string{
			"Number", "Status", "Customer", "ContactMethod", "ContactValue",
			"Address", "Comment", "Currency", "Subtotal", "Discount", "Total",
			"Lines", "CreatedAt",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		for _, o := range orders {
			row := sheet.AddRow()
			row.AddCell().SetValue(o.Number)
			row.AddCell().SetValue(string(o.Status))
			row.AddCell().SetValue(o.CustomerName)
			row.AddCell().SetValue(o.ContactMethod)
			row.AddCell().SetValue(o.ContactValue)
			row.AddCell().SetValue(o.Address)
			row.AddCell().SetValue(o.Comment)
			row.AddCell().SetValue(o.Currency)
			row.AddCell().SetValue(formatCents(o.SubtotalCents))
			row.AddCell().SetValue(formatCents(o.DiscountCents))
			row.AddCell().SetValue(formatCents(o.TotalCents))
			row.AddCell().SetValue(len(o.Items))
			row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
		}
	}
}

// formatCents renders minor units as a decimal string, e.g. 8500 -> "85.00".
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." +
		strconv.FormatInt(cents%100/10, 10) + strconv.FormatInt(cents%10, 10)
}
