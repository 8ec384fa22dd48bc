package backup

import (
	"context"
	"fmt"
	"io"

	"github.com/mmdatafocus/garage_backend/models"
	"github.com/xuri/excelize/v2"
)

// ExportInventoryExcel writes the current inventory as a spreadsheet, one
// row per item with its category name resolved.
func (m *Manager) ExportInventoryExcel(ctx context.Context, w io.Writer) error {
	var items []models.InventoryItem
	if err := m.store.DB().WithContext(ctx).Order("sku").Find(&items).Error; err != nil {
		return err
	}
	var categories []models.InventoryCategory
	if err := m.store.DB().WithContext(ctx).Find(&categories).Error; err != nil {
		return err
	}
	categoryNames := make(map[int]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	f := excelize.NewFile()
	sheet := "Sheet1"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	// Add headers
	f.SetCellValue(sheet, "A1", "Sku")
	f.SetCellValue(sheet, "B1", "Name")
	f.SetCellValue(sheet, "C1", "Category")
	f.SetCellValue(sheet, "D1", "Unit")
	f.SetCellValue(sheet, "E1", "Quantity")
	f.SetCellValue(sheet, "F1", "CostPrice")
	f.SetCellValue(sheet, "G1", "SellingPrice")
	f.SetCellValue(sheet, "H1", "MinQuantity")
	f.SetCellValue(sheet, "I1", "Supplier")
	f.SetCellValue(sheet, "J1", "Location")

	// Add data
	for i, d := range items {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheet, "A"+row, d.Sku)
		f.SetCellValue(sheet, "B"+row, d.Name)
		f.SetCellValue(sheet, "C"+row, categoryNames[d.CategoryId])
		f.SetCellValue(sheet, "D"+row, d.Unit)
		f.SetCellValue(sheet, "E"+row, d.Quantity.InexactFloat64())
		f.SetCellValue(sheet, "F"+row, d.CostPrice.InexactFloat64())
		f.SetCellValue(sheet, "G"+row, d.SellingPrice.InexactFloat64())
		f.SetCellValue(sheet, "H"+row, d.MinQuantity.InexactFloat64())
		f.SetCellValue(sheet, "I"+row, d.Supplier)
		f.SetCellValue(sheet, "J"+row, d.Location)
	}

	return f.Write(w)
}
