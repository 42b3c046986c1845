// Package export renders the stock report spreadsheet.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/sahans/shopstock/internal/domain/items"
)

// StockReport writes an xlsx with one row per item plus per-location totals.
func StockReport(w io.Writer, list []items.Item, currencySymbol string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"name",
		"category",
		"unit",
		"cost price",
		"sell price",
		"warehouse qty",
		"shop qty",
		"warehouse value",
		"shop value",
		"notes",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("report header: %w", err)
	}

	row := 2
	var warehouseValue, shopValue float64
	for _, it := range list {
		wv := float64(it.WarehouseQty) * it.CostPrice
		sv := float64(it.ShopQty) * it.CostPrice
		warehouseValue += wv
		shopValue += sv

		cells := []interface{}{
			it.Name,
			it.Category,
			it.Unit,
			it.CostPrice,
			it.SellPrice,
			it.WarehouseQty,
			it.ShopQty,
			wv,
			sv,
			it.Notes,
		}
		cell := fmt.Sprintf("A%d", row)
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("report row %d: %w", row, err)
		}
		row++
	}

	totals := []interface{}{
		"TOTAL", "", "", "", "", "", "",
		fmt.Sprintf("%s %.2f", currencySymbol, warehouseValue),
		fmt.Sprintf("%s %.2f", currencySymbol, shopValue),
		"",
	}
	cell := fmt.Sprintf("A%d", row)
	if err := f.SetSheetRow(sheet, cell, &totals); err != nil {
		return fmt.Errorf("report totals: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
