// Package export renders transactions as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"financetracker/internal/core"
)

const (
	SheetName   = "Transactions"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{"Date", "Type", "Category", "Description", "Amount"}

// WriteTransactionsXLSX writes txs as a single-sheet workbook. Amounts are
// numeric cells with two decimals; expenses stay positive and the Type
// column tells them apart.
func WriteTransactionsXLSX(w io.Writer, txs []core.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}

	for i, tx := range txs {
		row := i + 2
		amount, _ := tx.Amount.Decimal().Float64()
		values := []any{tx.Date.String(), string(tx.Type), tx.CategoryName, tx.Description, amount}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}
	if len(txs) > 0 {
		last := fmt.Sprintf("E%d", len(txs)+1)
		if err := f.SetCellStyle(SheetName, "E2", last, amountStyle); err != nil {
			return fmt.Errorf("style amounts: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// FileName is the download name for an export made on day.
func FileName(day core.Date) string {
	return fmt.Sprintf("transactions_%s.xlsx", day.Format("20060102"))
}
