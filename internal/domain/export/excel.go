// Package export renders production data into downloadable documents:
// an xlsx transaction register and an HTML certificate of analysis that
// is converted to PDF downstream.
package export

import (
	"github.com/xuri/excelize/v2"

	"pvcflow/internal/core/apperror"
	"pvcflow/internal/core/types"
	"pvcflow/internal/domain/transactions"
)

const transactionSheet = "Production Transactions"

var transactionHeaders = []string{
	"S.No",
	"Date",
	"Product Name",
	"Quantity",
	"Batch/Invoice No",
	"Report Status",
	"Notes",
	"Created By",
}

// TransactionWorkbook builds an xlsx register of production transactions.
// Rows follow the input order; serial numbers start at 1.
func TransactionWorkbook(txs []*transactions.ProductionTransaction) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", transactionSheet); err != nil {
		return nil, apperror.NewExport("", err)
	}

	for col, header := range transactionHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, apperror.NewExport("", err)
		}
		if err := f.SetCellValue(transactionSheet, cell, header); err != nil {
			return nil, apperror.NewExport("", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		_ = f.SetCellStyle(transactionSheet, "A1", "H1", headerStyle)
	}

	for i, tx := range txs {
		if tx == nil {
			continue
		}
		row := i + 2
		values := []any{
			i + 1,
			tx.Date.Format("2006-01-02"),
			tx.ProductName,
			formatQuantity(tx.Quantity, tx.Unit),
			tx.InvoiceNo,
			string(tx.ReportStatus),
			tx.Notes,
			tx.CreatedBy,
		}
		for col, value := range values {
			cell, cellErr := excelize.CoordinatesToCellName(col+1, row)
			if cellErr != nil {
				return nil, apperror.NewExport("", cellErr)
			}
			if setErr := f.SetCellValue(transactionSheet, cell, value); setErr != nil {
				return nil, apperror.NewExport("", setErr)
			}
		}
	}

	return f, nil
}

// formatQuantity renders a quantity with its unit, e.g. "100.5 kg".
// Going through the fixed-point type keeps the output free of float
// artifacts like "100.50000000000001".
func formatQuantity(qty float64, unit string) string {
	s := types.NewQuantityFromFloat64(qty).String()
	if unit != "" {
		return s + " " + unit
	}
	return s
}
