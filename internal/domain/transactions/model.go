// Package transactions provides the production stock transaction document.
// A transaction records one stock-in event: a manufactured (or purchased)
// quantity of a product entering inventory on a given date.
package transactions

import (
	"context"
	"time"

	"pvcflow/internal/core/apperror"
	"pvcflow/internal/core/entity"
)

// StockSource tags where a stock-in transaction originated.
type StockSource string

const (
	StockSourceManufactured StockSource = "MANUFACTURED"
	StockSourcePurchased    StockSource = "PURCHASED"
)

// IsValid reports whether the source is a known variant.
func (s StockSource) IsValid() bool {
	return s == StockSourceManufactured || s == StockSourcePurchased
}

// ReportStatus tracks whether a production report exists for a transaction.
//
// This mirrors reports.Status but is sourced independently: the transaction
// row is stamped COMPLETED when its report is first created, while the report
// carries its own status column. They are kept as distinct fields on purpose.
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "PENDING"
	ReportStatusCompleted ReportStatus = "COMPLETED"
)

// ProductionTransaction represents one stock-in event.
type ProductionTransaction struct {
	entity.BaseDocument

	// Product identification
	ProductName string `db:"product_name" json:"productName"`

	// Quantity is a unit-less magnitude paired with Unit
	Quantity float64 `db:"quantity" json:"quantity"`
	Unit     string  `db:"unit" json:"unit"`

	// Date is the production/event date, distinct from CreatedAt
	Date time.Time `db:"date" json:"date"`

	StockSource  StockSource  `db:"stock_source" json:"stockSource"`
	ReportStatus ReportStatus `db:"report_status" json:"reportStatus"`

	// InvoiceNo is a human batch/invoice reference, auto-numbered when absent
	InvoiceNo string `db:"invoice_no" json:"invoiceNo,omitempty"`

	Notes string `db:"notes" json:"notes,omitempty"`
}

// NewProductionTransaction creates a manufactured stock-in transaction.
func NewProductionTransaction(productName string, quantity float64, unit string, date time.Time) *ProductionTransaction {
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return &ProductionTransaction{
		BaseDocument: entity.NewBaseDocument(),
		ProductName:  productName,
		Quantity:     quantity,
		Unit:         unit,
		Date:         date,
		StockSource:  StockSourceManufactured,
		ReportStatus: ReportStatusPending,
	}
}

// Validate implements entity.Validatable.
func (t *ProductionTransaction) Validate(ctx context.Context) error {
	if t.ProductName == "" {
		return apperror.NewValidation("product name is required").
			WithDetail("field", "productName")
	}

	if t.Quantity < 0 {
		return apperror.NewValidation("quantity must not be negative").
			WithDetail("field", "quantity")
	}

	if t.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	if !t.StockSource.IsValid() {
		return apperror.NewValidation("unknown stock source").
			WithDetail("field", "stockSource").
			WithDetail("value", string(t.StockSource))
	}

	return nil
}

// StockBalance is an aggregated on-hand quantity per product.
type StockBalance struct {
	ProductName   string  `db:"product_name" json:"productName"`
	Unit          string  `db:"unit" json:"unit"`
	TotalQuantity float64 `db:"total_quantity" json:"totalQuantity"`
	Count         int64   `db:"tx_count" json:"transactionCount"`
}
