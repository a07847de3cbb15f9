package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvcflow/internal/domain/reports"
	"pvcflow/internal/domain/transactions"
)

func TestExtractDBColumnsTransaction(t *testing.T) {
	cols := ExtractDBColumns[transactions.ProductionTransaction]()

	assert.Contains(t, cols, "id")
	assert.Contains(t, cols, "version")
	assert.Contains(t, cols, "deletion_mark")
	assert.Contains(t, cols, "created_at")
	assert.Contains(t, cols, "product_name")
	assert.Contains(t, cols, "quantity")
	assert.Contains(t, cols, "stock_source")
	assert.Contains(t, cols, "report_status")
	assert.Contains(t, cols, "invoice_no")
}

func TestExtractDBColumnsReport(t *testing.T) {
	cols := ExtractDBColumns[reports.ProductionReport]()

	assert.Contains(t, cols, "stock_transaction_id")
	assert.Contains(t, cols, "batch_number")
	assert.Contains(t, cols, "production_date")
	assert.Contains(t, cols, "supervisor")
	assert.Contains(t, cols, "operator")
	assert.Contains(t, cols, "quality_grade")
	assert.Contains(t, cols, "status")
	assert.Contains(t, cols, "fields")
}

func TestStructToMap(t *testing.T) {
	tx := transactions.NewProductionTransaction("PVC Resin", 100.5, "kg",
		time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
	tx.InvoiceNo = "INV-2026-0001"

	m := StructToMap(tx)
	require.NotNil(t, m)

	assert.Equal(t, tx.ID, m["id"])
	assert.Equal(t, "PVC Resin", m["product_name"])
	assert.Equal(t, 100.5, m["quantity"])
	assert.Equal(t, "INV-2026-0001", m["invoice_no"])
	assert.Equal(t, 1, m["version"])
}

func TestStructToMapCachedSecondCall(t *testing.T) {
	tx := transactions.NewProductionTransaction("A", 1, "kg", time.Now())
	first := StructToMap(tx)
	second := StructToMap(tx)
	assert.Equal(t, first, second)
}

func TestStructToMapNonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap("x"))
}
