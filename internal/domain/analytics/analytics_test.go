package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvcflow/internal/core/id"
	"pvcflow/internal/domain/reports"
	"pvcflow/internal/domain/transactions"
)

func tx(product string, qty float64, date time.Time) *transactions.ProductionTransaction {
	doc := transactions.NewProductionTransaction(product, qty, "kg", date)
	return doc
}

func report(status reports.Status) *reports.ProductionReport {
	rep := reports.NewProductionReport(id.New())
	rep.Status = status
	return rep
}

func TestComputeEndToEnd(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	today := now.Add(-2 * time.Hour)
	tenDaysAgo := now.AddDate(0, 0, -10)

	txs := []*transactions.ProductionTransaction{
		tx("PVC-A", 100, today),
		tx("PVC-A", 50, today),
		tx("PVC-B", 30, tenDaysAgo),
	}

	stats := Compute(txs, nil, now)

	assert.Equal(t, 2, stats.Today.TransactionCount)
	assert.Equal(t, 150.0, stats.Today.ProductionQuantity)
	assert.Equal(t, 3, stats.TotalTransactionCount)
	assert.Equal(t, 180.0, stats.TotalProductionQuantity)

	require.Len(t, stats.ProductBreakdown, 2)
	assert.Equal(t, "PVC-A", stats.ProductBreakdown[0].ProductName)
	assert.Equal(t, 2, stats.ProductBreakdown[0].TransactionCount)
	assert.Equal(t, 150.0, stats.ProductBreakdown[0].TotalQuantity)
	assert.Equal(t, "PVC-B", stats.ProductBreakdown[1].ProductName)
	assert.Equal(t, 30.0, stats.ProductBreakdown[1].TotalQuantity)

	require.Len(t, stats.TopProducts, 2)
	assert.Equal(t, "PVC-A", stats.TopProducts[0].ProductName)
	assert.Equal(t, "PVC-B", stats.TopProducts[1].ProductName)
}

func TestComputeWindowsAreIndependent(t *testing.T) {
	// Early in the month the 7-day week window reaches back into the
	// previous month, so week is not a subset of month.
	now := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	stats := Compute([]*transactions.ProductionTransaction{
		tx("PVC-A", 40, lastMonth),
	}, nil, now)

	assert.Equal(t, 1, stats.ThisWeek.TransactionCount)
	assert.Equal(t, 0, stats.ThisMonth.TransactionCount)
	assert.Equal(t, 1, stats.ThisYear.TransactionCount)
	assert.Equal(t, 0, stats.Today.TransactionCount)
}

func TestComputeWindowBoundsInclusive(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	midnight := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	stats := Compute([]*transactions.ProductionTransaction{
		tx("PVC-A", 10, midnight),
		tx("PVC-A", 5, now),
		tx("PVC-A", 1, now.Add(time.Second)),
	}, nil, now)

	// Both bounds are inclusive; anything after now is out.
	assert.Equal(t, 2, stats.Today.TransactionCount)
	assert.Equal(t, 15.0, stats.Today.ProductionQuantity)
}

func TestComputeAvgDailyUsesDayOfMonth(t *testing.T) {
	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)

	stats := Compute([]*transactions.ProductionTransaction{
		tx("PVC-A", 500, now.AddDate(0, 0, -3)),
	}, nil, now)

	assert.InDelta(t, 50.0, stats.AvgDailyProductionQuantity, 1e-9)
}

func TestComputeTopProductsCappedAndStable(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	var txs []*transactions.ProductionTransaction
	for i := 0; i < 7; i++ {
		// Equal quantities so only insertion order breaks ties
		txs = append(txs, tx(fmt.Sprintf("PVC-%d", i), 10, now))
	}
	txs = append(txs, tx("PVC-6", 90, now))

	stats := Compute(txs, nil, now)

	require.Len(t, stats.TopProducts, 5)
	assert.Equal(t, "PVC-6", stats.TopProducts[0].ProductName)
	assert.Equal(t, "PVC-0", stats.TopProducts[1].ProductName)
	assert.Equal(t, "PVC-1", stats.TopProducts[2].ProductName)
	assert.Equal(t, "PVC-2", stats.TopProducts[3].ProductName)
	assert.Equal(t, "PVC-3", stats.TopProducts[4].ProductName)

	require.Len(t, stats.ProductBreakdown, 7)
	var sum float64
	for _, p := range stats.ProductBreakdown {
		sum += p.TotalQuantity
	}
	assert.Equal(t, stats.TotalProductionQuantity, sum)
}

func TestComputeUnknownProductFallback(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	stats := Compute([]*transactions.ProductionTransaction{
		tx("", 25, now),
		tx("", 5, now),
	}, nil, now)

	require.Len(t, stats.ProductBreakdown, 1)
	assert.Equal(t, UnknownProduct, stats.ProductBreakdown[0].ProductName)
	assert.Equal(t, 30.0, stats.ProductBreakdown[0].TotalQuantity)
}

func TestComputeReportStatusCounts(t *testing.T) {
	now := time.Now()

	reps := []*reports.ProductionReport{
		report(reports.StatusCompleted),
		report(reports.StatusCompleted),
		report(reports.StatusPending),
	}

	stats := Compute(nil, reps, now)
	assert.Equal(t, 2, stats.CompletedReports)
	assert.Equal(t, 1, stats.PendingReports)
}

func TestComputeDoesNotMutateInputs(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	first := tx("PVC-A", 100, now)
	second := tx("PVC-B", 30, now)
	txs := []*transactions.ProductionTransaction{first, second}

	_ = Compute(txs, nil, now)

	assert.Equal(t, "PVC-A", txs[0].ProductName)
	assert.Equal(t, 100.0, txs[0].Quantity)
	assert.Same(t, first, txs[0])
	assert.Same(t, second, txs[1])
}

func TestSearchMatchesProductOrInvoice(t *testing.T) {
	now := time.Now()

	a := tx("PVC Resin K67", 10, now.Add(-time.Hour))
	a.InvoiceNo = "INV-2026-0001"
	b := tx("Stabilizer", 5, now)
	b.InvoiceNo = "INV-2026-0002"

	txs := []*transactions.ProductionTransaction{a, b}

	got := Search(txs, "resin")
	require.Len(t, got, 1)
	assert.Same(t, a, got[0])

	got = Search(txs, "0002")
	require.Len(t, got, 1)
	assert.Same(t, b, got[0])

	got = Search(txs, "RESIN")
	require.Len(t, got, 1)

	got = Search(txs, "nothing-matches")
	assert.Empty(t, got)
}

func TestSearchAlwaysSortsDateDescending(t *testing.T) {
	now := time.Now()

	oldest := tx("PVC-A", 1, now.AddDate(0, 0, -3))
	newest := tx("PVC-A", 1, now)
	middle := tx("PVC-A", 1, now.AddDate(0, 0, -1))

	txs := []*transactions.ProductionTransaction{oldest, newest, middle}

	got := Search(txs, "")
	require.Len(t, got, 3)
	assert.Same(t, newest, got[0])
	assert.Same(t, middle, got[1])
	assert.Same(t, oldest, got[2])

	// Input order untouched
	assert.Same(t, oldest, txs[0])
}
