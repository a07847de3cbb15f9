// Package analytics derives production dashboard statistics from
// manufactured stock-in transactions and their reports. The derivation is
// a pure function of its inputs plus an explicit reference time, so the
// same data always yields the same statistics.
package analytics

import (
	"sort"
	"time"

	"pvcflow/internal/core/types"
	"pvcflow/internal/domain/reports"
	"pvcflow/internal/domain/transactions"
)

// UnknownProduct is the breakdown label for transactions without a
// product name.
const UnknownProduct = "Unknown Product"

// topProductLimit caps the ranked product list.
const topProductLimit = 5

// WindowStats is a transaction count and quantity sum for one time window.
type WindowStats struct {
	TransactionCount   int     `json:"transactionCount"`
	ProductionQuantity float64 `json:"productionQuantity"`
}

// ProductStats accumulates one product's share of production.
type ProductStats struct {
	ProductName      string  `json:"productName"`
	TransactionCount int     `json:"transactionCount"`
	TotalQuantity    float64 `json:"totalQuantity"`
	Unit             string  `json:"unit,omitempty"`
}

// ProductionStats is the full dashboard payload.
type ProductionStats struct {
	Today     WindowStats `json:"today"`
	ThisWeek  WindowStats `json:"thisWeek"`
	ThisMonth WindowStats `json:"thisMonth"`
	ThisYear  WindowStats `json:"thisYear"`

	TotalTransactionCount   int     `json:"totalTransactionCount"`
	TotalProductionQuantity float64 `json:"totalProductionQuantity"`

	// AvgDailyProductionQuantity is the month-to-date running average:
	// month-window quantity divided by the current day of month.
	AvgDailyProductionQuantity float64 `json:"avgDailyProductionQuantity"`

	// ProductBreakdown holds every product in first-seen order;
	// TopProducts is the same data ranked by quantity, capped at five.
	ProductBreakdown []ProductStats `json:"productBreakdown"`
	TopProducts      []ProductStats `json:"topProducts"`

	CompletedReports int `json:"completedReports"`
	PendingReports   int `json:"pendingReports"`
}

// window is an inclusive [From, To] time range.
type window struct {
	From time.Time
	To   time.Time
}

func (w window) contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// Compute derives production statistics for the given reference time.
// Inputs are never mutated. The four windows are each anchored at now
// independently; the week window may span a month boundary, so windows
// are not nested subsets of one another.
func Compute(txs []*transactions.ProductionTransaction, reps []*reports.ProductionReport, now time.Time) ProductionStats {
	today := window{
		From: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		To:   now,
	}
	week := window{From: now.Add(-7 * 24 * time.Hour), To: now}
	month := window{
		From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()),
		To:   now,
	}
	year := window{
		From: time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()),
		To:   now,
	}

	stats := ProductionStats{}
	index := make(map[string]int)

	// Quantities are summed in fixed-point so long transaction lists do
	// not accumulate binary floating point noise in the dashboard totals.
	var totalQty, todayQty, weekQty, monthQty, yearQty types.Quantity
	var productQty []types.Quantity

	for _, tx := range txs {
		if tx == nil {
			continue
		}
		qty := types.NewQuantityFromFloat64(tx.Quantity)

		stats.TotalTransactionCount++
		totalQty = totalQty.Add(qty)

		if today.contains(tx.Date) {
			stats.Today.TransactionCount++
			todayQty = todayQty.Add(qty)
		}
		if week.contains(tx.Date) {
			stats.ThisWeek.TransactionCount++
			weekQty = weekQty.Add(qty)
		}
		if month.contains(tx.Date) {
			stats.ThisMonth.TransactionCount++
			monthQty = monthQty.Add(qty)
		}
		if year.contains(tx.Date) {
			stats.ThisYear.TransactionCount++
			yearQty = yearQty.Add(qty)
		}

		name := tx.ProductName
		if name == "" {
			name = UnknownProduct
		}
		pos, seen := index[name]
		if !seen {
			pos = len(stats.ProductBreakdown)
			index[name] = pos
			stats.ProductBreakdown = append(stats.ProductBreakdown, ProductStats{
				ProductName: name,
				Unit:        tx.Unit,
			})
			productQty = append(productQty, 0)
		}
		stats.ProductBreakdown[pos].TransactionCount++
		productQty[pos] = productQty[pos].Add(qty)
	}

	stats.TotalProductionQuantity = totalQty.Float64()
	stats.Today.ProductionQuantity = todayQty.Float64()
	stats.ThisWeek.ProductionQuantity = weekQty.Float64()
	stats.ThisMonth.ProductionQuantity = monthQty.Float64()
	stats.ThisYear.ProductionQuantity = yearQty.Float64()
	for i := range stats.ProductBreakdown {
		stats.ProductBreakdown[i].TotalQuantity = productQty[i].Float64()
	}

	// Running average for the month to date. The divisor is the current
	// day-of-month, not days elapsed since the first transaction.
	stats.AvgDailyProductionQuantity = stats.ThisMonth.ProductionQuantity / float64(now.Day())

	stats.TopProducts = rankProducts(stats.ProductBreakdown)

	for _, rep := range reps {
		if rep == nil {
			continue
		}
		switch rep.Status {
		case reports.StatusCompleted:
			stats.CompletedReports++
		case reports.StatusPending:
			stats.PendingReports++
		}
	}

	return stats
}

// rankProducts sorts a copy of the breakdown descending by total quantity
// and keeps the top five. The sort is stable, so equal quantities keep
// their first-seen order.
func rankProducts(breakdown []ProductStats) []ProductStats {
	ranked := make([]ProductStats, len(breakdown))
	copy(ranked, breakdown)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalQuantity > ranked[j].TotalQuantity
	})

	if len(ranked) > topProductLimit {
		ranked = ranked[:topProductLimit]
	}
	return ranked
}
