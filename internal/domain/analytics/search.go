package analytics

import (
	"sort"
	"strings"

	"pvcflow/internal/domain/transactions"
)

// Search filters transactions whose product name or invoice number
// contains the term, case-insensitively, and returns them sorted by date
// descending. An empty term matches everything; the date-descending sort
// is applied either way. The input slice is not modified.
func Search(txs []*transactions.ProductionTransaction, term string) []*transactions.ProductionTransaction {
	needle := strings.ToLower(strings.TrimSpace(term))

	out := make([]*transactions.ProductionTransaction, 0, len(txs))
	for _, tx := range txs {
		if tx == nil {
			continue
		}
		if needle == "" || matches(tx, needle) {
			out = append(out, tx)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func matches(tx *transactions.ProductionTransaction, needle string) bool {
	if strings.Contains(strings.ToLower(tx.ProductName), needle) {
		return true
	}
	return tx.InvoiceNo != "" && strings.Contains(strings.ToLower(tx.InvoiceNo), needle)
}
