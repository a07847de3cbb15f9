package dto

import (
	"time"

	"pvcflow/internal/domain"
	"pvcflow/internal/domain/transactions"
)

// --- Request DTOs ---

// CreateTransactionRequest represents a request to record a stock-in event.
type CreateTransactionRequest struct {
	ProductName string    `json:"productName" binding:"required"`
	Quantity    float64   `json:"quantity" binding:"required,gt=0"`
	Unit        string    `json:"unit" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	StockSource string    `json:"stockSource,omitempty"`
	InvoiceNo   string    `json:"invoiceNo,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// ToEntity converts request to domain entity.
func (r *CreateTransactionRequest) ToEntity() *transactions.ProductionTransaction {
	doc := transactions.NewProductionTransaction(r.ProductName, r.Quantity, r.Unit, r.Date)
	doc.InvoiceNo = r.InvoiceNo
	doc.Notes = r.Notes
	if r.StockSource != "" {
		doc.StockSource = transactions.StockSource(r.StockSource)
	}
	return doc
}

// UpdateTransactionRequest represents a partial update.
type UpdateTransactionRequest struct {
	ProductName *string    `json:"productName,omitempty"`
	Quantity    *float64   `json:"quantity,omitempty"`
	Unit        *string    `json:"unit,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	StockSource *string    `json:"stockSource,omitempty"`
	InvoiceNo   *string    `json:"invoiceNo,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	Version     int        `json:"version" binding:"required"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateTransactionRequest) ApplyTo(doc *transactions.ProductionTransaction) {
	if r.ProductName != nil {
		doc.ProductName = *r.ProductName
	}
	if r.Quantity != nil {
		doc.Quantity = *r.Quantity
	}
	if r.Unit != nil {
		doc.Unit = *r.Unit
	}
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.StockSource != nil {
		doc.StockSource = transactions.StockSource(*r.StockSource)
	}
	if r.InvoiceNo != nil {
		doc.InvoiceNo = *r.InvoiceNo
	}
	if r.Notes != nil {
		doc.Notes = *r.Notes
	}
	doc.Version = r.Version
}

// TransactionFilterRequest contains list filter query parameters.
type TransactionFilterRequest struct {
	Search       string     `form:"search"`
	ProductName  string     `form:"productName"`
	StockSource  string     `form:"stockSource"`
	ReportStatus string     `form:"reportStatus"`
	DateFrom     *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo       *time.Time `form:"dateTo" time_format:"2006-01-02"`
	OrderBy      string     `form:"orderBy"`
	Limit        int        `form:"limit"`
	Offset       int        `form:"offset"`
}

// ToFilter converts query parameters to a domain filter.
func (r *TransactionFilterRequest) ToFilter() transactions.ListFilter {
	filter := transactions.ListFilter{
		ListFilter: domain.ListFilter{
			Search:  r.Search,
			OrderBy: r.OrderBy,
			Limit:   r.Limit,
			Offset:  r.Offset,
		},
		ProductName: r.ProductName,
		DateFrom:    r.DateFrom,
		DateTo:      r.DateTo,
	}
	if r.StockSource != "" {
		src := transactions.StockSource(r.StockSource)
		filter.StockSource = &src
	}
	if r.ReportStatus != "" {
		status := transactions.ReportStatus(r.ReportStatus)
		filter.ReportStatus = &status
	}
	return filter
}

// --- Response DTOs ---

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID           string    `json:"id"`
	ProductName  string    `json:"productName"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	Date         time.Time `json:"date"`
	StockSource  string    `json:"stockSource"`
	ReportStatus string    `json:"reportStatus"`
	InvoiceNo    string    `json:"invoiceNo,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	DeletionMark bool      `json:"deletionMark"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	CreatedBy    string    `json:"createdBy,omitempty"`
}

// FromTransaction creates response from domain entity.
func FromTransaction(t *transactions.ProductionTransaction) TransactionResponse {
	return TransactionResponse{
		ID:           t.ID.String(),
		ProductName:  t.ProductName,
		Quantity:     t.Quantity,
		Unit:         t.Unit,
		Date:         t.Date,
		StockSource:  string(t.StockSource),
		ReportStatus: string(t.ReportStatus),
		InvoiceNo:    t.InvoiceNo,
		Notes:        t.Notes,
		DeletionMark: t.DeletionMark,
		Version:      t.Version,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		CreatedBy:    t.CreatedBy,
	}
}

// FromTransactions maps a slice of entities.
func FromTransactions(docs []*transactions.ProductionTransaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, FromTransaction(d))
	}
	return out
}

// StockBalanceResponse represents aggregated stock per product.
type StockBalanceResponse struct {
	ProductName      string  `json:"productName"`
	Unit             string  `json:"unit"`
	TotalQuantity    float64 `json:"totalQuantity"`
	TransactionCount int64   `json:"transactionCount"`
}

// FromStockBalances maps domain balances.
func FromStockBalances(balances []transactions.StockBalance) []StockBalanceResponse {
	out := make([]StockBalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, StockBalanceResponse{
			ProductName:      b.ProductName,
			Unit:             b.Unit,
			TotalQuantity:    b.TotalQuantity,
			TransactionCount: b.Count,
		})
	}
	return out
}
