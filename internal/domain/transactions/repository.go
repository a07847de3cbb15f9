package transactions

import (
	"context"
	"time"

	"pvcflow/internal/core/id"
	"pvcflow/internal/domain"
)

// Repository defines operations for production transactions.
type Repository interface {
	Create(ctx context.Context, tx *ProductionTransaction) error
	GetByID(ctx context.Context, txID id.ID) (*ProductionTransaction, error)
	Update(ctx context.Context, tx *ProductionTransaction) error
	Delete(ctx context.Context, txID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*ProductionTransaction], error)

	// SetReportStatus stamps the transaction's report status column.
	// Called when a production report is created for the transaction.
	SetReportStatus(ctx context.Context, txID id.ID, status ReportStatus) error

	// Balances returns on-hand quantities grouped by product.
	Balances(ctx context.Context) ([]StockBalance, error)
}

// ListFilter for filtering production transactions.
type ListFilter struct {
	domain.ListFilter

	StockSource  *StockSource
	ReportStatus *ReportStatus
	ProductName  string
	DateFrom     *time.Time
	DateTo       *time.Time
}
