package reports

import (
	"context"
	"time"

	"pvcflow/internal/core/id"
	"pvcflow/internal/domain"
)

// Repository defines storage operations for production reports.
type Repository interface {
	Create(ctx context.Context, report *ProductionReport) error
	GetByID(ctx context.Context, reportID id.ID) (*ProductionReport, error)

	// GetByStockTransaction returns the report attached to a transaction.
	// Returns apperror.NewNotFound when none exists.
	GetByStockTransaction(ctx context.Context, txID id.ID) (*ProductionReport, error)

	Update(ctx context.Context, report *ProductionReport) error
	Delete(ctx context.Context, reportID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*ProductionReport], error)
}

// ListFilter for filtering production reports.
type ListFilter struct {
	domain.ListFilter

	Status       *Status
	QualityGrade *QualityGrade
	BatchNumber  string
	DateFrom     *time.Time
	DateTo       *time.Time
}
