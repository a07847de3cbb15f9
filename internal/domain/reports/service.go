package reports

import (
	"context"
	"strings"
	"time"

	"pvcflow/internal/core/apperror"
	appctx "pvcflow/internal/core/context"
	"pvcflow/internal/core/id"
	"pvcflow/internal/core/tx"
	"pvcflow/internal/domain"
	"pvcflow/internal/domain/transactions"
	"pvcflow/pkg/logger"
)

// Service provides business operations for production reports.
type Service struct {
	repo      Repository
	txRepo    transactions.Repository
	txManager tx.Manager
	hooks     *domain.HookRegistry[*ProductionReport]
	clock     func() time.Time
}

// NewService creates a new reports service.
func NewService(repo Repository, txRepo transactions.Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txRepo:    txRepo,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*ProductionReport](),
		clock:     time.Now,
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*ProductionReport] {
	return s.hooks
}

// GetByID retrieves a report.
func (s *Service) GetByID(ctx context.Context, reportID id.ID) (*ProductionReport, error) {
	return s.repo.GetByID(ctx, reportID)
}

// GetByStockTransaction returns the report attached to a transaction, or a
// not-found error when none exists.
func (s *Service) GetByStockTransaction(ctx context.Context, txID id.ID) (*ProductionReport, error) {
	return s.repo.GetByStockTransaction(ctx, txID)
}

// Prefill prepares the report used to open the entry form for a
// transaction. When a report already exists it is returned as-is with
// exists=true. When none exists, a pending skeleton with a generated
// default batch number is returned without being persisted; the missing
// report is an expected state here, not an error. Any other lookup
// failure is surfaced.
func (s *Service) Prefill(ctx context.Context, txID id.ID) (*ProductionReport, bool, error) {
	report, err := s.repo.GetByStockTransaction(ctx, txID)
	if err == nil {
		return report, true, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, false, err
	}

	draft := NewProductionReport(txID)
	draft.BatchNumber = DefaultBatchNumber(s.clock())
	return draft, false, nil
}

// Save validates, sanitizes and persists the report payload for a
// transaction. Creates the report on first submit and updates it on
// subsequent submits; the first create also stamps the transaction's
// report status to COMPLETED inside the same database transaction.
//
// Unlike Prefill, every failure here is surfaced to the caller, including
// the transaction itself not existing.
func (s *Service) Save(ctx context.Context, txID id.ID, payload map[string]any) (*ProductionReport, error) {
	if err := ValidatePayload(payload); err != nil {
		return nil, err
	}
	clean := SanitizePayload(payload)

	fields, err := DecodeFields(clean)
	if err != nil {
		return nil, apperror.NewValidation("malformed report fields").WithCause(err)
	}

	var report *ProductionReport
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, lookupErr := s.repo.GetByStockTransaction(ctx, txID)
		switch {
		case lookupErr == nil:
			report = existing
			return s.update(ctx, report, clean, fields)
		case apperror.IsNotFound(lookupErr):
			created, createErr := s.create(ctx, txID, clean, fields)
			if createErr != nil {
				return createErr
			}
			report = created
			return nil
		default:
			return lookupErr
		}
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "production report saved",
		"id", report.ID,
		"stock_transaction_id", txID,
		"batch_number", report.BatchNumber,
		"version", report.Version)

	return report, nil
}

// List returns reports matching the filter with paging defaults applied.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*ProductionReport], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "-production_date"
	}
	return s.repo.List(ctx, filter)
}

// ListAll retrieves every report matching the filter, without pagination.
// Used by analytics which counts report statuses over the full set.
func (s *Service) ListAll(ctx context.Context, filter ListFilter) ([]*ProductionReport, error) {
	filter.Limit = 0
	filter.Offset = 0
	if filter.OrderBy == "" {
		filter.OrderBy = "-production_date"
	}
	result, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Delete soft-deletes a report.
func (s *Service) Delete(ctx context.Context, reportID id.ID) error {
	report, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		return err
	}
	if err := s.hooks.RunBeforeDelete(ctx, report); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, reportID); err != nil {
		return err
	}
	if err := s.hooks.RunAfterDelete(ctx, report); err != nil {
		logger.Warn(ctx, "after-delete hook failed", "error", err)
	}
	logger.Info(ctx, "production report deleted", "id", reportID)
	return nil
}

func (s *Service) create(ctx context.Context, txID id.ID, clean map[string]any, fields ReportFields) (*ProductionReport, error) {
	// The transaction must exist before a report attaches to it.
	if _, err := s.txRepo.GetByID(ctx, txID); err != nil {
		return nil, err
	}

	report := NewProductionReport(txID)
	applyColumns(report, clean)
	report.Fields = fields
	report.Status = StatusCompleted
	report.CreatedBy = appctx.GetUserName(ctx)
	report.UpdatedBy = report.CreatedBy

	if err := s.hooks.RunBeforeCreate(ctx, report); err != nil {
		return nil, err
	}
	if err := report.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}
	if err := s.txRepo.SetReportStatus(ctx, txID, transactions.ReportStatusCompleted); err != nil {
		return nil, err
	}
	if err := s.hooks.RunAfterCreate(ctx, report); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}
	return report, nil
}

func (s *Service) update(ctx context.Context, report *ProductionReport, clean map[string]any, fields ReportFields) error {
	applyColumns(report, clean)
	report.Fields = fields
	report.Status = StatusCompleted
	report.UpdatedBy = appctx.GetUserName(ctx)

	if err := s.hooks.RunBeforeUpdate(ctx, report); err != nil {
		return err
	}
	if err := report.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, report); err != nil {
		return err
	}
	if err := s.hooks.RunAfterUpdate(ctx, report); err != nil {
		logger.Warn(ctx, "after-update hook failed", "error", err)
	}
	return nil
}

// applyColumns copies the sanitized top-level values onto the report.
func applyColumns(report *ProductionReport, clean map[string]any) {
	if v, ok := clean["batchNumber"].(string); ok {
		report.BatchNumber = v
	}
	if v, ok := clean["productionDate"].(string); ok {
		if t, parsed := ParseDate(v); parsed {
			report.ProductionDate = t
		}
	}
	if v, ok := clean["supervisor"].(string); ok {
		report.Supervisor = v
	}
	if v, ok := clean["operator"].(string); ok {
		report.Operator = v
	}
	if v, ok := clean["qualityGrade"].(string); ok {
		grade := QualityGrade(strings.ToUpper(strings.TrimSpace(v)))
		if grade.IsValid() {
			report.QualityGrade = grade
		}
	}
	if report.QualityGrade == "" {
		report.QualityGrade = GradeA
	}
}
