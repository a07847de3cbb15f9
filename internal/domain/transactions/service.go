package transactions

import (
	"context"
	"fmt"
	"time"

	"pvcflow/internal/core/id"
	"pvcflow/internal/core/tx"
	"pvcflow/internal/domain"
	"pvcflow/pkg/logger"
	"pvcflow/pkg/numerator"
)

// Service provides business operations for production transactions.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
	hooks     *domain.HookRegistry[*ProductionTransaction]
}

// NewService creates a new transactions service.
func NewService(repo Repository, num numerator.Generator, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		numerator: num,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*ProductionTransaction](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*ProductionTransaction] {
	return s.hooks
}

// Create records a new stock-in transaction.
func (s *Service) Create(ctx context.Context, doc *ProductionTransaction) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	// Generate invoice number if empty
	if doc.InvoiceNo == "" {
		cfg := numerator.DefaultConfig("INV")
		number, err := s.numerator.GetNextNumber(ctx, cfg, numerator.DefaultOptions(), time.Now())
		if err != nil {
			return fmt.Errorf("generate invoice number: %w", err)
		}
		doc.InvoiceNo = number
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, doc)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "production transaction created",
		"id", doc.ID,
		"product", doc.ProductName,
		"invoice_no", doc.InvoiceNo)

	return nil
}

// GetByID retrieves a transaction.
func (s *Service) GetByID(ctx context.Context, txID id.ID) (*ProductionTransaction, error) {
	return s.repo.GetByID(ctx, txID)
}

// Update modifies a transaction.
func (s *Service) Update(ctx context.Context, doc *ProductionTransaction) error {
	if err := s.hooks.RunBeforeUpdate(ctx, doc); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterUpdate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-update hook failed", "error", err)
	}

	return nil
}

// Delete soft-deletes a transaction.
func (s *Service) Delete(ctx context.Context, txID id.ID) error {
	doc, err := s.repo.GetByID(ctx, txID)
	if err != nil {
		return err
	}

	if err := s.hooks.RunBeforeDelete(ctx, doc); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, txID); err != nil {
		return err
	}

	if err := s.hooks.RunAfterDelete(ctx, doc); err != nil {
		logger.Warn(ctx, "after-delete hook failed", "error", err)
	}

	return nil
}

// List retrieves transactions with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*ProductionTransaction], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "-date"
	}
	return s.repo.List(ctx, filter)
}

// ListAll retrieves every transaction matching the filter, without
// pagination. Used by exports and analytics which need the full set.
func (s *Service) ListAll(ctx context.Context, filter ListFilter) ([]*ProductionTransaction, error) {
	filter.Limit = 0
	filter.Offset = 0
	if filter.OrderBy == "" {
		filter.OrderBy = "-date"
	}
	result, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Balances returns on-hand quantities grouped by product.
func (s *Service) Balances(ctx context.Context) ([]StockBalance, error) {
	return s.repo.Balances(ctx)
}
