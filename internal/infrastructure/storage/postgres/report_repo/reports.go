// Package report_repo provides the PostgreSQL implementation of the
// production report repository. The measurement set is stored as a JSONB
// column; pgx marshals the fields struct on write and unmarshals on read.
package report_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"pvcflow/internal/core/apperror"
	"pvcflow/internal/core/id"
	"pvcflow/internal/domain"
	"pvcflow/internal/domain/reports"
	"pvcflow/internal/infrastructure/storage/postgres"
)

const tableName = "production_reports"

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations; the table has a partial unique index on stock_transaction_id
// covering rows where deletion_mark is false.
const uniqueViolation = "23505"

// Compile-time check.
var _ reports.Repository = (*Repo)(nil)

// Repo implements reports.Repository on PostgreSQL.
type Repo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewRepo creates a new report repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[reports.ProductionReport](),
	}
}

func (r *Repo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *Repo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.selectCols...).From(tableName)
}

// Create inserts a new report. A second live report for the same transaction
// is rejected by the unique index and mapped to a conflict error; a
// soft-deleted predecessor does not block the insert.
func (r *Repo) Create(ctx context.Context, report *reports.ProductionReport) error {
	data := postgres.StructToMap(report)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}
	data["fields"] = report.Fields

	q := r.builder().Insert(tableName).SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperror.NewReportExists(report.StockTransactionID.String())
		}
		return fmt.Errorf("insert %s: %w", tableName, err)
	}
	return nil
}

// GetByID retrieves a report by ID.
func (r *Repo) GetByID(ctx context.Context, reportID id.ID) (*reports.ProductionReport, error) {
	report := &reports.ProductionReport{}
	q := r.baseSelect().Where(squirrel.Eq{"id": reportID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), report, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("production report", reportID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}
	return report, nil
}

// GetByStockTransaction retrieves the report attached to a transaction.
func (r *Repo) GetByStockTransaction(ctx context.Context, txID id.ID) (*reports.ProductionReport, error) {
	report := &reports.ProductionReport{}
	q := r.baseSelect().
		Where(squirrel.Eq{"stock_transaction_id": txID}).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), report, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("production report", txID.String())
		}
		return nil, fmt.Errorf("get by stock transaction: %w", err)
	}
	return report, nil
}

// Update updates a report with optimistic locking.
func (r *Repo) Update(ctx context.Context, report *reports.ProductionReport) error {
	data := postgres.StructToMap(report)

	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("entity has no 'version' field")
	}

	for _, col := range []string{"id", "stock_transaction_id", "created_at", "created_by", "version", "updated_at"} {
		delete(data, col)
	}
	data["fields"] = report.Fields

	q := r.builder().
		Update(tableName).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": report.ID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("production report", report.ID.String())
	}

	report.SetVersion(version + 1)
	return nil
}

// Delete soft-deletes a report.
func (r *Repo) Delete(ctx context.Context, reportID id.ID) error {
	q := r.builder().
		Update(tableName).
		Set("deletion_mark", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": reportID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("production report", reportID.String())
	}
	return nil
}

// List retrieves reports with filtering and paging. Search matches the
// batch number, supervisor or operator case-insensitively.
func (r *Repo) List(ctx context.Context, filter reports.ListFilter) (domain.ListResult[*reports.ProductionReport], error) {
	result := domain.ListResult[*reports.ProductionReport]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"batch_number": pattern},
			squirrel.ILike{"supervisor": pattern},
			squirrel.ILike{"operator": pattern},
		})
	}
	if filter.BatchNumber != "" {
		q = q.Where(squirrel.Eq{"batch_number": filter.BatchNumber})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.QualityGrade != nil {
		q = q.Where(squirrel.Eq{"quality_grade": *filter.QualityGrade})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"production_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"production_date": *filter.DateTo})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}

	return result, nil
}

func (r *Repo) parseOrderBy(orderBy string) (string, error) {
	allowed := make(map[string]struct{}, len(r.selectCols))
	for _, col := range r.selectCols {
		allowed[col] = struct{}{}
	}

	if strings.TrimSpace(orderBy) == "" {
		return "production_date DESC", nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	if _, ok := allowed[field]; !ok {
		return "", apperror.NewValidation("invalid orderBy").
			WithDetail("orderBy", orderBy).
			WithDetail("field", field)
	}

	return field + " " + direction, nil
}
