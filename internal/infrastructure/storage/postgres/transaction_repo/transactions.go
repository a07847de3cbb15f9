// Package transaction_repo provides the PostgreSQL implementation of the
// production transaction repository.
package transaction_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pvcflow/internal/core/apperror"
	"pvcflow/internal/core/id"
	"pvcflow/internal/domain"
	"pvcflow/internal/domain/transactions"
	"pvcflow/internal/infrastructure/storage/postgres"
)

const tableName = "production_transactions"

// Compile-time check.
var _ transactions.Repository = (*Repo)(nil)

// Repo implements transactions.Repository on PostgreSQL.
type Repo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewRepo creates a new transaction repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[transactions.ProductionTransaction](),
	}
}

func (r *Repo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *Repo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.selectCols...).From(tableName)
}

// Create inserts a new transaction.
func (r *Repo) Create(ctx context.Context, doc *transactions.ProductionTransaction) error {
	data := postgres.StructToMap(doc)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	q := r.builder().Insert(tableName).SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", tableName, err)
	}
	return nil
}

// GetByID retrieves a transaction by ID.
func (r *Repo) GetByID(ctx context.Context, txID id.ID) (*transactions.ProductionTransaction, error) {
	doc := &transactions.ProductionTransaction{}
	q := r.baseSelect().Where(squirrel.Eq{"id": txID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("production transaction", txID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}
	return doc, nil
}

// Update updates a transaction with optimistic locking.
func (r *Repo) Update(ctx context.Context, doc *transactions.ProductionTransaction) error {
	data := postgres.StructToMap(doc)

	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("entity has no 'version' field")
	}

	// Immutable and repo-managed columns are excluded
	for _, col := range []string{"id", "created_at", "created_by", "version", "updated_at"} {
		delete(data, col)
	}

	q := r.builder().
		Update(tableName).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": doc.ID}).
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
		return apperror.NewConcurrentModification("production transaction", doc.ID.String())
	}

	doc.SetVersion(version + 1)
	return nil
}

// Delete soft-deletes a transaction.
func (r *Repo) Delete(ctx context.Context, txID id.ID) error {
	q := r.builder().
		Update(tableName).
		Set("deletion_mark", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": txID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("production transaction", txID.String())
	}
	return nil
}

// SetReportStatus stamps the transaction's report status column.
func (r *Repo) SetReportStatus(ctx context.Context, txID id.ID, status transactions.ReportStatus) error {
	q := r.builder().
		Update(tableName).
		Set("report_status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": txID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set report status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("production transaction", txID.String())
	}
	return nil
}

// List retrieves transactions with filtering and paging. Search matches
// product name or invoice number case-insensitively.
func (r *Repo) List(ctx context.Context, filter transactions.ListFilter) (domain.ListResult[*transactions.ProductionTransaction], error) {
	result := domain.ListResult[*transactions.ProductionTransaction]{
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
			squirrel.ILike{"product_name": pattern},
			squirrel.ILike{"invoice_no": pattern},
		})
	}
	if filter.ProductName != "" {
		q = q.Where(squirrel.Eq{"product_name": filter.ProductName})
	}
	if filter.StockSource != nil {
		q = q.Where(squirrel.Eq{"stock_source": *filter.StockSource})
	}
	if filter.ReportStatus != nil {
		q = q.Where(squirrel.Eq{"report_status": *filter.ReportStatus})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
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

// Balances returns on-hand quantities grouped by product, excluding
// soft-deleted rows.
func (r *Repo) Balances(ctx context.Context) ([]transactions.StockBalance, error) {
	q := r.builder().
		Select(
			"product_name",
			"MAX(unit) AS unit",
			"SUM(quantity) AS total_quantity",
			"COUNT(*) AS tx_count",
		).
		From(tableName).
		Where(squirrel.Eq{"deletion_mark": false}).
		GroupBy("product_name").
		OrderBy("total_quantity DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []transactions.StockBalance
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("balances: %w", err)
	}
	return balances, nil
}

func (r *Repo) parseOrderBy(orderBy string) (string, error) {
	allowed := make(map[string]struct{}, len(r.selectCols))
	for _, col := range r.selectCols {
		allowed[col] = struct{}{}
	}

	if strings.TrimSpace(orderBy) == "" {
		return "date DESC", nil
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
