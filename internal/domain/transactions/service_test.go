package transactions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvcflow/internal/core/apperror"
	"pvcflow/internal/core/id"
	"pvcflow/internal/domain"
	"pvcflow/pkg/numerator"
)

// memRepo is an in-memory Repository for service tests. It records the
// last filter List received so default handling can be asserted.
type memRepo struct {
	docs       map[id.ID]*ProductionTransaction
	lastFilter ListFilter
}

func newMemRepo() *memRepo {
	return &memRepo{docs: make(map[id.ID]*ProductionTransaction)}
}

func (m *memRepo) Create(_ context.Context, doc *ProductionTransaction) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *memRepo) GetByID(_ context.Context, txID id.ID) (*ProductionTransaction, error) {
	if doc, ok := m.docs[txID]; ok {
		return doc, nil
	}
	return nil, apperror.NewNotFound("production transaction", txID)
}

func (m *memRepo) Update(_ context.Context, doc *ProductionTransaction) error {
	if _, ok := m.docs[doc.ID]; !ok {
		return apperror.NewNotFound("production transaction", doc.ID)
	}
	m.docs[doc.ID] = doc
	doc.SetVersion(doc.Version + 1)
	return nil
}

func (m *memRepo) Delete(_ context.Context, txID id.ID) error {
	if _, ok := m.docs[txID]; !ok {
		return apperror.NewNotFound("production transaction", txID)
	}
	delete(m.docs, txID)
	return nil
}

func (m *memRepo) List(_ context.Context, filter ListFilter) (domain.ListResult[*ProductionTransaction], error) {
	m.lastFilter = filter
	var items []*ProductionTransaction
	for _, doc := range m.docs {
		items = append(items, doc)
	}
	return domain.ListResult[*ProductionTransaction]{Items: items, TotalCount: int64(len(items))}, nil
}

func (m *memRepo) SetReportStatus(_ context.Context, txID id.ID, status ReportStatus) error {
	if doc, ok := m.docs[txID]; ok {
		doc.ReportStatus = status
		return nil
	}
	return apperror.NewNotFound("production transaction", txID)
}

func (m *memRepo) Balances(_ context.Context) ([]StockBalance, error) {
	return nil, nil
}

// stubNumerator hands out fixed invoice numbers.
type stubNumerator struct {
	next  string
	calls int
}

func (s *stubNumerator) GetNextNumber(_ context.Context, _ numerator.Config, _ *numerator.Options, _ time.Time) (string, error) {
	s.calls++
	return s.next, nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *memRepo, *stubNumerator) {
	repo := newMemRepo()
	num := &stubNumerator{next: "INV-2026-00042"}
	svc := NewService(repo, num, passthroughTx{})
	return svc, repo, num
}

func TestCreateAssignsInvoiceNumberWhenEmpty(t *testing.T) {
	svc, repo, num := newTestService()

	doc := NewProductionTransaction("PVC Resin K67", 250, "kg", time.Time{})
	require.NoError(t, svc.Create(context.Background(), doc))

	assert.Equal(t, "INV-2026-00042", doc.InvoiceNo)
	assert.Equal(t, 1, num.calls)
	assert.Contains(t, repo.docs, doc.ID)
}

func TestCreateKeepsProvidedInvoiceNumber(t *testing.T) {
	svc, _, num := newTestService()

	doc := NewProductionTransaction("PVC Resin K67", 250, "kg", time.Time{})
	doc.InvoiceNo = "BATCH-7"
	require.NoError(t, svc.Create(context.Background(), doc))

	assert.Equal(t, "BATCH-7", doc.InvoiceNo)
	assert.Zero(t, num.calls)
}

func TestCreateRejectsInvalidDocument(t *testing.T) {
	svc, repo, _ := newTestService()

	doc := NewProductionTransaction("PVC Resin K67", -5, "kg", time.Time{})
	err := svc.Create(context.Background(), doc)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "quantity", appErr.Details["field"])
	assert.Empty(t, repo.docs)
}

func TestCreateRunsAfterCreateHook(t *testing.T) {
	svc, _, _ := newTestService()

	var hooked *ProductionTransaction
	svc.Hooks().OnAfterCreate(func(_ context.Context, doc *ProductionTransaction) error {
		hooked = doc
		return nil
	})

	doc := NewProductionTransaction("PVC Resin K67", 250, "kg", time.Time{})
	require.NoError(t, svc.Create(context.Background(), doc))
	assert.Same(t, doc, hooked)
}

func TestDeleteSurfacesNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Delete(context.Background(), id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestListAppliesDefaults(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)

	assert.Equal(t, 50, repo.lastFilter.Limit)
	assert.Equal(t, "-date", repo.lastFilter.OrderBy)

	_, err = svc.List(context.Background(), ListFilter{ListFilter: domain.ListFilter{Limit: 9999}})
	require.NoError(t, err)
	assert.Equal(t, 500, repo.lastFilter.Limit)
}

func TestListAllClearsPagination(t *testing.T) {
	svc, repo, _ := newTestService()

	doc := NewProductionTransaction("PVC Resin K67", 250, "kg", time.Time{})
	require.NoError(t, svc.Create(context.Background(), doc))

	items, err := svc.ListAll(context.Background(), ListFilter{ListFilter: domain.ListFilter{Limit: 10, Offset: 20}})
	require.NoError(t, err)

	assert.Len(t, items, 1)
	assert.Zero(t, repo.lastFilter.Limit)
	assert.Zero(t, repo.lastFilter.Offset)
}
