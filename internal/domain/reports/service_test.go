package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvcflow/internal/core/apperror"
	"pvcflow/internal/core/id"
	"pvcflow/internal/domain"
	"pvcflow/internal/domain/transactions"
)

func requireAppError(t *testing.T, err error) *apperror.AppError {
	t.Helper()
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %T", err)
	return appErr
}

// memReportRepo is an in-memory Repository for service tests. Deleted
// reports stay in the store with the deletion mark set, mirroring the
// soft-delete semantics of the real repository: lookups skip them and
// only a live report blocks a second one for the same transaction.
type memReportRepo struct {
	items []*ProductionReport
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{}
}

func (m *memReportRepo) live(txID id.ID) *ProductionReport {
	for _, r := range m.items {
		if r.StockTransactionID == txID && !r.DeletionMark {
			return r
		}
	}
	return nil
}

func (m *memReportRepo) Create(_ context.Context, r *ProductionReport) error {
	if m.live(r.StockTransactionID) != nil {
		return apperror.NewReportExists(r.StockTransactionID.String())
	}
	m.items = append(m.items, r)
	return nil
}

func (m *memReportRepo) GetByID(_ context.Context, reportID id.ID) (*ProductionReport, error) {
	for _, r := range m.items {
		if r.ID == reportID && !r.DeletionMark {
			return r, nil
		}
	}
	return nil, apperror.NewNotFound("production report", reportID)
}

func (m *memReportRepo) GetByStockTransaction(_ context.Context, txID id.ID) (*ProductionReport, error) {
	if r := m.live(txID); r != nil {
		return r, nil
	}
	return nil, apperror.NewNotFound("production report", txID)
}

func (m *memReportRepo) Update(_ context.Context, r *ProductionReport) error {
	r.SetVersion(r.Version + 1)
	return nil
}

func (m *memReportRepo) Delete(_ context.Context, reportID id.ID) error {
	for _, r := range m.items {
		if r.ID == reportID && !r.DeletionMark {
			r.DeletionMark = true
			return nil
		}
	}
	return apperror.NewNotFound("production report", reportID)
}

func (m *memReportRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*ProductionReport], error) {
	var items []*ProductionReport
	for _, r := range m.items {
		if !r.DeletionMark {
			items = append(items, r)
		}
	}
	return domain.ListResult[*ProductionReport]{Items: items, TotalCount: int64(len(items))}, nil
}

// memTxRepo stubs the transaction repository; it tracks report status stamps.
type memTxRepo struct {
	transactions.Repository

	known    map[id.ID]*transactions.ProductionTransaction
	statuses map[id.ID]transactions.ReportStatus
}

func newMemTxRepo(ids ...id.ID) *memTxRepo {
	m := &memTxRepo{
		known:    make(map[id.ID]*transactions.ProductionTransaction),
		statuses: make(map[id.ID]transactions.ReportStatus),
	}
	for _, txID := range ids {
		doc := transactions.NewProductionTransaction("PVC Resin", 100, "kg", time.Time{})
		doc.ID = txID
		m.known[txID] = doc
	}
	return m
}

func (m *memTxRepo) GetByID(_ context.Context, txID id.ID) (*transactions.ProductionTransaction, error) {
	if doc, ok := m.known[txID]; ok {
		return doc, nil
	}
	return nil, apperror.NewNotFound("production transaction", txID)
}

func (m *memTxRepo) SetReportStatus(_ context.Context, txID id.ID, status transactions.ReportStatus) error {
	m.statuses[txID] = status
	return nil
}

// passthroughTx runs the function without a real database.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(txIDs ...id.ID) (*Service, *memReportRepo, *memTxRepo) {
	repo := newMemReportRepo()
	txRepo := newMemTxRepo(txIDs...)
	svc := NewService(repo, txRepo, passthroughTx{})
	return svc, repo, txRepo
}

func validPayload() map[string]any {
	return map[string]any{
		"batchNumber":      "PVC-20260815",
		"productionDate":   "2026-08-15",
		"supervisor":       "Ava Chen",
		"operator":         "R. Mehta",
		"pvcResinQuantity": "100.5",
		"remarks":          "",
	}
}

func TestPrefillReturnsDraftWhenNoReportExists(t *testing.T) {
	txID := id.New()
	svc, _, _ := newTestService(txID)
	svc.clock = func() time.Time {
		return time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)
	}

	report, exists, err := svc.Prefill(context.Background(), txID)
	require.NoError(t, err)

	assert.False(t, exists)
	assert.Equal(t, "PVC-20260815", report.BatchNumber)
	assert.Equal(t, StatusPending, report.Status)
	assert.Equal(t, GradeA, report.QualityGrade)
	assert.Equal(t, txID, report.StockTransactionID)
}

func TestPrefillReturnsExistingReport(t *testing.T) {
	txID := id.New()
	svc, _, _ := newTestService(txID)

	saved, err := svc.Save(context.Background(), txID, validPayload())
	require.NoError(t, err)

	report, exists, err := svc.Prefill(context.Background(), txID)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, saved.ID, report.ID)
}

func TestSaveCreatesReportAndStampsTransaction(t *testing.T) {
	txID := id.New()
	svc, repo, txRepo := newTestService(txID)

	report, err := svc.Save(context.Background(), txID, validPayload())
	require.NoError(t, err)

	assert.Equal(t, "PVC-20260815", report.BatchNumber)
	assert.Equal(t, "Ava Chen", report.Supervisor)
	assert.Equal(t, StatusCompleted, report.Status)
	require.NotNil(t, report.Fields.PVCResinQuantity)
	assert.Equal(t, 100.5, *report.Fields.PVCResinQuantity)
	assert.Nil(t, report.Fields.Remarks)

	stored, err := repo.GetByStockTransaction(context.Background(), txID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, stored.ID)

	assert.Equal(t, transactions.ReportStatusCompleted, txRepo.statuses[txID])
}

func TestSaveUpdatesExistingReport(t *testing.T) {
	txID := id.New()
	svc, _, _ := newTestService(txID)

	first, err := svc.Save(context.Background(), txID, validPayload())
	require.NoError(t, err)

	payload := validPayload()
	payload["supervisor"] = "J. Okafor"
	payload["qualityGrade"] = "B+"

	second, err := svc.Save(context.Background(), txID, payload)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "J. Okafor", second.Supervisor)
	assert.Equal(t, GradeBPlus, second.QualityGrade)
	assert.Greater(t, second.Version, 1)
}

func TestSaveAfterDeleteCreatesNewReport(t *testing.T) {
	txID := id.New()
	svc, _, txRepo := newTestService(txID)

	first, err := svc.Save(context.Background(), txID, validPayload())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), first.ID))

	// The tombstone must not shadow the transaction.
	_, exists, err := svc.Prefill(context.Background(), txID)
	require.NoError(t, err)
	assert.False(t, exists)

	second, err := svc.Save(context.Background(), txID, validPayload())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, StatusCompleted, second.Status)
	assert.Equal(t, transactions.ReportStatusCompleted, txRepo.statuses[txID])
}

func TestSaveRejectsIncompletePayload(t *testing.T) {
	txID := id.New()
	svc, repo, _ := newTestService(txID)

	payload := validPayload()
	delete(payload, "supervisor")
	delete(payload, "operator")

	_, err := svc.Save(context.Background(), txID, payload)
	require.Error(t, err)

	fields := requireAppError(t, err).Details["fields"].(map[string]string)
	assert.Len(t, fields, 2)

	_, err = repo.GetByStockTransaction(context.Background(), txID)
	assert.True(t, apperror.IsNotFound(err), "nothing should be persisted")
}

func TestSaveSurfacesUnknownTransaction(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Save(context.Background(), id.New(), validPayload())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestSaveIgnoresInvalidQualityGrade(t *testing.T) {
	txID := id.New()
	svc, _, _ := newTestService(txID)

	payload := validPayload()
	payload["qualityGrade"] = "Z"

	report, err := svc.Save(context.Background(), txID, payload)
	require.NoError(t, err)
	assert.Equal(t, GradeA, report.QualityGrade)
}

func TestDefaultBatchNumber(t *testing.T) {
	now := time.Date(2026, 1, 5, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "PVC-20260105", DefaultBatchNumber(now))
}

func TestReportValidateCollectsAllRequired(t *testing.T) {
	report := &ProductionReport{}
	err := report.Validate(context.Background())
	require.Error(t, err)

	fields := requireAppError(t, err).Details["fields"].(map[string]string)
	assert.Len(t, fields, 4)
}
