package export

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvcflow/internal/core/apperror"
	"pvcflow/internal/core/id"
	"pvcflow/internal/domain/reports"
	"pvcflow/internal/domain/transactions"
)

func sampleTransaction() *transactions.ProductionTransaction {
	tx := transactions.NewProductionTransaction("PVC Resin K67", 100.5, "kg",
		time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC))
	tx.InvoiceNo = "INV-2026-0042"
	tx.Notes = "first shift"
	tx.CreatedBy = "Ava Chen"
	return tx
}

func sampleReport() *reports.ProductionReport {
	rep := reports.NewProductionReport(id.New())
	rep.BatchNumber = "PVC-20260815"
	rep.ProductionDate = time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	rep.Supervisor = "Ava Chen"
	rep.Operator = "R. Mehta"
	rep.QualityGrade = reports.GradeAPlus
	rep.Status = reports.StatusCompleted

	resin := 100.5
	kValue := 67.2
	astm := true
	remark := "dried twice before extrusion"
	rep.Fields.PVCResinQuantity = &resin
	rep.Fields.KValue = &kValue
	rep.Fields.ASTMCompliance = &astm
	rep.Fields.Remarks = &remark
	return rep
}

func TestTransactionWorkbook(t *testing.T) {
	f, err := TransactionWorkbook([]*transactions.ProductionTransaction{sampleTransaction()})
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(transactionSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "S.No", header)

	serial, err := f.GetCellValue(transactionSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "1", serial)

	product, err := f.GetCellValue(transactionSheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "PVC Resin K67", product)

	qty, err := f.GetCellValue(transactionSheet, "D2")
	require.NoError(t, err)
	assert.Equal(t, "100.5 kg", qty)

	invoice, err := f.GetCellValue(transactionSheet, "E2")
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0042", invoice)

	status, err := f.GetCellValue(transactionSheet, "F2")
	require.NoError(t, err)
	assert.Equal(t, "PENDING", status)
}

func TestTransactionWorkbookEmpty(t *testing.T) {
	f, err := TransactionWorkbook(nil)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(transactionSheet, "H1")
	require.NoError(t, err)
	assert.Equal(t, "Created By", header)
}

func TestCertificateHTMLIncludesPresentFieldsOnly(t *testing.T) {
	html, err := CertificateHTML(sampleReport(), sampleTransaction())
	require.NoError(t, err)

	assert.Contains(t, html, "Certificate of Analysis")
	assert.Contains(t, html, "PVC-20260815")
	assert.Contains(t, html, "PVC Resin Quantity")
	assert.Contains(t, html, "100.5")
	assert.Contains(t, html, "K-Value")
	assert.Contains(t, html, "ASTM Compliance")
	assert.Contains(t, html, "Yes")
	assert.Contains(t, html, "dried twice before extrusion")

	// Absent fields never render a row
	assert.NotContains(t, html, "Stabilizer Quantity")
	assert.NotContains(t, html, "Melt Flow Index")
}

func TestCertificateHTMLOmitsEmptySections(t *testing.T) {
	rep := sampleReport()
	rep.Fields = reports.ReportFields{}

	html, err := CertificateHTML(rep, nil)
	require.NoError(t, err)

	assert.Contains(t, html, "Batch Information")
	assert.NotContains(t, html, "Raw Materials")
	assert.NotContains(t, html, "Process Parameters")
	assert.NotContains(t, html, "Notes")
}

func TestCertificateHTMLEscapesValues(t *testing.T) {
	rep := sampleReport()
	hostile := `<script>alert("x")</script>`
	rep.Fields.Remarks = &hostile

	html, err := CertificateHTML(rep, nil)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestCertificateFilename(t *testing.T) {
	rep := sampleReport()
	assert.Equal(t, "Production_Report_PVC-20260815_2026-08-15.pdf", CertificateFilename(rep))

	rep.BatchNumber = ""
	assert.Equal(t, "Production_Report_Unknown_2026-08-15.pdf", CertificateFilename(rep))

	rep.BatchNumber = "lot 5/b"
	assert.Equal(t, "Production_Report_lot_5_b_2026-08-15.pdf", CertificateFilename(rep))
}

func TestInflightTracker(t *testing.T) {
	tracker := NewInflightTracker()

	require.NoError(t, tracker.Begin("r1"))

	err := tracker.Begin("r1")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeExportInProgress, appErr.Code)

	// Other records are unaffected
	require.NoError(t, tracker.Begin("r2"))

	tracker.End("r1")
	require.NoError(t, tracker.Begin("r1"))
}

func TestInflightTrackerConcurrent(t *testing.T) {
	tracker := NewInflightTracker()

	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tracker.Begin("same") == nil {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, acquired)
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "100.5 kg", formatQuantity(100.5, "kg"))
	assert.Equal(t, "30", formatQuantity(30, ""))
	assert.Equal(t, "0.3 t", formatQuantity(0.1+0.2, "t"))
}

func TestCertificateHTMLTotalsFreeMaterialSlots(t *testing.T) {
	rep := sampleReport()
	name1, qty1 := "CaCO3 Filler", 0.1
	name2, qty2 := "Chalk Masterbatch", 0.2
	rep.Fields.RawMaterial1Name = &name1
	rep.Fields.RawMaterial1Quantity = &qty1
	rep.Fields.RawMaterial2Name = &name2
	rep.Fields.RawMaterial2Quantity = &qty2

	html, err := CertificateHTML(rep, nil)
	require.NoError(t, err)
	assert.Contains(t, html, "Total Raw Material Quantity")
	assert.Contains(t, html, ">0.3<")
}

func TestCertificateHTMLNoTotalWithoutFreeSlots(t *testing.T) {
	// A report using only the named quantity fields gets no summary row.
	html, err := CertificateHTML(sampleReport(), nil)
	require.NoError(t, err)
	assert.NotContains(t, html, "Total Raw Material Quantity")
}

func TestFieldRowsPreserveDeclarationOrder(t *testing.T) {
	rep := sampleReport()
	rows := fieldRows(rep.Fields.QualityProperties)

	require.Len(t, rows, 1)
	assert.Equal(t, "K-Value", rows[0].Label)

	var labels []string
	for _, r := range fieldRows(rep.Fields.RawMaterials) {
		labels = append(labels, r.Label)
	}
	assert.Equal(t, []string{"PVC Resin Quantity"}, labels)
}
