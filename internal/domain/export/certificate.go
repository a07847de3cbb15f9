package export

import (
	"bytes"
	"fmt"
	"html/template"
	"reflect"
	"strconv"
	"strings"

	"pvcflow/internal/core/apperror"
	"pvcflow/internal/core/types"
	"pvcflow/internal/domain/reports"
	"pvcflow/internal/domain/transactions"
)

// Row is one label/value pair in a certificate table.
type Row struct {
	Label string
	Value string
}

// Section is one titled table of the certificate.
type Section struct {
	Title string
	Rows  []Row
}

type certificateData struct {
	BatchNumber string
	Sections    []Section
	Notes       []Row
}

var certificateTmpl = template.Must(template.New("certificate").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Certificate of Analysis {{.BatchNumber}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 40px; color: #1a1a1a; }
h1 { font-size: 22px; border-bottom: 2px solid #1a1a1a; padding-bottom: 8px; }
h2 { font-size: 15px; margin-top: 28px; }
table { width: 100%; border-collapse: collapse; margin-top: 8px; }
td { border: 1px solid #999; padding: 6px 10px; font-size: 12px; }
td.label { width: 40%; background: #f2f2f2; font-weight: bold; }
p.note { font-size: 12px; margin: 6px 0; }
</style>
</head>
<body>
<h1>Certificate of Analysis</h1>
{{range .Sections}}{{if .Rows}}<h2>{{.Title}}</h2>
<table>
{{range .Rows}}<tr><td class="label">{{.Label}}</td><td>{{.Value}}</td></tr>
{{end}}</table>
{{end}}{{end}}{{if .Notes}}<h2>Notes</h2>
{{range .Notes}}<p class="note"><strong>{{.Label}}:</strong> {{.Value}}</p>
{{end}}{{end}}</body>
</html>
`))

// CertificateHTML renders the certificate of analysis for a report and its
// source transaction. Only fields that carry a value produce rows; empty
// sections are omitted entirely.
func CertificateHTML(report *reports.ProductionReport, tx *transactions.ProductionTransaction) (string, error) {
	if report == nil {
		return "", apperror.NewExport("no report to render", nil)
	}

	batch := []Row{
		{Label: "Batch Number", Value: report.BatchNumber},
		{Label: "Production Date", Value: report.ProductionDate.Format("2006-01-02")},
		{Label: "Supervisor", Value: report.Supervisor},
		{Label: "Operator", Value: report.Operator},
		{Label: "Quality Grade", Value: string(report.QualityGrade)},
	}
	if tx != nil {
		batch = append(batch,
			Row{Label: "Product Name", Value: tx.ProductName},
			Row{Label: "Quantity", Value: formatQuantity(tx.Quantity, tx.Unit)},
		)
		if tx.InvoiceNo != "" {
			batch = append(batch, Row{Label: "Invoice No", Value: tx.InvoiceNo})
		}
	}

	quality := fieldRows(report.Fields.QualityProperties)
	quality = append(quality, fieldRows(report.Fields.Efficiency)...)
	quality = append(quality, fieldRows(report.Fields.Equipment)...)
	quality = append(quality, fieldRows(report.Fields.Compliance)...)
	quality = append(quality, fieldRows(report.Fields.Storage)...)
	quality = append(quality, fieldRows(report.Fields.DefectTracking)...)

	data := certificateData{
		BatchNumber: report.BatchNumber,
		Sections: []Section{
			{Title: "Batch Information", Rows: batch},
			{Title: "Raw Materials", Rows: rawMaterialRows(report.Fields.RawMaterials)},
			{Title: "Process Parameters", Rows: fieldRows(report.Fields.ProcessParameters)},
			{Title: "Quality Test Results", Rows: quality},
		},
		Notes: fieldRows(report.Fields.Notes),
	}

	var buf bytes.Buffer
	if err := certificateTmpl.Execute(&buf, data); err != nil {
		return "", apperror.NewExport("", err)
	}
	return buf.String(), nil
}

// CertificateFilename names the generated PDF after the batch and date,
// e.g. Production_Report_PVC-20260815_2026-08-15.pdf.
func CertificateFilename(report *reports.ProductionReport) string {
	batch := strings.TrimSpace(report.BatchNumber)
	if batch == "" {
		batch = "Unknown"
	}
	batch = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, batch)
	return fmt.Sprintf("Production_Report_%s_%s.pdf", batch, report.ProductionDate.Format("2006-01-02"))
}

// rawMaterialRows renders the raw-materials section. When any of the free
// material slots carry a quantity, a summary row with their decimal-exact
// total is appended.
func rawMaterialRows(rm reports.RawMaterials) []Row {
	rows := fieldRows(rm)

	var quantities []float64
	for _, q := range []*float64{
		rm.RawMaterial1Quantity,
		rm.RawMaterial2Quantity,
		rm.RawMaterial3Quantity,
		rm.RawMaterial4Quantity,
		rm.RawMaterial5Quantity,
	} {
		if q != nil {
			quantities = append(quantities, *q)
		}
	}
	if len(quantities) > 0 {
		total := types.NewQuantityFromFloat64(types.SumQuantities(quantities))
		rows = append(rows, Row{Label: "Total Raw Material Quantity", Value: total.String()})
	}
	return rows
}

// fieldRows walks one category struct and emits a row per present member,
// in declaration order, labeled from the field schema.
func fieldRows(section any) []Row {
	v := reflect.ValueOf(section)
	t := v.Type()

	var rows []Row
	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		if field.IsNil() {
			continue
		}
		key := strings.Split(t.Field(i).Tag.Get("json"), ",")[0]
		label := key
		if spec, ok := reports.Schema[key]; ok {
			label = spec.Label
		}
		rows = append(rows, Row{Label: label, Value: formatValue(field.Elem().Interface())})
	}
	return rows
}

func formatValue(value any) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
