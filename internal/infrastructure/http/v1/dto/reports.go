package dto

import (
	"time"

	"pvcflow/internal/domain"
	"pvcflow/internal/domain/reports"
)

// --- Request DTOs ---

// SaveReportRequest carries the raw form payload for a production report.
//
// The body is intentionally untyped: the form submits around 120 fields
// and the schema layer owns validation, coercion and sanitization. Typed
// binding here would duplicate that logic and reject values the sanitizer
// is supposed to coerce or drop.
type SaveReportRequest map[string]any

// ReportFilterRequest contains list filter query parameters.
type ReportFilterRequest struct {
	Search       string     `form:"search"`
	Status       string     `form:"status"`
	QualityGrade string     `form:"qualityGrade"`
	BatchNumber  string     `form:"batchNumber"`
	DateFrom     *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo       *time.Time `form:"dateTo" time_format:"2006-01-02"`
	OrderBy      string     `form:"orderBy"`
	Limit        int        `form:"limit"`
	Offset       int        `form:"offset"`
}

// ToFilter converts query parameters to a domain filter.
func (r *ReportFilterRequest) ToFilter() reports.ListFilter {
	filter := reports.ListFilter{
		ListFilter: domain.ListFilter{
			Search:  r.Search,
			OrderBy: r.OrderBy,
			Limit:   r.Limit,
			Offset:  r.Offset,
		},
		BatchNumber: r.BatchNumber,
		DateFrom:    r.DateFrom,
		DateTo:      r.DateTo,
	}
	if r.Status != "" {
		status := reports.Status(r.Status)
		filter.Status = &status
	}
	if r.QualityGrade != "" {
		grade := reports.QualityGrade(r.QualityGrade)
		filter.QualityGrade = &grade
	}
	return filter
}

// --- Response DTOs ---

// ReportResponse represents a production report in API responses.
type ReportResponse struct {
	ID                 string               `json:"id"`
	StockTransactionID string               `json:"stockTransactionId"`
	BatchNumber        string               `json:"batchNumber"`
	ProductionDate     time.Time            `json:"productionDate"`
	Supervisor         string               `json:"supervisor"`
	Operator           string               `json:"operator"`
	QualityGrade       string               `json:"qualityGrade"`
	Status             string               `json:"status"`
	Fields             reports.ReportFields `json:"fields"`
	Version            int                  `json:"version"`
	CreatedAt          time.Time            `json:"createdAt"`
	UpdatedAt          time.Time            `json:"updatedAt"`
	CreatedBy          string               `json:"createdBy,omitempty"`
}

// PrefillResponse wraps a report with its persistence state so the form
// knows whether it is editing an existing record or a fresh draft.
type PrefillResponse struct {
	Report ReportResponse `json:"report"`
	Exists bool           `json:"exists"`
}

// FromReport creates response from domain entity.
func FromReport(r *reports.ProductionReport) ReportResponse {
	return ReportResponse{
		ID:                 r.ID.String(),
		StockTransactionID: r.StockTransactionID.String(),
		BatchNumber:        r.BatchNumber,
		ProductionDate:     r.ProductionDate,
		Supervisor:         r.Supervisor,
		Operator:           r.Operator,
		QualityGrade:       string(r.QualityGrade),
		Status:             string(r.Status),
		Fields:             r.Fields,
		Version:            r.Version,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		CreatedBy:          r.CreatedBy,
	}
}

// FromReports maps a slice of entities.
func FromReports(docs []*reports.ProductionReport) []ReportResponse {
	out := make([]ReportResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, FromReport(d))
	}
	return out
}
