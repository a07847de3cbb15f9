package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pvcflow/internal/core/apperror"
	"pvcflow/internal/core/id"
	"pvcflow/internal/domain/export"
	"pvcflow/internal/domain/reports"
	"pvcflow/internal/domain/transactions"
	"pvcflow/internal/infrastructure/http/v1/dto"
	"pvcflow/internal/infrastructure/pdf"
)

// ReportsHandler handles HTTP requests for production reports.
type ReportsHandler struct {
	*BaseHandler
	service   *reports.Service
	txService *transactions.Service
	renderer  pdf.Renderer
	inflight  *export.InflightTracker
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(
	base *BaseHandler,
	service *reports.Service,
	txService *transactions.Service,
	renderer pdf.Renderer,
	inflight *export.InflightTracker,
) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
		txService:   txService,
		renderer:    renderer,
		inflight:    inflight,
	}
}

// Prefill handles GET /reports/by-stock/:stockId
// Returns the existing report, or a draft with a suggested batch number
// when none exists yet. Missing-report is not an error here: the form
// opens in create mode.
func (h *ReportsHandler) Prefill(c *gin.Context) {
	stockID, err := id.Parse(c.Param("stockId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid stock transaction id"))
		return
	}

	report, exists, err := h.service.Prefill(c.Request.Context(), stockID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.PrefillResponse{
		Report: dto.FromReport(report),
		Exists: exists,
	})
}

// Save handles POST /reports/by-stock/:stockId
// Creates or updates the report for the transaction from the raw form
// payload. Unlike Prefill, every failure surfaces.
func (h *ReportsHandler) Save(c *gin.Context) {
	stockID, err := id.Parse(c.Param("stockId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid stock transaction id"))
		return
	}

	var payload dto.SaveReportRequest
	if !h.BindJSON(c, &payload) {
		return
	}

	report, err := h.service.Save(c.Request.Context(), stockID, payload)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromReport(report))
}

// GetByID handles GET /reports/:id
func (h *ReportsHandler) GetByID(c *gin.Context) {
	reportID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid report id"))
		return
	}

	report, err := h.service.GetByID(c.Request.Context(), reportID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromReport(report))
}

// List handles GET /reports
func (h *ReportsHandler) List(c *gin.Context) {
	var req dto.ReportFilterRequest
	if !h.BindQuery(c, &req) {
		return
	}

	result, err := h.service.List(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, dto.FromReports(result.Items)))
}

// Delete handles DELETE /reports/:id
func (h *ReportsHandler) Delete(c *gin.Context) {
	reportID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid report id"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), reportID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Certificate handles GET /reports/:id/certificate
// Renders the certificate of analysis as a PDF. At most one export per
// report runs at a time; a second request gets 409 while the first is
// still rendering.
func (h *ReportsHandler) Certificate(c *gin.Context) {
	reportID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid report id"))
		return
	}

	if h.renderer == nil {
		h.Error(c, apperror.NewExport("PDF rendering is not configured", nil))
		return
	}

	ctx := c.Request.Context()

	report, err := h.service.GetByID(ctx, reportID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.inflight.Begin(reportID.String()); err != nil {
		h.Error(c, err)
		return
	}
	defer h.inflight.End(reportID.String())

	// The source transaction enriches the batch table; its absence does
	// not block the export.
	tx, err := h.txService.GetByID(ctx, report.StockTransactionID)
	if err != nil {
		if !apperror.IsNotFound(err) {
			h.Error(c, err)
			return
		}
		tx = nil
	}

	html, err := export.CertificateHTML(report, tx)
	if err != nil {
		h.Error(c, apperror.NewExport("Failed to build certificate", err))
		return
	}

	pdfBytes, err := h.renderer.RenderHTML(ctx, html)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.CertificateFilename(report)))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
