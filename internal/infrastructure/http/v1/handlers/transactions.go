package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pvcflow/internal/core/apperror"
	"pvcflow/internal/core/id"
	"pvcflow/internal/domain/export"
	"pvcflow/internal/domain/transactions"
	"pvcflow/internal/infrastructure/http/v1/dto"
	"pvcflow/pkg/logger"
)

// exportAllKey guards the whole-table workbook export; individual
// certificate exports are keyed by report ID.
const exportAllKey = "transactions-export"

// TransactionsHandler handles HTTP requests for production transactions.
type TransactionsHandler struct {
	*BaseHandler
	service  *transactions.Service
	inflight *export.InflightTracker
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(base *BaseHandler, service *transactions.Service, inflight *export.InflightTracker) *TransactionsHandler {
	return &TransactionsHandler{
		BaseHandler: base,
		service:     service,
		inflight:    inflight,
	}
}

// Create handles POST /transactions
func (h *TransactionsHandler) Create(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc.ID.String())
}

// GetByID handles GET /transactions/:id
func (h *TransactionsHandler) GetByID(c *gin.Context) {
	txID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid transaction id"))
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), txID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromTransaction(doc))
}

// Update handles PUT /transactions/:id
func (h *TransactionsHandler) Update(c *gin.Context) {
	txID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid transaction id"))
		return
	}

	var req dto.UpdateTransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	doc, err := h.service.GetByID(ctx, txID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(doc)
	if err := h.service.Update(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromTransaction(doc))
}

// Delete handles DELETE /transactions/:id
func (h *TransactionsHandler) Delete(c *gin.Context) {
	txID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid transaction id"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), txID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// List handles GET /transactions
func (h *TransactionsHandler) List(c *gin.Context) {
	var req dto.TransactionFilterRequest
	if !h.BindQuery(c, &req) {
		return
	}

	result, err := h.service.List(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, dto.FromTransactions(result.Items)))
}

// Export handles GET /transactions/export
// Streams the full transaction list as an xlsx workbook.
func (h *TransactionsHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.inflight.Begin(exportAllKey); err != nil {
		h.Error(c, err)
		return
	}
	defer h.inflight.End(exportAllKey)

	var req dto.TransactionFilterRequest
	if !h.BindQuery(c, &req) {
		return
	}

	// Export ignores pagination: the workbook always carries the full
	// filtered set.
	items, err := h.service.ListAll(ctx, req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	workbook, err := export.TransactionWorkbook(items)
	if err != nil {
		h.Error(c, apperror.NewExport("Failed to build transaction workbook", err))
		return
	}
	defer func() {
		if err := workbook.Close(); err != nil {
			logger.Warn(ctx, "workbook close failed", "error", err)
		}
	}()

	filename := fmt.Sprintf("Production_Transactions_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	if err := workbook.Write(c.Writer); err != nil {
		// Headers already sent, response truncated; log for diagnostics.
		logger.Error(ctx, "workbook stream failed", "error", err)
	}
}
