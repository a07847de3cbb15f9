package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"pvcflow/internal/domain/analytics"
	"pvcflow/internal/domain/reports"
	"pvcflow/internal/domain/transactions"
)

// AnalyticsHandler serves the production dashboard statistics.
type AnalyticsHandler struct {
	*BaseHandler
	txService     *transactions.Service
	reportService *reports.Service
	clock         func() time.Time
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(base *BaseHandler, txService *transactions.Service, reportService *reports.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:   base,
		txService:     txService,
		reportService: reportService,
		clock:         time.Now,
	}
}

// ProductionStats handles GET /analytics/production
// Statistics cover manufactured stock only; purchased inventory never
// counts as production.
func (h *AnalyticsHandler) ProductionStats(c *gin.Context) {
	ctx := c.Request.Context()

	source := transactions.StockSourceManufactured
	txs, err := h.txService.ListAll(ctx, transactions.ListFilter{StockSource: &source})
	if err != nil {
		h.Error(c, err)
		return
	}

	reps, err := h.reportService.ListAll(ctx, reports.ListFilter{})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, analytics.Compute(txs, reps, h.clock()))
}

// Search handles GET /analytics/search
// In-memory case-insensitive match on product name or invoice number,
// newest production date first.
func (h *AnalyticsHandler) Search(c *gin.Context) {
	txs, err := h.txService.ListAll(c.Request.Context(), transactions.ListFilter{})
	if err != nil {
		h.Error(c, err)
		return
	}

	matched := analytics.Search(txs, c.Query("q"))
	h.OK(c, gin.H{
		"items":      matched,
		"totalCount": len(matched),
	})
}
