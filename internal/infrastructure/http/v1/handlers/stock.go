package handlers

import (
	"github.com/gin-gonic/gin"

	"pvcflow/internal/domain/transactions"
	"pvcflow/internal/infrastructure/http/v1/dto"
)

// StockHandler serves aggregated stock balances.
type StockHandler struct {
	*BaseHandler
	service *transactions.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *transactions.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Balance handles GET /stock/balance
func (h *StockHandler) Balance(c *gin.Context) {
	balances, err := h.service.Balances(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": dto.FromStockBalances(balances)})
}
