package handlers

import (
	"github.com/gin-gonic/gin"

	"pvcflow/internal/core/apperror"
	"pvcflow/internal/core/id"
	"pvcflow/internal/infrastructure/http/v1/dto"
	"pvcflow/internal/infrastructure/storage/postgres"
)

const defaultHistoryLimit = 50

// AuditHandler serves entity change histories from the audit log.
type AuditHandler struct {
	*BaseHandler
	audit *postgres.AuditService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, audit *postgres.AuditService) *AuditHandler {
	return &AuditHandler{
		BaseHandler: base,
		audit:       audit,
	}
}

// TransactionHistory handles GET /transactions/:id/history
func (h *AuditHandler) TransactionHistory(c *gin.Context) {
	h.history(c, postgres.AuditEntityTransaction)
}

// ReportHistory handles GET /reports/:id/history
func (h *AuditHandler) ReportHistory(c *gin.Context) {
	h.history(c, postgres.AuditEntityReport)
}

func (h *AuditHandler) history(c *gin.Context, entityType string) {
	entityID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id"))
		return
	}

	limit := h.ParseIntQuery(c, "limit", defaultHistoryLimit)
	if limit <= 0 || limit > 500 {
		limit = defaultHistoryLimit
	}

	entries, err := h.audit.GetEntityHistory(c.Request.Context(), entityType, entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": dto.FromAuditEntries(entries)})
}
