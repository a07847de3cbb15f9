// Package dto provides data transfer objects for HTTP API.
package dto

import (
	"pvcflow/internal/domain"
)

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// NewListResponse builds the envelope from a domain list result.
func NewListResponse[T any](result domain.ListResult[T], items any) ListResponse {
	return ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	}
}

// --- Common Responses ---

// IDResponse contains entity ID.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse for simple success messages.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
