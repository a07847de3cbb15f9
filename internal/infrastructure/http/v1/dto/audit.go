package dto

import (
	"encoding/json"
	"time"

	"pvcflow/internal/infrastructure/storage/postgres"
)

// AuditEntryResponse is one row of an entity change history.
type AuditEntryResponse struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	UserID    string          `json:"userId,omitempty"`
	UserName  string          `json:"userName,omitempty"`
	Changes   json.RawMessage `json:"changes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// FromAuditEntries converts audit entries to response DTOs.
// Entries arrive decompressed, so Changes is always plain JSON here.
func FromAuditEntries(entries []postgres.AuditEntry) []AuditEntryResponse {
	result := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, AuditEntryResponse{
			ID:        e.ID.String(),
			Action:    string(e.Action),
			UserID:    e.UserID,
			UserName:  e.UserName,
			Changes:   e.Changes,
			CreatedAt: e.CreatedAt,
		})
	}
	return result
}
