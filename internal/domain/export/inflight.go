package export

import (
	"sync"

	"pvcflow/internal/core/apperror"
)

// InflightTracker prevents concurrent exports for the same record.
// PDF rendering is slow enough that a double-clicked download button
// would otherwise fire twice.
type InflightTracker struct {
	mu     sync.Mutex
	active map[string]bool
}

// NewInflightTracker creates an empty tracker.
func NewInflightTracker() *InflightTracker {
	return &InflightTracker{active: make(map[string]bool)}
}

// Begin marks an export as in flight. Returns an in-progress error if one
// is already running for the same record.
func (t *InflightTracker) Begin(recordID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active[recordID] {
		return apperror.NewExportInProgress(recordID)
	}
	t.active[recordID] = true
	return nil
}

// End clears the in-flight mark. Safe to call for unknown records.
func (t *InflightTracker) End(recordID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, recordID)
}
