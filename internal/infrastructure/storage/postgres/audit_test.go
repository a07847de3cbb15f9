package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffChangedFields(t *testing.T) {
	oldState := map[string]any{
		"product_name": "PVC Resin K67",
		"quantity":     100.5,
		"unit":         "kg",
	}
	newState := map[string]any{
		"product_name": "PVC Resin K67",
		"quantity":     120.0,
		"unit":         "kg",
	}

	changes := Diff(oldState, newState)

	assert.Len(t, changes, 1)
	assert.Equal(t, map[string]any{"old": 100.5, "new": 120.0}, changes["quantity"])
}

func TestDiffAddedAndRemovedFields(t *testing.T) {
	oldState := map[string]any{
		"notes": "first shift",
	}
	newState := map[string]any{
		"invoice_no": "INV-2026-00012",
	}

	changes := Diff(oldState, newState)

	assert.Equal(t, map[string]any{"old": "first shift", "new": nil}, changes["notes"])
	assert.Equal(t, map[string]any{"old": nil, "new": "INV-2026-00012"}, changes["invoice_no"])
}

func TestDiffIdenticalStates(t *testing.T) {
	state := map[string]any{
		"supervisor": "J. Okafor",
		"operator":   "M. Reyes",
	}

	changes := Diff(state, state)

	assert.Empty(t, changes)
}
