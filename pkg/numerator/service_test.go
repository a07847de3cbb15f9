package numerator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

type mockQuerier struct {
	mu           sync.Mutex
	currentValue int64
	calls        int
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	var increment int64 = 1
	if len(args) == 2 {
		if val, ok := args[1].(int64); ok {
			increment = val
		}
	}

	m.currentValue += increment
	return &mockRow{val: m.currentValue}
}

func TestGetNextNumber_Strict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("INV")
	now := time.Now()

	num, err := svc.GetNextNumber(ctx, cfg, nil, now)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("INV-%d-00001", now.Year()), num)

	num, err = svc.GetNextNumber(ctx, cfg, nil, now)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("INV-%d-00002", now.Year()), num)

	// Strict hits the DB on every call.
	assert.Equal(t, 2, q.calls)
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("TX")
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}
	now := time.Now()

	for i := 1; i <= 10; i++ {
		num, err := svc.GetNextNumber(ctx, cfg, opts, now)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("TX-%d-%05d", now.Year(), i), num)
	}

	// One range allocation for ten numbers.
	assert.Equal(t, 1, q.calls)

	// Eleventh number triggers a second allocation.
	num, err := svc.GetNextNumber(ctx, cfg, opts, now)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("TX-%d-%05d", now.Year(), 11), num)
	assert.Equal(t, 2, q.calls)
}

func TestFormatNumber_NoYear(t *testing.T) {
	svc := New(&mockQuerier{})
	cfg := Config{Prefix: "BATCH", IncludeYear: false, PadWidth: 3, ResetPeriod: "never"}

	got := svc.formatNumber(cfg, time.Now(), 42)
	assert.Equal(t, "BATCH-042", got)
}

func TestBuildKey_ResetPeriods(t *testing.T) {
	svc := New(&mockQuerier{})
	period := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "INV_2026", svc.buildKey(Config{Prefix: "INV", ResetPeriod: "year"}, period))
	assert.Equal(t, "INV_2026_03", svc.buildKey(Config{Prefix: "INV", ResetPeriod: "month"}, period))
	assert.Equal(t, "INV", svc.buildKey(Config{Prefix: "INV", ResetPeriod: "never"}, period))
}
