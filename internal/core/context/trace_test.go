package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTraceRoundTrip(t *testing.T) {
	trace := &TraceContext{TraceID: "t-1", RequestID: "r-1"}
	ctx := WithTrace(context.Background(), trace)

	got := GetTrace(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "t-1", got.TraceID)
	assert.Equal(t, "r-1", got.RequestID)

	assert.Equal(t, "t-1", GetTraceID(ctx))
	assert.Equal(t, "r-1", GetRequestID(ctx))
}

func TestTraceFallbacksOutsideRequest(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, GetTrace(ctx))
	assert.Empty(t, GetRequestID(ctx))
	assert.NotEmpty(t, GetTraceID(ctx), "background work still gets a trace ID")
}

func TestNewTraceContextGeneratesDistinctIDs(t *testing.T) {
	trace := NewTraceContext()
	assert.NotEmpty(t, trace.TraceID)
	assert.NotEmpty(t, trace.RequestID)
	assert.NotEqual(t, trace.TraceID, trace.RequestID)
}
