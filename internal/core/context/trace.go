package context

import (
	"context"

	"github.com/google/uuid"
)

// TraceContext carries the per-request identifiers that the logger and
// error responses attach to their output. The trace ID follows a request
// across service boundaries via X-Trace-ID; the request ID names one HTTP
// exchange.
type TraceContext struct {
	TraceID   string
	RequestID string
}

type traceContextKey struct{}

// WithTrace stores the trace identifiers on the context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns the stored trace identifiers, or nil outside a request.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetTraceID returns the trace ID from the context. Background jobs that
// run without a request still get a usable ID.
func GetTraceID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.TraceID
	}
	return uuid.New().String()
}

// GetRequestID returns the request ID from the context, empty when the
// call did not originate from an HTTP request.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// NewTraceContext generates fresh identifiers for work that starts
// outside an HTTP request, such as scheduled jobs.
func NewTraceContext() *TraceContext {
	return &TraceContext{
		TraceID:   uuid.New().String(),
		RequestID: uuid.New().String(),
	}
}
