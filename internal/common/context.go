package common

import (
	"context"

	"github.com/google/uuid"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID  contextKey = "request_id"
	ContextKeyScheduleID contextKey = "schedule_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// EnsureRequestID returns ctx carrying a request ID, generating one if absent.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id := RequestIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return WithRequestID(ctx, id), id
}

// WithScheduleID adds a schedule ID to the context
func WithScheduleID(ctx context.Context, scheduleID string) context.Context {
	return context.WithValue(ctx, ContextKeyScheduleID, scheduleID)
}

// ScheduleIDFromContext extracts the schedule ID from context
func ScheduleIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyScheduleID).(string); ok {
		return id
	}
	return ""
}
