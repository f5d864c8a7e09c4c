package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	SessionIDKey contextKey = "session_id"
	RequestIDKey contextKey = "request_id"
)

// NewID returns a random UUID string used for session and request ids.
func NewID() string {
	return uuid.New().String()
}

// ContextWithSessionID tags ctx with the id of the interactive session.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionIDKey, id)
}

func SessionIDFromContext(ctx context.Context) string {
	return stringValue(ctx, SessionIDKey)
}

// ContextWithRequestID tags ctx with the id of a diagnostics HTTP request.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	id, ok := ctx.Value(key).(string)
	if !ok {
		return ""
	}
	return id
}
