package core

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

// SyncIDKey is the context key for the ID (uuid.UUID) of the running sync pass.
const SyncIDKey contextKey = "SyncID"

// ContextWithSyncID returns a new context carrying the sync pass ID.
func ContextWithSyncID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, SyncIDKey, id)
}

// SyncIDFromContext returns the sync pass ID from the context if it exists.
func SyncIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(SyncIDKey).(uuid.UUID)
	return id, ok
}
