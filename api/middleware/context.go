package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/lbricard/stockdesk-backend/internal/permissions"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxGate   contextKey = "permission_gate"
)

func UserIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

// GateFromContext returns the caller's permission gate. A missing gate
// denies everything.
func GateFromContext(ctx context.Context) permissions.Gate {
	if ctx != nil {
		if v, ok := ctx.Value(ctxGate).(permissions.Gate); ok && v != nil {
			return v
		}
	}
	return permissions.NewStaticGate()
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithGate injects the permission gate into the context.
func WithGate(ctx context.Context, gate permissions.Gate) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxGate, gate)
}
