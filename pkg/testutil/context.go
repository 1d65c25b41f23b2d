package testutil

import (
	"context"
	"time"

	"brokerage/pkg/requestcontext"
)

// AuthenticatedContext returns a context carrying the values the auth
// middleware would set for a logged-in user.
func AuthenticatedContext(ctx context.Context, username, role string) context.Context {
	ctx = requestcontext.WithUsername(ctx, username)
	ctx = requestcontext.WithRole(ctx, role)
	return ctx
}

// PinnedTimeContext returns a context with a fixed request time so services
// that stamp dates produce deterministic output.
func PinnedTimeContext(ctx context.Context, t time.Time) context.Context {
	return requestcontext.WithTime(ctx, t)
}
