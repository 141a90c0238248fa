package httpapi

import (
	"context"

	"github.com/riskibarqy/f1-draft/internal/domain/user"
)

type contextKey string

const principalContextKey contextKey = "acting_user"

func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func principalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(user.Principal)
	return p, ok
}
