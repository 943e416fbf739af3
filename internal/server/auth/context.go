package auth

import "context"

type ctxKey struct{}

// WithAccountID stores the verified account id in ctx.
func WithAccountID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// AccountIDFromContext returns the id stored by WithAccountID.
func AccountIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKey{}).(int64)
	return id, ok && id > 0
}
