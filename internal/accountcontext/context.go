package accountcontext

import "context"

type contextKey string

const accountIDKey contextKey = "account_id"

// WithAccountID stores the authenticated account id on the context.
func WithAccountID(ctx context.Context, accountID int64) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

// AccountIDFromContext returns the authenticated account id, if any.
func AccountIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(accountIDKey).(int64)
	return id, ok
}
