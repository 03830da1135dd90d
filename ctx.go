package identity

import (
	"context"

	"github.com/goliatone/go-router"
)

var accountCtxKey = &contextKey{"account"}

type contextKey struct {
	name string
}

// WithContext sets the Account in the given context
func WithContext(r context.Context, account *Account) context.Context {
	return context.WithValue(r, accountCtxKey, account)
}

// FromContext finds the account from the context.
func FromContext(ctx context.Context) (*Account, bool) {
	if ctx == nil {
		return nil, false
	}
	raw, ok := ctx.Value(accountCtxKey).(*Account)
	return raw, ok && raw != nil
}

// AccountFromRouter returns the account the guard middleware stored under
// key, falling back to the request context.
func AccountFromRouter(ctx router.Context, key string) (*Account, bool) {
	if key == "" {
		key = DefaultContextKey
	}
	if raw := router.GetContextValue[*Account](ctx, key, nil); raw != nil {
		return raw, true
	}
	return FromContext(ctx.Context())
}
