package auth

import (
	"context"

	"github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/core"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	contextKeyUser   contextKey = "auth_user"
	contextKeyUserID contextKey = "auth_user_id"
	contextKeyAPIKey contextKey = "auth_api_key"
)

// WithUser adds the authenticated user to the context
func WithUser(ctx context.Context, usr *model.User) context.Context {
	return context.WithValue(ctx, contextKeyUser, usr)
}

// UserFromContext retrieves the authenticated user from the context
func UserFromContext(ctx context.Context) (*model.User, bool) {
	usr, ok := ctx.Value(contextKeyUser).(*model.User)
	return usr, ok && usr != nil
}

// WithUserID adds the authenticated user's ID to the context
func WithUserID(ctx context.Context, userID core.ID) context.Context {
	return context.WithValue(ctx, contextKeyUserID, userID)
}

// UserIDFromContext retrieves the authenticated user's ID from the context
func UserIDFromContext(ctx context.Context) (core.ID, bool) {
	id, ok := ctx.Value(contextKeyUserID).(core.ID)
	return id, ok && !id.IsZero()
}

// WithAPIKey adds the authenticated API key to the context
func WithAPIKey(ctx context.Context, key *model.APIKey) context.Context {
	return context.WithValue(ctx, contextKeyAPIKey, key)
}

// APIKeyFromContext retrieves the authenticated API key from the context
func APIKeyFromContext(ctx context.Context) (*model.APIKey, bool) {
	key, ok := ctx.Value(contextKeyAPIKey).(*model.APIKey)
	return key, ok && key != nil
}
