package auth

import (
	"context"

	"github.com/google/uuid"
)

type sessionKey struct{}

// WithActiveUser returns a context carrying the active user ID.
func WithActiveUser(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, sessionKey{}, userID)
}

// ContextSessionProvider resolves the active user from the request
// context populated by the auth middleware.
type ContextSessionProvider struct{}

// NewContextSessionProvider creates a ContextSessionProvider.
func NewContextSessionProvider() *ContextSessionProvider {
	return &ContextSessionProvider{}
}

// ActiveUserID returns the user ID stored in the context, if any.
func (p *ContextSessionProvider) ActiveUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(sessionKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, ok
}
