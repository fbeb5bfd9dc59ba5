package session

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the authenticated user of the current request.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

func (i Identity) Owns(owner uuid.UUID) bool {
	return i.UserID != uuid.Nil && i.UserID == owner
}

type ctxKey struct{}

func IntoContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
