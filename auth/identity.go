package auth

import (
	"context"

	"todolist/models"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	User    *models.User
	Session *models.Session
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.User == nil {
		return Identity{}, false
	}
	return id, true
}

func CurrentUser(ctx context.Context) (*models.User, bool) {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return nil, false
	}
	return id.User, true
}

func RequireUser(ctx context.Context) (*models.User, error) {
	user, ok := CurrentUser(ctx)
	if !ok {
		return nil, models.ErrAuthenticationRequired
	}
	return user, nil
}

// AuthorizeOwner is the only per-task access rule: the task must belong to
// the user.
func AuthorizeOwner(task *models.Task, user *models.User) error {
	if task == nil || user == nil || !task.OwnedBy(user.ID) {
		return models.ErrForbidden
	}
	return nil
}
