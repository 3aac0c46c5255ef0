package repository

import (
	"context"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
)

// IUser is the session provider: identity plus the authoritative point
// balance. Only this store may mutate the balance.
type IUser interface {
	GetById(ctx context.Context, id int) (model.User, error)
	GetByUserName(ctx context.Context, userName string) (model.User, error)
	CreateUser(ctx context.Context, user model.User) error

	// GetBalance reads the live balance for a user.
	GetBalance(ctx context.Context, userName string) (int, error)
	// SetBalance is the explicit balance override (applies a transport-level
	// new_balance returned by the analysis service).
	SetBalance(ctx context.Context, userName string, balance int) error
}
