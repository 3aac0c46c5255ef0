package repository

import (
	"context"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
)

// ILedger owns the append-only transaction store. The feed processor only
// reads; rows are immutable once persisted.
type ILedger interface {
	ListForUser(ctx context.Context, userID string) ([]*model.Transaction, error)
	Append(ctx context.Context, tx *model.Transaction) (int64, error)
}
