package repository

import (
	"context"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
)

// IArchive is the persistent store of saved reports.
type IArchive interface {
	CountByCategory(ctx context.Context, userID string, category model.ArchiveCategory) (int, error)
	Save(ctx context.Context, rec *model.ArchivedReport) (string, error)
	GetById(ctx context.Context, id string) (*model.ArchivedReport, error)
	ListForUser(ctx context.Context, userID string) ([]*model.ArchivedReport, error)
}
