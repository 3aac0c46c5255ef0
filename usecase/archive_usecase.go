package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/repository"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/logger"
)

// IArchiveUsecase gates and performs report persistence.
type IArchiveUsecase interface {
	CanArchive(ctx context.Context, userID string, category model.ArchiveCategory) (bool, error)
	Save(ctx context.Context, rec *model.ArchivedReport) (string, error)
	GetById(ctx context.Context, id string) (*model.ArchivedReport, error)
	ListForUser(ctx context.Context, userID string) ([]*model.ArchivedReport, error)
}

var errArchiveUnavailable = errors.New("archive store not available")

type archiveUsecase struct {
	archiveRepo repository.IArchive
}

func NewArchiveUsecase(archiveRepo repository.IArchive) IArchiveUsecase {
	return &archiveUsecase{archiveRepo: archiveRepo}
}

// CanArchive compares the live per-category count against the fixed cap.
// The count is re-queried on every save attempt; a burst of saves must not
// exceed the cap through a cached value.
func (u *archiveUsecase) CanArchive(ctx context.Context, userID string, category model.ArchiveCategory) (bool, error) {
	if u.archiveRepo == nil {
		return false, errArchiveUnavailable
	}
	cap, ok := model.ArchiveCaps[category]
	if !ok {
		return false, fmt.Errorf("unknown archive category: %s", category)
	}
	count, err := u.archiveRepo.CountByCategory(ctx, userID, category)
	if err != nil {
		return false, fmt.Errorf("failed to count archived reports: %w", err)
	}
	return count < cap, nil
}

// Save runs the quota guard and persists on success. Refusal is local and
// non-fatal; no store mutation occurs.
func (u *archiveUsecase) Save(ctx context.Context, rec *model.ArchivedReport) (string, error) {
	ok, err := u.CanArchive(ctx, rec.UserID, rec.Category)
	if err != nil {
		return "", err
	}
	if !ok {
		logger.GetLogger().WithFields(map[string]interface{}{
			"user_id":  rec.UserID,
			"category": rec.Category,
		}).Info("archive refused: category limit reached")
		return "", model.ErrArchiveQuotaMet
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return u.archiveRepo.Save(ctx, rec)
}

func (u *archiveUsecase) GetById(ctx context.Context, id string) (*model.ArchivedReport, error) {
	if u.archiveRepo == nil {
		return nil, errArchiveUnavailable
	}
	return u.archiveRepo.GetById(ctx, id)
}

func (u *archiveUsecase) ListForUser(ctx context.Context, userID string) ([]*model.ArchivedReport, error) {
	if u.archiveRepo == nil {
		return nil, errArchiveUnavailable
	}
	return u.archiveRepo.ListForUser(ctx, userID)
}
