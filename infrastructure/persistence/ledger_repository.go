package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/repository"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/logger"
)

// LedgerRepository is the PostgreSQL transaction store. Rows are append-only.
type LedgerRepository struct{ db *sql.DB }

func NewLedgerRepository(db *sql.DB) repository.ILedger { return &LedgerRepository{db} }

const ledgerColumns = `id, user_id, type, amount, description, category, video_id, video_title, video_author, video_duration, thumbnail_url, created_at`

func (r *LedgerRepository) ListForUser(ctx context.Context, userID string) ([]*model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ledgerColumns+` FROM point_transactions WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("psql: list transactions failed")
		return nil, err
	}
	defer rows.Close()

	var list []*model.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, tx)
	}
	return list, rows.Err()
}

func (r *LedgerRepository) Append(ctx context.Context, tx *model.Transaction) (int64, error) {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	md := tx.Metadata
	if md == nil {
		md = &model.TransactionMetadata{}
	}
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO point_transactions (user_id, type, amount, description, category, video_id, video_title, video_author, video_duration, thumbnail_url, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id`,
		tx.UserID, tx.Type, tx.Amount, tx.Description, tx.Category,
		md.VideoID, md.VideoTitle, md.VideoAuthor, md.VideoDuration, md.ThumbnailURL,
		tx.CreatedAt,
	).Scan(&id)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("psql: append transaction failed")
		return 0, err
	}
	tx.ID = id
	return id, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	tx := &model.Transaction{}
	var category, videoID, videoTitle, videoAuthor, videoDuration, thumbnailURL sql.NullString
	if err := row.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.Description, &category,
		&videoID, &videoTitle, &videoAuthor, &videoDuration, &thumbnailURL, &tx.CreatedAt); err != nil {
		return nil, err
	}
	tx.Category = category.String
	if videoID.String != "" || videoTitle.String != "" || videoAuthor.String != "" {
		tx.Metadata = &model.TransactionMetadata{
			VideoID:       videoID.String,
			VideoTitle:    videoTitle.String,
			VideoAuthor:   videoAuthor.String,
			VideoDuration: videoDuration.String,
			ThumbnailURL:  thumbnailURL.String,
		}
	}
	return tx, nil
}
