package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/repository"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/logger"
)

// LedgerRepositoryMSSQL is the SQL Server implementation of ILedger.
type LedgerRepositoryMSSQL struct{ db *sql.DB }

func NewLedgerRepositoryMSSQL(db *sql.DB) repository.ILedger { return &LedgerRepositoryMSSQL{db} }

func (r *LedgerRepositoryMSSQL) ListForUser(ctx context.Context, userID string) ([]*model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ledgerColumns+` FROM dbo.[point_transactions] WHERE user_id = @p1 ORDER BY created_at DESC`, userID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("mssql: list transactions failed")
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

func (r *LedgerRepositoryMSSQL) Append(ctx context.Context, tx *model.Transaction) (int64, error) {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	md := tx.Metadata
	if md == nil {
		md = &model.TransactionMetadata{}
	}
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO dbo.[point_transactions] (user_id, type, amount, description, category, video_id, video_title, video_author, video_duration, thumbnail_url, created_at)
		 OUTPUT INSERTED.id
		 VALUES (@p1,@p2,@p3,@p4,@p5,@p6,@p7,@p8,@p9,@p10,@p11)`,
		tx.UserID, string(tx.Type), tx.Amount, tx.Description, tx.Category,
		md.VideoID, md.VideoTitle, md.VideoAuthor, md.VideoDuration, md.ThumbnailURL,
		tx.CreatedAt,
	).Scan(&id)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("mssql: append transaction failed")
		return 0, err
	}
	tx.ID = id
	return id, nil
}
