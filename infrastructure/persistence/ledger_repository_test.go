package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
)

var ledgerRows = []string{"id", "user_id", "type", "amount", "description", "category", "video_id", "video_title", "video_author", "video_duration", "thumbnail_url", "created_at"}

func TestLedgerRepository_ListForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLedgerRepository(db)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, type, amount, description, category, video_id, video_title, video_author, video_duration, thumbnail_url, created_at FROM point_transactions WHERE user_id = $1 ORDER BY created_at DESC`)).
		WithArgs("jhoseto").
		WillReturnRows(sqlmock.NewRows(ledgerRows).
			AddRow(2, "jhoseto", "deduction", -7, "Видео одит", "video", "dQw4w9WgXcQ", "Изборите 2026", "Новините", "10:00", "https://i.ytimg.com/x.jpg", created.Add(time.Hour)).
			AddRow(1, "jhoseto", "deduction", -5, "Линк одит: https://news.bg/a", "link", "", "", "", "", "", created))

	list, err := repo.ListForUser(context.Background(), "jhoseto")
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, int64(2), list[0].ID)
	assert.Equal(t, model.TxDeduction, list[0].Type)
	assert.Equal(t, "video", list[0].Category)
	require.NotNil(t, list[0].Metadata)
	assert.Equal(t, "dQw4w9WgXcQ", list[0].Metadata.VideoID)
	assert.Equal(t, "Новините", list[0].Metadata.VideoAuthor)

	// A row without video columns carries no metadata struct.
	assert.Nil(t, list[1].Metadata)
	assert.Equal(t, "link", list[1].Category)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_ListForUser_NullColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLedgerRepository(db)

	mock.ExpectQuery("SELECT .+ FROM point_transactions").
		WithArgs("jhoseto").
		WillReturnRows(sqlmock.NewRows(ledgerRows).
			AddRow(1, "jhoseto", "purchase", 100, "Покупка на точки", nil, nil, nil, nil, nil, nil, time.Now()))

	list, err := repo.ListForUser(context.Background(), "jhoseto")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Category)
	assert.Nil(t, list[0].Metadata)
}

func TestLedgerRepository_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLedgerRepository(db)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tx := &model.Transaction{
		UserID:      "jhoseto",
		Type:        model.TxDeduction,
		Amount:      -7,
		Description: "Видео одит",
		Category:    "video",
		CreatedAt:   created,
		Metadata: &model.TransactionMetadata{
			VideoID:       "dQw4w9WgXcQ",
			VideoTitle:    "Изборите 2026",
			VideoAuthor:   "Новините",
			VideoDuration: "10:00",
			ThumbnailURL:  "https://i.ytimg.com/x.jpg",
		},
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO point_transactions`)).
		WithArgs("jhoseto", "deduction", -7, "Видео одит", "video",
			"dQw4w9WgXcQ", "Изборите 2026", "Новините", "10:00", "https://i.ytimg.com/x.jpg", created).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	id, err := repo.Append(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, int64(42), tx.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_Append_WithoutMetadata(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLedgerRepository(db)

	created := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	tx := &model.Transaction{
		UserID:      "jhoseto",
		Type:        model.TxDeduction,
		Amount:      -5,
		Description: "Линк одит: https://news.bg/a",
		Category:    "link",
		CreatedAt:   created,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO point_transactions`)).
		WithArgs("jhoseto", "deduction", -5, "Линк одит: https://news.bg/a", "link", "", "", "", "", "", created).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(43))

	id, err := repo.Append(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, int64(43), id)
}
