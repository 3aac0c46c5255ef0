package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/repository"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/logger"
)

// ArchiveRepository stores saved reports in MongoDB.
type ArchiveRepository struct {
	col *mongo.Collection
}

func NewArchiveRepository(client *mongo.Client, dbName string) repository.IArchive {
	return &ArchiveRepository{col: client.Database(dbName).Collection("archived_reports")}
}

// CountByCategory reads the live per-category count. The quota guard calls
// this on every save attempt; the result is never cached.
func (r *ArchiveRepository) CountByCategory(ctx context.Context, userID string, category model.ArchiveCategory) (int, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"user_id": userID, "category": category})
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("mongo: count archived reports failed")
		return 0, err
	}
	return int(n), nil
}

func (r *ArchiveRepository) Save(ctx context.Context, rec *model.ArchivedReport) (string, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	doc := bson.M{
		"user_id":    rec.UserID,
		"category":   rec.Category,
		"title":      rec.Title,
		"source_url": rec.SourceURL,
		"report":     rec.Report,
		"created_at": rec.CreatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("mongo: save archived report failed")
		return "", err
	}
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	rec.ID = oid.Hex()
	return rec.ID, nil
}

func (r *ArchiveRepository) GetById(ctx context.Context, id string) (*model.ArchivedReport, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid archive id %q: %w", id, err)
	}
	var doc archiveDoc
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *ArchiveRepository) ListForUser(ctx context.Context, userID string) ([]*model.ArchivedReport, error) {
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var list []*model.ArchivedReport
	for cur.Next(ctx) {
		var doc archiveDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		list = append(list, doc.toModel())
	}
	return list, cur.Err()
}

type archiveDoc struct {
	ID        bson.ObjectID         `bson:"_id"`
	UserID    string                `bson:"user_id"`
	Category  model.ArchiveCategory `bson:"category"`
	Title     string                `bson:"title"`
	SourceURL string                `bson:"source_url"`
	Report    *model.Report         `bson:"report"`
	CreatedAt time.Time             `bson:"created_at"`
}

func (d *archiveDoc) toModel() *model.ArchivedReport {
	return &model.ArchivedReport{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Category:  d.Category,
		Title:     d.Title,
		SourceURL: d.SourceURL,
		Report:    d.Report,
		CreatedAt: d.CreatedAt,
	}
}
