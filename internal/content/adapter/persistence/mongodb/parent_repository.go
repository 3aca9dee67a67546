package mongodb

import (
	"context"
	"errors"
	"time"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/content/domain/repository"
	apperrors "showcase-cms/internal/shared/errors"
	"showcase-cms/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var _ repository.ParentRepository = (*ParentRepository)(nil)

// ParentRepository stores ParentDocuments, one Mongo document each, collections embedded.
type ParentRepository struct {
	collection CollectionInterface
	logger     logger.Logger
	now        func() time.Time
}

// NewParentRepository creates a repository over db.<collectionName>.
func NewParentRepository(db *mongo.Database, collectionName string, log logger.Logger) *ParentRepository {
	return NewParentRepositoryWithCollection(NewMongoCollectionAdapter(db.Collection(collectionName)), log)
}

// NewParentRepositoryWithCollection is used by tests to inject a fake collection.
func NewParentRepositoryWithCollection(col CollectionInterface, log logger.Logger) *ParentRepository {
	return &ParentRepository{collection: col, logger: log, now: time.Now}
}

// EnsureIndexes creates the listing indexes. Safe to call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database, collectionName string) error {
	_, err := db.Collection(collectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "program", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return apperrors.NewInfrastructureError("failed to create parent indexes").WithCause(err).WithComponent("parent_repository")
	}
	return nil
}

func (r *ParentRepository) Create(ctx context.Context, parent *model.ParentDocument) error {
	if _, err := r.collection.InsertOne(ctx, parent); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.ErrParentExists
		}
		r.logger.Error("Failed to insert parent", zap.String("parentId", parent.ID), zap.Error(err))
		return apperrors.NewInfrastructureError("failed to insert parent").WithCause(err).WithComponent("parent_repository")
	}
	return nil
}

func (r *ParentRepository) Get(ctx context.Context, id string) (*model.ParentDocument, error) {
	var doc model.ParentDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrParentNotFound
		}
		return nil, apperrors.NewInfrastructureError("failed to get parent").WithCause(err).WithComponent("parent_repository")
	}
	fillCollections(&doc)
	return &doc, nil
}

func (r *ParentRepository) List(ctx context.Context, filter model.ParentFilter) ([]*model.ParentDocument, error) {
	cur, err := r.collection.Find(ctx, listFilter(filter), options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, apperrors.NewInfrastructureError("failed to list parents").WithCause(err).WithComponent("parent_repository")
	}
	defer cur.Close(ctx)

	docs := make([]*model.ParentDocument, 0)
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperrors.NewInfrastructureError("failed to decode parents").WithCause(err).WithComponent("parent_repository")
	}
	for _, doc := range docs {
		fillCollections(doc)
	}
	return docs, nil
}

func (r *ParentRepository) ReplaceCollection(ctx context.Context, id string, key model.CollectionKey, items []model.CollectionItem, expectedVersion int64, actor string) (int64, error) {
	if items == nil {
		items = []model.CollectionItem{}
	}
	set := bson.M{
		"collections." + string(key): items,
		"updated_at":                 r.now().UTC(),
		"updated_by":                 actor,
	}
	return r.bumpVersion(ctx, id, set, expectedVersion)
}

func (r *ParentRepository) ReplaceDocument(ctx context.Context, parent *model.ParentDocument, expectedVersion int64) (int64, error) {
	fillCollections(parent)
	set := bson.M{
		"kind":        parent.Kind,
		"title":       parent.Title,
		"program":     parent.Program,
		"tags":        parent.Tags,
		"published":   parent.Published,
		"collections": parent.Collections,
		"updated_at":  r.now().UTC(),
		"updated_by":  parent.UpdatedBy,
	}
	return r.bumpVersion(ctx, parent.ID, set, expectedVersion)
}

// bumpVersion applies set and increments version atomically. With expectedVersion > 0 the
// write only matches that version; a miss on an existing document is a conflict.
func (r *ParentRepository) bumpVersion(ctx context.Context, id string, set bson.M, expectedVersion int64) (int64, error) {
	filter := bson.M{"_id": id}
	if expectedVersion > 0 {
		filter["version"] = expectedVersion
	}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"version": 1})

	var out struct {
		Version int64 `bson:"version"`
	}
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if err == nil {
		return out.Version, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		r.logger.Error("Failed to replace parent content", zap.String("parentId", id), zap.Error(err))
		return 0, apperrors.NewInfrastructureError("failed to update parent").WithCause(err).WithComponent("parent_repository")
	}
	if expectedVersion == 0 {
		return 0, model.ErrParentNotFound
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, apperrors.NewInfrastructureError("failed to check parent existence").WithCause(err).WithComponent("parent_repository")
	}
	if count == 0 {
		return 0, model.ErrParentNotFound
	}
	r.logger.Warn("Rejected stale write",
		zap.String("parentId", id),
		zap.Int64("expectedVersion", expectedVersion))
	return 0, model.ErrVersionConflict
}

func listFilter(f model.ParentFilter) bson.M {
	filter := bson.M{}
	if f.Kind != "" {
		filter["kind"] = f.Kind
	}
	if f.Program != "" {
		filter["program"] = f.Program
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}
	if !f.IncludeAll {
		filter["published"] = true
	}
	return filter
}

// fillCollections makes every collection of the parent's kind present, so a missing
// field reads as an empty collection rather than null.
func fillCollections(doc *model.ParentDocument) {
	if doc.Collections == nil {
		doc.Collections = make(map[model.CollectionKey][]model.CollectionItem)
	}
	for _, key := range doc.Kind.CollectionKeys() {
		if doc.Collections[key] == nil {
			doc.Collections[key] = []model.CollectionItem{}
		}
	}
}
