package repository

import (
	"context"
	"io"

	"showcase-cms/internal/content/domain/model"
)

// ParentRepository persists ParentDocuments. Collections are only ever replaced whole.
type ParentRepository interface {
	Create(ctx context.Context, parent *model.ParentDocument) error
	Get(ctx context.Context, id string) (*model.ParentDocument, error)
	List(ctx context.Context, filter model.ParentFilter) ([]*model.ParentDocument, error)

	// ReplaceCollection overwrites one collection and bumps the document version.
	// expectedVersion 0 skips the version check; otherwise a mismatch returns
	// model.ErrVersionConflict. The new version is returned.
	ReplaceCollection(ctx context.Context, id string, key model.CollectionKey, items []model.CollectionItem, expectedVersion int64, actor string) (int64, error)

	// ReplaceDocument overwrites metadata and every collection under the same version rule.
	ReplaceDocument(ctx context.Context, parent *model.ParentDocument, expectedVersion int64) (int64, error)
}

// ChangeHistory records and lists collection replacements.
type ChangeHistory interface {
	Append(ctx context.Context, change *model.CollectionChange) error
	List(ctx context.Context, parentID string, key model.CollectionKey, limit int64) ([]*model.CollectionChange, error)
}

// Notifier hands notification requests to the outbound channel.
type Notifier interface {
	Enqueue(ctx context.Context, req *model.NotificationRequest) error
}

// AssetStorage stores uploaded asset files.
type AssetStorage interface {
	Upload(ctx context.Context, fileName, contentType string, r io.Reader) (*model.Asset, error)
	Open(ctx context.Context, id string) (*model.Asset, io.ReadCloser, error)
}
