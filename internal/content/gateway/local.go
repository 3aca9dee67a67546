package gateway

import (
	"context"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/content/usecase"
)

// LocalGateway calls the content usecase in process.
type LocalGateway struct {
	content usecase.ContentUsecase
}

func NewLocalGateway(content usecase.ContentUsecase) *LocalGateway {
	return &LocalGateway{content: content}
}

func (g *LocalGateway) Fetch(ctx context.Context, parentID string, key model.CollectionKey) (*model.CollectionSnapshot, error) {
	snap, err := g.content.GetCollection(ctx, parentID, string(key))
	if err != nil {
		return nil, &FetchFailure{ParentID: parentID, Key: key, Err: err}
	}
	return snap, nil
}

func (g *LocalGateway) Save(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	snap, err := g.content.ReplaceCollection(ctx, usecase.ReplaceCollectionRequest{
		ParentID:        req.ParentID,
		Key:             string(req.Key),
		Items:           req.Items,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		return nil, &SaveFailure{ParentID: req.ParentID, Key: req.Key, Err: err}
	}
	return &SaveResult{Version: snap.Version}, nil
}
