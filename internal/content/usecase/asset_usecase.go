package usecase

import (
	"context"
	"errors"
	"io"
	"strings"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/content/domain/repository"
	"showcase-cms/internal/content/domain/service"
	apperrors "showcase-cms/internal/shared/errors"
	"showcase-cms/internal/shared/eventbus"
	"showcase-cms/internal/shared/logger"
)

// AssetFilesPath is where uploaded assets are served from.
const AssetFilesPath = "/api/v1/assets/files/"

// AssetUsecase resolves asset paths and stores uploads.
type AssetUsecase interface {
	Resolve(kind, name string) (string, error)
	Upload(ctx context.Context, req UploadAssetRequest, r io.Reader) (*model.Asset, error)
	Open(ctx context.Context, id string) (*model.Asset, io.ReadCloser, error)
}

type assetUsecaseImpl struct {
	storage  repository.AssetStorage
	resolver *service.AssetResolver
	events   eventbus.Publisher
	log      logger.Logger
	baseURL  string
	maxBytes int64
}

// AssetDeps groups the collaborators of the asset usecase.
type AssetDeps struct {
	Storage  repository.AssetStorage
	Resolver *service.AssetResolver
	Events   eventbus.Publisher
	Logger   logger.Logger
	// PublicBaseURL prefixes returned URLs; empty keeps them server-relative.
	PublicBaseURL string
	MaxBytes      int64
}

func NewAssetUsecase(deps AssetDeps) AssetUsecase {
	if deps.Resolver == nil {
		deps.Resolver = service.NewAssetResolver(nil, nil)
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	return &assetUsecaseImpl{
		storage:  deps.Storage,
		resolver: deps.Resolver,
		events:   deps.Events,
		log:      deps.Logger.WithComponent("asset_usecase"),
		baseURL:  strings.TrimRight(deps.PublicBaseURL, "/"),
		maxBytes: deps.MaxBytes,
	}
}

func (uc *assetUsecaseImpl) Resolve(kind, name string) (string, error) {
	k, err := model.ParseKind(kind)
	if err != nil {
		return "", err
	}
	return uc.resolver.Resolve(k, name), nil
}

func (uc *assetUsecaseImpl) Upload(ctx context.Context, req UploadAssetRequest, r io.Reader) (*model.Asset, error) {
	ve := apperrors.NewValidationErrors()
	if strings.TrimSpace(req.FileName) == "" {
		ve.Add("file", "file name is required", req.FileName)
	}
	if !allowedContentType(req.ContentType) {
		ve.Add("file", "only image and PDF uploads are accepted", req.ContentType)
	}
	if uc.maxBytes > 0 && req.Size > uc.maxBytes {
		ve.Add("file", "file is too large", req.Size)
	}
	if ve.HasErrors() {
		return nil, ve
	}

	if uc.maxBytes > 0 {
		r = io.LimitReader(r, uc.maxBytes)
	}
	asset, err := uc.storage.Upload(ctx, req.FileName, req.ContentType, r)
	if err != nil {
		return nil, err
	}
	asset.URL = uc.baseURL + AssetFilesPath + asset.ID
	uc.log.WithContext(ctx).WithFields(map[string]interface{}{
		"asset_id": asset.ID,
		"size":     asset.Size,
	}).Info("Asset uploaded")
	if uc.events != nil {
		uc.events.PublishAndForget(ctx, eventbus.NewBasicEventWithSource(eventbus.EventTypeAssetUploaded, asset, eventSource))
	}
	return asset, nil
}

func (uc *assetUsecaseImpl) Open(ctx context.Context, id string) (*model.Asset, io.ReadCloser, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil, assetNotFound(id)
	}
	asset, body, err := uc.storage.Open(ctx, id)
	if errors.Is(err, model.ErrAssetNotFound) {
		return nil, nil, assetNotFound(id)
	}
	if err != nil {
		return nil, nil, err
	}
	asset.URL = uc.baseURL + AssetFilesPath + asset.ID
	return asset, body, nil
}

func assetNotFound(id string) error {
	return apperrors.NewNotFoundError("asset").
		WithCause(model.ErrAssetNotFound).
		WithComponent("asset_usecase").
		WithDetail("asset_id", id)
}

func allowedContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "image/") || ct == "application/pdf"
}
