package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/content/domain/repository"
	"showcase-cms/internal/content/domain/service"
	apperrors "showcase-cms/internal/shared/errors"
	"showcase-cms/internal/shared/eventbus"
	"showcase-cms/internal/shared/logger"
	"showcase-cms/internal/shared/utils"

	"github.com/google/uuid"
)

const eventSource = "content"

// ContentUsecase defines the document-store operations over parents and their collections.
type ContentUsecase interface {
	CreateParent(ctx context.Context, req CreateParentRequest) (*model.ParentDocument, error)
	GetParent(ctx context.Context, parentID string) (*model.ParentDocument, error)
	ListParents(ctx context.Context, filter model.ParentFilter) ([]*model.ParentDocument, error)
	ReplaceParent(ctx context.Context, req ReplaceParentRequest) (*model.ParentDocument, error)

	GetCollection(ctx context.Context, parentID, key string) (*model.CollectionSnapshot, error)
	GetReconciledCollection(ctx context.Context, parentID, key string) (*ReconciledCollection, error)
	ReplaceCollection(ctx context.Context, req ReplaceCollectionRequest) (*model.CollectionSnapshot, error)
	History(ctx context.Context, parentID, key string, limit int64) ([]*model.CollectionChange, error)
}

// FallbackSource supplies the static seed of a collection.
type FallbackSource interface {
	Fallback(key model.CollectionKey) []model.CollectionItem
}

type contentUsecaseImpl struct {
	repo       repository.ParentRepository
	history    repository.ChangeHistory
	events     eventbus.Publisher
	seeds      FallbackSource
	reconciler *service.Reconciler
	validator  *service.Validator
	resolver   *service.AssetResolver
	log        logger.Logger
	now        func() time.Time
	maxHistory int64
}

// ContentDeps groups the collaborators of the content usecase.
type ContentDeps struct {
	Repo       repository.ParentRepository
	History    repository.ChangeHistory
	Events     eventbus.Publisher
	Seeds      FallbackSource
	Reconciler *service.Reconciler
	Validator  *service.Validator
	Resolver   *service.AssetResolver
	Logger     logger.Logger
	MaxHistory int64
}

// NewContentUsecase creates a ContentUsecase. History and Events are optional.
func NewContentUsecase(deps ContentDeps) ContentUsecase {
	if deps.Reconciler == nil {
		deps.Reconciler = service.NewReconciler()
	}
	if deps.Validator == nil {
		deps.Validator = service.MustNewValidator(nil)
	}
	if deps.Resolver == nil {
		deps.Resolver = service.NewAssetResolver(nil, nil)
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	if deps.MaxHistory <= 0 {
		deps.MaxHistory = 50
	}
	return &contentUsecaseImpl{
		repo:       deps.Repo,
		history:    deps.History,
		events:     deps.Events,
		seeds:      deps.Seeds,
		reconciler: deps.Reconciler,
		validator:  deps.Validator,
		resolver:   deps.Resolver,
		log:        deps.Logger.WithComponent("content_usecase"),
		now:        time.Now,
		maxHistory: deps.MaxHistory,
	}
}

func (uc *contentUsecaseImpl) CreateParent(ctx context.Context, req CreateParentRequest) (*model.ParentDocument, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if err := model.ValidateParentID(req.ID); err != nil {
		return nil, err
	}
	kind, err := model.ParseParentKind(string(req.Kind))
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationErrors().Add("title", "title is required", req.Title)
	}

	parent := model.NewParentDocument(req.ID, kind, title, uc.now().UTC())
	parent.Program = req.Program
	parent.Tags = req.Tags
	parent.Published = req.Published
	parent.UpdatedBy = utils.Actor(ctx)

	if err := uc.repo.Create(ctx, parent); err != nil {
		return nil, err
	}
	uc.log.WithContext(ctx).WithFields(map[string]interface{}{
		"parent_id": parent.ID,
		"kind":      parent.Kind,
	}).Info("Parent created")
	uc.publish(ctx, eventbus.EventTypeParentCreated, parent)
	return parent, nil
}

func (uc *contentUsecaseImpl) GetParent(ctx context.Context, parentID string) (*model.ParentDocument, error) {
	if err := model.ValidateParentID(parentID); err != nil {
		return nil, err
	}
	return uc.repo.Get(ctx, parentID)
}

func (uc *contentUsecaseImpl) ListParents(ctx context.Context, filter model.ParentFilter) ([]*model.ParentDocument, error) {
	if filter.Kind != "" {
		if _, err := model.ParseParentKind(string(filter.Kind)); err != nil {
			return nil, err
		}
	}
	return uc.repo.List(ctx, filter)
}

func (uc *contentUsecaseImpl) ReplaceParent(ctx context.Context, req ReplaceParentRequest) (*model.ParentDocument, error) {
	parent := req.Parent
	if parent == nil {
		return nil, apperrors.NewValidationErrors().Add("parent", "parent document is required", nil)
	}
	if err := model.ValidateParentID(parent.ID); err != nil {
		return nil, err
	}
	if _, err := model.ParseParentKind(string(parent.Kind)); err != nil {
		return nil, err
	}
	current, err := uc.repo.Get(ctx, parent.ID)
	if err != nil {
		return nil, err
	}
	if current.Kind != parent.Kind {
		return nil, apperrors.NewValidationErrors().Add("kind", "parent kind cannot change", parent.Kind)
	}

	ve := apperrors.NewValidationErrors()
	for key, items := range parent.Collections {
		if !parent.Kind.Allows(key) {
			return nil, fmt.Errorf("%w: %s on %s", model.ErrCollectionKindMismatch, key, parent.Kind)
		}
		var itemErrs *apperrors.ValidationErrors
		if err := uc.validator.ValidateAll(key.Kind(), items); errors.As(err, &itemErrs) {
			for _, e := range itemErrs.Errors {
				ve.Add(string(key)+"."+e.Field, e.Message, e.Value)
			}
		}
	}
	if ve.HasErrors() {
		return nil, ve
	}

	parent.UpdatedBy = utils.Actor(ctx)
	version, err := uc.repo.ReplaceDocument(ctx, parent, req.ExpectedVersion)
	if err != nil {
		return nil, err
	}

	updated, err := uc.repo.Get(ctx, parent.ID)
	if err != nil {
		return nil, err
	}
	for _, key := range updated.Kind.CollectionKeys() {
		uc.recordChange(ctx, updated.ID, key, version, len(updated.Collections[key]))
	}
	uc.log.WithContext(ctx).WithFields(map[string]interface{}{
		"parent_id": parent.ID,
		"version":   version,
	}).Info("Parent replaced")
	uc.publish(ctx, eventbus.EventTypeParentReplaced, updated)
	return updated, nil
}

func (uc *contentUsecaseImpl) GetCollection(ctx context.Context, parentID, key string) (*model.CollectionSnapshot, error) {
	parent, ck, err := uc.loadParent(ctx, parentID, key)
	if err != nil {
		return nil, err
	}
	return parent.Snapshot(ck), nil
}

func (uc *contentUsecaseImpl) GetReconciledCollection(ctx context.Context, parentID, key string) (*ReconciledCollection, error) {
	parent, ck, err := uc.loadParent(ctx, parentID, key)
	if err != nil {
		return nil, err
	}
	snapshot := parent.Snapshot(ck)

	var fallback []model.CollectionItem
	if uc.seeds != nil {
		fallback = uc.seeds.Fallback(ck)
	}
	merged := uc.reconciler.Reconcile(snapshot.Items, fallback)
	usedFallback := len(snapshot.Items) == 0 || uc.reconciler.HasPlaceholder(snapshot.Items)
	persisted := service.Identities(snapshot.Items)

	out := &ReconciledCollection{
		ParentID:     parent.ID,
		Key:          ck,
		Kind:         snapshot.Kind,
		Version:      snapshot.Version,
		UsedFallback: usedFallback,
		Items:        make([]ReconciledItem, 0, len(merged)),
	}
	for _, item := range merged {
		id := service.Identity(item)
		source := SourceFallback
		if _, ok := persisted[id]; ok && !usedFallback {
			source = SourcePersisted
		}
		out.Items = append(out.Items, ReconciledItem{
			CollectionItem: item,
			Identity:       id,
			AssetPath:      uc.resolver.Resolve(snapshot.Kind, item.DisplayName()),
			Source:         source,
		})
	}
	return out, nil
}

func (uc *contentUsecaseImpl) ReplaceCollection(ctx context.Context, req ReplaceCollectionRequest) (*model.CollectionSnapshot, error) {
	parent, ck, err := uc.loadParent(ctx, req.ParentID, req.Key)
	if err != nil {
		return nil, err
	}
	if req.ExpectedVersion < 0 {
		return nil, apperrors.NewValidationErrors().Add("expectedVersion", "must not be negative", req.ExpectedVersion)
	}
	if err := uc.validator.ValidateAll(ck.Kind(), req.Items); err != nil {
		return nil, err
	}

	items := model.CloneItems(req.Items)
	version, err := uc.repo.ReplaceCollection(ctx, parent.ID, ck, items, req.ExpectedVersion, utils.Actor(ctx))
	if err != nil {
		if errors.Is(err, model.ErrVersionConflict) {
			uc.log.WithContext(ctx).WithFields(map[string]interface{}{
				"parent_id":        parent.ID,
				"collection":       ck,
				"expected_version": req.ExpectedVersion,
			}).Warn("Collection replace rejected: stale version")
		}
		return nil, err
	}

	change := uc.recordChange(ctx, parent.ID, ck, version, len(items))
	uc.log.WithContext(ctx).WithFields(map[string]interface{}{
		"parent_id":  parent.ID,
		"collection": ck,
		"version":    version,
		"item_count": len(items),
	}).Info("Collection replaced")
	uc.publish(ctx, eventbus.EventTypeCollectionReplaced, change)

	return &model.CollectionSnapshot{
		ParentID: parent.ID,
		Key:      ck,
		Kind:     ck.Kind(),
		Items:    items,
		Version:  version,
	}, nil
}

func (uc *contentUsecaseImpl) History(ctx context.Context, parentID, key string, limit int64) ([]*model.CollectionChange, error) {
	if err := model.ValidateParentID(parentID); err != nil {
		return nil, err
	}
	ck, err := model.ParseCollectionKey(key)
	if err != nil {
		return nil, err
	}
	if uc.history == nil {
		return []*model.CollectionChange{}, nil
	}
	if limit <= 0 || limit > uc.maxHistory {
		limit = uc.maxHistory
	}
	return uc.history.List(ctx, parentID, ck, limit)
}

// loadParent validates the identifiers and checks the key belongs to the parent's kind.
func (uc *contentUsecaseImpl) loadParent(ctx context.Context, parentID, key string) (*model.ParentDocument, model.CollectionKey, error) {
	if err := model.ValidateParentID(parentID); err != nil {
		return nil, "", err
	}
	ck, err := model.ParseCollectionKey(key)
	if err != nil {
		return nil, "", err
	}
	parent, err := uc.repo.Get(ctx, parentID)
	if err != nil {
		return nil, "", err
	}
	if !parent.Kind.Allows(ck) {
		return nil, "", fmt.Errorf("%w: %s on %s", model.ErrCollectionKindMismatch, ck, parent.Kind)
	}
	return parent, ck, nil
}

// recordChange appends to the change history; a history failure never fails the write.
func (uc *contentUsecaseImpl) recordChange(ctx context.Context, parentID string, key model.CollectionKey, version int64, count int) *model.CollectionChange {
	change := &model.CollectionChange{
		ParentID:  parentID,
		Key:       key,
		Version:   version,
		ItemCount: count,
		Actor:     utils.Actor(ctx),
		At:        uc.now().UTC(),
	}
	if uc.history == nil {
		return change
	}
	if err := uc.history.Append(ctx, change); err != nil {
		uc.log.WithContext(ctx).Warnf("Change history unavailable for %s/%s: %v", parentID, key, err)
	}
	return change
}

func (uc *contentUsecaseImpl) publish(ctx context.Context, eventType string, data interface{}) {
	if uc.events == nil {
		return
	}
	uc.events.PublishAndForget(ctx, eventbus.NewBasicEventWithSource(eventType, data, eventSource))
}
