package usecase

import "showcase-cms/internal/content/domain/model"

// CreateParentRequest creates a parent with every collection empty. An empty ID gets a UUID.
type CreateParentRequest struct {
	ID        string           `json:"id,omitempty"`
	Kind      model.ParentKind `json:"kind"`
	Title     string           `json:"title"`
	Program   string           `json:"program,omitempty"`
	Tags      []string         `json:"tags,omitempty"`
	Published bool             `json:"published"`
}

// ReplaceParentRequest overwrites a whole parent document.
type ReplaceParentRequest struct {
	Parent          *model.ParentDocument `json:"parent"`
	ExpectedVersion int64                 `json:"expectedVersion"`
}

// ReplaceCollectionRequest overwrites one collection. ExpectedVersion 0 replaces unconditionally.
type ReplaceCollectionRequest struct {
	ParentID        string                 `json:"parentId"`
	Key             string                 `json:"key"`
	Items           []model.CollectionItem `json:"items"`
	ExpectedVersion int64                  `json:"expectedVersion"`
}

// ItemSource tells where a reconciled item came from.
type ItemSource string

const (
	SourcePersisted ItemSource = "persisted"
	SourceFallback  ItemSource = "fallback"
)

// ReconciledItem is an item of the merged view, annotated for renderers.
type ReconciledItem struct {
	model.CollectionItem
	Identity  string     `json:"identity"`
	AssetPath string     `json:"assetPath"`
	Source    ItemSource `json:"source"`
}

// ReconciledCollection is the persisted collection merged with its fallback seed.
type ReconciledCollection struct {
	ParentID string              `json:"parentId"`
	Key      model.CollectionKey `json:"key"`
	Kind     model.Kind          `json:"kind"`
	Version  int64               `json:"version"`
	// UsedFallback is set when the persisted collection was empty or placeholder content.
	UsedFallback bool             `json:"usedFallback"`
	Items        []ReconciledItem `json:"items"`
}

// UploadAssetRequest is one multipart upload.
type UploadAssetRequest struct {
	FileName    string
	ContentType string
	Size        int64
}
