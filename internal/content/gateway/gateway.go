// Package gateway loads and saves whole collections for editors. Saves always replace the
// entire array; there is no per-item patch.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"showcase-cms/internal/content/domain/model"
)

// Gateway is the persistence boundary of a collection editor.
type Gateway interface {
	Fetch(ctx context.Context, parentID string, key model.CollectionKey) (*model.CollectionSnapshot, error)
	Save(ctx context.Context, req SaveRequest) (*SaveResult, error)
}

// SaveRequest replaces one collection. ExpectedVersion 0 replaces unconditionally.
type SaveRequest struct {
	ParentID        string
	Key             model.CollectionKey
	Items           []model.CollectionItem
	ExpectedVersion int64
}

// SaveResult carries the parent version produced by the save.
type SaveResult struct {
	Version int64
}

// FetchFailure is returned when a collection cannot be loaded.
type FetchFailure struct {
	ParentID string
	Key      model.CollectionKey
	Err      error
}

func (f *FetchFailure) Error() string {
	return fmt.Sprintf("fetch %s/%s failed: %v", f.ParentID, f.Key, f.Err)
}

func (f *FetchFailure) Unwrap() error { return f.Err }

// SaveFailure is returned when a save is rejected or never reaches the store.
type SaveFailure struct {
	ParentID string
	Key      model.CollectionKey
	Err      error
}

func (f *SaveFailure) Error() string {
	return fmt.Sprintf("save %s/%s failed: %v", f.ParentID, f.Key, f.Err)
}

func (f *SaveFailure) Unwrap() error { return f.Err }

// IsConflict reports whether err is a lost compare-and-swap.
func IsConflict(err error) bool {
	return errors.Is(err, model.ErrVersionConflict)
}
