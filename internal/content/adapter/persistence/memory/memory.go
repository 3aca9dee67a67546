// Package memory keeps content in process memory, for local runs without MongoDB and Redis.
package memory

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/content/domain/repository"
)

var (
	_ repository.ParentRepository = (*ParentRepository)(nil)
	_ repository.ChangeHistory    = (*ChangeHistory)(nil)
)

// ParentRepository is a map-backed ParentRepository with the same version semantics as
// the MongoDB one.
type ParentRepository struct {
	mu      sync.RWMutex
	parents map[string]*model.ParentDocument
	now     func() time.Time
}

func NewParentRepository() *ParentRepository {
	return &ParentRepository{parents: make(map[string]*model.ParentDocument), now: time.Now}
}

func (r *ParentRepository) Create(ctx context.Context, parent *model.ParentDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parents[parent.ID]; ok {
		return model.ErrParentExists
	}
	r.parents[parent.ID] = cloneParent(parent)
	return nil
}

func (r *ParentRepository) Get(ctx context.Context, id string) (*model.ParentDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	parent, ok := r.parents[id]
	if !ok {
		return nil, model.ErrParentNotFound
	}
	return cloneParent(parent), nil
}

func (r *ParentRepository) List(ctx context.Context, filter model.ParentFilter) ([]*model.ParentDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.ParentDocument, 0, len(r.parents))
	for _, parent := range r.parents {
		if matches(parent, filter) {
			out = append(out, cloneParent(parent))
		}
	}
	slices.SortFunc(out, func(a, b *model.ParentDocument) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out, nil
}

func (r *ParentRepository) ReplaceCollection(ctx context.Context, id string, key model.CollectionKey, items []model.CollectionItem, expectedVersion int64, actor string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	parent, err := r.checkVersion(id, expectedVersion)
	if err != nil {
		return 0, err
	}
	if parent.Collections == nil {
		parent.Collections = make(map[model.CollectionKey][]model.CollectionItem)
	}
	parent.Collections[key] = model.CloneItems(items)
	parent.UpdatedBy = actor
	return r.bump(parent), nil
}

func (r *ParentRepository) ReplaceDocument(ctx context.Context, doc *model.ParentDocument, expectedVersion int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, err := r.checkVersion(doc.ID, expectedVersion)
	if err != nil {
		return 0, err
	}
	next := cloneParent(doc)
	next.CreatedAt = current.CreatedAt
	next.Version = current.Version
	for _, key := range next.Kind.CollectionKeys() {
		if next.Collections[key] == nil {
			next.Collections[key] = []model.CollectionItem{}
		}
	}
	r.parents[doc.ID] = next
	return r.bump(next), nil
}

func (r *ParentRepository) checkVersion(id string, expectedVersion int64) (*model.ParentDocument, error) {
	parent, ok := r.parents[id]
	if !ok {
		return nil, model.ErrParentNotFound
	}
	if expectedVersion > 0 && parent.Version != expectedVersion {
		return nil, model.ErrVersionConflict
	}
	return parent, nil
}

func (r *ParentRepository) bump(parent *model.ParentDocument) int64 {
	parent.Version++
	parent.UpdatedAt = r.now().UTC()
	return parent.Version
}

func matches(p *model.ParentDocument, f model.ParentFilter) bool {
	if f.Kind != "" && p.Kind != f.Kind {
		return false
	}
	if f.Program != "" && p.Program != f.Program {
		return false
	}
	if f.Tag != "" && !slices.Contains(p.Tags, f.Tag) {
		return false
	}
	return f.IncludeAll || p.Published
}

func cloneParent(p *model.ParentDocument) *model.ParentDocument {
	out := *p
	out.Tags = slices.Clone(p.Tags)
	out.Collections = make(map[model.CollectionKey][]model.CollectionItem, len(p.Collections))
	for key, items := range p.Collections {
		out.Collections[key] = model.CloneItems(items)
	}
	return &out
}

// ChangeHistory keeps every change in memory, newest last.
type ChangeHistory struct {
	mu      sync.Mutex
	changes map[string][]*model.CollectionChange
	seq     int64
}

func NewChangeHistory() *ChangeHistory {
	return &ChangeHistory{changes: make(map[string][]*model.CollectionChange)}
}

func (h *ChangeHistory) Append(ctx context.Context, change *model.CollectionChange) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	change.StreamID = strconv.FormatInt(h.seq, 10) + "-0"
	stored := *change
	k := historyKey(change.ParentID, change.Key)
	h.changes[k] = append(h.changes[k], &stored)
	return nil
}

// List returns the newest changes first.
func (h *ChangeHistory) List(ctx context.Context, parentID string, key model.CollectionKey, limit int64) ([]*model.CollectionChange, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	all := h.changes[historyKey(parentID, key)]
	out := make([]*model.CollectionChange, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
		c := *all[i]
		out = append(out, &c)
	}
	return out, nil
}

func historyKey(parentID string, key model.CollectionKey) string {
	return parentID + ":" + string(key)
}
