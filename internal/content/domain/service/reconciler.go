package service

import (
	"regexp"
	"strings"

	"showcase-cms/internal/content/domain/model"
)

var barePartnerPattern = regexp.MustCompile(`(?i)^\s*partner(?:\s*#?\s*\d+|\s+(?:name|logo))?\s*$`)

// Reconciler merges an authoritative persisted collection with a fallback seed.
type Reconciler struct {
	heuristic bool
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithPlaceholderHeuristic toggles name/description sniffing for placeholder content.
// The explicit Seeded flag is always honoured.
func WithPlaceholderHeuristic(enabled bool) ReconcilerOption {
	return func(r *Reconciler) {
		r.heuristic = enabled
	}
}

// NewReconciler returns a Reconciler with the placeholder heuristic enabled.
func NewReconciler(opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{heuristic: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultReconciler = NewReconciler()

// Reconcile merges with the default Reconciler.
func Reconcile(persisted, fallback []model.CollectionItem) []model.CollectionItem {
	return defaultReconciler.Reconcile(persisted, fallback)
}

// Reconcile returns fallback when persisted is empty or holds any placeholder item;
// otherwise persisted followed by the fallback items whose identity persisted lacks.
// Either way only the first occurrence per identity is kept, in input order.
// Inputs are not modified.
func (r *Reconciler) Reconcile(persisted, fallback []model.CollectionItem) []model.CollectionItem {
	if len(persisted) == 0 || r.HasPlaceholder(persisted) {
		return firstPerIdentity(fallback)
	}
	return firstPerIdentity(persisted, fallback)
}

func firstPerIdentity(groups ...[]model.CollectionItem) []model.CollectionItem {
	size := 0
	for _, group := range groups {
		size += len(group)
	}
	seen := make(map[string]struct{}, size)
	out := make([]model.CollectionItem, 0, size)
	for _, group := range groups {
		for _, item := range group {
			id := Identity(item)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, item.Clone())
		}
	}
	return out
}

// HasPlaceholder reports whether any item is placeholder content.
func (r *Reconciler) HasPlaceholder(items []model.CollectionItem) bool {
	for _, item := range items {
		if r.IsPlaceholder(item) {
			return true
		}
	}
	return false
}

// IsPlaceholder reports whether item is seed/placeholder content rather than real data.
func (r *Reconciler) IsPlaceholder(item model.CollectionItem) bool {
	if item.Seeded {
		return true
	}
	if !r.heuristic {
		return false
	}
	name := item.DisplayName()
	return barePartnerPattern.MatchString(name) ||
		strings.Contains(strings.ToLower(name), "placeholder") ||
		strings.Contains(item.Description, "Description")
}
