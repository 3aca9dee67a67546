package service

import (
	"math/rand"
	"testing"

	"showcase-cms/internal/content/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_PersistedWins(t *testing.T) {
	persisted := []model.CollectionItem{{Name: "Adv. Sriram Panchu"}}
	fallback := []model.CollectionItem{
		{Name: "Adv. Sriram Panchu", City: "Chennai"},
		{Name: "Laila Ollapally", City: "Bengaluru"},
	}

	got := Reconcile(persisted, fallback)

	require.Len(t, got, 2)
	assert.Equal(t, model.CollectionItem{Name: "Adv. Sriram Panchu"}, got[0])
	assert.Equal(t, model.CollectionItem{Name: "Laila Ollapally", City: "Bengaluru"}, got[1])
}

func TestReconcile_EmptyPersistedReturnsFallback(t *testing.T) {
	fallback := []model.CollectionItem{{Name: "A"}, {Name: "B"}}

	assert.Equal(t, fallback, Reconcile(nil, fallback))
	assert.Equal(t, fallback, Reconcile([]model.CollectionItem{}, fallback))
}

func TestReconcile_PlaceholderGate(t *testing.T) {
	fallback := []model.CollectionItem{{Name: "Real Partner Co"}}

	tests := []struct {
		name string
		item model.CollectionItem
	}{
		{"seeded flag", model.CollectionItem{Name: "Acme", Seeded: true}},
		{"bare partner", model.CollectionItem{Name: "Partner"}},
		{"numbered partner", model.CollectionItem{Name: "partner 3"}},
		{"partner logo", model.CollectionItem{Name: "Partner Logo"}},
		{"placeholder name", model.CollectionItem{Name: "Placeholder Guest"}},
		{"stub description", model.CollectionItem{Name: "Acme", Description: "Description goes here"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			persisted := []model.CollectionItem{{Name: "Kept"}, tt.item}
			assert.Equal(t, fallback, Reconcile(persisted, fallback))
		})
	}
}

func TestReconcile_HeuristicDisabled(t *testing.T) {
	r := NewReconciler(WithPlaceholderHeuristic(false))
	persisted := []model.CollectionItem{{Name: "Partner"}}
	fallback := []model.CollectionItem{{Name: "Other"}}

	got := r.Reconcile(persisted, fallback)

	assert.Equal(t, []model.CollectionItem{{Name: "Partner"}, {Name: "Other"}}, got)
	assert.True(t, r.IsPlaceholder(model.CollectionItem{Name: "x", Seeded: true}))
}

func TestReconcile_NotPlaceholder(t *testing.T) {
	r := NewReconciler()
	assert.False(t, r.IsPlaceholder(model.CollectionItem{Name: "Partnership Trust"}))
	assert.False(t, r.IsPlaceholder(model.CollectionItem{Name: "Acme", Description: "description in lower case"}))
}

func TestReconcile_OrderAndUniqueness(t *testing.T) {
	tests := []struct {
		name      string
		persisted []string
		fallback  []string
		want      []string
	}{
		{
			name:      "duplicates in fallback only",
			persisted: []string{"C", "A"},
			fallback:  []string{"B", "a", "D", "d (guest)"},
			want:      []string{"C", "A", "B", "D"},
		},
		{
			name:      "duplicates in persisted only",
			persisted: []string{"C", "A", "c."},
			fallback:  []string{"B"},
			want:      []string{"C", "A", "B"},
		},
		{
			name:      "duplicates in both",
			persisted: []string{"Dr. A. Rao", "Laila", "Dr A Rao (Chennai)", "laila"},
			fallback:  []string{"Mira", "LAILA", "mira.", "Dr A Rao", "Noor", "noor (Delhi)"},
			want:      []string{"Dr. A. Rao", "Laila", "Mira", "Noor"},
		},
		{
			name:     "empty persisted collapses fallback",
			fallback: []string{"A", "a.", "B", "b (seed)"},
			want:     []string{"A", "B"},
		},
		{
			name:      "fallback fully shadowed",
			persisted: []string{"X", "Y", "x"},
			fallback:  []string{"y", "X.", "Y (again)"},
			want:      []string{"X", "Y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(namedItems(tt.persisted...), namedItems(tt.fallback...))

			assert.Equal(t, tt.want, itemNames(got))
			assert.Len(t, Identities(got), len(got))
		})
	}
}

func TestReconcile_UniquenessRandomized(t *testing.T) {
	pool := []string{"Asha", "asha.", "Asha (Pune)", "Bina", "BINA", "Chitra", "chitra (guest)", "Dev", "Esha", "e.sha"}
	rng := rand.New(rand.NewSource(42))
	pick := func() []string {
		out := make([]string, rng.Intn(8))
		for i := range out {
			out[i] = pool[rng.Intn(len(pool))]
		}
		return out
	}

	for round := 0; round < 200; round++ {
		persisted, fallback := namedItems(pick()...), namedItems(pick()...)

		got := Reconcile(persisted, fallback)

		require.Len(t, Identities(got), len(got), "round %d", round)
		want := firstNames(append(model.CloneItems(persisted), fallback...))
		assert.Equal(t, want, itemNames(got), "round %d", round)
	}
}

func namedItems(names ...string) []model.CollectionItem {
	items := make([]model.CollectionItem, 0, len(names))
	for _, name := range names {
		items = append(items, model.CollectionItem{Name: name})
	}
	return items
}

func itemNames(items []model.CollectionItem) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return names
}

func firstNames(items []model.CollectionItem) []string {
	names := []string{}
	for i, item := range items {
		shadowed := false
		for _, prev := range items[:i] {
			if Normalize(prev.Name) == Normalize(item.Name) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			names = append(names, item.Name)
		}
	}
	return names
}

func TestReconcile_DoesNotAliasInputs(t *testing.T) {
	persisted := []model.CollectionItem{{Name: "A", Extra: map[string]string{"k": "v"}}}
	got := Reconcile(persisted, nil)

	got[0].Extra["k"] = "changed"
	got[0].Name = "Z"

	assert.Equal(t, "v", persisted[0].Extra["k"])
	assert.Equal(t, "A", persisted[0].Name)
}
