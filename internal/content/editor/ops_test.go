package editor

import (
	"testing"

	"showcase-cms/internal/content/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func named(names ...string) []model.CollectionItem {
	items := make([]model.CollectionItem, len(names))
	for i, n := range names {
		items[i] = model.CollectionItem{Name: n}
	}
	return items
}

func TestRemove(t *testing.T) {
	items := named("a", "b", "c", "d", "e")

	out, err := Remove(items, 2)
	require.NoError(t, err)
	assert.Equal(t, named("a", "b", "d", "e"), out)
	assert.Equal(t, named("a", "b", "c", "d", "e"), items)

	_, err = Remove(items, 5)
	assert.ErrorIs(t, err, model.ErrIndexOutOfRange)
	_, err = Remove(items, -1)
	assert.ErrorIs(t, err, model.ErrIndexOutOfRange)
}

func TestMove_Boundaries(t *testing.T) {
	items := named("a", "b", "c")

	out, moved := Move(items, 0, Up)
	assert.False(t, moved)
	assert.Equal(t, items, out)

	out, moved = Move(items, 2, Down)
	assert.False(t, moved)
	assert.Equal(t, items, out)

	_, moved = Move(nil, 0, Down)
	assert.False(t, moved)
}

func TestMove_RoundTrip(t *testing.T) {
	items := named("a", "b", "c", "d")
	for i := 1; i < len(items); i++ {
		up, moved := Move(items, i, Up)
		require.True(t, moved)
		back, moved := Move(up, i-1, Down)
		require.True(t, moved)
		assert.Equal(t, items, back)
	}

	out, _ := Move(items, 1, Down)
	assert.Equal(t, named("a", "c", "b", "d"), out)
	assert.Equal(t, named("a", "b", "c", "d"), items)
}

func TestCommit(t *testing.T) {
	items := named("a", "b")

	out, err := Commit(items, nil, model.CollectionItem{Name: "c"})
	require.NoError(t, err)
	assert.Equal(t, named("a", "b", "c"), out)

	idx := 0
	out, err = Commit(items, &idx, model.CollectionItem{Name: "z"})
	require.NoError(t, err)
	assert.Equal(t, named("z", "b"), out)
	assert.Equal(t, named("a", "b"), items)

	idx = 2
	_, err = Commit(items, &idx, model.CollectionItem{Name: "z"})
	assert.ErrorIs(t, err, model.ErrIndexOutOfRange)
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("down")
	require.NoError(t, err)
	assert.Equal(t, Down, d)
	assert.Equal(t, "down", d.String())

	_, err = ParseDirection("left")
	assert.Error(t, err)
}
