// Package editor implements the ordered collection editor: pure list operations plus an
// Editor that applies them and persists the whole list through a gateway.
package editor

import (
	"fmt"

	"showcase-cms/internal/content/domain/model"
)

// Direction is the way Move shifts an item.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// ParseDirection accepts "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return 0, fmt.Errorf("direction must be up or down, got %q", s)
}

// Commit replaces items[*editingIndex] with buffer, or appends buffer when editingIndex is nil.
func Commit(items []model.CollectionItem, editingIndex *int, buffer model.CollectionItem) ([]model.CollectionItem, error) {
	if editingIndex == nil {
		out := make([]model.CollectionItem, 0, len(items)+1)
		out = append(out, model.CloneItems(items)...)
		return append(out, buffer.Clone()), nil
	}
	i := *editingIndex
	if i < 0 || i >= len(items) {
		return nil, fmt.Errorf("%w: %d of %d", model.ErrIndexOutOfRange, i, len(items))
	}
	out := model.CloneItems(items)
	out[i] = buffer.Clone()
	return out, nil
}

// Remove returns items without index i; the rest keep their relative order.
func Remove(items []model.CollectionItem, i int) ([]model.CollectionItem, error) {
	if i < 0 || i >= len(items) {
		return nil, fmt.Errorf("%w: %d of %d", model.ErrIndexOutOfRange, i, len(items))
	}
	out := make([]model.CollectionItem, 0, len(items)-1)
	out = append(out, model.CloneItems(items[:i])...)
	return append(out, model.CloneItems(items[i+1:])...), nil
}

// Move swaps items[i] with its neighbour in dir. At a boundary, or for an index outside the
// list, it returns items unchanged and false.
func Move(items []model.CollectionItem, i int, dir Direction) ([]model.CollectionItem, bool) {
	j := i - 1
	if dir == Down {
		j = i + 1
	}
	if i < 0 || i >= len(items) || j < 0 || j >= len(items) {
		return items, false
	}
	out := model.CloneItems(items)
	out[i], out[j] = out[j], out[i]
	return out, true
}
