package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionItem_DisplayName(t *testing.T) {
	assert.Equal(t, "Laila Ollapally", CollectionItem{Name: "Laila Ollapally", Title: "ignored"}.DisplayName())
	assert.Equal(t, "Mediation Week recap", CollectionItem{Name: "  ", Title: "Mediation Week recap"}.DisplayName())
	assert.Equal(t, "", CollectionItem{}.DisplayName())
}

func TestCollectionItem_CloneIsDeep(t *testing.T) {
	orig := CollectionItem{Name: "A", Extra: map[string]string{"tier": "gold"}}
	clone := orig.Clone()
	clone.Extra["tier"] = "silver"
	assert.Equal(t, "gold", orig.Extra["tier"])
	assert.False(t, orig.Equal(clone))
}

func TestCollectionItem_EqualTreatsNilAndEmptyExtraAlike(t *testing.T) {
	assert.True(t, CollectionItem{Name: "A"}.Equal(CollectionItem{Name: "A", Extra: map[string]string{}}))
	assert.False(t, CollectionItem{Name: "A"}.Equal(CollectionItem{Name: "A", Seeded: true}))
}

func TestItemsEqual(t *testing.T) {
	a := []CollectionItem{{Name: "A"}, {Name: "B"}}
	assert.True(t, ItemsEqual(a, CloneItems(a)))
	assert.False(t, ItemsEqual(a, []CollectionItem{{Name: "B"}, {Name: "A"}}))
	assert.False(t, ItemsEqual(a, a[:1]))
	assert.NotNil(t, CloneItems(nil))
}

func TestParseKindAndKeys(t *testing.T) {
	k, err := ParseKind("award_recipient")
	require.NoError(t, err)
	assert.Equal(t, KindAwardRecipient, k)

	_, err = ParseKind("sponsor")
	assert.ErrorIs(t, err, ErrUnknownKind)

	key, err := ParseCollectionKey("awardRecipients")
	require.NoError(t, err)
	assert.Equal(t, KindAwardRecipient, key.Kind())

	_, err = ParseCollectionKey("collections.partners")
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestParentKind_Allows(t *testing.T) {
	assert.True(t, ParentEvent.Allows(KeyGallery))
	assert.False(t, ParentTeamRoster.Allows(KeyPartners))
	assert.Equal(t, []CollectionKey{KeyMembers}, ParentTeamRoster.CollectionKeys())

	_, err := ParseParentKind("newsletter")
	assert.ErrorIs(t, err, ErrUnknownParentKind)
}

func TestValidateParentID(t *testing.T) {
	assert.NoError(t, ValidateParentID("mediation-week-2024"))
	assert.NoError(t, ValidateParentID("0b8c1f5e-4c1e-4c7a-9d53-1f4b2f0d9a11"))
	assert.ErrorIs(t, ValidateParentID("Bad ID"), ErrInvalidParentID)
	assert.ErrorIs(t, ValidateParentID(""), ErrInvalidParentID)
}

func TestNewParentDocument_CreatesEmptyCollections(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	doc := NewParentDocument("event-1", ParentEvent, "Mediation Week", now)

	assert.Equal(t, int64(1), doc.Version)
	assert.Len(t, doc.Collections, len(ParentEvent.CollectionKeys()))
	for _, key := range ParentEvent.CollectionKeys() {
		assert.NotNil(t, doc.Collections[key])
		assert.Empty(t, doc.Collections[key])
	}

	doc.Collections[KeyPartners] = []CollectionItem{{Name: "A"}}
	snap := doc.Snapshot(KeyPartners)
	assert.Equal(t, KindPartner, snap.Kind)
	assert.Equal(t, int64(1), snap.Version)
	snap.Items[0].Name = "mutated"
	assert.Equal(t, "A", doc.Collections[KeyPartners][0].Name)
}
