package model

import (
	"fmt"
	"regexp"
	"slices"
	"time"
)

// ParentKind is the kind of document that owns collections.
type ParentKind string

const (
	ParentEvent           ParentKind = "event"
	ParentPartnerRegistry ParentKind = "partner_registry"
	ParentTeamRoster      ParentKind = "team_roster"
)

// CollectionKey names a collection field on a parent document.
type CollectionKey string

const (
	KeyPartners        CollectionKey = "partners"
	KeyGuests          CollectionKey = "guests"
	KeyGallery         CollectionKey = "gallery"
	KeyCoverage        CollectionKey = "coverage"
	KeyHighlights      CollectionKey = "highlights"
	KeyAwardRecipients CollectionKey = "awardRecipients"
	KeyMembers         CollectionKey = "members"
)

var collectionKinds = map[CollectionKey]Kind{
	KeyPartners:        KindPartner,
	KeyGuests:          KindGuest,
	KeyGallery:         KindGallery,
	KeyCoverage:        KindCoverage,
	KeyHighlights:      KindHighlight,
	KeyAwardRecipients: KindAwardRecipient,
	KeyMembers:         KindTeamMember,
}

var parentCollections = map[ParentKind][]CollectionKey{
	ParentEvent:           {KeyPartners, KeyGuests, KeyGallery, KeyCoverage, KeyHighlights, KeyAwardRecipients},
	ParentPartnerRegistry: {KeyPartners},
	ParentTeamRoster:      {KeyMembers},
}

var parentIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,127}$`)

// ParseCollectionKey validates s against the registry.
func ParseCollectionKey(s string) (CollectionKey, error) {
	key := CollectionKey(s)
	if _, ok := collectionKinds[key]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, s)
	}
	return key, nil
}

// Kind returns the item kind stored under the key.
func (k CollectionKey) Kind() Kind {
	return collectionKinds[k]
}

// ParseParentKind validates s as a ParentKind.
func ParseParentKind(s string) (ParentKind, error) {
	pk := ParentKind(s)
	if _, ok := parentCollections[pk]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownParentKind, s)
	}
	return pk, nil
}

// CollectionKeys lists the collections a parent of this kind carries.
func (p ParentKind) CollectionKeys() []CollectionKey {
	return slices.Clone(parentCollections[p])
}

// Allows reports whether key is a collection of this parent kind.
func (p ParentKind) Allows(key CollectionKey) bool {
	return slices.Contains(parentCollections[p], key)
}

// ValidateParentID checks the id is a lowercase slug or UUID.
func ValidateParentID(id string) error {
	if !parentIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidParentID, id)
	}
	return nil
}

// ParentDocument owns the persisted collections. Collections are only ever replaced whole.
type ParentDocument struct {
	ID          string                             `json:"id" bson:"_id"`
	Kind        ParentKind                         `json:"kind" bson:"kind"`
	Title       string                             `json:"title" bson:"title"`
	Program     string                             `json:"program,omitempty" bson:"program,omitempty"`
	Tags        []string                           `json:"tags,omitempty" bson:"tags,omitempty"`
	Published   bool                               `json:"published" bson:"published"`
	Collections map[CollectionKey][]CollectionItem `json:"collections" bson:"collections"`
	Version     int64                              `json:"version" bson:"version"`
	CreatedAt   time.Time                          `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time                          `json:"updatedAt" bson:"updated_at"`
	UpdatedBy   string                             `json:"updatedBy,omitempty" bson:"updated_by,omitempty"`
}

// NewParentDocument returns a parent with every collection of its kind present and empty.
func NewParentDocument(id string, kind ParentKind, title string, now time.Time) *ParentDocument {
	doc := &ParentDocument{
		ID:          id,
		Kind:        kind,
		Title:       title,
		Collections: make(map[CollectionKey][]CollectionItem),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, key := range kind.CollectionKeys() {
		doc.Collections[key] = []CollectionItem{}
	}
	return doc
}

// Collection returns a copy of the items under key; missing keys yield an empty slice.
func (d *ParentDocument) Collection(key CollectionKey) []CollectionItem {
	return CloneItems(d.Collections[key])
}

// Snapshot returns the collection under key together with the document version.
func (d *ParentDocument) Snapshot(key CollectionKey) *CollectionSnapshot {
	return &CollectionSnapshot{
		ParentID: d.ID,
		Key:      key,
		Kind:     key.Kind(),
		Items:    d.Collection(key),
		Version:  d.Version,
	}
}

// CollectionSnapshot is a collection as read at one document version.
type CollectionSnapshot struct {
	ParentID string           `json:"parentId"`
	Key      CollectionKey    `json:"key"`
	Kind     Kind             `json:"kind"`
	Items    []CollectionItem `json:"items"`
	Version  int64            `json:"version"`
}

// ParentFilter narrows a parent listing.
type ParentFilter struct {
	Kind       ParentKind
	Program    string
	Tag        string
	IncludeAll bool
}
