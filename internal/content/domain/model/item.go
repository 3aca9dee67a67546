package model

import (
	"fmt"
	"maps"
	"strings"
)

// Kind is the entity kind of a CollectionItem.
type Kind string

const (
	KindPartner        Kind = "partner"
	KindGuest          Kind = "guest"
	KindGallery        Kind = "gallery"
	KindCoverage       Kind = "coverage"
	KindAwardRecipient Kind = "award_recipient"
	KindTeamMember     Kind = "team_member"
	KindHighlight      Kind = "highlight"
)

// Kinds lists every supported kind.
var Kinds = []Kind{
	KindPartner,
	KindGuest,
	KindGallery,
	KindCoverage,
	KindAwardRecipient,
	KindTeamMember,
	KindHighlight,
}

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// TitleKeyed reports whether the kind's human-readable identity lives in Title rather than Name.
func (k Kind) TitleKeyed() bool {
	return k == KindCoverage || k == KindHighlight || k == KindGallery
}

// CollectionItem is one record of an ordered collection. Its position in the containing
// slice is the only ordering signal.
type CollectionItem struct {
	Name         string            `json:"name,omitempty" bson:"name,omitempty" yaml:"name,omitempty"`
	Title        string            `json:"title,omitempty" bson:"title,omitempty" yaml:"title,omitempty"`
	Description  string            `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty"`
	URL          string            `json:"url,omitempty" bson:"url,omitempty" yaml:"url,omitempty"`
	Image        string            `json:"image,omitempty" bson:"image,omitempty" yaml:"image,omitempty"`
	Role         string            `json:"role,omitempty" bson:"role,omitempty" yaml:"role,omitempty"`
	City         string            `json:"city,omitempty" bson:"city,omitempty" yaml:"city,omitempty"`
	Organization string            `json:"organization,omitempty" bson:"organization,omitempty" yaml:"organization,omitempty"`
	Date         string            `json:"date,omitempty" bson:"date,omitempty" yaml:"date,omitempty"`
	Extra        map[string]string `json:"extra,omitempty" bson:"extra,omitempty" yaml:"extra,omitempty"`

	// Seeded marks authored-but-unpublished seed content. Any seeded item makes the
	// whole persisted collection count as not yet configured.
	Seeded bool `json:"seeded,omitempty" bson:"seeded,omitempty" yaml:"seeded,omitempty"`
}

// DisplayName is the human-readable identity: Name, or Title when Name is empty.
func (i CollectionItem) DisplayName() string {
	if strings.TrimSpace(i.Name) != "" {
		return i.Name
	}
	return i.Title
}

// Clone returns a deep copy.
func (i CollectionItem) Clone() CollectionItem {
	c := i
	if i.Extra != nil {
		c.Extra = maps.Clone(i.Extra)
	}
	return c
}

// Equal compares two items field by field.
func (i CollectionItem) Equal(o CollectionItem) bool {
	return i.Name == o.Name &&
		i.Title == o.Title &&
		i.Description == o.Description &&
		i.URL == o.URL &&
		i.Image == o.Image &&
		i.Role == o.Role &&
		i.City == o.City &&
		i.Organization == o.Organization &&
		i.Date == o.Date &&
		i.Seeded == o.Seeded &&
		maps.Equal(i.Extra, o.Extra)
}

// AsMap flattens the item for expression evaluation. Extra fields are nested under "extra".
func (i CollectionItem) AsMap() map[string]interface{} {
	extra := make(map[string]interface{}, len(i.Extra))
	for k, v := range i.Extra {
		extra[k] = v
	}
	return map[string]interface{}{
		"name":         i.Name,
		"title":        i.Title,
		"description":  i.Description,
		"url":          i.URL,
		"image":        i.Image,
		"role":         i.Role,
		"city":         i.City,
		"organization": i.Organization,
		"date":         i.Date,
		"seeded":       i.Seeded,
		"extra":        extra,
	}
}

// CloneItems deep-copies a slice. A nil input yields an empty, non-nil slice.
func CloneItems(items []CollectionItem) []CollectionItem {
	out := make([]CollectionItem, len(items))
	for idx, item := range items {
		out[idx] = item.Clone()
	}
	return out
}

// ItemsEqual compares two lists element-wise, order included.
func ItemsEqual(a, b []CollectionItem) bool {
	if len(a) != len(b) {
		return false
	}
	for idx := range a {
		if !a[idx].Equal(b[idx]) {
			return false
		}
	}
	return true
}
