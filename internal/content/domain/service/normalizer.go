package service

import (
	"regexp"
	"strings"

	"showcase-cms/internal/content/domain/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	parentheticalPattern = regexp.MustCompile(`\([^()]*\)`)
	whitespacePattern    = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes a display name for identity comparison: NFC, lower case,
// periods removed, parenthetical annotations removed, whitespace collapsed and trimmed.
// "Adv. Sriram Panchu" and "adv sriram panchu (Posthumously)" normalize equal.
func Normalize(name string) string {
	s := norm.NFC.String(name)
	// cases.Caser is stateful; one per call.
	s = cases.Lower(language.Und).String(s)
	s = strings.ReplaceAll(s, ".", "")
	for {
		stripped := parentheticalPattern.ReplaceAllString(s, " ")
		if stripped == s {
			break
		}
		s = stripped
	}
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Identity is the normalized identity of an item.
func Identity(item model.CollectionItem) string {
	return Normalize(item.DisplayName())
}

// Identities returns the identity set of items.
func Identities(items []model.CollectionItem) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[Identity(item)] = struct{}{}
	}
	return set
}
