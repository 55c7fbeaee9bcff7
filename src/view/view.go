// Package view derives the displayed note list from a fetched collection.
// Everything here is pure: inputs are never mutated and no I/O happens.
package view

import (
	"sort"
	"strings"

	"notes-app/src/domain"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Section is the sidebar section the user is looking at
type Section string

const (
	SectionActive    Section = "active"
	SectionFavorites Section = "favorites"
	SectionTrash     Section = "trash"
)

// IsValid validates if the section is valid
func (s Section) IsValid() bool {
	switch s {
	case SectionActive, SectionFavorites, SectionTrash:
		return true
	default:
		return false
	}
}

// SortKey selects the ordering of the projected list
type SortKey string

const (
	SortDateModified SortKey = "dateModified"
	SortDateCreated  SortKey = "dateCreated"
	SortTitle        SortKey = "title"
)

// IsValid validates if the sort key is valid
func (k SortKey) IsValid() bool {
	switch k {
	case SortDateModified, SortDateCreated, SortTitle:
		return true
	default:
		return false
	}
}

// TagAll disables tag filtering
const TagAll = "All"

// Filter is the transient UI state applied to a collection
type Filter struct {
	Search  string
	Tag     string
	Section Section
	Sort    SortKey
	// Locale drives title collation; language.Und when zero
	Locale language.Tag
}

// DefaultFilter shows every note of a section by modification date
func DefaultFilter(section Section) Filter {
	return Filter{
		Tag:     TagAll,
		Section: section,
		Sort:    SortDateModified,
	}
}

// SectionCollection returns the server collection a section is drawn from
func SectionCollection(section Section) domain.Collection {
	if section == SectionTrash {
		return domain.CollectionTrashed
	}
	return domain.CollectionActive
}

// PrimaryTag returns the tag shown next to a note, or "" when it has none
func PrimaryTag(note domain.Note) string {
	return note.PrimaryTag()
}

// Project filters and sorts notes. The result is a new slice; notes is not modified.
func Project(notes []domain.Note, f Filter) []domain.Note {
	lower := cases.Lower(language.Und)
	query := ""
	// 空白だけの検索は無効。照合には入力そのままを使う
	if strings.TrimSpace(f.Search) != "" {
		query = lower.String(f.Search)
	}

	result := make([]domain.Note, 0, len(notes))
	for _, note := range notes {
		if matchesSearch(note, query, lower) && matchesTag(note, f.Tag) && matchesSection(note, f.Section) {
			result = append(result, note)
		}
	}

	switch f.Sort {
	case SortDateModified:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		})
	case SortDateCreated:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})
	case SortTitle:
		// Collator holds internal buffers, one per call
		c := collate.New(f.Locale)
		sort.SliceStable(result, func(i, j int) bool {
			return c.CompareString(result[i].Title, result[j].Title) < 0
		})
	}

	return result
}

// query is already lowercased
func matchesSearch(note domain.Note, query string, lower cases.Caser) bool {
	if query == "" {
		return true
	}
	return strings.Contains(lower.String(note.Title), query) ||
		strings.Contains(lower.String(note.Body), query)
}

func matchesTag(note domain.Note, tag string) bool {
	if tag == TagAll || tag == "" {
		return true
	}
	return note.HasTag(tag)
}

// Active and trash membership is decided by which collection was fetched
func matchesSection(note domain.Note, section Section) bool {
	if section == SectionFavorites {
		return note.IsFavorite
	}
	return true
}

// Tags returns the distinct tags of notes in first-seen order, for a tag filter bar
func Tags(notes []domain.Note) []string {
	seen := make(map[string]bool)
	tags := []string{}
	for _, note := range notes {
		for _, tag := range note.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags
}
