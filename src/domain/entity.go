package domain

import (
	"time"
)

// Note represents a note domain entity
type Note struct {
	ID         string    `json:"id" bson:"_id"`
	OwnerID    string    `json:"ownerId,omitempty" bson:"owner_id"`
	Title      string    `json:"title" bson:"title"`
	Body       string    `json:"body" bson:"body"`
	Tags       []string  `json:"tags" bson:"tags"`
	IsFavorite bool      `json:"isFavorite" bson:"is_favorite"`
	IsTrashed  bool      `json:"isTrashed" bson:"is_trashed"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updated_at"`
}

// HasTag reports whether the note carries the given tag
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PrimaryTag returns the first tag, used for display
func (n *Note) PrimaryTag() string {
	if len(n.Tags) == 0 {
		return ""
	}
	return n.Tags[0]
}

// Collection identifies which stored collection a note belongs to
type Collection string

const (
	CollectionActive  Collection = "active"
	CollectionTrashed Collection = "trashed"
)

// IsValid validates if the collection is valid
func (c Collection) IsValid() bool {
	switch c {
	case CollectionActive, CollectionTrashed:
		return true
	default:
		return false
	}
}

// Trashed reports the isTrashed value of notes in the collection
func (c Collection) Trashed() bool {
	return c == CollectionTrashed
}

// String returns string representation of Collection
func (c Collection) String() string {
	return string(c)
}

// NotePatch carries the fields supplied to a partial update.
// A nil pointer means the field was omitted.
type NotePatch struct {
	Title *string
	Body  *string
	Tags  *[]string
}

// IsEmpty reports whether no field was supplied
func (p NotePatch) IsEmpty() bool {
	return p.Title == nil && p.Body == nil && p.Tags == nil
}
