package domain

import (
	"context"
	"time"
)

// NoteRepository defines the interface for note data operations.
// Every method is scoped by ownerID; a note owned by someone else is
// reported as ErrNoteNotFound.
type NoteRepository interface {
	Create(ctx context.Context, note *Note) (*Note, error)
	GetByID(ctx context.Context, ownerID, id string) (*Note, error)
	// List returns the owner's notes in the given collection, most recently updated first
	List(ctx context.Context, ownerID string, collection Collection) ([]Note, error)
	// Update overwrites title, body, tags and updated_at
	Update(ctx context.Context, note *Note) (*Note, error)
	SetTrashed(ctx context.Context, ownerID, id string, trashed bool, at time.Time) (*Note, error)
	ToggleFavorite(ctx context.Context, ownerID, id string, at time.Time) (*Note, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	IsEmailExists(ctx context.Context, email string) (bool, error)
	IsUsernameExists(ctx context.Context, username string) (bool, error)
}
