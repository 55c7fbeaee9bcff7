package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"notes-app/src/domain"

	"github.com/google/uuid"
)

// MemoryNoteRepository is an in-memory domain.NoteRepository backed by a map
type MemoryNoteRepository struct {
	mu    sync.RWMutex
	notes map[string]domain.Note
}

var _ domain.NoteRepository = (*MemoryNoteRepository)(nil)

// NewMemoryNoteRepository creates an empty in-memory note repository
func NewMemoryNoteRepository() *MemoryNoteRepository {
	return &MemoryNoteRepository{
		notes: make(map[string]domain.Note),
	}
}

func cloneNote(n domain.Note) domain.Note {
	tags := make([]string, len(n.Tags))
	copy(tags, n.Tags)
	n.Tags = tags
	return n
}

// Create stores a copy of the note under a new ID
func (r *MemoryNoteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := cloneNote(*note)
	created.ID = uuid.NewString()
	r.notes[created.ID] = created

	result := cloneNote(created)
	return &result, nil
}

// lookup must be called with the lock held
func (r *MemoryNoteRepository) lookup(ownerID, id string) (domain.Note, bool) {
	note, ok := r.notes[id]
	if !ok || note.OwnerID != ownerID {
		return domain.Note{}, false
	}
	return note, true
}

// GetByID returns the owner's note
func (r *MemoryNoteRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	note, ok := r.lookup(ownerID, id)
	if !ok {
		return nil, domain.ErrNoteNotFound
	}
	result := cloneNote(note)
	return &result, nil
}

// List returns the owner's notes in one collection, most recently updated first
func (r *MemoryNoteRepository) List(ctx context.Context, ownerID string, collection domain.Collection) ([]domain.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notes := make([]domain.Note, 0)
	for _, note := range r.notes {
		if note.OwnerID == ownerID && note.IsTrashed == collection.Trashed() {
			notes = append(notes, cloneNote(note))
		}
	}

	// map順は不定なのでIDで並べてから安定ソート
	sort.Slice(notes, func(i, j int) bool { return notes[i].ID < notes[j].ID })
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
	return notes, nil
}

// Update overwrites title, body, tags and updatedAt
func (r *MemoryNoteRepository) Update(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	return r.mutate(note.OwnerID, note.ID, func(n *domain.Note) {
		n.Title = note.Title
		n.Body = note.Body
		n.Tags = append([]string{}, note.Tags...)
		n.UpdatedAt = note.UpdatedAt
	})
}

// SetTrashed moves a note in or out of the trash
func (r *MemoryNoteRepository) SetTrashed(ctx context.Context, ownerID, id string, trashed bool, at time.Time) (*domain.Note, error) {
	return r.mutate(ownerID, id, func(n *domain.Note) {
		n.IsTrashed = trashed
		n.UpdatedAt = at
	})
}

// ToggleFavorite flips isFavorite under the write lock
func (r *MemoryNoteRepository) ToggleFavorite(ctx context.Context, ownerID, id string, at time.Time) (*domain.Note, error) {
	return r.mutate(ownerID, id, func(n *domain.Note) {
		n.IsFavorite = !n.IsFavorite
		n.UpdatedAt = at
	})
}

// Delete removes the note
func (r *MemoryNoteRepository) Delete(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lookup(ownerID, id); !ok {
		return domain.ErrNoteNotFound
	}
	delete(r.notes, id)
	return nil
}

func (r *MemoryNoteRepository) mutate(ownerID, id string, apply func(*domain.Note)) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, ok := r.lookup(ownerID, id)
	if !ok {
		return nil, domain.ErrNoteNotFound
	}
	apply(&note)
	r.notes[id] = note

	result := cloneNote(note)
	return &result, nil
}
