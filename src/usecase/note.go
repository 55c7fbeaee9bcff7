package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"notes-app/src/domain"
)

const (
	MaxTitleLength = 200
	MaxTagLength   = 30
	MaxTags        = 20
)

// CreateNoteRequest represents input for creating a note
type CreateNoteRequest struct {
	Title string
	Body  string
	Tags  []string
}

// UpdateNoteRequest represents input for a partial update.
// Nil fields are left untouched; a non-nil empty Tags clears the tags.
type UpdateNoteRequest struct {
	Title *string
	Body  *string
	Tags  *[]string
}

// NoteUsecase defines the interface for note business logic
type NoteUsecase interface {
	CreateNote(ctx context.Context, ownerID string, req CreateNoteRequest) (*domain.Note, error)
	ListActive(ctx context.Context, ownerID string) ([]domain.Note, error)
	ListTrashed(ctx context.Context, ownerID string) ([]domain.Note, error)
	GetNote(ctx context.Context, ownerID, id string) (*domain.Note, error)
	UpdateNote(ctx context.Context, ownerID, id string, req UpdateNoteRequest) (*domain.Note, error)
	SoftDeleteNote(ctx context.Context, ownerID, id string) (*domain.Note, error)
	RestoreNote(ctx context.Context, ownerID, id string) (*domain.Note, error)
	ToggleFavorite(ctx context.Context, ownerID, id string) (*domain.Note, error)
	PermanentlyDeleteNote(ctx context.Context, ownerID, id string) error
}

type noteUsecase struct {
	noteRepo domain.NoteRepository
	now      func() time.Time
}

// Option configures the note usecase
type Option func(*noteUsecase)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(u *noteUsecase) {
		u.now = now
	}
}

// NewNoteUsecase creates a new note usecase
func NewNoteUsecase(noteRepo domain.NoteRepository, opts ...Option) NoteUsecase {
	u := &noteUsecase{
		noteRepo: noteRepo,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CreateNote creates a new active, non-favorite note
func (u *noteUsecase) CreateNote(ctx context.Context, ownerID string, req CreateNoteRequest) (*domain.Note, error) {
	if err := validateTitle(req.Title); err != nil {
		return nil, err
	}
	if err := validateBody(req.Body); err != nil {
		return nil, err
	}
	tags, err := normalizeTags(req.Tags)
	if err != nil {
		return nil, err
	}

	now := u.timestamp()
	note := &domain.Note{
		OwnerID:    ownerID,
		Title:      strings.TrimSpace(req.Title),
		Body:       req.Body,
		Tags:       tags,
		IsFavorite: false,
		IsTrashed:  false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	return u.noteRepo.Create(ctx, note)
}

// ListActive returns notes that are not in the trash
func (u *noteUsecase) ListActive(ctx context.Context, ownerID string) ([]domain.Note, error) {
	return u.noteRepo.List(ctx, ownerID, domain.CollectionActive)
}

// ListTrashed returns notes in the trash
func (u *noteUsecase) ListTrashed(ctx context.Context, ownerID string) ([]domain.Note, error) {
	return u.noteRepo.List(ctx, ownerID, domain.CollectionTrashed)
}

// GetNote retrieves a note by ID
func (u *noteUsecase) GetNote(ctx context.Context, ownerID, id string) (*domain.Note, error) {
	return u.noteRepo.GetByID(ctx, ownerID, id)
}

// UpdateNote applies the supplied fields and refreshes updatedAt
func (u *noteUsecase) UpdateNote(ctx context.Context, ownerID, id string, req UpdateNoteRequest) (*domain.Note, error) {
	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return nil, err
		}
	}
	if req.Body != nil {
		if err := validateBody(*req.Body); err != nil {
			return nil, err
		}
	}
	var tags []string
	if req.Tags != nil {
		normalized, err := normalizeTags(*req.Tags)
		if err != nil {
			return nil, err
		}
		tags = normalized
	}

	// 既存のノートを取得
	existing, err := u.noteRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	// 更新フィールドを適用
	updated := *existing
	if req.Title != nil {
		updated.Title = strings.TrimSpace(*req.Title)
	}
	if req.Body != nil {
		updated.Body = *req.Body
	}
	if req.Tags != nil {
		updated.Tags = tags
	}
	updated.UpdatedAt = u.timestamp()

	return u.noteRepo.Update(ctx, &updated)
}

// SoftDeleteNote moves a note to the trash. A note already in the trash is returned as is.
func (u *noteUsecase) SoftDeleteNote(ctx context.Context, ownerID, id string) (*domain.Note, error) {
	return u.setTrashed(ctx, ownerID, id, true)
}

// RestoreNote moves a note out of the trash. A note already active is returned as is.
func (u *noteUsecase) RestoreNote(ctx context.Context, ownerID, id string) (*domain.Note, error) {
	return u.setTrashed(ctx, ownerID, id, false)
}

func (u *noteUsecase) setTrashed(ctx context.Context, ownerID, id string, trashed bool) (*domain.Note, error) {
	existing, err := u.noteRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if existing.IsTrashed == trashed {
		return existing, nil
	}
	return u.noteRepo.SetTrashed(ctx, ownerID, id, trashed, u.timestamp())
}

// ToggleFavorite flips isFavorite; the returned note carries the new state
func (u *noteUsecase) ToggleFavorite(ctx context.Context, ownerID, id string) (*domain.Note, error) {
	return u.noteRepo.ToggleFavorite(ctx, ownerID, id, u.timestamp())
}

// PermanentlyDeleteNote destroys a note
func (u *noteUsecase) PermanentlyDeleteNote(ctx context.Context, ownerID, id string) error {
	return u.noteRepo.Delete(ctx, ownerID, id)
}

// timestamp ストアが保持できる精度（ミリ秒）に丸めた現在時刻
func (u *noteUsecase) timestamp() time.Time {
	return u.now().UTC().Truncate(time.Millisecond)
}

func validateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return domain.NewValidationError("title", "Title and content are required")
	}
	if utf8.RuneCountInString(trimmed) > MaxTitleLength {
		return domain.NewValidationError("title", fmt.Sprintf("Title must be at most %d characters", MaxTitleLength))
	}
	return nil
}

func validateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return domain.NewValidationError("body", "Title and content are required")
	}
	return nil
}

// normalizeTags trims tags and removes empty ones and duplicates, keeping the first occurrence
func normalizeTags(tags []string) ([]string, error) {
	result := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))

	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		if utf8.RuneCountInString(trimmed) > MaxTagLength {
			return nil, domain.NewValidationError("tags", fmt.Sprintf("Tag %q must be at most %d characters", trimmed, MaxTagLength))
		}
		seen[trimmed] = true
		result = append(result, trimmed)
	}

	if len(result) > MaxTags {
		return nil, domain.NewValidationError("tags", fmt.Sprintf("A note can have at most %d tags", MaxTags))
	}
	return result, nil
}
