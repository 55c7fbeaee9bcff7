package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"notes-app/src/database"
	"notes-app/src/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const noteColumns = "id, owner_id, title, body, tags, is_favorite, is_trashed, created_at, updated_at"

// PostgresNoteRepository implements domain.NoteRepository on PostgreSQL
type PostgresNoteRepository struct {
	db     *database.DB
	logger *logrus.Logger
}

var _ domain.NoteRepository = (*PostgresNoteRepository)(nil)

// NewPostgresNoteRepository creates a new note repository
func NewPostgresNoteRepository(db *database.DB, logger *logrus.Logger) *PostgresNoteRepository {
	return &PostgresNoteRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(row rowScanner) (*domain.Note, error) {
	var note domain.Note
	var tags pq.StringArray

	err := row.Scan(
		&note.ID, &note.OwnerID, &note.Title, &note.Body, &tags,
		&note.IsFavorite, &note.IsTrashed, &note.CreatedAt, &note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	note.Tags = []string(tags)
	if note.Tags == nil {
		note.Tags = []string{}
	}
	return &note, nil
}

// Create creates a new note
func (r *PostgresNoteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	created := *note
	created.ID = uuid.NewString()
	if created.Tags == nil {
		created.Tags = []string{}
	}

	query := `
		INSERT INTO notes (` + noteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		created.ID, created.OwnerID, created.Title, created.Body, pq.Array(created.Tags),
		created.IsFavorite, created.IsTrashed, created.CreatedAt, created.UpdatedAt,
	)
	if err != nil {
		r.logger.WithError(err).Error("ノートの作成に失敗")
		return nil, domain.NewTransientError("create note", err)
	}

	r.logger.WithFields(logrus.Fields{
		"note_id":  created.ID,
		"owner_id": created.OwnerID,
	}).Debug("ノートを作成しました")
	return &created, nil
}

// GetByID retrieves a note by ID for a specific owner
func (r *PostgresNoteRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1 AND owner_id = $2`

	note, err := scanNote(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		return nil, r.mapError("get note", err)
	}
	return note, nil
}

// List retrieves the owner's notes in one collection, most recently updated first
func (r *PostgresNoteRepository) List(ctx context.Context, ownerID string, collection domain.Collection) ([]domain.Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE owner_id = $1 AND is_trashed = $2
		ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID, collection.Trashed())
	if err != nil {
		r.logger.WithError(err).Error("Failed to list notes")
		return nil, domain.NewTransientError("list notes", err)
	}
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			r.logger.WithError(err).Error("Failed to scan note")
			return nil, domain.NewTransientError("scan note", err)
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewTransientError("list notes", err)
	}

	return notes, nil
}

// Update overwrites the editable fields of a note in a single statement
func (r *PostgresNoteRepository) Update(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	tags := note.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
		UPDATE notes
		SET title = $1, body = $2, tags = $3, updated_at = $4
		WHERE id = $5 AND owner_id = $6
		RETURNING ` + noteColumns

	updated, err := scanNote(r.db.QueryRowContext(ctx, query,
		note.Title, note.Body, pq.Array(tags), note.UpdatedAt, note.ID, note.OwnerID,
	))
	if err != nil {
		return nil, r.mapError("update note", err)
	}
	return updated, nil
}

// SetTrashed moves a note in or out of the trash
func (r *PostgresNoteRepository) SetTrashed(ctx context.Context, ownerID, id string, trashed bool, at time.Time) (*domain.Note, error) {
	query := `
		UPDATE notes SET is_trashed = $1, updated_at = $2
		WHERE id = $3 AND owner_id = $4
		RETURNING ` + noteColumns

	note, err := scanNote(r.db.QueryRowContext(ctx, query, trashed, at, id, ownerID))
	if err != nil {
		return nil, r.mapError("set trashed", err)
	}
	return note, nil
}

// ToggleFavorite flips is_favorite atomically
func (r *PostgresNoteRepository) ToggleFavorite(ctx context.Context, ownerID, id string, at time.Time) (*domain.Note, error) {
	query := `
		UPDATE notes SET is_favorite = NOT is_favorite, updated_at = $1
		WHERE id = $2 AND owner_id = $3
		RETURNING ` + noteColumns

	note, err := scanNote(r.db.QueryRowContext(ctx, query, at, id, ownerID))
	if err != nil {
		return nil, r.mapError("toggle favorite", err)
	}
	return note, nil
}

// Delete permanently deletes a note
func (r *PostgresNoteRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM notes WHERE id = $1 AND owner_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		r.logger.WithError(err).Error("Failed to permanently delete note")
		return domain.NewTransientError("delete note", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.NewTransientError("delete note", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNoteNotFound
	}

	return nil
}

func (r *PostgresNoteRepository) mapError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNoteNotFound
	}
	r.logger.WithError(err).WithField("op", op).Error("ノート操作に失敗")
	return domain.NewTransientError(op, err)
}
