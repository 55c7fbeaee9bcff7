package repository

import (
	"context"
	"errors"
	"time"

	"notes-app/src/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const notesCollection = "notes"

// MongoNoteRepository implements domain.NoteRepository on a MongoDB collection
type MongoNoteRepository struct {
	coll   *mongo.Collection
	logger *logrus.Logger
}

var _ domain.NoteRepository = (*MongoNoteRepository)(nil)

// NewMongoNoteRepository creates a note repository over db.notes
func NewMongoNoteRepository(db *mongo.Database, logger *logrus.Logger) *MongoNoteRepository {
	return &MongoNoteRepository{
		coll:   db.Collection(notesCollection),
		logger: logger,
	}
}

// EnsureIndexes creates the index used by List
func (r *MongoNoteRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "is_trashed", Value: 1}, {Key: "updated_at", Value: -1}},
	})
	if err != nil {
		return domain.NewTransientError("create note index", err)
	}
	return nil
}

func ownedBy(ownerID, id string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "owner_id", Value: ownerID}}
}

func withTags(n *domain.Note) *domain.Note {
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return n
}

// Create inserts the note under a new ID
func (r *MongoNoteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	created := *note
	created.ID = uuid.NewString()
	withTags(&created)

	if _, err := r.coll.InsertOne(ctx, created); err != nil {
		r.logger.WithError(err).Error("ノートの作成に失敗")
		return nil, domain.NewTransientError("create note", err)
	}
	return &created, nil
}

// GetByID returns the owner's note
func (r *MongoNoteRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Note, error) {
	var note domain.Note
	if err := r.coll.FindOne(ctx, ownedBy(ownerID, id)).Decode(&note); err != nil {
		return nil, r.mapError("get note", err)
	}
	return withTags(&note), nil
}

// List returns the owner's notes in one collection, most recently updated first
func (r *MongoNoteRepository) List(ctx context.Context, ownerID string, collection domain.Collection) ([]domain.Note, error) {
	filter := bson.D{{Key: "owner_id", Value: ownerID}, {Key: "is_trashed", Value: collection.Trashed()}}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		r.logger.WithError(err).Error("Failed to list notes")
		return nil, domain.NewTransientError("list notes", err)
	}

	notes := []domain.Note{}
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, domain.NewTransientError("decode notes", err)
	}
	for i := range notes {
		withTags(&notes[i])
	}
	return notes, nil
}

// Update overwrites title, body, tags and updated_at
func (r *MongoNoteRepository) Update(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	tags := note.Tags
	if tags == nil {
		tags = []string{}
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: note.Title},
		{Key: "body", Value: note.Body},
		{Key: "tags", Value: tags},
		{Key: "updated_at", Value: note.UpdatedAt},
	}}}
	return r.findOneAndUpdate(ctx, "update note", ownedBy(note.OwnerID, note.ID), update)
}

// SetTrashed moves a note in or out of the trash
func (r *MongoNoteRepository) SetTrashed(ctx context.Context, ownerID, id string, trashed bool, at time.Time) (*domain.Note, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "is_trashed", Value: trashed},
		{Key: "updated_at", Value: at},
	}}}
	return r.findOneAndUpdate(ctx, "set trashed", ownedBy(ownerID, id), update)
}

// ToggleFavorite flips is_favorite with an aggregation pipeline update
func (r *MongoNoteRepository) ToggleFavorite(ctx context.Context, ownerID, id string, at time.Time) (*domain.Note, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "is_favorite", Value: bson.D{{Key: "$not", Value: bson.A{"$is_favorite"}}}},
			{Key: "updated_at", Value: at},
		}}},
	}
	return r.findOneAndUpdate(ctx, "toggle favorite", ownedBy(ownerID, id), update)
}

// Delete permanently deletes a note
func (r *MongoNoteRepository) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.coll.DeleteOne(ctx, ownedBy(ownerID, id))
	if err != nil {
		r.logger.WithError(err).Error("Failed to permanently delete note")
		return domain.NewTransientError("delete note", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func (r *MongoNoteRepository) findOneAndUpdate(ctx context.Context, op string, filter bson.D, update interface{}) (*domain.Note, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var note domain.Note
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&note); err != nil {
		return nil, r.mapError(op, err)
	}
	return withTags(&note), nil
}

func (r *MongoNoteRepository) mapError(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNoteNotFound
	}
	r.logger.WithError(err).WithField("op", op).Error("ノート操作に失敗")
	return domain.NewTransientError(op, err)
}
