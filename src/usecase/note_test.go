package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"notes-app/src/domain"
	"notes-app/src/infrastructure/repository"
	"notes-app/src/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockNoteRepository は domain.NoteRepository のモック実装
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	args := m.Called(ctx, note)
	if fn, ok := args.Get(0).(func(context.Context, *domain.Note) *domain.Note); ok {
		return fn(ctx, note), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Note, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteRepository) List(ctx context.Context, ownerID string, collection domain.Collection) ([]domain.Note, error) {
	args := m.Called(ctx, ownerID, collection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Note), args.Error(1)
}

func (m *MockNoteRepository) Update(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	args := m.Called(ctx, note)
	if fn, ok := args.Get(0).(func(context.Context, *domain.Note) *domain.Note); ok {
		return fn(ctx, note), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteRepository) SetTrashed(ctx context.Context, ownerID, id string, trashed bool, at time.Time) (*domain.Note, error) {
	args := m.Called(ctx, ownerID, id, trashed, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteRepository) ToggleFavorite(ctx context.Context, ownerID, id string, at time.Time) (*domain.Note, error) {
	args := m.Called(ctx, ownerID, id, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteRepository) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func strPtr(s string) *string { return &s }

func tagsPtr(tags ...string) *[]string {
	if tags == nil {
		tags = []string{}
	}
	return &tags
}

func TestCreateNote(t *testing.T) {
	tests := []struct {
		name      string
		req       usecase.CreateNoteRequest
		wantTags  []string
		wantTitle string
		wantErr   bool
	}{
		{
			name:      "正常な作成",
			req:       usecase.CreateNoteRequest{Title: "  Plan  ", Body: "steps", Tags: []string{" work ", "", "work", "q3"}},
			wantTags:  []string{"work", "q3"},
			wantTitle: "Plan",
		},
		{
			name:      "タグなし",
			req:       usecase.CreateNoteRequest{Title: "Plan", Body: "steps"},
			wantTags:  []string{},
			wantTitle: "Plan",
		},
		{
			name:    "タイトルが空白のみ",
			req:     usecase.CreateNoteRequest{Title: "   ", Body: "steps"},
			wantErr: true,
		},
		{
			name:    "本文が空",
			req:     usecase.CreateNoteRequest{Title: "Plan", Body: ""},
			wantErr: true,
		},
		{
			name:    "タイトルが長すぎる",
			req:     usecase.CreateNoteRequest{Title: strings.Repeat("あ", usecase.MaxTitleLength+1), Body: "x"},
			wantErr: true,
		},
		{
			name:    "タグが長すぎる",
			req:     usecase.CreateNoteRequest{Title: "t", Body: "x", Tags: []string{strings.Repeat("t", usecase.MaxTagLength+1)}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockNoteRepository)
			uc := usecase.NewNoteUsecase(repo, usecase.WithClock(fixedClock))

			if !tt.wantErr {
				repo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Note) bool {
					return n.OwnerID == "alice" && !n.IsFavorite && !n.IsTrashed &&
						n.CreatedAt.Equal(fixedNow) && n.UpdatedAt.Equal(fixedNow)
				})).Return(func(_ context.Context, n *domain.Note) *domain.Note {
					created := *n
					created.ID = "n1"
					return &created
				}, nil)
			}

			note, err := uc.CreateNote(context.Background(), "alice", tt.req)
			if tt.wantErr {
				assert.True(t, domain.IsValidation(err))
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "n1", note.ID)
			assert.Equal(t, tt.wantTitle, note.Title)
			assert.Equal(t, tt.wantTags, note.Tags)
			repo.AssertExpectations(t)
		})
	}
}

func TestCreateNote_TooManyTags(t *testing.T) {
	uc := usecase.NewNoteUsecase(new(MockNoteRepository))

	tags := make([]string, 0, usecase.MaxTags+1)
	for i := 0; i <= usecase.MaxTags; i++ {
		tags = append(tags, strings.Repeat("x", i+1))
	}
	_, err := uc.CreateNote(context.Background(), "alice", usecase.CreateNoteRequest{Title: "t", Body: "b", Tags: tags})
	assert.True(t, domain.IsValidation(err))
}

func TestUpdateNote(t *testing.T) {
	existing := &domain.Note{
		ID: "n1", OwnerID: "alice", Title: "Old", Body: "old body", Tags: []string{"a"},
		CreatedAt: fixedNow.Add(-time.Hour), UpdatedAt: fixedNow.Add(-time.Hour),
	}

	tests := []struct {
		name  string
		req   usecase.UpdateNoteRequest
		check func(t *testing.T, n *domain.Note)
	}{
		{
			name: "タイトルのみ",
			req:  usecase.UpdateNoteRequest{Title: strPtr("New")},
			check: func(t *testing.T, n *domain.Note) {
				assert.Equal(t, "New", n.Title)
				assert.Equal(t, "old body", n.Body)
				assert.Equal(t, []string{"a"}, n.Tags)
			},
		},
		{
			name: "空配列でタグを消去",
			req:  usecase.UpdateNoteRequest{Tags: tagsPtr()},
			check: func(t *testing.T, n *domain.Note) {
				assert.Equal(t, []string{}, n.Tags)
				assert.Equal(t, "Old", n.Title)
			},
		},
		{
			name: "空の更新でもupdatedAtは進む",
			req:  usecase.UpdateNoteRequest{},
			check: func(t *testing.T, n *domain.Note) {
				assert.Equal(t, "Old", n.Title)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockNoteRepository)
			uc := usecase.NewNoteUsecase(repo, usecase.WithClock(fixedClock))

			copied := *existing
			repo.On("GetByID", mock.Anything, "alice", "n1").Return(&copied, nil)
			repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Note")).
				Return(func(_ context.Context, n *domain.Note) *domain.Note { return n }, nil)

			note, err := uc.UpdateNote(context.Background(), "alice", "n1", tt.req)
			require.NoError(t, err)
			assert.Equal(t, fixedNow, note.UpdatedAt)
			assert.Equal(t, existing.CreatedAt, note.CreatedAt)
			tt.check(t, note)
		})
	}
}

func TestUpdateNote_Errors(t *testing.T) {
	t.Run("空のタイトルは拒否", func(t *testing.T) {
		repo := new(MockNoteRepository)
		uc := usecase.NewNoteUsecase(repo)

		_, err := uc.UpdateNote(context.Background(), "alice", "n1", usecase.UpdateNoteRequest{Title: strPtr(" ")})
		assert.True(t, domain.IsValidation(err))
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("存在しないノート", func(t *testing.T) {
		repo := new(MockNoteRepository)
		uc := usecase.NewNoteUsecase(repo)
		repo.On("GetByID", mock.Anything, "alice", "missing").Return(nil, domain.ErrNoteNotFound)

		_, err := uc.UpdateNote(context.Background(), "alice", "missing", usecase.UpdateNoteRequest{Body: strPtr("x")})
		assert.ErrorIs(t, err, domain.ErrNoteNotFound)
	})
}

func TestSoftDeleteAndRestore(t *testing.T) {
	t.Run("アクティブなノートをゴミ箱へ", func(t *testing.T) {
		repo := new(MockNoteRepository)
		uc := usecase.NewNoteUsecase(repo, usecase.WithClock(fixedClock))
		active := &domain.Note{ID: "n1", OwnerID: "alice"}
		trashed := &domain.Note{ID: "n1", OwnerID: "alice", IsTrashed: true, UpdatedAt: fixedNow}

		repo.On("GetByID", mock.Anything, "alice", "n1").Return(active, nil)
		repo.On("SetTrashed", mock.Anything, "alice", "n1", true, fixedNow).Return(trashed, nil)

		note, err := uc.SoftDeleteNote(context.Background(), "alice", "n1")
		require.NoError(t, err)
		assert.True(t, note.IsTrashed)
		repo.AssertExpectations(t)
	})

	t.Run("既にゴミ箱にある場合は何もしない", func(t *testing.T) {
		repo := new(MockNoteRepository)
		uc := usecase.NewNoteUsecase(repo, usecase.WithClock(fixedClock))
		trashed := &domain.Note{ID: "n1", OwnerID: "alice", IsTrashed: true}

		repo.On("GetByID", mock.Anything, "alice", "n1").Return(trashed, nil)

		note, err := uc.SoftDeleteNote(context.Background(), "alice", "n1")
		require.NoError(t, err)
		assert.Same(t, trashed, note)
		repo.AssertNotCalled(t, "SetTrashed", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("既にアクティブなノートの復元", func(t *testing.T) {
		repo := new(MockNoteRepository)
		uc := usecase.NewNoteUsecase(repo)
		active := &domain.Note{ID: "n1", OwnerID: "alice"}

		repo.On("GetByID", mock.Anything, "alice", "n1").Return(active, nil)

		note, err := uc.RestoreNote(context.Background(), "alice", "n1")
		require.NoError(t, err)
		assert.False(t, note.IsTrashed)
	})

	t.Run("ストレージ障害", func(t *testing.T) {
		repo := new(MockNoteRepository)
		uc := usecase.NewNoteUsecase(repo)
		repo.On("GetByID", mock.Anything, "alice", "n1").
			Return(nil, domain.NewTransientError("get note", errors.New("conn refused")))

		_, err := uc.RestoreNote(context.Background(), "alice", "n1")
		assert.True(t, domain.IsTransient(err))
	})
}

func TestNoteTimestampsMatchStoredPrecision(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	now := time.Date(2024, 5, 10, 21, 0, 0, 123456789, jst)
	clock := func() time.Time { return now }
	uc := usecase.NewNoteUsecase(repository.NewMemoryNoteRepository(), usecase.WithClock(clock))
	ctx := context.Background()

	want := time.Date(2024, 5, 10, 12, 0, 0, 123000000, time.UTC)

	created, err := uc.CreateNote(ctx, "alice", usecase.CreateNoteRequest{Title: "t", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, want, created.CreatedAt)
	assert.Equal(t, want, created.UpdatedAt)

	title := "t2"
	updated, err := uc.UpdateNote(ctx, "alice", created.ID, usecase.UpdateNoteRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, want, updated.UpdatedAt)

	fav, err := uc.ToggleFavorite(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, want, fav.UpdatedAt)
}

// メモリリポジトリを使ったライフサイクル全体のテスト
func TestNoteLifecycle(t *testing.T) {
	now := fixedNow
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	uc := usecase.NewNoteUsecase(repository.NewMemoryNoteRepository(), usecase.WithClock(clock))
	ctx := context.Background()

	first, err := uc.CreateNote(ctx, "alice", usecase.CreateNoteRequest{Title: "First", Body: "1"})
	require.NoError(t, err)
	second, err := uc.CreateNote(ctx, "alice", usecase.CreateNoteRequest{Title: "Second", Body: "2", Tags: []string{"x"}})
	require.NoError(t, err)

	active, err := uc.ListActive(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, second.ID, active[0].ID)

	// 他ユーザーからは見えない
	others, err := uc.ListActive(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, others)
	_, err = uc.GetNote(ctx, "bob", first.ID)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)

	fav, err := uc.ToggleFavorite(ctx, "alice", first.ID)
	require.NoError(t, err)
	assert.True(t, fav.IsFavorite)
	assert.True(t, fav.UpdatedAt.After(first.UpdatedAt))

	trashed, err := uc.SoftDeleteNote(ctx, "alice", first.ID)
	require.NoError(t, err)
	assert.True(t, trashed.IsTrashed)
	assert.True(t, trashed.IsFavorite)

	trash, err := uc.ListTrashed(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, trash, 1)

	restored, err := uc.RestoreNote(ctx, "alice", first.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsTrashed)
	assert.Equal(t, first.CreatedAt, restored.CreatedAt)

	require.NoError(t, uc.PermanentlyDeleteNote(ctx, "alice", second.ID))
	_, err = uc.GetNote(ctx, "alice", second.ID)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
	assert.ErrorIs(t, uc.PermanentlyDeleteNote(ctx, "alice", second.ID), domain.ErrNoteNotFound)
}
