package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/Gentlecoder1/social-app/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeRepository_InsertUsesOnConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)
	postID := uuid.New()

	tests := []struct {
		name string
		rows *sqlmock.Rows
		want bool
	}{
		{"inserted", sqlmock.NewRows([]string{"id"}).AddRow(7), true},
		{"already liked", sqlmock.NewRows([]string{"id"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock.ExpectBegin()
			mock.ExpectQuery(`INSERT INTO "likes" .* ON CONFLICT \("post_id","user_id"\) DO NOTHING`).
				WillReturnRows(tt.rows)
			mock.ExpectCommit()

			got, err := repo.Insert(context.Background(), postID, 3)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLikeRepository_DeleteIsHard(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)
	postID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes" WHERE post_id = $1 AND user_id = $2`)).
		WithArgs(postID, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	removed, err := repo.Delete(context.Background(), postID, 3)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository_Lifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice.ID, "hello")
	other := testutil.CreatePost(t, db, alice.ID, "second")

	inserted, err := repo.Insert(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Insert(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, inserted, "second insert for the same pair is a no-op")

	n, err := repo.Count(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	liked, err := repo.LikedPostIDs(ctx, bob.ID, []uuid.UUID{post.ID, other.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{post.ID}, liked)

	removed, err := repo.Delete(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	exists, err := repo.Exists(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
