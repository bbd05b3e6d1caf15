package sqlite3_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nasermirzaei89/murmur/db/sqlite3"
	"github.com/nasermirzaei89/murmur/discuss"
	"github.com/nasermirzaei89/murmur/reactions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := sqlite3.NewLikeRepository(db)

	alice := createTestUser(t, db, "alice")

	comment := newTestComment(discuss.VideoParent("V1"), alice.ID, "hello")
	require.NoError(t, sqlite3.NewCommentRepository(db).Insert(ctx, comment))

	exists, err := repo.TargetExists(ctx, reactions.TargetTypeComment, comment.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.TargetExists(ctx, reactions.TargetTypeTweet, comment.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.TargetExists(ctx, "video", comment.ID)
	require.Error(t, err)

	like := &reactions.Like{
		ID:         uuid.NewString(),
		TargetType: reactions.TargetTypeComment,
		TargetID:   comment.ID,
		UserID:     alice.ID,
		CreatedAt:  time.Now(),
	}

	require.NoError(t, repo.Insert(ctx, like))

	duplicate := *like
	duplicate.ID = uuid.NewString()
	require.NoError(t, repo.Insert(ctx, &duplicate))

	deleted, err := repo.DeleteByUserTarget(ctx, reactions.TargetTypeComment, comment.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteByUserTarget(ctx, reactions.TargetTypeComment, comment.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestReactionsService_ToggleLike(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := reactions.NewService(sqlite3.NewLikeRepository(db))
	commentRepo := sqlite3.NewCommentRepository(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	comment := newTestComment(discuss.VideoParent("V1"), alice.ID, "hello")
	require.NoError(t, commentRepo.Insert(ctx, comment))

	liked, err := svc.ToggleLike(ctx, reactions.ToggleLikeRequest{TargetType: reactions.TargetTypeComment, TargetID: comment.ID, UserID: bob.ID})
	require.NoError(t, err)
	assert.True(t, liked)

	views, err := commentRepo.List(ctx, &discuss.ListCommentsParams{Parent: discuss.VideoParent("V1"), ViewerID: bob.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 1, views[0].LikesCount)
	assert.True(t, views[0].HasLiked)

	liked, err = svc.ToggleLike(ctx, reactions.ToggleLikeRequest{TargetType: reactions.TargetTypeComment, TargetID: comment.ID, UserID: bob.ID})
	require.NoError(t, err)
	assert.False(t, liked)

	views, err = commentRepo.List(ctx, &discuss.ListCommentsParams{Parent: discuss.VideoParent("V1"), ViewerID: bob.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 0, views[0].LikesCount)
	assert.False(t, views[0].HasLiked)

	_, err = svc.ToggleLike(ctx, reactions.ToggleLikeRequest{TargetType: reactions.TargetTypeTweet, TargetID: uuid.NewString(), UserID: bob.ID})

	var notFoundErr *reactions.TargetNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}
