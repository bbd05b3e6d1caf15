package reactions_test

import (
	"context"
	"sync"
	"testing"

	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/google/uuid"
	authcontext "github.com/nasermirzaei89/murmur/authentication/context"
	"github.com/nasermirzaei89/murmur/authorization"
	"github.com/nasermirzaei89/murmur/authorization/casbin"
	"github.com/nasermirzaei89/murmur/reactions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type likeKey struct {
	targetType reactions.TargetType
	targetID   string
	userID     string
}

type memoryLikeRepo struct {
	mu      sync.Mutex
	targets map[string]bool
	likes   map[likeKey]*reactions.Like
}

var _ reactions.LikeRepository = (*memoryLikeRepo)(nil)

func newMemoryLikeRepo(targets ...string) *memoryLikeRepo {
	repo := &memoryLikeRepo{
		targets: make(map[string]bool),
		likes:   make(map[likeKey]*reactions.Like),
	}

	for _, target := range targets {
		repo.targets[target] = true
	}

	return repo
}

func (repo *memoryLikeRepo) TargetExists(_ context.Context, targetType reactions.TargetType, targetID string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	return repo.targets[string(targetType)+":"+targetID], nil
}

func (repo *memoryLikeRepo) Insert(_ context.Context, like *reactions.Like) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	key := likeKey{like.TargetType, like.TargetID, like.UserID}
	if _, ok := repo.likes[key]; !ok {
		repo.likes[key] = like
	}

	return nil
}

func (repo *memoryLikeRepo) DeleteByUserTarget(
	_ context.Context,
	targetType reactions.TargetType,
	targetID string,
	userID string,
) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	key := likeKey{targetType, targetID, userID}
	if _, ok := repo.likes[key]; !ok {
		return false, nil
	}

	delete(repo.likes, key)

	return true, nil
}

func TestBaseService_ToggleLike(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	commentID := uuid.NewString()
	tweetID := uuid.NewString()

	repo := newMemoryLikeRepo("comment:"+commentID, "tweet:"+tweetID)
	svc := reactions.NewService(repo)

	liked, err := svc.ToggleLike(ctx, reactions.ToggleLikeRequest{TargetType: reactions.TargetTypeComment, TargetID: commentID, UserID: "U1"})
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = svc.ToggleLike(ctx, reactions.ToggleLikeRequest{TargetType: reactions.TargetTypeComment, TargetID: commentID, UserID: "U2"})
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Len(t, repo.likes, 2)

	liked, err = svc.ToggleLike(ctx, reactions.ToggleLikeRequest{TargetType: reactions.TargetTypeComment, TargetID: commentID, UserID: "U1"})
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Len(t, repo.likes, 1)

	liked, err = svc.ToggleLike(ctx, reactions.ToggleLikeRequest{TargetType: reactions.TargetTypeTweet, TargetID: tweetID, UserID: "U1"})
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestBaseService_ToggleLike_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	commentID := uuid.NewString()
	svc := reactions.NewService(newMemoryLikeRepo("comment:" + commentID))

	tests := []struct {
		name        string
		req         reactions.ToggleLikeRequest
		notFound    bool
		invalidArgs bool
	}{
		{
			name:        "unknown target type",
			req:         reactions.ToggleLikeRequest{TargetType: "video", TargetID: commentID, UserID: "U1"},
			invalidArgs: true,
		},
		{
			name:        "missing target id",
			req:         reactions.ToggleLikeRequest{TargetType: reactions.TargetTypeComment, UserID: "U1"},
			invalidArgs: true,
		},
		{
			name:        "missing user",
			req:         reactions.ToggleLikeRequest{TargetType: reactions.TargetTypeComment, TargetID: commentID},
			invalidArgs: true,
		},
		{
			name:     "missing comment",
			req:      reactions.ToggleLikeRequest{TargetType: reactions.TargetTypeComment, TargetID: uuid.NewString(), UserID: "U1"},
			notFound: true,
		},
		{
			name:     "comment id used as tweet",
			req:      reactions.ToggleLikeRequest{TargetType: reactions.TargetTypeTweet, TargetID: commentID, UserID: "U1"},
			notFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.ToggleLike(ctx, tt.req)
			require.Error(t, err)

			if tt.invalidArgs {
				var invalidArgErr *reactions.InvalidArgumentError
				assert.ErrorAs(t, err, &invalidArgErr)
			}

			if tt.notFound {
				var notFoundErr *reactions.TargetNotFoundError
				assert.ErrorAs(t, err, &notFoundErr)
			}
		})
	}
}

func TestAuthorizationMiddleware(t *testing.T) {
	ctx := context.Background()

	provider, err := casbin.NewAuthorizationProvider(stringadapter.NewAdapter(
		"p, system:authenticated, murmur/reactions, *, toggleLike",
	))
	require.NoError(t, err)

	authzSvc, err := authorization.NewService(provider)
	require.NoError(t, err)

	commentID := uuid.NewString()
	svc := reactions.NewAuthorizationMiddleware(
		authorization.NewClient(authzSvc),
		reactions.NewService(newMemoryLikeRepo("comment:"+commentID)),
	)

	req := reactions.ToggleLikeRequest{TargetType: reactions.TargetTypeComment, TargetID: commentID, UserID: "U1"}

	_, err = svc.ToggleLike(ctx, req)

	accessDeniedErr := &authorization.AccessDeniedError{}
	require.ErrorAs(t, err, &accessDeniedErr)

	liked, err := svc.ToggleLike(authcontext.WithSubject(ctx, "U1"), req)
	require.NoError(t, err)
	assert.True(t, liked)
}
