package contents_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/nasermirzaei89/murmur/contents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryImageStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryImageStore() *memoryImageStore {
	return &memoryImageStore{objects: make(map[string][]byte)}
}

func (store *memoryImageStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	store.objects[key] = data

	return "https://cdn.example.com/" + key, nil
}

func (store *memoryImageStore) Delete(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.objects, key)

	return nil
}

func (store *memoryImageStore) has(key string) bool {
	store.mu.Lock()
	defer store.mu.Unlock()

	_, ok := store.objects[key]

	return ok
}

type memoryTweetRepo struct {
	mu         sync.Mutex
	tweets     []*contents.Tweet
	failInsert bool
}

var _ contents.TweetRepository = (*memoryTweetRepo)(nil)

func (repo *memoryTweetRepo) Insert(_ context.Context, tweet *contents.Tweet) error {
	if repo.failInsert {
		return errors.New("store unavailable")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	t := *tweet
	repo.tweets = append(repo.tweets, &t)

	return nil
}

func (repo *memoryTweetRepo) Find(_ context.Context, tweetID string) (*contents.Tweet, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, tweet := range repo.tweets {
		if tweet.ID == tweetID {
			t := *tweet

			return &t, nil
		}
	}

	return nil, &contents.TweetNotFoundError{ID: tweetID}
}

func (repo *memoryTweetRepo) filter(ownerID string) []*contents.Tweet {
	res := make([]*contents.Tweet, 0)

	for i := len(repo.tweets) - 1; i >= 0; i-- {
		if ownerID == "" || repo.tweets[i].OwnerID == ownerID {
			res = append(res, repo.tweets[i])
		}
	}

	return res
}

func (repo *memoryTweetRepo) List(_ context.Context, params *contents.ListTweetsParams) ([]*contents.TweetView, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	matched := repo.filter(params.OwnerID)
	res := make([]*contents.TweetView, 0)

	for i := params.Offset; i < len(matched) && i < params.Offset+params.Limit; i++ {
		res = append(res, &contents.TweetView{Tweet: *matched[i]})
	}

	return res, nil
}

func (repo *memoryTweetRepo) Count(_ context.Context, ownerID string) (int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	return len(repo.filter(ownerID)), nil
}

func (repo *memoryTweetRepo) UpdateContent(_ context.Context, params *contents.UpdateContentParams) (*contents.Tweet, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, tweet := range repo.tweets {
		if tweet.ID != params.TweetID {
			continue
		}

		if tweet.OwnerID != params.OwnerID {
			return nil, &contents.NotTweetOwnerError{TweetID: params.TweetID, UserID: params.OwnerID}
		}

		tweet.Content = params.Content
		tweet.UpdatedAt = params.UpdatedAt
		t := *tweet

		return &t, nil
	}

	return nil, &contents.TweetNotFoundError{ID: params.TweetID}
}

func (repo *memoryTweetRepo) Delete(_ context.Context, tweetID, ownerID string) (*contents.Tweet, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for i, tweet := range repo.tweets {
		if tweet.ID != tweetID {
			continue
		}

		if tweet.OwnerID != ownerID {
			return nil, &contents.NotTweetOwnerError{TweetID: tweetID, UserID: ownerID}
		}

		repo.tweets = slices.Delete(repo.tweets, i, i+1)

		return tweet, nil
	}

	return nil, &contents.TweetNotFoundError{ID: tweetID}
}

func newTestService(t *testing.T) (*contents.BaseService, *memoryTweetRepo, *memoryImageStore) {
	t.Helper()

	repo := &memoryTweetRepo{}
	store := newMemoryImageStore()

	svc, err := contents.NewService(repo, store)
	require.NoError(t, err)

	return svc, repo, store
}

func TestNewService_NilImageStore(t *testing.T) {
	_, err := contents.NewService(&memoryTweetRepo{}, nil)
	require.ErrorIs(t, err, contents.ErrNilImageStore)
}

func TestBaseService_CreateTweet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ownerID := uuid.NewString()
	png := []byte("\x89PNG fake")

	tests := []struct {
		name    string
		req     contents.CreateTweetRequest
		wantErr bool
	}{
		{
			name: "text only",
			req:  contents.CreateTweetRequest{OwnerID: ownerID, Content: "hello"},
		},
		{
			name: "with image",
			req: contents.CreateTweetRequest{
				OwnerID: ownerID,
				Content: "look",
				Image:   &contents.ImageUpload{Reader: bytes.NewReader(png), Size: int64(len(png)), ContentType: "image/png"},
			},
		},
		{
			name:    "blank content",
			req:     contents.CreateTweetRequest{OwnerID: ownerID, Content: "   "},
			wantErr: true,
		},
		{
			name:    "too long",
			req:     contents.CreateTweetRequest{OwnerID: ownerID, Content: strings.Repeat("é", contents.MaxContentLength+1)},
			wantErr: true,
		},
		{
			name:    "missing owner",
			req:     contents.CreateTweetRequest{Content: "hello"},
			wantErr: true,
		},
		{
			name: "unsupported image type",
			req: contents.CreateTweetRequest{
				OwnerID: ownerID,
				Content: "look",
				Image:   &contents.ImageUpload{Reader: bytes.NewReader(png), Size: int64(len(png)), ContentType: "application/pdf"},
			},
			wantErr: true,
		},
		{
			name: "image too large",
			req: contents.CreateTweetRequest{
				OwnerID: ownerID,
				Content: "look",
				Image:   &contents.ImageUpload{Reader: bytes.NewReader(png), Size: contents.MaxImageSize + 1, ContentType: "image/png"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, _, store := newTestService(t)

			tweet, err := svc.CreateTweet(ctx, tt.req)
			if tt.wantErr {
				var invalidArgErr *contents.InvalidArgumentError
				require.ErrorAs(t, err, &invalidArgErr)
				assert.Empty(t, store.objects)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.req.OwnerID, tweet.OwnerID)
			assert.Equal(t, tt.req.Content, tweet.Content)

			if tt.req.Image != nil {
				assert.Equal(t, "tweets/"+tweet.ID+".png", tweet.ImageKey)
				assert.Equal(t, "https://cdn.example.com/tweets/"+tweet.ID+".png", tweet.ImageURL)
				assert.True(t, store.has(tweet.ImageKey))
			} else {
				assert.Empty(t, tweet.ImageURL)
			}
		})
	}
}

func TestBaseService_CreateTweet_RemovesImageOnInsertFailure(t *testing.T) {
	t.Parallel()

	svc, repo, store := newTestService(t)
	repo.failInsert = true

	data := []byte("gif")

	_, err := svc.CreateTweet(context.Background(), contents.CreateTweetRequest{
		OwnerID: "U1",
		Content: "hello",
		Image:   &contents.ImageUpload{Reader: bytes.NewReader(data), Size: int64(len(data)), ContentType: "image/gif"},
	})
	require.Error(t, err)
	assert.Empty(t, store.objects)
}

func TestBaseService_ListTweets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newTestService(t)

	for i := range 12 {
		ownerID := "U1"
		if i%3 == 0 {
			ownerID = "U2"
		}

		_, err := svc.CreateTweet(ctx, contents.CreateTweetRequest{OwnerID: ownerID, Content: "tweet"})
		require.NoError(t, err)
	}

	page, err := svc.ListTweets(ctx, contents.ListTweetsRequest{})
	require.NoError(t, err)
	assert.Len(t, page.Tweets, 10)
	assert.Equal(t, 12, page.TotalTweets)
	assert.Equal(t, 2, page.TotalPages)

	page, err = svc.ListTweets(ctx, contents.ListTweetsRequest{OwnerID: "U2", Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Tweets, 2)
	assert.Equal(t, 12, page.TotalTweets)

	page, err = svc.ListUserTweets(ctx, contents.ListTweetsRequest{OwnerID: "U2"})
	require.NoError(t, err)
	assert.Len(t, page.Tweets, 4)
	assert.Equal(t, 4, page.TotalTweets)
	assert.Equal(t, 1, page.TotalPages)

	for _, tweet := range page.Tweets {
		assert.Equal(t, "U2", tweet.OwnerID)
	}

	_, err = svc.ListUserTweets(ctx, contents.ListTweetsRequest{})

	var invalidArgErr *contents.InvalidArgumentError
	require.ErrorAs(t, err, &invalidArgErr)

	page, err = svc.ListUserTweets(ctx, contents.ListTweetsRequest{OwnerID: uuid.NewString()})
	require.NoError(t, err)
	assert.NotNil(t, page.Tweets)
	assert.Empty(t, page.Tweets)
}

func TestBaseService_UpdateTweet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo, _ := newTestService(t)

	tweet, err := svc.CreateTweet(ctx, contents.CreateTweetRequest{OwnerID: "U1", Content: "first"})
	require.NoError(t, err)

	_, err = svc.UpdateTweet(ctx, contents.UpdateTweetRequest{TweetID: tweet.ID, RequesterID: "U2", Content: "hijack"})

	var notOwnerErr *contents.NotTweetOwnerError
	require.ErrorAs(t, err, &notOwnerErr)

	stored, err := repo.Find(ctx, tweet.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", stored.Content)

	updated, err := svc.UpdateTweet(ctx, contents.UpdateTweetRequest{TweetID: tweet.ID, RequesterID: "U1", Content: "second"})
	require.NoError(t, err)
	assert.Equal(t, "second", updated.Content)

	_, err = svc.UpdateTweet(ctx, contents.UpdateTweetRequest{TweetID: uuid.NewString(), RequesterID: "U1", Content: "x"})

	var notFoundErr *contents.TweetNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestBaseService_DeleteTweet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, store := newTestService(t)

	data := []byte("jpeg")

	tweet, err := svc.CreateTweet(ctx, contents.CreateTweetRequest{
		OwnerID: "U1",
		Content: "pic",
		Image:   &contents.ImageUpload{Reader: bytes.NewReader(data), Size: int64(len(data)), ContentType: "image/jpeg"},
	})
	require.NoError(t, err)
	require.True(t, store.has(tweet.ImageKey))

	err = svc.DeleteTweet(ctx, contents.DeleteTweetRequest{TweetID: tweet.ID, RequesterID: "U2"})

	var notOwnerErr *contents.NotTweetOwnerError
	require.ErrorAs(t, err, &notOwnerErr)
	assert.True(t, store.has(tweet.ImageKey))

	err = svc.DeleteTweet(ctx, contents.DeleteTweetRequest{TweetID: tweet.ID, RequesterID: "U1"})
	require.NoError(t, err)
	assert.False(t, store.has(tweet.ImageKey))

	err = svc.DeleteTweet(ctx, contents.DeleteTweetRequest{TweetID: tweet.ID, RequesterID: "U1"})

	var notFoundErr *contents.TweetNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}
