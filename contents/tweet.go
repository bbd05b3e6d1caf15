package contents

import (
	"context"
	"fmt"
	"io"
	"time"
)

type Tweet struct {
	ID      string
	OwnerID string
	Content string
	// ImageKey is the object store key of the attached image, empty when there is none.
	ImageKey  string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OwnerSummary struct {
	Username  string
	AvatarURL string
}

type TweetView struct {
	Tweet

	Owner      OwnerSummary
	LikesCount int
	HasLiked   bool
}

type TweetPage struct {
	Tweets      []*TweetView
	TotalTweets int
	Page        int
	TotalPages  int
}

type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) (err error)
}

type TweetRepository interface {
	Insert(ctx context.Context, tweet *Tweet) (err error)
	Find(ctx context.Context, tweetID string) (tweet *Tweet, err error)
	List(ctx context.Context, params *ListTweetsParams) (tweets []*TweetView, err error)
	Count(ctx context.Context, ownerID string) (count int, err error)
	UpdateContent(ctx context.Context, params *UpdateContentParams) (tweet *Tweet, err error)
	// Delete removes the tweet and its likes and returns the removed tweet.
	Delete(ctx context.Context, tweetID, ownerID string) (tweet *Tweet, err error)
}

type ListTweetsParams struct {
	// OwnerID filters by owner when not empty.
	OwnerID  string
	ViewerID string
	Limit    int
	Offset   int
}

type UpdateContentParams struct {
	TweetID   string
	OwnerID   string
	Content   string
	UpdatedAt time.Time
}

type TweetNotFoundError struct {
	ID string
}

func (err TweetNotFoundError) Error() string {
	return fmt.Sprintf("tweet with id %q not found", err.ID)
}

type NotTweetOwnerError struct {
	TweetID string
	UserID  string
}

func (err NotTweetOwnerError) Error() string {
	return fmt.Sprintf("user %q is not the owner of tweet %q", err.UserID, err.TweetID)
}

type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (err InvalidArgumentError) Error() string {
	return err.Field + " " + err.Reason
}
