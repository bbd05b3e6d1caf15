package contents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/nasermirzaei89/murmur/pagination"
)

const (
	ServiceName = "murmur/contents"

	MaxContentLength = 280
	MaxImageSize     = 5 << 20
)

var ErrNilImageStore = errors.New("image store is nil")

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Service interface {
	CreateTweet(ctx context.Context, req CreateTweetRequest) (*Tweet, error)
	ListTweets(ctx context.Context, req ListTweetsRequest) (*TweetPage, error)
	ListUserTweets(ctx context.Context, req ListTweetsRequest) (*TweetPage, error)
	UpdateTweet(ctx context.Context, req UpdateTweetRequest) (*Tweet, error)
	DeleteTweet(ctx context.Context, req DeleteTweetRequest) error
}

type BaseService struct {
	tweetRepo  TweetRepository
	imageStore ImageStore
}

var _ Service = (*BaseService)(nil)

func NewService(tweetRepo TweetRepository, imageStore ImageStore) (*BaseService, error) {
	if imageStore == nil {
		return nil, ErrNilImageStore
	}

	return &BaseService{
		tweetRepo:  tweetRepo,
		imageStore: imageStore,
	}, nil
}

type CreateTweetRequest struct {
	OwnerID string
	Content string
	Image   *ImageUpload
}

func (svc *BaseService) CreateTweet(ctx context.Context, req CreateTweetRequest) (*Tweet, error) {
	if req.OwnerID == "" {
		return nil, &InvalidArgumentError{Field: "owner", Reason: "is missing"}
	}

	content, err := validateContent(req.Content)
	if err != nil {
		return nil, err
	}

	var ext string

	if req.Image != nil {
		ext, err = validateImage(req.Image)
		if err != nil {
			return nil, err
		}
	}

	timeNow := time.Now()

	tweet := &Tweet{
		ID:        uuid.NewString(),
		OwnerID:   req.OwnerID,
		Content:   content,
		CreatedAt: timeNow,
		UpdatedAt: timeNow,
	}

	if req.Image != nil {
		key := "tweets/" + tweet.ID + ext

		url, err := svc.imageStore.Put(ctx, key, req.Image.Reader, req.Image.Size, req.Image.ContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to upload tweet image: %w", err)
		}

		tweet.ImageKey = key
		tweet.ImageURL = url
	}

	err = svc.tweetRepo.Insert(ctx, tweet)
	if err != nil {
		if tweet.ImageKey != "" {
			svc.removeImage(ctx, tweet.ImageKey)
		}

		return nil, fmt.Errorf("failed to insert tweet: %w", err)
	}

	return tweet, nil
}

type ListTweetsRequest struct {
	OwnerID  string
	Page     int
	Limit    int
	ViewerID string
}

func (svc *BaseService) ListTweets(ctx context.Context, req ListTweetsRequest) (*TweetPage, error) {
	req.OwnerID = ""

	return svc.listTweets(ctx, req)
}

func (svc *BaseService) ListUserTweets(ctx context.Context, req ListTweetsRequest) (*TweetPage, error) {
	if req.OwnerID == "" {
		return nil, &InvalidArgumentError{Field: "userId", Reason: "is missing"}
	}

	return svc.listTweets(ctx, req)
}

func (svc *BaseService) listTweets(ctx context.Context, req ListTweetsRequest) (*TweetPage, error) {
	params, err := pagination.Params{Page: req.Page, Limit: req.Limit}.Normalize()
	if err != nil {
		return nil, fmt.Errorf("invalid pagination: %w", err)
	}

	tweets, err := svc.tweetRepo.List(ctx, &ListTweetsParams{
		OwnerID:  req.OwnerID,
		ViewerID: req.ViewerID,
		Limit:    params.Limit,
		Offset:   params.Offset(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tweets: %w", err)
	}

	total, err := svc.tweetRepo.Count(ctx, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tweets: %w", err)
	}

	if tweets == nil {
		tweets = make([]*TweetView, 0)
	}

	return &TweetPage{
		Tweets:      tweets,
		TotalTweets: total,
		Page:        params.Page,
		TotalPages:  params.TotalPages(total),
	}, nil
}

type UpdateTweetRequest struct {
	TweetID     string
	RequesterID string
	Content     string
}

func (svc *BaseService) UpdateTweet(ctx context.Context, req UpdateTweetRequest) (*Tweet, error) {
	if req.TweetID == "" {
		return nil, &InvalidArgumentError{Field: "tweetId", Reason: "is missing"}
	}

	content, err := validateContent(req.Content)
	if err != nil {
		return nil, err
	}

	tweet, err := svc.tweetRepo.UpdateContent(ctx, &UpdateContentParams{
		TweetID:   req.TweetID,
		OwnerID:   req.RequesterID,
		Content:   content,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update tweet: %w", err)
	}

	return tweet, nil
}

type DeleteTweetRequest struct {
	TweetID     string
	RequesterID string
}

func (svc *BaseService) DeleteTweet(ctx context.Context, req DeleteTweetRequest) error {
	if req.TweetID == "" {
		return &InvalidArgumentError{Field: "tweetId", Reason: "is missing"}
	}

	tweet, err := svc.tweetRepo.Delete(ctx, req.TweetID, req.RequesterID)
	if err != nil {
		return fmt.Errorf("failed to delete tweet: %w", err)
	}

	if tweet.ImageKey != "" {
		svc.removeImage(ctx, tweet.ImageKey)
	}

	return nil
}

func (svc *BaseService) removeImage(ctx context.Context, key string) {
	err := svc.imageStore.Delete(ctx, key)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete tweet image", "key", key, "error", err)
	}
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)

	if content == "" {
		return "", &InvalidArgumentError{Field: "content", Reason: "is empty"}
	}

	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", &InvalidArgumentError{
			Field:  "content",
			Reason: fmt.Sprintf("is longer than %d characters", MaxContentLength),
		}
	}

	return content, nil
}

func validateImage(image *ImageUpload) (string, error) {
	if image.Reader == nil || image.Size <= 0 {
		return "", &InvalidArgumentError{Field: "tweetImage", Reason: "is empty"}
	}

	if image.Size > MaxImageSize {
		return "", &InvalidArgumentError{
			Field:  "tweetImage",
			Reason: fmt.Sprintf("is larger than %d bytes", MaxImageSize),
		}
	}

	ext, ok := imageExtensions[image.ContentType]
	if !ok {
		return "", &InvalidArgumentError{
			Field:  "tweetImage",
			Reason: fmt.Sprintf("has unsupported content type %q", image.ContentType),
		}
	}

	return ext, nil
}
