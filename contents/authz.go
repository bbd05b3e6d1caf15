package contents

import (
	"context"
	"fmt"

	"github.com/nasermirzaei89/murmur/authorization"
)

const (
	ActionListTweets     = "listTweets"
	ActionListUserTweets = "listUserTweets"
	ActionCreateTweet    = "createTweet"
	ActionUpdateTweet    = "updateTweet"
	ActionDeleteTweet    = "deleteTweet"
)

type AuthorizationMiddleware struct {
	authzClient *authorization.Client
	next        Service
}

var _ Service = (*AuthorizationMiddleware)(nil)

func NewAuthorizationMiddleware(authzClient *authorization.Client, next Service) *AuthorizationMiddleware {
	return &AuthorizationMiddleware{
		authzClient: authzClient,
		next:        next,
	}
}

func (mw *AuthorizationMiddleware) CreateTweet(ctx context.Context, req CreateTweetRequest) (*Tweet, error) {
	err := mw.authzClient.CheckAccess(ctx, ServiceName, "", ActionCreateTweet)
	if err != nil {
		return nil, fmt.Errorf("failed to check authorization: %w", err)
	}

	tweet, err := mw.next.CreateTweet(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to call next method: %w", err)
	}

	return tweet, nil
}

func (mw *AuthorizationMiddleware) ListTweets(ctx context.Context, req ListTweetsRequest) (*TweetPage, error) {
	err := mw.authzClient.CheckAccess(ctx, ServiceName, "", ActionListTweets)
	if err != nil {
		return nil, fmt.Errorf("failed to check authorization: %w", err)
	}

	page, err := mw.next.ListTweets(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to call next method: %w", err)
	}

	return page, nil
}

func (mw *AuthorizationMiddleware) ListUserTweets(ctx context.Context, req ListTweetsRequest) (*TweetPage, error) {
	err := mw.authzClient.CheckAccess(ctx, ServiceName, req.OwnerID, ActionListUserTweets)
	if err != nil {
		return nil, fmt.Errorf("failed to check authorization: %w", err)
	}

	page, err := mw.next.ListUserTweets(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to call next method: %w", err)
	}

	return page, nil
}

func (mw *AuthorizationMiddleware) UpdateTweet(ctx context.Context, req UpdateTweetRequest) (*Tweet, error) {
	err := mw.authzClient.CheckAccess(ctx, ServiceName, req.TweetID, ActionUpdateTweet)
	if err != nil {
		return nil, fmt.Errorf("failed to check authorization: %w", err)
	}

	tweet, err := mw.next.UpdateTweet(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to call next method: %w", err)
	}

	return tweet, nil
}

func (mw *AuthorizationMiddleware) DeleteTweet(ctx context.Context, req DeleteTweetRequest) error {
	err := mw.authzClient.CheckAccess(ctx, ServiceName, req.TweetID, ActionDeleteTweet)
	if err != nil {
		return fmt.Errorf("failed to check authorization: %w", err)
	}

	err = mw.next.DeleteTweet(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to call next method: %w", err)
	}

	return nil
}
