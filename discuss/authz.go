package discuss

import (
	"context"
	"fmt"

	"github.com/nasermirzaei89/murmur/authorization"
)

const (
	ActionListComments  = "listComments"
	ActionAddComment    = "addComment"
	ActionUpdateComment = "updateComment"
	ActionDeleteComment = "deleteComment"
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

func (mw *AuthorizationMiddleware) ListComments(ctx context.Context, req ListCommentsRequest) (*CommentPage, error) {
	err := mw.authzClient.CheckAccess(ctx, ServiceName, req.Parent.String(), ActionListComments)
	if err != nil {
		return nil, fmt.Errorf("failed to check authorization: %w", err)
	}

	page, err := mw.next.ListComments(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to call next method: %w", err)
	}

	return page, nil
}

func (mw *AuthorizationMiddleware) AddComment(ctx context.Context, req AddCommentRequest) (*Comment, error) {
	err := mw.authzClient.CheckAccess(ctx, ServiceName, req.Parent.String(), ActionAddComment)
	if err != nil {
		return nil, fmt.Errorf("failed to check authorization: %w", err)
	}

	comment, err := mw.next.AddComment(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to call next method: %w", err)
	}

	return comment, nil
}

func (mw *AuthorizationMiddleware) UpdateComment(ctx context.Context, req UpdateCommentRequest) (*Comment, error) {
	err := mw.authzClient.CheckAccess(ctx, ServiceName, req.CommentID, ActionUpdateComment)
	if err != nil {
		return nil, fmt.Errorf("failed to check authorization: %w", err)
	}

	comment, err := mw.next.UpdateComment(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to call next method: %w", err)
	}

	return comment, nil
}

func (mw *AuthorizationMiddleware) DeleteComment(ctx context.Context, req DeleteCommentRequest) error {
	err := mw.authzClient.CheckAccess(ctx, ServiceName, req.CommentID, ActionDeleteComment)
	if err != nil {
		return fmt.Errorf("failed to check authorization: %w", err)
	}

	err = mw.next.DeleteComment(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to call next method: %w", err)
	}

	return nil
}
