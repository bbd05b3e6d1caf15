package discuss

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/nasermirzaei89/murmur/pagination"
)

const (
	ServiceName = "murmur/discuss"

	MaxContentLength = 10_000
)

type Service interface {
	ListComments(ctx context.Context, req ListCommentsRequest) (*CommentPage, error)
	AddComment(ctx context.Context, req AddCommentRequest) (*Comment, error)
	UpdateComment(ctx context.Context, req UpdateCommentRequest) (*Comment, error)
	DeleteComment(ctx context.Context, req DeleteCommentRequest) error
}

type BaseService struct {
	commentRepo CommentRepository
}

var _ Service = (*BaseService)(nil)

func NewService(commentRepo CommentRepository) *BaseService {
	return &BaseService{
		commentRepo: commentRepo,
	}
}

type ListCommentsRequest struct {
	Parent ParentRef
	Page   int
	Limit  int
	// ViewerID is empty for anonymous requests.
	ViewerID string
}

func (svc *BaseService) ListComments(ctx context.Context, req ListCommentsRequest) (*CommentPage, error) {
	err := req.Parent.Validate()
	if err != nil {
		return nil, err
	}

	params, err := pagination.Params{Page: req.Page, Limit: req.Limit}.Normalize()
	if err != nil {
		return nil, fmt.Errorf("invalid pagination: %w", err)
	}

	comments, err := svc.commentRepo.List(ctx, &ListCommentsParams{
		Parent:   req.Parent,
		ViewerID: req.ViewerID,
		Limit:    params.Limit,
		Offset:   params.Offset(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	total, err := svc.commentRepo.Count(ctx, req.Parent)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	if comments == nil {
		comments = make([]*CommentView, 0)
	}

	return &CommentPage{
		Comments:      comments,
		TotalComments: total,
		Page:          params.Page,
		TotalPages:    params.TotalPages(total),
	}, nil
}

type AddCommentRequest struct {
	Parent  ParentRef
	OwnerID string
	Content string
}

func (svc *BaseService) AddComment(ctx context.Context, req AddCommentRequest) (*Comment, error) {
	err := req.Parent.Validate()
	if err != nil {
		return nil, err
	}

	if req.OwnerID == "" {
		return nil, &InvalidArgumentError{Field: "owner", Reason: "is missing"}
	}

	content, err := validateContent(req.Content)
	if err != nil {
		return nil, err
	}

	timeNow := time.Now()

	comment := &Comment{
		ID:        uuid.NewString(),
		Parent:    req.Parent,
		OwnerID:   req.OwnerID,
		Content:   content,
		CreatedAt: timeNow,
		UpdatedAt: timeNow,
	}

	err = svc.commentRepo.Insert(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}

	return comment, nil
}

type UpdateCommentRequest struct {
	CommentID   string
	RequesterID string
	Content     string
}

func (svc *BaseService) UpdateComment(ctx context.Context, req UpdateCommentRequest) (*Comment, error) {
	if req.CommentID == "" {
		return nil, &InvalidArgumentError{Field: "commentId", Reason: "is missing"}
	}

	content, err := validateContent(req.Content)
	if err != nil {
		return nil, err
	}

	comment, err := svc.commentRepo.UpdateContent(ctx, &UpdateContentParams{
		CommentID: req.CommentID,
		OwnerID:   req.RequesterID,
		Content:   content,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return comment, nil
}

type DeleteCommentRequest struct {
	CommentID   string
	RequesterID string
}

func (svc *BaseService) DeleteComment(ctx context.Context, req DeleteCommentRequest) error {
	if req.CommentID == "" {
		return &InvalidArgumentError{Field: "commentId", Reason: "is missing"}
	}

	err := svc.commentRepo.Delete(ctx, req.CommentID, req.RequesterID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	return nil
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
