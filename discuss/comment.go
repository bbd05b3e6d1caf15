package discuss

import (
	"context"
	"fmt"
	"time"
)

type ParentKind string

const (
	ParentKindVideo ParentKind = "video"
	ParentKindTweet ParentKind = "tweet"
)

func (kind ParentKind) IsValid() bool {
	switch kind {
	case ParentKindVideo, ParentKindTweet:
		return true
	default:
		return false
	}
}

// ParentRef is the single video or tweet a comment belongs to.
type ParentRef struct {
	Kind ParentKind
	ID   string
}

func VideoParent(videoID string) ParentRef {
	return ParentRef{Kind: ParentKindVideo, ID: videoID}
}

func TweetParent(tweetID string) ParentRef {
	return ParentRef{Kind: ParentKindTweet, ID: tweetID}
}

func (ref ParentRef) Validate() error {
	if !ref.Kind.IsValid() {
		return &InvalidArgumentError{Field: "parent", Reason: fmt.Sprintf("unknown parent kind %q", ref.Kind)}
	}

	if ref.ID == "" {
		return &InvalidArgumentError{Field: string(ref.Kind) + "Id", Reason: "is missing"}
	}

	return nil
}

// VideoID returns the video id, or nil when the parent is not a video.
func (ref ParentRef) VideoID() *string {
	if ref.Kind != ParentKindVideo {
		return nil
	}

	return &ref.ID
}

// TweetID returns the tweet id, or nil when the parent is not a tweet.
func (ref ParentRef) TweetID() *string {
	if ref.Kind != ParentKindTweet {
		return nil
	}

	return &ref.ID
}

func (ref ParentRef) String() string {
	return string(ref.Kind) + ":" + ref.ID
}

type Comment struct {
	ID        string
	Parent    ParentRef
	OwnerID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OwnerSummary struct {
	Username  string
	AvatarURL string
}

type CommentView struct {
	Comment

	Owner      OwnerSummary
	LikesCount int
	HasLiked   bool
}

type CommentPage struct {
	Comments      []*CommentView
	TotalComments int
	Page          int
	TotalPages    int
}

type CommentRepository interface {
	Insert(ctx context.Context, comment *Comment) (err error)
	Find(ctx context.Context, commentID string) (comment *Comment, err error)
	List(ctx context.Context, params *ListCommentsParams) (comments []*CommentView, err error)
	Count(ctx context.Context, parent ParentRef) (count int, err error)
	// UpdateContent changes the content only when ownerID owns the comment.
	UpdateContent(ctx context.Context, params *UpdateContentParams) (comment *Comment, err error)
	// Delete removes the comment and its likes only when ownerID owns the comment.
	Delete(ctx context.Context, commentID, ownerID string) (err error)
}

type ListCommentsParams struct {
	Parent   ParentRef
	ViewerID string
	Limit    int
	Offset   int
}

type UpdateContentParams struct {
	CommentID string
	OwnerID   string
	Content   string
	UpdatedAt time.Time
}

type CommentNotFoundError struct {
	ID string
}

func (err CommentNotFoundError) Error() string {
	return fmt.Sprintf("comment with id %q not found", err.ID)
}

type NotCommentOwnerError struct {
	CommentID string
	UserID    string
}

func (err NotCommentOwnerError) Error() string {
	return fmt.Sprintf("user %q is not the owner of comment %q", err.UserID, err.CommentID)
}

type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (err InvalidArgumentError) Error() string {
	return err.Field + " " + err.Reason
}
