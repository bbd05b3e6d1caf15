package reactions

import (
	"context"
	"fmt"
	"time"
)

type TargetType string

const (
	TargetTypeComment TargetType = "comment"
	TargetTypeTweet   TargetType = "tweet"
)

func (targetType TargetType) IsValid() bool {
	switch targetType {
	case TargetTypeComment, TargetTypeTweet:
		return true
	default:
		return false
	}
}

type Like struct {
	ID         string
	TargetType TargetType
	TargetID   string
	UserID     string
	CreatedAt  time.Time
}

type LikeRepository interface {
	TargetExists(ctx context.Context, targetType TargetType, targetID string) (exists bool, err error)
	// Insert is a no-op when the user already likes the target.
	Insert(ctx context.Context, like *Like) (err error)
	DeleteByUserTarget(
		ctx context.Context,
		targetType TargetType,
		targetID string,
		userID string,
	) (deleted bool, err error)
}

type TargetNotFoundError struct {
	TargetType TargetType
	TargetID   string
}

func (err TargetNotFoundError) Error() string {
	return fmt.Sprintf("%s with id %q not found", err.TargetType, err.TargetID)
}

type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (err InvalidArgumentError) Error() string {
	return err.Field + " " + err.Reason
}
