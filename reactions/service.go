package reactions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const ServiceName = "murmur/reactions"

type Service interface {
	ToggleLike(ctx context.Context, req ToggleLikeRequest) (liked bool, err error)
}

type BaseService struct {
	likeRepo LikeRepository
}

var _ Service = (*BaseService)(nil)

func NewService(likeRepo LikeRepository) *BaseService {
	return &BaseService{likeRepo: likeRepo}
}

type ToggleLikeRequest struct {
	TargetType TargetType
	TargetID   string
	UserID     string
}

func (svc *BaseService) ToggleLike(ctx context.Context, req ToggleLikeRequest) (bool, error) {
	if !req.TargetType.IsValid() {
		return false, &InvalidArgumentError{
			Field:  "targetType",
			Reason: fmt.Sprintf("has unknown value %q", req.TargetType),
		}
	}

	if req.TargetID == "" {
		return false, &InvalidArgumentError{Field: string(req.TargetType) + "Id", Reason: "is missing"}
	}

	if req.UserID == "" {
		return false, &InvalidArgumentError{Field: "user", Reason: "is missing"}
	}

	exists, err := svc.likeRepo.TargetExists(ctx, req.TargetType, req.TargetID)
	if err != nil {
		return false, fmt.Errorf("failed to check like target: %w", err)
	}

	if !exists {
		return false, &TargetNotFoundError{TargetType: req.TargetType, TargetID: req.TargetID}
	}

	deleted, err := svc.likeRepo.DeleteByUserTarget(ctx, req.TargetType, req.TargetID, req.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to remove like: %w", err)
	}

	if deleted {
		return false, nil
	}

	like := &Like{
		ID:         uuid.NewString(),
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		UserID:     req.UserID,
		CreatedAt:  time.Now(),
	}

	err = svc.likeRepo.Insert(ctx, like)
	if err != nil {
		return false, fmt.Errorf("failed to add like: %w", err)
	}

	return true, nil
}
