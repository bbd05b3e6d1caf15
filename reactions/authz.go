package reactions

import (
	"context"
	"fmt"

	"github.com/nasermirzaei89/murmur/authorization"
)

const ActionToggleLike = "toggleLike"

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

func (mw *AuthorizationMiddleware) ToggleLike(ctx context.Context, req ToggleLikeRequest) (bool, error) {
	err := mw.authzClient.CheckAccess(ctx, ServiceName, string(req.TargetType)+":"+req.TargetID, ActionToggleLike)
	if err != nil {
		return false, fmt.Errorf("failed to check authorization: %w", err)
	}

	liked, err := mw.next.ToggleLike(ctx, req)
	if err != nil {
		return false, fmt.Errorf("failed to call next method: %w", err)
	}

	return liked, nil
}
