package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nasermirzaei89/murmur/authentication"
	"github.com/redis/go-redis/v9"
)

const DefaultUserTTL = time.Hour

type UserCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

var _ authentication.UserCache = (*UserCache)(nil)

func NewUserCache(rdb redis.UniversalClient, ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = DefaultUserTTL
	}

	return &UserCache{rdb: rdb, ttl: ttl}
}

func UserKey(userID string) string {
	return "user:" + userID
}

type cachedUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	AvatarURL    string    `json:"avatar,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
}

func (cache *UserCache) Get(ctx context.Context, userID string) (*authentication.User, error) {
	value, err := cache.rdb.Get(ctx, UserKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, authentication.ErrUserCacheMiss
		}

		return nil, fmt.Errorf("failed to get cached user: %w", err)
	}

	var cached cachedUser

	err = json.Unmarshal(value, &cached)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cached user: %w", err)
	}

	return &authentication.User{
		ID:           cached.ID,
		Username:     cached.Username,
		AvatarURL:    cached.AvatarURL,
		RegisteredAt: cached.RegisteredAt,
	}, nil
}

func (cache *UserCache) Set(ctx context.Context, user *authentication.User) error {
	value, err := json.Marshal(cachedUser{
		ID:           user.ID,
		Username:     user.Username,
		AvatarURL:    user.AvatarURL,
		RegisteredAt: user.RegisteredAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	err = cache.rdb.Set(ctx, UserKey(user.ID), value, cache.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set cached user: %w", err)
	}

	return nil
}

func (cache *UserCache) Delete(ctx context.Context, userID string) error {
	err := cache.rdb.Del(ctx, UserKey(userID)).Err()
	if err != nil {
		return fmt.Errorf("failed to delete cached user: %w", err)
	}

	return nil
}
