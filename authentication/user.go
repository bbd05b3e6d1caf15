package authentication

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type User struct {
	ID           string
	Username     string
	PasswordHash string
	AvatarURL    string
	RegisteredAt time.Time
}

type UserRepository interface {
	Insert(ctx context.Context, user *User) (err error)
	Find(ctx context.Context, userID string) (user *User, err error)
	FindByUsername(ctx context.Context, username string) (user *User, err error)
	ListUsernames(ctx context.Context) (usernames []string, err error)
}

// UserCache keeps users without their password hash.
type UserCache interface {
	Get(ctx context.Context, userID string) (user *User, err error)
	Set(ctx context.Context, user *User) (err error)
	Delete(ctx context.Context, userID string) (err error)
}

var ErrUserCacheMiss = errors.New("user cache miss")

type UserNotFoundError struct {
	ID string
}

func (err UserNotFoundError) Error() string {
	return fmt.Sprintf("user with id %q not found", err.ID)
}

type UserByUsernameNotFoundError struct {
	Username string
}

func (err UserByUsernameNotFoundError) Error() string {
	return fmt.Sprintf("user with username %q not found", err.Username)
}

type UserAlreadyExistsError struct {
	Username string
}

func (err UserAlreadyExistsError) Error() string {
	return fmt.Sprintf("user with username %q already exists", err.Username)
}

type InvalidRegistrationError struct {
	Field  string
	Reason string
}

func (err InvalidRegistrationError) Error() string {
	return err.Field + " " + err.Reason
}

var ErrCurrentUserNotFound = errors.New("current user not found")
