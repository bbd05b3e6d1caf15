package authentication

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"time"

	"github.com/google/uuid"
	authcontext "github.com/nasermirzaei89/murmur/authentication/context"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultSessionDuration = 30 * 24 * time.Hour

	minPasswordLength = 8
	// bcrypt ignores anything past 72 bytes.
	maxPasswordBytes = 72
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,32}$`)

type Service struct {
	userRepo       UserRepository
	sessionRepo    SessionRepository
	tokenManager   *TokenManager
	userCache      UserCache
	usernameFilter *UsernameFilter
}

func NewService(userRepo UserRepository, sessionRepo SessionRepository, tokenManager *TokenManager) *Service {
	return &Service{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		tokenManager: tokenManager,
	}
}

func (svc *Service) SetUserCache(userCache UserCache) {
	svc.userCache = userCache
}

// LoadUsernameFilter lets Login reject unknown usernames without touching the store.
func (svc *Service) LoadUsernameFilter(ctx context.Context, minCapacity uint, falsePositiveRate float64) error {
	usernames, err := svc.userRepo.ListUsernames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list usernames for username filter: %w", err)
	}

	filter := NewUsernameFilter(max(uint(len(usernames)), minCapacity), falsePositiveRate)
	for _, username := range usernames {
		filter.Add(username)
	}

	svc.usernameFilter = filter

	return nil
}

func HashPassword(password string) (string, error) {
	bcryptHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(bcryptHash), nil
}

type RegisterRequest struct {
	Username  string
	Password  string
	AvatarURL string
}

func (req RegisterRequest) validate() error {
	if !usernamePattern.MatchString(req.Username) {
		return &InvalidRegistrationError{
			Field:  "username",
			Reason: "must be 3 to 32 letters, digits, underscores or dots",
		}
	}

	if len([]rune(req.Password)) < minPasswordLength {
		return &InvalidRegistrationError{
			Field:  "password",
			Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength),
		}
	}

	if len(req.Password) > maxPasswordBytes {
		return &InvalidRegistrationError{
			Field:  "password",
			Reason: fmt.Sprintf("must be at most %d bytes", maxPasswordBytes),
		}
	}

	if req.AvatarURL != "" {
		u, err := url.ParseRequestURI(req.AvatarURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return &InvalidRegistrationError{Field: "avatar", Reason: "must be an absolute http(s) url"}
		}
	}

	return nil
}

func (svc *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	err := req.validate()
	if err != nil {
		return nil, err
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: passwordHash,
		AvatarURL:    req.AvatarURL,
		RegisteredAt: time.Now(),
	}

	err = svc.userRepo.Insert(ctx, user)
	if err != nil {
		var alreadyExistsErr *UserAlreadyExistsError
		if errors.As(err, &alreadyExistsErr) {
			return nil, alreadyExistsErr
		}

		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	if svc.usernameFilter != nil {
		svc.usernameFilter.Add(user.Username)
	}

	user.PasswordHash = ""

	return user, nil
}

func (svc *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	if svc.usernameFilter != nil && !svc.usernameFilter.MightContain(username) {
		return nil, ErrInvalidCredentials
	}

	user, err := svc.userRepo.FindByUsername(ctx, username)
	if err != nil {
		var notFoundErr *UserByUsernameNotFoundError
		if errors.As(err, &notFoundErr) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	timeNow := time.Now()

	session := &Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: timeNow,
		ExpiresAt: timeNow.Add(defaultSessionDuration),
	}

	err = svc.sessionRepo.Insert(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

func (svc *Service) IssueAccessToken(session *Session) (string, error) {
	token, err := svc.tokenManager.Issue(session)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}

	return token, nil
}

// Authenticate resolves the live session behind an access token.
func (svc *Service) Authenticate(ctx context.Context, token string) (*Session, error) {
	claims, err := svc.tokenManager.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}

	session, err := svc.GetSession(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}

	if session.UserID != claims.Subject {
		return nil, fmt.Errorf("%w: token subject does not own the session", ErrNotAuthenticated)
	}

	return session, nil
}

func (svc *Service) Logout(ctx context.Context, sessionID string) error {
	err := svc.sessionRepo.Delete(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (svc *Service) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	session, err := svc.sessionRepo.Find(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	if !session.ExpiresAt.After(time.Now()) {
		err = svc.sessionRepo.Delete(ctx, sessionID)
		if err != nil {
			slog.ErrorContext(ctx, "failed to delete expired session", "sessionId", sessionID, "error", err)
		}

		return nil, &SessionExpiredError{ID: sessionID}
	}

	return session, nil
}

// PurgeExpiredSessions removes every session that expired before now.
func (svc *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	count, err := svc.sessionRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	return count, nil
}

func (svc *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	if svc.userCache != nil {
		user, err := svc.userCache.Get(ctx, userID)
		if err == nil {
			return user, nil
		}

		if !errors.Is(err, ErrUserCacheMiss) {
			slog.WarnContext(ctx, "failed to get user from cache", "userId", userID, "error", err)
		}
	}

	user, err := svc.userRepo.Find(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}

	user.PasswordHash = ""

	if svc.userCache != nil {
		err = svc.userCache.Set(ctx, user)
		if err != nil {
			slog.WarnContext(ctx, "failed to set user in cache", "userId", userID, "error", err)
		}
	}

	return user, nil
}

func (svc *Service) GetCurrentUser(ctx context.Context) (*User, error) {
	if authcontext.IsAnonymous(ctx) {
		return nil, ErrCurrentUserNotFound
	}

	user, err := svc.GetUser(ctx, authcontext.GetSubject(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	return user, nil
}
